// Command ledgersim runs the UTXO ledger simulator from the command line.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cmdsettings "github.com/bsv-blockchain/ledgersim/cmd/settings"
	"github.com/bsv-blockchain/ledgersim/errors"
	"github.com/bsv-blockchain/ledgersim/model"
	"github.com/bsv-blockchain/ledgersim/services/ledger"
	"github.com/bsv-blockchain/ledgersim/settings"
	"github.com/bsv-blockchain/ledgersim/ulogger"
	"github.com/ordishs/gocore"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

// Name used by build script for the binaries. (Please keep on single line)
const progname = "ledgersim"

// Version & commit strings injected at build with -ldflags -X...
var version string
var commit string

func init() {
	gocore.SetInfo(progname, version, commit)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).RunContext(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:    progname,
		Usage:   "Simulate a UTXO ledger with a mempool and block assembly",
		Version: version,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "serve prometheus metrics on this address while the command runs",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "demo",
				Usage:  "Seed genesis, send 10 BTC from alice to bob and mine a block",
				Action: withMetrics(demo),
			},
			{
				Name:   "run",
				Usage:  "Replay a YAML scenario against a fresh ledger",
				Action: withMetrics(run),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "scenario",
						Usage:    "path to the scenario file",
						Required: true,
					},
				},
			},
			{
				Name:  "settings",
				Usage: "Print the configuration",
				Action: func(c *cli.Context) error {
					cmdsettings.CmdSettings(c.App.Writer, version, commit, settings.NewSettings())
					return nil
				},
			},
		},
	}
}

// withMetrics serves the prometheus endpoint for as long as action runs.
func withMetrics(action cli.ActionFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		addr := c.String("metrics-addr")
		if addr == "" {
			return action(c)
		}

		tSettings := settings.NewSettings()

		endpoint := tSettings.Metrics.PrometheusEndpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}

		mux := http.NewServeMux()
		mux.Handle(endpoint, promhttp.Handler())

		server := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		g, ctx := errgroup.WithContext(c.Context)

		g.Go(func() error {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.NewError("metrics server on %s failed", addr, err)
			}

			return nil
		})

		g.Go(func() error {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				_ = server.Shutdown(shutdownCtx)
			}()

			c.Context = ctx

			return action(c)
		})

		return g.Wait()
	}
}

func newLedger(ctx context.Context, tSettings *settings.Settings) (*ledger.Ledger, error) {
	logger := ulogger.InitLogger(progname, tSettings)

	return ledger.New(ctx, logger, tSettings)
}

func demo(c *cli.Context) error {
	ctx := c.Context
	out := c.App.Writer
	tSettings := settings.NewSettings()

	l, err := newLedger(ctx, tSettings)
	if err != nil {
		return err
	}

	if err = l.SeedGenesis(ctx, tSettings.Genesis.Allocations); err != nil {
		return err
	}

	printBalances(ctx, out, l, tSettings)

	tx, err := l.Transfer(ctx, "alice", "bob", model.MustBTC(10))
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "\nsubmitted %s", tx)

	result, err := l.Mine(ctx, tSettings.BlockAssembly.MinerAddress, tSettings.BlockAssembly.DefaultBatchSize)
	if err != nil {
		return err
	}

	if !result.Mined() {
		if result.Err != nil {
			return result.Err
		}

		return errors.NewProcessingError("demo block was not mined: %s", result.Status)
	}

	_, _ = fmt.Fprintf(out, "\n%s\n", result.Block)

	printBalances(ctx, out, l, tSettings)

	return nil
}

func run(c *cli.Context) error {
	scenario, err := LoadScenario(c.String("scenario"))
	if err != nil {
		return err
	}

	tSettings := settings.NewSettings()

	l, err := newLedger(c.Context, tSettings)
	if err != nil {
		return err
	}

	return scenario.Run(c.Context, l, tSettings, c.App.Writer)
}

func printBalances(ctx context.Context, out io.Writer, l *ledger.Ledger, tSettings *settings.Settings) {
	_, _ = fmt.Fprintf(out, "\nbalances at height %d:\n", l.Height())

	for _, alloc := range tSettings.Genesis.Allocations {
		_, _ = fmt.Fprintf(out, "  %-10s %s\n", alloc.Owner, l.Balance(ctx, alloc.Owner))
	}

	if miner := tSettings.BlockAssembly.MinerAddress; l.Balance(ctx, miner) > 0 {
		_, _ = fmt.Fprintf(out, "  %-10s %s\n", miner, l.Balance(ctx, miner))
	}

	_, _ = fmt.Fprintf(out, "total supply: %s\n", l.TotalSupply(ctx))
}
