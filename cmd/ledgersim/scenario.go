package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/bsv-blockchain/ledgersim/errors"
	"github.com/bsv-blockchain/ledgersim/model"
	"github.com/bsv-blockchain/ledgersim/services/ledger"
	"github.com/bsv-blockchain/ledgersim/services/wallet"
	"github.com/bsv-blockchain/ledgersim/settings"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of ledger operations.
//
//	name: race attack
//	genesis:
//	  - {owner: david, amount: "10"}
//	steps:
//	  - {action: transfer, id: pay, from: david, to: shop, amount: "9", fee: "0.001"}
//	  - {action: transfer, id: attack, from: david, to: david, amount: "9.5", fee: "0.5", expect: MEMPOOL_CONFLICT}
//	  - {action: mine, miner: m1}
//	  - {action: balance, owner: shop, expect: "9"}
//
// Genesis falls back to the configured allocations when empty.
type Scenario struct {
	Name    string       `yaml:"name"`
	Genesis []Allocation `yaml:"genesis"`
	Steps   []Step       `yaml:"steps"`
}

type Allocation struct {
	Owner  string `yaml:"owner"`
	Amount Amount `yaml:"amount"`
}

// Step is one operation. Expect holds an error code name for transfer and submit,
// a status name for mine and an amount for balance.
type Step struct {
	Action  string     `yaml:"action"`
	ID      string     `yaml:"id"`
	From    string     `yaml:"from"`
	To      string     `yaml:"to"`
	Amount  Amount     `yaml:"amount"`
	Fee     *Amount    `yaml:"fee"`
	Inputs  []Input    `yaml:"inputs"`
	Outputs []Output   `yaml:"outputs"`
	Miner   string     `yaml:"miner"`
	Batch   int        `yaml:"batch"`
	Owner   string     `yaml:"owner"`
	Expect  string     `yaml:"expect"`
	Remove  *Outpoint  `yaml:"remove"`
	Add     *AddOutput `yaml:"add"`
}

type Outpoint struct {
	TxID  string `yaml:"tx"`
	Index uint32 `yaml:"index"`
}

type Input struct {
	Outpoint `yaml:",inline"`
	Owner    string `yaml:"owner"`
}

type Output struct {
	Amount    Amount `yaml:"amount"`
	Recipient string `yaml:"to"`
}

type AddOutput struct {
	Outpoint `yaml:",inline"`
	Amount   Amount `yaml:"amount"`
	Owner    string `yaml:"owner"`
}

// Amount reads a decimal BTC string such as "39.999" without going through float64.
type Amount model.Amount

func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	amount, err := model.ParseAmount(node.Value)
	if err != nil {
		return errors.NewConfigurationError("line %d: invalid amount %q", node.Line, node.Value, err)
	}

	*a = Amount(amount)

	return nil
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigurationError("failed to read scenario %s", path, err)
	}

	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario

	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.NewConfigurationError("failed to parse scenario", err)
	}

	if len(s.Steps) == 0 {
		return nil, errors.NewConfigurationError("scenario %q has no steps", s.Name)
	}

	return &s, nil
}

// Run seeds l and replays the steps, stopping at the first step whose outcome
// does not match its expectation.
func (s *Scenario) Run(ctx context.Context, l *ledger.Ledger, tSettings *settings.Settings, out io.Writer) error {
	allocations := tSettings.Genesis.Allocations

	if len(s.Genesis) > 0 {
		allocations = make([]settings.Allocation, 0, len(s.Genesis))
		for _, a := range s.Genesis {
			allocations = append(allocations, settings.Allocation{Owner: a.Owner, Amount: model.Amount(a.Amount)})
		}
	}

	if err := l.SeedGenesis(ctx, allocations); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "scenario %q: %d steps, supply %s\n", s.Name, len(s.Steps), l.TotalSupply(ctx))

	for i, step := range s.Steps {
		if err := s.runStep(ctx, l, tSettings, out, i+1, step); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintf(out, "done at height %d, supply %s\n", l.Height(), l.TotalSupply(ctx))

	return nil
}

func (s *Scenario) runStep(ctx context.Context, l *ledger.Ledger, tSettings *settings.Settings, out io.Writer, n int, step Step) error {
	switch step.Action {
	case "transfer":
		fee := tSettings.Wallet.DefaultFee
		if step.Fee != nil {
			fee = model.Amount(*step.Fee)
		}

		tx, err := l.SubmitTransfer(ctx, wallet.TransferRequest{
			TxID:      step.ID,
			Sender:    step.From,
			Recipient: step.To,
			Amount:    model.Amount(step.Amount),
			Fee:       fee,
		})

		return report(out, n, describe("transfer", tx, step), step.Expect, err)

	case "submit":
		inputs := make([]model.TxInput, 0, len(step.Inputs))
		for _, in := range step.Inputs {
			inputs = append(inputs, model.TxInput{TxID: in.TxID, Index: in.Index, Owner: in.Owner})
		}

		outputs := make([]model.TxOutput, 0, len(step.Outputs))
		for _, o := range step.Outputs {
			outputs = append(outputs, model.TxOutput{Amount: model.Amount(o.Amount), Recipient: o.Recipient})
		}

		tx := model.NewTransaction(step.ID, inputs, outputs)

		return report(out, n, describe("submit", tx, step), step.Expect, l.SubmitTransaction(ctx, tx))

	case "mine":
		miner := step.Miner
		if miner == "" {
			miner = tSettings.BlockAssembly.MinerAddress
		}

		batch := step.Batch
		if batch == 0 {
			batch = tSettings.BlockAssembly.DefaultBatchSize
		}

		result, err := l.Mine(ctx, miner, batch)
		if err != nil {
			return errors.NewProcessingError("step %d: mine failed", n, err)
		}

		if result.Mined() {
			_, _ = fmt.Fprintf(out, "%3d mine     height %d, %d txs, fees %s, skipped %d\n",
				n, result.Block.Height, len(result.Block.Transactions), result.Block.TotalFees, len(result.Skipped))
		} else {
			_, _ = fmt.Fprintf(out, "%3d mine     %s\n", n, result.Status)
		}

		if step.Expect != "" && step.Expect != result.Status.String() {
			return errors.NewProcessingError("step %d: expected mine status %s, got %s", n, step.Expect, result.Status)
		}

		return nil

	case "balance":
		balance := l.Balance(ctx, step.Owner)
		_, _ = fmt.Fprintf(out, "%3d balance  %s = %s\n", n, step.Owner, balance)

		if step.Expect == "" {
			return nil
		}

		expected, err := model.ParseAmount(step.Expect)
		if err != nil {
			return errors.NewConfigurationError("step %d: invalid expected balance %q", n, step.Expect, err)
		}

		if balance != expected {
			return errors.NewProcessingError("step %d: expected %s to hold %s, got %s", n, step.Owner, expected, balance)
		}

		return nil

	case "utxo":
		switch {
		case step.Add != nil:
			key := model.NewOutpoint(step.Add.TxID, step.Add.Index)
			return report(out, n, "add utxo "+key.String(), step.Expect, l.AddUTXO(ctx, key, model.Amount(step.Add.Amount), step.Add.Owner))
		case step.Remove != nil:
			key := model.NewOutpoint(step.Remove.TxID, step.Remove.Index)
			return report(out, n, "remove utxo "+key.String(), step.Expect, l.RemoveUTXO(ctx, key))
		default:
			return errors.NewConfigurationError("step %d: utxo step needs add or remove", n)
		}

	case "clear":
		l.ClearMempool()
		_, _ = fmt.Fprintf(out, "%3d clear    mempool\n", n)

		return nil

	default:
		return errors.NewConfigurationError("step %d: unknown action %q", n, step.Action)
	}
}

func describe(action string, tx *model.Transaction, step Step) string {
	if tx == nil {
		return fmt.Sprintf("%s %s -> %s", action, step.From, step.To)
	}

	return fmt.Sprintf("%s %s fee %s", action, tx.ID, tx.Fee)
}

// report prints the outcome of a step and checks it against expect, an error
// code name or empty for success.
func report(out io.Writer, n int, what string, expect string, err error) error {
	if expect != "" {
		if _, ok := errors.ParseERR(expect); !ok {
			return errors.NewConfigurationError("step %d: unknown error code %q", n, expect)
		}
	}

	if err == nil {
		_, _ = fmt.Fprintf(out, "%3d ok       %s\n", n, what)

		if expect != "" {
			return errors.NewProcessingError("step %d: expected %s, got success", n, expect)
		}

		return nil
	}

	code := errors.CodeOf(err).String()
	_, _ = fmt.Fprintf(out, "%3d %-8s %s\n", n, code, what)

	if expect != code {
		return errors.NewProcessingError("step %d: unexpected result", n, err)
	}

	return nil
}
