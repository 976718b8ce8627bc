// Package factory creates UTXO stores from a connection URL.
//
// # Supported Backends
//
//   - In-Memory: "memory://" (copy-on-write Go map, the default)
//   - Swiss map: "swiss://?size=4096" (dolthub/swiss table, snapshots are full copies)
//
// # Usage
//
//	store, err := factory.NewStore(ctx, logger, tSettings)
//	if err != nil {
//	    return err
//	}
//
// # Logging
//
// Logging of every store call can be enabled by adding logging=true to the URL:
//
//	memory://?logging=true
package factory

import (
	"context"
	"net/url"

	"github.com/bsv-blockchain/ledgersim/errors"
	"github.com/bsv-blockchain/ledgersim/settings"
	"github.com/bsv-blockchain/ledgersim/stores/utxo"
	storelogger "github.com/bsv-blockchain/ledgersim/stores/utxo/logger"
	"github.com/bsv-blockchain/ledgersim/ulogger"
)

type storeFactory func(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings, url *url.URL) (utxo.Store, error)

var availableDatabases = map[string]storeFactory{}

func NewStore(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings) (utxo.Store, error) {
	storeURL := tSettings.UtxoStore.URL
	if storeURL == nil {
		return nil, errors.NewConfigurationError("no utxostore setting found")
	}

	return NewStoreFromURL(ctx, logger, tSettings, storeURL)
}

func NewStoreFromURL(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings, storeURL *url.URL) (utxo.Store, error) {
	dbInit, ok := availableDatabases[storeURL.Scheme]
	if !ok {
		return nil, errors.NewConfigurationError("unknown utxostore scheme: %s", storeURL.Scheme)
	}

	utxoStore, err := dbInit(ctx, logger, tSettings, storeURL)
	if err != nil {
		return nil, err
	}

	if storeURL.Query().Get("logging") == "true" {
		logger.Infof("[UTXOStore] enabling store logging for %s", storeURL.Scheme)
		utxoStore = storelogger.New(logger, utxoStore)
	}

	return utxoStore, nil
}
