package factory

import (
	"context"
	"net/url"
	"strconv"

	"github.com/bsv-blockchain/ledgersim/errors"
	"github.com/bsv-blockchain/ledgersim/settings"
	"github.com/bsv-blockchain/ledgersim/stores/utxo"
	"github.com/bsv-blockchain/ledgersim/stores/utxo/memory"
	"github.com/bsv-blockchain/ledgersim/ulogger"
)

func init() {
	availableDatabases["memory"] = func(_ context.Context, logger ulogger.Logger, _ *settings.Settings, _ *url.URL) (utxo.Store, error) {
		return memory.New(logger), nil
	}

	availableDatabases["swiss"] = func(_ context.Context, logger ulogger.Logger, _ *settings.Settings, storeURL *url.URL) (utxo.Store, error) {
		var size uint64

		if sizeStr := storeURL.Query().Get("size"); sizeStr != "" {
			var err error

			size, err = strconv.ParseUint(sizeStr, 10, 32)
			if err != nil {
				return nil, errors.NewConfigurationError("invalid swiss store size %q", sizeStr, err)
			}
		}

		return memory.NewSwissMap(logger, uint32(size)), nil
	}
}
