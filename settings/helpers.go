package settings

import (
	"net/url"
	"strings"

	"github.com/bsv-blockchain/ledgersim/errors"
	"github.com/bsv-blockchain/ledgersim/model"
	"github.com/ordishs/gocore"
)

func getString(key, defaultValue string) string {
	value, found := gocore.Config().Get(key)
	if !found {
		return defaultValue
	}

	return value
}

func getInt(key string, defaultValue int) int {
	value, found := gocore.Config().GetInt(key)
	if !found {
		return defaultValue
	}

	return value
}

func getURL(key, defaultValue string) *url.URL {
	value, _, _ := gocore.Config().GetURL(key, defaultValue)

	return value
}

func getBool(key string, defaultValue bool) bool {
	return gocore.Config().GetBool(key, defaultValue)
}

// getAmount reads a coin value such as "0.001" and converts it to satoshis exactly.
func getAmount(key, defaultValue string) (model.Amount, error) {
	amount, err := model.ParseAmount(getString(key, defaultValue))
	if err != nil {
		return 0, errors.NewConfigurationError("invalid amount for %s", key, err)
	}

	return amount, nil
}

// getAllocations reads a comma separated list of owner:amount pairs.
func getAllocations(key, defaultValue string) ([]Allocation, error) {
	return ParseAllocations(getString(key, defaultValue))
}

// ParseAllocations parses "alice:50,bob:30" into allocations, keeping their order.
func ParseAllocations(value string) ([]Allocation, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	parts := strings.Split(value, ",")
	allocations := make([]Allocation, 0, len(parts))

	for _, part := range parts {
		owner, amountStr, ok := strings.Cut(strings.TrimSpace(part), ":")
		owner = strings.TrimSpace(owner)

		if !ok || owner == "" {
			return nil, errors.NewConfigurationError("invalid allocation %q, expected owner:amount", part)
		}

		amount, err := model.ParseAmount(amountStr)
		if err != nil {
			return nil, errors.NewConfigurationError("invalid allocation amount for %s", owner, err)
		}

		if amount <= 0 {
			return nil, errors.NewConfigurationError("allocation for %s must be positive", owner)
		}

		allocations = append(allocations, Allocation{Owner: owner, Amount: amount})
	}

	return allocations, nil
}
