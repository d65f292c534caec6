package ledger

import (
	"fmt"
	"math/big"
)

// Scale is the fixed-point unit of one whole credit (18 implied decimals).
var Scale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// ParseAmount parses a non-negative base-10 integer amount.
func ParseAmount(value string) (*big.Int, error) {
	if value == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative", ErrInvalidAmount)
	}
	return amount, nil
}

// ValidAmount reports whether amount is a usable positive quantity.
func ValidAmount(amount *big.Int) bool {
	return amount != nil && amount.Sign() > 0
}

func cloneAmount(amount *big.Int) *big.Int {
	if amount == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(amount)
}
