package utils

import (
	"fmt"
	"strings"

	"github.com/samuelmanoizy/intuipay-dashboard/internal/apperrors"
	"github.com/shopspring/decimal"
)

// amountPrecision is the fixed number of decimal places carried by every
// monetary amount in the ledger.
const amountPrecision = 2

// ParseAmount parses a raw amount string into a positive fixed-precision
// decimal. Non-numeric, zero and negative inputs are rejected before any
// ledger row is created.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", apperrors.ErrInvalidAmount)
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", apperrors.ErrInvalidAmount, raw)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: amount must be greater than zero, got %s", apperrors.ErrInvalidAmount, amount)
	}

	return amount.Round(amountPrecision), nil
}
