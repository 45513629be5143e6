package utils

import (
	"fmt"
	"strings"

	"github.com/samuelmanoizy/intuipay-dashboard/internal/apperrors"
)

// minMSISDNDigits is the smallest subscriber number we accept after
// normalization, country code included.
const minMSISDNDigits = 9

// NormalizeMSISDN converts a raw payout destination into the international
// format the payment gateway requires, without a leading '+'.
//
// Rules:
//   - a leading '+' is stripped
//   - a number already starting with the country code passes through unchanged
//   - a leading national trunk '0' is replaced by the country code
//   - a bare local number has the country code prepended
//
// The function is idempotent: normalizing an already-normalized number
// returns it unchanged.
func NormalizeMSISDN(raw string, countryCode string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "+")

	if s == "" {
		return "", fmt.Errorf("%w: empty phone number", apperrors.ErrInvalidDestination)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %q contains non-digit characters", apperrors.ErrInvalidDestination, raw)
		}
	}

	switch {
	case strings.HasPrefix(s, countryCode):
		// Already canonical.
	case strings.HasPrefix(s, "0"):
		s = countryCode + s[1:]
	default:
		s = countryCode + s
	}

	if len(s) < minMSISDNDigits {
		return "", fmt.Errorf("%w: %q is too short", apperrors.ErrInvalidDestination, raw)
	}
	return s, nil
}
