package utils_test

import (
	"testing"

	"github.com/samuelmanoizy/intuipay-dashboard/internal/apperrors"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCountryCode = "254"

func TestNormalizeMSISDN(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"trunk zero replaced", "0712345678", "254712345678"},
		{"already canonical", "254712345678", "254712345678"},
		{"plus prefix stripped", "+254712345678", "254712345678"},
		{"bare local number", "712345678", "254712345678"},
		{"surrounding whitespace", "  0712345678 ", "254712345678"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := utils.NormalizeMSISDN(tt.input, testCountryCode)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizeMSISDN_Idempotent(t *testing.T) {
	once, err := utils.NormalizeMSISDN("0712345678", testCountryCode)
	require.NoError(t, err)

	twice, err := utils.NormalizeMSISDN(once, testCountryCode)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestNormalizeMSISDN_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"plus only", "+"},
		{"letters", "07abc45678"},
		{"spaces inside", "0712 345 678"},
		{"too short", "07"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := utils.NormalizeMSISDN(tt.input, testCountryCode)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidDestination)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}
