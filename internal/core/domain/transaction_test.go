package domain_test

import (
	"testing"

	"github.com/samuelmanoizy/intuipay-dashboard/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestTransactionStatusIsTerminal(t *testing.T) {
	assert.False(t, domain.StatusPending.IsTerminal())
	assert.True(t, domain.StatusApproved.IsTerminal())
	assert.True(t, domain.StatusFailed.IsTerminal())
}
