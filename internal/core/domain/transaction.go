package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates the direction of a money movement.
type TransactionType string

const (
	Deposit    TransactionType = "DEPOSIT"
	Withdrawal TransactionType = "WITHDRAWAL"
)

// TransactionStatus is the lifecycle status of a transaction.
// A transaction is created PENDING and moves exactly once to a terminal
// status (APPROVED or FAILED). Terminal statuses are final.
type TransactionStatus string

const (
	StatusPending  TransactionStatus = "PENDING"
	StatusApproved TransactionStatus = "APPROVED"
	StatusFailed   TransactionStatus = "FAILED"
)

// IsTerminal reports whether the status admits no further transition.
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusFailed
}

// FailureReason records why a transaction ended FAILED. Empty for PENDING and
// APPROVED rows.
type FailureReason string

const (
	// FailureGatewayRejected: the gateway returned a permanent business rejection.
	FailureGatewayRejected FailureReason = "GATEWAY_REJECTED"
	// FailureRetriesExhausted: the gateway stayed unreachable for every dispatch attempt.
	FailureRetriesExhausted FailureReason = "RETRIES_EXHAUSTED"
	// FailureUnknownOutcome: the confirmation budget ran out without a terminal
	// signal from the gateway. The money may in fact have moved; an operator
	// must reconcile against the provider's records.
	FailureUnknownOutcome FailureReason = "UNKNOWN_OUTCOME"
)

// Transaction is one row of the wallet ledger: a single attempted money
// movement. Rows are append-only; after creation only Status, FailureReason
// and GatewayReference ever change, and the status changes exactly once.
type Transaction struct {
	TransactionID    string            `json:"transactionID"` // Primary Key (UUID)
	UserID           string            `json:"userID"`        // Owner identity, immutable
	Type             TransactionType   `json:"type"`
	Amount           decimal.Decimal   `json:"amount"`         // Always positive
	RecipientPhone   string            `json:"recipientPhone"` // Normalized MSISDN; required for withdrawals
	RecipientName    string            `json:"recipientName"`  // Optional display name for payouts
	Status           TransactionStatus `json:"status"`
	FailureReason    FailureReason     `json:"failureReason,omitempty"`
	GatewayReference string            `json:"gatewayReference,omitempty"` // Provider correlation id, set once
	CreatedAt        time.Time         `json:"createdAt"`
}
