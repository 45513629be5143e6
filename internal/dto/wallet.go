package dto

import (
	"time"

	"github.com/samuelmanoizy/intuipay-dashboard/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DepositRequest defines the payload for requesting a wallet top-up.
// Amount arrives as a string and is parsed to a fixed-precision decimal by
// the service; the optional phone is forwarded to the gateway checkout.
type DepositRequest struct {
	Amount string `json:"amount" binding:"required"`
	Phone  string `json:"phone"`
}

// WithdrawalRequest defines the payload for requesting a payout.
type WithdrawalRequest struct {
	Amount string `json:"amount" binding:"required"`
	Phone  string `json:"phone" binding:"required"`
	Name   string `json:"name"`
}

// TransactionResponse defines the data returned for a single ledger row.
type TransactionResponse struct {
	TransactionID    string          `json:"transactionID"`
	Type             string          `json:"type"`
	Amount           decimal.Decimal `json:"amount"`
	Status           string          `json:"status"`
	FailureReason    string          `json:"failureReason,omitempty"`
	GatewayReference string          `json:"gatewayReference,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// BalanceResponse defines the derived wallet balance for a user.
type BalanceResponse struct {
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

// ListTransactionsResponse wraps a user's transaction history, newest first.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// ToTransactionResponse converts a domain.Transaction to its response DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:    txn.TransactionID,
		Type:             string(txn.Type),
		Amount:           txn.Amount,
		Status:           string(txn.Status),
		FailureReason:    string(txn.FailureReason),
		GatewayReference: txn.GatewayReference,
		CreatedAt:        txn.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i, txn := range txns {
		responses[i] = ToTransactionResponse(&txn)
	}
	return responses
}
