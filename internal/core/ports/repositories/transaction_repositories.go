package repositories

import (
	"context"

	"github.com/samuelmanoizy/intuipay-dashboard/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionReader defines read operations over the ledger.
type TransactionReader interface {
	// FindTransactionByID retrieves a single transaction by its unique identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindTransactionByGatewayReference retrieves the transaction correlated to
	// a provider-assigned reference, if any.
	FindTransactionByGatewayReference(ctx context.Context, reference string) (*domain.Transaction, error)

	// ListTransactionsByUser retrieves a user's transactions, newest first.
	ListTransactionsByUser(ctx context.Context, userID string, limit int) ([]domain.Transaction, error)

	// ListApprovedByUser retrieves every APPROVED transaction for a user.
	// This feeds the balance projection.
	ListApprovedByUser(ctx context.Context, userID string) ([]domain.Transaction, error)

	// ListPendingDepositsByAmount retrieves PENDING deposits matching an exact
	// amount, oldest first. Used by the collection intake path when the
	// gateway notification carries no usable reference.
	ListPendingDepositsByAmount(ctx context.Context, amount decimal.Decimal) ([]domain.Transaction, error)
}

// TransactionWriter defines the only two writes the ledger permits:
// appending a PENDING row and moving a PENDING row to a terminal status.
type TransactionWriter interface {
	// CreateTransaction appends a new PENDING transaction row.
	CreateTransaction(ctx context.Context, txn domain.Transaction) error

	// SetGatewayReference records the provider correlation id on a row that is
	// still PENDING. Returns apperrors.ErrAlreadyTerminal otherwise.
	SetGatewayReference(ctx context.Context, transactionID string, reference string) error

	// MarkTerminal atomically transitions a PENDING row to APPROVED or FAILED.
	// Returns apperrors.ErrAlreadyTerminal if the row is no longer PENDING —
	// exactly one writer wins this transition.
	MarkTerminal(ctx context.Context, transactionID string, status domain.TransactionStatus, reason domain.FailureReason) error
}

// TransactionRepositoryFacade combines all ledger repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
