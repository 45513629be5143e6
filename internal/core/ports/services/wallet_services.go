package services

import (
	"context"

	"github.com/samuelmanoizy/intuipay-dashboard/internal/core/domain"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/dto"
	"github.com/shopspring/decimal"
)

// WalletSvcFacade defines the wallet operations consumed by handlers.
type WalletSvcFacade interface {
	// RequestDeposit validates the request, appends a PENDING deposit row and
	// schedules its settlement. Returns immediately with the pending row.
	RequestDeposit(ctx context.Context, userID string, req dto.DepositRequest) (*domain.Transaction, error)

	// RequestWithdrawal validates and normalizes the payout destination,
	// appends a PENDING withdrawal row and schedules its settlement.
	RequestWithdrawal(ctx context.Context, userID string, req dto.WithdrawalRequest) (*domain.Transaction, error)

	// ListTransactions returns the user's transaction history, newest first.
	ListTransactions(ctx context.Context, userID string, limit int) ([]domain.Transaction, error)

	// GetBalance recomputes the user's spendable balance by folding the
	// ledger: approved deposits minus approved withdrawals. Nothing is cached.
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
}
