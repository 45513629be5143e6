package services

import (
	"context"

	"github.com/shopspring/decimal"
)

// SettlementSvcFacade drives transactions from PENDING to a terminal status.
type SettlementSvcFacade interface {
	// Settle runs the settlement workflow for one transaction to completion.
	// It is safe to re-run after a crash: a recorded gateway reference skips
	// dispatch, and a terminal row is a no-op.
	Settle(ctx context.Context, transactionID string) error

	// HandleCollectionComplete processes a gateway notification that a deposit
	// checkout succeeded. If no unambiguous PENDING match exists the event is
	// logged as unreconciled and nothing is mutated.
	HandleCollectionComplete(ctx context.Context, correlation string, amount decimal.Decimal) error

	// HandleCollectionFailed processes a gateway notification that a deposit
	// checkout failed.
	HandleCollectionFailed(ctx context.Context, correlation string, amount decimal.Decimal) error
}
