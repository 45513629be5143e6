package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samuelmanoizy/intuipay-dashboard/internal/apperrors"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/core/domain"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/core/ports/gateway"
	portsrepo "github.com/samuelmanoizy/intuipay-dashboard/internal/core/ports/repositories"
	portssvc "github.com/samuelmanoizy/intuipay-dashboard/internal/core/ports/services"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/metrics"
	"github.com/shopspring/decimal"
)

// SettlementConfig tunes retry, backoff and polling behaviour. Zero values
// fall back to conservative defaults.
type SettlementConfig struct {
	DispatchAttempts   int           // gateway dispatch attempts before giving up
	DispatchBackoff    time.Duration // initial backoff between dispatch attempts
	DispatchBackoffCap time.Duration // ceiling for the exponential backoff
	PollInterval       time.Duration // delay between payout status polls
	PollBudget         time.Duration // total wall-clock budget for confirmation
}

func (c *SettlementConfig) applyDefaults() {
	if c.DispatchAttempts <= 0 {
		c.DispatchAttempts = 4
	}
	if c.DispatchBackoff <= 0 {
		c.DispatchBackoff = 500 * time.Millisecond
	}
	if c.DispatchBackoffCap <= 0 {
		c.DispatchBackoffCap = 5 * time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 3 * time.Second
	}
	if c.PollBudget <= 0 {
		c.PollBudget = 90 * time.Second
	}
}

// settlementService drives a single transaction from PENDING to a terminal
// status: Created -> Dispatching -> Confirming -> Terminal.
type settlementService struct {
	txnRepo portsrepo.TransactionRepositoryFacade
	gw      gateway.PaymentGateway
	cfg     SettlementConfig
	logger  *slog.Logger
}

// NewSettlementService creates the settlement orchestrator.
func NewSettlementService(
	txnRepo portsrepo.TransactionRepositoryFacade,
	gw gateway.PaymentGateway,
	cfg SettlementConfig,
	logger *slog.Logger,
) portssvc.SettlementSvcFacade {
	cfg.applyDefaults()
	return &settlementService{
		txnRepo: txnRepo,
		gw:      gw,
		cfg:     cfg,
		logger:  logger,
	}
}

// Settle runs the settlement workflow for one transaction. Re-running after a
// crash is safe: a terminal row is a no-op, and a row with a recorded gateway
// reference resumes at confirmation instead of dispatching again.
func (s *settlementService) Settle(ctx context.Context, transactionID string) error {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("failed to load transaction %s for settlement: %w", transactionID, err)
	}
	if txn.Status.IsTerminal() {
		s.logger.Debug("Settlement skipped, transaction already terminal",
			slog.String("transaction_id", transactionID), slog.String("status", string(txn.Status)))
		return nil
	}

	ref := txn.GatewayReference
	if ref == "" {
		ref, err = s.dispatch(ctx, txn)
		if err != nil {
			return err
		}
		if ref == "" {
			// Dispatch already settled the row as failed.
			return nil
		}
	}

	if txn.Type == domain.Deposit {
		// The funds-in leg resolves out of band via the collection intake.
		return nil
	}
	return s.confirm(ctx, txn, ref)
}

// dispatch calls the gateway with bounded exponential backoff. It returns the
// recorded gateway reference, or "" if it moved the transaction to FAILED.
func (s *settlementService) dispatch(ctx context.Context, txn *domain.Transaction) (string, error) {
	logger := s.logger.With(slog.String("transaction_id", txn.TransactionID), slog.String("type", string(txn.Type)))
	backoff := s.cfg.DispatchBackoff

	for attempt := 1; attempt <= s.cfg.DispatchAttempts; attempt++ {
		result, err := s.initiate(ctx, txn)
		if err == nil {
			if err := s.txnRepo.SetGatewayReference(ctx, txn.TransactionID, result.Reference); err != nil {
				if errors.Is(err, apperrors.ErrAlreadyTerminal) {
					logger.Warn("Transaction settled elsewhere during dispatch")
					return "", nil
				}
				return "", fmt.Errorf("failed to record gateway reference for %s: %w", txn.TransactionID, err)
			}
			logger.Info("Gateway dispatch acknowledged", slog.String("gateway_reference", result.Reference), slog.Int("attempt", attempt))
			return result.Reference, nil
		}

		if errors.Is(err, apperrors.ErrGatewayRejected) {
			logger.Warn("Gateway rejected dispatch", slog.String("error", err.Error()))
			return "", s.finish(ctx, txn, domain.StatusFailed, domain.FailureGatewayRejected)
		}

		// ErrGatewayUnreachable or ErrGatewayMalformedResponse: transient.
		logger.Warn("Gateway dispatch attempt failed",
			slog.Int("attempt", attempt), slog.Int("max_attempts", s.cfg.DispatchAttempts), slog.String("error", err.Error()))
		if attempt == s.cfg.DispatchAttempts {
			break
		}
		metrics.GatewayDispatchRetries.Inc()
		if err := s.sleep(ctx, backoff); err != nil {
			return "", err
		}
		backoff = min(backoff*2, s.cfg.DispatchBackoffCap)
	}

	logger.Error("Gateway dispatch retries exhausted")
	return "", s.finish(ctx, txn, domain.StatusFailed, domain.FailureRetriesExhausted)
}

func (s *settlementService) initiate(ctx context.Context, txn *domain.Transaction) (*gateway.DispatchResult, error) {
	switch txn.Type {
	case domain.Deposit:
		return s.gw.InitiateCollection(ctx, gateway.CollectionRequest{
			Amount:    txn.Amount,
			APIRef:    txn.TransactionID,
			PayerName: txn.RecipientName,
			Phone:     txn.RecipientPhone,
		})
	case domain.Withdrawal:
		return s.gw.InitiatePayout(ctx, gateway.PayoutRequest{
			Amount:        txn.Amount,
			Destination:   txn.RecipientPhone,
			RecipientName: txn.RecipientName,
			Narrative:     "wallet withdrawal",
		})
	}
	return nil, fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrValidation, txn.Type)
}

// confirm polls the payout status until a terminal state is observed or the
// wall-clock budget runs out. Budget exhaustion resolves to FAILED with the
// UNKNOWN_OUTCOME flag rather than leaving the row PENDING forever.
func (s *settlementService) confirm(ctx context.Context, txn *domain.Transaction, ref string) error {
	logger := s.logger.With(slog.String("transaction_id", txn.TransactionID), slog.String("gateway_reference", ref))
	deadline := time.Now().Add(s.cfg.PollBudget)

	for {
		state, err := s.gw.QueryPayoutStatus(ctx, ref)
		if err != nil {
			// Transient or malformed: keep polling until the budget runs out.
			logger.Warn("Payout status poll failed", slog.String("error", err.Error()))
		} else {
			switch state {
			case gateway.PayoutCompleted:
				return s.finish(ctx, txn, domain.StatusApproved, "")
			case gateway.PayoutRejected:
				return s.finish(ctx, txn, domain.StatusFailed, domain.FailureGatewayRejected)
			default:
				logger.Debug("Payout still in flight", slog.String("state", string(state)))
			}
		}

		if time.Now().Add(s.cfg.PollInterval).After(deadline) {
			break
		}
		if err := s.sleep(ctx, s.cfg.PollInterval); err != nil {
			return err
		}
	}

	logger.Error("Payout outcome unknown after confirmation budget, assuming failed; reconcile against provider records")
	return s.finish(ctx, txn, domain.StatusFailed, domain.FailureUnknownOutcome)
}

// HandleCollectionComplete settles the deposit matching a successful checkout
// notification. Without an unambiguous match it records an unreconciled event
// and mutates nothing.
func (s *settlementService) HandleCollectionComplete(ctx context.Context, correlation string, amount decimal.Decimal) error {
	txn, err := s.matchPendingDeposit(ctx, correlation, amount)
	if err != nil || txn == nil {
		return err
	}
	return s.finish(ctx, txn, domain.StatusApproved, "")
}

// HandleCollectionFailed settles the deposit matching a failed checkout
// notification.
func (s *settlementService) HandleCollectionFailed(ctx context.Context, correlation string, amount decimal.Decimal) error {
	txn, err := s.matchPendingDeposit(ctx, correlation, amount)
	if err != nil || txn == nil {
		return err
	}
	return s.finish(ctx, txn, domain.StatusFailed, domain.FailureGatewayRejected)
}

// matchPendingDeposit locates the single PENDING deposit a gateway
// notification refers to: by gateway reference first, then by exact amount.
// Zero or multiple candidates means the event cannot be trusted to any row.
func (s *settlementService) matchPendingDeposit(ctx context.Context, correlation string, amount decimal.Decimal) (*domain.Transaction, error) {
	logger := s.logger.With(slog.String("correlation", correlation), slog.String("amount", amount.String()))

	if correlation != "" {
		txn, err := s.txnRepo.FindTransactionByGatewayReference(ctx, correlation)
		switch {
		case err == nil:
			if txn.Type == domain.Deposit && txn.Status == domain.StatusPending {
				return txn, nil
			}
			// Duplicate or late notification for a settled row: a no-op, not
			// an unreconciled event.
			logger.Debug("Collection notification for non-pending transaction",
				slog.String("transaction_id", txn.TransactionID), slog.String("status", string(txn.Status)))
			return nil, nil
		case !errors.Is(err, apperrors.ErrNotFound):
			return nil, fmt.Errorf("failed to look up gateway reference %s: %w", correlation, err)
		}
		// Unknown reference: the widget may only echo amount metadata.
	}

	if amount.IsPositive() {
		candidates, err := s.txnRepo.ListPendingDepositsByAmount(ctx, amount)
		if err != nil {
			return nil, fmt.Errorf("failed to list pending deposits for amount %s: %w", amount, err)
		}
		if len(candidates) == 1 {
			return &candidates[0], nil
		}
		logger.Warn("Unreconciled collection event", slog.Int("candidates", len(candidates)))
	} else {
		logger.Warn("Unreconciled collection event, no usable amount")
	}

	metrics.UnreconciledEventsTotal.Inc()
	return nil, nil
}

// finish moves the row to its terminal status. ErrAlreadyTerminal is the
// double-settlement guard firing, not a failure.
func (s *settlementService) finish(ctx context.Context, txn *domain.Transaction, status domain.TransactionStatus, reason domain.FailureReason) error {
	if err := s.txnRepo.MarkTerminal(ctx, txn.TransactionID, status, reason); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyTerminal) {
			s.logger.Debug("Transaction already terminal", slog.String("transaction_id", txn.TransactionID))
			return nil
		}
		return fmt.Errorf("failed to settle transaction %s: %w", txn.TransactionID, err)
	}
	metrics.SettlementsTotal.WithLabelValues(string(txn.Type), string(status), string(reason)).Inc()
	s.logger.Info("Transaction settled",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("type", string(txn.Type)),
		slog.String("status", string(status)),
		slog.String("reason", string(reason)))
	return nil
}

func (s *settlementService) sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
