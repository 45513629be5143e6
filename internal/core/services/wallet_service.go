package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/core/domain"
	portsrepo "github.com/samuelmanoizy/intuipay-dashboard/internal/core/ports/repositories"
	portssvc "github.com/samuelmanoizy/intuipay-dashboard/internal/core/ports/services"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/dto"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/utils"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/worker"
	"github.com/shopspring/decimal"
)

const defaultHistoryLimit = 50

// SettlementQueue schedules settlement workflows to run detached from the
// requesting caller.
type SettlementQueue interface {
	Submit(job worker.Job)
}

// walletService implements the wallet write and read APIs: requesting
// movements, listing history and projecting the balance.
type walletService struct {
	txnRepo     portsrepo.TransactionRepositoryFacade
	settlement  portssvc.SettlementSvcFacade
	queue       SettlementQueue
	countryCode string
	logger      *slog.Logger
}

// NewWalletService creates a new WalletService.
func NewWalletService(
	txnRepo portsrepo.TransactionRepositoryFacade,
	settlement portssvc.SettlementSvcFacade,
	queue SettlementQueue,
	countryCode string,
	logger *slog.Logger,
) portssvc.WalletSvcFacade {
	return &walletService{
		txnRepo:     txnRepo,
		settlement:  settlement,
		queue:       queue,
		countryCode: countryCode,
		logger:      logger,
	}
}

// RequestDeposit appends a PENDING deposit row and schedules its settlement.
// Validation failures reject the request before any row exists.
func (s *walletService) RequestDeposit(ctx context.Context, userID string, req dto.DepositRequest) (*domain.Transaction, error) {
	amount, err := utils.ParseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	phone := ""
	if req.Phone != "" {
		phone, err = utils.NormalizeMSISDN(req.Phone, s.countryCode)
		if err != nil {
			return nil, err
		}
	}

	txn := domain.Transaction{
		TransactionID:  uuid.NewString(),
		UserID:         userID,
		Type:           domain.Deposit,
		Amount:         amount,
		RecipientPhone: phone,
		Status:         domain.StatusPending,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.txnRepo.CreateTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to create deposit: %w", err)
	}

	s.enqueueSettlement(txn.TransactionID)
	return &txn, nil
}

// RequestWithdrawal appends a PENDING withdrawal row and schedules its
// settlement. A withdrawal is invalid without a normalizable destination.
func (s *walletService) RequestWithdrawal(ctx context.Context, userID string, req dto.WithdrawalRequest) (*domain.Transaction, error) {
	amount, err := utils.ParseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	phone, err := utils.NormalizeMSISDN(req.Phone, s.countryCode)
	if err != nil {
		return nil, err
	}

	txn := domain.Transaction{
		TransactionID:  uuid.NewString(),
		UserID:         userID,
		Type:           domain.Withdrawal,
		Amount:         amount,
		RecipientPhone: phone,
		RecipientName:  req.Name,
		Status:         domain.StatusPending,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.txnRepo.CreateTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to create withdrawal: %w", err)
	}

	s.enqueueSettlement(txn.TransactionID)
	return &txn, nil
}

// ListTransactions returns the user's history, newest first.
func (s *walletService) ListTransactions(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	txns, err := s.txnRepo.ListTransactionsByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for user %s: %w", userID, err)
	}
	return txns, nil
}

// GetBalance folds the ledger into the user's spendable balance: approved
// deposits minus approved withdrawals. The balance is a pure projection —
// nothing is cached, so it can never drift from the ledger.
func (s *walletService) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	approved, err := s.txnRepo.ListApprovedByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load approved transactions for user %s: %w", userID, err)
	}

	balance := decimal.Zero
	for _, txn := range approved {
		switch txn.Type {
		case domain.Deposit:
			balance = balance.Add(txn.Amount)
		case domain.Withdrawal:
			balance = balance.Sub(txn.Amount)
		}
	}
	return balance, nil
}

// enqueueSettlement hands the workflow to the background queue. The job runs
// on its own context: abandoning the HTTP request never orphans a PENDING row.
func (s *walletService) enqueueSettlement(transactionID string) {
	s.queue.Submit(func(ctx context.Context) {
		if err := s.settlement.Settle(ctx, transactionID); err != nil {
			s.logger.Error("Settlement workflow failed",
				slog.String("transaction_id", transactionID), slog.String("error", err.Error()))
		}
	})
}
