package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/apperrors"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/core/domain"
	portsrepo "github.com/samuelmanoizy/intuipay-dashboard/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

const transactionColumns = `transaction_id, user_id, type, amount, recipient_phone, recipient_name, status, failure_reason, gateway_reference, created_at`

type PgxTransactionRepository struct {
	pool *pgxpool.Pool
}

// NewPgxTransactionRepository creates a new repository for ledger data.
func NewPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{pool: pool}
}

// CreateTransaction appends a new ledger row. Rows are only ever created
// PENDING; the insert enforces nothing beyond the schema, validation happens
// in the service layer.
func (r *PgxTransactionRepository) CreateTransaction(ctx context.Context, txn domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.pool.Exec(ctx, query,
		txn.TransactionID,
		txn.UserID,
		txn.Type,
		txn.Amount,
		txn.RecipientPhone,
		txn.RecipientName,
		txn.Status,
		txn.FailureReason,
		txn.GatewayReference,
		txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

// SetGatewayReference records the provider correlation id on a row that is
// still PENDING.
func (r *PgxTransactionRepository) SetGatewayReference(ctx context.Context, transactionID string, reference string) error {
	query := `
		UPDATE transactions
		SET gateway_reference = $2
		WHERE transaction_id = $1 AND status = $3;
	`
	ct, err := r.pool.Exec(ctx, query, transactionID, reference, domain.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to set gateway reference on transaction %s: %w", transactionID, err)
	}
	if ct.RowsAffected() == 0 {
		return r.classifyMissedUpdate(ctx, transactionID)
	}
	return nil
}

// MarkTerminal moves a PENDING row to a terminal status. The WHERE clause on
// the current status makes this the single serialization point for
// settlement: exactly one writer observes RowsAffected == 1.
func (r *PgxTransactionRepository) MarkTerminal(ctx context.Context, transactionID string, status domain.TransactionStatus, reason domain.FailureReason) error {
	if !status.IsTerminal() {
		return fmt.Errorf("%w: %s is not a terminal status", apperrors.ErrValidation, status)
	}
	query := `
		UPDATE transactions
		SET status = $2, failure_reason = $3
		WHERE transaction_id = $1 AND status = $4;
	`
	ct, err := r.pool.Exec(ctx, query, transactionID, status, reason, domain.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark transaction %s terminal: %w", transactionID, err)
	}
	if ct.RowsAffected() == 0 {
		return r.classifyMissedUpdate(ctx, transactionID)
	}
	return nil
}

// classifyMissedUpdate distinguishes "row does not exist" from "row already
// settled" after a guarded update touched nothing.
func (r *PgxTransactionRepository) classifyMissedUpdate(ctx context.Context, transactionID string) error {
	var status domain.TransactionStatus
	err := r.pool.QueryRow(ctx, `SELECT status FROM transactions WHERE transaction_id = $1;`, transactionID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to re-read transaction %s: %w", transactionID, err)
	}
	return apperrors.ErrAlreadyTerminal
}

// FindTransactionByID retrieves a transaction by its ID.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	return r.scanOne(r.pool.QueryRow(ctx, query, transactionID), transactionID)
}

// FindTransactionByGatewayReference retrieves the transaction correlated to a
// provider reference.
func (r *PgxTransactionRepository) FindTransactionByGatewayReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE gateway_reference = $1;`
	return r.scanOne(r.pool.QueryRow(ctx, query, reference), reference)
}

// ListTransactionsByUser retrieves a user's transactions, newest first.
func (r *PgxTransactionRepository) ListTransactionsByUser(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, transaction_id DESC
		LIMIT $2;
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for user %s: %w", userID, err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// ListApprovedByUser retrieves every APPROVED transaction for a user, in a
// deterministic order so two balance folds over the same snapshot agree.
func (r *PgxTransactionRepository) ListApprovedByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at, transaction_id;
	`
	rows, err := r.pool.Query(ctx, query, userID, domain.StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to query approved transactions for user %s: %w", userID, err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// ListPendingDepositsByAmount retrieves PENDING deposits for an exact amount,
// oldest first.
func (r *PgxTransactionRepository) ListPendingDepositsByAmount(ctx context.Context, amount decimal.Decimal) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE type = $1 AND status = $2 AND amount = $3
		ORDER BY created_at, transaction_id;
	`
	rows, err := r.pool.Query(ctx, query, domain.Deposit, domain.StatusPending, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending deposits for amount %s: %w", amount, err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

func (r *PgxTransactionRepository) scanOne(row pgx.Row, key string) (*domain.Transaction, error) {
	var txn domain.Transaction
	err := row.Scan(
		&txn.TransactionID,
		&txn.UserID,
		&txn.Type,
		&txn.Amount,
		&txn.RecipientPhone,
		&txn.RecipientName,
		&txn.Status,
		&txn.FailureReason,
		&txn.GatewayReference,
		&txn.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", key, err)
	}
	return &txn, nil
}

func (r *PgxTransactionRepository) scanMany(rows pgx.Rows) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}
	for rows.Next() {
		var txn domain.Transaction
		if err := rows.Scan(
			&txn.TransactionID,
			&txn.UserID,
			&txn.Type,
			&txn.Amount,
			&txn.RecipientPhone,
			&txn.RecipientName,
			&txn.Status,
			&txn.FailureReason,
			&txn.GatewayReference,
			&txn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return transactions, nil
}
