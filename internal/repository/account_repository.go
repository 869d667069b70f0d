package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"insurance-service/internal/models"
	"insurance-service/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type AccountRepository struct {
	db sqlx.ExtContext
}

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Get(ctx context.Context, userID string) (*models.Account, error) {
	var account models.Account
	query := `
		SELECT user_id, balance, created_at, updated_at
		FROM account
		WHERE user_id = $1
	`

	err := sqlx.GetContext(ctx, r.db, &account, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &account, nil
}

// GetForUpdate locks the account row until the enclosing transaction ends,
// serializing concurrent debits against the same account.
func (r *AccountRepository) GetForUpdate(ctx context.Context, userID string) (*models.Account, error) {
	var account models.Account
	query := `
		SELECT user_id, balance, created_at, updated_at
		FROM account
		WHERE user_id = $1
		FOR UPDATE
	`

	err := sqlx.GetContext(ctx, r.db, &account, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}

	return &account, nil
}

func (r *AccountRepository) Save(ctx context.Context, a *models.Account) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	a.UpdatedAt = time.Now()

	query := `
		INSERT INTO account (user_id, balance, created_at, updated_at)
		VALUES (:user_id, :balance, :created_at, :updated_at)
		ON CONFLICT (user_id) DO UPDATE SET
			balance = EXCLUDED.balance,
			updated_at = EXCLUDED.updated_at
	`

	_, err := sqlx.NamedExecContext(ctx, r.db, query, a)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

func (r *AccountRepository) AppendTransaction(ctx context.Context, t *models.Transaction) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO ledger_transaction (
			id, user_id, type, amount, reason, counterparty, balance_after, created_at
		) VALUES (
			:id, :user_id, :type, :amount, :reason, :counterparty, :balance_after, :created_at
		)
	`

	_, err := sqlx.NamedExecContext(ctx, r.db, query, t)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

func (r *AccountRepository) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	var transactions []models.Transaction
	query := `
		SELECT id, user_id, type, amount, reason, counterparty, balance_after, created_at
		FROM ledger_transaction
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	err := sqlx.SelectContext(ctx, r.db, &transactions, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return transactions, nil
}

var _ store.AccountRepository = (*AccountRepository)(nil)
