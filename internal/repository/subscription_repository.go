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

type SubscriptionRepository struct {
	db sqlx.ExtContext
}

func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `
	id, policy_id, agent_id, subscriber_id, tier, premium_paid, daily_rate,
	coverage_amount, start_date, end_date, status, cancellation_date,
	refund_amount, created_at, updated_at`

func (r *SubscriptionRepository) Create(ctx context.Context, s *models.Subscription) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	s.UpdatedAt = time.Now()

	query := `
		INSERT INTO subscription (
			id, policy_id, agent_id, subscriber_id, tier, premium_paid, daily_rate,
			coverage_amount, start_date, end_date, status, cancellation_date,
			refund_amount, created_at, updated_at
		) VALUES (
			:id, :policy_id, :agent_id, :subscriber_id, :tier, :premium_paid, :daily_rate,
			:coverage_amount, :start_date, :end_date, :status, :cancellation_date,
			:refund_amount, :created_at, :updated_at
		)
	`

	_, err := sqlx.NamedExecContext(ctx, r.db, query, s)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	query := `SELECT` + subscriptionColumns + ` FROM subscription WHERE id = $1`

	err := sqlx.GetContext(ctx, r.db, &sub, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription by id: %w", err)
	}

	return &sub, nil
}

// GetActiveBySubscriber locks the active row when called inside a
// transaction so concurrent subscribe/cancel calls for the same subscriber
// serialize at the database as well.
func (r *SubscriptionRepository) GetActiveBySubscriber(ctx context.Context, subscriberID string) (*models.Subscription, error) {
	var sub models.Subscription
	query := `SELECT` + subscriptionColumns + `
		FROM subscription
		WHERE subscriber_id = $1 AND status = 'active'
		FOR UPDATE
	`
	if _, inTx := r.db.(*sqlx.Tx); !inTx {
		query = `SELECT` + subscriptionColumns + `
			FROM subscription
			WHERE subscriber_id = $1 AND status = 'active'
		`
	}

	err := sqlx.GetContext(ctx, r.db, &sub, query, subscriberID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}

	return &sub, nil
}

func (r *SubscriptionRepository) Update(ctx context.Context, s *models.Subscription) error {
	s.UpdatedAt = time.Now()

	query := `
		UPDATE subscription SET
			tier = :tier,
			premium_paid = :premium_paid,
			daily_rate = :daily_rate,
			coverage_amount = :coverage_amount,
			start_date = :start_date,
			end_date = :end_date,
			status = :status,
			cancellation_date = :cancellation_date,
			refund_amount = :refund_amount,
			updated_at = :updated_at
		WHERE id = :id
	`

	result, err := sqlx.NamedExecContext(ctx, r.db, query, s)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *SubscriptionRepository) CountActiveByPolicy(ctx context.Context, policyID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM subscription WHERE policy_id = $1 AND status = 'active'`

	err := sqlx.GetContext(ctx, r.db, &count, query, policyID)
	if err != nil {
		return 0, fmt.Errorf("failed to count active subscriptions: %w", err)
	}

	return count, nil
}

func (r *SubscriptionRepository) ListDueForExpiry(ctx context.Context, now int64, limit int) ([]models.Subscription, error) {
	var subs []models.Subscription
	query := `SELECT` + subscriptionColumns + `
		FROM subscription
		WHERE status = 'active' AND end_date < $1
		ORDER BY end_date ASC
		LIMIT $2
	`

	err := sqlx.SelectContext(ctx, r.db, &subs, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions due for expiry: %w", err)
	}

	return subs, nil
}

var _ store.SubscriptionRepository = (*SubscriptionRepository)(nil)
