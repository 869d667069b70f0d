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

type ClaimRepository struct {
	db sqlx.ExtContext
}

func NewClaimRepository(db *sqlx.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

const claimColumns = `
	id, complaint_id, subscription_id, policy_id, agent_id, seller_id, buyer_id,
	claim_amount, coverage_amount, status, agent_notes, reviewed_by, reviewed_at,
	settled_at, created_at, updated_at`

func (r *ClaimRepository) Create(ctx context.Context, c *models.Claim) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.UpdatedAt = time.Now()

	query := `
		INSERT INTO claim (
			id, complaint_id, subscription_id, policy_id, agent_id, seller_id, buyer_id,
			claim_amount, coverage_amount, status, agent_notes, reviewed_by, reviewed_at,
			settled_at, created_at, updated_at
		) VALUES (
			:id, :complaint_id, :subscription_id, :policy_id, :agent_id, :seller_id, :buyer_id,
			:claim_amount, :coverage_amount, :status, :agent_notes, :reviewed_by, :reviewed_at,
			:settled_at, :created_at, :updated_at
		)
	`

	_, err := sqlx.NamedExecContext(ctx, r.db, query, c)
	if err != nil {
		return fmt.Errorf("failed to create claim: %w", err)
	}
	return nil
}

func (r *ClaimRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	var claim models.Claim
	query := `SELECT` + claimColumns + ` FROM claim WHERE id = $1`
	// Settlement runs inside a transaction; lock the row so two concurrent
	// settle calls cannot both observe a non-terminal status.
	if _, inTx := r.db.(*sqlx.Tx); inTx {
		query += ` FOR UPDATE`
	}

	err := sqlx.GetContext(ctx, r.db, &claim, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get claim by id: %w", err)
	}

	return &claim, nil
}

func (r *ClaimRepository) Update(ctx context.Context, c *models.Claim) error {
	c.UpdatedAt = time.Now()

	query := `
		UPDATE claim SET
			status = :status,
			agent_notes = :agent_notes,
			reviewed_by = :reviewed_by,
			reviewed_at = :reviewed_at,
			settled_at = :settled_at,
			updated_at = :updated_at
		WHERE id = :id
	`

	result, err := sqlx.NamedExecContext(ctx, r.db, query, c)
	if err != nil {
		return fmt.Errorf("failed to update claim: %w", err)
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

func (r *ClaimRepository) ListByAgent(ctx context.Context, agentID string) ([]models.Claim, error) {
	var claims []models.Claim
	query := `SELECT` + claimColumns + `
		FROM claim
		WHERE agent_id = $1
		ORDER BY created_at DESC
	`

	err := sqlx.SelectContext(ctx, r.db, &claims, query, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims by agent: %w", err)
	}

	return claims, nil
}

func (r *ClaimRepository) ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]models.Claim, error) {
	var claims []models.Claim
	query := `SELECT` + claimColumns + `
		FROM claim
		WHERE subscription_id = $1
		ORDER BY created_at DESC
	`

	err := sqlx.SelectContext(ctx, r.db, &claims, query, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims by subscription: %w", err)
	}

	return claims, nil
}

func (r *ClaimRepository) CountOpenBySubscription(ctx context.Context, subscriptionID uuid.UUID) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM claim
		WHERE subscription_id = $1 AND status IN ('pending', 'approved')
	`

	err := sqlx.GetContext(ctx, r.db, &count, query, subscriptionID)
	if err != nil {
		return 0, fmt.Errorf("failed to count open claims: %w", err)
	}

	return count, nil
}

var _ store.ClaimRepository = (*ClaimRepository)(nil)
