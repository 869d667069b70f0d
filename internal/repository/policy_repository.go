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

type PolicyRepository struct {
	db sqlx.ExtContext
}

func NewPolicyRepository(db *sqlx.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

func (r *PolicyRepository) Create(ctx context.Context, p *models.Policy) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = time.Now()

	query := `
		INSERT INTO policy (
			id, agent_id, name, type,
			normal_daily_rate, normal_coverage, premium_daily_rate, premium_coverage,
			min_duration_days, max_duration_months, status, created_at, updated_at
		) VALUES (
			:id, :agent_id, :name, :type,
			:normal_daily_rate, :normal_coverage, :premium_daily_rate, :premium_coverage,
			:min_duration_days, :max_duration_months, :status, :created_at, :updated_at
		)
	`

	_, err := sqlx.NamedExecContext(ctx, r.db, query, p)
	if err != nil {
		return fmt.Errorf("failed to create policy: %w", err)
	}
	return nil
}

func (r *PolicyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Policy, error) {
	var policy models.Policy
	query := `
		SELECT id, agent_id, name, type,
		       normal_daily_rate, normal_coverage, premium_daily_rate, premium_coverage,
		       min_duration_days, max_duration_months, status, created_at, updated_at
		FROM policy
		WHERE id = $1
	`

	err := sqlx.GetContext(ctx, r.db, &policy, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get policy by id: %w", err)
	}

	return &policy, nil
}

func (r *PolicyRepository) ListByAgent(ctx context.Context, agentID string) ([]models.Policy, error) {
	var policies []models.Policy
	query := `
		SELECT id, agent_id, name, type,
		       normal_daily_rate, normal_coverage, premium_daily_rate, premium_coverage,
		       min_duration_days, max_duration_months, status, created_at, updated_at
		FROM policy
		WHERE agent_id = $1
		ORDER BY created_at DESC
	`

	err := sqlx.SelectContext(ctx, r.db, &policies, query, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list policies by agent: %w", err)
	}

	return policies, nil
}

func (r *PolicyRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PolicyStatus) error {
	query := `UPDATE policy SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update policy status: %w", err)
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

func (r *PolicyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM policy WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete policy: %w", err)
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

var _ store.PolicyRepository = (*PolicyRepository)(nil)
