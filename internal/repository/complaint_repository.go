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

type ComplaintRepository struct {
	db sqlx.ExtContext
}

func NewComplaintRepository(db *sqlx.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

const complaintColumns = `
	id, order_ref, seller_id, buyer_id, product_name, price, quantity,
	dispatch_date, complaint_date, reason, description, status,
	cancellation_reason, cancellation_date, created_at, updated_at`

func (r *ComplaintRepository) Create(ctx context.Context, c *models.Complaint) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.UpdatedAt = time.Now()

	query := `
		INSERT INTO complaint (
			id, order_ref, seller_id, buyer_id, product_name, price, quantity,
			dispatch_date, complaint_date, reason, description, status,
			cancellation_reason, cancellation_date, created_at, updated_at
		) VALUES (
			:id, :order_ref, :seller_id, :buyer_id, :product_name, :price, :quantity,
			:dispatch_date, :complaint_date, :reason, :description, :status,
			:cancellation_reason, :cancellation_date, :created_at, :updated_at
		)
	`

	_, err := sqlx.NamedExecContext(ctx, r.db, query, c)
	if err != nil {
		return fmt.Errorf("failed to create complaint: %w", err)
	}
	return nil
}

func (r *ComplaintRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	var complaint models.Complaint
	query := `SELECT` + complaintColumns + ` FROM complaint WHERE id = $1`

	err := sqlx.GetContext(ctx, r.db, &complaint, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get complaint by id: %w", err)
	}

	return &complaint, nil
}

func (r *ComplaintRepository) Update(ctx context.Context, c *models.Complaint) error {
	c.UpdatedAt = time.Now()

	query := `
		UPDATE complaint SET
			status = :status,
			cancellation_reason = :cancellation_reason,
			cancellation_date = :cancellation_date,
			updated_at = :updated_at
		WHERE id = :id
	`

	result, err := sqlx.NamedExecContext(ctx, r.db, query, c)
	if err != nil {
		return fmt.Errorf("failed to update complaint: %w", err)
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

func (r *ComplaintRepository) ListBySeller(ctx context.Context, sellerID string) ([]models.Complaint, error) {
	var complaints []models.Complaint
	query := `SELECT` + complaintColumns + `
		FROM complaint
		WHERE seller_id = $1
		ORDER BY created_at DESC
	`

	err := sqlx.SelectContext(ctx, r.db, &complaints, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints by seller: %w", err)
	}

	return complaints, nil
}

func (r *ComplaintRepository) ListByBuyer(ctx context.Context, buyerID string) ([]models.Complaint, error) {
	var complaints []models.Complaint
	query := `SELECT` + complaintColumns + `
		FROM complaint
		WHERE buyer_id = $1
		ORDER BY created_at DESC
	`

	err := sqlx.SelectContext(ctx, r.db, &complaints, query, buyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints by buyer: %w", err)
	}

	return complaints, nil
}

var _ store.ComplaintRepository = (*ComplaintRepository)(nil)
