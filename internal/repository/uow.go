package repository

import (
	"context"
	"fmt"

	"insurance-service/internal/store"

	"github.com/jmoiron/sqlx"
)

// SqlxUnitOfWork implements store.UnitOfWork over a Postgres connection.
// Repositories handed to fn are bound to one sqlx transaction; any error
// from fn rolls the whole transaction back.
type SqlxUnitOfWork struct {
	db *sqlx.DB
}

func NewSqlxUnitOfWork(db *sqlx.DB) *SqlxUnitOfWork {
	return &SqlxUnitOfWork{db: db}
}

func (u *SqlxUnitOfWork) WithinTx(ctx context.Context, fn func(r store.Repos) error) error {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	r := store.Repos{
		Accounts:      &AccountRepository{db: tx},
		Policies:      &PolicyRepository{db: tx},
		Subscriptions: &SubscriptionRepository{db: tx},
		Complaints:    &ComplaintRepository{db: tx},
		Claims:        &ClaimRepository{db: tx},
	}

	if err := fn(r); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Repos returns repositories bound to the plain connection, for single-read
// paths that do not need a transaction scope.
func (u *SqlxUnitOfWork) Repos() store.Repos {
	return store.Repos{
		Accounts:      &AccountRepository{db: u.db},
		Policies:      &PolicyRepository{db: u.db},
		Subscriptions: &SubscriptionRepository{db: u.db},
		Complaints:    &ComplaintRepository{db: u.db},
		Claims:        &ClaimRepository{db: u.db},
	}
}

var _ store.UnitOfWork = (*SqlxUnitOfWork)(nil)
