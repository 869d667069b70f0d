package memory

import (
	"context"
	"errors"
	"testing"

	"insurance-service/internal/models"
	"insurance-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinTx_RollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(r store.Repos) error {
		if err := r.Accounts.Save(ctx, &models.Account{UserID: "user-1", Balance: 100}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = s.WithinTx(ctx, func(r store.Repos) error {
		_, err := r.Accounts.Get(ctx, "user-1")
		return err
	})
	assert.ErrorIs(t, err, store.ErrNotFound, "the aborted write must not be visible")
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.WithinTx(ctx, func(r store.Repos) error {
		return r.Accounts.Save(ctx, &models.Account{UserID: "user-1", Balance: 42})
	})
	require.NoError(t, err)

	var balance float64
	err = s.WithinTx(ctx, func(r store.Repos) error {
		account, err := r.Accounts.Get(ctx, "user-1")
		if err != nil {
			return err
		}
		balance = account.Balance
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42.0, balance)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.WithinTx(ctx, func(r store.Repos) error {
		return r.Accounts.Save(ctx, &models.Account{UserID: "user-1", Balance: 10})
	}))

	require.NoError(t, s.WithinTx(ctx, func(r store.Repos) error {
		account, err := r.Accounts.Get(ctx, "user-1")
		if err != nil {
			return err
		}
		account.Balance = 9999 // mutate the copy only
		return nil
	}))

	require.NoError(t, s.WithinTx(ctx, func(r store.Repos) error {
		account, err := r.Accounts.Get(ctx, "user-1")
		if err != nil {
			return err
		}
		assert.Equal(t, 10.0, account.Balance)
		return nil
	}))
}

func TestListTransactions_NewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.WithinTx(ctx, func(r store.Repos) error {
		for _, amount := range []float64{10, 20, 30} {
			if err := r.Accounts.AppendTransaction(ctx, &models.Transaction{
				UserID: "user-1",
				Type:   models.TransactionCredit,
				Amount: amount,
			}); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, s.WithinTx(ctx, func(r store.Repos) error {
		txns, err := r.Accounts.ListTransactions(ctx, "user-1")
		if err != nil {
			return err
		}
		require.Len(t, txns, 3)
		assert.Equal(t, 30.0, txns[0].Amount)
		assert.Equal(t, 10.0, txns[2].Amount)
		return nil
	}))
}
