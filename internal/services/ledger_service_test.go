package services

import (
	"context"
	"sync"
	"testing"

	"insurance-service/internal/apperrors"
	"insurance-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredit_CreatesAccountOnFirstUse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	txn, err := env.ledger.Credit(ctx, "user-1", 100, models.ReasonAccountTopUp)

	require.NoError(t, err)
	assert.Equal(t, models.TransactionCredit, txn.Type)
	assert.Equal(t, 100.0, txn.Amount)
	assert.Equal(t, 100.0, txn.BalanceAfter)
	assert.Equal(t, 100.0, env.balance(t, "user-1"))
}

func TestCredit_RejectsNonPositiveAmount(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.ledger.Credit(context.Background(), "user-1", 0, models.ReasonAccountTopUp)

	assert.Equal(t, apperrors.CodeValidationFailed, apperrors.CodeOf(err))
}

func TestDebit_InsufficientFunds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.fund(t, "user-1", 30)

	_, err := env.ledger.Debit(ctx, "user-1", 50, models.ReasonPremiumPayment)

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInsufficientFunds, apperrors.CodeOf(err))
	assert.Equal(t, 30.0, env.balance(t, "user-1"), "failed debit must not touch the balance")
}

func TestDebit_MissingAccountReadsAsZero(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.ledger.Debit(context.Background(), "ghost", 10, models.ReasonPremiumPayment)

	assert.Equal(t, apperrors.CodeInsufficientFunds, apperrors.CodeOf(err))
}

func TestTransfer_MovesFundsAtomically(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.fund(t, "buyer-1", 200)

	debitTxn, creditTxn, err := env.ledger.Transfer(ctx, "buyer-1", "agent-1", 150, models.ReasonPremiumPayment)

	require.NoError(t, err)
	assert.Equal(t, 50.0, env.balance(t, "buyer-1"))
	assert.Equal(t, 150.0, env.balance(t, "agent-1"))

	assert.Equal(t, models.TransactionDebit, debitTxn.Type)
	assert.Equal(t, -150.0, debitTxn.Amount)
	require.NotNil(t, debitTxn.Counterparty)
	assert.Equal(t, "agent-1", *debitTxn.Counterparty)

	assert.Equal(t, models.TransactionCredit, creditTxn.Type)
	assert.Equal(t, 150.0, creditTxn.Amount)
	require.NotNil(t, creditTxn.Counterparty)
	assert.Equal(t, "buyer-1", *creditTxn.Counterparty)
}

func TestTransfer_SameAccountRejected(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, "user-1", 100)

	_, _, err := env.ledger.Transfer(context.Background(), "user-1", "user-1", 10, models.ReasonPremiumPayment)

	assert.Equal(t, apperrors.CodeValidationFailed, apperrors.CodeOf(err))
}

func TestTransfer_FailureLeavesNoTrace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.fund(t, "buyer-1", 10)

	_, _, err := env.ledger.Transfer(ctx, "buyer-1", "agent-1", 50, models.ReasonPremiumPayment)

	require.Error(t, err)
	assert.Equal(t, 10.0, env.balance(t, "buyer-1"))
	assert.Equal(t, 0.0, env.balance(t, "agent-1"))

	history, err := env.ledger.GetHistory(ctx, "agent-1")
	require.NoError(t, err)
	assert.Empty(t, history, "the receiving side of a failed transfer records nothing")
}

func TestGetHistory_NewestFirstAndReproducible(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.fund(t, "user-1", 100)
	_, err := env.ledger.Debit(ctx, "user-1", 40, models.ReasonPremiumPayment)
	require.NoError(t, err)
	env.fund(t, "user-1", 25)

	history, err := env.ledger.GetHistory(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, history, 3)

	assert.Equal(t, 25.0, history[0].Amount, "newest first")
	assert.Equal(t, -40.0, history[1].Amount)
	assert.Equal(t, 100.0, history[2].Amount)

	// Replaying the signed amounts reproduces the stored balance.
	var replayed float64
	for i := len(history) - 1; i >= 0; i-- {
		replayed += history[i].Amount
		assert.Equal(t, history[i].BalanceAfter, replayed)
	}
	assert.Equal(t, replayed, env.balance(t, "user-1"))
}

func TestConcurrentDebits_NeverOverdraw(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.fund(t, "user-1", 100)

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.ledger.Debit(ctx, "user-1", 30, models.ReasonPremiumPayment)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		} else {
			assert.Equal(t, apperrors.CodeInsufficientFunds, apperrors.CodeOf(err))
		}
	}

	assert.Equal(t, 3, successes, "only 3 debits of 30 fit in a balance of 100")
	assert.Equal(t, 10.0, env.balance(t, "user-1"))
}
