package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"insurance-service/internal/apperrors"
	"insurance-service/internal/models"
	"insurance-service/internal/store"
)

// LedgerService owns all balance mutations. Nothing in the engine writes a
// balance field directly; premiums, refunds and payouts all route through
// Credit/Debit/Transfer, which is what keeps every balance reproducible
// from its transaction history.
type LedgerService struct {
	uow store.UnitOfWork
}

func NewLedgerService(uow store.UnitOfWork) *LedgerService {
	return &LedgerService{uow: uow}
}

// Credit adds funds to an account, creating it on first use.
func (s *LedgerService) Credit(ctx context.Context, userID string, amount float64, reason string) (*models.Transaction, error) {
	var txn *models.Transaction
	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		var err error
		txn, err = applyCredit(ctx, r, userID, amount, reason, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Debit removes funds from an account; fails with INSUFFICIENT_FUNDS when
// the balance does not cover the amount.
func (s *LedgerService) Debit(ctx context.Context, userID string, amount float64, reason string) (*models.Transaction, error) {
	var txn *models.Transaction
	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		var err error
		txn, err = applyDebit(ctx, r, userID, amount, reason, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Transfer moves funds between two accounts as one atomic unit: if the
// debit fails no credit occurs, and a crash mid-transfer rolls both back.
func (s *LedgerService) Transfer(ctx context.Context, fromID, toID string, amount float64, reason string) (*models.Transaction, *models.Transaction, error) {
	var debitTxn, creditTxn *models.Transaction
	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		var err error
		debitTxn, creditTxn, err = applyTransfer(ctx, r, fromID, toID, amount, reason)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return debitTxn, creditTxn, nil
}

// GetBalance returns the account balance; an account that has never been
// credited reads as zero.
func (s *LedgerService) GetBalance(ctx context.Context, userID string) (float64, error) {
	var balance float64
	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		account, err := r.Accounts.Get(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			balance = 0
			return nil
		}
		if err != nil {
			return err
		}
		balance = account.Balance
		return nil
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// GetHistory returns the account's transaction log, newest first.
func (s *LedgerService) GetHistory(ctx context.Context, userID string) ([]models.Transaction, error) {
	var history []models.Transaction
	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		var err error
		history, err = r.Accounts.ListTransactions(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}

// ============================================================================
// TRANSACTION-SCOPED HELPERS
//
// The subscription and claims services call these inside their own
// UnitOfWork transactions so that the ledger mutation commits or rolls back
// together with the state transition it pays for.
// ============================================================================

func applyCredit(ctx context.Context, r store.Repos, userID string, amount float64, reason string, counterparty *string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.Validation("credit amount must be greater than 0, got %.2f", amount)
	}

	account, err := r.Accounts.GetForUpdate(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		account = &models.Account{UserID: userID}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", userID, err)
	}

	account.Balance = round2(account.Balance + amount)
	if err := r.Accounts.Save(ctx, account); err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		UserID:       userID,
		Type:         models.TransactionCredit,
		Amount:       amount,
		Reason:       reason,
		Counterparty: counterparty,
		BalanceAfter: account.Balance,
	}
	if err := r.Accounts.AppendTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

func applyDebit(ctx context.Context, r store.Repos, userID string, amount float64, reason string, counterparty *string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.Validation("debit amount must be greater than 0, got %.2f", amount)
	}

	account, err := r.Accounts.GetForUpdate(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.InsufficientFunds(0, amount)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", userID, err)
	}

	if account.Balance < amount {
		return nil, apperrors.InsufficientFunds(account.Balance, amount)
	}

	account.Balance = round2(account.Balance - amount)
	if account.Balance < 0 {
		return nil, apperrors.LedgerInvariant("debit of %.2f would leave account %s at %.2f", amount, userID, account.Balance)
	}
	if err := r.Accounts.Save(ctx, account); err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		UserID:       userID,
		Type:         models.TransactionDebit,
		Amount:       -amount,
		Reason:       reason,
		Counterparty: counterparty,
		BalanceAfter: account.Balance,
	}
	if err := r.Accounts.AppendTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// applyTransfer debits fromID and credits toID within the caller's
// transaction. Accounts are locked in sorted order to keep concurrent
// transfers deadlock-free.
func applyTransfer(ctx context.Context, r store.Repos, fromID, toID string, amount float64, reason string) (*models.Transaction, *models.Transaction, error) {
	if fromID == toID {
		return nil, nil, apperrors.Validation("transfer requires two distinct accounts")
	}

	ids := []string{fromID, toID}
	sort.Strings(ids)
	for _, id := range ids {
		if _, err := r.Accounts.GetForUpdate(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, nil, fmt.Errorf("failed to lock account %s: %w", id, err)
		}
	}

	debitTxn, err := applyDebit(ctx, r, fromID, amount, reason, &toID)
	if err != nil {
		return nil, nil, err
	}
	creditTxn, err := applyCredit(ctx, r, toID, amount, reason, &fromID)
	if err != nil {
		return nil, nil, err
	}
	return debitTxn, creditTxn, nil
}
