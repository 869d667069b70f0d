package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// LEDGER (PER-ACCOUNT BALANCE + IMMUTABLE TRANSACTION LOG)
// ============================================================================

// Account holds one actor's balance. The balance column is a running total
// and must always equal the sum of the account's transaction history; only
// the ledger service writes it.
type Account struct {
	UserID    string    `json:"user_id" db:"user_id"`
	Balance   float64   `json:"balance" db:"balance"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Transaction is an immutable ledger entry. Amount is signed: positive for
// credits, negative for debits. BalanceAfter records the account balance
// that resulted from applying this entry.
type Transaction struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	UserID       string          `json:"user_id" db:"user_id"`
	Type         TransactionType `json:"type" db:"type"`
	Amount       float64         `json:"amount" db:"amount"`
	Reason       string          `json:"reason" db:"reason"`
	Counterparty *string         `json:"counterparty,omitempty" db:"counterparty"`
	BalanceAfter float64         `json:"balance_after" db:"balance_after"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}
