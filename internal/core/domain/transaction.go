package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType identifies the kind of balance mutation a record describes.
type TransactionType string

const (
	TransactionDeposit  TransactionType = "DEPOSIT"
	TransactionWithdraw TransactionType = "WITHDRAW"
	TransactionSet      TransactionType = "SET"
)

// TransactionRecord is one append-only audit log entry. Records are
// write-once; nothing in the system mutates them after commit.
type TransactionRecord struct {
	ID           int64           `json:"id"`
	UUID         uuid.UUID       `json:"uuid"`
	CurrencyID   string          `json:"currencyId"`
	Type         TransactionType `json:"type"`
	Amount       float64         `json:"amount"`
	BalanceAfter float64         `json:"balanceAfter"`
	Description  string          `json:"description"`
	Timestamp    time.Time       `json:"timestamp"`
}
