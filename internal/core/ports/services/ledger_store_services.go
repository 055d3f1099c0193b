package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/questforge/treasury/internal/core/domain"
)

// LedgerStoreSvcFacade fronts the durable ledger repository. It adds the
// in-memory account-existence cache, seeds new accounts from the currency
// registry, applies the transaction-logging toggle and repairs the balance
// cache from durable state.
type LedgerStoreSvcFacade interface {
	// HasAccount reports account existence, amortised O(1) via the
	// existence cache with a durable lookup on miss.
	HasAccount(ctx context.Context, id uuid.UUID) (bool, error)

	// CreateAccount inserts the account plus one balance row per registered
	// currency, atomically. Returns apperrors.ErrDuplicate if present.
	CreateAccount(ctx context.Context, id uuid.UUID, displayName string) error

	// FindAccount returns the durable account row or apperrors.ErrNotFound.
	FindAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// GetBalance is the durable read; 0.0 when no row exists.
	GetBalance(ctx context.Context, id uuid.UUID, currencyID string) (float64, error)

	// ListBalances returns every durable balance row for the account.
	ListBalances(ctx context.Context, id uuid.UUID) ([]domain.Balance, error)

	// Deposit, Withdraw and SetBalance mutate one balance row and append an
	// audit record in a single durable transaction, returning the new
	// balance. Withdraw returns apperrors.ErrInsufficientFunds when short.
	Deposit(ctx context.Context, id uuid.UUID, currencyID string, amount float64, description string) (float64, error)
	Withdraw(ctx context.Context, id uuid.UUID, currencyID string, amount float64, description string) (float64, error)
	SetBalance(ctx context.Context, id uuid.UUID, currencyID string, amount float64, description string) (float64, error)

	// TopBalances ranks accounts by balance, descending.
	TopBalances(ctx context.Context, currencyID string, limit int) ([]domain.RankedBalance, error)

	// ListTransactions returns audit records for the account, newest first.
	ListTransactions(ctx context.Context, id uuid.UUID, limit int) ([]domain.TransactionRecord, error)

	// SyncToCache loads all durable balances for the account and overwrites
	// the cached values, recovering state the cache lost across restarts.
	SyncToCache(ctx context.Context, id uuid.UUID) error
}
