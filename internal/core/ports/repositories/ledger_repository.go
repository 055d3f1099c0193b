package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/questforge/treasury/internal/core/domain"
)

// LedgerRepository is the durable source of truth for accounts, balances and
// the append-only transaction log. Every mutating method is a single durable
// transaction: on any failure after validation nothing is applied.
//
// Implementations return apperrors sentinels for business conditions
// (ErrNotFound, ErrDuplicate, ErrInsufficientFunds) and wrap infrastructure
// failures with apperrors.ErrStorage.
type LedgerRepository interface {
	// HasAccount reports whether an account row exists.
	HasAccount(ctx context.Context, id uuid.UUID) (bool, error)

	// FindAccount returns the account row or apperrors.ErrNotFound.
	FindAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// CreateAccount inserts the account row plus the given seed balance rows
	// atomically. Returns apperrors.ErrDuplicate if the account exists.
	CreateAccount(ctx context.Context, account domain.Account, seeds []domain.Balance) error

	// GetBalance returns the durable balance, or 0 when no row exists.
	GetBalance(ctx context.Context, id uuid.UUID, currencyID string) (float64, error)

	// ListBalances returns every balance row for the account.
	ListBalances(ctx context.Context, id uuid.UUID) ([]domain.Balance, error)

	// EnsureBalanceRow lazily creates the (account, currency) row seeded at
	// starting, for currencies registered after the account was created.
	// Existing rows are left untouched.
	EnsureBalanceRow(ctx context.Context, id uuid.UUID, currencyID string, starting float64) error

	// Deposit adds amount to the balance row and, when logTxn is set, appends
	// a transaction record in the same durable transaction. Returns the new
	// balance.
	Deposit(ctx context.Context, id uuid.UUID, currencyID string, amount float64, description string, logTxn bool) (float64, error)

	// Withdraw subtracts amount, guarded against overdraw at the durable
	// layer so concurrent withdrawals serialise on the balance row. Returns
	// apperrors.ErrInsufficientFunds when the balance is short.
	Withdraw(ctx context.Context, id uuid.UUID, currencyID string, amount float64, description string, logTxn bool) (float64, error)

	// SetBalance overwrites the balance row with amount.
	SetBalance(ctx context.Context, id uuid.UUID, currencyID string, amount float64, description string, logTxn bool) (float64, error)

	// TopBalances returns up to limit accounts ranked by balance, descending.
	TopBalances(ctx context.Context, currencyID string, limit int) ([]domain.RankedBalance, error)

	// ListTransactions returns up to limit audit records for the account,
	// newest first.
	ListTransactions(ctx context.Context, id uuid.UUID, limit int) ([]domain.TransactionRecord, error)
}
