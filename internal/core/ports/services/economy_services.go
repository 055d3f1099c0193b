package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/questforge/treasury/internal/core/domain"
)

// EconomySvcFacade is the contract other modules consume. Mutating
// operations return a structured domain.Result instead of an error for
// business-rule failures; errors are reserved for infrastructure trouble.
//
// Everywhere a currencyID parameter appears, the empty string resolves to
// the registry's default currency.
type EconomySvcFacade interface {
	// GetCurrencies returns the ids of all registered currencies.
	GetCurrencies() []string

	// GetDefaultCurrency returns the default currency id, or "".
	GetDefaultCurrency() string

	// GetCurrency returns the currency metadata, if registered.
	GetCurrency(id string) (domain.Currency, bool)

	// HasAccount reports whether the entity has a durable account.
	HasAccount(ctx context.Context, entity uuid.UUID) (bool, error)

	// CreateAccount creates a durable account seeded at each currency's
	// starting balance. Returns false when the account already existed.
	CreateAccount(ctx context.Context, entity uuid.UUID, displayName string) (bool, error)

	// GetBalance prefers the cache for live entities and falls back to the
	// durable store for anyone else.
	GetBalance(ctx context.Context, entity uuid.UUID, currencyID string) (float64, error)

	// Has reports whether the entity can cover amount.
	Has(ctx context.Context, entity uuid.UUID, currencyID string, amount float64) (bool, error)

	// Deposit credits the entity, auto-creating the account on first use.
	Deposit(ctx context.Context, entity uuid.UUID, currencyID string, amount float64) domain.Result

	// Withdraw debits the entity. Fails against unknown accounts and on
	// insufficient funds.
	Withdraw(ctx context.Context, entity uuid.UUID, currencyID string, amount float64) domain.Result

	// SetBalance overwrites the entity's balance. Fails against unknown
	// accounts and for negative amounts.
	SetBalance(ctx context.Context, entity uuid.UUID, currencyID string, amount float64) domain.Result

	// Transfer moves amount between entities as withdraw-then-deposit with a
	// compensating deposit when the second leg fails. Self-transfers are
	// rejected before any mutation.
	Transfer(ctx context.Context, from, to uuid.UUID, currencyID string, amount float64) domain.Result

	// Bank operations are an optional part of the contract surface; the
	// default provider reports NOT_IMPLEMENTED for all three.
	BankDeposit(ctx context.Context, bank string, currencyID string, amount float64) domain.Result
	BankWithdraw(ctx context.Context, bank string, currencyID string, amount float64) domain.Result
	BankBalance(ctx context.Context, bank string, currencyID string) domain.Result
}
