package services

import "github.com/questforge/treasury/internal/core/domain"

// CurrencyRegistrySvcFacade owns currency metadata and the lifecycle of the
// storage slots behind them. Mutations are linearizable; reads never fail.
type CurrencyRegistrySvcFacade interface {
	// Register stores the currency and provisions its storage slot. The
	// first registered currency becomes the default unless one is already
	// set. Returns apperrors.ErrDuplicate for a known id.
	Register(c domain.Currency) error

	// Unregister removes the currency and releases its slot. Unregistering
	// the current default clears the default; callers must pick a new one
	// explicitly. Unknown ids return apperrors.ErrUnknownCurrency.
	Unregister(id string) error

	// SetDefault marks a registered currency as the default. Returns
	// apperrors.ErrUnknownCurrency for unknown ids.
	SetDefault(id string) error

	// Get returns the currency metadata, if registered.
	Get(id string) (domain.Currency, bool)

	// List returns a snapshot of all registered currencies.
	List() []domain.Currency

	// HasAny reports whether at least one currency is registered.
	HasAny() bool

	// DefaultID returns the default currency id, or "" when none is set.
	DefaultID() string
}
