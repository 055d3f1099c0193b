package repositories

import (
	"github.com/google/uuid"
	"github.com/questforge/treasury/internal/core/domain"
)

// BalanceCache is the fast per-entity balance store sitting in front of the
// durable ledger. Cache content is expendable: the durable store is the
// source of truth and repopulates the cache on entity join.
type BalanceCache interface {
	SlotProvisioner

	// Initialize creates, for every provisioned slot, a cache entry for the
	// entity seeded at the currency's starting balance. Entries that already
	// exist are left alone, so re-initialising is a per-currency no-op.
	Initialize(entity uuid.UUID)

	// Get returns the cached balance, or 0 when the slot or entry is missing.
	// A miss is not an error; it signals the entity is not yet materialised.
	Get(entity uuid.UUID, currencyID string) float64

	// Has reports whether a live cache entry exists for (entity, currency).
	Has(entity uuid.UUID, currencyID string) bool

	// Set overwrites the cached balance, clamping negatives to 0.
	Set(entity uuid.UUID, currencyID string, amount float64)

	// Deposit adds amount to the entry. Returns false when amount <= 0 or
	// the currency has no slot.
	Deposit(entity uuid.UUID, currencyID string, amount float64) bool

	// Withdraw subtracts amount. Returns false when amount <= 0, the slot is
	// missing, or the entry holds less than amount. This is the gate that
	// keeps cached balances non-negative.
	Withdraw(entity uuid.UUID, currencyID string, amount float64) bool

	// Evict drops every entry for the entity (entity left the world).
	Evict(entity uuid.UUID)
}

// SlotProvisioner creates and removes per-currency storage slots. The
// currency registry depends on this interface rather than on a concrete
// cache, so slot creation stays free of storage-specific workarounds.
type SlotProvisioner interface {
	// ProvisionSlot binds a storage slot to the currency. Returns
	// apperrors.ErrDuplicate when the currency already has one.
	ProvisionSlot(c domain.Currency) error

	// ReleaseSlot removes the currency's slot and every entry under it.
	ReleaseSlot(currencyID string) error
}
