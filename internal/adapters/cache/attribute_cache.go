// Package cache provides the in-memory, per-entity balance store that sits
// in front of the durable ledger. It doubles as the slot provisioner the
// currency registry uses to bind currencies to storage columns.
package cache

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/questforge/treasury/internal/apperrors"
	"github.com/questforge/treasury/internal/core/domain"
	portsrepo "github.com/questforge/treasury/internal/core/ports/repositories"
)

type slot struct {
	id              string
	startingBalance float64
}

// entry amounts are guarded by their own mutex so concurrent operations on
// different (entity, currency) pairs never contend.
type entry struct {
	mu     sync.Mutex
	amount float64
}

// AttributeCache implements repositories.BalanceCache.
type AttributeCache struct {
	mu      sync.RWMutex
	slots   map[string]*slot                   // currency id -> slot
	entries map[uuid.UUID]map[string]*entry    // entity -> currency id -> entry
}

var _ portsrepo.BalanceCache = (*AttributeCache)(nil)

// NewAttributeCache creates an empty cache with no slots provisioned.
func NewAttributeCache() *AttributeCache {
	return &AttributeCache{
		slots:   make(map[string]*slot),
		entries: make(map[uuid.UUID]map[string]*entry),
	}
}

// ProvisionSlot binds a storage slot to the currency.
func (c *AttributeCache) ProvisionSlot(cur domain.Currency) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.slots[cur.ID]; exists {
		return fmt.Errorf("slot for currency %s: %w", cur.ID, apperrors.ErrDuplicate)
	}
	c.slots[cur.ID] = &slot{id: cur.SlotID, startingBalance: cur.StartingBalance}
	return nil
}

// ReleaseSlot removes the slot and every cache entry stored under it.
func (c *AttributeCache) ReleaseSlot(currencyID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.slots[currencyID]; !exists {
		return fmt.Errorf("slot for currency %s: %w", currencyID, apperrors.ErrUnknownCurrency)
	}
	delete(c.slots, currencyID)
	for _, perEntity := range c.entries {
		delete(perEntity, currencyID)
	}
	return nil
}

// Initialize seeds one entry per provisioned slot for the entity. Existing
// entries are kept, so the call is idempotent per currency.
func (c *AttributeCache) Initialize(entity uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	perEntity, ok := c.entries[entity]
	if !ok {
		perEntity = make(map[string]*entry, len(c.slots))
		c.entries[entity] = perEntity
	}
	for currencyID, s := range c.slots {
		if _, exists := perEntity[currencyID]; !exists {
			perEntity[currencyID] = &entry{amount: s.startingBalance}
		}
	}
}

func (c *AttributeCache) lookup(entity uuid.UUID, currencyID string) *entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.slots[currencyID]; !ok {
		return nil
	}
	return c.entries[entity][currencyID]
}

// materialize returns the entry, creating it at 0 when the slot exists.
func (c *AttributeCache) materialize(entity uuid.UUID, currencyID string) *entry {
	if e := c.lookup(entity, currencyID); e != nil {
		return e
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.slots[currencyID]; !ok {
		return nil
	}
	perEntity, ok := c.entries[entity]
	if !ok {
		perEntity = make(map[string]*entry)
		c.entries[entity] = perEntity
	}
	e, ok := perEntity[currencyID]
	if !ok {
		e = &entry{}
		perEntity[currencyID] = e
	}
	return e
}

// Get returns the cached balance, or 0 on a miss.
func (c *AttributeCache) Get(entity uuid.UUID, currencyID string) float64 {
	e := c.lookup(entity, currencyID)
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.amount
}

// Has reports whether a live entry exists for (entity, currency).
func (c *AttributeCache) Has(entity uuid.UUID, currencyID string) bool {
	return c.lookup(entity, currencyID) != nil
}

// Set overwrites the cached balance, clamping negatives to 0. Unknown
// currencies are ignored.
func (c *AttributeCache) Set(entity uuid.UUID, currencyID string, amount float64) {
	e := c.materialize(entity, currencyID)
	if e == nil {
		return
	}
	if amount < 0 {
		amount = 0
	}
	e.mu.Lock()
	e.amount = amount
	e.mu.Unlock()
}

// Deposit adds amount to the entry.
func (c *AttributeCache) Deposit(entity uuid.UUID, currencyID string, amount float64) bool {
	if amount <= 0 {
		return false
	}
	e := c.materialize(entity, currencyID)
	if e == nil {
		return false
	}
	e.mu.Lock()
	e.amount += amount
	e.mu.Unlock()
	return true
}

// Withdraw subtracts amount, refusing to go below zero.
func (c *AttributeCache) Withdraw(entity uuid.UUID, currencyID string, amount float64) bool {
	if amount <= 0 {
		return false
	}
	e := c.lookup(entity, currencyID)
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if amount > e.amount {
		return false
	}
	e.amount -= amount
	return true
}

// Evict drops every entry for the entity.
func (c *AttributeCache) Evict(entity uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, entity)
}
