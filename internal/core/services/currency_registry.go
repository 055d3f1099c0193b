package services

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/questforge/treasury/internal/apperrors"
	"github.com/questforge/treasury/internal/core/domain"
	portsrepo "github.com/questforge/treasury/internal/core/ports/repositories"
	portssvc "github.com/questforge/treasury/internal/core/ports/services"
)

// CurrencyRegistry owns currency metadata and provisions one storage slot
// per currency through the injected provisioner. One instance is shared by
// every module in the process.
type CurrencyRegistry struct {
	mu         sync.RWMutex
	currencies map[string]domain.Currency
	defaultID  string
	slots      portsrepo.SlotProvisioner
	logger     *slog.Logger
}

var _ portssvc.CurrencyRegistrySvcFacade = (*CurrencyRegistry)(nil)

// NewCurrencyRegistry creates an empty registry backed by the provisioner.
func NewCurrencyRegistry(slots portsrepo.SlotProvisioner, logger *slog.Logger) *CurrencyRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &CurrencyRegistry{
		currencies: make(map[string]domain.Currency),
		slots:      slots,
		logger:     logger,
	}
}

// Register stores the currency and provisions its storage slot. The first
// currency registered becomes the default unless one is already set.
func (r *CurrencyRegistry) Register(c domain.Currency) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.currencies[c.ID]; exists {
		return fmt.Errorf("currency %s: %w", c.ID, apperrors.ErrDuplicate)
	}
	if err := r.slots.ProvisionSlot(c); err != nil {
		return fmt.Errorf("provision slot for currency %s: %w", c.ID, err)
	}
	r.currencies[c.ID] = c
	if r.defaultID == "" {
		r.defaultID = c.ID
	}

	r.logger.Info("Currency registered",
		slog.String("currency_id", c.ID),
		slog.String("slot_id", c.SlotID),
		slog.Bool("default", r.defaultID == c.ID),
	)
	return nil
}

// Unregister removes the currency and releases its slot. When the default is
// unregistered the default is cleared rather than reassigned arbitrarily;
// callers must pick a new one with SetDefault.
func (r *CurrencyRegistry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.currencies[id]; !exists {
		return fmt.Errorf("currency %s: %w", id, apperrors.ErrUnknownCurrency)
	}
	if err := r.slots.ReleaseSlot(id); err != nil {
		return fmt.Errorf("release slot for currency %s: %w", id, err)
	}
	delete(r.currencies, id)
	if r.defaultID == id {
		r.defaultID = ""
		r.logger.Warn("Default currency unregistered, no default set", slog.String("currency_id", id))
	}

	r.logger.Info("Currency unregistered", slog.String("currency_id", id))
	return nil
}

// SetDefault marks a registered currency as the default.
func (r *CurrencyRegistry) SetDefault(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.currencies[id]; !exists {
		return fmt.Errorf("currency %s: %w", id, apperrors.ErrUnknownCurrency)
	}
	r.defaultID = id
	return nil
}

// Get returns the currency metadata, if registered.
func (r *CurrencyRegistry) Get(id string) (domain.Currency, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.currencies[id]
	return c, ok
}

// List returns a snapshot of all registered currencies, ordered by id.
func (r *CurrencyRegistry) List() []domain.Currency {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Currency, 0, len(r.currencies))
	for _, c := range r.currencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// HasAny reports whether at least one currency is registered.
func (r *CurrencyRegistry) HasAny() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.currencies) > 0
}

// DefaultID returns the default currency id, or "" when none is set.
func (r *CurrencyRegistry) DefaultID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultID
}
