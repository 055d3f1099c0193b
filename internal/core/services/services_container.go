package services

import (
	portsrepo "github.com/questforge/treasury/internal/core/ports/repositories"
	portssvc "github.com/questforge/treasury/internal/core/ports/services"
)

// NewServiceContainer wires the default service set over one repository,
// balance cache and currency registry.
func NewServiceContainer(repo portsrepo.LedgerRepository, cache portsrepo.BalanceCache, registry portssvc.CurrencyRegistrySvcFacade, logTxns bool) *portssvc.ServiceContainer {
	store := NewLedgerStoreService(repo, cache, registry, logTxns)
	return &portssvc.ServiceContainer{
		Currency:    registry,
		Store:       store,
		Economy:     NewEconomyService(registry, store, cache),
		Session:     NewSessionService(store, cache),
		Diagnostics: NewDiagnosticsService(registry, store, cache),
	}
}
