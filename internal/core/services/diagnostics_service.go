package services

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/questforge/treasury/internal/core/domain"
	portsrepo "github.com/questforge/treasury/internal/core/ports/repositories"
	portssvc "github.com/questforge/treasury/internal/core/ports/services"
)

// diagnosticsService compares cache and durable state for operators.
type diagnosticsService struct {
	registry portssvc.CurrencyRegistrySvcFacade
	store    portssvc.LedgerStoreSvcFacade
	cache    portsrepo.BalanceCache
}

var _ portssvc.DiagnosticsSvcFacade = (*diagnosticsService)(nil)

// NewDiagnosticsService creates the diagnostics query service.
func NewDiagnosticsService(registry portssvc.CurrencyRegistrySvcFacade, store portssvc.LedgerStoreSvcFacade, cache portsrepo.BalanceCache) portssvc.DiagnosticsSvcFacade {
	return &diagnosticsService{registry: registry, store: store, cache: cache}
}

// AccountDrift reports cached and durable balances side by side for every
// registered currency, flagging divergence beyond domain.DriftThreshold.
func (s *diagnosticsService) AccountDrift(ctx context.Context, id uuid.UUID) ([]domain.DriftEntry, error) {
	durable, err := s.store.ListBalances(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("drift report %s: %w", id, err)
	}
	byCurrency := make(map[string]float64, len(durable))
	for _, b := range durable {
		byCurrency[b.CurrencyID] = b.Balance
	}

	currencies := s.registry.List()
	entries := make([]domain.DriftEntry, 0, len(currencies))
	for _, c := range currencies {
		cached := s.cache.Get(id, c.ID)
		stored := byCurrency[c.ID]
		entries = append(entries, domain.DriftEntry{
			CurrencyID: c.ID,
			Cached:     cached,
			Durable:    stored,
			Drifted:    math.Abs(cached-stored) > domain.DriftThreshold,
		})
	}
	return entries, nil
}
