package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	portsrepo "github.com/questforge/treasury/internal/core/ports/repositories"
	portssvc "github.com/questforge/treasury/internal/core/ports/services"
	"github.com/questforge/treasury/internal/middleware"
)

// sessionService adapts the host engine's join/leave lifecycle onto the
// cache and durable store.
type sessionService struct {
	store portssvc.LedgerStoreSvcFacade
	cache portsrepo.BalanceCache
}

var _ portssvc.SessionSvcFacade = (*sessionService)(nil)

// NewSessionService creates the session hook handler.
func NewSessionService(store portssvc.LedgerStoreSvcFacade, cache portsrepo.BalanceCache) portssvc.SessionSvcFacade {
	return &sessionService{store: store, cache: cache}
}

// HandleJoin syncs durable balances into the cache before seeding defaults,
// so recorded history always wins over starting balances.
func (s *sessionService) HandleJoin(ctx context.Context, entity uuid.UUID, displayName string) error {
	has, err := s.store.HasAccount(ctx, entity)
	if err != nil {
		return fmt.Errorf("join %s: %w", entity, err)
	}
	if has {
		if err := s.store.SyncToCache(ctx, entity); err != nil {
			return fmt.Errorf("join %s: %w", entity, err)
		}
	}
	s.cache.Initialize(entity)

	middleware.GetLoggerFromCtx(ctx).Debug("Entity joined",
		slog.String("uuid", entity.String()),
		slog.String("display_name", displayName),
		slog.Bool("known_account", has),
	)
	return nil
}

// HandleLeave evicts the entity's cache entries; the durable store remains
// the source of truth.
func (s *sessionService) HandleLeave(entity uuid.UUID) {
	s.cache.Evict(entity)
}
