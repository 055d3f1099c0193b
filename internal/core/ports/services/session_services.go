package services

import (
	"context"

	"github.com/google/uuid"
)

// SessionSvcFacade is the surface the host engine's lifecycle hooks call.
type SessionSvcFacade interface {
	// HandleJoin prepares the cache for a connecting entity: durable
	// balances are synced into the cache first, then missing entries are
	// seeded at starting balances, so durable history wins over defaults.
	HandleJoin(ctx context.Context, entity uuid.UUID, displayName string) error

	// HandleLeave evicts the entity's cache entries.
	HandleLeave(entity uuid.UUID)
}
