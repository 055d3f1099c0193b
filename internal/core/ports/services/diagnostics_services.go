package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/questforge/treasury/internal/core/domain"
)

// DiagnosticsSvcFacade answers administrative consistency queries.
type DiagnosticsSvcFacade interface {
	// AccountDrift reports, per registered currency, the cached and durable
	// balance side by side, flagging entries that diverge beyond
	// domain.DriftThreshold.
	AccountDrift(ctx context.Context, id uuid.UUID) ([]domain.DriftEntry, error)
}
