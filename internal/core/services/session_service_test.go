package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/questforge/treasury/internal/adapters/cache"
	"github.com/questforge/treasury/internal/apperrors"
	"github.com/questforge/treasury/internal/core/domain"
	portssvc "github.com/questforge/treasury/internal/core/ports/services"
	"github.com/questforge/treasury/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSessionFixture(t *testing.T, currencies ...domain.Currency) (*memLedgerRepo, *cache.AttributeCache, portssvc.SessionSvcFacade) {
	t.Helper()
	repo := newMemLedgerRepo()
	attrCache := cache.NewAttributeCache()
	registry := services.NewCurrencyRegistry(attrCache, testLogger())
	for _, c := range currencies {
		require.NoError(t, registry.Register(c))
	}
	store := services.NewLedgerStoreService(repo, attrCache, registry, false)
	session := services.NewSessionService(store, attrCache)
	return repo, attrCache, session
}

func TestSession_JoinSeedsNewEntityAtStartingBalance(t *testing.T) {
	_, attrCache, session := newSessionFixture(t, coins())
	entity := uuid.New()

	require.NoError(t, session.HandleJoin(context.Background(), entity, "Alice"))
	assert.Equal(t, 100.0, attrCache.Get(entity, "coins"))
}

func TestSession_JoinRestoresDurableBalanceOverSeed(t *testing.T) {
	repo, attrCache, session := newSessionFixture(t, coins())
	entity := uuid.New()

	// Durable history from a previous session: 7 coins left of the 100 seed.
	require.NoError(t, repo.CreateAccount(context.Background(),
		domain.Account{UUID: entity, DisplayName: "Alice"},
		[]domain.Balance{{UUID: entity, CurrencyID: "coins", Balance: 7}}))

	require.NoError(t, session.HandleJoin(context.Background(), entity, "Alice"))
	assert.Equal(t, 7.0, attrCache.Get(entity, "coins"))
}

func TestSession_LeaveEvictsCacheOnly(t *testing.T) {
	repo, attrCache, session := newSessionFixture(t, coins())
	entity := uuid.New()

	require.NoError(t, repo.CreateAccount(context.Background(),
		domain.Account{UUID: entity, DisplayName: "Alice"},
		[]domain.Balance{{UUID: entity, CurrencyID: "coins", Balance: 42}}))
	require.NoError(t, session.HandleJoin(context.Background(), entity, "Alice"))

	session.HandleLeave(entity)
	assert.False(t, attrCache.Has(entity, "coins"))

	// Rejoining restores the durable value.
	require.NoError(t, session.HandleJoin(context.Background(), entity, "Alice"))
	assert.Equal(t, 42.0, attrCache.Get(entity, "coins"))
}

func TestSession_JoinPropagatesStoreFailure(t *testing.T) {
	store := new(MockLedgerStore)
	attrCache := cache.NewAttributeCache()
	session := services.NewSessionService(store, attrCache)
	entity := uuid.New()

	store.On("HasAccount", mock.Anything, entity).
		Return(false, fmt.Errorf("probe: %w", apperrors.ErrStorage)).Once()

	err := session.HandleJoin(context.Background(), entity, "Alice")
	assert.ErrorIs(t, err, apperrors.ErrStorage)
}
