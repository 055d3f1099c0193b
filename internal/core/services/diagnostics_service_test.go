package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/questforge/treasury/internal/adapters/cache"
	"github.com/questforge/treasury/internal/core/domain"
	"github.com/questforge/treasury/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostics_AccountDrift(t *testing.T) {
	repo := newMemLedgerRepo()
	attrCache := cache.NewAttributeCache()
	registry := services.NewCurrencyRegistry(attrCache, testLogger())
	require.NoError(t, registry.Register(coins()))
	require.NoError(t, registry.Register(domain.NewCurrency("gems", "Gems", "gem", "gems", "◆", "", 0, 0, "secondary")))
	store := services.NewLedgerStoreService(repo, attrCache, registry, false)
	diagnostics := services.NewDiagnosticsService(registry, store, attrCache)

	entity := uuid.New()
	require.NoError(t, repo.CreateAccount(context.Background(),
		domain.Account{UUID: entity, DisplayName: "Alice"},
		[]domain.Balance{
			{UUID: entity, CurrencyID: "coins", Balance: 100},
			{UUID: entity, CurrencyID: "gems", Balance: 3},
		}))

	// coins agrees within tolerance, gems has drifted.
	attrCache.Set(entity, "coins", 100.005)
	attrCache.Set(entity, "gems", 5)

	entries, err := diagnostics.AccountDrift(context.Background(), entity)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "coins", entries[0].CurrencyID)
	assert.False(t, entries[0].Drifted)

	assert.Equal(t, "gems", entries[1].CurrencyID)
	assert.Equal(t, 5.0, entries[1].Cached)
	assert.Equal(t, 3.0, entries[1].Durable)
	assert.True(t, entries[1].Drifted)
}

func TestDiagnostics_ColdCacheReportsDrift(t *testing.T) {
	repo := newMemLedgerRepo()
	attrCache := cache.NewAttributeCache()
	registry := services.NewCurrencyRegistry(attrCache, testLogger())
	require.NoError(t, registry.Register(coins()))
	store := services.NewLedgerStoreService(repo, attrCache, registry, false)
	diagnostics := services.NewDiagnosticsService(registry, store, attrCache)

	entity := uuid.New()
	require.NoError(t, repo.CreateAccount(context.Background(),
		domain.Account{UUID: entity, DisplayName: "Alice"},
		[]domain.Balance{{UUID: entity, CurrencyID: "coins", Balance: 80}}))

	// No cache entry: the cached side reads 0, a visible 80-coin divergence.
	entries, err := diagnostics.AccountDrift(context.Background(), entity)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 0.0, entries[0].Cached)
	assert.Equal(t, 80.0, entries[0].Durable)
	assert.True(t, entries[0].Drifted)
}
