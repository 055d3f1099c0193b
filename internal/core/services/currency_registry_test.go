package services_test

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/questforge/treasury/internal/apperrors"
	"github.com/questforge/treasury/internal/core/domain"
	portsrepo "github.com/questforge/treasury/internal/core/ports/repositories"
	"github.com/questforge/treasury/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSlotProvisioner is a mock implementation of repositories.SlotProvisioner.
type MockSlotProvisioner struct {
	mock.Mock
}

var _ portsrepo.SlotProvisioner = (*MockSlotProvisioner)(nil)

func (m *MockSlotProvisioner) ProvisionSlot(c domain.Currency) error {
	args := m.Called(c)
	return args.Error(0)
}

func (m *MockSlotProvisioner) ReleaseSlot(currencyID string) error {
	args := m.Called(currencyID)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCurrency(id string) domain.Currency {
	return domain.NewCurrency(id, id, id, id+"s", "$", "", 2, 0, "slot-"+id)
}

func TestCurrencyRegistry_RegisterFirstBecomesDefault(t *testing.T) {
	slots := new(MockSlotProvisioner)
	slots.On("ProvisionSlot", mock.AnythingOfType("domain.Currency")).Return(nil)

	reg := services.NewCurrencyRegistry(slots, testLogger())
	require.False(t, reg.HasAny())

	require.NoError(t, reg.Register(testCurrency("coins")))
	require.NoError(t, reg.Register(testCurrency("gems")))

	assert.True(t, reg.HasAny())
	assert.Equal(t, "coins", reg.DefaultID())
	slots.AssertNumberOfCalls(t, "ProvisionSlot", 2)
}

func TestCurrencyRegistry_RegisterDuplicate(t *testing.T) {
	slots := new(MockSlotProvisioner)
	slots.On("ProvisionSlot", mock.AnythingOfType("domain.Currency")).Return(nil).Once()

	reg := services.NewCurrencyRegistry(slots, testLogger())
	require.NoError(t, reg.Register(testCurrency("coins")))

	err := reg.Register(testCurrency("coins"))
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	slots.AssertExpectations(t)
}

func TestCurrencyRegistry_RegisterProvisionFailure(t *testing.T) {
	slots := new(MockSlotProvisioner)
	slots.On("ProvisionSlot", mock.AnythingOfType("domain.Currency")).
		Return(fmt.Errorf("column limit reached"))

	reg := services.NewCurrencyRegistry(slots, testLogger())
	err := reg.Register(testCurrency("coins"))
	require.Error(t, err)

	// A failed provision must not leave a half-registered currency behind.
	_, ok := reg.Get("coins")
	assert.False(t, ok)
	assert.Empty(t, reg.DefaultID())
}

func TestCurrencyRegistry_UnregisterClearsDefault(t *testing.T) {
	slots := new(MockSlotProvisioner)
	slots.On("ProvisionSlot", mock.AnythingOfType("domain.Currency")).Return(nil)
	slots.On("ReleaseSlot", "coins").Return(nil)

	reg := services.NewCurrencyRegistry(slots, testLogger())
	require.NoError(t, reg.Register(testCurrency("coins")))
	require.NoError(t, reg.Register(testCurrency("gems")))
	require.Equal(t, "coins", reg.DefaultID())

	require.NoError(t, reg.Unregister("coins"))

	// The default is cleared, not silently reassigned.
	assert.Empty(t, reg.DefaultID())
	_, ok := reg.Get("coins")
	assert.False(t, ok)

	require.NoError(t, reg.SetDefault("gems"))
	assert.Equal(t, "gems", reg.DefaultID())
}

func TestCurrencyRegistry_UnregisterUnknown(t *testing.T) {
	slots := new(MockSlotProvisioner)
	reg := services.NewCurrencyRegistry(slots, testLogger())

	err := reg.Unregister("missing")
	assert.ErrorIs(t, err, apperrors.ErrUnknownCurrency)
	slots.AssertNotCalled(t, "ReleaseSlot", mock.Anything)
}

func TestCurrencyRegistry_SetDefaultUnknown(t *testing.T) {
	slots := new(MockSlotProvisioner)
	reg := services.NewCurrencyRegistry(slots, testLogger())

	err := reg.SetDefault("missing")
	assert.ErrorIs(t, err, apperrors.ErrUnknownCurrency)
}

func TestCurrencyRegistry_ListSortedByID(t *testing.T) {
	slots := new(MockSlotProvisioner)
	slots.On("ProvisionSlot", mock.AnythingOfType("domain.Currency")).Return(nil)

	reg := services.NewCurrencyRegistry(slots, testLogger())
	require.NoError(t, reg.Register(testCurrency("gems")))
	require.NoError(t, reg.Register(testCurrency("coins")))
	require.NoError(t, reg.Register(testCurrency("tokens")))

	list := reg.List()
	require.Len(t, list, 3)
	assert.Equal(t, "coins", list[0].ID)
	assert.Equal(t, "gems", list[1].ID)
	assert.Equal(t, "tokens", list[2].ID)
}
