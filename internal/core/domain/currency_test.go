package domain_test

import (
	"testing"

	"github.com/questforge/treasury/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestNewCurrency_Normalisation(t *testing.T) {
	c := domain.NewCurrency("gold", "", "", "", "", "", -2, -50, "")

	assert.Equal(t, "gold", c.DisplayName)
	assert.Equal(t, "gold", c.NameSingular)
	assert.Equal(t, "gold", c.NamePlural)
	assert.Equal(t, domain.DefaultFormat, c.Format)
	assert.Equal(t, 0, c.DecimalPlaces)
	assert.Equal(t, 0.0, c.StartingBalance)
	assert.Equal(t, "gold", c.SlotID)
}

func TestNewCurrency_PluralDefaultsToSingular(t *testing.T) {
	c := domain.NewCurrency("gold", "Gold", "nugget", "", "", "", 0, 0, "")
	assert.Equal(t, "nugget", c.NamePlural)
}

func TestFormatAmount(t *testing.T) {
	coins := domain.NewCurrency("coins", "Coins", "coin", "coins", "$", "", 2, 0, "")
	assert.Equal(t, "$12.50", coins.FormatAmount(12.5))
	assert.Equal(t, "$0.00", coins.FormatAmount(0))

	named := domain.NewCurrency("gems", "Gems", "gem", "gems", "◆", "{amount} {name}", 0, 0, "")
	assert.Equal(t, "1 gem", named.FormatAmount(1))
	assert.Equal(t, "3 gems", named.FormatAmount(3))
	assert.Equal(t, "0 gems", named.FormatAmount(0))

	// Rounding happens before the singular/plural choice.
	assert.Equal(t, "1 gem", named.FormatAmount(1.4))
}

func TestRoundAmount(t *testing.T) {
	coins := domain.NewCurrency("coins", "Coins", "coin", "coins", "$", "", 2, 0, "")
	assert.Equal(t, 10.56, coins.RoundAmount(10.556))
	assert.Equal(t, 10.55, coins.RoundAmount(10.554))

	whole := domain.NewCurrency("gems", "Gems", "gem", "gems", "◆", "", 0, 0, "")
	assert.Equal(t, 11.0, whole.RoundAmount(10.5))
	assert.Equal(t, -3.0, whole.RoundAmount(-2.5))
}
