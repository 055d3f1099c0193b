package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultFormat is used when a currency is registered without a format template.
const DefaultFormat = "{symbol}{amount}"

// Currency holds the immutable metadata of one registered currency.
// Construct values with NewCurrency so the normalisation rules apply.
type Currency struct {
	ID              string  `json:"id"`
	DisplayName     string  `json:"displayName"`
	NameSingular    string  `json:"nameSingular"`
	NamePlural      string  `json:"namePlural"`
	Symbol          string  `json:"symbol"`
	Format          string  `json:"format"` // template with {amount}, {symbol} and {name}
	DecimalPlaces   int     `json:"decimalPlaces"`
	StartingBalance float64 `json:"startingBalance"`
	SlotID          string  `json:"slotId"`
}

// NewCurrency normalises raw currency metadata: negative decimalPlaces and
// startingBalance clamp to 0, blank display fields default to the id, and a
// blank format falls back to DefaultFormat.
func NewCurrency(id, displayName, nameSingular, namePlural, symbol, format string, decimalPlaces int, startingBalance float64, slotID string) Currency {
	if displayName == "" {
		displayName = id
	}
	if nameSingular == "" {
		nameSingular = displayName
	}
	if namePlural == "" {
		namePlural = nameSingular
	}
	if format == "" {
		format = DefaultFormat
	}
	if decimalPlaces < 0 {
		decimalPlaces = 0
	}
	if startingBalance < 0 {
		startingBalance = 0
	}
	if slotID == "" {
		slotID = id
	}
	return Currency{
		ID:              id,
		DisplayName:     displayName,
		NameSingular:    nameSingular,
		NamePlural:      namePlural,
		Symbol:          symbol,
		Format:          format,
		DecimalPlaces:   decimalPlaces,
		StartingBalance: startingBalance,
		SlotID:          slotID,
	}
}

// FormatAmount renders amount through the currency's format template,
// rounding to DecimalPlaces and picking the singular or plural name.
func (c Currency) FormatAmount(amount float64) string {
	rounded := decimal.NewFromFloat(amount).Round(int32(c.DecimalPlaces))
	name := c.NamePlural
	if rounded.Equal(decimal.NewFromInt(1)) {
		name = c.NameSingular
	}
	return strings.NewReplacer(
		"{amount}", rounded.StringFixed(int32(c.DecimalPlaces)),
		"{symbol}", c.Symbol,
		"{name}", name,
	).Replace(c.Format)
}

// RoundAmount rounds amount to the currency's precision for storage.
func (c Currency) RoundAmount(amount float64) float64 {
	f, _ := decimal.NewFromFloat(amount).Round(int32(c.DecimalPlaces)).Float64()
	return f
}
