package dto

import "github.com/questforge/treasury/internal/core/domain"

// CurrencyResponse defines the data returned for a currency.
type CurrencyResponse struct {
	ID              string  `json:"id"`
	DisplayName     string  `json:"displayName"`
	NameSingular    string  `json:"nameSingular"`
	NamePlural      string  `json:"namePlural"`
	Symbol          string  `json:"symbol"`
	Format          string  `json:"format"`
	DecimalPlaces   int     `json:"decimalPlaces"`
	StartingBalance float64 `json:"startingBalance"`
	Default         bool    `json:"default"`
}

// SetDefaultCurrencyRequest selects the default currency.
type SetDefaultCurrencyRequest struct {
	ID string `json:"id" binding:"required"`
}

// ToCurrencyResponse converts a domain.Currency to its response DTO.
func ToCurrencyResponse(c domain.Currency, isDefault bool) CurrencyResponse {
	return CurrencyResponse{
		ID:              c.ID,
		DisplayName:     c.DisplayName,
		NameSingular:    c.NameSingular,
		NamePlural:      c.NamePlural,
		Symbol:          c.Symbol,
		Format:          c.Format,
		DecimalPlaces:   c.DecimalPlaces,
		StartingBalance: c.StartingBalance,
		Default:         isDefault,
	}
}

// ToListCurrencyResponse converts a slice of currencies to response DTOs.
func ToListCurrencyResponse(currencies []domain.Currency, defaultID string) []CurrencyResponse {
	res := make([]CurrencyResponse, len(currencies))
	for i, c := range currencies {
		res[i] = ToCurrencyResponse(c, c.ID == defaultID)
	}
	return res
}
