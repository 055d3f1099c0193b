package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/questforge/treasury/internal/core/domain"
)

// CurrencyConfig is one currency entry of the currencies file.
type CurrencyConfig struct {
	ID              string  `json:"id" validate:"required"`
	DisplayName     string  `json:"displayName"`
	NameSingular    string  `json:"nameSingular"`
	NamePlural      string  `json:"namePlural"`
	Symbol          string  `json:"symbol"`
	Format          string  `json:"format"`
	DecimalPlaces   int     `json:"decimalPlaces"`
	StartingBalance float64 `json:"startingBalance"`
	ComponentID     string  `json:"componentId"`
}

// CurrenciesFile is the load-time currency configuration schema.
type CurrenciesFile struct {
	DefaultCurrency    string           `json:"defaultCurrency"`
	TransactionLogging bool             `json:"transactionLogging"`
	Currencies         []CurrencyConfig `json:"currencies" validate:"required,min=1,dive"`
}

// LoadCurrencies reads and validates the currency configuration file.
func LoadCurrencies(path string) (*CurrenciesFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read currencies file %s: %w", path, err)
	}

	var file CurrenciesFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse currencies file %s: %w", path, err)
	}
	if err := validator.New().Struct(&file); err != nil {
		return nil, fmt.Errorf("validate currencies file %s: %w", path, err)
	}
	return &file, nil
}

// ToDomain converts a config entry into normalised currency metadata.
func (c CurrencyConfig) ToDomain() domain.Currency {
	return domain.NewCurrency(
		c.ID,
		c.DisplayName,
		c.NameSingular,
		c.NamePlural,
		c.Symbol,
		c.Format,
		c.DecimalPlaces,
		c.StartingBalance,
		c.ComponentID,
	)
}
