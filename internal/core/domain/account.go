package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account is the durable record of one known player.
// Rows are created on first deposit or explicit creation and never deleted.
type Account struct {
	UUID        uuid.UUID `json:"uuid"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Balance is one durable (account, currency) balance row.
type Balance struct {
	UUID       uuid.UUID `json:"uuid"`
	CurrencyID string    `json:"currencyId"`
	Balance    float64   `json:"balance"`
}

// RankedBalance is one row of a top-balances ranking.
type RankedBalance struct {
	UUID        uuid.UUID `json:"uuid"`
	DisplayName string    `json:"displayName"`
	Balance     float64   `json:"balance"`
}
