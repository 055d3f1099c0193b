package dto

import (
	"time"

	"github.com/questforge/treasury/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create an account.
type CreateAccountRequest struct {
	UUID        string `json:"uuid" binding:"required,uuid"`
	DisplayName string `json:"displayName" binding:"required"`
}

// AmountRequest carries a deposit or withdrawal amount. An empty currencyId
// resolves to the default currency.
type AmountRequest struct {
	CurrencyID string  `json:"currencyId"`
	Amount     float64 `json:"amount" binding:"required,gt=0"`
}

// SetBalanceRequest overwrites a balance; zero is allowed.
type SetBalanceRequest struct {
	CurrencyID string   `json:"currencyId"`
	Amount     *float64 `json:"amount" binding:"required,gte=0"`
}

// TransferRequest moves funds between two accounts.
type TransferRequest struct {
	From       string  `json:"from" binding:"required,uuid"`
	To         string  `json:"to" binding:"required,uuid"`
	CurrencyID string  `json:"currencyId"`
	Amount     float64 `json:"amount" binding:"required,gt=0"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	UUID        string    `json:"uuid"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// BalanceResponse is one (currency, balance) pair for an account.
type BalanceResponse struct {
	CurrencyID string  `json:"currencyId"`
	Balance    float64 `json:"balance"`
}

// RankedBalanceResponse is one row of a top-balances listing.
type RankedBalanceResponse struct {
	Rank        int     `json:"rank"`
	UUID        string  `json:"uuid"`
	DisplayName string  `json:"displayName"`
	Balance     float64 `json:"balance"`
}

// TransactionResponse is one audit log record.
type TransactionResponse struct {
	ID           int64     `json:"id"`
	CurrencyID   string    `json:"currencyId"`
	Type         string    `json:"type"`
	Amount       float64   `json:"amount"`
	BalanceAfter float64   `json:"balanceAfter"`
	Description  string    `json:"description"`
	Timestamp    time.Time `json:"timestamp"`
}

// ToAccountResponse converts a domain.Account to its response DTO.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		UUID:        a.UUID.String(),
		DisplayName: a.DisplayName,
		CreatedAt:   a.CreatedAt,
	}
}

// ToBalanceResponses converts durable balance rows to response DTOs.
func ToBalanceResponses(balances []domain.Balance) []BalanceResponse {
	res := make([]BalanceResponse, len(balances))
	for i, b := range balances {
		res[i] = BalanceResponse{CurrencyID: b.CurrencyID, Balance: b.Balance}
	}
	return res
}

// ToRankedBalanceResponses converts a ranking to response DTOs.
func ToRankedBalanceResponses(ranked []domain.RankedBalance) []RankedBalanceResponse {
	res := make([]RankedBalanceResponse, len(ranked))
	for i, rb := range ranked {
		res[i] = RankedBalanceResponse{
			Rank:        i + 1,
			UUID:        rb.UUID.String(),
			DisplayName: rb.DisplayName,
			Balance:     rb.Balance,
		}
	}
	return res
}

// ToTransactionResponses converts audit records to response DTOs.
func ToTransactionResponses(records []domain.TransactionRecord) []TransactionResponse {
	res := make([]TransactionResponse, len(records))
	for i, rec := range records {
		res[i] = TransactionResponse{
			ID:           rec.ID,
			CurrencyID:   rec.CurrencyID,
			Type:         string(rec.Type),
			Amount:       rec.Amount,
			BalanceAfter: rec.BalanceAfter,
			Description:  rec.Description,
			Timestamp:    rec.Timestamp,
		}
	}
	return res
}
