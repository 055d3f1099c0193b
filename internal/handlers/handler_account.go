package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/questforge/treasury/internal/apperrors"
	portssvc "github.com/questforge/treasury/internal/core/ports/services"
	"github.com/questforge/treasury/internal/dto"
	"github.com/questforge/treasury/internal/middleware"
)

// accountHandler handles HTTP requests for accounts and their balances.
type accountHandler struct {
	store   portssvc.LedgerStoreSvcFacade
	economy EconomyResolver
}

func newAccountHandler(store portssvc.LedgerStoreSvcFacade, economy EconomyResolver) *accountHandler {
	return &accountHandler{store: store, economy: economy}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, store portssvc.LedgerStoreSvcFacade, economy EconomyResolver) {
	h := newAccountHandler(store, economy)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("/:uuid", h.getAccount)
		accounts.GET("/:uuid/balances", h.listBalances)
		accounts.GET("/:uuid/balance", h.getBalance)
		accounts.GET("/:uuid/transactions", h.listTransactions)
		accounts.POST("/:uuid/deposit", h.deposit)
		accounts.POST("/:uuid/withdraw", h.withdraw)
		accounts.POST("/:uuid/balance", h.setBalance)
	}
}

func parseAccountID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account uuid"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	id, err := uuid.Parse(req.UUID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account uuid"})
		return
	}

	created, err := h.economy().CreateAccount(c.Request.Context(), id, req.DisplayName)
	if err != nil {
		logger.Error("Failed to create account", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}
	if !created {
		c.JSON(http.StatusConflict, gin.H{"error": "Account already exists"})
		return
	}

	c.Status(http.StatusCreated)
}

func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	id, ok := parseAccountID(c)
	if !ok {
		return
	}

	account, err := h.store.FindAccount(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		logger.Error("Failed to find account", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find account"})
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) listBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	id, ok := parseAccountID(c)
	if !ok {
		return
	}

	balances, err := h.store.ListBalances(c.Request.Context(), id)
	if err != nil {
		logger.Error("Failed to list balances", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list balances"})
		return
	}
	c.JSON(http.StatusOK, dto.ToBalanceResponses(balances))
}

func (h *accountHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	id, ok := parseAccountID(c)
	if !ok {
		return
	}

	currencyID := c.Query("currency")
	balance, err := h.economy().GetBalance(c.Request.Context(), id, currencyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnknownCurrency) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Currency not found"})
			return
		}
		logger.Error("Failed to get balance", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get balance"})
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{CurrencyID: currencyID, Balance: balance})
}

func (h *accountHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	id, ok := parseAccountID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))

	records, err := h.store.ListTransactions(c.Request.Context(), id, limit)
	if err != nil {
		logger.Error("Failed to list transactions", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponses(records))
}

func (h *accountHandler) deposit(c *gin.Context) {
	id, ok := parseAccountID(c)
	if !ok {
		return
	}
	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	result := h.economy().Deposit(c.Request.Context(), id, req.CurrencyID, req.Amount)
	c.JSON(http.StatusOK, result)
}

func (h *accountHandler) withdraw(c *gin.Context) {
	id, ok := parseAccountID(c)
	if !ok {
		return
	}
	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	result := h.economy().Withdraw(c.Request.Context(), id, req.CurrencyID, req.Amount)
	c.JSON(http.StatusOK, result)
}

func (h *accountHandler) setBalance(c *gin.Context) {
	id, ok := parseAccountID(c)
	if !ok {
		return
	}
	var req dto.SetBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	result := h.economy().SetBalance(c.Request.Context(), id, req.CurrencyID, *req.Amount)
	c.JSON(http.StatusOK, result)
}
