package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/questforge/treasury/internal/apperrors"
	portssvc "github.com/questforge/treasury/internal/core/ports/services"
	"github.com/questforge/treasury/internal/dto"
	"github.com/questforge/treasury/internal/middleware"
)

// currencyHandler handles HTTP requests related to currencies.
type currencyHandler struct {
	currencies portssvc.CurrencyRegistrySvcFacade
	store      portssvc.LedgerStoreSvcFacade
}

func newCurrencyHandler(currencies portssvc.CurrencyRegistrySvcFacade, store portssvc.LedgerStoreSvcFacade) *currencyHandler {
	return &currencyHandler{currencies: currencies, store: store}
}

// registerCurrencyRoutes registers routes related to currencies.
func registerCurrencyRoutes(rg *gin.RouterGroup, currencies portssvc.CurrencyRegistrySvcFacade, store portssvc.LedgerStoreSvcFacade) {
	h := newCurrencyHandler(currencies, store)

	group := rg.Group("/currencies")
	{
		group.GET("", h.listCurrencies)
		group.GET("/:id", h.getCurrency)
		group.PUT("/default", h.setDefault)
		group.GET("/:id/top", h.topBalances)
	}
}

func (h *currencyHandler) listCurrencies(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToListCurrencyResponse(h.currencies.List(), h.currencies.DefaultID()))
}

func (h *currencyHandler) getCurrency(c *gin.Context) {
	id := c.Param("id")
	currency, ok := h.currencies.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Currency not found"})
		return
	}
	c.JSON(http.StatusOK, dto.ToCurrencyResponse(currency, id == h.currencies.DefaultID()))
}

func (h *currencyHandler) setDefault(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SetDefaultCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetDefault", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := h.currencies.SetDefault(req.ID); err != nil {
		if errors.Is(err, apperrors.ErrUnknownCurrency) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Currency not found"})
			return
		}
		logger.Error("Failed to set default currency", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set default currency"})
		return
	}

	logger.Info("Default currency changed", slog.String("currency_id", req.ID))
	c.Status(http.StatusNoContent)
}

func (h *currencyHandler) topBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	id := c.Param("id")
	if _, ok := h.currencies.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Currency not found"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	ranked, err := h.store.TopBalances(c.Request.Context(), id, limit)
	if err != nil {
		logger.Error("Failed to query top balances", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query top balances"})
		return
	}
	c.JSON(http.StatusOK, dto.ToRankedBalanceResponses(ranked))
}
