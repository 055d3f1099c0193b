package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/questforge/treasury/internal/dto"
)

// transferHandler handles transfers between accounts.
type transferHandler struct {
	economy EconomyResolver
}

// registerTransferRoutes registers the transfer route.
func registerTransferRoutes(rg *gin.RouterGroup, economy EconomyResolver) {
	h := &transferHandler{economy: economy}
	rg.POST("/transfers", h.transfer)
}

func (h *transferHandler) transfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	from, err := uuid.Parse(req.From)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sender uuid"})
		return
	}
	to, err := uuid.Parse(req.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipient uuid"})
		return
	}

	result := h.economy().Transfer(c.Request.Context(), from, to, req.CurrencyID, req.Amount)
	c.JSON(http.StatusOK, result)
}
