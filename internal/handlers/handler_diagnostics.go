package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/questforge/treasury/internal/core/ports/services"
	"github.com/questforge/treasury/internal/dto"
	"github.com/questforge/treasury/internal/middleware"
)

// diagnosticsHandler exposes the cache/store consistency report.
type diagnosticsHandler struct {
	diagnostics portssvc.DiagnosticsSvcFacade
}

// registerDiagnosticsRoutes registers the administrative drift query.
func registerDiagnosticsRoutes(rg *gin.RouterGroup, diagnostics portssvc.DiagnosticsSvcFacade) {
	h := &diagnosticsHandler{diagnostics: diagnostics}
	rg.GET("/diagnostics/accounts/:uuid", h.accountDrift)
}

func (h *diagnosticsHandler) accountDrift(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	id, ok := parseAccountID(c)
	if !ok {
		return
	}

	entries, err := h.diagnostics.AccountDrift(c.Request.Context(), id)
	if err != nil {
		logger.Error("Failed to build drift report", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build drift report"})
		return
	}

	report := dto.ToDriftReportResponse(id.String(), entries)
	if report.Drifted {
		logger.Warn("Cache/store drift detected", slog.String("uuid", id.String()))
	}
	c.JSON(http.StatusOK, report)
}
