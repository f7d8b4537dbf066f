package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bankchen1/fo3-ledger-core/internal/apperrors"
	portssvc "github.com/bankchen1/fo3-ledger-core/internal/core/ports/services"
	"github.com/bankchen1/fo3-ledger-core/internal/dto"
	"github.com/bankchen1/fo3-ledger-core/internal/middleware"
	"github.com/gin-gonic/gin"
)

// auditHandler handles HTTP requests for the audit trail.
type auditHandler struct {
	auditService portssvc.AuditSvcFacade
}

// newAuditHandler creates a new auditHandler.
func newAuditHandler(as portssvc.AuditSvcFacade) *auditHandler {
	return &auditHandler{
		auditService: as,
	}
}

// registerAuditRoutes registers the audit trail read route. The trail is
// append-only; there are deliberately no write endpoints.
func registerAuditRoutes(rg *gin.RouterGroup, auditService portssvc.AuditSvcFacade) {
	h := newAuditHandler(auditService)

	rg.GET("/audit-trail", h.getAuditTrail)
}

// getAuditTrail godoc
// @Summary Read the audit trail
// @Description Retrieves a filtered page of immutable audit entries, newest first.
// @Tags audit
// @Produce  json
// @Param   transactionId query string false "Filter by transaction ID"
// @Param   accountId query string false "Filter by account ID"
// @Param   userId query string false "Filter by acting user"
// @Param   action query string false "Filter by action name"
// @Param   startDate query string false "Earliest entry timestamp (RFC 3339)"
// @Param   endDate query string false "Latest entry timestamp (RFC 3339)"
// @Param   page query int false "Page number (default 1)"
// @Param   pageSize query int false "Page size (default 20, max 100)"
// @Success 200 {object} dto.AuditTrailResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Failure 403 {object} map[string]string "Caller is not allowed to read the audit trail"
// @Failure 500 {object} map[string]string "Failed to read audit trail"
// @Router /audit-trail [get]
func (h *auditHandler) getAuditTrail(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.AuditTrailParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for GetAuditTrail", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + bindingErrorMessage(err)})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller context not found for GetAuditTrail")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return
	}

	resp, err := h.auditService.GetAuditTrail(c.Request.Context(), params, caller)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			logger.Warn("Caller not authorized to read audit trail", slog.String("error", err.Error()))
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to read audit trail from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read audit trail"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
