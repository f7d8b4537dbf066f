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

// exportHandler handles HTTP requests for ledger data exports.
type exportHandler struct {
	exportService portssvc.ExportSvc
}

// newExportHandler creates a new exportHandler.
func newExportHandler(es portssvc.ExportSvc) *exportHandler {
	return &exportHandler{
		exportService: es,
	}
}

// registerExportRoutes registers routes related to ledger exports.
func registerExportRoutes(rg *gin.RouterGroup, exportService portssvc.ExportSvc) {
	h := newExportHandler(exportService)

	rg.POST("/exports", h.exportLedgerData)
}

// exportLedgerData godoc
// @Summary Export ledger data
// @Description Writes posted transactions to a CSV, JSON or XLSX file. With async the export is queued for background processing and a task handle is returned.
// @Tags exports
// @Accept  json
// @Produce  json
// @Param   export body dto.ExportRequest true "Export format and period"
// @Success 200 {object} dto.ExportResponse "Completed synchronous export"
// @Success 202 {object} dto.ExportJobResponse "Accepted background export"
// @Failure 400 {object} map[string]string "Invalid input or unsupported format"
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Failure 403 {object} map[string]string "Caller is not allowed to export"
// @Failure 409 {object} map[string]string "Background worker or audit trail reader is not configured"
// @Failure 500 {object} map[string]string "Failed to export ledger data"
// @Router /exports [post]
func (h *exportHandler) exportLedgerData(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ExportLedgerData", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + bindingErrorMessage(err)})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller context not found for ExportLedgerData")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return
	}

	logger = logger.With(slog.String("caller_id", caller.UserID), slog.String("format", req.Format))

	if req.Async {
		logger.Info("Received request to enqueue background export")
		job, err := h.exportService.EnqueueExport(c.Request.Context(), req, caller)
		if err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				logger.Warn("Background export unavailable", slog.String("error", err.Error()))
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			} else {
				logger.Error("Failed to enqueue export", slog.String("error", err.Error()))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue export"})
			}
			return
		}
		logger.Info("Export enqueued", slog.String("task_id", job.TaskID), slog.String("queue", job.Queue))
		c.JSON(http.StatusAccepted, job)
		return
	}

	logger.Info("Received request to export ledger data")
	resp, err := h.exportService.ExportLedgerData(c.Request.Context(), req, caller)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error exporting ledger data", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrForbidden) {
			logger.Warn("Caller not authorized to export ledger data", slog.String("error", err.Error()))
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Export not available", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to export ledger data in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export ledger data"})
		}
		return
	}

	logger.Info("Ledger data exported",
		slog.String("file_name", resp.FileName),
		slog.Int64("record_count", resp.RecordCount),
	)
	c.JSON(http.StatusOK, resp)
}
