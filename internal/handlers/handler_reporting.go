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

// reportingHandler handles HTTP requests for financial reports and snapshots.
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler.
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// registerReportingRoutes registers routes related to reports, metrics and
// balance snapshots.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.getTrialBalance)
		reports.GET("/balance-sheet", h.getBalanceSheet)
		reports.POST("", h.generateReport)
		reports.GET("/metrics", h.getLedgerMetrics)
		reports.POST("/period-close", h.performPeriodClose)
	}

	// Snapshots hang off the owning account.
	rg.GET("/accounts/:account_id/snapshots", h.listSnapshots)
	rg.POST("/accounts/:account_id/snapshots", h.createSnapshot)
}

// getTrialBalance godoc
// @Summary Generate a trial balance
// @Description Replays posted journal entries up to the cutoff and reports each account's balance in its natural debit or credit column.
// @Tags reports
// @Produce  json
// @Param   asOf query string false "Report cutoff (RFC 3339, default now)"
// @Param   currencyCode query string false "Limit to one ISO 4217 currency"
// @Param   accountType query string false "Limit to one account type" Enums(ASSET, LIABILITY, EQUITY, REVENUE, EXPENSE, CONTRA_ASSET, CONTRA_LIABILITY, CONTRA_EQUITY)
// @Param   includeZeroBalances query bool false "Include accounts with zero balances"
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Failure 500 {object} map[string]string "Failed to generate trial balance"
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.TrialBalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for GetTrialBalance", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + bindingErrorMessage(err)})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller context not found for GetTrialBalance")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return
	}

	logger.Info("Received request for trial balance")

	resp, err := h.reportingService.GetTrialBalance(c.Request.Context(), params, caller)
	if err != nil {
		logger.Error("Failed to generate trial balance in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate trial balance"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getBalanceSheet godoc
// @Summary Generate a balance sheet
// @Description Builds a balance sheet grouped into assets, liabilities and equity as of the cutoff.
// @Tags reports
// @Produce  json
// @Param   asOf query string false "Report cutoff (RFC 3339, default now)"
// @Param   currencyCode query string false "Limit to one ISO 4217 currency"
// @Success 200 {object} dto.FinancialReportResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Failure 500 {object} map[string]string "Failed to generate balance sheet"
// @Router /reports/balance-sheet [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.BalanceSheetParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for GetBalanceSheet", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + bindingErrorMessage(err)})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller context not found for GetBalanceSheet")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return
	}

	logger.Info("Received request for balance sheet")

	report, err := h.reportingService.GetBalanceSheet(c.Request.Context(), params, caller)
	if err != nil {
		logger.Error("Failed to generate balance sheet in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate balance sheet"})
		return
	}

	c.JSON(http.StatusOK, dto.ToFinancialReportResponse(*report))
}

// generateReport godoc
// @Summary Generate a financial report
// @Description Generates a report of the requested type for a period. All report types build on the trial balance primitive.
// @Tags reports
// @Accept  json
// @Produce  json
// @Param   report body dto.GenerateReportRequest true "Report type and period"
// @Success 200 {object} dto.FinancialReportResponse
// @Failure 400 {object} map[string]string "Invalid or unsupported report request"
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /reports [post]
func (h *reportingHandler) generateReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for GenerateReport", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + bindingErrorMessage(err)})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller context not found for GenerateReport")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return
	}

	logger = logger.With(slog.String("report_type", string(req.ReportType)))
	logger.Info("Received request to generate report")

	report, err := h.reportingService.GenerateFinancialReport(c.Request.Context(), req, caller)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error generating report", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to generate report in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		}
		return
	}

	logger.Info("Report generated successfully", slog.String("report_id", report.ReportID))
	c.JSON(http.StatusOK, dto.ToFinancialReportResponse(*report))
}

// getLedgerMetrics godoc
// @Summary Get ledger metrics
// @Description Reports account and transaction counts, per-type totals, per-currency holdings and the books-balanced flag.
// @Tags reports
// @Produce  json
// @Param   startDate query string false "Earliest transaction date (RFC 3339)"
// @Param   endDate query string false "Latest transaction date (RFC 3339)"
// @Param   currencyCode query string false "Limit to one ISO 4217 currency"
// @Success 200 {object} dto.LedgerMetricsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Failure 500 {object} map[string]string "Failed to compute metrics"
// @Router /reports/metrics [get]
func (h *reportingHandler) getLedgerMetrics(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.MetricsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for GetLedgerMetrics", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + bindingErrorMessage(err)})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller context not found for GetLedgerMetrics")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return
	}

	metrics, err := h.reportingService.GetLedgerMetrics(c.Request.Context(), params, caller)
	if err != nil {
		logger.Error("Failed to compute ledger metrics in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute metrics"})
		return
	}

	c.JSON(http.StatusOK, dto.ToLedgerMetricsResponse(*metrics))
}

// listSnapshots godoc
// @Summary List balance snapshots for an account
// @Description Retrieves stored point-in-time balance captures, oldest first, optionally bounded by balance date.
// @Tags reports
// @Produce  json
// @Param   account_id path string true "Account ID"
// @Param   startDate query string false "Earliest balance date (RFC 3339)"
// @Param   endDate query string false "Latest balance date (RFC 3339)"
// @Success 200 {array} dto.SnapshotResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to list snapshots"
// @Router /accounts/{account_id}/snapshots [get]
func (h *reportingHandler) listSnapshots(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("account_id")

	var params dto.ListSnapshotsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListSnapshots", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + bindingErrorMessage(err)})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller context not found for ListSnapshots")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return
	}

	logger = logger.With(slog.String("account_id", accountID))

	snapshots, err := h.reportingService.ListSnapshots(c.Request.Context(), accountID, params, caller)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Account not found for snapshot listing")
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to list snapshots in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list snapshots"})
		}
		return
	}

	responses := make([]dto.SnapshotResponse, 0, len(snapshots))
	for _, snapshot := range snapshots {
		responses = append(responses, dto.ToSnapshotResponse(snapshot))
	}
	c.JSON(http.StatusOK, responses)
}

// createSnapshot godoc
// @Summary Capture a balance snapshot for an account
// @Description Computes and stores the account's balance as of the requested date, outside any period close.
// @Tags reports
// @Accept  json
// @Produce  json
// @Param   account_id path string true "Account ID"
// @Param   snapshot body dto.CreateSnapshotRequest true "Balance date to capture"
// @Success 201 {object} dto.SnapshotResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Failure 403 {object} map[string]string "Caller may not create snapshots"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to create snapshot"
// @Router /accounts/{account_id}/snapshots [post]
func (h *reportingHandler) createSnapshot(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("account_id")

	var req dto.CreateSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateSnapshot", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + bindingErrorMessage(err)})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller context not found for CreateSnapshot")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return
	}

	logger = logger.With(slog.String("account_id", accountID))
	logger.Info("Received request to create balance snapshot")

	snapshot, err := h.reportingService.CreateBalanceSnapshot(c.Request.Context(), accountID, req, caller)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Account not found for snapshot creation")
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else if errors.Is(err, apperrors.ErrForbidden) {
			logger.Warn("Caller not authorized to create snapshot", slog.String("error", err.Error()))
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create snapshot in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create snapshot"})
		}
		return
	}

	logger.Info("Balance snapshot created", slog.String("snapshot_id", snapshot.SnapshotID))
	c.JSON(http.StatusCreated, dto.ToSnapshotResponse(*snapshot))
}

// performPeriodClose godoc
// @Summary Perform a period close
// @Description Validates the ledger and snapshots every active account as of the period end. A dry run reports what would happen without writing snapshots.
// @Tags reports
// @Accept  json
// @Produce  json
// @Param   close body dto.PeriodCloseRequest true "Period end and close type"
// @Success 200 {object} dto.PeriodCloseResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Failure 403 {object} map[string]string "Caller is not allowed to close periods"
// @Failure 409 {object} map[string]string "Ledger validation found blocking issues"
// @Failure 500 {object} map[string]string "Failed to perform period close"
// @Router /reports/period-close [post]
func (h *reportingHandler) performPeriodClose(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.PeriodCloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PerformPeriodClose", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + bindingErrorMessage(err)})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller context not found for PerformPeriodClose")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return
	}

	logger = logger.With(
		slog.String("caller_id", caller.UserID),
		slog.String("close_type", req.CloseType),
		slog.Time("period_end", req.PeriodEnd),
		slog.Bool("dry_run", req.DryRun),
	)
	logger.Info("Received request to perform period close")

	result, err := h.reportingService.PerformPeriodClose(c.Request.Context(), req, caller)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error performing period close", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrForbidden) {
			logger.Warn("Caller not authorized to perform period close", slog.String("error", err.Error()))
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Period close blocked by ledger issues", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to perform period close in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to perform period close"})
		}
		return
	}

	logger.Info("Period close completed",
		slog.Int64("snapshots_created", result.SnapshotsCreated),
		slog.Int("issues_found", result.IssuesFound),
	)
	c.JSON(http.StatusOK, dto.ToPeriodCloseResponse(*result, req.DryRun))
}
