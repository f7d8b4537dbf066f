package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/bankchen1/fo3-ledger-core/internal/apperrors"
	portssvc "github.com/bankchen1/fo3-ledger-core/internal/core/ports/services"
	"github.com/bankchen1/fo3-ledger-core/internal/dto"
	"github.com/bankchen1/fo3-ledger-core/internal/middleware"
	"github.com/gin-gonic/gin"
)

// validationHandler handles HTTP requests for reconciliation and integrity checks.
type validationHandler struct {
	validationService portssvc.ValidationSvcFacade
}

// newValidationHandler creates a new validationHandler.
func newValidationHandler(vs portssvc.ValidationSvcFacade) *validationHandler {
	return &validationHandler{
		validationService: vs,
	}
}

// registerValidationRoutes registers routes related to ledger integrity.
func registerValidationRoutes(rg *gin.RouterGroup, validationService portssvc.ValidationSvcFacade) {
	h := newValidationHandler(validationService)

	validation := rg.Group("/validation")
	{
		validation.POST("/reconcile", h.reconcileAccounts)
		validation.POST("/bookkeeping", h.validateBookkeeping)
	}
}

// reconcileAccounts godoc
// @Summary Reconcile account balances
// @Description Recomputes balances from journal entries and compares them against stored balances, reporting every variance. An empty account list reconciles all active accounts. With autoCorrect, each variance is annotated with the manual correcting entry it requires.
// @Tags validation
// @Accept  json
// @Produce  json
// @Param   reconcile body dto.ReconcileAccountsRequest false "Accounts, cutoff and auto-correct flag"
// @Success 200 {object} dto.ReconcileAccountsResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Failure 404 {object} map[string]string "A requested account does not exist"
// @Failure 500 {object} map[string]string "Failed to reconcile accounts"
// @Router /validation/reconcile [post]
func (h *validationHandler) reconcileAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ReconcileAccountsRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.Warn("Failed to bind JSON for ReconcileAccounts", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + bindingErrorMessage(err)})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller context not found for ReconcileAccounts")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return
	}

	logger = logger.With(slog.String("caller_id", caller.UserID))
	logger.Info("Received request to reconcile accounts", slog.Int("requested_accounts", len(req.AccountIDs)))

	resp, err := h.validationService.ReconcileAccounts(c.Request.Context(), req, caller)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Account not found for reconciliation", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to reconcile accounts in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reconcile accounts"})
		}
		return
	}

	logger.Info("Reconciliation completed",
		slog.Int("accounts_checked", resp.AccountsChecked),
		slog.Bool("all_balanced", resp.AllBalanced),
	)
	c.JSON(http.StatusOK, resp)
}

// validateBookkeeping godoc
// @Summary Validate bookkeeping integrity
// @Description Checks double-entry balance, amount consistency and trial balance equality across posted transactions. With autoCorrect, correctable stored-balance variances are fixed in place.
// @Tags validation
// @Accept  json
// @Produce  json
// @Param   validate body dto.ValidateBookkeepingRequest false "Scope and auto-correct flag"
// @Success 200 {object} dto.ValidateBookkeepingResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Failure 500 {object} map[string]string "Failed to validate bookkeeping"
// @Router /validation/bookkeeping [post]
func (h *validationHandler) validateBookkeeping(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ValidateBookkeepingRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.Warn("Failed to bind JSON for ValidateBookkeeping", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + bindingErrorMessage(err)})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller context not found for ValidateBookkeeping")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return
	}

	logger = logger.With(slog.String("caller_id", caller.UserID))
	logger.Info("Received request to validate bookkeeping", slog.Bool("auto_correct", req.AutoCorrect))

	resp, err := h.validationService.ValidateBookkeeping(c.Request.Context(), req, caller)
	if err != nil {
		logger.Error("Failed to validate bookkeeping in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate bookkeeping"})
		return
	}

	logger.Info("Bookkeeping validation completed",
		slog.Int64("transactions_checked", resp.TransactionsChecked),
		slog.Int("issues_found", resp.IssuesFound),
		slog.Bool("books_valid", resp.BooksValid),
	)
	c.JSON(http.StatusOK, resp)
}
