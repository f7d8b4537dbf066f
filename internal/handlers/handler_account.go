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

// accountHandler handles HTTP requests for the chart of accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
	}
}

// registerAccountRoutes registers routes related to ledger accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/code/:account_code", h.getAccountByCode)
		accounts.GET("/:account_id", h.getAccount)
		accounts.PUT("/:account_id", h.updateAccount)
		accounts.POST("/:account_id/close", h.closeAccount)
		accounts.GET("/:account_id/balance", h.getAccountBalance)
	}
}

// createAccount godoc
// @Summary Create a new ledger account
// @Description Creates a new account in the chart of accounts with a zero opening balance.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input or unknown parent account"
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Failure 409 {object} map[string]string "Account code already in use"
// @Failure 500 {object} map[string]string "Failed to create account"
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + bindingErrorMessage(err)})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller context not found for CreateAccount")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return
	}

	logger = logger.With(slog.String("caller_id", caller.UserID))
	logger.Info("Received request to create account", slog.String("account_code", req.AccountCode), slog.String("currency_code", req.CurrencyCode))

	newAccount, err := h.accountService.CreateAccount(c.Request.Context(), req, caller)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating account", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Account code already in use", slog.String("account_code", req.AccountCode))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			// The parent account reference did not resolve.
			logger.Warn("Parent account not found creating account", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create account in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		}
		return
	}

	logger.Info("Account created successfully", slog.String("account_id", newAccount.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(*newAccount))
}

// getAccount godoc
// @Summary Get an account by ID
// @Description Retrieves details for a specific account by its unique identifier.
// @Tags accounts
// @Produce  json
// @Param   account_id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to retrieve account"
// @Router /accounts/{account_id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("account_id")

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller context not found for GetAccount")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return
	}

	logger = logger.With(slog.String("account_id", accountID))

	account, err := h.accountService.GetAccountByID(c.Request.Context(), accountID, caller)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Account not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to get account from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve account"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(*account))
}

// getAccountByCode godoc
// @Summary Get an account by code
// @Description Retrieves details for a specific account by its globally unique account code.
// @Tags accounts
// @Produce  json
// @Param   account_code path string true "Account code"
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to retrieve account"
// @Router /accounts/code/{account_code} [get]
func (h *accountHandler) getAccountByCode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountCode := c.Param("account_code")

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller context not found for GetAccountByCode")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return
	}

	logger = logger.With(slog.String("account_code", accountCode))

	account, err := h.accountService.GetAccountByCode(c.Request.Context(), accountCode, caller)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Account not found by code")
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to get account by code from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve account"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(*account))
}

// listAccounts godoc
// @Summary List ledger accounts
// @Description Retrieves a paginated list of accounts, optionally filtered by type, status, currency and parent.
// @Tags accounts
// @Produce  json
// @Param   accountType query string false "Filter by account type" Enums(ASSET, LIABILITY, EQUITY, REVENUE, EXPENSE, CONTRA_ASSET, CONTRA_LIABILITY, CONTRA_EQUITY)
// @Param   status query string false "Filter by status" Enums(ACTIVE, CLOSED)
// @Param   currencyCode query string false "Filter by ISO 4217 currency code"
// @Param   parentAccountId query string false "Filter by parent account ID"
// @Param   page query int false "Page number (default 1)"
// @Param   pageSize query int false "Page size (default 20, max 100)"
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Failure 500 {object} map[string]string "Failed to list accounts"
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListAccounts", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + bindingErrorMessage(err)})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller context not found for ListAccounts")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return
	}

	resp, err := h.accountService.ListAccounts(c.Request.Context(), params, caller)
	if err != nil {
		logger.Error("Failed to list accounts from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list accounts"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// updateAccount godoc
// @Summary Update an account
// @Description Updates an account's mutable details. Account code, type and currency are immutable.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account_id path string true "Account ID"
// @Param   account body dto.UpdateAccountRequest true "Fields to update"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account is closed"
// @Failure 500 {object} map[string]string "Failed to update account"
// @Router /accounts/{account_id} [put]
func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("account_id")

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + bindingErrorMessage(err)})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller context not found for UpdateAccount")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return
	}

	logger = logger.With(slog.String("account_id", accountID), slog.String("caller_id", caller.UserID))
	logger.Info("Received request to update account")

	account, err := h.accountService.UpdateAccount(c.Request.Context(), accountID, req, caller)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error updating account", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Account not found for update")
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Conflict updating account", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to update account in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update account"})
		}
		return
	}

	logger.Info("Account updated successfully")
	c.JSON(http.StatusOK, dto.ToAccountResponse(*account))
}

// closeAccount godoc
// @Summary Close an account
// @Description Closes a zero-balance account. Closed accounts reject new entries but stay readable.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account_id path string true "Account ID"
// @Param   close body dto.CloseAccountRequest false "Close reason"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Failure 403 {object} map[string]string "System accounts cannot be closed manually"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account has a non-zero balance or is already closed"
// @Failure 500 {object} map[string]string "Failed to close account"
// @Router /accounts/{account_id}/close [post]
func (h *accountHandler) closeAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("account_id")

	var req dto.CloseAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.Warn("Failed to bind JSON for CloseAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + bindingErrorMessage(err)})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller context not found for CloseAccount")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return
	}

	logger = logger.With(slog.String("account_id", accountID), slog.String("caller_id", caller.UserID))
	logger.Info("Received request to close account")

	if err := h.accountService.CloseAccount(c.Request.Context(), accountID, req, caller); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Account not found for close")
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else if errors.Is(err, apperrors.ErrForbidden) {
			logger.Warn("Forbidden to close account", slog.String("error", err.Error()))
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Conflict closing account", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to close account in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close account"})
		}
		return
	}

	logger.Info("Account closed successfully")
	c.Status(http.StatusNoContent)
}

// getAccountBalance godoc
// @Summary Get a computed account balance
// @Description Computes the account balance by replaying journal entries, independent of the stored balance.
// @Tags accounts
// @Produce  json
// @Param   account_id path string true "Account ID"
// @Param   asOf query string false "Balance cutoff (RFC 3339)"
// @Param   includePending query bool false "Include draft entries from pending transactions"
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to compute balance"
// @Router /accounts/{account_id}/balance [get]
func (h *accountHandler) getAccountBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("account_id")

	var params dto.GetBalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for GetAccountBalance", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + bindingErrorMessage(err)})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller context not found for GetAccountBalance")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return
	}

	logger = logger.With(slog.String("account_id", accountID))

	balance, err := h.accountService.GetAccountBalance(c.Request.Context(), accountID, params, caller)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Account not found for balance query")
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to compute account balance in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute balance"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountBalanceResponse(*balance))
}
