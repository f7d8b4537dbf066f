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

// transactionHandler handles HTTP requests for ledger transactions.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

// newTransactionHandler creates a new transactionHandler.
func newTransactionHandler(ts portssvc.TransactionSvcFacade) *transactionHandler {
	return &transactionHandler{
		transactionService: ts,
	}
}

// registerTransactionRoutes registers routes related to ledger transactions.
func registerTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade) {
	h := newTransactionHandler(transactionService)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.recordTransaction)
		transactions.GET("", h.listTransactions)
		transactions.GET("/reference/:reference_number", h.getTransactionByReference)
		transactions.GET("/:transaction_id", h.getTransaction)
		transactions.PUT("/:transaction_id", h.updateTransaction)
		transactions.POST("/:transaction_id/post", h.postTransaction)
		transactions.POST("/:transaction_id/reverse", h.reverseTransaction)
	}
}

// recordTransaction godoc
// @Summary Record a ledger transaction
// @Description Validates and records a balanced set of journal entries as a PENDING transaction. With autoPost it is applied to balances immediately.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.RecordTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Unbalanced entries, unknown account or validation error"
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Failure 403 {object} map[string]string "Account does not allow manual entries"
// @Failure 409 {object} map[string]string "Reference number already in use"
// @Failure 500 {object} map[string]string "Failed to record transaction"
// @Router /transactions [post]
func (h *transactionHandler) recordTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + bindingErrorMessage(err)})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller context not found for RecordTransaction")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return
	}

	logger = logger.With(slog.String("caller_id", caller.UserID))
	logger.Info("Received request to record transaction",
		slog.String("transaction_type", req.TransactionType),
		slog.String("currency_code", req.CurrencyCode),
		slog.Int("entry_count", len(req.Entries)),
		slog.Bool("auto_post", req.AutoPost),
	)

	txn, err := h.transactionService.RecordTransaction(c.Request.Context(), req, caller)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error recording transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			// One of the referenced accounts does not exist.
			logger.Warn("Unknown account recording transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrForbidden) {
			logger.Warn("Forbidden to record transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Duplicate reference number recording transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Conflict recording transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to record transaction in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record transaction"})
		}
		return
	}

	logger.Info("Transaction recorded successfully",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("status", string(txn.Status)),
	)
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(*txn))
}

// getTransaction godoc
// @Summary Get a transaction by ID
// @Description Retrieves a transaction with its journal entries.
// @Tags transactions
// @Produce  json
// @Param   transaction_id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to retrieve transaction"
// @Router /transactions/{transaction_id} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transaction_id")

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller context not found for GetTransaction")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return
	}

	logger = logger.With(slog.String("transaction_id", transactionID))

	txn, err := h.transactionService.GetTransactionByID(c.Request.Context(), transactionID, caller)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Transaction not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		} else {
			logger.Error("Failed to get transaction from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transaction"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(*txn))
}

// getTransactionByReference godoc
// @Summary Get a transaction by reference number
// @Description Retrieves a transaction by its globally unique reference number, the idempotency key for recording.
// @Tags transactions
// @Produce  json
// @Param   reference_number path string true "Reference number"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to retrieve transaction"
// @Router /transactions/reference/{reference_number} [get]
func (h *transactionHandler) getTransactionByReference(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	referenceNumber := c.Param("reference_number")

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller context not found for GetTransactionByReference")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return
	}

	logger = logger.With(slog.String("reference_number", referenceNumber))

	txn, err := h.transactionService.GetTransactionByReference(c.Request.Context(), referenceNumber, caller)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Transaction not found by reference")
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		} else {
			logger.Error("Failed to get transaction by reference from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transaction"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(*txn))
}

// listTransactions godoc
// @Summary List ledger transactions
// @Description Retrieves a paginated list of transactions, newest first, with their journal entries.
// @Tags transactions
// @Produce  json
// @Param   accountId query string false "Only transactions touching this account"
// @Param   status query string false "Filter by status" Enums(PENDING, POSTED, REVERSED)
// @Param   transactionType query string false "Filter by transaction type"
// @Param   currencyCode query string false "Filter by ISO 4217 currency code"
// @Param   sourceService query string false "Filter by originating service"
// @Param   startDate query string false "Earliest transaction date (RFC 3339)"
// @Param   endDate query string false "Latest transaction date (RFC 3339)"
// @Param   page query int false "Page number (default 1)"
// @Param   pageSize query int false "Page size (default 20, max 100)"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Router /transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + bindingErrorMessage(err)})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller context not found for ListTransactions")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return
	}

	resp, err := h.transactionService.ListTransactions(c.Request.Context(), params, caller)
	if err != nil {
		logger.Error("Failed to list transactions from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// updateTransaction godoc
// @Summary Update a pending transaction
// @Description Updates descriptive fields of a PENDING transaction. Entries and amounts are immutable after recording.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction_id path string true "Transaction ID"
// @Param   transaction body dto.UpdateTransactionRequest true "Fields to update"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction is not pending"
// @Failure 500 {object} map[string]string "Failed to update transaction"
// @Router /transactions/{transaction_id} [put]
func (h *transactionHandler) updateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transaction_id")

	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + bindingErrorMessage(err)})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller context not found for UpdateTransaction")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return
	}

	logger = logger.With(slog.String("transaction_id", transactionID), slog.String("caller_id", caller.UserID))
	logger.Info("Received request to update transaction")

	txn, err := h.transactionService.UpdateTransaction(c.Request.Context(), transactionID, req, caller)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error updating transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Transaction not found for update")
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Transaction not pending for update", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to update transaction in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update transaction"})
		}
		return
	}

	logger.Info("Transaction updated successfully")
	c.JSON(http.StatusOK, dto.ToTransactionResponse(*txn))
}

// postTransaction godoc
// @Summary Post a pending transaction
// @Description Applies a PENDING transaction's balance impacts to its accounts in a single atomic operation.
// @Tags transactions
// @Produce  json
// @Param   transaction_id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Transaction fails validation at posting time"
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Failure 403 {object} map[string]string "Caller is not allowed to post transactions"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction is not pending or an account is no longer active"
// @Failure 500 {object} map[string]string "Failed to post transaction"
// @Router /transactions/{transaction_id}/post [post]
func (h *transactionHandler) postTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transaction_id")

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller context not found for PostTransaction")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return
	}

	logger = logger.With(slog.String("transaction_id", transactionID), slog.String("caller_id", caller.UserID))
	logger.Info("Received request to post transaction")

	txn, err := h.transactionService.PostTransaction(c.Request.Context(), transactionID, caller)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Transaction not found for posting")
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error posting transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrForbidden) {
			logger.Warn("Caller not authorized to post transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Conflict posting transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to post transaction in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post transaction"})
		}
		return
	}

	logger.Info("Transaction posted successfully")
	c.JSON(http.StatusOK, dto.ToTransactionResponse(*txn))
}

// reverseTransaction godoc
// @Summary Reverse a posted transaction
// @Description Creates and posts a mirror-image reversal of a POSTED transaction, then links the pair. Reversals are the only way to undo posted impacts.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction_id path string true "Transaction ID"
// @Param   reversal body dto.ReverseTransactionRequest true "Reversal reason"
// @Success 201 {object} dto.ReverseTransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Missing caller identity"
// @Failure 403 {object} map[string]string "Caller is not allowed to reverse transactions"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction is not posted, already reversed, or itself a reversal"
// @Failure 500 {object} map[string]string "Failed to reverse transaction"
// @Router /transactions/{transaction_id}/reverse [post]
func (h *transactionHandler) reverseTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transaction_id")

	var req dto.ReverseTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ReverseTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + bindingErrorMessage(err)})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller context not found for ReverseTransaction")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
		return
	}

	logger = logger.With(slog.String("transaction_id", transactionID), slog.String("caller_id", caller.UserID))
	logger.Info("Received request to reverse transaction", slog.String("reason", req.Reason))

	resp, err := h.transactionService.ReverseTransaction(c.Request.Context(), transactionID, req, caller)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Transaction not found for reversal")
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error reversing transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrForbidden) {
			logger.Warn("Caller not authorized to reverse transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Conflict reversing transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to reverse transaction in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reverse transaction"})
		}
		return
	}

	logger.Info("Transaction reversed successfully",
		slog.String("reversal_transaction_id", resp.ReversalTransaction.TransactionID),
	)
	c.JSON(http.StatusCreated, resp)
}
