package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bankchen1/fo3-ledger-core/internal/apperrors"
	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	portsrepo "github.com/bankchen1/fo3-ledger-core/internal/core/ports/repositories"
	portssvc "github.com/bankchen1/fo3-ledger-core/internal/core/ports/services"
	"github.com/bankchen1/fo3-ledger-core/internal/dto"
	"github.com/bankchen1/fo3-ledger-core/internal/platform/cache"
	"github.com/bankchen1/fo3-ledger-core/internal/utils"
	"github.com/bankchen1/fo3-ledger-core/internal/utils/accounting"
	"github.com/bankchen1/fo3-ledger-core/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// reversalTypePrefix marks transactions created by ReverseTransaction.
const reversalTypePrefix = "reversal_"

// Operation-specific sentinels. Each wraps the taxonomy sentinel that decides
// its HTTP mapping, so callers can test either the precise condition or the
// broad class with errors.Is.
var (
	ErrTooFewEntries           = fmt.Errorf("%w: transaction must have at least two journal entries", apperrors.ErrValidation)
	ErrUnbalancedEntries       = fmt.Errorf("%w: journal entries do not balance", apperrors.ErrValidation)
	ErrAccountInactive         = fmt.Errorf("%w: account is not active", apperrors.ErrValidation)
	ErrCurrencyMismatch        = fmt.Errorf("%w: account currency does not match entry currency", apperrors.ErrValidation)
	ErrManualEntriesNotAllowed = fmt.Errorf("%w: account does not allow manual entries", apperrors.ErrForbidden)
	ErrTransactionNotPending   = fmt.Errorf("%w: transaction is not in PENDING status", apperrors.ErrConflict)
	ErrTransactionNotPosted    = fmt.Errorf("%w: transaction is not in POSTED status", apperrors.ErrConflict)
	ErrAlreadyReversed         = fmt.Errorf("%w: transaction has already been reversed", apperrors.ErrConflict)
	ErrReversalOfReversal      = fmt.Errorf("%w: cannot reverse a reversal transaction", apperrors.ErrConflict)
)

// transactionService implements the TransactionSvcFacade interface
type transactionService struct {
	BaseService
	transactionRepo portsrepo.TransactionRepositoryFacade
	accountRepo     portsrepo.AccountReader
	notifier        portssvc.LedgerEventNotifier
	reportCache     *cache.ReportCache
}

// TransactionServiceOption is a functional option for configuring the transaction service
type TransactionServiceOption func(*transactionService)

// WithTransactionAuthorizer sets the ledger authorizer for the transaction service
func WithTransactionAuthorizer(authorizer portssvc.LedgerAuthorizerSvc) TransactionServiceOption {
	return func(s *transactionService) {
		s.Authorizer = authorizer
	}
}

// WithTransactionAuditRecorder sets the audit recorder for the transaction service
func WithTransactionAuditRecorder(recorder portssvc.AuditRecorderSvc) TransactionServiceOption {
	return func(s *transactionService) {
		s.AuditRecorder = recorder
	}
}

// WithTransactionNotifier sets the event notifier for the transaction service
func WithTransactionNotifier(notifier portssvc.LedgerEventNotifier) TransactionServiceOption {
	return func(s *transactionService) {
		s.notifier = notifier
	}
}

// WithTransactionReportCache sets the report cache invalidated on every
// balance change
func WithTransactionReportCache(reportCache *cache.ReportCache) TransactionServiceOption {
	return func(s *transactionService) {
		s.reportCache = reportCache
	}
}

// NewTransactionService creates a new transaction service with the provided options
func NewTransactionService(transactionRepo portsrepo.TransactionRepositoryFacade, accountRepo portsrepo.AccountReader, options ...TransactionServiceOption) portssvc.TransactionSvcFacade {
	svc := &transactionService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure transactionService implements the TransactionSvcFacade interface
var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// fetchAccountsForEntries loads every account referenced by the entries and
// verifies they all exist.
func (s *transactionService) fetchAccountsForEntries(ctx context.Context, entries []domain.JournalEntry) (map[string]domain.Account, error) {
	accountIDs := make([]string, 0, len(entries))
	for _, entry := range entries {
		accountIDs = append(accountIDs, entry.AccountID)
	}
	accountsMap, err := s.accountRepo.FindAccountsByIDs(ctx, uniqueStrings(accountIDs))
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch accounts for transaction entries")
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for _, entry := range entries {
		if _, found := accountsMap[entry.AccountID]; !found {
			return nil, fmt.Errorf("%w: account %s not found", apperrors.ErrValidation, entry.AccountID)
		}
	}
	return accountsMap, nil
}

// computeBalanceChanges calculates the net signed balance impact per account.
// Every impact is computed before any is applied, so an invalid entry aborts
// the whole batch without touching a single balance.
func (s *transactionService) computeBalanceChanges(ctx context.Context, entries []domain.JournalEntry, accountsMap map[string]domain.Account) (map[string]decimal.Decimal, error) {
	balanceChanges := make(map[string]decimal.Decimal, len(accountsMap))
	for _, entry := range entries {
		account := accountsMap[entry.AccountID]
		impact, err := accounting.BalanceImpact(account.AccountType, entry.EntryType, entry.Amount)
		if err != nil {
			s.LogError(ctx, err, "Balance impact calculation failed",
				slog.String("entry_id", entry.EntryID),
				slog.String("account_id", entry.AccountID))
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
		}
		balanceChanges[entry.AccountID] = balanceChanges[entry.AccountID].Add(impact)
	}
	return balanceChanges, nil
}

// bumpReportCache invalidates cached report responses after account balances
// change. Cache failures are logged, never returned.
func (s *transactionService) bumpReportCache(ctx context.Context) {
	if s.reportCache == nil {
		return
	}
	if err := s.reportCache.Bump(ctx); err != nil {
		s.LogWarn(ctx, "Failed to invalidate report cache", slog.String("error", err.Error()))
	}
}

// RecordTransaction validates and persists a new transaction in PENDING
// status. With AutoPost set the transaction is posted in the same call.
func (s *transactionService) RecordTransaction(ctx context.Context, req dto.RecordTransactionRequest, caller domain.CallerContext) (*domain.LedgerTransaction, error) {
	if err := s.AuthorizeAction(ctx, caller, portssvc.ActionRecordTransaction); err != nil {
		s.LogWarn(ctx, "Caller not authorized to record transaction", slog.String("user_id", caller.UserID))
		return nil, err
	}

	if len(req.Entries) < 2 {
		return nil, fmt.Errorf("%w, got %d", ErrTooFewEntries, len(req.Entries))
	}

	referenceNumber := req.ReferenceNumber
	if referenceNumber == "" {
		generated, err := utils.GenerateReferenceNumber()
		if err != nil {
			s.LogError(ctx, err, "Failed to generate reference number")
			return nil, fmt.Errorf("%w: could not generate reference number", apperrors.ErrInternal)
		}
		referenceNumber = generated
	}

	now := time.Now().UTC()
	transactionDate := now
	if req.TransactionDate != nil {
		transactionDate = req.TransactionDate.UTC()
	}
	transactionID := uuid.NewString()

	entries := make([]domain.JournalEntry, len(req.Entries))
	for i, entryReq := range req.Entries {
		if entryReq.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: entry amount must be positive for account %s", apperrors.ErrValidation, entryReq.AccountID)
		}
		if !entryReq.EntryType.IsValid() {
			return nil, fmt.Errorf("%w: invalid entry type %q", apperrors.ErrValidation, entryReq.EntryType)
		}
		currencyCode := entryReq.CurrencyCode
		if currencyCode == "" {
			currencyCode = req.CurrencyCode
		}
		entries[i] = domain.JournalEntry{
			EntryID:       uuid.NewString(),
			TransactionID: transactionID,
			AccountID:     entryReq.AccountID,
			EntryType:     entryReq.EntryType,
			Amount:        entryReq.Amount,
			CurrencyCode:  currencyCode,
			Description:   entryReq.Description,
			Status:        domain.EntryDraft,
			EntrySequence: i + 1,
			Metadata:      entryReq.Metadata,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     caller.UserID,
				LastUpdatedAt: now,
				LastUpdatedBy: caller.UserID,
			},
		}
	}

	if err := accounting.ValidateDoubleEntry(entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnbalancedEntries, err)
	}

	accountsMap, err := s.fetchAccountsForEntries(ctx, entries)
	if err != nil {
		return nil, err
	}

	isManual := req.SourceService == "" && !caller.IsSystemProcess
	for _, entry := range entries {
		account := accountsMap[entry.AccountID]
		if !account.IsActive() {
			return nil, fmt.Errorf("%w: account %s", ErrAccountInactive, entry.AccountID)
		}
		if account.CurrencyCode != entry.CurrencyCode {
			return nil, fmt.Errorf("%w: account %s uses %s, entry uses %s", ErrCurrencyMismatch, entry.AccountID, account.CurrencyCode, entry.CurrencyCode)
		}
		if isManual && !account.AllowManualEntries {
			return nil, fmt.Errorf("%w: account %s", ErrManualEntriesNotAllowed, entry.AccountID)
		}
	}

	txn := domain.LedgerTransaction{
		TransactionID:       transactionID,
		ReferenceNumber:     referenceNumber,
		TransactionType:     req.TransactionType,
		Description:         req.Description,
		CurrencyCode:        req.CurrencyCode,
		TotalAmount:         accounting.CalculateTotalAmount(entries),
		Status:              domain.TransactionPending,
		Entries:             entries,
		SourceService:       req.SourceService,
		SourceTransactionID: req.SourceTransactionID,
		Metadata:            req.Metadata,
		TransactionDate:     transactionDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.UserID,
		},
	}

	if err := s.transactionRepo.SaveTransaction(ctx, txn); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save transaction", slog.String("reference_number", referenceNumber))
		}
		return nil, err
	}

	s.RecordAudit(ctx, domain.AuditTrailEntry{
		TransactionID: txn.TransactionID,
		Action:        domain.AuditTransactionRecorded,
		NewValue:      auditValue(txn),
		UserID:        caller.UserID,
		IPAddress:     caller.IPAddress,
		UserAgent:     caller.UserAgent,
	})

	s.LogInfo(ctx, "Transaction recorded",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("reference_number", txn.ReferenceNumber),
		slog.Int("entry_count", len(entries)))

	if req.AutoPost {
		return s.PostTransaction(ctx, txn.TransactionID, caller)
	}
	return &txn, nil
}

// PostTransaction applies a pending transaction's balance impacts atomically.
// All impacts are computed and validated first; the repository then applies
// the status flips and balance updates as one unit.
func (s *transactionService) PostTransaction(ctx context.Context, transactionID string, caller domain.CallerContext) (*domain.LedgerTransaction, error) {
	if err := s.AuthorizeAction(ctx, caller, portssvc.ActionPostTransaction); err != nil {
		s.LogWarn(ctx, "Caller not authorized to post transaction", slog.String("user_id", caller.UserID))
		return nil, err
	}

	txn, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find transaction for posting", slog.String("transaction_id", transactionID))
		}
		return nil, err
	}

	if txn.Status != domain.TransactionPending {
		return nil, fmt.Errorf("%w: status is %s", ErrTransactionNotPending, txn.Status)
	}

	accountsMap, err := s.fetchAccountsForEntries(ctx, txn.Entries)
	if err != nil {
		return nil, err
	}
	for _, entry := range txn.Entries {
		if account := accountsMap[entry.AccountID]; !account.IsActive() {
			return nil, fmt.Errorf("%w: account %s", ErrAccountInactive, entry.AccountID)
		}
	}

	balanceChanges, err := s.computeBalanceChanges(ctx, txn.Entries, accountsMap)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.transactionRepo.ApplyPosting(ctx, *txn, balanceChanges, caller.UserID, now); err != nil {
		s.LogError(ctx, err, "Failed to apply posting", slog.String("transaction_id", transactionID))
		return nil, err
	}
	s.bumpReportCache(ctx)

	txn.Status = domain.TransactionPosted
	txn.PostedAt = &now
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = caller.UserID
	for i := range txn.Entries {
		txn.Entries[i].Status = domain.EntryPosted
		txn.Entries[i].PostedAt = &now
		txn.Entries[i].LastUpdatedAt = now
		txn.Entries[i].LastUpdatedBy = caller.UserID
	}

	s.RecordAudit(ctx, domain.AuditTrailEntry{
		TransactionID: txn.TransactionID,
		Action:        domain.AuditTransactionPosted,
		NewValue:      auditValue(txn),
		UserID:        caller.UserID,
		IPAddress:     caller.IPAddress,
		UserAgent:     caller.UserAgent,
	})
	for accountID, change := range balanceChanges {
		oldBalance := accountsMap[accountID].CurrentBalance
		s.RecordAudit(ctx, domain.AuditTrailEntry{
			TransactionID: txn.TransactionID,
			AccountID:     accountID,
			Action:        domain.AuditAccountBalanceChange,
			OldValue:      oldBalance.String(),
			NewValue:      oldBalance.Add(change).String(),
			UserID:        caller.UserID,
			IPAddress:     caller.IPAddress,
			UserAgent:     caller.UserAgent,
		})
	}

	s.LogInfo(ctx, "Transaction posted",
		slog.String("transaction_id", txn.TransactionID),
		slog.Int("accounts_affected", len(balanceChanges)))
	return txn, nil
}

func (s *transactionService) GetTransactionByID(ctx context.Context, transactionID string, caller domain.CallerContext) (*domain.LedgerTransaction, error) {
	txn, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find transaction by ID", slog.String("transaction_id", transactionID))
		}
		return nil, err
	}
	return txn, nil
}

func (s *transactionService) GetTransactionByReference(ctx context.Context, referenceNumber string, caller domain.CallerContext) (*domain.LedgerTransaction, error) {
	txn, err := s.transactionRepo.FindTransactionByReference(ctx, referenceNumber)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find transaction by reference", slog.String("reference_number", referenceNumber))
		}
		return nil, err
	}
	return txn, nil
}

// ListTransactions retrieves a paginated, filtered list of transactions, newest first.
func (s *transactionService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams, caller domain.CallerContext) (*dto.ListTransactionsResponse, error) {
	page, pageSize := pagination.Normalize(params.Page, params.PageSize)
	filter := portsrepo.TransactionFilter{
		AccountID:       params.AccountID,
		Status:          params.Status,
		TransactionType: params.TransactionType,
		CurrencyCode:    params.CurrencyCode,
		SourceService:   params.SourceService,
		StartDate:       params.StartDate,
		EndDate:         params.EndDate,
		Page:            page,
		PageSize:        pageSize,
	}

	txns, total, err := s.transactionRepo.ListTransactions(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions")
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	resp := dto.ToListTransactionsResponse(txns, total, page, pageSize)
	s.LogDebug(ctx, "Transactions listed", slog.Int("count", len(txns)), slog.Int64("total", total))
	return &resp, nil
}

// UpdateTransaction updates descriptive fields of a pending transaction.
// Entries and amounts are immutable once recorded.
func (s *transactionService) UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, caller domain.CallerContext) (*domain.LedgerTransaction, error) {
	txn, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find transaction for update", slog.String("transaction_id", transactionID))
		}
		return nil, err
	}

	if txn.Status != domain.TransactionPending {
		return nil, fmt.Errorf("%w: status is %s", ErrTransactionNotPending, txn.Status)
	}

	oldValue := auditValue(txn)
	updated := false
	if req.Description != nil {
		txn.Description = *req.Description
		updated = true
	}
	if req.TransactionDate != nil {
		txn.TransactionDate = req.TransactionDate.UTC()
		updated = true
	}
	if req.Metadata != nil {
		txn.Metadata = req.Metadata
		updated = true
	}

	if !updated {
		s.LogDebug(ctx, "No fields provided for transaction update", slog.String("transaction_id", transactionID))
		return txn, nil
	}

	now := time.Now().UTC()
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = caller.UserID

	if err := s.transactionRepo.UpdateTransactionDetails(ctx, *txn); err != nil {
		s.LogError(ctx, err, "Failed to update transaction", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	s.RecordAudit(ctx, domain.AuditTrailEntry{
		TransactionID: txn.TransactionID,
		Action:        domain.AuditTransactionUpdated,
		OldValue:      oldValue,
		NewValue:      auditValue(txn),
		UserID:        caller.UserID,
		IPAddress:     caller.IPAddress,
		UserAgent:     caller.UserAgent,
	})

	s.LogInfo(ctx, "Transaction updated", slog.String("transaction_id", transactionID))
	return txn, nil
}

// ReverseTransaction creates a mirror image of a posted transaction with every
// debit flipped to a credit and vice versa. The reversal is created already
// posted and the original is marked REVERSED in the same atomic operation.
func (s *transactionService) ReverseTransaction(ctx context.Context, transactionID string, req dto.ReverseTransactionRequest, caller domain.CallerContext) (*dto.ReverseTransactionResponse, error) {
	if err := s.AuthorizeAction(ctx, caller, portssvc.ActionReverseTransaction); err != nil {
		s.LogWarn(ctx, "Caller not authorized to reverse transaction", slog.String("user_id", caller.UserID))
		return nil, err
	}

	original, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find transaction for reversal", slog.String("transaction_id", transactionID))
		}
		return nil, err
	}

	switch original.Status {
	case domain.TransactionReversed:
		return nil, fmt.Errorf("%w: transaction %s", ErrAlreadyReversed, transactionID)
	case domain.TransactionPosted:
		// Only posted transactions carry balance impacts that can be undone.
	default:
		return nil, fmt.Errorf("%w: status is %s", ErrTransactionNotPosted, original.Status)
	}
	if strings.HasPrefix(original.TransactionType, reversalTypePrefix) {
		return nil, fmt.Errorf("%w: %s", ErrReversalOfReversal, transactionID)
	}

	now := time.Now().UTC()
	reversalID := uuid.NewString()

	reversalEntries := make([]domain.JournalEntry, len(original.Entries))
	for i, origEntry := range original.Entries {
		reversalEntries[i] = domain.JournalEntry{
			EntryID:       uuid.NewString(),
			TransactionID: reversalID,
			AccountID:     origEntry.AccountID,
			EntryType:     origEntry.EntryType.Opposite(),
			Amount:        origEntry.Amount,
			CurrencyCode:  origEntry.CurrencyCode,
			Description:   "Reversal of: " + origEntry.Description,
			Status:        domain.EntryPosted,
			EntrySequence: origEntry.EntrySequence,
			PostedAt:      &now,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     caller.UserID,
				LastUpdatedAt: now,
				LastUpdatedBy: caller.UserID,
			},
		}
	}

	metadata := map[string]string{"original_transaction_id": original.TransactionID}
	if req.Description != "" {
		metadata["note"] = req.Description
	}
	reversal := domain.LedgerTransaction{
		TransactionID:       reversalID,
		ReferenceNumber:     utils.ReversalReferenceNumber(original.ReferenceNumber),
		TransactionType:     reversalTypePrefix + original.TransactionType,
		Description:         "Reversal of: " + original.Description,
		CurrencyCode:        original.CurrencyCode,
		TotalAmount:         original.TotalAmount,
		Status:              domain.TransactionPosted,
		Entries:             reversalEntries,
		SourceService:       original.SourceService,
		SourceTransactionID: original.SourceTransactionID,
		Metadata:            metadata,
		TransactionDate:     now,
		PostedAt:            &now,
		ReversalReason:      req.Reason,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.UserID,
		},
	}

	// Accounts must still exist, but a closed account does not block the
	// reversal: undoing the posted impacts is what restores it to zero.
	accountsMap, err := s.fetchAccountsForEntries(ctx, reversalEntries)
	if err != nil {
		return nil, err
	}
	balanceChanges, err := s.computeBalanceChanges(ctx, reversalEntries, accountsMap)
	if err != nil {
		return nil, err
	}

	updatedOriginal := *original
	updatedOriginal.Status = domain.TransactionReversed
	updatedOriginal.ReversedAt = &now
	updatedOriginal.ReversalReason = req.Reason
	updatedOriginal.ReversalTransactionID = reversalID
	updatedOriginal.LastUpdatedAt = now
	updatedOriginal.LastUpdatedBy = caller.UserID

	if err := s.transactionRepo.ApplyReversal(ctx, updatedOriginal, reversal, balanceChanges, caller.UserID, now); err != nil {
		s.LogError(ctx, err, "Failed to apply reversal",
			slog.String("transaction_id", transactionID),
			slog.String("reversal_id", reversalID))
		return nil, err
	}
	s.bumpReportCache(ctx)

	s.RecordAudit(ctx, domain.AuditTrailEntry{
		TransactionID: original.TransactionID,
		Action:        domain.AuditTransactionReversed,
		OldValue:      auditValue(original),
		NewValue:      auditValue(reversal),
		UserID:        caller.UserID,
		IPAddress:     caller.IPAddress,
		UserAgent:     caller.UserAgent,
		Metadata: map[string]string{
			"reversal_transaction_id": reversalID,
			"reason":                  req.Reason,
		},
	})

	if s.notifier != nil {
		s.notifier.Notify(ctx, caller.UserID, portssvc.EventTransactionReversed, map[string]any{
			"transaction_id":          original.TransactionID,
			"reversal_transaction_id": reversalID,
			"reference_number":        original.ReferenceNumber,
			"total_amount":            original.TotalAmount.String(),
			"currency_code":           original.CurrencyCode,
			"reason":                  req.Reason,
		})
	}

	s.LogInfo(ctx, "Transaction reversed",
		slog.String("transaction_id", original.TransactionID),
		slog.String("reversal_id", reversalID))

	resp := dto.ToReverseTransactionResponse(updatedOriginal, reversal)
	return &resp, nil
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
