package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bankchen1/fo3-ledger-core/internal/apperrors"
	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	portsrepo "github.com/bankchen1/fo3-ledger-core/internal/core/ports/repositories"
	portssvc "github.com/bankchen1/fo3-ledger-core/internal/core/ports/services"
	"github.com/bankchen1/fo3-ledger-core/internal/dto"
	"github.com/bankchen1/fo3-ledger-core/internal/utils/accounting"
	"github.com/bankchen1/fo3-ledger-core/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrNonZeroBalance is returned when closing an account that still carries a balance.
	ErrNonZeroBalance = fmt.Errorf("%w: account balance must be zero to close", apperrors.ErrConflict)
	// ErrAccountClosed is returned when mutating an account that has been closed.
	ErrAccountClosed = fmt.Errorf("%w: account is closed", apperrors.ErrConflict)
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	entryReader portsrepo.TransactionReader
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithAccountAuthorizer sets the ledger authorizer for the account service
func WithAccountAuthorizer(authorizer portssvc.LedgerAuthorizerSvc) AccountServiceOption {
	return func(s *accountService) {
		s.Authorizer = authorizer
	}
}

// WithAccountAuditRecorder sets the audit recorder for the account service
func WithAccountAuditRecorder(recorder portssvc.AuditRecorderSvc) AccountServiceOption {
	return func(s *accountService) {
		s.AuditRecorder = recorder
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, entryReader portsrepo.TransactionReader, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		accountRepo: accountRepo,
		entryReader: entryReader,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, caller domain.CallerContext) (*domain.Account, error) {
	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: invalid account type %q", apperrors.ErrValidation, req.AccountType)
	}

	var parentID *string
	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		parent, err := s.accountRepo.FindAccountByID(ctx, *req.ParentAccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent account %s not found", apperrors.ErrValidation, *req.ParentAccountID)
			}
			s.LogError(ctx, err, "Failed to find parent account", slog.String("parent_id", *req.ParentAccountID))
			return nil, fmt.Errorf("failed to validate parent account: %w", err)
		}
		if parent.CurrencyCode != req.CurrencyCode {
			return nil, fmt.Errorf("%w: parent account currency %s does not match %s", apperrors.ErrValidation, parent.CurrencyCode, req.CurrencyCode)
		}
		parentID = &parent.AccountID
	}

	allowManual := true
	if req.AllowManualEntries != nil {
		allowManual = *req.AllowManualEntries
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:          uuid.NewString(),
		AccountCode:        req.AccountCode,
		Name:               req.Name,
		Description:        req.Description,
		AccountType:        req.AccountType,
		CurrencyCode:       req.CurrencyCode,
		ParentAccountID:    parentID,
		Status:             domain.AccountActive,
		AllowManualEntries: allowManual,
		IsSystemAccount:    req.IsSystemAccount,
		CurrentBalance:     decimal.Zero,
		PendingBalance:     decimal.Zero,
		Metadata:           req.Metadata,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.UserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save account", slog.String("account_code", account.AccountCode))
		}
		return nil, err
	}

	s.RecordAudit(ctx, domain.AuditTrailEntry{
		AccountID: account.AccountID,
		Action:    domain.AuditAccountCreated,
		NewValue:  auditValue(account),
		UserID:    caller.UserID,
		IPAddress: caller.IPAddress,
		UserAgent: caller.UserAgent,
	})

	s.LogInfo(ctx, "Account created",
		slog.String("account_id", account.AccountID),
		slog.String("account_code", account.AccountCode),
		slog.String("account_type", string(account.AccountType)))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string, caller domain.CallerContext) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountByCode(ctx context.Context, accountCode string, caller domain.CallerContext) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, accountCode)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by code", slog.String("account_code", accountCode))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountsByIDs(ctx context.Context, accountIDs []string, caller domain.CallerContext) (map[string]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		s.LogError(ctx, err, "Failed to find accounts by IDs", slog.Int("requested", len(accountIDs)))
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	return accounts, nil
}

// ListAccounts retrieves a paginated, filtered list of accounts.
func (s *accountService) ListAccounts(ctx context.Context, params dto.ListAccountsParams, caller domain.CallerContext) (*dto.ListAccountsResponse, error) {
	page, pageSize := pagination.Normalize(params.Page, params.PageSize)
	filter := portsrepo.AccountFilter{
		AccountType:     params.AccountType,
		Status:          params.Status,
		CurrencyCode:    params.CurrencyCode,
		ParentAccountID: params.ParentAccountID,
		Page:            page,
		PageSize:        pageSize,
	}

	accounts, total, err := s.accountRepo.ListAccounts(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	resp := dto.ToListAccountsResponse(accounts, total, page, pageSize)
	s.LogDebug(ctx, "Accounts listed", slog.Int("count", len(accounts)), slog.Int64("total", total))
	return &resp, nil
}

// GetAccountBalance computes balances by replaying the account's journal
// entries: current counts posted entries only, pending includes drafts.
func (s *accountService) GetAccountBalance(ctx context.Context, accountID string, params dto.GetBalanceParams, caller domain.CallerContext) (*domain.AccountBalance, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account for balance", slog.String("account_id", accountID))
		}
		return nil, err
	}

	entries, err := s.entryReader.FindEntriesByAccountID(ctx, accountID, params.AsOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to load journal entries for balance", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to load journal entries: %w", err)
	}

	current := decimal.Zero
	pending := decimal.Zero
	var lastTxnDate *time.Time
	txnSeen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		impact, err := accounting.BalanceImpact(account.AccountType, entry.EntryType, entry.Amount)
		if err != nil {
			s.LogError(ctx, err, "Balance impact calculation failed",
				slog.String("account_id", accountID),
				slog.String("entry_id", entry.EntryID))
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
		}
		pending = pending.Add(impact)
		if entry.Status == domain.EntryPosted {
			current = current.Add(impact)
		}
		txnSeen[entry.TransactionID] = struct{}{}
		if lastTxnDate == nil || entry.CreatedAt.After(*lastTxnDate) {
			t := entry.CreatedAt
			lastTxnDate = &t
		}
	}

	available := current
	if params.IncludePending {
		available = pending
	}

	balance := &domain.AccountBalance{
		AccountID:           account.AccountID,
		AccountCode:         account.AccountCode,
		AccountName:         account.Name,
		AccountType:         account.AccountType,
		CurrencyCode:        account.CurrencyCode,
		CurrentBalance:      current,
		PendingBalance:      pending,
		AvailableBalance:    available,
		LastTransactionDate: lastTxnDate,
		TransactionCount:    int64(len(txnSeen)),
	}

	s.LogDebug(ctx, "Account balance computed",
		slog.String("account_id", accountID),
		slog.String("current", current.String()),
		slog.String("pending", pending.String()))
	return balance, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, caller domain.CallerContext) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account for update", slog.String("account_id", accountID))
		}
		return nil, err
	}

	if account.Status == domain.AccountClosed {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrAccountClosed)
	}

	oldValue := auditValue(account)
	updated := false
	if req.Name != nil {
		account.Name = *req.Name
		updated = true
	}
	if req.Description != nil {
		account.Description = *req.Description
		updated = true
	}
	if req.AllowManualEntries != nil {
		account.AllowManualEntries = *req.AllowManualEntries
		updated = true
	}
	if req.Metadata != nil {
		account.Metadata = req.Metadata
		updated = true
	}

	if !updated {
		s.LogDebug(ctx, "No fields provided for account update", slog.String("account_id", accountID))
		return account, nil
	}

	now := time.Now().UTC()
	account.LastUpdatedAt = now
	account.LastUpdatedBy = caller.UserID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	s.RecordAudit(ctx, domain.AuditTrailEntry{
		AccountID: account.AccountID,
		Action:    domain.AuditAccountUpdated,
		OldValue:  oldValue,
		NewValue:  auditValue(account),
		UserID:    caller.UserID,
		IPAddress: caller.IPAddress,
		UserAgent: caller.UserAgent,
	})

	s.LogInfo(ctx, "Account updated", slog.String("account_id", accountID))
	return account, nil
}

// CloseAccount marks an account closed once its balances are zero.
func (s *accountService) CloseAccount(ctx context.Context, accountID string, req dto.CloseAccountRequest, caller domain.CallerContext) error {
	if err := s.AuthorizeAction(ctx, caller, portssvc.ActionCloseAccount); err != nil {
		s.LogWarn(ctx, "Caller not authorized to close account",
			slog.String("user_id", caller.UserID),
			slog.String("account_id", accountID))
		return err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account for closing", slog.String("account_id", accountID))
		}
		return err
	}

	if account.Status == domain.AccountClosed {
		return fmt.Errorf("%w: account %s is already closed", apperrors.ErrConflict, accountID)
	}
	if !account.CurrentBalance.IsZero() || !account.PendingBalance.IsZero() {
		return fmt.Errorf("%w: account %s has balance %s", ErrNonZeroBalance, accountID, account.CurrentBalance)
	}

	now := time.Now().UTC()
	if err := s.accountRepo.CloseAccount(ctx, accountID, caller.UserID, now); err != nil {
		s.LogError(ctx, err, "Failed to close account", slog.String("account_id", accountID))
		return err
	}

	metadata := map[string]string{}
	if req.Reason != "" {
		metadata["reason"] = req.Reason
	}
	s.RecordAudit(ctx, domain.AuditTrailEntry{
		AccountID: accountID,
		Action:    domain.AuditAccountClosed,
		OldValue:  auditValue(account),
		UserID:    caller.UserID,
		IPAddress: caller.IPAddress,
		UserAgent: caller.UserAgent,
		Metadata:  metadata,
	})

	s.LogInfo(ctx, "Account closed", slog.String("account_id", accountID))
	return nil
}
