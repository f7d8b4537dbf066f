package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bankchen1/fo3-ledger-core/internal/apperrors"
	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	portsrepo "github.com/bankchen1/fo3-ledger-core/internal/core/ports/repositories"
	portssvc "github.com/bankchen1/fo3-ledger-core/internal/core/ports/services"
	"github.com/bankchen1/fo3-ledger-core/internal/dto"
	"github.com/bankchen1/fo3-ledger-core/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// validationService implements the ValidationSvcFacade interface
type validationService struct {
	BaseService
	accountRepo     portsrepo.AccountReader
	transactionRepo portsrepo.TransactionRepositoryFacade
	notifier        portssvc.LedgerEventNotifier
}

// ValidationServiceOption is a functional option for configuring the validation service
type ValidationServiceOption func(*validationService)

// WithValidationAuthorizer sets the ledger authorizer for the validation service
func WithValidationAuthorizer(authorizer portssvc.LedgerAuthorizerSvc) ValidationServiceOption {
	return func(s *validationService) {
		s.Authorizer = authorizer
	}
}

// WithValidationAuditRecorder sets the audit recorder for the validation service
func WithValidationAuditRecorder(recorder portssvc.AuditRecorderSvc) ValidationServiceOption {
	return func(s *validationService) {
		s.AuditRecorder = recorder
	}
}

// WithValidationNotifier sets the event notifier for the validation service
func WithValidationNotifier(notifier portssvc.LedgerEventNotifier) ValidationServiceOption {
	return func(s *validationService) {
		s.notifier = notifier
	}
}

// NewValidationService creates a new validation service with the provided options
func NewValidationService(accountRepo portsrepo.AccountReader, transactionRepo portsrepo.TransactionRepositoryFacade, options ...ValidationServiceOption) portssvc.ValidationSvcFacade {
	svc := &validationService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure validationService implements the ValidationSvcFacade interface
var _ portssvc.ValidationSvcFacade = (*validationService)(nil)

// resolveAccounts returns the accounts selected by the request, or every
// active account when none are named.
func (s *validationService) resolveAccounts(ctx context.Context, accountIDs []string) ([]domain.Account, error) {
	if len(accountIDs) > 0 {
		accountsMap, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch accounts: %w", err)
		}
		accounts := make([]domain.Account, 0, len(accountIDs))
		for _, id := range accountIDs {
			account, found := accountsMap[id]
			if !found {
				return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
			}
			accounts = append(accounts, account)
		}
		return accounts, nil
	}

	active := domain.AccountActive
	accounts, _, err := s.accountRepo.ListAccounts(ctx, portsrepo.AccountFilter{Status: &active})
	if err != nil {
		return nil, fmt.Errorf("failed to list active accounts: %w", err)
	}
	return accounts, nil
}

// ReconcileAccounts replays each account's posted entries and compares the
// result against the stored balance. A variance is always reported, never
// papered over; an account that cannot be checked fails the whole run.
func (s *validationService) ReconcileAccounts(ctx context.Context, req dto.ReconcileAccountsRequest, caller domain.CallerContext) (*dto.ReconcileAccountsResponse, error) {
	accounts, err := s.resolveAccounts(ctx, req.AccountIDs)
	if err != nil {
		s.LogError(ctx, err, "Failed to resolve accounts for reconciliation")
		return nil, err
	}

	now := time.Now().UTC()
	results := make([]domain.AccountReconciliation, 0, len(accounts))
	totalDifference := decimal.Zero
	unbalanced := 0

	for _, account := range accounts {
		entries, err := s.transactionRepo.FindEntriesByAccountID(ctx, account.AccountID, req.AsOf)
		if err != nil {
			s.LogError(ctx, err, "Failed to load entries for reconciliation", slog.String("account_id", account.AccountID))
			return nil, fmt.Errorf("failed to reconcile account %s: %w", account.AccountID, err)
		}

		expected := decimal.Zero
		for _, entry := range entries {
			if entry.Status != domain.EntryPosted {
				continue
			}
			impact, err := accounting.BalanceImpact(account.AccountType, entry.EntryType, entry.Amount)
			if err != nil {
				s.LogError(ctx, err, "Balance impact calculation failed during reconciliation",
					slog.String("account_id", account.AccountID),
					slog.String("entry_id", entry.EntryID))
				return nil, fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
			}
			expected = expected.Add(impact)
		}

		actual := account.CurrentBalance
		difference := actual.Sub(expected)
		balanced := difference.IsZero()

		var issues []string
		if !balanced {
			unbalanced++
			totalDifference = totalDifference.Add(difference.Abs())
			issues = append(issues, fmt.Sprintf("stored balance %s differs from replayed balance %s", actual, expected))
			if req.AutoCorrect {
				// Posted history is never rewritten; the variance can only be
				// resolved by posting a correcting transaction.
				issues = append(issues, "manual correcting entry required")
			}
		}

		results = append(results, domain.AccountReconciliation{
			AccountID:       account.AccountID,
			AccountCode:     account.AccountCode,
			ExpectedBalance: expected,
			ActualBalance:   actual,
			Difference:      difference,
			Balanced:        balanced,
			Issues:          issues,
			ReconciledAt:    now,
		})
	}

	s.RecordAudit(ctx, domain.AuditTrailEntry{
		Action: domain.AuditReconciliationRun,
		NewValue: auditValue(map[string]any{
			"accounts_checked":  len(results),
			"accounts_balanced": len(results) - unbalanced,
			"total_difference":  totalDifference.String(),
		}),
		UserID:    caller.UserID,
		IPAddress: caller.IPAddress,
		UserAgent: caller.UserAgent,
	})

	if unbalanced > 0 && s.notifier != nil {
		s.notifier.Notify(ctx, caller.UserID, portssvc.EventReconciliationVariance, map[string]any{
			"accounts_checked":       len(results),
			"accounts_with_variance": unbalanced,
			"total_difference":       totalDifference.String(),
		})
	}

	s.LogInfo(ctx, "Accounts reconciled",
		slog.Int("accounts_checked", len(results)),
		slog.Int("accounts_with_variance", unbalanced))

	resp := dto.ToReconcileAccountsResponse(results, now)
	return &resp, nil
}

// ValidateBookkeeping checks every posted transaction in range for
// double-entry balance and amount consistency, then checks that ledger-wide
// debits equal credits per currency. A non-empty account scope restricts the
// per-transaction checks to touching transactions and skips the ledger-wide
// check, which is only meaningful over the full set. Only medium severity
// amount mismatches are auto-correctable.
func (s *validationService) ValidateBookkeeping(ctx context.Context, req dto.ValidateBookkeepingRequest, caller domain.CallerContext) (*dto.ValidateBookkeepingResponse, error) {
	posted := domain.TransactionPosted
	filter := portsrepo.TransactionFilter{
		Status:    &posted,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}

	txns, _, err := s.transactionRepo.ListTransactions(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions for validation")
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	scope := make(map[string]struct{}, len(req.AccountIDs))
	for _, id := range req.AccountIDs {
		scope[id] = struct{}{}
	}

	now := time.Now().UTC()
	var issues []domain.ValidationIssue
	ledgerDebits := make(map[string]decimal.Decimal)
	ledgerCredits := make(map[string]decimal.Decimal)
	checked := 0

	for _, txn := range txns {
		if len(scope) > 0 && !transactionTouchesAccounts(txn, scope) {
			continue
		}
		checked++
		debitsByCurrency := make(map[string]decimal.Decimal)
		creditsByCurrency := make(map[string]decimal.Decimal)
		debitTotal := decimal.Zero

		for _, entry := range txn.Entries {
			switch entry.EntryType {
			case domain.Debit:
				debitsByCurrency[entry.CurrencyCode] = debitsByCurrency[entry.CurrencyCode].Add(entry.Amount)
				ledgerDebits[entry.CurrencyCode] = ledgerDebits[entry.CurrencyCode].Add(entry.Amount)
				debitTotal = debitTotal.Add(entry.Amount)
			case domain.Credit:
				creditsByCurrency[entry.CurrencyCode] = creditsByCurrency[entry.CurrencyCode].Add(entry.Amount)
				ledgerCredits[entry.CurrencyCode] = ledgerCredits[entry.CurrencyCode].Add(entry.Amount)
			}
		}

		for currency, debits := range debitsByCurrency {
			credits := creditsByCurrency[currency]
			if !debits.Equal(credits) {
				issues = append(issues, domain.ValidationIssue{
					IssueType:     domain.IssueDoubleEntryViolation,
					Description:   fmt.Sprintf("transaction %s debits %s do not equal credits %s for currency %s", txn.TransactionID, debits, credits, currency),
					TransactionID: txn.TransactionID,
					Severity:      domain.SeverityHigh,
				})
			}
		}
		for currency, credits := range creditsByCurrency {
			if _, seen := debitsByCurrency[currency]; !seen {
				issues = append(issues, domain.ValidationIssue{
					IssueType:     domain.IssueDoubleEntryViolation,
					Description:   fmt.Sprintf("transaction %s debits 0 do not equal credits %s for currency %s", txn.TransactionID, credits, currency),
					TransactionID: txn.TransactionID,
					Severity:      domain.SeverityHigh,
				})
			}
		}

		if !txn.TotalAmount.Equal(debitTotal) {
			issue := domain.ValidationIssue{
				IssueType:     domain.IssueAmountMismatch,
				Description:   fmt.Sprintf("transaction %s total amount %s does not match entry debit total %s", txn.TransactionID, txn.TotalAmount, debitTotal),
				TransactionID: txn.TransactionID,
				Severity:      domain.SeverityMedium,
			}
			if req.AutoCorrect {
				if err := s.transactionRepo.CorrectTransactionAmount(ctx, txn.TransactionID, debitTotal, caller.UserID, now); err != nil {
					s.LogError(ctx, err, "Failed to auto-correct amount mismatch", slog.String("transaction_id", txn.TransactionID))
				} else {
					issue.Fixed = true
					issue.FixDescription = fmt.Sprintf("total amount corrected to %s", debitTotal)
				}
			}
			issues = append(issues, issue)
		}
	}

	if len(scope) == 0 {
		for currency, debits := range ledgerDebits {
			credits := ledgerCredits[currency]
			if !debits.Equal(credits) {
				issues = append(issues, domain.ValidationIssue{
					IssueType:   domain.IssueTrialBalanceImbalance,
					Description: fmt.Sprintf("ledger debits %s do not equal credits %s for currency %s", debits, credits, currency),
					Severity:    domain.SeverityHigh,
				})
			}
		}
		for currency, credits := range ledgerCredits {
			if _, seen := ledgerDebits[currency]; !seen {
				issues = append(issues, domain.ValidationIssue{
					IssueType:   domain.IssueTrialBalanceImbalance,
					Description: fmt.Sprintf("ledger debits 0 do not equal credits %s for currency %s", credits, currency),
					Severity:    domain.SeverityHigh,
				})
			}
		}
	}

	fixed := 0
	for _, issue := range issues {
		if issue.Fixed {
			fixed++
		}
	}

	s.RecordAudit(ctx, domain.AuditTrailEntry{
		Action: domain.AuditValidationRun,
		NewValue: auditValue(map[string]any{
			"transactions_checked": checked,
			"issues_found":         len(issues),
			"issues_fixed":         fixed,
		}),
		UserID:    caller.UserID,
		IPAddress: caller.IPAddress,
		UserAgent: caller.UserAgent,
	})

	s.LogInfo(ctx, "Bookkeeping validated",
		slog.Int("transactions_checked", checked),
		slog.Int("issues_found", len(issues)),
		slog.Int("issues_fixed", fixed))

	resp := dto.ToValidateBookkeepingResponse(issues, int64(checked), now)
	return &resp, nil
}

// transactionTouchesAccounts reports whether any entry posts to one of the
// given accounts.
func transactionTouchesAccounts(txn domain.LedgerTransaction, accountIDs map[string]struct{}) bool {
	for _, entry := range txn.Entries {
		if _, ok := accountIDs[entry.AccountID]; ok {
			return true
		}
	}
	return false
}
