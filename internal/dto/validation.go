package dto

import (
	"time"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReconcileAccountsRequest selects which accounts to reconcile. An empty
// account list reconciles every active account. AutoCorrect never rewrites
// balances; it annotates each variance with the required manual follow-up.
type ReconcileAccountsRequest struct {
	AccountIDs  []string   `json:"accountIds,omitempty"`
	AsOf        *time.Time `json:"asOf,omitempty"`
	AutoCorrect bool       `json:"autoCorrect,omitempty"`
}

// AccountReconciliationResponse reports the replay-versus-stored comparison
// for a single account.
type AccountReconciliationResponse struct {
	AccountID       string          `json:"accountId"`
	AccountCode     string          `json:"accountCode"`
	ExpectedBalance decimal.Decimal `json:"expectedBalance"`
	ActualBalance   decimal.Decimal `json:"actualBalance"`
	Difference      decimal.Decimal `json:"difference"`
	Balanced        bool            `json:"balanced"`
	Issues          []string        `json:"issues,omitempty"`
	ReconciledAt    time.Time       `json:"reconciledAt"`
}

// ReconcileAccountsResponse summarises a reconciliation run.
type ReconcileAccountsResponse struct {
	Results          []AccountReconciliationResponse `json:"results"`
	AccountsChecked  int                             `json:"accountsChecked"`
	AccountsBalanced int                             `json:"accountsBalanced"`
	AllBalanced      bool                            `json:"allBalanced"`
	ReconciledAt     time.Time                       `json:"reconciledAt"`
}

// ValidateBookkeepingRequest controls the scope of an integrity check and
// whether auto-correctable issues should be fixed in place. A non-empty
// account list restricts the run to transactions touching those accounts.
type ValidateBookkeepingRequest struct {
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	AccountIDs  []string   `json:"accountIds,omitempty"`
	AutoCorrect bool       `json:"autoCorrect,omitempty"`
}

// ValidationIssueResponse is the API representation of a detected integrity issue.
type ValidationIssueResponse struct {
	IssueType      string `json:"issueType"`
	Description    string `json:"description"`
	AccountID      string `json:"accountId,omitempty"`
	TransactionID  string `json:"transactionId,omitempty"`
	Severity       string `json:"severity"`
	Fixed          bool   `json:"fixed"`
	FixDescription string `json:"fixDescription,omitempty"`
}

// ValidateBookkeepingResponse summarises an integrity check run.
type ValidateBookkeepingResponse struct {
	Issues              []ValidationIssueResponse `json:"issues"`
	TransactionsChecked int64                     `json:"transactionsChecked"`
	IssuesFound         int                       `json:"issuesFound"`
	IssuesFixed         int                       `json:"issuesFixed"`
	BooksValid          bool                      `json:"booksValid"`
	ValidatedAt         time.Time                 `json:"validatedAt"`
}

// ToAccountReconciliationResponse converts a domain reconciliation result.
func ToAccountReconciliationResponse(rec domain.AccountReconciliation) AccountReconciliationResponse {
	return AccountReconciliationResponse{
		AccountID:       rec.AccountID,
		AccountCode:     rec.AccountCode,
		ExpectedBalance: rec.ExpectedBalance,
		ActualBalance:   rec.ActualBalance,
		Difference:      rec.Difference,
		Balanced:        rec.Balanced,
		Issues:          rec.Issues,
		ReconciledAt:    rec.ReconciledAt,
	}
}

// ToReconcileAccountsResponse converts a batch of reconciliation results.
func ToReconcileAccountsResponse(results []domain.AccountReconciliation, reconciledAt time.Time) ReconcileAccountsResponse {
	responses := make([]AccountReconciliationResponse, 0, len(results))
	balanced := 0
	for _, rec := range results {
		if rec.Balanced {
			balanced++
		}
		responses = append(responses, ToAccountReconciliationResponse(rec))
	}
	return ReconcileAccountsResponse{
		Results:          responses,
		AccountsChecked:  len(results),
		AccountsBalanced: balanced,
		AllBalanced:      balanced == len(results),
		ReconciledAt:     reconciledAt,
	}
}

// ToValidationIssueResponse converts a domain validation issue.
func ToValidationIssueResponse(issue domain.ValidationIssue) ValidationIssueResponse {
	return ValidationIssueResponse{
		IssueType:      issue.IssueType,
		Description:    issue.Description,
		AccountID:      issue.AccountID,
		TransactionID:  issue.TransactionID,
		Severity:       issue.Severity,
		Fixed:          issue.Fixed,
		FixDescription: issue.FixDescription,
	}
}

// ToValidateBookkeepingResponse converts a validation run into its API payload.
func ToValidateBookkeepingResponse(issues []domain.ValidationIssue, transactionsChecked int64, validatedAt time.Time) ValidateBookkeepingResponse {
	responses := make([]ValidationIssueResponse, 0, len(issues))
	fixed := 0
	for _, issue := range issues {
		if issue.Fixed {
			fixed++
		}
		responses = append(responses, ToValidationIssueResponse(issue))
	}
	return ValidateBookkeepingResponse{
		Issues:              responses,
		TransactionsChecked: transactionsChecked,
		IssuesFound:         len(issues),
		IssuesFixed:         fixed,
		BooksValid:          len(issues) == 0,
		ValidatedAt:         validatedAt,
	}
}
