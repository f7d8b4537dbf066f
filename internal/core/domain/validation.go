package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Validation issue types raised by the bookkeeping validator.
const (
	IssueDoubleEntryViolation  = "double_entry_violation"
	IssueAmountMismatch        = "amount_mismatch"
	IssueTrialBalanceImbalance = "trial_balance_imbalance"
)

// Issue severities. Only medium issues are ever auto-corrected; high
// severity implies a real discrepancy in money and is always surfaced for
// manual review.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// ValidationIssue describes a single bookkeeping inconsistency.
type ValidationIssue struct {
	IssueType      string `json:"issueType"`
	Description    string `json:"description"`
	AccountID      string `json:"accountID,omitempty"`
	TransactionID  string `json:"transactionID,omitempty"`
	Severity       string `json:"severity"`
	Fixed          bool   `json:"fixed"`
	FixDescription string `json:"fixDescription,omitempty"`
}

// AccountReconciliation compares an account's stored balance against the
// balance recomputed from its posted entries.
type AccountReconciliation struct {
	AccountID       string          `json:"accountID"`
	AccountCode     string          `json:"accountCode"`
	ExpectedBalance decimal.Decimal `json:"expectedBalance"` // Recomputed from posted entries
	ActualBalance   decimal.Decimal `json:"actualBalance"`   // Stored current balance
	Difference      decimal.Decimal `json:"difference"`
	Balanced        bool            `json:"balanced"`
	Issues          []string        `json:"issues"`
	ReconciledAt    time.Time       `json:"reconciledAt"`
}
