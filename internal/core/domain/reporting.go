package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportType identifies the kind of financial report to build.
type ReportType string

const (
	ReportBalanceSheet    ReportType = "balance_sheet"
	ReportIncomeStatement ReportType = "income_statement"
	ReportCashFlow        ReportType = "cash_flow"
	ReportTrialBalance    ReportType = "trial_balance"
	ReportGeneralLedger   ReportType = "general_ledger"
)

// IsValid reports whether the report type is supported.
func (t ReportType) IsValid() bool {
	switch t {
	case ReportBalanceSheet, ReportIncomeStatement, ReportCashFlow, ReportTrialBalance, ReportGeneralLedger:
		return true
	}
	return false
}

// TrialBalanceEntry represents a single account row in a trial balance.
// The balance appears in the account's natural column; a negative balance
// flips to the opposite column.
type TrialBalanceEntry struct {
	AccountID     string          `json:"accountID"`
	AccountCode   string          `json:"accountCode"`
	AccountName   string          `json:"accountName"`
	AccountType   AccountType     `json:"accountType"`
	DebitBalance  decimal.Decimal `json:"debitBalance"`
	CreditBalance decimal.Decimal `json:"creditBalance"`
	NetBalance    decimal.Decimal `json:"netBalance"`
}

// BalanceSheetItem is an account line inside a report section.
type BalanceSheetItem struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	Balance     decimal.Decimal `json:"balance"`
}

// BalanceSheetSection groups report items under a heading with a total.
type BalanceSheetSection struct {
	SectionName  string             `json:"sectionName"`
	Items        []BalanceSheetItem `json:"items"`
	SectionTotal decimal.Decimal    `json:"sectionTotal"`
}

// FinancialReport is the generic report container produced by the reporting
// engine; all report types are built from the trial-balance primitive.
type FinancialReport struct {
	ReportID     string                `json:"reportID"`
	ReportType   ReportType            `json:"reportType"`
	Title        string                `json:"title"`
	PeriodStart  *time.Time            `json:"periodStart,omitempty"`
	PeriodEnd    *time.Time            `json:"periodEnd,omitempty"`
	CurrencyCode string                `json:"currencyCode"`
	Sections     []BalanceSheetSection `json:"sections"`
	Summary      map[string]string     `json:"summary"`
	IsBalanced   bool                  `json:"isBalanced"`
	GeneratedAt  time.Time             `json:"generatedAt"`
	GeneratedBy  string                `json:"generatedBy"`
}

// LedgerMetrics aggregates ledger-wide counts and totals for dashboards.
type LedgerMetrics struct {
	TotalAccounts       int64                      `json:"totalAccounts"`
	ActiveAccounts      int64                      `json:"activeAccounts"`
	TotalTransactions   int64                      `json:"totalTransactions"`
	PendingTransactions int64                      `json:"pendingTransactions"`
	TotalAssets         decimal.Decimal            `json:"totalAssets"`
	TotalLiabilities    decimal.Decimal            `json:"totalLiabilities"`
	TotalEquity         decimal.Decimal            `json:"totalEquity"`
	BooksBalanced       bool                       `json:"booksBalanced"`
	LastReconciliation  *time.Time                 `json:"lastReconciliation,omitempty"`
	CurrencyBalances    map[string]decimal.Decimal `json:"currencyBalances"`
}

// PeriodCloseResult summarizes a completed accounting period close.
type PeriodCloseResult struct {
	PeriodEnd         time.Time `json:"periodEnd"`
	CloseType         string    `json:"closeType"` // monthly, quarterly, yearly
	AccountsProcessed int64     `json:"accountsProcessed"`
	SnapshotsCreated  int64     `json:"snapshotsCreated"`
	IssuesFound       int       `json:"issuesFound"`
	ClosedAt          time.Time `json:"closedAt"`
}
