package dto

import (
	"time"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TrialBalanceParams defines the query parameters for a trial balance report.
type TrialBalanceParams struct {
	AsOf                *time.Time          `form:"asOf" time_format:"2006-01-02T15:04:05Z07:00"`
	CurrencyCode        *string             `form:"currencyCode" binding:"omitempty,len=3"`
	AccountType         *domain.AccountType `form:"accountType" binding:"omitempty,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE CONTRA_ASSET CONTRA_LIABILITY CONTRA_EQUITY"`
	IncludeZeroBalances bool                `form:"includeZeroBalances,default=false"`
}

// BalanceSheetParams defines the query parameters for a balance sheet report.
type BalanceSheetParams struct {
	AsOf         *time.Time `form:"asOf" time_format:"2006-01-02T15:04:05Z07:00"`
	CurrencyCode *string    `form:"currencyCode" binding:"omitempty,len=3"`
}

// GenerateReportRequest defines the payload for generating a financial report.
type GenerateReportRequest struct {
	ReportType   domain.ReportType `json:"reportType" binding:"required,oneof=balance_sheet income_statement cash_flow trial_balance general_ledger"`
	PeriodStart  *time.Time        `json:"periodStart,omitempty"`
	PeriodEnd    *time.Time        `json:"periodEnd,omitempty"`
	CurrencyCode *string           `json:"currencyCode,omitempty" binding:"omitempty,len=3"`
	Title        string            `json:"title,omitempty" binding:"max=255"`
}

// MetricsParams defines the query parameters for ledger metrics.
type MetricsParams struct {
	StartDate    *time.Time `form:"startDate" time_format:"2006-01-02T15:04:05Z07:00"`
	EndDate      *time.Time `form:"endDate" time_format:"2006-01-02T15:04:05Z07:00"`
	CurrencyCode *string    `form:"currencyCode" binding:"omitempty,len=3"`
}

// PeriodCloseRequest defines the payload for performing a period close.
type PeriodCloseRequest struct {
	PeriodEnd time.Time `json:"periodEnd" binding:"required"`
	CloseType string    `json:"closeType" binding:"required,oneof=month quarter year"`
	DryRun    bool      `json:"dryRun,omitempty"`
}

// ListSnapshotsParams defines the query parameters for listing balance snapshots.
type ListSnapshotsParams struct {
	StartDate *time.Time `form:"startDate" time_format:"2006-01-02T15:04:05Z07:00"`
	EndDate   *time.Time `form:"endDate" time_format:"2006-01-02T15:04:05Z07:00"`
}

// CreateSnapshotRequest defines the payload for capturing an on-demand
// balance snapshot of a single account.
type CreateSnapshotRequest struct {
	BalanceDate time.Time `json:"balanceDate" binding:"required"`
}

// TrialBalanceEntryResponse is one account row of a trial balance.
type TrialBalanceEntryResponse struct {
	AccountID     string             `json:"accountId"`
	AccountCode   string             `json:"accountCode"`
	AccountName   string             `json:"accountName"`
	AccountType   domain.AccountType `json:"accountType"`
	DebitBalance  decimal.Decimal    `json:"debitBalance"`
	CreditBalance decimal.Decimal    `json:"creditBalance"`
	NetBalance    decimal.Decimal    `json:"netBalance"`
}

// TrialBalanceResponse carries all trial balance rows with column totals.
type TrialBalanceResponse struct {
	Entries      []TrialBalanceEntryResponse `json:"entries"`
	TotalDebits  decimal.Decimal             `json:"totalDebits"`
	TotalCredits decimal.Decimal             `json:"totalCredits"`
	IsBalanced   bool                        `json:"isBalanced"`
	AsOf         time.Time                   `json:"asOf"`
	CurrencyCode string                      `json:"currencyCode,omitempty"`
}

// BalanceSheetItemResponse is a single account line within a section.
type BalanceSheetItemResponse struct {
	AccountID   string          `json:"accountId"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	Balance     decimal.Decimal `json:"balance"`
}

// BalanceSheetSectionResponse groups account lines under Assets, Liabilities or Equity.
type BalanceSheetSectionResponse struct {
	SectionName  string                     `json:"sectionName"`
	Items        []BalanceSheetItemResponse `json:"items"`
	SectionTotal decimal.Decimal            `json:"sectionTotal"`
}

// FinancialReportResponse is the API representation of a generated report.
type FinancialReportResponse struct {
	ReportID     string                        `json:"reportId"`
	ReportType   domain.ReportType             `json:"reportType"`
	Title        string                        `json:"title"`
	PeriodStart  *time.Time                    `json:"periodStart,omitempty"`
	PeriodEnd    *time.Time                    `json:"periodEnd,omitempty"`
	CurrencyCode string                        `json:"currencyCode,omitempty"`
	Sections     []BalanceSheetSectionResponse `json:"sections"`
	Summary      map[string]string             `json:"summary"`
	IsBalanced   bool                          `json:"isBalanced"`
	GeneratedAt  time.Time                     `json:"generatedAt"`
	GeneratedBy  string                        `json:"generatedBy"`
}

// LedgerMetricsResponse reports operational health figures for the ledger.
type LedgerMetricsResponse struct {
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

// SnapshotResponse is the API representation of a balance snapshot.
type SnapshotResponse struct {
	SnapshotID       string          `json:"snapshotId"`
	AccountID        string          `json:"accountId"`
	BalanceDate      time.Time       `json:"balanceDate"`
	OpeningBalance   decimal.Decimal `json:"openingBalance"`
	ClosingBalance   decimal.Decimal `json:"closingBalance"`
	DebitTotal       decimal.Decimal `json:"debitTotal"`
	CreditTotal      decimal.Decimal `json:"creditTotal"`
	TransactionCount int             `json:"transactionCount"`
	CurrencyCode     string          `json:"currencyCode"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// PeriodCloseResponse summarises a completed period close.
type PeriodCloseResponse struct {
	PeriodEnd         time.Time `json:"periodEnd"`
	CloseType         string    `json:"closeType"`
	AccountsProcessed int64     `json:"accountsProcessed"`
	SnapshotsCreated  int64     `json:"snapshotsCreated"`
	IssuesFound       int       `json:"issuesFound"`
	DryRun            bool      `json:"dryRun"`
	ClosedAt          time.Time `json:"closedAt"`
}

// ToTrialBalanceResponse converts trial balance rows into the report payload.
func ToTrialBalanceResponse(entries []domain.TrialBalanceEntry, asOf time.Time, currencyCode string) TrialBalanceResponse {
	responses := make([]TrialBalanceEntryResponse, 0, len(entries))
	totalDebits := decimal.Zero
	totalCredits := decimal.Zero
	for _, entry := range entries {
		totalDebits = totalDebits.Add(entry.DebitBalance)
		totalCredits = totalCredits.Add(entry.CreditBalance)
		responses = append(responses, TrialBalanceEntryResponse{
			AccountID:     entry.AccountID,
			AccountCode:   entry.AccountCode,
			AccountName:   entry.AccountName,
			AccountType:   entry.AccountType,
			DebitBalance:  entry.DebitBalance,
			CreditBalance: entry.CreditBalance,
			NetBalance:    entry.NetBalance,
		})
	}
	return TrialBalanceResponse{
		Entries:      responses,
		TotalDebits:  totalDebits,
		TotalCredits: totalCredits,
		IsBalanced:   totalDebits.Equal(totalCredits),
		AsOf:         asOf,
		CurrencyCode: currencyCode,
	}
}

// ToBalanceSheetSectionResponse converts a domain report section.
func ToBalanceSheetSectionResponse(section domain.BalanceSheetSection) BalanceSheetSectionResponse {
	items := make([]BalanceSheetItemResponse, 0, len(section.Items))
	for _, item := range section.Items {
		items = append(items, BalanceSheetItemResponse{
			AccountID:   item.AccountID,
			AccountCode: item.AccountCode,
			AccountName: item.AccountName,
			Balance:     item.Balance,
		})
	}
	return BalanceSheetSectionResponse{
		SectionName:  section.SectionName,
		Items:        items,
		SectionTotal: section.SectionTotal,
	}
}

// ToFinancialReportResponse converts a domain report into its API representation.
func ToFinancialReportResponse(report domain.FinancialReport) FinancialReportResponse {
	sections := make([]BalanceSheetSectionResponse, 0, len(report.Sections))
	for _, section := range report.Sections {
		sections = append(sections, ToBalanceSheetSectionResponse(section))
	}
	return FinancialReportResponse{
		ReportID:     report.ReportID,
		ReportType:   report.ReportType,
		Title:        report.Title,
		PeriodStart:  report.PeriodStart,
		PeriodEnd:    report.PeriodEnd,
		CurrencyCode: report.CurrencyCode,
		Sections:     sections,
		Summary:      report.Summary,
		IsBalanced:   report.IsBalanced,
		GeneratedAt:  report.GeneratedAt,
		GeneratedBy:  report.GeneratedBy,
	}
}

// ToLedgerMetricsResponse converts domain metrics into their API representation.
func ToLedgerMetricsResponse(metrics domain.LedgerMetrics) LedgerMetricsResponse {
	return LedgerMetricsResponse{
		TotalAccounts:       metrics.TotalAccounts,
		ActiveAccounts:      metrics.ActiveAccounts,
		TotalTransactions:   metrics.TotalTransactions,
		PendingTransactions: metrics.PendingTransactions,
		TotalAssets:         metrics.TotalAssets,
		TotalLiabilities:    metrics.TotalLiabilities,
		TotalEquity:         metrics.TotalEquity,
		BooksBalanced:       metrics.BooksBalanced,
		LastReconciliation:  metrics.LastReconciliation,
		CurrencyBalances:    metrics.CurrencyBalances,
	}
}

// ToSnapshotResponse converts a domain snapshot into its API representation.
func ToSnapshotResponse(snapshot domain.AccountBalanceSnapshot) SnapshotResponse {
	return SnapshotResponse{
		SnapshotID:       snapshot.SnapshotID,
		AccountID:        snapshot.AccountID,
		BalanceDate:      snapshot.BalanceDate,
		OpeningBalance:   snapshot.OpeningBalance,
		ClosingBalance:   snapshot.ClosingBalance,
		DebitTotal:       snapshot.DebitTotal,
		CreditTotal:      snapshot.CreditTotal,
		TransactionCount: snapshot.TransactionCount,
		CurrencyCode:     snapshot.CurrencyCode,
		CreatedAt:        snapshot.CreatedAt,
	}
}

// ToPeriodCloseResponse converts a domain period close result.
func ToPeriodCloseResponse(result domain.PeriodCloseResult, dryRun bool) PeriodCloseResponse {
	return PeriodCloseResponse{
		PeriodEnd:         result.PeriodEnd,
		CloseType:         result.CloseType,
		AccountsProcessed: result.AccountsProcessed,
		SnapshotsCreated:  result.SnapshotsCreated,
		IssuesFound:       result.IssuesFound,
		DryRun:            dryRun,
		ClosedAt:          result.ClosedAt,
	}
}
