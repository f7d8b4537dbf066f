package services

import (
	"context"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	"github.com/bankchen1/fo3-ledger-core/internal/dto"
)

// ReportingService defines operations for generating financial reports
type ReportingService interface {
	// GetTrialBalance generates a trial balance with natural debit/credit columns.
	GetTrialBalance(ctx context.Context, params dto.TrialBalanceParams, caller domain.CallerContext) (*dto.TrialBalanceResponse, error)

	// GetBalanceSheet generates a balance sheet grouped into assets, liabilities and equity.
	GetBalanceSheet(ctx context.Context, params dto.BalanceSheetParams, caller domain.CallerContext) (*domain.FinancialReport, error)

	// GenerateFinancialReport generates a report of the requested type for a period.
	GenerateFinancialReport(ctx context.Context, req dto.GenerateReportRequest, caller domain.CallerContext) (*domain.FinancialReport, error)

	// GetLedgerMetrics reports operational health figures for the whole ledger.
	GetLedgerMetrics(ctx context.Context, params dto.MetricsParams, caller domain.CallerContext) (*domain.LedgerMetrics, error)

	// ListSnapshots retrieves stored balance snapshots for an account.
	ListSnapshots(ctx context.Context, accountID string, params dto.ListSnapshotsParams, caller domain.CallerContext) ([]domain.AccountBalanceSnapshot, error)

	// CreateBalanceSnapshot captures and persists a single account's balance
	// as of a date.
	CreateBalanceSnapshot(ctx context.Context, accountID string, req dto.CreateSnapshotRequest, caller domain.CallerContext) (*domain.AccountBalanceSnapshot, error)

	// PerformPeriodClose snapshots every active account as of the period end.
	PerformPeriodClose(ctx context.Context, req dto.PeriodCloseRequest, caller domain.CallerContext) (*domain.PeriodCloseResult, error)
}
