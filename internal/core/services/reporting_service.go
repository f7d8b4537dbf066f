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
	"github.com/bankchen1/fo3-ledger-core/internal/platform/cache"
	"github.com/bankchen1/fo3-ledger-core/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// balancedTolerance is the maximum |assets - liabilities - equity| for the
// books to count as balanced.
var balancedTolerance = decimal.RequireFromString("0.01")

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	reportingRepo   portsrepo.ReportingRepository
	accountRepo     portsrepo.AccountReader
	transactionRepo portsrepo.TransactionReader
	snapshotRepo    portsrepo.SnapshotRepositoryFacade
	auditReader     portsrepo.AuditReader
	validator       portssvc.BookkeepingValidatorSvc
	notifier        portssvc.LedgerEventNotifier
	reportCache     *cache.ReportCache
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportingAuthorizer sets the ledger authorizer for the reporting service
func WithReportingAuthorizer(authorizer portssvc.LedgerAuthorizerSvc) ReportingServiceOption {
	return func(s *reportingService) {
		s.Authorizer = authorizer
	}
}

// WithReportingAuditRecorder sets the audit recorder for the reporting service
func WithReportingAuditRecorder(recorder portssvc.AuditRecorderSvc) ReportingServiceOption {
	return func(s *reportingService) {
		s.AuditRecorder = recorder
	}
}

// WithReportingAuditReader lets metrics surface the last reconciliation time
func WithReportingAuditReader(reader portsrepo.AuditReader) ReportingServiceOption {
	return func(s *reportingService) {
		s.auditReader = reader
	}
}

// WithReportingValidator sets the validator used by period close
func WithReportingValidator(validator portssvc.BookkeepingValidatorSvc) ReportingServiceOption {
	return func(s *reportingService) {
		s.validator = validator
	}
}

// WithReportingNotifier sets the event notifier for the reporting service
func WithReportingNotifier(notifier portssvc.LedgerEventNotifier) ReportingServiceOption {
	return func(s *reportingService) {
		s.notifier = notifier
	}
}

// WithReportCache enables Redis-backed caching of generated reports
func WithReportCache(c *cache.ReportCache) ReportingServiceOption {
	return func(s *reportingService) {
		s.reportCache = c
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(reportingRepo portsrepo.ReportingRepository, accountRepo portsrepo.AccountReader, transactionRepo portsrepo.TransactionReader, snapshotRepo portsrepo.SnapshotRepositoryFacade, options ...ReportingServiceOption) portssvc.ReportingService {
	svc := &reportingService{
		reportingRepo:   reportingRepo,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		snapshotRepo:    snapshotRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// GetTrialBalance generates a trial balance with balances in their natural
// debit or credit columns, sorted by account code.
func (s *reportingService) GetTrialBalance(ctx context.Context, params dto.TrialBalanceParams, caller domain.CallerContext) (*dto.TrialBalanceResponse, error) {
	asOf := time.Now().UTC()
	if params.AsOf != nil {
		asOf = params.AsOf.UTC()
	}
	currency := ""
	if params.CurrencyCode != nil {
		currency = *params.CurrencyCode
	}

	filter := portsrepo.TrialBalanceFilter{
		AsOf:                asOf,
		CurrencyCode:        params.CurrencyCode,
		AccountType:         params.AccountType,
		IncludeZeroBalances: params.IncludeZeroBalances,
	}

	loader := func(ctx context.Context) (interface{}, error) {
		rows, err := s.reportingRepo.GetTrialBalanceData(ctx, filter)
		if err != nil {
			return nil, err
		}
		return dto.ToTrialBalanceResponse(rows, asOf, currency), nil
	}

	var resp dto.TrialBalanceResponse
	// Only the common unfiltered query is cached; type-filtered and
	// zero-inclusive variants go straight to the repository.
	if s.reportCache != nil && params.AccountType == nil && !params.IncludeZeroBalances {
		key, err := s.reportCache.BuildKey(ctx, cache.KeyTrialBalance(asOf, currency)...)
		if err != nil {
			s.LogWarn(ctx, "Report cache unavailable, generating trial balance directly", slog.String("error", err.Error()))
		} else if err := s.reportCache.FetchJSON(ctx, key, &resp, loader); err == nil {
			s.LogDebug(ctx, "Trial balance served", slog.Int("row_count", len(resp.Entries)))
			return &resp, nil
		} else {
			s.LogWarn(ctx, "Report cache fetch failed, generating trial balance directly", slog.String("error", err.Error()))
		}
	}

	value, err := loader(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate trial balance")
		return nil, fmt.Errorf("failed to retrieve trial balance data: %w", err)
	}
	resp = value.(dto.TrialBalanceResponse)

	s.LogInfo(ctx, "Trial balance generated",
		slog.String("as_of", asOf.Format(time.RFC3339)),
		slog.Int("row_count", len(resp.Entries)),
		slog.Bool("is_balanced", resp.IsBalanced))
	return &resp, nil
}

// buildBalanceSheet groups trial balance rows into assets, liabilities and
// equity. Contra accounts report inside the section they offset; revenue and
// expense accounts do not appear on the balance sheet.
func (s *reportingService) buildBalanceSheet(ctx context.Context, asOf time.Time, currency string, generatedBy string) (*domain.FinancialReport, error) {
	filter := portsrepo.TrialBalanceFilter{AsOf: asOf}
	if currency != "" {
		filter.CurrencyCode = &currency
	}
	rows, err := s.reportingRepo.GetTrialBalanceData(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve balance sheet data: %w", err)
	}

	var assets, liabilities, equity []domain.BalanceSheetItem
	totalAssets := decimal.Zero
	totalLiabilities := decimal.Zero
	totalEquity := decimal.Zero

	for _, row := range rows {
		item := domain.BalanceSheetItem{
			AccountID:   row.AccountID,
			AccountCode: row.AccountCode,
			AccountName: row.AccountName,
			Balance:     row.NetBalance,
		}
		switch row.AccountType {
		case domain.Asset, domain.ContraLiability:
			totalAssets = totalAssets.Add(row.NetBalance)
			assets = append(assets, item)
		case domain.Liability, domain.ContraAsset:
			totalLiabilities = totalLiabilities.Add(row.NetBalance)
			liabilities = append(liabilities, item)
		case domain.Equity, domain.ContraEquity:
			totalEquity = totalEquity.Add(row.NetBalance)
			equity = append(equity, item)
		}
	}

	sections := []domain.BalanceSheetSection{
		{SectionName: "Assets", Items: assets, SectionTotal: totalAssets},
		{SectionName: "Liabilities", Items: liabilities, SectionTotal: totalLiabilities},
		{SectionName: "Equity", Items: equity, SectionTotal: totalEquity},
	}
	summary := map[string]string{
		"total_assets":                 totalAssets.String(),
		"total_liabilities":            totalLiabilities.String(),
		"total_equity":                 totalEquity.String(),
		"total_liabilities_and_equity": totalLiabilities.Add(totalEquity).String(),
	}
	isBalanced := totalAssets.Sub(totalLiabilities).Sub(totalEquity).Abs().LessThan(balancedTolerance)

	periodEnd := asOf
	return &domain.FinancialReport{
		ReportID:     uuid.NewString(),
		ReportType:   domain.ReportBalanceSheet,
		Title:        fmt.Sprintf("Balance Sheet as of %s", asOf.Format("2006-01-02")),
		PeriodStart:  &periodEnd,
		PeriodEnd:    &periodEnd,
		CurrencyCode: currency,
		Sections:     sections,
		Summary:      summary,
		IsBalanced:   isBalanced,
		GeneratedAt:  time.Now().UTC(),
		GeneratedBy:  generatedBy,
	}, nil
}

// GetBalanceSheet generates a balance sheet as of a specific date.
func (s *reportingService) GetBalanceSheet(ctx context.Context, params dto.BalanceSheetParams, caller domain.CallerContext) (*domain.FinancialReport, error) {
	asOf := time.Now().UTC()
	if params.AsOf != nil {
		asOf = params.AsOf.UTC()
	}
	currency := ""
	if params.CurrencyCode != nil {
		currency = *params.CurrencyCode
	}

	loader := func(ctx context.Context) (interface{}, error) {
		return s.buildBalanceSheet(ctx, asOf, currency, caller.UserID)
	}

	if s.reportCache != nil {
		var cached domain.FinancialReport
		key, err := s.reportCache.BuildKey(ctx, cache.KeyBalanceSheet(asOf, currency)...)
		if err == nil {
			if err := s.reportCache.FetchJSON(ctx, key, &cached, loader); err == nil {
				return &cached, nil
			}
			s.LogWarn(ctx, "Report cache fetch failed, generating balance sheet directly")
		}
	}

	report, err := s.buildBalanceSheet(ctx, asOf, currency, caller.UserID)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate balance sheet")
		return nil, err
	}

	s.LogInfo(ctx, "Balance sheet generated",
		slog.String("as_of", asOf.Format(time.RFC3339)),
		slog.Bool("is_balanced", report.IsBalanced))
	return report, nil
}

// netBalancesByAccount indexes trial balance rows by account ID.
func netBalancesByAccount(rows []domain.TrialBalanceEntry) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		balances[row.AccountID] = row.NetBalance
	}
	return balances
}

// GenerateFinancialReport generates a report of the requested type for a period.
func (s *reportingService) GenerateFinancialReport(ctx context.Context, req dto.GenerateReportRequest, caller domain.CallerContext) (*domain.FinancialReport, error) {
	if !req.ReportType.IsValid() {
		return nil, fmt.Errorf("%w: invalid report type %q", apperrors.ErrValidation, req.ReportType)
	}

	periodEnd := time.Now().UTC()
	if req.PeriodEnd != nil {
		periodEnd = req.PeriodEnd.UTC()
	}
	currency := ""
	if req.CurrencyCode != nil {
		currency = *req.CurrencyCode
	}

	var report *domain.FinancialReport
	var err error
	switch req.ReportType {
	case domain.ReportBalanceSheet:
		report, err = s.buildBalanceSheet(ctx, periodEnd, currency, caller.UserID)
	case domain.ReportIncomeStatement:
		report, err = s.buildIncomeStatement(ctx, req.PeriodStart, periodEnd, currency, caller.UserID)
	case domain.ReportCashFlow:
		report, err = s.buildCashFlow(ctx, req.PeriodStart, periodEnd, currency, caller.UserID)
	case domain.ReportTrialBalance:
		report, err = s.buildTrialBalanceReport(ctx, periodEnd, currency, caller.UserID)
	case domain.ReportGeneralLedger:
		report, err = s.buildGeneralLedgerReport(ctx, periodEnd, currency, caller.UserID)
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to generate financial report", slog.String("report_type", string(req.ReportType)))
		return nil, err
	}

	if req.Title != "" {
		report.Title = req.Title
	}
	if req.PeriodStart != nil {
		start := req.PeriodStart.UTC()
		report.PeriodStart = &start
	}

	s.LogInfo(ctx, "Financial report generated",
		slog.String("report_type", string(req.ReportType)),
		slog.String("report_id", report.ReportID))
	return report, nil
}

// periodActivity returns each account's net balance change over the period.
// A nil period start means activity since inception.
func (s *reportingService) periodActivity(ctx context.Context, periodStart *time.Time, periodEnd time.Time, currency string) ([]domain.TrialBalanceEntry, map[string]decimal.Decimal, error) {
	filter := portsrepo.TrialBalanceFilter{AsOf: periodEnd, IncludeZeroBalances: true}
	if currency != "" {
		filter.CurrencyCode = &currency
	}
	endRows, err := s.reportingRepo.GetTrialBalanceData(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve report data: %w", err)
	}

	activity := netBalancesByAccount(endRows)
	if periodStart != nil {
		startFilter := filter
		startFilter.AsOf = periodStart.UTC()
		startRows, err := s.reportingRepo.GetTrialBalanceData(ctx, startFilter)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to retrieve opening report data: %w", err)
		}
		for _, row := range startRows {
			activity[row.AccountID] = activity[row.AccountID].Sub(row.NetBalance)
		}
	}
	return endRows, activity, nil
}

// buildIncomeStatement reports revenue and expense activity for the period.
func (s *reportingService) buildIncomeStatement(ctx context.Context, periodStart *time.Time, periodEnd time.Time, currency string, generatedBy string) (*domain.FinancialReport, error) {
	rows, activity, err := s.periodActivity(ctx, periodStart, periodEnd, currency)
	if err != nil {
		return nil, err
	}

	var revenue, expenses []domain.BalanceSheetItem
	totalRevenue := decimal.Zero
	totalExpenses := decimal.Zero
	for _, row := range rows {
		change := activity[row.AccountID]
		item := domain.BalanceSheetItem{
			AccountID:   row.AccountID,
			AccountCode: row.AccountCode,
			AccountName: row.AccountName,
			Balance:     change,
		}
		switch row.AccountType {
		case domain.Revenue:
			if !change.IsZero() {
				totalRevenue = totalRevenue.Add(change)
				revenue = append(revenue, item)
			}
		case domain.Expense:
			if !change.IsZero() {
				totalExpenses = totalExpenses.Add(change)
				expenses = append(expenses, item)
			}
		}
	}

	netIncome := totalRevenue.Sub(totalExpenses)
	return &domain.FinancialReport{
		ReportID:     uuid.NewString(),
		ReportType:   domain.ReportIncomeStatement,
		Title:        fmt.Sprintf("Income Statement for period ending %s", periodEnd.Format("2006-01-02")),
		PeriodStart:  periodStart,
		PeriodEnd:    &periodEnd,
		CurrencyCode: currency,
		Sections: []domain.BalanceSheetSection{
			{SectionName: "Revenue", Items: revenue, SectionTotal: totalRevenue},
			{SectionName: "Expenses", Items: expenses, SectionTotal: totalExpenses},
		},
		Summary: map[string]string{
			"total_revenue":  totalRevenue.String(),
			"total_expenses": totalExpenses.String(),
			"net_income":     netIncome.String(),
		},
		IsBalanced:  true,
		GeneratedAt: time.Now().UTC(),
		GeneratedBy: generatedBy,
	}, nil
}

// buildCashFlow reports the net change in asset account balances for the period.
func (s *reportingService) buildCashFlow(ctx context.Context, periodStart *time.Time, periodEnd time.Time, currency string, generatedBy string) (*domain.FinancialReport, error) {
	rows, activity, err := s.periodActivity(ctx, periodStart, periodEnd, currency)
	if err != nil {
		return nil, err
	}

	var inflows, outflows []domain.BalanceSheetItem
	totalInflows := decimal.Zero
	totalOutflows := decimal.Zero
	netChange := decimal.Zero
	for _, row := range rows {
		if row.AccountType != domain.Asset {
			continue
		}
		change := activity[row.AccountID]
		if change.IsZero() {
			continue
		}
		netChange = netChange.Add(change)
		item := domain.BalanceSheetItem{
			AccountID:   row.AccountID,
			AccountCode: row.AccountCode,
			AccountName: row.AccountName,
			Balance:     change,
		}
		if change.IsPositive() {
			totalInflows = totalInflows.Add(change)
			inflows = append(inflows, item)
		} else {
			totalOutflows = totalOutflows.Add(change.Abs())
			outflows = append(outflows, item)
		}
	}

	return &domain.FinancialReport{
		ReportID:     uuid.NewString(),
		ReportType:   domain.ReportCashFlow,
		Title:        fmt.Sprintf("Cash Flow Statement for period ending %s", periodEnd.Format("2006-01-02")),
		PeriodStart:  periodStart,
		PeriodEnd:    &periodEnd,
		CurrencyCode: currency,
		Sections: []domain.BalanceSheetSection{
			{SectionName: "Cash Inflows", Items: inflows, SectionTotal: totalInflows},
			{SectionName: "Cash Outflows", Items: outflows, SectionTotal: totalOutflows},
		},
		Summary: map[string]string{
			"total_inflows":   totalInflows.String(),
			"total_outflows":  totalOutflows.String(),
			"net_cash_change": netChange.String(),
		},
		IsBalanced:  true,
		GeneratedAt: time.Now().UTC(),
		GeneratedBy: generatedBy,
	}, nil
}

// buildTrialBalanceReport renders the trial balance in report form.
func (s *reportingService) buildTrialBalanceReport(ctx context.Context, asOf time.Time, currency string, generatedBy string) (*domain.FinancialReport, error) {
	filter := portsrepo.TrialBalanceFilter{AsOf: asOf}
	if currency != "" {
		filter.CurrencyCode = &currency
	}
	rows, err := s.reportingRepo.GetTrialBalanceData(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve trial balance data: %w", err)
	}

	items := make([]domain.BalanceSheetItem, 0, len(rows))
	totalDebits := decimal.Zero
	totalCredits := decimal.Zero
	netTotal := decimal.Zero
	for _, row := range rows {
		totalDebits = totalDebits.Add(row.DebitBalance)
		totalCredits = totalCredits.Add(row.CreditBalance)
		netTotal = netTotal.Add(row.NetBalance)
		items = append(items, domain.BalanceSheetItem{
			AccountID:   row.AccountID,
			AccountCode: row.AccountCode,
			AccountName: row.AccountName,
			Balance:     row.NetBalance,
		})
	}

	return &domain.FinancialReport{
		ReportID:     uuid.NewString(),
		ReportType:   domain.ReportTrialBalance,
		Title:        fmt.Sprintf("Trial Balance as of %s", asOf.Format("2006-01-02")),
		PeriodStart:  &asOf,
		PeriodEnd:    &asOf,
		CurrencyCode: currency,
		Sections: []domain.BalanceSheetSection{
			{SectionName: "Trial Balance", Items: items, SectionTotal: netTotal},
		},
		Summary: map[string]string{
			"total_debits":  totalDebits.String(),
			"total_credits": totalCredits.String(),
		},
		IsBalanced:  totalDebits.Equal(totalCredits),
		GeneratedAt: time.Now().UTC(),
		GeneratedBy: generatedBy,
	}, nil
}

// buildGeneralLedgerReport lists every account with its balance, including
// revenue and expense accounts.
func (s *reportingService) buildGeneralLedgerReport(ctx context.Context, asOf time.Time, currency string, generatedBy string) (*domain.FinancialReport, error) {
	filter := portsrepo.TrialBalanceFilter{AsOf: asOf, IncludeZeroBalances: true}
	if currency != "" {
		filter.CurrencyCode = &currency
	}
	rows, err := s.reportingRepo.GetTrialBalanceData(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve general ledger data: %w", err)
	}

	items := make([]domain.BalanceSheetItem, 0, len(rows))
	totalDebits := decimal.Zero
	totalCredits := decimal.Zero
	netTotal := decimal.Zero
	for _, row := range rows {
		totalDebits = totalDebits.Add(row.DebitBalance)
		totalCredits = totalCredits.Add(row.CreditBalance)
		netTotal = netTotal.Add(row.NetBalance)
		items = append(items, domain.BalanceSheetItem{
			AccountID:   row.AccountID,
			AccountCode: row.AccountCode,
			AccountName: row.AccountName,
			Balance:     row.NetBalance,
		})
	}

	return &domain.FinancialReport{
		ReportID:     uuid.NewString(),
		ReportType:   domain.ReportGeneralLedger,
		Title:        fmt.Sprintf("General Ledger as of %s", asOf.Format("2006-01-02")),
		PeriodStart:  &asOf,
		PeriodEnd:    &asOf,
		CurrencyCode: currency,
		Sections: []domain.BalanceSheetSection{
			{SectionName: "General Ledger", Items: items, SectionTotal: netTotal},
		},
		Summary: map[string]string{
			"total_debits":  totalDebits.String(),
			"total_credits": totalCredits.String(),
			"account_count": fmt.Sprintf("%d", len(rows)),
		},
		IsBalanced:  totalDebits.Equal(totalCredits),
		GeneratedAt: time.Now().UTC(),
		GeneratedBy: generatedBy,
	}, nil
}

// GetLedgerMetrics reports operational health figures for the whole ledger.
// Transaction counts cover the trailing 30 days unless a window is given;
// account counts and balance totals are always absolute.
func (s *reportingService) GetLedgerMetrics(ctx context.Context, params dto.MetricsParams, caller domain.CallerContext) (*domain.LedgerMetrics, error) {
	filter := portsrepo.MetricsFilter{
		StartDate:    params.StartDate,
		EndDate:      params.EndDate,
		CurrencyCode: params.CurrencyCode,
	}
	now := time.Now().UTC()
	if filter.StartDate == nil {
		start := now.AddDate(0, 0, -30)
		filter.StartDate = &start
	}
	if filter.EndDate == nil {
		end := now
		filter.EndDate = &end
	}
	currency := ""
	if params.CurrencyCode != nil {
		currency = *params.CurrencyCode
	}

	loader := func(ctx context.Context) (interface{}, error) {
		return s.reportingRepo.GetLedgerMetricsData(ctx, filter)
	}

	var metrics *domain.LedgerMetrics
	if s.reportCache != nil && params.StartDate == nil && params.EndDate == nil {
		var cached domain.LedgerMetrics
		key, err := s.reportCache.BuildKey(ctx, cache.KeyMetrics(currency)...)
		if err == nil {
			if err := s.reportCache.FetchJSON(ctx, key, &cached, loader); err == nil {
				metrics = &cached
			}
		}
	}
	if metrics == nil {
		value, err := loader(ctx)
		if err != nil {
			s.LogError(ctx, err, "Failed to compute ledger metrics")
			return nil, fmt.Errorf("failed to compute ledger metrics: %w", err)
		}
		metrics = value.(*domain.LedgerMetrics)
	}

	if s.auditReader != nil {
		action := domain.AuditReconciliationRun
		entries, _, err := s.auditReader.ListAuditEntries(ctx, portsrepo.AuditTrailFilter{Action: &action, Page: 1, PageSize: 1})
		if err != nil {
			s.LogWarn(ctx, "Could not determine last reconciliation time", slog.String("error", err.Error()))
		} else if len(entries) > 0 {
			ts := entries[0].Timestamp
			metrics.LastReconciliation = &ts
		}
	}

	s.LogDebug(ctx, "Ledger metrics computed",
		slog.Int64("total_accounts", metrics.TotalAccounts),
		slog.Bool("books_balanced", metrics.BooksBalanced))
	return metrics, nil
}

// ListSnapshots retrieves stored balance snapshots for an account.
func (s *reportingService) ListSnapshots(ctx context.Context, accountID string, params dto.ListSnapshotsParams, caller domain.CallerContext) ([]domain.AccountBalanceSnapshot, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account for snapshots", slog.String("account_id", accountID))
		}
		return nil, err
	}

	snapshots, err := s.snapshotRepo.ListSnapshots(ctx, accountID, params.StartDate, params.EndDate)
	if err != nil {
		s.LogError(ctx, err, "Failed to list snapshots", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return snapshots, nil
}

// CreateBalanceSnapshot captures and persists one account's balance as of the
// requested date, outside any period close.
func (s *reportingService) CreateBalanceSnapshot(ctx context.Context, accountID string, req dto.CreateSnapshotRequest, caller domain.CallerContext) (*domain.AccountBalanceSnapshot, error) {
	if err := s.AuthorizeAction(ctx, caller, portssvc.ActionCreateSnapshot); err != nil {
		s.LogWarn(ctx, "Caller not authorized to create snapshot", slog.String("user_id", caller.UserID))
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account for snapshot", slog.String("account_id", accountID))
		}
		return nil, err
	}

	balanceDate := req.BalanceDate.UTC()
	snapshot, err := s.buildSnapshot(ctx, *account, balanceDate, time.Now().UTC())
	if err != nil {
		s.LogError(ctx, err, "Failed to build snapshot", slog.String("account_id", accountID))
		return nil, err
	}
	if err := s.snapshotRepo.SaveSnapshot(ctx, *snapshot); err != nil {
		s.LogError(ctx, err, "Failed to save snapshot", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	s.RecordAudit(ctx, domain.AuditTrailEntry{
		AccountID: accountID,
		Action:    domain.AuditSnapshotCreated,
		NewValue: auditValue(map[string]any{
			"snapshot_id":     snapshot.SnapshotID,
			"balance_date":    balanceDate.Format(time.RFC3339),
			"closing_balance": snapshot.ClosingBalance.String(),
			"currency_code":   snapshot.CurrencyCode,
		}),
		UserID:    caller.UserID,
		IPAddress: caller.IPAddress,
		UserAgent: caller.UserAgent,
	})

	s.LogInfo(ctx, "Balance snapshot created",
		slog.String("account_id", accountID),
		slog.String("snapshot_id", snapshot.SnapshotID),
		slog.String("balance_date", balanceDate.Format(time.RFC3339)))
	return snapshot, nil
}

// PerformPeriodClose validates the books and then snapshots every active
// account as of the period end. Each snapshot opens at the previous
// snapshot's closing balance; the first close for an account opens at zero.
// High severity validation issues block a real close; a dry run reports them
// without failing.
func (s *reportingService) PerformPeriodClose(ctx context.Context, req dto.PeriodCloseRequest, caller domain.CallerContext) (*domain.PeriodCloseResult, error) {
	if err := s.AuthorizeAction(ctx, caller, portssvc.ActionPeriodClose); err != nil {
		s.LogWarn(ctx, "Caller not authorized to perform period close", slog.String("user_id", caller.UserID))
		return nil, err
	}

	// Queued requests bypass transport binding, so re-check here.
	switch req.CloseType {
	case "month", "quarter", "year":
	default:
		return nil, fmt.Errorf("%w: close type must be month, quarter or year", apperrors.ErrValidation)
	}
	if req.PeriodEnd.IsZero() {
		return nil, fmt.Errorf("%w: period end is required", apperrors.ErrValidation)
	}

	periodEnd := req.PeriodEnd.UTC()

	issuesFound := 0
	if s.validator != nil {
		validation, err := s.validator.ValidateBookkeeping(ctx, dto.ValidateBookkeepingRequest{EndDate: &periodEnd}, caller)
		if err != nil {
			s.LogWarn(ctx, "Period close validation could not run", slog.String("error", err.Error()))
		} else {
			issuesFound = validation.IssuesFound
			highSeverity := 0
			for _, issue := range validation.Issues {
				if issue.Severity == domain.SeverityHigh {
					highSeverity++
				}
			}
			if highSeverity > 0 && !req.DryRun {
				s.LogWarn(ctx, "Period close blocked by validation issues",
					slog.Int("high_severity_issues", highSeverity),
					slog.Int("issues_found", issuesFound))
				return nil, fmt.Errorf("%w: %d high severity bookkeeping issues must be resolved before closing the period", apperrors.ErrConflict, highSeverity)
			}
		}
	}

	active := domain.AccountActive
	accounts, _, err := s.accountRepo.ListAccounts(ctx, portsrepo.AccountFilter{Status: &active})
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts for period close")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	now := time.Now().UTC()
	var snapshotsCreated int64
	for _, account := range accounts {
		snapshot, err := s.buildSnapshot(ctx, account, periodEnd, now)
		if err != nil {
			s.LogError(ctx, err, "Failed to build snapshot", slog.String("account_id", account.AccountID))
			return nil, err
		}
		if req.DryRun {
			continue
		}
		if err := s.snapshotRepo.SaveSnapshot(ctx, *snapshot); err != nil {
			s.LogError(ctx, err, "Failed to save snapshot", slog.String("account_id", account.AccountID))
			return nil, fmt.Errorf("failed to save snapshot for account %s: %w", account.AccountID, err)
		}
		snapshotsCreated++
	}

	if !req.DryRun {
		s.RecordAudit(ctx, domain.AuditTrailEntry{
			Action: domain.AuditPeriodClosePerformed,
			NewValue: auditValue(map[string]any{
				"period_end":         periodEnd.Format(time.RFC3339),
				"close_type":         req.CloseType,
				"accounts_processed": len(accounts),
				"snapshots_created":  snapshotsCreated,
				"issues_found":       issuesFound,
			}),
			UserID:    caller.UserID,
			IPAddress: caller.IPAddress,
			UserAgent: caller.UserAgent,
		})
		if s.notifier != nil {
			s.notifier.Notify(ctx, caller.UserID, portssvc.EventPeriodCloseCompleted, map[string]any{
				"period_end":         periodEnd.Format(time.RFC3339),
				"close_type":         req.CloseType,
				"accounts_processed": len(accounts),
				"issues_found":       issuesFound,
			})
		}
	}

	s.LogInfo(ctx, "Period close performed",
		slog.String("period_end", periodEnd.Format(time.RFC3339)),
		slog.String("close_type", req.CloseType),
		slog.Int("accounts_processed", len(accounts)),
		slog.Bool("dry_run", req.DryRun))

	return &domain.PeriodCloseResult{
		PeriodEnd:         periodEnd,
		CloseType:         req.CloseType,
		AccountsProcessed: int64(len(accounts)),
		SnapshotsCreated:  snapshotsCreated,
		IssuesFound:       issuesFound,
		ClosedAt:          now,
	}, nil
}

// buildSnapshot computes one account's snapshot as of the period end.
func (s *reportingService) buildSnapshot(ctx context.Context, account domain.Account, periodEnd, now time.Time) (*domain.AccountBalanceSnapshot, error) {
	opening := decimal.Zero
	var windowStart *time.Time
	previous, err := s.snapshotRepo.ListSnapshots(ctx, account.AccountID, nil, &periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load prior snapshots: %w", err)
	}
	for i := len(previous) - 1; i >= 0; i-- {
		if previous[i].BalanceDate.Before(periodEnd) {
			opening = previous[i].ClosingBalance
			start := previous[i].BalanceDate
			windowStart = &start
			break
		}
	}

	entries, err := s.transactionRepo.FindEntriesByAccountID(ctx, account.AccountID, &periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	closing := opening
	debitTotal := decimal.Zero
	creditTotal := decimal.Zero
	txnSeen := make(map[string]struct{})
	for _, entry := range entries {
		if entry.Status != domain.EntryPosted {
			continue
		}
		if windowStart != nil && !entry.CreatedAt.After(*windowStart) {
			continue
		}
		impact, err := accounting.BalanceImpact(account.AccountType, entry.EntryType, entry.Amount)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
		}
		closing = closing.Add(impact)
		switch entry.EntryType {
		case domain.Debit:
			debitTotal = debitTotal.Add(entry.Amount)
		case domain.Credit:
			creditTotal = creditTotal.Add(entry.Amount)
		}
		txnSeen[entry.TransactionID] = struct{}{}
	}

	return &domain.AccountBalanceSnapshot{
		SnapshotID:       uuid.NewString(),
		AccountID:        account.AccountID,
		BalanceDate:      periodEnd,
		OpeningBalance:   opening,
		ClosingBalance:   closing,
		DebitTotal:       debitTotal,
		CreditTotal:      creditTotal,
		TransactionCount: len(txnSeen),
		CurrencyCode:     account.CurrencyCode,
		CreatedAt:        now,
	}, nil
}
