package jobs_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/bankchen1/fo3-ledger-core/internal/apperrors"
	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	portssvc "github.com/bankchen1/fo3-ledger-core/internal/core/ports/services"
	"github.com/bankchen1/fo3-ledger-core/internal/dto"
	"github.com/bankchen1/fo3-ledger-core/internal/jobs"
)

// --- Mock ExportService ---

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) ExportLedgerData(ctx context.Context, req dto.ExportRequest, caller domain.CallerContext) (*dto.ExportResponse, error) {
	args := m.Called(ctx, req, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ExportResponse), args.Error(1)
}

func (m *MockExportService) EnqueueExport(ctx context.Context, req dto.ExportRequest, caller domain.CallerContext) (*dto.ExportJobResponse, error) {
	args := m.Called(ctx, req, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ExportJobResponse), args.Error(1)
}

var _ portssvc.ExportSvc = (*MockExportService)(nil)

// --- Mock ValidationService ---

type MockValidationService struct {
	mock.Mock
}

func (m *MockValidationService) ReconcileAccounts(ctx context.Context, req dto.ReconcileAccountsRequest, caller domain.CallerContext) (*dto.ReconcileAccountsResponse, error) {
	args := m.Called(ctx, req, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReconcileAccountsResponse), args.Error(1)
}

func (m *MockValidationService) ValidateBookkeeping(ctx context.Context, req dto.ValidateBookkeepingRequest, caller domain.CallerContext) (*dto.ValidateBookkeepingResponse, error) {
	args := m.Called(ctx, req, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ValidateBookkeepingResponse), args.Error(1)
}

var _ portssvc.ValidationSvcFacade = (*MockValidationService)(nil)

// --- Mock AuditService ---

type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) RecordAction(ctx context.Context, entry domain.AuditTrailEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditService) GetAuditTrail(ctx context.Context, params dto.AuditTrailParams, caller domain.CallerContext) (*dto.AuditTrailResponse, error) {
	args := m.Called(ctx, params, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AuditTrailResponse), args.Error(1)
}

var _ portssvc.AuditSvcFacade = (*MockAuditService)(nil)

// --- Mock ReportingService ---

type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) GetTrialBalance(ctx context.Context, params dto.TrialBalanceParams, caller domain.CallerContext) (*dto.TrialBalanceResponse, error) {
	args := m.Called(ctx, params, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TrialBalanceResponse), args.Error(1)
}

func (m *MockReportingService) GetBalanceSheet(ctx context.Context, params dto.BalanceSheetParams, caller domain.CallerContext) (*domain.FinancialReport, error) {
	args := m.Called(ctx, params, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialReport), args.Error(1)
}

func (m *MockReportingService) GenerateFinancialReport(ctx context.Context, req dto.GenerateReportRequest, caller domain.CallerContext) (*domain.FinancialReport, error) {
	args := m.Called(ctx, req, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialReport), args.Error(1)
}

func (m *MockReportingService) GetLedgerMetrics(ctx context.Context, params dto.MetricsParams, caller domain.CallerContext) (*domain.LedgerMetrics, error) {
	args := m.Called(ctx, params, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerMetrics), args.Error(1)
}

func (m *MockReportingService) ListSnapshots(ctx context.Context, accountID string, params dto.ListSnapshotsParams, caller domain.CallerContext) ([]domain.AccountBalanceSnapshot, error) {
	args := m.Called(ctx, accountID, params, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountBalanceSnapshot), args.Error(1)
}

func (m *MockReportingService) CreateBalanceSnapshot(ctx context.Context, accountID string, req dto.CreateSnapshotRequest, caller domain.CallerContext) (*domain.AccountBalanceSnapshot, error) {
	args := m.Called(ctx, accountID, req, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountBalanceSnapshot), args.Error(1)
}

func (m *MockReportingService) PerformPeriodClose(ctx context.Context, req dto.PeriodCloseRequest, caller domain.CallerContext) (*domain.PeriodCloseResult, error) {
	args := m.Called(ctx, req, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PeriodCloseResult), args.Error(1)
}

var _ portssvc.ReportingService = (*MockReportingService)(nil)

// systemCaller matches callers stamped by the worker, optionally overridden
// with the identity captured at enqueue time.
func systemCaller(userID, sourceService string) interface{} {
	return mock.MatchedBy(func(caller domain.CallerContext) bool {
		return caller.UserID == userID && caller.SourceService == sourceService && caller.IsSystemProcess
	})
}

// --- Test Suite ---

type ProcessorTestSuite struct {
	suite.Suite
	ctx                   context.Context
	mockExportService     *MockExportService
	mockValidationService *MockValidationService
	mockAuditService      *MockAuditService
	mockReportingService  *MockReportingService
	processor             *jobs.Processor
}

func (suite *ProcessorTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.mockExportService = new(MockExportService)
	suite.mockValidationService = new(MockValidationService)
	suite.mockAuditService = new(MockAuditService)
	suite.mockReportingService = new(MockReportingService)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	suite.processor = jobs.NewProcessor(&portssvc.ServiceContainer{
		Validation: suite.mockValidationService,
		Reporting:  suite.mockReportingService,
		Audit:      suite.mockAuditService,
		Export:     suite.mockExportService,
	}, logger)
}

// --- Export tasks ---

func (suite *ProcessorTestSuite) TestHandleExportTask_RunsExportInline() {
	task, err := jobs.NewExportTask(jobs.ExportPayload{
		Request:       dto.ExportRequest{Format: "csv", Async: true},
		UserID:        "user-9",
		SourceService: "payments-api",
	})
	suite.Require().NoError(err)
	suite.Equal(jobs.TaskTypeExport, task.Type())

	suite.mockExportService.On("ExportLedgerData",
		suite.ctx,
		mock.MatchedBy(func(req dto.ExportRequest) bool {
			// The queue hop already happened; the worker must not re-enqueue.
			return req.Format == "csv" && !req.Async
		}),
		systemCaller("user-9", "payments-api"),
	).Return(&dto.ExportResponse{FileName: "ledger_export_20260615.csv", Format: "csv", RecordCount: 42}, nil).Once()

	err = suite.processor.HandleExportTask(suite.ctx, task)

	suite.Require().NoError(err)
	suite.mockExportService.AssertExpectations(suite.T())
}

func (suite *ProcessorTestSuite) TestHandleExportTask_DefaultsToWorkerIdentity() {
	task, err := jobs.NewExportTask(jobs.ExportPayload{
		Request: dto.ExportRequest{Format: "json"},
	})
	suite.Require().NoError(err)

	suite.mockExportService.On("ExportLedgerData",
		suite.ctx,
		mock.AnythingOfType("dto.ExportRequest"),
		systemCaller("system", "ledger-worker"),
	).Return(&dto.ExportResponse{FileName: "ledger_export_20260615.json", Format: "json"}, nil).Once()

	err = suite.processor.HandleExportTask(suite.ctx, task)

	suite.Require().NoError(err)
	suite.mockExportService.AssertExpectations(suite.T())
}

func (suite *ProcessorTestSuite) TestHandleExportTask_MalformedPayloadNotRetried() {
	task := asynq.NewTask(jobs.TaskTypeExport, []byte("{not json"))

	err := suite.processor.HandleExportTask(suite.ctx, task)

	suite.Require().ErrorIs(err, asynq.SkipRetry)
	suite.mockExportService.AssertNotCalled(suite.T(), "ExportLedgerData")
}

func (suite *ProcessorTestSuite) TestHandleExportTask_InvalidRequestNotRetried() {
	task, err := jobs.NewExportTask(jobs.ExportPayload{
		Request: dto.ExportRequest{Format: "xml"},
	})
	suite.Require().NoError(err)

	suite.mockExportService.On("ExportLedgerData", suite.ctx, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: unsupported export format xml", apperrors.ErrValidation)).Once()

	err = suite.processor.HandleExportTask(suite.ctx, task)

	suite.Require().ErrorIs(err, asynq.SkipRetry)
	suite.mockExportService.AssertExpectations(suite.T())
}

func (suite *ProcessorTestSuite) TestHandleExportTask_TransientErrorRetried() {
	task, err := jobs.NewExportTask(jobs.ExportPayload{
		Request: dto.ExportRequest{Format: "csv"},
	})
	suite.Require().NoError(err)

	suite.mockExportService.On("ExportLedgerData", suite.ctx, mock.Anything, mock.Anything).
		Return(nil, assert.AnError).Once()

	err = suite.processor.HandleExportTask(suite.ctx, task)

	suite.Require().ErrorIs(err, assert.AnError)
	suite.NotErrorIs(err, asynq.SkipRetry)
}

// --- Validation tasks ---

func (suite *ProcessorTestSuite) TestHandleValidationRunTask_Passes() {
	endDate := time.Date(2026, 6, 30, 23, 59, 59, 0, time.UTC)
	task, err := jobs.NewValidationRunTask(jobs.ValidationRunPayload{
		Request: dto.ValidateBookkeepingRequest{EndDate: &endDate, AutoCorrect: true},
	})
	suite.Require().NoError(err)

	suite.mockValidationService.On("ValidateBookkeeping",
		suite.ctx,
		mock.MatchedBy(func(req dto.ValidateBookkeepingRequest) bool {
			return req.AutoCorrect && req.EndDate != nil && req.EndDate.Equal(endDate)
		}),
		systemCaller("system", "ledger-worker"),
	).Return(&dto.ValidateBookkeepingResponse{BooksValid: true, TransactionsChecked: 120}, nil).Once()

	err = suite.processor.HandleValidationRunTask(suite.ctx, task)

	suite.Require().NoError(err)
	suite.mockValidationService.AssertExpectations(suite.T())
}

func (suite *ProcessorTestSuite) TestHandleValidationRunTask_IssuesFoundStillCompletes() {
	// Finding issues is a successful run; retrying would re-report them.
	task, err := jobs.NewValidationRunTask(jobs.ValidationRunPayload{})
	suite.Require().NoError(err)

	suite.mockValidationService.On("ValidateBookkeeping", suite.ctx, mock.Anything, mock.Anything).
		Return(&dto.ValidateBookkeepingResponse{BooksValid: false, IssuesFound: 3, IssuesFixed: 1}, nil).Once()

	err = suite.processor.HandleValidationRunTask(suite.ctx, task)

	suite.Require().NoError(err)
}

func (suite *ProcessorTestSuite) TestHandleValidationRunTask_ErrorRetried() {
	task, err := jobs.NewValidationRunTask(jobs.ValidationRunPayload{})
	suite.Require().NoError(err)

	suite.mockValidationService.On("ValidateBookkeeping", suite.ctx, mock.Anything, mock.Anything).
		Return(nil, assert.AnError).Once()

	err = suite.processor.HandleValidationRunTask(suite.ctx, task)

	suite.Require().ErrorIs(err, assert.AnError)
}

// --- Audit redelivery tasks ---

func (suite *ProcessorTestSuite) TestHandleAuditRetryTask_RedeliversEntry() {
	entry := domain.AuditTrailEntry{
		AuditID:       "audit-77",
		TransactionID: "txn-12",
		Action:        domain.AuditTransactionPosted,
		UserID:        "user-9",
		Timestamp:     time.Date(2026, 6, 15, 10, 30, 0, 0, time.UTC),
	}
	task, err := jobs.NewAuditRetryTask(jobs.AuditRetryPayload{Entry: entry})
	suite.Require().NoError(err)

	suite.mockAuditService.On("RecordAction", suite.ctx, entry).Return(nil).Once()

	err = suite.processor.HandleAuditRetryTask(suite.ctx, task)

	suite.Require().NoError(err)
	suite.mockAuditService.AssertExpectations(suite.T())
}

func (suite *ProcessorTestSuite) TestHandleAuditRetryTask_EmptyEntrySkipped() {
	task, err := jobs.NewAuditRetryTask(jobs.AuditRetryPayload{})
	suite.Require().NoError(err)

	err = suite.processor.HandleAuditRetryTask(suite.ctx, task)

	suite.Require().ErrorIs(err, asynq.SkipRetry)
	suite.mockAuditService.AssertNotCalled(suite.T(), "RecordAction")
}

// --- Period close tasks ---

func (suite *ProcessorTestSuite) TestHandlePeriodCloseTask_Succeeds() {
	periodEnd := time.Date(2026, 6, 30, 23, 59, 59, 0, time.UTC)
	task, err := jobs.NewPeriodCloseTask(jobs.PeriodClosePayload{
		Request: dto.PeriodCloseRequest{PeriodEnd: periodEnd, CloseType: "month"},
	})
	suite.Require().NoError(err)

	suite.mockReportingService.On("PerformPeriodClose",
		suite.ctx,
		mock.MatchedBy(func(req dto.PeriodCloseRequest) bool {
			return req.CloseType == "month" && req.PeriodEnd.Equal(periodEnd)
		}),
		systemCaller("system", "ledger-worker"),
	).Return(&domain.PeriodCloseResult{
		PeriodEnd:         periodEnd,
		CloseType:         "month",
		AccountsProcessed: 8,
		SnapshotsCreated:  8,
	}, nil).Once()

	err = suite.processor.HandlePeriodCloseTask(suite.ctx, task)

	suite.Require().NoError(err)
	suite.mockReportingService.AssertExpectations(suite.T())
}

func (suite *ProcessorTestSuite) TestHandlePeriodCloseTask_ScheduledPayloadResolvesPeriod() {
	// Cron payloads are registered once and carry no dates; the handler fills
	// in the previous month boundary when the task fires.
	task, err := jobs.NewPeriodCloseTask(jobs.PeriodClosePayload{})
	suite.Require().NoError(err)

	suite.mockReportingService.On("PerformPeriodClose",
		suite.ctx,
		mock.MatchedBy(func(req dto.PeriodCloseRequest) bool {
			now := time.Now().UTC()
			monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
			return req.CloseType == "month" && req.PeriodEnd.Equal(monthStart)
		}),
		systemCaller("system", "ledger-worker"),
	).Return(&domain.PeriodCloseResult{CloseType: "month", AccountsProcessed: 3, SnapshotsCreated: 3}, nil).Once()

	err = suite.processor.HandlePeriodCloseTask(suite.ctx, task)

	suite.Require().NoError(err)
	suite.mockReportingService.AssertExpectations(suite.T())
}

func (suite *ProcessorTestSuite) TestHandlePeriodCloseTask_InvalidRequestNotRetried() {
	task, err := jobs.NewPeriodCloseTask(jobs.PeriodClosePayload{
		Request: dto.PeriodCloseRequest{CloseType: "week"},
	})
	suite.Require().NoError(err)

	suite.mockReportingService.On("PerformPeriodClose", suite.ctx, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: close type must be month, quarter or year", apperrors.ErrValidation)).Once()

	err = suite.processor.HandlePeriodCloseTask(suite.ctx, task)

	suite.Require().ErrorIs(err, asynq.SkipRetry)
}

// --- Run Test Suite ---

func TestProcessor(t *testing.T) {
	suite.Run(t, new(ProcessorTestSuite))
}
