package services_test

// Mocks shared by the service test suites. Every suite in this package uses
// the same repository and collaborator mocks, so they are declared once here.

import (
	"context"
	"time"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	portsrepo "github.com/bankchen1/fo3-ledger-core/internal/core/ports/repositories"
	portssvc "github.com/bankchen1/fo3-ledger-core/internal/core/ports/services"
	"github.com/bankchen1/fo3-ledger-core/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock TransactionRepository ---

type MockTransactionRepository struct {
	mock.Mock
}

// Ensure MockTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.LedgerTransaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerTransaction), args.Error(1)
}

func (m *MockTransactionRepository) FindTransactionByReference(ctx context.Context, referenceNumber string) (*domain.LedgerTransaction, error) {
	args := m.Called(ctx, referenceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerTransaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactions(ctx context.Context, filter portsrepo.TransactionFilter) ([]domain.LedgerTransaction, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.LedgerTransaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) FindEntriesByAccountID(ctx context.Context, accountID string, until *time.Time) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, accountID, until)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, txn domain.LedgerTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateTransactionDetails(ctx context.Context, txn domain.LedgerTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) CorrectTransactionAmount(ctx context.Context, transactionID string, totalAmount decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, transactionID, totalAmount, userID, now)
	return args.Error(0)
}

func (m *MockTransactionRepository) ApplyPosting(ctx context.Context, txn domain.LedgerTransaction, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, txn, balanceChanges, userID, now)
	return args.Error(0)
}

func (m *MockTransactionRepository) ApplyReversal(ctx context.Context, original domain.LedgerTransaction, reversal domain.LedgerTransaction, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, original, reversal, balanceChanges, userID, now)
	return args.Error(0)
}

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

// Ensure MockAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, accountCode string) (*domain.Account, error) {
	args := m.Called(ctx, accountCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, filter portsrepo.AccountFilter) ([]domain.Account, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Account), args.Get(1).(int64), args.Error(2)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) CloseAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, userID, now)
	return args.Error(0)
}

// --- Mock AuditRepository ---

type MockAuditRepository struct {
	mock.Mock
}

var _ portsrepo.AuditRepositoryFacade = (*MockAuditRepository)(nil)

func (m *MockAuditRepository) SaveAuditEntry(ctx context.Context, entry domain.AuditTrailEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) ListAuditEntries(ctx context.Context, filter portsrepo.AuditTrailFilter) ([]domain.AuditTrailEntry, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.AuditTrailEntry), args.Get(1).(int64), args.Error(2)
}

// --- Mock ReportingRepository ---

type MockReportingRepository struct {
	mock.Mock
}

var _ portsrepo.ReportingRepository = (*MockReportingRepository)(nil)

func (m *MockReportingRepository) GetTrialBalanceData(ctx context.Context, filter portsrepo.TrialBalanceFilter) ([]domain.TrialBalanceEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrialBalanceEntry), args.Error(1)
}

func (m *MockReportingRepository) GetLedgerMetricsData(ctx context.Context, filter portsrepo.MetricsFilter) (*domain.LedgerMetrics, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerMetrics), args.Error(1)
}

// --- Mock SnapshotRepository ---

type MockSnapshotRepository struct {
	mock.Mock
}

var _ portsrepo.SnapshotRepositoryFacade = (*MockSnapshotRepository)(nil)

func (m *MockSnapshotRepository) SaveSnapshot(ctx context.Context, snapshot domain.AccountBalanceSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockSnapshotRepository) ListSnapshots(ctx context.Context, accountID string, startDate, endDate *time.Time) ([]domain.AccountBalanceSnapshot, error) {
	args := m.Called(ctx, accountID, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountBalanceSnapshot), args.Error(1)
}

// --- Mock LedgerAuthorizer ---

type MockAuthorizer struct {
	mock.Mock
}

var _ portssvc.LedgerAuthorizerSvc = (*MockAuthorizer)(nil)

func (m *MockAuthorizer) AuthorizeLedgerAction(ctx context.Context, caller domain.CallerContext, action string) error {
	args := m.Called(ctx, caller, action)
	return args.Error(0)
}

// --- Mock AuditRecorder ---

type MockAuditRecorder struct {
	mock.Mock
}

var _ portssvc.AuditRecorderSvc = (*MockAuditRecorder)(nil)

func (m *MockAuditRecorder) RecordAction(ctx context.Context, entry domain.AuditTrailEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// --- Mock LedgerEventNotifier ---

type MockNotifier struct {
	mock.Mock
}

var _ portssvc.LedgerEventNotifier = (*MockNotifier)(nil)

func (m *MockNotifier) Notify(ctx context.Context, userID string, event string, properties map[string]any) {
	m.Called(ctx, userID, event, properties)
}

func (m *MockNotifier) Close() error {
	args := m.Called()
	return args.Error(0)
}

// --- Mock BackgroundTaskEnqueuer ---

type MockEnqueuer struct {
	mock.Mock
}

var _ portssvc.BackgroundTaskEnqueuer = (*MockEnqueuer)(nil)

func (m *MockEnqueuer) EnqueueExport(ctx context.Context, req dto.ExportRequest, caller domain.CallerContext) (string, string, error) {
	args := m.Called(ctx, req, caller)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockEnqueuer) EnqueueAuditRetry(ctx context.Context, entry domain.AuditTrailEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEnqueuer) EnqueueValidationRun(ctx context.Context, req dto.ValidateBookkeepingRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// --- Mock BookkeepingValidator ---

type MockBookkeepingValidator struct {
	mock.Mock
}

var _ portssvc.BookkeepingValidatorSvc = (*MockBookkeepingValidator)(nil)

func (m *MockBookkeepingValidator) ValidateBookkeeping(ctx context.Context, req dto.ValidateBookkeepingRequest, caller domain.CallerContext) (*dto.ValidateBookkeepingResponse, error) {
	args := m.Called(ctx, req, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ValidateBookkeepingResponse), args.Error(1)
}
