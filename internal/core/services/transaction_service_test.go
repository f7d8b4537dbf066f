package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bankchen1/fo3-ledger-core/internal/apperrors"
	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	portsrepo "github.com/bankchen1/fo3-ledger-core/internal/core/ports/repositories"
	portssvc "github.com/bankchen1/fo3-ledger-core/internal/core/ports/services"
	"github.com/bankchen1/fo3-ledger-core/internal/core/services"
	"github.com/bankchen1/fo3-ledger-core/internal/dto"
	"github.com/bankchen1/fo3-ledger-core/internal/platform/cache"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite Setup ---

type TransactionServiceTestSuite struct {
	suite.Suite
	mockTxnRepo      *MockTransactionRepository
	mockAccountRepo  *MockAccountRepository
	mockRecorder     *MockAuditRecorder
	mockNotifier     *MockNotifier
	service          portssvc.TransactionSvcFacade
	cashAccount      domain.Account
	salesAccount     domain.Account
	custodyAccount   domain.Account
	expenseAccount   domain.Account
	caller           domain.CallerContext
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockRecorder = new(MockAuditRecorder)
	suite.mockNotifier = new(MockNotifier)
	suite.service = services.NewTransactionService(suite.mockTxnRepo, suite.mockAccountRepo)

	suite.caller = domain.CallerContext{UserID: uuid.NewString()}

	suite.cashAccount = domain.Account{
		AccountID:          uuid.NewString(),
		AccountCode:        "1001",
		AccountType:        domain.Asset,
		CurrencyCode:       "USD",
		Status:             domain.AccountActive,
		AllowManualEntries: true,
	}
	suite.salesAccount = domain.Account{
		AccountID:          uuid.NewString(),
		AccountCode:        "4001",
		AccountType:        domain.Revenue,
		CurrencyCode:       "USD",
		Status:             domain.AccountActive,
		AllowManualEntries: true,
	}
	// System-managed liability account, closed to manual entries.
	suite.custodyAccount = domain.Account{
		AccountID:          uuid.NewString(),
		AccountCode:        "2001",
		AccountType:        domain.Liability,
		CurrencyCode:       "USD",
		Status:             domain.AccountActive,
		AllowManualEntries: false,
		IsSystemAccount:    true,
	}
	suite.expenseAccount = domain.Account{
		AccountID:          uuid.NewString(),
		AccountCode:        "5001",
		AccountType:        domain.Expense,
		CurrencyCode:       "USD",
		Status:             domain.AccountActive,
		AllowManualEntries: true,
	}
}

// recordRequest builds a balanced two-entry request against cash and sales.
func (suite *TransactionServiceTestSuite) recordRequest(amount int64) dto.RecordTransactionRequest {
	return dto.RecordTransactionRequest{
		TransactionType: "deposit",
		Description:     "Customer deposit",
		CurrencyCode:    "USD",
		Entries: []dto.JournalEntryInput{
			{AccountID: suite.cashAccount.AccountID, EntryType: domain.Debit, Amount: decimal.NewFromInt(amount)},
			{AccountID: suite.salesAccount.AccountID, EntryType: domain.Credit, Amount: decimal.NewFromInt(amount)},
		},
	}
}

func (suite *TransactionServiceTestSuite) accountsMap(accounts ...domain.Account) map[string]domain.Account {
	result := make(map[string]domain.Account, len(accounts))
	for _, account := range accounts {
		result[account.AccountID] = account
	}
	return result
}

// postedTransaction builds a posted cash/sales transaction ready for reversal.
func (suite *TransactionServiceTestSuite) postedTransaction(amount int64) *domain.LedgerTransaction {
	transactionID := uuid.NewString()
	postedAt := time.Now().UTC().Add(-time.Hour)
	return &domain.LedgerTransaction{
		TransactionID:   transactionID,
		ReferenceNumber: "TXNAB12CD34EF56",
		TransactionType: "deposit",
		Description:     "Customer deposit",
		CurrencyCode:    "USD",
		TotalAmount:     decimal.NewFromInt(amount),
		Status:          domain.TransactionPosted,
		PostedAt:        &postedAt,
		TransactionDate: postedAt,
		Entries: []domain.JournalEntry{
			{
				EntryID:       uuid.NewString(),
				TransactionID: transactionID,
				AccountID:     suite.cashAccount.AccountID,
				EntryType:     domain.Debit,
				Amount:        decimal.NewFromInt(amount),
				CurrencyCode:  "USD",
				Status:        domain.EntryPosted,
				EntrySequence: 1,
				PostedAt:      &postedAt,
			},
			{
				EntryID:       uuid.NewString(),
				TransactionID: transactionID,
				AccountID:     suite.salesAccount.AccountID,
				EntryType:     domain.Credit,
				Amount:        decimal.NewFromInt(amount),
				CurrencyCode:  "USD",
				Status:        domain.EntryPosted,
				EntrySequence: 2,
				PostedAt:      &postedAt,
			},
		},
	}
}

// --- RecordTransaction ---

func (suite *TransactionServiceTestSuite) TestRecordTransaction_Success() {
	ctx := context.Background()
	req := suite.recordRequest(100)

	accountsMap := suite.accountsMap(suite.cashAccount, suite.salesAccount)
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, []string{suite.cashAccount.AccountID, suite.salesAccount.AccountID}).Return(accountsMap, nil).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.LedgerTransaction")).Return(nil).Once()

	txn, err := suite.service.RecordTransaction(ctx, req, suite.caller)

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.NotEmpty(txn.TransactionID)
	suite.True(strings.HasPrefix(txn.ReferenceNumber, "TXN"))
	suite.Equal(domain.TransactionPending, txn.Status)
	suite.True(txn.TotalAmount.Equal(decimal.NewFromInt(100)))
	suite.Equal(suite.caller.UserID, txn.CreatedBy)
	suite.Require().Len(txn.Entries, 2)
	suite.Equal(domain.EntryDraft, txn.Entries[0].Status)
	suite.Equal(1, txn.Entries[0].EntrySequence)
	suite.Equal(2, txn.Entries[1].EntrySequence)
	suite.Equal("USD", txn.Entries[0].CurrencyCode) // Inherited from the transaction

	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestRecordTransaction_KeepsSuppliedReference() {
	ctx := context.Background()
	req := suite.recordRequest(50)
	req.ReferenceNumber = "WALLET-2026-000042"

	accountsMap := suite.accountsMap(suite.cashAccount, suite.salesAccount)
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).Return(accountsMap, nil).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(txn domain.LedgerTransaction) bool {
		return txn.ReferenceNumber == "WALLET-2026-000042"
	})).Return(nil).Once()

	txn, err := suite.service.RecordTransaction(ctx, req, suite.caller)

	suite.Require().NoError(err)
	suite.Equal("WALLET-2026-000042", txn.ReferenceNumber)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestRecordTransaction_TooFewEntries() {
	ctx := context.Background()
	req := suite.recordRequest(100)
	req.Entries = req.Entries[:1]

	_, err := suite.service.RecordTransaction(ctx, req, suite.caller)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrTooFewEntries)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestRecordTransaction_Unbalanced() {
	ctx := context.Background()
	req := suite.recordRequest(100)
	req.Entries[1].Amount = decimal.NewFromInt(99) // Unbalanced

	_, err := suite.service.RecordTransaction(ctx, req, suite.caller)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrUnbalancedEntries)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "FindAccountsByIDs", mock.Anything, mock.Anything)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestRecordTransaction_NonPositiveAmount() {
	ctx := context.Background()
	req := suite.recordRequest(100)
	req.Entries[1].Amount = decimal.Zero

	_, err := suite.service.RecordTransaction(ctx, req, suite.caller)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestRecordTransaction_AccountNotFound() {
	ctx := context.Background()
	req := suite.recordRequest(100)

	// Sales account is missing from the lookup result.
	accountsMap := suite.accountsMap(suite.cashAccount)
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).Return(accountsMap, nil).Once()

	_, err := suite.service.RecordTransaction(ctx, req, suite.caller)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), suite.salesAccount.AccountID)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestRecordTransaction_InactiveAccount() {
	ctx := context.Background()
	req := suite.recordRequest(100)

	closedSales := suite.salesAccount
	closedSales.Status = domain.AccountClosed
	accountsMap := suite.accountsMap(suite.cashAccount, closedSales)
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).Return(accountsMap, nil).Once()

	_, err := suite.service.RecordTransaction(ctx, req, suite.caller)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountInactive)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestRecordTransaction_CurrencyMismatch() {
	ctx := context.Background()
	req := suite.recordRequest(100)

	eurSales := suite.salesAccount
	eurSales.CurrencyCode = "EUR" // Entries are USD
	accountsMap := suite.accountsMap(suite.cashAccount, eurSales)
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).Return(accountsMap, nil).Once()

	_, err := suite.service.RecordTransaction(ctx, req, suite.caller)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrCurrencyMismatch)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestRecordTransaction_ManualEntryBlocked() {
	ctx := context.Background()
	req := dto.RecordTransactionRequest{
		TransactionType: "adjustment",
		CurrencyCode:    "USD",
		Entries: []dto.JournalEntryInput{
			{AccountID: suite.cashAccount.AccountID, EntryType: domain.Debit, Amount: decimal.NewFromInt(25)},
			{AccountID: suite.custodyAccount.AccountID, EntryType: domain.Credit, Amount: decimal.NewFromInt(25)},
		},
	}

	accountsMap := suite.accountsMap(suite.cashAccount, suite.custodyAccount)
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).Return(accountsMap, nil).Once()

	_, err := suite.service.RecordTransaction(ctx, req, suite.caller)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrManualEntriesNotAllowed)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestRecordTransaction_ServiceCallerMayUseRestrictedAccount() {
	ctx := context.Background()
	req := dto.RecordTransactionRequest{
		TransactionType: "deposit",
		CurrencyCode:    "USD",
		SourceService:   "wallet-service",
		Entries: []dto.JournalEntryInput{
			{AccountID: suite.cashAccount.AccountID, EntryType: domain.Debit, Amount: decimal.NewFromInt(25)},
			{AccountID: suite.custodyAccount.AccountID, EntryType: domain.Credit, Amount: decimal.NewFromInt(25)},
		},
	}

	accountsMap := suite.accountsMap(suite.cashAccount, suite.custodyAccount)
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).Return(accountsMap, nil).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.Anything).Return(nil).Once()

	txn, err := suite.service.RecordTransaction(ctx, req, suite.caller)

	suite.Require().NoError(err)
	suite.Equal("wallet-service", txn.SourceService)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestRecordTransaction_DuplicateReference() {
	ctx := context.Background()
	req := suite.recordRequest(100)
	req.ReferenceNumber = "WALLET-2026-000042"

	accountsMap := suite.accountsMap(suite.cashAccount, suite.salesAccount)
	dupErr := apperrors.ErrDuplicate
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).Return(accountsMap, nil).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.Anything).Return(dupErr).Once()

	_, err := suite.service.RecordTransaction(ctx, req, suite.caller)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestRecordTransaction_AuthorizationFail() {
	ctx := context.Background()
	mockAuthorizer := new(MockAuthorizer)
	service := services.NewTransactionService(suite.mockTxnRepo, suite.mockAccountRepo,
		services.WithTransactionAuthorizer(mockAuthorizer))
	mockAuthorizer.On("AuthorizeLedgerAction", ctx, suite.caller, portssvc.ActionRecordTransaction).Return(apperrors.ErrForbidden).Once()

	_, err := service.RecordTransaction(ctx, suite.recordRequest(100), suite.caller)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	mockAuthorizer.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "FindAccountsByIDs", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestRecordTransaction_AutoPost() {
	ctx := context.Background()
	req := suite.recordRequest(100)
	req.AutoPost = true

	accountsMap := suite.accountsMap(suite.cashAccount, suite.salesAccount)
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).Return(accountsMap, nil).Twice()

	var savedTxn domain.LedgerTransaction
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.LedgerTransaction")).Run(func(args mock.Arguments) {
		savedTxn = args.Get(1).(domain.LedgerTransaction)
	}).Return(nil).Once()
	suite.mockTxnRepo.On("FindTransactionByID", ctx, mock.AnythingOfType("string")).Return(&savedTxn, nil).Once()
	suite.mockTxnRepo.On("ApplyPosting", ctx, mock.Anything, mock.Anything, suite.caller.UserID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	txn, err := suite.service.RecordTransaction(ctx, req, suite.caller)

	suite.Require().NoError(err)
	suite.Equal(domain.TransactionPosted, txn.Status)
	suite.Require().NotNil(txn.PostedAt)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

// --- PostTransaction ---

func (suite *TransactionServiceTestSuite) TestPostTransaction_Success() {
	ctx := context.Background()
	pending := suite.postedTransaction(100)
	pending.Status = domain.TransactionPending
	pending.PostedAt = nil
	for i := range pending.Entries {
		pending.Entries[i].Status = domain.EntryDraft
		pending.Entries[i].PostedAt = nil
	}

	accountsMap := suite.accountsMap(suite.cashAccount, suite.salesAccount)
	suite.mockTxnRepo.On("FindTransactionByID", ctx, pending.TransactionID).Return(pending, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).Return(accountsMap, nil).Once()

	// Debit to an asset and credit to revenue both increase the balance.
	suite.mockTxnRepo.On("ApplyPosting", ctx, mock.Anything, mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
		return changes[suite.cashAccount.AccountID].Equal(decimal.NewFromInt(100)) &&
			changes[suite.salesAccount.AccountID].Equal(decimal.NewFromInt(100))
	}), suite.caller.UserID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	txn, err := suite.service.PostTransaction(ctx, pending.TransactionID, suite.caller)

	suite.Require().NoError(err)
	suite.Equal(domain.TransactionPosted, txn.Status)
	suite.Require().NotNil(txn.PostedAt)
	for _, entry := range txn.Entries {
		suite.Equal(domain.EntryPosted, entry.Status)
		suite.NotNil(entry.PostedAt)
	}
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestPostTransaction_RecordsBalanceChangeAudit() {
	ctx := context.Background()
	pending := suite.postedTransaction(100)
	pending.Status = domain.TransactionPending
	pending.PostedAt = nil

	service := services.NewTransactionService(suite.mockTxnRepo, suite.mockAccountRepo,
		services.WithTransactionAuditRecorder(suite.mockRecorder))

	accountsMap := suite.accountsMap(suite.cashAccount, suite.salesAccount)
	suite.mockTxnRepo.On("FindTransactionByID", ctx, pending.TransactionID).Return(pending, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).Return(accountsMap, nil).Once()
	suite.mockTxnRepo.On("ApplyPosting", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	// One entry for the posting itself plus one balance change per account.
	suite.mockRecorder.On("RecordAction", ctx, mock.MatchedBy(func(entry domain.AuditTrailEntry) bool {
		return entry.Action == domain.AuditTransactionPosted
	})).Return(nil).Once()
	suite.mockRecorder.On("RecordAction", ctx, mock.MatchedBy(func(entry domain.AuditTrailEntry) bool {
		return entry.Action == domain.AuditAccountBalanceChange
	})).Return(nil).Twice()

	_, err := service.PostTransaction(ctx, pending.TransactionID, suite.caller)

	suite.Require().NoError(err)
	suite.mockRecorder.AssertExpectations(suite.T())
}

// Posting changes balances, so cached report responses must stop being served.
func (suite *TransactionServiceTestSuite) TestPostTransaction_InvalidatesReportCache() {
	ctx := context.Background()
	pending := suite.postedTransaction(100)
	pending.Status = domain.TransactionPending
	pending.PostedAt = nil

	mr := miniredis.RunT(suite.T())
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	reportCache := cache.NewReportCache(client, time.Minute)
	before, err := reportCache.Version(ctx)
	suite.Require().NoError(err)

	service := services.NewTransactionService(suite.mockTxnRepo, suite.mockAccountRepo,
		services.WithTransactionReportCache(reportCache))

	accountsMap := suite.accountsMap(suite.cashAccount, suite.salesAccount)
	suite.mockTxnRepo.On("FindTransactionByID", ctx, pending.TransactionID).Return(pending, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).Return(accountsMap, nil).Once()
	suite.mockTxnRepo.On("ApplyPosting", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	_, err = service.PostTransaction(ctx, pending.TransactionID, suite.caller)

	suite.Require().NoError(err)
	after, err := reportCache.Version(ctx)
	suite.Require().NoError(err)
	suite.Equal(before+1, after)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestPostTransaction_NotPending() {
	ctx := context.Background()
	posted := suite.postedTransaction(100)
	suite.mockTxnRepo.On("FindTransactionByID", ctx, posted.TransactionID).Return(posted, nil).Once()

	_, err := suite.service.PostTransaction(ctx, posted.TransactionID, suite.caller)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrTransactionNotPending)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "ApplyPosting", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestPostTransaction_NotFound() {
	ctx := context.Background()
	transactionID := uuid.NewString()
	suite.mockTxnRepo.On("FindTransactionByID", ctx, transactionID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.PostTransaction(ctx, transactionID, suite.caller)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *TransactionServiceTestSuite) TestPostTransaction_InactiveAccount() {
	ctx := context.Background()
	pending := suite.postedTransaction(100)
	pending.Status = domain.TransactionPending

	closedCash := suite.cashAccount
	closedCash.Status = domain.AccountClosed
	accountsMap := suite.accountsMap(closedCash, suite.salesAccount)
	suite.mockTxnRepo.On("FindTransactionByID", ctx, pending.TransactionID).Return(pending, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).Return(accountsMap, nil).Once()

	_, err := suite.service.PostTransaction(ctx, pending.TransactionID, suite.caller)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountInactive)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "ApplyPosting", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestPostTransaction_ApplyError() {
	ctx := context.Background()
	pending := suite.postedTransaction(100)
	pending.Status = domain.TransactionPending

	accountsMap := suite.accountsMap(suite.cashAccount, suite.salesAccount)
	repoErr := assert.AnError
	suite.mockTxnRepo.On("FindTransactionByID", ctx, pending.TransactionID).Return(pending, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).Return(accountsMap, nil).Once()
	suite.mockTxnRepo.On("ApplyPosting", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(repoErr).Once()

	_, err := suite.service.PostTransaction(ctx, pending.TransactionID, suite.caller)

	suite.Require().Error(err)
	suite.ErrorIs(err, repoErr)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

// --- ReverseTransaction ---

func (suite *TransactionServiceTestSuite) TestReverseTransaction_Success() {
	ctx := context.Background()
	original := suite.postedTransaction(100)
	req := dto.ReverseTransactionRequest{Reason: "duplicate deposit", Description: "Support ticket 8841"}

	service := services.NewTransactionService(suite.mockTxnRepo, suite.mockAccountRepo,
		services.WithTransactionNotifier(suite.mockNotifier))

	accountsMap := suite.accountsMap(suite.cashAccount, suite.salesAccount)
	suite.mockTxnRepo.On("FindTransactionByID", ctx, original.TransactionID).Return(original, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).Return(accountsMap, nil).Once()

	suite.mockTxnRepo.On("ApplyReversal", ctx,
		mock.MatchedBy(func(updated domain.LedgerTransaction) bool {
			return updated.Status == domain.TransactionReversed &&
				updated.ReversalReason == "duplicate deposit" &&
				updated.ReversalTransactionID != ""
		}),
		mock.MatchedBy(func(reversal domain.LedgerTransaction) bool {
			return reversal.Status == domain.TransactionPosted &&
				reversal.ReferenceNumber == "REV-"+original.ReferenceNumber &&
				reversal.TransactionType == "reversal_deposit" &&
				len(reversal.Entries) == 2 &&
				reversal.Entries[0].EntryType == domain.Credit && // Flipped from the original debit
				reversal.Entries[1].EntryType == domain.Debit
		}),
		mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
			return changes[suite.cashAccount.AccountID].Equal(decimal.NewFromInt(-100)) &&
				changes[suite.salesAccount.AccountID].Equal(decimal.NewFromInt(-100))
		}),
		suite.caller.UserID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockNotifier.On("Notify", ctx, suite.caller.UserID, portssvc.EventTransactionReversed, mock.Anything).Once()

	resp, err := service.ReverseTransaction(ctx, original.TransactionID, req, suite.caller)

	suite.Require().NoError(err)
	suite.Require().NotNil(resp)
	suite.Equal(string(domain.TransactionReversed), resp.OriginalTransaction.Status)
	suite.Equal("duplicate deposit", resp.OriginalTransaction.ReversalReason)
	suite.Equal(string(domain.TransactionPosted), resp.ReversalTransaction.Status)
	suite.Equal(original.TransactionID, resp.ReversalTransaction.Metadata["original_transaction_id"])
	suite.Equal("Support ticket 8841", resp.ReversalTransaction.Metadata["note"])
	suite.Equal(resp.ReversalTransaction.TransactionID, resp.OriginalTransaction.ReversalTransactionID)

	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestReverseTransaction_AlreadyReversed() {
	ctx := context.Background()
	original := suite.postedTransaction(100)
	original.Status = domain.TransactionReversed
	suite.mockTxnRepo.On("FindTransactionByID", ctx, original.TransactionID).Return(original, nil).Once()

	_, err := suite.service.ReverseTransaction(ctx, original.TransactionID, dto.ReverseTransactionRequest{Reason: "duplicate"}, suite.caller)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAlreadyReversed)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "ApplyReversal", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestReverseTransaction_NotPosted() {
	ctx := context.Background()
	original := suite.postedTransaction(100)
	original.Status = domain.TransactionPending
	suite.mockTxnRepo.On("FindTransactionByID", ctx, original.TransactionID).Return(original, nil).Once()

	_, err := suite.service.ReverseTransaction(ctx, original.TransactionID, dto.ReverseTransactionRequest{Reason: "duplicate"}, suite.caller)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrTransactionNotPosted)
}

func (suite *TransactionServiceTestSuite) TestReverseTransaction_OfReversal() {
	ctx := context.Background()
	original := suite.postedTransaction(100)
	original.TransactionType = "reversal_deposit"
	suite.mockTxnRepo.On("FindTransactionByID", ctx, original.TransactionID).Return(original, nil).Once()

	_, err := suite.service.ReverseTransaction(ctx, original.TransactionID, dto.ReverseTransactionRequest{Reason: "undo the undo"}, suite.caller)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrReversalOfReversal)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "ApplyReversal", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- UpdateTransaction ---

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_Success() {
	ctx := context.Background()
	pending := suite.postedTransaction(100)
	pending.Status = domain.TransactionPending
	newDescription := "Corrected memo"
	req := dto.UpdateTransactionRequest{Description: &newDescription}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, pending.TransactionID).Return(pending, nil).Once()
	suite.mockTxnRepo.On("UpdateTransactionDetails", ctx, mock.MatchedBy(func(txn domain.LedgerTransaction) bool {
		return txn.Description == newDescription
	})).Return(nil).Once()

	txn, err := suite.service.UpdateTransaction(ctx, pending.TransactionID, req, suite.caller)

	suite.Require().NoError(err)
	suite.Equal(newDescription, txn.Description)
	suite.Equal(suite.caller.UserID, txn.LastUpdatedBy)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_NotPending() {
	ctx := context.Background()
	posted := suite.postedTransaction(100)
	newDescription := "Corrected memo"
	suite.mockTxnRepo.On("FindTransactionByID", ctx, posted.TransactionID).Return(posted, nil).Once()

	_, err := suite.service.UpdateTransaction(ctx, posted.TransactionID, dto.UpdateTransactionRequest{Description: &newDescription}, suite.caller)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrTransactionNotPending)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "UpdateTransactionDetails", mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_NoFields() {
	ctx := context.Background()
	pending := suite.postedTransaction(100)
	pending.Status = domain.TransactionPending
	suite.mockTxnRepo.On("FindTransactionByID", ctx, pending.TransactionID).Return(pending, nil).Once()

	txn, err := suite.service.UpdateTransaction(ctx, pending.TransactionID, dto.UpdateTransactionRequest{}, suite.caller)

	suite.Require().NoError(err)
	suite.Equal(pending.Description, txn.Description)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "UpdateTransactionDetails", mock.Anything, mock.Anything)
}

// --- Reads ---

func (suite *TransactionServiceTestSuite) TestGetTransactionByReference() {
	ctx := context.Background()
	posted := suite.postedTransaction(100)
	suite.mockTxnRepo.On("FindTransactionByReference", ctx, posted.ReferenceNumber).Return(posted, nil).Once()

	txn, err := suite.service.GetTransactionByReference(ctx, posted.ReferenceNumber, suite.caller)

	suite.Require().NoError(err)
	suite.Equal(posted.TransactionID, txn.TransactionID)
}

func (suite *TransactionServiceTestSuite) TestListTransactions_NormalizesPagination() {
	ctx := context.Background()
	posted := suite.postedTransaction(100)
	suite.mockTxnRepo.On("ListTransactions", ctx, mock.MatchedBy(func(filter portsrepo.TransactionFilter) bool {
		return filter.Page == 1 && filter.PageSize == 20
	})).Return([]domain.LedgerTransaction{*posted}, int64(1), nil).Once()

	resp, err := suite.service.ListTransactions(ctx, dto.ListTransactionsParams{}, suite.caller)

	suite.Require().NoError(err)
	suite.Equal(int64(1), resp.TotalCount)
	suite.Require().Len(resp.Transactions, 1)
	suite.Equal(posted.ReferenceNumber, resp.Transactions[0].ReferenceNumber)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

// --- Run Test Suite ---

func TestTransactionService(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
