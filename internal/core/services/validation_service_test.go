package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/bankchen1/fo3-ledger-core/internal/apperrors"
	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	portsrepo "github.com/bankchen1/fo3-ledger-core/internal/core/ports/repositories"
	portssvc "github.com/bankchen1/fo3-ledger-core/internal/core/ports/services"
	"github.com/bankchen1/fo3-ledger-core/internal/core/services"
	"github.com/bankchen1/fo3-ledger-core/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite Setup ---

type ValidationServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockTxnRepo     *MockTransactionRepository
	service         portssvc.ValidationSvcFacade
	caller          domain.CallerContext
	cashAccount     domain.Account
	salesAccount    domain.Account
}

func (suite *ValidationServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.service = services.NewValidationService(suite.mockAccountRepo, suite.mockTxnRepo)

	suite.caller = domain.CallerContext{UserID: uuid.NewString()}
	suite.cashAccount = domain.Account{
		AccountID:      uuid.NewString(),
		AccountCode:    "1001",
		AccountType:    domain.Asset,
		CurrencyCode:   "USD",
		Status:         domain.AccountActive,
		CurrentBalance: decimal.Zero,
	}
	suite.salesAccount = domain.Account{
		AccountID:      uuid.NewString(),
		AccountCode:    "4001",
		AccountType:    domain.Revenue,
		CurrencyCode:   "USD",
		Status:         domain.AccountActive,
		CurrentBalance: decimal.Zero,
	}
}

// postedTxn builds a posted transaction with the given debit and credit amounts.
func (suite *ValidationServiceTestSuite) postedTxn(debit, credit int64) domain.LedgerTransaction {
	transactionID := uuid.NewString()
	return domain.LedgerTransaction{
		TransactionID:   transactionID,
		ReferenceNumber: "TXN" + uuid.NewString()[:12],
		TransactionType: "deposit",
		CurrencyCode:    "USD",
		TotalAmount:     decimal.NewFromInt(debit),
		Status:          domain.TransactionPosted,
		Entries: []domain.JournalEntry{
			{
				EntryID: uuid.NewString(), TransactionID: transactionID,
				AccountID: suite.cashAccount.AccountID, EntryType: domain.Debit,
				Amount: decimal.NewFromInt(debit), CurrencyCode: "USD",
				Status: domain.EntryPosted, EntrySequence: 1,
			},
			{
				EntryID: uuid.NewString(), TransactionID: transactionID,
				AccountID: suite.salesAccount.AccountID, EntryType: domain.Credit,
				Amount: decimal.NewFromInt(credit), CurrencyCode: "USD",
				Status: domain.EntryPosted, EntrySequence: 2,
			},
		},
	}
}

// --- ValidateBookkeeping ---

func (suite *ValidationServiceTestSuite) TestValidateBookkeeping_CleanBooks() {
	ctx := context.Background()
	txns := []domain.LedgerTransaction{suite.postedTxn(100, 100), suite.postedTxn(40, 40)}

	suite.mockTxnRepo.On("ListTransactions", ctx, mock.MatchedBy(func(filter portsrepo.TransactionFilter) bool {
		return filter.Status != nil && *filter.Status == domain.TransactionPosted
	})).Return(txns, int64(2), nil).Once()

	resp, err := suite.service.ValidateBookkeeping(ctx, dto.ValidateBookkeepingRequest{}, suite.caller)

	suite.Require().NoError(err)
	suite.True(resp.BooksValid)
	suite.Equal(int64(2), resp.TransactionsChecked)
	suite.Equal(0, resp.IssuesFound)
	suite.Empty(resp.Issues)
}

func (suite *ValidationServiceTestSuite) TestValidateBookkeeping_DoubleEntryViolation() {
	ctx := context.Background()
	// Debits 100 vs credits 90, within the transaction and ledger-wide.
	txns := []domain.LedgerTransaction{suite.postedTxn(100, 90)}

	suite.mockTxnRepo.On("ListTransactions", ctx, mock.Anything).Return(txns, int64(1), nil).Once()

	resp, err := suite.service.ValidateBookkeeping(ctx, dto.ValidateBookkeepingRequest{}, suite.caller)

	suite.Require().NoError(err)
	suite.False(resp.BooksValid)
	suite.Require().Len(resp.Issues, 2)

	suite.Equal(domain.IssueDoubleEntryViolation, resp.Issues[0].IssueType)
	suite.Equal(domain.SeverityHigh, resp.Issues[0].Severity)
	suite.Equal(txns[0].TransactionID, resp.Issues[0].TransactionID)
	suite.False(resp.Issues[0].Fixed) // High severity is never auto-corrected

	suite.Equal(domain.IssueTrialBalanceImbalance, resp.Issues[1].IssueType)
	suite.Equal(domain.SeverityHigh, resp.Issues[1].Severity)
}

func (suite *ValidationServiceTestSuite) TestValidateBookkeeping_AmountMismatch() {
	ctx := context.Background()
	txn := suite.postedTxn(100, 100)
	txn.TotalAmount = decimal.NewFromInt(90) // Stored total drifted from the entries

	suite.mockTxnRepo.On("ListTransactions", ctx, mock.Anything).Return([]domain.LedgerTransaction{txn}, int64(1), nil).Once()

	resp, err := suite.service.ValidateBookkeeping(ctx, dto.ValidateBookkeepingRequest{}, suite.caller)

	suite.Require().NoError(err)
	suite.Require().Len(resp.Issues, 1)
	suite.Equal(domain.IssueAmountMismatch, resp.Issues[0].IssueType)
	suite.Equal(domain.SeverityMedium, resp.Issues[0].Severity)
	suite.False(resp.Issues[0].Fixed)
	suite.Equal(0, resp.IssuesFixed)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "CorrectTransactionAmount", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ValidationServiceTestSuite) TestValidateBookkeeping_AutoCorrectsAmountMismatch() {
	ctx := context.Background()
	txn := suite.postedTxn(100, 100)
	txn.TotalAmount = decimal.NewFromInt(90)

	suite.mockTxnRepo.On("ListTransactions", ctx, mock.Anything).Return([]domain.LedgerTransaction{txn}, int64(1), nil).Once()
	suite.mockTxnRepo.On("CorrectTransactionAmount", ctx, txn.TransactionID, mock.MatchedBy(func(total decimal.Decimal) bool {
		return total.Equal(decimal.NewFromInt(100))
	}), suite.caller.UserID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	resp, err := suite.service.ValidateBookkeeping(ctx, dto.ValidateBookkeepingRequest{AutoCorrect: true}, suite.caller)

	suite.Require().NoError(err)
	suite.Require().Len(resp.Issues, 1)
	suite.True(resp.Issues[0].Fixed)
	suite.Contains(resp.Issues[0].FixDescription, "100")
	suite.Equal(1, resp.IssuesFixed)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *ValidationServiceTestSuite) TestValidateBookkeeping_AutoCorrectFailureStillReported() {
	ctx := context.Background()
	txn := suite.postedTxn(100, 100)
	txn.TotalAmount = decimal.NewFromInt(90)

	suite.mockTxnRepo.On("ListTransactions", ctx, mock.Anything).Return([]domain.LedgerTransaction{txn}, int64(1), nil).Once()
	suite.mockTxnRepo.On("CorrectTransactionAmount", ctx, txn.TransactionID, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError).Once()

	resp, err := suite.service.ValidateBookkeeping(ctx, dto.ValidateBookkeepingRequest{AutoCorrect: true}, suite.caller)

	suite.Require().NoError(err)
	suite.Require().Len(resp.Issues, 1)
	suite.False(resp.Issues[0].Fixed)
	suite.Equal(0, resp.IssuesFixed)
	suite.False(resp.BooksValid)
}

func (suite *ValidationServiceTestSuite) TestValidateBookkeeping_ScopedToAccounts() {
	ctx := context.Background()
	inScope := suite.postedTxn(100, 100)
	// Unbalanced, but touches neither scoped account. A scoped run must skip
	// it and must not run the ledger-wide check over a partial entry set.
	outOfScope := suite.postedTxn(50, 40)
	for i := range outOfScope.Entries {
		outOfScope.Entries[i].AccountID = uuid.NewString()
	}
	txns := []domain.LedgerTransaction{inScope, outOfScope}

	suite.mockTxnRepo.On("ListTransactions", ctx, mock.Anything).Return(txns, int64(2), nil).Once()

	resp, err := suite.service.ValidateBookkeeping(ctx, dto.ValidateBookkeepingRequest{
		AccountIDs: []string{suite.cashAccount.AccountID},
	}, suite.caller)

	suite.Require().NoError(err)
	suite.True(resp.BooksValid)
	suite.Equal(int64(1), resp.TransactionsChecked)
	suite.Empty(resp.Issues)
}

func (suite *ValidationServiceTestSuite) TestValidateBookkeeping_ListError() {
	ctx := context.Background()
	suite.mockTxnRepo.On("ListTransactions", ctx, mock.Anything).Return(nil, int64(0), assert.AnError).Once()

	_, err := suite.service.ValidateBookkeeping(ctx, dto.ValidateBookkeepingRequest{}, suite.caller)

	suite.Require().Error(err)
	suite.ErrorIs(err, assert.AnError)
}

// --- ReconcileAccounts ---

func (suite *ValidationServiceTestSuite) TestReconcileAccounts_AllBalanced() {
	ctx := context.Background()
	cash := suite.cashAccount
	cash.CurrentBalance = decimal.NewFromInt(70)

	entries := []domain.JournalEntry{
		{
			EntryID: uuid.NewString(), TransactionID: uuid.NewString(),
			AccountID: cash.AccountID, EntryType: domain.Debit,
			Amount: decimal.NewFromInt(100), CurrencyCode: "USD",
			Status: domain.EntryPosted,
		},
		{
			EntryID: uuid.NewString(), TransactionID: uuid.NewString(),
			AccountID: cash.AccountID, EntryType: domain.Credit,
			Amount: decimal.NewFromInt(30), CurrencyCode: "USD",
			Status: domain.EntryPosted,
		},
	}
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, []string{cash.AccountID}).Return(map[string]domain.Account{cash.AccountID: cash}, nil).Once()
	suite.mockTxnRepo.On("FindEntriesByAccountID", ctx, cash.AccountID, (*time.Time)(nil)).Return(entries, nil).Once()

	resp, err := suite.service.ReconcileAccounts(ctx, dto.ReconcileAccountsRequest{AccountIDs: []string{cash.AccountID}}, suite.caller)

	suite.Require().NoError(err)
	suite.True(resp.AllBalanced)
	suite.Equal(1, resp.AccountsChecked)
	suite.Equal(1, resp.AccountsBalanced)
	suite.Require().Len(resp.Results, 1)
	suite.True(resp.Results[0].ExpectedBalance.Equal(decimal.NewFromInt(70)))
	suite.True(resp.Results[0].Difference.IsZero())
}

func (suite *ValidationServiceTestSuite) TestReconcileAccounts_IgnoresDraftEntries() {
	ctx := context.Background()
	cash := suite.cashAccount
	cash.CurrentBalance = decimal.NewFromInt(100)

	entries := []domain.JournalEntry{
		{
			EntryID: uuid.NewString(), TransactionID: uuid.NewString(),
			AccountID: cash.AccountID, EntryType: domain.Debit,
			Amount: decimal.NewFromInt(100), CurrencyCode: "USD",
			Status: domain.EntryPosted,
		},
		{
			// Draft entries carry no posted balance impact.
			EntryID: uuid.NewString(), TransactionID: uuid.NewString(),
			AccountID: cash.AccountID, EntryType: domain.Debit,
			Amount: decimal.NewFromInt(55), CurrencyCode: "USD",
			Status: domain.EntryDraft,
		},
	}
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).Return(map[string]domain.Account{cash.AccountID: cash}, nil).Once()
	suite.mockTxnRepo.On("FindEntriesByAccountID", ctx, cash.AccountID, (*time.Time)(nil)).Return(entries, nil).Once()

	resp, err := suite.service.ReconcileAccounts(ctx, dto.ReconcileAccountsRequest{AccountIDs: []string{cash.AccountID}}, suite.caller)

	suite.Require().NoError(err)
	suite.True(resp.AllBalanced)
}

func (suite *ValidationServiceTestSuite) TestReconcileAccounts_VarianceDetected() {
	ctx := context.Background()
	mockNotifier := new(MockNotifier)
	service := services.NewValidationService(suite.mockAccountRepo, suite.mockTxnRepo,
		services.WithValidationNotifier(mockNotifier))

	cash := suite.cashAccount
	cash.CurrentBalance = decimal.NewFromInt(75) // Replay will produce 70

	entries := []domain.JournalEntry{
		{
			EntryID: uuid.NewString(), TransactionID: uuid.NewString(),
			AccountID: cash.AccountID, EntryType: domain.Debit,
			Amount: decimal.NewFromInt(70), CurrencyCode: "USD",
			Status: domain.EntryPosted,
		},
	}
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).Return(map[string]domain.Account{cash.AccountID: cash}, nil).Once()
	suite.mockTxnRepo.On("FindEntriesByAccountID", ctx, cash.AccountID, (*time.Time)(nil)).Return(entries, nil).Once()
	mockNotifier.On("Notify", ctx, suite.caller.UserID, portssvc.EventReconciliationVariance, mock.Anything).Once()

	resp, err := service.ReconcileAccounts(ctx, dto.ReconcileAccountsRequest{AccountIDs: []string{cash.AccountID}}, suite.caller)

	suite.Require().NoError(err)
	suite.False(resp.AllBalanced)
	suite.Equal(0, resp.AccountsBalanced)
	suite.Require().Len(resp.Results, 1)
	suite.False(resp.Results[0].Balanced)
	suite.True(resp.Results[0].Difference.Equal(decimal.NewFromInt(5)))
	suite.Require().Len(resp.Results[0].Issues, 1)
	suite.Contains(resp.Results[0].Issues[0], "differs")
	mockNotifier.AssertExpectations(suite.T())
}

func (suite *ValidationServiceTestSuite) TestReconcileAccounts_AutoCorrectNeverRewritesBalances() {
	ctx := context.Background()
	cash := suite.cashAccount
	cash.CurrentBalance = decimal.NewFromInt(75) // Replay will produce 70

	entries := []domain.JournalEntry{
		{
			EntryID: uuid.NewString(), TransactionID: uuid.NewString(),
			AccountID: cash.AccountID, EntryType: domain.Debit,
			Amount: decimal.NewFromInt(70), CurrencyCode: "USD",
			Status: domain.EntryPosted,
		},
	}
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).Return(map[string]domain.Account{cash.AccountID: cash}, nil).Once()
	suite.mockTxnRepo.On("FindEntriesByAccountID", ctx, cash.AccountID, (*time.Time)(nil)).Return(entries, nil).Once()

	resp, err := suite.service.ReconcileAccounts(ctx, dto.ReconcileAccountsRequest{
		AccountIDs:  []string{cash.AccountID},
		AutoCorrect: true,
	}, suite.caller)

	suite.Require().NoError(err)
	suite.False(resp.AllBalanced)
	suite.Require().Len(resp.Results, 1)
	suite.Require().Len(resp.Results[0].Issues, 2)
	suite.Contains(resp.Results[0].Issues[1], "manual correcting entry required")
	// The variance itself is untouched; only a posted correction can clear it.
	suite.True(resp.Results[0].Difference.Equal(decimal.NewFromInt(5)))
}

func (suite *ValidationServiceTestSuite) TestReconcileAccounts_DefaultsToActiveAccounts() {
	ctx := context.Background()
	active := domain.AccountActive
	suite.mockAccountRepo.On("ListAccounts", ctx, mock.MatchedBy(func(filter portsrepo.AccountFilter) bool {
		return filter.Status != nil && *filter.Status == active
	})).Return([]domain.Account{}, int64(0), nil).Once()

	resp, err := suite.service.ReconcileAccounts(ctx, dto.ReconcileAccountsRequest{}, suite.caller)

	suite.Require().NoError(err)
	suite.Equal(0, resp.AccountsChecked)
	suite.True(resp.AllBalanced)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *ValidationServiceTestSuite) TestReconcileAccounts_AccountNotFound() {
	ctx := context.Background()
	unknownID := uuid.NewString()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, []string{unknownID}).Return(map[string]domain.Account{}, nil).Once()

	_, err := suite.service.ReconcileAccounts(ctx, dto.ReconcileAccountsRequest{AccountIDs: []string{unknownID}}, suite.caller)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "FindEntriesByAccountID", mock.Anything, mock.Anything, mock.Anything)
}

// --- Run Test Suite ---

func TestValidationService(t *testing.T) {
	suite.Run(t, new(ValidationServiceTestSuite))
}
