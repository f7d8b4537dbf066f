package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bankchen1/fo3-ledger-core/internal/apperrors"
	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	portsrepo "github.com/bankchen1/fo3-ledger-core/internal/core/ports/repositories"
	portssvc "github.com/bankchen1/fo3-ledger-core/internal/core/ports/services"
	"github.com/bankchen1/fo3-ledger-core/internal/core/services"
	"github.com/bankchen1/fo3-ledger-core/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite Setup ---

type AuditServiceTestSuite struct {
	suite.Suite
	mockAuditRepo *MockAuditRepository
	service       portssvc.AuditSvcFacade
	caller        domain.CallerContext
}

func (suite *AuditServiceTestSuite) SetupTest() {
	suite.mockAuditRepo = new(MockAuditRepository)
	suite.service = services.NewAuditService(suite.mockAuditRepo)
	suite.caller = domain.CallerContext{UserID: uuid.NewString()}
}

// --- RecordAction ---

func (suite *AuditServiceTestSuite) TestRecordAction_FillsDefaults() {
	ctx := context.Background()
	entry := domain.AuditTrailEntry{
		Action: domain.AuditTransactionRecorded,
		UserID: suite.caller.UserID,
	}

	suite.mockAuditRepo.On("SaveAuditEntry", ctx, mock.MatchedBy(func(saved domain.AuditTrailEntry) bool {
		return saved.AuditID != "" && !saved.Timestamp.IsZero() && saved.Action == domain.AuditTransactionRecorded
	})).Return(nil).Once()

	err := suite.service.RecordAction(ctx, entry)

	suite.Require().NoError(err)
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *AuditServiceTestSuite) TestRecordAction_KeepsProvidedIdentity() {
	ctx := context.Background()
	timestamp := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	entry := domain.AuditTrailEntry{
		AuditID:   uuid.NewString(),
		Action:    domain.AuditAccountCreated,
		UserID:    suite.caller.UserID,
		Timestamp: timestamp,
	}

	suite.mockAuditRepo.On("SaveAuditEntry", ctx, entry).Return(nil).Once()

	err := suite.service.RecordAction(ctx, entry)

	suite.Require().NoError(err)
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *AuditServiceTestSuite) TestRecordAction_SaveFailureWithoutRetryQueue() {
	ctx := context.Background()
	suite.mockAuditRepo.On("SaveAuditEntry", ctx, mock.Anything).Return(assert.AnError).Once()

	err := suite.service.RecordAction(ctx, domain.AuditTrailEntry{Action: domain.AuditAccountUpdated})

	suite.Require().Error(err)
	suite.ErrorIs(err, assert.AnError)
}

func (suite *AuditServiceTestSuite) TestRecordAction_SaveFailureQueuedForRedelivery() {
	ctx := context.Background()
	mockEnqueuer := new(MockEnqueuer)
	service := services.NewAuditService(suite.mockAuditRepo, services.WithAuditRetryEnqueuer(mockEnqueuer))

	suite.mockAuditRepo.On("SaveAuditEntry", ctx, mock.Anything).Return(assert.AnError).Once()
	mockEnqueuer.On("EnqueueAuditRetry", ctx, mock.MatchedBy(func(entry domain.AuditTrailEntry) bool {
		return entry.AuditID != "" && entry.Action == domain.AuditTransactionPosted
	})).Return(nil).Once()

	err := service.RecordAction(ctx, domain.AuditTrailEntry{Action: domain.AuditTransactionPosted})

	suite.Require().NoError(err)
	mockEnqueuer.AssertExpectations(suite.T())
}

func (suite *AuditServiceTestSuite) TestRecordAction_RedeliveryFailureReturnsSaveError() {
	ctx := context.Background()
	mockEnqueuer := new(MockEnqueuer)
	service := services.NewAuditService(suite.mockAuditRepo, services.WithAuditRetryEnqueuer(mockEnqueuer))

	suite.mockAuditRepo.On("SaveAuditEntry", ctx, mock.Anything).Return(assert.AnError).Once()
	mockEnqueuer.On("EnqueueAuditRetry", ctx, mock.Anything).Return(fmt.Errorf("queue unavailable")).Once()

	err := service.RecordAction(ctx, domain.AuditTrailEntry{Action: domain.AuditTransactionReversed})

	suite.Require().Error(err)
	suite.ErrorIs(err, assert.AnError)
}

// --- GetAuditTrail ---

func (suite *AuditServiceTestSuite) TestGetAuditTrail_Success() {
	ctx := context.Background()
	action := domain.AuditTransactionPosted
	entries := []domain.AuditTrailEntry{
		{AuditID: uuid.NewString(), Action: action, UserID: suite.caller.UserID, Timestamp: time.Now().UTC()},
	}

	suite.mockAuditRepo.On("ListAuditEntries", ctx, mock.MatchedBy(func(filter portsrepo.AuditTrailFilter) bool {
		return filter.Page == 1 && filter.PageSize == 20 && filter.Action != nil && *filter.Action == action
	})).Return(entries, int64(1), nil).Once()

	resp, err := suite.service.GetAuditTrail(ctx, dto.AuditTrailParams{Action: &action}, suite.caller)

	suite.Require().NoError(err)
	suite.Require().NotNil(resp)
	suite.Equal(int64(1), resp.TotalCount)
	suite.Equal(1, resp.Page)
	suite.Equal(20, resp.PageSize)
	suite.Require().Len(resp.Entries, 1)
	suite.Equal(entries[0].AuditID, resp.Entries[0].AuditID)
	suite.Equal(action, resp.Entries[0].Action)
}

func (suite *AuditServiceTestSuite) TestGetAuditTrail_NormalizesPagination() {
	ctx := context.Background()
	suite.mockAuditRepo.On("ListAuditEntries", ctx, mock.MatchedBy(func(filter portsrepo.AuditTrailFilter) bool {
		return filter.Page == 1 && filter.PageSize == 20
	})).Return([]domain.AuditTrailEntry{}, int64(0), nil).Once()

	resp, err := suite.service.GetAuditTrail(ctx, dto.AuditTrailParams{Page: -3, PageSize: 0}, suite.caller)

	suite.Require().NoError(err)
	suite.Equal(1, resp.Page)
	suite.Equal(20, resp.PageSize)
}

func (suite *AuditServiceTestSuite) TestGetAuditTrail_AuthorizationFail() {
	ctx := context.Background()
	mockAuthorizer := new(MockAuthorizer)
	service := services.NewAuditService(suite.mockAuditRepo, services.WithAuditAuthorizer(mockAuthorizer))

	mockAuthorizer.On("AuthorizeLedgerAction", ctx, suite.caller, portssvc.ActionViewAuditTrail).
		Return(fmt.Errorf("%w: audit trail access denied", apperrors.ErrForbidden)).Once()

	_, err := service.GetAuditTrail(ctx, dto.AuditTrailParams{}, suite.caller)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockAuditRepo.AssertNotCalled(suite.T(), "ListAuditEntries", mock.Anything, mock.Anything)
}

func (suite *AuditServiceTestSuite) TestGetAuditTrail_RepositoryError() {
	ctx := context.Background()
	suite.mockAuditRepo.On("ListAuditEntries", ctx, mock.Anything).Return(nil, int64(0), assert.AnError).Once()

	_, err := suite.service.GetAuditTrail(ctx, dto.AuditTrailParams{}, suite.caller)

	suite.Require().Error(err)
	suite.ErrorIs(err, assert.AnError)
}

// --- Run Test Suite ---

func TestAuditService(t *testing.T) {
	suite.Run(t, new(AuditServiceTestSuite))
}
