package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	portsrepo "github.com/bankchen1/fo3-ledger-core/internal/core/ports/repositories"
	portssvc "github.com/bankchen1/fo3-ledger-core/internal/core/ports/services"
	"github.com/bankchen1/fo3-ledger-core/internal/dto"
	"github.com/bankchen1/fo3-ledger-core/internal/utils/pagination"
	"github.com/google/uuid"
)

// auditService implements the AuditSvcFacade interface
type auditService struct {
	BaseService
	auditRepo     portsrepo.AuditRepositoryFacade
	retryEnqueuer portssvc.BackgroundTaskEnqueuer
}

// AuditServiceOption is a functional option for configuring the audit service
type AuditServiceOption func(*auditService)

// WithAuditAuthorizer sets the ledger authorizer for the audit service
func WithAuditAuthorizer(authorizer portssvc.LedgerAuthorizerSvc) AuditServiceOption {
	return func(s *auditService) {
		s.Authorizer = authorizer
	}
}

// WithAuditRetryEnqueuer sets the queue used to redeliver failed audit writes
func WithAuditRetryEnqueuer(enqueuer portssvc.BackgroundTaskEnqueuer) AuditServiceOption {
	return func(s *auditService) {
		s.retryEnqueuer = enqueuer
	}
}

// NewAuditService creates a new audit service with the provided options
func NewAuditService(repo portsrepo.AuditRepositoryFacade, options ...AuditServiceOption) portssvc.AuditSvcFacade {
	svc := &auditService{
		auditRepo: repo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure auditService implements the AuditSvcFacade interface
var _ portssvc.AuditSvcFacade = (*auditService)(nil)

// RecordAction appends an audit entry. Audit writes never mutate existing
// records; a failed write is handed to the retry queue when one is configured.
func (s *auditService) RecordAction(ctx context.Context, entry domain.AuditTrailEntry) error {
	if entry.AuditID == "" {
		entry.AuditID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	if err := s.auditRepo.SaveAuditEntry(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to save audit entry",
			slog.String("audit_id", entry.AuditID),
			slog.String("action", entry.Action))
		if s.retryEnqueuer != nil {
			if enqErr := s.retryEnqueuer.EnqueueAuditRetry(ctx, entry); enqErr != nil {
				s.LogError(ctx, enqErr, "Failed to enqueue audit entry for retry",
					slog.String("audit_id", entry.AuditID))
				return err
			}
			s.LogInfo(ctx, "Audit entry queued for redelivery", slog.String("audit_id", entry.AuditID))
			return nil
		}
		return err
	}
	return nil
}

// GetAuditTrail retrieves a filtered page of audit entries, newest first.
func (s *auditService) GetAuditTrail(ctx context.Context, params dto.AuditTrailParams, caller domain.CallerContext) (*dto.AuditTrailResponse, error) {
	if err := s.AuthorizeAction(ctx, caller, portssvc.ActionViewAuditTrail); err != nil {
		s.LogWarn(ctx, "Caller not authorized to view audit trail", slog.String("user_id", caller.UserID))
		return nil, err
	}

	page, pageSize := pagination.Normalize(params.Page, params.PageSize)
	filter := portsrepo.AuditTrailFilter{
		TransactionID: params.TransactionID,
		AccountID:     params.AccountID,
		UserID:        params.UserID,
		Action:        params.Action,
		StartDate:     params.StartDate,
		EndDate:       params.EndDate,
		Page:          page,
		PageSize:      pageSize,
	}

	entries, total, err := s.auditRepo.ListAuditEntries(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list audit entries")
		return nil, fmt.Errorf("failed to retrieve audit trail: %w", err)
	}

	resp := dto.ToAuditTrailResponse(entries, total, page, pageSize)
	s.LogDebug(ctx, "Audit trail retrieved", slog.Int("count", len(entries)), slog.Int64("total", total))
	return &resp, nil
}
