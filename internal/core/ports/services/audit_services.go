package services

import (
	"context"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	"github.com/bankchen1/fo3-ledger-core/internal/dto"
)

// AuditRecorderSvc defines the write side of the audit trail.
// Entries are immutable once recorded; there is no update or delete.
type AuditRecorderSvc interface {
	// RecordAction appends an audit entry describing a state change.
	RecordAction(ctx context.Context, entry domain.AuditTrailEntry) error
}

// AuditReaderSvc defines read operations over the audit trail
type AuditReaderSvc interface {
	// GetAuditTrail retrieves a filtered page of audit entries, newest first.
	GetAuditTrail(ctx context.Context, params dto.AuditTrailParams, caller domain.CallerContext) (*dto.AuditTrailResponse, error)
}

// AuditSvcFacade combines audit recording and reading
type AuditSvcFacade interface {
	AuditRecorderSvc
	AuditReaderSvc
}
