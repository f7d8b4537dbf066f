package repositories

import (
	"context"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
)

// AuditWriter appends to the audit trail. There is deliberately no update or
// delete operation: entries are immutable once written.
type AuditWriter interface {
	// SaveAuditEntry appends a single immutable entry.
	SaveAuditEntry(ctx context.Context, entry domain.AuditTrailEntry) error
}

// AuditReader defines read operations over the audit trail.
type AuditReader interface {
	// ListAuditEntries retrieves a filtered, paginated slice of the trail,
	// newest first, with the total matching count.
	ListAuditEntries(ctx context.Context, filter AuditTrailFilter) ([]domain.AuditTrailEntry, int64, error)
}

// AuditRepositoryFacade combines the audit trail interfaces.
type AuditRepositoryFacade interface {
	AuditWriter
	AuditReader
}
