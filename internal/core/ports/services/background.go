package services

import (
	"context"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	"github.com/bankchen1/fo3-ledger-core/internal/dto"
)

// BackgroundTaskEnqueuer queues work for asynchronous processing by the
// worker binary. Implementations live outside the core.
type BackgroundTaskEnqueuer interface {
	// EnqueueExport queues a ledger export and returns the task ID and queue name.
	EnqueueExport(ctx context.Context, req dto.ExportRequest, caller domain.CallerContext) (taskID string, queue string, err error)

	// EnqueueAuditRetry queues a failed audit entry for redelivery.
	EnqueueAuditRetry(ctx context.Context, entry domain.AuditTrailEntry) error

	// EnqueueValidationRun queues a background bookkeeping validation.
	EnqueueValidationRun(ctx context.Context, req dto.ValidateBookkeepingRequest) (taskID string, err error)
}
