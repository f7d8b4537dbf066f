package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	"github.com/bankchen1/fo3-ledger-core/internal/dto"
)

const (
	// QueueDefault is the queue for validation runs, audit redelivery and
	// period close tasks.
	QueueDefault = "default"
	// QueueExports is a dedicated queue for ledger export tasks, which can
	// run for minutes on large ledgers.
	QueueExports = "exports"

	// TaskTypeExport is the task type for background ledger exports.
	TaskTypeExport = "ledger:export"
	// TaskTypeValidationRun is the task type for bookkeeping validation runs.
	TaskTypeValidationRun = "ledger:validate"
	// TaskTypeAuditRetry is the task type for redelivering audit entries that
	// failed their first write.
	TaskTypeAuditRetry = "ledger:audit_retry"
	// TaskTypePeriodClose is the task type for period close snapshot runs.
	TaskTypePeriodClose = "ledger:period_close"
)

// ExportPayload carries an export request and the caller that submitted it.
type ExportPayload struct {
	Request       dto.ExportRequest `json:"request"`
	UserID        string            `json:"userId"`
	SourceService string            `json:"sourceService"`
}

// NewExportTask constructs an Asynq task for a background ledger export.
func NewExportTask(payload ExportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeExport, data), nil
}

// ValidationRunPayload carries the scope of a bookkeeping validation run.
type ValidationRunPayload struct {
	Request dto.ValidateBookkeepingRequest `json:"request"`
}

// NewValidationRunTask constructs an Asynq task for a validation run.
func NewValidationRunTask(payload ValidationRunPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeValidationRun, data), nil
}

// AuditRetryPayload carries an audit entry whose first write failed.
type AuditRetryPayload struct {
	Entry domain.AuditTrailEntry `json:"entry"`
}

// NewAuditRetryTask constructs an Asynq task that re-records an audit entry.
func NewAuditRetryTask(payload AuditRetryPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAuditRetry, data), nil
}

// PeriodClosePayload carries the parameters of a period close run.
type PeriodClosePayload struct {
	Request dto.PeriodCloseRequest `json:"request"`
}

// NewPeriodCloseTask constructs an Asynq task for a period close run.
func NewPeriodCloseTask(payload PeriodClosePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypePeriodClose, data), nil
}
