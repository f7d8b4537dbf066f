package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/bankchen1/fo3-ledger-core/internal/apperrors"
	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	portssvc "github.com/bankchen1/fo3-ledger-core/internal/core/ports/services"
)

// workerService is the source service name stamped on audit entries written
// by background tasks.
const workerService = "ledger-worker"

// Processor executes queued ledger tasks against the service layer.
type Processor struct {
	services *portssvc.ServiceContainer
	logger   *slog.Logger
}

// NewProcessor constructs a Processor around the shared service container.
func NewProcessor(services *portssvc.ServiceContainer, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{services: services, logger: logger}
}

// HandleExportTask processes TaskTypeExport tasks by running the export
// synchronously inside the worker.
func (p *Processor) HandleExportTask(ctx context.Context, t *asynq.Task) error {
	var payload ExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		p.logger.Error("Export task payload is malformed", slog.Any("error", err))
		return asynq.SkipRetry
	}

	caller := domain.SystemCaller(workerService)
	if payload.UserID != "" {
		caller.UserID = payload.UserID
	}
	if payload.SourceService != "" {
		caller.SourceService = payload.SourceService
	}

	// The request already passed through the queue; run it inline.
	payload.Request.Async = false

	resp, err := p.services.Export.ExportLedgerData(ctx, payload.Request, caller)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			p.logger.Error("Export task rejected as invalid", slog.String("format", payload.Request.Format), slog.Any("error", err))
			return asynq.SkipRetry
		}
		return err
	}

	p.logger.Info("Export task completed",
		slog.String("fileName", resp.FileName),
		slog.String("format", resp.Format),
		slog.Int64("recordCount", resp.RecordCount))
	return nil
}

// HandleValidationRunTask processes TaskTypeValidationRun tasks.
func (p *Processor) HandleValidationRunTask(ctx context.Context, t *asynq.Task) error {
	var payload ValidationRunPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		p.logger.Error("Validation task payload is malformed", slog.Any("error", err))
		return asynq.SkipRetry
	}

	resp, err := p.services.Validation.ValidateBookkeeping(ctx, payload.Request, domain.SystemCaller(workerService))
	if err != nil {
		return err
	}

	if !resp.BooksValid {
		p.logger.Warn("Scheduled validation found integrity issues",
			slog.Int("issuesFound", resp.IssuesFound),
			slog.Int("issuesFixed", resp.IssuesFixed),
			slog.Int64("transactionsChecked", resp.TransactionsChecked))
		return nil
	}

	p.logger.Info("Scheduled validation passed", slog.Int64("transactionsChecked", resp.TransactionsChecked))
	return nil
}

// HandleAuditRetryTask processes TaskTypeAuditRetry tasks. Retries stay on
// the queue until the audit store accepts the entry.
func (p *Processor) HandleAuditRetryTask(ctx context.Context, t *asynq.Task) error {
	var payload AuditRetryPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		p.logger.Error("Audit retry payload is malformed", slog.Any("error", err))
		return asynq.SkipRetry
	}
	if payload.Entry.AuditID == "" {
		return asynq.SkipRetry
	}
	return p.services.Audit.RecordAction(ctx, payload.Entry)
}

// HandlePeriodCloseTask processes TaskTypePeriodClose tasks. Scheduled
// payloads are static, so a zero period end means "previous calendar month"
// and is resolved when the task runs.
func (p *Processor) HandlePeriodCloseTask(ctx context.Context, t *asynq.Task) error {
	var payload PeriodClosePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		p.logger.Error("Period close payload is malformed", slog.Any("error", err))
		return asynq.SkipRetry
	}
	if payload.Request.PeriodEnd.IsZero() {
		now := time.Now().UTC()
		payload.Request.PeriodEnd = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		if payload.Request.CloseType == "" {
			payload.Request.CloseType = "month"
		}
	}

	result, err := p.services.Reporting.PerformPeriodClose(ctx, payload.Request, domain.SystemCaller(workerService))
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			p.logger.Error("Period close task rejected as invalid", slog.Any("error", err))
			return asynq.SkipRetry
		}
		return err
	}

	p.logger.Info("Period close completed",
		slog.String("closeType", result.CloseType),
		slog.Time("periodEnd", result.PeriodEnd),
		slog.Int64("accountsProcessed", result.AccountsProcessed),
		slog.Int64("snapshotsCreated", result.SnapshotsCreated),
		slog.Int("issuesFound", result.IssuesFound))
	return nil
}
