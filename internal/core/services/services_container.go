package services

import (
	portsrepo "github.com/bankchen1/fo3-ledger-core/internal/core/ports/repositories"
	portssvc "github.com/bankchen1/fo3-ledger-core/internal/core/ports/services"
	"github.com/bankchen1/fo3-ledger-core/internal/platform/cache"
	"github.com/bankchen1/fo3-ledger-core/internal/platform/config"
)

// ContainerOption customises the optional dependencies shared across services.
type ContainerOption func(*containerDeps)

type containerDeps struct {
	notifier    portssvc.LedgerEventNotifier
	enqueuer    portssvc.BackgroundTaskEnqueuer
	reportCache *cache.ReportCache
}

// WithEventNotifier publishes significant ledger events to the given sink.
func WithEventNotifier(notifier portssvc.LedgerEventNotifier) ContainerOption {
	return func(d *containerDeps) {
		d.notifier = notifier
	}
}

// WithTaskEnqueuer enables background processing for exports, audit retries
// and scheduled validation runs.
func WithTaskEnqueuer(enqueuer portssvc.BackgroundTaskEnqueuer) ContainerOption {
	return func(d *containerDeps) {
		d.enqueuer = enqueuer
	}
}

// WithContainerReportCache caches generated reports in Redis.
func WithContainerReportCache(c *cache.ReportCache) ContainerOption {
	return func(d *containerDeps) {
		d.reportCache = c
	}
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, options ...ContainerOption) *portssvc.ServiceContainer {
	deps := containerDeps{}
	for _, opt := range options {
		opt(&deps)
	}

	// Create the container structure first
	container := &portssvc.ServiceContainer{}

	// Initialize the audit service first since every other service records
	// its mutations through it.
	auditOpts := []AuditServiceOption{}
	if deps.enqueuer != nil {
		auditOpts = append(auditOpts, WithAuditRetryEnqueuer(deps.enqueuer))
	}
	container.Audit = NewAuditService(repos.AuditRepo, auditOpts...)

	recorder := portssvc.AuditRecorderSvc(container.Audit)

	container.Account = NewAccountService(
		repos.AccountRepo,
		repos.TransactionRepo,
		WithAccountAuditRecorder(recorder),
	)

	txnOpts := []TransactionServiceOption{WithTransactionAuditRecorder(recorder)}
	if deps.notifier != nil {
		txnOpts = append(txnOpts, WithTransactionNotifier(deps.notifier))
	}
	if deps.reportCache != nil {
		txnOpts = append(txnOpts, WithTransactionReportCache(deps.reportCache))
	}
	container.Transaction = NewTransactionService(
		repos.TransactionRepo,
		repos.AccountRepo,
		txnOpts...,
	)

	valOpts := []ValidationServiceOption{WithValidationAuditRecorder(recorder)}
	if deps.notifier != nil {
		valOpts = append(valOpts, WithValidationNotifier(deps.notifier))
	}
	container.Validation = NewValidationService(
		repos.AccountRepo,
		repos.TransactionRepo,
		valOpts...,
	)

	// Reporting reuses the validation service for pre-close integrity checks.
	reportingOpts := []ReportingServiceOption{
		WithReportingAuditRecorder(recorder),
		WithReportingAuditReader(repos.AuditRepo),
		WithReportingValidator(container.Validation),
	}
	if deps.notifier != nil {
		reportingOpts = append(reportingOpts, WithReportingNotifier(deps.notifier))
	}
	if deps.reportCache != nil {
		reportingOpts = append(reportingOpts, WithReportCache(deps.reportCache))
	}
	container.Reporting = NewReportingService(
		repos.ReportingRepo,
		repos.AccountRepo,
		repos.TransactionRepo,
		repos.SnapshotRepo,
		reportingOpts...,
	)

	exportOpts := []ExportServiceOption{
		WithExportAuditRecorder(recorder),
		WithExportAuditReader(repos.AuditRepo),
	}
	if deps.notifier != nil {
		exportOpts = append(exportOpts, WithExportNotifier(deps.notifier))
	}
	if deps.enqueuer != nil {
		exportOpts = append(exportOpts, WithExportEnqueuer(deps.enqueuer))
	}
	container.Export = NewExportService(repos.TransactionRepo, repos.AccountRepo, cfg.ExportDir, exportOpts...)

	return container
}
