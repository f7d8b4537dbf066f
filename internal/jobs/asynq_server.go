package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	portssvc "github.com/bankchen1/fo3-ledger-core/internal/core/ports/services"
	"github.com/bankchen1/fo3-ledger-core/internal/dto"
)

// Worker wraps the Asynq server and optional scheduler.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	logger    *slog.Logger
}

// TaskHandler allows injecting custom Asynq handlers during worker setup.
type TaskHandler struct {
	Type    string
	Handler asynq.HandlerFunc
}

// CronRegistration wires a cron expression to a prepared task.
type CronRegistration struct {
	Spec    string
	Task    *asynq.Task
	Options []asynq.Option
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts   asynq.RedisClientOpt
	Concurrency int
	Logger      *slog.Logger
	Processor   *Processor
	Handlers    []TaskHandler
	Cron        []CronRegistration
}

// NewWorker constructs a Worker instance with the ledger task handlers
// registered.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			QueueDefault: 3,
			QueueExports: 1,
		},
	})
	mux := asynq.NewServeMux()
	if cfg.Processor != nil {
		mux.HandleFunc(TaskTypeExport, cfg.Processor.HandleExportTask)
		mux.HandleFunc(TaskTypeValidationRun, cfg.Processor.HandleValidationRunTask)
		mux.HandleFunc(TaskTypeAuditRetry, cfg.Processor.HandleAuditRetryTask)
		mux.HandleFunc(TaskTypePeriodClose, cfg.Processor.HandlePeriodCloseTask)
	}
	for _, h := range cfg.Handlers {
		if h.Type == "" || h.Handler == nil {
			continue
		}
		mux.HandleFunc(h.Type, h.Handler)
	}

	var scheduler *asynq.Scheduler
	if len(cfg.Cron) > 0 {
		scheduler = asynq.NewScheduler(cfg.RedisOpts, &asynq.SchedulerOpts{Location: time.UTC})
		for _, entry := range cfg.Cron {
			if entry.Spec == "" || entry.Task == nil {
				continue
			}
			if _, err := scheduler.Register(entry.Spec, entry.Task, entry.Options...); err != nil {
				return nil, err
			}
		}
	}

	return &Worker{server: srv, mux: mux, scheduler: scheduler, logger: cfg.Logger}, nil
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
	}
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return err
		}
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		return err
	}
}

// Client submits ledger tasks to the queue.
type Client struct {
	client *asynq.Client
}

// Compile-time check that Client satisfies the enqueuer port.
var _ portssvc.BackgroundTaskEnqueuer = (*Client)(nil)

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueExport queues a ledger export on the exports queue and returns
// the task ID and queue name.
func (c *Client) EnqueueExport(ctx context.Context, req dto.ExportRequest, caller domain.CallerContext) (string, string, error) {
	task, err := NewExportTask(ExportPayload{
		Request:       req,
		UserID:        caller.UserID,
		SourceService: caller.SourceService,
	})
	if err != nil {
		return "", "", err
	}
	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueExports),
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute))
	if err != nil {
		return "", "", err
	}
	return info.ID, info.Queue, nil
}

// EnqueueAuditRetry queues a failed audit entry for redelivery.
func (c *Client) EnqueueAuditRetry(ctx context.Context, entry domain.AuditTrailEntry) error {
	task, err := NewAuditRetryTask(AuditRetryPayload{Entry: entry})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(5))
	return err
}

// EnqueueValidationRun queues a background bookkeeping validation.
func (c *Client) EnqueueValidationRun(ctx context.Context, req dto.ValidateBookkeepingRequest) (string, error) {
	task, err := NewValidationRunTask(ValidationRunPayload{Request: req})
	if err != nil {
		return "", err
	}
	info, err := c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
