package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/aicte-approval-api/internal/models"
	"github.com/noah-isme/aicte-approval-api/pkg/jobs"
)

type dashboardInvalidator interface {
	Invalidate(ctx context.Context, institutionID string) error
}

// WorkflowEventDispatcher handles committed workflow events on a background
// queue. Today that means dropping stale cached dashboards.
type WorkflowEventDispatcher struct {
	queue       *jobs.Queue
	invalidator dashboardInvalidator
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewWorkflowEventDispatcher builds the dispatcher and its worker queue.
func NewWorkflowEventDispatcher(invalidator dashboardInvalidator, metrics *MetricsService, logger *zap.Logger, cfg jobs.QueueConfig) *WorkflowEventDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.Logger = logger
	d := &WorkflowEventDispatcher{invalidator: invalidator, metrics: metrics, logger: logger}
	d.queue = jobs.NewQueue("workflow-events", d.handle, cfg)
	return d
}

// Start launches the workers.
func (d *WorkflowEventDispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Drain waits for queued events to be handled.
func (d *WorkflowEventDispatcher) Drain(ctx context.Context) error {
	return d.queue.Drain(ctx)
}

// Stop halts the workers.
func (d *WorkflowEventDispatcher) Stop() {
	d.queue.Stop()
}

// Publish queues the event. Failures are logged and counted, never returned,
// because the change it describes is already committed.
func (d *WorkflowEventDispatcher) Publish(_ context.Context, event models.WorkflowEvent) {
	job := jobs.Job{ID: uuid.NewString(), Type: string(event.Type), Payload: event}
	if err := d.queue.Enqueue(job); err != nil {
		d.metrics.RecordEventDropped()
		d.logger.Warn("workflow event dropped",
			zap.String("type", string(event.Type)),
			zap.String("application_id", event.ApplicationID),
			zap.Error(err))
	}
}

func (d *WorkflowEventDispatcher) handle(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(models.WorkflowEvent)
	if !ok {
		return fmt.Errorf("unexpected payload %T", job.Payload)
	}
	d.logger.Debug("workflow event",
		zap.String("type", string(event.Type)),
		zap.String("application_id", event.ApplicationID),
		zap.String("status", string(event.Status)),
		zap.Int("attempt", job.Attempt))
	if d.invalidator == nil {
		return nil
	}
	return d.invalidator.Invalidate(ctx, event.InstitutionID)
}
