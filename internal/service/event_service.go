package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/radio-schedule-api/internal/models"
	"github.com/noah-isme/radio-schedule-api/pkg/jobs"
)

type eventPublisher interface {
	Publish(ctx context.Context, routingKey, messageID string, payload interface{}) error
}

const eventPublishTimeout = 5 * time.Second

// EventService publishes schedule change notifications asynchronously.
// Publication failures are retried by the job queue and never fail the write that produced them.
type EventService struct {
	publisher eventPublisher
	queue     *jobs.Queue
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewEventService wires a publisher to a retrying job queue. A nil publisher disables events.
func NewEventService(publisher eventPublisher, cfg jobs.QueueConfig, metrics *MetricsService, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &EventService{publisher: publisher, metrics: metrics, logger: logger, now: time.Now}
	if publisher != nil {
		cfg.Logger = logger
		svc.queue = jobs.NewQueue("schedule-events", svc.handle, cfg)
	}
	return svc
}

// Start launches the dispatch workers.
func (s *EventService) Start(ctx context.Context) {
	if s == nil || s.queue == nil {
		return
	}
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *EventService) Stop() {
	if s == nil || s.queue == nil {
		return
	}
	s.queue.Stop()
}

// Emit queues an event for the department and year. data becomes the event body.
func (s *EventService) Emit(routingKey, department, year string, actor models.Actor, data interface{}) {
	if s == nil || s.queue == nil {
		return
	}
	event := models.ScheduleEvent{
		ID:         uuid.NewString(),
		Type:       routingKey,
		Department: department,
		Year:       year,
		ActorID:    actor.UserID,
		OccurredAt: s.now().UTC(),
		Data:       data,
	}
	if err := s.queue.Enqueue(jobs.Job{ID: event.ID, Type: routingKey, Payload: event}); err != nil {
		s.logger.Warn("schedule event dropped", zap.String("routing_key", routingKey), zap.Error(err))
		s.metrics.RecordEventPublish(routingKey, false)
	}
}

func (s *EventService) handle(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(models.ScheduleEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", job.Payload)
	}
	publishCtx, cancel := context.WithTimeout(ctx, eventPublishTimeout)
	defer cancel()
	if err := s.publisher.Publish(publishCtx, job.Type, event.ID, event); err != nil {
		s.metrics.RecordEventPublish(job.Type, false)
		return err
	}
	s.metrics.RecordEventPublish(job.Type, true)
	s.logger.Debug("schedule event published", zap.String("routing_key", job.Type), zap.String("event_id", event.ID))
	return nil
}
