package scheduler

import (
	"context"
	"errors"
	"time"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

// LeadGetter reads the current state of a lead.
type LeadGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
}

// FollowUpSubscriber enqueues a follow-up task whenever a status change leaves
// an active lead with a pending follow-up.
type FollowUpSubscriber struct {
	scheduler FollowUpScheduler
	log       *logger.Logger
}

func NewFollowUpSubscriber(scheduler FollowUpScheduler, log *logger.Logger) *FollowUpSubscriber {
	if log == nil {
		log = logger.Discard()
	}
	return &FollowUpSubscriber{scheduler: scheduler, log: log}
}

// RegisterHandlers subscribes to lead status changes.
func (s *FollowUpSubscriber) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadStatusChanged{}.EventName(), s)
}

// Handle routes events to the appropriate handler method.
func (s *FollowUpSubscriber) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadStatusChanged:
		return s.handleStatusChanged(ctx, e)
	default:
		return nil
	}
}

func (s *FollowUpSubscriber) handleStatusChanged(ctx context.Context, e events.LeadStatusChanged) error {
	if s.scheduler == nil || !e.IsActive || e.NextFollowUpAt == nil {
		return nil
	}
	if err := s.scheduler.ScheduleFollowUp(ctx, e.LeadID, *e.NextFollowUpAt); err != nil {
		s.log.Error("failed to schedule lead follow-up", "error", err, "leadId", e.LeadID, "dueAt", *e.NextFollowUpAt)
		return err
	}
	return nil
}

// FollowUpProcessor turns a due follow-up task into a LeadFollowUpDue event,
// provided the lead still expects that follow-up.
type FollowUpProcessor struct {
	repo LeadGetter
	bus  events.Bus
	log  *logger.Logger
}

func NewFollowUpProcessor(repo LeadGetter, bus events.Bus, log *logger.Logger) *FollowUpProcessor {
	if log == nil {
		log = logger.Discard()
	}
	return &FollowUpProcessor{repo: repo, bus: bus, log: log}
}

// Process returns nil for stale tasks so asynq does not retry them.
func (p *FollowUpProcessor) Process(ctx context.Context, payload LeadFollowUpPayload) error {
	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	lead, err := p.repo.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			p.log.Warn("follow-up for missing lead dropped", "leadId", leadID)
			return nil
		}
		return err
	}

	if !followUpStillDue(lead, payload.DueAt) {
		p.log.Debug("stale follow-up skipped", "leadId", leadID, "dueAt", payload.DueAt, "status", lead.Status)
		return nil
	}

	p.log.Info("lead follow-up due",
		"leadId", leadID,
		"status", lead.Status,
		"retryCount", lead.RetryCount,
		"dueAt", payload.DueAt,
	)

	if p.bus == nil {
		return nil
	}
	return p.bus.PublishSync(ctx, events.LeadFollowUpDue{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        lead.ID,
		Status:        lead.Status,
		AssignedBOEID: lead.AssignedBOEID,
		DueAt:         payload.DueAt,
	})
}

func followUpStillDue(lead repository.Lead, dueAt time.Time) bool {
	if !lead.IsActive || lead.NextFollowUpAt == nil {
		return false
	}
	return lead.NextFollowUpAt.Equal(dueAt)
}
