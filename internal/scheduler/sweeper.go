package scheduler

import (
	"context"
	"time"

	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/platform/logger"
)

const (
	defaultSweepInterval = time.Minute
	defaultSweepBatch    = 100
)

// FollowUpSweeper periodically enqueues follow-ups that are already due, so
// reminders missed while the scheduler was down still fire.
type FollowUpSweeper struct {
	repo      repository.FollowUpReader
	scheduler FollowUpScheduler
	log       *logger.Logger
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

func NewFollowUpSweeper(repo repository.FollowUpReader, scheduler FollowUpScheduler, interval time.Duration, log *logger.Logger) *FollowUpSweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if log == nil {
		log = logger.Discard()
	}
	return &FollowUpSweeper{
		repo:      repo,
		scheduler: scheduler,
		log:       log,
		interval:  interval,
		batchSize: defaultSweepBatch,
		now:       time.Now,
	}
}

func (s *FollowUpSweeper) Run(ctx context.Context) {
	if s == nil || s.repo == nil || s.scheduler == nil {
		return
	}

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep returns the number of follow-ups enqueued.
func (s *FollowUpSweeper) sweep(ctx context.Context) int {
	leads, err := s.repo.ListDueFollowUps(ctx, s.now(), s.batchSize)
	if err != nil {
		s.log.Error("follow-up sweep: list failed", "error", err)
		return 0
	}

	enqueued := 0
	for _, lead := range leads {
		if lead.NextFollowUpAt == nil {
			continue
		}
		if err := s.scheduler.ScheduleFollowUp(ctx, lead.ID, *lead.NextFollowUpAt); err != nil {
			s.log.Warn("follow-up sweep: enqueue failed", "error", err, "leadId", lead.ID)
			continue
		}
		enqueued++
	}

	if enqueued > 0 {
		s.log.Info("follow-up sweep enqueued due leads", "count", enqueued)
	}
	return enqueued
}
