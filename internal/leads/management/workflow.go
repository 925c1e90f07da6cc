package management

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/internal/lock"
	"leadflow_backend/platform/apperr"

	"github.com/google/uuid"
)

// Outcome labels for the status change duration histogram.
const (
	outcomeAccepted = "accepted"
	outcomeRejected = "rejected"
	outcomeConflict = "conflict"
	outcomeError    = "error"
)

const msgConcurrentUpdate = "lead was modified by someone else, reload and retry"

// ChangeStatus moves a lead to requested on behalf of actor. The read, rule
// check and versioned write run under a per-lead lock so two agents cannot
// both act on the same snapshot.
func (s *Service) ChangeStatus(ctx context.Context, leadID uuid.UUID, actor Actor, requested string) (transport.LeadResponse, error) {
	started := time.Now()

	lead, outcome, err := s.changeStatus(ctx, leadID, actor, requested)
	s.metrics.ObserveChange(outcome, time.Since(started))
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return ToLeadResponse(lead), nil
}

func (s *Service) changeStatus(ctx context.Context, leadID uuid.UUID, actor Actor, requested string) (repository.Lead, string, error) {
	target, err := domain.ParseStatus(requested)
	if err != nil {
		return repository.Lead{}, outcomeRejected, apperr.Wrap(apperr.KindValidation, fmt.Sprintf("unknown status %q", requested), err).
			WithDetails(map[string]interface{}{"allowed": domain.StatusStrings()})
	}

	unlock, err := s.acquire(ctx, leadID)
	if err != nil {
		return repository.Lead{}, outcomeConflict, err
	}
	defer s.release(ctx, leadID, unlock)

	current, err := s.getLead(ctx, leadID)
	if err != nil {
		return repository.Lead{}, outcomeError, err
	}

	if domain.IsEnrolled(domain.Status(current.Status), current.Pipeline) {
		return repository.Lead{}, outcomeRejected, s.rejectTransition(ctx, current, actor, target,
			domain.Decision{Code: domain.CodeEnrolled, Reason: domain.ReasonEnrolled})
	}

	snapshot := ToSnapshot(current)
	decision, err := s.engine.ValidateTransition(snapshot, target, actor.Privileged)
	if err != nil {
		return repository.Lead{}, outcomeError, err
	}
	if !decision.Allowed {
		return repository.Lead{}, outcomeRejected, s.rejectTransition(ctx, current, actor, target, decision)
	}

	update, err := s.engine.ComputeUpdates(snapshot, target)
	if err != nil {
		return repository.Lead{}, outcomeError, err
	}

	updated, err := s.repo.ApplyStatusUpdate(ctx, leadID, current.Version, update)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrVersionConflict):
			s.metrics.Conflict()
			return repository.Lead{}, outcomeConflict, apperr.RetryableConflict(msgConcurrentUpdate)
		case errors.Is(err, repository.ErrNotFound):
			return repository.Lead{}, outcomeError, apperr.NotFound(msgLeadNotFound)
		default:
			s.log.DatabaseError("apply_status_update", err)
			return repository.Lead{}, outcomeError, err
		}
	}

	if err := s.repo.AppendStatusHistory(ctx, leadID, actor.ID, current.Status, updated.Status); err != nil {
		s.log.WithContext(ctx).Error("failed to record status history",
			"error", err, "leadId", leadID, "from", current.Status, "to", updated.Status)
	}

	s.metrics.Transition(current.Status, updated.Status)
	s.log.WithContext(ctx).LeadTransition(leadID.String(), actor.ID.String(), current.Status, updated.Status, true, "")
	s.publishStatusChanged(ctx, current, updated, actor.ID)

	return updated, outcomeAccepted, nil
}

func (s *Service) rejectTransition(ctx context.Context, lead repository.Lead, actor Actor, target domain.Status, decision domain.Decision) error {
	s.metrics.Rejection(decision.Code)
	s.log.WithContext(ctx).LeadTransition(lead.ID.String(), actor.ID.String(), lead.Status, string(target), false, decision.Reason)
	return apperr.Unprocessable(decision.Reason).WithDetails(map[string]interface{}{
		"code":          decision.Code,
		"currentStatus": lead.Status,
	})
}

// acquire takes the per-lead lock, waiting no longer than the lock lifetime.
func (s *Service) acquire(ctx context.Context, leadID uuid.UUID) (lock.UnlockFunc, error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTTL)
	defer cancel()

	unlock, err := s.locker.Lock(lockCtx, lock.LeadKey(leadID.String()), s.lockTTL)
	if err == nil {
		return unlock, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		s.metrics.Conflict()
		return nil, apperr.RetryableConflict("lead is being updated, retry shortly")
	}
	return nil, apperr.Wrap(apperr.KindInternal, "could not lock lead", err)
}

func (s *Service) release(ctx context.Context, leadID uuid.UUID, unlock lock.UnlockFunc) {
	if err := unlock(context.WithoutCancel(ctx)); err != nil {
		s.log.Warn("failed to release lead lock", "error", err, "leadId", leadID)
	}
}

func (s *Service) publishStatusChanged(ctx context.Context, before, after repository.Lead, actorID uuid.UUID) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent:      events.NewBaseEventAt(s.clock.Now()),
		LeadID:         after.ID,
		ActorID:        actorID,
		OldStatus:      before.Status,
		NewStatus:      after.Status,
		RetryCount:     after.RetryCount,
		IsActive:       after.IsActive,
		Pipeline:       after.Pipeline,
		NextFollowUpAt: after.NextFollowUpAt,
	})
}
