package management

import (
	"context"
	"errors"
	"strings"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/phone"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	msgImportForbidden = "only team leads can import leads"
	msgAssignForbidden = "only team leads can assign leads"
	msgStoreFailed     = "could not store lead"
)

// Import ingests a batch of leads from an external source. Items are
// independent: one failing never affects another. A lead whose phone already
// exists for the same source is reported as a duplicate and left untouched.
func (s *Service) Import(ctx context.Context, actor Actor, req transport.ImportLeadsRequest) (transport.ImportLeadsResponse, error) {
	if !actor.Privileged {
		return transport.ImportLeadsResponse{}, apperr.Forbidden(msgImportForbidden)
	}

	source := strings.TrimSpace(req.Source)
	if source == "" {
		return transport.ImportLeadsResponse{}, apperr.Validation("source is required")
	}

	results := make([]transport.ImportItemResult, len(req.Leads))

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for i, item := range req.Leads {
		i, item := i, item
		g.Go(func() error {
			results[i] = s.importOne(ctx, actor, source, i, item)
			return nil
		})
	}
	_ = g.Wait()

	resp := transport.ImportLeadsResponse{Results: results}
	for _, r := range results {
		switch r.Status {
		case transport.ImportCreated:
			resp.Created++
		case transport.ImportDuplicate:
			resp.Duplicates++
		default:
			resp.Failed++
		}
	}

	s.log.WithContext(ctx).Info("lead import finished",
		"source", source, "created", resp.Created, "duplicates", resp.Duplicates, "failed", resp.Failed)
	return resp, nil
}

func (s *Service) importOne(ctx context.Context, actor Actor, source string, index int, item transport.ImportLeadItem) transport.ImportItemResult {
	result := transport.ImportItemResult{Index: index}

	if err := ctx.Err(); err != nil {
		result.Status = transport.ImportFailed
		result.Error = err.Error()
		return result
	}

	name := strings.TrimSpace(item.ConsumerName)
	normalized := phone.NormalizeE164(item.ConsumerPhone, s.region)
	if name == "" || normalized == "" {
		result.Status = transport.ImportFailed
		result.Error = msgNameAndPhoneRequired
		return result
	}

	lead, err := s.repo.CreateIfAbsent(ctx, repository.CreateLeadParams{
		ConsumerName:  name,
		ConsumerPhone: normalized,
		ConsumerEmail: normalizeEmail(item.ConsumerEmail),
		Source:        source,
		AssignedBOEID: item.AssignedBOEID,
		CreatedByID:   uuidPtr(actor.ID),
	})
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		result.Status = transport.ImportDuplicate
	case err != nil:
		s.log.DatabaseError("import_lead", err)
		result.Status = transport.ImportFailed
		result.Error = msgStoreFailed
	default:
		result.Status = transport.ImportCreated
		result.LeadID = uuidPtr(lead.ID)
		s.publishCreated(ctx, lead, actor.ID)
	}
	return result
}

// BulkAssign gives every listed lead to boeID. Each lead succeeds or fails on
// its own; enrolled and inactive leads are refused.
func (s *Service) BulkAssign(ctx context.Context, actor Actor, req transport.AssignLeadsRequest) (transport.AssignLeadsResponse, error) {
	if !actor.Privileged {
		return transport.AssignLeadsResponse{}, apperr.Forbidden(msgAssignForbidden)
	}

	ids := dedupeIDs(req.LeadIDs)
	results := make([]transport.AssignItemResult, len(ids))

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			results[i] = s.assignOne(ctx, actor, id, req.BOEID)
			return nil
		})
	}
	_ = g.Wait()

	resp := transport.AssignLeadsResponse{Results: results}
	for _, r := range results {
		if r.Assigned {
			resp.Assigned++
		} else {
			resp.Failed++
		}
	}
	return resp, nil
}

func (s *Service) assignOne(ctx context.Context, actor Actor, leadID, boeID uuid.UUID) transport.AssignItemResult {
	result := transport.AssignItemResult{LeadID: leadID}

	unlock, err := s.acquire(ctx, leadID)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer s.release(ctx, leadID, unlock)

	current, err := s.getLead(ctx, leadID)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	if domain.IsEnrolled(domain.Status(current.Status), current.Pipeline) {
		result.Error = domain.ReasonEnrolled
		return result
	}
	if !current.IsActive {
		result.Error = domain.ReasonInactive
		return result
	}

	updated, err := s.repo.AssignBOE(ctx, leadID, boeID, current.Version)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrVersionConflict):
			s.metrics.Conflict()
			result.Error = msgConcurrentUpdate
		case errors.Is(err, repository.ErrNotFound):
			result.Error = msgLeadNotFound
		default:
			s.log.DatabaseError("assign_lead", err)
			result.Error = msgStoreFailed
		}
		return result
	}

	result.Assigned = true
	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadAssigned{
			BaseEvent:     events.NewBaseEventAt(s.clock.Now()),
			LeadID:        updated.ID,
			ActorID:       actor.ID,
			PreviousBOEID: current.AssignedBOEID,
			BOEID:         boeID,
		})
	}
	return result
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
