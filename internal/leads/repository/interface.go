package repository

import (
	"context"
	"time"

	"leadflow_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Lead, error)
	List(ctx context.Context, params ListParams) ([]Lead, int, error)
}

// LeadWriter creates leads.
type LeadWriter interface {
	Create(ctx context.Context, params CreateLeadParams) (Lead, error)
	CreateIfAbsent(ctx context.Context, params CreateLeadParams) (Lead, error)
}

// StatusWriter applies versioned workflow updates.
type StatusWriter interface {
	ApplyStatusUpdate(ctx context.Context, id uuid.UUID, expectedVersion int64, update domain.Update) (Lead, error)
}

// Assigner changes lead ownership.
type Assigner interface {
	AssignBOE(ctx context.Context, id uuid.UUID, boeID uuid.UUID, expectedVersion int64) (Lead, error)
}

// StatusHistoryStore records and reads the audit trail of status changes.
type StatusHistoryStore interface {
	AppendStatusHistory(ctx context.Context, leadID, actorID uuid.UUID, oldStatus, newStatus string) error
	ListStatusHistory(ctx context.Context, leadID uuid.UUID) ([]StatusHistoryEntry, error)
}

// FollowUpReader lists leads whose next contact is due.
type FollowUpReader interface {
	ListDueFollowUps(ctx context.Context, before time.Time, limit int) ([]Lead, error)
}

// LeadsRepository composes every store capability the leads module uses.
type LeadsRepository interface {
	LeadReader
	LeadWriter
	StatusWriter
	Assigner
	StatusHistoryStore
	FollowUpReader
}

var _ LeadsRepository = (*Repository)(nil)
