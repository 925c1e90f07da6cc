// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"leadflow_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewBaseEventAt = events.NewBaseEventAt
)

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCreated is published when a lead is entered directly or imported.
type LeadCreated struct {
	BaseEvent
	LeadID        uuid.UUID  `json:"leadId"`
	Source        string     `json:"source"`
	AssignedBOEID *uuid.UUID `json:"assignedBoeId,omitempty"`
	CreatedByID   uuid.UUID  `json:"createdById"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStatusChanged is published after a status transition is persisted.
// NextFollowUpAt is nil when the lead has no pending follow-up.
type LeadStatusChanged struct {
	BaseEvent
	LeadID         uuid.UUID  `json:"leadId"`
	ActorID        uuid.UUID  `json:"actorId"`
	OldStatus      string     `json:"oldStatus"`
	NewStatus      string     `json:"newStatus"`
	RetryCount     int        `json:"retryCount"`
	IsActive       bool       `json:"isActive"`
	Pipeline       string     `json:"pipeline"`
	NextFollowUpAt *time.Time `json:"nextFollowUpAt,omitempty"`
}

func (e LeadStatusChanged) EventName() string { return "leads.lead.status_changed" }

// LeadAssigned is published when a lead gets a new business-development owner.
type LeadAssigned struct {
	BaseEvent
	LeadID        uuid.UUID  `json:"leadId"`
	ActorID       uuid.UUID  `json:"actorId"`
	PreviousBOEID *uuid.UUID `json:"previousBoeId,omitempty"`
	BOEID         uuid.UUID  `json:"boeId"`
}

func (e LeadAssigned) EventName() string { return "leads.lead.assigned" }

// LeadFollowUpDue is published when a scheduled follow-up comes due on a lead
// that is still active and still expects it.
type LeadFollowUpDue struct {
	BaseEvent
	LeadID        uuid.UUID  `json:"leadId"`
	Status        string     `json:"status"`
	AssignedBOEID *uuid.UUID `json:"assignedBoeId,omitempty"`
	DueAt         time.Time  `json:"dueAt"`
}

func (e LeadFollowUpDue) EventName() string { return "leads.lead.followup_due" }
