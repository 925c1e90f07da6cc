package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateLeadRequest struct {
	ConsumerName  string     `json:"consumerName" validate:"required,min=1,max=200"`
	ConsumerPhone string     `json:"consumerPhone" validate:"required,min=5,max=32"`
	ConsumerEmail *string    `json:"consumerEmail,omitempty" validate:"omitempty,email,max=254"`
	Source        string     `json:"source" validate:"omitempty,max=64"`
	AssignedBOEID *uuid.UUID `json:"assignedBoeId,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,leadstatus"`
}

type AssignLeadsRequest struct {
	LeadIDs []uuid.UUID `json:"leadIds" validate:"required,min=1,max=500,dive,required"`
	BOEID   uuid.UUID   `json:"boeId" validate:"required"`
}

// ImportLeadItem is one row of a bulk ingestion batch. The yaml tags let the
// CLI read the same shape from a file.
type ImportLeadItem struct {
	ConsumerName  string     `json:"consumerName" yaml:"name" validate:"required,min=1,max=200"`
	ConsumerPhone string     `json:"consumerPhone" yaml:"phone" validate:"required,min=5,max=32"`
	ConsumerEmail *string    `json:"consumerEmail,omitempty" yaml:"email,omitempty" validate:"omitempty,email,max=254"`
	AssignedBOEID *uuid.UUID `json:"assignedBoeId,omitempty" yaml:"assignedBoeId,omitempty"`
}

type ImportLeadsRequest struct {
	Source string           `json:"source" yaml:"source" validate:"required,min=1,max=64"`
	Leads  []ImportLeadItem `json:"leads" yaml:"leads" validate:"required,min=1,max=1000,dive"`
}

type ListLeadsRequest struct {
	Status        string `form:"status" validate:"omitempty,leadstatus"`
	AssignedBOEID string `form:"assignedBoeId" validate:"omitempty,uuid"`
	Active        *bool  `form:"active"`
	Source        string `form:"source" validate:"max=64"`
	DueOnly       bool   `form:"dueOnly"`
	Search        string `form:"search" validate:"max=100"`
	Page          int    `form:"page" validate:"min=1"`
	PageSize      int    `form:"pageSize" validate:"min=1,max=100"`
	SortBy        string `form:"sortBy" validate:"omitempty,oneof=createdAt updatedAt name status nextFollowUpAt"`
	SortOrder     string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

// Response DTOs

type LeadResponse struct {
	ID             uuid.UUID  `json:"id"`
	ConsumerName   string     `json:"consumerName"`
	ConsumerPhone  string     `json:"consumerPhone"`
	ConsumerEmail  *string    `json:"consumerEmail,omitempty"`
	Source         string     `json:"source"`
	Status         string     `json:"status"`
	RetryCount     int        `json:"retryCount"`
	IsActive       bool       `json:"isActive"`
	Pipeline       string     `json:"pipeline"`
	NextFollowUpAt *time.Time `json:"nextFollowUpAt,omitempty"`
	AssignedBOEID  *uuid.UUID `json:"assignedBoeId,omitempty"`
	CreatedByID    *uuid.UUID `json:"createdById,omitempty"`
	Version        int64      `json:"version"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type StatusListResponse struct {
	Statuses []string `json:"statuses"`
}

type StatusHistoryEntry struct {
	ID        uuid.UUID `json:"id"`
	ActorID   uuid.UUID `json:"actorId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	CreatedAt time.Time `json:"createdAt"`
}

type StatusHistoryResponse struct {
	Items []StatusHistoryEntry `json:"items"`
}

// Outcomes of a single imported item.
const (
	ImportCreated   = "created"
	ImportDuplicate = "duplicate"
	ImportFailed    = "failed"
)

type ImportItemResult struct {
	Index  int        `json:"index"`
	Status string     `json:"status"`
	LeadID *uuid.UUID `json:"leadId,omitempty"`
	Error  string     `json:"error,omitempty"`
}

type ImportLeadsResponse struct {
	Created    int                `json:"created"`
	Duplicates int                `json:"duplicates"`
	Failed     int                `json:"failed"`
	Results    []ImportItemResult `json:"results"`
}

type AssignItemResult struct {
	LeadID   uuid.UUID `json:"leadId"`
	Assigned bool      `json:"assigned"`
	Error    string    `json:"error,omitempty"`
}

type AssignLeadsResponse struct {
	Assigned int                `json:"assigned"`
	Failed   int                `json:"failed"`
	Results  []AssignItemResult `json:"results"`
}
