package management

import (
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/transport"
)

// ToSnapshot extracts the fields the workflow engine decides on.
func ToSnapshot(lead repository.Lead) domain.Snapshot {
	return domain.Snapshot{
		Status:        domain.Status(lead.Status),
		RetryCount:    lead.RetryCount,
		IsActive:      lead.IsActive,
		AssignedBOEID: lead.AssignedBOEID,
		Pipeline:      lead.Pipeline,
	}
}

func ToLeadResponse(lead repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:             lead.ID,
		ConsumerName:   lead.ConsumerName,
		ConsumerPhone:  lead.ConsumerPhone,
		ConsumerEmail:  lead.ConsumerEmail,
		Source:         lead.Source,
		Status:         lead.Status,
		RetryCount:     lead.RetryCount,
		IsActive:       lead.IsActive,
		Pipeline:       lead.Pipeline,
		NextFollowUpAt: lead.NextFollowUpAt,
		AssignedBOEID:  lead.AssignedBOEID,
		CreatedByID:    lead.CreatedByID,
		Version:        lead.Version,
		CreatedAt:      lead.CreatedAt,
		UpdatedAt:      lead.UpdatedAt,
	}
}

func ToStatusHistoryEntry(entry repository.StatusHistoryEntry) transport.StatusHistoryEntry {
	return transport.StatusHistoryEntry{
		ID:        entry.ID,
		ActorID:   entry.ActorID,
		OldStatus: entry.OldStatus,
		NewStatus: entry.NewStatus,
		CreatedAt: entry.CreatedAt,
	}
}
