package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskLeadFollowUpDue = "leads.followup.due"

type LeadFollowUpPayload struct {
	LeadID string    `json:"leadId"`
	DueAt  time.Time `json:"dueAt"`
}

func NewLeadFollowUpTask(payload LeadFollowUpPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadFollowUpDue, data), nil
}

func ParseLeadFollowUpPayload(task *asynq.Task) (LeadFollowUpPayload, error) {
	var payload LeadFollowUpPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadFollowUpPayload{}, err
	}
	return payload, nil
}

// followUpTaskID identifies one follow-up occurrence so re-enqueueing the same
// lead and due time is a no-op.
func followUpTaskID(leadID string, dueAt time.Time) string {
	return "followup:" + leadID + ":" + dueAt.UTC().Format(time.RFC3339)
}
