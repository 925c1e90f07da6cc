package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadflow_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type StatusHistoryEntry struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	ActorID   uuid.UUID
	OldStatus string
	NewStatus string
	CreatedAt time.Time
}

const appendStatusHistoryQuery = `
	INSERT INTO lead_status_history (lead_id, actor_id, old_status, new_status)
	VALUES ($1, $2, $3, $4)`

const listStatusHistoryQuery = `
	SELECT id, lead_id, actor_id, old_status, new_status, created_at
	FROM lead_status_history
	WHERE lead_id = $1
	ORDER BY created_at ASC, id ASC`

// ApplyStatusUpdate writes update to the lead if it is still at
// expectedVersion and returns the stored row.
func (r *Repository) ApplyStatusUpdate(ctx context.Context, id uuid.UUID, expectedVersion int64, update domain.Update) (Lead, error) {
	query, args := buildStatusUpdate(id, expectedVersion, update)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, r.missOrConflict(ctx, id)
	}
	return lead, err
}

func buildStatusUpdate(id uuid.UUID, expectedVersion int64, update domain.Update) (string, []interface{}) {
	setClauses := []string{"status = $1"}
	args := []interface{}{string(update.Status)}
	argIdx := 2

	addSet := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if update.RetryCount != nil {
		addSet("retry_count", *update.RetryCount)
	}
	if update.NextFollowUpAtSet {
		addSet("next_followup_at", update.NextFollowUpAt)
	}
	if update.IsActive != nil {
		addSet("is_active", *update.IsActive)
	}
	if update.Pipeline != nil {
		addSet("pipeline", *update.Pipeline)
	}
	setClauses = append(setClauses, "version = version + 1", "updated_at = now()")

	args = append(args, id, expectedVersion)
	query := fmt.Sprintf(
		"UPDATE leads SET %s WHERE id = $%d AND version = $%d RETURNING %s",
		strings.Join(setClauses, ", "), argIdx, argIdx+1, leadColumns,
	)
	return query, args
}

func (r *Repository) AppendStatusHistory(ctx context.Context, leadID, actorID uuid.UUID, oldStatus, newStatus string) error {
	_, err := r.pool.Exec(ctx, appendStatusHistoryQuery, leadID, actorID, oldStatus, newStatus)
	return err
}

func (r *Repository) ListStatusHistory(ctx context.Context, leadID uuid.UUID) ([]StatusHistoryEntry, error) {
	rows, err := r.pool.Query(ctx, listStatusHistoryQuery, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]StatusHistoryEntry, 0)
	for rows.Next() {
		var entry StatusHistoryEntry
		if err := rows.Scan(&entry.ID, &entry.LeadID, &entry.ActorID, &entry.OldStatus, &entry.NewStatus, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return entries, nil
}
