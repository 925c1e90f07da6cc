package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("lead not found")
	// ErrVersionConflict means the row changed since it was read.
	ErrVersionConflict = errors.New("lead was modified concurrently")
	// ErrDuplicate means a lead with the same phone and source already exists.
	ErrDuplicate = errors.New("lead already exists for this phone and source")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID             uuid.UUID
	ConsumerName   string
	ConsumerPhone  string
	ConsumerEmail  *string
	Source         string
	Status         string
	RetryCount     int
	IsActive       bool
	Pipeline       string
	NextFollowUpAt *time.Time
	AssignedBOEID  *uuid.UUID
	CreatedByID    *uuid.UUID
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type CreateLeadParams struct {
	ConsumerName  string
	ConsumerPhone string
	ConsumerEmail *string
	Source        string
	AssignedBOEID *uuid.UUID
	CreatedByID   *uuid.UUID
}

type ListParams struct {
	Status        *string
	AssignedBOEID *uuid.UUID
	IsActive      *bool
	Source        *string
	DueBefore     *time.Time
	Search        string
	Offset        int
	Limit         int
	SortBy        string
	SortOrder     string
}

const leadColumns = `id, consumer_name, consumer_phone, consumer_email, source, status, retry_count,
	is_active, pipeline, next_followup_at, assigned_boe_id, created_by_id, version, created_at, updated_at`

const insertLeadQuery = `
	INSERT INTO leads (consumer_name, consumer_phone, consumer_email, source, assigned_boe_id, created_by_id)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING ` + leadColumns

const insertLeadIfAbsentQuery = `
	INSERT INTO leads (consumer_name, consumer_phone, consumer_email, source, assigned_boe_id, created_by_id)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (consumer_phone, source) DO NOTHING
	RETURNING ` + leadColumns

const getLeadByIDQuery = `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

const listDueFollowUpsQuery = `
	SELECT ` + leadColumns + `
	FROM leads
	WHERE is_active = true AND next_followup_at IS NOT NULL AND next_followup_at <= $1
	ORDER BY next_followup_at ASC
	LIMIT $2`

const assignBOEQuery = `
	UPDATE leads
	SET assigned_boe_id = $2, version = version + 1, updated_at = now()
	WHERE id = $1 AND version = $3
	RETURNING ` + leadColumns

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.ConsumerName, &lead.ConsumerPhone, &lead.ConsumerEmail, &lead.Source, &lead.Status, &lead.RetryCount,
		&lead.IsActive, &lead.Pipeline, &lead.NextFollowUpAt, &lead.AssignedBOEID, &lead.CreatedByID, &lead.Version,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	return lead, err
}

func collectLeads(rows pgx.Rows) ([]Lead, error) {
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return leads, nil
}

const uniqueViolationCode = "23505"

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, insertLeadQuery,
		params.ConsumerName, params.ConsumerPhone, params.ConsumerEmail, params.Source,
		params.AssignedBOEID, params.CreatedByID,
	))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return Lead{}, ErrDuplicate
	}
	return lead, err
}

// CreateIfAbsent inserts a lead unless one already exists with the same phone
// and source, in which case it returns ErrDuplicate.
func (r *Repository) CreateIfAbsent(ctx context.Context, params CreateLeadParams) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, insertLeadIfAbsentQuery,
		params.ConsumerName, params.ConsumerPhone, params.ConsumerEmail, params.Source,
		params.AssignedBOEID, params.CreatedByID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrDuplicate
	}
	return lead, err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, getLeadByIDQuery, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	whereClause, args, argIdx := buildLeadListWhere(params)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM leads l WHERE %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortOrder := "DESC"
	if params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM leads l
		WHERE %s
		ORDER BY %s %s, l.id ASC
		LIMIT $%d OFFSET $%d
	`, leadColumns, whereClause, mapLeadSortColumn(params.SortBy), sortOrder, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	leads, err := collectLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func buildLeadListWhere(params ListParams) (string, []interface{}, int) {
	whereClauses := []string{"true"}
	args := make([]interface{}, 0)
	argIdx := 1

	addEquals := func(column string, value interface{}) {
		whereClauses = append(whereClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if params.Status != nil {
		addEquals("l.status", *params.Status)
	}
	if params.AssignedBOEID != nil {
		addEquals("l.assigned_boe_id", *params.AssignedBOEID)
	}
	if params.IsActive != nil {
		addEquals("l.is_active", *params.IsActive)
	}
	if params.Source != nil {
		addEquals("l.source", *params.Source)
	}
	if params.DueBefore != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.next_followup_at <= $%d", argIdx))
		args = append(args, *params.DueBefore)
		argIdx++
	}
	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(l.consumer_name ILIKE $%d OR l.consumer_phone ILIKE $%d OR l.consumer_email ILIKE $%d)",
			argIdx, argIdx, argIdx,
		))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}

func mapLeadSortColumn(sortBy string) string {
	switch sortBy {
	case "name":
		return "l.consumer_name"
	case "status":
		return "l.status"
	case "nextFollowUpAt":
		return "l.next_followup_at"
	case "updatedAt":
		return "l.updated_at"
	default:
		return "l.created_at"
	}
}

// AssignBOE sets the assignee if the row is still at expectedVersion.
func (r *Repository) AssignBOE(ctx context.Context, id uuid.UUID, boeID uuid.UUID, expectedVersion int64) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, assignBOEQuery, id, boeID, expectedVersion))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, r.missOrConflict(ctx, id)
	}
	return lead, err
}

// ListDueFollowUps returns active leads whose follow-up is at or before before.
func (r *Repository) ListDueFollowUps(ctx context.Context, before time.Time, limit int) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, listDueFollowUpsQuery, before, limit)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

// missOrConflict tells a missing row apart from a stale version after a
// versioned update matched nothing.
func (r *Repository) missOrConflict(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM leads WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrVersionConflict
}
