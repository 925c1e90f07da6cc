package repository

import (
	"strings"
	"testing"
	"time"

	"leadflow_backend/internal/leads/domain"

	"github.com/google/uuid"
)

func TestInsertIfAbsentQueryUsesNaturalKey(t *testing.T) {
	query := strings.ToLower(insertLeadIfAbsentQuery)

	if !strings.Contains(query, "on conflict (consumer_phone, source) do nothing") {
		t.Fatal("expected import insert to dedupe on phone and source")
	}
	if strings.Contains(strings.ToLower(insertLeadQuery), "on conflict") {
		t.Fatal("direct create should surface unique violations")
	}
}

func TestDueFollowUpQueryOnlyReturnsActiveLeads(t *testing.T) {
	query := strings.ToLower(listDueFollowUpsQuery)

	for _, fragment := range []string{
		"is_active = true",
		"next_followup_at is not null",
		"next_followup_at <= $1",
		"limit $2",
	} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected due follow-up query fragment %q", fragment)
		}
	}
}

func TestAssignQueryIsVersioned(t *testing.T) {
	query := strings.ToLower(assignBOEQuery)
	if !strings.Contains(query, "where id = $1 and version = $3") {
		t.Fatal("assignment must be guarded by the expected version")
	}
	if !strings.Contains(query, "version = version + 1") {
		t.Fatal("assignment must bump the version")
	}
}

func TestBuildStatusUpdateOnlySetsChangedFields(t *testing.T) {
	id := uuid.New()
	retry := 2
	update := domain.Update{Status: domain.StatusDNR2, RetryCount: &retry}

	query, args := buildStatusUpdate(id, 7, update)

	if !strings.Contains(query, "SET status = $1, retry_count = $2, version = version + 1") {
		t.Fatalf("unexpected set clause: %s", query)
	}
	setClause, _, _ := strings.Cut(query, " WHERE ")
	for _, column := range []string{"is_active", "next_followup_at", "pipeline"} {
		if strings.Contains(setClause, column) {
			t.Fatalf("untouched field %s must not be written: %s", column, setClause)
		}
	}
	if !strings.Contains(query, "WHERE id = $3 AND version = $4") {
		t.Fatalf("unexpected where clause: %s", query)
	}
	if len(args) != 4 || args[0] != "DNR2" || args[1] != 2 || args[2] != id || args[3] != int64(7) {
		t.Fatalf("unexpected args %#v", args)
	}
}

func TestBuildStatusUpdateClearsFollowUpOnDeactivate(t *testing.T) {
	inactive := false
	enrolled := domain.PipelineEnrolled
	update := domain.Update{
		Status:            domain.StatusConverted,
		NextFollowUpAtSet: true,
		IsActive:          &inactive,
		Pipeline:          &enrolled,
	}

	query, args := buildStatusUpdate(uuid.New(), 1, update)

	for _, fragment := range []string{"next_followup_at = $2", "is_active = $3", "pipeline = $4"} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected fragment %q in %s", fragment, query)
		}
	}
	if ts, ok := args[1].(*time.Time); !ok || ts != nil {
		t.Fatalf("follow-up must be written as NULL, got %#v", args[1])
	}
}

func TestBuildLeadListWhere(t *testing.T) {
	status := "DNR1"
	active := true
	boe := uuid.New()
	due := time.Now()

	where, args, next := buildLeadListWhere(ListParams{
		Status:        &status,
		AssignedBOEID: &boe,
		IsActive:      &active,
		DueBefore:     &due,
		Search:        "asha",
	})

	for _, fragment := range []string{
		"l.status = $1",
		"l.assigned_boe_id = $2",
		"l.is_active = $3",
		"l.next_followup_at <= $4",
		"l.consumer_name ILIKE $5",
	} {
		if !strings.Contains(where, fragment) {
			t.Errorf("expected fragment %q in %q", fragment, where)
		}
	}
	if len(args) != 5 || next != 6 {
		t.Fatalf("args = %d, next = %d", len(args), next)
	}
	if args[4] != "%asha%" {
		t.Fatalf("search pattern = %v", args[4])
	}
}

func TestMapLeadSortColumnFallsBackToCreatedAt(t *testing.T) {
	if got := mapLeadSortColumn("; DROP TABLE leads"); got != "l.created_at" {
		t.Fatalf("unexpected sort column %q", got)
	}
	if got := mapLeadSortColumn("nextFollowUpAt"); got != "l.next_followup_at" {
		t.Fatalf("unexpected sort column %q", got)
	}
}
