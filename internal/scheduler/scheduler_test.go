package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/repository"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scheduledFollowUp struct {
	leadID uuid.UUID
	dueAt  time.Time
}

type fakeScheduler struct {
	mu    sync.Mutex
	calls []scheduledFollowUp
	err   error
}

func (f *fakeScheduler) ScheduleFollowUp(_ context.Context, leadID uuid.UUID, dueAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, scheduledFollowUp{leadID: leadID, dueAt: dueAt})
	return nil
}

type fakeLeads struct {
	leads   map[uuid.UUID]repository.Lead
	due     []repository.Lead
	listErr error
}

func (f *fakeLeads) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeLeads) ListDueFollowUps(_ context.Context, _ time.Time, limit int) ([]repository.Lead, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.due) > limit {
		return f.due[:limit], nil
	}
	return f.due, nil
}

type recordingBus struct {
	mu        sync.Mutex
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func timePtr(t time.Time) *time.Time { return &t }

func TestLeadFollowUpPayloadRoundTrip(t *testing.T) {
	due := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	task, err := NewLeadFollowUpTask(LeadFollowUpPayload{LeadID: "abc", DueAt: due})
	require.NoError(t, err)
	assert.Equal(t, TaskLeadFollowUpDue, task.Type())

	payload, err := ParseLeadFollowUpPayload(task)
	require.NoError(t, err)
	assert.Equal(t, "abc", payload.LeadID)
	assert.True(t, payload.DueAt.Equal(due))
}

func TestParseLeadFollowUpPayloadRejectsGarbage(t *testing.T) {
	_, err := ParseLeadFollowUpPayload(asynq.NewTask(TaskLeadFollowUpDue, []byte("{")))
	assert.Error(t, err)
}

func TestFollowUpTaskIDIsStablePerOccurrence(t *testing.T) {
	due := time.Date(2026, 3, 2, 9, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))

	assert.Equal(t, followUpTaskID("lead-1", due), followUpTaskID("lead-1", due.UTC()))
	assert.NotEqual(t, followUpTaskID("lead-1", due), followUpTaskID("lead-1", due.Add(time.Hour)))
	assert.NotEqual(t, followUpTaskID("lead-1", due), followUpTaskID("lead-2", due))
}

func TestFollowUpSubscriberSchedulesActiveLeadsWithFollowUp(t *testing.T) {
	sched := &fakeScheduler{}
	sub := NewFollowUpSubscriber(sched, nil)
	leadID := uuid.New()
	due := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, sub.Handle(context.Background(), events.LeadStatusChanged{
		LeadID: leadID, NewStatus: "DNR1", IsActive: true, NextFollowUpAt: timePtr(due),
	}))

	require.Len(t, sched.calls, 1)
	assert.Equal(t, leadID, sched.calls[0].leadID)
	assert.True(t, sched.calls[0].dueAt.Equal(due))
}

func TestFollowUpSubscriberIgnoresLeadsWithoutPendingFollowUp(t *testing.T) {
	sched := &fakeScheduler{}
	sub := NewFollowUpSubscriber(sched, nil)
	due := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	cases := []events.Event{
		events.LeadStatusChanged{LeadID: uuid.New(), NewStatus: "Converted", IsActive: false},
		events.LeadStatusChanged{LeadID: uuid.New(), NewStatus: "Denied", IsActive: false, NextFollowUpAt: timePtr(due)},
		events.LeadStatusChanged{LeadID: uuid.New(), NewStatus: "Call Back", IsActive: true},
		events.LeadAssigned{LeadID: uuid.New()},
	}
	for _, event := range cases {
		require.NoError(t, sub.Handle(context.Background(), event))
	}

	assert.Empty(t, sched.calls)
}

func TestFollowUpSubscriberReturnsSchedulerError(t *testing.T) {
	sched := &fakeScheduler{err: errors.New("redis down")}
	sub := NewFollowUpSubscriber(sched, nil)

	err := sub.Handle(context.Background(), events.LeadStatusChanged{
		LeadID: uuid.New(), IsActive: true, NextFollowUpAt: timePtr(time.Now()),
	})
	assert.EqualError(t, err, "redis down")
}

func TestFollowUpProcessorPublishesWhenStillDue(t *testing.T) {
	leadID := uuid.New()
	boe := uuid.New()
	due := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo := &fakeLeads{leads: map[uuid.UUID]repository.Lead{
		leadID: {ID: leadID, Status: "DNR2", IsActive: true, NextFollowUpAt: timePtr(due), AssignedBOEID: &boe},
	}}
	bus := &recordingBus{}

	err := NewFollowUpProcessor(repo, bus, nil).Process(context.Background(), LeadFollowUpPayload{
		LeadID: leadID.String(), DueAt: due,
	})
	require.NoError(t, err)

	require.Len(t, bus.published, 1)
	event, ok := bus.published[0].(events.LeadFollowUpDue)
	require.True(t, ok)
	assert.Equal(t, leadID, event.LeadID)
	assert.Equal(t, "DNR2", event.Status)
	assert.Equal(t, &boe, event.AssignedBOEID)
	assert.True(t, event.DueAt.Equal(due))
}

func TestFollowUpProcessorSkipsStaleTasks(t *testing.T) {
	due := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	moved := uuid.New()
	inactive := uuid.New()
	cleared := uuid.New()
	repo := &fakeLeads{leads: map[uuid.UUID]repository.Lead{
		moved:    {ID: moved, Status: "DNR3", IsActive: true, NextFollowUpAt: timePtr(due.Add(24 * time.Hour))},
		inactive: {ID: inactive, Status: "Denied", IsActive: false, NextFollowUpAt: timePtr(due)},
		cleared:  {ID: cleared, Status: "Call Back", IsActive: true},
	}}
	bus := &recordingBus{}
	processor := NewFollowUpProcessor(repo, bus, nil)

	for _, id := range []uuid.UUID{moved, inactive, cleared, uuid.New()} {
		err := processor.Process(context.Background(), LeadFollowUpPayload{LeadID: id.String(), DueAt: due})
		assert.NoError(t, err, id)
	}

	assert.Empty(t, bus.published)
}

func TestFollowUpProcessorRejectsMalformedLeadID(t *testing.T) {
	processor := NewFollowUpProcessor(&fakeLeads{}, &recordingBus{}, nil)

	err := processor.Process(context.Background(), LeadFollowUpPayload{LeadID: "not-a-uuid"})
	assert.Error(t, err)
}

func TestFollowUpSweeperEnqueuesDueLeads(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	first := repository.Lead{ID: uuid.New(), IsActive: true, NextFollowUpAt: timePtr(now.Add(-2 * time.Hour))}
	second := repository.Lead{ID: uuid.New(), IsActive: true, NextFollowUpAt: timePtr(now.Add(-time.Minute))}
	repo := &fakeLeads{due: []repository.Lead{first, second, {ID: uuid.New(), IsActive: true}}}
	sched := &fakeScheduler{}

	sweeper := NewFollowUpSweeper(repo, sched, time.Minute, nil)
	sweeper.now = func() time.Time { return now }

	assert.Equal(t, 2, sweeper.sweep(context.Background()))
	require.Len(t, sched.calls, 2)
	assert.Equal(t, first.ID, sched.calls[0].leadID)
	assert.True(t, sched.calls[0].dueAt.Equal(*first.NextFollowUpAt))
	assert.Equal(t, second.ID, sched.calls[1].leadID)
}

func TestFollowUpSweeperSurvivesFailures(t *testing.T) {
	sweeper := NewFollowUpSweeper(&fakeLeads{listErr: errors.New("db down")}, &fakeScheduler{}, 0, nil)
	assert.Equal(t, 0, sweeper.sweep(context.Background()))
	assert.Equal(t, defaultSweepInterval, sweeper.interval)

	due := []repository.Lead{{ID: uuid.New(), IsActive: true, NextFollowUpAt: timePtr(time.Now())}}
	sweeper = NewFollowUpSweeper(&fakeLeads{due: due}, &fakeScheduler{err: errors.New("redis down")}, time.Minute, nil)
	assert.Equal(t, 0, sweeper.sweep(context.Background()))
}

func TestFollowUpSweeperRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sched := &fakeScheduler{}
	due := []repository.Lead{{ID: uuid.New(), IsActive: true, NextFollowUpAt: timePtr(time.Now())}}
	sweeper := NewFollowUpSweeper(&fakeLeads{due: due}, sched, time.Hour, nil)

	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		sched.mu.Lock()
		defer sched.mu.Unlock()
		return len(sched.calls) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
