package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// FollowUpDelay is how far after a retryable outcome the next contact is due.
	FollowUpDelay = 24 * time.Hour
	// SoftDeclineLimit is the soft-decline counter value that deactivates a lead.
	SoftDeclineLimit = 2
)

// Rejection reasons, safe to show to end users.
const (
	ReasonInactive      = "lead is inactive and can no longer change status"
	ReasonUnassigned    = "unassigned leads can only be updated by a team lead"
	ReasonSameStatus    = "lead is already in the requested status"
	ReasonLadderSkipped = "a NEW lead cannot skip the retry ladder straight to DNR4"
	ReasonEnrolled      = "lead is enrolled and is managed outside the lead pipeline"
	reasonRungUsedFmt   = "%s has already been used for this lead"
)

// Rejection codes, stable identifiers for the reasons above.
const (
	CodeInactive      = "inactive"
	CodeUnassigned    = "unassigned"
	CodeSameStatus    = "same_status"
	CodeLadderSkipped = "ladder_skipped"
	CodeRungUsed      = "rung_used"
	CodeEnrolled      = "enrolled"
)

// Clock supplies the current time to the engine.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Snapshot is the minimum lead state the engine decides on.
type Snapshot struct {
	Status        Status
	RetryCount    int
	IsActive      bool
	AssignedBOEID *uuid.UUID
	Pipeline      string
}

// Decision is the outcome of ValidateTransition. Reason and Code are set only
// when Allowed is false.
type Decision struct {
	Allowed bool
	Reason  string
	Code    string
}

func allow() Decision { return Decision{Allowed: true} }

func reject(code, reason string) Decision { return Decision{Reason: reason, Code: code} }

// Update is a sparse set of lead field changes. Status is always set; nil
// pointers mean "unchanged". NextFollowUpAtSet distinguishes clearing the
// follow-up (Set with nil value) from leaving it untouched.
type Update struct {
	Status            Status
	RetryCount        *int
	NextFollowUpAt    *time.Time
	NextFollowUpAtSet bool
	IsActive          *bool
	Pipeline          *string
}

// Deactivates reports whether the update sets is_active to false.
func (u Update) Deactivates() bool {
	return u.IsActive != nil && !*u.IsActive
}

// Engine evaluates lead status transitions. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	clock         Clock
	followUpDelay time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used for follow-up stamps.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// NewEngine returns an engine using the system clock unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{clock: SystemClock, followUpDelay: FollowUpDelay}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ValidateTransition decides whether lead may move to requested. Business rule
// violations are reported through the Decision; the error is non-nil only when
// requested is not a catalog member.
func (e *Engine) ValidateTransition(lead Snapshot, requested Status, privileged bool) (Decision, error) {
	if !requested.Valid() {
		return Decision{}, fmt.Errorf("%w: %q", ErrUnknownStatus, requested)
	}

	if !lead.IsActive {
		return reject(CodeInactive, ReasonInactive), nil
	}
	if !privileged && lead.AssignedBOEID == nil {
		return reject(CodeUnassigned, ReasonUnassigned), nil
	}
	if requested == lead.Status {
		return reject(CodeSameStatus, ReasonSameStatus), nil
	}
	if lead.Status == StatusNew && requested == StatusDNR4 {
		return reject(CodeLadderSkipped, ReasonLadderSkipped), nil
	}
	if k, ok := DNRRung(requested); ok && lead.RetryCount >= k {
		return reject(CodeRungUsed, fmt.Sprintf(reasonRungUsedFmt, requested)), nil
	}

	return allow(), nil
}

// ComputeUpdates returns the field changes for moving lead to newStatus. It
// assumes ValidateTransition allowed the move.
func (e *Engine) ComputeUpdates(lead Snapshot, newStatus Status) (Update, error) {
	if !newStatus.Valid() {
		return Update{}, fmt.Errorf("%w: %q", ErrUnknownStatus, newStatus)
	}

	u := Update{Status: newStatus}
	rung, isRung := DNRRung(newStatus)

	switch {
	case isRung:
		u.RetryCount = intPtr(rung)
		u.setFollowUp(e.nextFollowUp())

	case newStatus == StatusConverted:
		u.deactivate()
		u.Pipeline = stringPtr(PipelineEnrolled)

	case IsTerminalStatus(newStatus):
		u.deactivate()

	case IsSoftDecline(newStatus):
		count := lead.RetryCount + 1
		u.RetryCount = intPtr(count)
		if count >= SoftDeclineLimit {
			u.deactivate()
		} else {
			u.setFollowUp(e.nextFollowUp())
		}
	}

	return u, nil
}

func (e *Engine) nextFollowUp() time.Time {
	return e.clock.Now().Add(e.followUpDelay)
}

func (u *Update) setFollowUp(at time.Time) {
	u.NextFollowUpAt = &at
	u.NextFollowUpAtSet = true
}

func (u *Update) deactivate() {
	u.IsActive = boolPtr(false)
	u.NextFollowUpAt = nil
	u.NextFollowUpAtSet = true
}

func intPtr(v int) *int          { return &v }
func boolPtr(v bool) *bool       { return &v }
func stringPtr(v string) *string { return &v }
