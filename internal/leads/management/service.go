// Package management runs the lead workflow: status changes, direct entry,
// bulk import and assignment on top of the lead store.
package management

import (
	"context"
	"errors"
	"strings"
	"time"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/internal/lock"
	"leadflow_backend/internal/metrics"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/phone"

	"github.com/google/uuid"
)

const (
	defaultSource     = "manual"
	defaultPageSize   = 20
	defaultLockTTL    = 10 * time.Second
	defaultConcurrent = 8

	msgLeadNotFound         = "lead not found"
	msgNameAndPhoneRequired = "name and phone are required"
)

// Repository defines the data access interface needed by the management service.
// This is a consumer-driven interface - only what management needs.
type Repository interface {
	repository.LeadReader
	repository.LeadWriter
	repository.StatusWriter
	repository.Assigner
	repository.StatusHistoryStore
}

// Config is the subset of application config the service reads.
type Config interface {
	GetPhoneDefaultRegion() string
	GetImportConcurrency() int
	GetLeadLockTTL() time.Duration
}

// Actor is the caller a workflow operation runs on behalf of.
type Actor struct {
	ID         uuid.UUID
	Privileged bool
}

// Service handles lead workflow operations.
type Service struct {
	repo        Repository
	engine      *domain.Engine
	locker      lock.Locker
	bus         events.Bus
	metrics     *metrics.Workflow
	log         *logger.Logger
	clock       domain.Clock
	region      string
	lockTTL     time.Duration
	concurrency int
}

// Option configures a Service.
type Option func(*Service)

// WithLocker replaces the default in-process locker.
func WithLocker(l lock.Locker) Option {
	return func(s *Service) {
		if l != nil {
			s.locker = l
		}
	}
}

// WithMetrics records workflow outcomes on m.
func WithMetrics(m *metrics.Workflow) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(log *logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock sets the time source for follow-ups, events and due queries.
func WithClock(c domain.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// New creates a new lead management service.
func New(repo Repository, bus events.Bus, cfg Config, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		locker:      lock.NewLocalLocker(),
		bus:         bus,
		log:         logger.Discard(),
		clock:       domain.SystemClock,
		region:      phone.DefaultRegion,
		lockTTL:     defaultLockTTL,
		concurrency: defaultConcurrent,
	}
	if cfg != nil {
		if region := strings.TrimSpace(cfg.GetPhoneDefaultRegion()); region != "" {
			s.region = region
		}
		if n := cfg.GetImportConcurrency(); n > 0 {
			s.concurrency = n
		}
		if ttl := cfg.GetLeadLockTTL(); ttl > 0 {
			s.lockTTL = ttl
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = domain.NewEngine(domain.WithClock(s.clock))
	return s
}

// Statuses returns the status catalog in display order.
func (s *Service) Statuses() transport.StatusListResponse {
	return transport.StatusListResponse{Statuses: domain.StatusStrings()}
}

// GetByID retrieves a lead by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.getLead(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return ToLeadResponse(lead), nil
}

// List returns a filtered page of leads.
func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = defaultPageSize
	}

	params := repository.ListParams{
		IsActive:  req.Active,
		Search:    strings.TrimSpace(req.Search),
		Offset:    (req.Page - 1) * req.PageSize,
		Limit:     req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	if req.Status != "" {
		status := req.Status
		params.Status = &status
	}
	if req.Source != "" {
		source := req.Source
		params.Source = &source
	}
	if req.AssignedBOEID != "" {
		boeID, err := uuid.Parse(req.AssignedBOEID)
		if err != nil {
			return transport.LeadListResponse{}, apperr.Validation("invalid assignedBoeId")
		}
		params.AssignedBOEID = &boeID
	}
	if req.DueOnly {
		now := s.clock.Now()
		active := true
		params.DueBefore = &now
		params.IsActive = &active
	}

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	items := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, ToLeadResponse(lead))
	}

	totalPages := (total + req.PageSize - 1) / req.PageSize

	return transport.LeadListResponse{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}, nil
}

// History returns the status audit trail of a lead, oldest first.
func (s *Service) History(ctx context.Context, id uuid.UUID) (transport.StatusHistoryResponse, error) {
	if _, err := s.getLead(ctx, id); err != nil {
		return transport.StatusHistoryResponse{}, err
	}

	entries, err := s.repo.ListStatusHistory(ctx, id)
	if err != nil {
		return transport.StatusHistoryResponse{}, err
	}

	items := make([]transport.StatusHistoryEntry, 0, len(entries))
	for _, entry := range entries {
		items = append(items, ToStatusHistoryEntry(entry))
	}
	return transport.StatusHistoryResponse{Items: items}, nil
}

// Create enters a single lead directly. Non-privileged creators always own the
// lead they create.
func (s *Service) Create(ctx context.Context, actor Actor, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	params := repository.CreateLeadParams{
		ConsumerName:  strings.TrimSpace(req.ConsumerName),
		ConsumerPhone: phone.NormalizeE164(req.ConsumerPhone, s.region),
		ConsumerEmail: normalizeEmail(req.ConsumerEmail),
		Source:        strings.TrimSpace(req.Source),
		AssignedBOEID: req.AssignedBOEID,
		CreatedByID:   uuidPtr(actor.ID),
	}
	if params.ConsumerName == "" || params.ConsumerPhone == "" {
		return transport.LeadResponse{}, apperr.Validation(msgNameAndPhoneRequired)
	}
	if params.Source == "" {
		params.Source = defaultSource
	}
	if !actor.Privileged {
		params.AssignedBOEID = uuidPtr(actor.ID)
	}

	lead, err := s.repo.Create(ctx, params)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return transport.LeadResponse{}, apperr.Conflict("a lead with this phone number already exists for this source")
		}
		return transport.LeadResponse{}, err
	}

	s.publishCreated(ctx, lead, actor.ID)
	return ToLeadResponse(lead), nil
}

func (s *Service) getLead(ctx context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Lead{}, apperr.NotFound(msgLeadNotFound)
		}
		return repository.Lead{}, err
	}
	return lead, nil
}

func (s *Service) publishCreated(ctx context.Context, lead repository.Lead, actorID uuid.UUID) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:     events.NewBaseEventAt(s.clock.Now()),
		LeadID:        lead.ID,
		Source:        lead.Source,
		AssignedBOEID: lead.AssignedBOEID,
		CreatedByID:   actorID,
	})
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.ToLower(strings.TrimSpace(*email))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func uuidPtr(id uuid.UUID) *uuid.UUID {
	return &id
}
