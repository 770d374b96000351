package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/snapstudio/server/internal/clock"
	"github.com/snapstudio/server/internal/domain/session"
	"github.com/snapstudio/server/internal/event"
	"github.com/snapstudio/server/internal/repository"
)

// Service orchestrates bookings. The booking mutex is independent of the
// session service's lock: bookings only read session snapshots.
type Service struct {
	repo     Repository
	sessions SessionReader
	bus      event.Bus
	clock    clock.Clock
	logger   *slog.Logger
	poll     time.Duration

	mu      sync.Mutex
	current *Booking
}

// Options configures a booking service.
type Options struct {
	// OvertimePollInterval is how often the active booking is checked
	// against its scheduled end.
	OvertimePollInterval time.Duration
}

// NewService creates a new booking service.
func NewService(repo Repository, sessions SessionReader, bus event.Bus, clk clock.Clock, logger *slog.Logger, opts Options) *Service {
	if opts.OvertimePollInterval <= 0 {
		opts.OvertimePollInterval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	if bus == nil {
		bus = event.Nop{}
	}
	return &Service{
		repo:     repo,
		sessions: sessions,
		bus:      bus,
		clock:    clk,
		logger:   logger,
		poll:     opts.OvertimePollInterval,
	}
}

// CreateRequest describes a booking creation.
type CreateRequest struct {
	ClientName      string
	Label           string
	DurationMinutes int
	ScheduledStart  time.Time
	Notes           string
	PricePackage    *PricePackage
}

// Create persists a new booking in scheduled state. When the scheduled start
// is unset or not in the future, the booking activates immediately.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	if strings.TrimSpace(req.ClientName) == "" || req.DurationMinutes <= 0 {
		return nil, ErrInvalidInput
	}

	s.mu.Lock()
	if err := s.ensureNoneActiveLocked(ctx, ""); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	now := s.clock.Now()
	start := req.ScheduledStart
	if start.IsZero() {
		start = now
	}

	b := &Booking{
		ID:              "booking-" + uuid.NewString(),
		ClientName:      req.ClientName,
		Label:           req.Label,
		ScheduledStart:  start,
		ScheduledEnd:    start.Add(time.Duration(req.DurationMinutes) * time.Minute),
		DurationMinutes: req.DurationMinutes,
		Status:          StatusScheduled,
		SessionIDs:      []string{},
		CreatedAt:       now,
		Notes:           req.Notes,
		PricePackage:    req.PricePackage,
	}

	if err := s.repo.Save(ctx, b); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("saving booking: %w", err)
	}
	s.mu.Unlock()

	s.logger.Info("booking created", "booking", b.ID, "client", b.ClientName, "minutes", b.DurationMinutes)

	if !start.After(now) {
		return s.Activate(ctx, b.ID)
	}
	return b.Clone(), nil
}

// Activate starts a scheduled booking, re-anchoring its scheduled end to the
// actual activation time. Activating an already active booking is a no-op.
func (s *Service) Activate(ctx context.Context, id string) (*Booking, error) {
	s.mu.Lock()
	b, err := s.load(ctx, id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if b.Status == StatusActive {
		snapshot := b.Clone()
		s.mu.Unlock()
		return snapshot, nil
	}
	if b.Status == StatusCompleted || b.Status == StatusCancelled {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot start a %s booking", ErrInvalidState, b.Status)
	}
	if err := s.ensureNoneActiveLocked(ctx, b.ID); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	now := s.clock.Now()
	b.Status = StatusActive
	b.ActivatedAt = &now
	b.ScheduledEnd = now.Add(time.Duration(b.DurationMinutes) * time.Minute)

	if err := s.repo.Save(ctx, b); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("saving booking: %w", err)
	}
	s.current = b
	snapshot := b.Clone()
	s.mu.Unlock()

	s.logger.Info("booking started", "booking", snapshot.ID, "until", snapshot.ScheduledEnd)
	s.publish(event.BookingStarted, snapshot)
	return snapshot, nil
}

// AttachSession links a capture session to a booking. Attaching the same
// session twice is a no-op.
func (s *Service) AttachSession(ctx context.Context, bookingID, sessionID string) (*Booking, error) {
	s.mu.Lock()
	b, err := s.load(ctx, bookingID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if b.HasSession(sessionID) {
		snapshot := b.Clone()
		s.mu.Unlock()
		return snapshot, nil
	}

	b.SessionIDs = append(b.SessionIDs, sessionID)
	if err := s.repo.Save(ctx, b); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("saving booking: %w", err)
	}
	if s.current != nil && s.current.ID == b.ID {
		s.current = b
	}
	snapshot := b.Clone()
	s.mu.Unlock()

	s.publish(event.BookingUpdated, snapshot)
	return snapshot, nil
}

// Complete finishes an active booking and returns its summary. Callers must
// ensure no attached session is still in flight before completing; the
// orchestrator trusts that precondition.
func (s *Service) Complete(ctx context.Context, id string) (*Summary, error) {
	s.mu.Lock()
	b, err := s.load(ctx, id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if b.Status != StatusActive {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot complete a %s booking", ErrInvalidState, b.Status)
	}

	var sessions []session.Session
	totalPhotos := 0
	totalStarred := 0
	for _, sessionID := range b.SessionIDs {
		sess, err := s.sessions.Get(ctx, sessionID)
		if err != nil {
			if errors.Is(err, session.ErrSessionNotFound) {
				s.logger.Warn("attached session missing from store", "booking", b.ID, "session", sessionID)
				continue
			}
			s.mu.Unlock()
			return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
		}
		sessions = append(sessions, *sess)
		totalPhotos += len(sess.Photos)
		totalStarred += len(sess.StarredPhotoIDs)
	}

	now := s.clock.Now()
	b.Status = StatusCompleted
	b.CompletedAt = &now
	b.TotalPhotos = totalPhotos
	b.TotalStarredPhotos = totalStarred

	if err := s.repo.Save(ctx, b); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("saving booking: %w", err)
	}
	if s.current != nil && s.current.ID == b.ID {
		s.current = nil
	}

	actual := 0
	if b.ActivatedAt != nil {
		actual = int(now.Sub(*b.ActivatedAt) / time.Minute)
	}
	summary := &Summary{
		BookingID:          b.ID,
		TotalSessions:      len(b.SessionIDs),
		TotalPhotos:        totalPhotos,
		TotalStarredPhotos: totalStarred,
		Sessions:           sessions,
		Duration: Duration{
			ScheduledMinutes: b.DurationMinutes,
			ActualMinutes:    actual,
		},
	}
	s.mu.Unlock()

	s.logger.Info("booking completed", "booking", id, "photos", totalPhotos, "starred", totalStarred)
	s.publish(event.BookingCompleted, summary)
	return summary, nil
}

// Cancel cancels a scheduled or active booking.
func (s *Service) Cancel(ctx context.Context, id string) (*Booking, error) {
	s.mu.Lock()
	b, err := s.load(ctx, id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if b.Status != StatusScheduled && b.Status != StatusActive {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot cancel a %s booking", ErrInvalidState, b.Status)
	}

	b.Status = StatusCancelled
	if err := s.repo.Save(ctx, b); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("saving booking: %w", err)
	}
	if s.current != nil && s.current.ID == b.ID {
		s.current = nil
	}
	snapshot := b.Clone()
	s.mu.Unlock()

	s.logger.Info("booking cancelled", "booking", id)
	s.publish(event.BookingUpdated, snapshot)
	return snapshot, nil
}

// Current returns a copy of the active booking, or nil when none exists.
func (s *Service) Current() *Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Get fetches a booking by id.
func (s *Service) Get(ctx context.Context, id string) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return b.Clone(), nil
}

// List returns all bookings, most recently created first.
func (s *Service) List(ctx context.Context) ([]Booking, error) {
	bookings, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
	return bookings, nil
}

// RemainingMinutes reports whole minutes until the active booking's
// scheduled end, floored at zero. Returns zero with no active booking.
func (s *Service) RemainingMinutes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.Status != StatusActive {
		return 0
	}
	remaining := s.current.ScheduledEnd.Sub(s.clock.Now())
	if remaining < 0 {
		return 0
	}
	return int(remaining / time.Minute)
}

// PollOvertime publishes booking-overtime when the active booking has run
// past its scheduled end. It fires on every poll while overtime persists;
// consumers de-duplicate.
func (s *Service) PollOvertime() {
	s.mu.Lock()
	if s.current == nil || s.current.Status != StatusActive {
		s.mu.Unlock()
		return
	}
	if s.clock.Now().Before(s.current.ScheduledEnd) {
		s.mu.Unlock()
		return
	}
	snapshot := s.current.Clone()
	s.mu.Unlock()

	s.logger.Info("booking has exceeded its scheduled time", "booking", snapshot.ID)
	s.publish(event.BookingOvertime, snapshot)
}

// WatchOvertime runs the overtime poll on a fixed interval until ctx is
// cancelled.
func (s *Service) WatchOvertime(ctx context.Context) {
	ticker := s.clock.NewTicker(s.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			s.PollOvertime()
		}
	}
}

// Restore recovers the active booking pointer after a restart.
func (s *Service) Restore(ctx context.Context) error {
	b, err := s.repo.FindActive(ctx)
	if err != nil {
		return fmt.Errorf("scanning for active booking: %w", err)
	}
	if b == nil {
		s.logger.Info("no active booking to restore")
		return nil
	}

	s.mu.Lock()
	s.current = b
	s.mu.Unlock()

	s.logger.Info("restored booking", "booking", b.ID, "client", b.ClientName)
	return nil
}

// ensureNoneActiveLocked enforces the single-active-booking invariant,
// consulting the store as well as the pointer so a fresh process cannot
// double-book before Restore runs. Callers hold s.mu.
func (s *Service) ensureNoneActiveLocked(ctx context.Context, exceptID string) error {
	if s.current != nil && s.current.Status == StatusActive && s.current.ID != exceptID {
		return ErrBookingActive
	}
	if s.current == nil {
		active, err := s.repo.FindActive(ctx)
		if err != nil {
			return fmt.Errorf("scanning for active booking: %w", err)
		}
		if active != nil && active.ID != exceptID {
			return ErrBookingActive
		}
	}
	return nil
}

// load fetches a booking by id, preferring the in-memory active pointer.
// The result is always a copy: mutations reach s.current only when a caller
// commits them after a successful save. Callers hold s.mu.
func (s *Service) load(ctx context.Context, id string) (*Booking, error) {
	if s.current != nil && s.current.ID == id {
		return s.current.Clone(), nil
	}
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("loading booking: %w", err)
	}
	return b, nil
}

func (s *Service) publish(t event.Type, payload any) {
	s.bus.Publish(event.Event{Type: t, OccurredAt: s.clock.Now(), Payload: payload})
}
