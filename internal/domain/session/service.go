package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/snapstudio/server/internal/clock"
	"github.com/snapstudio/server/internal/event"
	"github.com/snapstudio/server/internal/repository"
)

// Service orchestrates capture sessions. It owns the single-active-session
// invariant: all mutations run under one mutex, and the current pointer is
// the only handle to the in-flight session.
type Service struct {
	repo    Repository
	files   FileStore
	bus     event.Bus
	clock   clock.Clock
	logger  *slog.Logger
	maxTime time.Duration
	maxDflt int

	mu      sync.Mutex
	current *Session
	timer   clock.Timer
}

// Options configures a session service.
type Options struct {
	// MaxSessionTime forces an active session into review after this long.
	MaxSessionTime time.Duration
	// DefaultMaxPhotos applies when a start request doesn't set a ceiling.
	DefaultMaxPhotos int
}

// NewService creates a new session service.
func NewService(repo Repository, files FileStore, bus event.Bus, clk clock.Clock, logger *slog.Logger, opts Options) *Service {
	if opts.MaxSessionTime <= 0 {
		opts.MaxSessionTime = time.Hour
	}
	if opts.DefaultMaxPhotos <= 0 {
		opts.DefaultMaxPhotos = 9
	}
	if logger == nil {
		logger = slog.Default()
	}
	if bus == nil {
		bus = event.Nop{}
	}
	return &Service{
		repo:    repo,
		files:   files,
		bus:     bus,
		clock:   clk,
		logger:  logger,
		maxTime: opts.MaxSessionTime,
		maxDflt: opts.DefaultMaxPhotos,
	}
}

// StartRequest describes a session start.
type StartRequest struct {
	PoseLabel string
	MaxPhotos int
	BookingID string
}

// Start begins a new capture session. It fails with ErrSessionActive while a
// previous session has not completed.
func (s *Service) Start(ctx context.Context, req StartRequest) (*Session, error) {
	if req.PoseLabel == "" {
		return nil, ErrInvalidInput
	}
	maxPhotos := req.MaxPhotos
	if maxPhotos <= 0 {
		maxPhotos = s.maxDflt
	}

	s.mu.Lock()
	if s.current != nil && s.current.Status != StatusComplete {
		s.mu.Unlock()
		return nil, ErrSessionActive
	}

	sess := &Session{
		ID:              uuid.NewString(),
		BookingID:       req.BookingID,
		PoseLabel:       req.PoseLabel,
		StartTime:       s.clock.Now(),
		Photos:          []Photo{},
		StarredPhotoIDs: []string{},
		MaxPhotos:       maxPhotos,
		Status:          StatusActive,
	}

	if err := s.files.EnsureSessionDir(sess.ID); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("preparing session directory: %w", err)
	}
	if err := s.repo.Save(ctx, sess); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("saving session: %w", err)
	}

	s.current = sess
	s.armTimerLocked(sess.ID)
	snapshot := sess.Clone()
	s.mu.Unlock()

	s.logger.Info("session started", "session", snapshot.ID, "pose", snapshot.PoseLabel, "maxPhotos", snapshot.MaxPhotos)
	s.publish(event.SessionCreated, snapshot)
	return snapshot, nil
}

// AttachPhoto attaches an ingested file to the current session. Photos that
// arrive with no active session, or past the photo ceiling, are dropped and
// logged rather than surfaced: the capture device cannot be told to stop
// mid-burst.
func (s *Service) AttachPhoto(ctx context.Context, file IngestedFile) error {
	s.mu.Lock()
	if s.current == nil || s.current.Status != StatusActive {
		s.mu.Unlock()
		s.logger.Info("no active session, ignoring photo", "file", file.Filename)
		return nil
	}
	if s.current.AtCapacity() {
		s.mu.Unlock()
		s.logger.Info("session at photo limit, ignoring photo", "file", file.Filename)
		return nil
	}

	dest, err := s.files.CopyIntoSession(s.current.ID, file.SourcePath, file.Filename)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("copying photo into session: %w", err)
	}

	photo := Photo{
		ID:          file.ID,
		Filename:    file.Filename,
		SourcePath:  file.SourcePath,
		SessionPath: dest,
		CaptureTime: file.CaptureTime,
		Starred:     false,
		SessionID:   s.current.ID,
	}
	next := s.current.Clone()
	next.Photos = append(next.Photos, photo)

	if err := s.repo.Save(ctx, next); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("saving session: %w", err)
	}
	s.current = next

	// The photo-added payload carries the session as it was when the photo
	// landed; the ceiling-triggered move to review follows as its own event.
	added := next.Clone()
	full := next.AtCapacity()
	var reviewed *Session
	if full {
		next = next.Clone()
		next.Status = StatusReview
		if err := s.repo.Save(ctx, next); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("saving session: %w", err)
		}
		s.current = next
		reviewed = next.Clone()
	}
	s.mu.Unlock()

	s.publish(event.PhotoAdded, PhotoAddedPayload{Session: added, Photo: photo})
	if full {
		s.logger.Info("session reached photo limit, moving to review", "session", added.ID)
		s.publish(event.SessionUpdated, reviewed)
	}
	return nil
}

// SetStarred toggles the starred flag on a photo in the current session.
// Idempotent: repeating a toggle persists and publishes again without
// changing state.
func (s *Service) SetStarred(ctx context.Context, photoID string, starred bool) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return ErrNoSession
	}

	idx := -1
	for i := range s.current.Photos {
		if s.current.Photos[i].ID == photoID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrPhotoNotFound
	}

	next := s.current.Clone()
	next.Photos[idx].Starred = starred
	if starred {
		if !next.Starred(photoID) {
			next.StarredPhotoIDs = append(next.StarredPhotoIDs, photoID)
		}
	} else {
		kept := next.StarredPhotoIDs[:0]
		for _, id := range next.StarredPhotoIDs {
			if id != photoID {
				kept = append(kept, id)
			}
		}
		next.StarredPhotoIDs = kept
	}

	if err := s.repo.Save(ctx, next); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("saving session: %w", err)
	}
	s.current = next
	snapshot := next.Clone()
	s.mu.Unlock()

	s.publish(event.PhotoStarred, PhotoStarredPayload{PhotoID: photoID, Starred: starred, Session: snapshot})
	return nil
}

// Transition moves the current session to a new status. Legal moves:
// active→review, review→active (below the photo ceiling), and either
// active→complete or review→complete.
func (s *Service) Transition(ctx context.Context, sessionID string, status Status) (*Session, error) {
	s.mu.Lock()
	snapshot, completed, err := s.transitionLocked(ctx, sessionID, status)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if completed {
		s.publish(event.SessionCompleted, snapshot)
	} else {
		s.publish(event.SessionUpdated, snapshot)
	}
	return snapshot, nil
}

// Complete finishes the current session regardless of its photo count.
func (s *Service) Complete(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil, ErrNoSession
	}
	id := s.current.ID
	snapshot, _, err := s.transitionLocked(ctx, id, StatusComplete)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.publish(event.SessionCompleted, snapshot)
	return snapshot, nil
}

func (s *Service) transitionLocked(ctx context.Context, sessionID string, status Status) (*Session, bool, error) {
	if s.current == nil {
		return nil, false, ErrNoSession
	}
	if s.current.ID != sessionID {
		return nil, false, ErrSessionNotFound
	}

	from := s.current.Status
	switch {
	case from == StatusActive && status == StatusReview:
	case from == StatusReview && status == StatusActive:
		if s.current.AtCapacity() {
			return nil, false, ErrSessionFull
		}
	case (from == StatusActive || from == StatusReview) && status == StatusComplete:
	default:
		return nil, false, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, status)
	}

	// Mutations land on a copy; s.current moves only after the save
	// succeeds.
	next := s.current.Clone()
	next.Status = status
	completed := status == StatusComplete
	if completed {
		now := s.clock.Now()
		next.EndTime = &now
	}

	if err := s.repo.Save(ctx, next); err != nil {
		return nil, false, fmt.Errorf("saving session: %w", err)
	}

	if completed {
		s.stopTimerLocked()
		s.current = nil
		s.logger.Info("session completed", "session", next.ID, "photos", len(next.Photos))
	} else {
		s.current = next
	}
	return next.Clone(), completed, nil
}

// Current returns a copy of the in-flight session, or nil when none exists.
func (s *Service) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Get fetches a session by id, whether in flight or already completed.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	if s.current != nil && s.current.ID == id {
		snapshot := s.current.Clone()
		s.mu.Unlock()
		return snapshot, nil
	}
	s.mu.Unlock()

	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return sess, nil
}

// List returns all persisted sessions, most recent first.
func (s *Service) List(ctx context.Context) ([]Session, error) {
	sessions, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartTime.After(sessions[j].StartTime)
	})
	return sessions, nil
}

// ListByBooking returns the sessions attached to a booking, most recent first.
func (s *Service) ListByBooking(ctx context.Context, bookingID string) ([]Session, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []Session
	for _, sess := range all {
		if sess.BookingID == bookingID {
			out = append(out, sess)
		}
	}
	return out, nil
}

// Restore recovers the in-flight session after a restart, re-arming its
// timeout timer as if the process had never stopped.
func (s *Service) Restore(ctx context.Context) error {
	sess, err := s.repo.FindActive(ctx)
	if err != nil {
		return fmt.Errorf("scanning for active session: %w", err)
	}
	if sess == nil {
		s.logger.Info("no active session to restore")
		return nil
	}

	s.mu.Lock()
	s.current = sess
	if sess.Status == StatusActive {
		s.armTimerLocked(sess.ID)
	}
	s.mu.Unlock()

	s.logger.Info("restored session", "session", sess.ID, "status", sess.Status)
	return nil
}

// CleanupOld deletes completed sessions that ended more than keep ago and
// returns the number removed.
func (s *Service) CleanupOld(ctx context.Context, keep time.Duration) (int, error) {
	sessions, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing sessions: %w", err)
	}

	cutoff := s.clock.Now().Add(-keep)
	deleted := 0
	for _, sess := range sessions {
		if sess.Status != StatusComplete || sess.EndTime == nil || !sess.EndTime.Before(cutoff) {
			continue
		}
		if err := s.repo.Delete(ctx, sess.ID); err != nil {
			return deleted, fmt.Errorf("deleting session %s: %w", sess.ID, err)
		}
		deleted++
	}
	return deleted, nil
}

// Close stops the timeout timer. Safe to call with no session in flight.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
}

// armTimerLocked replaces any pending timeout timer with a fresh one for the
// given session. The callback re-checks the session under the lock, so a
// late fire against a finished session is a no-op.
func (s *Service) armTimerLocked(sessionID string) {
	s.stopTimerLocked()
	s.timer = s.clock.AfterFunc(s.maxTime, func() {
		s.timeout(sessionID)
	})
}

func (s *Service) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Service) timeout(sessionID string) {
	ctx := context.Background()

	s.mu.Lock()
	if s.current == nil || s.current.ID != sessionID || s.current.Status != StatusActive {
		s.mu.Unlock()
		return
	}
	snapshot, _, err := s.transitionLocked(ctx, sessionID, StatusReview)
	s.mu.Unlock()
	if err != nil {
		s.logger.Error("session timeout transition failed", "session", sessionID, "error", err)
		return
	}

	s.logger.Info("session timed out, moving to review", "session", sessionID)
	s.publish(event.SessionUpdated, snapshot)
	s.publish(event.SessionTimeout, snapshot)
}

func (s *Service) publish(t event.Type, payload any) {
	s.bus.Publish(event.Event{Type: t, OccurredAt: s.clock.Now(), Payload: payload})
}
