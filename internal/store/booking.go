package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/snapstudio/server/internal/domain/booking"
	"github.com/snapstudio/server/internal/repository"
)

// BookingStore persists all bookings as a single JSON array, rewritten in
// full on every mutation.
type BookingStore struct {
	path string // <data>/bookings.json
	mu   sync.Mutex
}

// NewBookingStore creates the data directory and returns a store over
// bookings.json inside it.
func NewBookingStore(dataDir string) (*BookingStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &BookingStore{path: filepath.Join(dataDir, "bookings.json")}, nil
}

// Save upserts a booking into the array.
func (s *BookingStore) Save(_ context.Context, b *booking.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookings, err := s.readAll()
	if err != nil {
		return err
	}

	replaced := false
	for i := range bookings {
		if bookings[i].ID == b.ID {
			bookings[i] = *b.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		bookings = append(bookings, *b.Clone())
	}

	return s.writeAll(bookings)
}

// Get loads a booking by id.
func (s *BookingStore) Get(_ context.Context, id string) (*booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookings, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		if bookings[i].ID == id {
			return bookings[i].Clone(), nil
		}
	}
	return nil, repository.ErrNotFound
}

// List returns every persisted booking.
func (s *BookingStore) List(_ context.Context) ([]booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

// FindActive returns the first booking with active status, or nil.
func (s *BookingStore) FindActive(_ context.Context) (*booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookings, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		if bookings[i].Status == booking.StatusActive {
			return bookings[i].Clone(), nil
		}
	}
	return nil, nil
}

func (s *BookingStore) readAll() ([]booking.Booking, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []booking.Booking{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading bookings file: %w", err)
	}

	var bookings []booking.Booking
	if err := json.Unmarshal(data, &bookings); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", repository.ErrCorrupt, s.path, err)
	}
	return bookings, nil
}

func (s *BookingStore) writeAll(bookings []booking.Booking) error {
	data, err := json.MarshalIndent(bookings, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding bookings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing bookings file: %w", err)
	}
	return nil
}
