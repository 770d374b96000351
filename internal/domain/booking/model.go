package booking

import (
	"time"

	"github.com/snapstudio/server/internal/domain/session"
)

// Status represents the lifecycle status of a booking.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// PricePackage describes the package a client booked.
type PricePackage struct {
	Name            string  `json:"name"`
	DurationMinutes int     `json:"durationMinutes"`
	Price           float64 `json:"price"`
}

// Booking is a timed studio engagement owning zero or more capture sessions
// by id. At most one booking process-wide is active.
type Booking struct {
	ID                 string        `json:"id"`
	ClientName         string        `json:"clientName"`
	Label              string        `json:"label,omitempty"`
	ScheduledStart     time.Time     `json:"scheduledStart"`
	ScheduledEnd       time.Time     `json:"scheduledEnd"`
	DurationMinutes    int           `json:"durationMinutes"`
	Status             Status        `json:"status"`
	SessionIDs         []string      `json:"sessionIds"`
	TotalPhotos        int           `json:"totalPhotos"`
	TotalStarredPhotos int           `json:"totalStarredPhotos"`
	CreatedAt          time.Time     `json:"createdAt"`
	ActivatedAt        *time.Time    `json:"activatedAt,omitempty"`
	CompletedAt        *time.Time    `json:"completedAt,omitempty"`
	Notes              string        `json:"notes,omitempty"`
	PricePackage       *PricePackage `json:"pricePackage,omitempty"`
}

// HasSession reports whether the session id is already attached.
func (b *Booking) HasSession(sessionID string) bool {
	for _, id := range b.SessionIDs {
		if id == sessionID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the booking.
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	dup := *b
	dup.SessionIDs = append([]string(nil), b.SessionIDs...)
	if b.ActivatedAt != nil {
		at := *b.ActivatedAt
		dup.ActivatedAt = &at
	}
	if b.CompletedAt != nil {
		at := *b.CompletedAt
		dup.CompletedAt = &at
	}
	if b.PricePackage != nil {
		pkg := *b.PricePackage
		dup.PricePackage = &pkg
	}
	return &dup
}

// Duration holds scheduled versus actual booking length in minutes.
type Duration struct {
	ScheduledMinutes int `json:"scheduled"`
	ActualMinutes    int `json:"actual"`
}

// Summary aggregates a completed booking. Derived on demand, never persisted.
type Summary struct {
	BookingID          string            `json:"bookingId"`
	TotalSessions      int               `json:"totalSessions"`
	TotalPhotos        int               `json:"totalPhotos"`
	TotalStarredPhotos int               `json:"totalStarredPhotos"`
	Sessions           []session.Session `json:"sessions"`
	Duration           Duration          `json:"duration"`
}
