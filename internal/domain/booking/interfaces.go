package booking

import (
	"context"

	"github.com/snapstudio/server/internal/domain/session"
)

// Repository provides persistence for booking snapshots.
type Repository interface {
	Save(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context) ([]Booking, error)
	FindActive(ctx context.Context) (*Booking, error)
}

// SessionReader loads session snapshots for summary computation. The booking
// orchestrator only ever reads sessions, it never mutates them.
type SessionReader interface {
	Get(ctx context.Context, id string) (*session.Session, error)
}
