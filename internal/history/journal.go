// Package history records every published domain event in a SQLite journal,
// giving the studio a queryable activity feed that survives restarts.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/snapstudio/server/internal/domain/booking"
	"github.com/snapstudio/server/internal/domain/session"
	"github.com/snapstudio/server/internal/event"
)

// Entry is one journaled domain event.
type Entry struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	EntityID  string    `json:"entityId,omitempty"`
	Payload   string    `json:"payload,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListOptions filters journal queries.
type ListOptions struct {
	Type     string
	EntityID string
	Limit    int
}

// Journal is a SQLite-backed event log.
type Journal struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the journal database.
func Open(path string, logger *slog.Logger) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}

	schema := `
CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    type TEXT NOT NULL,
    entity_id TEXT,
    payload TEXT,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
CREATE INDEX IF NOT EXISTS idx_events_entity ON events(entity_id);
CREATE INDEX IF NOT EXISTS idx_events_created ON events(created_at);
`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error { return j.db.Close() }

// Record inserts one event. Implements event.Handler via HandleEvent; a
// failed insert is logged and dropped, since notification delivery must
// never fail the state change that produced it.
func (j *Journal) Record(ctx context.Context, evt event.Event) error {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return fmt.Errorf("encoding event payload: %w", err)
	}

	createdAt := evt.OccurredAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = j.db.ExecContext(ctx,
		`INSERT INTO events (type, entity_id, payload, created_at) VALUES (?, ?, ?, ?)`,
		string(evt.Type), entityID(evt), string(payload), createdAt,
	)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

// HandleEvent is the bus subscription entry point.
func (j *Journal) HandleEvent(evt event.Event) {
	if err := j.Record(context.Background(), evt); err != nil {
		j.logger.Error("failed to journal event", "type", evt.Type, "error", err)
	}
}

// List returns journal entries, newest first.
func (j *Journal) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	query := `SELECT id, type, entity_id, payload, created_at FROM events`
	var conditions []string
	var args []any

	if opts.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, opts.Type)
	}
	if opts.EntityID != "" {
		conditions = append(conditions, "entity_id = ?")
		args = append(args, opts.EntityID)
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY id DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var entity sql.NullString
		var payload sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Type, &entity, &payload, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		entry.EntityID = entity.String
		entry.Payload = payload.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating event rows: %w", err)
	}
	return entries, nil
}

// entityID pulls the owning entity id out of a known payload shape.
func entityID(evt event.Event) string {
	switch p := evt.Payload.(type) {
	case *session.Session:
		return p.ID
	case session.PhotoAddedPayload:
		if p.Session == nil {
			return ""
		}
		return p.Session.ID
	case session.PhotoStarredPayload:
		if p.Session == nil {
			return ""
		}
		return p.Session.ID
	case *booking.Booking:
		return p.ID
	case *booking.Summary:
		return p.BookingID
	default:
		return ""
	}
}
