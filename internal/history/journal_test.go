package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/snapstudio/server/internal/domain/booking"
	"github.com/snapstudio/server/internal/domain/session"
	"github.com/snapstudio/server/internal/event"
	"github.com/snapstudio/server/internal/history"
)

func openJournal(t *testing.T) *history.Journal {
	t.Helper()
	j, err := history.Open(filepath.Join(t.TempDir(), "history.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_RecordAndList(t *testing.T) {
	ctx := context.Background()
	j := openJournal(t)

	sess := &session.Session{ID: "sess-1", PoseLabel: "Studio", Status: session.StatusActive}
	require.NoError(t, j.Record(ctx, event.Event{
		Type:       event.SessionCreated,
		OccurredAt: time.Now(),
		Payload:    sess,
	}))
	require.NoError(t, j.Record(ctx, event.Event{
		Type:       event.BookingStarted,
		OccurredAt: time.Now(),
		Payload:    &booking.Booking{ID: "booking-1", ClientName: "Ada"},
	}))

	entries, err := j.List(ctx, history.ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	require.Equal(t, string(event.BookingStarted), entries[0].Type)
	require.Equal(t, "booking-1", entries[0].EntityID)
	require.Equal(t, string(event.SessionCreated), entries[1].Type)
	require.Equal(t, "sess-1", entries[1].EntityID)
	require.Contains(t, entries[1].Payload, `"poseLabel"`)
	require.False(t, entries[0].CreatedAt.IsZero())
}

func TestJournal_Filters(t *testing.T) {
	ctx := context.Background()
	j := openJournal(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, j.Record(ctx, event.Event{
			Type:    event.PhotoStarred,
			Payload: session.PhotoStarredPayload{PhotoID: "p1", Starred: true, Session: &session.Session{ID: "sess-1"}},
		}))
	}
	require.NoError(t, j.Record(ctx, event.Event{
		Type:    event.SessionCompleted,
		Payload: &session.Session{ID: "sess-1"},
	}))
	require.NoError(t, j.Record(ctx, event.Event{
		Type:    event.SessionCreated,
		Payload: &session.Session{ID: "sess-2"},
	}))

	byType, err := j.List(ctx, history.ListOptions{Type: string(event.PhotoStarred)})
	require.NoError(t, err)
	require.Len(t, byType, 3)
	require.Equal(t, "sess-1", byType[0].EntityID)

	// Starring is filed under the session, so an entity query returns the
	// session's whole activity trail.
	byEntity, err := j.List(ctx, history.ListOptions{EntityID: "sess-1"})
	require.NoError(t, err)
	require.Len(t, byEntity, 4)

	limited, err := j.List(ctx, history.ListOptions{Type: string(event.PhotoStarred), Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)
}

func TestJournal_HandleEventNeverPanics(t *testing.T) {
	j := openJournal(t)
	require.NotPanics(t, func() {
		j.HandleEvent(event.Event{Type: event.WatcherError, Payload: "disk detached"})
	})

	entries, err := j.List(context.Background(), history.ListOptions{Type: string(event.WatcherError)})
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestJournal_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	j, err := history.Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, j.Record(ctx, event.Event{Type: event.SessionCreated, Payload: &session.Session{ID: "a"}}))
	require.NoError(t, j.Close())

	reopened, err := history.Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.List(ctx, history.ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
