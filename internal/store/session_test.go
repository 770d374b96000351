package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/snapstudio/server/internal/domain/session"
	"github.com/snapstudio/server/internal/repository"
	"github.com/snapstudio/server/internal/store"
)

func sampleSession(id string, status session.Status, start time.Time) *session.Session {
	end := start.Add(30 * time.Minute)
	sess := &session.Session{
		ID:        id,
		BookingID: "booking-1",
		PoseLabel: "Studio Portrait",
		StartTime: start,
		MaxPhotos: 9,
		Status:    status,
		Photos: []session.Photo{
			{
				ID:          "photo-1",
				Filename:    "IMG_0001.jpg",
				SourcePath:  "/incoming/IMG_0001.jpg",
				SessionPath: "/data/sessions/" + id + "/photos/IMG_0001.jpg",
				CaptureTime: start.Add(time.Minute),
				Starred:     true,
				SessionID:   id,
			},
		},
		StarredPhotoIDs: []string{"photo-1"},
	}
	if status == session.StatusComplete {
		sess.EndTime = &end
	}
	return sess
}

func TestSessionStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	st, err := store.NewSessionStore(t.TempDir())
	require.NoError(t, err)

	start := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	sess := sampleSession("abc", session.StatusComplete, start)
	require.NoError(t, st.Save(ctx, sess))

	got, err := st.Get(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, sess, got)
	require.True(t, got.StartTime.Equal(start))
	require.True(t, got.Photos[0].CaptureTime.Equal(start.Add(time.Minute)))
}

func TestSessionStore_WritesBothLayouts(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	st, err := store.NewSessionStore(dataDir)
	require.NoError(t, err)

	sess := sampleSession("abc", session.StatusActive, time.Now().UTC())
	require.NoError(t, st.Save(ctx, sess))

	canonical := filepath.Join(dataDir, "sessions", "abc", "session.json")
	legacy := filepath.Join(dataDir, "sessions", "session-abc.json")
	canonicalData, err := os.ReadFile(canonical)
	require.NoError(t, err)
	legacyData, err := os.ReadFile(legacy)
	require.NoError(t, err)
	require.Equal(t, canonicalData, legacyData)
}

func TestSessionStore_ReadsLegacyOnlyFiles(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	st, err := store.NewSessionStore(dataDir)
	require.NoError(t, err)

	sess := sampleSession("old", session.StatusComplete, time.Now().UTC())
	require.NoError(t, st.Save(ctx, sess))
	// Strip the canonical copy, as an install migrated from the flat layout
	// would look.
	require.NoError(t, os.RemoveAll(filepath.Join(dataDir, "sessions", "old")))

	got, err := st.Get(ctx, "old")
	require.NoError(t, err)
	require.Equal(t, "old", got.ID)

	list, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestSessionStore_GetMissing(t *testing.T) {
	st, err := store.NewSessionStore(t.TempDir())
	require.NoError(t, err)

	_, err = st.Get(context.Background(), "nope")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionStore_GetCorrupt(t *testing.T) {
	dataDir := t.TempDir()
	st, err := store.NewSessionStore(dataDir)
	require.NoError(t, err)

	dir := filepath.Join(dataDir, "sessions", "bad")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"), []byte("{not json"), 0o644))

	_, err = st.Get(context.Background(), "bad")
	require.ErrorIs(t, err, repository.ErrCorrupt)
}

func TestSessionStore_ListOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	st, err := store.NewSessionStore(t.TempDir())
	require.NoError(t, err)

	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	require.NoError(t, st.Save(ctx, sampleSession("first", session.StatusComplete, base)))
	require.NoError(t, st.Save(ctx, sampleSession("second", session.StatusComplete, base.Add(time.Hour))))

	list, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "second", list[0].ID)
	require.Equal(t, "first", list[1].ID)
}

func TestSessionStore_FindActiveAcrossRestart(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	st, err := store.NewSessionStore(dataDir)
	require.NoError(t, err)

	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	require.NoError(t, st.Save(ctx, sampleSession("done", session.StatusComplete, base)))
	require.NoError(t, st.Save(ctx, sampleSession("live", session.StatusActive, base.Add(time.Hour))))

	// A fresh store over the same directory stands in for a restart.
	reopened, err := store.NewSessionStore(dataDir)
	require.NoError(t, err)
	active, err := reopened.FindActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	require.Equal(t, "live", active.ID)
}

func TestSessionStore_Delete(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	st, err := store.NewSessionStore(dataDir)
	require.NoError(t, err)

	require.NoError(t, st.Save(ctx, sampleSession("gone", session.StatusComplete, time.Now().UTC())))
	require.NoError(t, st.Delete(ctx, "gone"))

	_, err = st.Get(ctx, "gone")
	require.ErrorIs(t, err, repository.ErrNotFound)

	// Deleting again is harmless.
	require.NoError(t, st.Delete(ctx, "gone"))
}

func TestSessionStore_CopyIntoSession(t *testing.T) {
	dataDir := t.TempDir()
	st, err := store.NewSessionStore(dataDir)
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "IMG_0001.jpg")
	require.NoError(t, os.WriteFile(src, []byte("jpegbytes"), 0o644))

	dest, err := st.CopyIntoSession("abc", src, "IMG_0001.jpg")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dataDir, "sessions", "abc", "photos", "IMG_0001.jpg"), dest)

	copied, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, []byte("jpegbytes"), copied)
}
