package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/snapstudio/server/internal/domain/booking"
	"github.com/snapstudio/server/internal/repository"
	"github.com/snapstudio/server/internal/store"
)

func sampleBooking(id string, status booking.Status, created time.Time) *booking.Booking {
	activated := created.Add(5 * time.Minute)
	b := &booking.Booking{
		ID:              id,
		ClientName:      "Ada",
		Label:           "Family shoot",
		ScheduledStart:  created,
		ScheduledEnd:    created.Add(time.Hour),
		DurationMinutes: 60,
		Status:          status,
		SessionIDs:      []string{"sess-1"},
		CreatedAt:       created,
		Notes:           "bring props",
		PricePackage: &booking.PricePackage{
			Name:            "standard",
			DurationMinutes: 60,
			Price:           149.99,
		},
	}
	if status == booking.StatusActive || status == booking.StatusCompleted {
		b.ActivatedAt = &activated
	}
	return b
}

func TestBookingStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	st, err := store.NewBookingStore(t.TempDir())
	require.NoError(t, err)

	created := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	b := sampleBooking("booking-1", booking.StatusActive, created)
	require.NoError(t, st.Save(ctx, b))

	got, err := st.Get(ctx, "booking-1")
	require.NoError(t, err)
	require.Equal(t, b, got)
}

func TestBookingStore_SaveUpserts(t *testing.T) {
	ctx := context.Background()
	st, err := store.NewBookingStore(t.TempDir())
	require.NoError(t, err)

	created := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	b := sampleBooking("booking-1", booking.StatusScheduled, created)
	require.NoError(t, st.Save(ctx, b))
	require.NoError(t, st.Save(ctx, sampleBooking("booking-2", booking.StatusScheduled, created.Add(time.Hour))))

	b.Status = booking.StatusCancelled
	require.NoError(t, st.Save(ctx, b))

	list, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	got, err := st.Get(ctx, "booking-1")
	require.NoError(t, err)
	require.Equal(t, booking.StatusCancelled, got.Status)
}

func TestBookingStore_EmptyFile(t *testing.T) {
	ctx := context.Background()
	st, err := store.NewBookingStore(t.TempDir())
	require.NoError(t, err)

	list, err := st.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	_, err = st.Get(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)

	active, err := st.FindActive(ctx)
	require.NoError(t, err)
	require.Nil(t, active)
}

func TestBookingStore_FindActive(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	st, err := store.NewBookingStore(dataDir)
	require.NoError(t, err)

	created := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	require.NoError(t, st.Save(ctx, sampleBooking("booking-1", booking.StatusCompleted, created)))
	require.NoError(t, st.Save(ctx, sampleBooking("booking-2", booking.StatusActive, created.Add(time.Hour))))

	reopened, err := store.NewBookingStore(dataDir)
	require.NoError(t, err)
	active, err := reopened.FindActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	require.Equal(t, "booking-2", active.ID)
}

func TestBookingStore_CorruptFile(t *testing.T) {
	dataDir := t.TempDir()
	st, err := store.NewBookingStore(dataDir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "bookings.json"), []byte("[oops"), 0o644))

	_, err = st.List(context.Background())
	require.ErrorIs(t, err, repository.ErrCorrupt)
}
