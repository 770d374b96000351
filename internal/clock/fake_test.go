package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/snapstudio/server/internal/clock"
)

func TestFake_AdvanceFiresDueTimers(t *testing.T) {
	start := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	clk := clock.NewFake(start)

	var fired []string
	clk.AfterFunc(10*time.Minute, func() { fired = append(fired, "later") })
	clk.AfterFunc(5*time.Minute, func() { fired = append(fired, "sooner") })

	clk.Advance(time.Minute)
	require.Empty(t, fired)
	require.True(t, clk.Now().Equal(start.Add(time.Minute)))

	// Both come due inside one window and fire in deadline order.
	clk.Advance(time.Hour)
	require.Equal(t, []string{"sooner", "later"}, fired)
}

func TestFake_StoppedTimerDoesNotFire(t *testing.T) {
	clk := clock.NewFake(time.Now())

	fired := false
	timer := clk.AfterFunc(time.Minute, func() { fired = true })
	require.True(t, timer.Stop())
	require.False(t, timer.Stop())

	clk.Advance(time.Hour)
	require.False(t, fired)
}

func TestFake_TickerDeliversDueTicks(t *testing.T) {
	clk := clock.NewFake(time.Now())
	ticker := clk.NewTicker(time.Minute)
	defer ticker.Stop()

	clk.Advance(3*time.Minute + time.Second)

	for i := 0; i < 3; i++ {
		select {
		case <-ticker.C():
		default:
			t.Fatalf("missing tick %d", i)
		}
	}
	select {
	case <-ticker.C():
		t.Fatal("unexpected extra tick")
	default:
	}

	ticker.Stop()
	clk.Advance(time.Hour)
	select {
	case <-ticker.C():
		t.Fatal("tick delivered after stop")
	default:
	}
}

func TestSystem_ProvidesRealTime(t *testing.T) {
	clk := clock.System{}
	before := time.Now()
	now := clk.Now()
	require.False(t, now.Before(before))

	done := make(chan struct{})
	timer := clk.AfterFunc(time.Millisecond, func() { close(done) })
	defer timer.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}
