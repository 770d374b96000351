package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/snapstudio/server/internal/clock"
	"github.com/snapstudio/server/internal/config"
	"github.com/snapstudio/server/internal/domain/booking"
	"github.com/snapstudio/server/internal/domain/pose"
	"github.com/snapstudio/server/internal/domain/session"
	"github.com/snapstudio/server/internal/event"
	"github.com/snapstudio/server/internal/export"
	"github.com/snapstudio/server/internal/history"
	"github.com/snapstudio/server/internal/store"
	"github.com/snapstudio/server/internal/transport"
	"github.com/snapstudio/server/internal/watch"
	"github.com/snapstudio/server/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	for _, dir := range []string{cfg.Studio.DataDir, cfg.Studio.WatchDir, cfg.Studio.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to prepare directory", "dir", dir, "error", err)
			os.Exit(1)
		}
	}

	sessionStore, err := store.NewSessionStore(cfg.Studio.DataDir)
	if err != nil {
		logger.Error("failed to open session store", "error", err)
		os.Exit(1)
	}
	bookingStore, err := store.NewBookingStore(cfg.Studio.DataDir)
	if err != nil {
		logger.Error("failed to open booking store", "error", err)
		os.Exit(1)
	}

	journal, err := history.Open(cfg.Studio.HistoryDBPath(), logger)
	if err != nil {
		logger.Error("failed to open history journal", "error", err)
		os.Exit(1)
	}
	defer journal.Close()

	dispatcher := event.NewDispatcher(logger)
	hub := websocket.NewHub(logger)
	go hub.Run()
	dispatcher.Subscribe(hub.HandleEvent)
	dispatcher.Subscribe(journal.HandleEvent)

	clk := clock.System{}
	sessionSvc := session.NewService(sessionStore, sessionStore, dispatcher, clk, logger, session.Options{
		MaxSessionTime:   time.Duration(cfg.Studio.MaxSessionTime),
		DefaultMaxPhotos: cfg.Studio.MaxPhotosPerSession,
	})
	defer sessionSvc.Close()

	bookingSvc := booking.NewService(bookingStore, sessionSvc, dispatcher, clk, logger, booking.Options{
		OvertimePollInterval: time.Duration(cfg.Studio.OvertimePollInterval),
	})

	// New sessions started under a booking get linked to it here, off the
	// session-created event, keeping the orchestrators decoupled.
	dispatcher.Subscribe(func(evt event.Event) {
		if evt.Type != event.SessionCreated {
			return
		}
		sess, ok := evt.Payload.(*session.Session)
		if !ok || sess.BookingID == "" {
			return
		}
		if _, err := bookingSvc.AttachSession(context.Background(), sess.BookingID, sess.ID); err != nil {
			logger.Error("failed to attach session to booking", "booking", sess.BookingID, "session", sess.ID, "error", err)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sessionSvc.Restore(ctx); err != nil {
		logger.Error("session restore failed", "error", err)
		os.Exit(1)
	}
	if err := bookingSvc.Restore(ctx); err != nil {
		logger.Error("booking restore failed", "error", err)
		os.Exit(1)
	}

	go bookingSvc.WatchOvertime(ctx)

	monitor := watch.NewMonitor(cfg.Studio.WatchDir, logger, watch.Options{
		StabilityThreshold: time.Duration(cfg.Watch.StabilityThreshold),
		PollInterval:       time.Duration(cfg.Watch.PollInterval),
	})
	if err := monitor.Start(); err != nil {
		logger.Error("failed to start photo monitor", "error", err)
		os.Exit(1)
	}
	defer monitor.Stop()
	go drainMonitor(ctx, monitor, sessionSvc, dispatcher, logger)

	poseLib := pose.NewLibrary()
	if cfg.Studio.PosesPath != "" {
		if err := poseLib.LoadCustom(cfg.Studio.PosesPath); err != nil {
			logger.Warn("failed to load custom poses", "path", cfg.Studio.PosesPath, "error", err)
		}
	}

	organizer := export.NewOrganizer(cfg.Studio.OutputDir, logger, export.Options{CreateThumbnails: true})

	router := transport.NewServer(sessionSvc, bookingSvc, poseLib, organizer, journal, hub, logger)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer, cancel)
}

// drainMonitor feeds stable ingested files into the session orchestrator.
// The monitor's channel is the queue between device speed and persistence
// speed; attach failures are logged, never retried, since the file stays in
// the watch directory.
func drainMonitor(ctx context.Context, monitor *watch.Monitor, sessions *session.Service, bus event.Bus, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case file, ok := <-monitor.Photos():
			if !ok {
				return
			}
			if err := sessions.AttachPhoto(ctx, file); err != nil {
				logger.Error("failed to attach photo", "file", file.Filename, "error", err)
			}
		case err, ok := <-monitor.Errors():
			if !ok {
				return
			}
			bus.Publish(event.Event{
				Type:       event.WatcherError,
				OccurredAt: time.Now(),
				Payload:    map[string]string{"error": err.Error()},
			})
		}
	}
}

func waitForShutdown(logger *slog.Logger, server *http.Server, cancel context.CancelFunc) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	cancel()

	ctx, cancelTimeout := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelTimeout()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
