// Package event defines the domain events the orchestrators publish and the
// fan-out bus that delivers them to subscribers (websocket hub, history
// journal, booking linkage).
package event

import (
	"log/slog"
	"sync"
	"time"
)

// Type names a domain event.
type Type string

const (
	SessionCreated   Type = "session-created"
	SessionUpdated   Type = "session-updated"
	SessionCompleted Type = "session-completed"
	SessionTimeout   Type = "session-timeout"
	PhotoAdded       Type = "photo-added"
	PhotoStarred     Type = "photo-starred"
	BookingStarted   Type = "booking-started"
	BookingUpdated   Type = "booking-updated"
	BookingCompleted Type = "booking-completed"
	BookingOvertime  Type = "booking-overtime"
	WatcherError     Type = "watcher-error"
)

// Event carries an entity snapshot or summary to subscribers.
type Event struct {
	Type       Type      `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload,omitempty"`
}

// Bus accepts published events. Publishing is fire-and-forget: delivery
// failure must never fail the state transition that produced the event.
type Bus interface {
	Publish(evt Event)
}

// Handler consumes a published event.
type Handler func(evt Event)

// Dispatcher fans events out to registered handlers, in registration order.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers []Handler
	logger   *slog.Logger
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{logger: logger}
}

// Subscribe registers a handler for all subsequent events.
func (d *Dispatcher) Subscribe(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, h)
}

// Publish delivers evt to every handler. A panicking handler is logged and
// skipped so one bad subscriber cannot take down the publisher.
func (d *Dispatcher) Publish(evt Event) {
	d.mu.RLock()
	handlers := make([]Handler, len(d.handlers))
	copy(handlers, d.handlers)
	d.mu.RUnlock()

	for _, h := range handlers {
		d.deliver(h, evt)
	}
}

func (d *Dispatcher) deliver(h Handler, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panicked", "type", evt.Type, "panic", r)
		}
	}()
	h(evt)
}

// Nop is a Bus that discards every event. Useful in tests.
type Nop struct{}

func (Nop) Publish(Event) {}
