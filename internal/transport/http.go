// Package transport exposes the booth engine over an HTTP JSON API plus a
// WebSocket push channel. It owns the mapping from domain errors to status
// codes; the orchestrators know nothing about HTTP.
package transport

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/snapstudio/server/internal/domain/booking"
	"github.com/snapstudio/server/internal/domain/pose"
	"github.com/snapstudio/server/internal/domain/session"
	"github.com/snapstudio/server/internal/history"
)

// Server wires HTTP handlers over the domain services.
type Server struct {
	sessions  *session.Service
	bookings  *booking.Service
	poses     *pose.Library
	organizer Organizer
	journal   *history.Journal
	logger    *slog.Logger
}

// Organizer exports a session's starred photos.
type Organizer interface {
	OrganizeStarred(sess *session.Session) (string, error)
}

// NewServer builds the API router. The hub handler serves /ws; pass nil to
// skip registering it (tests).
func NewServer(sessions *session.Service, bookings *booking.Service, poses *pose.Library, organizer Organizer, journal *history.Journal, hub http.Handler, logger *slog.Logger) *http.ServeMux {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{
		sessions:  sessions,
		bookings:  bookings,
		poses:     poses,
		organizer: organizer,
		journal:   journal,
		logger:    logger,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/sessions", srv.handleStartSession)
	mux.HandleFunc("GET /api/sessions", srv.handleListSessions)
	mux.HandleFunc("GET /api/sessions/current", srv.handleCurrentSession)
	mux.HandleFunc("POST /api/sessions/current/status", srv.handleSessionStatus)
	mux.HandleFunc("POST /api/sessions/current/complete", srv.handleCompleteSession)
	mux.HandleFunc("POST /api/sessions/current/photos/{photoID}/star", srv.handleStarPhoto)
	mux.HandleFunc("GET /api/sessions/{id}", srv.handleGetSession)

	mux.HandleFunc("POST /api/bookings", srv.handleCreateBooking)
	mux.HandleFunc("GET /api/bookings", srv.handleListBookings)
	mux.HandleFunc("GET /api/bookings/current", srv.handleCurrentBooking)
	mux.HandleFunc("GET /api/bookings/{id}", srv.handleGetBooking)
	mux.HandleFunc("POST /api/bookings/{id}/start", srv.handleStartBooking)
	mux.HandleFunc("POST /api/bookings/{id}/complete", srv.handleCompleteBooking)
	mux.HandleFunc("POST /api/bookings/{id}/cancel", srv.handleCancelBooking)

	mux.HandleFunc("GET /api/poses", srv.handleListPoses)
	mux.HandleFunc("POST /api/export/current", srv.handleExportCurrent)
	mux.HandleFunc("GET /api/history", srv.handleHistory)
	mux.HandleFunc("GET /api/health", srv.handleHealth)

	if hub != nil {
		mux.Handle("GET /ws", hub)
	}

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type startSessionRequest struct {
	PoseID    string `json:"poseId"`
	PoseLabel string `json:"poseLabel"`
	MaxPhotos int    `json:"maxPhotos"`
	BookingID string `json:"bookingId"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	label := req.PoseLabel
	if req.PoseID != "" {
		p, err := s.poses.Get(req.PoseID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		label = p.Name
	}

	sess, err := s.sessions.Start(r.Context(), session.StartRequest{
		PoseLabel: label,
		MaxPhotos: req.MaxPhotos,
		BookingID: req.BookingID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if bookingID := r.URL.Query().Get("bookingId"); bookingID != "" {
		sessions, err := s.sessions.ListByBooking(r.Context(), bookingID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sessions)
		return
	}

	sessions, err := s.sessions.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleCurrentSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.sessions.Current()
	if sess == nil {
		writeJSON(w, http.StatusOK, map[string]any{"session": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": sess})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

type sessionStatusRequest struct {
	Status session.Status `json:"status"`
}

func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	var req sessionStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	current := s.sessions.Current()
	if current == nil {
		writeDomainError(w, session.ErrNoSession)
		return
	}
	sess, err := s.sessions.Transition(r.Context(), current.ID, req.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Complete(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

type starRequest struct {
	Starred bool `json:"starred"`
}

func (s *Server) handleStarPhoto(w http.ResponseWriter, r *http.Request) {
	var req starRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := s.sessions.SetStarred(r.Context(), r.PathValue("photoID"), req.Starred); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"starred": req.Starred})
}

type createBookingRequest struct {
	ClientName      string                `json:"clientName"`
	Label           string                `json:"label"`
	DurationMinutes int                   `json:"durationMinutes"`
	ScheduledStart  *time.Time            `json:"scheduledStart"`
	Notes           string                `json:"notes"`
	PricePackage    *booking.PricePackage `json:"pricePackage"`
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	createReq := booking.CreateRequest{
		ClientName:      req.ClientName,
		Label:           req.Label,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		PricePackage:    req.PricePackage,
	}
	if req.ScheduledStart != nil {
		createReq.ScheduledStart = *req.ScheduledStart
	}

	b, err := s.bookings.Create(r.Context(), createReq)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.bookings.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *Server) handleCurrentBooking(w http.ResponseWriter, _ *http.Request) {
	b := s.bookings.Current()
	if b == nil {
		writeJSON(w, http.StatusOK, map[string]any{"booking": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"booking":          b,
		"remainingMinutes": s.bookings.RemainingMinutes(),
	})
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := s.bookings.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleStartBooking(w http.ResponseWriter, r *http.Request) {
	b, err := s.bookings.Activate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleCompleteBooking enforces the caller contract the orchestrator
// documents: a booking cannot complete while a capture session is still in
// flight.
func (s *Server) handleCompleteBooking(w http.ResponseWriter, r *http.Request) {
	if current := s.sessions.Current(); current != nil && current.Status != session.StatusComplete {
		writeJSON(w, http.StatusConflict, errorResponse{
			Error: "complete the active session before completing the booking",
		})
		return
	}

	summary, err := s.bookings.Complete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	b, err := s.bookings.Cancel(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleListPoses(w http.ResponseWriter, r *http.Request) {
	if category := r.URL.Query().Get("category"); category != "" {
		writeJSON(w, http.StatusOK, s.poses.ByCategory(pose.Category(category)))
		return
	}
	if query := r.URL.Query().Get("q"); query != "" {
		writeJSON(w, http.StatusOK, s.poses.Search(query))
		return
	}
	writeJSON(w, http.StatusOK, s.poses.All())
}

func (s *Server) handleExportCurrent(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Current()
	if sess == nil {
		writeDomainError(w, session.ErrNoSession)
		return
	}
	dir, err := s.organizer.OrganizeStarred(sess)
	if err != nil {
		s.logger.Error("export failed", "session", sess.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "export failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"outputDir": dir})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	opts := history.ListOptions{
		Type:     r.URL.Query().Get("type"),
		EntityID: r.URL.Query().Get("entityId"),
		Limit:    50,
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
		opts.Limit = limit
	}

	entries, err := s.journal.List(r.Context(), opts)
	if err != nil {
		s.logger.Error("history query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "history unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
