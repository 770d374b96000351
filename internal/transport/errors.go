package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/snapstudio/server/internal/domain/booking"
	"github.com/snapstudio/server/internal/domain/pose"
	"github.com/snapstudio/server/internal/domain/session"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeDomainError maps domain errors to protocol responses. Exclusivity
// conflicts get their own message shape so the operator can tell "already
// active" apart from a generic failure.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionActive),
		errors.Is(err, booking.ErrBookingActive):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, session.ErrSessionFull),
		errors.Is(err, booking.ErrInvalidState):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, session.ErrNoSession),
		errors.Is(err, session.ErrPhotoNotFound),
		errors.Is(err, booking.ErrBookingNotFound),
		errors.Is(err, pose.ErrPoseNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, session.ErrInvalidInput),
		errors.Is(err, booking.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(r *http.Request, into any) error {
	return json.NewDecoder(r.Body).Decode(into)
}
