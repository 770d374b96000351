package session

import "errors"

var (
	// ErrSessionActive indicates a session is already in progress.
	ErrSessionActive = errors.New("a session is already active, complete it first")
	// ErrNoSession indicates no session is currently in progress.
	ErrNoSession = errors.New("no active session")
	// ErrSessionNotFound indicates the session doesn't exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrPhotoNotFound indicates the photo id is not in the current session.
	ErrPhotoNotFound = errors.New("photo not found in current session")
	// ErrSessionFull indicates the session already holds its maximum photos.
	ErrSessionFull = errors.New("session already has maximum photos")
	// ErrInvalidTransition indicates an illegal status change.
	ErrInvalidTransition = errors.New("invalid session status transition")
	// ErrInvalidInput indicates invalid session input.
	ErrInvalidInput = errors.New("invalid session input")
)
