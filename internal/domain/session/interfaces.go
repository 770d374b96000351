package session

import "context"

// Repository provides persistence for session snapshots.
type Repository interface {
	Save(ctx context.Context, sess *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	List(ctx context.Context) ([]Session, error)
	Delete(ctx context.Context, id string) error
	FindActive(ctx context.Context) (*Session, error)
}

// FileStore copies ingested photos into session-scoped storage.
type FileStore interface {
	// CopyIntoSession copies the source file into the session's photo
	// directory and returns the destination path.
	CopyIntoSession(sessionID, sourcePath, filename string) (string, error)
	// EnsureSessionDir creates the session's photo directory.
	EnsureSessionDir(sessionID string) error
}
