package session

import "time"

// Status represents the lifecycle status of a capture session.
type Status string

const (
	StatusActive   Status = "active"
	StatusReview   Status = "review"
	StatusComplete Status = "complete"
)

// Photo is a single captured image attached to a session. Immutable once
// attached, except the Starred flag.
type Photo struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	SourcePath  string    `json:"sourcePath"`
	SessionPath string    `json:"sessionPath,omitempty"`
	CaptureTime time.Time `json:"captureTime"`
	Starred     bool      `json:"starred"`
	SessionID   string    `json:"sessionId"`
}

// Session is one timed capture round under a pose. At most one session
// process-wide is not yet complete.
type Session struct {
	ID              string     `json:"id"`
	BookingID       string     `json:"bookingId,omitempty"`
	PoseLabel       string     `json:"poseLabel"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	Photos          []Photo    `json:"photos"`
	StarredPhotoIDs []string   `json:"starredPhotoIds"`
	MaxPhotos       int        `json:"maxPhotos"`
	Status          Status     `json:"status"`
}

// AtCapacity reports whether the session holds its maximum photo count.
func (s *Session) AtCapacity() bool {
	return len(s.Photos) >= s.MaxPhotos
}

// Starred reports whether the photo id is in the starred set.
func (s *Session) Starred(photoID string) bool {
	for _, id := range s.StarredPhotoIDs {
		if id == photoID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers never share mutable slices with the
// orchestrator's working state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	dup := *s
	dup.Photos = append([]Photo(nil), s.Photos...)
	dup.StarredPhotoIDs = append([]string(nil), s.StarredPhotoIDs...)
	if s.EndTime != nil {
		end := *s.EndTime
		dup.EndTime = &end
	}
	return &dup
}

// IngestedFile describes a stable file detected in the watch directory.
type IngestedFile struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	SourcePath  string    `json:"sourcePath"`
	CaptureTime time.Time `json:"captureTime"`
}

// PhotoAddedPayload is the photo-added event payload.
type PhotoAddedPayload struct {
	Session *Session `json:"session"`
	Photo   Photo    `json:"photo"`
}

// PhotoStarredPayload is the photo-starred event payload.
type PhotoStarredPayload struct {
	PhotoID string   `json:"photoId"`
	Starred bool     `json:"starred"`
	Session *Session `json:"session"`
}
