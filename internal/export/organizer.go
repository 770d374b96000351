// Package export copies a session's starred photos into a dated delivery
// directory, with thumbnails and a session-info manifest.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/snapstudio/server/internal/domain/session"
)

// Options configures an organizer.
type Options struct {
	// CreateThumbnails writes a thumbnails/ subdirectory next to the
	// exported photos.
	CreateThumbnails bool
}

// Organizer lays out curated exports under an output directory.
type Organizer struct {
	outputDir string
	opts      Options
	logger    *slog.Logger
}

// NewOrganizer creates an organizer writing under outputDir.
func NewOrganizer(outputDir string, logger *slog.Logger, opts Options) *Organizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Organizer{outputDir: outputDir, opts: opts, logger: logger}
}

// sessionInfo is the manifest written alongside exported photos.
type sessionInfo struct {
	SessionID     string     `json:"sessionId"`
	PoseLabel     string     `json:"poseLabel"`
	StartTime     time.Time  `json:"startTime"`
	EndTime       *time.Time `json:"endTime,omitempty"`
	TotalPhotos   int        `json:"totalPhotos"`
	StarredPhotos int        `json:"starredPhotos"`
	ExportDate    time.Time  `json:"exportDate"`
}

// OrganizeStarred copies the session's starred photos into a new delivery
// directory and returns its path.
func (o *Organizer) OrganizeStarred(sess *session.Session) (string, error) {
	dir := filepath.Join(o.outputDir, exportDirName(sess))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	var thumbDir string
	if o.opts.CreateThumbnails {
		thumbDir = filepath.Join(dir, "thumbnails")
		if err := os.MkdirAll(thumbDir, 0o755); err != nil {
			return "", fmt.Errorf("creating thumbnail directory: %w", err)
		}
	}

	for _, photo := range sess.Photos {
		if !sess.Starred(photo.ID) {
			continue
		}
		src := photo.SessionPath
		if src == "" {
			src = photo.SourcePath
		}
		name := exportFilename(photo)
		dest := filepath.Join(dir, name)
		if err := copyFile(src, dest); err != nil {
			return "", fmt.Errorf("exporting %s: %w", photo.Filename, err)
		}
		if thumbDir != "" {
			thumbPath := filepath.Join(thumbDir, thumbName(name))
			if err := writeThumbnail(dest, thumbPath); err != nil {
				// A photo without a thumbnail is still delivered.
				o.logger.Warn("thumbnail generation failed", "photo", photo.Filename, "error", err)
			}
		}
	}

	info := sessionInfo{
		SessionID:     sess.ID,
		PoseLabel:     sess.PoseLabel,
		StartTime:     sess.StartTime,
		EndTime:       sess.EndTime,
		TotalPhotos:   len(sess.Photos),
		StarredPhotos: len(sess.StarredPhotoIDs),
		ExportDate:    time.Now(),
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding session info: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "session-info.json"), data, 0o644); err != nil {
		return "", fmt.Errorf("writing session info: %w", err)
	}

	o.logger.Info("exported starred photos", "session", sess.ID, "dir", dir, "count", len(sess.StarredPhotoIDs))
	return dir, nil
}

// CleanupOld removes export directories last modified before the cutoff and
// returns the number removed.
func (o *Organizer) CleanupOld(keep time.Duration) (int, error) {
	entries, err := os.ReadDir(o.outputDir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading output directory: %w", err)
	}

	cutoff := time.Now().Add(-keep)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.RemoveAll(filepath.Join(o.outputDir, entry.Name())); err != nil {
				return removed, fmt.Errorf("removing export directory: %w", err)
			}
			removed++
		}
	}
	return removed, nil
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9._-]+`)

// SanitizeFilename lowercases a name and collapses anything outside a safe
// character set to underscores.
func SanitizeFilename(name string) string {
	name = strings.ToLower(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	return strings.Trim(name, "_")
}

func exportDirName(sess *session.Session) string {
	date := sess.StartTime.Format("2006-01-02")
	label := SanitizeFilename(sess.PoseLabel)
	id := sess.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s_%s_%s", date, label, id)
}

func exportFilename(photo session.Photo) string {
	ext := filepath.Ext(photo.Filename)
	base := strings.TrimSuffix(photo.Filename, ext)
	return fmt.Sprintf("%s_%d%s", SanitizeFilename(base), photo.CaptureTime.UnixMilli(), ext)
}

func thumbName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "_thumb.jpg"
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
