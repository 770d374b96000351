// Package pose holds the pose suggestions the booth offers when starting a
// capture session.
package pose

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrPoseNotFound indicates the pose id doesn't exist.
var ErrPoseNotFound = errors.New("pose not found")

// Library is an in-memory pose catalog: built-in defaults merged with an
// optional custom pose file, custom entries winning on id collisions.
type Library struct {
	mu    sync.RWMutex
	poses map[string]Pose
}

// NewLibrary builds the default catalog.
func NewLibrary() *Library {
	lib := &Library{poses: make(map[string]Pose, len(defaultPoses))}
	for _, p := range defaultPoses {
		lib.poses[p.ID] = p
	}
	return lib
}

// LoadCustom merges poses from a YAML file into the catalog. A missing file
// is not an error.
func (l *Library) LoadCustom(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading custom poses: %w", err)
	}

	var custom []Pose
	if err := yaml.Unmarshal(data, &custom); err != nil {
		return fmt.Errorf("parsing custom poses: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range custom {
		if p.ID == "" {
			continue
		}
		if p.Category == "" {
			p.Category = CategoryCustom
		}
		l.poses[p.ID] = p
	}
	return nil
}

// All returns every pose, ordered by id for stable output.
func (l *Library) All() []Pose {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Pose, 0, len(l.poses))
	for _, p := range l.poses {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get fetches a pose by id.
func (l *Library) Get(id string) (Pose, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.poses[id]
	if !ok {
		return Pose{}, ErrPoseNotFound
	}
	return p, nil
}

// ByCategory returns the poses in one category.
func (l *Library) ByCategory(c Category) []Pose {
	var out []Pose
	for _, p := range l.All() {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out
}

// Search matches poses by name or description, case-insensitively.
func (l *Library) Search(query string) []Pose {
	query = strings.ToLower(query)
	var out []Pose
	for _, p := range l.All() {
		if strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.Description), query) {
			out = append(out, p)
		}
	}
	return out
}

// Random picks any pose from the catalog.
func (l *Library) Random() Pose {
	all := l.All()
	return all[rand.Intn(len(all))]
}
