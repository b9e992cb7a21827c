package persistence

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// recentCap bounds the recent-projects history length.
const recentCap = 10

// RecentProjects tracks the most recently loaded project roots in a plain
// newline-delimited file, most recent first.
type RecentProjects struct {
	path string
	mu   sync.Mutex
}

// NewRecentProjects builds a history backed by the given file.
func NewRecentProjects(path string) *RecentProjects {
	if path == "" {
		path = filepath.Join(DefaultConfigDir(), "history")
	}
	return &RecentProjects{path: path}
}

// List returns remembered roots that still exist as directories.
func (r *RecentProjects) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read()
}

// Add moves the path to the front of the history, dropping duplicates and
// trimming to the cap. Write failures are returned but callers typically
// treat them as best effort.
func (r *RecentProjects) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := []string{abs}
	for _, p := range r.read() {
		if p != abs {
			entries = append(entries, p)
		}
	}
	if len(entries) > recentCap {
		entries = entries[:recentCap]
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(r.path, []byte(strings.Join(entries, "\n")+"\n"), 0o644)
}

// Clear forgets the history.
func (r *RecentProjects) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := os.Remove(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (r *RecentProjects) read() []string {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if info, err := os.Stat(line); err == nil && info.IsDir() {
			out = append(out, line)
		}
	}
	return out
}
