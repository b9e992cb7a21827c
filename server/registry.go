// Package server exposes scan snapshots over HTTP and owns the mutable
// service state around the pure scan pipeline: which projects are loaded,
// which one is current, and their chat transcripts.
package server

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lexcodex/cartograph/persistence"
	"github.com/lexcodex/cartograph/scanner"
)

// MaxProjects bounds how many projects may be loaded at once.
const MaxProjects = 2

var (
	// ErrProjectLimit is returned when loading would exceed MaxProjects.
	ErrProjectLimit = fmt.Errorf("maximum %d projects allowed, close one first", MaxProjects)
	// ErrNoProject is returned when an operation needs a loaded project.
	ErrNoProject = errors.New("no project loaded")
)

// Project is one loaded codebase and its latest scan snapshot.
type Project struct {
	ID   string
	Root string
	Name string
	Scan *scanner.ScanResult
}

// ProjectSummary is the list-view shape of a loaded project.
type ProjectSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Root      string `json:"root"`
	Health    int    `json:"health"`
	FileCount int    `json:"file_count"`
	IsCurrent bool   `json:"is_current"`
}

// Registry holds the loaded projects and the current-project pointer. The
// scan pipeline itself stays a pure function; this is the one place that
// mutates service state. A rescan is last-writer-wins: the scan runs outside
// the lock and the snapshot that finishes last is the one stored.
type Registry struct {
	mu       sync.RWMutex
	projects map[string]*Project
	current  string
	recent   *persistence.RecentProjects
}

// NewRegistry builds an empty registry. recent may be nil to skip history
// tracking.
func NewRegistry(recent *persistence.RecentProjects) *Registry {
	return &Registry{
		projects: make(map[string]*Project),
		recent:   recent,
	}
}

// Load scans the directory at path, registers it, and makes it current.
// Reloading an already-registered root rescans it in place.
func (r *Registry) Load(ctx context.Context, path string) (*Project, error) {
	cleaned := strings.TrimSpace(path)
	cleaned = strings.Trim(cleaned, `"'`)
	abs, err := filepath.Abs(cleaned)
	if err != nil {
		return nil, err
	}
	id := scanner.ProjectID(abs)

	// Fast-fail before the scan; the authoritative check happens again under
	// the write lock below, since another Load may land in between.
	r.mu.RLock()
	_, known := r.projects[id]
	count := len(r.projects)
	r.mu.RUnlock()
	if !known && count >= MaxProjects {
		return nil, ErrProjectLimit
	}

	result, err := scanner.Scan(ctx, abs, id)
	if err != nil {
		return nil, err
	}

	project := &Project{
		ID:   id,
		Root: result.Metadata.ProjectRoot,
		Name: result.Metadata.ProjectName,
		Scan: result,
	}
	r.mu.Lock()
	if _, ok := r.projects[id]; !ok && len(r.projects) >= MaxProjects {
		r.mu.Unlock()
		return nil, ErrProjectLimit
	}
	r.projects[id] = project
	r.current = id
	r.mu.Unlock()

	if r.recent != nil {
		_ = r.recent.Add(abs)
	}
	return project, nil
}

// Rescan rebuilds the snapshot for the given project (or the current one
// when id is empty). The previous snapshot is replaced wholesale.
func (r *Registry) Rescan(ctx context.Context, id string) (*scanner.ScanResult, error) {
	project, ok := r.lookup(id)
	if !ok {
		return nil, ErrNoProject
	}
	result, err := scanner.Scan(ctx, project.Root, project.ID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	if p, still := r.projects[project.ID]; still {
		p.Scan = result
	}
	r.mu.Unlock()
	return result, nil
}

// Get returns the project with the given id, or the current one when id is
// empty.
func (r *Registry) Get(id string) (*Project, bool) {
	return r.lookup(id)
}

// Current returns the active project.
func (r *Registry) Current() (*Project, bool) {
	return r.lookup("")
}

// Activate switches the current-project pointer.
func (r *Registry) Activate(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[id]; !ok {
		return ErrNoProject
	}
	r.current = id
	return nil
}

// Unload forgets a project. If it was current, an arbitrary remaining
// project becomes current.
func (r *Registry) Unload(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.projects, id)
	if r.current == id {
		r.current = ""
		for pid := range r.projects {
			r.current = pid
			break
		}
	}
}

// List returns summaries of all loaded projects.
func (r *Registry) List() []ProjectSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ProjectSummary, 0, len(r.projects))
	for id, p := range r.projects {
		out = append(out, ProjectSummary{
			ID:        id,
			Name:      p.Name,
			Root:      p.Root,
			Health:    p.Scan.Metadata.HealthScore,
			FileCount: len(p.Scan.Nodes),
			IsCurrent: id == r.current,
		})
	}
	return out
}

// RecentProjects lists remembered roots, newest first.
func (r *Registry) RecentProjects() []string {
	if r.recent == nil {
		return nil
	}
	return r.recent.List()
}

func (r *Registry) lookup(id string) (*Project, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id == "" {
		id = r.current
	}
	if id == "" {
		return nil, false
	}
	p, ok := r.projects[id]
	return p, ok
}
