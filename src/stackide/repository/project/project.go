package project

import (
	"context"
	"sort"
	"sync"

	"github.com/gofrs/uuid"
	tally "github.com/uber-go/tally"
	"github.com/uber/stackide-proxy/src/stackide/entity"
	"github.com/uber/stackide-proxy/src/stackide/internal/errors"
)

// Repository is the store of projects currently open in connected editors.
type Repository interface {
	Get(ctx context.Context, key entity.ProjectKey) (entity.Project, error)
	Set(ctx context.Context, p entity.Project) error
	Delete(ctx context.Context, key entity.ProjectKey) error
	// DeleteOwnedBy removes every project registered by the given editor connection and returns their keys.
	DeleteOwnedBy(ctx context.Context, owner uuid.UUID) ([]entity.ProjectKey, error)
	// Snapshot returns every project, ordered by key.
	Snapshot(ctx context.Context) ([]entity.Project, error)
	ProjectCount(ctx context.Context) (int, error)
}

type repository struct {
	mu       sync.Mutex
	memstore map[entity.ProjectKey]entity.Project
	stats    tally.Scope
}

// New returns a repository to a key-value Project data store.
func New(stats tally.Scope) Repository {
	return &repository{
		memstore: make(map[entity.ProjectKey]entity.Project),
		stats:    stats,
	}
}

// Get returns the Project associated with the given key.
func (r *repository) Get(ctx context.Context, key entity.ProjectKey) (entity.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.memstore[key]
	if !ok {
		return entity.Project{}, &errors.ProjectNotFoundError{Key: string(key)}
	}
	return clone(p), nil
}

// Set stores the Project under its key, replacing any previous one.
func (r *repository) Set(ctx context.Context, p entity.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.Key == "" {
		return errors.New("can't save project without key")
	}
	r.memstore[p.Key] = clone(p)
	r.updateGauge()
	return nil
}

// Delete removes the Project associated with the given key.
func (r *repository) Delete(ctx context.Context, key entity.ProjectKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.memstore, key)
	r.updateGauge()
	return nil
}

func (r *repository) DeleteOwnedBy(ctx context.Context, owner uuid.UUID) ([]entity.ProjectKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted []entity.ProjectKey
	for key, p := range r.memstore {
		if p.Owner == owner {
			delete(r.memstore, key)
			deleted = append(deleted, key)
		}
	}
	sort.Slice(deleted, func(i, j int) bool { return deleted[i] < deleted[j] })
	r.updateGauge()
	return deleted, nil
}

func (r *repository) Snapshot(ctx context.Context) ([]entity.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	projects := make([]entity.Project, 0, len(r.memstore))
	for _, p := range r.memstore {
		projects = append(projects, clone(p))
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Key < projects[j].Key })
	return projects, nil
}

// ProjectCount returns the total count of open projects.
func (r *repository) ProjectCount(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.memstore), nil
}

func (r *repository) updateGauge() {
	r.stats.Gauge("open_projects").Update(float64(len(r.memstore)))
}

func clone(p entity.Project) entity.Project {
	p.Folders = append([]string(nil), p.Folders...)
	return p
}
