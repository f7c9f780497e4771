// Package history records admitted builds so they can be listed, inspected
// and archived after the request that ran them has returned.
package history

import (
	"context"
	"slices"
	"sync"

	"themegen/internal/domain"
)

const defaultListLimit = 50

// Store persists build records.
type Store interface {
	Save(ctx context.Context, b domain.Build) error
	Get(ctx context.Context, id string) (domain.Build, error)
	List(ctx context.Context, branch string, limit int) ([]domain.Build, error)
}

// MemoryStore keeps the most recent builds in process. It is used when no
// database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	capacity int
	order    []string
	builds   map[string]domain.Build
}

// NewMemoryStore keeps up to capacity builds; older ones are evicted first.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryStore{capacity: capacity, builds: make(map[string]domain.Build)}
}

func (m *MemoryStore) Save(ctx context.Context, b domain.Build) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.builds[b.ID]; !ok {
		m.order = append(m.order, b.ID)
	}
	m.builds[b.ID] = cloneBuild(b)
	for len(m.order) > m.capacity {
		delete(m.builds, m.order[0])
		m.order = m.order[1:]
	}
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (domain.Build, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.builds[id]
	if !ok {
		return domain.Build{}, domain.ErrNotFound
	}
	return cloneBuild(b), nil
}

// List returns builds newest first, optionally restricted to one branch.
func (m *MemoryStore) List(ctx context.Context, branch string, limit int) ([]domain.Build, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Build, 0, min(limit, len(m.order)))
	for _, id := range slices.Backward(m.order) {
		if len(out) == limit {
			break
		}
		b := m.builds[id]
		if branch != "" && b.Branch != branch {
			continue
		}
		out = append(out, cloneBuild(b))
	}
	return out, nil
}

func cloneBuild(b domain.Build) domain.Build {
	b.Platforms = slices.Clone(b.Platforms)
	if b.Result != nil {
		r := *b.Result
		r.Outcomes = slices.Clone(r.Outcomes)
		b.Result = &r
	}
	return b
}

var _ Store = (*MemoryStore)(nil)
