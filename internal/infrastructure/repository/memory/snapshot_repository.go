package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/courtline/courtline/internal/domain/snapshot"
)

// SnapshotRepository is the in-memory snapshot store used by tests and local
// runs without a database.
type SnapshotRepository struct {
	mu    sync.RWMutex
	items map[string]snapshot.Snapshot
	order []string
}

func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{items: make(map[string]snapshot.Snapshot)}
}

func (r *SnapshotRepository) Save(_ context.Context, snap snapshot.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[snap.Label]; !exists {
		r.order = append(r.order, snap.Label)
	}
	r.items[snap.Label] = snap
	return nil
}

func (r *SnapshotRepository) GetByLabel(_ context.Context, label string) (snapshot.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap, ok := r.items[label]
	return snap, ok, nil
}

func (r *SnapshotRepository) Latest(_ context.Context) (snapshot.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.order) == 0 {
		return snapshot.Snapshot{}, false, nil
	}

	latest := r.items[r.order[0]]
	for _, label := range r.order[1:] {
		if candidate := r.items[label]; candidate.CreatedAt.After(latest.CreatedAt) {
			latest = candidate
		}
	}
	return latest, true, nil
}

func (r *SnapshotRepository) ListLabels(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	labels := append([]string(nil), r.order...)
	sort.Strings(labels)
	return labels, nil
}
