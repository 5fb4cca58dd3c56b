package snapshot

import "context"

// Repository persists run snapshots. Implementations must treat snapshots as
// append-only: saving an existing label replaces that label's payload but
// never mutates another snapshot.
type Repository interface {
	Save(ctx context.Context, snap Snapshot) error
	GetByLabel(ctx context.Context, label string) (Snapshot, bool, error)
	Latest(ctx context.Context) (Snapshot, bool, error)
	ListLabels(ctx context.Context) ([]string, error)
}
