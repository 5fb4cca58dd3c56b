package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/valyala/bytebufferpool"

	"github.com/courtline/courtline/internal/domain/snapshot"
)

// SnapshotRepository stores whole run snapshots as JSON payloads keyed by
// label. Snapshots are append-only at the run level; re-saving a label
// replaces only that label's payload.
type SnapshotRepository struct {
	db *sqlx.DB
}

func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Save(ctx context.Context, snap snapshot.Snapshot) error {
	if snap.Label == "" {
		return fmt.Errorf("snapshot label is required")
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot %s: %w", snap.Label, err)
	}

	const query = `
INSERT INTO snapshots (label, created_at, payload)
VALUES ($1, $2, $3)
ON CONFLICT (label)
DO UPDATE SET created_at = EXCLUDED.created_at, payload = EXCLUDED.payload`

	if _, err := r.db.ExecContext(ctx, query, snap.Label, snap.CreatedAt.UTC(), buf.Bytes()); err != nil {
		return fmt.Errorf("insert snapshot %s: %w", snap.Label, err)
	}
	return nil
}

func (r *SnapshotRepository) GetByLabel(ctx context.Context, label string) (snapshot.Snapshot, bool, error) {
	const query = `SELECT label, created_at, payload FROM snapshots WHERE label = $1`

	var model snapshotModel
	if err := r.db.GetContext(ctx, &model, query, label); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return snapshot.Snapshot{}, false, nil
		}
		return snapshot.Snapshot{}, false, fmt.Errorf("select snapshot %s: %w", label, err)
	}
	return decodeSnapshot(model)
}

func (r *SnapshotRepository) Latest(ctx context.Context) (snapshot.Snapshot, bool, error) {
	const query = `SELECT label, created_at, payload FROM snapshots ORDER BY created_at DESC, label DESC LIMIT 1`

	var model snapshotModel
	if err := r.db.GetContext(ctx, &model, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return snapshot.Snapshot{}, false, nil
		}
		return snapshot.Snapshot{}, false, fmt.Errorf("select latest snapshot: %w", err)
	}
	return decodeSnapshot(model)
}

func (r *SnapshotRepository) ListLabels(ctx context.Context) ([]string, error) {
	const query = `SELECT label FROM snapshots ORDER BY label ASC`

	labels := make([]string, 0)
	if err := r.db.SelectContext(ctx, &labels, query); err != nil {
		return nil, fmt.Errorf("list snapshot labels: %w", err)
	}
	return labels, nil
}

func decodeSnapshot(model snapshotModel) (snapshot.Snapshot, bool, error) {
	var snap snapshot.Snapshot
	if err := sonic.Unmarshal(model.Payload, &snap); err != nil {
		return snapshot.Snapshot{}, false, fmt.Errorf("decode snapshot %s: %w", model.Label, err)
	}
	return snap, true, nil
}
