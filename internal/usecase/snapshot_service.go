package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/courtline/courtline/internal/domain/snapshot"
	"github.com/courtline/courtline/internal/platform/logging"
)

// SnapshotService is the read side of the snapshot store.
type SnapshotService struct {
	snapshots snapshot.Repository
	logger    *logging.Logger
}

func NewSnapshotService(snapshots snapshot.Repository, logger *logging.Logger) *SnapshotService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SnapshotService{snapshots: snapshots, logger: logger}
}

func (s *SnapshotService) GetByLabel(ctx context.Context, label string) (snapshot.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotService.GetByLabel")
	defer span.End()

	label = strings.TrimSpace(label)
	if label == "" {
		return snapshot.Snapshot{}, fmt.Errorf("%w: snapshot label is required", ErrInvalidInput)
	}
	if s.snapshots == nil {
		return snapshot.Snapshot{}, fmt.Errorf("%w: snapshot store is not configured", ErrDependencyUnavailable)
	}

	snap, exists, err := s.snapshots.GetByLabel(ctx, label)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("get snapshot %s: %w", label, err)
	}
	if !exists {
		return snapshot.Snapshot{}, fmt.Errorf("%w: snapshot=%s", ErrNotFound, label)
	}
	return snap, nil
}

func (s *SnapshotService) Latest(ctx context.Context) (snapshot.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotService.Latest")
	defer span.End()

	if s.snapshots == nil {
		return snapshot.Snapshot{}, fmt.Errorf("%w: snapshot store is not configured", ErrDependencyUnavailable)
	}

	snap, exists, err := s.snapshots.Latest(ctx)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("get latest snapshot: %w", err)
	}
	if !exists {
		return snapshot.Snapshot{}, fmt.Errorf("%w: no snapshots recorded", ErrNotFound)
	}
	return snap, nil
}

func (s *SnapshotService) ListLabels(ctx context.Context) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotService.ListLabels")
	defer span.End()

	if s.snapshots == nil {
		return nil, fmt.Errorf("%w: snapshot store is not configured", ErrDependencyUnavailable)
	}

	labels, err := s.snapshots.ListLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list snapshot labels: %w", err)
	}
	return labels, nil
}
