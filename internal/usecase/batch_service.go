package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/courtline/courtline/internal/platform/logging"
)

const (
	batchStatusSuccess = "success"
	batchStatusFailed  = "failed"
	batchStatusSkipped = "skipped"

	defaultBatchWorkers = 4
	maxBatchWorkers     = 16
)

// BatchInput is a set of independent pipeline runs executed as one batch,
// typically one labeled run per collection date.
type BatchInput struct {
	Runs       []RunInput
	MaxWorkers int
}

type BatchResult struct {
	RunCount     int              `json:"run_count"`
	SuccessCount int              `json:"success_count"`
	FailedCount  int              `json:"failed_count"`
	SkippedCount int              `json:"skipped_count"`
	WorkerCount  int              `json:"worker_count"`
	Runs         []BatchRunResult `json:"runs"`
}

type BatchRunResult struct {
	Label      string `json:"label"`
	Status     string `json:"status"`
	Teams      int    `json:"teams"`
	Games      int    `json:"games"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

// BatchService fans pipeline runs out over a bounded worker pool. Runs are
// independent: one failed run is reported in its row and never aborts the
// batch.
type BatchService struct {
	pipeline *PipelineService
	logger   *logging.Logger
}

func NewBatchService(pipeline *PipelineService, logger *logging.Logger) *BatchService {
	if logger == nil {
		logger = logging.Default()
	}
	return &BatchService{pipeline: pipeline, logger: logger}
}

func (s *BatchService) Run(ctx context.Context, input BatchInput) (BatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BatchService.Run")
	defer span.End()

	if s.pipeline == nil {
		return BatchResult{}, fmt.Errorf("%w: pipeline service is not configured", ErrDependencyUnavailable)
	}
	if len(input.Runs) == 0 {
		return BatchResult{}, fmt.Errorf("%w: batch has no runs", ErrInvalidInput)
	}

	workerCount := normalizeBatchWorkerCount(input.MaxWorkers, len(input.Runs))
	result := BatchResult{
		RunCount:    len(input.Runs),
		WorkerCount: workerCount,
		Runs:        make([]BatchRunResult, 0, len(input.Runs)),
	}

	rows := make(chan BatchRunResult, len(input.Runs))

	var successCount atomic.Int32
	var failedCount atomic.Int32
	var skippedCount atomic.Int32

	workerPool, err := ants.NewPool(workerCount)
	if err != nil {
		return BatchResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	var workers sync.WaitGroup
	for _, run := range input.Runs {
		run := run
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := BatchRunResult{Label: run.Label}

			switch {
			case ctx.Err() != nil:
				row.Status = batchStatusSkipped
				row.Message = ctx.Err().Error()
				skippedCount.Add(1)
			default:
				runResult, err := s.pipeline.Run(ctx, run)
				if err != nil {
					row.Status = batchStatusFailed
					row.Message = err.Error()
					failedCount.Add(1)
				} else {
					row.Status = batchStatusSuccess
					row.Teams = len(runResult.Snapshot.Teams)
					row.Games = len(runResult.Snapshot.Games)
					successCount.Add(1)
				}
			}

			row.DurationMs = time.Since(start).Milliseconds()
			rows <- row
		}); err != nil {
			workers.Done()
			return BatchResult{}, fmt.Errorf("submit run to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(rows)

	for row := range rows {
		result.Runs = append(result.Runs, row)
	}
	sort.SliceStable(result.Runs, func(i, j int) bool {
		return result.Runs[i].Label < result.Runs[j].Label
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())
	result.SkippedCount = int(skippedCount.Load())

	s.logger.InfoContext(ctx, "batch complete",
		"runs", result.RunCount,
		"success", result.SuccessCount,
		"failed", result.FailedCount,
		"skipped", result.SkippedCount,
	)
	return result, nil
}

func normalizeBatchWorkerCount(requested, taskCount int) int {
	count := requested
	if count <= 0 {
		count = defaultBatchWorkers
	}
	if count > maxBatchWorkers {
		count = maxBatchWorkers
	}
	if count > taskCount {
		count = taskCount
	}
	return count
}
