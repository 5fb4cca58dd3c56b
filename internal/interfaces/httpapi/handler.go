package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/courtline/courtline/internal/domain/snapshot"
	"github.com/courtline/courtline/internal/platform/cache"
	"github.com/courtline/courtline/internal/usecase"
)

const latestSnapshotCacheKey = "snapshot:latest"

type Handler struct {
	pipelineService *usecase.PipelineService
	batchService    *usecase.BatchService
	snapshotService *usecase.SnapshotService
	snapshotCache   *cache.Store
	logger          *slog.Logger
	validator       *validator.Validate
}

func NewHandler(
	pipelineService *usecase.PipelineService,
	batchService *usecase.BatchService,
	snapshotService *usecase.SnapshotService,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		pipelineService: pipelineService,
		batchService:    batchService,
		snapshotService: snapshotService,
		snapshotCache:   cache.NewStore(30 * time.Second),
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) RunPipeline(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunPipeline")
	defer span.End()

	var dto runRequestDTO
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	if err := decoder.Decode(&dto); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: decode run request: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validator.Struct(dto); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	input, err := dto.toInput()
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.pipelineService.Run(ctx, input)
	if err != nil {
		h.logger.ErrorContext(ctx, "pipeline run failed", "label", input.Label, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.snapshotCache.InvalidateAll(ctx)
	writeSuccess(ctx, w, http.StatusCreated, result)
}

func (h *Handler) RunBatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunBatch")
	defer span.End()

	var dto batchRequestDTO
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	if err := decoder.Decode(&dto); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: decode batch request: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validator.Struct(dto); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	input, err := dto.toInput()
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.batchService.Run(ctx, input)
	if err != nil {
		h.logger.ErrorContext(ctx, "batch run failed", "runs", len(input.Runs), "error", err)
		writeError(ctx, w, err)
		return
	}

	h.snapshotCache.InvalidateAll(ctx)
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) GetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLatestSnapshot")
	defer span.End()

	value, err := h.snapshotCache.GetOrLoad(ctx, latestSnapshotCacheKey, func(ctx context.Context) (any, error) {
		return h.snapshotService.Latest(ctx)
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, value.(snapshot.Snapshot))
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSnapshot")
	defer span.End()

	snap, err := h.snapshotService.GetByLabel(ctx, r.PathValue("label"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snap)
}

func (h *Handler) GetSnapshotReport(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSnapshotReport")
	defer span.End()

	snap, err := h.snapshotService.GetByLabel(ctx, r.PathValue("label"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snap.Report)
}

func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSnapshots")
	defer span.End()

	labels, err := h.snapshotService.ListLabels(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, labels)
}

func (h *Handler) GetSnapshotTeamMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSnapshotTeamMetrics")
	defer span.End()

	snap, err := h.snapshotService.GetByLabel(ctx, r.PathValue("label"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snap.TeamMetrics)
}

func (h *Handler) GetSnapshotPlayerMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSnapshotPlayerMetrics")
	defer span.End()

	snap, err := h.snapshotService.GetByLabel(ctx, r.PathValue("label"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snap.PlayerMetrics)
}

func (h *Handler) GetSnapshotBets(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSnapshotBets")
	defer span.End()

	snap, err := h.snapshotService.GetByLabel(ctx, r.PathValue("label"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snap.BetCandidates)
}

func summarize(snap snapshot.Snapshot) snapshotSummaryDTO {
	return snapshotSummaryDTO{
		Label:         snap.Label,
		CreatedAt:     snap.CreatedAt.Format(time.RFC3339),
		Teams:         len(snap.Teams),
		Players:       len(snap.Players),
		Games:         len(snap.Games),
		BetCandidates: len(snap.BetCandidates),
		MergeFailures: len(snap.Report.MergeFailures),
	}
}

func (h *Handler) GetSnapshotSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSnapshotSummary")
	defer span.End()

	snap, err := h.snapshotService.GetByLabel(ctx, r.PathValue("label"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summarize(snap))
}
