package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.Handle("GET /healthz", http.HandlerFunc(handler.Healthz))
}

func registerSnapshotRoutes(mux *http.ServeMux, handler *Handler) {
	mux.Handle("GET /v1/snapshots", http.HandlerFunc(handler.ListSnapshots))
	mux.Handle("GET /v1/snapshots/latest", http.HandlerFunc(handler.GetLatestSnapshot))
	mux.Handle("GET /v1/snapshots/{label}", http.HandlerFunc(handler.GetSnapshot))
	mux.Handle("GET /v1/snapshots/{label}/report", http.HandlerFunc(handler.GetSnapshotReport))
	mux.Handle("GET /v1/snapshots/{label}/summary", http.HandlerFunc(handler.GetSnapshotSummary))
	mux.Handle("GET /v1/snapshots/{label}/metrics/teams", http.HandlerFunc(handler.GetSnapshotTeamMetrics))
	mux.Handle("GET /v1/snapshots/{label}/metrics/players", http.HandlerFunc(handler.GetSnapshotPlayerMetrics))
	mux.Handle("GET /v1/snapshots/{label}/bets", http.HandlerFunc(handler.GetSnapshotBets))
}

func registerPipelineRoutes(mux *http.ServeMux, handler *Handler, runToken string) {
	// Run routes mutate the snapshot store, so they sit behind the shared
	// run token.
	mux.Handle("POST /v1/pipeline/runs", RequireRunToken(runToken, http.HandlerFunc(handler.RunPipeline)))
	mux.Handle("POST /v1/pipeline/batches", RequireRunToken(runToken, http.HandlerFunc(handler.RunBatch)))
}
