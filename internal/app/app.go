package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/courtline/courtline/internal/config"
	"github.com/courtline/courtline/internal/domain/snapshot"
	"github.com/courtline/courtline/internal/domain/team"
	"github.com/courtline/courtline/internal/infrastructure/repository/memory"
	"github.com/courtline/courtline/internal/infrastructure/repository/postgres"
	"github.com/courtline/courtline/internal/interfaces/httpapi"
	"github.com/courtline/courtline/internal/platform/logging"
	"github.com/courtline/courtline/internal/usecase"
)

// NewHTTPServer wires repositories, services and the router into a server.
// The returned cleanup closes the database handle when one was opened.
func NewHTTPServer(cfg config.Config, logger *slog.Logger) (*http.Server, func() error, error) {
	snapshots, db, err := newSnapshotRepository(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() error {
		if db == nil {
			return nil
		}
		return db.Close()
	}

	serviceLogger := logging.Default()
	pipelineSvc := usecase.NewPipelineService(
		snapshots,
		team.DefaultAliases(),
		usecase.PipelineConfig{
			Bankroll:   cfg.Bankroll,
			MinMinutes: cfg.MinMinutes,
			MaxWorkers: cfg.PipelineMaxWorkers,
		},
		serviceLogger,
	)
	batchSvc := usecase.NewBatchService(pipelineSvc, serviceLogger)
	snapshotSvc := usecase.NewSnapshotService(snapshots, serviceLogger)

	handler := httpapi.NewHandler(pipelineSvc, batchSvc, snapshotSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.RunToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		_ = cleanup()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func newSnapshotRepository(cfg config.Config, logger *slog.Logger) (snapshot.Repository, *sqlx.DB, error) {
	if cfg.DBURL == "" {
		logger.Info("snapshot store: in-memory", "reason", "DB_URL empty")
		return memory.NewSnapshotRepository(), nil, nil
	}

	db, err := otelsqlx.Connect("postgres",
		normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	logger.Info("snapshot store: postgres", "db", dbNameFromURL(cfg.DBURL))
	return postgres.NewSnapshotRepository(db), db, nil
}
