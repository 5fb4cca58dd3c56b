package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/courtline/courtline/internal/domain/lineup"
	"github.com/courtline/courtline/internal/domain/odds"
	"github.com/courtline/courtline/internal/domain/playerstats"
	"github.com/courtline/courtline/internal/domain/rawtable"
	"github.com/courtline/courtline/internal/domain/snapshot"
	"github.com/courtline/courtline/internal/domain/team"
	"github.com/courtline/courtline/internal/pipeline/merge"
	"github.com/courtline/courtline/internal/pipeline/metrics"
	"github.com/courtline/courtline/internal/pipeline/normalize"
	"github.com/courtline/courtline/internal/pipeline/quality"
	"github.com/courtline/courtline/internal/pipeline/schema"
	"github.com/courtline/courtline/internal/platform/logging"
)

// RawSourceSet is one run's raw input, keyed by source kind. At least one
// team-stat source is required; everything else is optional.
type RawSourceSet map[rawtable.SourceKind]rawtable.Table

// RunInput names a pipeline run and carries its raw tables.
type RunInput struct {
	Label   string
	Sources RawSourceSet
}

// RunResult wraps the snapshot a run produced.
type RunResult struct {
	Snapshot snapshot.Snapshot `json:"snapshot"`
}

// PipelineConfig carries the run-level knobs.
type PipelineConfig struct {
	Bankroll   float64
	MinMinutes float64
	MaxWorkers int
}

// PipelineService drives a full run: per-source mapping, normalization and
// quality gating in parallel, then merge, metrics and snapshot persistence.
// Stages are pure; the only side effects live here (logging, the snapshot
// write).
type PipelineService struct {
	mapper     *schema.Mapper
	normalizer *normalize.Normalizer
	gate       *quality.Gate
	merger     *merge.Merger
	engine     *metrics.Engine
	snapshots  snapshot.Repository
	rules      func(rawtable.SourceKind) quality.Rules
	cfg        PipelineConfig
	logger     *logging.Logger
	now        func() time.Time
}

func NewPipelineService(
	snapshots snapshot.Repository,
	aliases team.AliasMap,
	cfg PipelineConfig,
	logger *logging.Logger,
) *PipelineService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Bankroll <= 0 {
		cfg.Bankroll = 1000
	}
	if cfg.MinMinutes <= 0 {
		cfg.MinMinutes = 10
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = len(rawtable.AllSources)
	}

	return &PipelineService{
		mapper:     schema.NewMapper(logger),
		normalizer: normalize.NewNormalizer(aliases, logger),
		gate:       quality.NewGate(logger),
		merger:     merge.NewMerger(logger),
		engine:     metrics.NewEngine(metrics.Config{Bankroll: cfg.Bankroll, MinMinutes: cfg.MinMinutes}),
		snapshots:  snapshots,
		rules:      quality.DefaultRules,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

type cleanedSource struct {
	table  rawtable.Table
	report snapshot.SourceReport
}

// Run executes the full pipeline over the input set and persists the
// resulting snapshot. Same input and label, same snapshot: every stage is
// deterministic and league baselines are recomputed per run.
func (s *PipelineService) Run(ctx context.Context, input RunInput) (RunResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.Run")
	defer span.End()

	label := strings.TrimSpace(input.Label)
	if label == "" {
		return RunResult{}, fmt.Errorf("%w: run label is required", ErrInvalidInput)
	}
	for kind := range input.Sources {
		if !kind.Valid() {
			return RunResult{}, fmt.Errorf("%w: unknown source kind %q", ErrInvalidInput, kind)
		}
	}
	if _, hasPrimary := input.Sources[rawtable.SourceNBAStatsTeam]; !hasPrimary {
		if _, hasSecondary := input.Sources[rawtable.SourceBRefTeam]; !hasSecondary {
			return RunResult{}, fmt.Errorf("%w: at least one team-stat source is required", ErrInvalidInput)
		}
	}

	cleaned, err := s.cleanSources(ctx, input.Sources)
	if err != nil {
		return RunResult{}, err
	}

	snap := s.assemble(label, cleaned)

	if s.snapshots != nil {
		if err := s.snapshots.Save(ctx, snap); err != nil {
			return RunResult{}, fmt.Errorf("save snapshot %s: %w", label, err)
		}
	}

	s.logger.InfoContext(ctx, "pipeline run complete",
		"label", label,
		"teams", len(snap.Teams),
		"players", len(snap.Players),
		"games", len(snap.Games),
		"merge_failures", len(snap.Report.MergeFailures),
	)
	return RunResult{Snapshot: snap}, nil
}

// cleanSources runs map -> normalize -> gate for every source concurrently.
// A mapping error or a type violation in any source fails the run; noisy rows
// never do.
func (s *PipelineService) cleanSources(ctx context.Context, sources RawSourceSet) (map[rawtable.SourceKind]cleanedSource, error) {
	out := make(map[rawtable.SourceKind]cleanedSource, len(sources))
	var mu sync.Mutex

	workers := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(s.cfg.MaxWorkers)
	for kind, table := range sources {
		kind, table := kind, table
		workers.Go(func(ctx context.Context) error {
			cleaned, err := s.cleanOne(table, kind)
			if err != nil {
				return fmt.Errorf("source %s: %w", kind, err)
			}
			mu.Lock()
			out[kind] = cleaned
			mu.Unlock()
			return nil
		})
	}
	if err := workers.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PipelineService) cleanOne(table rawtable.Table, kind rawtable.SourceKind) (cleanedSource, error) {
	mapped, err := s.mapper.Map(table, kind)
	if err != nil {
		return cleanedSource{}, err
	}

	normalized, normReport := s.normalizer.Normalize(mapped, kind)

	gated, gateReport, err := s.gate.Apply(normalized, s.rules(kind))
	if err != nil {
		return cleanedSource{}, err
	}

	if kind == rawtable.SourceNBAStatsTeam || kind == rawtable.SourceBRefTeam {
		derivePossessions(&gated)
	}

	return cleanedSource{
		table: gated,
		report: snapshot.SourceReport{
			RowsIn:            normReport.RowsIn,
			RowsOut:           gateReport.RowsOut,
			InvalidRows:       normReport.InvalidRows,
			MissingValues:     gateReport.MissingValues,
			ImputedValues:     gateReport.ImputedValues,
			OutlierValues:     gateReport.OutlierValues,
			OutOfRangeValues:  gateReport.OutOfRangeValues,
			DuplicatesDropped: gateReport.DuplicatesDropped,
			RowsDropped:       gateReport.RowsDropped,
		},
	}, nil
}

// derivePossessions fills the possessions column from box-score counting
// columns when the source did not report it directly.
func derivePossessions(t *rawtable.Table) {
	required := []string{"field_goals_attempted", "offensive_rebounds", "turnovers", "free_throws_attempted"}
	for _, column := range required {
		if !t.HasColumn(column) {
			return
		}
	}
	t.AddColumn(team.ColPossessions, nil)
	for _, row := range t.Rows {
		if value, ok := row.Float(team.ColPossessions); ok && value > 0 {
			continue
		}
		fga, ok1 := row.Float("field_goals_attempted")
		oreb, ok2 := row.Float("offensive_rebounds")
		tov, ok3 := row.Float("turnovers")
		fta, ok4 := row.Float("free_throws_attempted")
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue
		}
		row[team.ColPossessions] = metrics.Possessions(fga, oreb, tov, fta)
	}
}

// assemble binds the cleaned tables, merges sources and computes metrics.
// Rows that fail record validation at bind are a data-quality finding, not a
// failure: they leave the run through the report, like every other noisy row.
func (s *PipelineService) assemble(label string, cleaned map[rawtable.SourceKind]cleanedSource) snapshot.Snapshot {
	report := snapshot.RunReport{Sources: make(map[string]snapshot.SourceReport, len(cleaned))}
	for kind, source := range cleaned {
		report.Sources[string(kind)] = source.report
	}
	countSkipped := func(kind rawtable.SourceKind, skipped int) {
		if skipped == 0 {
			return
		}
		source := report.Sources[string(kind)]
		source.BindFailures += skipped
		report.Sources[string(kind)] = source
		s.logger.Warn("skipped rows failing record validation",
			"source", string(kind), "rows", skipped)
	}

	var primaryTeams, secondaryTeams []team.Record
	var skipped int
	if source, ok := cleaned[rawtable.SourceNBAStatsTeam]; ok {
		primaryTeams, skipped = team.FromTable(source.table)
		countSkipped(rawtable.SourceNBAStatsTeam, skipped)
	}
	if source, ok := cleaned[rawtable.SourceBRefTeam]; ok {
		secondaryTeams, skipped = team.FromTable(source.table)
		countSkipped(rawtable.SourceBRefTeam, skipped)
	}

	var players []playerstats.Record
	if source, ok := cleaned[rawtable.SourceNBAStatsPlayer]; ok {
		players, skipped = playerstats.FromTable(source.table)
		countSkipped(rawtable.SourceNBAStatsPlayer, skipped)
	}

	var lineups []lineup.Entry
	if source, ok := cleaned[rawtable.SourceLineups]; ok {
		lineups, skipped = lineup.FromTable(source.table)
		countSkipped(rawtable.SourceLineups, skipped)
	}

	var quotes []odds.Quote
	if source, ok := cleaned[rawtable.SourceOddsAPI]; ok {
		quotes, skipped = odds.FromTable(source.table)
		countSkipped(rawtable.SourceOddsAPI, skipped)
	}

	teams := s.merger.MergeTeams(primaryTeams, secondaryTeams)
	merged := s.merger.Merge(teams, lineups, quotes)
	for _, failure := range merged.Failures {
		report.MergeFailures = append(report.MergeFailures, failure.String())
	}
	report.Incomplete = merged.Incomplete

	sort.SliceStable(merged.Games, func(i, j int) bool {
		return merged.Games[i].GameID < merged.Games[j].GameID
	})
	sort.SliceStable(players, func(i, j int) bool {
		if players[i].Name != players[j].Name {
			return players[i].Name < players[j].Name
		}
		return players[i].Team < players[j].Team
	})
	sort.SliceStable(lineups, func(i, j int) bool {
		if lineups[i].GameID != lineups[j].GameID {
			return lineups[i].GameID < lineups[j].GameID
		}
		return lineups[i].Player < lineups[j].Player
	})

	return snapshot.Snapshot{
		Label:         label,
		CreatedAt:     s.now().UTC(),
		Teams:         merged.Teams,
		Players:       players,
		Games:         merged.Games,
		TeamMetrics:   s.engine.TeamMetrics(merged.Teams, lineups),
		PlayerMetrics: s.engine.PlayerMetrics(players),
		BetCandidates: s.engine.BetCandidates(merged.Games),
		Report:        report,
	}
}
