package snapshot

import (
	"time"

	"github.com/courtline/courtline/internal/domain/analytics"
	"github.com/courtline/courtline/internal/domain/game"
	"github.com/courtline/courtline/internal/domain/playerstats"
	"github.com/courtline/courtline/internal/domain/team"
)

// Snapshot is the immutable output of one full pipeline run. Runs never
// update a prior snapshot; each run writes a new one under its own label,
// giving an append-only history at the storage boundary.
type Snapshot struct {
	Label         string                    `json:"label"`
	CreatedAt     time.Time                 `json:"created_at"`
	Teams         []team.Record             `json:"teams"`
	Players       []playerstats.Record      `json:"players"`
	Games         []game.MergedRecord       `json:"games"`
	TeamMetrics   []analytics.TeamMetrics   `json:"team_metrics"`
	PlayerMetrics []analytics.PlayerMetrics `json:"player_metrics"`
	BetCandidates []analytics.BetCandidate  `json:"bet_candidates"`
	Report        RunReport                 `json:"report"`
}

// RunReport aggregates the per-source quality findings and the merge
// validation outcome for one run. It is the run's sole observable side
// effect besides the snapshot itself.
type RunReport struct {
	Sources       map[string]SourceReport `json:"sources"`
	MergeFailures []string                `json:"merge_failures,omitempty"`
	Incomplete    []string                `json:"incomplete,omitempty"`
}

// SourceReport summarizes what the normalizer, the quality gate and the bind
// stage did to one raw source table.
type SourceReport struct {
	RowsIn            int `json:"rows_in"`
	RowsOut           int `json:"rows_out"`
	InvalidRows       int `json:"invalid_rows"`
	MissingValues     int `json:"missing_values"`
	ImputedValues     int `json:"imputed_values"`
	OutlierValues     int `json:"outlier_values"`
	OutOfRangeValues  int `json:"out_of_range_values"`
	DuplicatesDropped int `json:"duplicates_dropped"`
	RowsDropped       int `json:"rows_dropped"`
	BindFailures      int `json:"bind_failures"`
}
