package schema

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/courtline/courtline/internal/domain/lineup"
	"github.com/courtline/courtline/internal/domain/odds"
	"github.com/courtline/courtline/internal/domain/playerstats"
	"github.com/courtline/courtline/internal/domain/rawtable"
	"github.com/courtline/courtline/internal/domain/team"
	"github.com/courtline/courtline/internal/platform/logging"
)

// ErrMissingColumn is wrapped by every MappingError.
var ErrMissingColumn = errors.New("required canonical column missing")

// ErrUnknownSource is returned for a source kind without a registered schema.
var ErrUnknownSource = errors.New("unknown source kind")

// MappingError reports a required canonical column with no matching source
// column. Fatal for that source's run.
type MappingError struct {
	Source rawtable.SourceKind
	Column string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("source %s: no source column maps to required canonical column %q", e.Source, e.Column)
}

func (e *MappingError) Unwrap() error { return ErrMissingColumn }

// sourceSchema is one upstream schema's translation into canonical columns.
type sourceSchema struct {
	// renames maps source column names to canonical ones.
	renames map[string]string
	// required canonical columns; absence is a MappingError.
	required []string
	// drop lists source columns discarded on purpose, with the logged reason.
	drop map[string]string
}

var sourceSchemas = map[rawtable.SourceKind]sourceSchema{
	rawtable.SourceNBAStatsTeam: {
		renames: map[string]string{
			"TEAM_NAME":    team.ColTeam,
			"GAME_DATE":    team.ColDate,
			"GP":           team.ColGamesPlayed,
			"W":            team.ColWins,
			"L":            team.ColLosses,
			"W_PCT":        team.ColWinPct,
			"OFF_RATING":   team.ColOffensiveRating,
			"DEF_RATING":   team.ColDefensiveRating,
			"NET_RATING":   team.ColNetRating,
			"PACE":         team.ColPace,
			"POSS":         team.ColPossessions,
			"PTS":          team.ColPoints,
			"MIN":          team.ColMinutes,
			"EFG_PCT":      team.ColEFGPct,
			"TS_PCT":       team.ColTSPct,
			"OREB_PCT":     team.ColORebPct,
			"TM_TOV_PCT":   team.ColTOVPct,
			"FTA_RATE":     team.ColFTRate,
			"AST_PCT":      team.ColAstPct,
			"FGA":          "field_goals_attempted",
			"FTA":          "free_throws_attempted",
			"OREB":         "offensive_rebounds",
			"TOV":          "turnovers",
			"PLUS_MINUS":   "plus_minus",
			"OPP_PTS":      team.ColPointsAllowed,
			"COLLECTED_AT": rawtable.ColumnCollectedAt,
		},
		required: []string{
			team.ColTeam, team.ColWins, team.ColLosses, team.ColWinPct,
			team.ColOffensiveRating, team.ColDefensiveRating, team.ColPace,
		},
		drop: map[string]string{
			"TEAM_ID":  "internal upstream identifier, replaced by canonical abbreviation",
			"CFID":     "upstream response artifact with no analytical meaning",
			"CFPARAMS": "upstream response artifact with no analytical meaning",
		},
	},
	rawtable.SourceBRefTeam: {
		renames: map[string]string{
			"team_name":    team.ColTeam,
			"date":         team.ColDate,
			"g":            team.ColGamesPlayed,
			"wins":         team.ColWins,
			"losses":       team.ColLosses,
			"win_loss_pct": team.ColWinPct,
			"off_rtg":      team.ColOffensiveRating,
			"def_rtg":      team.ColDefensiveRating,
			"pace":         team.ColPace,
			"pts":          team.ColPoints,
			"opp_pts":      team.ColPointsAllowed,
			"mp":           team.ColMinutes,
			"fga":          "field_goals_attempted",
			"fta":          "free_throws_attempted",
			"orb":          "offensive_rebounds",
			"tov":          "turnovers",
		},
		required: []string{
			team.ColTeam, team.ColWins, team.ColLosses,
			team.ColOffensiveRating, team.ColDefensiveRating, team.ColPace,
		},
		drop: map[string]string{
			"arena": "venue metadata outside the canonical team schema",
		},
	},
	rawtable.SourceNBAStatsPlayer: {
		renames: map[string]string{
			"PLAYER_NAME":       playerstats.ColName,
			"TEAM_ABBREVIATION": playerstats.ColTeam,
			"START_POSITION":    playerstats.ColPosition,
			"GP":                playerstats.ColGamesPlayed,
			"MIN":               playerstats.ColMinutesPlayed,
			"PTS":               playerstats.ColPoints,
			"REB":               playerstats.ColRebounds,
			"AST":               playerstats.ColAssists,
			"STL":               playerstats.ColSteals,
			"BLK":               playerstats.ColBlocks,
			"TOV":               playerstats.ColTurnovers,
			"FGA":               playerstats.ColFieldGoalsAtt,
			"FTA":               playerstats.ColFreeThrowsAtt,
			"FG3A":              playerstats.ColThreePtAttempted,
			"FG3_PCT":           playerstats.ColThreePtPct,
			"USG_PCT":           playerstats.ColUsagePct,
			"OFF_RATING":        playerstats.ColOffensiveRating,
			"DEF_RATING":        playerstats.ColDefensiveRating,
		},
		required: []string{
			playerstats.ColName, playerstats.ColTeam, playerstats.ColMinutesPlayed,
		},
		drop: map[string]string{
			"PLAYER_ID": "internal upstream identifier, names key the canonical schema",
		},
	},
	rawtable.SourceLineups: {
		renames: map[string]string{
			"game_id": lineup.ColGameID,
			"team":    lineup.ColTeam,
			"player":  lineup.ColPlayer,
			"status":  lineup.ColStatus,
		},
		required: []string{lineup.ColGameID, lineup.ColTeam, lineup.ColPlayer},
		drop: map[string]string{
			"injury": "free-text injury note, status already captures availability",
		},
	},
	rawtable.SourceOddsAPI: {
		renames: map[string]string{
			"game_id":      odds.ColGameID,
			"home_team":    odds.ColHomeTeam,
			"away_team":    odds.ColAwayTeam,
			"market":       odds.ColMarket,
			"decimal_odds": odds.ColPrice,
			"price":        odds.ColPrice,
			"timestamp":    rawtable.ColumnCollectedAt,
		},
		required: []string{odds.ColGameID, odds.ColHomeTeam, odds.ColAwayTeam, odds.ColPrice},
		drop: map[string]string{
			"bookmaker_key": "per-book identity is not part of the canonical odds schema",
		},
	},
}

// Mapper translates source-specific column names into the canonical schema.
// Pure apart from logging retained and dropped columns.
type Mapper struct {
	logger *logging.Logger
}

func NewMapper(logger *logging.Logger) *Mapper {
	if logger == nil {
		logger = logging.Default()
	}
	return &Mapper{logger: logger}
}

// Map renames the table's columns per the source's fixed lookup table.
// Unmapped columns are retained unchanged and logged; only columns on the
// source's explicit drop list are removed, each with a logged reason.
func (m *Mapper) Map(t rawtable.Table, source rawtable.SourceKind) (rawtable.Table, error) {
	sch, ok := sourceSchemas[source]
	if !ok {
		return rawtable.Table{}, errors.Wrapf(ErrUnknownSource, "%q", source)
	}

	out := t.Clone()

	for column, reason := range sch.drop {
		if out.HasColumn(column) {
			out.DropColumn(column)
			m.logger.Info("dropped source column",
				"source", string(source), "column", column, "reason", reason)
		}
	}

	for from, to := range sch.renames {
		if !out.HasColumn(from) || from == to {
			continue
		}
		if out.HasColumn(to) {
			// Two source columns mapping to one canonical name: the rename
			// table entry loses, the existing canonical column wins.
			out.DropColumn(from)
			m.logger.Warn("duplicate canonical column, source column dropped",
				"source", string(source), "column", from, "canonical", to)
			continue
		}
		if err := out.RenameColumn(from, to); err != nil {
			return rawtable.Table{}, fmt.Errorf("map %s: %w", source, err)
		}
	}

	for _, column := range sch.required {
		if !out.HasColumn(column) {
			return rawtable.Table{}, &MappingError{Source: source, Column: column}
		}
	}

	canonical := make(map[string]struct{}, len(sch.renames))
	for _, to := range sch.renames {
		canonical[to] = struct{}{}
	}
	for _, column := range out.Columns {
		if _, ok := canonical[column]; ok {
			continue
		}
		m.logger.Debug("retained unmapped column",
			"source", string(source), "column", column)
	}

	return out, nil
}
