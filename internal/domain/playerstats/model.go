package playerstats

import (
	"fmt"

	"github.com/courtline/courtline/internal/domain/rawtable"
	"github.com/courtline/courtline/internal/domain/team"
)

// Position covers the five canonical slots. Values outside the enumeration
// normalize to PositionUnknown rather than being dropped.
type Position string

const (
	PositionPointGuard    Position = "PG"
	PositionShootingGuard Position = "SG"
	PositionSmallForward  Position = "SF"
	PositionPowerForward  Position = "PF"
	PositionCenter        Position = "C"
	PositionUnknown       Position = "Unknown"
)

var AllPositions = map[Position]struct{}{
	PositionPointGuard:    {},
	PositionShootingGuard: {},
	PositionSmallForward:  {},
	PositionPowerForward:  {},
	PositionCenter:        {},
}

// NormalizePosition maps a raw value onto the enumeration, returning
// PositionUnknown (and false) for anything outside it.
func NormalizePosition(value string) (Position, bool) {
	pos := Position(value)
	if _, ok := AllPositions[pos]; ok {
		return pos, true
	}
	return PositionUnknown, false
}

// Record is the canonical per-player season snapshot. Counting stats are per
// game; derived per-minute values are computed by the metrics engine and are
// undefined (nil) when minutes are zero.
type Record struct {
	Name                string
	Team                team.Abbreviation
	Position            Position
	GamesPlayed         int
	MinutesPerGame      float64
	Points              float64
	Rebounds            float64
	Assists             float64
	Steals              float64
	Blocks              float64
	Turnovers           float64
	FieldGoalsAttempted float64
	FreeThrowsAttempted float64
	ThreePtAttempted    float64
	ThreePtPct          float64
	UsagePct            float64
	OffensiveRating     float64
	DefensiveRating     float64
}

func (r Record) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if !r.Team.Valid() {
		return fmt.Errorf("player %s: team %q is not a canonical abbreviation", r.Name, r.Team)
	}
	if r.Position != PositionUnknown {
		if _, ok := AllPositions[r.Position]; !ok {
			return fmt.Errorf("player %s: invalid position %q", r.Name, r.Position)
		}
	}
	if r.MinutesPerGame < 0 {
		return fmt.Errorf("player %s: minutes per game must be non-negative", r.Name)
	}
	return nil
}

// Canonical column names for player tables after schema mapping.
const (
	ColName             = "name"
	ColTeam             = "team"
	ColPosition         = "position"
	ColGamesPlayed      = "games_played"
	ColMinutesPlayed    = "minutes_played"
	ColPoints           = "points"
	ColRebounds         = "rebounds"
	ColAssists          = "assists"
	ColSteals           = "steals"
	ColBlocks           = "blocks"
	ColTurnovers        = "turnovers"
	ColFieldGoalsAtt    = "field_goals_attempted"
	ColFreeThrowsAtt    = "free_throws_attempted"
	ColThreePtAttempted = "three_pt_attempted"
	ColThreePtPct       = "three_pt_pct"
	ColUsagePct         = "usage_pct"
	ColOffensiveRating  = "offensive_rating"
	ColDefensiveRating  = "defensive_rating"
)

// FromTable binds a normalized, cleaned canonical player table into typed
// records. Rows the normalizer flagged invalid are skipped; rows that fail
// record validation are skipped and counted, never fatal.
func FromTable(t rawtable.Table) ([]Record, int) {
	out := make([]Record, 0, t.Len())
	skipped := 0
	for _, row := range t.Rows {
		if t.HasColumn(rawtable.ColumnValid) && !row.Bool(rawtable.ColumnValid) {
			continue
		}

		name, ok := row.String(ColName)
		if !ok {
			skipped++
			continue
		}
		teamName, _ := row.String(ColTeam)
		position, _ := row.String(ColPosition)

		record := Record{
			Name:     name,
			Team:     team.Abbreviation(teamName),
			Position: Position(position),
		}
		record.GamesPlayed = intCell(row, ColGamesPlayed)
		record.MinutesPerGame = floatCell(row, ColMinutesPlayed)
		record.Points = floatCell(row, ColPoints)
		record.Rebounds = floatCell(row, ColRebounds)
		record.Assists = floatCell(row, ColAssists)
		record.Steals = floatCell(row, ColSteals)
		record.Blocks = floatCell(row, ColBlocks)
		record.Turnovers = floatCell(row, ColTurnovers)
		record.FieldGoalsAttempted = floatCell(row, ColFieldGoalsAtt)
		record.FreeThrowsAttempted = floatCell(row, ColFreeThrowsAtt)
		record.ThreePtAttempted = floatCell(row, ColThreePtAttempted)
		record.ThreePtPct = floatCell(row, ColThreePtPct)
		record.UsagePct = floatCell(row, ColUsagePct)
		record.OffensiveRating = floatCell(row, ColOffensiveRating)
		record.DefensiveRating = floatCell(row, ColDefensiveRating)

		if err := record.Validate(); err != nil {
			skipped++
			continue
		}
		out = append(out, record)
	}
	return out, skipped
}

func floatCell(row rawtable.Row, column string) float64 {
	value, _ := row.Float(column)
	return value
}

func intCell(row rawtable.Row, column string) int {
	value, _ := row.Float(column)
	return int(value)
}
