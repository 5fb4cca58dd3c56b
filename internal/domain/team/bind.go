package team

import (
	"github.com/courtline/courtline/internal/domain/rawtable"
)

// Canonical column names for team tables after schema mapping.
const (
	ColTeam            = "team"
	ColDate            = "date"
	ColGamesPlayed     = "games_played"
	ColWins            = "wins"
	ColLosses          = "losses"
	ColWinPct          = "win_pct"
	ColOffensiveRating = "offensive_rating"
	ColDefensiveRating = "defensive_rating"
	ColNetRating       = "net_rating"
	ColPace            = "pace"
	ColPossessions     = "possessions"
	ColPoints          = "points"
	ColPointsAllowed   = "points_allowed"
	ColMinutes         = "minutes"
	ColEFGPct          = "efg_pct"
	ColTSPct           = "ts_pct"
	ColORebPct         = "oreb_pct"
	ColTOVPct          = "tov_pct"
	ColFTRate          = "ft_rate"
	ColAstPct          = "ast_pct"
)

// FromTable binds a normalized, cleaned canonical table into typed records.
// Rows flagged invalid by the normalizer are skipped; a row that binds but
// violates a record invariant is skipped and counted, never fatal. The run
// report carries the count.
func FromTable(t rawtable.Table) ([]Record, int) {
	out := make([]Record, 0, t.Len())
	skipped := 0
	for _, row := range t.Rows {
		if t.HasColumn(rawtable.ColumnValid) && !row.Bool(rawtable.ColumnValid) {
			continue
		}

		name, ok := row.String(ColTeam)
		if !ok {
			skipped++
			continue
		}
		record := Record{Team: Abbreviation(name)}
		if date, ok := row.Time(ColDate); ok {
			record.Date = date
		}

		record.GamesPlayed = intCell(row, ColGamesPlayed)
		record.Wins = intCell(row, ColWins)
		record.Losses = intCell(row, ColLosses)
		record.WinPct = floatCell(row, ColWinPct)
		record.OffensiveRating = floatCell(row, ColOffensiveRating)
		record.DefensiveRating = floatCell(row, ColDefensiveRating)
		record.NetRating = floatCell(row, ColNetRating)
		record.Pace = floatCell(row, ColPace)
		record.Possessions = floatCell(row, ColPossessions)
		record.Points = floatCell(row, ColPoints)
		record.PointsAllowed = floatCell(row, ColPointsAllowed)
		record.Minutes = floatCell(row, ColMinutes)
		record.EFGPct = floatCell(row, ColEFGPct)
		record.TSPct = floatCell(row, ColTSPct)
		record.ORebPct = floatCell(row, ColORebPct)
		record.TOVPct = floatCell(row, ColTOVPct)
		record.FTRate = floatCell(row, ColFTRate)
		record.AstPct = floatCell(row, ColAstPct)

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
