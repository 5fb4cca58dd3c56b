package quality

import (
	"github.com/courtline/courtline/internal/domain/lineup"
	"github.com/courtline/courtline/internal/domain/odds"
	"github.com/courtline/courtline/internal/domain/playerstats"
	"github.com/courtline/courtline/internal/domain/rawtable"
	"github.com/courtline/courtline/internal/domain/team"
)

func ptr(v float64) *float64 { return &v }

// DefaultRules returns the stock quality contract for a source. The numeric
// ranges are sanity bounds for modern NBA seasons, wide enough to admit
// outlier teams while catching unit mistakes (ratings reported per game,
// percentages reported 0..100, and so on). Every source drops rows missing
// their collection timestamp: without it duplicates cannot be ordered. The
// rule is inert for sources that never carried the column.
func DefaultRules(source rawtable.SourceKind) Rules {
	switch source {
	case rawtable.SourceNBAStatsTeam, rawtable.SourceBRefTeam:
		return Rules{
			KeyColumns:      []string{team.ColTeam},
			TimestampColumn: rawtable.ColumnCollectedAt,
			Columns: map[string]ColumnRule{
				rawtable.ColumnCollectedAt: {Required: true, MissingStrategy: MissingDrop},
				team.ColTeam:               {Required: true},
				team.ColWins:               {Required: true, Numeric: true, Min: ptr(0), Max: ptr(82)},
				team.ColLosses:             {Required: true, Numeric: true, Min: ptr(0), Max: ptr(82)},
				team.ColWinPct:             {Required: true, Numeric: true, Min: ptr(0), Max: ptr(1)},
				team.ColOffensiveRating: {
					Required: true, Numeric: true, Min: ptr(80), Max: ptr(135),
					MissingStrategy: MissingMedian, OutlierMethod: OutlierZScore,
				},
				team.ColDefensiveRating: {
					Required: true, Numeric: true, Min: ptr(80), Max: ptr(135),
					MissingStrategy: MissingMedian, OutlierMethod: OutlierZScore,
				},
				team.ColNetRating: {Numeric: true, MissingStrategy: MissingZero},
				team.ColPace: {
					Required: true, Numeric: true, Min: ptr(85), Max: ptr(115),
					MissingStrategy: MissingMedian, OutlierMethod: OutlierIQR,
				},
				team.ColPossessions: {Numeric: true, Min: ptr(0), MissingStrategy: MissingZero},
				team.ColPoints:      {Numeric: true, Min: ptr(0), MissingStrategy: MissingMedian},
				team.ColEFGPct:      {Numeric: true, Min: ptr(0), Max: ptr(1), MissingStrategy: MissingMedian},
				team.ColTSPct:       {Numeric: true, Min: ptr(0), Max: ptr(1), MissingStrategy: MissingMedian},
				team.ColORebPct:     {Numeric: true, Min: ptr(0), Max: ptr(1), MissingStrategy: MissingMedian},
				team.ColTOVPct:      {Numeric: true, Min: ptr(0), Max: ptr(1), MissingStrategy: MissingMedian},
				team.ColFTRate:      {Numeric: true, Min: ptr(0), Max: ptr(1), MissingStrategy: MissingMedian},
			},
		}
	case rawtable.SourceNBAStatsPlayer:
		return Rules{
			KeyColumns:      []string{playerstats.ColName, playerstats.ColTeam},
			TimestampColumn: rawtable.ColumnCollectedAt,
			Columns: map[string]ColumnRule{
				rawtable.ColumnCollectedAt: {Required: true, MissingStrategy: MissingDrop},
				playerstats.ColName:        {Required: true},
				playerstats.ColTeam:        {Required: true},
				playerstats.ColMinutesPlayed: {
					Required: true, Numeric: true, Min: ptr(0), Max: ptr(48),
					MissingStrategy: MissingDrop,
				},
				playerstats.ColPoints:    {Numeric: true, Min: ptr(0), MissingStrategy: MissingZero, OutlierMethod: OutlierZScore},
				playerstats.ColRebounds:  {Numeric: true, Min: ptr(0), MissingStrategy: MissingZero},
				playerstats.ColAssists:   {Numeric: true, Min: ptr(0), MissingStrategy: MissingZero},
				playerstats.ColTurnovers: {Numeric: true, Min: ptr(0), MissingStrategy: MissingZero},
				playerstats.ColUsagePct: {
					Numeric: true, Min: ptr(0), Max: ptr(1), MissingStrategy: MissingMedian,
				},
				playerstats.ColThreePtPct: {Numeric: true, Min: ptr(0), Max: ptr(1), MissingStrategy: MissingZero},
				playerstats.ColPosition:   {MissingStrategy: MissingMode},
			},
		}
	case rawtable.SourceLineups:
		return Rules{
			KeyColumns:      []string{lineup.ColGameID, lineup.ColPlayer},
			TimestampColumn: rawtable.ColumnCollectedAt,
			Columns: map[string]ColumnRule{
				rawtable.ColumnCollectedAt: {Required: true, MissingStrategy: MissingDrop},
				lineup.ColGameID:           {Required: true},
				lineup.ColTeam:             {Required: true},
				lineup.ColPlayer:           {Required: true},
			},
		}
	case rawtable.SourceOddsAPI:
		return Rules{
			KeyColumns:      []string{odds.ColGameID, odds.ColMarket},
			TimestampColumn: rawtable.ColumnCollectedAt,
			Columns: map[string]ColumnRule{
				rawtable.ColumnCollectedAt: {Required: true, MissingStrategy: MissingDrop},
				odds.ColGameID:             {Required: true},
				odds.ColHomeTeam:           {Required: true},
				odds.ColAwayTeam:           {Required: true},
				odds.ColPrice: {
					Required: true, Numeric: true, Min: ptr(1.01), Max: ptr(100),
					MissingStrategy: MissingDrop,
				},
			},
		}
	default:
		return Rules{}
	}
}
