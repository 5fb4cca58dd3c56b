package merge

import (
	"fmt"
	"sort"

	"github.com/courtline/courtline/internal/domain/game"
	"github.com/courtline/courtline/internal/domain/lineup"
	"github.com/courtline/courtline/internal/domain/odds"
	"github.com/courtline/courtline/internal/domain/team"
	"github.com/courtline/courtline/internal/platform/logging"
)

// ValidationFailure records one input the merger refused to attach, with
// enough context to trace it back to its source row. Failures are values in
// the result, never errors: a bad quote must not sink the run.
type ValidationFailure struct {
	Source string            `json:"source"`
	GameID string            `json:"game_id,omitempty"`
	Team   team.Abbreviation `json:"team,omitempty"`
	Reason string            `json:"reason"`
}

func (f ValidationFailure) String() string {
	return fmt.Sprintf("%s game=%s team=%s: %s", f.Source, f.GameID, f.Team, f.Reason)
}

// Result is the merger's full output. Games holds only fully-anchored
// records; everything that could not anchor lands in Failures or Incomplete.
type Result struct {
	Teams      []team.Record
	Games      []game.MergedRecord
	Failures   []ValidationFailure
	Incomplete []string
}

// Merger joins the canonical team universe with lineups and odds into
// per-game records. The team-stat table is the anchor: a game materializes
// only when both of its teams resolve there.
type Merger struct {
	logger *logging.Logger
}

func NewMerger(logger *logging.Logger) *Merger {
	if logger == nil {
		logger = logging.Default()
	}
	return &Merger{logger: logger}
}

// MergeTeams overlays a secondary team source onto the primary one. The
// primary value wins wherever it is populated; zero-valued fields fill from
// the secondary, and teams present only in the secondary are appended. Output
// order is canonical abbreviation order.
func (m *Merger) MergeTeams(primary, secondary []team.Record) []team.Record {
	byTeam := make(map[team.Abbreviation]team.Record, len(primary))
	for _, record := range primary {
		byTeam[record.Team] = record
	}
	for _, fallback := range secondary {
		record, ok := byTeam[fallback.Team]
		if !ok {
			byTeam[fallback.Team] = fallback
			continue
		}
		byTeam[fallback.Team] = fillZeroFields(record, fallback)
	}

	out := make([]team.Record, 0, len(byTeam))
	for _, abbr := range team.All {
		if record, ok := byTeam[abbr]; ok {
			out = append(out, record)
		}
	}
	return out
}

func fillZeroFields(primary, fallback team.Record) team.Record {
	if primary.GamesPlayed == 0 {
		primary.GamesPlayed = fallback.GamesPlayed
	}
	if primary.Possessions == 0 {
		primary.Possessions = fallback.Possessions
	}
	if primary.Points == 0 {
		primary.Points = fallback.Points
	}
	if primary.PointsAllowed == 0 {
		primary.PointsAllowed = fallback.PointsAllowed
	}
	if primary.Minutes == 0 {
		primary.Minutes = fallback.Minutes
	}
	if primary.NetRating == 0 {
		primary.NetRating = fallback.NetRating
	}
	if primary.EFGPct == 0 {
		primary.EFGPct = fallback.EFGPct
	}
	if primary.TSPct == 0 {
		primary.TSPct = fallback.TSPct
	}
	if primary.ORebPct == 0 {
		primary.ORebPct = fallback.ORebPct
	}
	if primary.TOVPct == 0 {
		primary.TOVPct = fallback.TOVPct
	}
	if primary.FTRate == 0 {
		primary.FTRate = fallback.FTRate
	}
	if primary.AstPct == 0 {
		primary.AstPct = fallback.AstPct
	}
	return primary
}

// Merge builds per-game records. Quotes define the game universe and its
// home/away orientation; lineups attach by game id and side. Duplicate quotes
// for one game and market collapse to the most recently collected one.
func (m *Merger) Merge(teams []team.Record, lineups []lineup.Entry, quotes []odds.Quote) Result {
	result := Result{}
	anchor := make(map[team.Abbreviation]team.Record, len(teams))
	for _, record := range teams {
		anchor[record.Team] = record
	}

	quotes = m.dedupeQuotes(quotes)

	games := make(map[string]*game.MergedRecord)
	order := make([]string, 0)

	for _, quote := range quotes {
		if _, ok := anchor[quote.HomeTeam]; !ok {
			result.Failures = append(result.Failures, ValidationFailure{
				Source: "odds", GameID: quote.GameID, Team: quote.HomeTeam,
				Reason: "home team not present in team-stat anchor",
			})
			continue
		}
		if _, ok := anchor[quote.AwayTeam]; !ok {
			result.Failures = append(result.Failures, ValidationFailure{
				Source: "odds", GameID: quote.GameID, Team: quote.AwayTeam,
				Reason: "away team not present in team-stat anchor",
			})
			continue
		}

		record, ok := games[quote.GameID]
		if !ok {
			record = &game.MergedRecord{
				GameID: quote.GameID,
				Home:   anchor[quote.HomeTeam],
				Away:   anchor[quote.AwayTeam],
			}
			games[quote.GameID] = record
			order = append(order, quote.GameID)
		} else if record.Home.Team != quote.HomeTeam || record.Away.Team != quote.AwayTeam {
			result.Failures = append(result.Failures, ValidationFailure{
				Source: "odds", GameID: quote.GameID, Team: quote.HomeTeam,
				Reason: "quote matchup disagrees with earlier quotes for the game",
			})
			continue
		}
		record.Quotes = append(record.Quotes, quote)
	}

	lineupGames := make(map[string]bool)
	for _, entry := range lineups {
		if _, ok := anchor[entry.Team]; !ok {
			result.Failures = append(result.Failures, ValidationFailure{
				Source: "lineups", GameID: entry.GameID, Team: entry.Team,
				Reason: "lineup team not present in team-stat anchor",
			})
			continue
		}
		record, ok := games[entry.GameID]
		if !ok {
			lineupGames[entry.GameID] = true
			continue
		}
		switch entry.Team {
		case record.Home.Team:
			record.HomeLineup = append(record.HomeLineup, entry)
		case record.Away.Team:
			record.AwayLineup = append(record.AwayLineup, entry)
		default:
			result.Failures = append(result.Failures, ValidationFailure{
				Source: "lineups", GameID: entry.GameID, Team: entry.Team,
				Reason: "lineup team plays in neither side of the game",
			})
		}
	}

	for _, id := range order {
		record := *games[id]
		if err := record.Validate(); err != nil {
			result.Failures = append(result.Failures, ValidationFailure{
				Source: "merge", GameID: id, Reason: err.Error(),
			})
			continue
		}
		if len(record.HomeLineup) == 0 || len(record.AwayLineup) == 0 {
			result.Incomplete = append(result.Incomplete, id)
		}
		result.Games = append(result.Games, record)
	}

	// Lineup-only games carry no matchup orientation, so they cannot
	// materialize; they are reported as incomplete instead.
	for id := range lineupGames {
		result.Incomplete = append(result.Incomplete, id)
	}
	sort.Strings(result.Incomplete)

	result.Teams = teams
	if len(result.Failures) > 0 {
		m.logger.Warn("merge completed with validation failures",
			"games", len(result.Games), "failures", len(result.Failures),
			"incomplete", len(result.Incomplete))
	}
	return result
}

// dedupeQuotes keeps, per game and market, the most recently collected quote.
// Ties keep the later input row.
func (m *Merger) dedupeQuotes(quotes []odds.Quote) []odds.Quote {
	type key struct {
		gameID string
		market odds.Market
	}
	best := make(map[key]int, len(quotes))
	order := make([]key, 0, len(quotes))
	for i, quote := range quotes {
		k := key{quote.GameID, quote.Market}
		current, ok := best[k]
		if !ok {
			best[k] = i
			order = append(order, k)
			continue
		}
		if !quote.Timestamp.Before(quotes[current].Timestamp) {
			best[k] = i
		}
	}
	out := make([]odds.Quote, 0, len(best))
	for _, k := range order {
		out = append(out, quotes[best[k]])
	}
	return out
}
