package game

import (
	"fmt"

	"github.com/courtline/courtline/internal/domain/lineup"
	"github.com/courtline/courtline/internal/domain/odds"
	"github.com/courtline/courtline/internal/domain/team"
)

// MergedRecord joins the canonical team snapshots, reported lineups and odds
// quotes for one game. Produced only when both team identifiers resolve in
// the team-stat anchor; anything else is reported, not materialized.
type MergedRecord struct {
	GameID     string
	Home       team.Record
	Away       team.Record
	HomeLineup []lineup.Entry
	AwayLineup []lineup.Entry
	Quotes     []odds.Quote
}

func (r MergedRecord) Validate() error {
	if r.GameID == "" {
		return fmt.Errorf("merged game: game id is required")
	}
	if r.Home.Team == r.Away.Team {
		return fmt.Errorf("merged game %s: home and away team are both %s", r.GameID, r.Home.Team)
	}
	if !r.Home.Team.Valid() || !r.Away.Team.Valid() {
		return fmt.Errorf("merged game %s: unresolved team identifier", r.GameID)
	}
	return nil
}

// QuoteForMarket returns the game's quote for the given market, if present.
func (r MergedRecord) QuoteForMarket(market odds.Market) (odds.Quote, bool) {
	for _, quote := range r.Quotes {
		if quote.Market == market {
			return quote, true
		}
	}
	return odds.Quote{}, false
}
