package odds

import (
	"fmt"
	"time"

	"github.com/courtline/courtline/internal/domain/rawtable"
	"github.com/courtline/courtline/internal/domain/team"
)

// Market is the bet market a quote prices.
type Market string

const (
	MarketMoneyline Market = "moneyline"
	MarketSpread    Market = "spread"
	MarketTotal     Market = "total"
	MarketUnknown   Market = "Unknown"
)

var AllMarkets = map[Market]struct{}{
	MarketMoneyline: {},
	MarketSpread:    {},
	MarketTotal:     {},
}

// NormalizeMarket maps a raw value onto the enumeration, returning
// MarketUnknown (and false) for anything outside it.
func NormalizeMarket(value string) (Market, bool) {
	market := Market(value)
	if _, ok := AllMarkets[market]; ok {
		return market, true
	}
	return MarketUnknown, false
}

// Quote is one bookmaker price for a game, in decimal odds.
type Quote struct {
	GameID    string
	HomeTeam  team.Abbreviation
	AwayTeam  team.Abbreviation
	Market    Market
	Price     float64
	Timestamp time.Time
}

func (q Quote) Validate() error {
	if q.GameID == "" {
		return fmt.Errorf("odds quote: game id is required")
	}
	if _, ok := AllMarkets[q.Market]; !ok {
		return fmt.Errorf("odds quote %s: invalid market %q", q.GameID, q.Market)
	}
	if q.Price <= 1.0 {
		return fmt.Errorf("odds quote %s: decimal price %.3f must exceed 1.0", q.GameID, q.Price)
	}
	return nil
}

// ImpliedProbability is the bookmaker's break-even win probability, the
// inverse of the decimal price.
func (q Quote) ImpliedProbability() float64 {
	return 1.0 / q.Price
}

// Canonical column names for odds tables after schema mapping.
const (
	ColGameID      = "game_id"
	ColHomeTeam    = "home_team"
	ColAwayTeam    = "away_team"
	ColMarket      = "market"
	ColPrice       = "price"
	ColCollectedAt = rawtable.ColumnCollectedAt
)

// FromTable binds a normalized odds table into typed quotes. Rows the
// normalizer flagged invalid are skipped; rows that bind but fail record
// validation (bad price, out-of-enumeration market) are skipped too and
// counted, so one noisy quote never aborts the run.
func FromTable(t rawtable.Table) ([]Quote, int) {
	out := make([]Quote, 0, t.Len())
	skipped := 0
	for _, row := range t.Rows {
		if t.HasColumn(rawtable.ColumnValid) && !row.Bool(rawtable.ColumnValid) {
			continue
		}

		gameID, _ := row.String(ColGameID)
		home, _ := row.String(ColHomeTeam)
		away, _ := row.String(ColAwayTeam)
		market, _ := row.String(ColMarket)
		price, _ := row.Float(ColPrice)

		quote := Quote{
			GameID:   gameID,
			HomeTeam: team.Abbreviation(home),
			AwayTeam: team.Abbreviation(away),
			Market:   Market(market),
			Price:    price,
		}
		if ts, ok := row.Time(ColCollectedAt); ok {
			quote.Timestamp = ts
		}
		if err := quote.Validate(); err != nil {
			skipped++
			continue
		}
		out = append(out, quote)
	}
	return out, skipped
}
