package normalize

import (
	"testing"

	"github.com/courtline/courtline/internal/domain/lineup"
	"github.com/courtline/courtline/internal/domain/odds"
	"github.com/courtline/courtline/internal/domain/playerstats"
	"github.com/courtline/courtline/internal/domain/rawtable"
	"github.com/courtline/courtline/internal/domain/team"
	"github.com/courtline/courtline/internal/platform/logging"
)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(team.DefaultAliases(), logging.NewNop())
}

func TestNormalizeResolvesTeamAliases(t *testing.T) {
	in := rawtable.New(team.ColTeam)
	in.Append(rawtable.Row{team.ColTeam: "Boston Celtics"})
	in.Append(rawtable.Row{team.ColTeam: "bkn"})
	in.Append(rawtable.Row{team.ColTeam: "Phoenix Suns"})
	in.Append(rawtable.Row{team.ColTeam: "Seattle SuperSonics"})

	out, report := newTestNormalizer().Normalize(in, rawtable.SourceNBAStatsTeam)

	want := []string{"BOS", "BKN", "PHX", "OKC"}
	for i, expected := range want {
		got, _ := out.Rows[i].String(team.ColTeam)
		if got != expected {
			t.Fatalf("row %d: team = %q, want %q", i, got, expected)
		}
		if !out.Rows[i].Bool(rawtable.ColumnValid) {
			t.Fatalf("row %d unexpectedly invalid", i)
		}
	}
	if report.UnknownTeams != 0 {
		t.Fatalf("UnknownTeams = %d", report.UnknownTeams)
	}
}

func TestNormalizeFlagsUnknownTeamWithoutDropping(t *testing.T) {
	in := rawtable.New(team.ColTeam)
	in.Append(rawtable.Row{team.ColTeam: "Miami Heat"})
	in.Append(rawtable.Row{team.ColTeam: "Springfield Dunkers"})

	out, report := newTestNormalizer().Normalize(in, rawtable.SourceBRefTeam)

	if out.Len() != 2 {
		t.Fatalf("row count changed: %d", out.Len())
	}
	if !out.Rows[0].Bool(rawtable.ColumnValid) {
		t.Fatal("known team flagged invalid")
	}
	if out.Rows[1].Bool(rawtable.ColumnValid) {
		t.Fatal("unknown team not flagged invalid")
	}
	// Original cell is preserved for the report, never fuzzily rewritten.
	if raw, _ := out.Rows[1].String(team.ColTeam); raw != "Springfield Dunkers" {
		t.Fatalf("unknown team cell rewritten to %q", raw)
	}
	if report.UnknownTeams != 1 || report.InvalidRows != 1 {
		t.Fatalf("report = %+v", report)
	}
}

func TestNormalizePlayerNamesAndPositions(t *testing.T) {
	in := rawtable.New(playerstats.ColName, playerstats.ColTeam, playerstats.ColPosition)
	in.Append(rawtable.Row{
		playerstats.ColName:     "LEBRON JAMES",
		playerstats.ColTeam:     "Los Angeles Lakers",
		playerstats.ColPosition: "sf",
	})
	in.Append(rawtable.Row{
		playerstats.ColName:     "nikola jokic",
		playerstats.ColTeam:     "DEN",
		playerstats.ColPosition: "Center-Forward",
	})

	out, report := newTestNormalizer().Normalize(in, rawtable.SourceNBAStatsPlayer)

	if name, _ := out.Rows[0].String(playerstats.ColName); name != "Lebron James" {
		t.Fatalf("name = %q", name)
	}
	if pos, _ := out.Rows[0].String(playerstats.ColPosition); pos != string(playerstats.PositionSmallForward) {
		t.Fatalf("position = %q", pos)
	}
	if pos, _ := out.Rows[1].String(playerstats.ColPosition); pos != string(playerstats.PositionUnknown) {
		t.Fatalf("unmapped position = %q, want Unknown", pos)
	}
	if report.UnknownPositions != 1 {
		t.Fatalf("UnknownPositions = %d", report.UnknownPositions)
	}
}

func TestNormalizeLineupStatuses(t *testing.T) {
	in := rawtable.New(lineup.ColTeam, lineup.ColPlayer, lineup.ColStatus)
	rows := []struct {
		status string
		want   lineup.Status
	}{
		{"active", lineup.StatusActive},
		{"Questionable", lineup.StatusGTD},
		{"OUT", lineup.StatusOut},
		{"retired", lineup.StatusUnknown},
	}
	for _, r := range rows {
		in.Append(rawtable.Row{
			lineup.ColTeam:   "Chicago Bulls",
			lineup.ColPlayer: "some player",
			lineup.ColStatus: r.status,
		})
	}

	out, report := newTestNormalizer().Normalize(in, rawtable.SourceLineups)

	for i, r := range rows {
		if got, _ := out.Rows[i].String(lineup.ColStatus); got != string(r.want) {
			t.Fatalf("row %d: status = %q, want %q", i, got, r.want)
		}
	}
	if report.UnknownStatuses != 1 {
		t.Fatalf("UnknownStatuses = %d", report.UnknownStatuses)
	}
}

func TestNormalizeOddsTeamsAndMarkets(t *testing.T) {
	in := rawtable.New(odds.ColHomeTeam, odds.ColAwayTeam, odds.ColMarket)
	in.Append(rawtable.Row{
		odds.ColHomeTeam: "Golden State Warriors",
		odds.ColAwayTeam: "Memphis",
		odds.ColMarket:   "h2h",
	})
	in.Append(rawtable.Row{
		odds.ColHomeTeam: "Toronto Raptors",
		odds.ColAwayTeam: "Halifax Schooners",
		odds.ColMarket:   "spreads",
	})

	out, report := newTestNormalizer().Normalize(in, rawtable.SourceOddsAPI)

	if home, _ := out.Rows[0].String(odds.ColHomeTeam); home != "GSW" {
		t.Fatalf("home = %q", home)
	}
	if market, _ := out.Rows[0].String(odds.ColMarket); market != string(odds.MarketMoneyline) {
		t.Fatalf("market = %q", market)
	}
	if market, _ := out.Rows[1].String(odds.ColMarket); market != string(odds.MarketSpread) {
		t.Fatalf("market = %q", market)
	}
	if out.Rows[1].Bool(rawtable.ColumnValid) {
		t.Fatal("row with unknown away team should be invalid")
	}
	if report.UnknownTeams != 1 {
		t.Fatalf("UnknownTeams = %d", report.UnknownTeams)
	}
}

func TestNormalizeFoldsUnknownMarketToSentinel(t *testing.T) {
	in := rawtable.New(odds.ColHomeTeam, odds.ColAwayTeam, odds.ColMarket)
	in.Append(rawtable.Row{
		odds.ColHomeTeam: "Boston Celtics",
		odds.ColAwayTeam: "Miami Heat",
		odds.ColMarket:   "futures",
	})

	out, report := newTestNormalizer().Normalize(in, rawtable.SourceOddsAPI)

	if market, _ := out.Rows[0].String(odds.ColMarket); market != string(odds.MarketUnknown) {
		t.Fatalf("market = %q, want %q", market, odds.MarketUnknown)
	}
	if report.UnknownMarkets != 1 {
		t.Fatalf("UnknownMarkets = %d", report.UnknownMarkets)
	}
	// The row stays valid here; the bind stage skips quotes it cannot price.
	if !out.Rows[0].Bool(rawtable.ColumnValid) {
		t.Fatal("row with unknown market should stay valid")
	}
}

func TestNormalizePreservesRowCount(t *testing.T) {
	in := rawtable.New(team.ColTeam)
	for i := 0; i < 10; i++ {
		in.Append(rawtable.Row{team.ColTeam: "nowhere"})
	}
	out, report := newTestNormalizer().Normalize(in, rawtable.SourceNBAStatsTeam)
	if out.Len() != 10 || report.RowsIn != 10 {
		t.Fatalf("rows out = %d, rows in = %d", out.Len(), report.RowsIn)
	}
}
