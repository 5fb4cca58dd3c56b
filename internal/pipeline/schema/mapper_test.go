package schema

import (
	"errors"
	"testing"

	"github.com/courtline/courtline/internal/domain/playerstats"
	"github.com/courtline/courtline/internal/domain/rawtable"
	"github.com/courtline/courtline/internal/domain/team"
	"github.com/courtline/courtline/internal/platform/logging"
)

func newTestMapper() *Mapper {
	return NewMapper(logging.NewNop())
}

func TestMapRenamesTeamColumns(t *testing.T) {
	in := rawtable.New("TEAM_NAME", "W", "L", "W_PCT", "OFF_RATING", "DEF_RATING", "PACE", "TEAM_ID")
	in.Append(rawtable.Row{
		"TEAM_NAME":  "Boston Celtics",
		"W":          50,
		"L":          20,
		"W_PCT":      0.714,
		"OFF_RATING": 118.2,
		"DEF_RATING": 110.5,
		"PACE":       98.4,
		"TEAM_ID":    1610612738,
	})

	out, err := newTestMapper().Map(in, rawtable.SourceNBAStatsTeam)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	for _, column := range []string{team.ColTeam, team.ColWins, team.ColLosses, team.ColWinPct, team.ColPace} {
		if !out.HasColumn(column) {
			t.Fatalf("expected canonical column %q", column)
		}
	}
	if out.HasColumn("TEAM_ID") {
		t.Fatal("TEAM_ID should have been dropped")
	}
	if name, _ := out.Rows[0].String(team.ColTeam); name != "Boston Celtics" {
		t.Fatalf("team cell = %q", name)
	}
}

func TestMapRetainsUnmappedColumns(t *testing.T) {
	in := rawtable.New("TEAM_NAME", "W", "L", "W_PCT", "OFF_RATING", "DEF_RATING", "PACE", "SOME_EXTRA")
	in.Append(rawtable.Row{"TEAM_NAME": "Miami Heat", "SOME_EXTRA": "kept"})

	out, err := newTestMapper().Map(in, rawtable.SourceNBAStatsTeam)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if !out.HasColumn("SOME_EXTRA") {
		t.Fatal("unmapped column should be retained, not dropped")
	}
}

func TestMapMissingRequiredColumn(t *testing.T) {
	in := rawtable.New("TEAM_NAME", "W", "L") // no ratings, no pace
	in.Append(rawtable.Row{"TEAM_NAME": "Utah Jazz"})

	_, err := newTestMapper().Map(in, rawtable.SourceNBAStatsTeam)
	if err == nil {
		t.Fatal("expected mapping error")
	}
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
	var mapErr *MappingError
	if !errors.As(err, &mapErr) {
		t.Fatalf("expected *MappingError, got %T", err)
	}
	if mapErr.Source != rawtable.SourceNBAStatsTeam {
		t.Fatalf("MappingError.Source = %q", mapErr.Source)
	}
}

func TestMapUnknownSource(t *testing.T) {
	_, err := newTestMapper().Map(rawtable.New("a"), rawtable.SourceKind("espn"))
	if !errors.Is(err, ErrUnknownSource) {
		t.Fatalf("expected ErrUnknownSource, got %v", err)
	}
}

func TestMapPlayerColumns(t *testing.T) {
	in := rawtable.New("PLAYER_NAME", "TEAM_ABBREVIATION", "MIN", "USG_PCT", "PLAYER_ID")
	in.Append(rawtable.Row{
		"PLAYER_NAME":       "Jayson Tatum",
		"TEAM_ABBREVIATION": "BOS",
		"MIN":               36.1,
		"USG_PCT":           0.31,
		"PLAYER_ID":         1628369,
	})

	out, err := newTestMapper().Map(in, rawtable.SourceNBAStatsPlayer)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if !out.HasColumn(playerstats.ColMinutesPlayed) {
		t.Fatalf("expected %q column", playerstats.ColMinutesPlayed)
	}
	if out.HasColumn("PLAYER_ID") {
		t.Fatal("PLAYER_ID should have been dropped")
	}
	if minutes, _ := out.Rows[0].Float(playerstats.ColMinutesPlayed); minutes != 36.1 {
		t.Fatalf("minutes cell = %v", minutes)
	}
}

func TestMapDoesNotMutateInput(t *testing.T) {
	in := rawtable.New("TEAM_NAME", "W", "L", "W_PCT", "OFF_RATING", "DEF_RATING", "PACE")
	in.Append(rawtable.Row{"TEAM_NAME": "Denver Nuggets"})

	if _, err := newTestMapper().Map(in, rawtable.SourceNBAStatsTeam); err != nil {
		t.Fatalf("Map: %v", err)
	}
	if !in.HasColumn("TEAM_NAME") {
		t.Fatal("input table was mutated")
	}
	if _, ok := in.Rows[0]["TEAM_NAME"]; !ok {
		t.Fatal("input row was mutated")
	}
}
