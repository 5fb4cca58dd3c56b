package quality

import (
	"errors"
	"testing"
	"time"

	"github.com/courtline/courtline/internal/domain/rawtable"
	"github.com/courtline/courtline/internal/platform/logging"
)

func newTestGate() *Gate {
	return NewGate(logging.NewNop())
}

func TestApplyImputesMedianForMissing(t *testing.T) {
	in := rawtable.New("team", "pace")
	in.Append(rawtable.Row{"team": "BOS", "pace": 96.0})
	in.Append(rawtable.Row{"team": "MIA", "pace": 100.0})
	in.Append(rawtable.Row{"team": "DEN", "pace": 98.0})
	in.Append(rawtable.Row{"team": "LAL", "pace": nil})

	rules := Rules{Columns: map[string]ColumnRule{
		"pace": {Numeric: true, MissingStrategy: MissingMedian},
	}}
	out, report, err := newTestGate().Apply(in, rules)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if report.MissingValues != 1 || report.ImputedValues != 1 {
		t.Fatalf("report = %+v", report)
	}
	if pace, _ := out.Rows[3].Float("pace"); pace != 98.0 {
		t.Fatalf("imputed pace = %v, want median 98.0", pace)
	}
	if out.Len() != 4 {
		t.Fatalf("rows out = %d", out.Len())
	}
}

func TestApplyImputesModeForMissing(t *testing.T) {
	in := rawtable.New("position")
	for _, p := range []any{"C", "PG", "PG", nil} {
		in.Append(rawtable.Row{"position": p})
	}
	rules := Rules{Columns: map[string]ColumnRule{
		"position": {MissingStrategy: MissingMode},
	}}
	out, _, err := newTestGate().Apply(in, rules)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if pos, _ := out.Rows[3].String("position"); pos != "PG" {
		t.Fatalf("imputed position = %q, want mode PG", pos)
	}
}

func TestApplyDropStrategyRemovesAndCounts(t *testing.T) {
	in := rawtable.New("price")
	in.Append(rawtable.Row{"price": 1.91})
	in.Append(rawtable.Row{"price": nil})
	rules := Rules{Columns: map[string]ColumnRule{
		"price": {Required: true, Numeric: true, MissingStrategy: MissingDrop},
	}}
	out, report, err := newTestGate().Apply(in, rules)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Len() != 1 {
		t.Fatalf("rows out = %d, want 1", out.Len())
	}
	if report.RowsDropped != 1 || report.MissingValues != 1 {
		t.Fatalf("report = %+v", report)
	}
}

func TestApplyNonCoercibleNumericIsFatal(t *testing.T) {
	in := rawtable.New("pace")
	in.Append(rawtable.Row{"pace": "fast"})
	rules := Rules{Columns: map[string]ColumnRule{
		"pace": {Numeric: true},
	}}
	_, _, err := newTestGate().Apply(in, rules)
	if err == nil {
		t.Fatal("expected error for non-coercible numeric value")
	}
	if !errors.Is(err, ErrBadValue) {
		t.Fatalf("expected ErrBadValue, got %v", err)
	}
	var dataErr *DataError
	if !errors.As(err, &dataErr) || dataErr.Column != "pace" {
		t.Fatalf("unexpected error detail: %v", err)
	}
}

func TestApplyFlagsOutOfRangeWithoutDropping(t *testing.T) {
	in := rawtable.New("win_pct")
	in.Append(rawtable.Row{"win_pct": 0.6})
	in.Append(rawtable.Row{"win_pct": 1.4})
	rules := Rules{Columns: map[string]ColumnRule{
		"win_pct": {Numeric: true, Min: ptr(0), Max: ptr(1)},
	}}
	out, report, err := newTestGate().Apply(in, rules)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Len() != 2 {
		t.Fatalf("rows out = %d", out.Len())
	}
	if report.OutOfRangeValues != 1 {
		t.Fatalf("OutOfRangeValues = %d", report.OutOfRangeValues)
	}
	if !out.Rows[1].Bool(rawtable.ColumnFlagged) {
		t.Fatal("out-of-range row not flagged")
	}
	if out.Rows[0].Bool(rawtable.ColumnFlagged) {
		t.Fatal("in-range row flagged")
	}
}

func TestApplyZScoreOutlier(t *testing.T) {
	in := rawtable.New("points")
	for _, v := range []float64{110, 112, 108, 111, 109, 110, 112, 108, 111, 500} {
		in.Append(rawtable.Row{"points": v})
	}
	rules := Rules{Columns: map[string]ColumnRule{
		"points": {Numeric: true, OutlierMethod: OutlierZScore},
	}}
	out, report, err := newTestGate().Apply(in, rules)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if report.OutlierValues != 1 {
		t.Fatalf("OutlierValues = %d", report.OutlierValues)
	}
	if !out.Rows[9].Bool(rawtable.ColumnFlagged) {
		t.Fatal("extreme value not flagged")
	}
}

func TestApplyIQROutlier(t *testing.T) {
	in := rawtable.New("pace")
	for _, v := range []float64{97, 98, 99, 100, 101, 102, 103, 140} {
		in.Append(rawtable.Row{"pace": v})
	}
	rules := Rules{Columns: map[string]ColumnRule{
		"pace": {Numeric: true, OutlierMethod: OutlierIQR},
	}}
	out, report, err := newTestGate().Apply(in, rules)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if report.OutlierValues != 1 {
		t.Fatalf("OutlierValues = %d", report.OutlierValues)
	}
	if !out.Rows[7].Bool(rawtable.ColumnFlagged) {
		t.Fatal("extreme pace not flagged")
	}
}

func TestApplyDedupeKeepsLatest(t *testing.T) {
	earlier := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	later := time.Date(2026, 1, 10, 18, 0, 0, 0, time.UTC)

	in := rawtable.New("team", "wins", rawtable.ColumnCollectedAt)
	in.Append(rawtable.Row{"team": "BOS", "wins": 30, rawtable.ColumnCollectedAt: earlier})
	in.Append(rawtable.Row{"team": "BOS", "wins": 31, rawtable.ColumnCollectedAt: later})
	in.Append(rawtable.Row{"team": "MIA", "wins": 25, rawtable.ColumnCollectedAt: earlier})

	rules := Rules{
		KeyColumns:      []string{"team"},
		TimestampColumn: rawtable.ColumnCollectedAt,
	}
	out, report, err := newTestGate().Apply(in, rules)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Len() != 2 {
		t.Fatalf("rows out = %d, want 2", out.Len())
	}
	if report.DuplicatesDropped != 1 {
		t.Fatalf("DuplicatesDropped = %d", report.DuplicatesDropped)
	}
	for _, row := range out.Rows {
		if teamName, _ := row.String("team"); teamName == "BOS" {
			if wins, _ := row.Float("wins"); wins != 31 {
				t.Fatalf("kept wins = %v, want latest 31", wins)
			}
		}
	}
}

func TestApplyMissingRequiredWithoutStrategyFlagsRowInvalid(t *testing.T) {
	in := rawtable.New("team")
	in.Append(rawtable.Row{"team": "BOS"})
	in.Append(rawtable.Row{"team": ""})
	rules := Rules{Columns: map[string]ColumnRule{
		"team": {Required: true},
	}}
	out, report, err := newTestGate().Apply(in, rules)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Len() != 2 {
		t.Fatalf("rows out = %d", out.Len())
	}
	if out.Rows[1].Bool(rawtable.ColumnValid) {
		t.Fatal("row with missing required value should be invalid")
	}
	if report.MissingValues != 1 {
		t.Fatalf("MissingValues = %d", report.MissingValues)
	}
}

func TestDefaultRulesCoverAllSources(t *testing.T) {
	for source := range rawtable.AllSources {
		rules := DefaultRules(source)
		if len(rules.Columns) == 0 {
			t.Fatalf("no default rules for source %s", source)
		}
		if len(rules.KeyColumns) == 0 {
			t.Fatalf("no dedupe key for source %s", source)
		}
		rule, ok := rules.Columns[rawtable.ColumnCollectedAt]
		if !ok || rule.MissingStrategy != MissingDrop {
			t.Fatalf("source %s: collected_at rule = %+v, want drop on missing", source, rule)
		}
	}
}

func TestDefaultRulesDropRowsMissingTimestamp(t *testing.T) {
	collected := time.Date(2026, 2, 1, 18, 0, 0, 0, time.UTC)
	in := rawtable.New("game_id", "team", "player", "status", rawtable.ColumnCollectedAt)
	in.Append(rawtable.Row{
		"game_id": "g1", "team": "BOS", "player": "A", "status": "Active",
		rawtable.ColumnCollectedAt: collected,
	})
	in.Append(rawtable.Row{
		"game_id": "g1", "team": "BOS", "player": "B", "status": "Active",
		rawtable.ColumnCollectedAt: nil,
	})

	out, report, err := newTestGate().Apply(in, DefaultRules(rawtable.SourceLineups))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Len() != 1 {
		t.Fatalf("rows out = %d, want 1", out.Len())
	}
	if player, _ := out.Rows[0].String("player"); player != "A" {
		t.Fatalf("kept player = %q", player)
	}
	if report.RowsDropped != 1 {
		t.Fatalf("RowsDropped = %d", report.RowsDropped)
	}
}
