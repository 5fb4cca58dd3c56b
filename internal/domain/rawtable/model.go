package rawtable

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SourceKind tags which upstream schema a raw table was collected from.
type SourceKind string

const (
	SourceNBAStatsTeam   SourceKind = "nba_stats_team"
	SourceBRefTeam       SourceKind = "bref_team"
	SourceNBAStatsPlayer SourceKind = "nba_stats_player"
	SourceLineups        SourceKind = "lineups"
	SourceOddsAPI        SourceKind = "odds_api"
)

var AllSources = map[SourceKind]struct{}{
	SourceNBAStatsTeam:   {},
	SourceBRefTeam:       {},
	SourceNBAStatsPlayer: {},
	SourceLineups:        {},
	SourceOddsAPI:        {},
}

func (k SourceKind) Valid() bool {
	_, ok := AllSources[k]
	return ok
}

// Reserved columns added by pipeline stages. Rows are never removed for
// row-local problems; they are flagged here and downstream stages decide.
const (
	ColumnValid       = "__valid"
	ColumnFlagged     = "__flagged"
	ColumnCollectedAt = "collected_at"
)

// Row is one record keyed by column name. Cell values are the decoded
// upstream payload: string, float64, int, int64, bool or time.Time.
type Row map[string]any

// Table is an immutable-by-convention tabular snapshot. Stages copy before
// mutating so a raw input table can be replayed.
type Table struct {
	Columns []string
	Rows    []Row
}

func New(columns ...string) Table {
	return Table{Columns: append([]string(nil), columns...)}
}

func (t Table) Len() int { return len(t.Rows) }

func (t Table) HasColumn(name string) bool {
	for _, column := range t.Columns {
		if column == name {
			return true
		}
	}
	return false
}

func (t Table) Clone() Table {
	out := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, 0, len(t.Rows)),
	}
	for _, row := range t.Rows {
		cloned := make(Row, len(row))
		for key, value := range row {
			cloned[key] = value
		}
		out.Rows = append(out.Rows, cloned)
	}
	return out
}

// AddColumn registers a column and fills existing rows with the given default.
// A no-op when the column already exists.
func (t *Table) AddColumn(name string, defaultValue any) {
	if t.HasColumn(name) {
		return
	}
	t.Columns = append(t.Columns, name)
	for _, row := range t.Rows {
		if _, ok := row[name]; !ok {
			row[name] = defaultValue
		}
	}
}

func (t *Table) RenameColumn(from, to string) error {
	if !t.HasColumn(from) {
		return fmt.Errorf("rename column: %q not present", from)
	}
	if t.HasColumn(to) {
		return fmt.Errorf("rename column: target %q already present", to)
	}
	for i, column := range t.Columns {
		if column == from {
			t.Columns[i] = to
		}
	}
	for _, row := range t.Rows {
		if value, ok := row[from]; ok {
			row[to] = value
			delete(row, from)
		}
	}
	return nil
}

func (t *Table) DropColumn(name string) {
	kept := t.Columns[:0]
	for _, column := range t.Columns {
		if column != name {
			kept = append(kept, column)
		}
	}
	t.Columns = kept
	for _, row := range t.Rows {
		delete(row, name)
	}
}

func (t *Table) Append(row Row) {
	t.Rows = append(t.Rows, row)
}

// SortedColumns returns the column set in deterministic order, used when a
// stable iteration order matters (reports, hashing, exports).
func (t Table) SortedColumns() []string {
	out := append([]string(nil), t.Columns...)
	sort.Strings(out)
	return out
}

// Missing reports whether the cell is absent, nil or a blank string.
func (r Row) Missing(column string) bool {
	value, ok := r[column]
	if !ok || value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// Float reads a numeric cell, coercing string payloads where possible.
func (r Row) Float(column string) (float64, bool) {
	value, ok := r[column]
	if !ok || value == nil {
		return 0, false
	}
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func (r Row) String(column string) (string, bool) {
	value, ok := r[column]
	if !ok || value == nil {
		return "", false
	}
	switch v := value.(type) {
	case string:
		return v, true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}

func (r Row) Bool(column string) bool {
	value, ok := r[column]
	if !ok {
		return false
	}
	b, ok := value.(bool)
	return ok && b
}

// Time reads a timestamp cell, accepting time.Time, RFC 3339 strings and
// bare dates.
func (r Row) Time(column string) (time.Time, bool) {
	value, ok := r[column]
	if !ok || value == nil {
		return time.Time{}, false
	}
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		trimmed := strings.TrimSpace(v)
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}
