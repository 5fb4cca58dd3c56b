package quality

import (
	"fmt"
	"math"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/courtline/courtline/internal/domain/rawtable"
	"github.com/courtline/courtline/internal/platform/logging"
)

// ErrBadValue is wrapped by every DataError.
var ErrBadValue = errors.New("value cannot be coerced to its declared type")

// DataError reports a cell that violates its column's declared type. Fatal
// for the source's run: a value that is present but unreadable means the
// upstream schema shifted, not that one row is noisy.
type DataError struct {
	Column string
	Row    int
	Value  any
}

func (e *DataError) Error() string {
	return fmt.Sprintf("column %q row %d: %v is not numeric", e.Column, e.Row, e.Value)
}

func (e *DataError) Unwrap() error { return ErrBadValue }

// MissingStrategy decides what happens to a missing cell in a ruled column.
type MissingStrategy string

const (
	MissingDrop   MissingStrategy = "drop"
	MissingMedian MissingStrategy = "median"
	MissingMode   MissingStrategy = "mode"
	MissingZero   MissingStrategy = "zero"
	MissingKeep   MissingStrategy = ""
)

// OutlierMethod selects the detector applied to a numeric column.
type OutlierMethod string

const (
	OutlierNone   OutlierMethod = ""
	OutlierZScore OutlierMethod = "zscore"
	OutlierIQR    OutlierMethod = "iqr"
)

const (
	defaultZThreshold    = 3.0
	defaultIQRMultiplier = 1.5
)

// ColumnRule declares the checks one canonical column must pass.
type ColumnRule struct {
	Required        bool
	Numeric         bool
	Min             *float64
	Max             *float64
	OutlierMethod   OutlierMethod
	OutlierParam    float64 // z threshold or IQR multiplier; zero selects the default
	MissingStrategy MissingStrategy
}

// Rules is the full quality contract for one source table.
type Rules struct {
	Columns map[string]ColumnRule
	// KeyColumns identify a logical record for deduplication. Empty disables
	// dedupe.
	KeyColumns []string
	// TimestampColumn orders duplicates; the latest survives. Ties keep the
	// last-seen row so reruns over the same input stay deterministic.
	TimestampColumn string
}

// Report counts everything the gate touched. Every number here also reaches
// the run report; nothing is silently discarded.
type Report struct {
	RowsIn            int
	RowsOut           int
	MissingValues     int
	ImputedValues     int
	OutlierValues     int
	OutOfRangeValues  int
	DuplicatesDropped int
	RowsDropped       int
}

// Gate applies a source's quality rules to its normalized table: duplicate
// collapse, missing-value strategies, range checks and outlier flagging.
// Findings are reported and flagged in place; only duplicates and rows whose
// rule says drop-on-missing leave the table.
type Gate struct {
	logger *logging.Logger
}

func NewGate(logger *logging.Logger) *Gate {
	if logger == nil {
		logger = logging.Default()
	}
	return &Gate{logger: logger}
}

// Apply runs the rules over the table. The only fatal condition is a present,
// non-coercible value in a numeric column.
func (g *Gate) Apply(t rawtable.Table, rules Rules) (rawtable.Table, Report, error) {
	out := t.Clone()
	out.AddColumn(rawtable.ColumnValid, true)
	out.AddColumn(rawtable.ColumnFlagged, false)
	report := Report{RowsIn: out.Len()}

	if len(rules.KeyColumns) > 0 {
		g.dedupe(&out, rules, &report)
	}

	if err := g.checkNumericTypes(out, rules); err != nil {
		return rawtable.Table{}, Report{}, err
	}

	g.handleMissing(&out, rules, &report)
	g.checkRanges(&out, rules, &report)
	g.flagOutliers(&out, rules, &report)

	report.RowsOut = out.Len()
	return out, report, nil
}

// dedupe keeps, per key, the row with the latest timestamp. Rows lacking a
// timestamp sort earliest and lose to any timestamped duplicate.
func (g *Gate) dedupe(t *rawtable.Table, rules Rules, report *Report) {
	type winner struct {
		index int
	}
	best := make(map[string]winner, t.Len())
	keyOf := func(row rawtable.Row) string {
		key := ""
		for _, column := range rules.KeyColumns {
			cell, _ := row.String(column)
			key += cell + "\x00"
		}
		return key
	}
	later := func(candidate, incumbent rawtable.Row) bool {
		if rules.TimestampColumn == "" {
			return true // last-seen wins without a timestamp column
		}
		ct, cok := candidate.Time(rules.TimestampColumn)
		it, iok := incumbent.Time(rules.TimestampColumn)
		if !cok {
			return !iok
		}
		if !iok {
			return true
		}
		return !ct.Before(it)
	}

	for i, row := range t.Rows {
		key := keyOf(row)
		current, ok := best[key]
		if !ok || later(row, t.Rows[current.index]) {
			best[key] = winner{index: i}
		}
	}

	kept := make([]rawtable.Row, 0, len(best))
	for i, row := range t.Rows {
		if best[keyOf(row)].index == i {
			kept = append(kept, row)
		}
	}
	dropped := len(t.Rows) - len(kept)
	if dropped > 0 {
		report.DuplicatesDropped += dropped
		report.RowsDropped += dropped
		g.logger.Info("collapsed duplicate rows",
			"key", fmt.Sprintf("%v", rules.KeyColumns), "dropped", dropped)
	}
	t.Rows = kept
}

func (g *Gate) checkNumericTypes(t rawtable.Table, rules Rules) error {
	for column, rule := range rules.Columns {
		if !rule.Numeric || !t.HasColumn(column) {
			continue
		}
		for i, row := range t.Rows {
			if row.Missing(column) {
				continue
			}
			if _, ok := row.Float(column); !ok {
				return &DataError{Column: column, Row: i, Value: row[column]}
			}
		}
	}
	return nil
}

func (g *Gate) handleMissing(t *rawtable.Table, rules Rules, report *Report) {
	kept := t.Rows[:0]
	drop := make(map[int]bool)

	for column, rule := range rules.Columns {
		if !t.HasColumn(column) {
			continue
		}
		missing := make([]int, 0)
		for i, row := range t.Rows {
			if row.Missing(column) {
				missing = append(missing, i)
			}
		}
		if len(missing) == 0 {
			continue
		}
		report.MissingValues += len(missing)

		switch rule.MissingStrategy {
		case MissingDrop:
			for _, i := range missing {
				drop[i] = true
			}
		case MissingMedian:
			if value, ok := columnMedian(*t, column); ok {
				for _, i := range missing {
					t.Rows[i][column] = value
					report.ImputedValues++
				}
			}
		case MissingMode:
			if value, ok := columnMode(*t, column); ok {
				for _, i := range missing {
					t.Rows[i][column] = value
					report.ImputedValues++
				}
			}
		case MissingZero:
			for _, i := range missing {
				t.Rows[i][column] = 0.0
				report.ImputedValues++
			}
		default:
			if rule.Required {
				// No fill strategy for a required column: the row stays but
				// cannot bind.
				for _, i := range missing {
					t.Rows[i][rawtable.ColumnValid] = false
				}
			}
		}
	}

	for i, row := range t.Rows {
		if drop[i] {
			report.RowsDropped++
			continue
		}
		kept = append(kept, row)
	}
	if len(drop) > 0 {
		g.logger.Info("dropped rows for missing required values", "rows", len(drop))
	}
	t.Rows = kept
}

func (g *Gate) checkRanges(t *rawtable.Table, rules Rules, report *Report) {
	for column, rule := range rules.Columns {
		if !rule.Numeric || !t.HasColumn(column) || (rule.Min == nil && rule.Max == nil) {
			continue
		}
		for _, row := range t.Rows {
			value, ok := row.Float(column)
			if !ok {
				continue
			}
			if (rule.Min != nil && value < *rule.Min) || (rule.Max != nil && value > *rule.Max) {
				report.OutOfRangeValues++
				row[rawtable.ColumnFlagged] = true
			}
		}
	}
}

func (g *Gate) flagOutliers(t *rawtable.Table, rules Rules, report *Report) {
	for column, rule := range rules.Columns {
		if rule.OutlierMethod == OutlierNone || !t.HasColumn(column) {
			continue
		}
		values, indexes := columnValues(*t, column)
		if len(values) < 3 {
			continue
		}

		var isOutlier func(v float64) bool
		switch rule.OutlierMethod {
		case OutlierZScore:
			threshold := rule.OutlierParam
			if threshold == 0 {
				threshold = defaultZThreshold
			}
			mean, stddev := meanStddev(values)
			if stddev == 0 {
				continue
			}
			isOutlier = func(v float64) bool {
				return math.Abs(v-mean)/stddev > threshold
			}
		case OutlierIQR:
			k := rule.OutlierParam
			if k == 0 {
				k = defaultIQRMultiplier
			}
			q1, q3 := quartiles(values)
			iqr := q3 - q1
			low, high := q1-k*iqr, q3+k*iqr
			isOutlier = func(v float64) bool {
				return v < low || v > high
			}
		default:
			continue
		}

		flagged := 0
		for j, value := range values {
			if isOutlier(value) {
				t.Rows[indexes[j]][rawtable.ColumnFlagged] = true
				report.OutlierValues++
				flagged++
			}
		}
		if flagged > 0 {
			g.logger.Info("flagged outlier values",
				"column", column, "method", string(rule.OutlierMethod), "count", flagged)
		}
	}
}

func columnValues(t rawtable.Table, column string) ([]float64, []int) {
	values := make([]float64, 0, t.Len())
	indexes := make([]int, 0, t.Len())
	for i, row := range t.Rows {
		if value, ok := row.Float(column); ok {
			values = append(values, value)
			indexes = append(indexes, i)
		}
	}
	return values, indexes
}

func columnMedian(t rawtable.Table, column string) (float64, bool) {
	values, _ := columnValues(t, column)
	if len(values) == 0 {
		return 0, false
	}
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid], true
	}
	return (values[mid-1] + values[mid]) / 2, true
}

func columnMode(t rawtable.Table, column string) (any, bool) {
	counts := make(map[string]int)
	first := make(map[string]any)
	order := make([]string, 0)
	for _, row := range t.Rows {
		if row.Missing(column) {
			continue
		}
		key, _ := row.String(column)
		if _, seen := counts[key]; !seen {
			first[key] = row[column]
			order = append(order, key)
		}
		counts[key]++
	}
	if len(counts) == 0 {
		return nil, false
	}
	bestKey, bestCount := "", -1
	for _, key := range order { // first-seen wins ties, keeps runs deterministic
		if counts[key] > bestCount {
			bestKey, bestCount = key, counts[key]
		}
	}
	return first[bestKey], true
}

func meanStddev(values []float64) (float64, float64) {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(values)))
}

// quartiles uses linear interpolation between closest ranks.
func quartiles(values []float64) (float64, float64) {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return percentile(sorted, 0.25), percentile(sorted, 0.75)
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	weight := rank - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
