package normalize

import (
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/courtline/courtline/internal/domain/lineup"
	"github.com/courtline/courtline/internal/domain/odds"
	"github.com/courtline/courtline/internal/domain/playerstats"
	"github.com/courtline/courtline/internal/domain/rawtable"
	"github.com/courtline/courtline/internal/domain/team"
	"github.com/courtline/courtline/internal/platform/logging"
)

// Report counts what normalization changed in one table. Row count in equals
// row count out; rows with unresolvable identities are flagged, not removed.
type Report struct {
	RowsIn           int
	UnknownTeams     int
	UnknownStatuses  int
	UnknownPositions int
	UnknownMarkets   int
	InvalidRows      int
}

// statusVariants folds the availability spellings seen across lineup feeds
// onto the canonical enumeration before the strict enum check runs.
var statusVariants = map[string]lineup.Status{
	"ACTIVE":       lineup.StatusActive,
	"AVAILABLE":    lineup.StatusActive,
	"STARTER":      lineup.StatusActive,
	"CONFIRMED":    lineup.StatusActive,
	"PROBABLE":     lineup.StatusGTD,
	"QUESTIONABLE": lineup.StatusGTD,
	"DOUBTFUL":     lineup.StatusGTD,
	"DAY-TO-DAY":   lineup.StatusGTD,
	"GTD":          lineup.StatusGTD,
	"OUT":          lineup.StatusOut,
	"INACTIVE":     lineup.StatusOut,
	"INJURED":      lineup.StatusOut,
	"SUSPENDED":    lineup.StatusOut,
}

// marketVariants folds bookmaker market spellings onto the canonical
// enumeration; anything left over becomes the explicit Unknown sentinel.
var marketVariants = map[string]odds.Market{
	"moneyline":  odds.MarketMoneyline,
	"h2h":        odds.MarketMoneyline,
	"ml":         odds.MarketMoneyline,
	"spread":     odds.MarketSpread,
	"spreads":    odds.MarketSpread,
	"handicap":   odds.MarketSpread,
	"total":      odds.MarketTotal,
	"totals":     odds.MarketTotal,
	"over/under": odds.MarketTotal,
}

// Normalizer rewrites identity cells (team names, player names, statuses,
// positions, markets) into canonical vocabulary. Rows whose team identity
// cannot be resolved are marked invalid in place.
type Normalizer struct {
	aliases team.AliasMap
	titler  cases.Caser
	logger  *logging.Logger
}

func NewNormalizer(aliases team.AliasMap, logger *logging.Logger) *Normalizer {
	if aliases == nil {
		aliases = team.DefaultAliases()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Normalizer{
		aliases: aliases,
		titler:  cases.Title(language.AmericanEnglish),
		logger:  logger,
	}
}

// Normalize canonicalizes the table for its source kind. The returned table
// always carries the validity column and exactly as many rows as came in.
func (n *Normalizer) Normalize(t rawtable.Table, source rawtable.SourceKind) (rawtable.Table, Report) {
	out := t.Clone()
	out.AddColumn(rawtable.ColumnValid, true)
	report := Report{RowsIn: out.Len()}

	switch source {
	case rawtable.SourceNBAStatsTeam, rawtable.SourceBRefTeam:
		for _, row := range out.Rows {
			n.resolveTeamCell(row, team.ColTeam, source, &report)
		}
	case rawtable.SourceNBAStatsPlayer:
		for _, row := range out.Rows {
			n.resolveTeamCell(row, playerstats.ColTeam, source, &report)
			n.titleCaseCell(row, playerstats.ColName)
			if raw, ok := row.String(playerstats.ColPosition); ok {
				position, known := playerstats.NormalizePosition(strings.ToUpper(strings.TrimSpace(raw)))
				if !known && strings.TrimSpace(raw) != "" {
					report.UnknownPositions++
				}
				row[playerstats.ColPosition] = string(position)
			} else {
				row[playerstats.ColPosition] = string(playerstats.PositionUnknown)
			}
		}
	case rawtable.SourceLineups:
		for _, row := range out.Rows {
			n.resolveTeamCell(row, lineup.ColTeam, source, &report)
			n.titleCaseCell(row, lineup.ColPlayer)
			raw, _ := row.String(lineup.ColStatus)
			status, known := normalizeStatus(raw)
			if !known {
				report.UnknownStatuses++
			}
			row[lineup.ColStatus] = string(status)
		}
	case rawtable.SourceOddsAPI:
		for _, row := range out.Rows {
			n.resolveTeamCell(row, odds.ColHomeTeam, source, &report)
			n.resolveTeamCell(row, odds.ColAwayTeam, source, &report)
			if raw, ok := row.String(odds.ColMarket); ok {
				market, known := normalizeMarket(raw)
				if !known {
					report.UnknownMarkets++
				}
				row[odds.ColMarket] = string(market)
			}
		}
	}

	for _, row := range out.Rows {
		if !row.Bool(rawtable.ColumnValid) {
			report.InvalidRows++
		}
	}
	return out, report
}

// resolveTeamCell replaces a raw team name with its canonical abbreviation,
// flagging the row invalid on an unresolvable name.
func (n *Normalizer) resolveTeamCell(row rawtable.Row, column string, source rawtable.SourceKind, report *Report) {
	raw, _ := row.String(column)
	abbr, err := n.aliases.Resolve(raw)
	if err != nil {
		if errors.Is(err, team.ErrUnknownTeam) {
			report.UnknownTeams++
			row[rawtable.ColumnValid] = false
			n.logger.Warn("unresolvable team name, row flagged invalid",
				"source", string(source), "column", column, "value", raw)
			return
		}
		row[rawtable.ColumnValid] = false
		return
	}
	row[column] = string(abbr)
}

func (n *Normalizer) titleCaseCell(row rawtable.Row, column string) {
	raw, ok := row.String(column)
	if !ok {
		return
	}
	row[column] = n.titler.String(strings.ToLower(strings.TrimSpace(raw)))
}

func normalizeStatus(raw string) (lineup.Status, bool) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if status, ok := statusVariants[key]; ok {
		return status, true
	}
	return lineup.NormalizeStatus(raw)
}

func normalizeMarket(raw string) (odds.Market, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if market, ok := marketVariants[key]; ok {
		return market, true
	}
	return odds.NormalizeMarket(key)
}
