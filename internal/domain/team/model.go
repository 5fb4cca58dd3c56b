package team

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Abbreviation is the canonical three-letter team identifier every source is
// normalized into. Downstream joins key on this value.
type Abbreviation string

var All = []Abbreviation{
	"ATL", "BOS", "BKN", "CHA", "CHI", "CLE", "DAL", "DEN", "DET", "GSW",
	"HOU", "IND", "LAC", "LAL", "MEM", "MIA", "MIL", "MIN", "NOP", "NYK",
	"OKC", "ORL", "PHI", "PHX", "POR", "SAC", "SAS", "TOR", "UTA", "WAS",
}

var allSet = func() map[Abbreviation]struct{} {
	out := make(map[Abbreviation]struct{}, len(All))
	for _, abbr := range All {
		out[abbr] = struct{}{}
	}
	return out
}()

func (a Abbreviation) Valid() bool {
	_, ok := allSet[a]
	return ok
}

var ErrUnknownTeam = errors.New("unknown team name")

// AliasMap resolves full names, nicknames and alternate codes into canonical
// abbreviations. Lookup keys are upper-cased and trimmed.
type AliasMap map[string]Abbreviation

// Resolve maps a raw team name to its canonical abbreviation. No fuzzy
// matching: an unmapped name is an ErrUnknownTeam, never passed through.
func (m AliasMap) Resolve(name string) (Abbreviation, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if key == "" {
		return "", errors.Wrap(ErrUnknownTeam, "empty team name")
	}
	if abbr, ok := m[key]; ok {
		return abbr, nil
	}
	return "", errors.Wrapf(ErrUnknownTeam, "%q", name)
}

// DefaultAliases covers the 30 current franchises plus the alternate codes
// and relocated-franchise names seen across the supported sources. For a
// renamed franchise the most recent mapping wins; ambiguous bare nicknames
// from overlapping eras are deliberately absent.
func DefaultAliases() AliasMap {
	out := make(AliasMap, 128)
	add := func(abbr Abbreviation, names ...string) {
		out[string(abbr)] = abbr
		for _, name := range names {
			out[strings.ToUpper(name)] = abbr
		}
	}

	add("ATL", "Atlanta Hawks", "Atlanta")
	add("BOS", "Boston Celtics", "Boston")
	add("BKN", "Brooklyn Nets", "Brooklyn", "BRK", "New Jersey Nets")
	add("CHA", "Charlotte Hornets", "Charlotte", "CHO", "Charlotte Bobcats")
	add("CHI", "Chicago Bulls", "Chicago")
	add("CLE", "Cleveland Cavaliers", "Cleveland")
	add("DAL", "Dallas Mavericks", "Dallas")
	add("DEN", "Denver Nuggets", "Denver")
	add("DET", "Detroit Pistons", "Detroit")
	add("GSW", "Golden State Warriors", "Golden State", "GS")
	add("HOU", "Houston Rockets", "Houston")
	add("IND", "Indiana Pacers", "Indiana")
	add("LAC", "LA Clippers", "Los Angeles Clippers", "L.A. Clippers")
	add("LAL", "Los Angeles Lakers", "LA Lakers", "L.A. Lakers")
	add("MEM", "Memphis Grizzlies", "Memphis", "Vancouver Grizzlies")
	add("MIA", "Miami Heat", "Miami")
	add("MIL", "Milwaukee Bucks", "Milwaukee")
	add("MIN", "Minnesota Timberwolves", "Minnesota")
	add("NOP", "New Orleans Pelicans", "New Orleans", "NO", "New Orleans Hornets")
	add("NYK", "New York Knicks", "New York", "NY")
	add("OKC", "Oklahoma City Thunder", "Oklahoma City", "Seattle SuperSonics")
	add("ORL", "Orlando Magic", "Orlando")
	add("PHI", "Philadelphia 76ers", "Philadelphia", "Philadelphia Sixers")
	add("PHX", "Phoenix Suns", "Phoenix", "PHO")
	add("POR", "Portland Trail Blazers", "Portland", "Portland Trailblazers")
	add("SAC", "Sacramento Kings", "Sacramento")
	add("SAS", "San Antonio Spurs", "San Antonio", "SA")
	add("TOR", "Toronto Raptors", "Toronto")
	add("UTA", "Utah Jazz", "Utah", "UTAH")
	add("WAS", "Washington Wizards", "Washington", "WSH")

	return out
}

// Record is the canonical per-team season snapshot produced by the pipeline.
type Record struct {
	Team            Abbreviation
	Date            time.Time
	GamesPlayed     int
	Wins            int
	Losses          int
	WinPct          float64
	OffensiveRating float64
	DefensiveRating float64
	NetRating       float64
	Pace            float64
	Possessions     float64
	Points          float64
	PointsAllowed   float64
	Minutes         float64
	EFGPct          float64
	TSPct           float64
	ORebPct         float64
	TOVPct          float64
	FTRate          float64
	AstPct          float64
}

func (r Record) Validate() error {
	if !r.Team.Valid() {
		return fmt.Errorf("team %q is not a canonical abbreviation", r.Team)
	}
	if r.WinPct < 0 || r.WinPct > 1 {
		return fmt.Errorf("team %s: win pct %.3f outside [0,1]", r.Team, r.WinPct)
	}
	if r.Pace <= 0 {
		return fmt.Errorf("team %s: pace %.3f must be positive", r.Team, r.Pace)
	}
	if r.Possessions < 0 {
		return fmt.Errorf("team %s: possessions %.1f must be non-negative", r.Team, r.Possessions)
	}
	return nil
}
