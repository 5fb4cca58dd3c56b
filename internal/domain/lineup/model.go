package lineup

import (
	"fmt"

	"github.com/courtline/courtline/internal/domain/rawtable"
	"github.com/courtline/courtline/internal/domain/team"
)

// Status is the reported availability of a player on a game lineup.
type Status string

const (
	StatusActive  Status = "Active"
	StatusGTD     Status = "GTD"
	StatusOut     Status = "Out"
	StatusUnknown Status = "Unknown"
)

var AllStatuses = map[Status]struct{}{
	StatusActive: {},
	StatusGTD:    {},
	StatusOut:    {},
}

// NormalizeStatus maps a raw value onto the enumeration, returning
// StatusUnknown (and false) for anything outside it.
func NormalizeStatus(value string) (Status, bool) {
	status := Status(value)
	if _, ok := AllStatuses[status]; ok {
		return status, true
	}
	return StatusUnknown, false
}

// PlayProbability estimates how likely the player is to see the floor,
// monotonic in status severity.
func (s Status) PlayProbability() float64 {
	switch s {
	case StatusActive:
		return 1.0
	case StatusGTD:
		return 0.5
	case StatusOut:
		return 0.0
	default:
		return 0.5
	}
}

// Entry is one player slot on a game's reported lineup.
type Entry struct {
	GameID   string
	Team     team.Abbreviation
	Player   string
	Status   Status
	PlayProb float64
}

func (e Entry) Validate() error {
	if e.GameID == "" {
		return fmt.Errorf("lineup entry: game id is required")
	}
	if e.Player == "" {
		return fmt.Errorf("lineup entry: player name is required")
	}
	if e.PlayProb < 0 || e.PlayProb > 1 {
		return fmt.Errorf("lineup entry %s: play probability %.3f outside [0,1]", e.Player, e.PlayProb)
	}
	return nil
}

// Canonical column names for lineup tables after schema mapping.
const (
	ColGameID = "game_id"
	ColTeam   = "team"
	ColPlayer = "player"
	ColStatus = "status"
)

// FromTable binds a normalized lineup table into typed entries. Rows the
// normalizer flagged invalid are skipped; rows that fail record validation
// are skipped and counted, never fatal. Play probability derives from status.
func FromTable(t rawtable.Table) ([]Entry, int) {
	out := make([]Entry, 0, t.Len())
	skipped := 0
	for _, row := range t.Rows {
		if t.HasColumn(rawtable.ColumnValid) && !row.Bool(rawtable.ColumnValid) {
			continue
		}

		gameID, _ := row.String(ColGameID)
		teamName, _ := row.String(ColTeam)
		player, _ := row.String(ColPlayer)
		statusRaw, _ := row.String(ColStatus)

		status := Status(statusRaw)
		entry := Entry{
			GameID:   gameID,
			Team:     team.Abbreviation(teamName),
			Player:   player,
			Status:   status,
			PlayProb: status.PlayProbability(),
		}
		if err := entry.Validate(); err != nil {
			skipped++
			continue
		}
		out = append(out, entry)
	}
	return out, skipped
}
