package entity

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rocketscienceinc/volleyball-stats-backend/internal/apperror"
)

type StatType string

const (
	StatKill   StatType = "kill"
	StatAce    StatType = "ace"
	StatDig    StatType = "dig"
	StatBlock  StatType = "block"
	StatAssist StatType = "assist"
	StatError  StatType = "error"
)

var statTypes = []StatType{StatKill, StatAce, StatDig, StatBlock, StatAssist, StatError}

// StatTypes returns the closed stat vocabulary.
func StatTypes() []StatType {
	return slices.Clone(statTypes)
}

func ParseStatType(raw string) (StatType, error) {
	statType := StatType(strings.ToLower(strings.TrimSpace(raw)))
	if !statType.IsValid() {
		return "", fmt.Errorf("%w: %q", apperror.ErrInvalidStatType, raw)
	}

	return statType, nil
}

func (that StatType) IsValid() bool {
	return slices.Contains(statTypes, that)
}

// StatRow is one (player, stat type) counter joined with the player it belongs to.
type StatRow struct {
	PlayerID     PlayerID `json:"player_id" db:"player_id"`
	Name         string   `json:"name" db:"name"`
	JerseyNumber *int     `json:"jersey_number" db:"jersey_number"`
	Position     int      `json:"position" db:"position"`
	StatType     StatType `json:"stat_type" db:"stat_type"`
	Value        int      `json:"value" db:"value"`
}

// StatDelta is the result of a single recorded stat event.
type StatDelta struct {
	PlayerID PlayerID `json:"playerId"`
	StatType StatType `json:"statType"`
	Value    int      `json:"value"`
}

// SortStatRows orders rows by position, then stat type, then player id.
func SortStatRows(rows []StatRow) {
	slices.SortFunc(rows, func(a, b StatRow) int {
		if a.Position != b.Position {
			return a.Position - b.Position
		}

		if c := strings.Compare(string(a.StatType), string(b.StatType)); c != 0 {
			return c
		}

		return int(a.PlayerID - b.PlayerID)
	})
}
