package entity

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rocketscienceinc/volleyball-stats-backend/internal/apperror"
)

const (
	MinPosition = 1
	MaxPosition = 6

	// LineupSize is the number of players on court.
	LineupSize = MaxPosition - MinPosition + 1
)

type Player struct {
	ID           PlayerID `json:"id" db:"id"`
	GameID       GameID   `json:"game_id" db:"game_id"`
	Name         string   `json:"name" db:"name"`
	JerseyNumber *int     `json:"jersey_number" db:"jersey_number"`
	Position     int      `json:"position" db:"position"`
}

func NewPlayer(gameID GameID, name string, jerseyNumber *int, position int) (*Player, error) {
	if !gameID.IsValid() {
		return nil, apperror.ErrInvalidGameID
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name", apperror.ErrMissingField)
	}

	if jerseyNumber != nil && *jerseyNumber < 0 {
		return nil, fmt.Errorf("%w: %d", apperror.ErrInvalidJerseyNumber, *jerseyNumber)
	}

	if err := ValidatePosition(position); err != nil {
		return nil, err
	}

	return &Player{
		GameID:       gameID,
		Name:         name,
		JerseyNumber: jerseyNumber,
		Position:     position,
	}, nil
}

func ValidatePosition(position int) error {
	if position < MinPosition || position > MaxPosition {
		return fmt.Errorf("%w: got %d", apperror.ErrInvalidPosition, position)
	}

	return nil
}

// SortPlayers orders players by position slot.
func SortPlayers(players []Player) {
	slices.SortFunc(players, func(a, b Player) int {
		if a.Position != b.Position {
			return a.Position - b.Position
		}

		return int(a.ID - b.ID)
	})
}
