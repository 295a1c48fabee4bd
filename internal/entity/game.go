package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/rocketscienceinc/volleyball-stats-backend/internal/apperror"
)

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

type Game struct {
	ID           GameID    `json:"id"`
	TeamName     string    `json:"team_name"`
	OpponentName string    `json:"opponent_name"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewGame validates the names and returns an active game without an id.
func NewGame(teamName, opponentName string, createdAt time.Time) (*Game, error) {
	teamName = strings.TrimSpace(teamName)
	if teamName == "" {
		return nil, fmt.Errorf("%w: teamName", apperror.ErrMissingField)
	}

	return &Game{
		TeamName:     teamName,
		OpponentName: strings.TrimSpace(opponentName),
		Status:       StatusActive,
		CreatedAt:    createdAt.UTC(),
	}, nil
}

func (that *Game) IsActive() bool {
	return that.Status == StatusActive
}

func (that *Game) IsCompleted() bool {
	return that.Status == StatusCompleted
}

// ConfirmActive returns ErrGameCompleted once the game has ended.
func (that *Game) ConfirmActive() error {
	if that.IsCompleted() {
		return fmt.Errorf("%w: game %s", apperror.ErrGameCompleted, that.ID)
	}

	return nil
}

func (that *Game) Complete() {
	that.Status = StatusCompleted
}
