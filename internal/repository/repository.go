package repository

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/volleyball-stats-backend/internal/apperror"
	"github.com/rocketscienceinc/volleyball-stats-backend/internal/entity"
)

type GameRepository interface {
	Create(ctx context.Context, game *entity.Game) (entity.GameID, error)
	GetByID(ctx context.Context, id entity.GameID) (*entity.Game, error)
	List(ctx context.Context) ([]entity.Game, error)
	UpdateStatus(ctx context.Context, id entity.GameID, status string) error
}

type PlayerRepository interface {
	Add(ctx context.Context, player *entity.Player) (entity.PlayerID, error)
	ListByGame(ctx context.Context, gameID entity.GameID) ([]entity.Player, error)
}

// StatRepository holds one counter per (game, player, stat type). RecordStat
// returns only after the increment is durable.
type StatRepository interface {
	RecordStat(ctx context.Context, gameID entity.GameID, playerID entity.PlayerID, statType entity.StatType) (int, error)
	GameStats(ctx context.Context, gameID entity.GameID) ([]entity.StatRow, error)
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", apperror.ErrPersistence, op, err)
}

func gameNotFound(id entity.GameID) error {
	return fmt.Errorf("%w: id %s", apperror.ErrGameNotFound, id)
}

func unknownPlayer(gameID entity.GameID, playerID entity.PlayerID) error {
	return fmt.Errorf("%w: player %s, game %s", apperror.ErrUnknownPlayer, playerID, gameID)
}

func positionTaken(gameID entity.GameID, position int) error {
	return fmt.Errorf("%w: position %d in game %s", apperror.ErrPositionTaken, position, gameID)
}

func invalidStatType(statType entity.StatType) error {
	return fmt.Errorf("%w: %q", apperror.ErrInvalidStatType, statType)
}
