package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/rocketscienceinc/volleyball-stats-backend/internal/entity"
)

type dbPlayer struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) PlayerRepository {
	return &dbPlayer{
		db: db,
	}
}

func (that *dbPlayer) Add(ctx context.Context, player *entity.Player) (entity.PlayerID, error) {
	if err := entity.ValidatePosition(player.Position); err != nil {
		return 0, err
	}

	tx, err := that.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, persistenceError("begin add player", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err = ensureGame(ctx, tx, player.GameID); err != nil {
		return 0, err
	}

	var taken int
	query := `SELECT COUNT(*) FROM players WHERE game_id = ? AND position = ?`
	if err = tx.GetContext(ctx, &taken, query, int64(player.GameID), player.Position); err != nil {
		return 0, persistenceError("check position", err)
	}

	if taken > 0 {
		return 0, positionTaken(player.GameID, player.Position)
	}

	query = `INSERT INTO players (game_id, name, jersey_number, position) VALUES (?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, query, int64(player.GameID), player.Name, nullableInt(player.JerseyNumber), player.Position)
	if err != nil {
		return 0, persistenceError("insert player", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, persistenceError("read player id", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, persistenceError("commit player", err)
	}

	return entity.PlayerID(id), nil
}

func (that *dbPlayer) ListByGame(ctx context.Context, gameID entity.GameID) ([]entity.Player, error) {
	query := `SELECT id, game_id, name, jersey_number, position FROM players WHERE game_id = ? ORDER BY position, id`

	players := []entity.Player{}
	if err := that.db.SelectContext(ctx, &players, query, int64(gameID)); err != nil {
		return nil, persistenceError("select players", err)
	}

	return players, nil
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}

	return int64(*value)
}
