package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rocketscienceinc/volleyball-stats-backend/internal/entity"
)

type dbStat struct {
	db *sqlx.DB
}

func NewStatRepository(db *sqlx.DB) StatRepository {
	return &dbStat{
		db: db,
	}
}

// RecordStat creates the counter with value 1 or increments it, inside one
// transaction that also checks the player belongs to the game.
func (that *dbStat) RecordStat(ctx context.Context, gameID entity.GameID, playerID entity.PlayerID, statType entity.StatType) (int, error) {
	if !statType.IsValid() {
		return 0, invalidStatType(statType)
	}

	tx, err := that.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, persistenceError("begin record stat", err)
	}
	defer func() { _ = tx.Rollback() }()

	var owned int
	query := `SELECT COUNT(*) FROM players WHERE id = ? AND game_id = ?`
	if err = tx.GetContext(ctx, &owned, query, int64(playerID), int64(gameID)); err != nil {
		return 0, persistenceError("check player", err)
	}

	if owned == 0 {
		return 0, unknownPlayer(gameID, playerID)
	}

	query = `INSERT INTO stats (game_id, player_id, stat_type, value, updated_at) VALUES (?, ?, ?, 1, ?)
		ON CONFLICT (game_id, player_id, stat_type) DO UPDATE SET value = value + 1, updated_at = excluded.updated_at
		RETURNING value`

	var value int
	if err = tx.GetContext(ctx, &value, query, int64(gameID), int64(playerID), string(statType), time.Now().UnixMilli()); err != nil {
		return 0, persistenceError("increment stat", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, persistenceError("commit stat", err)
	}

	return value, nil
}

func (that *dbStat) GameStats(ctx context.Context, gameID entity.GameID) ([]entity.StatRow, error) {
	query := `SELECT p.id AS player_id, p.name, p.jersey_number, p.position, s.stat_type, s.value
		FROM players p
		JOIN stats s ON s.player_id = p.id AND s.game_id = p.game_id
		WHERE p.game_id = ? AND s.value > 0
		ORDER BY p.position, s.stat_type, p.id`

	rows := []entity.StatRow{}
	if err := sqlx.SelectContext(ctx, that.db, &rows, query, int64(gameID)); err != nil {
		return nil, persistenceError("select stats", err)
	}

	return rows, nil
}
