package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rocketscienceinc/volleyball-stats-backend/internal/entity"
)

type gameRow struct {
	ID           entity.GameID `db:"id"`
	TeamName     string        `db:"team_name"`
	OpponentName string        `db:"opponent_name"`
	Status       string        `db:"status"`
	CreatedAt    int64         `db:"created_at"`
}

func (that gameRow) toEntity() entity.Game {
	return entity.Game{
		ID:           that.ID,
		TeamName:     that.TeamName,
		OpponentName: that.OpponentName,
		Status:       that.Status,
		CreatedAt:    time.UnixMilli(that.CreatedAt).UTC(),
	}
}

type dbGame struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) GameRepository {
	return &dbGame{
		db: db,
	}
}

func (that *dbGame) Create(ctx context.Context, game *entity.Game) (entity.GameID, error) {
	query := `INSERT INTO games (team_name, opponent_name, status, created_at) VALUES (?, ?, ?, ?)`

	result, err := that.db.ExecContext(ctx, query, game.TeamName, game.OpponentName, game.Status, game.CreatedAt.UnixMilli())
	if err != nil {
		return 0, persistenceError("insert game", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, persistenceError("read game id", err)
	}

	return entity.GameID(id), nil
}

func (that *dbGame) GetByID(ctx context.Context, id entity.GameID) (*entity.Game, error) {
	query := `SELECT id, team_name, opponent_name, status, created_at FROM games WHERE id = ?`

	var row gameRow

	err := that.db.GetContext(ctx, &row, query, int64(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gameNotFound(id)
	}

	if err != nil {
		return nil, persistenceError("select game", err)
	}

	game := row.toEntity()

	return &game, nil
}

func (that *dbGame) List(ctx context.Context) ([]entity.Game, error) {
	query := `SELECT id, team_name, opponent_name, status, created_at FROM games ORDER BY created_at DESC, id DESC`

	var rows []gameRow
	if err := that.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, persistenceError("select games", err)
	}

	games := make([]entity.Game, 0, len(rows))
	for _, row := range rows {
		games = append(games, row.toEntity())
	}

	return games, nil
}

func (that *dbGame) UpdateStatus(ctx context.Context, id entity.GameID, status string) error {
	query := `UPDATE games SET status = ? WHERE id = ?`

	result, err := that.db.ExecContext(ctx, query, status, int64(id))
	if err != nil {
		return persistenceError("update game status", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistenceError("update game status", err)
	}

	if affected == 0 {
		return gameNotFound(id)
	}

	return nil
}

// ensureGame fails with ErrGameNotFound unless the game row exists.
func ensureGame(ctx context.Context, queryer sqlx.QueryerContext, id entity.GameID) error {
	var count int
	if err := sqlx.GetContext(ctx, queryer, &count, `SELECT COUNT(*) FROM games WHERE id = ?`, int64(id)); err != nil {
		return persistenceError("check game", err)
	}

	if count == 0 {
		return gameNotFound(id)
	}

	return nil
}
