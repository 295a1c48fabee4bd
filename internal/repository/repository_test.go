package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/volleyball-stats-backend/internal/entity"
	"github.com/rocketscienceinc/volleyball-stats-backend/testing/suite"
)

type repositories struct {
	games   GameRepository
	players PlayerRepository
	stats   StatRepository
}

type backend struct {
	name string
	open func(t *testing.T) (context.Context, repositories)
}

var backends = []backend{
	{
		name: "sqlite",
		open: func(t *testing.T) (context.Context, repositories) {
			ctx, st := suite.NewSQLite(t)

			return ctx, repositories{
				games:   NewGameRepository(st.SQLite),
				players: NewPlayerRepository(st.SQLite),
				stats:   NewStatRepository(st.SQLite),
			}
		},
	},
	{
		name: "redis",
		open: func(t *testing.T) (context.Context, repositories) {
			ctx, st := suite.New(t)

			return ctx, repositories{
				games:   NewRedisGameRepository(st.Storage),
				players: NewRedisPlayerRepository(st.Storage),
				stats:   NewRedisStatRepository(st.Storage),
			}
		},
	},
}

// forEachBackend runs fn once per storage driver on a fresh store.
func forEachBackend(t *testing.T, fn func(t *testing.T, ctx context.Context, repos repositories)) {
	t.Helper()

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx, repos := b.open(t)
			fn(t, ctx, repos)
		})
	}
}

func createGame(t *testing.T, ctx context.Context, repos repositories, teamName string, createdAt time.Time) entity.GameID {
	t.Helper()

	game, err := entity.NewGame(teamName, "Opponents", createdAt)
	require.NoError(t, err)

	id, err := repos.games.Create(ctx, game)
	require.NoError(t, err)

	return id
}

func addPlayer(t *testing.T, ctx context.Context, repos repositories, gameID entity.GameID, name string, position int) entity.PlayerID {
	t.Helper()

	player, err := entity.NewPlayer(gameID, name, nil, position)
	require.NoError(t, err)

	id, err := repos.players.Add(ctx, player)
	require.NoError(t, err)

	return id
}
