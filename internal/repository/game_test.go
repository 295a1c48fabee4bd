package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/volleyball-stats-backend/internal/apperror"
	"github.com/rocketscienceinc/volleyball-stats-backend/internal/entity"
	"github.com/rocketscienceinc/volleyball-stats-backend/testing/suite"
)

func TestGameRepository_CreateAndGetByID(t *testing.T) {
	forEachBackend(t, func(t *testing.T, ctx context.Context, repos repositories) {
		// Given: a new game
		createdAt := time.Date(2024, 10, 1, 18, 0, 0, 0, time.UTC)
		game, err := entity.NewGame("Eagles", "Hawks", createdAt)
		require.NoError(t, err)

		// When: Create is called
		id, err := repos.games.Create(ctx, game)
		require.NoError(t, err)

		// Then: the game can be read back by id
		retrievedGame, err := repos.games.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, retrievedGame.ID)
		assert.Equal(t, "Eagles", retrievedGame.TeamName)
		assert.Equal(t, "Hawks", retrievedGame.OpponentName)
		assert.Equal(t, entity.StatusActive, retrievedGame.Status)
		assert.True(t, createdAt.Equal(retrievedGame.CreatedAt))
	})
}

func TestGameRepository_GetByID_NotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, ctx context.Context, repos repositories) {
		// When: GetByID is called with a non-existent id
		retrievedGame, err := repos.games.GetByID(ctx, 9999999)

		// Then: ErrGameNotFound is returned
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
		assert.Nil(t, retrievedGame)
	})
}

func TestGameRepository_List(t *testing.T) {
	forEachBackend(t, func(t *testing.T, ctx context.Context, repos repositories) {
		t.Run("Empty store returns an empty list", func(t *testing.T) {
			games, err := repos.games.List(ctx)

			require.NoError(t, err)
			assert.NotNil(t, games)
			assert.Empty(t, games)
		})

		t.Run("Newest game comes first", func(t *testing.T) {
			// Given: two games created an hour apart
			base := time.Date(2024, 10, 1, 18, 0, 0, 0, time.UTC)
			older := createGame(t, ctx, repos, "Older", base)
			newer := createGame(t, ctx, repos, "Newer", base.Add(time.Hour))

			// When: the games are listed
			games, err := repos.games.List(ctx)

			// Then: they are ordered by creation time, newest first
			require.NoError(t, err)
			require.Len(t, games, 2)
			assert.Equal(t, newer, games[0].ID)
			assert.Equal(t, older, games[1].ID)
		})
	})
}

func TestGameRepository_UpdateStatus(t *testing.T) {
	forEachBackend(t, func(t *testing.T, ctx context.Context, repos repositories) {
		t.Run("Updates the status", func(t *testing.T) {
			gameID := createGame(t, ctx, repos, "Eagles", time.Now())

			err := repos.games.UpdateStatus(ctx, gameID, entity.StatusCompleted)
			require.NoError(t, err)

			game, err := repos.games.GetByID(ctx, gameID)
			require.NoError(t, err)
			assert.Equal(t, entity.StatusCompleted, game.Status)
		})

		t.Run("Unknown game", func(t *testing.T) {
			err := repos.games.UpdateStatus(ctx, 9999999, entity.StatusCompleted)

			assert.ErrorIs(t, err, apperror.ErrGameNotFound)
		})
	})
}

func TestRedisGameRepository_ListSkipsMalformedIndexEntries(t *testing.T) {
	// Given: one stored game and index entries that are not game ids
	ctx, st := suite.New(t)
	games := NewRedisGameRepository(st.Storage)

	game, err := entity.NewGame("Eagles", "Hawks", time.Now())
	require.NoError(t, err)
	id, err := games.Create(ctx, game)
	require.NoError(t, err)

	require.NoError(t, st.Storage.ZAdd(ctx, gamesIndexKey,
		redis.Z{Score: 1, Member: "abc"},
		redis.Z{Score: 2, Member: "0"},
	).Err())

	// When: the games are listed
	listed, err := games.List(ctx)

	// Then: only the stored game is returned
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, id, listed[0].ID)
}

func TestRedisKeys(t *testing.T) {
	assert.Equal(t, "game:7", gameKey(7))
	assert.Equal(t, "game:7:players", playersKey(7))
	assert.Equal(t, "game:7:positions", positionsKey(7))
	assert.Equal(t, "game:7:stats", statsKey(7))
	assert.Equal(t, "12:kill", statField(12, entity.StatKill))
}
