package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/volleyball-stats-backend/internal/entity"
)

type redisGame struct {
	client *redis.Client
}

func NewRedisGameRepository(client *redis.Client) GameRepository {
	return &redisGame{
		client: client,
	}
}

func (that *redisGame) Create(ctx context.Context, game *entity.Game) (entity.GameID, error) {
	seq, err := that.client.Incr(ctx, gameSeqKey).Result()
	if err != nil {
		return 0, persistenceError("allocate game id", err)
	}

	stored := *game
	stored.ID = entity.GameID(seq)

	gameJSON, err := json.Marshal(stored)
	if err != nil {
		return 0, fmt.Errorf("could not marshal game: %w", err)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, gameKey(stored.ID), gameJSON, 0)
		pipe.ZAdd(ctx, gamesIndexKey, redis.Z{
			Score:  float64(stored.CreatedAt.UnixMilli()),
			Member: stored.ID.String(),
		})
		return nil
	})
	if err != nil {
		return 0, persistenceError("set game", err)
	}

	return stored.ID, nil
}

func (that *redisGame) GetByID(ctx context.Context, id entity.GameID) (*entity.Game, error) {
	response, err := that.client.Get(ctx, gameKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, gameNotFound(id)
	}

	if err != nil {
		return nil, persistenceError("get game", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal([]byte(response), &existingGame); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}

func (that *redisGame) List(ctx context.Context) ([]entity.Game, error) {
	ids, err := that.client.ZRevRange(ctx, gamesIndexKey, 0, -1).Result()
	if err != nil {
		return nil, persistenceError("list game ids", err)
	}

	games := make([]entity.Game, 0, len(ids))
	if len(ids) == 0 {
		return games, nil
	}

	keys := make([]string, 0, len(ids))
	for _, rawID := range ids {
		id, err := entity.ParseGameID(rawID)
		if err != nil {
			continue
		}

		keys = append(keys, gameKey(id))
	}

	if len(keys) == 0 {
		return games, nil
	}

	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, persistenceError("get games", err)
	}

	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}

		var game entity.Game
		if err = json.Unmarshal([]byte(raw), &game); err != nil {
			return nil, fmt.Errorf("failed to unmarshal game: %w", err)
		}

		games = append(games, game)
	}

	return games, nil
}

func (that *redisGame) UpdateStatus(ctx context.Context, id entity.GameID, status string) error {
	game, err := that.GetByID(ctx, id)
	if err != nil {
		return err
	}

	game.Status = status

	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	if err = that.client.Set(ctx, gameKey(id), gameJSON, 0).Err(); err != nil {
		return persistenceError("set game status", err)
	}

	return nil
}
