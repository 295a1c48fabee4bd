package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/volleyball-stats-backend/internal/entity"
)

type redisPlayer struct {
	client *redis.Client
}

func NewRedisPlayerRepository(client *redis.Client) PlayerRepository {
	return &redisPlayer{
		client: client,
	}
}

// Add claims the position slot with HSETNX before writing the player, so two
// players can never hold the same slot.
func (that *redisPlayer) Add(ctx context.Context, player *entity.Player) (entity.PlayerID, error) {
	if err := entity.ValidatePosition(player.Position); err != nil {
		return 0, err
	}

	exists, err := that.client.Exists(ctx, gameKey(player.GameID)).Result()
	if err != nil {
		return 0, persistenceError("check game", err)
	}

	if exists == 0 {
		return 0, gameNotFound(player.GameID)
	}

	seq, err := that.client.Incr(ctx, playerSeqKey).Result()
	if err != nil {
		return 0, persistenceError("allocate player id", err)
	}

	stored := *player
	stored.ID = entity.PlayerID(seq)

	position := strconv.Itoa(stored.Position)

	claimed, err := that.client.HSetNX(ctx, positionsKey(stored.GameID), position, stored.ID.String()).Result()
	if err != nil {
		return 0, persistenceError("claim position", err)
	}

	if !claimed {
		return 0, positionTaken(stored.GameID, stored.Position)
	}

	playerJSON, err := json.Marshal(stored)
	if err != nil {
		that.releasePosition(ctx, stored.GameID, position)
		return 0, fmt.Errorf("failed to marshal player: %w", err)
	}

	if err = that.client.HSet(ctx, playersKey(stored.GameID), stored.ID.String(), playerJSON).Err(); err != nil {
		that.releasePosition(ctx, stored.GameID, position)
		return 0, persistenceError("set player", err)
	}

	return stored.ID, nil
}

func (that *redisPlayer) ListByGame(ctx context.Context, gameID entity.GameID) ([]entity.Player, error) {
	values, err := that.client.HVals(ctx, playersKey(gameID)).Result()
	if err != nil {
		return nil, persistenceError("list players", err)
	}

	players := make([]entity.Player, 0, len(values))
	for _, value := range values {
		var player entity.Player
		if err = json.Unmarshal([]byte(value), &player); err != nil {
			return nil, fmt.Errorf("failed to unmarshal player: %w", err)
		}

		players = append(players, player)
	}

	entity.SortPlayers(players)

	return players, nil
}

func (that *redisPlayer) releasePosition(ctx context.Context, gameID entity.GameID, position string) {
	// best effort, the slot stays claimed if this fails too
	_ = that.client.HDel(ctx, positionsKey(gameID), position).Err()
}
