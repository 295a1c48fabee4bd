package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/volleyball-stats-backend/internal/entity"
)

type redisStat struct {
	client *redis.Client
}

func NewRedisStatRepository(client *redis.Client) StatRepository {
	return &redisStat{
		client: client,
	}
}

func (that *redisStat) RecordStat(ctx context.Context, gameID entity.GameID, playerID entity.PlayerID, statType entity.StatType) (int, error) {
	if !statType.IsValid() {
		return 0, invalidStatType(statType)
	}

	owned, err := that.client.HExists(ctx, playersKey(gameID), playerID.String()).Result()
	if err != nil {
		return 0, persistenceError("check player", err)
	}

	if !owned {
		return 0, unknownPlayer(gameID, playerID)
	}

	value, err := that.client.HIncrBy(ctx, statsKey(gameID), statField(playerID, statType), 1).Result()
	if err != nil {
		return 0, persistenceError("increment stat", err)
	}

	return int(value), nil
}

func (that *redisStat) GameStats(ctx context.Context, gameID entity.GameID) ([]entity.StatRow, error) {
	counters, err := that.client.HGetAll(ctx, statsKey(gameID)).Result()
	if err != nil {
		return nil, persistenceError("get stats", err)
	}

	rows := make([]entity.StatRow, 0, len(counters))
	if len(counters) == 0 {
		return rows, nil
	}

	rawPlayers, err := that.client.HGetAll(ctx, playersKey(gameID)).Result()
	if err != nil {
		return nil, persistenceError("get players", err)
	}

	for field, rawValue := range counters {
		rawPlayerID, rawStatType, ok := strings.Cut(field, ":")
		if !ok {
			continue
		}

		value, err := strconv.Atoi(rawValue)
		if err != nil || value <= 0 {
			continue
		}

		rawPlayer, ok := rawPlayers[rawPlayerID]
		if !ok {
			continue
		}

		var player entity.Player
		if err = json.Unmarshal([]byte(rawPlayer), &player); err != nil {
			return nil, fmt.Errorf("failed to unmarshal player: %w", err)
		}

		rows = append(rows, entity.StatRow{
			PlayerID:     player.ID,
			Name:         player.Name,
			JerseyNumber: player.JerseyNumber,
			Position:     player.Position,
			StatType:     entity.StatType(rawStatType),
			Value:        value,
		})
	}

	entity.SortStatRows(rows)

	return rows, nil
}
