package repository

import "github.com/rocketscienceinc/volleyball-stats-backend/internal/entity"

const (
	gameSeqKey    = "games:seq"
	playerSeqKey  = "players:seq"
	gamesIndexKey = "games"
)

func gameKey(id entity.GameID) string {
	return "game:" + id.String()
}

// playersKey is a hash of player id -> player JSON.
func playersKey(id entity.GameID) string {
	return gameKey(id) + ":players"
}

// positionsKey is a hash of position -> player id, used to claim slots atomically.
func positionsKey(id entity.GameID) string {
	return gameKey(id) + ":positions"
}

// statsKey is a hash of "<player id>:<stat type>" -> counter.
func statsKey(id entity.GameID) string {
	return gameKey(id) + ":stats"
}

func statField(playerID entity.PlayerID, statType entity.StatType) string {
	return playerID.String() + ":" + string(statType)
}
