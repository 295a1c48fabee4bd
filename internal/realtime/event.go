package realtime

import "github.com/rocketscienceinc/volleyball-stats-backend/internal/entity"

type EventType string

const (
	EventPlayerAdded   EventType = "player_added"
	EventStatUpdated   EventType = "stat_updated"
	EventGameCompleted EventType = "game_completed"
)

// Event is one outbound JSON object. Only the fields of its type are set.
type Event struct {
	Type    EventType         `json:"type"`
	Players []entity.Player   `json:"players,omitempty"`
	Stat    *entity.StatDelta `json:"stat,omitempty"`
	Stats   []entity.StatRow  `json:"stats,omitempty"`
	Game    *entity.Game      `json:"game,omitempty"`
}

// PlayerAdded carries the full roster after an addition.
func PlayerAdded(players []entity.Player) Event {
	return Event{Type: EventPlayerAdded, Players: players}
}

// StatUpdated carries the recorded delta and the game's full stat table.
func StatUpdated(delta entity.StatDelta, stats []entity.StatRow) Event {
	return Event{Type: EventStatUpdated, Stat: &delta, Stats: stats}
}

func GameCompleted(game entity.Game) Event {
	return Event{Type: EventGameCompleted, Game: &game}
}
