package realtime

import (
	"encoding/json"
	"log/slog"

	"github.com/rocketscienceinc/volleyball-stats-backend/internal/entity"
	"github.com/rocketscienceinc/volleyball-stats-backend/internal/metrics"
)

type Dispatcher struct {
	logger   *slog.Logger
	registry *Registry
	metrics  *metrics.Metrics
}

func NewDispatcher(logger *slog.Logger, registry *Registry, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		logger:   logger.With("component", "dispatcher"),
		registry: registry,
		metrics:  m,
	}
}

// BroadcastToGame sends event to every subscriber of gameID and returns the
// number of successful deliveries. A connection whose send fails is
// unsubscribed and closed; the remaining subscribers still get the event.
func (that *Dispatcher) BroadcastToGame(gameID entity.GameID, event Event) int {
	log := that.logger.With("method", "BroadcastToGame", "gameID", gameID, "event", event.Type)

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error("failed to marshal event", "error", err)
		return 0
	}

	delivered := 0
	for _, conn := range that.registry.SubscribersOf(gameID) {
		if err = conn.Send(payload); err != nil {
			log.Warn("failed to send event, dropping connection", "connID", conn.ID(), "error", err)
			that.metrics.SendFailed()

			that.registry.Unsubscribe(conn)
			if err = conn.Close(); err != nil {
				log.Debug("failed to close connection", "connID", conn.ID(), "error", err)
			}

			continue
		}

		delivered++
	}

	that.metrics.Broadcast(string(event.Type), delivered)
	log.Debug("event broadcast", "delivered", delivered)

	return delivered
}
