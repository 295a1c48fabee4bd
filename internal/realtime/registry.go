package realtime

import (
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/volleyball-stats-backend/internal/entity"
	"github.com/rocketscienceinc/volleyball-stats-backend/internal/metrics"
)

// Conn is a live viewer connection. Send must be safe to call from several
// goroutines.
type Conn interface {
	ID() string
	Send(payload []byte) error
	Close() error
}

// Registry maps games to the connections watching them. A connection watches
// at most one game at a time.
type Registry struct {
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu     sync.RWMutex
	games  map[entity.GameID]map[string]Conn
	gameOf map[string]entity.GameID
}

func NewRegistry(logger *slog.Logger, m *metrics.Metrics) *Registry {
	return &Registry{
		logger:  logger.With("component", "registry"),
		metrics: m,
		games:   make(map[entity.GameID]map[string]Conn),
		gameOf:  make(map[string]entity.GameID),
	}
}

// Subscribe adds conn to the game's set. If conn already watched another game
// it is moved and that game is returned with moved set to true.
func (that *Registry) Subscribe(conn Conn, gameID entity.GameID) (entity.GameID, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	previous, ok := that.gameOf[conn.ID()]
	if ok && previous == gameID {
		return previous, false
	}

	if ok {
		that.remove(previous, conn.ID())
	}

	subscribers, exists := that.games[gameID]
	if !exists {
		subscribers = make(map[string]Conn)
		that.games[gameID] = subscribers
	}

	subscribers[conn.ID()] = conn
	that.gameOf[conn.ID()] = gameID
	that.metrics.SetSubscribers(len(that.gameOf))

	that.logger.Debug("connection subscribed", "connID", conn.ID(), "gameID", gameID, "moved", ok)

	return previous, ok
}

// Unsubscribe removes conn from whatever game it watches. It reports whether
// the connection was subscribed.
func (that *Registry) Unsubscribe(conn Conn) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	gameID, ok := that.gameOf[conn.ID()]
	if !ok {
		return false
	}

	that.remove(gameID, conn.ID())
	that.metrics.SetSubscribers(len(that.gameOf))

	that.logger.Debug("connection unsubscribed", "connID", conn.ID(), "gameID", gameID)

	return true
}

// remove expects the write lock to be held.
func (that *Registry) remove(gameID entity.GameID, connID string) {
	delete(that.gameOf, connID)

	subscribers, ok := that.games[gameID]
	if !ok {
		return
	}

	delete(subscribers, connID)
	if len(subscribers) == 0 {
		delete(that.games, gameID)
	}
}

// SubscribersOf returns a snapshot of the game's connections.
func (that *Registry) SubscribersOf(gameID entity.GameID) []Conn {
	that.mu.RLock()
	defer that.mu.RUnlock()

	subscribers := that.games[gameID]
	conns := make([]Conn, 0, len(subscribers))
	for _, conn := range subscribers {
		conns = append(conns, conn)
	}

	return conns
}

func (that *Registry) GameOf(conn Conn) (entity.GameID, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	gameID, ok := that.gameOf[conn.ID()]

	return gameID, ok
}

// Count returns the number of subscribed connections.
func (that *Registry) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.gameOf)
}

// GameCount returns the number of games with at least one subscriber.
func (that *Registry) GameCount() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.games)
}

// Close drops every subscription and closes the connections.
func (that *Registry) Close() {
	that.mu.Lock()
	var conns []Conn
	for _, subscribers := range that.games {
		for _, conn := range subscribers {
			conns = append(conns, conn)
		}
	}

	that.games = make(map[entity.GameID]map[string]Conn)
	that.gameOf = make(map[string]entity.GameID)
	that.metrics.SetSubscribers(0)
	that.mu.Unlock()

	for _, conn := range conns {
		if err := conn.Close(); err != nil {
			that.logger.Debug("failed to close connection", "connID", conn.ID(), "error", err)
		}
	}

	that.logger.Info("registry closed", "connections", len(conns))
}
