package websocket

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/volleyball-stats-backend/internal/entity"
	"github.com/rocketscienceinc/volleyball-stats-backend/internal/realtime"
)

const (
	defaultWriteTimeout = 5 * time.Second
	maxMessageSize      = 4096
)

type registry interface {
	Subscribe(conn realtime.Conn, gameID entity.GameID) (entity.GameID, bool)
	Unsubscribe(conn realtime.Conn) bool
}

type Options struct {
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

type Server struct {
	logger   *slog.Logger
	registry registry
	upgrader websocket.Upgrader

	writeTimeout time.Duration

	handlers map[string]func(client *client, data []byte) error
}

func New(logger *slog.Logger, registry registry, opts Options) *Server {
	server := &Server{
		logger:       logger.With("component", "websocket"),
		registry:     registry,
		writeTimeout: opts.WriteTimeout,

		handlers: make(map[string]func(*client, []byte) error),
	}

	if server.writeTimeout <= 0 {
		server.writeTimeout = defaultWriteTimeout
	}

	server.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(opts.AllowedOrigins),
	}

	server.handlers[typeSubscribe] = server.handleSubscribe

	return server
}

// checkOrigin allows any origin when allowed is empty.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}

		origin := r.Header.Get("Origin")

		return origin == "" || slices.Contains(allowed, origin)
	}
}

// ServeHTTP upgrades the request and reads messages until the peer goes away.
func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied with an HTTP error
		log.Warn("failed to upgrade connection", "error", err)
		return
	}

	client := newClient(conn, that.writeTimeout)
	log = log.With("connID", client.ID())

	defer func() {
		that.registry.Unsubscribe(client)
		if err = client.Close(); err != nil {
			log.Debug("failed to close connection", "error", err)
		}

		log.Info("websocket connection closed")
	}()

	log.Info("websocket connection established", "remoteAddr", r.RemoteAddr)

	that.handleMessages(client)
}

// handleMessages processes frames from the client. Malformed frames are
// answered with an error frame and never end the loop.
func (that *Server) handleMessages(client *client) {
	log := that.logger.With("method", "handleMessages", "connID", client.ID())

	client.conn.SetReadLimit(maxMessageSize)

	for {
		messageType, data, err := client.conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				log.Debug("read failed", "error", err)
			}

			return
		}

		if messageType != websocket.TextMessage {
			that.sendError(client, "only text frames are supported")
			continue
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Debug("failed to unmarshal message", "error", err)
			that.sendError(client, "malformed message")
			continue
		}

		handler, ok := that.handlers[message.Type]
		if !ok {
			that.sendError(client, "unknown message type: "+message.Type)
			continue
		}

		if err = handler(client, data); err != nil {
			log.Warn("error processing message", "type", message.Type, "error", err)
		}
	}
}

func (that *Server) sendError(client *client, message string) {
	if err := client.Send(newErrorFrame(message)); err != nil {
		that.logger.Debug("failed to send error frame", "connID", client.ID(), "error", err)
		that.drop(client)
	}
}

// drop unsubscribes a client whose write failed and closes it, which also
// ends its read loop.
func (that *Server) drop(client *client) {
	that.registry.Unsubscribe(client)

	if err := client.Close(); err != nil {
		that.logger.Debug("failed to close connection", "connID", client.ID(), "error", err)
	}
}
