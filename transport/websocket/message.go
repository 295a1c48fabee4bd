package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/volleyball-stats-backend/internal/entity"
)

const (
	typeSubscribe  = "subscribe"
	typeSubscribed = "subscribed"
	typeError      = "error"
)

// Message is the envelope of every inbound frame; Type selects the handler.
type Message struct {
	Type string `json:"type"`
}

type subscribeRequest struct {
	GameID entity.GameID `json:"gameId"`
}

type subscribedResponse struct {
	Type   string        `json:"type"`
	GameID entity.GameID `json:"gameId"`
}

type errorResponse struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func newErrorFrame(message string) []byte {
	// marshaling two strings cannot fail
	payload, _ := json.Marshal(errorResponse{Type: typeError, Error: message})
	return payload
}
