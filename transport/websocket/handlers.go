package websocket

import (
	"encoding/json"
	"fmt"
)

func (that *Server) handleSubscribe(client *client, data []byte) error {
	log := that.logger.With("method", "handleSubscribe", "connID", client.ID())

	var request subscribeRequest
	if err := json.Unmarshal(data, &request); err != nil {
		that.sendError(client, "gameId must be a positive integer")
		return nil
	}

	if !request.GameID.IsValid() {
		that.sendError(client, "gameId is required")
		return nil
	}

	previous, moved := that.registry.Subscribe(client, request.GameID)
	if moved {
		log.Info("subscription moved", "from", previous, "to", request.GameID)
	}

	payload, err := json.Marshal(subscribedResponse{Type: typeSubscribed, GameID: request.GameID})
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if err = client.Send(payload); err != nil {
		that.drop(client)
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("client subscribed", "gameID", request.GameID)

	return nil
}
