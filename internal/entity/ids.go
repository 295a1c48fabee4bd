package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/volleyball-stats-backend/internal/apperror"
)

// GameID is the canonical game identifier. Transports parse it once on
// ingress; nothing downstream compares ids in any other representation.
type GameID int64

// PlayerID is the canonical player identifier.
type PlayerID int64

// ParseGameID parses a game id from its textual form, e.g. a path parameter.
func ParseGameID(raw string) (GameID, error) {
	id, err := parseID(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", apperror.ErrInvalidGameID, raw)
	}

	return GameID(id), nil
}

// ParsePlayerID parses a player id from its textual form.
func ParsePlayerID(raw string) (PlayerID, error) {
	id, err := parseID(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", apperror.ErrInvalidPlayerID, raw)
	}

	return PlayerID(id), nil
}

func (that GameID) String() string {
	return strconv.FormatInt(int64(that), 10)
}

func (that GameID) IsValid() bool {
	return that > 0
}

// UnmarshalJSON accepts both 7 and "7". null leaves the id unset.
func (that *GameID) UnmarshalJSON(data []byte) error {
	id, err := unmarshalID(data)
	if err != nil {
		return fmt.Errorf("%w: %s", apperror.ErrInvalidGameID, data)
	}

	*that = GameID(id)

	return nil
}

func (that PlayerID) String() string {
	return strconv.FormatInt(int64(that), 10)
}

func (that PlayerID) IsValid() bool {
	return that > 0
}

// UnmarshalJSON accepts both 7 and "7". null leaves the id unset.
func (that *PlayerID) UnmarshalJSON(data []byte) error {
	id, err := unmarshalID(data)
	if err != nil {
		return fmt.Errorf("%w: %s", apperror.ErrInvalidPlayerID, data)
	}

	*that = PlayerID(id)

	return nil
}

func unmarshalID(data []byte) (int64, error) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return 0, nil
	}

	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(data, &raw); err != nil {
			return 0, err
		}
	}

	return parseID(raw)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}

	if id <= 0 {
		return 0, strconv.ErrRange
	}

	return id, nil
}
