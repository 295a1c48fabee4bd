package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rocketscienceinc/volleyball-stats-backend/internal/apperror"
	"github.com/rocketscienceinc/volleyball-stats-backend/internal/entity"
)

type createGameRequest struct {
	TeamName     string `json:"teamName"`
	OpponentName string `json:"opponentName"`
}

type createGameResponse struct {
	GameID entity.GameID `json:"gameId"`
}

type addPlayerRequest struct {
	Name         string       `json:"name"`
	JerseyNumber jerseyNumber `json:"jerseyNumber"`
	Position     int          `json:"position"`
}

// jerseyNumber accepts 12, "12", "" and null. Form clients send the input
// value as a string; empty and null mean no number.
type jerseyNumber struct {
	value *int
}

func (that *jerseyNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		that.value = nil
		return nil
	}

	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("%w: %s", apperror.ErrInvalidJerseyNumber, data)
		}
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		that.value = nil
		return nil
	}

	number, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: %s", apperror.ErrInvalidJerseyNumber, data)
	}

	that.value = &number

	return nil
}

type addPlayerResponse struct {
	PlayerID entity.PlayerID `json:"playerId"`
}

type recordStatRequest struct {
	PlayerID entity.PlayerID `json:"playerId"`
	StatType string          `json:"statType"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func (that *Server) ping(c echo.Context) error {
	return c.String(http.StatusOK, "pong")
}

func (that *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}

func (that *Server) listGames(c echo.Context) error {
	games, err := that.games.ListGames(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, games)
}

func (that *Server) getGame(c echo.Context) error {
	gameID, err := entity.ParseGameID(c.Param("id"))
	if err != nil {
		return err
	}

	game, err := that.games.GetGame(c.Request().Context(), gameID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, game)
}

func (that *Server) listPlayers(c echo.Context) error {
	gameID, err := entity.ParseGameID(c.Param("id"))
	if err != nil {
		return err
	}

	players, err := that.games.Players(c.Request().Context(), gameID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, players)
}

func (that *Server) listStats(c echo.Context) error {
	gameID, err := entity.ParseGameID(c.Param("id"))
	if err != nil {
		return err
	}

	stats, err := that.games.Stats(c.Request().Context(), gameID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, stats)
}

func (that *Server) createGame(c echo.Context) error {
	var request createGameRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	game, err := that.games.CreateGame(c.Request().Context(), request.TeamName, request.OpponentName)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createGameResponse{GameID: game.ID})
}

func (that *Server) addPlayer(c echo.Context) error {
	gameID, err := entity.ParseGameID(c.Param("id"))
	if err != nil {
		return err
	}

	var request addPlayerRequest
	if err = c.Bind(&request); err != nil {
		return err
	}

	player, err := that.games.AddPlayer(c.Request().Context(), gameID, request.Name, request.JerseyNumber.value, request.Position)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, addPlayerResponse{PlayerID: player.ID})
}

func (that *Server) recordStat(c echo.Context) error {
	gameID, err := entity.ParseGameID(c.Param("id"))
	if err != nil {
		return err
	}

	var request recordStatRequest
	if err = c.Bind(&request); err != nil {
		return err
	}

	if !request.PlayerID.IsValid() {
		return apperror.ErrInvalidPlayerID
	}

	delta, err := that.games.RecordStatEvent(c.Request().Context(), gameID, request.PlayerID, entity.StatType(request.StatType))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, delta)
}

func (that *Server) completeGame(c echo.Context) error {
	gameID, err := entity.ParseGameID(c.Param("id"))
	if err != nil {
		return err
	}

	game, err := that.games.CompleteGame(c.Request().Context(), gameID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, game)
}
