package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/volleyball-stats-backend/internal/apperror"
	"github.com/rocketscienceinc/volleyball-stats-backend/internal/entity"
	"github.com/rocketscienceinc/volleyball-stats-backend/internal/metrics"
	"github.com/rocketscienceinc/volleyball-stats-backend/internal/ratelimiting"
)

var errDiskFull = errors.New("disk full")

type mockGameUseCase struct {
	mock.Mock
}

func (that *mockGameUseCase) CreateGame(ctx context.Context, teamName, opponentName string) (*entity.Game, error) {
	args := that.Called(ctx, teamName, opponentName)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameUseCase) AddPlayer(ctx context.Context, gameID entity.GameID, name string, jerseyNumber *int, position int) (*entity.Player, error) {
	args := that.Called(ctx, gameID, name, jerseyNumber, position)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

func (that *mockGameUseCase) RecordStatEvent(ctx context.Context, gameID entity.GameID, playerID entity.PlayerID, statType entity.StatType) (*entity.StatDelta, error) {
	args := that.Called(ctx, gameID, playerID, statType)
	delta, _ := args.Get(0).(*entity.StatDelta)
	return delta, args.Error(1)
}

func (that *mockGameUseCase) CompleteGame(ctx context.Context, gameID entity.GameID) (*entity.Game, error) {
	args := that.Called(ctx, gameID)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameUseCase) ListGames(ctx context.Context) ([]entity.Game, error) {
	args := that.Called(ctx)
	games, _ := args.Get(0).([]entity.Game)
	return games, args.Error(1)
}

func (that *mockGameUseCase) GetGame(ctx context.Context, gameID entity.GameID) (*entity.Game, error) {
	args := that.Called(ctx, gameID)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameUseCase) Players(ctx context.Context, gameID entity.GameID) ([]entity.Player, error) {
	args := that.Called(ctx, gameID)
	players, _ := args.Get(0).([]entity.Player)
	return players, args.Error(1)
}

func (that *mockGameUseCase) Stats(ctx context.Context, gameID entity.GameID) ([]entity.StatRow, error) {
	args := that.Called(ctx, gameID)
	rows, _ := args.Get(0).([]entity.StatRow)
	return rows, args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func doRequest(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var response errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))

	return response.Error
}

func TestServer_Probes(t *testing.T) {
	server := New(newTestLogger(), &mockGameUseCase{}, Options{Metrics: metrics.New()})

	rec := doRequest(t, server.Handler(), http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())

	rec = doRequest(t, server.Handler(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = doRequest(t, server.Handler(), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "volleyball_http_requests_total")
}

func TestServer_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{name: "Validation", err: fmt.Errorf("%w: got 9", apperror.ErrInvalidPosition), wantStatus: http.StatusBadRequest},
		{name: "Position taken", err: fmt.Errorf("%w: position 2", apperror.ErrPositionTaken), wantStatus: http.StatusConflict},
		{name: "Unknown game", err: fmt.Errorf("%w: id 4", apperror.ErrGameNotFound), wantStatus: http.StatusNotFound},
		{name: "Storage failure", err: fmt.Errorf("%w: insert: %w", apperror.ErrPersistence, errDiskFull), wantStatus: http.StatusInternalServerError, wantError: "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a use case that fails with the error
			games := &mockGameUseCase{}
			games.On("AddPlayer", mock.Anything, entity.GameID(4), "Ana", (*int)(nil), 2).Return(nil, tt.err).Once()
			server := New(newTestLogger(), games, Options{})

			// When: a player is added
			rec := doRequest(t, server.Handler(), http.MethodPost, "/games/4/players", `{"name":"Ana","position":2}`)

			// Then: the status reflects the error class
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantError == "" {
				tt.wantError = tt.err.Error()
			}
			assert.Equal(t, tt.wantError, errorMessage(t, rec))
			games.AssertExpectations(t)
		})
	}
}

func TestServer_BadRequests(t *testing.T) {
	games := &mockGameUseCase{}
	server := New(newTestLogger(), games, Options{})

	t.Run("Non numeric game id", func(t *testing.T) {
		rec := doRequest(t, server.Handler(), http.MethodGet, "/games/abc/players", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, errorMessage(t, rec), "invalid game id")
	})

	t.Run("Malformed body", func(t *testing.T) {
		rec := doRequest(t, server.Handler(), http.MethodPost, "/games", `{"teamName":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Missing player id", func(t *testing.T) {
		rec := doRequest(t, server.Handler(), http.MethodPost, "/games/1/stats", `{"statType":"kill"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Unknown route", func(t *testing.T) {
		rec := doRequest(t, server.Handler(), http.MethodGet, "/teams", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	games.AssertNotCalled(t, "Players", mock.Anything, mock.Anything)
	games.AssertNotCalled(t, "RecordStatEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestServer_AddPlayerJerseyForms(t *testing.T) {
	twelve := 12

	tests := []struct {
		name       string
		body       string
		wantJersey *int
	}{
		{name: "Number", body: `{"name":"Ana","jerseyNumber":12,"position":1}`, wantJersey: &twelve},
		{name: "Form string", body: `{"name":"Ana","jerseyNumber":"12","position":1}`, wantJersey: &twelve},
		{name: "Empty string", body: `{"name":"Ana","jerseyNumber":"","position":1}`},
		{name: "Null", body: `{"name":"Ana","jerseyNumber":null,"position":1}`},
		{name: "Absent", body: `{"name":"Ana","position":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a use case expecting the decoded jersey number
			games := &mockGameUseCase{}
			games.On("AddPlayer", mock.Anything, entity.GameID(1), "Ana", tt.wantJersey, 1).
				Return(&entity.Player{ID: 5, GameID: 1, Name: "Ana", JerseyNumber: tt.wantJersey, Position: 1}, nil).Once()
			server := New(newTestLogger(), games, Options{})

			// When: the player is added
			rec := doRequest(t, server.Handler(), http.MethodPost, "/games/1/players", tt.body)

			// Then: the player is created
			assert.Equal(t, http.StatusCreated, rec.Code)
			assert.JSONEq(t, `{"playerId":5}`, rec.Body.String())
			games.AssertExpectations(t)
		})
	}

	t.Run("Non numeric string", func(t *testing.T) {
		games := &mockGameUseCase{}
		server := New(newTestLogger(), games, Options{})

		rec := doRequest(t, server.Handler(), http.MethodPost, "/games/1/players", `{"name":"Ana","jerseyNumber":"twelve","position":1}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, errorMessage(t, rec), "jersey number")
		games.AssertNotCalled(t, "AddPlayer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestServer_RecordStat(t *testing.T) {
	// Given: a use case that accepts the stat
	games := &mockGameUseCase{}
	games.On("RecordStatEvent", mock.Anything, entity.GameID(3), entity.PlayerID(8), entity.StatType("kill")).
		Return(&entity.StatDelta{PlayerID: 8, StatType: entity.StatKill, Value: 4}, nil).Once()
	server := New(newTestLogger(), games, Options{})

	// When: the player id is sent as a string
	rec := doRequest(t, server.Handler(), http.MethodPost, "/games/3/stats", `{"playerId":"8","statType":"kill"}`)

	// Then: the delta is returned
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"playerId":8,"statType":"kill","value":4}`, rec.Body.String())
	games.AssertExpectations(t)
}

func TestServer_RateLimit(t *testing.T) {
	// Given: a limiter that allows a single mutation per client
	buckets := ratelimiting.NewBuckets(ratelimiting.Options{RefillPerSecond: 0.0001, Burst: 1})
	defer buckets.Close()

	games := &mockGameUseCase{}
	games.On("CreateGame", mock.Anything, "Eagles", "").Return(&entity.Game{ID: 1}, nil).Once()
	games.On("ListGames", mock.Anything).Return([]entity.Game{}, nil)

	server := New(newTestLogger(), games, Options{
		Limiter: ratelimiting.NewRequestLimiter(buckets, ratelimiting.ClientAddr),
	})

	// When: two games are created back to back
	first := doRequest(t, server.Handler(), http.MethodPost, "/games", `{"teamName":"Eagles"}`)
	second := doRequest(t, server.Handler(), http.MethodPost, "/games", `{"teamName":"Eagles"}`)

	// Then: the second is refused while reads stay open
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "rate limit exceeded", errorMessage(t, second))

	read := doRequest(t, server.Handler(), http.MethodGet, "/games", "")
	assert.Equal(t, http.StatusOK, read.Code)
	assert.JSONEq(t, `[]`, read.Body.String())
}
