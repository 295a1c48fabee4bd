package usecase

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/volleyball-stats-backend/internal/entity"
	"github.com/rocketscienceinc/volleyball-stats-backend/internal/realtime"
)

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) Create(ctx context.Context, game *entity.Game) (entity.GameID, error) {
	args := that.Called(ctx, game)
	return args.Get(0).(entity.GameID), args.Error(1)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id entity.GameID) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameRepo) List(ctx context.Context) ([]entity.Game, error) {
	args := that.Called(ctx)
	games, _ := args.Get(0).([]entity.Game)
	return games, args.Error(1)
}

func (that *mockGameRepo) UpdateStatus(ctx context.Context, id entity.GameID, status string) error {
	return that.Called(ctx, id, status).Error(0)
}

type mockPlayerRepo struct {
	mock.Mock
}

func (that *mockPlayerRepo) Add(ctx context.Context, player *entity.Player) (entity.PlayerID, error) {
	args := that.Called(ctx, player)
	return args.Get(0).(entity.PlayerID), args.Error(1)
}

func (that *mockPlayerRepo) ListByGame(ctx context.Context, gameID entity.GameID) ([]entity.Player, error) {
	args := that.Called(ctx, gameID)
	players, _ := args.Get(0).([]entity.Player)
	return players, args.Error(1)
}

type mockStatRepo struct {
	mock.Mock
}

func (that *mockStatRepo) RecordStat(ctx context.Context, gameID entity.GameID, playerID entity.PlayerID, statType entity.StatType) (int, error) {
	args := that.Called(ctx, gameID, playerID, statType)
	return args.Int(0), args.Error(1)
}

func (that *mockStatRepo) GameStats(ctx context.Context, gameID entity.GameID) ([]entity.StatRow, error) {
	args := that.Called(ctx, gameID)
	rows, _ := args.Get(0).([]entity.StatRow)
	return rows, args.Error(1)
}

// recordingBroadcaster keeps every event it is asked to fan out.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events map[entity.GameID][]realtime.Event
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{events: make(map[entity.GameID][]realtime.Event)}
}

func (that *recordingBroadcaster) BroadcastToGame(gameID entity.GameID, event realtime.Event) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events[gameID] = append(that.events[gameID], event)

	return 1
}

func (that *recordingBroadcaster) eventsFor(gameID entity.GameID) []realtime.Event {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]realtime.Event(nil), that.events[gameID]...)
}
