package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/volleyball-stats-backend/internal/apperror"
	"github.com/rocketscienceinc/volleyball-stats-backend/internal/entity"
	"github.com/rocketscienceinc/volleyball-stats-backend/internal/metrics"
	"github.com/rocketscienceinc/volleyball-stats-backend/internal/realtime"
)

type gameRepo interface {
	Create(ctx context.Context, game *entity.Game) (entity.GameID, error)
	GetByID(ctx context.Context, id entity.GameID) (*entity.Game, error)
	List(ctx context.Context) ([]entity.Game, error)
	UpdateStatus(ctx context.Context, id entity.GameID, status string) error
}

type playerRepo interface {
	Add(ctx context.Context, player *entity.Player) (entity.PlayerID, error)
	ListByGame(ctx context.Context, gameID entity.GameID) ([]entity.Player, error)
}

type statRepo interface {
	RecordStat(ctx context.Context, gameID entity.GameID, playerID entity.PlayerID, statType entity.StatType) (int, error)
	GameStats(ctx context.Context, gameID entity.GameID) ([]entity.StatRow, error)
}

type broadcaster interface {
	BroadcastToGame(gameID entity.GameID, event realtime.Event) int
}

// GameManager applies mutations to a game and fans the resulting state out to
// its viewers. Mutations of one game are serialized; the broadcast happens
// before the lock is released so viewers see events in commit order.
type GameManager struct {
	logger  *slog.Logger
	metrics *metrics.Metrics

	gameRepo    gameRepo
	playerRepo  playerRepo
	statRepo    statRepo
	broadcaster broadcaster

	locks          *gameLocks
	requiredLineup int
	now            func() time.Time
}

type Option func(*GameManager)

// WithRequiredLineup sets how many players a roster needs before stats are
// accepted. Zero disables the check.
func WithRequiredLineup(size int) Option {
	return func(that *GameManager) {
		that.requiredLineup = size
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(that *GameManager) {
		that.metrics = m
	}
}

func NewGameManager(
	logger *slog.Logger,
	gameRepo gameRepo,
	playerRepo playerRepo,
	statRepo statRepo,
	broadcaster broadcaster,
	opts ...Option,
) *GameManager {
	that := &GameManager{
		logger: logger.With("component", "game_manager"),

		gameRepo:    gameRepo,
		playerRepo:  playerRepo,
		statRepo:    statRepo,
		broadcaster: broadcaster,

		locks:          newGameLocks(),
		requiredLineup: entity.LineupSize,
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(that)
	}

	return that
}

func (that *GameManager) CreateGame(ctx context.Context, teamName, opponentName string) (*entity.Game, error) {
	log := that.logger.With("method", "CreateGame")

	game, err := entity.NewGame(teamName, opponentName, that.now())
	if err != nil {
		return nil, err
	}

	id, err := that.gameRepo.Create(ctx, game)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	game.ID = id
	that.metrics.GameCreated()

	log.Info("game created", "gameID", id)

	return game, nil
}

// AddPlayer puts a player on the roster and broadcasts the full roster.
func (that *GameManager) AddPlayer(ctx context.Context, gameID entity.GameID, name string, jerseyNumber *int, position int) (*entity.Player, error) {
	log := that.logger.With("method", "AddPlayer", "gameID", gameID)

	player, err := entity.NewPlayer(gameID, name, jerseyNumber, position)
	if err != nil {
		return nil, err
	}

	unlock := that.locks.lock(gameID)
	defer unlock()

	if _, err = that.activeGame(ctx, gameID); err != nil {
		return nil, err
	}

	id, err := that.playerRepo.Add(ctx, player)
	if err != nil {
		return nil, fmt.Errorf("failed to add player: %w", err)
	}

	player.ID = id
	that.metrics.PlayerAdded()

	log.Info("player added", "playerID", id, "position", position)

	roster, err := that.playerRepo.ListByGame(ctx, gameID)
	if err != nil {
		log.Error("player added but roster could not be read, skipping broadcast", "error", err)
		return player, nil
	}

	that.broadcaster.BroadcastToGame(gameID, realtime.PlayerAdded(roster))

	return player, nil
}

// RecordStatEvent increments one counter and broadcasts the delta together
// with the game's full stat table.
func (that *GameManager) RecordStatEvent(ctx context.Context, gameID entity.GameID, playerID entity.PlayerID, statType entity.StatType) (*entity.StatDelta, error) {
	log := that.logger.With("method", "RecordStatEvent", "gameID", gameID)

	if !gameID.IsValid() {
		return nil, apperror.ErrInvalidGameID
	}

	if !playerID.IsValid() {
		return nil, apperror.ErrInvalidPlayerID
	}

	statType, err := entity.ParseStatType(string(statType))
	if err != nil {
		return nil, err
	}

	unlock := that.locks.lock(gameID)
	defer unlock()

	if _, err = that.activeGame(ctx, gameID); err != nil {
		return nil, err
	}

	if err = that.confirmLineup(ctx, gameID); err != nil {
		return nil, err
	}

	value, err := that.statRepo.RecordStat(ctx, gameID, playerID, statType)
	if err != nil {
		return nil, fmt.Errorf("failed to record stat: %w", err)
	}

	delta := &entity.StatDelta{
		PlayerID: playerID,
		StatType: statType,
		Value:    value,
	}
	that.metrics.StatRecorded(string(statType))

	log.Info("stat recorded", "playerID", playerID, "statType", statType, "value", value)

	stats, err := that.statRepo.GameStats(ctx, gameID)
	if err != nil {
		log.Error("stat recorded but stats could not be read, skipping broadcast", "error", err)
		return delta, nil
	}

	that.broadcaster.BroadcastToGame(gameID, realtime.StatUpdated(*delta, stats))

	return delta, nil
}

// CompleteGame closes the game for further stats. Completing a completed game
// returns it unchanged without a new broadcast.
func (that *GameManager) CompleteGame(ctx context.Context, gameID entity.GameID) (*entity.Game, error) {
	log := that.logger.With("method", "CompleteGame", "gameID", gameID)

	if !gameID.IsValid() {
		return nil, apperror.ErrInvalidGameID
	}

	unlock := that.locks.lock(gameID)
	defer unlock()

	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if game.IsCompleted() {
		return game, nil
	}

	if err = that.gameRepo.UpdateStatus(ctx, gameID, entity.StatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to complete game: %w", err)
	}

	game.Complete()
	that.metrics.GameCompleted()

	log.Info("game completed")

	that.broadcaster.BroadcastToGame(gameID, realtime.GameCompleted(*game))

	return game, nil
}

func (that *GameManager) ListGames(ctx context.Context) ([]entity.Game, error) {
	games, err := that.gameRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	return games, nil
}

func (that *GameManager) GetGame(ctx context.Context, gameID entity.GameID) (*entity.Game, error) {
	if !gameID.IsValid() {
		return nil, apperror.ErrInvalidGameID
	}

	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// Players returns the roster ordered by position. Unknown games have an empty
// roster.
func (that *GameManager) Players(ctx context.Context, gameID entity.GameID) ([]entity.Player, error) {
	if !gameID.IsValid() {
		return nil, apperror.ErrInvalidGameID
	}

	players, err := that.playerRepo.ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	return players, nil
}

// Stats returns one row per recorded (player, stat type).
func (that *GameManager) Stats(ctx context.Context, gameID entity.GameID) ([]entity.StatRow, error) {
	if !gameID.IsValid() {
		return nil, apperror.ErrInvalidGameID
	}

	stats, err := that.statRepo.GameStats(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return stats, nil
}

func (that *GameManager) activeGame(ctx context.Context, gameID entity.GameID) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if err = game.ConfirmActive(); err != nil {
		return nil, err
	}

	return game, nil
}

func (that *GameManager) confirmLineup(ctx context.Context, gameID entity.GameID) error {
	if that.requiredLineup <= 0 {
		return nil
	}

	roster, err := that.playerRepo.ListByGame(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to list players: %w", err)
	}

	if len(roster) < that.requiredLineup {
		return fmt.Errorf("%w: %d of %d players", apperror.ErrRosterIncomplete, len(roster), that.requiredLineup)
	}

	return nil
}
