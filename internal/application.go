package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/volleyball-stats-backend/internal/config"
	"github.com/rocketscienceinc/volleyball-stats-backend/internal/metrics"
	"github.com/rocketscienceinc/volleyball-stats-backend/internal/ratelimiting"
	"github.com/rocketscienceinc/volleyball-stats-backend/internal/realtime"
	"github.com/rocketscienceinc/volleyball-stats-backend/internal/reporting"
	"github.com/rocketscienceinc/volleyball-stats-backend/internal/repository"
	"github.com/rocketscienceinc/volleyball-stats-backend/internal/repository/storage"
	"github.com/rocketscienceinc/volleyball-stats-backend/internal/usecase"
	"github.com/rocketscienceinc/volleyball-stats-backend/transport/rest"
	"github.com/rocketscienceinc/volleyball-stats-backend/transport/websocket"
)

const shutdownTimeout = 10 * time.Second

var ErrAddrNotFound = errors.New("redis address string is empty")

type repositories struct {
	games   repository.GameRepository
	players repository.PlayerRepository
	stats   repository.StatRepository
}

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	reporter, flush, err := reporting.New(logger, reporting.Options{
		DSN:         conf.Sentry.DSN,
		Environment: conf.Sentry.Environment,
	})
	if err != nil {
		return fmt.Errorf("could not init error reporting: %w", err)
	}
	defer flush()

	repos, closeStorage, err := openStorage(ctx, log, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err = closeStorage(); err != nil {
			log.Error("could not close storage", "error", err)
		}
	}()

	appMetrics := metrics.New()

	registry := realtime.NewRegistry(logger, appMetrics)
	defer registry.Close()

	dispatcher := realtime.NewDispatcher(logger, registry, appMetrics)

	gameManager := usecase.NewGameManager(logger, repos.games, repos.players, repos.stats, dispatcher,
		usecase.WithRequiredLineup(conf.Game.RequiredLineup),
		usecase.WithMetrics(appMetrics),
	)

	buckets := ratelimiting.NewBuckets(ratelimiting.Options{
		RefillPerSecond: conf.RateLimit.RefillPerSecond,
		Burst:           conf.RateLimit.Burst,
	})
	defer buckets.Close()

	wsServer := websocket.New(logger, registry, websocket.Options{
		WriteTimeout:   conf.WebSocket.WriteTimeout,
		AllowedOrigins: conf.WebSocket.AllowedOrigins,
	})

	restServer := rest.New(logger, gameManager, rest.Options{
		Metrics:        appMetrics,
		Reporter:       reporter,
		Limiter:        ratelimiting.NewRequestLimiter(buckets, ratelimiting.ClientAddr),
		Realtime:       wsServer,
		AllowedOrigins: conf.WebSocket.AllowedOrigins,
	})

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := restServer.Start(conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err = restServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return nil
}

// openStorage connects the configured driver and builds its repositories.
func openStorage(ctx context.Context, log *slog.Logger, conf *config.Config) (*repositories, func() error, error) {
	switch conf.Storage.Driver {
	case config.StorageRedis:
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == ":" {
			return nil, nil, ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, &redis.Options{
			Addr:     redisAddrString,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		log.Info("Using redis storage", "addr", redisAddrString)

		return &repositories{
			games:   repository.NewRedisGameRepository(redisStorage.Connection),
			players: repository.NewRedisPlayerRepository(redisStorage.Connection),
			stats:   repository.NewRedisStatRepository(redisStorage.Connection),
		}, redisStorage.Close, nil
	default:
		sqliteStorage, err := storage.NewSQLiteStorage(conf.Storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		if err = sqliteStorage.Init(ctx); err != nil {
			_ = sqliteStorage.Close()
			return nil, nil, fmt.Errorf("could not init sqlite storage: %w", err)
		}

		log.Info("Using sqlite storage", "path", conf.Storage.SQLitePath)

		return &repositories{
			games:   repository.NewGameRepository(sqliteStorage.Connection),
			players: repository.NewPlayerRepository(sqliteStorage.Connection),
			stats:   repository.NewStatRepository(sqliteStorage.Connection),
		}, sqliteStorage.Close, nil
	}
}
