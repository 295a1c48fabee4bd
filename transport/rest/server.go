package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/rocketscienceinc/volleyball-stats-backend/internal/entity"
	"github.com/rocketscienceinc/volleyball-stats-backend/internal/metrics"
	"github.com/rocketscienceinc/volleyball-stats-backend/internal/ratelimiting"
	"github.com/rocketscienceinc/volleyball-stats-backend/internal/reporting"
)

type gameUseCase interface {
	CreateGame(ctx context.Context, teamName, opponentName string) (*entity.Game, error)
	AddPlayer(ctx context.Context, gameID entity.GameID, name string, jerseyNumber *int, position int) (*entity.Player, error)
	RecordStatEvent(ctx context.Context, gameID entity.GameID, playerID entity.PlayerID, statType entity.StatType) (*entity.StatDelta, error)
	CompleteGame(ctx context.Context, gameID entity.GameID) (*entity.Game, error)

	ListGames(ctx context.Context) ([]entity.Game, error)
	GetGame(ctx context.Context, gameID entity.GameID) (*entity.Game, error)
	Players(ctx context.Context, gameID entity.GameID) ([]entity.Player, error)
	Stats(ctx context.Context, gameID entity.GameID) ([]entity.StatRow, error)
}

type Options struct {
	Metrics        *metrics.Metrics
	Reporter       *reporting.Reporter
	Limiter        *ratelimiting.RequestLimiter
	Realtime       http.Handler
	AllowedOrigins []string
}

type Server struct {
	logger   *slog.Logger
	echo     *echo.Echo
	games    gameUseCase
	metrics  *metrics.Metrics
	reporter *reporting.Reporter
	limiter  *ratelimiting.RequestLimiter
}

func New(logger *slog.Logger, games gameUseCase, opts Options) *Server {
	that := &Server{
		logger:   logger.With("component", "rest"),
		echo:     echo.New(),
		games:    games,
		metrics:  opts.Metrics,
		reporter: opts.Reporter,
		limiter:  opts.Limiter,
	}

	that.echo.HideBanner = true
	that.echo.HidePort = true
	that.echo.HTTPErrorHandler = that.handleError

	allowedOrigins := opts.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	that.echo.Use(
		middleware.Recover(),
		that.requestContext,
		that.observe,
		middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: allowedOrigins}),
	)

	that.routes(opts.Realtime)

	return that
}

func (that *Server) routes(realtime http.Handler) {
	that.echo.GET("/ping", that.ping)
	that.echo.GET("/health", that.health)
	that.echo.GET("/metrics", echo.WrapHandler(that.metrics.Handler()))

	if realtime != nil {
		that.echo.GET("/ws", echo.WrapHandler(realtime))
	}

	games := that.echo.Group("/games")
	games.GET("", that.listGames)
	games.POST("", that.createGame, that.rateLimit)
	games.GET("/:id", that.getGame)
	games.GET("/:id/players", that.listPlayers)
	games.POST("/:id/players", that.addPlayer, that.rateLimit)
	games.GET("/:id/stats", that.listStats)
	games.POST("/:id/stats", that.recordStat, that.rateLimit)
	games.POST("/:id/complete", that.completeGame, that.rateLimit)
}

// Handler exposes the router, mainly for tests.
func (that *Server) Handler() http.Handler {
	return that.echo
}

func (that *Server) Start(port string) error {
	that.echo.Server.ReadTimeout = 10 * time.Second
	that.echo.Server.IdleTimeout = 30 * time.Second

	if err := that.echo.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Shutdown(ctx context.Context) error {
	if err := that.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
