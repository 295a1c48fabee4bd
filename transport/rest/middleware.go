package rest

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rocketscienceinc/volleyball-stats-backend/internal/apperror"
)

const unmatchedRoute = "unmatched"

type errorResponse struct {
	Error string `json:"error"`
}

// requestContext attaches a per-request error reporting scope.
func (that *Server) requestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		ctx := that.reporter.WithRequest(req.Context(), req.Method, c.Path())
		c.SetRequest(req.WithContext(ctx))

		return next(c)
	}
}

// observe writes the access log line and request metrics. Errors are
// rendered here so the final status code is known.
func (that *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		if err := next(c); err != nil {
			c.Error(err)
		}

		route := c.Path()
		if route == "" {
			route = unmatchedRoute
		}

		elapsed := time.Since(start)
		status := c.Response().Status
		that.metrics.ObserveRequest(c.Request().Method, route, status, elapsed)

		that.logger.Info("request",
			"method", c.Request().Method,
			"uri", c.Request().RequestURI,
			"route", route,
			"status", status,
			"latency", elapsed,
			"remoteIP", c.RealIP(),
		)

		return nil
	}
}

func (that *Server) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if that.limiter == nil {
			return next(c)
		}

		if key, allowed := that.limiter.Allow(c.Request()); !allowed {
			that.metrics.RateLimited()
			that.logger.Warn("rate limit exceeded", "key", key, "route", c.Path())

			return c.JSON(http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
		}

		return next(c)
	}
}

// handleError maps domain errors to status codes. Anything unclassified is a
// server fault and gets reported.
func (that *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		that.reporter.Report(c.Request().Context(), err, map[string]string{"route": c.Path()})
	}

	if err = c.JSON(status, errorResponse{Error: message}); err != nil {
		that.logger.Error("failed to write error response", "error", err)
	}
}

func statusFor(err error) (int, string) {
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code, fmt.Sprint(httpErr.Message)
	case apperror.IsConflict(err):
		return http.StatusConflict, err.Error()
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}
