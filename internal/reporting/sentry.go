package reporting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/getsentry/sentry-go"
)

const flushTimeout = 5 * time.Second

var hostRx = regexp.MustCompile(`\[?[0-9a-f:.]+\]?:\d+`)

// sanitizeError strips addresses so identical faults group together.
func sanitizeError(err string) string {
	return hostRx.ReplaceAllString(err, "<host>")
}

type Options struct {
	DSN         string
	Environment string
}

// Reporter sends unexpected server faults to Sentry. A nil *Reporter and a
// Reporter built without a DSN only log.
type Reporter struct {
	logger *slog.Logger
	hub    *sentry.Hub
}

// New initializes the Sentry client when a DSN is set. The returned func
// flushes buffered events and must be called on shutdown.
func New(logger *slog.Logger, opts Options) (*Reporter, func(), error) {
	log := logger.With("component", "reporting")

	if opts.DSN == "" {
		log.Info("sentry DSN not set, error reporting disabled")
		return &Reporter{logger: log}, func() {}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         opts.DSN,
		Environment: opts.Environment,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init sentry: %w", err)
	}

	flush := func() {
		sentry.Flush(flushTimeout)
	}

	return NewWithHub(log, sentry.CurrentHub()), flush, nil
}

func NewWithHub(logger *slog.Logger, hub *sentry.Hub) *Reporter {
	return &Reporter{
		logger: logger,
		hub:    hub,
	}
}

// Report captures err with the request tags found on ctx.
func (that *Reporter) Report(ctx context.Context, err error, extras map[string]string) {
	if that == nil {
		return
	}

	if err == nil {
		err = errors.New("no error provided")
	}

	that.logger.Error("reporting error", "error", err, "extras", extras)

	if that.hub == nil {
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = that.hub.Clone()
	}

	hub.WithScope(func(scope *sentry.Scope) {
		for key, value := range extras {
			scope.SetExtra(key, value)
		}

		scope.SetFingerprint([]string{"{{ default }}", sanitizeError(err.Error())})
		hub.CaptureException(err)
	})
}

// WithRequest returns ctx carrying a hub scoped to one request.
func (that *Reporter) WithRequest(ctx context.Context, method, path string) context.Context {
	if that == nil || that.hub == nil {
		return ctx
	}

	hub := that.hub.Clone()
	hub.Scope().SetTags(map[string]string{
		"method": method,
		"path":   path,
	})

	return sentry.SetHubOnContext(ctx, hub)
}
