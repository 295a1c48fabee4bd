package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "volleyball"

// Metrics owns a private prometheus registry. A nil *Metrics is valid and
// records nothing, so components can be built without instrumentation.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rateLimited     prometheus.Counter

	gamesCreated   prometheus.Counter
	gamesCompleted prometheus.Counter
	playersAdded   prometheus.Counter
	statEvents     *prometheus.CounterVec

	subscribers         prometheus.Gauge
	broadcastsSent      *prometheus.CounterVec
	broadcastFailures   prometheus.Counter
	broadcastRecipients prometheus.Histogram
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	that := &Metrics{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
		gamesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_created_total",
			Help:      "Games created.",
		}),
		gamesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_completed_total",
			Help:      "Games marked as completed.",
		}),
		playersAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "players_added_total",
			Help:      "Players added to rosters.",
		}),
		statEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stat_events_total",
			Help:      "Recorded stat events by stat type.",
		}, []string{"stat_type"}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "subscribers",
			Help:      "Connections currently subscribed to a game.",
		}),
		broadcastsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "broadcasts_total",
			Help:      "Events fanned out to a game, by event type.",
		}, []string{"event"}),
		broadcastFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "send_failures_total",
			Help:      "Sends that failed and dropped the connection.",
		}),
		broadcastRecipients: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "broadcast_recipients",
			Help:      "Successful deliveries per broadcast.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		that.requests,
		that.requestDuration,
		that.rateLimited,
		that.gamesCreated,
		that.gamesCompleted,
		that.playersAdded,
		that.statEvents,
		that.subscribers,
		that.broadcastsSent,
		that.broadcastFailures,
		that.broadcastRecipients,
	)

	return that
}

// Handler serves the registry in the prometheus text format.
func (that *Metrics) Handler() http.Handler {
	if that == nil {
		return http.NotFoundHandler()
	}

	return promhttp.HandlerFor(that.registry, promhttp.HandlerOpts{Registry: that.registry})
}

func (that *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if that == nil {
		return
	}

	that.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	that.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (that *Metrics) RateLimited() {
	if that == nil {
		return
	}

	that.rateLimited.Inc()
}

func (that *Metrics) GameCreated() {
	if that == nil {
		return
	}

	that.gamesCreated.Inc()
}

func (that *Metrics) GameCompleted() {
	if that == nil {
		return
	}

	that.gamesCompleted.Inc()
}

func (that *Metrics) PlayerAdded() {
	if that == nil {
		return
	}

	that.playersAdded.Inc()
}

func (that *Metrics) StatRecorded(statType string) {
	if that == nil {
		return
	}

	that.statEvents.WithLabelValues(statType).Inc()
}

func (that *Metrics) SetSubscribers(count int) {
	if that == nil {
		return
	}

	that.subscribers.Set(float64(count))
}

func (that *Metrics) Broadcast(event string, delivered int) {
	if that == nil {
		return
	}

	that.broadcastsSent.WithLabelValues(event).Inc()
	that.broadcastRecipients.Observe(float64(delivered))
}

func (that *Metrics) SendFailed() {
	if that == nil {
		return
	}

	that.broadcastFailures.Inc()
}
