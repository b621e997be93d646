// Package metrics holds the prometheus collectors of the arcade service.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "arcade"

type Metrics struct {
	sessionsStarted  *prometheus.CounterVec
	sessionsEnded    *prometheus.CounterVec
	activeSessions   *prometheus.GaugeVec
	hits             *prometheus.CounterVec
	routeEvaluations *prometheus.CounterVec
	scoreSubmissions *prometheus.CounterVec
	connections      prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		sessionsStarted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Game sessions started, by game.",
		}, []string{"game"}),
		sessionsEnded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_ended_total",
			Help:      "Game sessions that reached the ended phase, by game.",
		}, []string{"game"}),
		activeSessions: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently registered, by game.",
		}, []string{"game"}),
		hits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "whack_hits_total",
			Help:      "Accepted hits in the whack game, by entity category.",
		}, []string{"category"}),
		routeEvaluations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_evaluations_total",
			Help:      "Route evaluations, by outcome.",
		}, []string{"outcome"}),
		scoreSubmissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_submissions_total",
			Help:      "Score submissions, by game and outcome.",
		}, []string{"game", "outcome"}),
		connections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_connections",
			Help:      "Open websocket connections.",
		}),
	}
}

// NewRegistry returns a registry preloaded with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) SessionStarted(game string) {
	if m == nil {
		return
	}
	m.sessionsStarted.WithLabelValues(game).Inc()
}

func (m *Metrics) SessionEnded(game string) {
	if m == nil {
		return
	}
	m.sessionsEnded.WithLabelValues(game).Inc()
}

func (m *Metrics) SessionOpened(game string) {
	if m == nil {
		return
	}
	m.activeSessions.WithLabelValues(game).Inc()
}

func (m *Metrics) SessionClosed(game string) {
	if m == nil {
		return
	}
	m.activeSessions.WithLabelValues(game).Dec()
}

func (m *Metrics) Hit(category string) {
	if m == nil {
		return
	}
	m.hits.WithLabelValues(category).Inc()
}

func (m *Metrics) RouteEvaluated(outcome string) {
	if m == nil {
		return
	}
	m.routeEvaluations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ScoreSubmitted(game string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.scoreSubmissions.WithLabelValues(game, outcome).Inc()
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.connections.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.connections.Dec()
}
