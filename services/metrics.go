package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Dosada05/league-bot/models"
)

const metricsNamespace = "league_bot"

type Metrics struct {
	TournamentsStarted  prometheus.Counter
	TournamentsFinished *prometheus.CounterVec
	TournamentsCanceled prometheus.Counter
	ResultsRecorded     prometheus.Counter
	InvalidScores       prometheus.Counter
	RoundsStarted       prometheus.Counter
	ActiveSessions      prometheus.Gauge
}

// NewMetrics registers the tournament collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TournamentsStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tournaments_started_total",
			Help:      "Tournaments whose team selection was opened.",
		}),
		TournamentsFinished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tournaments_finished_total",
			Help:      "Tournaments finalized, by reason.",
		}, []string{"reason"}),
		TournamentsCanceled: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tournaments_canceled_total",
			Help:      "Tournaments aborted before finalization.",
		}),
		ResultsRecorded: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "match_results_recorded_total",
			Help:      "Match scores accepted.",
		}),
		InvalidScores: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "invalid_scores_total",
			Help:      "Score inputs rejected for bad format.",
		}),
		RoundsStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rounds_started_total",
			Help:      "Replay rounds started after the first one.",
		}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_sessions",
			Help:      "Chats with a tournament in progress.",
		}),
	}
}

func (m *Metrics) finished(reason models.FinishReason) {
	m.TournamentsFinished.WithLabelValues(string(reason)).Inc()
}
