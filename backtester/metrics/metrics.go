package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Candidate outcomes
const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
	OutcomeSkipped = "skipped"
)

// Run statuses
const (
	RunComplete = "complete"
	RunFailed   = "failed"
)

var (
	candidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pairs_candidates_total", Help: "Candidates tested for cointegration by outcome"},
		[]string{"outcome"},
	)
	tradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pairs_trades_total", Help: "Closed trades by exit reason"},
		[]string{"reason"},
	)
	rejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pairs_risk_rejections_total", Help: "Entries denied by risk limits"},
		[]string{"limit"},
	)
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pairs_runs_total", Help: "Backtest runs by final status"},
		[]string{"status"},
	)
	runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pairs_run_duration_seconds",
		Help:    "Wall clock duration of backtest runs",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})
)

func init() {
	prometheus.MustRegister(candidatesTotal, tradesTotal, rejectionsTotal, runsTotal, runDuration)
}

// ObserveCandidate counts a tested candidate
func ObserveCandidate(outcome string) {
	candidatesTotal.WithLabelValues(outcome).Inc()
}

// ObserveTrade counts a closed trade
func ObserveTrade(reason string) {
	tradesTotal.WithLabelValues(reason).Inc()
}

// ObserveRejection counts a denied entry
func ObserveRejection(limit string) {
	rejectionsTotal.WithLabelValues(limit).Inc()
}

// ObserveRun counts a finished run and records how long it took
func ObserveRun(status string, elapsed time.Duration) {
	runsTotal.WithLabelValues(status).Inc()
	runDuration.Observe(elapsed.Seconds())
}

// Handler exposes every registered collector
func Handler() http.Handler {
	return promhttp.Handler()
}
