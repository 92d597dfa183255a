package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the pick'em sync worker

var (
	// Feed metrics
	FeedCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pickem_feed_calls_total",
			Help: "Total number of scoreboard feed calls",
		},
		[]string{"endpoint", "status"},
	)

	FeedCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pickem_feed_call_duration_seconds",
			Help:    "Duration of scoreboard feed calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	ParseErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pickem_feed_parse_errors_total",
			Help: "Total number of feed events dropped as unparseable",
		},
	)

	// Sync metrics
	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pickem_sync_operations_total",
			Help: "Total number of sync operations",
		},
		[]string{"mode", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pickem_sync_duration_seconds",
			Help:    "Duration of sync operations in seconds",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60},
		},
		[]string{"mode"},
	)

	LastSuccessfulSync = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pickem_last_successful_sync_timestamp",
			Help: "Timestamp of the last successful sync",
		},
	)

	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pickem_snapshot_cache_hits_total",
			Help: "Total number of syncs served from the game cache without a feed call",
		},
	)

	// Scoring metrics
	GamesFinalizedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pickem_games_finalized_total",
			Help: "Total number of final transitions observed at upsert",
		},
	)

	PicksScoredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pickem_picks_scored_total",
			Help: "Total number of pick results changed by the scoring engine",
		},
	)

	UnmatchedPicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pickem_unmatched_picks_total",
			Help: "Total number of picks whose team could not be matched to either side",
		},
	)

	PredictionsResolvedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pickem_mnf_predictions_resolved_total",
			Help: "Total number of MNF predictions back-filled with deltas",
		},
	)

	MNFConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pickem_mnf_conflicts_total",
			Help: "Total number of weeks where more than one game was flagged MNF",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pickem_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pickem_system_uptime_seconds",
			Help: "Worker uptime in seconds",
		},
	)
)

// RecordFeedCall records a feed call metric
func RecordFeedCall(endpoint, status string, duration float64) {
	FeedCallsTotal.WithLabelValues(endpoint, status).Inc()
	FeedCallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordParseError records a dropped feed event
func RecordParseError() {
	ParseErrorsTotal.Inc()
}

// RecordSync records a sync operation
func RecordSync(mode, status string, duration float64) {
	SyncOperationsTotal.WithLabelValues(mode, status).Inc()
	SyncDuration.WithLabelValues(mode).Observe(duration)

	if status == "success" {
		LastSuccessfulSync.SetToCurrentTime()
	}
}

// RecordCacheHit records a sync served entirely from cache
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordFinalTransition records a game transitioning to final
func RecordFinalTransition() {
	GamesFinalizedTotal.Inc()
}

// RecordPicksScored records changed pick results
func RecordPicksScored(changed int) {
	PicksScoredTotal.Add(float64(changed))
}

// RecordUnmatchedPick records a pick that matched neither team
func RecordUnmatchedPick() {
	UnmatchedPicksTotal.Inc()
}

// RecordPredictionsResolved records back-filled MNF predictions
func RecordPredictionsResolved(count int) {
	PredictionsResolvedTotal.Add(float64(count))
}

// RecordMNFConflict records a week with multiple flagged MNF games
func RecordMNFConflict() {
	MNFConflictsTotal.Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
