package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	SessionsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchplay_sessions_started_total",
			Help: "Sessions that left the intro screen",
		},
		[]string{"variant"},
	)

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "matchplay_sessions_active",
			Help: "Sessions currently hosted",
		},
	)

	Answers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchplay_answers_total",
			Help: "Accepted answers by outcome",
		},
		[]string{"variant", "outcome"},
	)

	PlayCounts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchplay_playcount_notifications_total",
			Help: "Play-count notifications by result",
		},
		[]string{"variant", "result"},
	)

	ContentFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "matchplay_content_fallbacks_total",
			Help: "Times the built-in pair set replaced remote content",
		},
	)

	ContentCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchplay_content_cache_total",
			Help: "Content cache lookups by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(SessionsStarted, SessionsActive, Answers, PlayCounts, ContentFallbacks, ContentCache)
}
