package matching

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/spigell/group-recommender/internal/filtering"
)

const metricsNamespace = "group_recommender"

// Metrics collects ranker statistics. A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	scores   *prometheus.HistogramVec
	filtered *prometheus.CounterVec
}

// NewMetrics registers the ranker collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "recommend_requests_total",
				Help:      "Total number of recommendation requests",
			},
			[]string{"mode", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "recommend_duration_seconds",
				Help:      "Time spent ranking groups for a user",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"mode"},
		),
		scores: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "relevance_score",
				Help:      "Distribution of relevance scores of returned groups",
				Buckets:   prometheus.LinearBuckets(0, 20, 10),
			},
			[]string{"mode"},
		),
		filtered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "filtered_groups_total",
				Help:      "Groups removed from the candidate list by each filter",
			},
			[]string{"filter"},
		),
	}
}

func (m *Metrics) observeRequest(mode Mode, started time.Time, err error) {
	if m == nil {
		return
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	m.requests.WithLabelValues(string(mode), status).Inc()
	m.duration.WithLabelValues(string(mode)).Observe(time.Since(started).Seconds())
}

func (m *Metrics) observeScore(mode Mode, score int) {
	if m == nil {
		return
	}
	m.scores.WithLabelValues(string(mode)).Observe(float64(score))
}

func (m *Metrics) observeFilters(reports []filtering.Report) {
	if m == nil {
		return
	}
	for _, r := range reports {
		m.filtered.WithLabelValues(r.Name).Add(float64(r.Step.Dropped))
	}
}
