package search

import (
	"errors"
	"sync"
	"time"

	"github.com/poiesic/conformit/core"
	"github.com/poiesic/conformit/verify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsMonitor is a SearchMonitor that records Prometheus metrics.
type MetricsMonitor struct {
	searches   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	candidates prometheus.Histogram
	removed    prometheus.Counter
	truncated  prometheus.Counter
	results    prometheus.Histogram

	mu      sync.Mutex
	started map[string]time.Time
}

var _ SearchMonitor = (*MetricsMonitor)(nil)

// NewMetricsMonitor registers the search collectors with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func NewMetricsMonitor(reg prometheus.Registerer) *MetricsMonitor {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &MetricsMonitor{
		searches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "conformit_search_total",
			Help: "Total template searches by outcome",
		}, []string{"outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "conformit_search_duration_seconds",
			Help:    "Template search duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		}, []string{"outcome"}),
		candidates: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "conformit_search_candidates",
			Help:    "Concept ids returned by the combined query",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		removed: factory.NewCounter(prometheus.CounterOpts{
			Name: "conformit_search_removed_total",
			Help: "Total candidates removed by exact-match verification",
		}),
		truncated: factory.NewCounter(prometheus.CounterOpts{
			Name: "conformit_search_truncated_total",
			Help: "Total searches whose query results hit the result cap",
		}),
		results: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "conformit_search_results",
			Help:    "Concept ids returned per search",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		started: make(map[string]time.Time),
	}
}

func (m *MetricsMonitor) Start(searchID string, _ Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started[searchID] = time.Now()
}

func (m *MetricsMonitor) AfterCompile(_ string, _ string) {}

func (m *MetricsMonitor) AfterQuery(_ string, conceptIDs []string, total int) {
	m.candidates.Observe(float64(len(conceptIDs)))
	if total > len(conceptIDs) {
		m.truncated.Inc()
	}
}

func (m *MetricsMonitor) AfterFetch(_ string, _ []core.Concept) {}

func (m *MetricsMonitor) AfterVerify(_ string, removed verify.Set) {
	m.removed.Add(float64(len(removed)))
}

func (m *MetricsMonitor) AfterLexical(_ string, _, _ []string) {}

func (m *MetricsMonitor) Finish(searchID string, result *Result, err error) {
	m.mu.Lock()
	start, ok := m.started[searchID]
	delete(m.started, searchID)
	m.mu.Unlock()

	outcome := outcomeOf(err)
	m.searches.WithLabelValues(outcome).Inc()
	if ok {
		m.duration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}
	if result != nil {
		m.results.Observe(float64(len(result.ConceptIDs)))
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, core.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
