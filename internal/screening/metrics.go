package screening

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records pipeline activity. A nil *Metrics records nothing.
type Metrics struct {
	// Rows decided per pass and status
	Rows *prometheus.CounterVec

	// Rows held back by the second pass
	Held prometheus.Counter

	// Rows written by commit kind: "clean" or "override"
	Committed *prometheus.CounterVec

	// Bulk issue outcomes by resulting status
	Issued *prometheus.CounterVec

	// Matching latency per pass
	MatchLatency *prometheus.HistogramVec
}

// NewMetrics registers the screening metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Rows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worldmap_screening_rows_total",
			Help: "Checked application rows by pass and decided status",
		}, []string{"pass", "status"}),

		Held: factory.NewCounter(prometheus.CounterOpts{
			Name: "worldmap_screening_held_total",
			Help: "Rows held back for administrator review by the second pass",
		}),

		Committed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worldmap_screening_committed_total",
			Help: "Applications committed to the registry by kind",
		}, []string{"kind"}),

		Issued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worldmap_issue_outcomes_total",
			Help: "Bulk issue outcomes by resulting application status",
		}, []string{"status"}),

		MatchLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "worldmap_screening_match_duration_seconds",
			Help:    "Duration of matching one batch against a registry snapshot",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"pass"}),
	}
}

// ObserveRow records one decided row.
func (m *Metrics) ObserveRow(pass, status string) {
	if m != nil {
		m.Rows.WithLabelValues(pass, status).Inc()
	}
}

// AddHeld records rows held back by the second pass.
func (m *Metrics) AddHeld(n int) {
	if m != nil {
		m.Held.Add(float64(n))
	}
}

// AddCommitted records committed rows of a kind.
func (m *Metrics) AddCommitted(kind string, n int) {
	if m != nil {
		m.Committed.WithLabelValues(kind).Add(float64(n))
	}
}

// ObserveIssue records one bulk issue outcome.
func (m *Metrics) ObserveIssue(status string) {
	if m != nil {
		m.Issued.WithLabelValues(status).Inc()
	}
}

// ObserveMatchLatency records how long one matching pass took.
func (m *Metrics) ObserveMatchLatency(pass string, d time.Duration) {
	if m != nil {
		m.MatchLatency.WithLabelValues(pass).Observe(d.Seconds())
	}
}
