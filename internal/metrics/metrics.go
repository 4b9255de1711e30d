package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics counts membership sync outcomes. A nil *SyncMetrics is valid
// and records nothing.
type SyncMetrics struct {
	outcomes *prometheus.CounterVec
	archived prometheus.Counter
}

func NewSyncMetrics(reg prometheus.Registerer) (*SyncMetrics, error) {
	m := &SyncMetrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "house_admin",
			Name:      "membership_sync_total",
			Help:      "Membership sync runs by outcome.",
		}, []string{"outcome"}),
		archived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "house_admin",
			Name:      "members_archived_total",
			Help:      "Expired members moved to the archive.",
		}),
	}
	for _, c := range []prometheus.Collector{m.outcomes, m.archived} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *SyncMetrics) Observe(outcome string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(outcome).Inc()
}

func (m *SyncMetrics) Archived(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.archived.Add(float64(n))
}

// HTTPMetrics tracks API latency. A nil *HTTPMetrics records nothing.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) (*HTTPMetrics, error) {
	m := &HTTPMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "house_admin",
			Name:      "http_request_duration_seconds",
			Help:      "API request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	if err := reg.Register(m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *HTTPMetrics) Observe(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(method, route, status).Observe(d.Seconds())
}
