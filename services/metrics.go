package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics счетчики конвейера загрузки инвентаря. Nil-значение допустимо.
type Metrics struct {
	fetches         *prometheus.CounterVec
	fetchDuration   prometheus.Histogram
	resolveFailures prometheus.Counter
	dropped         *prometheus.CounterVec
}

// NewMetrics создает и регистрирует метрики в reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodbank_inventory_fetch_total",
			Help: "Inventory fetches by result.",
		}, []string{"result"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "foodbank_inventory_fetch_duration_seconds",
			Help:    "Duration of inventory fetch including image resolution.",
			Buckets: prometheus.DefBuckets,
		}),
		resolveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foodbank_image_resolve_failures_total",
			Help: "Image references that could not be resolved.",
		}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodbank_inventory_items_dropped_total",
			Help: "Inventory documents left out of the list by reason.",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.fetches, m.fetchDuration, m.resolveFailures, m.dropped)
	return m
}

func (m *Metrics) observeFetch(d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.fetches.WithLabelValues(result).Inc()
	m.fetchDuration.Observe(d.Seconds())
}

func (m *Metrics) resolveFailed() {
	if m == nil {
		return
	}
	m.resolveFailures.Inc()
}

func (m *Metrics) itemDropped(reason string) {
	if m == nil {
		return
	}
	m.dropped.WithLabelValues(reason).Inc()
}
