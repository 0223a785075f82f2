// Package metrics exports cell cache events to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/krisalay/elevation-cache/types"
)

const subSystem = "cellcache"

// Prometheus implements types.Metrics with one collector per event.
type Prometheus struct {
	Hits         prometheus.Counter
	Misses       prometheus.Counter
	Opens        prometheus.Counter
	OpenFailures prometheus.Counter
	Evictions    prometheus.Counter
	Supersedes   prometheus.Counter
	Cells        prometheus.Gauge
}

var _ types.Metrics = (*Prometheus)(nil)

// NewPrometheus creates the collectors under namespace and registers them
// with r. A nil r leaves them unregistered.
func NewPrometheus(namespace string, r prometheus.Registerer) (*Prometheus, error) {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subSystem,
				Name:      name,
				Help:      help,
			},
		)
	}

	m := &Prometheus{
		Hits:         counter("hits_total", "Number of lookups served by an open cell."),
		Misses:       counter("misses_total", "Number of lookups that asked the factory for a cell."),
		Opens:        counter("opens_total", "Number of cells opened by the factory."),
		OpenFailures: counter("open_failures_total", "Number of lookups without coverage or with a failed open."),
		Evictions:    counter("evictions_total", "Number of cells dropped by the eviction sweep."),
		Supersedes:   counter("supersedes_total", "Number of cells replaced by a racing open of the same cell."),
		Cells: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subSystem,
				Name:      "open_cells",
				Help:      "Number of cells currently held by the cache.",
			},
		),
	}

	if r == nil {
		return m, nil
	}
	for _, c := range m.collectors() {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Prometheus) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Hits,
		m.Misses,
		m.Opens,
		m.OpenFailures,
		m.Evictions,
		m.Supersedes,
		m.Cells,
	}
}

func (m *Prometheus) Hit()            { m.Hits.Inc() }
func (m *Prometheus) Miss()           { m.Misses.Inc() }
func (m *Prometheus) Open()           { m.Opens.Inc() }
func (m *Prometheus) OpenFailure()    { m.OpenFailures.Inc() }
func (m *Prometheus) Eviction()       { m.Evictions.Inc() }
func (m *Prometheus) Supersede()      { m.Supersedes.Inc() }
func (m *Prometheus) OpenCells(n int) { m.Cells.Set(float64(n)) }

// NewMetricsHTTP returns a mux serving the default gatherer and r on /metrics.
func NewMetricsHTTP(r *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	g := prometheus.Gatherers{
		prometheus.DefaultGatherer,
		r,
	}

	handler := promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	mux.Handle("/metrics", promhttp.InstrumentMetricHandler(r, handler))
	return mux
}
