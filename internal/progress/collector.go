package progress

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wesleyorama2/perfkit/internal/meter"
	"github.com/wesleyorama2/perfkit/internal/result"
)

const namespace = "perfkit"

// Collector exports run progress as Prometheus metrics on its own registry.
type Collector struct {
	registry *prometheus.Registry

	planned   *prometheus.GaugeVec
	completed *prometheus.CounterVec
	failures  *prometheus.CounterVec
	samples   *prometheus.CounterVec
	last      *prometheus.GaugeVec
	finished  prometheus.Gauge

	current string
}

// NewCollector creates a collector registered on reg. A nil reg gets a fresh
// registry.
func NewCollector(reg *prometheus.Registry) (*Collector, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	c := &Collector{
		registry: reg,
		planned: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "elements_planned",
			Help:      "Elements arranged for each operation.",
		}, []string{"operation"}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "elements_completed_total",
			Help:      "Elements executed for each operation.",
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Failures recorded, by operation and kind.",
		}, []string{"operation", "kind"}),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "Samples recorded, by operation and meter.",
		}, []string{"operation", "meter"}),
		last: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_sample",
			Help:      "Most recent sample, by operation and meter.",
		}, []string{"operation", "meter"}),
		finished: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_finished",
			Help:      "1 once the run has finished.",
		}),
	}

	for _, col := range []prometheus.Collector{c.planned, c.completed, c.failures, c.samples, c.last, c.finished} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("failed to register progress metrics: %w", err)
		}
	}
	return c, nil
}

// Registry returns the registry the metrics live on.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// WriteTextfile writes the metrics in the node-exporter textfile format.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}

func (c *Collector) Init(totals map[string]int) {
	for op, n := range totals {
		c.planned.WithLabelValues(op).Set(float64(n))
		c.completed.WithLabelValues(op)
	}
	c.finished.Set(0)
}

func (c *Collector) Current(name string) {
	c.flush()
	c.current = Operation(name)
}

func (c *Collector) Error(name string, kind result.FailureKind) {
	c.failures.WithLabelValues(Operation(name), kind.String()).Inc()
}

func (c *Collector) Finished() {
	c.flush()
	c.finished.Set(1)
}

func (c *Collector) OnSample(operation string, key meter.Key, value float64) {
	c.samples.WithLabelValues(operation, key.String()).Inc()
	c.last.WithLabelValues(operation, key.String()).Set(value)
}

// OnFailure is a no-op; failures are counted through Error.
func (c *Collector) OnFailure(result.Failure) {}

// flush counts the element that was running as completed.
func (c *Collector) flush() {
	if c.current != "" {
		c.completed.WithLabelValues(c.current).Inc()
		c.current = ""
	}
}
