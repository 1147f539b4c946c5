package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pthm-cable/benchmarker/bench"
)

// MetricsNamespace prefixes every exported metric.
const MetricsNamespace = "benchmark"

// ResultGauges exposes analysed results as Prometheus gauges labelled by
// category, name and statistic.
type ResultGauges struct {
	registry   *prometheus.Registry
	methodTime *prometheus.GaugeVec
	calls      *prometheus.GaugeVec
	frameTime  *prometheus.GaugeVec
}

// NewResultGauges creates gauges in a private registry and sets them from groups.
func NewResultGauges(groups []bench.CategoryGroup) (*ResultGauges, error) {
	labels := []string{"category", "name", "stat"}
	g := &ResultGauges{
		registry: prometheus.NewRegistry(),
		methodTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "method_time_seconds",
			Help:      "Time per call of a benchmarked method.",
		}, labels),
		calls: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "calls_per_frame",
			Help:      "Calls of a benchmarked method per frame.",
		}, labels),
		frameTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "frame_time_seconds",
			Help:      "Time spent in a benchmarked method per frame.",
		}, labels),
	}

	for _, c := range []prometheus.Collector{g.methodTime, g.calls, g.frameTime} {
		if err := g.registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering result gauges: %w", err)
		}
	}

	for _, cat := range groups {
		for _, p := range cat.Processed {
			name := p.Metadata.Name()
			setStats(g.methodTime, cat.Name, name, p.MethodTime)
			setStats(g.calls, cat.Name, name, p.Count)
			setStats(g.frameTime, cat.Name, name, p.FrameTime)
		}
	}
	return g, nil
}

func setStats(vec *prometheus.GaugeVec, category, name string, d bench.DataGroup) {
	vec.WithLabelValues(category, name, "mean").Set(d.Mean)
	vec.WithLabelValues(category, name, "std_dev").Set(d.StdDev)
	vec.WithLabelValues(category, name, "std_error").Set(d.StdError)
	vec.WithLabelValues(category, name, "min").Set(d.Min)
	vec.WithLabelValues(category, name, "max").Set(d.Max)
	if d.Ratio != nil {
		vec.WithLabelValues(category, name, "ratio").Set(*d.Ratio)
	}
}

// Registry returns the registry holding the gauges.
func (g *ResultGauges) Registry() *prometheus.Registry {
	return g.registry
}

// WriteTextfile writes the gauges in the node_exporter textfile format.
func (g *ResultGauges) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, g.registry); err != nil {
		return fmt.Errorf("writing prometheus textfile: %w", err)
	}
	return nil
}
