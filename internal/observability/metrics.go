package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and gauges for the ingest pipeline
// itself (the station readings are exported separately by the exporter sink).
type Metrics struct {
	PacketsReceived prometheus.Counter
	ParseErrors     prometheus.Counter
	DecodeErrors    prometheus.Counter
	MessagesDecoded *prometheus.CounterVec // label: type
	PublishDrops    prometheus.Counter
	PipelineRunning prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PacketsReceived,
		m.ParseErrors,
		m.DecodeErrors,
		m.MessagesDecoded,
		m.PublishDrops,
		m.PipelineRunning,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PacketsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tempest",
			Subsystem: "exporter",
			Name:      "packets_received_total",
			Help:      "Total UDP datagrams received from the station.",
		}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tempest",
			Subsystem: "exporter",
			Name:      "parse_errors_total",
			Help:      "Total datagrams dropped because the wire format did not parse.",
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tempest",
			Subsystem: "exporter",
			Name:      "decode_errors_total",
			Help:      "Total raw messages dropped because domain decoding failed.",
		}),
		MessagesDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tempest",
			Subsystem: "exporter",
			Name:      "messages_decoded_total",
			Help:      "Total successfully decoded messages by type.",
		}, []string{"type"}),
		PublishDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tempest",
			Subsystem: "exporter",
			Name:      "publish_drops_total",
			Help:      "Total messages dropped by sinks under backpressure.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tempest",
			Subsystem: "exporter",
			Name:      "pipeline_running",
			Help:      "1 when the ingest pipeline is active, 0 when shut down.",
		}),
	}
}
