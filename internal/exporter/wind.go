package exporter

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/tempest-exporter/internal/domain"
	"github.com/couchcryptid/tempest-exporter/internal/perishable"
)

// windGauges is the four-gauge group exported for each wind reading: speed,
// source direction, and the north/east velocity components.
type windGauges struct {
	speedMagnitude         prometheus.Gauge
	sourceDirection        prometheus.Gauge
	componentVelocityNorth prometheus.Gauge
	componentVelocityEast  prometheus.Gauge
}

func newWindGauges(name, descr string) *perishable.Value[windGauges] {
	return perishable.New(windGauges{
		speedMagnitude: prometheus.NewGauge(stationOpts(
			name+"_speed_magnitude_m_per_s",
			descr+" speed magnitude (m/s)",
		)),
		sourceDirection: prometheus.NewGauge(stationOpts(
			name+"_source_direction_deg",
			descr+" source direction (deg)",
		)),
		componentVelocityNorth: prometheus.NewGauge(stationOpts(
			name+"_component_velocity_north_m_per_s",
			descr+" component velocity North (m/s)",
		)),
		componentVelocityEast: prometheus.NewGauge(stationOpts(
			name+"_component_velocity_east_m_per_s",
			descr+" component velocity East (m/s)",
		)),
	})
}

func (w *windGauges) set(wind domain.Wind) {
	w.speedMagnitude.Set(wind.SpeedMagnitude)
	w.sourceDirection.Set(wind.SourceDirection)
	north, east := wind.ComponentVelocity()
	w.componentVelocityNorth.Set(north)
	w.componentVelocityEast.Set(east)
}

func (w *windGauges) describe(ch chan<- *prometheus.Desc) {
	w.speedMagnitude.Describe(ch)
	w.sourceDirection.Describe(ch)
	w.componentVelocityNorth.Describe(ch)
	w.componentVelocityEast.Describe(ch)
}

func (w *windGauges) collect(ch chan<- prometheus.Metric) {
	w.speedMagnitude.Collect(ch)
	w.sourceDirection.Collect(ch)
	w.componentVelocityNorth.Collect(ch)
	w.componentVelocityEast.Collect(ch)
}
