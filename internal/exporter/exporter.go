// Package exporter exposes decoded station telemetry as Prometheus metrics.
// Every station gauge is wrapped in a perishable cell: an ingest update
// freshens the cell, and a scrape only sees cells still inside their
// validity window. A station that goes quiet drops out of the scrape instead
// of flatlining at its last reading.
package exporter

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/tempest-exporter/internal/domain"
	"github.com/couchcryptid/tempest-exporter/internal/perishable"
)

// scalarGauge wraps the gauge in a struct so the *scalarGauge handed back by
// Freshen and Fresh carries the promoted method set (a pointer to an
// interface has none).
type scalarGauge struct {
	prometheus.Gauge
}

type gaugeCell = perishable.Value[scalarGauge]

// Exporter is a prometheus.Collector fed by the ingest pipeline. It
// implements pipeline.Sink.
type Exporter struct {
	elevation float64
	ttl       time.Duration
	logger    *slog.Logger

	messagesReceived *prometheus.CounterVec

	instantWind *perishable.Value[windGauges]

	obsTimestamp       *gaugeCell
	obsWindLull        *perishable.Value[windGauges]
	obsWindAvg         *perishable.Value[windGauges]
	obsWindGust        *perishable.Value[windGauges]
	obsStationPressure *gaugeCell
	obsBarometric      *gaugeCell
	obsTemperature     *gaugeCell
	obsHumidity        *gaugeCell
	obsDewPoint        *gaugeCell
	obsWetBulb         *gaugeCell
	obsApparentTemp    *gaugeCell
	obsIlluminance     *gaugeCell
	obsUVIndex         *gaugeCell
	obsIrradiance      *gaugeCell
	obsRainLastMinute  *gaugeCell
	obsBatteryVolts    *gaugeCell
	strikeDistance     *gaugeCell
	lightningCount     *gaugeCell
	lightningAvgDistKm *gaugeCell
}

func stationOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: "tempest",
		Subsystem: "station",
		Name:      name,
		Help:      help,
	}
}

func newCell(name, help string) *gaugeCell {
	return perishable.New(scalarGauge{prometheus.NewGauge(stationOpts(name, help))})
}

// New creates the exporter sink. Elevation feeds the barometric reduction;
// ttl is the validity window applied on every update.
func New(elevation float64, ttl time.Duration, logger *slog.Logger) *Exporter {
	return &Exporter{
		elevation: elevation,
		ttl:       ttl,
		logger:    logger,

		messagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tempest",
			Subsystem: "exporter",
			Name:      "messages_received_total",
			Help:      "Decoded station messages handled by the exporter, by type.",
		}, []string{"type"}),

		instantWind: newWindGauges("instant_wind", "Instantaneous wind"),

		obsTimestamp:       newCell("observation_timestamp_unix_sec", "Current observation Unix timestamp (s)"),
		obsWindLull:        newWindGauges("observation_wind_lull", "3-minute wind lull"),
		obsWindAvg:         newWindGauges("observation_wind_avg", "3-minute wind average"),
		obsWindGust:        newWindGauges("observation_wind_gust", "3-minute wind gust"),
		obsStationPressure: newCell("observation_station_pressure_hpa", "Current station pressure (hPa)"),
		obsBarometric:      newCell("observation_barometric_pressure_hpa", "Current barometric pressure, mean sea level (hPa)"),
		obsTemperature:     newCell("observation_temperature_deg_c", "Current temperature (deg C)"),
		obsHumidity:        newCell("observation_relative_humidity_pct", "Current relative humidity (%)"),
		obsDewPoint:        newCell("observation_dew_point_deg_c", "Current dew point (deg C)"),
		obsWetBulb:         newCell("observation_wet_bulb_temperature_deg_c", "Current wet-bulb temperature (deg C)"),
		obsApparentTemp:    newCell("observation_apparent_temperature_deg_c", "Current apparent temperature (deg C)"),
		obsIlluminance:     newCell("observation_illuminance_lux", "Current illuminance (lux)"),
		obsUVIndex:         newCell("observation_uv_index", "Current ultraviolet index"),
		obsIrradiance:      newCell("observation_irradiance_w_per_m2", "Current solar irradiance (W/m^2)"),
		obsRainLastMinute:  newCell("observation_previous_minute_rain_mm", "Rain over the previous minute (mm)"),
		obsBatteryVolts:    newCell("observation_battery_volts", "Sensor battery voltage (V)"),
		strikeDistance:     newCell("strike_event_distance_km", "Distance of the last lightning strike (km)"),
		lightningCount:     newCell("observation_lightning_count", "Lightning strikes in the report interval"),
		lightningAvgDistKm: newCell("observation_lightning_average_distance_km", "Average lightning distance (km)"),
	}
}

// HandleMessage updates the metric cells touched by one decoded message.
func (e *Exporter) HandleMessage(_ context.Context, msg domain.Message) {
	e.messagesReceived.WithLabelValues(msg.Kind()).Inc()

	switch m := msg.(type) {
	case domain.PrecipEvent, domain.DeviceStatus, domain.HubStatus:
		// Counted only.
	case domain.StrikeEvent:
		e.strikeDistance.Freshen(e.ttl).Set(m.Distance)
	case domain.RapidWind:
		e.instantWind.Freshen(e.ttl).set(m.Wind)
	case domain.Observation:
		e.handleObservation(m)
	}
}

func (e *Exporter) handleObservation(obs domain.Observation) {
	e.obsTimestamp.Freshen(e.ttl).Set(float64(obs.Timestamp.Unix()))
	e.obsBatteryVolts.Freshen(e.ttl).Set(obs.BatteryVolts)

	if obs.Wind != nil {
		e.obsWindLull.Freshen(e.ttl).set(obs.Wind.Lull)
		e.obsWindAvg.Freshen(e.ttl).set(obs.Wind.Avg)
		e.obsWindGust.Freshen(e.ttl).set(obs.Wind.Gust)
	}
	if obs.StationPressure != nil {
		e.obsStationPressure.Freshen(e.ttl).Set(*obs.StationPressure)
	}
	if obs.AirTemperature != nil {
		e.obsTemperature.Freshen(e.ttl).Set(*obs.AirTemperature)
	}
	if obs.RelativeHumidity != nil {
		e.obsHumidity.Freshen(e.ttl).Set(*obs.RelativeHumidity)
	}
	if obs.Solar != nil {
		e.obsIlluminance.Freshen(e.ttl).Set(obs.Solar.Illuminance)
		e.obsUVIndex.Freshen(e.ttl).Set(obs.Solar.UltravioletIndex)
		e.obsIrradiance.Freshen(e.ttl).Set(obs.Solar.Irradiance)
	}
	if obs.Precip != nil {
		e.obsRainLastMinute.Freshen(e.ttl).Set(obs.Precip.QuantityLastMinute)
	}
	if obs.Lightning != nil {
		e.lightningCount.Freshen(e.ttl).Set(float64(obs.Lightning.Count))
		e.lightningAvgDistKm.Freshen(e.ttl).Set(obs.Lightning.AverageDistance)
	}

	// Derived quantities export only when their inputs were present.
	if v, ok := obs.BarometricPressure(e.elevation); ok {
		e.obsBarometric.Freshen(e.ttl).Set(v)
	}
	if v, ok := obs.DewPoint(); ok {
		e.obsDewPoint.Freshen(e.ttl).Set(v)
	}
	if v, ok := obs.WetBulbTemperature(); ok {
		e.obsWetBulb.Freshen(e.ttl).Set(v)
	}
	if v, ok := obs.ApparentTemperature(); ok {
		e.obsApparentTemp.Freshen(e.ttl).Set(v)
	}
}

// Describe implements prometheus.Collector. All metrics are described
// regardless of freshness; freshness gates Collect only.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	e.messagesReceived.Describe(ch)
	for _, w := range e.windCells() {
		w.Peek().describe(ch)
	}
	for _, c := range e.scalarCells() {
		c.Peek().Describe(ch)
	}
}

// Collect implements prometheus.Collector. Only fresh cells are emitted, so
// stale readings disappear from the scrape.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	e.messagesReceived.Collect(ch)
	for _, w := range e.windCells() {
		if g, ok := w.Fresh(); ok {
			g.collect(ch)
		}
	}
	for _, c := range e.scalarCells() {
		if g, ok := c.Fresh(); ok {
			g.Collect(ch)
		}
	}
}

func (e *Exporter) windCells() []*perishable.Value[windGauges] {
	return []*perishable.Value[windGauges]{
		e.instantWind, e.obsWindLull, e.obsWindAvg, e.obsWindGust,
	}
}

func (e *Exporter) scalarCells() []*gaugeCell {
	return []*gaugeCell{
		e.obsTimestamp, e.obsStationPressure, e.obsBarometric,
		e.obsTemperature, e.obsHumidity, e.obsDewPoint, e.obsWetBulb,
		e.obsApparentTemp, e.obsIlluminance, e.obsUVIndex, e.obsIrradiance,
		e.obsRainLastMinute, e.obsBatteryVolts, e.strikeDistance,
		e.lightningCount, e.lightningAvgDistKm,
	}
}
