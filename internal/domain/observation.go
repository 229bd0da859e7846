package domain

import "time"

// Observation is the periodic full sensor report. Timestamp, battery volts
// and report interval are always present; every other reading is an
// independently optional group or scalar — a group exists only if all of its
// member slots decoded.
type Observation struct {
	SerialNumber     string    `json:"serial_number"`
	HubSerialNumber  string    `json:"hub_sn"`
	FirmwareRevision int       `json:"firmware_revision"`
	Timestamp        time.Time `json:"timestamp"`

	Wind             *WindObservation      `json:"wind,omitempty"`
	StationPressure  *float64              `json:"station_pressure_hpa,omitempty"`
	AirTemperature   *float64              `json:"air_temperature_c,omitempty"`
	RelativeHumidity *float64              `json:"relative_humidity_pct,omitempty"`
	Solar            *SolarObservation     `json:"solar,omitempty"`
	Precip           *PrecipObservation    `json:"precip,omitempty"`
	Lightning        *LightningObservation `json:"lightning,omitempty"`

	BatteryVolts   float64       `json:"battery_volts"`
	ReportInterval time.Duration `json:"report_interval"`
}

// WindObservation is the wind group of an observation. All three samples
// share the one reported direction.
type WindObservation struct {
	Lull     Wind          `json:"lull"`
	Avg      Wind          `json:"avg"`
	Gust     Wind          `json:"gust"`
	Interval time.Duration `json:"interval"`
}

// SolarObservation is the solar radiation group of an observation.
type SolarObservation struct {
	Illuminance      float64 `json:"illuminance_lux"`
	UltravioletIndex float64 `json:"uv_index"`
	Irradiance       float64 `json:"irradiance_w_per_m2"`
}

// PrecipObservation is the precipitation group of an observation.
type PrecipObservation struct {
	QuantityLastMinute float64    `json:"quantity_last_minute_mm"`
	Kind               PrecipKind `json:"kind"`
}

// LightningObservation is the lightning group of an observation.
type LightningObservation struct {
	AverageDistance float64 `json:"average_distance_km"`
	Count           int64   `json:"count"`
}
