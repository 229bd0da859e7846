// Package domain holds the validated, strongly-typed message model for
// Tempest station telemetry, plus the derived meteorological quantities
// computed from partial observations.
package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Message is the closed set of decoded telemetry variants. Sinks dispatch on
// it with an exhaustive type switch; the six implementations in this package
// are fixed by the upstream protocol.
type Message interface {
	// Kind returns a stable label for the variant, used for metric labels
	// and sink routing keys.
	Kind() string
}

// PrecipEvent marks the onset of precipitation.
type PrecipEvent struct {
	SerialNumber    string    `json:"serial_number"`
	HubSerialNumber string    `json:"hub_sn"`
	Timestamp       time.Time `json:"timestamp"`
}

// StrikeEvent reports a single lightning strike.
type StrikeEvent struct {
	SerialNumber    string    `json:"serial_number"`
	HubSerialNumber string    `json:"hub_sn"`
	Timestamp       time.Time `json:"timestamp"`
	Distance        float64   `json:"distance_km"`
	Energy          float64   `json:"energy"`
}

// RapidWind is the high-frequency instantaneous wind sample.
type RapidWind struct {
	SerialNumber    string    `json:"serial_number"`
	HubSerialNumber string    `json:"hub_sn"`
	Timestamp       time.Time `json:"timestamp"`
	Wind            Wind      `json:"wind"`
}

// DeviceStatus is the sensor unit health report.
type DeviceStatus struct {
	SerialNumber     string        `json:"serial_number"`
	HubSerialNumber  string        `json:"hub_sn"`
	Timestamp        time.Time     `json:"timestamp"`
	Uptime           time.Duration `json:"uptime"`
	Voltage          float64       `json:"voltage"`
	FirmwareRevision int           `json:"firmware_revision"`
	RSSI             float64       `json:"rssi"`
	HubRSSI          float64       `json:"hub_rssi"`
	SensorStatus     SensorStatus  `json:"sensor_status"`
	Debug            bool          `json:"debug"`
}

// HubStatus is the hub health report.
type HubStatus struct {
	SerialNumber     string        `json:"serial_number"`
	FirmwareRevision string        `json:"firmware_revision"`
	Timestamp        time.Time     `json:"timestamp"`
	Uptime           time.Duration `json:"uptime"`
	RSSI             float64       `json:"rssi"`
	ResetFlags       ResetFlags    `json:"reset_flags"`
	Seq              int           `json:"seq"`
}

func (PrecipEvent) Kind() string  { return "precip_event" }
func (StrikeEvent) Kind() string  { return "strike_event" }
func (RapidWind) Kind() string    { return "rapid_wind" }
func (Observation) Kind() string  { return "observation" }
func (DeviceStatus) Kind() string { return "device_status" }
func (HubStatus) Kind() string    { return "hub_status" }

// Wind pairs a speed magnitude with the meteorological source direction
// (degrees, the direction the wind blows from).
type Wind struct {
	SpeedMagnitude  float64 `json:"speed_magnitude_mps"`
	SourceDirection float64 `json:"source_direction_deg"`
}

// NewWind builds a Wind value. Direction is consumed as given; no range
// normalization is applied.
func NewWind(speed, direction float64) Wind {
	return Wind{SpeedMagnitude: speed, SourceDirection: direction}
}

// ComponentDirection returns the unit direction vector as (north, east)
// components.
func (w Wind) ComponentDirection() (north, east float64) {
	rad := w.SourceDirection * math.Pi / 180
	return math.Cos(rad), math.Sin(rad)
}

// ComponentVelocity scales the unit direction vector by the speed magnitude.
func (w Wind) ComponentVelocity() (north, east float64) {
	north, east = w.ComponentDirection()
	return w.SpeedMagnitude * north, w.SpeedMagnitude * east
}

// PrecipKind classifies the type of precipitation in an observation.
type PrecipKind int

const (
	PrecipNone PrecipKind = iota
	PrecipRain
	PrecipHail
	PrecipRainHail
)

// String returns the lowercase label for the precipitation kind.
func (k PrecipKind) String() string {
	switch k {
	case PrecipNone:
		return "none"
	case PrecipRain:
		return "rain"
	case PrecipHail:
		return "hail"
	case PrecipRainHail:
		return "rain_hail"
	default:
		return fmt.Sprintf("precip_kind(%d)", int(k))
	}
}

// SensorStatus is the per-sensor failure bitfield of a device status report,
// decoded into independent flags. Undefined bits are ignored.
type SensorStatus struct {
	LightningFailure        bool `json:"lightning_failure"`
	LightningNoise          bool `json:"lightning_noise"`
	LightningDisturber      bool `json:"lightning_disturber"`
	PressureFailed          bool `json:"pressure_failed"`
	TemperatureFailed       bool `json:"temperature_failed"`
	HumidityFailed          bool `json:"humidity_failed"`
	WindFailed              bool `json:"wind_failed"`
	PrecipFailed            bool `json:"precip_failed"`
	IrradianceFailed        bool `json:"irradiance_failed"`
	PowerBoosterDepleted    bool `json:"power_booster_depleted"`
	PowerBoosterShorePower  bool `json:"power_booster_shore_power"`
}

// DecodeSensorStatus expands the wire bitfield into flags.
func DecodeSensorStatus(field uint32) SensorStatus {
	return SensorStatus{
		LightningFailure:       field&0x0001 != 0,
		LightningNoise:         field&0x0002 != 0,
		LightningDisturber:     field&0x0004 != 0,
		PressureFailed:         field&0x0008 != 0,
		TemperatureFailed:      field&0x0010 != 0,
		HumidityFailed:         field&0x0020 != 0,
		WindFailed:             field&0x0040 != 0,
		PrecipFailed:           field&0x0080 != 0,
		IrradianceFailed:       field&0x0100 != 0,
		PowerBoosterDepleted:   field&0x8000 != 0,
		PowerBoosterShorePower: field&0x10000 != 0,
	}
}

// ResetFlags records the causes of the hub's most recent reset.
type ResetFlags struct {
	Brownout       bool `json:"brownout"`
	Pin            bool `json:"pin"`
	PowerOn        bool `json:"power_on"`
	Software       bool `json:"software"`
	Watchdog       bool `json:"watchdog"`
	WindowWatchdog bool `json:"window_watchdog"`
	LowPower       bool `json:"low_power"`
	HardFault      bool `json:"hard_fault"`
}

// ParseResetFlags decodes the comma-separated label set reported by the hub.
// Any unrecognized label fails the whole parse.
func ParseResetFlags(s string) (ResetFlags, error) {
	var flags ResetFlags
	for _, label := range strings.Split(s, ",") {
		switch label {
		case "BOR":
			flags.Brownout = true
		case "PIN":
			flags.Pin = true
		case "POR":
			flags.PowerOn = true
		case "SFT":
			flags.Software = true
		case "WDG":
			flags.Watchdog = true
		case "WWD":
			flags.WindowWatchdog = true
		case "LPW":
			flags.LowPower = true
		case "HRDFLT":
			flags.HardFault = true
		default:
			return ResetFlags{}, fmt.Errorf("unrecognized reset flag label %q", label)
		}
	}
	return flags, nil
}
