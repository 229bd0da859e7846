// Package station models the raw UDP broadcast protocol of a Tempest
// weather station: six message variants discriminated by a JSON "type" tag,
// parsed into loosely-typed records prior to domain validation.
package station

import (
	"encoding/json"
	"fmt"
)

// Wire discriminator values for the "type" field.
const (
	TypePrecipEvent  = "evt_precip"
	TypeStrikeEvent  = "evt_strike"
	TypeRapidWind    = "rapid_wind"
	TypeObservation  = "obs_st"
	TypeDeviceStatus = "device_status"
	TypeHubStatus    = "hub_status"
)

// Slot indices of the obs_st observation row. The protocol fixes the order;
// this table is the only place the positions appear.
const (
	ObsSlotTimestamp       = 0  // unix seconds
	ObsSlotWindLull        = 1  // m/s
	ObsSlotWindAvg         = 2  // m/s
	ObsSlotWindGust        = 3  // m/s
	ObsSlotWindDirection   = 4  // degrees
	ObsSlotWindInterval    = 5  // seconds
	ObsSlotStationPressure = 6  // hPa
	ObsSlotAirTemperature  = 7  // °C
	ObsSlotHumidity        = 8  // %
	ObsSlotIlluminance     = 9  // lux
	ObsSlotUVIndex         = 10 // index
	ObsSlotIrradiance      = 11 // W/m²
	ObsSlotPrecipQuantity  = 12 // mm over the last minute
	ObsSlotPrecipKind      = 13 // 0 none, 1 rain, 2 hail, 3 rain+hail
	ObsSlotStrikeDistance  = 14 // km
	ObsSlotStrikeCount     = 15 // count
	ObsSlotBatteryVolts    = 16 // V
	ObsSlotReportInterval  = 17 // minutes

	ObsSlotCount = 18
)

// RawMessage is the closed set of wire variants. Implementations are the six
// Raw* structs in this package and nothing else.
type RawMessage interface {
	rawMessage()
}

// RawPrecipEvent reports the onset of precipitation.
// Evt holds [timestamp].
type RawPrecipEvent struct {
	SerialNumber    string    `json:"serial_number"`
	HubSerialNumber string    `json:"hub_sn"`
	Evt             []float64 `json:"evt"`
}

// RawStrikeEvent reports a lightning strike.
// Evt holds [timestamp, distance_km, energy].
type RawStrikeEvent struct {
	SerialNumber    string    `json:"serial_number"`
	HubSerialNumber string    `json:"hub_sn"`
	Evt             []float64 `json:"evt"`
}

// RawRapidWind is the high-frequency instantaneous wind sample.
// Ob holds [timestamp, speed_mps, direction_deg].
type RawRapidWind struct {
	SerialNumber    string    `json:"serial_number"`
	HubSerialNumber string    `json:"hub_sn"`
	Ob              []float64 `json:"ob"`
}

// RawObservation is the periodic full sensor report. Obs carries a single
// row of ObsSlotCount optional slots; a JSON null marks an absent reading.
type RawObservation struct {
	SerialNumber     string       `json:"serial_number"`
	HubSerialNumber  string       `json:"hub_sn"`
	Obs              [][]*float64 `json:"obs"`
	FirmwareRevision int          `json:"firmware_revision"`
}

// Row returns the single observation row.
func (r RawObservation) Row() []*float64 {
	return r.Obs[0]
}

// RawDeviceStatus is the periodic sensor-unit health report.
type RawDeviceStatus struct {
	SerialNumber     string  `json:"serial_number"`
	HubSerialNumber  string  `json:"hub_sn"`
	Timestamp        int64   `json:"timestamp"`
	Uptime           int64   `json:"uptime"`
	Voltage          float64 `json:"voltage"`
	FirmwareRevision int     `json:"firmware_revision"`
	RSSI             float64 `json:"rssi"`
	HubRSSI          float64 `json:"hub_rssi"`
	SensorStatus     uint32  `json:"sensor_status"`
	Debug            int     `json:"debug"`
}

// RawHubStatus is the periodic hub health report.
type RawHubStatus struct {
	SerialNumber     string  `json:"serial_number"`
	FirmwareRevision string  `json:"firmware_revision"`
	Uptime           int64   `json:"uptime"`
	RSSI             float64 `json:"rssi"`
	Timestamp        int64   `json:"timestamp"`
	ResetFlags       string  `json:"reset_flags"`
	Seq              int     `json:"seq"`
	RadioStats       []int   `json:"radio_stats"`
}

func (RawPrecipEvent) rawMessage()  {}
func (RawStrikeEvent) rawMessage()  {}
func (RawRapidWind) rawMessage()    {}
func (RawObservation) rawMessage()  {}
func (RawDeviceStatus) rawMessage() {}
func (RawHubStatus) rawMessage()    {}

// Parse deserializes one UDP datagram into the matching raw variant. It
// validates only wire-level shape (discriminator, tuple arity, row width);
// domain validation happens in the decoder.
func Parse(data []byte) (RawMessage, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse raw message: %w", err)
	}

	switch probe.Type {
	case TypePrecipEvent:
		var m RawPrecipEvent
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse %s: %w", probe.Type, err)
		}
		if len(m.Evt) != 1 {
			return nil, fmt.Errorf("parse %s: evt has %d elements, want 1", probe.Type, len(m.Evt))
		}
		return m, nil

	case TypeStrikeEvent:
		var m RawStrikeEvent
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse %s: %w", probe.Type, err)
		}
		if len(m.Evt) != 3 {
			return nil, fmt.Errorf("parse %s: evt has %d elements, want 3", probe.Type, len(m.Evt))
		}
		return m, nil

	case TypeRapidWind:
		var m RawRapidWind
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse %s: %w", probe.Type, err)
		}
		if len(m.Ob) != 3 {
			return nil, fmt.Errorf("parse %s: ob has %d elements, want 3", probe.Type, len(m.Ob))
		}
		return m, nil

	case TypeObservation:
		var m RawObservation
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse %s: %w", probe.Type, err)
		}
		if len(m.Obs) != 1 {
			return nil, fmt.Errorf("parse %s: obs has %d rows, want 1", probe.Type, len(m.Obs))
		}
		// Newer firmware may append slots; trailing extras are ignored.
		if len(m.Obs[0]) < ObsSlotCount {
			return nil, fmt.Errorf("parse %s: obs row has %d slots, want at least %d", probe.Type, len(m.Obs[0]), ObsSlotCount)
		}
		return m, nil

	case TypeDeviceStatus:
		var m RawDeviceStatus
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse %s: %w", probe.Type, err)
		}
		return m, nil

	case TypeHubStatus:
		var m RawHubStatus
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse %s: %w", probe.Type, err)
		}
		return m, nil

	default:
		return nil, fmt.Errorf("parse raw message: unknown type %q", probe.Type)
	}
}
