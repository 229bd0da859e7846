package domain

import (
	"fmt"
	"time"

	"github.com/couchcryptid/tempest-exporter/internal/station"
)

// Decode converts one raw wire variant into its domain message. Failures are
// message-scoped: the caller keeps the raw input and decides what to do with
// it (the pipeline logs and drops). PrecipEvent, StrikeEvent, RapidWind and
// DeviceStatus are pure reshaping and cannot fail; Observation and HubStatus
// carry fields that must validate.
func Decode(raw station.RawMessage) (Message, error) {
	switch r := raw.(type) {
	case station.RawPrecipEvent:
		return PrecipEvent{
			SerialNumber:    r.SerialNumber,
			HubSerialNumber: r.HubSerialNumber,
			Timestamp:       time.Unix(int64(r.Evt[0]), 0).UTC(),
		}, nil

	case station.RawStrikeEvent:
		return StrikeEvent{
			SerialNumber:    r.SerialNumber,
			HubSerialNumber: r.HubSerialNumber,
			Timestamp:       time.Unix(int64(r.Evt[0]), 0).UTC(),
			Distance:        r.Evt[1],
			Energy:          r.Evt[2],
		}, nil

	case station.RawRapidWind:
		return RapidWind{
			SerialNumber:    r.SerialNumber,
			HubSerialNumber: r.HubSerialNumber,
			Timestamp:       time.Unix(int64(r.Ob[0]), 0).UTC(),
			Wind:            NewWind(r.Ob[1], r.Ob[2]),
		}, nil

	case station.RawObservation:
		return decodeObservation(r)

	case station.RawDeviceStatus:
		return DeviceStatus{
			SerialNumber:     r.SerialNumber,
			HubSerialNumber:  r.HubSerialNumber,
			Timestamp:        time.Unix(r.Timestamp, 0).UTC(),
			Uptime:           time.Duration(r.Uptime) * time.Second,
			Voltage:          r.Voltage,
			FirmwareRevision: r.FirmwareRevision,
			RSSI:             r.RSSI,
			HubRSSI:          r.HubRSSI,
			SensorStatus:     DecodeSensorStatus(r.SensorStatus),
			Debug:            r.Debug == 1,
		}, nil

	case station.RawHubStatus:
		flags, err := ParseResetFlags(r.ResetFlags)
		if err != nil {
			return nil, fmt.Errorf("decode hub status: %w", err)
		}
		return HubStatus{
			SerialNumber:     r.SerialNumber,
			FirmwareRevision: r.FirmwareRevision,
			Timestamp:        time.Unix(r.Timestamp, 0).UTC(),
			Uptime:           time.Duration(r.Uptime) * time.Second,
			RSSI:             r.RSSI,
			ResetFlags:       flags,
			Seq:              r.Seq,
		}, nil

	default:
		return nil, fmt.Errorf("decode: unsupported raw message %T", raw)
	}
}

func decodeObservation(r station.RawObservation) (Message, error) {
	row := r.Row()
	slot := func(i int) (float64, bool) {
		if row[i] == nil {
			return 0, false
		}
		return *row[i], true
	}

	ts, ok := slot(station.ObsSlotTimestamp)
	if !ok {
		return nil, fmt.Errorf("decode observation: missing timestamp")
	}
	volts, ok := slot(station.ObsSlotBatteryVolts)
	if !ok {
		return nil, fmt.Errorf("decode observation: missing battery voltage")
	}
	intervalMin, ok := slot(station.ObsSlotReportInterval)
	if !ok {
		return nil, fmt.Errorf("decode observation: missing report interval")
	}

	precip, err := decodePrecipGroup(slot)
	if err != nil {
		return nil, err
	}

	return Observation{
		SerialNumber:     r.SerialNumber,
		HubSerialNumber:  r.HubSerialNumber,
		FirmwareRevision: r.FirmwareRevision,
		Timestamp:        time.Unix(int64(ts), 0).UTC(),

		Wind:             decodeWindGroup(slot),
		StationPressure:  optional(slot(station.ObsSlotStationPressure)),
		AirTemperature:   optional(slot(station.ObsSlotAirTemperature)),
		RelativeHumidity: optional(slot(station.ObsSlotHumidity)),
		Solar:            decodeSolarGroup(slot),
		Precip:           precip,
		Lightning:        decodeLightningGroup(slot),

		BatteryVolts:   volts,
		ReportInterval: time.Duration(intervalMin) * time.Minute,
	}, nil
}

// slotFn reads one observation slot, reporting absence.
type slotFn func(i int) (float64, bool)

// decodeWindGroup builds the wind group, or nil unless every member slot is
// present.
func decodeWindGroup(slot slotFn) *WindObservation {
	lull, ok1 := slot(station.ObsSlotWindLull)
	avg, ok2 := slot(station.ObsSlotWindAvg)
	gust, ok3 := slot(station.ObsSlotWindGust)
	dir, ok4 := slot(station.ObsSlotWindDirection)
	interval, ok5 := slot(station.ObsSlotWindInterval)
	if !(ok1 && ok2 && ok3 && ok4 && ok5) {
		return nil
	}
	return &WindObservation{
		Lull:     NewWind(lull, dir),
		Avg:      NewWind(avg, dir),
		Gust:     NewWind(gust, dir),
		Interval: time.Duration(interval) * time.Second,
	}
}

func decodeSolarGroup(slot slotFn) *SolarObservation {
	lux, ok1 := slot(station.ObsSlotIlluminance)
	uv, ok2 := slot(station.ObsSlotUVIndex)
	irr, ok3 := slot(station.ObsSlotIrradiance)
	if !(ok1 && ok2 && ok3) {
		return nil
	}
	return &SolarObservation{Illuminance: lux, UltravioletIndex: uv, Irradiance: irr}
}

// decodePrecipGroup builds the precipitation group. An absent slot omits the
// group; a present but unrecognized kind code fails the whole message.
func decodePrecipGroup(slot slotFn) (*PrecipObservation, error) {
	qty, ok1 := slot(station.ObsSlotPrecipQuantity)
	code, ok2 := slot(station.ObsSlotPrecipKind)
	if !(ok1 && ok2) {
		return nil, nil
	}
	var kind PrecipKind
	switch int(code) {
	case 0:
		kind = PrecipNone
	case 1:
		kind = PrecipRain
	case 2:
		kind = PrecipHail
	case 3:
		kind = PrecipRainHail
	default:
		return nil, fmt.Errorf("decode observation: unrecognized precipitation kind %d", int(code))
	}
	return &PrecipObservation{QuantityLastMinute: qty, Kind: kind}, nil
}

func decodeLightningGroup(slot slotFn) *LightningObservation {
	dist, ok1 := slot(station.ObsSlotStrikeDistance)
	count, ok2 := slot(station.ObsSlotStrikeCount)
	if !(ok1 && ok2) {
		return nil
	}
	return &LightningObservation{AverageDistance: dist, Count: int64(count)}
}

func optional(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}
