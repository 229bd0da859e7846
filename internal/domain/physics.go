package domain

import "math"

// Atmospheric constants for the hypsometric barometric pressure reduction.
const (
	lapseRate    = -0.0065  // temperature lapse rate λ (K/m)
	gasConstantD = 287.0    // specific gas constant of dry air (J/(kg·K))
	gravity      = 9.80665  // gravitational acceleration (m/s²)
	zeroCKelvin  = 273.15

	gravityOverRdLapse = -gravity / (gasConstantD * lapseRate)
)

// Arden Buck best-fit constants for saturated vapor pressure over water.
const (
	ardenBuckA = 6.1121
	ardenBuckB = 18.678
	ardenBuckC = 257.14
	ardenBuckD = 234.5
)

// Stull best-fit constants for wet-bulb temperature.
const (
	stullA = 0.151977
	stullB = 8.313659
	stullC = -1.676311
	stullD = 0.00391838
	stullE = 0.023101
	stullF = -4.686035
)

// Steadman constants for radiation-incorporating apparent temperature.
const (
	steadmanCE  = 0.348
	steadmanCWS = -0.70
	steadmanCQ  = 0.70
	steadmanOWS = 10.0
	steadmanB   = -4.25
)

// The derived quantities below are pure functions of the observation. Each
// returns ok=false as soon as any required input is absent; no value is ever
// fabricated for a missing reading.

// BarometricPressure reduces station pressure to mean sea level (hPa) via
// the hypsometric formula, given the station elevation in meters. At
// elevation 0 the result equals the station pressure exactly.
func (o Observation) BarometricPressure(stationElevation float64) (float64, bool) {
	if o.AirTemperature == nil || o.StationPressure == nil {
		return 0, false
	}
	tKelvin := *o.AirTemperature + zeroCKelvin
	ratio := math.Pow(
		1+(lapseRate*stationElevation)/(tKelvin-lapseRate*stationElevation),
		-gravityOverRdLapse,
	)
	return *o.StationPressure * ratio, true
}

// VaporPressureSaturated computes the saturated vapor pressure (hPa) from
// air temperature via the Arden Buck formula.
func (o Observation) VaporPressureSaturated() (float64, bool) {
	if o.AirTemperature == nil {
		return 0, false
	}
	t := *o.AirTemperature
	return ardenBuckA * math.Exp((ardenBuckB-t/ardenBuckD)*(t/(ardenBuckC+t))), true
}

// VaporPressureActual scales the saturated vapor pressure by relative
// humidity.
func (o Observation) VaporPressureActual() (float64, bool) {
	ps, ok := o.VaporPressureSaturated()
	if !ok || o.RelativeHumidity == nil {
		return 0, false
	}
	return ps * (*o.RelativeHumidity / 100), true
}

// DewPoint inverts the Arden Buck formula over the actual vapor pressure.
// At 100% relative humidity it returns the air temperature.
func (o Observation) DewPoint() (float64, bool) {
	pa, ok := o.VaporPressureActual()
	if !ok {
		return 0, false
	}
	ln := math.Log(pa / ardenBuckA)
	return ardenBuckC * ln / (ardenBuckB - ln), true
}

// WetBulbTemperature computes the Stull empirical wet-bulb approximation
// from air temperature and relative humidity.
func (o Observation) WetBulbTemperature() (float64, bool) {
	if o.AirTemperature == nil || o.RelativeHumidity == nil {
		return 0, false
	}
	t := *o.AirTemperature
	rh := *o.RelativeHumidity
	wb := t*math.Atan(stullA*math.Sqrt(rh+stullB)) +
		math.Atan(t+rh) - math.Atan(rh+stullC) +
		stullD*math.Pow(rh, 1.5)*math.Atan(stullE*rh) +
		stullF
	return wb, true
}

// ApparentTemperature computes Steadman's radiation-incorporating apparent
// temperature from air temperature, vapor pressure, average wind speed and
// solar irradiance.
func (o Observation) ApparentTemperature() (float64, bool) {
	e, ok := o.VaporPressureActual()
	if !ok || o.AirTemperature == nil || o.Wind == nil || o.Solar == nil {
		return 0, false
	}
	ta := *o.AirTemperature
	ws := o.Wind.Avg.SpeedMagnitude
	q := o.Solar.Irradiance
	return ta + steadmanCE*e + steadmanCWS*ws + (steadmanCQ*q)/(ws+steadmanOWS) + steadmanB, true
}
