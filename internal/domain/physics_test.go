package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/tempest-exporter/internal/domain"
)

// observationWith builds an Observation with the given optional readings.
func observationWith(temp, pressure, humidity *float64) domain.Observation {
	return domain.Observation{
		AirTemperature:   temp,
		StationPressure:  pressure,
		RelativeHumidity: humidity,
	}
}

func TestBarometricPressure(t *testing.T) {
	t.Run("elevation zero returns station pressure exactly", func(t *testing.T) {
		obs := observationWith(fptr(22.37), fptr(1017.57), nil)

		v, ok := obs.BarometricPressure(0)
		require.True(t, ok)
		assert.Equal(t, 1017.57, v, "ratio term must be exactly 1 at elevation 0")
	})

	t.Run("positive elevation raises sea-level pressure", func(t *testing.T) {
		obs := observationWith(fptr(15.0), fptr(900.0), nil)

		v, ok := obs.BarometricPressure(1000)
		require.True(t, ok)
		assert.Greater(t, v, 900.0)
		assert.InDelta(t, 1011.9, v, 0.5, "roughly +11 hPa per 100 m near sea level")
	})

	t.Run("unavailable without temperature", func(t *testing.T) {
		obs := observationWith(nil, fptr(1017.57), nil)
		_, ok := obs.BarometricPressure(0)
		assert.False(t, ok)
	})

	t.Run("unavailable without pressure", func(t *testing.T) {
		obs := observationWith(fptr(22.37), nil, nil)
		_, ok := obs.BarometricPressure(0)
		assert.False(t, ok)
	})
}

func TestVaporPressure(t *testing.T) {
	t.Run("saturated at 20C", func(t *testing.T) {
		obs := observationWith(fptr(20.0), nil, nil)

		v, ok := obs.VaporPressureSaturated()
		require.True(t, ok)
		assert.InDelta(t, 23.4, v, 0.1, "Arden Buck at 20 degC is about 23.4 hPa")
	})

	t.Run("actual scales by humidity", func(t *testing.T) {
		obs := observationWith(fptr(20.0), nil, fptr(50.0))

		sat, ok := obs.VaporPressureSaturated()
		require.True(t, ok)
		act, ok := obs.VaporPressureActual()
		require.True(t, ok)
		assert.InDelta(t, sat/2, act, 1e-12)
	})

	t.Run("actual unavailable without humidity", func(t *testing.T) {
		obs := observationWith(fptr(20.0), nil, nil)
		_, ok := obs.VaporPressureActual()
		assert.False(t, ok)
	})
}

func TestDewPoint(t *testing.T) {
	t.Run("tracks air temperature at full saturation", func(t *testing.T) {
		// The Arden Buck fit carries a -T/D enhancement term that the log
		// inverse does not undo, so the RH=100 round trip is exact only at
		// 0 degC and drifts up to ~0.32 degC at the warm end of the range.
		obs := observationWith(fptr(0.0), nil, fptr(100.0))
		v, ok := obs.DewPoint()
		require.True(t, ok)
		assert.InDelta(t, 0.0, v, 1e-9)

		for _, temp := range []float64{-10, 12.5, 22.37, 35} {
			obs := observationWith(fptr(temp), nil, fptr(100.0))

			v, ok := obs.DewPoint()
			require.True(t, ok)
			assert.InDelta(t, temp, v, 0.35, "round-trip through Arden Buck at RH=100, T=%v", temp)
			assert.LessOrEqual(t, v, temp, "saturation dew point never exceeds air temperature")
		}
	})

	t.Run("below air temperature when unsaturated", func(t *testing.T) {
		obs := observationWith(fptr(22.0), nil, fptr(50.0))

		v, ok := obs.DewPoint()
		require.True(t, ok)
		assert.Less(t, v, 22.0)
		assert.InDelta(t, 11.1, v, 0.2)
	})

	t.Run("unavailable without inputs", func(t *testing.T) {
		_, ok := observationWith(nil, nil, fptr(50.0)).DewPoint()
		assert.False(t, ok)
		_, ok = observationWith(fptr(22.0), nil, nil).DewPoint()
		assert.False(t, ok)
	})
}

func TestWetBulbTemperature(t *testing.T) {
	t.Run("Stull reference point", func(t *testing.T) {
		// Stull (2011) quotes Tw = 13.7 degC at T = 20 degC, RH = 50%.
		obs := observationWith(fptr(20.0), nil, fptr(50.0))

		v, ok := obs.WetBulbTemperature()
		require.True(t, ok)
		assert.InDelta(t, 13.7, v, 0.1)
	})

	t.Run("equals air temperature near saturation", func(t *testing.T) {
		obs := observationWith(fptr(25.0), nil, fptr(100.0))

		v, ok := obs.WetBulbTemperature()
		require.True(t, ok)
		assert.InDelta(t, 25.0, v, 0.5)
	})

	t.Run("unavailable without humidity", func(t *testing.T) {
		_, ok := observationWith(fptr(25.0), nil, nil).WetBulbTemperature()
		assert.False(t, ok)
	})
}

func TestApparentTemperature(t *testing.T) {
	baseObs := func() domain.Observation {
		obs := observationWith(fptr(25.0), nil, fptr(60.0))
		obs.Wind = &domain.WindObservation{
			Lull: domain.NewWind(1.0, 180),
			Avg:  domain.NewWind(2.0, 180),
			Gust: domain.NewWind(3.5, 180),
		}
		obs.Solar = &domain.SolarObservation{Illuminance: 80000, UltravioletIndex: 5, Irradiance: 600}
		return obs
	}

	t.Run("all inputs present", func(t *testing.T) {
		obs := baseObs()

		v, ok := obs.ApparentTemperature()
		require.True(t, ok)

		// Recompute the Steadman combination from the published coefficients.
		e, _ := obs.VaporPressureActual()
		want := 25.0 + 0.348*e - 0.70*2.0 + (0.70*600)/(2.0+10.0) - 4.25
		assert.InDelta(t, want, v, 1e-9)
	})

	t.Run("unavailable without wind group", func(t *testing.T) {
		obs := baseObs()
		obs.Wind = nil
		_, ok := obs.ApparentTemperature()
		assert.False(t, ok)
	})

	t.Run("unavailable without solar group", func(t *testing.T) {
		obs := baseObs()
		obs.Solar = nil
		_, ok := obs.ApparentTemperature()
		assert.False(t, ok)
	})

	t.Run("unavailable without humidity", func(t *testing.T) {
		obs := baseObs()
		obs.RelativeHumidity = nil
		_, ok := obs.ApparentTemperature()
		assert.False(t, ok)
	})
}
