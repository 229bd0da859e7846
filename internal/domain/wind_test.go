package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/tempest-exporter/internal/domain"
)

func TestWind_ComponentDirection(t *testing.T) {
	tests := []struct {
		name      string
		direction float64
		north     float64
		east      float64
	}{
		{"north", 0, 1, 0},
		{"east", 90, 0, 1},
		{"south", 180, -1, 0},
		{"west", 270, 0, -1},
		{"northeast", 45, 0.7071067811865476, 0.7071067811865476},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			north, east := domain.NewWind(5.0, tt.direction).ComponentDirection()
			assert.InDelta(t, tt.north, north, 1e-12)
			assert.InDelta(t, tt.east, east, 1e-12)
		})
	}
}

func TestWind_ComponentVelocity(t *testing.T) {
	north, east := domain.NewWind(5.0, 90).ComponentVelocity()
	assert.InDelta(t, 0, north, 1e-12)
	assert.InDelta(t, 5.0, east, 1e-12)

	north, east = domain.NewWind(3.0, 0).ComponentVelocity()
	assert.InDelta(t, 3.0, north, 1e-12)
	assert.InDelta(t, 0, east, 1e-12)
}

func TestWind_DirectionConsumedAsGiven(t *testing.T) {
	// No range normalization: 360 and 0 give the same vector, 450 wraps
	// numerically through cos/sin.
	n0, e0 := domain.NewWind(1, 0).ComponentDirection()
	n360, e360 := domain.NewWind(1, 360).ComponentDirection()
	assert.InDelta(t, n0, n360, 1e-9)
	assert.InDelta(t, e0, e360, 1e-9)
}
