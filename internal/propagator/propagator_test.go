package propagator

import (
	"math"
	"testing"
	"time"

	"github.com/banshee-data/orbitwatch/orbitsim"
	"github.com/stretchr/testify/assert"
)

func TestCircularPropagator_Deterministic(t *testing.T) {
	p := NewCircularPropagator([]OrbitalPlane{
		{SatID: 1, AltitudeKM: 500, Inclination: 0.9, RAAN: 0.2, PhaseOffset: 0.1},
	})

	a := p.PositionAt(1, 90*time.Second)
	b := p.PositionAt(1, 90*time.Second)
	assert.Equal(t, a, b, "same elapsed duration must yield the same position")
}

func TestCircularPropagator_AltitudeIsConstant(t *testing.T) {
	p := NewCircularPropagator([]OrbitalPlane{
		{SatID: 1, AltitudeKM: 550, Inclination: 0.7, RAAN: 1.1, PhaseOffset: 0},
	})

	for _, elapsed := range []time.Duration{0, 100 * time.Second, 3000 * time.Second, 5400 * time.Second} {
		posn := p.PositionAt(1, elapsed)
		alt := AltitudeKM(posn)
		assert.InDelta(t, 550, alt, 1e-6, "circular orbit altitude should not drift at elapsed=%s", elapsed)
	}
}

func TestCircularPropagator_UnknownSatelliteReturnsZeroValue(t *testing.T) {
	p := NewCircularPropagator(nil)
	posn := p.PositionAt(99, time.Second)
	assert.Equal(t, orbitsim.ECIPosn{}, posn)
}

func TestCircularPropagator_PhaseOffsetSeparatesSatellites(t *testing.T) {
	p := NewCircularPropagator([]OrbitalPlane{
		{SatID: 1, AltitudeKM: 500, Inclination: 0, RAAN: 0, PhaseOffset: 0},
		{SatID: 2, AltitudeKM: 500, Inclination: 0, RAAN: 0, PhaseOffset: math.Pi},
	})

	p1 := p.PositionAt(1, 0)
	p2 := p.PositionAt(2, 0)
	assert.NotEqual(t, p1, p2, "satellites with different phase offsets start at different positions")
}

func TestCircularPropagator_CompletesOneRevolution(t *testing.T) {
	p := NewCircularPropagator([]OrbitalPlane{
		{SatID: 1, AltitudeKM: 500, Inclination: 0.3, RAAN: 0.4, PhaseOffset: 0},
	})
	plane := p.planes[1]
	period := 2 * math.Pi / plane.meanMotion()

	start := p.PositionAt(1, 0)
	after := p.PositionAt(1, time.Duration(period*float64(time.Second)))

	assert.InDelta(t, start.X, after.X, 1e-3)
	assert.InDelta(t, start.Y, after.Y, 1e-3)
	assert.InDelta(t, start.Z, after.Z, 1e-3)
}
