// Package propagator supplies the orbital-propagation collaborator
// orbitsim.Propagator needs: per-satellite ECI positions as a pure function
// of elapsed simulation time. Spec treats propagation as an external
// black box; CircularPropagator is the simplest faithful stand-in a
// standalone repository can ship, grounded on the mean-motion formula used
// by the reference Keplerian propagator.
package propagator

import (
	"math"
	"time"

	"github.com/banshee-data/orbitwatch/orbitsim"
)

// EarthMu is the standard gravitational parameter for Earth, km^3/s^2.
const EarthMu = 398600.4418

// OrbitalPlane describes one satellite's circular orbit.
type OrbitalPlane struct {
	SatID       orbitsim.SatelliteID
	AltitudeKM  float64 // height above mean Earth radius
	Inclination float64 // radians
	RAAN        float64 // right ascension of ascending node, radians
	PhaseOffset float64 // initial argument of latitude, radians
}

func (p OrbitalPlane) semiMajorAxis() float64 {
	return orbitsim.EarthRadiusKM + p.AltitudeKM
}

// meanMotion returns the circular-orbit angular rate in rad/s.
func (p OrbitalPlane) meanMotion() float64 {
	a := p.semiMajorAxis()
	return math.Sqrt(EarthMu / (a * a * a))
}

// positionAt returns the ECI position of a circular orbit after elapsed
// time, obtained by rotating the argument of latitude at the plane's mean
// motion and projecting through inclination and RAAN.
func (p OrbitalPlane) positionAt(elapsed time.Duration) orbitsim.ECIPosn {
	u := p.PhaseOffset + p.meanMotion()*elapsed.Seconds()
	r := p.semiMajorAxis()

	// Position in the orbital plane (x' along ascending node direction).
	xOrbit := r * math.Cos(u)
	yOrbit := r * math.Sin(u)

	cosI, sinI := math.Cos(p.Inclination), math.Sin(p.Inclination)
	cosO, sinO := math.Cos(p.RAAN), math.Sin(p.RAAN)

	x := xOrbit*cosO - yOrbit*sinO*cosI
	y := xOrbit*sinO + yOrbit*cosO*cosI
	z := yOrbit * sinI

	return orbitsim.ECIPosn{X: x, Y: y, Z: z}
}

// CircularPropagator assigns each satellite a fixed circular orbit computed
// at construction time. PositionAt is a pure function of elapsed duration —
// it holds no integration state, so it can be evaluated for any step number
// (including one already seen) without needing to replay prior steps. That
// purity is what lets the simulator stay true to spec's "no persistence of
// simulation state across runs" non-goal while still being runnable
// end-to-end: nothing here is read back from a prior run.
type CircularPropagator struct {
	planes map[orbitsim.SatelliteID]OrbitalPlane
}

// NewCircularPropagator builds a propagator from one orbital plane per
// satellite.
func NewCircularPropagator(planes []OrbitalPlane) *CircularPropagator {
	m := make(map[orbitsim.SatelliteID]OrbitalPlane, len(planes))
	for _, p := range planes {
		m[p.SatID] = p
	}
	return &CircularPropagator{planes: m}
}

// PositionAt implements orbitsim.Propagator.
func (c *CircularPropagator) PositionAt(satID orbitsim.SatelliteID, elapsed time.Duration) orbitsim.ECIPosn {
	plane, ok := c.planes[satID]
	if !ok {
		return orbitsim.ECIPosn{}
	}
	return plane.positionAt(elapsed)
}

// AltitudeKM re-exports the pure altitude helper named by the spacing
// strategy contract, so callers outside orbitsim don't need to import it
// directly for this one function.
func AltitudeKM(p orbitsim.ECIPosn) float64 {
	return orbitsim.AltitudeKM(p)
}
