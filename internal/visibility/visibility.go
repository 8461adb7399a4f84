// Package visibility supplies the orbitsim.VisibilityOracle collaborator:
// for each ground station and step, the ordered set of satellites with an
// unobstructed, elevation-mask-satisfying line of sight. The geometry is
// adapted from segment/sphere intersection and elevation-angle formulas
// used elsewhere in the reference material for ground-to-satellite
// visibility, generalized here from a fixed two-point check to a
// per-station, per-step oracle over a whole constellation.
package visibility

import (
	"math"
	"time"

	"github.com/banshee-data/orbitwatch/orbitsim"
)

// Station is a ground station's fixed ECI position. Real ground stations
// rotate with the Earth; orbitwatch's circular propagator ignores Earth
// rotation entirely, so a station position fixed in the ECI frame is the
// consistent simplification to pair it with.
type Station struct {
	ID   orbitsim.GroundStationID
	Posn orbitsim.ECIPosn
}

// ElevationMaskOracle computes visibility from the live ECI positions of a
// fixed satellite set, read each call rather than cached, so it always
// reflects whatever position the step loop propagated into Satellite.Posn
// for the current step.
type ElevationMaskOracle struct {
	satellites    []*orbitsim.Satellite
	stations      map[orbitsim.GroundStationID]Station
	elevationMask float64 // radians; satellites below this angle are not visible
}

// NewElevationMaskOracle builds an oracle over a fixed constellation and
// ground-station layout. elevationMaskRadians is the minimum elevation
// angle above the local horizon a satellite must clear to count as
// visible; 0 means "anything above the horizon".
func NewElevationMaskOracle(satellites []*orbitsim.Satellite, stations []Station, elevationMaskRadians float64) *ElevationMaskOracle {
	m := make(map[orbitsim.GroundStationID]Station, len(stations))
	for _, s := range stations {
		m[s.ID] = s
	}
	return &ElevationMaskOracle{satellites: satellites, stations: m, elevationMask: elevationMaskRadians}
}

// Visible implements orbitsim.VisibilityOracle. now is accepted for
// interface conformance; this oracle's geometry depends only on the
// satellites' current positions, not on wall-clock time directly.
func (o *ElevationMaskOracle) Visible(gndID orbitsim.GroundStationID, now time.Time) []orbitsim.SatelliteID {
	station, ok := o.stations[gndID]
	if !ok {
		return nil
	}

	var visible []orbitsim.SatelliteID
	for _, sat := range o.satellites {
		if groundToSatelliteVisible(station.Posn, sat.Posn, o.elevationMask) {
			visible = append(visible, sat.ID)
		}
	}
	return visible
}

// elevation returns the elevation angle, in radians, of satellite as seen
// from ground. A positive value means the satellite is above the local
// horizon.
func elevation(ground, satellite orbitsim.ECIPosn) float64 {
	toSat := satellite.Sub(ground)
	groundNorm := ground.Norm()
	if groundNorm == 0 {
		return 0
	}
	groundHat := orbitsim.ECIPosn{X: ground.X / groundNorm, Y: ground.Y / groundNorm, Z: ground.Z / groundNorm}
	toSatNorm := toSat.Norm()
	if toSatNorm == 0 {
		return math.Pi / 2
	}
	return math.Asin(dot(toSat, groundHat) / toSatNorm)
}

func groundToSatelliteVisible(ground, satellite orbitsim.ECIPosn, mask float64) bool {
	if elevation(ground, satellite) < mask {
		return false
	}
	return !segmentIntersectsEarth(ground, satellite)
}

// segmentIntersectsEarth reports whether the line segment between p0 and
// p1 passes through the Earth sphere (radius orbitsim.EarthRadiusKM),
// strictly between its endpoints. Solved as the quadratic intersection of
// the parameterized segment p0 + t*(p1-p0), t in (0,1), with the sphere.
func segmentIntersectsEarth(p0, p1 orbitsim.ECIPosn) bool {
	direction := p1.Sub(p0)
	a := dot(direction, direction)
	b := 2 * dot(p0, direction)
	c := dot(p0, p0) - orbitsim.EarthRadiusKM*orbitsim.EarthRadiusKM

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return false
	}

	sqrtD := math.Sqrt(discriminant)
	denom := 2 * a
	t1 := (-b - sqrtD) / denom
	t2 := (-b + sqrtD) / denom

	const epsilon = 1e-9
	return (t1 > epsilon && t1 < 1-epsilon) || (t2 > epsilon && t2 < 1-epsilon)
}

func dot(a, b orbitsim.ECIPosn) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}
