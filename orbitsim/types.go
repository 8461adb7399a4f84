// Package orbitsim implements the pluggable spacing-strategy / link-policy
// decision layer that drives a discrete-time constellation downlink
// simulation: per-satellite sensor buffers with overflow accounting,
// observation-triggering strategies, and ground-station link scheduling
// policies.
package orbitsim

import (
	"math"
	"time"
)

// EarthRadiusKM is the mean Earth radius used by the altitude helper.
const EarthRadiusKM = 6371.0

// SatelliteID identifies a satellite, unique within a simulation.
type SatelliteID = uint32

// GroundStationID identifies a ground station, unique within a simulation.
type GroundStationID = uint32

// ECIPosn is a Cartesian position in an Earth-Centered Inertial frame, in km.
type ECIPosn struct {
	X, Y, Z float64
}

// Sub returns p - o.
func (p ECIPosn) Sub(o ECIPosn) ECIPosn {
	return ECIPosn{X: p.X - o.X, Y: p.Y - o.Y, Z: p.Z - o.Z}
}

// Norm returns the Euclidean norm of p, in km.
func (p ECIPosn) Norm() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// Distance returns the Euclidean distance between two ECI positions, in km.
// This is the "great-circle-like" distance the driver uses for threshold
// crossings; it is not a true great-circle arc length, which is adequate
// because both endpoints sit on (approximately) the same orbital shell.
func Distance(a, b ECIPosn) float64 {
	return a.Sub(b).Norm()
}

// AltitudeKM is the pure altitude helper named by the spacing strategy
// contract: altitude above the mean Earth radius, in km.
func AltitudeKM(p ECIPosn) float64 {
	return p.Norm() - EarthRadiusKM
}

// Satellite holds an identity, a current ECI position mutated by the
// external propagator, and a local clock used only by close-orbit-spaced
// re-phasing.
type Satellite struct {
	ID         SatelliteID
	Posn       ECIPosn
	LocalClock time.Time
}

// GroundStation holds an identity and the satellite it is currently
// connected to, if any. Any additional per-station state (queues, timers,
// RNG) lives inside the owning LinkPolicy, keyed by ID.
type GroundStation struct {
	ID           GroundStationID
	CurrentSatID *SatelliteID
}

// advanceBySeconds splits a fractional-second duration into whole seconds
// and nanoseconds, matching the reference rounding behavior used by the
// close-orbit-spaced re-phasing step.
func advanceBySeconds(t time.Time, dt float64) time.Time {
	whole := math.Floor(dt)
	nanos := math.Round((dt - whole) * 1e9)
	return t.Add(time.Duration(whole)*time.Second + time.Duration(nanos)*time.Nanosecond)
}

func sameSatellite(a, b *SatelliteID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func containsSat(list []SatelliteID, id SatelliteID) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
