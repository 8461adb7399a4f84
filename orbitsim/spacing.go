package orbitsim

import (
	"time"

	"github.com/banshee-data/orbitwatch/internal/orbitlog"
)

// SpacingStrategy governs observation triggering across the constellation.
// Implementations own their own private rotation/frame state; the driver
// holds one erased reference for the whole simulation.
type SpacingStrategy interface {
	// ShouldTrigger reports whether the lead satellite's movement since its
	// last capture has crossed the observation threshold.
	ShouldTrigger(currPosn, prevSensePosn ECIPosn, prevTime, now time.Time, distanceKM, thresholdKM float64, leadSatID SatelliteID, satellites []*Satellite) bool

	// Execute runs on steps where ShouldTrigger returned true: it triggers
	// capture on whichever subset of satellites this variant selects and
	// refreshes their cached distance threshold.
	Execute(satellites []*Satellite, sensors map[SatelliteID]*Sensor, thresholds map[SatelliteID]float64, threshCoeff float64, now time.Time, sink EventSink)

	// UpdateFrameState runs on steps where ShouldTrigger returned false,
	// letting a strategy refresh its own reference point.
	UpdateFrameState(leadSatID SatelliteID, currPosn ECIPosn, now time.Time, sensors map[SatelliteID]*Sensor)
}

// Initializer is implemented by strategies that need a one-shot setup pass
// over the satellite set before step 0 (close-orbit-spaced re-phasing).
type Initializer interface {
	Initialize(satellites []*Satellite)
}

func refreshThreshold(sat *Satellite, thresholds map[SatelliteID]float64, threshCoeff float64) {
	thresholds[sat.ID] = threshCoeff * AltitudeKM(sat.Posn)
}

// BentPipeSpacing is the default "close-spaced" variant: every threshold
// crossing triggers the whole constellation at once.
type BentPipeSpacing struct{}

func NewBentPipeSpacing() *BentPipeSpacing { return &BentPipeSpacing{} }

func (*BentPipeSpacing) ShouldTrigger(_, _ ECIPosn, _, _ time.Time, distanceKM, thresholdKM float64, _ SatelliteID, _ []*Satellite) bool {
	return distanceKM >= thresholdKM
}

func (*BentPipeSpacing) Execute(satellites []*Satellite, sensors map[SatelliteID]*Sensor, thresholds map[SatelliteID]float64, threshCoeff float64, now time.Time, sink EventSink) {
	for _, sat := range satellites {
		if sn, ok := sensors[sat.ID]; ok {
			sn.TriggerSense()
		}
		refreshThreshold(sat, thresholds, threshCoeff)
	}
	sink.EmitEvent("trigger-time", now)
}

func (*BentPipeSpacing) UpdateFrameState(SatelliteID, ECIPosn, time.Time, map[SatelliteID]*Sensor) {}

// FrameSpacing triggers the whole constellation only once every N threshold
// crossings (N = constellation size), holding the rest of the flock still
// in between while the lead satellite's own reference point keeps advancing.
type FrameSpacing struct {
	frameCount int
	n          int
}

func NewFrameSpacing(constellationSize int) *FrameSpacing {
	if constellationSize < 1 {
		constellationSize = 1
	}
	return &FrameSpacing{n: constellationSize}
}

func (*FrameSpacing) ShouldTrigger(_, _ ECIPosn, _, _ time.Time, distanceKM, thresholdKM float64, _ SatelliteID, _ []*Satellite) bool {
	return distanceKM >= thresholdKM
}

func (f *FrameSpacing) Execute(satellites []*Satellite, sensors map[SatelliteID]*Sensor, thresholds map[SatelliteID]float64, threshCoeff float64, now time.Time, sink EventSink) {
	f.frameCount++
	if f.frameCount%f.n != 0 {
		return
	}
	f.frameCount = 0
	for _, sat := range satellites {
		if sn, ok := sensors[sat.ID]; ok {
			sn.TriggerSense()
		}
		refreshThreshold(sat, thresholds, threshCoeff)
	}
	sink.EmitEvent("trigger-time", now)
}

// UpdateFrameState advances the lead satellite's own reference position and
// time on non-triggering steps, so its distance metric keeps marching
// forward while the rest of the constellation is held.
func (*FrameSpacing) UpdateFrameState(leadSatID SatelliteID, currPosn ECIPosn, now time.Time, sensors map[SatelliteID]*Sensor) {
	sn, ok := sensors[leadSatID]
	if !ok {
		orbitlog.Logf("frame-spaced: missing sensor for lead satellite %d", leadSatID)
		return
	}
	sn.PrevSensePosn = currPosn
	sn.PrevSenseDatetime = now
}

// OrbitSpacing round-robins observation across satellites: each successive
// threshold crossing triggers the next satellite in constellation order.
type OrbitSpacing struct {
	rotationIndex int
}

func NewOrbitSpacing() *OrbitSpacing { return &OrbitSpacing{} }

func (o *OrbitSpacing) ShouldTrigger(_, _ ECIPosn, _, _ time.Time, distanceKM, thresholdKM float64, leadSatID SatelliteID, satellites []*Satellite) bool {
	if distanceKM < thresholdKM || len(satellites) == 0 {
		return false
	}
	target := satellites[o.rotationIndex%len(satellites)]
	return leadSatID == target.ID
}

func (o *OrbitSpacing) Execute(satellites []*Satellite, sensors map[SatelliteID]*Sensor, thresholds map[SatelliteID]float64, threshCoeff float64, now time.Time, sink EventSink) {
	if len(satellites) == 0 {
		return
	}
	target := satellites[o.rotationIndex%len(satellites)]
	if sn, ok := sensors[target.ID]; ok {
		sn.TriggerSense()
	}
	refreshThreshold(target, thresholds, threshCoeff)
	o.rotationIndex++
	sink.EmitEvent("trigger-time", now)
}

func (*OrbitSpacing) UpdateFrameState(SatelliteID, ECIPosn, time.Time, map[SatelliteID]*Sensor) {}

// CloseOrbitSpacing performs a one-shot re-phasing of per-satellite local
// clocks into clusters, then behaves exactly like BentPipeSpacing: the
// temporal spread needed for cluster revisits was baked into the clocks up
// front rather than being enforced by the triggering logic itself.
type CloseOrbitSpacing struct {
	rephased    bool
	clusterSize int
	intraDtSec  float64
	interDtSec  float64
}

// NewCloseOrbitSpacing constructs the strategy with the spec's defaults
// (clusterSize=5, intraDtSec=0, interDtSec=540). interDtSec is a pointer so
// callers (internal/config's TuningConfig.InterDtSec) can distinguish "not
// set, use the default" from an explicit override of 0 — a plain float64
// sentinel can't tell those apart.
func NewCloseOrbitSpacing(clusterSize int, intraDtSec float64, interDtSec *float64) *CloseOrbitSpacing {
	if clusterSize <= 0 {
		clusterSize = 5
	}
	dt := 540.0
	if interDtSec != nil {
		dt = *interDtSec
	}
	return &CloseOrbitSpacing{clusterSize: clusterSize, intraDtSec: intraDtSec, interDtSec: dt}
}

// Initialize performs the one-shot cluster re-phasing. The driver calls this
// before step 0 rather than lazily on first trigger, per the design note
// that the rephasing is a setup concern, not a triggering-time side effect.
func (c *CloseOrbitSpacing) Initialize(satellites []*Satellite) {
	if c.rephased {
		return
	}
	for i := 1; i < len(satellites); i++ {
		dt := c.intraDtSec
		if i%c.clusterSize == 0 {
			dt = c.interDtSec
		}
		satellites[i].LocalClock = advanceBySeconds(satellites[i-1].LocalClock, dt)
	}
	c.rephased = true
}

func (*CloseOrbitSpacing) ShouldTrigger(_, _ ECIPosn, _, _ time.Time, distanceKM, thresholdKM float64, _ SatelliteID, _ []*Satellite) bool {
	return distanceKM >= thresholdKM
}

func (*CloseOrbitSpacing) Execute(satellites []*Satellite, sensors map[SatelliteID]*Sensor, thresholds map[SatelliteID]float64, threshCoeff float64, now time.Time, sink EventSink) {
	for _, sat := range satellites {
		if sn, ok := sensors[sat.ID]; ok {
			sn.TriggerSense()
		}
		refreshThreshold(sat, thresholds, threshCoeff)
	}
	sink.EmitEvent("trigger-time", now)
}

func (*CloseOrbitSpacing) UpdateFrameState(SatelliteID, ECIPosn, time.Time, map[SatelliteID]*Sensor) {}
