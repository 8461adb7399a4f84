package orbitsim

import "math/rand"

// RandomPolicySeed is the fixed RNG seed required for deterministic,
// reproducible runs (P8).
const RandomPolicySeed = 42

// timerState tracks, per ground station, the step at which the current
// connection began — the bookkeeping every minimum-connection-timed policy
// needs.
type timerState struct {
	connectionStart int64
}

func recordConnectionStart(st *timerState, previous, selected *SatelliteID, step int64) {
	if !sameSatellite(previous, selected) {
		st.connectionStart = step
	}
}

func withinMinConnection(st *timerState, current *SatelliteID, visible []SatelliteID, step, minConnectionSteps int64) bool {
	if current == nil || !containsSat(visible, *current) {
		return false
	}
	return step-st.connectionStart < minConnectionSteps
}

// resolveMinConnectionSteps falls back to the package default when a
// LinkDecisionInput doesn't carry an explicit override.
func resolveMinConnectionSteps(configured int64) int64 {
	if configured <= 0 {
		return MinConnectionSteps
	}
	return configured
}

// pickSmallestEligible returns the visible, buffered satellite with the
// smallest buffered-bits count, ties broken by order of appearance in
// visible.
func pickSmallestEligible(visible []SatelliteID, sensors map[SatelliteID]*Sensor) *SatelliteID {
	var best *SatelliteID
	var bestBits uint64
	for _, id := range visible {
		if !eligibleBuffered(id, sensors) {
			continue
		}
		bits := bufferedBits(id, sensors)
		if best == nil || bits < bestBits {
			idCopy := id
			best = &idCopy
			bestBits = bits
		}
	}
	return best
}

// RoundRobinPolicy is the time-sliced queue variant: it holds the current
// satellite only for MinConnectionSteps, then advances to the next eligible
// queue entry.
type RoundRobinPolicy struct {
	fifo   map[GroundStationID]*fifoState
	timers map[GroundStationID]*timerState
}

func NewRoundRobinPolicy() *RoundRobinPolicy {
	return &RoundRobinPolicy{
		fifo:   map[GroundStationID]*fifoState{},
		timers: map[GroundStationID]*timerState{},
	}
}

func (p *RoundRobinPolicy) stateFor(gnd GroundStationID) (*fifoState, *timerState) {
	fs, ok := p.fifo[gnd]
	if !ok {
		fs = newFifoState()
		p.fifo[gnd] = fs
	}
	ts, ok := p.timers[gnd]
	if !ok {
		ts = &timerState{}
		p.timers[gnd] = ts
	}
	return fs, ts
}

func (p *RoundRobinPolicy) Decide(in LinkDecisionInput) *SatelliteID {
	fs, ts := p.stateFor(in.GroundID)
	fs.maintainQueue(in.VisibleSats)

	if withinMinConnection(ts, in.CurrentSat, in.VisibleSats, in.Step, resolveMinConnectionSteps(in.MinConnectionSteps)) {
		return in.CurrentSat
	}

	selected := fs.popEligible(in.Sensors)
	if selected == nil && in.CurrentSat != nil && containsSat(in.VisibleSats, *in.CurrentSat) {
		// Nothing else is ready; keep holding past the expired slice.
		return in.CurrentSat
	}

	recordConnectionStart(ts, in.CurrentSat, selected, in.Step)
	return selected
}

// RandomPolicy samples uniformly among eligible visible satellites using a
// single RNG shared across all ground stations, seeded with the fixed
// constant 42 for reproducible runs.
type RandomPolicy struct {
	rng    *rand.Rand
	timers map[GroundStationID]*timerState
}

func NewRandomPolicy() *RandomPolicy {
	return &RandomPolicy{
		rng:    rand.New(rand.NewSource(RandomPolicySeed)),
		timers: map[GroundStationID]*timerState{},
	}
}

func (p *RandomPolicy) stateFor(gnd GroundStationID) *timerState {
	ts, ok := p.timers[gnd]
	if !ok {
		ts = &timerState{}
		p.timers[gnd] = ts
	}
	return ts
}

func (p *RandomPolicy) Decide(in LinkDecisionInput) *SatelliteID {
	ts := p.stateFor(in.GroundID)
	if withinMinConnection(ts, in.CurrentSat, in.VisibleSats, in.Step, resolveMinConnectionSteps(in.MinConnectionSteps)) {
		return in.CurrentSat
	}

	eligible := make([]SatelliteID, 0, len(in.VisibleSats))
	for _, id := range in.VisibleSats {
		if eligibleBuffered(id, in.Sensors) {
			eligible = append(eligible, id)
		}
	}

	var selected *SatelliteID
	if len(eligible) > 0 {
		picked := eligible[p.rng.Intn(len(eligible))]
		selected = &picked
	} else if in.CurrentSat != nil && containsSat(in.VisibleSats, *in.CurrentSat) {
		return in.CurrentSat
	}

	recordConnectionStart(ts, in.CurrentSat, selected, in.Step)
	return selected
}

// SJFPolicy (shortest-job-first) is non-preemptive: once connected to an
// eligible satellite it keeps serving that job to completion (until the
// satellite becomes invisible or drains to zero), regardless of the
// minimum-connection timer. Only when forced to pick fresh does it choose
// the smallest eligible buffer.
type SJFPolicy struct {
	timers map[GroundStationID]*timerState
}

func NewSJFPolicy() *SJFPolicy {
	return &SJFPolicy{timers: map[GroundStationID]*timerState{}}
}

func (p *SJFPolicy) stateFor(gnd GroundStationID) *timerState {
	ts, ok := p.timers[gnd]
	if !ok {
		ts = &timerState{}
		p.timers[gnd] = ts
	}
	return ts
}

func (p *SJFPolicy) Decide(in LinkDecisionInput) *SatelliteID {
	ts := p.stateFor(in.GroundID)

	if in.CurrentSat != nil && containsSat(in.VisibleSats, *in.CurrentSat) && eligibleBuffered(*in.CurrentSat, in.Sensors) {
		return in.CurrentSat
	}

	selected := pickSmallestEligible(in.VisibleSats, in.Sensors)
	recordConnectionStart(ts, in.CurrentSat, selected, in.Step)
	return selected
}

// SRTFPolicy (shortest-remaining-time-first) is preemptive: once the
// minimum-connection timer has elapsed it always re-evaluates and switches
// to whichever eligible satellite currently has the smallest buffer, even
// if that differs from the satellite it is already serving.
type SRTFPolicy struct {
	timers map[GroundStationID]*timerState
}

func NewSRTFPolicy() *SRTFPolicy {
	return &SRTFPolicy{timers: map[GroundStationID]*timerState{}}
}

func (p *SRTFPolicy) stateFor(gnd GroundStationID) *timerState {
	ts, ok := p.timers[gnd]
	if !ok {
		ts = &timerState{}
		p.timers[gnd] = ts
	}
	return ts
}

func (p *SRTFPolicy) Decide(in LinkDecisionInput) *SatelliteID {
	ts := p.stateFor(in.GroundID)

	if withinMinConnection(ts, in.CurrentSat, in.VisibleSats, in.Step, resolveMinConnectionSteps(in.MinConnectionSteps)) && eligibleBuffered(*in.CurrentSat, in.Sensors) {
		return in.CurrentSat
	}

	selected := pickSmallestEligible(in.VisibleSats, in.Sensors)
	if selected == nil && in.CurrentSat != nil && containsSat(in.VisibleSats, *in.CurrentSat) && eligibleBuffered(*in.CurrentSat, in.Sensors) {
		return in.CurrentSat
	}

	recordConnectionStart(ts, in.CurrentSat, selected, in.Step)
	return selected
}
