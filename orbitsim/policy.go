package orbitsim

import "time"

// MinConnectionSteps is the default minimum number of steps a ground station
// must hold a satellite before a voluntary switch is permitted. It applies
// whenever a LinkDecisionInput leaves MinConnectionSteps unset (<= 0); the
// -tuning file's min_connection_steps overrides it via Config.MinConnectionSteps.
const MinConnectionSteps = 30

// LinkDecisionInput bundles the read-only view a LinkPolicy needs to pick a
// satellite for one ground station on one step.
type LinkDecisionInput struct {
	VisibleSats []SatelliteID
	Sensors     map[SatelliteID]*Sensor
	Occupied    map[SatelliteID]bool
	Now         time.Time
	GroundID    GroundStationID
	CurrentSat  *SatelliteID
	Step        int64

	// MinConnectionSteps overrides the package default for timed policies
	// (RoundRobin, Random, SRTF). Zero or negative means "use the default".
	MinConnectionSteps int64
}

// LinkPolicy selects, per step and per ground station, which visible
// satellite (if any) that station should be connected to. Implementations
// own a mapping from ground station ID to whatever per-station state
// (queues, timers, RNG) the variant needs.
type LinkPolicy interface {
	Decide(in LinkDecisionInput) *SatelliteID
}

func eligibleBuffered(id SatelliteID, sensors map[SatelliteID]*Sensor) bool {
	sn, ok := sensors[id]
	return ok && sn.BitsBuffered > 0
}

func bufferedBits(id SatelliteID, sensors map[SatelliteID]*Sensor) uint64 {
	if sn, ok := sensors[id]; ok {
		return sn.BitsBuffered
	}
	return 0
}

// StickyPolicy ("sticky"/"greedy") never preempts a still-visible current
// satellite. On a fresh pick it greedily selects the visible, unoccupied
// satellite with the most buffered data.
type StickyPolicy struct{}

func NewStickyPolicy() *StickyPolicy { return &StickyPolicy{} }

func (*StickyPolicy) Decide(in LinkDecisionInput) *SatelliteID {
	if in.CurrentSat != nil && containsSat(in.VisibleSats, *in.CurrentSat) {
		return in.CurrentSat
	}

	var best *SatelliteID
	var bestBits uint64
	for _, id := range in.VisibleSats {
		if in.Occupied[id] || !eligibleBuffered(id, in.Sensors) {
			continue
		}
		bits := bufferedBits(id, in.Sensors)
		if best == nil || bits > bestBits {
			idCopy := id
			best = &idCopy
			bestBits = bits
		}
	}
	return best
}

// fifoState is the per-ground-station queue FIFOPolicy and RoundRobinPolicy
// both maintain: an arrival-ordered sequence plus a membership set so
// arrival detection is O(1).
type fifoState struct {
	queue   []SatelliteID
	inQueue map[SatelliteID]bool
}

func newFifoState() *fifoState {
	return &fifoState{inQueue: map[SatelliteID]bool{}}
}

// maintainQueue appends newly visible satellites to the back of the queue
// and prunes entries that are no longer visible, preserving arrival order
// for everything that survives.
func (s *fifoState) maintainQueue(visible []SatelliteID) {
	visibleSet := make(map[SatelliteID]bool, len(visible))
	for _, id := range visible {
		visibleSet[id] = true
		if !s.inQueue[id] {
			s.queue = append(s.queue, id)
			s.inQueue[id] = true
		}
	}

	pruned := s.queue[:0]
	for _, id := range s.queue {
		if visibleSet[id] {
			pruned = append(pruned, id)
		} else {
			delete(s.inQueue, id)
		}
	}
	s.queue = pruned
}

// popEligible removes and returns the first queued satellite that is both
// still visible and has buffered data, leaving ineligible entries in place
// for a future call.
func (s *fifoState) popEligible(sensors map[SatelliteID]*Sensor) *SatelliteID {
	for i, id := range s.queue {
		if !eligibleBuffered(id, sensors) {
			continue
		}
		idCopy := id
		s.queue = append(s.queue[:i], s.queue[i+1:]...)
		delete(s.inQueue, id)
		return &idCopy
	}
	return nil
}

// FIFOPolicy ("fifo") is completion-driven: it has no minimum-connection
// timer and only gives up the current satellite once it is invisible or
// drained.
type FIFOPolicy struct {
	stations map[GroundStationID]*fifoState
}

func NewFIFOPolicy() *FIFOPolicy {
	return &FIFOPolicy{stations: map[GroundStationID]*fifoState{}}
}

func (p *FIFOPolicy) stateFor(gnd GroundStationID) *fifoState {
	st, ok := p.stations[gnd]
	if !ok {
		st = newFifoState()
		p.stations[gnd] = st
	}
	return st
}

func (p *FIFOPolicy) Decide(in LinkDecisionInput) *SatelliteID {
	st := p.stateFor(in.GroundID)
	st.maintainQueue(in.VisibleSats)

	if in.CurrentSat != nil && containsSat(in.VisibleSats, *in.CurrentSat) && eligibleBuffered(*in.CurrentSat, in.Sensors) {
		return in.CurrentSat
	}

	return st.popEligible(in.Sensors)
}
