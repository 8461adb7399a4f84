package orbitsim

import (
	"fmt"
	"time"

	"github.com/banshee-data/orbitwatch/internal/orbitlog"
)

// Propagator supplies per-step ECI positions for satellites. The production
// implementation lives in internal/propagator; orbitsim only depends on this
// narrow contract so the simulation core never imports orbital mechanics.
type Propagator interface {
	PositionAt(satID SatelliteID, elapsed time.Duration) ECIPosn
}

// VisibilityOracle supplies, per ground station and per step, the ordered
// set of visible satellite IDs. Ordering must be stable across calls when
// the visible set is unchanged, so policies can rely on it for tie-breaking.
type VisibilityOracle interface {
	Visible(gndID GroundStationID, now time.Time) []SatelliteID
}

// Config wires together everything a Simulation needs to run.
type Config struct {
	Satellites     []*Satellite
	GroundStations []*GroundStation
	Sensors        map[SatelliteID]*Sensor
	Spacing        SpacingStrategy
	Policy         LinkPolicy
	Propagator     Propagator
	Visibility     VisibilityOracle
	Sink           EventSink
	Start          time.Time
	StepDuration   time.Duration
	ThreshCoeff    float64
	LinkRateBps    float64

	// MinConnectionSteps overrides the timed policies' (RoundRobin, Random,
	// SRTF) minimum hold time. Zero or negative means "use the package
	// default of 30".
	MinConnectionSteps int64
}

// Simulation is the clock-driven step loop (C1) that ties the pluggable
// spacing strategy and link policy to the sensor buffers they govern.
type Simulation struct {
	satellites     []*Satellite
	groundStations []*GroundStation
	sensors        map[SatelliteID]*Sensor
	spacing        SpacingStrategy
	policy         LinkPolicy
	propagator     Propagator
	visibility     VisibilityOracle
	sink           EventSink
	thresholds     map[SatelliteID]float64
	threshCoeff    float64
	linkRateBps    float64
	minConnSteps   int64

	now          time.Time
	stepDuration time.Duration
	step         int64
	started      time.Time

	// Per-satellite bookkeeping kept for analytics (internal/telemetry) and
	// for the P1 conservation invariant.
	bufferedHistory map[SatelliteID][]uint64
	lostHistory     map[SatelliteID][]uint64
	drainedTotal    map[SatelliteID]uint64
	sensedTotal     map[SatelliteID]uint64
}

// NewSimulation validates the configuration, seeds per-satellite thresholds,
// and runs the one-shot initialization pass (e.g. close-orbit-spaced
// re-phasing) before any step executes.
func NewSimulation(cfg Config) (*Simulation, error) {
	if len(cfg.Satellites) == 0 {
		return nil, fmt.Errorf("orbitsim: simulation requires at least one satellite")
	}
	if cfg.Spacing == nil || cfg.Policy == nil || cfg.Propagator == nil || cfg.Visibility == nil {
		return nil, fmt.Errorf("orbitsim: spacing, policy, propagator, and visibility are all required")
	}
	sink := cfg.Sink
	if sink == nil {
		sink = NullSink{}
	}
	if cfg.StepDuration <= 0 {
		return nil, fmt.Errorf("orbitsim: step duration must be positive")
	}

	sim := &Simulation{
		satellites:      cfg.Satellites,
		groundStations:  cfg.GroundStations,
		sensors:         cfg.Sensors,
		spacing:         cfg.Spacing,
		policy:          cfg.Policy,
		propagator:      cfg.Propagator,
		visibility:      cfg.Visibility,
		sink:            sink,
		thresholds:      map[SatelliteID]float64{},
		threshCoeff:     cfg.ThreshCoeff,
		linkRateBps:     cfg.LinkRateBps,
		minConnSteps:    cfg.MinConnectionSteps,
		now:             cfg.Start,
		started:         cfg.Start,
		stepDuration:    cfg.StepDuration,
		bufferedHistory: map[SatelliteID][]uint64{},
		lostHistory:     map[SatelliteID][]uint64{},
		drainedTotal:    map[SatelliteID]uint64{},
		sensedTotal:     map[SatelliteID]uint64{},
	}

	for _, sat := range sim.satellites {
		sn, ok := sim.sensors[sat.ID]
		if !ok {
			return nil, fmt.Errorf("orbitsim: missing sensor for satellite %d", sat.ID)
		}
		sim.thresholds[sat.ID] = sim.threshCoeff * AltitudeKM(sn.PrevSensePosn)
	}

	if init, ok := cfg.Spacing.(Initializer); ok {
		init.Initialize(sim.satellites)
	}

	return sim, nil
}

// Now returns the simulation's current clock time.
func (s *Simulation) Now() time.Time { return s.now }

// Step returns the current step counter.
func (s *Simulation) Step() int64 { return s.step }

// Satellites returns the satellites in stable constellation order.
func (s *Simulation) Satellites() []*Satellite { return s.satellites }

// Sensor returns the sensor owned by a satellite.
func (s *Simulation) Sensor(id SatelliteID) (*Sensor, bool) {
	sn, ok := s.sensors[id]
	return sn, ok
}

// BufferedHistory returns the recorded per-step buffered-bits series for a
// satellite, for analytics consumption.
func (s *Simulation) BufferedHistory(id SatelliteID) []uint64 { return s.bufferedHistory[id] }

// LostHistory returns the recorded per-step cumulative-lost-bits series.
func (s *Simulation) LostHistory(id SatelliteID) []uint64 { return s.lostHistory[id] }

// DrainedTotal returns the cumulative bits drained from a satellite's
// sensor across the run so far.
func (s *Simulation) DrainedTotal(id SatelliteID) uint64 { return s.drainedTotal[id] }

// Advance runs n steps of the clock-driven loop, in dependency order:
// propagate -> spacing -> sensor update -> visibility -> per-station policy
// -> downlink drain -> log emit. Returns the downlink results for the final
// step only; callers that need every step's results should call
// Advance(1) in a loop.
func (s *Simulation) Advance(n int) ([]DownlinkResult, error) {
	var last []DownlinkResult
	for i := 0; i < n; i++ {
		results, err := s.advanceOne()
		if err != nil {
			return nil, err
		}
		last = results
	}
	return last, nil
}

func (s *Simulation) advanceOne() ([]DownlinkResult, error) {
	s.step++
	s.now = s.now.Add(s.stepDuration)
	elapsed := s.now.Sub(s.started)

	for _, sat := range s.satellites {
		sat.Posn = s.propagator.PositionAt(sat.ID, elapsed)
	}

	if err := s.runSpacing(); err != nil {
		return nil, err
	}

	for _, sat := range s.satellites {
		sn, ok := s.sensors[sat.ID]
		if !ok {
			return nil, fmt.Errorf("orbitsim: missing sensor for satellite %d", sat.ID)
		}
		wasTriggered := sn.SenseTrigger
		overflowed, lostMB := sn.Update(s.now, sat.Posn)
		if wasTriggered {
			s.sensedTotal[sat.ID] += sn.BitsPerSense
		}
		if overflowed {
			s.sink.EmitMeasurement(fmt.Sprintf("buffer-overflow-sat-%d", sat.ID), lostMB, s.now)
		}
		s.sink.EmitMeasurement(fmt.Sprintf("bits-buffered-sat-%d", sat.ID), float64(sn.BitsBuffered), s.now)
		s.bufferedHistory[sat.ID] = append(s.bufferedHistory[sat.ID], sn.BitsBuffered)
		s.lostHistory[sat.ID] = append(s.lostHistory[sat.ID], sn.TotalBitsLost)
	}

	results := s.runGroundStations()

	return results, nil
}

func (s *Simulation) runSpacing() error {
	if len(s.satellites) == 0 {
		return nil
	}
	lead := s.satellites[0]
	leadSensor, ok := s.sensors[lead.ID]
	if !ok {
		return fmt.Errorf("orbitsim: missing sensor for lead satellite %d", lead.ID)
	}

	distanceKM := Distance(lead.Posn, leadSensor.PrevSensePosn)
	thresholdKM := s.thresholds[lead.ID]

	if s.spacing.ShouldTrigger(lead.Posn, leadSensor.PrevSensePosn, leadSensor.PrevSenseDatetime, s.now, distanceKM, thresholdKM, lead.ID, s.satellites) {
		s.spacing.Execute(s.satellites, s.sensors, s.thresholds, s.threshCoeff, s.now, s.sink)
	} else {
		s.spacing.UpdateFrameState(lead.ID, lead.Posn, s.now, s.sensors)
	}
	return nil
}

// runGroundStations evaluates each ground station's link policy in stable
// order, recomputing the occupied-satellite surface between each decision
// so sticky's collision avoidance sees every other station's latest pick.
func (s *Simulation) runGroundStations() []DownlinkResult {
	results := make([]DownlinkResult, 0, len(s.groundStations))

	for _, gnd := range s.groundStations {
		occupied := make(map[SatelliteID]bool, len(s.groundStations))
		for _, other := range s.groundStations {
			if other.ID == gnd.ID || other.CurrentSatID == nil {
				continue
			}
			occupied[*other.CurrentSatID] = true
		}

		visible := s.visibility.Visible(gnd.ID, s.now)
		selected := s.policy.Decide(LinkDecisionInput{
			VisibleSats:        visible,
			Sensors:            s.sensors,
			Occupied:           occupied,
			Now:                s.now,
			GroundID:           gnd.ID,
			CurrentSat:         gnd.CurrentSatID,
			Step:               s.step,
			MinConnectionSteps: s.minConnSteps,
		})

		if selected != nil && !containsSat(visible, *selected) {
			orbitlog.Logf("link policy for ground station %d returned non-visible satellite %d; ignoring", gnd.ID, *selected)
			selected = nil
		}

		gnd.CurrentSatID = selected

		if selected != nil {
			sn, ok := s.sensors[*selected]
			if !ok {
				orbitlog.Logf("ground station %d connected to satellite %d with no sensor", gnd.ID, *selected)
				continue
			}
			result := DrainConnected(gnd.ID, *selected, sn, s.linkRateBps, s.stepDuration)
			s.drainedTotal[*selected] += result.Drained
			s.sink.EmitMeasurement(fmt.Sprintf("downlink-gnd-%d", gnd.ID), float64(result.Drained), s.now)
			results = append(results, result)
		}
	}

	return results
}
