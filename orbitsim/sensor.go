package orbitsim

import (
	"math"
	"time"
)

// SensorState names the states of the sensor state machine in spec §4.5.
type SensorState string

const (
	SensorIdle      SensorState = "idle"
	SensorTriggered SensorState = "triggered"
	SensorOverflow  SensorState = "overflow"
)

// bitsPerMB converts bits to megabytes for the overflow measurement stream:
// bits -> bytes (/8) -> megabytes (/1024/1024).
const bitsPerMB = 8 * 1024 * 1024

// Sensor is the per-satellite capture buffer. Mutated only by trigger_sense
// (from the owning spacing strategy) and update/drain_buffer (from the step
// loop and downlink accountant) — the single-writer discipline the fixed
// step order enforces means no locking is required here.
type Sensor struct {
	SatID             SatelliteID
	BitsPerSense      uint64
	BitsBuffered      uint64
	MaxBufferCapacity uint64
	TotalBitsLost     uint64
	SenseTrigger      bool
	PrevSensePosn     ECIPosn
	PrevSenseDatetime time.Time
	State             SensorState
}

// NewSensor constructs a sensor with construction-time capture state. A
// maxBufferCapacity of 0 means unbounded (spec default: math.MaxUint64).
func NewSensor(satID SatelliteID, bitsPerSense, maxBufferCapacity uint64, initPosn ECIPosn, initTime time.Time) *Sensor {
	if maxBufferCapacity == 0 {
		maxBufferCapacity = math.MaxUint64
	}
	return &Sensor{
		SatID:             satID,
		BitsPerSense:      bitsPerSense,
		MaxBufferCapacity: maxBufferCapacity,
		PrevSensePosn:     initPosn,
		PrevSenseDatetime: initTime,
		State:             SensorIdle,
	}
}

// TriggerSense latches a capture request for the next update. Idempotent
// within a step.
func (s *Sensor) TriggerSense() {
	s.SenseTrigger = true
}

// DrainBuffer removes up to bits from the buffer and returns the number
// actually removed.
func (s *Sensor) DrainBuffer(bits uint64) uint64 {
	drained := bits
	if drained > s.BitsBuffered {
		drained = s.BitsBuffered
	}
	s.BitsBuffered -= drained
	return drained
}

// Update consumes a latched sense_trigger, if any, applying capacity-capped
// growth and counting any overflow against the whole attempted capture
// rather than the overflowing remainder — any step whose capture could not
// fully land is entirely lost, not partially credited. Returns whether this
// update overflowed and the cumulative lost megabytes after it.
func (s *Sensor) Update(now time.Time, currPosn ECIPosn) (overflowed bool, cumulativeLostMB float64) {
	if !s.SenseTrigger {
		return false, float64(s.TotalBitsLost) / bitsPerMB
	}
	s.State = SensorTriggered

	newTotal := s.BitsBuffered + s.BitsPerSense
	if newTotal > s.MaxBufferCapacity {
		s.BitsBuffered = s.MaxBufferCapacity
		s.TotalBitsLost += s.BitsPerSense
		s.State = SensorOverflow
		overflowed = true
	} else {
		s.BitsBuffered = newTotal
	}

	s.PrevSensePosn = currPosn
	s.PrevSenseDatetime = now
	s.SenseTrigger = false
	s.State = SensorIdle

	return overflowed, float64(s.TotalBitsLost) / bitsPerMB
}
