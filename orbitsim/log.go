package orbitsim

import "time"

// EventSink is the log-emitter contract (C8). Spacing strategies, the
// sensor-update step, and the downlink accountant all write through this
// interface; the CLI wires it to a CSV writer (and optionally a sqlite
// mirror), while tests use a recording or no-op implementation.
type EventSink interface {
	// EmitEvent records a global, timestamped event such as "trigger-time".
	EmitEvent(name string, now time.Time)
	// EmitMeasurement records a named time-series measurement, such as
	// "buffer-overflow-sat-<id>" or a per-step buffered-bits sample.
	EmitMeasurement(stream string, value float64, now time.Time)
}

// NullSink discards everything. Useful in unit tests for strategies and
// policies that must satisfy the EventSink contract but don't assert on it.
type NullSink struct{}

func (NullSink) EmitEvent(string, time.Time)                {}
func (NullSink) EmitMeasurement(string, float64, time.Time) {}

// RecordingSink captures emitted events/measurements in memory, for tests
// that assert on what was logged (e.g. P9 frame-spaced cadence).
type RecordingSink struct {
	Events       []RecordedEvent
	Measurements []RecordedMeasurement
}

type RecordedEvent struct {
	Name string
	At   time.Time
}

type RecordedMeasurement struct {
	Stream string
	Value  float64
	At     time.Time
}

func (s *RecordingSink) EmitEvent(name string, now time.Time) {
	s.Events = append(s.Events, RecordedEvent{Name: name, At: now})
}

func (s *RecordingSink) EmitMeasurement(stream string, value float64, now time.Time) {
	s.Measurements = append(s.Measurements, RecordedMeasurement{Stream: stream, Value: value, At: now})
}

// CountEvent returns how many times an event name was recorded.
func (s *RecordingSink) CountEvent(name string) int {
	n := 0
	for _, e := range s.Events {
		if e.Name == name {
			n++
		}
	}
	return n
}
