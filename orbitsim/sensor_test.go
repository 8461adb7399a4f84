package orbitsim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSensor_Overflow(t *testing.T) {
	// Scenario 1: bits_per_sense=8Mb, max_buffer_capacity=20Mb,
	// bits_buffered=16Mb -> overflow counts the whole attempted capture.
	const mb = uint64(8 * 1024 * 1024)
	s := NewSensor(1, 8*mb, 20*mb, ECIPosn{}, time.Unix(0, 0))
	s.BitsBuffered = 16 * mb
	s.TriggerSense()

	now := time.Unix(10, 0)
	overflowed, lostMB := s.Update(now, ECIPosn{X: 1})

	require.True(t, overflowed)
	assert.Equal(t, 20*mb, s.BitsBuffered)
	assert.Equal(t, 8*mb, s.TotalBitsLost)
	assert.InDelta(t, 8.0, lostMB, 1e-9)
	assert.False(t, s.SenseTrigger)
	assert.Equal(t, SensorIdle, s.State)
	assert.Equal(t, now, s.PrevSenseDatetime)
}

func TestSensor_DrainPartial(t *testing.T) {
	// Scenario 2: bits_buffered=10Mb, drain request 12Mb -> drains 10Mb, leaves 0.
	const mb = uint64(8 * 1024 * 1024)
	s := NewSensor(1, mb, 0, ECIPosn{}, time.Unix(0, 0))
	s.BitsBuffered = 10 * mb

	drained := s.DrainBuffer(12 * mb)

	assert.Equal(t, 10*mb, drained)
	assert.Equal(t, uint64(0), s.BitsBuffered)
}

func TestSensor_UpdateWithoutTriggerIsNoop(t *testing.T) {
	s := NewSensor(1, 100, 1000, ECIPosn{}, time.Unix(0, 0))
	s.BitsBuffered = 50

	overflowed, _ := s.Update(time.Unix(5, 0), ECIPosn{X: 1})

	assert.False(t, overflowed)
	assert.Equal(t, uint64(50), s.BitsBuffered)
}

func TestSensor_HeadroomGrowth(t *testing.T) {
	s := NewSensor(1, 100, 1000, ECIPosn{}, time.Unix(0, 0))
	s.BitsBuffered = 500
	s.TriggerSense()

	overflowed, _ := s.Update(time.Unix(1, 0), ECIPosn{X: 2})

	assert.False(t, overflowed)
	assert.Equal(t, uint64(600), s.BitsBuffered)
	assert.Equal(t, uint64(0), s.TotalBitsLost)
}

func TestSensor_DefaultCapacityIsUnbounded(t *testing.T) {
	s := NewSensor(1, 100, 0, ECIPosn{}, time.Unix(0, 0))
	assert.Equal(t, uint64(1<<64-1), s.MaxBufferCapacity)
}

func TestSensor_TriggerIdempotentWithinStep(t *testing.T) {
	s := NewSensor(1, 100, 1000, ECIPosn{}, time.Unix(0, 0))
	s.TriggerSense()
	s.TriggerSense()
	assert.True(t, s.SenseTrigger)

	s.Update(time.Unix(1, 0), ECIPosn{})
	assert.False(t, s.SenseTrigger)
}
