package orbitsim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float64Ptr(v float64) *float64 { return &v }

func newTestConstellation(n int) ([]*Satellite, map[SatelliteID]*Sensor) {
	sats := make([]*Satellite, n)
	sensors := make(map[SatelliteID]*Sensor, n)
	for i := 0; i < n; i++ {
		id := SatelliteID(i + 1)
		sats[i] = &Satellite{ID: id, Posn: ECIPosn{X: EarthRadiusKM + 500}}
		sensors[id] = NewSensor(id, 1000, 0, ECIPosn{X: EarthRadiusKM + 500}, time.Unix(0, 0))
	}
	return sats, sensors
}

func TestBentPipeSpacing_TriggersAll(t *testing.T) {
	sats, sensors := newTestConstellation(3)
	thresholds := map[SatelliteID]float64{}
	sink := &RecordingSink{}
	s := NewBentPipeSpacing()

	require.True(t, s.ShouldTrigger(ECIPosn{}, ECIPosn{}, time.Time{}, time.Time{}, 10, 5, 1, sats))
	s.Execute(sats, sensors, thresholds, 4.0, time.Unix(1, 0), sink)

	for _, sn := range sensors {
		assert.True(t, sn.SenseTrigger)
	}
	assert.Equal(t, 1, sink.CountEvent("trigger-time"))
}

func TestFrameSpacing_Cadence(t *testing.T) {
	// P9: at most one trigger-time per N threshold crossings.
	n := 3
	sats, sensors := newTestConstellation(n)
	thresholds := map[SatelliteID]float64{}
	sink := &RecordingSink{}
	fs := NewFrameSpacing(n)

	for crossing := 1; crossing <= n*2; crossing++ {
		fs.Execute(sats, sensors, thresholds, 4.0, time.Unix(int64(crossing), 0), sink)
	}

	assert.Equal(t, 2, sink.CountEvent("trigger-time"))
}

func TestFrameSpacing_UpdateFrameStateAdvancesLeadOnly(t *testing.T) {
	sats, sensors := newTestConstellation(2)
	fs := NewFrameSpacing(2)
	lead := sats[0].ID
	other := sats[1].ID

	newPosn := ECIPosn{X: 999}
	now := time.Unix(42, 0)
	fs.UpdateFrameState(lead, newPosn, now, sensors)

	assert.Equal(t, newPosn, sensors[lead].PrevSensePosn)
	assert.Equal(t, now, sensors[lead].PrevSenseDatetime)
	assert.NotEqual(t, newPosn, sensors[other].PrevSensePosn)
}

func TestOrbitSpacing_Rotation(t *testing.T) {
	// Scenario 6: N=3, three successive crossings trigger indices 0,1,2; the
	// fourth triggers index 0 again.
	sats, sensors := newTestConstellation(3)
	thresholds := map[SatelliteID]float64{}
	sink := &RecordingSink{}
	os := NewOrbitSpacing()

	expectTriggered := func(idx int) {
		target := sats[idx].ID
		require.True(t, os.ShouldTrigger(ECIPosn{}, ECIPosn{}, time.Time{}, time.Time{}, 10, 5, target, sats))
		os.Execute(sats, sensors, thresholds, 4.0, time.Unix(1, 0), sink)
		assert.True(t, sensors[target].SenseTrigger, "satellite %d should be triggered", target)
		sensors[target].SenseTrigger = false
	}

	expectTriggered(0)
	expectTriggered(1)
	expectTriggered(2)
	expectTriggered(0)
}

func TestOrbitSpacing_ShouldTriggerFalseForNonRotationSatellite(t *testing.T) {
	sats, _ := newTestConstellation(3)
	os := NewOrbitSpacing()
	// rotationIndex is 0, so only sats[0] should gate true.
	assert.False(t, os.ShouldTrigger(ECIPosn{}, ECIPosn{}, time.Time{}, time.Time{}, 10, 5, sats[1].ID, sats))
}

func TestCloseOrbitSpacing_RephasesClocksOnce(t *testing.T) {
	sats, _ := newTestConstellation(11)
	base := time.Unix(1000, 0)
	for _, s := range sats {
		s.LocalClock = base
	}
	c := NewCloseOrbitSpacing(5, 0, float64Ptr(540))
	c.Initialize(sats)

	assert.Equal(t, base, sats[0].LocalClock)
	assert.Equal(t, base, sats[1].LocalClock) // intra-cluster dt=0
	assert.Equal(t, base.Add(540*time.Second), sats[5].LocalClock)

	// Idempotent: calling Initialize again must not re-advance clocks.
	c.Initialize(sats)
	assert.Equal(t, base.Add(540*time.Second), sats[5].LocalClock)
}

func TestCloseOrbitSpacing_BehavesLikeBentPipeAfterInit(t *testing.T) {
	sats, sensors := newTestConstellation(2)
	c := NewCloseOrbitSpacing(5, 0, float64Ptr(540))
	c.Initialize(sats)
	thresholds := map[SatelliteID]float64{}
	sink := &RecordingSink{}

	require.True(t, c.ShouldTrigger(ECIPosn{}, ECIPosn{}, time.Time{}, time.Time{}, 10, 5, sats[0].ID, sats))
	c.Execute(sats, sensors, thresholds, 4.0, time.Unix(1, 0), sink)

	for _, sn := range sensors {
		assert.True(t, sn.SenseTrigger)
	}
}

func TestCloseOrbitSpacing_NilInterDtSecUsesDefault(t *testing.T) {
	c := NewCloseOrbitSpacing(5, 0, nil)
	assert.Equal(t, 540.0, c.interDtSec)
}

func TestCloseOrbitSpacing_ExplicitZeroInterDtSecIsHonored(t *testing.T) {
	c := NewCloseOrbitSpacing(5, 0, float64Ptr(0))
	assert.Equal(t, 0.0, c.interDtSec)
}
