package telemetry

import (
	"testing"

	"github.com/banshee-data/orbitwatch/orbitsim"
	"github.com/stretchr/testify/assert"
)

type fakeSeries struct {
	sats     []*orbitsim.Satellite
	buffered map[orbitsim.SatelliteID][]uint64
	lost     map[orbitsim.SatelliteID][]uint64
	drained  map[orbitsim.SatelliteID]uint64
}

func (f *fakeSeries) Satellites() []*orbitsim.Satellite { return f.sats }
func (f *fakeSeries) BufferedHistory(id orbitsim.SatelliteID) []uint64 { return f.buffered[id] }
func (f *fakeSeries) LostHistory(id orbitsim.SatelliteID) []uint64     { return f.lost[id] }
func (f *fakeSeries) DrainedTotal(id orbitsim.SatelliteID) uint64      { return f.drained[id] }

func TestSummarize_ComputesPercentilesAndTotals(t *testing.T) {
	series := &fakeSeries{
		sats: []*orbitsim.Satellite{{ID: 1}},
		buffered: map[orbitsim.SatelliteID][]uint64{
			1: {100, 200, 300, 400, 500},
		},
		lost: map[orbitsim.SatelliteID][]uint64{
			1: {0, 0, 10, 10, 20},
		},
		drained: map[orbitsim.SatelliteID]uint64{1: 777},
	}

	summaries := Summarize(series)
	require := assert.New(t)
	require.Len(summaries, 1)

	s := summaries[0]
	require.Equal(orbitsim.SatelliteID(1), s.SatID)
	require.InDelta(300, s.MeanBuffered, 1e-9)
	require.Equal(uint64(777), s.DrainedTotalBits)
	require.Greater(s.CumulativeLostMB, 0.0)
}

func TestSummarize_EmptyHistoryIsZeroValued(t *testing.T) {
	series := &fakeSeries{
		sats:     []*orbitsim.Satellite{{ID: 2}},
		buffered: map[orbitsim.SatelliteID][]uint64{},
		lost:     map[orbitsim.SatelliteID][]uint64{},
		drained:  map[orbitsim.SatelliteID]uint64{},
	}

	summaries := Summarize(series)
	assert.Len(t, summaries, 1)
	assert.Zero(t, summaries[0].MeanBuffered)
	assert.Zero(t, summaries[0].CumulativeLostMB)
}

func TestSummarize_PreservesConstellationOrder(t *testing.T) {
	series := &fakeSeries{
		sats: []*orbitsim.Satellite{{ID: 3}, {ID: 1}, {ID: 2}},
	}
	summaries := Summarize(series)
	assert.Equal(t, []orbitsim.SatelliteID{3, 1, 2}, []orbitsim.SatelliteID{summaries[0].SatID, summaries[1].SatID, summaries[2].SatID})
}
