// Package telemetry computes summary statistics over a finished (or
// in-progress) simulation's per-satellite time series. It is a read-side
// view only: it never mutates orbitsim state and never replaces the CSV or
// sqlite log streams, it just aggregates what they already recorded.
package telemetry

import (
	"sort"

	"github.com/banshee-data/orbitwatch/orbitsim"
	"gonum.org/v1/gonum/stat"
)

// SatelliteSummary reports aggregate statistics for one satellite's run.
type SatelliteSummary struct {
	SatID            orbitsim.SatelliteID
	MeanBuffered     float64
	P50Buffered      float64
	P85Buffered      float64
	P98Buffered      float64
	MeanLostPerStep  float64
	CumulativeLostMB float64
	DrainedTotalBits uint64
}

// Series is the minimal read-only view telemetry needs from a simulation;
// *orbitsim.Simulation satisfies it directly.
type Series interface {
	Satellites() []*orbitsim.Satellite
	BufferedHistory(id orbitsim.SatelliteID) []uint64
	LostHistory(id orbitsim.SatelliteID) []uint64
	DrainedTotal(id orbitsim.SatelliteID) uint64
}

const bitsPerMB = 8 * 1024 * 1024

// Summarize computes one SatelliteSummary per satellite, in constellation
// order, the same percentile aggregation the reference repo's rollup path
// runs over speed samples: sort the series, then read p50/p85/p98 via
// stat.Quantile with the Empirical estimator.
func Summarize(series Series) []SatelliteSummary {
	sats := series.Satellites()
	out := make([]SatelliteSummary, 0, len(sats))

	for _, sat := range sats {
		buffered := series.BufferedHistory(sat.ID)
		lost := series.LostHistory(sat.ID)

		summary := SatelliteSummary{
			SatID:            sat.ID,
			DrainedTotalBits: series.DrainedTotal(sat.ID),
		}

		if len(buffered) > 0 {
			sorted := toFloat64s(buffered)
			sort.Float64s(sorted)
			summary.MeanBuffered = stat.Mean(sorted, nil)
			summary.P50Buffered = stat.Quantile(0.5, stat.Empirical, sorted, nil)
			summary.P85Buffered = stat.Quantile(0.85, stat.Empirical, sorted, nil)
			summary.P98Buffered = stat.Quantile(0.98, stat.Empirical, sorted, nil)
		}

		if len(lost) > 0 {
			deltas := perStepDeltas(lost)
			summary.MeanLostPerStep = stat.Mean(deltas, nil)
			summary.CumulativeLostMB = float64(lost[len(lost)-1]) / bitsPerMB
		}

		out = append(out, summary)
	}

	return out
}

func toFloat64s(vals []uint64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = float64(v)
	}
	return out
}

// perStepDeltas turns a cumulative series into per-step increments, since
// TotalBitsLost only ever grows (P3) and the mean-per-step figure needs the
// step deltas, not the running total.
func perStepDeltas(cumulative []uint64) []float64 {
	out := make([]float64, len(cumulative))
	var prev uint64
	for i, v := range cumulative {
		out[i] = float64(v - prev)
		prev = v
	}
	return out
}
