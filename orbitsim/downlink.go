package orbitsim

import "time"

// DownlinkResult records one ground station's drain outcome for a step, the
// tuple the accountant passes on to the log emitter.
type DownlinkResult struct {
	GroundID GroundStationID
	SatID    SatelliteID
	Drained  uint64
}

// DrainConnected applies a drain rate to the connected sensor's buffer for
// exactly one ground station. linkRateBps is in bits per second; the amount
// requested is linkRateBps * stepDuration, capped by Sensor.DrainBuffer at
// whatever is actually buffered.
func DrainConnected(gndID GroundStationID, satID SatelliteID, sensor *Sensor, linkRateBps float64, stepDuration time.Duration) DownlinkResult {
	requested := uint64(linkRateBps * stepDuration.Seconds())
	drained := sensor.DrainBuffer(requested)
	return DownlinkResult{GroundID: gndID, SatID: satID, Drained: drained}
}
