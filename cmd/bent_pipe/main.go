// Command bent_pipe runs the constellation downlink simulator end to end:
// load config_dir's sensor.dat and constellation.dat, build the requested
// link policy and spacing strategy, run the step loop to completion, and
// write the resulting CSV logs under log_dir (optionally mirrored into the
// sqlite database named by -sqlite).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/banshee-data/orbitwatch/internal/config"
	"github.com/banshee-data/orbitwatch/internal/csvlog"
	"github.com/banshee-data/orbitwatch/internal/loader"
	"github.com/banshee-data/orbitwatch/internal/orbitlog"
	"github.com/banshee-data/orbitwatch/internal/propagator"
	"github.com/banshee-data/orbitwatch/internal/runid"
	"github.com/banshee-data/orbitwatch/internal/store"
	"github.com/banshee-data/orbitwatch/internal/telemetry"
	"github.com/banshee-data/orbitwatch/internal/version"
	"github.com/banshee-data/orbitwatch/internal/visibility"
	"github.com/banshee-data/orbitwatch/orbitsim"
)

var (
	tuningPath  = flag.String("tuning", "", "Path to a JSON tuning overrides file")
	sqlitePath  = flag.String("sqlite", "", "Path to a sqlite database to mirror log output into (optional)")
	summary     = flag.Bool("summary", false, "Print a telemetry summary to stdout after the run")
	versionFlag = flag.Bool("version", false, "Print version information and exit")
	steps       = flag.Int("steps", 1000, "Number of simulation steps to run")
	stepSeconds = flag.Float64("step-seconds", 1.0, "Duration of one simulation step, in seconds")
)

const defaultPolicyName = "sticky"
const defaultSpacingName = "bent-pipe"

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Printf("bent_pipe v%s (git SHA: %s)\n", version.Version, version.GitSHA)
		return
	}

	args := flag.Args()
	if len(args) < 2 {
		log.Fatalf("usage: bent_pipe <config_dir> <log_dir> [policy] [spacing]")
	}
	configDir := args[0]
	logDir := args[1]
	policyName := defaultPolicyName
	if len(args) >= 3 {
		policyName = args[2]
	}
	spacingName := defaultSpacingName
	if len(args) >= 4 {
		spacingName = args[3]
	}

	if err := run(configDir, logDir, policyName, spacingName); err != nil {
		log.Fatalf("bent_pipe: %v", err)
	}
}

func run(configDir, logDir, policyName, spacingName string) error {
	tuning := config.EmptyTuningConfig()
	if *tuningPath != "" {
		loaded, err := config.LoadTuningConfig(*tuningPath)
		if err != nil {
			return fmt.Errorf("load tuning config: %w", err)
		}
		tuning = loaded
	}

	sensorCfg, err := loader.LoadSensorConfig(configDir)
	if err != nil {
		return fmt.Errorf("load sensor config: %w", err)
	}
	satCount, err := loader.LoadConstellationCount(configDir)
	if err != nil {
		return fmt.Errorf("load constellation config: %w", err)
	}

	policy, err := buildPolicy(policyName)
	if err != nil {
		return err
	}
	spacing, err := buildSpacing(spacingName, satCount, tuning)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	runID := runid.New()
	csvSink := csvlog.NewSink(logDir, runID)
	defer csvSink.Close()

	var sink orbitsim.EventSink = csvSink
	if *sqlitePath != "" {
		sqliteStore, err := store.Open(*sqlitePath, runID, policyName, spacingName)
		if err != nil {
			return fmt.Errorf("open sqlite store: %w", err)
		}
		defer sqliteStore.Close()
		sink = multiSink{csvSink, sqliteStore}
	}

	start := time.Now()
	sats, sensors, planes := buildConstellation(satCount, sensorCfg, start)

	prop := propagator.NewCircularPropagator(planes)
	stations := []visibility.Station{{ID: 1, Posn: orbitsim.ECIPosn{X: orbitsim.EarthRadiusKM}}}
	vis := visibility.NewElevationMaskOracle(sats, stations, degreesToRadians(tuning.GetElevationMaskDeg()))

	sim, err := orbitsim.NewSimulation(orbitsim.Config{
		Satellites:         sats,
		GroundStations:     []*orbitsim.GroundStation{{ID: 1}},
		Sensors:            sensors,
		Spacing:            spacing,
		Policy:             policy,
		Propagator:         prop,
		Visibility:         vis,
		Sink:               sink,
		Start:              start,
		StepDuration:       time.Duration(*stepSeconds * float64(time.Second)),
		ThreshCoeff:        tuning.GetThreshCoeff(),
		LinkRateBps:        tuning.GetLinkRateBps(),
		MinConnectionSteps: int64(tuning.GetMinConnectionSteps()),
	})
	if err != nil {
		return fmt.Errorf("build simulation: %w", err)
	}

	if _, err := sim.Advance(*steps); err != nil {
		return fmt.Errorf("advance simulation: %w", err)
	}

	orbitlog.Logf("bent_pipe: run %s complete, %d steps, policy=%s spacing=%s", runID, *steps, policyName, spacingName)

	if *summary {
		printSummary(telemetry.Summarize(sim))
	}

	return nil
}

func degreesToRadians(deg float64) float64 {
	return deg * 3.141592653589793 / 180
}

func buildConstellation(count int, sensorCfg loader.SensorConfig, start time.Time) ([]*orbitsim.Satellite, map[orbitsim.SatelliteID]*orbitsim.Sensor, []propagator.OrbitalPlane) {
	sats := make([]*orbitsim.Satellite, count)
	sensors := make(map[orbitsim.SatelliteID]*orbitsim.Sensor, count)
	planes := make([]propagator.OrbitalPlane, count)

	const altitudeKM = 550
	for i := 0; i < count; i++ {
		id := orbitsim.SatelliteID(i + 1)
		phase := 2 * 3.141592653589793 * float64(i) / float64(count)
		plane := propagator.OrbitalPlane{SatID: id, AltitudeKM: altitudeKM, Inclination: 0.9, RAAN: 0, PhaseOffset: phase}
		planes[i] = plane

		posn := orbitsim.ECIPosn{X: orbitsim.EarthRadiusKM + altitudeKM}
		sats[i] = &orbitsim.Satellite{ID: id, Posn: posn, LocalClock: start}
		sensors[id] = orbitsim.NewSensor(id, sensorCfg.BitsPerSense, sensorCfg.MaxBufferBits(), posn, start)
	}

	return sats, sensors, planes
}

func buildPolicy(name string) (orbitsim.LinkPolicy, error) {
	switch strings.ToLower(name) {
	case "sticky", "greedy":
		return orbitsim.NewStickyPolicy(), nil
	case "fifo":
		return orbitsim.NewFIFOPolicy(), nil
	case "roundrobin":
		return orbitsim.NewRoundRobinPolicy(), nil
	case "random":
		return orbitsim.NewRandomPolicy(), nil
	case "sjf", "shortestjobfirst":
		return orbitsim.NewSJFPolicy(), nil
	case "srtf", "shortestremainingtime":
		return orbitsim.NewSRTFPolicy(), nil
	default:
		return nil, fmt.Errorf("Unknown link policy: %s. Valid options: sticky, greedy, fifo, roundrobin, random, sjf, shortestjobfirst, srtf, shortestremainingtime", name)
	}
}

func buildSpacing(name string, satCount int, tuning *config.TuningConfig) (orbitsim.SpacingStrategy, error) {
	switch strings.ToLower(name) {
	case "bent-pipe", "bentpipe", "close-spaced", "close", "closed":
		return orbitsim.NewBentPipeSpacing(), nil
	case "frame-spaced", "frame":
		return orbitsim.NewFrameSpacing(satCount), nil
	case "orbit-spaced", "orbit":
		return orbitsim.NewOrbitSpacing(), nil
	case "close-orbit-spaced":
		return orbitsim.NewCloseOrbitSpacing(tuning.GetClusterSize(), tuning.GetIntraDtSec(), tuning.InterDtSec), nil
	default:
		return nil, fmt.Errorf("Unknown spacing strategy: %s. Valid options: bent-pipe, bentpipe, close-spaced, close, closed, frame-spaced, frame, orbit-spaced, orbit, close-orbit-spaced", name)
	}
}

func printSummary(summaries []telemetry.SatelliteSummary) {
	fmt.Println("sat_id,mean_buffered,p50_buffered,p85_buffered,p98_buffered,mean_lost_per_step,cumulative_lost_mb,drained_total_bits")
	for _, s := range summaries {
		fmt.Printf("%d,%.2f,%.2f,%.2f,%.2f,%.2f,%.4f,%d\n",
			s.SatID, s.MeanBuffered, s.P50Buffered, s.P85Buffered, s.P98Buffered, s.MeanLostPerStep, s.CumulativeLostMB, s.DrainedTotalBits)
	}
}

// multiSink fans every event/measurement out to more than one sink, used
// when -sqlite is set so the CSV contract stays the default output and
// sqlite is a strict addition.
type multiSink []orbitsim.EventSink

func (m multiSink) EmitEvent(name string, now time.Time) {
	for _, sink := range m {
		sink.EmitEvent(name, now)
	}
}

func (m multiSink) EmitMeasurement(stream string, value float64, now time.Time) {
	for _, sink := range m {
		sink.EmitMeasurement(stream, value, now)
	}
}
