// Package loader parses the two configuration-directory data files
// bent_pipe reads at startup: sensor.dat and constellation.dat. Both are
// header-plus-one-data-line CSV, the same skip-the-header-row idiom the
// reference sensor-config CSV loaders use.
package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// SensorConfig is the single data line of sensor.dat. BitsPerSense and
// MaxBufferMB are the fields the simulation core consumes; the pixel
// dimensions are read and kept for analytics even though sensing math never
// touches them directly.
type SensorConfig struct {
	BitsPerSense  uint64
	ImageWidthPx  int
	ImageHeightPx int
	BitsPerPixel  int
	MaxBufferMB   float64
}

// MaxBufferBits converts MaxBufferMB to bits. A zero MaxBufferMB means
// "unbounded", reported as the maximum representable uint64.
func (s SensorConfig) MaxBufferBits() uint64 {
	if s.MaxBufferMB <= 0 {
		return ^uint64(0)
	}
	return uint64(s.MaxBufferMB * 8 * 1024 * 1024)
}

// LoadSensorConfig reads sensor.dat from dir: one header line starting with
// "bits-per-sense" (skipped), one CSV data line with five fields.
func LoadSensorConfig(dir string) (SensorConfig, error) {
	records, err := readDataLines(dir, "sensor.dat")
	if err != nil {
		return SensorConfig{}, err
	}
	if len(records) == 0 {
		return SensorConfig{}, fmt.Errorf("loader: sensor.dat has no data line")
	}
	fields := records[0]
	if len(fields) < 5 {
		return SensorConfig{}, fmt.Errorf("loader: sensor.dat data line has %d fields, want 5", len(fields))
	}

	bitsPerSense, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		return SensorConfig{}, fmt.Errorf("loader: bits_per_sense: %w", err)
	}
	width, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return SensorConfig{}, fmt.Errorf("loader: image_width_px: %w", err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return SensorConfig{}, fmt.Errorf("loader: image_height_px: %w", err)
	}
	bpp, err := strconv.Atoi(strings.TrimSpace(fields[3]))
	if err != nil {
		return SensorConfig{}, fmt.Errorf("loader: bits_per_pixel: %w", err)
	}
	maxBufferMB, err := strconv.ParseFloat(strings.TrimSpace(fields[4]), 64)
	if err != nil {
		return SensorConfig{}, fmt.Errorf("loader: max_buffer_mb: %w", err)
	}

	return SensorConfig{
		BitsPerSense:  bitsPerSense,
		ImageWidthPx:  width,
		ImageHeightPx: height,
		BitsPerPixel:  bpp,
		MaxBufferMB:   maxBufferMB,
	}, nil
}

// LoadConstellationCount reads constellation.dat from dir: a "count" header
// line (skipped), one data line beginning with the satellite count.
func LoadConstellationCount(dir string) (int, error) {
	records, err := readDataLines(dir, "constellation.dat")
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("loader: constellation.dat has no data line")
	}
	fields := records[0]
	if len(fields) == 0 {
		return 0, fmt.Errorf("loader: constellation.dat data line is empty")
	}
	count, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return 0, fmt.Errorf("loader: satellite count: %w", err)
	}
	if count <= 0 {
		return 0, fmt.Errorf("loader: satellite count must be positive, got %d", count)
	}
	return count, nil
}

// readDataLines opens dir/name, skips the header row, and returns every
// remaining CSV row.
func readDataLines(dir, name string) ([][]string, error) {
	path := dir + string(os.PathSeparator) + name
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("loader: parse %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("loader: %s has no data line after header", path)
	}
	return records[1:], nil
}
