package loader

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadSensorConfig_ParsesDataLine(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sensor.dat", "bits-per-sense,width,height,bpp,max_buffer_mb\n8000000,1920,1080,8,500\n")

	cfg, err := LoadSensorConfig(dir)
	if err != nil {
		t.Fatalf("LoadSensorConfig: %v", err)
	}
	if cfg.BitsPerSense != 8000000 {
		t.Errorf("BitsPerSense = %d, want 8000000", cfg.BitsPerSense)
	}
	if cfg.ImageWidthPx != 1920 || cfg.ImageHeightPx != 1080 {
		t.Errorf("dims = %dx%d, want 1920x1080", cfg.ImageWidthPx, cfg.ImageHeightPx)
	}
	if cfg.MaxBufferMB != 500 {
		t.Errorf("MaxBufferMB = %f, want 500", cfg.MaxBufferMB)
	}
}

func TestSensorConfig_MaxBufferBits_ZeroIsUnbounded(t *testing.T) {
	cfg := SensorConfig{MaxBufferMB: 0}
	if cfg.MaxBufferBits() != ^uint64(0) {
		t.Errorf("MaxBufferBits() = %d, want max uint64", cfg.MaxBufferBits())
	}
}

func TestLoadConstellationCount_ParsesCount(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "constellation.dat", "count\n11\n")

	count, err := LoadConstellationCount(dir)
	if err != nil {
		t.Fatalf("LoadConstellationCount: %v", err)
	}
	if count != 11 {
		t.Errorf("count = %d, want 11", count)
	}
}

func TestLoadConstellationCount_RejectsZero(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "constellation.dat", "count\n0\n")

	if _, err := LoadConstellationCount(dir); err == nil {
		t.Fatal("expected an error for a zero satellite count")
	}
}

func TestLoadSensorConfig_MissingFileErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadSensorConfig(dir); err == nil {
		t.Fatal("expected an error for a missing sensor.dat")
	}
}
