package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmptyTuningConfig_GettersReturnDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()

	if cfg.GetThreshCoeff() != 0.001 {
		t.Errorf("GetThreshCoeff() default = %f, want 0.001", cfg.GetThreshCoeff())
	}
	if cfg.GetMinConnectionSteps() != 30 {
		t.Errorf("GetMinConnectionSteps() default = %d, want 30", cfg.GetMinConnectionSteps())
	}
	if cfg.GetClusterSize() != 5 {
		t.Errorf("GetClusterSize() default = %d, want 5", cfg.GetClusterSize())
	}
	if cfg.GetInterDtSec() != 540 {
		t.Errorf("GetInterDtSec() default = %f, want 540", cfg.GetInterDtSec())
	}
}

func TestLoadTuningConfig_PartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.json")
	if err := os.WriteFile(path, []byte(`{"thresh_coeff": 0.002, "cluster_size": 8}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadTuningConfig(path)
	if err != nil {
		t.Fatalf("LoadTuningConfig: %v", err)
	}

	if cfg.GetThreshCoeff() != 0.002 {
		t.Errorf("GetThreshCoeff() = %f, want 0.002", cfg.GetThreshCoeff())
	}
	if cfg.GetClusterSize() != 8 {
		t.Errorf("GetClusterSize() = %d, want 8", cfg.GetClusterSize())
	}
	// Untouched fields still report their defaults.
	if cfg.GetMinConnectionSteps() != 30 {
		t.Errorf("GetMinConnectionSteps() = %d, want default 30", cfg.GetMinConnectionSteps())
	}
}

func TestLoadTuningConfig_RejectsNonJSONExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.txt")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadTuningConfig(path); err == nil {
		t.Fatal("expected an error for a non-.json extension")
	}
}

func TestLoadTuningConfig_RejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.json")
	if err := os.WriteFile(path, []byte(`{"thresh_coeff": -1}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadTuningConfig(path); err == nil {
		t.Fatal("expected validation to reject a negative thresh_coeff")
	}
}
