// Package config loads the optional tuning overrides file accepted by
// -tuning. Fields are pointers so a partial JSON document leaves the
// untouched knobs at their documented default, which the Get* accessors
// return.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// TuningConfig overrides the simulator's numeric knobs. All fields are
// optional; omitted fields fall back to the defaults documented on their
// Get* accessor.
type TuningConfig struct {
	ThreshCoeff        *float64 `json:"thresh_coeff,omitempty"`
	LinkRateBps        *float64 `json:"link_rate_bps,omitempty"`
	MinConnectionSteps *int     `json:"min_connection_steps,omitempty"`
	ClusterSize        *int     `json:"cluster_size,omitempty"`
	IntraDtSec         *float64 `json:"intra_dt_sec,omitempty"`
	InterDtSec         *float64 `json:"inter_dt_sec,omitempty"`
	ElevationMaskDeg   *float64 `json:"elevation_mask_deg,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with every field nil, i.e. "use
// all defaults".
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The path must end
// in .json and the file must be under 1MB; fields omitted from the JSON
// retain their documented defaults.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("tuning file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat tuning file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("tuning file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read tuning file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse tuning JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning config: %w", err)
	}

	return cfg, nil
}

// Validate rejects values that can never be legal regardless of which
// spacing strategy or link policy consumes them.
func (c *TuningConfig) Validate() error {
	if c.ThreshCoeff != nil && *c.ThreshCoeff <= 0 {
		return fmt.Errorf("thresh_coeff must be positive, got %f", *c.ThreshCoeff)
	}
	if c.LinkRateBps != nil && *c.LinkRateBps < 0 {
		return fmt.Errorf("link_rate_bps must be non-negative, got %f", *c.LinkRateBps)
	}
	if c.MinConnectionSteps != nil && *c.MinConnectionSteps < 0 {
		return fmt.Errorf("min_connection_steps must be non-negative, got %d", *c.MinConnectionSteps)
	}
	if c.ClusterSize != nil && *c.ClusterSize < 1 {
		return fmt.Errorf("cluster_size must be at least 1, got %d", *c.ClusterSize)
	}
	return nil
}

// GetThreshCoeff returns thresh_coeff or the default.
func (c *TuningConfig) GetThreshCoeff() float64 {
	if c.ThreshCoeff == nil {
		return 0.001
	}
	return *c.ThreshCoeff
}

// GetLinkRateBps returns link_rate_bps or the default.
func (c *TuningConfig) GetLinkRateBps() float64 {
	if c.LinkRateBps == nil {
		return 1e8 // 100 Mbps
	}
	return *c.LinkRateBps
}

// GetMinConnectionSteps returns min_connection_steps or the default (30,
// per the downlink scheduling contract).
func (c *TuningConfig) GetMinConnectionSteps() int {
	if c.MinConnectionSteps == nil {
		return 30
	}
	return *c.MinConnectionSteps
}

// GetClusterSize returns cluster_size or the default used by the
// close-orbit-spaced strategy.
func (c *TuningConfig) GetClusterSize() int {
	if c.ClusterSize == nil {
		return 5
	}
	return *c.ClusterSize
}

// GetIntraDtSec returns intra_dt_sec or the default.
func (c *TuningConfig) GetIntraDtSec() float64 {
	if c.IntraDtSec == nil {
		return 0
	}
	return *c.IntraDtSec
}

// GetInterDtSec returns inter_dt_sec or the default.
func (c *TuningConfig) GetInterDtSec() float64 {
	if c.InterDtSec == nil {
		return 540
	}
	return *c.InterDtSec
}

// GetElevationMaskDeg returns elevation_mask_deg or the default (0:
// anything above the local horizon is visible).
func (c *TuningConfig) GetElevationMaskDeg() float64 {
	if c.ElevationMaskDeg == nil {
		return 0
	}
	return *c.ElevationMaskDeg
}
