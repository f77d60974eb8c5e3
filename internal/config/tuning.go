package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the runtime-tunable parameters of the rep
// counter. Per-exercise thresholds are fixed in the registry and are not
// part of this document.
type TuningConfig struct {
	// Pose input
	VisibilityThreshold *float64 `json:"visibility_threshold,omitempty"`
	HistoryLength       *int     `json:"history_length,omitempty"`

	// Bar detector params
	BarMaxAge            *string  `json:"bar_max_age,omitempty"` // duration string like "600ms"
	BarSmoothing         *float64 `json:"bar_smoothing,omitempty"`
	BarROIFraction       *float64 `json:"bar_roi_fraction,omitempty"`
	BarMinLengthFraction *float64 `json:"bar_min_length_fraction,omitempty"`
	BarMaxRowDeltaPx     *int     `json:"bar_max_row_delta_px,omitempty"`

	// Calibration windows
	CalibrationDuration    *string `json:"calibration_duration,omitempty"`     // push-up, like "3s"
	JumpingJackCalibration *string `json:"jumping_jack_calibration,omitempty"` // like "2s"

	// Display
	WarningDisplayLimit *int `json:"warning_display_limit,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field set to the
// same values as config/tuning.defaults.json.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		VisibilityThreshold:    ptrFloat64(defaultVisibilityThreshold),
		HistoryLength:          ptrInt(defaultHistoryLength),
		BarMaxAge:              ptrString(defaultBarMaxAge.String()),
		BarSmoothing:           ptrFloat64(defaultBarSmoothing),
		BarROIFraction:         ptrFloat64(defaultBarROIFraction),
		BarMinLengthFraction:   ptrFloat64(defaultBarMinLengthFraction),
		BarMaxRowDeltaPx:       ptrInt(defaultBarMaxRowDeltaPx),
		CalibrationDuration:    ptrString(defaultCalibrationDuration.String()),
		JumpingJackCalibration: ptrString(defaultJumpingJackCalibration.String()),
		WarningDisplayLimit:    ptrInt(defaultWarningDisplayLimit),
	}
}

const (
	defaultVisibilityThreshold    = 0.5
	defaultHistoryLength          = 120
	defaultBarMaxAge              = 600 * time.Millisecond
	defaultBarSmoothing           = 0.7
	defaultBarROIFraction         = 0.65
	defaultBarMinLengthFraction   = 0.35
	defaultBarMaxRowDeltaPx       = 8
	defaultCalibrationDuration    = 3 * time.Second
	defaultJumpingJackCalibration = 2 * time.Second
	defaultWarningDisplayLimit    = 3
)

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file fall back to their defaults through the
// Get* accessors, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,          // from cmd/
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/bar/cvedge/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	fractions := []struct {
		name string
		v    *float64
	}{
		{"visibility_threshold", c.VisibilityThreshold},
		{"bar_roi_fraction", c.BarROIFraction},
		{"bar_min_length_fraction", c.BarMinLengthFraction},
	}
	for _, f := range fractions {
		if f.v != nil && (*f.v <= 0 || *f.v > 1) {
			return fmt.Errorf("%s must be in (0, 1], got %f", f.name, *f.v)
		}
	}
	// The detector keeps this share of the previous row, so 1 would never move.
	if c.BarSmoothing != nil && (*c.BarSmoothing < 0 || *c.BarSmoothing >= 1) {
		return fmt.Errorf("bar_smoothing must be in [0, 1), got %f", *c.BarSmoothing)
	}

	if c.BarMaxRowDeltaPx != nil && *c.BarMaxRowDeltaPx < 0 {
		return fmt.Errorf("bar_max_row_delta_px must be non-negative, got %d", *c.BarMaxRowDeltaPx)
	}

	durations := []struct {
		name string
		v    *string
	}{
		{"bar_max_age", c.BarMaxAge},
		{"calibration_duration", c.CalibrationDuration},
		{"jumping_jack_calibration", c.JumpingJackCalibration},
	}
	for _, d := range durations {
		if d.v == nil || *d.v == "" {
			continue
		}
		parsed, err := time.ParseDuration(*d.v)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", d.name, *d.v, err)
		}
		if parsed <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, *d.v)
		}
	}

	if c.WarningDisplayLimit != nil && *c.WarningDisplayLimit < 0 {
		return fmt.Errorf("warning_display_limit must be non-negative, got %d", *c.WarningDisplayLimit)
	}
	if c.HistoryLength != nil && *c.HistoryLength < 0 {
		return fmt.Errorf("history_length must be non-negative, got %d", *c.HistoryLength)
	}

	return nil
}

func durationOr(s *string, def time.Duration) time.Duration {
	if s == nil || *s == "" {
		return def
	}
	d, err := time.ParseDuration(*s)
	if err != nil || d <= 0 {
		return def // default on parse error
	}
	return d
}

// GetVisibilityThreshold returns the minimum landmark visibility or the default.
func (c *TuningConfig) GetVisibilityThreshold() float64 {
	if c.VisibilityThreshold == nil {
		return defaultVisibilityThreshold
	}
	return *c.VisibilityThreshold
}

// GetHistoryLength returns the pose history capacity or the default.
func (c *TuningConfig) GetHistoryLength() int {
	if c.HistoryLength == nil || *c.HistoryLength == 0 {
		return defaultHistoryLength
	}
	return *c.HistoryLength
}

// GetBarMaxAge parses and returns BarMaxAge as a time.Duration.
func (c *TuningConfig) GetBarMaxAge() time.Duration {
	return durationOr(c.BarMaxAge, defaultBarMaxAge)
}

// GetBarSmoothing returns the bar EMA history weight or the default.
func (c *TuningConfig) GetBarSmoothing() float64 {
	if c.BarSmoothing == nil {
		return defaultBarSmoothing
	}
	return *c.BarSmoothing
}

func (c *TuningConfig) GetBarROIFraction() float64 {
	if c.BarROIFraction == nil {
		return defaultBarROIFraction
	}
	return *c.BarROIFraction
}

func (c *TuningConfig) GetBarMinLengthFraction() float64 {
	if c.BarMinLengthFraction == nil {
		return defaultBarMinLengthFraction
	}
	return *c.BarMinLengthFraction
}

func (c *TuningConfig) GetBarMaxRowDeltaPx() int {
	if c.BarMaxRowDeltaPx == nil {
		return defaultBarMaxRowDeltaPx
	}
	return *c.BarMaxRowDeltaPx
}

// GetCalibrationDuration parses and returns the push-up calibration window.
func (c *TuningConfig) GetCalibrationDuration() time.Duration {
	return durationOr(c.CalibrationDuration, defaultCalibrationDuration)
}

// GetJumpingJackCalibration parses and returns the jumping-jack calibration window.
func (c *TuningConfig) GetJumpingJackCalibration() time.Duration {
	return durationOr(c.JumpingJackCalibration, defaultJumpingJackCalibration)
}

// GetWarningDisplayLimit returns how many warnings a snapshot carries.
func (c *TuningConfig) GetWarningDisplayLimit() int {
	if c.WarningDisplayLimit == nil {
		return defaultWarningDisplayLimit
	}
	return *c.WarningDisplayLimit
}
