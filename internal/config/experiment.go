// Package config loads the experiment design configuration: the
// amplitude/width conditions, ring size and telemetry capture toggles
// the host application runs a session with.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/fitts.report/internal/units"
)

// DefaultConfigPath is the path to the canonical experiment defaults file.
// This is the single source of truth for all default design values.
const DefaultConfigPath = "config/experiment.defaults.json"

// ExperimentConfig represents the root configuration for a session.
// Scalar fields are pointers so a partial JSON file only overrides what
// it mentions; the Get* accessors supply defaults for the rest.
type ExperimentConfig struct {
	// Ring geometry conditions. Each sequence pairs one amplitude with
	// one width; the cross product is the usual design.
	AmplitudesMm []float64 `json:"amplitudes_mm,omitempty"`
	WidthsMm     []float64 `json:"widths_mm,omitempty"`

	TrialsPerSequence *int `json:"trials_per_sequence,omitempty"`

	// Error scoring: when true, a selection outside the nominal target
	// circle is counted as an error even if the host reported a hit.
	ScoreMissAsError *bool `json:"score_miss_as_error,omitempty"`

	// Telemetry capture toggles for hardware-dependent channels.
	CapturePupil *bool `json:"capture_pupil,omitempty"`
	CaptureHMD   *bool `json:"capture_hmd,omitempty"`

	// Reporting units and display geometry for conversion.
	DistanceUnits     *string  `json:"distance_units,omitempty"`
	PixelsPerMm       *float64 `json:"pixels_per_mm,omitempty"`
	ViewingDistanceMm *float64 `json:"viewing_distance_mm,omitempty"`
}

// EmptyExperimentConfig returns an ExperimentConfig with all fields unset.
// Use LoadExperimentConfig to load actual values from a file.
func EmptyExperimentConfig() *ExperimentConfig {
	return &ExperimentConfig{}
}

// LoadExperimentConfig loads an ExperimentConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under
// the max file size. Fields omitted from the JSON file fall back to
// defaults, so partial configs are safe.
func LoadExperimentConfig(path string) (*ExperimentConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyExperimentConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent
// directories. Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *ExperimentConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadExperimentConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *ExperimentConfig) Validate() error {
	for _, a := range c.AmplitudesMm {
		if a <= 0 {
			return fmt.Errorf("amplitudes_mm must be positive, got %f", a)
		}
	}
	for _, w := range c.WidthsMm {
		if w <= 0 {
			return fmt.Errorf("widths_mm must be positive, got %f", w)
		}
	}

	// Effective width needs the n-1 divisor, so a ring of one trial can
	// never be aggregated.
	if c.TrialsPerSequence != nil && *c.TrialsPerSequence < 2 {
		return fmt.Errorf("trials_per_sequence must be at least 2, got %d", *c.TrialsPerSequence)
	}

	if c.DistanceUnits != nil && !units.IsValid(*c.DistanceUnits) {
		return fmt.Errorf("distance_units must be one of %s, got %q",
			units.GetValidUnitsString(), *c.DistanceUnits)
	}

	if c.PixelsPerMm != nil && *c.PixelsPerMm <= 0 {
		return fmt.Errorf("pixels_per_mm must be positive, got %f", *c.PixelsPerMm)
	}
	if c.ViewingDistanceMm != nil && *c.ViewingDistanceMm <= 0 {
		return fmt.Errorf("viewing_distance_mm must be positive, got %f", *c.ViewingDistanceMm)
	}

	return nil
}

// GetAmplitudesMm returns the configured amplitudes or the default ring set.
func (c *ExperimentConfig) GetAmplitudesMm() []float64 {
	if len(c.AmplitudesMm) > 0 {
		return c.AmplitudesMm
	}
	return []float64{100, 200, 400}
}

// GetWidthsMm returns the configured widths or the default set.
func (c *ExperimentConfig) GetWidthsMm() []float64 {
	if len(c.WidthsMm) > 0 {
		return c.WidthsMm
	}
	return []float64{20, 40}
}

// GetTrialsPerSequence returns the ring size, defaulting to 9 targets.
func (c *ExperimentConfig) GetTrialsPerSequence() int {
	if c.TrialsPerSequence != nil {
		return *c.TrialsPerSequence
	}
	return 9
}

// GetScoreMissAsError returns the error scoring rule, defaulting to true.
func (c *ExperimentConfig) GetScoreMissAsError() bool {
	if c.ScoreMissAsError != nil {
		return *c.ScoreMissAsError
	}
	return true
}

// GetCapturePupil returns whether pupilometry channels are recorded.
func (c *ExperimentConfig) GetCapturePupil() bool {
	if c.CapturePupil != nil {
		return *c.CapturePupil
	}
	return false
}

// GetCaptureHMD returns whether HMD pose channels are recorded.
func (c *ExperimentConfig) GetCaptureHMD() bool {
	if c.CaptureHMD != nil {
		return *c.CaptureHMD
	}
	return false
}

// GetDistanceUnits returns the reporting units, defaulting to millimetres.
func (c *ExperimentConfig) GetDistanceUnits() string {
	if c.DistanceUnits != nil {
		return *c.DistanceUnits
	}
	return units.MM
}

// GetDisplayGeometry returns the display geometry for unit conversion.
func (c *ExperimentConfig) GetDisplayGeometry() units.DisplayGeometry {
	g := units.DisplayGeometry{
		PixelsPerMm:       3.78, // 96 DPI
		ViewingDistanceMm: 600,
	}
	if c.PixelsPerMm != nil {
		g.PixelsPerMm = *c.PixelsPerMm
	}
	if c.ViewingDistanceMm != nil {
		g.ViewingDistanceMm = *c.ViewingDistanceMm
	}
	return g
}
