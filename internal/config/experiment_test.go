package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/fitts.report/internal/units"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := EmptyExperimentConfig()

	assert.Equal(t, []float64{100, 200, 400}, cfg.GetAmplitudesMm())
	assert.Equal(t, []float64{20, 40}, cfg.GetWidthsMm())
	assert.Equal(t, 9, cfg.GetTrialsPerSequence())
	assert.True(t, cfg.GetScoreMissAsError())
	assert.False(t, cfg.GetCapturePupil())
	assert.False(t, cfg.GetCaptureHMD())
	assert.Equal(t, units.MM, cfg.GetDistanceUnits())

	geom := cfg.GetDisplayGeometry()
	assert.InDelta(t, 3.78, geom.PixelsPerMm, 1e-9)
	assert.InDelta(t, 600, geom.ViewingDistanceMm, 1e-9)
}

func TestLoadPartialConfig(t *testing.T) {
	path := writeConfig(t, "partial.json", `{"widths_mm": [30], "capture_pupil": true}`)

	cfg, err := LoadExperimentConfig(path)
	require.NoError(t, err)

	// Overridden fields.
	assert.Equal(t, []float64{30}, cfg.GetWidthsMm())
	assert.True(t, cfg.GetCapturePupil())

	// Untouched fields keep defaults.
	assert.Equal(t, []float64{100, 200, 400}, cfg.GetAmplitudesMm())
	assert.Equal(t, 9, cfg.GetTrialsPerSequence())
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	path := writeConfig(t, "config.yaml", `{}`)
	_, err := LoadExperimentConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative amplitude", `{"amplitudes_mm": [-100]}`},
		{"zero width", `{"widths_mm": [0]}`},
		{"single-trial ring", `{"trials_per_sequence": 1}`},
		{"unknown units", `{"distance_units": "furlongs"}`},
		{"negative pixel density", `{"pixels_per_mm": -1}`},
		{"zero viewing distance", `{"viewing_distance_mm": 0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "bad.json", tt.content)
			_, err := LoadExperimentConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestDefaultsFileIsValid(t *testing.T) {
	cfg, err := LoadExperimentConfig("../../" + DefaultConfigPath)
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}
