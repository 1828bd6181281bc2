package experiment

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/fitts.report/internal/fitts"
)

// Sequence is a fixed-amplitude/width ring of trials. Its summary
// statistics are computed once, after every trial in the ring has
// completed.
type Sequence struct {
	SequenceID  string  `json:"sequence_id"`
	SessionID   string  `json:"session_id"`
	Index       int     `json:"index"`
	AmplitudeMm float64 `json:"amplitude_mm"` // nominal center-to-center distance
	WidthMm     float64 `json:"width_mm"`     // nominal target diameter

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	Trials []*Trial `json:"-"`
}

// SequenceResult holds the externally visible per-sequence metrics.
// Fields are single precision; all intermediate math is double
// precision (see internal/fitts).
type SequenceResult struct {
	SequenceID string `json:"sequence_id"`
	SessionID  string `json:"session_id"`
	Index      int    `json:"index"`

	TrialCount int `json:"trial_count"`
	ErrorCount int `json:"error_count"`

	AmplitudeMm       float32 `json:"amplitude_mm"`
	WidthMm           float32 `json:"width_mm"`
	IndexOfDifficulty float32 `json:"index_of_difficulty"` // nominal, bits

	EffectiveAmplitudeMm float32 `json:"effective_amplitude_mm"`
	EffectiveWidthMm     float32 `json:"effective_width_mm"`
	EffectiveID          float32 `json:"effective_id"` // bits

	ErrorRatePercent   float32 `json:"error_rate_percent"`
	MeanMovementTimeMs float32 `json:"mean_movement_time_ms"`
	ThroughputBps      float32 `json:"throughput_bps"` // bits per second
}

// newSequence opens a ring of trials at the given nominal geometry.
func newSequence(sessionID string, index int, amplitudeMm, widthMm float64, startedAt time.Time) *Sequence {
	return &Sequence{
		SequenceID:  uuid.New().String(),
		SessionID:   sessionID,
		Index:       index,
		AmplitudeMm: amplitudeMm,
		WidthMm:     widthMm,
		StartedAt:   startedAt,
	}
}

// Aggregate computes the per-sequence summary statistics from the
// completed trials. Every trial must be completed first; degenerate
// geometry (identical consecutive target centers, or an endpoint spread
// of zero) surfaces as an error rather than NaN or Inf.
func (s *Sequence) Aggregate() (*SequenceResult, error) {
	if len(s.Trials) == 0 {
		return nil, fmt.Errorf("sequence %s has no trials: %w", s.SequenceID, fitts.ErrInsufficientData)
	}

	offsets := make([]float64, 0, len(s.Trials))
	taskAmplitudes := make([]float64, 0, len(s.Trials))
	effectiveAmplitudes := make([]float64, 0, len(s.Trials))
	movementTimesMs := make([]float64, 0, len(s.Trials))
	errorCount := 0

	for _, t := range s.Trials {
		if !t.Completed() {
			return nil, fmt.Errorf("sequence %s trial %d not completed: %w",
				s.SequenceID, t.Index, fitts.ErrInsufficientData)
		}

		dx, err := fitts.ProjectedOffset(t.From, t.To, t.Selection)
		if err != nil {
			return nil, fmt.Errorf("sequence %s trial %d: %w", s.SequenceID, t.Index, err)
		}

		axis := t.From.DistanceTo(t.To)
		offsets = append(offsets, dx)
		taskAmplitudes = append(taskAmplitudes, axis)
		effectiveAmplitudes = append(effectiveAmplitudes, axis+dx)
		movementTimesMs = append(movementTimesMs, t.MovementTimeMs)
		if t.IsError {
			errorCount++
		}
	}

	effectiveWidth, err := fitts.EffectiveWidth(offsets)
	if err != nil {
		return nil, fmt.Errorf("sequence %s: %w", s.SequenceID, err)
	}
	if effectiveWidth == 0 {
		return nil, fmt.Errorf("sequence %s: endpoint spread is zero: %w",
			s.SequenceID, fitts.ErrDegenerateGeometry)
	}

	meanEffectiveAmplitude, err := fitts.Mean(effectiveAmplitudes)
	if err != nil {
		return nil, fmt.Errorf("sequence %s: %w", s.SequenceID, err)
	}
	meanMovementTimeMs, err := fitts.Mean(movementTimesMs)
	if err != nil {
		return nil, fmt.Errorf("sequence %s: %w", s.SequenceID, err)
	}

	throughput, err := fitts.Throughput(taskAmplitudes, offsets, movementTimesMs)
	if err != nil {
		return nil, fmt.Errorf("sequence %s: %w", s.SequenceID, err)
	}

	return &SequenceResult{
		SequenceID: s.SequenceID,
		SessionID:  s.SessionID,
		Index:      s.Index,
		TrialCount: len(s.Trials),
		ErrorCount: errorCount,

		AmplitudeMm:       float32(s.AmplitudeMm),
		WidthMm:           float32(s.WidthMm),
		IndexOfDifficulty: float32(fitts.IndexOfDifficulty(s.AmplitudeMm, s.WidthMm)),

		EffectiveAmplitudeMm: float32(meanEffectiveAmplitude),
		EffectiveWidthMm:     float32(effectiveWidth),
		EffectiveID:          float32(fitts.EffectiveIndexOfDifficulty(meanEffectiveAmplitude, effectiveWidth)),

		ErrorRatePercent:   float32(float64(errorCount) / float64(len(s.Trials)) * 100),
		MeanMovementTimeMs: float32(meanMovementTimeMs),
		ThroughputBps:      float32(throughput),
	}, nil
}
