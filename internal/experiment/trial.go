package experiment

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/fitts.report/internal/fitts"
)

// Trial is one target-acquisition attempt: from the activation of a
// target to its selection. Samples accumulate while the trial is open;
// movement time, center error and final angle are fixed at completion.
type Trial struct {
	TrialID    string `json:"trial_id"`
	SequenceID string `json:"sequence_id"`
	Index      int    `json:"index"` // position in the sequence ring

	From fitts.Point `json:"from"` // previous target center (task axis start)
	To   fitts.Point `json:"to"`   // this trial's target center

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	Selection      fitts.Point `json:"selection"`
	MovementTimeMs float64     `json:"movement_time_ms"`
	CenterErrorMm  float64     `json:"center_error_mm"`
	FinalAngleDeg  float64     `json:"final_angle_deg"`
	IsError        bool        `json:"is_error"`

	Samples []Sample `json:"-"`

	completed bool
}

// newTrial opens a trial on the task axis from -> to.
func newTrial(sequenceID string, index int, from, to fitts.Point, startedAt time.Time) *Trial {
	return &Trial{
		TrialID:    uuid.New().String(),
		SequenceID: sequenceID,
		Index:      index,
		From:       from,
		To:         to,
		StartedAt:  startedAt,
	}
}

// appendSample records one frame observation. Samples arriving after
// completion are rejected; the trial is immutable once finalized.
func (t *Trial) appendSample(s Sample) error {
	if t.completed {
		return fmt.Errorf("trial %s index %d already completed", t.TrialID, t.Index)
	}
	t.Samples = append(t.Samples, s)
	return nil
}

// complete finalizes the trial with the selection point and the
// host-recorded movement time.
func (t *Trial) complete(selection fitts.Point, isError bool, completedAt time.Time, movementTimeMs float64) error {
	if t.completed {
		return fmt.Errorf("trial %s index %d already completed", t.TrialID, t.Index)
	}
	t.Selection = selection
	t.IsError = isError
	t.CompletedAt = completedAt
	t.MovementTimeMs = movementTimeMs
	t.CenterErrorMm = selection.DistanceTo(t.To)
	t.FinalAngleDeg = approachAngleDeg(t.From, t.To, selection)
	t.completed = true
	return nil
}

// Completed reports whether the trial has been finalized.
func (t *Trial) Completed() bool {
	return t.completed
}

// MissedTarget reports whether a selection landed outside a circular
// target of the given nominal width (diameter) centered on target.
// Hosts that score errors by hit-box instead should pass their own flag
// to CompleteTrial.
func MissedTarget(selection, target fitts.Point, widthMm float64) bool {
	return selection.DistanceTo(target) > widthMm/2
}

// approachAngleDeg returns the angle in degrees between the task axis
// and the line actually travelled to the selection point. Zero when the
// selection lands exactly on the axis; undefined geometries return 0.
func approachAngleDeg(from, to, selection fitts.Point) float64 {
	axis := to.Sub(from)
	travel := selection.Sub(from)
	na := axis.Norm()
	nt := travel.Norm()
	if na == 0 || nt == 0 {
		return 0
	}
	cos := axis.Dot(travel) / (na * nt)
	// Clamp against rounding before acos.
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos) * 180 / math.Pi
}
