package experiment

import (
	"time"

	"github.com/banshee-data/fitts.report/internal/fitts"
)

// Sample is one per-frame observation. It is immutable once recorded
// and owned by the trial that was running when the frame rendered.
//
// Pupil and HMD fields are pointer optionals: desktop configurations
// and eye trackers without pupilometry leave them nil, which the store
// maps to NULL columns rather than sentinel values.
type Sample struct {
	FrameIndex int       `json:"frame_index"`
	TimeMs     float64   `json:"time_ms"` // since trial start
	CapturedAt time.Time `json:"captured_at"`

	Cursor       fitts.Point `json:"cursor"`
	Gaze         fitts.Point `json:"gaze"`
	HeadMovement float64     `json:"head_movement"`

	PupilLeftMm  *float64     `json:"pupil_left_mm,omitempty"`
	PupilRightMm *float64     `json:"pupil_right_mm,omitempty"`
	HMDPosition  *fitts.Point `json:"hmd_position,omitempty"`
	HMDRotation  *fitts.Point `json:"hmd_rotation,omitempty"` // Euler degrees
}
