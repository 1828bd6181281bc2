package experiment

import (
	"time"

	"github.com/google/uuid"
)

// Session groups the sequences recorded in one sitting, with the
// participant and condition labels the analysis keys on. Block and
// experiment scheduling above this level is the host application's
// concern.
type Session struct {
	SessionID   string    `json:"session_id"`
	Participant string    `json:"participant"`
	Condition   string    `json:"condition"`
	StartedAt   time.Time `json:"started_at"`

	Sequences []*Sequence       `json:"-"`
	Results   []*SequenceResult `json:"-"`
}

// NewSession creates a session with a fresh UUID.
func NewSession(participant, condition string, startedAt time.Time) *Session {
	return &Session{
		SessionID:   uuid.New().String(),
		Participant: participant,
		Condition:   condition,
		StartedAt:   startedAt,
	}
}
