package experiment

import (
	"fmt"

	"github.com/banshee-data/fitts.report/internal/fitts"
	"github.com/banshee-data/fitts.report/internal/monitoring"
	"github.com/banshee-data/fitts.report/internal/timeutil"
)

// Recorder drives the frame-synchronous recording lifecycle:
//
//	StartSequence -> StartTrial -> RecordFrame* -> CompleteTrial -> ... -> CompleteSequence
//
// The host application calls RecordFrame once per rendered frame.
// Timestamps come from the injected Clock so tests can use a FakeClock.
type Recorder struct {
	clock   timeutil.Clock
	session *Session

	sequence *Sequence
	trial    *Trial
}

// NewRecorder creates a recorder for the given session. A nil clock
// defaults to the real one.
func NewRecorder(session *Session, clock timeutil.Clock) *Recorder {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Recorder{clock: clock, session: session}
}

// Session returns the session being recorded.
func (r *Recorder) Session() *Session {
	return r.session
}

// CurrentSequence returns the open sequence, or nil.
func (r *Recorder) CurrentSequence() *Sequence {
	return r.sequence
}

// CurrentTrial returns the open trial, or nil.
func (r *Recorder) CurrentTrial() *Trial {
	return r.trial
}

// StartSequence opens a new ring of trials at the given nominal
// geometry. The previous sequence must have been completed.
func (r *Recorder) StartSequence(amplitudeMm, widthMm float64) (*Sequence, error) {
	if r.sequence != nil {
		return nil, fmt.Errorf("sequence %d still open", r.sequence.Index)
	}
	if amplitudeMm <= 0 || widthMm <= 0 {
		return nil, fmt.Errorf("non-positive sequence geometry A=%f W=%f: %w",
			amplitudeMm, widthMm, fitts.ErrDegenerateGeometry)
	}
	seq := newSequence(r.session.SessionID, len(r.session.Sequences), amplitudeMm, widthMm, r.clock.Now())
	r.sequence = seq
	monitoring.Debugf("sequence %d started: A=%.1fmm W=%.1fmm", seq.Index, amplitudeMm, widthMm)
	return seq, nil
}

// StartTrial opens a trial on the task axis from -> to inside the open
// sequence.
func (r *Recorder) StartTrial(from, to fitts.Point) (*Trial, error) {
	if r.sequence == nil {
		return nil, fmt.Errorf("no open sequence")
	}
	if r.trial != nil {
		return nil, fmt.Errorf("trial %d still open", r.trial.Index)
	}
	t := newTrial(r.sequence.SequenceID, len(r.sequence.Trials), from, to, r.clock.Now())
	r.trial = t
	return t, nil
}

// RecordFrame appends one per-frame sample to the open trial. The frame
// index and trial-relative timestamp are filled in here; CapturedAt is
// stamped from the clock when the host did not supply it.
func (r *Recorder) RecordFrame(s Sample) error {
	if r.trial == nil {
		return fmt.Errorf("no open trial")
	}
	s.FrameIndex = len(r.trial.Samples)
	if s.CapturedAt.IsZero() {
		s.CapturedAt = r.clock.Now()
	}
	if s.TimeMs == 0 {
		s.TimeMs = timeutil.DurationMs(s.CapturedAt.Sub(r.trial.StartedAt))
	}
	return r.trial.appendSample(s)
}

// CompleteTrial finalizes the open trial at target activation, deriving
// the movement time from the clock.
func (r *Recorder) CompleteTrial(selection fitts.Point, isError bool) (*Trial, error) {
	if r.trial == nil {
		return nil, fmt.Errorf("no open trial")
	}
	elapsed := timeutil.DurationMs(r.clock.Since(r.trial.StartedAt))
	return r.completeTrial(selection, isError, elapsed)
}

// CompleteTrialAt finalizes the open trial with a host-recorded
// movement time, used when importing a session log whose timings were
// measured in the host's own frame clock.
func (r *Recorder) CompleteTrialAt(selection fitts.Point, isError bool, movementTimeMs float64) (*Trial, error) {
	if r.trial == nil {
		return nil, fmt.Errorf("no open trial")
	}
	return r.completeTrial(selection, isError, movementTimeMs)
}

func (r *Recorder) completeTrial(selection fitts.Point, isError bool, movementTimeMs float64) (*Trial, error) {
	t := r.trial
	if err := t.complete(selection, isError, r.clock.Now(), movementTimeMs); err != nil {
		return nil, err
	}
	r.sequence.Trials = append(r.sequence.Trials, t)
	r.trial = nil
	monitoring.Debugf("trial %d completed: MT=%.1fms err=%v samples=%d",
		t.Index, t.MovementTimeMs, t.IsError, len(t.Samples))
	return t, nil
}

// CompleteSequence closes the open sequence and runs the aggregation.
// An open trial at this point is a host sequencing bug.
func (r *Recorder) CompleteSequence() (*SequenceResult, error) {
	if r.sequence == nil {
		return nil, fmt.Errorf("no open sequence")
	}
	if r.trial != nil {
		return nil, fmt.Errorf("trial %d still open at sequence end", r.trial.Index)
	}
	seq := r.sequence
	seq.CompletedAt = r.clock.Now()

	result, err := seq.Aggregate()
	if err != nil {
		// The sequence itself is still recorded; only the summary is lost.
		r.session.Sequences = append(r.session.Sequences, seq)
		r.sequence = nil
		return nil, err
	}

	r.session.Sequences = append(r.session.Sequences, seq)
	r.session.Results = append(r.session.Results, result)
	r.sequence = nil
	monitoring.Logf("sequence %d: A=%.0f W=%.0f IDe=%.3f TP=%.3f bits/s err=%.1f%%",
		seq.Index, seq.AmplitudeMm, seq.WidthMm,
		result.EffectiveID, result.ThroughputBps, result.ErrorRatePercent)
	return result, nil
}
