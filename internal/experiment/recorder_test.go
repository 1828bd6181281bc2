package experiment

import (
	"testing"
	"time"

	"github.com/banshee-data/fitts.report/internal/fitts"
	"github.com/banshee-data/fitts.report/internal/timeutil"
)

func newTestRecorder(t *testing.T) (*Recorder, *timeutil.FakeClock) {
	t.Helper()
	clock := timeutil.NewFakeClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	session := NewSession("P02", "hmd", clock.Now())
	return NewRecorder(session, clock), clock
}

func TestRecorderLifecycle(t *testing.T) {
	rec, clock := newTestRecorder(t)

	seq, err := rec.StartSequence(200, 40)
	if err != nil {
		t.Fatalf("StartSequence: %v", err)
	}
	if seq.Index != 0 {
		t.Errorf("sequence index = %d, want 0", seq.Index)
	}

	from := fitts.Point{X: 0}
	to := fitts.Point{X: 200}
	trial, err := rec.StartTrial(from, to)
	if err != nil {
		t.Fatalf("StartTrial: %v", err)
	}

	// Three frames at ~16.7ms steps.
	for i := 0; i < 3; i++ {
		clock.Advance(16700 * time.Microsecond)
		if err := rec.RecordFrame(Sample{Cursor: fitts.Point{X: float64(i) * 60}}); err != nil {
			t.Fatalf("RecordFrame %d: %v", i, err)
		}
	}
	if len(trial.Samples) != 3 {
		t.Fatalf("samples = %d, want 3", len(trial.Samples))
	}
	for i, s := range trial.Samples {
		if s.FrameIndex != i {
			t.Errorf("sample %d FrameIndex = %d", i, s.FrameIndex)
		}
		if s.TimeMs <= 0 {
			t.Errorf("sample %d TimeMs = %v, want > 0", i, s.TimeMs)
		}
	}

	clock.Advance(550 * time.Millisecond)
	done, err := rec.CompleteTrial(fitts.Point{X: 198, Y: 2}, false)
	if err != nil {
		t.Fatalf("CompleteTrial: %v", err)
	}
	// 3 frames + 550ms elapsed on the fake clock.
	wantMT := 3*16.7 + 550
	if diff := done.MovementTimeMs - wantMT; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("MovementTimeMs = %v, want %v", done.MovementTimeMs, wantMT)
	}
	if rec.CurrentTrial() != nil {
		t.Error("trial still open after completion")
	}
	if len(seq.Trials) != 1 {
		t.Errorf("sequence trials = %d, want 1", len(seq.Trials))
	}
}

func TestRecorderSequencingErrors(t *testing.T) {
	rec, _ := newTestRecorder(t)

	if err := rec.RecordFrame(Sample{}); err == nil {
		t.Error("RecordFrame without trial did not fail")
	}
	if _, err := rec.StartTrial(fitts.Point{}, fitts.Point{X: 1}); err == nil {
		t.Error("StartTrial without sequence did not fail")
	}
	if _, err := rec.CompleteTrial(fitts.Point{}, false); err == nil {
		t.Error("CompleteTrial without trial did not fail")
	}
	if _, err := rec.CompleteSequence(); err == nil {
		t.Error("CompleteSequence without sequence did not fail")
	}

	if _, err := rec.StartSequence(100, 20); err != nil {
		t.Fatalf("StartSequence: %v", err)
	}
	if _, err := rec.StartSequence(100, 20); err == nil {
		t.Error("second StartSequence with open sequence did not fail")
	}
	if _, err := rec.StartSequence(0, 20); err == nil {
		t.Error("StartSequence with zero amplitude did not fail")
	}

	if _, err := rec.StartTrial(fitts.Point{}, fitts.Point{X: 100}); err != nil {
		t.Fatalf("StartTrial: %v", err)
	}
	if _, err := rec.StartTrial(fitts.Point{}, fitts.Point{X: 100}); err == nil {
		t.Error("second StartTrial with open trial did not fail")
	}
	if _, err := rec.CompleteSequence(); err == nil {
		t.Error("CompleteSequence with open trial did not fail")
	}
}

func TestRecorderCompleteSequenceAggregates(t *testing.T) {
	rec, _ := newTestRecorder(t)

	if _, err := rec.StartSequence(100, 20); err != nil {
		t.Fatal(err)
	}
	selections := []fitts.Point{{X: 97}, {X: 2}, {X: 103}, {X: -1}}
	from := fitts.Point{X: 0}
	to := fitts.Point{X: 100}
	for i, sel := range selections {
		if _, err := rec.StartTrial(from, to); err != nil {
			t.Fatalf("StartTrial %d: %v", i, err)
		}
		if _, err := rec.CompleteTrialAt(sel, false, 500+float64(i)*20); err != nil {
			t.Fatalf("CompleteTrialAt %d: %v", i, err)
		}
		from, to = to, from
	}

	result, err := rec.CompleteSequence()
	if err != nil {
		t.Fatalf("CompleteSequence: %v", err)
	}
	if result.TrialCount != 4 {
		t.Errorf("TrialCount = %d, want 4", result.TrialCount)
	}
	if result.ThroughputBps <= 0 {
		t.Errorf("ThroughputBps = %v, want > 0", result.ThroughputBps)
	}

	session := rec.Session()
	if len(session.Sequences) != 1 || len(session.Results) != 1 {
		t.Errorf("session has %d sequences, %d results; want 1, 1",
			len(session.Sequences), len(session.Results))
	}
	if rec.CurrentSequence() != nil {
		t.Error("sequence still open after completion")
	}

	// The next sequence picks up the next ring index.
	seq2, err := rec.StartSequence(200, 40)
	if err != nil {
		t.Fatal(err)
	}
	if seq2.Index != 1 {
		t.Errorf("second sequence index = %d, want 1", seq2.Index)
	}
}
