// Package experiment models a Fitts' Law target-acquisition session:
// per-frame telemetry samples, trials that own them, sequences (rings of
// trials at a fixed amplitude/width) and the per-sequence summary
// statistics derived after all trials complete.
//
// Recording is single-threaded and frame-driven: the host application
// appends one Sample per rendered frame through a Recorder. No locking
// is done here; concurrent use of a Recorder is a caller bug.
package experiment
