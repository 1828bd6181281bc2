// Package db persists session telemetry as flat SQLite rows: one row
// per sample, one per trial, one per sequence. The row field set and
// its nullability is the compatibility contract with downstream
// analysis tooling.
package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/fitts.report/internal/experiment"
	"github.com/banshee-data/fitts.report/internal/fitts"
	"github.com/banshee-data/fitts.report/internal/timeutil"
)

type DB struct {
	*sql.DB
}

// NewDB opens (creating if necessary) a session database at path and
// ensures the base schema exists. Schema evolution beyond the base
// tables goes through the migration runner in migrate.go.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id        TEXT PRIMARY KEY,
			participant       TEXT,
			condition         TEXT,
			started_at        TEXT,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS sequences (
			sequence_id            TEXT PRIMARY KEY,
			session_id             TEXT,
			seq_index              BIGINT,
			amplitude_mm           DOUBLE,
			width_mm               DOUBLE,
			trial_count            BIGINT,
			error_count            BIGINT,
			index_of_difficulty    DOUBLE,
			effective_amplitude_mm DOUBLE,
			effective_width_mm     DOUBLE,
			effective_id           DOUBLE,
			error_rate_percent     DOUBLE,
			mean_movement_time_ms  DOUBLE,
			throughput_bps         DOUBLE,
			started_at             TEXT,
			completed_at           TEXT,
			timestamp              TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(session_id) REFERENCES sessions(session_id)
		);
		CREATE TABLE IF NOT EXISTS trials (
			trial_id          TEXT PRIMARY KEY,
			sequence_id       TEXT,
			trial_index       BIGINT,
			from_x            DOUBLE,
			from_y            DOUBLE,
			from_z            DOUBLE,
			to_x              DOUBLE,
			to_y              DOUBLE,
			to_z              DOUBLE,
			selection_x       DOUBLE,
			selection_y       DOUBLE,
			selection_z       DOUBLE,
			movement_time_ms  DOUBLE,
			center_error_mm   DOUBLE,
			final_angle_deg   DOUBLE,
			is_error          BOOLEAN,
			started_at        TEXT,
			completed_at      TEXT,
			FOREIGN KEY(sequence_id) REFERENCES sequences(sequence_id)
		);
		CREATE TABLE IF NOT EXISTS samples (
			trial_id          TEXT,
			frame_index       BIGINT,
			time_ms           DOUBLE,
			captured_at       TEXT,
			cursor_x          DOUBLE,
			cursor_y          DOUBLE,
			cursor_z          DOUBLE,
			gaze_x            DOUBLE,
			gaze_y            DOUBLE,
			gaze_z            DOUBLE,
			head_movement     DOUBLE,
			pupil_left_mm     DOUBLE,
			pupil_right_mm    DOUBLE,
			hmd_pos_x         DOUBLE,
			hmd_pos_y         DOUBLE,
			hmd_pos_z         DOUBLE,
			hmd_rot_x         DOUBLE,
			hmd_rot_y         DOUBLE,
			hmd_rot_z         DOUBLE,
			FOREIGN KEY(trial_id) REFERENCES trials(trial_id)
		);
		CREATE INDEX IF NOT EXISTS idx_samples_trial ON samples(trial_id, frame_index);
		CREATE INDEX IF NOT EXISTS idx_trials_sequence ON trials(sequence_id, trial_index);
		CREATE INDEX IF NOT EXISTS idx_sequences_session ON sequences(session_id, seq_index);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// RecordSession inserts the session header row.
func (db *DB) RecordSession(s *experiment.Session) error {
	_, err := db.Exec(
		`INSERT INTO sessions (session_id, participant, condition, started_at) VALUES (?, ?, ?, ?)`,
		s.SessionID, s.Participant, s.Condition, timeutil.FormatSessionTime(s.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("record session %s: %w", s.SessionID, err)
	}
	return nil
}

// RecordSequence inserts one sequence row. A nil result (aggregation
// rejected the sequence as degenerate or incomplete) stores NULL metric
// columns so the raw trials remain queryable.
func (db *DB) RecordSequence(seq *experiment.Sequence, result *experiment.SequenceResult) error {
	var (
		trialCount, errorCount             interface{}
		nominalID, effAmp, effWidth, effID interface{}
		errorRate, meanMT, throughput      interface{}
	)
	if result != nil {
		trialCount = result.TrialCount
		errorCount = result.ErrorCount
		nominalID = float64(result.IndexOfDifficulty)
		effAmp = float64(result.EffectiveAmplitudeMm)
		effWidth = float64(result.EffectiveWidthMm)
		effID = float64(result.EffectiveID)
		errorRate = float64(result.ErrorRatePercent)
		meanMT = float64(result.MeanMovementTimeMs)
		throughput = float64(result.ThroughputBps)
	} else {
		trialCount = len(seq.Trials)
	}

	_, err := db.Exec(
		`INSERT INTO sequences (
			sequence_id, session_id, seq_index, amplitude_mm, width_mm,
			trial_count, error_count, index_of_difficulty,
			effective_amplitude_mm, effective_width_mm, effective_id,
			error_rate_percent, mean_movement_time_ms, throughput_bps,
			started_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seq.SequenceID, seq.SessionID, seq.Index, seq.AmplitudeMm, seq.WidthMm,
		trialCount, errorCount, nominalID,
		effAmp, effWidth, effID,
		errorRate, meanMT, throughput,
		timeutil.FormatSessionTime(seq.StartedAt), timeutil.FormatSessionTime(seq.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("record sequence %s: %w", seq.SequenceID, err)
	}
	return nil
}

// RecordTrial inserts one trial row and, in the same transaction, all
// of its sample rows.
func (db *DB) RecordTrial(t *experiment.Trial) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("record trial %s: %w", t.TrialID, err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO trials (
			trial_id, sequence_id, trial_index,
			from_x, from_y, from_z, to_x, to_y, to_z,
			selection_x, selection_y, selection_z,
			movement_time_ms, center_error_mm, final_angle_deg, is_error,
			started_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TrialID, t.SequenceID, t.Index,
		t.From.X, t.From.Y, t.From.Z, t.To.X, t.To.Y, t.To.Z,
		t.Selection.X, t.Selection.Y, t.Selection.Z,
		t.MovementTimeMs, t.CenterErrorMm, t.FinalAngleDeg, t.IsError,
		timeutil.FormatSessionTime(t.StartedAt), timeutil.FormatSessionTime(t.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("record trial %s: %w", t.TrialID, err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO samples (
			trial_id, frame_index, time_ms, captured_at,
			cursor_x, cursor_y, cursor_z, gaze_x, gaze_y, gaze_z,
			head_movement, pupil_left_mm, pupil_right_mm,
			hmd_pos_x, hmd_pos_y, hmd_pos_z, hmd_rot_x, hmd_rot_y, hmd_rot_z
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("record samples for trial %s: %w", t.TrialID, err)
	}
	defer stmt.Close()

	for _, s := range t.Samples {
		hmdPosX, hmdPosY, hmdPosZ := nullPoint(s.HMDPosition)
		hmdRotX, hmdRotY, hmdRotZ := nullPoint(s.HMDRotation)
		_, err = stmt.Exec(
			t.TrialID, s.FrameIndex, s.TimeMs, timeutil.FormatSessionTime(s.CapturedAt),
			s.Cursor.X, s.Cursor.Y, s.Cursor.Z, s.Gaze.X, s.Gaze.Y, s.Gaze.Z,
			s.HeadMovement, nullFloat64(s.PupilLeftMm), nullFloat64(s.PupilRightMm),
			hmdPosX, hmdPosY, hmdPosZ, hmdRotX, hmdRotY, hmdRotZ,
		)
		if err != nil {
			return fmt.Errorf("record sample %d for trial %s: %w", s.FrameIndex, t.TrialID, err)
		}
	}

	return tx.Commit()
}

// SequenceResults returns the stored summary rows for a session in ring
// order. Sequences whose aggregation was rejected (NULL metrics) are
// skipped.
func (db *DB) SequenceResults(sessionID string) ([]experiment.SequenceResult, error) {
	rows, err := db.Query(
		`SELECT sequence_id, session_id, seq_index, amplitude_mm, width_mm,
			trial_count, error_count, index_of_difficulty,
			effective_amplitude_mm, effective_width_mm, effective_id,
			error_rate_percent, mean_movement_time_ms, throughput_bps
		FROM sequences
		WHERE session_id = ? AND throughput_bps IS NOT NULL
		ORDER BY seq_index`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []experiment.SequenceResult
	for rows.Next() {
		var r experiment.SequenceResult
		var amplitude, width, nominalID, effAmp, effWidth, effID float64
		var errorRate, meanMT, throughput float64
		if err := rows.Scan(
			&r.SequenceID, &r.SessionID, &r.Index, &amplitude, &width,
			&r.TrialCount, &r.ErrorCount, &nominalID,
			&effAmp, &effWidth, &effID,
			&errorRate, &meanMT, &throughput,
		); err != nil {
			return nil, err
		}
		r.AmplitudeMm = float32(amplitude)
		r.WidthMm = float32(width)
		r.IndexOfDifficulty = float32(nominalID)
		r.EffectiveAmplitudeMm = float32(effAmp)
		r.EffectiveWidthMm = float32(effWidth)
		r.EffectiveID = float32(effID)
		r.ErrorRatePercent = float32(errorRate)
		r.MeanMovementTimeMs = float32(meanMT)
		r.ThroughputBps = float32(throughput)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// TrialsForSequence returns the stored trial rows of a sequence in ring
// order, without their samples.
func (db *DB) TrialsForSequence(sequenceID string) ([]experiment.Trial, error) {
	rows, err := db.Query(
		`SELECT trial_id, sequence_id, trial_index,
			from_x, from_y, from_z, to_x, to_y, to_z,
			selection_x, selection_y, selection_z,
			movement_time_ms, center_error_mm, final_angle_deg, is_error,
			started_at, completed_at
		FROM trials WHERE sequence_id = ? ORDER BY trial_index`,
		sequenceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trials []experiment.Trial
	for rows.Next() {
		var t experiment.Trial
		var startedAt, completedAt string
		if err := rows.Scan(
			&t.TrialID, &t.SequenceID, &t.Index,
			&t.From.X, &t.From.Y, &t.From.Z, &t.To.X, &t.To.Y, &t.To.Z,
			&t.Selection.X, &t.Selection.Y, &t.Selection.Z,
			&t.MovementTimeMs, &t.CenterErrorMm, &t.FinalAngleDeg, &t.IsError,
			&startedAt, &completedAt,
		); err != nil {
			return nil, err
		}
		t.StartedAt = parseSessionTime(startedAt)
		t.CompletedAt = parseSessionTime(completedAt)
		trials = append(trials, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return trials, nil
}

// SamplesForTrial returns the stored per-frame rows of a trial in frame
// order.
func (db *DB) SamplesForTrial(trialID string) ([]experiment.Sample, error) {
	rows, err := db.Query(
		`SELECT frame_index, time_ms, captured_at,
			cursor_x, cursor_y, cursor_z, gaze_x, gaze_y, gaze_z,
			head_movement, pupil_left_mm, pupil_right_mm,
			hmd_pos_x, hmd_pos_y, hmd_pos_z, hmd_rot_x, hmd_rot_y, hmd_rot_z
		FROM samples WHERE trial_id = ? ORDER BY frame_index`,
		trialID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []experiment.Sample
	for rows.Next() {
		var s experiment.Sample
		var capturedAt string
		var pupilL, pupilR sql.NullFloat64
		var posX, posY, posZ, rotX, rotY, rotZ sql.NullFloat64
		if err := rows.Scan(
			&s.FrameIndex, &s.TimeMs, &capturedAt,
			&s.Cursor.X, &s.Cursor.Y, &s.Cursor.Z, &s.Gaze.X, &s.Gaze.Y, &s.Gaze.Z,
			&s.HeadMovement, &pupilL, &pupilR,
			&posX, &posY, &posZ, &rotX, &rotY, &rotZ,
		); err != nil {
			return nil, err
		}
		s.CapturedAt = parseSessionTime(capturedAt)
		s.PupilLeftMm = fromNullFloat64(pupilL)
		s.PupilRightMm = fromNullFloat64(pupilR)
		s.HMDPosition = fromNullPoint(posX, posY, posZ)
		s.HMDRotation = fromNullPoint(rotX, rotY, rotZ)
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

// nullFloat64 maps a pointer optional to its value or SQL NULL.
func nullFloat64(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

// nullPoint expands an optional point into three nullable columns.
func nullPoint(p *fitts.Point) (x, y, z interface{}) {
	if p == nil {
		return nil, nil, nil
	}
	return p.X, p.Y, p.Z
}

func fromNullFloat64(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func fromNullPoint(x, y, z sql.NullFloat64) *fitts.Point {
	if !x.Valid || !y.Valid || !z.Valid {
		return nil
	}
	return &fitts.Point{X: x.Float64, Y: y.Float64, Z: z.Float64}
}

func parseSessionTime(s string) time.Time {
	t, err := time.Parse(timeutil.SessionTimeFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
