// Command fitts.report imports a session log recorded by the host
// application (one JSON event per line), recomputes the per-sequence
// Fitts' Law metrics, stores the flat rows in SQLite and optionally
// renders summary reports.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/fitts.report/internal/config"
	"github.com/banshee-data/fitts.report/internal/db"
	"github.com/banshee-data/fitts.report/internal/experiment"
	"github.com/banshee-data/fitts.report/internal/fitts"
	"github.com/banshee-data/fitts.report/internal/monitoring"
	"github.com/banshee-data/fitts.report/internal/report"
	"github.com/banshee-data/fitts.report/internal/timeutil"
	"github.com/banshee-data/fitts.report/internal/units"
)

var (
	dbPath        = flag.String("db", "session_data.db", "path to sqlite db")
	configPath    = flag.String("config", "", "experiment config JSON (defaults used when empty)")
	framesPath    = flag.String("frames", "", "session log (JSONL) to import")
	reportPath    = flag.String("report", "", "write HTML summary report to this path")
	scatterDir    = flag.String("scatter", "", "write per-sequence endpoint scatter PNGs into this directory")
	displayUnits  = flag.String("units", "", "override reporting units (mm, px, deg)")
	migrateCmd    = flag.String("migrate", "", "run a migration command: up, down, version")
	migrationsDir = flag.String("migrations", "db/migrations", "path to migration files")
	debugFrames   = flag.Bool("debug", false, "log per-frame records")
)

// logEvent is one line of the host application's session log. The Type
// field selects which of the remaining fields are meaningful.
type logEvent struct {
	Type string `json:"type"`

	// session
	Participant string `json:"participant,omitempty"`
	Condition   string `json:"condition,omitempty"`

	// sequence_start
	AmplitudeMm float64 `json:"amplitude_mm,omitempty"`
	WidthMm     float64 `json:"width_mm,omitempty"`

	// trial_start
	From *fitts.Point `json:"from,omitempty"`
	To   *fitts.Point `json:"to,omitempty"`

	// frame
	Frame *experiment.Sample `json:"frame,omitempty"`

	// trial_end
	Selection      *fitts.Point `json:"selection,omitempty"`
	MovementTimeMs float64      `json:"movement_time_ms,omitempty"`
	IsError        *bool        `json:"is_error,omitempty"`
}

func main() {
	flag.Parse()
	monitoring.SetDebug(*debugFrames)

	store, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer store.Close()

	if *migrateCmd != "" {
		if err := runMigrate(store, *migrateCmd, *migrationsDir); err != nil {
			log.Fatalf("migrate %s: %v", *migrateCmd, err)
		}
		return
	}

	cfg := config.EmptyExperimentConfig()
	if *configPath != "" {
		cfg, err = config.LoadExperimentConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	if *framesPath == "" {
		log.Fatal("a session log is required (-frames)")
	}

	f, err := os.Open(*framesPath)
	if err != nil {
		log.Fatalf("failed to open session log: %v", err)
	}
	defer f.Close()

	session, err := importSession(f, cfg, store)
	if err != nil {
		log.Fatalf("failed to import session: %v", err)
	}

	printSummary(os.Stdout, cfg, session)

	if *reportPath != "" {
		out, err := os.Create(*reportPath)
		if err != nil {
			log.Fatalf("failed to create report file: %v", err)
		}
		defer out.Close()
		if err := report.WriteHTML(out, session, session.Results); err != nil {
			log.Fatalf("failed to write report: %v", err)
		}
		log.Printf("wrote report to %s", *reportPath)
	}

	if *scatterDir != "" {
		if err := os.MkdirAll(*scatterDir, 0755); err != nil {
			log.Fatalf("failed to create scatter dir: %v", err)
		}
		for _, seq := range session.Sequences {
			path := fmt.Sprintf("%s/sequence_%02d.png", *scatterDir, seq.Index)
			if err := report.WriteEndpointScatterPNG(path, seq); err != nil {
				log.Printf("scatter for sequence %d skipped: %v", seq.Index, err)
			}
		}
	}
}

// importSession replays a session log through a Recorder, persisting
// rows as trials and sequences complete. Aggregation failures on a
// sequence are logged and stored as NULL-metric rows; the import
// continues with the next sequence.
func importSession(r io.Reader, cfg *config.ExperimentConfig, store *db.DB) (*experiment.Session, error) {
	clock := timeutil.RealClock{}
	var rec *experiment.Recorder

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var ev logEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("line %d: failed to unmarshal event: %w", lineNo, err)
		}

		if rec == nil && ev.Type != "session" {
			return nil, fmt.Errorf("line %d: %q event before session header", lineNo, ev.Type)
		}

		switch ev.Type {
		case "session":
			if rec != nil {
				return nil, fmt.Errorf("line %d: duplicate session header", lineNo)
			}
			session := experiment.NewSession(ev.Participant, ev.Condition, clock.Now())
			rec = experiment.NewRecorder(session, clock)
			if err := store.RecordSession(session); err != nil {
				return nil, err
			}

		case "sequence_start":
			if _, err := rec.StartSequence(ev.AmplitudeMm, ev.WidthMm); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}

		case "trial_start":
			if ev.From == nil || ev.To == nil {
				return nil, fmt.Errorf("line %d: trial_start missing from/to", lineNo)
			}
			if _, err := rec.StartTrial(*ev.From, *ev.To); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}

		case "frame":
			if ev.Frame == nil {
				return nil, fmt.Errorf("line %d: frame event missing frame payload", lineNo)
			}
			sample := scrubSample(cfg, *ev.Frame)
			if err := rec.RecordFrame(sample); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			monitoring.Debugf("frame %d at %.1fms", sample.FrameIndex, sample.TimeMs)

		case "trial_end":
			if ev.Selection == nil {
				return nil, fmt.Errorf("line %d: trial_end missing selection", lineNo)
			}
			isError := scoreError(cfg, rec, ev)
			trial, err := rec.CompleteTrialAt(*ev.Selection, isError, ev.MovementTimeMs)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			if err := store.RecordTrial(trial); err != nil {
				return nil, err
			}

		case "sequence_end":
			seq := rec.CurrentSequence()
			if seq == nil {
				return nil, fmt.Errorf("line %d: sequence_end without open sequence", lineNo)
			}
			if rec.CurrentTrial() != nil {
				return nil, fmt.Errorf("line %d: sequence_end with trial still open", lineNo)
			}
			result, err := rec.CompleteSequence()
			if err != nil {
				// Raw trials are still stored; only the summary is lost.
				monitoring.Logf("sequence %d not aggregated: %v", seq.Index, err)
			}
			if err := store.RecordSequence(seq, result); err != nil {
				return nil, err
			}

		default:
			return nil, fmt.Errorf("line %d: unknown event type %q", lineNo, ev.Type)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read session log: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("session log is empty")
	}
	if rec.CurrentSequence() != nil || rec.CurrentTrial() != nil {
		return nil, fmt.Errorf("session log ended with an open sequence or trial")
	}

	return rec.Session(), nil
}

// scrubSample drops hardware channels the config says this session did
// not capture, so a misbehaving host cannot smuggle them into rows.
func scrubSample(cfg *config.ExperimentConfig, s experiment.Sample) experiment.Sample {
	if !cfg.GetCapturePupil() {
		s.PupilLeftMm = nil
		s.PupilRightMm = nil
	}
	if !cfg.GetCaptureHMD() {
		s.HMDPosition = nil
		s.HMDRotation = nil
	}
	return s
}

// scoreError merges the host's error flag with the configured nominal
// target-circle rule.
func scoreError(cfg *config.ExperimentConfig, rec *experiment.Recorder, ev logEvent) bool {
	isError := ev.IsError != nil && *ev.IsError
	if cfg.GetScoreMissAsError() && !isError {
		trial := rec.CurrentTrial()
		seq := rec.CurrentSequence()
		if trial != nil && seq != nil {
			isError = experiment.MissedTarget(*ev.Selection, trial.To, seq.WidthMm)
		}
	}
	return isError
}

// printSummary writes the per-sequence metrics table in the configured
// units.
func printSummary(w io.Writer, cfg *config.ExperimentConfig, session *experiment.Session) {
	targetUnits := cfg.GetDistanceUnits()
	if *displayUnits != "" {
		if !units.IsValid(*displayUnits) {
			log.Fatalf("invalid units %q, must be one of %s", *displayUnits, units.GetValidUnitsString())
		}
		targetUnits = *displayUnits
	}
	geom := cfg.GetDisplayGeometry()

	fmt.Fprintf(w, "session %s participant=%s condition=%s sequences=%d\n",
		session.SessionID, session.Participant, session.Condition, len(session.Results))
	for _, r := range session.Results {
		fmt.Fprintf(w, "  seq %2d  A=%.0f%s W=%.0f%s  IDe=%.3f bits  MT=%.0fms  err=%.1f%%  TP=%.3f bits/s\n",
			r.Index,
			geom.ConvertDistance(float64(r.AmplitudeMm), targetUnits), targetUnits,
			geom.ConvertDistance(float64(r.WidthMm), targetUnits), targetUnits,
			r.EffectiveID, r.MeanMovementTimeMs, r.ErrorRatePercent, r.ThroughputBps)
	}
}

// runMigrate dispatches the migration subcommands.
func runMigrate(store *db.DB, cmd, dir string) error {
	switch cmd {
	case "up":
		return store.MigrateUp(dir)
	case "down":
		return store.MigrateDown(dir)
	case "version":
		version, dirty, err := store.MigrateVersion(dir)
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%v\n", version, dirty)
		return nil
	default:
		return fmt.Errorf("unknown migrate command %q (want up, down or version)", cmd)
	}
}
