// Command fitts-sim generates a synthetic session log (JSONL) for
// development and report testing: reciprocal tapping between two
// targets per sequence, Gaussian endpoint scatter, and a linear
// Fitts-style movement time model.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"log"
	"math"
	"math/rand"
	"os"

	"github.com/banshee-data/fitts.report/internal/experiment"
	"github.com/banshee-data/fitts.report/internal/fitts"
)

var (
	outPath     = flag.String("out", "session.jsonl", "output session log path")
	participant = flag.String("participant", "SIM01", "participant label")
	condition   = flag.String("condition", "simulated", "condition label")
	trials      = flag.Int("trials", 9, "trials per sequence")
	spreadMm    = flag.Float64("spread", 4.0, "endpoint scatter std-dev (mm)")
	frameRateHz = flag.Float64("framerate", 90, "simulated render frame rate")
	seed        = flag.Int64("seed", 1, "rng seed")
	withPupil   = flag.Bool("pupil", false, "emit pupilometry channels")
	withHMD     = flag.Bool("hmd", false, "emit HMD pose channels")
)

// Movement time model constants: MT = intercept + slope*ID + noise.
const (
	mtInterceptMs = 200.0
	mtSlopeMs     = 150.0
	mtNoiseMs     = 30.0
)

var conditions = []struct{ amplitudeMm, widthMm float64 }{
	{100, 20}, {200, 20}, {400, 20},
	{100, 40}, {200, 40}, {400, 40},
}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	f, err := os.Create(*outPath)
	if err != nil {
		log.Fatalf("failed to create output: %v", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	defer w.Flush()

	emit(w, map[string]interface{}{
		"type": "session", "participant": *participant, "condition": *condition,
	})

	for _, c := range conditions {
		emit(w, map[string]interface{}{
			"type": "sequence_start", "amplitude_mm": c.amplitudeMm, "width_mm": c.widthMm,
		})

		// Reciprocal tapping between two targets one amplitude apart.
		left := fitts.Point{X: 0, Y: 0}
		right := fitts.Point{X: c.amplitudeMm, Y: 0}
		from, to := left, right

		sd := *spreadMm
		for i := 0; i < *trials; i++ {
			emit(w, map[string]interface{}{"type": "trial_start", "from": from, "to": to})

			id := fitts.IndexOfDifficulty(c.amplitudeMm, c.widthMm)
			mtMs := mtInterceptMs + mtSlopeMs*id + rng.NormFloat64()*mtNoiseMs
			if mtMs < 50 {
				mtMs = 50
			}
			selection := fitts.Point{
				X: to.X + rng.NormFloat64()*sd,
				Y: to.Y + rng.NormFloat64()*sd,
			}

			emitFrames(w, rng, from, selection, mtMs)
			emit(w, map[string]interface{}{
				"type": "trial_end", "selection": selection, "movement_time_ms": mtMs,
			})

			from, to = to, from
		}

		emit(w, map[string]interface{}{"type": "sequence_end"})
	}

	log.Printf("wrote %d sequences to %s", len(conditions), *outPath)
}

// emitFrames writes the per-frame telemetry for one trial: the cursor
// eases from start to endpoint, gaze leads it toward the endpoint, and
// the optional hardware channels jitter around plausible values.
func emitFrames(w *bufio.Writer, rng *rand.Rand, start, end fitts.Point, mtMs float64) {
	frameMs := 1000.0 / *frameRateHz
	frames := int(mtMs/frameMs) + 1
	for i := 0; i < frames; i++ {
		// Smoothstep easing approximates a real reach profile closely
		// enough for fixture data.
		u := float64(i) / float64(frames)
		ease := u * u * (3 - 2*u)

		sample := experiment.Sample{
			TimeMs: float64(i) * frameMs,
			Cursor: fitts.Point{
				X: start.X + (end.X-start.X)*ease + rng.NormFloat64()*0.3,
				Y: start.Y + (end.Y-start.Y)*ease + rng.NormFloat64()*0.3,
			},
			Gaze: fitts.Point{
				X: end.X + rng.NormFloat64()*2,
				Y: end.Y + rng.NormFloat64()*2,
			},
			HeadMovement: math.Abs(rng.NormFloat64() * 0.05),
		}
		if *withPupil {
			l := 3.5 + rng.NormFloat64()*0.2
			r := 3.5 + rng.NormFloat64()*0.2
			sample.PupilLeftMm = &l
			sample.PupilRightMm = &r
		}
		if *withHMD {
			pos := fitts.Point{X: rng.NormFloat64() * 5, Y: 1600 + rng.NormFloat64()*5, Z: rng.NormFloat64() * 5}
			rot := fitts.Point{X: rng.NormFloat64() * 2, Y: rng.NormFloat64() * 2, Z: rng.NormFloat64()}
			sample.HMDPosition = &pos
			sample.HMDRotation = &rot
		}

		emit(w, map[string]interface{}{"type": "frame", "frame": sample})
	}
}

func emit(w *bufio.Writer, v map[string]interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Fatalf("failed to marshal event: %v", err)
	}
	w.Write(data)
	w.WriteByte('\n')
}
