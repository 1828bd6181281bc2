package fitts

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 1e-9

func TestMeanSingleValue(t *testing.T) {
	for _, x := range []float64{0, 1, -3.5, 1234.56} {
		got, err := Mean([]float64{x})
		if err != nil {
			t.Fatalf("Mean([%f]) returned error: %v", x, err)
		}
		if got != x {
			t.Errorf("Mean([%f]) = %f, want %f", x, got, x)
		}
	}
}

func TestMeanEmpty(t *testing.T) {
	_, err := Mean(nil)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Mean(nil) error = %v, want ErrInsufficientData", err)
	}
}

func TestStandardDeviation(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"constant sequence", []float64{5, 5, 5, 5}, 0},
		{"two values", []float64{1, 3}, math.Sqrt2},
		{"known spread", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 2.13808993529939},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StandardDeviation(tt.values)
			if err != nil {
				t.Fatalf("StandardDeviation(%v) returned error: %v", tt.values, err)
			}
			if math.Abs(got-tt.want) > tolerance {
				t.Errorf("StandardDeviation(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestStandardDeviationInsufficient(t *testing.T) {
	for _, values := range [][]float64{nil, {}, {42}} {
		_, err := StandardDeviation(values)
		if !errors.Is(err, ErrInsufficientData) {
			t.Errorf("StandardDeviation(%v) error = %v, want ErrInsufficientData", values, err)
		}
	}
}

func TestEffectiveWidthFactor(t *testing.T) {
	deviations := []float64{-2, 1, 3, -1, 0.5}
	sd, err := StandardDeviation(deviations)
	if err != nil {
		t.Fatal(err)
	}
	we, err := EffectiveWidth(deviations)
	if err != nil {
		t.Fatal(err)
	}
	want := 4.132731354 * sd
	if math.Abs(we-want) > 1e-6 {
		t.Errorf("EffectiveWidth = %v, want %v (4.132731354 × sd)", we, want)
	}
}

func TestEffectiveWidthConstantDeviations(t *testing.T) {
	// Zero spread collapses to zero width; rejecting it is the
	// throughput computation's job.
	we, err := EffectiveWidth([]float64{2, 2, 2})
	if err != nil {
		t.Fatalf("EffectiveWidth returned error: %v", err)
	}
	if we != 0 {
		t.Errorf("EffectiveWidth of constant deviations = %v, want 0", we)
	}
}

func TestIndexOfDifficultyKnownValue(t *testing.T) {
	// log2(200/20 + 1) = log2(11)
	got := IndexOfDifficulty(200, 20)
	if math.Abs(got-3.4594316186372973) > 1e-9 {
		t.Errorf("IndexOfDifficulty(200, 20) = %v, want ≈3.4594", got)
	}
}

func TestIndexOfDifficultyMonotonicity(t *testing.T) {
	// Increasing in amplitude.
	prev := math.Inf(-1)
	for _, a := range []float64{1, 10, 50, 100, 500, 1000} {
		id := IndexOfDifficulty(a, 20)
		if id <= prev {
			t.Errorf("IndexOfDifficulty not increasing in amplitude at A=%f: %v <= %v", a, id, prev)
		}
		prev = id
	}

	// Decreasing in width.
	prev = math.Inf(1)
	for _, w := range []float64{1, 5, 20, 100, 400} {
		id := IndexOfDifficulty(200, w)
		if id >= prev {
			t.Errorf("IndexOfDifficulty not decreasing in width at W=%f: %v >= %v", w, id, prev)
		}
		prev = id
	}
}

func TestThroughput(t *testing.T) {
	amplitudes := []float64{100, 100, 100}
	deviations := []float64{-4, 0, 4}
	timesMs := []float64{600, 700, 800}

	got, err := Throughput(amplitudes, deviations, timesMs)
	if err != nil {
		t.Fatalf("Throughput returned error: %v", err)
	}

	sd := 4.0 // sample std-dev of {-4, 0, 4}
	we := math.Sqrt(2*math.Pi*math.E) * sd
	want := math.Log2(100/we+1) / 0.7
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Throughput = %v, want %v", got, want)
	}
}

func TestThroughputZeroSpread(t *testing.T) {
	// All endpoints identical: effective width 0 must surface as a
	// degeneracy, not +Inf.
	_, err := Throughput([]float64{100, 100, 100}, []float64{2, 2, 2}, []float64{500, 500, 500})
	if !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("Throughput with zero spread error = %v, want ErrDegenerateGeometry", err)
	}
}

func TestThroughputInsufficientDeviations(t *testing.T) {
	_, err := Throughput([]float64{100}, []float64{1}, []float64{500})
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Throughput with one deviation error = %v, want ErrInsufficientData", err)
	}
}

func TestThroughputNonPositiveTime(t *testing.T) {
	_, err := Throughput([]float64{100, 100}, []float64{-1, 1}, []float64{0, 0})
	if !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("Throughput with zero movement time error = %v, want ErrDegenerateGeometry", err)
	}
}

func TestProjectedOffset(t *testing.T) {
	from := Point{X: 0, Y: 0}
	to := Point{X: 100, Y: 0}

	tests := []struct {
		name      string
		selection Point
		want      float64
	}{
		{"exactly at target center", Point{X: 100, Y: 0}, 0},
		{"overshoot along axis", Point{X: 112, Y: 0}, 12},
		{"undershoot along axis", Point{X: 93, Y: 0}, -7},
		{"pure orthogonal miss", Point{X: 100, Y: 10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProjectedOffset(from, to, tt.selection)
			if err != nil {
				t.Fatalf("ProjectedOffset returned error: %v", err)
			}
			if math.Abs(got-tt.want) > tolerance {
				t.Errorf("ProjectedOffset = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProjectedOffsetDiagonalAxis(t *testing.T) {
	// Axis direction must not matter, only distances do.
	from := Point{X: 1, Y: 1}
	to := Point{X: 4, Y: 5} // length 5
	overshoot := Point{X: 4.6, Y: 5.8}

	got, err := ProjectedOffset(from, to, overshoot)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("ProjectedOffset along diagonal axis = %v, want 1", got)
	}
}

func TestProjectedOffsetDegenerateAxis(t *testing.T) {
	p := Point{X: 3, Y: 4}
	_, err := ProjectedOffset(p, p, Point{X: 5, Y: 5})
	if !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("ProjectedOffset on zero-length axis error = %v, want ErrDegenerateGeometry", err)
	}
}

func TestOrthogonalOffset(t *testing.T) {
	from := Point{X: 0, Y: 0}
	to := Point{X: 100, Y: 0}

	got, err := OrthogonalOffset(from, to, Point{X: 104, Y: 3})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-3) > 1e-9 {
		t.Errorf("OrthogonalOffset = %v, want 3", got)
	}

	// On-axis selection has no orthogonal component.
	got, err = OrthogonalOffset(from, to, Point{X: 95, Y: 0})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got) > tolerance {
		t.Errorf("OrthogonalOffset on axis = %v, want 0", got)
	}
}

func TestPointDistance(t *testing.T) {
	a := Point{X: 1, Y: 2, Z: 2}
	b := Point{}
	if d := a.DistanceTo(b); d != 3 {
		t.Errorf("DistanceTo = %v, want 3", d)
	}
	if d := b.DistanceTo(b); d != 0 {
		t.Errorf("self distance = %v, want 0", d)
	}
}
