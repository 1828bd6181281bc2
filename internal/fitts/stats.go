package fitts

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/fitts.report/internal/units"
)

// Sentinel errors for the numeric edge cases worth distinguishing.
var (
	// ErrInsufficientData is returned when a statistic is requested over
	// fewer values than its formula is defined for.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrDegenerateGeometry is returned for zero-length task axes and
	// zero effective widths, where the formulas would otherwise divide
	// by zero.
	ErrDegenerateGeometry = errors.New("degenerate geometry")
)

// effectiveWidthFactor is sqrt(2*pi*e) ~= 4.133. Scaling the sample
// standard deviation of endpoint deviations by this factor yields the
// width that captures ~96% of a Gaussian endpoint spread.
var effectiveWidthFactor = math.Sqrt(2 * math.Pi * math.E)

// Mean returns the arithmetic mean of values.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("mean of empty slice: %w", ErrInsufficientData)
	}
	return stat.Mean(values, nil), nil
}

// StandardDeviation returns the sample standard deviation of values
// using the unbiased n-1 divisor. It requires at least two values.
func StandardDeviation(values []float64) (float64, error) {
	if len(values) < 2 {
		return 0, fmt.Errorf("standard deviation needs at least 2 values, got %d: %w",
			len(values), ErrInsufficientData)
	}
	return stat.StdDev(values, nil), nil
}

// EffectiveWidth estimates target width from the spread of endpoint
// deviations. A zero spread yields a zero width, which downstream
// throughput computation rejects as degenerate.
func EffectiveWidth(deviations []float64) (float64, error) {
	sd, err := StandardDeviation(deviations)
	if err != nil {
		return 0, fmt.Errorf("effective width: %w", err)
	}
	return effectiveWidthFactor * sd, nil
}

// IndexOfDifficulty returns the Shannon formulation of task difficulty
// in bits: log2(amplitude/width + 1).
func IndexOfDifficulty(amplitude, width float64) float64 {
	return math.Log2(amplitude/width + 1)
}

// EffectiveIndexOfDifficulty is IndexOfDifficulty applied to effective
// (observed) rather than nominal quantities.
func EffectiveIndexOfDifficulty(meanAmplitude, effectiveWidth float64) float64 {
	return IndexOfDifficulty(meanAmplitude, effectiveWidth)
}

// Throughput computes bits per second as the effective index of
// difficulty over the mean movement time. Movement times are supplied
// in milliseconds and converted to seconds before the division.
func Throughput(amplitudes, deviations, movementTimesMs []float64) (float64, error) {
	we, err := EffectiveWidth(deviations)
	if err != nil {
		return 0, fmt.Errorf("throughput: %w", err)
	}
	if we == 0 {
		return 0, fmt.Errorf("throughput: zero effective width: %w", ErrDegenerateGeometry)
	}

	meanAmplitude, err := Mean(amplitudes)
	if err != nil {
		return 0, fmt.Errorf("throughput amplitudes: %w", err)
	}
	meanMs, err := Mean(movementTimesMs)
	if err != nil {
		return 0, fmt.Errorf("throughput movement times: %w", err)
	}
	if meanMs <= 0 {
		return 0, fmt.Errorf("throughput: non-positive mean movement time %f ms: %w",
			meanMs, ErrDegenerateGeometry)
	}

	ide := EffectiveIndexOfDifficulty(meanAmplitude, we)
	return ide / units.MsToSeconds(meanMs), nil
}

// ProjectedOffset projects selection onto the task axis running from
// one target center to the next and returns the signed deviation along
// that axis: positive past the target, negative short of it. It is
// computed via the law of cosines on the three pairwise distances.
func ProjectedOffset(from, to, selection Point) (float64, error) {
	a := from.DistanceTo(to)
	if a == 0 {
		return 0, fmt.Errorf("projected offset: zero-length task axis: %w", ErrDegenerateGeometry)
	}
	b := to.DistanceTo(selection)
	c := from.DistanceTo(selection)
	return (c*c - b*b - a*a) / (2 * a), nil
}

// OrthogonalOffset returns the unsigned distance from selection to the
// task axis, the component ProjectedOffset discards. Used for endpoint
// scatter plots.
func OrthogonalOffset(from, to, selection Point) (float64, error) {
	dx, err := ProjectedOffset(from, to, selection)
	if err != nil {
		return 0, err
	}
	b := to.DistanceTo(selection)
	ortho := b*b - dx*dx
	if ortho < 0 {
		// Rounding can push the difference slightly negative when the
		// selection sits almost exactly on the axis.
		return 0, nil
	}
	return math.Sqrt(ortho), nil
}
