// Package fitts implements the closed-form statistics used to score
// target-acquisition trials: effective width, index of difficulty,
// throughput, and the endpoint projection that produces the deviation
// values effective width is computed from.
//
// All intermediate arithmetic is double precision. Callers that expose
// metrics externally truncate to float32 at the boundary (see
// internal/experiment).
//
// Degenerate inputs never propagate NaN or Inf: empty or too-short
// slices return ErrInsufficientData, zero-length task axes and zero
// effective widths return ErrDegenerateGeometry.
package fitts
