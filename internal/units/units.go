// Package units provides shared constants and conversion for distance
// units, plus the millisecond/second boundary used in throughput math.
package units

import "math"

// Distance unit constants. The database stores distances in millimetres.
const (
	MM  = "mm"
	PX  = "px"
	DEG = "deg"
)

// ValidUnits contains all valid distance unit values.
var ValidUnits = []string{MM, PX, DEG}

// IsValid checks if the given unit is in the list of valid units.
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages.
func GetValidUnitsString() string {
	return "mm, px, deg"
}

// MsToSeconds converts a duration in milliseconds to seconds.
func MsToSeconds(ms float64) float64 {
	return ms / 1000.0
}

// DisplayGeometry describes the physical display the experiment ran on,
// needed to convert stored millimetre distances into pixels or degrees
// of visual angle.
type DisplayGeometry struct {
	PixelsPerMm       float64
	ViewingDistanceMm float64
}

// ConvertDistance converts a millimetre distance to the target units.
// Unknown units fall through to millimetres, matching how the rest of
// the pipeline treats mm as the canonical unit.
func (g DisplayGeometry) ConvertDistance(valueMm float64, targetUnits string) float64 {
	switch targetUnits {
	case MM:
		return valueMm
	case PX:
		return valueMm * g.PixelsPerMm
	case DEG:
		if g.ViewingDistanceMm <= 0 {
			return valueMm
		}
		return 2 * math.Atan(valueMm/(2*g.ViewingDistanceMm)) * 180 / math.Pi
	default:
		return valueMm
	}
}
