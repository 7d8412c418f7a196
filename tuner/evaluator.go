package tuner

import "math"

// Tolerance is the half-width in Hz of the in-tune window around the target.
const Tolerance = 1.0

// Evaluate compares a stabilized frequency with the target. A target of 0
// means nothing is selected.
func Evaluate(stabilized, target float64) (TuningStatus, bool) {
	switch {
	case target == 0:
		return StatusUnknown, false
	case math.Abs(stabilized-target) < Tolerance:
		return StatusInTune, true
	case stabilized < target:
		return StatusTooLow, false
	default:
		return StatusTooHigh, false
	}
}

// evaluate is Evaluate with the extra rule that no accepted estimate yet
// means the status is unknown.
func evaluate(stabilized, target float64) (TuningStatus, bool) {
	if stabilized <= 0 {
		return StatusUnknown, false
	}
	return Evaluate(stabilized, target)
}
