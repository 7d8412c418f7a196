package windowing

import "github.com/mjibson/go-dsp/window"

// Rectangular is the boxcar window. Applying it leaves the frame unchanged.
type Rectangular struct {
	coefficients
}

// NewRectangular creates a symmetric rectangular window of the given size
func NewRectangular(size int) *Rectangular {
	return &Rectangular{coefficients: newCoefficients(TypeRectangular, window.Rectangular, size)}
}
