package windowing

import "github.com/mjibson/go-dsp/window"

// Hann is the raised cosine window. It trades some main-lobe width for low
// side lobes.
type Hann struct {
	coefficients
}

// NewHann creates a symmetric hann window of the given size
func NewHann(size int) *Hann {
	return &Hann{coefficients: newCoefficients(TypeHann, window.Hann, size)}
}
