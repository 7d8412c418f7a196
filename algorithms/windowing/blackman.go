package windowing

import "github.com/mjibson/go-dsp/window"

// Blackman has the strongest side-lobe suppression of the supported windows.
type Blackman struct {
	coefficients
}

// NewBlackman creates a symmetric blackman window of the given size
func NewBlackman(size int) *Blackman {
	return &Blackman{coefficients: newCoefficients(TypeBlackman, window.Blackman, size)}
}
