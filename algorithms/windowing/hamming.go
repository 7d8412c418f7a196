package windowing

import "github.com/mjibson/go-dsp/window"

// Hamming is a raised cosine with a non-zero floor and a lower first side
// lobe than Hann.
type Hamming struct {
	coefficients
}

// NewHamming creates a symmetric hamming window of the given size
func NewHamming(size int) *Hamming {
	return &Hamming{coefficients: newCoefficients(TypeHamming, window.Hamming, size)}
}
