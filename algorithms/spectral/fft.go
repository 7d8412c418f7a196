package spectral

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT wraps the mjibson/go-dsp transform for real-valued frames.
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the forward transform of a real signal.
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	return fft.FFTReal(x)
}

// HalfMagnitude writes |X[k]| for k in [0, N/2) into dst, growing it when it
// is too small, and returns the filled slice. Real input makes the upper half
// of the spectrum a mirror image, so it is never computed.
func (f *FFT) HalfMagnitude(x []float64, dst []float64) []float64 {
	half := len(x) / 2
	if cap(dst) < half {
		dst = make([]float64, half)
	}
	dst = dst[:half]
	if half == 0 {
		return dst
	}

	spectrum := f.Compute(x)
	for k := range dst {
		dst[k] = cmplx.Abs(spectrum[k])
	}
	return dst
}

// BinWidth returns the frequency resolution sampleRate/frameLength.
func BinWidth(sampleRate float64, frameLength int) float64 {
	if frameLength <= 0 {
		return 0
	}
	return sampleRate / float64(frameLength)
}

// BinFrequency converts a bin index to Hz.
func BinFrequency(bin int, sampleRate float64, frameLength int) float64 {
	return float64(bin) * BinWidth(sampleRate, frameLength)
}
