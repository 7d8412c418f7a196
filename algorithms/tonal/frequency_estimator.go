package tonal

import (
	"errors"
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"github.com/RyanBlaney/sonido-tuner/algorithms/spectral"
	"github.com/RyanBlaney/sonido-tuner/algorithms/windowing"
)

var (
	// ErrNoSamples is returned when a frame carries no audio.
	ErrNoSamples = errors.New("frame has no samples")

	// ErrInvalidSampleRate is returned for zero, negative or non-finite rates.
	ErrInvalidSampleRate = errors.New("invalid sample rate")
)

// FrequencyEstimate is the dominant spectral peak of one frame.
type FrequencyEstimate struct {
	Hz        float64 `json:"hz"`        // 0 means no pitch was found
	Magnitude float64 `json:"magnitude"` // |X[k]| at the chosen bin
	Bin       int     `json:"bin"`
}

// FrequencyEstimatorConfig holds estimator parameters
type FrequencyEstimatorConfig struct {
	// Window names the tapering function applied before the transform.
	// Empty selects the rectangular window, which leaves samples untouched.
	Window string `json:"window"`
}

// DefaultFrequencyEstimatorConfig returns the unwindowed configuration
func DefaultFrequencyEstimatorConfig() FrequencyEstimatorConfig {
	return FrequencyEstimatorConfig{Window: windowing.TypeRectangular}
}

// FrequencyEstimator picks the strongest non-DC bin of a real FFT.
//
// The resolution is sampleRate/N, so a 4096-sample frame at 48 kHz lands on
// multiples of 11.71875 Hz. Scratch buffers are reused between calls, which
// makes an estimator unsafe for concurrent use; give each frame path its own.
type FrequencyEstimator struct {
	config FrequencyEstimatorConfig
	fft    *spectral.FFT

	frame      []float64
	magnitudes []float64
	window     windowing.Window
}

// NewFrequencyEstimator validates the config and creates an estimator.
func NewFrequencyEstimator(config FrequencyEstimatorConfig) (*FrequencyEstimator, error) {
	if _, err := windowing.New(config.Window, 1); err != nil {
		return nil, fmt.Errorf("frequency estimator: %w", err)
	}
	return &FrequencyEstimator{
		config: config,
		fft:    spectral.NewFFT(),
	}, nil
}

// Estimate returns the dominant frequency of samples.
//
// Frames whose length is not a power of two are truncated to the largest
// power of two that fits. Fewer than two samples, or a silent frame, yield
// Hz == 0 without an error.
func (e *FrequencyEstimator) Estimate(samples []float64, sampleRate float64) (FrequencyEstimate, error) {
	if len(samples) == 0 {
		return FrequencyEstimate{}, ErrNoSamples
	}
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return FrequencyEstimate{}, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}
	if len(samples) < 2 {
		return FrequencyEstimate{}, nil
	}

	n := common.PreviousPowerOfTwo(len(samples))
	if cap(e.frame) < n {
		e.frame = make([]float64, n)
	}
	e.frame = e.frame[:n]
	copy(e.frame, samples[:n])

	if err := e.applyWindow(e.frame); err != nil {
		return FrequencyEstimate{}, err
	}

	e.magnitudes = e.fft.HalfMagnitude(e.frame, e.magnitudes)

	// bin 0 is DC and never a pitch
	idx, peak := common.ArgMax(e.magnitudes[1:])
	if idx < 0 || peak <= 0 || math.IsNaN(peak) {
		return FrequencyEstimate{}, nil
	}
	bin := idx + 1

	return FrequencyEstimate{
		Hz:        spectral.BinFrequency(bin, sampleRate, n),
		Magnitude: peak,
		Bin:       bin,
	}, nil
}

// Config returns the estimator configuration
func (e *FrequencyEstimator) Config() FrequencyEstimatorConfig {
	return e.config
}

func (e *FrequencyEstimator) applyWindow(frame []float64) error {
	switch e.config.Window {
	case "", windowing.TypeRectangular:
		return nil
	}

	if e.window == nil || e.window.GetSize() != len(frame) {
		w, err := windowing.New(e.config.Window, len(frame))
		if err != nil {
			return err
		}
		e.window = w
	}
	return e.window.ApplyInPlace(frame)
}
