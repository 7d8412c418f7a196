package tonal

import "github.com/RyanBlaney/sonido-tuner/algorithms/common"

const (
	// StabilizerWindowSize is the number of accepted estimates averaged.
	StabilizerWindowSize = 10

	// MinFrequency and MaxFrequency bound the open band of plausible pitches.
	MinFrequency = 20.0
	MaxFrequency = 5000.0
)

// InBand reports whether hz lies strictly inside (MinFrequency, MaxFrequency).
func InBand(hz float64) bool {
	return hz > MinFrequency && hz < MaxFrequency
}

// FrequencyStabilizer smooths raw estimates with a moving average over the
// most recent in-band values. Out-of-band input leaves the window alone.
type FrequencyStabilizer struct {
	window  *common.CircularBuffer
	scratch []float64
	value   float64
}

// NewFrequencyStabilizer creates a stabilizer averaging the last
// StabilizerWindowSize accepted estimates.
func NewFrequencyStabilizer() *FrequencyStabilizer {
	return newFrequencyStabilizer(StabilizerWindowSize)
}

// newFrequencyStabilizer lets tests use a shorter window.
func newFrequencyStabilizer(size int) *FrequencyStabilizer {
	if size < 1 {
		size = StabilizerWindowSize
	}
	return &FrequencyStabilizer{
		window:  common.NewCircularBuffer(size),
		scratch: make([]float64, size),
	}
}

// Add feeds one raw estimate and returns the stabilized frequency. When hz is
// rejected the previous value is returned, which is 0 before anything has
// been accepted.
func (s *FrequencyStabilizer) Add(hz float64) float64 {
	if !InBand(hz) {
		return s.value
	}

	s.window.Push(hz)
	n := s.window.Peek(s.scratch)
	s.value = common.Mean(s.scratch[:n])
	return s.value
}

// Value returns the current stabilized frequency
func (s *FrequencyStabilizer) Value() float64 {
	return s.value
}

// Len returns how many values the window holds
func (s *FrequencyStabilizer) Len() int {
	return s.window.Available()
}

// Window copies the held values, oldest first, into dst and returns how many
// were written.
func (s *FrequencyStabilizer) Window(dst []float64) int {
	return s.window.Peek(dst)
}

// Reset empties the window
func (s *FrequencyStabilizer) Reset() {
	s.window.Clear()
	s.value = 0
}
