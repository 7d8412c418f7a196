package common

import "math"

// Oscillator generates a continuous sine wave across successive reads, so
// consecutive frames join without phase discontinuities.
type Oscillator struct {
	frequency  float64
	sampleRate float64
	amplitude  float64
	phase      float64
}

// NewOscillator creates a sine oscillator.
func NewOscillator(frequency, sampleRate, amplitude float64) *Oscillator {
	return &Oscillator{
		frequency:  frequency,
		sampleRate: sampleRate,
		amplitude:  amplitude,
	}
}

// SetFrequency changes the pitch while keeping the current phase.
func (o *Oscillator) SetFrequency(frequency float64) {
	o.frequency = frequency
}

// Frequency returns the current pitch in Hz
func (o *Oscillator) Frequency() float64 {
	return o.frequency
}

// SampleRate returns the oscillator sample rate in Hz
func (o *Oscillator) SampleRate() float64 {
	return o.sampleRate
}

// Read fills dst with the next len(dst) samples.
func (o *Oscillator) Read(dst []float64) {
	if o.sampleRate <= 0 {
		clear(dst)
		return
	}

	step := 2 * math.Pi * o.frequency / o.sampleRate
	for i := range dst {
		dst[i] = o.amplitude * math.Sin(o.phase)
		o.phase += step
		if o.phase >= 2*math.Pi {
			o.phase -= 2 * math.Pi
		}
	}
}

// GenerateSine returns n samples of a unit-amplitude sine starting at phase 0.
func GenerateSine(frequency, sampleRate float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	out := make([]float64, n)
	NewOscillator(frequency, sampleRate, 1.0).Read(out)
	return out
}
