package tonal

import (
	"errors"
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
)

func newEstimator(t *testing.T, window string) *FrequencyEstimator {
	t.Helper()
	e, err := NewFrequencyEstimator(FrequencyEstimatorConfig{Window: window})
	if err != nil {
		t.Fatalf("NewFrequencyEstimator(%q): %v", window, err)
	}
	return e
}

func TestEstimateSineWithinOneBin(t *testing.T) {
	const (
		sampleRate = 48000.0
		frameSize  = 4096
	)
	binWidth := sampleRate / frameSize

	for _, window := range []string{"", "hann", "hamming", "blackman"} {
		e := newEstimator(t, window)
		for _, freq := range []float64{82.41, 110, 196, 440, 659.25, 1318.5} {
			est, err := e.Estimate(common.GenerateSine(freq, sampleRate, frameSize), sampleRate)
			if err != nil {
				t.Fatalf("[%s] Estimate(%v): %v", window, freq, err)
			}
			if math.Abs(est.Hz-freq) > binWidth {
				t.Errorf("[%s] %v Hz estimated as %v Hz, beyond one bin (%v)", window, freq, est.Hz, binWidth)
			}
			if est.Magnitude <= 0 || est.Bin < 1 {
				t.Errorf("[%s] %v Hz: unexpected bin %d magnitude %v", window, freq, est.Bin, est.Magnitude)
			}
		}
	}
}

func TestEstimate110HzLandsOnBinNine(t *testing.T) {
	e := newEstimator(t, "")
	est, err := e.Estimate(common.GenerateSine(110, 48000, 4096), 48000)
	if err != nil {
		t.Fatal(err)
	}
	if est.Bin != 9 || math.Abs(est.Hz-105.46875) > 1e-9 {
		t.Errorf("got bin %d / %v Hz, want bin 9 / 105.46875 Hz", est.Bin, est.Hz)
	}
}

func TestEstimateErrors(t *testing.T) {
	e := newEstimator(t, "")

	if _, err := e.Estimate(nil, 48000); !errors.Is(err, ErrNoSamples) {
		t.Errorf("nil samples: got %v, want ErrNoSamples", err)
	}
	for _, rate := range []float64{0, -44100, math.NaN(), math.Inf(1)} {
		if _, err := e.Estimate([]float64{0, 1, 0, -1}, rate); !errors.Is(err, ErrInvalidSampleRate) {
			t.Errorf("rate %v: got %v, want ErrInvalidSampleRate", rate, err)
		}
	}
}

func TestEstimateDegenerateFrames(t *testing.T) {
	e := newEstimator(t, "")

	tests := []struct {
		name    string
		samples []float64
	}{
		{"single sample", []float64{0.7}},
		{"two samples", []float64{1, -1}},
		{"silence", make([]float64, 1024)},
	}
	for _, tt := range tests {
		est, err := e.Estimate(tt.samples, 48000)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if est.Hz != 0 {
			t.Errorf("%s: Hz = %v, want 0", tt.name, est.Hz)
		}
	}
}

func TestEstimateTruncatesToPowerOfTwo(t *testing.T) {
	e := newEstimator(t, "")
	// 1000 samples are analysed as 512, so bin width is 8192/512 = 16 Hz
	samples := common.GenerateSine(480, 8192, 1000)
	est, err := e.Estimate(samples, 8192)
	if err != nil {
		t.Fatal(err)
	}
	if est.Bin != 30 || est.Hz != 480 {
		t.Errorf("got bin %d / %v Hz, want bin 30 / 480 Hz", est.Bin, est.Hz)
	}
}

func TestEstimateDoesNotModifyInput(t *testing.T) {
	e := newEstimator(t, "hann")
	samples := common.GenerateSine(220, 8000, 256)
	orig := append([]float64(nil), samples...)

	if _, err := e.Estimate(samples, 8000); err != nil {
		t.Fatal(err)
	}
	for i := range samples {
		if samples[i] != orig[i] {
			t.Fatalf("sample %d modified by windowing", i)
		}
	}
}

func TestEstimatorRejectsUnknownWindow(t *testing.T) {
	if _, err := NewFrequencyEstimator(FrequencyEstimatorConfig{Window: "triangle-ish"}); err == nil {
		t.Errorf("expected an error for an unknown window")
	}
	if cfg := DefaultFrequencyEstimatorConfig(); cfg.Window != "rectangular" {
		t.Errorf("default window = %q, want rectangular", cfg.Window)
	}
}
