package windowing

import (
	"fmt"
	"strings"
)

// Window is a precomputed tapering function applied to analysis frames.
type Window interface {
	// ApplyInPlace multiplies signal by the window coefficients.
	ApplyInPlace(signal []float64) error
	GetCoefficients() []float64
	GetSize() int
	GetType() string
}

// Window names accepted by New.
const (
	TypeRectangular = "rectangular"
	TypeHann        = "hann"
	TypeHamming     = "hamming"
	TypeBlackman    = "blackman"
)

// New builds a window of the named type. An empty name selects the
// rectangular window.
func New(kind string, size int) (Window, error) {
	if size < 1 {
		return nil, fmt.Errorf("window size must be positive, got %d", size)
	}

	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", TypeRectangular, "none":
		return NewRectangular(size), nil
	case TypeHann, "hanning":
		return NewHann(size), nil
	case TypeHamming:
		return NewHamming(size), nil
	case TypeBlackman:
		return NewBlackman(size), nil
	default:
		return nil, fmt.Errorf("unknown window type %q", kind)
	}
}

// coefficients holds the shared behaviour of the go-dsp backed windows.
type coefficients struct {
	kind   string
	values []float64
}

func newCoefficients(kind string, fn func(int) []float64, size int) coefficients {
	return coefficients{kind: kind, values: fn(size)}
}

func (c coefficients) ApplyInPlace(signal []float64) error {
	if len(signal) != len(c.values) {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), len(c.values))
	}
	for i := range signal {
		signal[i] *= c.values[i]
	}
	return nil
}

// GetCoefficients returns a copy of the window coefficients
func (c coefficients) GetCoefficients() []float64 {
	out := make([]float64, len(c.values))
	copy(out, c.values)
	return out
}

func (c coefficients) GetSize() int { return len(c.values) }

func (c coefficients) GetType() string { return c.kind }
