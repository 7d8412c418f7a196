package tuner

import (
	"github.com/RyanBlaney/sonido-tuner/algorithms/windowing"
	"github.com/RyanBlaney/sonido-tuner/logging"
)

// Config holds session configuration
type Config struct {
	// Window is applied to each frame before the FFT. See windowing.New.
	Window string `json:"window"`

	// Logger overrides the global logger. Nothing is logged per frame.
	Logger logging.Logger `json:"-"`
}

// DefaultConfig returns the default session configuration
func DefaultConfig() *Config {
	return &Config{
		Window: windowing.TypeRectangular,
	}
}
