package tuner

import "time"

// FrameHandler receives one block of mono samples. It is called on the
// source's own goroutine and must not block.
type FrameHandler func(samples []float64, sampleRate float64, timestamp time.Time)

// FrameSource delivers audio frames to a single subscribed handler.
type FrameSource interface {
	Subscribe(handler FrameHandler) error
	Unsubscribe() error
}
