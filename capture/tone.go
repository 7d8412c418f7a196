package capture

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"github.com/RyanBlaney/sonido-tuner/logging"
	"github.com/RyanBlaney/sonido-tuner/tuner"
)

// ToneSource synthesises a sine and delivers it in real time, standing in for
// a microphone in demos and tests.
type ToneSource struct {
	sampleRate float64
	frameSize  int
	interval   time.Duration
	logger     logging.Logger

	frequency atomic.Uint64 // math.Float64bits

	mu     sync.Mutex
	osc    *common.Oscillator
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ tuner.FrameSource = (*ToneSource)(nil)

// NewToneSource creates a source producing frameSize samples per frame.
func NewToneSource(frequency, sampleRate float64, frameSize int) *ToneSource {
	if frameSize < 1 {
		frameSize = 4096
	}
	t := &ToneSource{
		sampleRate: sampleRate,
		frameSize:  frameSize,
		logger:     logging.WithFields(logging.Fields{"component": "tone_source"}),
		osc:        common.NewOscillator(frequency, sampleRate, 0.8),
	}
	if sampleRate > 0 {
		t.interval = time.Duration(float64(frameSize) * float64(time.Second) / sampleRate)
	}
	t.frequency.Store(math.Float64bits(frequency))
	return t
}

// SetInterval overrides the delivery period. Zero delivers back to back.
func (t *ToneSource) SetInterval(interval time.Duration) {
	t.mu.Lock()
	t.interval = interval
	t.mu.Unlock()
}

// SetFrequency retunes the tone from the next frame on.
func (t *ToneSource) SetFrequency(hz float64) {
	t.frequency.Store(math.Float64bits(hz))
}

// Frequency returns the tone pitch in Hz
func (t *ToneSource) Frequency() float64 {
	return math.Float64frombits(t.frequency.Load())
}

// Subscribe starts generating frames for handler.
func (t *ToneSource) Subscribe(handler tuner.FrameHandler) error {
	if handler == nil {
		return tuner.ErrNilHandler
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		return tuner.ErrAlreadySubscribed
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.wg.Add(1)
	go t.run(ctx, handler, t.interval)

	t.logger.Debug("Tone started", logging.Fields{
		"frequency":  t.Frequency(),
		"frame_size": t.frameSize,
	})
	return nil
}

// Unsubscribe stops generation and waits for the generator to exit.
func (t *ToneSource) Unsubscribe() error {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
		t.wg.Wait()
	}
	return nil
}

func (t *ToneSource) run(ctx context.Context, handler tuner.FrameHandler, interval time.Duration) {
	defer t.wg.Done()

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	frame := make([]float64, t.frameSize)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		t.osc.SetFrequency(t.Frequency())
		t.osc.Read(frame)
		handler(frame, t.sampleRate, time.Now())

		if tick != nil {
			select {
			case <-ctx.Done():
				return
			case <-tick:
			}
		}
	}
}
