package transcode

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/RyanBlaney/sonido-tuner/logging"
	"github.com/RyanBlaney/sonido-tuner/tuner"
)

// PCMSource replays decoded samples as consecutive frames on its own
// goroutine. It implements tuner.FrameSource.
type PCMSource struct {
	samples    []float64
	sampleRate float64
	frameSize  int
	paced      bool
	logger     logging.Logger

	mu       sync.Mutex
	position int
	started  time.Time
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	done     chan struct{}
	doneOnce sync.Once
}

var _ tuner.FrameSource = (*PCMSource)(nil)

// NewPCMSource creates a paced source over samples. A trailing partial frame
// is not delivered.
func NewPCMSource(samples []float64, sampleRate float64, frameSize int) *PCMSource {
	if frameSize < 1 {
		frameSize = 4096
	}
	return &PCMSource{
		samples:    samples,
		sampleRate: sampleRate,
		frameSize:  frameSize,
		paced:      true,
		logger:     logging.WithFields(logging.Fields{"component": "pcm_source"}),
		done:       make(chan struct{}),
	}
}

// NewFileSource decodes path and wraps the result in a paced PCMSource. The
// decoder is validated first so a missing ffmpeg is reported before any
// work starts.
func NewFileSource(ctx context.Context, decoder *Decoder, path string, frameSize int) (*PCMSource, error) {
	if decoder == nil {
		decoder = NewDecoder(nil)
	}
	if err := decoder.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("failed to open file source: %w", err)
	}
	audio, err := decoder.DecodeFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file source: %w", err)
	}
	return NewPCMSource(audio.PCM, float64(audio.SampleRate), frameSize), nil
}

// NewStreamSource decodes everything readable from r, typically stdin, and
// wraps the result in a paced PCMSource. r is not read when the decoder is
// misconfigured.
func NewStreamSource(ctx context.Context, decoder *Decoder, r io.Reader, frameSize int) (*PCMSource, error) {
	if decoder == nil {
		decoder = NewDecoder(nil)
	}
	if err := decoder.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("failed to open stream source: %w", err)
	}
	audio, err := decoder.DecodeReader(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream source: %w", err)
	}
	return NewPCMSource(audio.PCM, float64(audio.SampleRate), frameSize), nil
}

// SetPaced chooses between real-time delivery and delivering frames as fast
// as the handler returns. It takes effect on the next Subscribe.
func (s *PCMSource) SetPaced(paced bool) {
	s.mu.Lock()
	s.paced = paced
	s.mu.Unlock()
}

// SampleRate returns the sample rate in Hz
func (s *PCMSource) SampleRate() float64 {
	return s.sampleRate
}

// FrameCount returns the number of whole frames in the source.
func (s *PCMSource) FrameCount() int {
	return len(s.samples) / s.frameSize
}

// Done is closed once every frame has been delivered.
func (s *PCMSource) Done() <-chan struct{} {
	return s.done
}

// Subscribe starts delivery to handler, resuming where a previous
// subscription stopped.
func (s *PCMSource) Subscribe(handler tuner.FrameHandler) error {
	if handler == nil {
		return tuner.ErrNilHandler
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return tuner.ErrAlreadySubscribed
	}
	if s.started.IsZero() {
		s.started = time.Now()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go s.deliver(ctx, handler, s.paced)

	s.logger.Debug("Frame delivery started", logging.Fields{
		"position":    s.position,
		"frame_size":  s.frameSize,
		"sample_rate": s.sampleRate,
		"paced":       s.paced,
	})
	return nil
}

// Unsubscribe stops delivery and waits for the delivery goroutine to exit.
// It must not be called from inside the handler.
func (s *PCMSource) Unsubscribe() error {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	s.wg.Wait()
	return nil
}

func (s *PCMSource) deliver(ctx context.Context, handler tuner.FrameHandler, paced bool) {
	defer s.wg.Done()

	var tick <-chan time.Time
	if paced && s.sampleRate > 0 {
		interval := time.Duration(float64(s.frameSize) * float64(time.Second) / s.sampleRate)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		s.mu.Lock()
		pos := s.position
		s.mu.Unlock()

		end := pos + s.frameSize
		if end > len(s.samples) {
			s.doneOnce.Do(func() { close(s.done) })
			return
		}

		select {
		case <-ctx.Done():
			return
		default:
		}

		offset := time.Duration(float64(pos) * float64(time.Second) / s.sampleRate)
		handler(s.samples[pos:end:end], s.sampleRate, s.started.Add(offset))

		s.mu.Lock()
		s.position = end
		s.mu.Unlock()

		if tick != nil {
			select {
			case <-ctx.Done():
				return
			case <-tick:
			}
		}
	}
}
