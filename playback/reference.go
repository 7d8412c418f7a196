// Package playback plays a reference pitch so strings can be tuned by ear.
package playback

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"github.com/RyanBlaney/sonido-tuner/logging"
)

// ReferenceConfig holds playback configuration
type ReferenceConfig struct {
	SampleRate int           `json:"sample_rate"`
	Volume     float64       `json:"volume"`      // 0..1
	BufferSize time.Duration `json:"buffer_size"` // 0 lets the driver choose
}

// DefaultReferenceConfig returns the default playback configuration
func DefaultReferenceConfig() *ReferenceConfig {
	return &ReferenceConfig{
		SampleRate: 48000,
		Volume:     0.5,
		BufferSize: 50 * time.Millisecond,
	}
}

// ToneReader is an endless mono sine encoded as float32 little-endian. It
// is safe to retune while a player is reading from it.
type ToneReader struct {
	mu      sync.Mutex
	osc     *common.Oscillator
	scratch []float64
}

// NewToneReader creates a tone at frequency Hz.
func NewToneReader(frequency float64, sampleRate int, amplitude float64) *ToneReader {
	return &ToneReader{
		osc: common.NewOscillator(frequency, float64(sampleRate), amplitude),
	}
}

// SetFrequency retunes the tone without a phase jump.
func (r *ToneReader) SetFrequency(hz float64) {
	r.mu.Lock()
	r.osc.SetFrequency(hz)
	r.mu.Unlock()
}

// Frequency returns the tone pitch in Hz
func (r *ToneReader) Frequency() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.osc.Frequency()
}

// Read fills p with whole float32 samples. It never returns io.EOF.
func (r *ToneReader) Read(p []byte) (int, error) {
	n := len(p) / 4
	if n == 0 {
		return 0, nil
	}

	r.mu.Lock()
	if cap(r.scratch) < n {
		r.scratch = make([]float64, n)
	}
	samples := r.scratch[:n]
	r.osc.Read(samples)
	r.mu.Unlock()

	for i, v := range samples {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(float32(v)))
	}
	return n * 4, nil
}

// ReferenceTone plays a ToneReader through the system output.
//
// oto allows a single context per process, so create at most one
// ReferenceTone.
type ReferenceTone struct {
	logger logging.Logger
	ctx    *oto.Context
	player *oto.Player
	reader *ToneReader
}

// NewReferenceTone opens the audio output. The tone starts paused.
func NewReferenceTone(config *ReferenceConfig) (*ReferenceTone, error) {
	if config == nil {
		config = DefaultReferenceConfig()
	}
	if config.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive: %d", config.SampleRate)
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   config.SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   config.BufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open audio output: %w", err)
	}
	<-ready

	reader := NewToneReader(0, config.SampleRate, 1.0)
	player := ctx.NewPlayer(reader)
	player.SetVolume(common.Clamp(config.Volume, 0, 1))

	return &ReferenceTone{
		logger: logging.WithFields(logging.Fields{"component": "reference_tone"}),
		ctx:    ctx,
		player: player,
		reader: reader,
	}, nil
}

// SetFrequency retunes the tone. A non-positive frequency pauses playback.
func (t *ReferenceTone) SetFrequency(hz float64) {
	if hz <= 0 || math.IsNaN(hz) {
		t.Pause()
		return
	}
	t.reader.SetFrequency(hz)
	t.logger.Debug("Reference retuned", logging.Fields{"frequency": hz})
}

// Frequency returns the current tone pitch in Hz
func (t *ReferenceTone) Frequency() float64 {
	return t.reader.Frequency()
}

// Play starts or resumes the tone
func (t *ReferenceTone) Play() {
	if t.reader.Frequency() <= 0 {
		return
	}
	t.player.Play()
}

// Pause silences the tone
func (t *ReferenceTone) Pause() {
	t.player.Pause()
}

// IsPlaying reports whether the tone is audible
func (t *ReferenceTone) IsPlaying() bool {
	return t.player.IsPlaying()
}

// Close stops playback and releases the player.
func (t *ReferenceTone) Close() error {
	t.player.Pause()
	if err := t.player.Close(); err != nil {
		return fmt.Errorf("failed to close player: %w", err)
	}
	return nil
}
