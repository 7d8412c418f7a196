// Package capture provides live frame sources for a tuning session.
package capture

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"github.com/RyanBlaney/sonido-tuner/logging"
	"github.com/RyanBlaney/sonido-tuner/tuner"
)

// MicrophoneConfig holds capture device configuration
type MicrophoneConfig struct {
	SampleRate uint32 `json:"sample_rate"`
	FrameSize  int    `json:"frame_size"`
	HopSize    int    `json:"hop_size"`    // 0 means frames do not overlap
	DeviceName string `json:"device_name"` // empty selects the system default
}

// DefaultMicrophoneConfig returns 4096-sample frames at 48 kHz
func DefaultMicrophoneConfig() *MicrophoneConfig {
	return &MicrophoneConfig{
		SampleRate: 48000,
		FrameSize:  4096,
	}
}

// Microphone captures mono float32 audio with miniaudio and hands fixed-size
// frames to a subscribed handler on the device thread.
type Microphone struct {
	config *MicrophoneConfig
	logger logging.Logger

	mu     sync.Mutex
	ctx    *malgo.AllocatedContext
	device *malgo.Device

	// owned by the device callback
	framer  *common.Framer
	scratch []float64
}

var _ tuner.FrameSource = (*Microphone)(nil)

// NewMicrophone initialises the audio backend. Call Close when done.
func NewMicrophone(config *MicrophoneConfig) (*Microphone, error) {
	if config == nil {
		config = DefaultMicrophoneConfig()
	}
	if config.FrameSize < 2 {
		return nil, fmt.Errorf("frame size must be at least 2, got %d", config.FrameSize)
	}

	logger := logging.WithFields(logging.Fields{"component": "microphone"})

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		logger.Debug("malgo", logging.Fields{"message": message})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialise audio context: %w", err)
	}

	return &Microphone{
		config: config,
		logger: logger,
		ctx:    ctx,
		framer: common.NewFramer(config.FrameSize, config.HopSize),
	}, nil
}

// Devices lists capture device names
func (m *Microphone) Devices() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx == nil {
		return nil, fmt.Errorf("microphone is closed")
	}
	infos, err := m.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to list capture devices: %w", err)
	}

	names := make([]string, 0, len(infos))
	for i := range infos {
		names = append(names, infos[i].Name())
	}
	return names, nil
}

// Subscribe opens and starts the capture device.
func (m *Microphone) Subscribe(handler tuner.FrameHandler) error {
	if handler == nil {
		return tuner.ErrNilHandler
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx == nil {
		return fmt.Errorf("microphone is closed")
	}
	if m.device != nil {
		return tuner.ErrAlreadySubscribed
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatF32
	cfg.Capture.Channels = 1
	cfg.SampleRate = m.config.SampleRate
	cfg.Alsa.NoMMap = 1

	if m.config.DeviceName != "" {
		info, err := m.findDevice(m.config.DeviceName)
		if err != nil {
			return err
		}
		cfg.Capture.DeviceID = info.ID.Pointer()
	}

	m.framer.Reset()
	sampleRate := float64(m.config.SampleRate)

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			if len(input) == 0 {
				return
			}
			m.scratch = decodeFloat32LE(m.scratch, input)
			now := time.Now()
			m.framer.AddSamples(m.scratch, func(frame []float64) {
				handler(frame, sampleRate, now)
			})
		},
	}

	device, err := malgo.InitDevice(m.ctx.Context, cfg, callbacks)
	if err != nil {
		return fmt.Errorf("failed to init capture device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("failed to start capture device: %w", err)
	}
	m.device = device

	m.logger.Info("Capture started", logging.Fields{
		"sample_rate": device.SampleRate(),
		"frame_size":  m.framer.FrameSize(),
		"hop_size":    m.framer.HopSize(),
		"device":      m.config.DeviceName,
	})
	return nil
}

// Unsubscribe stops and releases the capture device.
func (m *Microphone) Unsubscribe() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		return nil
	}

	err := m.device.Stop()
	m.device.Uninit()
	m.device = nil
	if err != nil {
		return fmt.Errorf("failed to stop capture device: %w", err)
	}

	m.logger.Info("Capture stopped")
	return nil
}

// Close stops capture and releases the audio backend.
func (m *Microphone) Close() error {
	if err := m.Unsubscribe(); err != nil {
		m.logger.Warn("Stopping capture during close failed", logging.Fields{"error": err.Error()})
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx == nil {
		return nil
	}
	err := m.ctx.Uninit()
	m.ctx.Free()
	m.ctx = nil
	if err != nil {
		return fmt.Errorf("failed to release audio context: %w", err)
	}
	return nil
}

func (m *Microphone) findDevice(name string) (*malgo.DeviceInfo, error) {
	infos, err := m.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to list capture devices: %w", err)
	}
	for i := range infos {
		if infos[i].Name() == name {
			return &infos[i], nil
		}
	}
	return nil, fmt.Errorf("capture device %q not found", name)
}

// decodeFloat32LE converts interleaved float32 little-endian bytes to
// float64, reusing dst.
func decodeFloat32LE(dst []float64, src []byte) []float64 {
	n := len(src) / 4
	if cap(dst) < n {
		dst = make([]float64, n)
	}
	dst = dst[:n]
	for i := range dst {
		dst[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:])))
	}
	return dst
}
