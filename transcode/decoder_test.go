package transcode

import (
	"encoding/binary"
	"errors"
	"math"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/RyanBlaney/sonido-tuner/logging"
)

func TestBytesToFloat64(t *testing.T) {
	want := []float64{0, 1, -0.5, math.Pi}
	data := make([]byte, len(want)*8+3) // trailing partial sample
	for i, v := range want {
		binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(v))
	}

	got := bytesToFloat64(data)
	if !slices.Equal(got, want) {
		t.Errorf("bytesToFloat64 = %v, want %v", got, want)
	}
	if bytesToFloat64([]byte{1, 2, 3}) != nil {
		t.Errorf("fewer than 8 bytes should decode to nil")
	}
}

func TestParseFFprobeOutput(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		wantErr  bool
		wantRate int
	}{
		{
			name:     "stereo flac",
			json:     `{"streams":[{"codec_type":"audio","codec_name":"flac","sample_rate":"44100","channels":2,"duration":"3.5","bit_rate":"900000"}]}`,
			wantRate: 44100,
		},
		{
			name:     "missing rate",
			json:     `{"streams":[{"codec_type":"audio","codec_name":"pcm_s16le","channels":1}]}`,
			wantRate: 0,
		},
		{name: "no streams", json: `{"streams":[]}`, wantErr: true},
		{name: "video stream", json: `{"streams":[{"codec_type":"video","channels":1}]}`, wantErr: true},
		{name: "bad channels", json: `{"streams":[{"codec_type":"audio","channels":0}]}`, wantErr: true},
		{name: "garbage", json: `not json`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := parseFFprobeOutput([]byte(tt.json))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && md.SampleRate != tt.wantRate {
				t.Errorf("SampleRate = %d, want %d", md.SampleRate, tt.wantRate)
			}
		})
	}
}

func TestBuildFFmpegArgs(t *testing.T) {
	cfg := DefaultDecoderConfig()
	cfg.MaxDuration = 1500 * time.Millisecond
	d := NewDecoder(cfg)

	args := d.buildFFmpegArgs("in.wav", &AudioMetadata{SampleRate: 44100})
	joined := " " + strings.Join(args, " ") + " "

	for _, want := range []string{" -i in.wav ", " -f f64le ", " -ac 1 ", " -ar 48000 ", " -t 1.50 ", "precision=20", " pipe:1 "} {
		if !strings.Contains(joined, want) {
			t.Errorf("args %q missing %q", joined, want)
		}
	}

	same := d.buildFFmpegArgs("in.wav", &AudioMetadata{SampleRate: 48000})
	if slices.Contains(same, "-af") {
		t.Errorf("no resampler filter expected when rates match: %v", same)
	}
}

func TestProcessOutputRejectsEmpty(t *testing.T) {
	d := NewDecoder(nil)
	_, err := d.processFFmpegOutput(nil, &AudioMetadata{}, "x", &logging.NoOpLogger{})
	if !errors.Is(err, ErrNoAudio) {
		t.Errorf("got %v, want ErrNoAudio", err)
	}

	data := make([]byte, 48000*8)
	audio, err := d.processFFmpegOutput(data, &AudioMetadata{}, "x", &logging.NoOpLogger{})
	if err != nil {
		t.Fatal(err)
	}
	if audio.Duration != time.Second || audio.SampleRate != 48000 {
		t.Errorf("unexpected audio %+v", audio)
	}
}

func TestValidateConfig(t *testing.T) {
	cfg := DefaultDecoderConfig()
	cfg.TargetSampleRate = 0
	if err := NewDecoder(cfg).ValidateConfig(); err == nil {
		t.Errorf("zero sample rate should be rejected")
	}

	cfg = DefaultDecoderConfig()
	cfg.FFmpegPath = "/nonexistent/ffmpeg-for-tests"
	if err := NewDecoder(cfg).ValidateConfig(); err == nil {
		t.Errorf("missing ffmpeg should be rejected")
	}
}
