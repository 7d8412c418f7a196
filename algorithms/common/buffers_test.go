package common

import (
	"math"
	"testing"
)

func TestCircularBufferEvictsOldest(t *testing.T) {
	cb := NewCircularBuffer(3)

	for _, v := range []float64{1, 2, 3} {
		if cb.Push(v) {
			t.Fatalf("push %v should not evict before the buffer is full", v)
		}
	}
	if cb.Available() != 3 {
		t.Fatalf("Available() = %d after 3 pushes, want 3", cb.Available())
	}
	if !cb.Push(4) {
		t.Fatalf("push into a full buffer should evict")
	}

	got := make([]float64, 5)
	n := cb.Peek(got)
	want := []float64{2, 3, 4}
	if n != len(want) {
		t.Fatalf("Peek returned %d values, want %d", n, len(want))
	}
	for i, v := range want {
		if got[i] != v {
			t.Errorf("Peek()[%d] = %v, want %v", i, got[i], v)
		}
	}

	if cb.Available() != 3 {
		t.Errorf("Available() = %d after eviction, want 3", cb.Available())
	}
}

func TestCircularBufferWrapsManyTimes(t *testing.T) {
	cb := NewCircularBuffer(4)
	for i := 1; i <= 103; i++ {
		cb.Push(float64(i))
	}

	for i, want := range []float64{100, 101, 102, 103} {
		got, ok := cb.At(i)
		if !ok || got != want {
			t.Errorf("At(%d) = %v, %v, want %v", i, got, ok, want)
		}
	}
	if _, ok := cb.At(4); ok {
		t.Errorf("At(4) should be out of range")
	}
}

func TestCircularBufferClear(t *testing.T) {
	cb := NewCircularBuffer(2)
	for _, v := range []float64{1, 2, 3} {
		cb.Push(v)
	}
	cb.Clear()

	if cb.Available() != 0 {
		t.Fatalf("buffer should be empty after Clear")
	}
	if _, ok := cb.At(0); ok {
		t.Fatalf("At(0) should report false on an empty buffer")
	}

	cb.Push(7)
	if got, ok := cb.At(0); !ok || got != 7 {
		t.Errorf("At(0) = %v, %v after refill, want 7, true", got, ok)
	}
}

func TestFramerRegroupsChunks(t *testing.T) {
	f := NewFramer(4, 0)
	var frames [][]float64
	collect := func(frame []float64) {
		cp := make([]float64, len(frame))
		copy(cp, frame)
		frames = append(frames, cp)
	}

	f.AddSamples([]float64{1, 2, 3}, collect)
	if len(frames) != 0 || f.Pending() != 3 {
		t.Fatalf("no frame expected yet, pending=%d", f.Pending())
	}

	f.AddSamples([]float64{4, 5, 6, 7, 8, 9}, collect)
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[0][0] != 1 || frames[0][3] != 4 || frames[1][0] != 5 || frames[1][3] != 8 {
		t.Errorf("unexpected frames: %v", frames)
	}
	if f.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", f.Pending())
	}
}

func TestFramerOverlap(t *testing.T) {
	f := NewFramer(4, 2)
	var firsts []float64
	f.AddSamples([]float64{1, 2, 3, 4, 5, 6, 7, 8}, func(frame []float64) {
		firsts = append(firsts, frame[0])
	})

	want := []float64{1, 3, 5}
	if len(firsts) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(firsts))
	}
	for i := range want {
		if firsts[i] != want[i] {
			t.Errorf("frame %d starts with %v, want %v", i, firsts[i], want[i])
		}
	}
}

func TestFramerNormalizesSizes(t *testing.T) {
	tests := []struct {
		frame, hop         int
		wantFrame, wantHop int
	}{
		{4096, 0, 4096, 4096},
		{4096, 1024, 4096, 1024},
		{4096, 8192, 4096, 4096},
		{0, -1, 1, 1},
	}

	for _, tt := range tests {
		f := NewFramer(tt.frame, tt.hop)
		if f.FrameSize() != tt.wantFrame || f.HopSize() != tt.wantHop {
			t.Errorf("NewFramer(%d, %d) = %d/%d, want %d/%d",
				tt.frame, tt.hop, f.FrameSize(), f.HopSize(), tt.wantFrame, tt.wantHop)
		}
	}
}

func TestPowerOfTwoHelpers(t *testing.T) {
	tests := []struct {
		n        int
		isPow    bool
		previous int
	}{
		{0, false, 0},
		{1, true, 1},
		{3, false, 2},
		{4096, true, 4096},
		{4100, false, 4096},
	}

	for _, tt := range tests {
		if got := IsPowerOfTwo(tt.n); got != tt.isPow {
			t.Errorf("IsPowerOfTwo(%d) = %v", tt.n, got)
		}
		if got := PreviousPowerOfTwo(tt.n); got != tt.previous {
			t.Errorf("PreviousPowerOfTwo(%d) = %d, want %d", tt.n, got, tt.previous)
		}
	}
}

func TestArgMaxFirstIndexWinsTies(t *testing.T) {
	idx, v := ArgMax([]float64{0, 3, 1, 3})
	if idx != 1 || v != 3 {
		t.Errorf("ArgMax = %d, %v, want 1, 3", idx, v)
	}
	if idx, _ := ArgMax(nil); idx != -1 {
		t.Errorf("ArgMax(nil) index = %d, want -1", idx)
	}
}

func TestOscillatorContinuity(t *testing.T) {
	whole := GenerateSine(110, 48000, 256)

	osc := NewOscillator(110, 48000, 1.0)
	first := make([]float64, 100)
	second := make([]float64, 156)
	osc.Read(first)
	osc.Read(second)

	joined := append(first, second...)
	for i := range whole {
		if math.Abs(whole[i]-joined[i]) > 1e-9 {
			t.Fatalf("sample %d differs: %v vs %v", i, whole[i], joined[i])
		}
	}
}

func TestMean(t *testing.T) {
	if got := Mean([]float64{439, 440, 441, 444}); math.Abs(got-441) > 1e-12 {
		t.Errorf("Mean = %v, want 441", got)
	}
	if Mean(nil) != 0 {
		t.Errorf("Mean(nil) should be 0")
	}
}
