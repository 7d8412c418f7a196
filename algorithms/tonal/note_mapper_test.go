package tonal

import (
	"math"
	"testing"
)

func TestNoteName(t *testing.T) {
	tests := []struct {
		hz   float64
		want string
	}{
		{440, "A4"},
		{110, "A2"},
		{82.41, "E2"},
		{261.63, "C4"},
		{105.46875, "G#2"},
		{329.63, "E4"},
		{27.5, "A0"},
		{4186.01, "C8"},
		{0, UnknownNote},
		{20, UnknownNote},
		{6000, UnknownNote},
		{-440, UnknownNote},
		{math.NaN(), UnknownNote},
	}

	for _, tt := range tests {
		if got := NoteName(tt.hz); got != tt.want {
			t.Errorf("NoteName(%v) = %q, want %q", tt.hz, got, tt.want)
		}
	}
}

func TestNearestNoteCents(t *testing.T) {
	note, ok := NearestNote(445)
	if !ok {
		t.Fatal("445 Hz should map to a note")
	}
	if note.Name != "A" || note.Octave != 4 || note.Index != 57 {
		t.Errorf("unexpected note %+v", note)
	}
	if note.Frequency != 440 {
		t.Errorf("Frequency = %v, want 440", note.Frequency)
	}
	wantCents := 1200 * math.Log2(445.0/440.0)
	if math.Abs(note.Cents-wantCents) > 1e-9 || note.Cents <= 0 {
		t.Errorf("Cents = %v, want %v", note.Cents, wantCents)
	}

	if _, ok := NearestNote(5000); ok {
		t.Errorf("5000 Hz is outside the band")
	}
}

func TestNoteFrequency(t *testing.T) {
	if got := NoteFrequency(45); math.Abs(got-220) > 1e-9 {
		t.Errorf("NoteFrequency(45) = %v, want 220", got)
	}
	if got := NoteFrequency(48); math.Abs(got-261.6256) > 1e-3 {
		t.Errorf("NoteFrequency(48) = %v, want ~261.63", got)
	}
}
