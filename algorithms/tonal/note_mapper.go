package tonal

import (
	"fmt"
	"math"
)

const (
	// UnknownNote is returned for frequencies that do not map to a note.
	UnknownNote = "?"

	// ReferenceFrequency is A4 in Hz.
	ReferenceFrequency = 440.0

	// referenceIndex is A4 counted in semitones from C0.
	referenceIndex = 9 + 4*12

	// noteCount covers C0 through B11.
	noteCount = 12 * 12
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Note is an equal-tempered pitch near a measured frequency.
type Note struct {
	Name      string  `json:"name"`
	Octave    int     `json:"octave"`
	Index     int     `json:"index"`     // semitones above C0
	Frequency float64 `json:"frequency"` // exact pitch of the note
	Cents     float64 `json:"cents"`     // measured minus exact, in cents
}

// String renders the note as name plus octave, e.g. "A4".
func (n Note) String() string {
	return fmt.Sprintf("%s%d", n.Name, n.Octave)
}

// NoteName returns the nearest note name for hz, or UnknownNote.
func NoteName(hz float64) string {
	note, ok := NearestNote(hz)
	if !ok {
		return UnknownNote
	}
	return note.String()
}

// NearestNote maps hz to the closest equal-tempered note relative to A4.
func NearestNote(hz float64) (Note, bool) {
	if !InBand(hz) {
		return Note{}, false
	}

	semitone := int(math.Round(12 * math.Log2(hz/ReferenceFrequency)))
	idx := semitone + referenceIndex
	if idx < 0 || idx >= noteCount {
		return Note{}, false
	}

	exact := NoteFrequency(idx)
	return Note{
		Name:      noteNames[idx%12],
		Octave:    idx / 12,
		Index:     idx,
		Frequency: exact,
		Cents:     1200 * math.Log2(hz/exact),
	}, true
}

// NoteFrequency returns the equal-tempered frequency of a note index.
func NoteFrequency(index int) float64 {
	return ReferenceFrequency * math.Pow(2, float64(index-referenceIndex)/12)
}
