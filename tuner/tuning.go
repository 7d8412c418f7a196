package tuner

import "strings"

// StringNote is one string of an instrument tuning.
type StringNote struct {
	String    int     `json:"string" yaml:"string"` // 1-based, as printed on the instrument
	Note      string  `json:"note" yaml:"note"`
	Frequency float64 `json:"frequency" yaml:"frequency"`
}

// Tuning is a named, ordered set of string pitches. Order is string order and
// pitches may repeat.
type Tuning struct {
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Strings     []StringNote `json:"tuning" yaml:"tuning"`
}

// Clone returns a deep copy.
func (t Tuning) Clone() Tuning {
	c := t
	if t.Strings != nil {
		c.Strings = make([]StringNote, len(t.Strings))
		copy(c.Strings, t.Strings)
	}
	return c
}

// FirstString returns the first string in order, if any.
func (t Tuning) FirstString() (StringNote, bool) {
	if len(t.Strings) == 0 {
		return StringNote{}, false
	}
	return t.Strings[0], true
}

// StringByNumber finds a string by its 1-based number.
func (t Tuning) StringByNumber(number int) (StringNote, bool) {
	for _, s := range t.Strings {
		if s.String == number {
			return s, true
		}
	}
	return StringNote{}, false
}

func cloneTunings(tunings []Tuning) []Tuning {
	out := make([]Tuning, len(tunings))
	for i, t := range tunings {
		out[i] = t.Clone()
	}
	return out
}

func findTuning(tunings []Tuning, name string) (Tuning, bool) {
	name = strings.TrimSpace(name)
	for _, t := range tunings {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Tuning{}, false
}
