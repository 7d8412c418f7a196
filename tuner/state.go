package tuner

import "time"

// TuningStatus is the verdict for the current pitch against the target.
type TuningStatus int

const (
	StatusUnknown TuningStatus = iota
	StatusInTune
	StatusTooLow
	StatusTooHigh
)

// String returns the status name
func (s TuningStatus) String() string {
	switch s {
	case StatusInTune:
		return "in tune"
	case StatusTooLow:
		return "too low"
	case StatusTooHigh:
		return "too high"
	default:
		return "unknown"
	}
}

// Hint tells the player which way to turn the peg.
func (s TuningStatus) Hint() string {
	switch s {
	case StatusInTune:
		return "in tune"
	case StatusTooLow:
		return "raise pitch"
	case StatusTooHigh:
		return "lower pitch"
	default:
		return ""
	}
}

// SessionState is the lifecycle state of a Session.
type SessionState int32

const (
	Idle SessionState = iota
	Tracking
)

func (s SessionState) String() string {
	if s == Tracking {
		return "tracking"
	}
	return "idle"
}

// AudioFrame is a block of mono samples handed to the session. The session
// does not keep a reference to Samples after OnFrame returns.
type AudioFrame struct {
	Samples    []float64
	SampleRate float64
	Timestamp  time.Time
}

// TuningState is the snapshot published after every processed frame.
type TuningState struct {
	Frequency       float64      `json:"frequency"` // stabilized, 0 until an estimate is accepted
	Note            string       `json:"note"`
	TargetFrequency float64      `json:"target_frequency"`
	Status          TuningStatus `json:"status"`
	IsTuned         bool         `json:"is_tuned"`

	RawFrequency float64   `json:"raw_frequency"`
	Magnitude    float64   `json:"magnitude"`
	Timestamp    time.Time `json:"timestamp"`
	Sequence     uint64    `json:"sequence"`
}

// SessionStats counts what happened to delivered frames.
type SessionStats struct {
	Processed   uint64 `json:"processed"`
	Skipped     uint64 `json:"skipped"`  // estimator errors
	Ignored     uint64 `json:"ignored"`  // arrived while idle or while another frame was in flight
	Rejected    uint64 `json:"rejected"` // estimates outside the accepted band
	Subscribers int    `json:"subscribers"`
}
