package tuner

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RyanBlaney/sonido-tuner/algorithms/tonal"
	"github.com/RyanBlaney/sonido-tuner/logging"
)

// Session turns a stream of audio frames into tuning feedback.
//
// Frames flow estimator -> stabilizer -> note mapper and evaluator, and each
// one replaces the published TuningState. OnFrame takes no locks and does no
// logging, so it is safe to call from an audio callback. Selection, Start,
// Stop and the read side may be called from any goroutine.
type Session struct {
	config *Config
	source FrameSource
	logger logging.Logger

	// owned by the frame path, guarded by inFrame
	estimator  *tonal.FrequencyEstimator
	stabilizer *tonal.FrequencyStabilizer
	inFrame    atomic.Bool

	state   atomic.Int32
	control sync.Mutex

	target  atomic.Uint64 // math.Float64bits of the target in Hz
	current atomic.Pointer[TuningState]
	seq     atomic.Uint64

	processed atomic.Uint64
	skipped   atomic.Uint64
	ignored   atomic.Uint64
	rejected  atomic.Uint64

	mu             sync.Mutex
	catalog        []Tuning
	selected       *Tuning
	selectedString *StringNote

	subsMu sync.Mutex
	subs   atomic.Pointer[[]*subscriber]
}

type subscriber struct {
	ch chan TuningState
}

// NewSession creates an idle session reading from source. A nil config uses
// DefaultConfig.
func NewSession(source FrameSource, config *Config) (*Session, error) {
	if config == nil {
		config = DefaultConfig()
	}

	estimator, err := tonal.NewFrequencyEstimator(tonal.FrequencyEstimatorConfig{Window: config.Window})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	fields := logging.Fields{"component": "tuning_session"}
	logger := logging.WithFields(fields)
	if config.Logger != nil {
		logger = config.Logger.WithFields(fields)
	}

	s := &Session{
		config:     config,
		source:     source,
		logger:     logger,
		estimator:  estimator,
		stabilizer: tonal.NewFrequencyStabilizer(),
	}
	s.current.Store(&TuningState{})
	s.subs.Store(&[]*subscriber{})
	return s, nil
}

// LoadTunings replaces the catalog with a copy of tunings and returns a copy
// of the new catalog. The current selection is kept.
func (s *Session) LoadTunings(tunings []Tuning) []Tuning {
	catalog := cloneTunings(tunings)

	s.mu.Lock()
	s.catalog = catalog
	s.mu.Unlock()

	s.logger.Debug("Tunings loaded", logging.Fields{"count": len(catalog)})
	return cloneTunings(catalog)
}

// Tunings returns a copy of the catalog
func (s *Session) Tunings() []Tuning {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTunings(s.catalog)
}

// SelectTuning makes t current and targets its first string. A tuning without
// strings clears the target. The stabilization window is left alone.
func (s *Session) SelectTuning(t Tuning) {
	t = t.Clone()
	first, ok := t.FirstString()

	s.mu.Lock()
	s.selected = &t
	s.selectedString = nil
	if ok {
		s.selectedString = &first
	}
	s.mu.Unlock()

	s.setTarget(first.Frequency)
	s.logger.Info("Tuning selected", logging.Fields{
		"tuning": t.Name,
		"target": first.Frequency,
	})
}

// SelectString targets sn.Frequency.
func (s *Session) SelectString(sn StringNote) {
	s.mu.Lock()
	s.selectedString = &sn
	s.mu.Unlock()

	s.setTarget(sn.Frequency)
	s.logger.Debug("String selected", logging.Fields{
		"string": sn.String,
		"note":   sn.Note,
		"target": sn.Frequency,
	})
}

// SelectTuningByName selects a catalog tuning by case-insensitive name.
func (s *Session) SelectTuningByName(name string) error {
	s.mu.Lock()
	t, ok := findTuning(s.catalog, name)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTuning, name)
	}
	s.SelectTuning(t)
	return nil
}

// SelectStringNumber targets a string of the selected tuning by number.
func (s *Session) SelectStringNumber(number int) error {
	s.mu.Lock()
	if s.selected == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: no tuning selected", ErrUnknownString)
	}
	sn, ok := s.selected.StringByNumber(number)
	name := s.selected.Name
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %d in tuning %q", ErrUnknownString, number, name)
	}
	s.SelectString(sn)
	return nil
}

// ClearTarget drops the selection. The status becomes unknown.
func (s *Session) ClearTarget() {
	s.mu.Lock()
	s.selected = nil
	s.selectedString = nil
	s.mu.Unlock()

	s.setTarget(0)
}

// SelectedTuning returns the selected tuning, if any
func (s *Session) SelectedTuning() (Tuning, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return Tuning{}, false
	}
	return s.selected.Clone(), true
}

// SelectedString returns the targeted string, if any
func (s *Session) SelectedString() (StringNote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedString == nil {
		return StringNote{}, false
	}
	return *s.selectedString, true
}

// Target returns the target frequency in Hz, 0 when nothing is selected.
func (s *Session) Target() float64 {
	return math.Float64frombits(s.target.Load())
}

func (s *Session) setTarget(hz float64) {
	if hz <= 0 || math.IsNaN(hz) || math.IsInf(hz, 0) {
		hz = 0
	}
	s.target.Store(math.Float64bits(hz))
	s.retarget(hz)
}

// retarget republishes the latest snapshot evaluated against a new target so
// readers see the change without waiting for the next frame.
func (s *Session) retarget(target float64) {
	for {
		old := s.current.Load()
		next := *old
		next.TargetFrequency = target
		next.Status, next.IsTuned = evaluate(next.Frequency, target)
		next.Sequence = s.seq.Add(1)
		if s.current.CompareAndSwap(old, &next) {
			s.broadcast(next)
			return
		}
	}
}

// Start subscribes the session to its frame source. Starting a tracking
// session does nothing.
func (s *Session) Start() error {
	s.control.Lock()
	defer s.control.Unlock()

	if s.State() == Tracking {
		return nil
	}
	if s.source == nil {
		return ErrNoSource
	}

	// flip first so frames that arrive during Subscribe are processed
	s.state.Store(int32(Tracking))
	if err := s.source.Subscribe(s.handleFrame); err != nil {
		s.state.Store(int32(Idle))
		s.logger.Error(err, "Failed to subscribe to frame source")
		return fmt.Errorf("failed to subscribe to frame source: %w", err)
	}

	s.logger.Info("Tracking started", logging.Fields{
		"target": s.Target(),
		"window": s.estimator.Config().Window,
	})
	return nil
}

// Stop unsubscribes from the frame source. Stopping an idle session does
// nothing. A frame already inside OnFrame may still complete and publish.
func (s *Session) Stop() error {
	s.control.Lock()
	defer s.control.Unlock()

	if s.State() == Idle {
		return nil
	}

	s.state.Store(int32(Idle))
	if err := s.source.Unsubscribe(); err != nil {
		// still subscribed, so keep processing and let a later Stop retry
		s.state.Store(int32(Tracking))
		s.logger.Error(err, "Failed to unsubscribe from frame source")
		return fmt.Errorf("failed to unsubscribe from frame source: %w", err)
	}

	stats := s.Stats()
	s.logger.Info("Tracking stopped", logging.Fields{
		"processed": stats.Processed,
		"skipped":   stats.Skipped,
		"rejected":  stats.Rejected,
	})
	return nil
}

// State returns the lifecycle state
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

func (s *Session) handleFrame(samples []float64, sampleRate float64, timestamp time.Time) {
	s.OnFrame(AudioFrame{Samples: samples, SampleRate: sampleRate, Timestamp: timestamp})
}

// OnFrame runs one frame through the pipeline and publishes the result.
// Frames are ignored while idle. A frame the estimator cannot handle is
// counted as skipped and the previous state stays published.
func (s *Session) OnFrame(frame AudioFrame) {
	if s.State() != Tracking {
		s.ignored.Add(1)
		return
	}
	if !s.inFrame.CompareAndSwap(false, true) {
		s.ignored.Add(1)
		return
	}
	defer s.inFrame.Store(false)

	estimate, err := s.estimator.Estimate(frame.Samples, frame.SampleRate)
	if err != nil {
		s.skipped.Add(1)
		return
	}
	if !tonal.InBand(estimate.Hz) {
		s.rejected.Add(1)
	}

	stabilized := s.stabilizer.Add(estimate.Hz)
	next := &TuningState{
		Frequency:    stabilized,
		Note:         tonal.NoteName(stabilized),
		RawFrequency: estimate.Hz,
		Magnitude:    estimate.Magnitude,
		Timestamp:    frame.Timestamp,
	}

	// a selection that lands between reading the target and publishing
	// swaps the snapshot first, so the target is read again on retry
	for {
		old := s.current.Load()
		target := s.Target()
		next.TargetFrequency = target
		next.Status, next.IsTuned = evaluate(stabilized, target)
		next.Sequence = s.seq.Add(1)
		if s.current.CompareAndSwap(old, next) {
			break
		}
	}

	s.processed.Add(1)
	s.broadcast(*next)
}

// CurrentState returns the latest published snapshot.
func (s *Session) CurrentState() TuningState {
	return *s.current.Load()
}

// Stats returns frame counters
func (s *Session) Stats() SessionStats {
	return SessionStats{
		Processed:   s.processed.Load(),
		Skipped:     s.skipped.Load(),
		Ignored:     s.ignored.Load(),
		Rejected:    s.rejected.Load(),
		Subscribers: len(*s.subs.Load()),
	}
}

// Subscribe returns a channel receiving every published state, starting with
// the current one. Sends never block: when the channel is full the state is
// dropped for that subscriber. The cancel func stops delivery; the channel is
// not closed because the frame path may hold a reference to it.
func (s *Session) Subscribe(buffer int) (<-chan TuningState, func()) {
	if buffer < 1 {
		buffer = 1
	}
	sub := &subscriber{ch: make(chan TuningState, buffer)}
	sub.ch <- s.CurrentState()

	s.subsMu.Lock()
	old := *s.subs.Load()
	next := make([]*subscriber, 0, len(old)+1)
	next = append(next, old...)
	next = append(next, sub)
	s.subs.Store(&next)
	s.subsMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() { s.unsubscribe(sub) })
	}
	return sub.ch, cancel
}

func (s *Session) unsubscribe(sub *subscriber) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	old := *s.subs.Load()
	next := make([]*subscriber, 0, len(old))
	for _, o := range old {
		if o != sub {
			next = append(next, o)
		}
	}
	s.subs.Store(&next)
}

func (s *Session) broadcast(state TuningState) {
	for _, sub := range *s.subs.Load() {
		select {
		case sub.ch <- state:
		default:
		}
	}
}
