package emotion

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// MaxLogEntries caps the emotion history; the oldest entries are evicted.
const MaxLogEntries = 100

type LogEntry struct {
	ID         string    `toml:"id"`
	Emotion    Emotion   `toml:"emotion"`
	DetectedAt time.Time `toml:"detectedAt"`
}

// Reading is one observation of an emotion with optional metadata.
type Reading struct {
	Emotion    Emotion
	Confidence *float64
	UpdatedAt  time.Time
}

// Snapshot is a copy of the whole emotion state.
type Snapshot struct {
	Manual Reading
	Live   Reading
	Log    []LogEntry
}

type State struct {
	mu       sync.Mutex
	manual   Reading
	live     Reading
	log      []LogEntry
	onChange func(Snapshot)
}

// NewState restores state. The log is expected newest first.
func NewState(manual Emotion, log []LogEntry) *State {
	if !manual.IsCore() {
		manual = Happy
	}
	if len(log) > MaxLogEntries {
		log = log[:MaxLogEntries]
	}
	return &State{
		manual: Reading{Emotion: manual},
		live:   Reading{Emotion: Neutral},
		log:    append([]LogEntry(nil), log...),
	}
}

func (s *State) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *State) Manual() Emotion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manual.Emotion
}

func (s *State) Live() Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

// SetManual sets the chat-context emotion. It reports whether the value
// changed; non-core emotions are rejected.
func (s *State) SetManual(e Emotion, at time.Time) bool {
	if !e.IsCore() {
		return false
	}
	s.mu.Lock()
	changed := s.manual.Emotion != e
	s.manual = Reading{Emotion: e, UpdatedAt: at}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return changed
}

// ObserveLive records a feed reading. A log entry is appended only when the
// emotion differs from the newest logged one. It reports whether an entry
// was appended.
func (s *State) ObserveLive(r Reading, now time.Time) bool {
	if !r.Emotion.IsCore() {
		return false
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = now
	}

	s.mu.Lock()
	s.live = r
	logged := false
	if len(s.log) == 0 || s.log[0].Emotion != r.Emotion {
		entry := LogEntry{ID: uuid.NewString(), Emotion: r.Emotion, DetectedAt: now}
		s.log = append([]LogEntry{entry}, s.log...)
		if len(s.log) > MaxLogEntries {
			s.log = s.log[:MaxLogEntries]
		}
		logged = true
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return logged
}

// Log returns the history, newest first.
func (s *State) Log() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LogEntry(nil), s.log...)
}

func (s *State) ClearLog() {
	s.mu.Lock()
	s.log = nil
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() Snapshot {
	return Snapshot{
		Manual: s.manual,
		Live:   s.live,
		Log:    append([]LogEntry(nil), s.log...),
	}
}

func (s *State) notify(snap Snapshot) {
	s.mu.Lock()
	hook := s.onChange
	s.mu.Unlock()
	if hook != nil {
		hook(snap)
	}
}
