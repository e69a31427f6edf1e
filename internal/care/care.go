package care

import (
	"math"
	"sync"
	"time"
)

const (
	DefaultDirtyAfter   = 3 * time.Hour
	DefaultHungerWindow = 30 * time.Minute
)

type Thresholds struct {
	DirtyAfter   time.Duration
	HungerWindow time.Duration
}

func (t Thresholds) withDefaults() Thresholds {
	if t.DirtyAfter <= 0 {
		t.DirtyAfter = DefaultDirtyAfter
	}
	if t.HungerWindow <= 0 {
		t.HungerWindow = DefaultHungerWindow
	}
	return t
}

// Stamps are the two care timestamps. A zero time means never.
type Stamps struct {
	LastShower time.Time
	LastFed    time.Time
}

// Tracker derives care status from the last bath and meal. Nothing is
// stored except the two stamps; every level is recomputed from now.
type Tracker struct {
	mu         sync.Mutex
	thresholds Thresholds
	stamps     Stamps
	onChange   func(Stamps)
}

func NewTracker(th Thresholds, stamps Stamps) *Tracker {
	return &Tracker{thresholds: th.withDefaults(), stamps: stamps}
}

// OnChange registers a hook called after a stamp is updated.
func (t *Tracker) OnChange(fn func(Stamps)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

func (t *Tracker) Stamps() Stamps {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stamps
}

func (t *Tracker) MarkShowered(at time.Time) {
	t.update(func(s *Stamps) { s.LastShower = at })
}

func (t *Tracker) MarkFed(at time.Time) {
	t.update(func(s *Stamps) { s.LastFed = at })
}

func (t *Tracker) IsDirty(now time.Time) bool {
	s := t.Stamps()
	return elapsed(now, s.LastShower) > t.thresholds.DirtyAfter
}

func (t *Tracker) IsHungry(now time.Time) bool {
	s := t.Stamps()
	return elapsed(now, s.LastFed) > t.thresholds.HungerWindow
}

// HungerLevel is 100 right after a meal and falls linearly to 0 over the
// hunger window. Higher is fuller.
func (t *Tracker) HungerLevel(now time.Time) float64 {
	s := t.Stamps()
	return HungerLevel(now, s.LastFed, t.thresholds.HungerWindow)
}

// HungerLevel computes the fullness level for a given last meal.
func HungerLevel(now, lastFed time.Time, window time.Duration) float64 {
	if window <= 0 {
		window = DefaultHungerWindow
	}
	e := elapsed(now, lastFed)
	level := 100 - float64(e)/float64(window)*100
	return clamp(level, 0, 100)
}

func (t *Tracker) update(fn func(*Stamps)) {
	t.mu.Lock()
	fn(&t.stamps)
	s, hook := t.stamps, t.onChange
	t.mu.Unlock()
	if hook != nil {
		hook(s)
	}
}

// elapsed treats a zero stamp as infinitely long ago.
func elapsed(now, since time.Time) time.Duration {
	if since.IsZero() {
		return time.Duration(math.MaxInt64)
	}
	return now.Sub(since)
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
