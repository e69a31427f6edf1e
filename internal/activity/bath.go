package activity

import "time"

type BathPhase int

const (
	Lather BathPhase = iota
	Rinse
	Dry
)

func (p BathPhase) String() string {
	switch p {
	case Lather:
		return "lather"
	case Rinse:
		return "rinse"
	case Dry:
		return "dry"
	}
	return "unknown"
}

const (
	scrubStep     = 2
	rinseStep     = 5
	rinseInterval = 100 * time.Millisecond
)

// BathView is what the bath looks like right now.
type BathView struct {
	Phase    BathPhase
	Progress int
	Dirty    bool
	Bubbles  bool
	Wet      bool
}

// Bath runs lather, rinse and dry in order, each with its own 0..100
// progress. Finishing dry stamps the shower time and completes the session.
type Bath struct {
	s        *Session
	phase    BathPhase
	progress int
	dirty    bool
	bubbles  bool
	wet      bool
	rinse    *handle
}

func (b *Bath) begin() {
	b.dirty = true
	b.s.say("Rub to scrub!")
}

// Scrub is one stroke of the lather or dry gesture.
func (b *Bath) Scrub() {
	b.s.do(func() {
		switch b.phase {
		case Lather:
			b.progress = min(b.progress+scrubStep, 100)
			if b.progress > 10 {
				b.bubbles = true
			}
		case Dry:
			b.progress = min(b.progress+scrubStep, 100)
			if b.progress > 50 {
				b.dirty, b.bubbles, b.wet = false, false, false
			}
		default:
			return
		}
		b.checkAdvance()
	})
}

// HoldRinse starts the shower; progress grows while it is held.
func (b *Bath) HoldRinse() {
	b.s.do(func() {
		if b.phase != Rinse || b.rinse != nil {
			return
		}
		b.rinse = b.s.every(rinseInterval, func() {
			b.progress = min(b.progress+rinseStep, 100)
			if b.progress > 20 {
				b.dirty, b.bubbles, b.wet = false, false, true
			}
			b.checkAdvance()
		})
	})
}

func (b *Bath) ReleaseRinse() {
	b.s.do(func() {
		b.s.stop(b.rinse)
		b.rinse = nil
	})
}

func (b *Bath) View() BathView {
	var v BathView
	b.s.view(func() {
		v = BathView{Phase: b.phase, Progress: b.progress, Dirty: b.dirty, Bubbles: b.bubbles, Wet: b.wet}
	})
	return v
}

func (b *Bath) checkAdvance() {
	if b.progress < 100 {
		return
	}
	b.progress = 0
	switch b.phase {
	case Lather:
		b.phase = Rinse
		b.s.say("Hold to rinse!")
	case Rinse:
		b.s.stop(b.rinse)
		b.rinse = nil
		b.phase = Dry
		b.s.say("Rub to dry!")
	case Dry:
		if b.s.deps.Care != nil {
			b.s.deps.Care.MarkShowered(b.s.now())
		}
		b.s.complete()
	}
}
