package activity

import "time"

type BreathPhase int

const (
	Inhale BreathPhase = iota
	Hold
	Exhale
)

func (p BreathPhase) String() string {
	switch p {
	case Inhale:
		return "inhale"
	case Hold:
		return "hold"
	case Exhale:
		return "exhale"
	}
	return "unknown"
}

const (
	breathSeconds = 4
	breathCycles  = 3
)

type BreathView struct {
	Phase    BreathPhase
	Left     int
	Cycles   int
	OfCycles int
}

// Breathing is the guided breathing exercise: inhale, hold and exhale for
// four seconds each, three times over. It takes no input.
type Breathing struct {
	s      *Session
	phase  BreathPhase
	left   int
	cycles int
}

func (b *Breathing) begin() {
	b.phase = Inhale
	b.left = breathSeconds
	b.s.say("Breathe in...")
	b.s.every(time.Second, b.tick)
}

func (b *Breathing) tick() {
	if b.left > 1 {
		b.left--
		return
	}
	b.left = breathSeconds
	switch b.phase {
	case Inhale:
		b.phase = Hold
		b.s.say("Hold...")
	case Hold:
		b.phase = Exhale
		b.s.say("Breathe out...")
	case Exhale:
		b.cycles++
		if b.cycles >= breathCycles {
			b.s.complete()
			return
		}
		b.phase = Inhale
		b.s.say("Breathe in...")
	}
}

func (b *Breathing) View() BreathView {
	var v BreathView
	b.s.view(func() {
		v = BreathView{Phase: b.phase, Left: b.left, Cycles: b.cycles, OfCycles: breathCycles}
	})
	return v
}
