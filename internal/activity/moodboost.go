package activity

import (
	"time"

	"github.com/sethgrid/pelioscope/internal/emotion"
)

const (
	BoostGoal       = 10
	boostDoneDelay  = 1500 * time.Millisecond
	boostBackground = 4
)

// Stickers that can be sent during a mood boost.
var Stickers = []string{"⭐", "🌸", "😊", "💖"}

type BoostView struct {
	Progress   int
	Goal       int
	Reaction   emotion.Emotion
	Glowing    bool
	Background int
	Stickers   []string
}

// Boost counts playful interactions. Each one shows a short reaction; the
// tenth completes the session.
type Boost struct {
	s          *Session
	progress   int
	reaction   emotion.Emotion
	glowing    bool
	background int
	stickers   []string
	revert     *handle
}

func (b *Boost) begin() {
	b.reaction = emotion.Neutral
	b.s.say("Tap, swipe, or send stickers!")
}

func (b *Boost) TapBody() {
	b.s.do(func() {
		b.glowing = true
		b.react(emotion.Love, 1500*time.Millisecond)
	})
}

func (b *Boost) TapForehead() {
	b.s.do(func() {
		b.react(emotion.Happy, 600*time.Millisecond)
	})
}

// Swipe changes the background; dir > 0 moves forward.
func (b *Boost) Swipe(dir int) {
	b.s.do(func() {
		step := -1
		if dir > 0 {
			step = 1
		}
		b.background = (b.background + step + boostBackground) % boostBackground
		b.react(emotion.Excited, time.Second)
	})
}

func (b *Boost) Sticker(icon string) {
	b.s.do(func() {
		b.stickers = append(b.stickers, icon)
		b.react(emotion.Surprised, time.Second)
	})
}

func (b *Boost) View() BoostView {
	var v BoostView
	b.s.view(func() {
		v = BoostView{
			Progress:   b.progress,
			Goal:       BoostGoal,
			Reaction:   b.reaction,
			Glowing:    b.glowing,
			Background: b.background,
			Stickers:   append([]string(nil), b.stickers...),
		}
	})
	return v
}

func (b *Boost) react(e emotion.Emotion, hold time.Duration) {
	b.reaction = e
	b.s.stop(b.revert)
	b.revert = b.s.after(hold, func() {
		b.revert = nil
		b.reaction = emotion.Neutral
		b.glowing = false
		b.stickers = nil
	})

	if b.progress >= BoostGoal {
		return
	}
	b.progress++
	if b.progress == BoostGoal {
		b.s.after(boostDoneDelay, b.s.complete)
	}
}
