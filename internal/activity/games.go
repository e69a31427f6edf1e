package activity

import (
	"slices"
	"time"

	"github.com/sethgrid/pelioscope/internal/emotion"
)

const (
	findAdvanceDelay  = time.Second
	nameCompleteDelay = 1500 * time.Millisecond
	matchResolveDelay = 500 * time.Millisecond
	mismatchDelay     = time.Second
	memoryDoneDelay   = 1500 * time.Millisecond
)

var (
	findSizes  = []int{3, 5, 8}
	findDecoys = []emotion.Emotion{emotion.Sad, emotion.Angry, emotion.Fear, emotion.Surprised, emotion.Disgust, emotion.Neutral}

	nameChoices = []emotion.Emotion{emotion.Happy, emotion.Sad, emotion.Angry, emotion.Fear, emotion.Surprised, emotion.Neutral, emotion.Disgust}

	memoryFaces = []emotion.Emotion{emotion.Happy, emotion.Sad, emotion.Angry, emotion.Surprised, emotion.Fear, emotion.Neutral}
)

// FindTarget asks for the one happy face in a grid that grows over three
// rounds. Wrong taps only earn a hint.
type FindTarget struct {
	s        *Session
	round    int
	grid     []emotion.Emotion
	reaction emotion.Emotion
	feedback string
	wait     *handle
	closed   bool
}

type FindView struct {
	Round    int
	Rounds   int
	Grid     []emotion.Emotion
	Reaction emotion.Emotion
	Feedback string
}

func newFindTarget(s *Session) *FindTarget {
	g := &FindTarget{s: s}
	g.deal()
	return g
}

func (g *FindTarget) deal() {
	n := findSizes[g.round]
	g.grid = make([]emotion.Emotion, 0, n)
	for i := 0; i < n-1; i++ {
		g.grid = append(g.grid, findDecoys[g.s.deps.Rand.IntN(len(findDecoys))])
	}
	g.grid = slices.Insert(g.grid, g.s.deps.Rand.IntN(n), emotion.Happy)
	g.reaction = emotion.Neutral
	g.feedback = "Tap the Happy face!"
}

// Tap reports whether index i held the target.
func (g *FindTarget) Tap(i int) bool {
	var hit bool
	g.s.do(func() {
		if g.closed || g.wait != nil || i < 0 || i >= len(g.grid) {
			return
		}
		if g.grid[i] != emotion.Happy {
			g.reaction = emotion.Sad
			g.feedback = "Try again, look for the smiling eyes!"
			g.s.say(g.feedback)
			return
		}
		hit = true
		g.reaction = emotion.Excited
		g.feedback = "You found it!"
		g.s.say(g.feedback)
		g.wait = g.s.after(findAdvanceDelay, func() {
			g.wait = nil
			if g.round == len(findSizes)-1 {
				g.s.complete()
				return
			}
			g.round++
			g.deal()
		})
	})
	return hit
}

func (g *FindTarget) View() FindView {
	var v FindView
	g.s.view(func() {
		v = FindView{Round: g.round + 1, Rounds: len(findSizes), Grid: slices.Clone(g.grid), Reaction: g.reaction, Feedback: g.feedback}
	})
	return v
}

func (g *FindTarget) close() {
	g.closed = true
	g.s.stop(g.wait)
}

// NameEmotion shows the companion with one expression and four labels to
// choose from.
type NameEmotion struct {
	s        *Session
	target   emotion.Emotion
	options  []emotion.Emotion
	feedback string
	solved   bool
	wait     *handle
	closed   bool
}

type NameView struct {
	Showing  emotion.Emotion
	Options  []emotion.Emotion
	Feedback string
}

func newNameEmotion(s *Session) *NameEmotion {
	r := s.deps.Rand
	g := &NameEmotion{s: s, feedback: "What is Peli feeling?"}
	g.target = nameChoices[r.IntN(len(nameChoices))]

	var wrong []emotion.Emotion
	for _, e := range nameChoices {
		if e != g.target {
			wrong = append(wrong, e)
		}
	}
	r.Shuffle(len(wrong), func(i, j int) { wrong[i], wrong[j] = wrong[j], wrong[i] })
	g.options = append(wrong[:3:3], g.target)
	r.Shuffle(len(g.options), func(i, j int) { g.options[i], g.options[j] = g.options[j], g.options[i] })
	return g
}

// Guess reports whether e names the shown expression.
func (g *NameEmotion) Guess(e emotion.Emotion) bool {
	var ok bool
	g.s.do(func() {
		if g.closed || g.solved {
			return
		}
		if e != g.target {
			g.feedback = "Let's check the eyes and mouth, try again!"
			g.s.say(g.feedback)
			return
		}
		ok = true
		g.solved = true
		g.feedback = "Correct!"
		g.s.say(g.feedback)
		g.wait = g.s.after(nameCompleteDelay, g.s.complete)
	})
	return ok
}

func (g *NameEmotion) View() NameView {
	var v NameView
	g.s.view(func() {
		v = NameView{Showing: g.target, Options: slices.Clone(g.options), Feedback: g.feedback}
		if g.solved {
			v.Showing = emotion.Love
		}
	})
	return v
}

func (g *NameEmotion) close() {
	g.closed = true
	g.s.stop(g.wait)
}

type Card struct {
	Face    emotion.Emotion
	FaceUp  bool
	Matched bool
}

// MemoryMatch is a face-down deck of emotion pairs. Two face-up cards are
// resolved after a short delay and input is locked until then.
type MemoryMatch struct {
	s        *Session
	cards    []Card
	up       []int
	finished bool
	timers   []*handle
	closed   bool
}

type MemoryView struct {
	Cards   []Card
	Matched int
	Locked  bool
}

func newMemoryMatch(s *Session) *MemoryMatch {
	g := &MemoryMatch{s: s}
	for _, f := range memoryFaces {
		g.cards = append(g.cards, Card{Face: f}, Card{Face: f})
	}
	s.deps.Rand.Shuffle(len(g.cards), func(i, j int) { g.cards[i], g.cards[j] = g.cards[j], g.cards[i] })
	return g
}

// Flip turns card i face up. Taps on matched or already face-up cards, or
// while a pair is pending, are ignored.
func (g *MemoryMatch) Flip(i int) {
	g.s.do(func() {
		if g.closed || len(g.up) >= 2 || i < 0 || i >= len(g.cards) {
			return
		}
		if c := g.cards[i]; c.Matched || c.FaceUp {
			return
		}
		g.cards[i].FaceUp = true
		g.up = append(g.up, i)
		if len(g.up) < 2 {
			return
		}
		a, b := g.up[0], g.up[1]
		if g.cards[a].Face == g.cards[b].Face {
			g.timers = append(g.timers, g.s.after(matchResolveDelay, func() { g.resolveMatch(a, b) }))
			return
		}
		g.timers = append(g.timers, g.s.after(mismatchDelay, func() {
			g.cards[a].FaceUp = false
			g.cards[b].FaceUp = false
			g.up = nil
		}))
	})
}

func (g *MemoryMatch) resolveMatch(a, b int) {
	g.cards[a].Matched = true
	g.cards[b].Matched = true
	g.up = nil
	if g.finished || g.matched() < len(g.cards) {
		g.s.say("A pair!")
		return
	}
	g.finished = true
	g.s.say("Amazing memory!")
	g.timers = append(g.timers, g.s.after(memoryDoneDelay, g.s.complete))
}

func (g *MemoryMatch) matched() int {
	n := 0
	for _, c := range g.cards {
		if c.Matched {
			n++
		}
	}
	return n
}

func (g *MemoryMatch) View() MemoryView {
	var v MemoryView
	g.s.view(func() {
		v = MemoryView{Cards: slices.Clone(g.cards), Matched: g.matched() / 2, Locked: len(g.up) >= 2}
	})
	return v
}

func (g *MemoryMatch) close() {
	g.closed = true
	for _, h := range g.timers {
		g.s.stop(h)
	}
	g.timers = nil
}
