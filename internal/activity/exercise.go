package activity

import (
	"time"

	"github.com/sethgrid/pelioscope/internal/emotion"
)

type ExerciseMode int

const (
	ExerciseMenu ExerciseMode = iota
	PhysicalTrack
	BrainTrack
)

type Movement struct {
	Name     string
	Text     string
	Seconds  int
	Reaction emotion.Emotion
}

var Movements = []Movement{
	{Name: "Stretch Arms Up", Text: "Reach high... feel your chest open.", Seconds: 8, Reaction: emotion.Neutral},
	{Name: "Shake Hands", Text: "Release tightness from your fingers.", Seconds: 6, Reaction: emotion.Happy},
	{Name: "Slow Neck Roll", Text: "Move gently... front, side, back.", Seconds: 8, Reaction: emotion.Relaxed},
	{Name: "Step in Place", Text: "Warm your feet, loosen your legs.", Seconds: 8, Reaction: emotion.Excited},
}

const (
	introSeconds = 5
	outroSeconds = 5
)

type PhysicalStage int

const (
	Intro PhysicalStage = iota
	Moving
	Outro
)

type PhysicalView struct {
	Stage    PhysicalStage
	Movement Movement
	Step     int
	Left     int
}

type BrainGame int

const (
	NoGame BrainGame = iota
	FindTargetGame
	NameEmotionGame
	MemoryMatchGame
)

// ExerciseHub lets the user pick the physical routine or one of the brain
// games. Either track completes the session.
type ExerciseHub struct {
	s    *Session
	mode ExerciseMode

	stage PhysicalStage
	step  int
	left  int

	game   BrainGame
	find   *FindTarget
	name   *NameEmotion
	memory *MemoryMatch
}

func (e *ExerciseHub) begin() {}

func (e *ExerciseHub) Mode() ExerciseMode {
	var m ExerciseMode
	e.s.view(func() { m = e.mode })
	return m
}

// StartPhysical runs the timed routine: intro, each movement, outro.
func (e *ExerciseHub) StartPhysical() {
	e.s.do(func() {
		if e.mode != ExerciseMenu {
			return
		}
		e.mode = PhysicalTrack
		e.stage = Intro
		e.left = introSeconds
		e.s.say("Get ready to move!")
		e.s.every(time.Second, e.tickPhysical)
	})
}

func (e *ExerciseHub) tickPhysical() {
	e.left--
	if e.left > 0 {
		return
	}
	switch e.stage {
	case Intro:
		e.stage = Moving
		e.step = 0
		e.left = Movements[0].Seconds
		e.s.say(Movements[0].Name)
	case Moving:
		if e.step < len(Movements)-1 {
			e.step++
			e.left = Movements[e.step].Seconds
			e.s.say(Movements[e.step].Name)
			return
		}
		e.stage = Outro
		e.left = outroSeconds
		e.s.say("Great work! Cool down...")
	case Outro:
		e.s.complete()
	}
}

func (e *ExerciseHub) Physical() PhysicalView {
	var v PhysicalView
	e.s.view(func() {
		v = PhysicalView{Stage: e.stage, Step: e.step, Left: e.left}
		if e.stage == Moving {
			v.Movement = Movements[e.step]
		}
	})
	return v
}

func (e *ExerciseHub) StartBrain() {
	e.s.do(func() {
		if e.mode != ExerciseMenu {
			return
		}
		e.mode = BrainTrack
	})
}

// Play opens a brain game. Any game already open is abandoned.
func (e *ExerciseHub) Play(game BrainGame) {
	e.s.do(func() {
		if e.mode != BrainTrack {
			return
		}
		e.closeGame()
		e.game = game
		switch game {
		case FindTargetGame:
			e.find = newFindTarget(e.s)
		case NameEmotionGame:
			e.name = newNameEmotion(e.s)
		case MemoryMatchGame:
			e.memory = newMemoryMatch(e.s)
		}
	})
}

// Back returns from a game to the brain menu.
func (e *ExerciseHub) Back() {
	e.s.do(func() {
		e.closeGame()
		e.game = NoGame
	})
}

func (e *ExerciseHub) closeGame() {
	if e.find != nil {
		e.find.close()
	}
	if e.name != nil {
		e.name.close()
	}
	if e.memory != nil {
		e.memory.close()
	}
	e.find, e.name, e.memory = nil, nil, nil
}

func (e *ExerciseHub) FindTarget() *FindTarget {
	var g *FindTarget
	e.s.view(func() { g = e.find })
	return g
}

func (e *ExerciseHub) NameEmotion() *NameEmotion {
	var g *NameEmotion
	e.s.view(func() { g = e.name })
	return g
}

func (e *ExerciseHub) MemoryMatch() *MemoryMatch {
	var g *MemoryMatch
	e.s.view(func() { g = e.memory })
	return g
}
