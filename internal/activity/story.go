package activity

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sethgrid/pelioscope/internal/llm"
	"github.com/sethgrid/pelioscope/internal/story"
)

const (
	sceneGap      = 1200 * time.Millisecond
	narrationSkip = 3 * time.Second
)

// AudioSink plays narration. Play blocks until playback ends or ctx is
// cancelled.
type AudioSink interface {
	Play(ctx context.Context, a llm.Audio) error
}

type StoryView struct {
	Library    []story.Story
	Selected   int
	Story      story.Story
	Scene      int
	Started    bool
	Playing    bool
	Paused     bool
	Narrating  bool
	Generating bool
	Remaining  int
	Error      string
}

// StoryPlayer narrates the scenes of one story, moving on by itself after
// each scene. Narration comes from the generative service and counts
// against the daily quota; when it is unavailable or used up the scenes can
// still be paged through by hand.
type StoryPlayer struct {
	s          *Session
	selected   int
	story      story.Story
	scene      int
	started    bool
	playing    bool
	paused     bool
	narrating  bool
	generating bool
	counted    bool
	errMsg     string

	advance       *handle
	stopNarration context.CancelFunc
}

func (p *StoryPlayer) begin() {}

// Select opens story i of the library.
func (p *StoryPlayer) Select(i int) bool {
	var ok bool
	p.s.do(func() {
		st, found := p.s.deps.Library.At(i)
		if !found || p.generating {
			return
		}
		p.halt()
		ok = true
		p.selected, p.story, p.scene = i, st, 0
		p.started, p.paused, p.counted = false, false, false
		p.errMsg = ""
	})
	return ok
}

// Play starts the selected story from the first scene. It waits out a
// story being written.
func (p *StoryPlayer) Play() {
	p.s.do(func() {
		if p.selected < 0 || p.generating {
			return
		}
		p.halt()
		p.scene = 0
		p.started, p.playing, p.paused = true, true, false
		p.counted = false
		if p.quotaExceeded() {
			p.playing = false
			p.s.say("Narrator sleeping, see you tomorrow!")
			return
		}
		p.narrate(0)
	})
}

// TogglePause pauses narration and auto-advance, or resumes by narrating
// the current scene again.
func (p *StoryPlayer) TogglePause() {
	p.s.do(func() {
		if !p.started {
			return
		}
		if p.paused {
			p.paused = false
			p.playing = true
			p.narrate(p.scene)
			return
		}
		p.paused = true
		p.halt()
	})
}

// Next and Prev only move the page shown; narration is left alone.
func (p *StoryPlayer) Next() {
	p.s.do(func() {
		if p.started && p.scene < len(p.story.Scenes)-1 {
			p.scene++
		}
	})
}

func (p *StoryPlayer) Prev() {
	p.s.do(func() {
		if p.started && p.scene > 0 {
			p.scene--
		}
	})
}

// Library goes back to the story list, stopping playback.
func (p *StoryPlayer) Library() {
	p.s.do(func() {
		if p.generating {
			return
		}
		p.halt()
		p.selected = -1
		p.story = story.Story{}
		p.started = false
	})
}

// Generate asks for a new story on theme. On success it is added to the
// front of the library and selected; on failure the library is unchanged.
func (p *StoryPlayer) Generate(theme string) error {
	var err error
	p.s.do(func() {
		if p.generating {
			return
		}
		gen := p.s.deps.Generator
		if gen == nil {
			p.errMsg = "Story generator unavailable"
			err = ErrUnavailable
			return
		}
		p.halt()
		p.started = false
		p.generating = true
		p.errMsg = ""
		user := p.s.deps.UserName
		p.s.async(p.s.ctx, func(ctx context.Context) func() {
			g, genErr := gen.GenerateStory(ctx, user, theme)
			return func() {
				p.generating = false
				if genErr != nil {
					p.s.deps.Logger.Warn("story generation failed", zap.Error(genErr))
					p.errMsg = "Generation Error"
					p.s.say(p.errMsg)
					return
				}
				st := story.FromGenerated(g)
				if vErr := st.Validate(); vErr != nil {
					p.errMsg = "Generation Error"
					p.s.say(p.errMsg)
					return
				}
				p.s.deps.Library.Prepend(st)
				p.selected, p.story, p.scene = 0, st, 0
				p.started, p.paused, p.counted = false, false, false
				p.s.say("New story: " + st.Title)
				if hook := p.s.deps.OnStoryCreated; hook != nil {
					p.s.pending = append(p.s.pending, func() { hook(st) })
				}
			}
		})
	})
	return err
}

func (p *StoryPlayer) View() StoryView {
	var v StoryView
	p.s.view(func() {
		v = StoryView{
			Library:    p.s.deps.Library.List(),
			Selected:   p.selected,
			Story:      p.story,
			Scene:      p.scene,
			Started:    p.started,
			Playing:    p.playing,
			Paused:     p.paused,
			Narrating:  p.narrating,
			Generating: p.generating,
			Error:      p.errMsg,
		}
		if q := p.s.deps.Quota; q != nil {
			v.Remaining = q.Remaining()
		}
	})
	return v
}

func (p *StoryPlayer) quotaExceeded() bool {
	q := p.s.deps.Quota
	return q != nil && q.Exceeded()
}

// narrate requests audio for scene index. A play-through already counted
// against the quota keeps narrating; a new one needs quota left.
func (p *StoryPlayer) narrate(index int) {
	if !p.counted && p.quotaExceeded() {
		p.playing, p.narrating = false, false
		return
	}
	narrator := p.s.deps.Narrator
	if narrator == nil {
		p.playing, p.narrating = false, false
		p.errMsg = "API Key Missing"
		p.s.say(ErrUnavailable.Error())
		return
	}

	p.narrating = true
	text, voice := p.story.Scenes[index].Text, p.s.deps.Voice
	if p.stopNarration != nil {
		p.stopNarration()
	}
	ctx, cancel := context.WithCancel(p.s.ctx)
	p.stopNarration = cancel
	p.s.async(ctx, func(ctx context.Context) func() {
		audio, err := narrator.Narrate(ctx, text, voice)
		return func() {
			if err != nil {
				p.narrating = false
				if !errors.Is(err, context.Canceled) {
					p.s.deps.Logger.Warn("narration failed", zap.Int("scene", index), zap.Error(err))
				}
				p.advance = p.s.after(narrationSkip, func() { p.advanceFrom(index) })
				return
			}
			if index == 0 && !p.counted && p.s.deps.Quota != nil {
				p.counted = p.s.deps.Quota.Use()
			}
			p.play(ctx, index, audio)
		}
	})
}

func (p *StoryPlayer) play(ctx context.Context, index int, audio llm.Audio) {
	sink := p.s.deps.Sink
	if sink == nil {
		p.advance = p.s.after(audio.Duration(), func() { p.ended(index) })
		return
	}
	p.s.async(ctx, func(ctx context.Context) func() {
		if err := sink.Play(ctx, audio); err != nil && !errors.Is(err, context.Canceled) {
			p.s.deps.Logger.Warn("narration playback failed", zap.Error(err))
		}
		return func() { p.ended(index) }
	})
}

func (p *StoryPlayer) ended(index int) {
	p.narrating = false
	p.advance = p.s.after(sceneGap, func() { p.advanceFrom(index) })
}

func (p *StoryPlayer) advanceFrom(index int) {
	p.advance = nil
	if index >= len(p.story.Scenes)-1 {
		p.s.complete()
		return
	}
	p.scene = index + 1
	p.narrate(index + 1)
}

// halt cancels narration or generation in flight and any pending
// auto-advance.
func (p *StoryPlayer) halt() {
	if p.stopNarration != nil {
		p.stopNarration()
		p.stopNarration = nil
	}
	p.s.stop(p.advance)
	p.advance = nil
	p.s.invalidate()
	p.playing = false
	p.narrating = false
	p.generating = false
}
