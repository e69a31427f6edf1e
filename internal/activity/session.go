// Package activity runs one rewarded mini-experience at a time: a Session
// moves from NotStarted to Running to Complete and then closes itself, and
// wraps a phase machine specific to the activity (bath, feeding, story...).
//
// Every gesture, timer fire and async result is applied under the session
// lock. Timers are owned by the session and stopped when their phase ends
// or the session is torn down. Async results carry the generation they were
// started in and are dropped if the session moved on.
package activity

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sethgrid/pelioscope/internal/care"
	"github.com/sethgrid/pelioscope/internal/clock"
	"github.com/sethgrid/pelioscope/internal/economy"
	"github.com/sethgrid/pelioscope/internal/llm"
	"github.com/sethgrid/pelioscope/internal/story"
)

// DefaultCompletionDisplay is how long a completed session stays open
// before closing itself.
const DefaultCompletionDisplay = 2500 * time.Millisecond

var (
	ErrAlreadyStarted = errors.New("activity already started")
	ErrNotOwned       = errors.New("item is not in the inventory")
	ErrNotFood        = errors.New("item is not food")
	ErrUnavailable    = errors.New("narrator unavailable")
)

type State int

const (
	NotStarted State = iota
	Running
	Complete
	Closed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Running:
		return "running"
	case Complete:
		return "complete"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Completion is reported once per session.
type Completion struct {
	SessionID string
	Activity  Name
	Reward    int
	At        time.Time
}

// Event is transient feedback for the user: a reaction, a hint, a phase
// change.
type Event struct {
	Activity Name
	Message  string
}

// Deps are the collaborators a session works against. Only Ledger and Care
// are required; the story player reports ErrUnavailable without a Narrator
// or Generator.
type Deps struct {
	Clock     clock.Clock
	Ledger    *economy.Ledger
	Care      *care.Tracker
	Narrator  llm.Narrator
	Generator llm.StoryGenerator
	Quota     *story.Quota
	Library   *story.Library
	Sink      AudioSink
	Voice     string
	Rand      *rand.Rand
	Logger    *zap.Logger

	UserName      string
	CompanionName string

	// CompletionDisplay defaults to DefaultCompletionDisplay.
	CompletionDisplay time.Duration

	// Go runs async work. Defaults to starting a goroutine.
	Go func(func())

	OnComplete     func(Completion)
	OnEvent        func(Event)
	OnStoryCreated func(story.Story)
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = clock.Real{}
	}
	if d.Rand == nil {
		d.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.CompletionDisplay <= 0 {
		d.CompletionDisplay = DefaultCompletionDisplay
	}
	if d.Go == nil {
		d.Go = func(f func()) { go f() }
	}
	if d.CompanionName == "" {
		d.CompanionName = "PELI"
	}
	if d.Library == nil {
		d.Library = story.NewLibrary()
	}
	return d
}

// Machine is the activity-specific phase machine inside a session.
type Machine interface {
	begin()
}

type Session struct {
	ID   string
	spec Spec
	deps Deps

	mu      sync.Mutex
	state   State
	gen     uint64
	ctx     context.Context
	cancel  context.CancelFunc
	timers  map[*handle]struct{}
	pending []func()
	done    chan struct{}
	machine Machine
}

func New(spec Spec, deps Deps) *Session {
	deps = deps.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:     uuid.NewString(),
		spec:   spec,
		deps:   deps,
		ctx:    ctx,
		cancel: cancel,
		timers: make(map[*handle]struct{}),
		done:   make(chan struct{}),
	}
	s.machine = newMachine(s)
	return s
}

func newMachine(s *Session) Machine {
	switch s.spec.Name {
	case BathTime:
		return &Bath{s: s}
	case Feeding:
		return &Feed{s: s}
	case Meditate:
		return &Breathing{s: s}
	case Exercise:
		return &ExerciseHub{s: s}
	case TellStory:
		return &StoryPlayer{s: s, selected: -1}
	case MoodBoost:
		return &Boost{s: s}
	case GiveGift:
		return &Gift{s: s}
	case PlayMusic:
		return &Music{s: s}
	default:
		return &Countdown{s: s}
	}
}

func (s *Session) Spec() Spec { return s.spec }

// Machine returns the phase machine; callers type-assert to the concrete
// machine for the activity (*Bath, *Feed, ...).
func (s *Session) Machine() Machine { return s.machine }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the session has closed.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) Start() error {
	s.mu.Lock()
	if s.state != NotStarted {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.state = Running
	s.deps.Logger.Debug("activity started",
		zap.String("activity", string(s.spec.Name)),
		zap.String("session", s.ID))
	s.machine.begin()
	s.unlock()
	return nil
}

// Exit closes the session from any state. Pending timers are stopped and
// in-flight async work is cancelled; nothing it returns will be applied.
func (s *Session) Exit() {
	s.mu.Lock()
	if s.state != Closed {
		s.deps.Logger.Debug("activity exited",
			zap.String("activity", string(s.spec.Name)),
			zap.String("state", s.state.String()))
		s.close()
	}
	s.unlock()
}

// do applies a gesture while the session is running. Gestures arriving in
// any other state are ignored.
func (s *Session) do(f func()) {
	s.mu.Lock()
	if s.state == Running {
		f()
	}
	s.unlock()
}

// view reads machine state under the session lock.
func (s *Session) view(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f()
}

// unlock releases the session lock and then runs the work queued while it
// was held: hooks, notifications and async starts.
func (s *Session) unlock() {
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, f := range pending {
		f()
	}
}

func (s *Session) now() time.Time { return s.deps.Clock.Now() }

func (s *Session) say(msg string) {
	if s.deps.OnEvent == nil || msg == "" {
		return
	}
	ev := Event{Activity: s.spec.Name, Message: msg}
	fn := s.deps.OnEvent
	s.pending = append(s.pending, func() { fn(ev) })
}

// complete transitions Running to Complete exactly once, crediting the
// reward and scheduling the self-close.
func (s *Session) complete() {
	if s.state != Running {
		return
	}
	s.state = Complete
	s.teardown()

	c := Completion{SessionID: s.ID, Activity: s.spec.Name, Reward: s.spec.Reward, At: s.now()}
	ledger, hook := s.deps.Ledger, s.deps.OnComplete
	s.pending = append(s.pending, func() {
		if ledger != nil {
			ledger.Earn(c.Reward)
		}
		if hook != nil {
			hook(c)
		}
	})
	s.deps.Logger.Info("activity complete",
		zap.String("activity", string(c.Activity)),
		zap.Int("reward", c.Reward))
	s.say("GREAT JOB!")
	s.after(s.deps.CompletionDisplay, s.close)
}

func (s *Session) close() {
	if s.state == Closed {
		return
	}
	s.state = Closed
	s.teardown()
	close(s.done)
}

// teardown stops every timer, cancels async work and invalidates results
// still in flight.
func (s *Session) teardown() {
	for h := range s.timers {
		h.t.Stop()
	}
	clear(s.timers)
	s.cancel()
	s.gen++
}

// invalidate drops async results started before now without tearing the
// session down.
func (s *Session) invalidate() {
	s.gen++
}

// handle is a timer owned by the session.
type handle struct {
	t     clock.Timer
	every time.Duration
	f     func()
}

func (s *Session) after(d time.Duration, f func()) *handle {
	h := &handle{f: f}
	s.arm(h, d)
	return h
}

// every runs f each period until the handle is stopped.
func (s *Session) every(period time.Duration, f func()) *handle {
	h := &handle{f: f, every: period}
	s.arm(h, period)
	return h
}

func (s *Session) arm(h *handle, d time.Duration) {
	s.timers[h] = struct{}{}
	h.t = s.deps.Clock.AfterFunc(d, func() { s.fire(h) })
}

func (s *Session) fire(h *handle) {
	s.mu.Lock()
	if _, ok := s.timers[h]; !ok {
		s.mu.Unlock()
		return
	}
	if h.every > 0 {
		h.t = s.deps.Clock.AfterFunc(h.every, func() { s.fire(h) })
	} else {
		delete(s.timers, h)
	}
	h.f()
	s.unlock()
}

// stop cancels h if it is still pending. It is safe on a nil handle.
func (s *Session) stop(h *handle) {
	if h == nil {
		return
	}
	if _, ok := s.timers[h]; ok {
		h.t.Stop()
		delete(s.timers, h)
	}
}

// async runs work outside the lock. The func it returns is applied under the
// lock only if the session is still running in the same generation.
func (s *Session) async(ctx context.Context, work func(ctx context.Context) func()) {
	gen := s.gen
	run := s.deps.Go
	s.pending = append(s.pending, func() {
		run(func() {
			apply := work(ctx)
			s.mu.Lock()
			if apply == nil || gen != s.gen || s.state != Running {
				s.mu.Unlock()
				return
			}
			apply()
			s.unlock()
		})
	})
}

// Countdown is the plain timed activity used for anything without its own
// machine: it completes once the nominal duration has elapsed.
type Countdown struct {
	s    *Session
	left int
}

func (c *Countdown) begin() {
	c.left = int(c.s.spec.Duration / time.Second)
	c.s.every(time.Second, func() {
		c.left--
		if c.left <= 0 {
			c.s.complete()
		}
	})
}

func (c *Countdown) Remaining() time.Duration {
	var left int
	c.s.view(func() { left = c.left })
	return time.Duration(left) * time.Second
}
