// Package chat is the conversation with the companion. Replies come from the
// generative service; when it fails the companion still answers with a
// canned line so the conversation never dead-ends.
package chat

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sethgrid/pelioscope/internal/clock"
	"github.com/sethgrid/pelioscope/internal/emotion"
	"github.com/sethgrid/pelioscope/internal/llm"
)

const (
	FallbackReply = "I'm having trouble connecting right now, but I'm still here for you!"
	EmptyReply    = "I'm listening."

	DefaultTimeout = 30 * time.Second
)

var (
	// ErrUnavailable is the persistent notice shown when chat cannot work
	// at all, for example without a credential.
	ErrUnavailable = llm.ErrUnavailable
	ErrBlank       = errors.New("message is blank")
	ErrBusy        = errors.New("companion is still typing")
	ErrSameMood    = errors.New("mood did not change")
)

type Sender string

const (
	FromUser      Sender = "user"
	FromCompanion Sender = "companion"
)

type Message struct {
	ID     string
	Text   string
	Sender Sender
	At     time.Time
}

type Config struct {
	CompanionName string
	UserName      string
	Emotion       emotion.Emotion
	Clock         clock.Clock
	Logger        *zap.Logger
	Timeout       time.Duration
}

// Session is one conversation. Only one reply can be pending at a time.
type Session struct {
	chatter llm.Chatter
	cfg     Config

	mu       sync.Mutex
	messages []Message
	turns    []llm.Turn
	busy     bool
}

// New starts a conversation. A nil chatter gives a session that reports
// ErrUnavailable on every send.
func New(chatter llm.Chatter, cfg Config) *Session {
	if cfg.CompanionName == "" {
		cfg.CompanionName = "Peli"
	}
	if cfg.UserName == "" {
		cfg.UserName = "Friend"
	}
	if cfg.Emotion == "" {
		cfg.Emotion = emotion.Happy
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	s := &Session{chatter: chatter, cfg: cfg}
	if chatter != nil {
		s.messages = append(s.messages, s.companion(fmt.Sprintf(
			"Hi %s! I sense you're feeling %s right now. How can I help you?",
			cfg.UserName, strings.ToLower(string(cfg.Emotion)))))
	}
	return s
}

func (s *Session) Available() bool { return s.chatter != nil }

// Persona is the system instruction sent with every turn.
func (s *Session) Persona() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.personaLocked()
}

func (s *Session) personaLocked() string {
	return fmt.Sprintf("You are %s, a friendly emotion companion. "+
		"The user (%s) is feeling: %s. "+
		"Keep responses concise, empathetic, and always acknowledge the user's current emotion.",
		s.cfg.CompanionName, s.cfg.UserName, s.cfg.Emotion)
}

func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.messages)
}

// Send posts text and waits for the companion's answer. Blank text or a
// send while a reply is pending is refused without changing anything.
func (s *Session) Send(ctx context.Context, text string) (Message, error) {
	if !s.Available() {
		return Message{}, ErrUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrBlank
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return Message{}, ErrBusy
	}
	s.busy = true
	s.messages = append(s.messages, s.message(text, FromUser))
	req := llm.ChatRequest{Persona: s.personaLocked(), History: slices.Clone(s.turns), Message: text}
	s.mu.Unlock()

	reply, err := s.ask(ctx, req)
	if cancelled(ctx) {
		s.release()
		return Message{}, ctx.Err()
	}
	if err != nil {
		s.cfg.Logger.Warn("chat reply failed", zap.Error(err))
		return s.finish(nil, FallbackReply), nil
	}
	if reply == "" {
		reply = EmptyReply
	}
	return s.finish([]llm.Turn{{Role: llm.RoleUser, Text: text}, {Role: llm.RoleCompanion, Text: reply}}, reply), nil
}

// MoodShift tells the companion the user picked a new mood and returns its
// acknowledgement.
func (s *Session) MoodShift(ctx context.Context, e emotion.Emotion) (Message, error) {
	if !s.Available() {
		return Message{}, ErrUnavailable
	}

	s.mu.Lock()
	if s.cfg.Emotion == e {
		s.mu.Unlock()
		return Message{}, ErrSameMood
	}
	if s.busy {
		s.mu.Unlock()
		return Message{}, ErrBusy
	}
	s.cfg.Emotion = e
	s.busy = true
	prompt := fmt.Sprintf("I've just manually updated my mood to %s. Acknowledge this change empathetically as %s.",
		e, s.cfg.CompanionName)
	req := llm.ChatRequest{Persona: s.personaLocked(), History: slices.Clone(s.turns), Message: prompt}
	s.mu.Unlock()

	fallback := fmt.Sprintf("I see you're feeling %s now. I'm here for you.", strings.ToLower(string(e)))
	reply, err := s.ask(ctx, req)
	if cancelled(ctx) {
		s.release()
		return Message{}, ctx.Err()
	}
	if err != nil {
		s.cfg.Logger.Warn("mood shift reply failed", zap.Error(err))
		return s.finish(nil, fallback), nil
	}
	if reply == "" {
		reply = fallback
	}
	return s.finish([]llm.Turn{{Role: llm.RoleUser, Text: prompt}, {Role: llm.RoleCompanion, Text: reply}}, reply), nil
}

func (s *Session) ask(ctx context.Context, req llm.ChatRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	reply, err := s.chatter.Reply(ctx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// cancelled reports whether the caller gave up on the request. Its late
// result is dropped instead of answered with a fallback.
func cancelled(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.Canceled)
}

func (s *Session) release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

func (s *Session) finish(turns []llm.Turn, reply string) Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.turns = append(s.turns, turns...)
	m := s.companion(reply)
	s.messages = append(s.messages, m)
	return m
}

func (s *Session) companion(text string) Message {
	return s.message(text, FromCompanion)
}

func (s *Session) message(text string, from Sender) Message {
	return Message{ID: uuid.NewString(), Text: text, Sender: from, At: s.cfg.Clock.Now()}
}
