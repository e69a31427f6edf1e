// Package llm is the boundary to the generative service that writes chat
// replies, narrates story scenes and invents new stories. Every call may be
// slow or fail outright; callers are expected to have a fallback for each.
package llm

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnavailable means the service cannot be reached at all, for
	// example because no credential is configured.
	ErrUnavailable   = errors.New("generative service unavailable")
	ErrEmptyResponse = errors.New("generative service returned no content")
)

type Role string

const (
	RoleUser      Role = "user"
	RoleCompanion Role = "companion"
)

type Turn struct {
	Role Role
	Text string
}

type ChatRequest struct {
	Persona string
	History []Turn
	Message string
}

// Audio is raw little-endian 16-bit PCM.
type Audio struct {
	PCM        []byte
	SampleRate int
	Channels   int
}

// Duration is the playback length of the audio.
func (a Audio) Duration() time.Duration {
	if a.SampleRate <= 0 || a.Channels <= 0 {
		return 0
	}
	frames := len(a.PCM) / (2 * a.Channels)
	return time.Duration(frames) * time.Second / time.Duration(a.SampleRate)
}

type Scene struct {
	Text    string `json:"text" yaml:"text"`
	Emotion string `json:"emotion" yaml:"emotion"`
}

type GeneratedStory struct {
	Title  string  `json:"title"`
	Scenes []Scene `json:"scenes"`
}

type Chatter interface {
	Reply(ctx context.Context, req ChatRequest) (string, error)
}

type Narrator interface {
	Narrate(ctx context.Context, text, voice string) (Audio, error)
}

type StoryGenerator interface {
	GenerateStory(ctx context.Context, userName, theme string) (GeneratedStory, error)
}

// Service is everything the companion asks of the generative backend.
type Service interface {
	Chatter
	Narrator
	StoryGenerator
}
