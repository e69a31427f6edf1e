// Package story holds the narrated story library and the daily narration
// quota.
package story

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/sethgrid/pelioscope/internal/llm"
)

// Themes offered when asking for a generated story.
var Themes = []string{"Brave", "Happy", "Calm", "Curious", "Kind", "Proud", "Safe", "Strong"}

type Scene struct {
	Text    string `yaml:"text" toml:"text"`
	Emotion string `yaml:"emotion" toml:"emotion"`
}

type Story struct {
	ID     string  `yaml:"id" toml:"id"`
	Title  string  `yaml:"title" toml:"title"`
	Icon   string  `yaml:"icon" toml:"icon"`
	Scenes []Scene `yaml:"scenes" toml:"scenes"`
}

func (s Story) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("story has no title")
	}
	if len(s.Scenes) == 0 {
		return fmt.Errorf("story %q has no scenes", s.Title)
	}
	for i, sc := range s.Scenes {
		if strings.TrimSpace(sc.Text) == "" {
			return fmt.Errorf("story %q scene %d has no text", s.Title, i+1)
		}
	}
	return nil
}

// BuiltIn returns the stories that ship with the companion.
func BuiltIn() []Story {
	return []Story{
		{
			ID:    "colorful-day",
			Title: "Peli's Colorful Day",
			Icon:  "🌈",
			Scenes: []Scene{
				{Text: "Hi there! I am Peli. Today is a very colorful day.", Emotion: "Happy"},
				{Text: "I walked outside and saw a big gray cloud. Oh no!", Emotion: "Sad"},
				{Text: "Suddenly, the sun came out! I was so surprised!", Emotion: "Surprised"},
				{Text: "Then I saw a rainbow. It made me feel calm and peaceful.", Emotion: "Relaxed"},
				{Text: "Now I feel ready for a great day. Thanks for listening!", Emotion: "Love"},
			},
		},
		{
			ID:    "brave-little-star",
			Title: "The Brave Little Star",
			Icon:  "⭐",
			Scenes: []Scene{
				{Text: "Once there was a little star who was afraid of the dark.", Emotion: "Fear"},
				{Text: "He tried to hide behind a cloud, feeling very small.", Emotion: "Sad"},
				{Text: "But the moon said, 'You have a light inside you!'", Emotion: "Neutral"},
				{Text: "The little star took a deep breath and sparkled.", Emotion: "Surprised"},
				{Text: "He shone brighter than ever before! He felt so proud.", Emotion: "Confident"},
			},
		},
	}
}

// FromGenerated converts a generated story into a library entry.
func FromGenerated(g llm.GeneratedStory) Story {
	s := Story{ID: uuid.NewString(), Title: g.Title, Icon: "✨"}
	for _, sc := range g.Scenes {
		s.Scenes = append(s.Scenes, Scene{Text: sc.Text, Emotion: sc.Emotion})
	}
	return s
}

// Library is the ordered list of stories available to play. Newer stories
// are placed first.
type Library struct {
	mu      sync.RWMutex
	stories []Story
}

// NewLibrary starts with extra stories followed by the built-ins.
func NewLibrary(extra ...Story) *Library {
	stories := slices.Clone(extra)
	stories = append(stories, BuiltIn()...)
	return &Library{stories: stories}
}

func (l *Library) List() []Story {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.stories)
}

func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.stories)
}

func (l *Library) At(i int) (Story, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.stories) {
		return Story{}, false
	}
	return l.stories[i], true
}

// Find looks a story up by id or case-insensitive title.
func (l *Library) Find(ref string) (Story, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, s := range l.stories {
		if s.ID == ref || strings.EqualFold(s.Title, ref) {
			return s, true
		}
	}
	return Story{}, false
}

// Prepend puts s at the front of the library.
func (l *Library) Prepend(s Story) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stories = append([]Story{s}, l.stories...)
}

type pack struct {
	Stories []Story `yaml:"stories"`
}

// LoadPack reads a YAML story pack:
//
//	stories:
//	  - title: The Quiet Forest
//	    icon: "🌲"
//	    scenes:
//	      - text: The trees whispered hello.
//	        emotion: Calm
func LoadPack(r io.Reader) ([]Story, error) {
	var p pack
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode story pack: %w", err)
	}
	for i := range p.Stories {
		if err := p.Stories[i].Validate(); err != nil {
			return nil, err
		}
		if p.Stories[i].ID == "" {
			p.Stories[i].ID = uuid.NewString()
		}
		if p.Stories[i].Icon == "" {
			p.Stories[i].Icon = "📖"
		}
	}
	return p.Stories, nil
}

func LoadPackFile(path string) ([]Story, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open story pack: %w", err)
	}
	defer f.Close()
	return LoadPack(f)
}
