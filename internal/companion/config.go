package companion

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/sethgrid/pelioscope/internal/activity"
	"github.com/sethgrid/pelioscope/internal/care"
	"github.com/sethgrid/pelioscope/internal/conditions"
	"github.com/sethgrid/pelioscope/internal/feed"
	"github.com/sethgrid/pelioscope/internal/health"
	"github.com/sethgrid/pelioscope/internal/llm"
	"github.com/sethgrid/pelioscope/internal/story"
)

// Duration is a time.Duration written as text ("30m") in config files.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", b, err)
	}
	d.Duration = v
	return nil
}

type StorageBackend string

const (
	BackendTOML   StorageBackend = "toml"
	BackendSQLite StorageBackend = "sqlite"
)

type FeedSource string

const (
	FeedNone     FeedSource = "none"
	FeedFirebase FeedSource = "firebase"
	FeedRelay    FeedSource = "relay"
)

type CareConfig struct {
	DirtyAfter        Duration               `toml:"dirtyAfter"`
	HungerWindow      Duration               `toml:"hungerWindow"`
	ActivityThreshold int                    `toml:"activityThreshold"`
	Wellbeing         health.ComputationMode `toml:"wellbeing"`
}

type ActivityConfig struct {
	CompletionDisplay Duration `toml:"completionDisplay"`
}

type StoryConfig struct {
	DailyNarrations int      `toml:"dailyNarrations"`
	Voice           string   `toml:"voice"`
	Packs           []string `toml:"packs"`
}

type LLMConfig struct {
	APIKey      string   `toml:"apiKey,omitempty"`
	ChatModel   string   `toml:"chatModel"`
	TTSModel    string   `toml:"ttsModel"`
	StoryModel  string   `toml:"storyModel"`
	MinInterval Duration `toml:"minInterval"`
	ChatTimeout Duration `toml:"chatTimeout"`

	BreakerFailures uint32   `toml:"breakerFailures"`
	BreakerTimeout  Duration `toml:"breakerTimeout"`
}

type FeedConfig struct {
	Source FeedSource `toml:"source"`
	URL    string     `toml:"url"`
	Path   string     `toml:"path"`
	Auth   string     `toml:"auth,omitempty"`
	Retry  Duration   `toml:"retry"`
	Demo   bool       `toml:"demo"`
}

type RelayConfig struct {
	Listen  string   `toml:"listen"`
	Origins []string `toml:"origins"`
}

// Config is the per-profile configuration, read from config.toml next to
// the profile.
type Config struct {
	Version string         `toml:"version"`
	Storage StorageBackend `toml:"storage"`

	Care     CareConfig     `toml:"care"`
	Activity ActivityConfig `toml:"activity"`
	Story    StoryConfig    `toml:"story"`
	LLM      LLMConfig      `toml:"llm"`
	Feed     FeedConfig     `toml:"feed"`
	Relay    RelayConfig    `toml:"relay"`

	// PIN unlocks the profile without a prompt. Only read from the
	// environment.
	PIN string `toml:"-"`
}

func DefaultConfig() Config {
	return Config{
		Version: "1",
		Storage: BackendTOML,
		Care: CareConfig{
			DirtyAfter:        Duration{care.DefaultDirtyAfter},
			HungerWindow:      Duration{care.DefaultHungerWindow},
			ActivityThreshold: conditions.DefaultActivityThreshold,
			Wellbeing:         health.ComputationAverage,
		},
		Activity: ActivityConfig{CompletionDisplay: Duration{activity.DefaultCompletionDisplay}},
		Story: StoryConfig{
			DailyNarrations: story.DailyNarrationLimit,
			Voice:           llm.DefaultVoice,
		},
		LLM: LLMConfig{
			ChatModel:       llm.DefaultChatModel,
			TTSModel:        llm.DefaultTTSModel,
			StoryModel:      llm.DefaultStoryModel,
			MinInterval:     Duration{time.Second},
			ChatTimeout:     Duration{30 * time.Second},
			BreakerFailures: llm.DefaultBreakerConfig().MaxFailures,
			BreakerTimeout:  Duration{llm.DefaultBreakerConfig().Timeout},
		},
		Feed: FeedConfig{
			Source: FeedNone,
			Path:   feed.DefaultPath,
			Retry:  Duration{feed.DefaultRetryBackoff},
		},
		Relay: RelayConfig{Listen: "127.0.0.1:8765"},
	}
}

// LoadConfig reads path over the defaults. A missing file yields the
// defaults. Secrets in the environment override the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("GEMINI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	} else if v := getenv("API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := getenv("PELIOSCOPE_PIN"); v != "" {
		c.PIN = v
	}
	if v := getenv("PELIOSCOPE_FIREBASE_AUTH"); v != "" {
		c.Feed.Auth = v
	}
}

// SaveConfig writes cfg to path without its secrets.
func SaveConfig(path string, cfg Config) error {
	cfg.LLM.APIKey = ""
	cfg.Feed.Auth = ""
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Thresholds returns the care thresholds.
func (c Config) Thresholds() care.Thresholds {
	return care.Thresholds{DirtyAfter: c.Care.DirtyAfter.Duration, HungerWindow: c.Care.HungerWindow.Duration}
}

// Gemini returns the generative service settings.
func (c Config) Gemini() llm.GeminiConfig {
	return llm.GeminiConfig{
		APIKey:      c.LLM.APIKey,
		ChatModel:   c.LLM.ChatModel,
		TTSModel:    c.LLM.TTSModel,
		StoryModel:  c.LLM.StoryModel,
		Voice:       c.Story.Voice,
		MinInterval: c.LLM.MinInterval.Duration,
		Breaker: llm.BreakerConfig{
			MaxFailures:          c.LLM.BreakerFailures,
			Timeout:              c.LLM.BreakerTimeout.Duration,
			HalfOpenMaxSuccesses: llm.DefaultBreakerConfig().HalfOpenMaxSuccesses,
		},
	}
}
