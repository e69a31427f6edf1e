package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const (
	DefaultChatModel  = "gemini-3-flash-preview"
	DefaultTTSModel   = "gemini-2.5-flash-preview-tts"
	DefaultStoryModel = "gemini-3-flash-preview"
	DefaultVoice      = "Kore"

	// Narration audio comes back as 24kHz mono PCM.
	NarrationSampleRate = 24000
)

type GeminiConfig struct {
	APIKey     string
	ChatModel  string
	TTSModel   string
	StoryModel string
	Voice      string
	// MinInterval spaces consecutive requests; zero disables pacing.
	MinInterval time.Duration
	Breaker     BreakerConfig
}

// contentGenerator is the slice of genai.Models this package uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini implements Service on the Google GenAI API.
type Gemini struct {
	models  contentGenerator
	cfg     GeminiConfig
	breaker *Breaker
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewGemini creates a client. A missing API key yields ErrUnavailable so the
// caller can show the feature as offline.
func NewGemini(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key is not set", ErrUnavailable)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newGemini(client.Models, cfg, logger), nil
}

func newGemini(models contentGenerator, cfg GeminiConfig, logger *zap.Logger) *Gemini {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel
	}
	if cfg.TTSModel == "" {
		cfg.TTSModel = DefaultTTSModel
	}
	if cfg.StoryModel == "" {
		cfg.StoryModel = DefaultStoryModel
	}
	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}
	if cfg.Breaker.MaxFailures == 0 {
		cfg.Breaker = DefaultBreakerConfig()
	}

	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}
	return &Gemini{
		models:  models,
		cfg:     cfg,
		breaker: NewBreaker("gemini", cfg.Breaker, logger),
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

func (g *Gemini) Reply(ctx context.Context, req ChatRequest) (string, error) {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		var role genai.Role = genai.RoleUser
		if turn.Role == RoleCompanion {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(req.Message, genai.RoleUser))

	config := &genai.GenerateContentConfig{}
	if req.Persona != "" {
		config.SystemInstruction = genai.NewContentFromText(req.Persona, genai.RoleUser)
	}

	resp, err := g.generate(ctx, g.cfg.ChatModel, contents, config)
	if err != nil {
		return "", fmt.Errorf("chat reply failed: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (g *Gemini) Narrate(ctx context.Context, text, voice string) (Audio, error) {
	if voice == "" {
		voice = g.cfg.Voice
	}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityAudio)},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	}

	resp, err := g.generate(ctx, g.cfg.TTSModel, genai.Text(text), config)
	if err != nil {
		return Audio{}, fmt.Errorf("narration failed: %w", err)
	}
	pcm := inlineData(resp)
	if len(pcm) == 0 {
		return Audio{}, ErrEmptyResponse
	}
	return Audio{PCM: pcm, SampleRate: NarrationSampleRate, Channels: 1}, nil
}

func (g *Gemini) GenerateStory(ctx context.Context, userName, theme string) (GeneratedStory, error) {
	prompt := fmt.Sprintf(
		`Create an 8-scene children's story for %s. Theme: %s. `+
			`Response in JSON: { "title": "Story Title", "scenes": [ { "text": "...", "emotion": "..." } ] }`,
		userName, theme)
	config := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

	resp, err := g.generate(ctx, g.cfg.StoryModel, genai.Text(prompt), config)
	if err != nil {
		return GeneratedStory{}, fmt.Errorf("story generation failed: %w", err)
	}
	return ParseStory(resp.Text())
}

// ParseStory decodes a generated story, tolerating a fenced code block.
func ParseStory(raw string) (GeneratedStory, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var story GeneratedStory
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &story); err != nil {
		return GeneratedStory{}, fmt.Errorf("failed to parse generated story: %w", err)
	}
	if story.Title == "" || len(story.Scenes) == 0 {
		return GeneratedStory{}, fmt.Errorf("%w: story has no title or scenes", ErrEmptyResponse)
	}
	return story, nil
}

func (g *Gemini) generate(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := g.breaker.Execute(ctx, func() (interface{}, error) {
		return g.models.GenerateContent(ctx, model, contents, config)
	})
	if err != nil {
		g.logger.Warn("generative request failed",
			zap.String("model", model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, err
	}
	g.logger.Debug("generative request finished",
		zap.String("model", model),
		zap.Duration("elapsed", time.Since(start)))
	resp, _ := res.(*genai.GenerateContentResponse)
	if resp == nil {
		return nil, ErrEmptyResponse
	}
	return resp, nil
}

func inlineData(resp *genai.GenerateContentResponse) []byte {
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if p != nil && p.InlineData != nil && len(p.InlineData.Data) > 0 {
				return p.InlineData.Data
			}
		}
	}
	return nil
}
