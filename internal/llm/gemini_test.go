package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	calls   int
	model   string
	config  *genai.GenerateContentConfig
	content []*genai.Content
	resp    *genai.GenerateContentResponse
	err     error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.config = config
	f.content = contents
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}, Role: genai.RoleModel},
		}},
	}
}

func TestNewGeminiWithoutKey(t *testing.T) {
	_, err := NewGemini(context.Background(), GeminiConfig{}, nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestReplyMapsHistoryRoles(t *testing.T) {
	fake := &fakeModels{resp: textResponse("  Hello Sam!  ")}
	g := newGemini(fake, GeminiConfig{}, nil)

	got, err := g.Reply(context.Background(), ChatRequest{
		Persona: "You are PELI.",
		History: []Turn{
			{Role: RoleCompanion, Text: "Hi there"},
			{Role: RoleUser, Text: "hey"},
		},
		Message: "how are you?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello Sam!", got)
	assert.Equal(t, DefaultChatModel, fake.model)

	require.Len(t, fake.content, 3)
	assert.Equal(t, genai.RoleModel, fake.content[0].Role)
	assert.Equal(t, genai.RoleUser, fake.content[1].Role)
	assert.Equal(t, "how are you?", fake.content[2].Parts[0].Text)
	require.NotNil(t, fake.config.SystemInstruction)
	assert.Equal(t, "You are PELI.", fake.config.SystemInstruction.Parts[0].Text)
}

func TestReplyEmpty(t *testing.T) {
	g := newGemini(&fakeModels{resp: textResponse("   ")}, GeminiConfig{}, nil)
	_, err := g.Reply(context.Background(), ChatRequest{Message: "hi"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestNarrate(t *testing.T) {
	pcm := make([]byte, 24000) // half a second of 24kHz mono 16-bit
	fake := &fakeModels{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{
				InlineData: &genai.Blob{Data: pcm, MIMEType: "audio/pcm"},
			}}},
		}},
	}}
	g := newGemini(fake, GeminiConfig{}, nil)

	audio, err := g.Narrate(context.Background(), "Once upon a time", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultTTSModel, fake.model)
	assert.Equal(t, []string{"AUDIO"}, fake.config.ResponseModalities)
	assert.Equal(t, DefaultVoice, fake.config.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName)
	assert.Equal(t, NarrationSampleRate, audio.SampleRate)
	assert.Equal(t, 1, audio.Channels)
	assert.Equal(t, time.Second/2, audio.Duration())
}

func TestNarrateWithoutAudio(t *testing.T) {
	g := newGemini(&fakeModels{resp: textResponse("no audio here")}, GeminiConfig{}, nil)
	_, err := g.Narrate(context.Background(), "text", "Puck")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGenerateStory(t *testing.T) {
	fake := &fakeModels{resp: textResponse("```json\n" +
		`{"title":"Sam and the Moon","scenes":[{"text":"Sam looked up.","emotion":"happy"},{"text":"The moon smiled.","emotion":"surprised"}]}` +
		"\n```")}
	g := newGemini(fake, GeminiConfig{}, nil)

	story, err := g.GenerateStory(context.Background(), "Sam", "space")
	require.NoError(t, err)
	assert.Equal(t, "Sam and the Moon", story.Title)
	require.Len(t, story.Scenes, 2)
	assert.Equal(t, "surprised", story.Scenes[1].Emotion)
	assert.Equal(t, "application/json", fake.config.ResponseMIMEType)
	assert.Contains(t, fake.content[0].Parts[0].Text, "Theme: space")
}

func TestParseStoryRejectsEmpty(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "once upon a time"},
		{"no scenes", `{"title":"T","scenes":[]}`},
		{"no title", `{"scenes":[{"text":"a","emotion":"happy"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStory(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	fake := &fakeModels{err: errors.New("503 unavailable")}
	g := newGemini(fake, GeminiConfig{Breaker: BreakerConfig{MaxFailures: 2, Timeout: time.Hour, HalfOpenMaxSuccesses: 1}}, nil)

	for i := 0; i < 2; i++ {
		_, err := g.Reply(context.Background(), ChatRequest{Message: "hi"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCircuitOpen)
	}

	_, err := g.Reply(context.Background(), ChatRequest{Message: "hi"})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, fake.calls)
	assert.Equal(t, "open", g.breaker.State())
}

func TestCanceledContextSkipsCall(t *testing.T) {
	fake := &fakeModels{resp: textResponse("hi")}
	g := newGemini(fake, GeminiConfig{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Reply(ctx, ChatRequest{Message: "hi"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, fake.calls)
}
