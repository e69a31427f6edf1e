package companion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sethgrid/pelioscope/internal/activity"
	"github.com/sethgrid/pelioscope/internal/clock"
	"github.com/sethgrid/pelioscope/internal/conditions"
	"github.com/sethgrid/pelioscope/internal/economy"
	"github.com/sethgrid/pelioscope/internal/emotion"
	"github.com/sethgrid/pelioscope/internal/llm"
	"github.com/sethgrid/pelioscope/internal/profile"
	"github.com/sethgrid/pelioscope/internal/storage"
	"github.com/sethgrid/pelioscope/internal/story"
)

var epoch = time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)

func open(t *testing.T, store storage.Store, clk clock.Clock, opts ...Option) *Companion {
	t.Helper()
	opts = append([]Option{WithClock(clk)}, opts...)
	c, err := Open(store, DefaultConfig(), opts...)
	require.NoError(t, err)
	return c
}

func TestOpenDefaults(t *testing.T) {
	c := open(t, storage.NewMemory(), clock.NewManual(epoch))

	assert.Equal(t, DefaultBalance, c.Ledger.Balance())
	assert.Empty(t, c.Ledger.Snapshot().Inventory)
	assert.Equal(t, economy.Equipped{}, c.Ledger.Equipped())
	assert.True(t, c.Care.Stamps().LastFed.IsZero())
	assert.Equal(t, emotion.Happy, c.Emotions.Manual())
	assert.Equal(t, emotion.Neutral, c.Emotions.Live().Emotion)
	assert.Equal(t, DefaultCompanionName, c.CompanionName())
	assert.Equal(t, ThemeLight, c.Theme())
	assert.Empty(t, c.Activities())
	assert.Equal(t, story.DailyNarrationLimit, c.Quota.Remaining())
	assert.Equal(t, len(story.BuiltIn()), c.Library.Len())
	assert.False(t, c.ChatAvailable())
}

func TestStatePersistsAcrossOpens(t *testing.T) {
	store := storage.NewMemory()
	clk := clock.NewManual(epoch)
	c := open(t, store, clk)

	_, err := c.Ledger.Purchase("hat_crown")
	require.NoError(t, err)
	c.Ledger.Equip(economy.SlotHat, "hat_crown")
	c.Care.MarkShowered(epoch)
	c.Care.MarkFed(epoch.Add(time.Minute))
	require.True(t, c.SetMood(emotion.Sad))
	c.Emotions.ObserveLive(emotion.Reading{Emotion: emotion.Angry}, epoch)
	require.NoError(t, c.SetCompanionName("Bubbles"))
	_, err = c.ToggleTheme()
	require.NoError(t, err)
	require.True(t, c.Quota.Use())

	again := open(t, store, clk)
	assert.Equal(t, c.Ledger.Balance(), again.Ledger.Balance())
	assert.True(t, again.Ledger.Owns("hat_crown"))
	assert.Equal(t, "hat_crown", again.Ledger.Equipped().Hat)
	assert.True(t, again.Care.Stamps().LastShower.Equal(epoch))
	assert.True(t, again.Care.Stamps().LastFed.Equal(epoch.Add(time.Minute)))
	assert.Equal(t, emotion.Sad, again.Emotions.Manual())
	require.Len(t, again.Emotions.Log(), 1)
	assert.Equal(t, emotion.Angry, again.Emotions.Log()[0].Emotion)
	assert.Equal(t, "Bubbles", again.CompanionName())
	assert.Equal(t, ThemeDark, again.Theme())
	assert.Equal(t, story.DailyNarrationLimit-1, again.Quota.Remaining())
}

func TestCompletedSessionIsLogged(t *testing.T) {
	store := storage.NewMemory()
	clk := clock.NewManual(epoch)
	c := open(t, store, clk)

	var events []string
	sess, err := c.NewSession("gift", func(e activity.Event) { events = append(events, e.Message) })
	require.NoError(t, err)
	require.NoError(t, sess.Start())
	t.Cleanup(sess.Exit)

	g := sess.Machine().(*activity.Gift)
	require.True(t, g.ChooseMood(emotion.Happy))
	require.NoError(t, g.Give("hug"))
	clk.Advance(4 * time.Second)

	assert.Equal(t, activity.Complete, sess.State())
	assert.Equal(t, DefaultBalance+activity.MustLookup(activity.GiveGift).Reward, c.Ledger.Balance())
	logs := c.Activities()
	require.Len(t, logs, 1)
	assert.Equal(t, activity.GiveGift, logs[0].ActivityName)
	assert.True(t, logs[0].CompletedAt.Equal(epoch.Add(3500*time.Millisecond)))
	assert.Contains(t, events, "GREAT JOB!")

	again := open(t, store, clk)
	assert.Len(t, again.Activities(), 1)
}

func TestNewSessionUnknown(t *testing.T) {
	c := open(t, storage.NewMemory(), clock.NewManual(epoch))
	_, err := c.NewSession("juggling", nil)
	assert.ErrorIs(t, err, ErrUnknownActivity)
}

func TestClearHistoryKeepsEverythingElse(t *testing.T) {
	clk := clock.NewManual(epoch)
	c := open(t, storage.NewMemory(), clk)
	c.recordActivity(activity.Completion{Activity: activity.Feeding, At: epoch})
	c.Emotions.ObserveLive(emotion.Reading{Emotion: emotion.Sad}, epoch)
	_, err := c.Ledger.Purchase("apple")
	require.NoError(t, err)
	c.Care.MarkFed(epoch)
	balance := c.Ledger.Balance()

	c.ClearHistory()

	assert.Empty(t, c.Activities())
	assert.Empty(t, c.Emotions.Log())
	assert.Equal(t, balance, c.Ledger.Balance())
	assert.Equal(t, 1, c.Ledger.Count("apple"))
	assert.True(t, c.Care.Stamps().LastFed.Equal(epoch))
}

func TestStatus(t *testing.T) {
	clk := clock.NewManual(epoch)
	c := open(t, storage.NewMemory(), clk)

	st := c.Status(epoch)
	assert.Equal(t, []conditions.Condition{conditions.CondDirty, conditions.CondStarving, conditions.CondLonely}, st.AllOrdered)
	assert.Equal(t, 0, st.Wellbeing)
	assert.True(t, st.Look.Dirty)

	c.Care.MarkShowered(epoch)
	c.Care.MarkFed(epoch)
	for i := 0; i < 3; i++ {
		c.recordActivity(activity.Completion{Activity: activity.MoodBoost, At: epoch.Add(-time.Duration(i) * time.Minute)})
	}
	st = c.Status(epoch)
	assert.Equal(t, conditions.CondHappy, st.Primary)
	assert.Equal(t, 100, st.Wellbeing)
	assert.Equal(t, emotion.Happy, st.Emotion)
	assert.False(t, st.Look.Dirty)
}

func TestStats(t *testing.T) {
	c := open(t, storage.NewMemory(), clock.NewManual(epoch))
	for _, name := range []activity.Name{activity.Feeding, activity.BathTime, activity.Feeding, activity.Meditate} {
		c.recordActivity(activity.Completion{Activity: name, At: epoch})
	}
	for i, e := range []emotion.Emotion{emotion.Sad, emotion.Happy, emotion.Sad} {
		c.Emotions.ObserveLive(emotion.Reading{Emotion: e}, epoch.Add(time.Duration(i)*time.Second))
	}

	s := c.Stats()
	assert.Equal(t, 4, s.TotalActivities)
	assert.Equal(t, []Count{
		{Name: string(activity.Feeding), Count: 2, Percent: 50},
		{Name: string(activity.BathTime), Count: 1, Percent: 25},
		{Name: string(activity.Meditate), Count: 1, Percent: 25},
	}, s.Activities)
	require.Len(t, s.Emotions, 2)
	assert.Equal(t, string(emotion.Sad), s.Emotions[0].Name)
	assert.Equal(t, 2, s.Emotions[0].Count)
}

func TestSettings(t *testing.T) {
	c := open(t, storage.NewMemory(), clock.NewManual(epoch))

	assert.ErrorIs(t, c.SetCompanionName("  "), ErrBlankName)
	assert.ErrorIs(t, c.SetUserName(""), ErrBlankName)
	require.NoError(t, c.SetUserName(" Sam "))
	assert.Equal(t, "Sam", c.UserName())

	theme, err := c.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)
	theme, err = c.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, theme)

	assert.False(t, c.SetMood(emotion.Curious))
	assert.True(t, c.SetMood(emotion.Angry))
	assert.False(t, c.SetMood(emotion.Angry))
}

func TestImportStoriesPersist(t *testing.T) {
	store := storage.NewMemory()
	clk := clock.NewManual(epoch)
	c := open(t, store, clk)

	imported := []story.Story{
		{ID: "a", Title: "First", Icon: "🌱", Scenes: []story.Scene{{Text: "One.", Emotion: "Happy"}}},
		{ID: "b", Title: "Second", Icon: "🌙", Scenes: []story.Scene{{Text: "Two.", Emotion: "Calm"}}},
	}
	c.ImportStories(imported)
	first, _ := c.Library.At(0)
	assert.Equal(t, "a", first.ID)

	again := open(t, store, clk)
	assert.Equal(t, len(story.BuiltIn())+2, again.Library.Len())
	first, _ = again.Library.At(0)
	second, _ := again.Library.At(1)
	assert.Equal(t, "a", first.ID)
	assert.Equal(t, "b", second.ID)
}

type stubChatter struct{ reply string }

func (s stubChatter) Reply(context.Context, llm.ChatRequest) (string, error) { return s.reply, nil }

func (stubChatter) Narrate(context.Context, string, string) (llm.Audio, error) {
	return llm.Audio{}, llm.ErrUnavailable
}

func (stubChatter) GenerateStory(context.Context, string, string) (llm.GeneratedStory, error) {
	return llm.GeneratedStory{}, llm.ErrUnavailable
}

func TestChatUsesCurrentContext(t *testing.T) {
	clk := clock.NewManual(epoch)
	c := open(t, storage.NewMemory(), clk, WithLLM(stubChatter{reply: "Hello!"}))
	require.NoError(t, c.SetUserName("Sam"))
	require.True(t, c.SetMood(emotion.Sad))

	s := c.Chat()
	require.True(t, s.Available())
	assert.Contains(t, s.Persona(), "Sam")
	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "sad")

	reply, err := s.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello!", reply.Text)
}

func TestMonitorDemoFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Feed.Demo = true
	c, err := Open(storage.NewMemory(), cfg, WithClock(clock.NewManual(epoch)))
	require.NoError(t, err)

	m := c.Monitor(nil, nil)
	assert.True(t, m.Demo())
}

func TestSwitchProfile(t *testing.T) {
	store := storage.NewMemory()
	gate := profile.NewGate(store, profile.WithCost(bcrypt.MinCost))
	_, err := gate.Create("Sam", "1234")
	require.NoError(t, err)

	c := open(t, store, clock.NewManual(epoch))
	assert.Equal(t, "Sam", c.UserName())

	assert.ErrorIs(t, c.SwitchProfile("Alex", "12"), profile.ErrInvalidPIN)
	require.NoError(t, c.SwitchProfile("Alex", "9876"))
	assert.Equal(t, "Alex", c.UserName())

	_, err = gate.Login("alex", "9876")
	assert.NoError(t, err)
}
