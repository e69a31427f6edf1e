// Package companion holds the application state of one profile: the ledger,
// care stamps, emotions, activity log and story library, loaded from a
// storage.Store and written back on every change.
package companion

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sethgrid/pelioscope/internal/activity"
	"github.com/sethgrid/pelioscope/internal/art"
	"github.com/sethgrid/pelioscope/internal/care"
	"github.com/sethgrid/pelioscope/internal/chat"
	"github.com/sethgrid/pelioscope/internal/clock"
	"github.com/sethgrid/pelioscope/internal/conditions"
	"github.com/sethgrid/pelioscope/internal/economy"
	"github.com/sethgrid/pelioscope/internal/emotion"
	"github.com/sethgrid/pelioscope/internal/feed"
	"github.com/sethgrid/pelioscope/internal/health"
	"github.com/sethgrid/pelioscope/internal/llm"
	"github.com/sethgrid/pelioscope/internal/profile"
	"github.com/sethgrid/pelioscope/internal/storage"
	"github.com/sethgrid/pelioscope/internal/story"
)

var (
	ErrUnknownActivity = errors.New("unknown activity")
	ErrBlankName       = errors.New("name cannot be empty")
)

type options struct {
	clock     clock.Clock
	logger    *zap.Logger
	chatter   llm.Chatter
	narrator  llm.Narrator
	generator llm.StoryGenerator
	sink      activity.AudioSink
}

type Option func(*options)

func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithLLM wires the generative service into chat and stories. A nil
// service leaves them unavailable.
func WithLLM(svc llm.Service) Option {
	return func(o *options) {
		if svc == nil {
			return
		}
		o.chatter, o.narrator, o.generator = svc, svc, svc
	}
}

// WithAudioSink sets where story narration is played.
func WithAudioSink(s activity.AudioSink) Option {
	return func(o *options) { o.sink = s }
}

type Companion struct {
	store storage.Store
	cfg   Config
	opts  options
	log   *zap.Logger

	Ledger   *economy.Ledger
	Care     *care.Tracker
	Emotions *emotion.State
	Quota    *story.Quota
	Library  *story.Library

	mu            sync.Mutex
	userName      string
	companionName string
	theme         Theme
	activities    []ActivityLog
	custom        []story.Story
}

// Open loads the profile's state from store. Missing keys take their
// defaults.
func Open(store storage.Store, cfg Config, opts ...Option) (*Companion, error) {
	o := options{clock: clock.Real{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Companion{store: store, cfg: cfg, opts: o, log: o.logger}

	var err error
	load := func(key string, fn func() error) {
		if err != nil {
			return
		}
		if e := fn(); e != nil {
			err = fmt.Errorf("failed to load %s: %w", key, e)
		}
	}

	var (
		balance    int
		inventory  []string
		equipped   economy.Equipped
		stamps     care.Stamps
		manual     emotion.Emotion
		emotionLog []emotion.LogEntry
		quota      story.QuotaRecord
	)
	load(profile.KeyUserName, func() (e error) { c.userName, e = storage.Load(store, profile.KeyUserName, ""); return })
	load(KeyCompanionName, func() (e error) {
		c.companionName, e = storage.Load(store, KeyCompanionName, DefaultCompanionName)
		return
	})
	load(KeyTheme, func() (e error) { c.theme, e = storage.Load(store, KeyTheme, ThemeLight); return })
	load(KeyBalance, func() (e error) { balance, e = storage.Load(store, KeyBalance, DefaultBalance); return })
	load(KeyInventory, func() (e error) { inventory, e = storage.Load[[]string](store, KeyInventory, nil); return })
	load(KeyEquipped, func() (e error) { equipped, e = storage.Load(store, KeyEquipped, economy.Equipped{}); return })
	load(KeyLastShower, func() (e error) { stamps.LastShower, e = storage.Load(store, KeyLastShower, time.Time{}); return })
	load(KeyLastFed, func() (e error) { stamps.LastFed, e = storage.Load(store, KeyLastFed, time.Time{}); return })
	load(KeyManualEmotion, func() (e error) { manual, e = storage.Load(store, KeyManualEmotion, emotion.Happy); return })
	load(KeyEmotionHistory, func() (e error) {
		emotionLog, e = storage.Load[[]emotion.LogEntry](store, KeyEmotionHistory, nil)
		return
	})
	load(KeyActivityHistory, func() (e error) {
		c.activities, e = storage.Load[[]ActivityLog](store, KeyActivityHistory, nil)
		return
	})
	load(KeyStoryQuota, func() (e error) { quota, e = storage.Load(store, KeyStoryQuota, story.QuotaRecord{}); return })
	load(KeyCustomStories, func() (e error) { c.custom, e = storage.Load[[]story.Story](store, KeyCustomStories, nil); return })
	if err != nil {
		return nil, err
	}

	c.Ledger = economy.NewLedger(balance, inventory, equipped, economy.WithOnChange(func(s economy.Snapshot) {
		persist(c, KeyBalance, s.Balance)
		persist(c, KeyInventory, s.Inventory)
		persist(c, KeyEquipped, s.Equipped)
	}))

	c.Care = care.NewTracker(cfg.Thresholds(), stamps)
	c.Care.OnChange(func(s care.Stamps) {
		persist(c, KeyLastShower, s.LastShower)
		persist(c, KeyLastFed, s.LastFed)
	})

	c.Emotions = emotion.NewState(manual, emotionLog)
	c.Emotions.OnChange(func(s emotion.Snapshot) {
		persist(c, KeyManualEmotion, s.Manual.Emotion)
		persist(c, KeyEmotionHistory, s.Log)
	})

	c.Quota = story.NewQuota(quota, cfg.Story.DailyNarrations, o.clock)
	c.Quota.OnChange(func(r story.QuotaRecord) { persist(c, KeyStoryQuota, r) })

	extra := slices.Clone(c.custom)
	for _, path := range cfg.Story.Packs {
		stories, err := story.LoadPackFile(path)
		if err != nil {
			c.log.Warn("skipping story pack", zap.String("path", path), zap.Error(err))
			continue
		}
		extra = append(extra, stories...)
	}
	c.Library = story.NewLibrary(extra...)

	c.log.Debug("companion loaded",
		zap.String("companion", c.companionName),
		zap.Int("balance", balance),
		zap.Int("activities", len(c.activities)))
	return c, nil
}

// persist writes one key. Write failures are logged; the in-memory state
// stays authoritative for the rest of the run.
func persist[T any](c *Companion, key string, v T) {
	if err := storage.Save(c.store, key, v); err != nil {
		c.log.Error("failed to persist", zap.String("key", key), zap.Error(err))
	}
}

func (c *Companion) Config() Config { return c.cfg }

func (c *Companion) Clock() clock.Clock { return c.opts.clock }

// ChatAvailable reports whether a generative service is wired in.
func (c *Companion) ChatAvailable() bool { return c.opts.chatter != nil }

// NewSession builds an activity session by name or slug. Completing it
// credits the reward and appends to the activity log.
func (c *Companion) NewSession(ref string, onEvent func(activity.Event)) (*activity.Session, error) {
	spec, ok := activity.Lookup(ref)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownActivity, ref)
	}
	return activity.New(spec, activity.Deps{
		Clock:             c.opts.clock,
		Ledger:            c.Ledger,
		Care:              c.Care,
		Narrator:          c.opts.narrator,
		Generator:         c.opts.generator,
		Quota:             c.Quota,
		Library:           c.Library,
		Sink:              c.opts.sink,
		Voice:             c.cfg.Story.Voice,
		Logger:            c.log,
		UserName:          c.UserName(),
		CompanionName:     c.CompanionName(),
		CompletionDisplay: c.cfg.Activity.CompletionDisplay.Duration,
		OnComplete:        c.recordActivity,
		OnEvent:           onEvent,
		OnStoryCreated:    c.addStory,
	}), nil
}

func (c *Companion) recordActivity(done activity.Completion) {
	c.mu.Lock()
	entry := ActivityLog{ID: uuid.NewString(), ActivityName: done.Activity, CompletedAt: done.At}
	c.activities = append([]ActivityLog{entry}, c.activities...)
	logs := slices.Clone(c.activities)
	c.mu.Unlock()
	persist(c, KeyActivityHistory, logs)
}

func (c *Companion) addStory(s story.Story) {
	c.mu.Lock()
	c.custom = append([]story.Story{s}, c.custom...)
	custom := slices.Clone(c.custom)
	c.mu.Unlock()
	persist(c, KeyCustomStories, custom)
}

// ImportStories adds stories to the front of the library and keeps them.
func (c *Companion) ImportStories(stories []story.Story) {
	for i := len(stories) - 1; i >= 0; i-- {
		c.Library.Prepend(stories[i])
		c.addStory(stories[i])
	}
}

// Activities returns the activity log, newest first.
func (c *Companion) Activities() []ActivityLog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.activities)
}

// ClearHistory empties the activity and emotion logs. Balance, inventory
// and care stamps are untouched.
func (c *Companion) ClearHistory() {
	c.mu.Lock()
	c.activities = nil
	c.mu.Unlock()
	persist[[]ActivityLog](c, KeyActivityHistory, nil)
	c.Emotions.ClearLog()
}

type Status struct {
	conditions.DerivedStatus
	Wellbeing int
	Emotion   emotion.Emotion
	Live      emotion.Reading
	Balance   int
	Look      art.Look
}

func (c *Companion) Status(now time.Time) Status {
	var completed []time.Time
	for _, a := range c.Activities() {
		completed = append(completed, a.CompletedAt)
	}
	threshold := c.cfg.Care.ActivityThreshold
	if threshold <= 0 {
		threshold = conditions.DefaultActivityThreshold
	}
	derived := conditions.DeriveStatus(c.Care, completed, now, threshold)

	cleanliness := 0.0
	if last := c.Care.Stamps().LastShower; !last.IsZero() {
		dirtyAfter := c.cfg.Thresholds().DirtyAfter
		if dirtyAfter <= 0 {
			dirtyAfter = care.DefaultDirtyAfter
		}
		cleanliness = 100 - health.Ratio(now.Sub(last).Seconds(), dirtyAfter.Seconds())
	}
	recent := 0
	for _, at := range completed {
		if at.After(now.Add(-24 * time.Hour)) {
			recent++
		}
	}
	company := health.Ratio(float64(recent), float64(threshold))

	manual := c.Emotions.Manual()
	return Status{
		DerivedStatus: derived,
		Wellbeing:     health.ComputeWellbeing(derived.Hunger, cleanliness, company, c.cfg.Care.Wellbeing),
		Emotion:       manual,
		Live:          c.Emotions.Live(),
		Balance:       c.Ledger.Balance(),
		Look:          art.LookFor(manual, derived, c.Ledger.Equipped()),
	}
}

// Stats counts the emotion log per emotion and the activity log per
// activity, most frequent first.
func (c *Companion) Stats() Stats {
	var emotions, activities []string
	for _, e := range c.Emotions.Log() {
		emotions = append(emotions, string(e.Emotion))
	}
	for _, a := range c.Activities() {
		activities = append(activities, string(a.ActivityName))
	}
	return Stats{
		Emotions:        tally(emotions),
		Activities:      tally(activities),
		TotalEmotions:   len(emotions),
		TotalActivities: len(activities),
	}
}

func tally(names []string) []Count {
	counts := make(map[string]int)
	for _, n := range names {
		counts[n]++
	}
	out := make([]Count, 0, len(counts))
	for name, n := range counts {
		out = append(out, Count{Name: name, Count: n, Percent: float64(n) / float64(len(names)) * 100})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

func (c *Companion) UserName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userName
}

func (c *Companion) SetUserName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrBlankName
	}
	c.mu.Lock()
	c.userName = name
	c.mu.Unlock()
	return storage.Save(c.store, profile.KeyUserName, name)
}

// SwitchProfile replaces the profile's name and PIN, as on a shared
// device handed to someone else. The companion's state carries over.
func (c *Companion) SwitchProfile(name, pin string) error {
	name, err := profile.NewGate(c.store).Switch(name, pin)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.userName = name
	c.mu.Unlock()
	return nil
}

func (c *Companion) CompanionName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.companionName
}

func (c *Companion) SetCompanionName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrBlankName
	}
	c.mu.Lock()
	c.companionName = name
	c.mu.Unlock()
	return storage.Save(c.store, KeyCompanionName, name)
}

func (c *Companion) Theme() Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.theme
}

// ToggleTheme flips between light and dark and returns the new theme.
func (c *Companion) ToggleTheme() (Theme, error) {
	c.mu.Lock()
	if c.theme == ThemeDark {
		c.theme = ThemeLight
	} else {
		c.theme = ThemeDark
	}
	t := c.theme
	c.mu.Unlock()
	return t, storage.Save(c.store, KeyTheme, t)
}

// SetMood records a manual emotion. It reports false when e is not a core
// emotion or is already the current one.
func (c *Companion) SetMood(e emotion.Emotion) bool {
	return c.Emotions.SetManual(e, c.opts.clock.Now())
}

// Chat starts a conversation with the current names and manual emotion.
func (c *Companion) Chat() *chat.Session {
	return chat.New(c.opts.chatter, chat.Config{
		CompanionName: c.CompanionName(),
		UserName:      c.UserName(),
		Emotion:       c.Emotions.Manual(),
		Clock:         c.opts.clock,
		Logger:        c.log,
		Timeout:       c.cfg.LLM.ChatTimeout.Duration,
	})
}

// Monitor follows src into the live side of the emotion state. Demo mode
// from the config is applied before it is returned.
func (c *Companion) Monitor(src feed.Source, onChange func(feed.View)) *feed.Monitor {
	m := feed.NewMonitor(src, c.Emotions, feed.MonitorConfig{
		Clock:    c.opts.clock,
		Logger:   c.log,
		Retry:    c.cfg.Feed.Retry.Duration,
		OnChange: onChange,
	})
	if c.cfg.Feed.Demo {
		m.SetDemo(true)
	}
	return m
}

func (c *Companion) Close() error {
	return c.store.Close()
}
