package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sethgrid/pelioscope/internal/emotion"
)

func TestBreathingCycles(t *testing.T) {
	h := newHarness(t, Meditate)
	b := h.sess.Machine().(*Breathing)

	assert.Equal(t, BreathView{Phase: Inhale, Left: 4, OfCycles: 3}, b.View())

	h.clk.Advance(3 * time.Second)
	assert.Equal(t, Inhale, b.View().Phase)
	assert.Equal(t, 1, b.View().Left)

	h.clk.Advance(time.Second)
	assert.Equal(t, Hold, b.View().Phase)
	h.clk.Advance(4 * time.Second)
	assert.Equal(t, Exhale, b.View().Phase)
	h.clk.Advance(4 * time.Second)
	v := b.View()
	assert.Equal(t, Inhale, v.Phase)
	assert.Equal(t, 1, v.Cycles)

	h.clk.Advance(23 * time.Second)
	assert.Equal(t, Running, h.sess.State())
	h.clk.Advance(time.Second)
	assert.Equal(t, Complete, h.sess.State())
	assert.Len(t, h.completions, 1)
}

func TestPhysicalRoutine(t *testing.T) {
	h := newHarness(t, Exercise)
	hub := h.sess.Machine().(*ExerciseHub)

	hub.StartPhysical()
	assert.Equal(t, PhysicalTrack, hub.Mode())
	// the brain track cannot be opened once a track is running
	hub.StartBrain()
	assert.Equal(t, PhysicalTrack, hub.Mode())

	assert.Equal(t, Intro, hub.Physical().Stage)
	h.clk.Advance(5 * time.Second)
	v := hub.Physical()
	assert.Equal(t, Moving, v.Stage)
	assert.Equal(t, "Stretch Arms Up", v.Movement.Name)
	assert.Equal(t, 8, v.Left)

	h.clk.Advance(8 * time.Second)
	assert.Equal(t, "Shake Hands", hub.Physical().Movement.Name)
	h.clk.Advance(6 * time.Second)
	assert.Equal(t, "Slow Neck Roll", hub.Physical().Movement.Name)
	h.clk.Advance(16 * time.Second)
	assert.Equal(t, Outro, hub.Physical().Stage)

	h.clk.Advance(4 * time.Second)
	assert.Equal(t, Running, h.sess.State())
	h.clk.Advance(time.Second)
	assert.Equal(t, Complete, h.sess.State())
	assert.Equal(t, 1100, h.ledger.Balance())
}

func TestBrainMenu(t *testing.T) {
	h := newHarness(t, Exercise)
	hub := h.sess.Machine().(*ExerciseHub)

	// games need the brain track first
	hub.Play(MemoryMatchGame)
	assert.Nil(t, hub.MemoryMatch())

	hub.StartBrain()
	hub.Play(MemoryMatchGame)
	require.NotNil(t, hub.MemoryMatch())

	hub.Play(NameEmotionGame)
	assert.Nil(t, hub.MemoryMatch())
	require.NotNil(t, hub.NameEmotion())

	hub.Back()
	assert.Nil(t, hub.NameEmotion())
	assert.Equal(t, BrainTrack, hub.Mode())
}

func indexOf(grid []emotion.Emotion, want emotion.Emotion, match bool) int {
	for i, e := range grid {
		if (e == want) == match {
			return i
		}
	}
	return -1
}

func TestFindTarget(t *testing.T) {
	h := newHarness(t, Exercise)
	hub := h.sess.Machine().(*ExerciseHub)
	hub.StartBrain()
	hub.Play(FindTargetGame)
	game := hub.FindTarget()

	for round, size := range []int{3, 5, 8} {
		v := game.View()
		assert.Equal(t, round+1, v.Round)
		require.Len(t, v.Grid, size)

		happy := 0
		for _, e := range v.Grid {
			if e == emotion.Happy {
				happy++
			}
		}
		require.Equal(t, 1, happy, "exactly one target per grid")

		if wrong := indexOf(v.Grid, emotion.Happy, false); wrong >= 0 {
			assert.False(t, game.Tap(wrong))
			assert.Equal(t, emotion.Sad, game.View().Reaction)
		}

		right := indexOf(v.Grid, emotion.Happy, true)
		assert.True(t, game.Tap(right))
		// taps during the pause before the next round are ignored
		assert.False(t, game.Tap(right))
		h.clk.Advance(time.Second)
	}

	assert.Equal(t, Complete, h.sess.State())
	assert.Len(t, h.completions, 1)
}

func TestNameEmotion(t *testing.T) {
	h := newHarness(t, Exercise)
	hub := h.sess.Machine().(*ExerciseHub)
	hub.StartBrain()
	hub.Play(NameEmotionGame)
	game := hub.NameEmotion()

	v := game.View()
	require.Len(t, v.Options, 4)
	seen := map[emotion.Emotion]bool{}
	for _, o := range v.Options {
		assert.False(t, seen[o], "options must be distinct")
		seen[o] = true
	}
	require.True(t, seen[v.Showing])
	assert.NotEqual(t, emotion.Mad, v.Showing)

	for _, o := range v.Options {
		if o != v.Showing {
			assert.False(t, game.Guess(o))
		}
	}
	assert.Equal(t, Running, h.sess.State())

	assert.True(t, game.Guess(v.Showing))
	assert.Equal(t, emotion.Love, game.View().Showing)
	h.clk.Advance(1500 * time.Millisecond)
	assert.Equal(t, Complete, h.sess.State())
}

func TestMemoryMatch(t *testing.T) {
	h := newHarness(t, Exercise)
	hub := h.sess.Machine().(*ExerciseHub)
	hub.StartBrain()
	hub.Play(MemoryMatchGame)
	game := hub.MemoryMatch()

	cards := game.View().Cards
	require.Len(t, cards, 12)
	pairs := map[emotion.Emotion][]int{}
	for i, c := range cards {
		pairs[c.Face] = append(pairs[c.Face], i)
	}
	require.Len(t, pairs, 6)

	// mismatch: both flip back after the delay and stay playable
	a := pairs[emotion.Happy][0]
	b := pairs[emotion.Sad][0]
	c := pairs[emotion.Angry][0]
	game.Flip(a)
	game.Flip(b)
	v := game.View()
	assert.True(t, v.Locked)
	game.Flip(c)
	assert.False(t, game.View().Cards[c].FaceUp, "input is locked while a pair is pending")

	h.clk.Advance(999 * time.Millisecond)
	assert.True(t, game.View().Cards[a].FaceUp)
	h.clk.Advance(time.Millisecond)
	v = game.View()
	assert.False(t, v.Cards[a].FaceUp)
	assert.False(t, v.Cards[b].FaceUp)
	assert.False(t, v.Locked)

	// tapping the same card twice does not pair it with itself
	game.Flip(a)
	game.Flip(a)
	assert.False(t, game.View().Locked)
	game.Flip(pairs[emotion.Happy][1])
	h.clk.Advance(500 * time.Millisecond)
	assert.Equal(t, 1, game.View().Matched)

	for _, face := range []emotion.Emotion{emotion.Sad, emotion.Angry, emotion.Surprised, emotion.Fear, emotion.Neutral} {
		game.Flip(pairs[face][0])
		game.Flip(pairs[face][1])
		h.clk.Advance(500 * time.Millisecond)
	}
	assert.Equal(t, 6, game.View().Matched)
	assert.Empty(t, h.completions)

	h.clk.Advance(1500 * time.Millisecond)
	require.Len(t, h.completions, 1)
	h.clk.Advance(time.Minute)
	assert.Len(t, h.completions, 1)
	assert.True(t, h.closed())
}
