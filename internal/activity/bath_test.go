package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBathPhases(t *testing.T) {
	h := newHarness(t, BathTime)
	bath := h.sess.Machine().(*Bath)
	require.True(t, h.care.IsDirty(h.clk.Now()))

	assert.Equal(t, BathView{Phase: Lather, Dirty: true}, bath.View())

	// rinse does nothing while lathering
	bath.HoldRinse()
	h.clk.Advance(time.Second)
	assert.Equal(t, 0, bath.View().Progress)

	for i := 0; i < 49; i++ {
		bath.Scrub()
	}
	v := bath.View()
	assert.Equal(t, Lather, v.Phase)
	assert.Equal(t, 98, v.Progress)
	assert.True(t, v.Bubbles)

	bath.Scrub()
	v = bath.View()
	assert.Equal(t, Rinse, v.Phase)
	assert.Equal(t, 0, v.Progress)

	// scrubbing during rinse is ignored
	bath.Scrub()
	assert.Equal(t, 0, bath.View().Progress)

	bath.HoldRinse()
	h.clk.Advance(500 * time.Millisecond)
	v = bath.View()
	assert.Equal(t, 25, v.Progress)
	assert.True(t, v.Wet)
	assert.False(t, v.Dirty)

	bath.ReleaseRinse()
	h.clk.Advance(time.Second)
	assert.Equal(t, 25, bath.View().Progress)

	bath.HoldRinse()
	h.clk.Advance(1500 * time.Millisecond)
	v = bath.View()
	assert.Equal(t, Dry, v.Phase)
	assert.Equal(t, 0, v.Progress)

	// the rinse ticker must not keep running into the dry phase
	h.clk.Advance(time.Second)
	assert.Equal(t, 0, bath.View().Progress)

	h.clk.Advance(time.Minute)
	finished := h.clk.Now()
	for i := 0; i < 50; i++ {
		bath.Scrub()
	}

	assert.Equal(t, Complete, h.sess.State())
	assert.False(t, h.care.IsDirty(h.clk.Now()))
	assert.True(t, finished.Equal(h.care.Stamps().LastShower))
	require.Len(t, h.completions, 1)
	assert.Equal(t, 1060, h.ledger.Balance())

	// gestures after completion are ignored
	bath.Scrub()
	assert.Len(t, h.completions, 1)
}
