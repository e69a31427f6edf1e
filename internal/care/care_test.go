package care

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHungerLevel(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		lastFed time.Time
		want    float64
	}{
		{name: "just fed", lastFed: now, want: 100},
		{name: "half window", lastFed: now.Add(-15 * time.Minute), want: 50},
		{name: "window passed", lastFed: now.Add(-31 * time.Minute), want: 0},
		{name: "never fed", lastFed: time.Time{}, want: 0},
		{name: "clock skew", lastFed: now.Add(time.Minute), want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(Thresholds{}, Stamps{LastFed: tt.lastFed})
			assert.InDelta(t, tt.want, tr.HungerLevel(now), 0.5)
		})
	}
}

func TestIsDirty(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tr := NewTracker(Thresholds{}, Stamps{})
	assert.True(t, tr.IsDirty(now), "never bathed")

	tr.MarkShowered(now.Add(-2 * time.Hour))
	assert.False(t, tr.IsDirty(now))

	tr.MarkShowered(now.Add(-3*time.Hour - time.Second))
	assert.True(t, tr.IsDirty(now))
}

func TestIsHungry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker(Thresholds{HungerWindow: 10 * time.Minute}, Stamps{LastFed: now.Add(-5 * time.Minute)})

	assert.False(t, tr.IsHungry(now))
	assert.True(t, tr.IsHungry(now.Add(6*time.Minute)))
}

func TestOnChange(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker(Thresholds{}, Stamps{})

	var seen []Stamps
	tr.OnChange(func(s Stamps) { seen = append(seen, s) })

	tr.MarkFed(now)
	tr.MarkShowered(now.Add(time.Minute))

	assert.Len(t, seen, 2)
	assert.Equal(t, now, seen[1].LastFed)
	assert.Equal(t, now.Add(time.Minute), seen[1].LastShower)
}
