package companion

import (
	"time"

	"github.com/sethgrid/pelioscope/internal/activity"
)

// Store keys. Profile keys (userName, userPin) belong to the profile gate.
const (
	KeyCompanionName   = "companionName"
	KeyTheme           = "theme"
	KeyLastShower      = "lastShowerTime"
	KeyLastFed         = "lastFedTime"
	KeyBalance         = "drachma"
	KeyInventory       = "inventory"
	KeyEquipped        = "equippedItems"
	KeyActivityHistory = "activityHistory"
	KeyEmotionHistory  = "emotionHistory"
	KeyStoryQuota      = "storyQuota"
	KeyManualEmotion   = "manualEmotion"
	KeyCustomStories   = "customStories"
)

const (
	DefaultBalance       = 1000
	DefaultCompanionName = "PELI"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ActivityLog records one completed activity.
type ActivityLog struct {
	ID           string        `toml:"id"`
	ActivityName activity.Name `toml:"activityName"`
	CompletedAt  time.Time     `toml:"completedAt"`
}

// Count is one row of the stats tables.
type Count struct {
	Name    string
	Count   int
	Percent float64
}

// Stats summarizes the two logs.
type Stats struct {
	Emotions        []Count
	Activities      []Count
	TotalEmotions   int
	TotalActivities int
}
