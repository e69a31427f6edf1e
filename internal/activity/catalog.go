package activity

import (
	"strings"
	"time"
)

type Name string

const (
	MoodBoost Name = "Mood Boost"
	GiveGift  Name = "Give Gift"
	BathTime  Name = "Bath Time"
	Feeding   Name = "Feeding"
	PlayMusic Name = "Play Music"
	Exercise  Name = "Exercise"
	Meditate  Name = "Meditate"
	TellStory Name = "Tell Story"
)

// Spec is the static description of an activity.
type Spec struct {
	Name     Name
	Slug     string
	Icon     string
	Reward   int
	Duration time.Duration
}

var Catalog = []Spec{
	{Name: MoodBoost, Slug: "boost", Icon: "✨", Reward: 50, Duration: 30 * time.Second},
	{Name: GiveGift, Slug: "gift", Icon: "🎁", Reward: 20, Duration: 10 * time.Second},
	{Name: BathTime, Slug: "bath", Icon: "🛁", Reward: 60, Duration: 45 * time.Second},
	{Name: Feeding, Slug: "feed", Icon: "🍰", Reward: 30, Duration: 20 * time.Second},
	{Name: PlayMusic, Slug: "music", Icon: "🎵", Reward: 30, Duration: 180 * time.Second},
	{Name: Exercise, Slug: "exercise", Icon: "🔥", Reward: 100, Duration: 300 * time.Second},
	{Name: Meditate, Slug: "breathe", Icon: "🧘", Reward: 80, Duration: 600 * time.Second},
	{Name: TellStory, Slug: "story", Icon: "📖", Reward: 60, Duration: 120 * time.Second},
}

// Lookup finds an activity by display name or slug, ignoring case.
func Lookup(ref string) (Spec, bool) {
	ref = strings.TrimSpace(ref)
	for _, s := range Catalog {
		if strings.EqualFold(string(s.Name), ref) || strings.EqualFold(s.Slug, ref) {
			return s, true
		}
	}
	return Spec{}, false
}

func MustLookup(name Name) Spec {
	s, ok := Lookup(string(name))
	if !ok {
		panic("activity: unknown activity " + string(name))
	}
	return s
}
