package art

import "github.com/sethgrid/pelioscope/internal/emotion"

// Feature names shared by the renderers.
const (
	EyesNormal  = "normal"
	EyesWide    = "wide"
	EyesSquint  = "squint"
	EyesClosed  = "happy-closed"
	EyesSad     = "sad"
	EyesAngry   = "angry"
	MouthSmile  = "smile"
	MouthOpen   = "open-smile"
	MouthFrown  = "frown"
	MouthO      = "o-shape"
	MouthWavy   = "wavy"
	BrowNeutral = "neutral"
	BrowUp      = "up"
	BrowSad     = "sad"
	BrowAngry   = "angry"
)

// Traits is how the companion looks while showing an emotion.
type Traits struct {
	Color    string
	Eyes     string
	Mouth    string
	Eyebrows string
	Emoji    string
}

// Default is used for any emotion without its own entry.
var Default = Traits{Color: "#FFE8C7", Eyes: EyesNormal, Mouth: MouthSmile, Eyebrows: BrowNeutral, Emoji: "🙂"}

// Idle is shown on the live screen while the detector is stopped.
var Idle = Traits{Color: "#6366f1", Eyes: EyesClosed, Mouth: MouthSmile, Eyebrows: BrowNeutral, Emoji: "😴"}

var (
	cheerful = Traits{Color: "#fcd34d", Eyes: EyesSquint, Mouth: MouthOpen, Eyebrows: BrowUp}
	blue     = Traits{Color: "#93c5fd", Eyes: EyesSad, Mouth: MouthFrown, Eyebrows: BrowSad}
	cross    = Traits{Color: "#f87171", Eyes: EyesAngry, Mouth: MouthFrown, Eyebrows: BrowAngry}
	afraid   = Traits{Color: "#a5b4fc", Eyes: EyesWide, Mouth: MouthWavy, Eyebrows: BrowUp}
	amazed   = Traits{Color: "#d8b4fe", Eyes: EyesWide, Mouth: MouthO, Eyebrows: BrowUp}
	soft     = Traits{Color: "#f472b6", Eyes: EyesClosed, Mouth: MouthSmile, Eyebrows: BrowNeutral}
)

func with(t Traits, emoji string) Traits {
	t.Emoji = emoji
	return t
}

var table = map[emotion.Emotion]Traits{
	emotion.Happy:     with(cheerful, "😊"),
	emotion.Excited:   with(cheerful, "🤩"),
	emotion.Proud:     with(cheerful, "😌"),
	emotion.Confident: with(cheerful, "😎"),

	emotion.Sad:    with(blue, "😢"),
	emotion.Lonely: with(blue, "🥺"),

	emotion.Angry: with(cross, "😠"),
	emotion.Mad:   with(Traits{Color: "#dc2626", Eyes: EyesAngry, Mouth: MouthFrown, Eyebrows: BrowAngry}, "😡"),
	emotion.Tense: with(cross, "😬"),

	emotion.Fear:    with(afraid, "😨"),
	emotion.Scared:  with(afraid, "😱"),
	emotion.Nervous: with(afraid, "😰"),
	emotion.Worried: with(afraid, "😟"),

	emotion.Surprised: with(amazed, "😲"),
	emotion.Curious:   with(amazed, "🤔"),

	emotion.Disgust: {Color: "#84cc16", Eyes: EyesSquint, Mouth: MouthWavy, Eyebrows: BrowAngry, Emoji: "🤢"},

	emotion.Love:     with(soft, "🥰"),
	emotion.Grateful: with(soft, "🙏"),
	emotion.Relaxed:  with(soft, "😌"),
	emotion.Calm:     with(soft, "😊"),

	emotion.Neutral:  with(Default, "😐"),
	emotion.Peaceful: with(Default, "🕊️"),
	emotion.Focus:    with(Default, "🧐"),
}

// For returns the traits for e, or Default.
func For(e emotion.Emotion) Traits {
	if t, ok := table[e]; ok {
		return t
	}
	return Default
}
