// Package emotion defines the closed set of emotions the companion tracks,
// the synonym table used to read labels from the realtime feed, and the
// manual/live emotion state with its de-duplicated history.
package emotion

import "strings"

type Emotion string

// Core emotions. Only these are ever stored as manual or live state.
const (
	Happy     Emotion = "Happy"
	Sad       Emotion = "Sad"
	Angry     Emotion = "Angry"
	Mad       Emotion = "Mad"
	Surprised Emotion = "Surprised"
	Fear      Emotion = "Fear"
	Neutral   Emotion = "Neutral"
	Disgust   Emotion = "Disgust"
)

// Display-only expressions used by activities for transient reactions.
const (
	Excited   Emotion = "Excited"
	Proud     Emotion = "Proud"
	Confident Emotion = "Confident"
	Love      Emotion = "Love"
	Grateful  Emotion = "Grateful"
	Relaxed   Emotion = "Relaxed"
	Calm      Emotion = "Calm"
	Peaceful  Emotion = "Peaceful"
	Lonely    Emotion = "Lonely"
	Tense     Emotion = "Tense"
	Scared    Emotion = "Scared"
	Nervous   Emotion = "Nervous"
	Worried   Emotion = "Worried"
	Curious   Emotion = "Curious"
	Focus     Emotion = "Focus"
)

var Supported = []Emotion{Happy, Sad, Angry, Mad, Surprised, Fear, Neutral, Disgust}

var Extended = []Emotion{
	Excited, Proud, Confident, Love, Grateful, Relaxed, Calm, Peaceful,
	Lonely, Tense, Scared, Nervous, Worried, Curious, Focus,
}

// synonyms maps lower-cased feed labels onto core emotions.
var synonyms = map[string]Emotion{
	"happy":     Happy,
	"happiness": Happy,
	"joy":       Happy,
	"sad":       Sad,
	"sadness":   Sad,
	"angry":     Angry,
	"anger":     Angry,
	"mad":       Mad,
	"surprised": Surprised,
	"surprise":  Surprised,
	"fear":      Fear,
	"fearful":   Fear,
	"neutral":   Neutral,
	"disgust":   Disgust,
	"disgusted": Disgust,
}

// Parse maps a label onto a core emotion, ignoring case and surrounding
// space. Unrecognized labels report false.
func Parse(label string) (Emotion, bool) {
	e, ok := synonyms[strings.ToLower(strings.TrimSpace(label))]
	return e, ok
}

// IsCore reports whether e is one of the Supported emotions.
func (e Emotion) IsCore() bool {
	for _, s := range Supported {
		if s == e {
			return true
		}
	}
	return false
}

func (e Emotion) String() string { return string(e) }
