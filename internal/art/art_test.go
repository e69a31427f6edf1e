package art

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sethgrid/pelioscope/internal/conditions"
	"github.com/sethgrid/pelioscope/internal/economy"
	"github.com/sethgrid/pelioscope/internal/emotion"
)

func TestEveryEmotionHasTraits(t *testing.T) {
	all := append(append([]emotion.Emotion{}, emotion.Supported...), emotion.Extended...)
	for _, e := range all {
		tr, ok := table[e]
		if !ok {
			t.Errorf("no traits for %s", e)
			continue
		}
		if tr.Emoji == "" || tr.Color == "" {
			t.Errorf("%s has incomplete traits: %+v", e, tr)
		}
		if _, ok := eyes[tr.Eyes]; !ok {
			t.Errorf("%s uses unknown eyes %q", e, tr.Eyes)
		}
		if _, ok := mouths[tr.Mouth]; !ok {
			t.Errorf("%s uses unknown mouth %q", e, tr.Mouth)
		}
		if _, ok := brows[tr.Eyebrows]; !ok {
			t.Errorf("%s uses unknown eyebrows %q", e, tr.Eyebrows)
		}
	}
}

func TestUnknownEmotionUsesDefault(t *testing.T) {
	if got := For("Bewildered"); got != Default {
		t.Errorf("For(unknown) = %+v, want Default", got)
	}
}

func TestRenderFace(t *testing.T) {
	got := RenderFace(Look{Emotion: emotion.Happy})
	want := ` .-------.
 | '   ' |
 | ^   ^ |
 |  \O/  |
 '-------'`
	if got != want {
		t.Errorf("RenderFace(Happy) =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderFaceOverlays(t *testing.T) {
	tests := []struct {
		name string
		look Look
		want []string
	}{
		{"dirty", Look{Emotion: emotion.Sad, Dirty: true}, []string{": T   T :", ". : . :"}},
		{"wet", Look{Emotion: emotion.Neutral, Wet: true}, []string{"'  '  '"}},
		{"bubbles", Look{Emotion: emotion.Neutral, Bubbles: true}, []string{"o O  o"}},
		{"crown", Look{Emotion: emotion.Neutral, Hat: "hat_crown"}, []string{`/\/\/\`}},
		{"unknown hat", Look{Emotion: emotion.Neutral, Hat: "hat_party"}, []string{"[^]"}},
		{"shades", Look{Emotion: emotion.Angry, Clothes: "cloth_glasses"}, []string{"■-=-■"}},
		{"blink", Look{Emotion: emotion.Surprised, Eyes: EyesClosed}, []string{"-   -", " o "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderFace(tt.look)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("face missing %q:\n%s", w, got)
				}
			}
		})
	}
}

func TestLookFor(t *testing.T) {
	status := conditions.DerivedStatus{Conditions: map[conditions.Condition]bool{conditions.CondDirty: true}}
	l := LookFor(emotion.Fear, status, economy.Equipped{Hat: "hat_bow"})
	if !l.Dirty || l.Hat != "hat_bow" || l.Emotion != emotion.Fear {
		t.Errorf("LookFor() = %+v", l)
	}
}

func TestAnimateStaysInPlace(t *testing.T) {
	frames := Blink(Look{Emotion: emotion.Happy})
	var buf bytes.Buffer
	var slept []time.Duration
	Animate(&buf, frames, 4, 3, func(d time.Duration) { slept = append(slept, d) })

	out := buf.String()
	if n := len(slept); n != 6 {
		t.Fatalf("slept %d times, want 6", n)
	}
	if slept[0] != 250*time.Millisecond {
		t.Errorf("delay = %v, want 250ms", slept[0])
	}
	// every frame but the first moves the cursor back over the face
	if n := strings.Count(out, "\033[5A"); n != 5 {
		t.Errorf("found %d cursor-up sequences, want 5", n)
	}
	if n := strings.Count(out, "-   -"); n != 3 {
		t.Errorf("closed-eye frame drawn %d times, want 3", n)
	}
}

func TestAnimateNoFrames(t *testing.T) {
	var buf bytes.Buffer
	Animate(&buf, nil, 4, 3, func(time.Duration) { t.Fatal("should not sleep") })
	if buf.Len() != 0 {
		t.Errorf("wrote %q for no frames", buf.String())
	}
}
