package art

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sethgrid/pelioscope/internal/conditions"
	"github.com/sethgrid/pelioscope/internal/economy"
	"github.com/sethgrid/pelioscope/internal/emotion"
)

// Look is everything that changes how the companion is drawn.
type Look struct {
	Emotion emotion.Emotion
	Dirty   bool
	Wet     bool
	Bubbles bool
	Hat     string
	Clothes string
	// Eyes overrides the emotion's eyes, for blinks.
	Eyes string
}

// LookFor builds the resting look from the companion's status.
func LookFor(e emotion.Emotion, status conditions.DerivedStatus, equipped economy.Equipped) Look {
	return Look{
		Emotion: e,
		Dirty:   status.Conditions[conditions.CondDirty],
		Hat:     equipped.Hat,
		Clothes: equipped.Clothes,
	}
}

var eyes = map[string]string{
	EyesNormal: "o   o",
	EyesWide:   "O   O",
	EyesSquint: "^   ^",
	EyesClosed: "-   -",
	EyesSad:    "T   T",
	EyesAngry:  ">   <",
}

var mouths = map[string]string{
	MouthSmile: `\_/`,
	MouthOpen:  `\O/`,
	MouthFrown: `/-\`,
	MouthO:     " o ",
	MouthWavy:  "~~~",
}

var brows = map[string]string{
	BrowNeutral: "     ",
	BrowUp:      "'   '",
	BrowSad:     "/   \\",
	BrowAngry:   "\\   /",
}

var hats = map[string]string{
	"hat_cap":    "  _____n",
	"hat_bow":    "   >o<",
	"hat_crown":  "  /\\/\\/\\",
	"hat_cowboy": " __/~~\\__",
	"hat_beanie": "   (###)",
}

var clothes = map[string]string{
	"cloth_tie":    "    >o<",
	"cloth_scarf":  "  ~~~~~~~",
	"cloth_flower": "      @",
}

func pick(table map[string]string, key, fallback string) string {
	if v, ok := table[key]; ok {
		return v
	}
	return table[fallback]
}

// RenderFace draws the companion as ASCII art.
func RenderFace(l Look) string {
	t := For(l.Emotion)
	eyeKey := t.Eyes
	if l.Eyes != "" {
		eyeKey = l.Eyes
	}
	eyeRow := pick(eyes, eyeKey, EyesNormal)
	if l.Clothes == "cloth_glasses" {
		eyeRow = "■-=-■"
	}

	side := "|"
	if l.Dirty {
		side = ":"
	}

	var b strings.Builder
	if l.Bubbles {
		b.WriteString("  o O  o\n")
	}
	if l.Hat != "" {
		hat, ok := hats[l.Hat]
		if !ok {
			hat = "   [^]"
		}
		b.WriteString(hat + "\n")
	}
	b.WriteString(" .-------.\n")
	fmt.Fprintf(&b, " %s %s %s\n", side, pick(brows, t.Eyebrows, BrowNeutral), side)
	fmt.Fprintf(&b, " %s %s %s\n", side, eyeRow, side)
	fmt.Fprintf(&b, " %s  %s  %s\n", side, pick(mouths, t.Mouth, MouthSmile), side)
	b.WriteString(" '-------'")
	if l.Clothes != "" {
		if c, ok := clothes[l.Clothes]; ok {
			b.WriteString("\n" + c)
		}
	}
	if l.Dirty {
		b.WriteString("\n  . : . :")
	}
	if l.Wet {
		b.WriteString("\n  '  '  '")
	}
	return b.String()
}

// Animate draws frames in place, moving the cursor back up between them.
// sleep is called between frames; pass time.Sleep outside tests.
func Animate(w io.Writer, frames []string, fps, loops int, sleep func(time.Duration)) {
	if len(frames) == 0 {
		return
	}
	if fps <= 0 {
		fps = 4
	}
	if loops <= 0 {
		loops = 1
	}
	delay := time.Second / time.Duration(fps)

	height := 0
	for _, f := range frames {
		if n := strings.Count(f, "\n") + 1; n > height {
			height = n
		}
	}

	first := true
	for i := 0; i < loops; i++ {
		for _, f := range frames {
			if !first {
				fmt.Fprintf(w, "\033[%dA", height)
			}
			first = false
			lines := strings.Split(f, "\n")
			for j := 0; j < height; j++ {
				line := ""
				if j < len(lines) {
					line = lines[j]
				}
				fmt.Fprintf(w, "\033[2K%s\n", line)
			}
			sleep(delay)
		}
	}
}

// Blink is a two-frame resting animation of l.
func Blink(l Look) []string {
	closed := l
	closed.Eyes = EyesClosed
	return []string{RenderFace(l), RenderFace(closed)}
}
