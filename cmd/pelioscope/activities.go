package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/sethgrid/pelioscope/internal/activity"
	"github.com/sethgrid/pelioscope/internal/art"
	"github.com/sethgrid/pelioscope/internal/companion"
	"github.com/sethgrid/pelioscope/internal/emotion"
)

var outMu sync.Mutex

// say prints one line; timers and input print concurrently.
func say(format string, args ...any) {
	outMu.Lock()
	defer outMu.Unlock()
	fmt.Printf(format+"\n", args...)
}

type loop struct {
	// setup runs once the session has started. An error exits the session.
	setup func() error
	// input handles one line of stdin. Nil means the activity takes no
	// input and runs until it completes or is interrupted.
	input func(line string)
	// tick is called every second while the session is open.
	tick func()
}

// runActivity runs one activity session in the terminal. Typing q leaves
// it early.
func runActivity(cmd *cobra.Command, slug, help string, build func(c *companion.Companion, sess *activity.Session) loop) error {
	return executeCompanionCommand(cmd, func(c *companion.Companion) error {
		sess, err := c.NewSession(slug, func(e activity.Event) {
			say("%s %s", iconFor(slug), e.Message)
		})
		if err != nil {
			return err
		}
		spec := sess.Spec()
		before := len(c.Activities())

		l := build(c, sess)
		say("%s %s with %s (+%d drachma)", spec.Icon, spec.Name, c.CompanionName(), spec.Reward)
		if help != "" {
			say("%s", help)
		}
		if err := sess.Start(); err != nil {
			return err
		}
		defer sess.Exit()
		if l.setup != nil {
			if err := l.setup(); err != nil {
				return err
			}
		}

		wait(cmd.Context(), sess, l)

		if len(c.Activities()) > before {
			say("+%d drachma! Balance: %d", spec.Reward, c.Ledger.Balance())
		}
		return nil
	})
}

func iconFor(slug string) string {
	spec, _ := activity.Lookup(slug)
	return spec.Icon
}

func wait(ctx context.Context, sess *activity.Session, l loop) {
	var lines chan string
	if l.input != nil {
		lines = make(chan string)
		go func() {
			defer close(lines)
			for {
				line, err := stdin.ReadString('\n')
				if line != "" || err == nil {
					select {
					case lines <- strings.TrimSpace(line):
					case <-sess.Done():
						return
					}
				}
				if err != nil {
					return
				}
			}
		}()
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-sess.Done():
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if l.tick != nil && sess.State() == activity.Running {
				l.tick()
			}
		case line, ok := <-lines:
			if !ok {
				// input closed; keep waiting for the session itself
				lines = nil
				continue
			}
			if line == "q" {
				return
			}
			l.input(line)
		}
	}
}

var feedCmd = &cobra.Command{
	Use:   "feed [food]",
	Short: "Feed your companion something from the inventory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runActivity(cmd, "feed", "", func(c *companion.Companion, sess *activity.Session) loop {
			f := sess.Machine().(*activity.Feed)
			pouring := false
			return loop{
				setup: func() error {
					food := ""
					if len(args) == 1 {
						food = args[0]
					} else {
						foods := c.Ledger.Foods()
						if len(foods) == 0 {
							return fmt.Errorf("no food in the inventory. Try 'pelioscope buy apple'")
						}
						for _, it := range foods {
							say("  %s %s x%d", it.Icon, it.ID, c.Ledger.Count(it.ID))
						}
						var err error
						if food, err = prompt("Food: "); err != nil {
							return err
						}
					}
					if err := f.Choose(food); err != nil {
						return fmt.Errorf("can't serve %s: %w", food, err)
					}
					if f.View().Phase == activity.Pouring {
						say("Press Enter to start pouring and Enter again to stop between 60 and 80.")
					}
					return nil
				},
				input: func(string) {
					if f.View().Phase != activity.Pouring {
						return
					}
					if !pouring {
						f.HoldPour()
					} else {
						f.ReleasePour()
						say("Stopped at %d", f.View().Level)
					}
					pouring = !pouring
				},
				tick: func() {
					if v := f.View(); v.Phase == activity.Pouring && pouring {
						say("  [%-20s] %d", strings.Repeat("|", v.Level/5), v.Level)
					}
				},
			}
		})
	},
}

var bathCmd = &cobra.Command{
	Use:   "bath",
	Short: "Give your companion a bath",
	RunE: func(cmd *cobra.Command, args []string) error {
		help := "Enter scrubs, r starts or stops the shower, q quits."
		return runActivity(cmd, "bath", help, func(c *companion.Companion, sess *activity.Session) loop {
			b := sess.Machine().(*activity.Bath)
			rinsing := false
			show := func() {
				v := b.View()
				say("%s  %s %d%%", art.RenderFace(art.Look{Emotion: emotion.Happy, Dirty: v.Dirty, Bubbles: v.Bubbles, Wet: v.Wet}), v.Phase, v.Progress)
			}
			return loop{
				input: func(line string) {
					if line == "r" {
						if rinsing {
							b.ReleaseRinse()
						} else {
							b.HoldRinse()
						}
						rinsing = !rinsing
						return
					}
					for i := 0; i < 10; i++ {
						b.Scrub()
					}
					show()
				},
				tick: func() {
					if rinsing {
						show()
					}
				},
			}
		})
	},
}

var breatheCmd = &cobra.Command{
	Use:   "breathe",
	Short: "Guided breathing with your companion",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runActivity(cmd, "breathe", "", func(c *companion.Companion, sess *activity.Session) loop {
			b := sess.Machine().(*activity.Breathing)
			return loop{
				tick: func() {
					v := b.View()
					say("  %-6s %d   (%d/%d)", v.Phase, v.Left, v.Cycles+1, v.OfCycles)
				},
			}
		})
	},
}

var exerciseCmd = &cobra.Command{
	Use:       "exercise [physical|find|name|memory]",
	Short:     "Move your body or play a brain game",
	ValidArgs: []string{"physical", "find", "name", "memory"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runActivity(cmd, "exercise", "", func(c *companion.Companion, sess *activity.Session) loop {
			hub := sess.Machine().(*activity.ExerciseHub)
			switch args[0] {
			case "physical":
				return physicalLoop(hub)
			case "find":
				return findLoop(hub)
			case "name":
				return nameLoop(hub)
			default:
				return memoryLoop(hub)
			}
		})
	},
}

func physicalLoop(hub *activity.ExerciseHub) loop {
	return loop{
		setup: func() error {
			hub.StartPhysical()
			return nil
		},
		tick: func() {
			v := hub.Physical()
			if v.Stage == activity.Moving {
				say("  %s: %s %d", v.Movement.Name, v.Movement.Text, v.Left)
				return
			}
			say("  %d", v.Left)
		},
	}
}

func findLoop(hub *activity.ExerciseHub) loop {
	show := func() {
		g := hub.FindTarget()
		if g == nil {
			return
		}
		v := g.View()
		var cells []string
		for i, e := range v.Grid {
			cells = append(cells, fmt.Sprintf("%d:%s", i, art.For(e).Emoji))
		}
		say("Round %d/%d  %s", v.Round, v.Rounds, strings.Join(cells, "  "))
	}
	return loop{
		setup: func() error {
			hub.StartBrain()
			hub.Play(activity.FindTargetGame)
			say("Type the number of the Happy face.")
			show()
			return nil
		},
		input: func(line string) {
			i, err := strconv.Atoi(line)
			g := hub.FindTarget()
			if err != nil || g == nil {
				return
			}
			if g.Tap(i) {
				time.AfterFunc(1100*time.Millisecond, show)
			}
		},
	}
}

func nameLoop(hub *activity.ExerciseHub) loop {
	return loop{
		setup: func() error {
			hub.StartBrain()
			hub.Play(activity.NameEmotionGame)
			v := hub.NameEmotion().View()
			say("%s", art.RenderFace(art.Look{Emotion: v.Showing}))
			say("%s  %v", v.Feedback, v.Options)
			return nil
		},
		input: func(line string) {
			e, ok := emotion.Parse(line)
			if !ok {
				say("Pick one of %v", hub.NameEmotion().View().Options)
				return
			}
			hub.NameEmotion().Guess(e)
		},
	}
}

func memoryLoop(hub *activity.ExerciseHub) loop {
	show := func() {
		v := hub.MemoryMatch().View()
		var cells []string
		for i, card := range v.Cards {
			face := "??"
			if card.FaceUp || card.Matched {
				face = art.For(card.Face).Emoji
			}
			cells = append(cells, fmt.Sprintf("%d:%s", i, face))
		}
		say("%s   pairs: %d", strings.Join(cells, " "), v.Matched)
	}
	return loop{
		setup: func() error {
			hub.StartBrain()
			hub.Play(activity.MemoryMatchGame)
			say("Type a card number to flip it.")
			show()
			return nil
		},
		input: func(line string) {
			i, err := strconv.Atoi(line)
			if err != nil {
				return
			}
			hub.MemoryMatch().Flip(i)
			show()
		},
	}
}

var giftCmd = &cobra.Command{
	Use:   "gift [how-you-feel] [gift]",
	Short: "Tell your companion how you feel and give a gift",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runActivity(cmd, "gift", "", func(c *companion.Companion, sess *activity.Session) loop {
			g := sess.Machine().(*activity.Gift)
			return loop{
				setup: func() error {
					mood, ok := emotion.Parse(args[0])
					if !ok || !g.ChooseMood(mood) {
						return fmt.Errorf("pick one of %v", activity.GiftMoods)
					}
					if err := g.Give(args[1]); err != nil {
						var ids []string
						for _, it := range activity.Gifts {
							ids = append(ids, fmt.Sprintf("%s (%d)", it.ID, it.Price))
						}
						return fmt.Errorf("%w. Gifts: %s", err, strings.Join(ids, ", "))
					}
					say("%s", art.RenderFace(art.Look{Emotion: g.View().Display}))
					return nil
				},
			}
		})
	},
}

var boostCmd = &cobra.Command{
	Use:   "boost",
	Short: "Cheer your companion up with taps, swipes and stickers",
	RunE: func(cmd *cobra.Command, args []string) error {
		help := fmt.Sprintf("t taps, f pats the forehead, < and > swipe, s 0-%d sends a sticker, q quits.", len(activity.Stickers)-1)
		return runActivity(cmd, "boost", help, func(c *companion.Companion, sess *activity.Session) loop {
			b := sess.Machine().(*activity.Boost)
			return loop{
				input: func(line string) {
					switch {
					case line == "t":
						b.TapBody()
					case line == "f":
						b.TapForehead()
					case line == "<":
						b.Swipe(-1)
					case line == ">":
						b.Swipe(1)
					case strings.HasPrefix(line, "s"):
						i, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "s")))
						if err != nil || i < 0 || i >= len(activity.Stickers) {
							return
						}
						b.Sticker(activity.Stickers[i])
					default:
						return
					}
					v := b.View()
					say("%s  %d/%d %s", art.For(v.Reaction).Emoji, v.Progress, v.Goal, strings.Join(v.Stickers, ""))
				},
			}
		})
	},
}

var musicCmd = &cobra.Command{
	Use:   "music",
	Short: "Listen to calming sounds together",
	RunE: func(cmd *cobra.Command, args []string) error {
		help := "Enter plays or pauses, n next, b previous, q quits."
		return runActivity(cmd, "music", help, func(c *companion.Companion, sess *activity.Session) loop {
			m := sess.Machine().(*activity.Music)
			return loop{
				setup: func() error {
					m.Select(0)
					return nil
				},
				input: func(line string) {
					switch line {
					case "n":
						m.Next()
					case "b":
						m.Prev()
					default:
						m.Toggle()
					}
				},
				tick: func() {
					v := m.View()
					if v.Playing && int(v.Listened.Seconds())%15 == 0 {
						t := activity.Tracks[v.Track]
						say("  ♪ %s  %s / %s", t.Title, v.Listened, v.Goal)
					}
				},
			}
		})
	},
}
