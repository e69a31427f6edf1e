package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sethgrid/pelioscope/internal/activity"
	"github.com/sethgrid/pelioscope/internal/art"
	"github.com/sethgrid/pelioscope/internal/companion"
	"github.com/sethgrid/pelioscope/internal/emotion"
	"github.com/sethgrid/pelioscope/internal/story"
)

var storyCmd = &cobra.Command{
	Use:   "story",
	Short: "Listen to stories narrated by your companion",
}

var storyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the story library",
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeCompanionCommand(cmd, func(c *companion.Companion) error {
			for i, s := range c.Library.List() {
				fmt.Printf("%3d  %s %s (%d scenes)\n", i+1, s.Icon, s.Title, len(s.Scenes))
			}
			fmt.Printf("\nNarrations left today: %d/%d\n", c.Quota.Remaining(), c.Quota.Limit())
			return nil
		})
	},
}

// findStory resolves a 1-based library number or a title or id.
func findStory(lib *story.Library, ref string) (int, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if _, ok := lib.At(n - 1); ok {
			return n - 1, nil
		}
		return 0, fmt.Errorf("no story number %d", n)
	}
	i := slices.IndexFunc(lib.List(), func(s story.Story) bool {
		return s.ID == ref || strings.EqualFold(s.Title, ref)
	})
	if i < 0 {
		return 0, fmt.Errorf("no story called %q", ref)
	}
	return i, nil
}

func printScene(st story.Story, i int) {
	sc := st.Scenes[i]
	say("\n%s  [%d/%d]\n%s", art.For(emotion.Emotion(sc.Emotion)).Emoji, i+1, len(st.Scenes), sc.Text)
}

var storyPlayCmd = &cobra.Command{
	Use:   "play [number|title]",
	Short: "Play a story",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		help := "Enter pauses or resumes, n next page, b previous page, q quits."
		return runActivity(cmd, "story", help, func(c *companion.Companion, sess *activity.Session) loop {
			p := sess.Machine().(*activity.StoryPlayer)
			shown := -1
			refresh := func() {
				v := p.View()
				if v.Started && v.Scene != shown {
					shown = v.Scene
					printScene(v.Story, v.Scene)
				}
			}
			return loop{
				setup: func() error {
					i, err := findStory(c.Library, args[0])
					if err != nil {
						return err
					}
					p.Select(i)
					say("%s %s", c.Library.List()[i].Icon, c.Library.List()[i].Title)
					p.Play()
					refresh()
					return nil
				},
				input: func(line string) {
					switch line {
					case "n":
						p.Next()
					case "b":
						p.Prev()
					default:
						p.TogglePause()
						if p.View().Paused {
							say("(paused)")
						}
					}
					refresh()
				},
				tick: refresh,
			}
		})
	},
}

var storyGenerateCmd = &cobra.Command{
	Use:   "generate [theme]",
	Short: "Write a new story on a theme",
	Long:  "Write a new story on one of the themes: " + strings.Join(story.Themes, ", "),
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		i := slices.IndexFunc(story.Themes, func(t string) bool { return strings.EqualFold(t, args[0]) })
		if i < 0 {
			return fmt.Errorf("unknown theme %q. Pick one of %s", args[0], strings.Join(story.Themes, ", "))
		}
		theme := story.Themes[i]

		return executeCompanionCommand(cmd, func(c *companion.Companion) error {
			sess, err := c.NewSession("story", nil)
			if err != nil {
				return err
			}
			if err := sess.Start(); err != nil {
				return err
			}
			defer sess.Exit()

			p := sess.Machine().(*activity.StoryPlayer)
			if err := p.Generate(theme); err != nil {
				return fmt.Errorf("can't write a story right now: %w", err)
			}
			fmt.Printf("%s is writing a %s story...\n", c.CompanionName(), strings.ToLower(theme))

			ticker := time.NewTicker(200 * time.Millisecond)
			defer ticker.Stop()
			for p.View().Generating {
				select {
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				case <-ticker.C:
				}
			}
			v := p.View()
			if v.Error != "" {
				return fmt.Errorf("story generation failed: %s", v.Error)
			}
			fmt.Printf("New story: %s %s (%d scenes). Play it with 'pelioscope story play 1'.\n", v.Story.Icon, v.Story.Title, len(v.Story.Scenes))
			return nil
		})
	},
}

var storyImportCmd = &cobra.Command{
	Use:   "import [pack.yaml]",
	Short: "Add the stories in a YAML pack to the library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stories, err := story.LoadPackFile(args[0])
		if err != nil {
			return err
		}
		return executeCompanionCommand(cmd, func(c *companion.Companion) error {
			c.ImportStories(stories)
			fmt.Printf("Imported %d stories.\n", len(stories))
			return nil
		})
	},
}

func init() {
	storyCmd.AddCommand(storyListCmd)
	storyCmd.AddCommand(storyPlayCmd)
	storyCmd.AddCommand(storyGenerateCmd)
	storyCmd.AddCommand(storyImportCmd)
}
