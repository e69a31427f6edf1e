package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sethgrid/pelioscope/internal/art"
	"github.com/sethgrid/pelioscope/internal/companion"
	"github.com/sethgrid/pelioscope/internal/conditions"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show your companion's status",
	RunE: func(cmd *cobra.Command, args []string) error {
		card, _ := cmd.Flags().GetBool("card")
		animate, _ := cmd.Flags().GetBool("animate")
		return executeCompanionCommand(cmd, func(c *companion.Companion) error {
			st := c.Status(time.Now())
			name := c.CompanionName()

			fmt.Printf("%s is %s\n\n", name, st.Primary)
			if card {
				fmt.Printf("state: %s\n", conditions.FormatConditions(st.AllOrdered))
				fmt.Printf("wellbeing: %d\n", st.Wellbeing)
				fmt.Printf("fullness: %.0f\n", st.Hunger)
				fmt.Printf("mood: %s %s\n", art.For(st.Emotion).Emoji, st.Emotion)
				if live := st.Live; !live.UpdatedAt.IsZero() {
					fmt.Printf("live: %s (%s)\n", live.Emotion, live.UpdatedAt.Format(time.Kitchen))
				}
				fmt.Printf("drachma: %d\n\n", st.Balance)
			}

			if animate {
				art.Animate(os.Stdout, art.Blink(st.Look), 2, 3, time.Sleep)
				return nil
			}
			fmt.Println(art.RenderFace(st.Look))
			return nil
		})
	},
}

func init() {
	statusCmd.Flags().BoolP("card", "c", false, "Show the full stats card")
	statusCmd.Flags().Bool("animate", false, "Blink a few times")
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative commands",
}

var adminHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Get a wellbeing indicator for your prompt",
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeCompanionCommand(cmd, func(c *companion.Companion) error {
			st := c.Status(time.Now())

			const resetCode = "\033[0m"

			var colorCode string
			switch {
			case st.Wellbeing >= 80:
				colorCode = "\033[32m" // Green - Excellent
			case st.Wellbeing >= 60:
				colorCode = "\033[33m" // Yellow - Good
			case st.Wellbeing >= 40:
				colorCode = "\033[93m" // Bright Yellow - Fair
			case st.Wellbeing >= 20:
				colorCode = "\033[38;5;208m" // Orange - Poor
			default:
				colorCode = "\033[31m" // Red - Critical
			}

			fmt.Printf("%s %s●%s", art.For(st.Emotion).Emoji, colorCode, resetCode)
			return nil
		})
	},
}

var adminCompletionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for pelioscope.

To load completions:

Bash:
  $ source <(pelioscope admin completion bash)

Zsh:
  $ pelioscope admin completion zsh > "${fpath[1]}/_pelioscope"

Fish:
  $ pelioscope admin completion fish | source

PowerShell:
  PS> pelioscope admin completion powershell | Out-String | Invoke-Expression
`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cmd.Root()
		switch args[0] {
		case "bash":
			return root.GenBashCompletion(os.Stdout)
		case "zsh":
			return root.GenZshCompletion(os.Stdout)
		case "fish":
			return root.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return root.GenPowerShellCompletion(os.Stdout)
		}
		return fmt.Errorf("unsupported shell: %s", args[0])
	},
}

func init() {
	adminCmd.AddCommand(adminHealthCmd)
	adminCmd.AddCommand(adminCompletionCmd)
}
