package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sethgrid/pelioscope/internal/activity"
	"github.com/sethgrid/pelioscope/internal/art"
	"github.com/sethgrid/pelioscope/internal/companion"
	"github.com/sethgrid/pelioscope/internal/emotion"
)

const timeLayout = "Jan 2 15:04"

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show completed activities and detected emotions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		clearLogs, _ := cmd.Flags().GetBool("clear")
		return executeCompanionCommand(cmd, func(c *companion.Companion) error {
			if clearLogs {
				c.ClearHistory()
				fmt.Println("History cleared.")
				return nil
			}

			acts := c.Activities()
			fmt.Printf("Activities (%d)\n", len(acts))
			for i, a := range acts {
				if i == limit {
					break
				}
				spec, _ := activity.Lookup(string(a.ActivityName))
				fmt.Printf("  %s  %s %s\n", a.CompletedAt.Local().Format(timeLayout), spec.Icon, a.ActivityName)
			}

			log := c.Emotions.Log()
			fmt.Printf("\nEmotions (%d)\n", len(log))
			for i, e := range log {
				if i == limit {
					break
				}
				fmt.Printf("  %s  %s %s\n", e.DetectedAt.Local().Format(timeLayout), art.For(e.Emotion).Emoji, e.Emotion)
			}
			return nil
		})
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 10, "Entries to show per log")
	historyCmd.Flags().Bool("clear", false, "Clear both logs (balance and items are kept)")
}

func bar(percent float64) string {
	return strings.Repeat("█", int(percent/5+0.5))
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize emotions and activities",
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeCompanionCommand(cmd, func(c *companion.Companion) error {
			s := c.Stats()

			fmt.Printf("Emotions (%d detections)\n", s.TotalEmotions)
			for _, row := range s.Emotions {
				fmt.Printf("  %s %-10s %3d %5.1f%% %s\n", art.For(emotion.Emotion(row.Name)).Emoji, row.Name, row.Count, row.Percent, bar(row.Percent))
			}

			fmt.Printf("\nActivities (%d completed)\n", s.TotalActivities)
			for _, row := range s.Activities {
				fmt.Printf("  %s %-12s %3d %5.1f%% %s\n", iconFor(row.Name), row.Name, row.Count, row.Percent, bar(row.Percent))
			}

			today := 0
			now := time.Now()
			midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			for _, a := range c.Activities() {
				if a.CompletedAt.After(midnight) {
					today++
				}
			}
			fmt.Printf("\nToday: %d activities, %d drachma\n", today, c.Ledger.Balance())
			return nil
		})
	},
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change names, theme and profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		companionName, _ := cmd.Flags().GetString("companion-name")
		userName, _ := cmd.Flags().GetString("user-name")
		toggleTheme, _ := cmd.Flags().GetBool("toggle-theme")
		switchUser, _ := cmd.Flags().GetBool("switch-user")

		return executeCompanionCommand(cmd, func(c *companion.Companion) error {
			if companionName != "" {
				if err := c.SetCompanionName(companionName); err != nil {
					return err
				}
			}
			if userName != "" {
				if err := c.SetUserName(userName); err != nil {
					return err
				}
			}
			if toggleTheme {
				if _, err := c.ToggleTheme(); err != nil {
					return err
				}
			}
			if switchUser {
				name, err := prompt("New name: ")
				if err != nil {
					return err
				}
				pin, err := prompt("New 4-digit PIN: ")
				if err != nil {
					return err
				}
				if err := c.SwitchProfile(name, pin); err != nil {
					return err
				}
			}

			fmt.Printf("companion: %s\n", c.CompanionName())
			fmt.Printf("user: %s\n", c.UserName())
			fmt.Printf("theme: %s\n", c.Theme())
			fmt.Printf("storage: %s\n", c.Config().Storage)
			fmt.Printf("chat: %s\n", availability(c.ChatAvailable()))
			fmt.Printf("live feed: %s\n", c.Config().Feed.Source)
			return nil
		})
	},
}

func availability(ok bool) string {
	if ok {
		return "online"
	}
	return "offline (set GEMINI_API_KEY)"
}

func init() {
	settingsCmd.Flags().String("companion-name", "", "Rename your companion")
	settingsCmd.Flags().String("user-name", "", "Change your display name")
	settingsCmd.Flags().Bool("toggle-theme", false, "Switch between light and dark")
	settingsCmd.Flags().Bool("switch-user", false, "Hand the device to someone else (new name and PIN)")
}
