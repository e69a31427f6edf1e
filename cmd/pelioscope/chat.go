package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sethgrid/pelioscope/internal/art"
	"github.com/sethgrid/pelioscope/internal/chat"
	"github.com/sethgrid/pelioscope/internal/companion"
	"github.com/sethgrid/pelioscope/internal/emotion"
)

func printMessage(c *companion.Companion, m chat.Message) {
	if m.Sender == chat.FromCompanion {
		fmt.Printf("%s %s: %s\n", art.For(c.Emotions.Manual()).Emoji, c.CompanionName(), m.Text)
	}
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk with your companion",
	Long:  "Talk with your companion. Type /mood <emotion> to update how you feel, /quit to leave.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeCompanionCommand(cmd, func(c *companion.Companion) error {
			s := c.Chat()
			if !s.Available() {
				return fmt.Errorf("%w: set GEMINI_API_KEY to chat", chat.ErrUnavailable)
			}
			for _, m := range s.Messages() {
				printMessage(c, m)
			}

			for {
				line, err := prompt("you> ")
				if errors.Is(err, io.EOF) || line == "/quit" {
					return nil
				}
				if err != nil {
					return err
				}

				var reply chat.Message
				if rest, ok := strings.CutPrefix(line, "/mood"); ok {
					e, valid := emotion.Parse(rest)
					if !valid {
						fmt.Printf("Try one of %v\n", emotion.Supported)
						continue
					}
					c.SetMood(e)
					reply, err = s.MoodShift(cmd.Context(), e)
				} else {
					reply, err = s.Send(cmd.Context(), line)
				}
				switch {
				case errors.Is(err, chat.ErrBlank), errors.Is(err, chat.ErrSameMood):
					continue
				case errors.Is(err, context.Canceled):
					return nil
				case err != nil:
					return err
				}
				printMessage(c, reply)
			}
		})
	},
}

var moodCmd = &cobra.Command{
	Use:   "mood [emotion]",
	Short: "Show or set how you feel",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeCompanionCommand(cmd, func(c *companion.Companion) error {
			current := c.Emotions.Manual()
			if len(args) == 0 {
				fmt.Printf("You're feeling %s %s\n", art.For(current).Emoji, current)
				fmt.Printf("Options: %v\n", emotion.Supported)
				return nil
			}

			e, ok := emotion.Parse(args[0])
			if !ok {
				return fmt.Errorf("unknown emotion %q. Options: %v", args[0], emotion.Supported)
			}
			s := c.Chat()
			if !c.SetMood(e) {
				fmt.Printf("You're already feeling %s.\n", e)
				return nil
			}
			fmt.Printf("Mood set to %s %s\n", art.For(e).Emoji, e)
			if !s.Available() {
				return nil
			}
			reply, err := s.MoodShift(cmd.Context(), e)
			if err != nil {
				return err
			}
			printMessage(c, reply)
			return nil
		})
	},
}
