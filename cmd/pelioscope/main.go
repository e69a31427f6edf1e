package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	profilePath string
	verbose     bool
	logger      = zap.NewNop()
)

const Version = "v0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "pelioscope",
		Short: "PelioScope - an emotion companion that lives in your terminal",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			config.OutputPaths = []string{"stderr"}
			config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			l, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
		Run: func(cmd *cobra.Command, args []string) {
			// If version flag is set, print version and exit
			if version, _ := cmd.Flags().GetBool("version"); version {
				fmt.Println(Version)
				return
			}
			// Otherwise show help
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", "", "Path to profile file (profile.toml or profile.db)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")

	rootCmd.AddCommand(summonCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(shopCmd)
	rootCmd.AddCommand(buyCmd)
	rootCmd.AddCommand(equipCmd)
	rootCmd.AddCommand(unequipCmd)
	rootCmd.AddCommand(inventoryCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(bathCmd)
	rootCmd.AddCommand(breatheCmd)
	rootCmd.AddCommand(exerciseCmd)
	rootCmd.AddCommand(giftCmd)
	rootCmd.AddCommand(boostCmd)
	rootCmd.AddCommand(musicCmd)
	rootCmd.AddCommand(storyCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(moodCmd)
	rootCmd.AddCommand(liveCmd)
	rootCmd.AddCommand(relayCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(adminCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
