package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sethgrid/pelioscope/internal/companion"
	"github.com/sethgrid/pelioscope/internal/discovery"
	"github.com/sethgrid/pelioscope/internal/llm"
	"github.com/sethgrid/pelioscope/internal/profile"
	"github.com/sethgrid/pelioscope/internal/storage"
)

var stdin = bufio.NewReader(os.Stdin)

func prompt(label string) (string, error) {
	fmt.Print(label)
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// openStore opens the profile at path. A .db path or the sqlite backend
// selects the SQLite store in the same directory.
func openStore(path string, backend companion.StorageBackend) (storage.Store, error) {
	if filepath.Ext(path) == ".db" || backend == companion.BackendSQLite {
		return storage.OpenSQLite(filepath.Join(filepath.Dir(path), discovery.DBFile))
	}
	return storage.OpenFile(path)
}

func profileExists(path string) bool {
	dir := filepath.Dir(path)
	for _, name := range []string{discovery.ProfileFile, discovery.DBFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// loadCompanion finds the profile, unlocks it with the PIN and opens the
// companion state.
func loadCompanion(ctx context.Context) (*companion.Companion, error) {
	cwd, _ := os.Getwd()
	path, err := discovery.Resolve(profilePath, cwd)
	if err != nil {
		return nil, err
	}
	if !profileExists(path) {
		return nil, fmt.Errorf("no companion found. Run 'pelioscope summon' to create one")
	}

	cfg, err := companion.LoadConfig(discovery.ConfigPathFor(path))
	if err != nil {
		return nil, err
	}
	store, err := openStore(path, cfg.Storage)
	if err != nil {
		return nil, err
	}

	if err := unlock(profile.NewGate(store), cfg.PIN); err != nil {
		store.Close()
		return nil, err
	}

	opts := []companion.Option{
		companion.WithLogger(logger),
		companion.WithAudioSink(newWavSink(filepath.Join(filepath.Dir(path), "narration"), os.Getenv("PELIOSCOPE_PLAYER"))),
	}
	svc, err := llm.NewGemini(ctx, cfg.Gemini(), logger)
	switch {
	case err == nil:
		opts = append(opts, companion.WithLLM(svc))
	case errors.Is(err, llm.ErrUnavailable):
		logger.Debug("generative features offline", zap.Error(err))
	default:
		logger.Warn("failed to start generative client", zap.Error(err))
	}

	c, err := companion.Open(store, cfg, opts...)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to load companion: %w", err)
	}
	return c, nil
}

func unlock(gate *profile.Gate, pin string) error {
	first, err := gate.FirstRun()
	if err != nil {
		return err
	}
	if first {
		return fmt.Errorf("profile is not set up. Run 'pelioscope summon' first")
	}
	name, err := gate.Name()
	if err != nil {
		return err
	}
	if pin == "" {
		if pin, err = prompt(fmt.Sprintf("PIN for %s: ", name)); err != nil {
			return err
		}
	}
	if _, err := gate.Login(name, pin); err != nil {
		return err
	}
	return nil
}

// executeCompanionCommand loads the companion, runs fn and closes the
// store.
func executeCompanionCommand(cmd *cobra.Command, fn func(*companion.Companion) error) error {
	c, err := loadCompanion(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Warn("failed to close profile", zap.Error(err))
		}
	}()
	return fn(c)
}

var summonCmd = &cobra.Command{
	Use:   "summon [your-name]",
	Short: "Create your profile and meet your companion",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		global, _ := cmd.Flags().GetBool("global")
		pin, _ := cmd.Flags().GetString("pin")
		companionName, _ := cmd.Flags().GetString("companion")
		backend, _ := cmd.Flags().GetString("storage")

		var baseDir string
		if global {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get home directory: %w", err)
			}
			baseDir = home
		} else {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get current directory: %w", err)
			}
			baseDir = cwd
		}

		dir := filepath.Join(baseDir, discovery.DirName)
		path := filepath.Join(dir, discovery.ProfileFile)
		if profileExists(path) {
			return fmt.Errorf("a companion already lives here. Use 'settings --switch-user' to change profile")
		}

		cfg := companion.DefaultConfig()
		switch companion.StorageBackend(backend) {
		case companion.BackendTOML, companion.BackendSQLite:
			cfg.Storage = companion.StorageBackend(backend)
		default:
			return fmt.Errorf("unknown storage backend: %s", backend)
		}

		var err error
		name := ""
		if len(args) == 1 {
			name = args[0]
		} else if name, err = prompt("Your name: "); err != nil {
			return err
		}
		if pin == "" {
			pin = os.Getenv("PELIOSCOPE_PIN")
		}
		if pin == "" {
			if pin, err = prompt("Choose a 4-digit PIN: "); err != nil {
				return err
			}
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create profile directory: %w", err)
		}
		store, err := openStore(path, cfg.Storage)
		if err != nil {
			return err
		}
		defer store.Close()

		name, err = profile.NewGate(store).Create(name, pin)
		if err != nil {
			return err
		}
		if companionName == "" {
			companionName = companion.DefaultCompanionName
		}
		if err := storage.Save(store, companion.KeyCompanionName, companionName); err != nil {
			return fmt.Errorf("failed to save companion name: %w", err)
		}
		if err := companion.SaveConfig(filepath.Join(dir, discovery.ConfigFile), cfg); err != nil {
			return err
		}

		fmt.Printf("%s summoned! Say hi, %s.\n", companionName, name)
		return nil
	},
}

func init() {
	summonCmd.Flags().Bool("global", false, "Create the profile in your home directory")
	summonCmd.Flags().String("pin", "", "4-digit PIN (prompted when empty)")
	summonCmd.Flags().String("companion", "", "Name your companion")
	summonCmd.Flags().String("storage", string(companion.BackendTOML), "Storage backend: toml or sqlite")
}
