package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sethgrid/pelioscope/internal/art"
	"github.com/sethgrid/pelioscope/internal/clock"
	"github.com/sethgrid/pelioscope/internal/companion"
	"github.com/sethgrid/pelioscope/internal/discovery"
	"github.com/sethgrid/pelioscope/internal/feed"
)

// feedSource builds the configured live source. FeedNone yields nil.
func feedSource(cfg companion.Config) (feed.Source, error) {
	switch cfg.Feed.Source {
	case companion.FeedNone, "":
		return nil, nil
	case companion.FeedFirebase:
		return feed.NewFirebase(feed.FirebaseConfig{URL: cfg.Feed.URL, Path: cfg.Feed.Path, Auth: cfg.Feed.Auth}, logger)
	case companion.FeedRelay:
		return feed.NewRelay(cfg.Feed.URL, clock.Real{}, logger), nil
	}
	return nil, fmt.Errorf("unknown feed source: %s", cfg.Feed.Source)
}

func openMonitor(c *companion.Companion, onChange func(feed.View)) (*feed.Monitor, error) {
	src, err := feedSource(c.Config())
	if err != nil {
		return nil, err
	}
	m := c.Monitor(src, onChange)
	if src == nil && !m.Demo() {
		return nil, fmt.Errorf("%w. Set [feed] source and url in %s", feed.ErrNoSource, discovery.ConfigFile)
	}
	return m, nil
}

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Follow the realtime emotion detector",
}

var liveWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show detected emotions as they arrive",
	Long:  "Show detected emotions as they arrive. Type d to toggle demo mode, r to retry a failed link, q to stop.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeCompanionCommand(cmd, func(c *companion.Companion) error {
			var (
				mu   sync.Mutex
				last feed.View
			)
			m, err := openMonitor(c, func(v feed.View) {
				mu.Lock()
				defer mu.Unlock()
				if v.Label() != last.Label() {
					say("[%s]", v.Label())
				}
				if v.Running && v.Live.Emotion != last.Live.Emotion {
					conf := ""
					if v.Live.Confidence != nil {
						conf = fmt.Sprintf(" %.0f%%", *v.Live.Confidence*100)
					}
					say("%s%s\n%s", v.Live.Emotion, conf, art.RenderFace(art.Look{Emotion: v.Live.Emotion}))
				}
				if !v.Running && last.Running {
					say("%s", art.Idle.Emoji)
				}
				last = v
			})
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go func() {
				for {
					line, err := stdin.ReadString('\n')
					if err != nil {
						return
					}
					switch strings.TrimSpace(line) {
					case "d":
						m.SetDemo(!m.Demo())
					case "r":
						m.Retry()
					case "q":
						cancel()
						return
					}
				}
			}()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				if err := m.Run(gctx); err != nil && !errors.Is(err, feed.ErrNoSource) {
					return err
				}
				<-gctx.Done()
				return nil
			})
			return g.Wait()
		})
	},
}

func setRunning(active bool) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return executeCompanionCommand(cmd, func(c *companion.Companion) error {
			m, err := openMonitor(c, nil)
			if err != nil {
				return err
			}
			if err := m.SetRunning(cmd.Context(), active); err != nil {
				return err
			}
			if active {
				fmt.Println("Detector started.")
			} else {
				fmt.Println("Detector stopped.")
			}
			return nil
		})
	}
}

var liveStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Ask the detector to start",
	RunE:  setRunning(true),
}

var liveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Ask the detector to stop",
	RunE:  setRunning(false),
}

var livePushCmd = &cobra.Command{
	Use:   "push [label] [confidence]",
	Short: "Publish a detection, as the detector would",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		confidence := 1.0
		if len(args) == 2 {
			v, err := strconv.ParseFloat(args[1], 64)
			if err != nil || v < 0 || v > 1 {
				return fmt.Errorf("confidence must be between 0 and 1")
			}
			confidence = v
		}
		return executeCompanionCommand(cmd, func(c *companion.Companion) error {
			m, err := openMonitor(c, nil)
			if err != nil {
				return err
			}
			if err := m.Push(cmd.Context(), args[0], confidence); err != nil {
				return err
			}
			fmt.Printf("Pushed %s (%.2f)\n", args[0], confidence)
			return nil
		})
	},
}

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Run a local feed relay",
}

var relayServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the detector record to companions over websockets",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := companion.DefaultConfig()
		cwd, _ := os.Getwd()
		if path, err := discovery.Resolve(profilePath, cwd); err == nil {
			if cfg, err = companion.LoadConfig(discovery.ConfigPathFor(path)); err != nil {
				return err
			}
		}
		if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
			cfg.Relay.Listen = listen
		}

		hub := feed.NewHub(logger, cfg.Relay.Origins...)
		srv := &http.Server{Addr: cfg.Relay.Listen, Handler: hub, ReadHeaderTimeout: 10 * time.Second}

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error { return hub.Run(ctx) })
		g.Go(func() error {
			logger.Info("relay listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("relay server failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdown)
		})
		fmt.Printf("Relay on ws://%s\n", cfg.Relay.Listen)
		return g.Wait()
	},
}

func init() {
	liveCmd.AddCommand(liveWatchCmd)
	liveCmd.AddCommand(liveStartCmd)
	liveCmd.AddCommand(liveStopCmd)
	liveCmd.AddCommand(livePushCmd)

	relayServeCmd.Flags().String("listen", "", "Address to listen on (default from config)")
	relayCmd.AddCommand(relayServeCmd)
}
