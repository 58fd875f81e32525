package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mavwarf/alerttone/internal/alert"
	"github.com/Mavwarf/alerttone/internal/audio"
	"github.com/Mavwarf/alerttone/internal/config"
	"github.com/Mavwarf/alerttone/internal/eventlog"
	"github.com/Mavwarf/alerttone/internal/logging"
	"github.com/Mavwarf/alerttone/internal/metrics"
	"github.com/Mavwarf/alerttone/internal/mqtt"
	"github.com/Mavwarf/alerttone/internal/mute"
	"github.com/Mavwarf/alerttone/internal/webhook"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

type rootOptions struct {
	configPath string
	volume     int
	backend    string
	source     string
	repeat     bool
	logLevel   string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "alerttone [high|medium|low]",
		Short: "Play priority alert tones",
		Long: `alerttone plays a continuous-wave alert cadence until interrupted.

  high     800 Hz beep pattern, plays once (--repeat loops every 11.52s)
  medium   800 Hz triple beep, plays once (--repeat loops every 17.2s)
  low      raw PCM file (default test.raw) re-triggered every 500ms

Any other mode, or none, selects low.`,
		Version:      fmt.Sprintf("%s (built: %s)", version, buildDate),
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := ""
			if len(args) > 0 {
				mode = args[0]
			}
			return runAlert(cmd, opts, mode)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&opts.configPath, "config", "c", "", "path to alerttone-config.json")
	f.IntVarP(&opts.volume, "volume", "v", -1, "playback volume 0-100 (default from config)")
	f.StringVar(&opts.backend, "backend", "", "audio backend: oto or beep (default from config)")
	f.StringVar(&opts.source, "source", "", "file played by the low priority (default from config)")
	f.BoolVar(&opts.repeat, "repeat", false, "replay high and medium tones every cycle")
	f.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (default from config)")

	cmd.AddCommand(
		newExportCmd(),
		newMuteCmd(),
		newUnmuteCmd(),
		newHistoryCmd(opts),
	)
	return cmd
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	cfg.Options.Volume = resolveVolume(opts.volume, cfg)
	if opts.backend != "" {
		cfg.Options.Backend = opts.backend
	}
	if opts.source != "" {
		cfg.Options.LowSource = opts.source
	}
	if cmd.Flags().Changed("repeat") {
		cfg.Options.Repeat = opts.repeat
	}
	if opts.logLevel != "" {
		cfg.Options.LogLevel = opts.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// resolveVolume returns the CLI volume if set (>= 0), otherwise the config
// default.
func resolveVolume(cliVolume int, cfg config.Config) int {
	if cliVolume >= 0 {
		return cliVolume
	}
	return cfg.Options.Volume
}

// unknownMode reports whether mode named something other than the priority
// it parsed to. An empty mode is the documented default, not an unknown one.
func unknownMode(mode string, p alert.Priority) bool {
	m := strings.ToLower(strings.TrimSpace(mode))
	return m != "" && m != p.String()
}

func runAlert(cmd *cobra.Command, opts *rootOptions, mode string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Options.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, err := audio.New(cfg.Options.Backend, logger)
	if err != nil {
		return err
	}
	if c, ok := sink.(interface{ Close() }); ok {
		defer c.Close()
	}

	observers, cleanup := setupObservers(cfg, logger)
	defer cleanup()

	p := alert.ParsePriority(mode)
	if unknownMode(mode, p) {
		logger.Warn("unknown mode, using low priority", zap.String("mode", mode))
	}

	mgr := alert.NewManager(sink, alert.Options{
		Volume:      float64(cfg.Options.Volume) / 100,
		LowSource:   cfg.Options.LowSource,
		LowInterval: cfg.Options.LowInterval(),
		Repeat:      cfg.Options.Repeat,
		Muted:       mute.Default().Active,
		Logger:      logger,
		Observers:   observers,
	})
	logger.Info("alert started",
		zap.Stringer("priority", p),
		zap.String("backend", cfg.Options.Backend),
		zap.Int("volume", cfg.Options.Volume),
		zap.String("run_id", mgr.RunID()))

	if err := mgr.Run(ctx, p); err != nil {
		return err
	}
	logger.Info("alert stopped", zap.Stringer("priority", p))
	return nil
}

// setupObservers wires the optional event sinks. Each one is best-effort:
// a sink that cannot start is logged and left out.
func setupObservers(cfg config.Config, logger *zap.Logger) ([]alert.Observer, func()) {
	observers := []alert.Observer{metrics.Observer{}}
	var closers []func()

	if addr := cfg.Options.MetricsAddr; addr != "" {
		go func() {
			if err := metrics.Serve(addr, logger); err != nil {
				logger.Warn("metrics server stopped", zap.String("addr", addr), zap.Error(err))
			}
		}()
	}

	if cfg.Options.Log {
		store, err := eventlog.Open(cfg.Options.DBPath())
		if err != nil {
			logger.Warn("event log disabled", zap.String("path", cfg.Options.DBPath()), zap.Error(err))
		} else {
			observers = append(observers, alert.ObserverFunc(func(e eventlog.Event) {
				if err := store.Record(e); err != nil {
					logger.Warn("event log write failed", zap.Error(err))
				}
			}))
			closers = append(closers, func() { store.Close() })
		}
	}

	if m := cfg.Options.MQTT; m.Broker != "" {
		pub := mqtt.NewPublisher(mqtt.Options{
			Broker:   m.Broker,
			ClientID: m.ClientID,
			Topic:    m.Topic,
			Username: m.Username,
			Password: m.Password,
			QoS:      m.QoS,
			Retain:   m.Retain,
		}, logger)
		observers = append(observers, pub)
		closers = append(closers, pub.Wait)
	}

	if w := cfg.Options.Webhook; w.URL != "" {
		n := webhook.NewNotifier(w.URL, w.Headers, logger)
		observers = append(observers, n)
		closers = append(closers, n.Wait)
	}

	return observers, func() {
		for _, c := range closers {
			c()
		}
	}
}
