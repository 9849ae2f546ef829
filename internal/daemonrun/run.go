// Package daemonrun assembles the services behind the daemon and the
// foreground CLI commands, and runs the daemon until it is signalled.
package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"animetracker/internal/config"
	"animetracker/internal/daemon"
	"animetracker/internal/logging"
	"animetracker/internal/notifications"
	"animetracker/internal/nyaa"
	"animetracker/internal/scan"
	"animetracker/internal/store"
	"animetracker/internal/titleparse"
	"animetracker/internal/tracker"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Runtime bundles the wired services. Close releases them in reverse order.
type Runtime struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    *store.Store
	Tracker  *tracker.Service
	Index    *nyaa.Client
	Parser   titleparse.SourceParser
	Notifier notifications.Service
	Scanner  *scan.Scanner

	closers []func() error
}

// Build opens the store and parser cache and wires every service from cfg.
func Build(cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	rt := &Runtime{Config: cfg, Logger: logger}
	st, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	rt.Store = st
	rt.closers = append(rt.closers, st.Close)

	index, err := nyaa.New(cfg.Nyaa, nyaa.WithLogger(logger))
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("torrent index: %w", err)
	}
	rt.Index = index

	parser, closeParser, err := titleparse.Open(cfg, logger)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("title parser: %w", err)
	}
	rt.Parser = parser
	rt.closers = append(rt.closers, closeParser)

	rt.Notifier = notifications.NewService(cfg)
	rt.Tracker = tracker.New(st, tracker.WithLogger(logger))
	rt.Scanner = scan.New(st, index, parser,
		scan.WithLogger(logger),
		scan.WithNotifier(rt.Notifier),
		scan.WithDelays(cfg.EpisodeDelay(), cfg.ErrorDelay()),
	)
	return rt, nil
}

// Close releases the parser cache and the store.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// Run starts the animetracker daemon and blocks until cmdCtx ends or the
// process receives SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logConfigSnapshot(logger, cfg)

	pidPath := filepath.Join(cfg.Paths.DataDir, "animetracker.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	rt, err := Build(cfg, logger)
	if err != nil {
		logger.Error("build runtime", logging.Error(err))
		return err
	}
	defer rt.Close()

	d, err := daemon.New(cfg, daemon.Services{
		Tracker:  rt.Tracker,
		Scanner:  rt.Scanner,
		Parser:   rt.Parser,
		Notifier: rt.Notifier,
	}, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return err
	}

	<-signalCtx.Done()
	logger.Info("animetracker daemon shutting down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logConfigSnapshot(logger *slog.Logger, cfg *config.Config) {
	logger.Info("configuration snapshot",
		logging.String(logging.FieldEventType, "config_snapshot"),
		logging.String("data_dir", cfg.Paths.DataDir),
		logging.String("api_bind", cfg.API.Bind),
		logging.Bool("api_token_set", cfg.API.Token != ""),
		logging.String("nyaa_base_url", cfg.Nyaa.BaseURL),
		logging.String("parser_backend", cfg.Parser.Backend),
		logging.Bool("parse_cache", cfg.Parser.CacheEnabled),
		logging.String("scan_schedule", cfg.Scan.Schedule),
		logging.Bool("ntfy_enabled", strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""),
		logging.Bool("pushover_enabled", strings.TrimSpace(cfg.Notifications.PushoverToken) != ""),
	)
}
