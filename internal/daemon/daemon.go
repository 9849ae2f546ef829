package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/robfig/cron/v3"

	"animetracker/internal/config"
	"animetracker/internal/logging"
	"animetracker/internal/notifications"
	"animetracker/internal/scan"
	"animetracker/internal/titleparse"
	"animetracker/internal/tracker"
)

// Services are the collaborators the daemon serves over HTTP.
type Services struct {
	Tracker  *tracker.Service
	Scanner  *scan.Scanner
	Parser   titleparse.SourceParser
	Notifier notifications.Service
}

// Daemon owns the process lock, the API server, and the scan schedule.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	svc    Services

	lockPath string
	lock     *flock.Flock

	api  *apiServer
	cron *cron.Cron

	mu      sync.Mutex
	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool     `json:"running"`
	Scan         scan.Job `json:"scan"`
	DatabasePath string   `json:"databasePath"`
	LockFilePath string   `json:"lockFilePath"`
	APIAddress   string   `json:"apiAddress,omitempty"`
	Schedule     string   `json:"schedule,omitempty"`
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, svc Services, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || svc.Tracker == nil || svc.Scanner == nil || svc.Parser == nil {
		return nil, errors.New("daemon requires config, tracker, scanner, and parser")
	}
	if svc.Notifier == nil {
		svc.Notifier = notifications.NewService(nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		svc:      svc,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg.API, d, logger)
	return d, nil
}

// Start acquires the daemon lock, starts the API server, and arms the scan
// schedule.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another animetracker daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.api.start(d.ctx); err != nil {
		d.abortStart()
		return err
	}
	if err := d.startSchedule(); err != nil {
		d.api.stop()
		d.abortStart()
		return err
	}

	d.running.Store(true)
	d.logger.Info("animetracker daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("lock", d.lockPath),
		logging.String("api", d.api.address()),
		logging.String("schedule", d.cfg.Scan.Schedule),
	)
	return nil
}

func (d *Daemon) abortStart() {
	_ = d.lock.Unlock()
	d.cancel()
	d.ctx = nil
	d.cancel = nil
}

func (d *Daemon) startSchedule() error {
	if d.cfg.Scan.Schedule == "" {
		return nil
	}
	cl := cronLogger{logger: d.logger}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl)))
	ctx := d.ctx
	if _, err := c.AddFunc(d.cfg.Scan.Schedule, func() { d.runScheduledScan(ctx) }); err != nil {
		return fmt.Errorf("scan schedule %q: %w", d.cfg.Scan.Schedule, err)
	}
	c.Start()
	d.cron = c
	return nil
}

// runScheduledScan starts a full scan unless one is already running.
func (d *Daemon) runScheduledScan(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	job, err := d.svc.Scanner.Start(ctx, nil)
	switch {
	case errors.Is(err, scan.ErrScanInProgress):
		d.logger.Info("scheduled scan skipped; scan already running",
			logging.String(logging.FieldEventType, "scheduled_scan_skipped"))
	case errors.Is(err, scan.ErrNothingToScan):
		d.logger.Debug("scheduled scan skipped; no shows tracked")
	case err != nil:
		logging.WarnWithContext(d.logger, "scheduled scan failed to start", "scheduled_scan_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check database access; the next tick retries"),
		)
	default:
		d.logger.Info("scheduled scan started",
			logging.String(logging.FieldEventType, "scheduled_scan_started"),
			logging.String(logging.FieldJobID, job.ID),
			logging.Int("episodes", job.Total),
		)
	}
}

// Stop halts the schedule, cancels a running scan, stops the API server, and
// releases the daemon lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return
	}

	if d.cron != nil {
		<-d.cron.Stop().Done()
		d.cron = nil
	}
	if err := d.svc.Scanner.Cancel(); err != nil && !errors.Is(err, scan.ErrNoScan) {
		d.logger.Warn("failed to cancel scan", logging.Error(err))
	}
	d.api.stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("animetracker daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		Scan:         d.svc.Scanner.Status(),
		DatabasePath: d.cfg.DatabasePath(),
		LockFilePath: d.lockPath,
		APIAddress:   d.api.address(),
		Schedule:     d.cfg.Scan.Schedule,
	}
}

// cronLogger adapts slog to the cron.Logger interface. Routine schedule
// chatter goes to debug.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	args := append([]any{logging.Error(err)}, keysAndValues...)
	l.logger.Error("cron: "+msg, args...)
}

// Handler returns the API router, for embedding and tests.
func (d *Daemon) Handler() http.Handler {
	return d.api.router
}
