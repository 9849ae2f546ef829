package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"animetracker/internal/episodes"
	"animetracker/internal/logging"
	"animetracker/internal/matching"
	"animetracker/internal/notifications"
	"animetracker/internal/nyaa"
	"animetracker/internal/services"
	"animetracker/internal/store"
	"animetracker/internal/titleparse"
)

var (
	// ErrScanInProgress reports a Start or Run while another scan is running.
	ErrScanInProgress = services.Wrap(services.ErrConflict, "scan", "start", "A scan is already in progress", nil)
	// ErrNoScan reports a Cancel while idle.
	ErrNoScan = services.Wrap(services.ErrValidation, "scan", "cancel", "No scan is currently in progress", nil)
	// ErrNothingToScan reports a scan request with no tracked shows.
	ErrNothingToScan = services.Wrap(services.ErrValidation, "scan", "start", "No shows to scan", nil)
)

// Searcher queries the torrent index.
type Searcher interface {
	Search(ctx context.Context, query string) ([]nyaa.Result, error)
}

// Scanner runs at most one scan at a time and owns its job record.
type Scanner struct {
	store    *store.Store
	searcher Searcher
	parser   titleparse.Parser
	notifier notifications.Service
	logger   *slog.Logger

	episodeDelay time.Duration
	errorDelay   time.Duration
	now          func() time.Time
	sleep        func(ctx context.Context, d time.Duration) error

	mu     sync.Mutex
	job    Job
	cancel context.CancelFunc
	done   chan struct{}
}

// Option customizes a Scanner.
type Option func(*Scanner)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logging.NewComponentLogger(logger, "scan")
		}
	}
}

// WithNotifier sends match, completion, and failure notifications.
func WithNotifier(n notifications.Service) Option {
	return func(s *Scanner) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithDelays sets the pause after each episode and after a failed search.
func WithDelays(episode, onError time.Duration) Option {
	return func(s *Scanner) {
		s.episodeDelay = episode
		s.errorDelay = onError
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSleeper overrides how delays are waited out.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Scanner) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// New builds a Scanner. Without options it never notifies and never pauses.
func New(st *store.Store, searcher Searcher, parser titleparse.Parser, opts ...Option) *Scanner {
	s := &Scanner{
		store:    st,
		searcher: searcher,
		parser:   parser,
		notifier: notifications.NewService(nil),
		logger:   logging.NewNop(),
		now:      time.Now,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.job.Matches = []Match{}
	return s
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Status returns a copy of the current or most recent job.
func (s *Scanner) Status() Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.job.clone()
}

// Start loads the requested show, or every show when showID is nil, and scans
// in the background. The returned job describes the scan just started. The
// scan outlives ctx; stop it with Cancel.
func (s *Scanner) Start(ctx context.Context, showID *int64) (Job, error) {
	if s.Status().Running {
		return Job{}, ErrScanInProgress
	}
	shows, err := s.loadShows(ctx, showID)
	if err != nil {
		return Job{}, err
	}
	runCtx, err := s.begin(context.WithoutCancel(ctx), showID, shows)
	if err != nil {
		return Job{}, err
	}
	job := s.Status()
	go s.run(runCtx, shows)
	return job, nil
}

// Run scans shows in the caller's goroutine and returns when the scan ends.
// Cancelling ctx, or calling Cancel, stops it after the in-flight search.
func (s *Scanner) Run(ctx context.Context, shows []episodes.TrackedShow) (Summary, error) {
	if len(shows) == 0 {
		return Summary{}, ErrNothingToScan
	}
	runCtx, err := s.begin(ctx, nil, shows)
	if err != nil {
		return Summary{}, err
	}
	return s.run(runCtx, shows)
}

// Cancel stops the running scan and waits for its loop to exit.
func (s *Scanner) Cancel() error {
	s.mu.Lock()
	if !s.job.Running || s.cancel == nil {
		s.mu.Unlock()
		return ErrNoScan
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	s.record(context.Background(), store.LevelInfo, "Scan cancelled by user")
	cancel()
	<-done
	return nil
}

func (s *Scanner) loadShows(ctx context.Context, showID *int64) ([]episodes.TrackedShow, error) {
	if showID != nil {
		show, err := s.store.GetShow(ctx, *showID)
		if err != nil {
			return nil, err
		}
		return []episodes.TrackedShow{*show}, nil
	}
	shows, err := s.store.ListShows(ctx)
	if err != nil {
		return nil, err
	}
	if len(shows) == 0 {
		return nil, ErrNothingToScan
	}
	return shows, nil
}

// begin claims the job record. The returned context carries the job ID and is
// cancelled by Cancel.
func (s *Scanner) begin(ctx context.Context, showID *int64, shows []episodes.TrackedShow) (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job.Running {
		return nil, ErrScanInProgress
	}

	total := 0
	for _, show := range shows {
		total += len(show.Needed)
	}
	var idCopy *int64
	if showID != nil {
		id := *showID
		idCopy = &id
	}
	s.job = Job{
		ID:          uuid.NewString(),
		ShowID:      idCopy,
		Running:     true,
		Total:       total,
		CurrentShow: shows[0].DisplayName(),
		StartedAt:   s.now(),
		ShowCount:   len(shows),
		Matches:     []Match{},
	}

	runCtx, cancel := context.WithCancel(services.WithJobID(ctx, s.job.ID))
	s.cancel = cancel
	s.done = make(chan struct{})

	if showID != nil {
		s.record(runCtx, store.LevelInfo, fmt.Sprintf("Started scanning for show: %s", shows[0].DisplayName()))
	} else {
		s.record(runCtx, store.LevelInfo, fmt.Sprintf("Started scanning all shows (%d shows)", len(shows)))
	}
	logging.WithContext(runCtx, s.logger).Info("scan started",
		logging.String(logging.FieldEventType, "scan_started"),
		logging.Int("shows", len(shows)),
		logging.Int("episodes", total),
	)
	return runCtx, nil
}

// finish releases the job record.
func (s *Scanner) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.job.Running = false
	s.job.CurrentShow = ""
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
}

func (s *Scanner) run(ctx context.Context, shows []episodes.TrackedShow) (Summary, error) {
	defer s.finish()

	started := s.now()
	jobID, _ := services.JobIDFromContext(ctx)
	logger := logging.WithContext(ctx, s.logger)
	summary := Summary{JobID: jobID, Matches: []Match{}}

	// Writes must land even after cancellation stops the search loop.
	persist := context.WithoutCancel(ctx)

	catalog, err := s.store.ListKnownShows(persist)
	if err != nil {
		s.fail(persist, err)
		return summary, err
	}

	for _, show := range shows {
		if ctx.Err() != nil {
			break
		}
		s.scanShow(ctx, persist, logger, show, catalog, &summary)
	}

	summary.Cancelled = ctx.Err() != nil
	summary.Duration = s.now().Sub(started)
	s.record(persist, store.LevelInfo, fmt.Sprintf("Scan completed. Processed %d episodes.", summary.Processed))
	logger.Info("scan finished",
		logging.String(logging.FieldEventType, "scan_finished"),
		logging.Int("processed", summary.Processed),
		logging.Int("found", summary.Found),
		logging.Bool("cancelled", summary.Cancelled),
		logging.Duration("duration", summary.Duration),
	)
	if !summary.Cancelled {
		if err := s.notifier.NotifyScanCompleted(persist, summary.Processed, summary.Found, summary.Duration); err != nil {
			logger.Warn("scan completion notification failed", logging.Error(err))
		}
	}
	return summary, nil
}

func (s *Scanner) fail(ctx context.Context, err error) {
	s.record(ctx, store.LevelError, fmt.Sprintf("Scan error: %v", err))
	logging.ErrorWithContext(logging.WithContext(ctx, s.logger), "scan failed", "scan_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the database file and retry the scan"),
	)
	if nerr := s.notifier.NotifyError(ctx, err, "scan"); nerr != nil {
		s.logger.Warn("error notification failed", logging.Error(nerr))
	}
}

func (s *Scanner) scanShow(ctx, persist context.Context, logger *slog.Logger, show episodes.TrackedShow, catalog episodes.Catalog, summary *Summary) {
	name := show.DisplayName()
	logger = logger.With(logging.Int64(logging.FieldShowID, show.ID), logging.String(logging.FieldShow, name))
	s.setCurrentShow(name)
	s.record(persist, store.LevelInfo, fmt.Sprintf("Scanning show: %s", name))

	needed := append([]episodes.Episode(nil), show.Needed...)
	for _, ep := range needed {
		if ctx.Err() != nil {
			break
		}
		s.record(persist, store.LevelInfo, fmt.Sprintf("Searching for %s S%dE%d", name, ep.Season, ep.Episode))

		result, ok := s.findEpisode(ctx, persist, logger, show, ep, catalog)
		switch {
		case ok:
			if err := s.accept(persist, logger, &show, ep, result, summary); err != nil {
				s.record(persist, store.LevelError, fmt.Sprintf("Failed to save match for %s S%dE%d: %v", name, ep.Season, ep.Episode, err))
			}
		case ctx.Err() == nil:
			s.record(persist, store.LevelWarning, fmt.Sprintf("No match found for %s S%dE%d", name, ep.Season, ep.Episode))
		}
		if ctx.Err() != nil {
			break
		}

		summary.Processed++
		s.setProgress(summary.Processed)
		if err := s.sleep(ctx, s.episodeDelay); err != nil {
			break
		}
	}

	if err := s.store.TouchShow(persist, show.ID, s.now()); err != nil && !errors.Is(err, store.ErrNotFound) {
		logger.Warn("failed to update last checked", logging.Error(err))
	}
}

// findEpisode returns the first search result the matcher accepts for ep.
func (s *Scanner) findEpisode(ctx, persist context.Context, logger *slog.Logger, show episodes.TrackedShow, ep episodes.Episode, catalog episodes.Catalog) (nyaa.Result, bool) {
	for _, name := range show.Names {
		for _, query := range Queries(name, ep.Season, ep.Episode, show.Quality) {
			if ctx.Err() != nil {
				return nyaa.Result{}, false
			}
			results, err := s.searcher.Search(ctx, query)
			if err != nil {
				if ctx.Err() != nil {
					return nyaa.Result{}, false
				}
				s.record(persist, store.LevelError, fmt.Sprintf("Error searching for %s: %v", query, err))
				logger.Warn("search failed",
					logging.String(logging.FieldQuery, query),
					logging.Error(err),
				)
				if s.sleep(ctx, s.errorDelay) != nil {
					return nyaa.Result{}, false
				}
				continue
			}
			for _, result := range results {
				if s.accepts(ctx, logger, result.Title, show, ep, catalog) {
					return result, true
				}
			}
		}
	}
	return nyaa.Result{}, false
}

func (s *Scanner) accepts(ctx context.Context, logger *slog.Logger, title string, show episodes.TrackedShow, ep episodes.Episode, catalog episodes.Catalog) bool {
	candidate, err := s.parser.Parse(ctx, title)
	if err != nil {
		logger.Debug("title parse failed", logging.String("title", title), logging.Error(err))
		return false
	}
	if candidate == nil {
		return false
	}
	if err := titleparse.Validate(candidate); err != nil {
		logger.Debug("candidate rejected", logging.String("title", title), logging.Error(err))
		return false
	}
	return matching.Matches(*candidate, show, ep.Season, ep.Episode, catalog)
}

func (s *Scanner) accept(ctx context.Context, logger *slog.Logger, show *episodes.TrackedShow, ep episodes.Episode, result nyaa.Result, summary *Summary) error {
	name := show.DisplayName()
	s.record(ctx, store.LevelSuccess, fmt.Sprintf("Found match for %s S%dE%d: %s", name, ep.Season, ep.Episode, result.Title))

	updated, err := s.store.MarkDownloaded(ctx, show.ID, ep)
	if err != nil {
		return err
	}
	show.Downloaded = updated.Downloaded
	show.Needed = updated.Needed

	id := show.ID
	if _, err := s.store.RecordMagnet(ctx, store.FoundMagnet{
		ShowID:     &id,
		ShowName:   name,
		Season:     ep.Season,
		Episode:    ep.Episode,
		Title:      result.Title,
		MagnetLink: result.MagnetLink,
		InfoHash:   result.InfoHash,
		Seeders:    result.Seeders,
	}); err != nil {
		return err
	}

	match := Match{
		ShowID:     show.ID,
		ShowName:   name,
		Season:     ep.Season,
		Episode:    ep.Episode,
		Title:      result.Title,
		MagnetLink: result.MagnetLink,
	}
	summary.Found++
	summary.Matches = append(summary.Matches, match)
	s.mu.Lock()
	s.job.Matches = append(s.job.Matches, match)
	s.mu.Unlock()

	logger.Info("episode matched",
		logging.String(logging.FieldEventType, "episode_matched"),
		logging.Episode(ep.Season, ep.Episode),
		logging.String("title", result.Title),
		logging.Int("seeders", result.Seeders),
	)
	if err := s.notifier.NotifyMatchFound(ctx, name, ep.Season, ep.Episode, result.Title); err != nil {
		logger.Warn("match notification failed", logging.Error(err))
	}
	return nil
}

func (s *Scanner) setCurrentShow(name string) {
	s.mu.Lock()
	s.job.CurrentShow = name
	s.mu.Unlock()
}

func (s *Scanner) setProgress(processed int) {
	s.mu.Lock()
	s.job.Current = processed
	s.mu.Unlock()
}

func (s *Scanner) record(ctx context.Context, level store.Level, message string) {
	if _, err := s.store.AddLog(ctx, level, message); err != nil {
		s.logger.Warn("activity log write failed", logging.String("message", message), logging.Error(err))
	}
}
