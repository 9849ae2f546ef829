package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"animetracker/internal/episodes"
	"animetracker/internal/logging"
	"animetracker/internal/services"
	"animetracker/internal/store"
)

const defaultQuality = "1080p"

var (
	// ErrValidation marks caller input the service refuses.
	ErrValidation = services.ErrValidation
	// ErrEpisodeNotTracked reports a toggle for an episode in neither list.
	ErrEpisodeNotTracked = errors.New("episode not found in either needed or downloaded lists")
)

// Service implements show, catalog, and activity operations.
type Service struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

// Option customizes the service.
type Option func(*Service)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logging.NewComponentLogger(logger, "tracker")
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New wraps st.
func New(st *store.Store, opts ...Option) *Service {
	s := &Service{store: st, logger: logging.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store exposes the underlying store for collaborators that need it directly.
func (s *Service) Store() *store.Store {
	return s.store
}

func invalid(operation, message string) error {
	return services.Wrap(ErrValidation, "tracker", operation, message, nil)
}

// record writes an activity entry. Failures are logged, never returned: the
// mutation that prompted the entry already succeeded.
func (s *Service) record(ctx context.Context, level store.Level, message string) {
	if _, err := s.store.AddLog(ctx, level, message); err != nil {
		logging.WarnWithContext(s.logger, "activity log write failed", "activity_log_failed",
			logging.String("message", message),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check database permissions and disk space"),
		)
	}
}

// Log appends a user supplied activity entry. An empty level means info; a
// zero timestamp means now.
func (s *Service) Log(ctx context.Context, level, message string, at time.Time) (*store.ActivityLog, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, invalid("add log", "Log message is required")
	}
	lvl := store.LevelInfo
	if strings.TrimSpace(level) != "" {
		parsed, ok := store.ParseLevel(level)
		if !ok {
			return nil, invalid("add log", fmt.Sprintf("unknown level %q", level))
		}
		lvl = parsed
	}
	return s.store.AddLogAt(ctx, lvl, message, at)
}

// Logs returns the newest activity entries.
func (s *Service) Logs(ctx context.Context, limit int) ([]store.ActivityLog, error) {
	return s.store.ListLogs(ctx, limit)
}

// ClearLogs empties the activity log.
func (s *Service) ClearLogs(ctx context.Context) error {
	return s.store.ClearLogs(ctx)
}

// OpenMagnet records that the user handed a magnet link to their client.
func (s *Service) OpenMagnet(ctx context.Context, magnetLink, title string) error {
	if strings.TrimSpace(magnetLink) == "" {
		return invalid("open magnet", "Magnet link is required")
	}
	if title = strings.TrimSpace(title); title == "" {
		title = "Unknown title"
	}
	s.record(ctx, store.LevelInfo, "Magnet link opened: "+title)
	return nil
}

// Magnets lists releases accepted by scans.
func (s *Service) Magnets(ctx context.Context) ([]store.FoundMagnet, error) {
	return s.store.ListMagnets(ctx)
}

// ClearMagnets forgets every recorded release.
func (s *Service) ClearMagnets(ctx context.Context) (int64, error) {
	removed, err := s.store.ClearMagnets(ctx)
	if err != nil {
		return 0, err
	}
	s.record(ctx, store.LevelInfo, fmt.Sprintf("Cleared %d magnet links", removed))
	return removed, nil
}

// Catalog returns the known-show catalog in lookup order.
func (s *Service) Catalog(ctx context.Context) (episodes.Catalog, error) {
	return s.store.ListKnownShows(ctx)
}

// AbsoluteEpisode resolves an absolute episode number against the stored catalog.
func (s *Service) AbsoluteEpisode(ctx context.Context, name string, season, episode int) (int, error) {
	if strings.TrimSpace(name) == "" {
		return 0, invalid("absolute episode", "show name is required")
	}
	if season < 1 || episode < 1 {
		return 0, invalid("absolute episode", "season and episode must be >= 1")
	}
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return 0, err
	}
	return episodes.AbsoluteEpisode(name, season, episode, catalog), nil
}
