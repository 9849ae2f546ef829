package titleparse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/recoilme/pudge"

	"animetracker/internal/logging"
	"animetracker/internal/matching"
)

// DefaultCacheTTL is how long a reading stays valid.
const DefaultCacheTTL = 7 * 24 * time.Hour

type cacheEntry struct {
	Candidate *matching.Candidate `json:"candidate"`
	StoredAt  time.Time           `json:"stored_at"`
}

// CachedParser memoizes another parser's readings by exact title. Readings of
// nil are cached as well; errors are not.
type CachedParser struct {
	inner  Parser
	db     *pudge.Db
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// CacheOption customizes a CachedParser.
type CacheOption func(*CachedParser)

// WithCacheLogger attaches a logger.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *CachedParser) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "parse-cache")
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *CachedParser) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCachedParser opens (or creates) the cache file at path and prunes
// expired entries. A non-positive ttl selects DefaultCacheTTL.
func NewCachedParser(inner Parser, path string, ttl time.Duration, opts ...CacheOption) (*CachedParser, error) {
	if inner == nil {
		return nil, errors.New("titleparse: cache requires an inner parser")
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	db, err := pudge.Open(path, &pudge.Config{SyncInterval: 1})
	if err != nil {
		return nil, fmt.Errorf("open parse cache %q: %w", path, err)
	}
	c := &CachedParser{
		inner:  inner,
		db:     db,
		ttl:    ttl,
		now:    time.Now,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if pruned, err := c.Prune(); err != nil {
		c.logger.Warn("parse cache prune failed", logging.Error(err))
	} else if pruned > 0 {
		c.logger.Debug("parse cache pruned", logging.Int("entries", pruned))
	}
	return c, nil
}

// Parse implements Parser.
func (c *CachedParser) Parse(ctx context.Context, title string) (*matching.Candidate, error) {
	candidate, _, err := c.ParseWithSource(ctx, title)
	return candidate, err
}

// ParseWithSource returns the reading and whether it was served from cache.
func (c *CachedParser) ParseWithSource(ctx context.Context, title string) (*matching.Candidate, bool, error) {
	if entry, ok := c.lookup(title); ok {
		return entry.Candidate, true, nil
	}
	candidate, err := c.inner.Parse(ctx, title)
	if err != nil {
		return nil, false, err
	}
	c.store(title, candidate)
	return candidate, false, nil
}

func (c *CachedParser) lookup(title string) (cacheEntry, bool) {
	var raw []byte
	if err := c.db.Get(title, &raw); err != nil {
		if !errors.Is(err, pudge.ErrKeyNotFound) {
			c.logger.Warn("parse cache read failed", logging.String("title", title), logging.Error(err))
		}
		return cacheEntry{}, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil || c.expired(entry) {
		if derr := c.db.Delete(title); derr != nil && !errors.Is(derr, pudge.ErrKeyNotFound) {
			c.logger.Warn("parse cache delete failed", logging.String("title", title), logging.Error(derr))
		}
		return cacheEntry{}, false
	}
	return entry, true
}

func (c *CachedParser) store(title string, candidate *matching.Candidate) {
	raw, err := json.Marshal(cacheEntry{Candidate: candidate, StoredAt: c.now().UTC()})
	if err != nil {
		return
	}
	if err := c.db.Set(title, raw); err != nil {
		c.logger.Warn("parse cache write failed", logging.String("title", title), logging.Error(err))
	}
}

func (c *CachedParser) expired(entry cacheEntry) bool {
	return c.now().Sub(entry.StoredAt) >= c.ttl
}

// Prune deletes expired or unreadable entries and reports how many went.
func (c *CachedParser) Prune() (int, error) {
	keys, err := c.db.Keys(nil, 0, 0, true)
	if err != nil {
		return 0, fmt.Errorf("list parse cache keys: %w", err)
	}
	pruned := 0
	for _, key := range keys {
		var raw []byte
		if err := c.db.Get(key, &raw); err != nil {
			continue
		}
		var entry cacheEntry
		if err := json.Unmarshal(raw, &entry); err == nil && !c.expired(entry) {
			continue
		}
		if err := c.db.Delete(key); err == nil {
			pruned++
		}
	}
	return pruned, nil
}

// Len reports the number of cached titles.
func (c *CachedParser) Len() (int, error) {
	return c.db.Count()
}

// Close flushes and closes the cache file.
func (c *CachedParser) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.db.Close()
	})
	return c.closeErr
}
