package titleparse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"animetracker/internal/config"
	"animetracker/internal/matching"
	"animetracker/internal/services/llm"
)

const unknownField = "Unknown"

// ErrUnparseable reports a candidate that cannot be handed to the matcher.
var ErrUnparseable = errors.New("unparseable title")

// Parser reads a release title.
type Parser interface {
	Parse(ctx context.Context, title string) (*matching.Candidate, error)
}

// SourceParser also reports whether a reading came from cache.
type SourceParser interface {
	Parser
	ParseWithSource(ctx context.Context, title string) (*matching.Candidate, bool, error)
}

type uncached struct {
	Parser
}

func (u uncached) ParseWithSource(ctx context.Context, title string) (*matching.Candidate, bool, error) {
	candidate, err := u.Parse(ctx, title)
	return candidate, false, err
}

// Open builds the configured backend, wrapped in the on-disk cache when it is
// enabled. The returned func releases the cache file.
func Open(cfg *config.Config, logger *slog.Logger) (SourceParser, func() error, error) {
	if cfg == nil {
		return nil, nil, errors.New("titleparse: config is required")
	}
	var base Parser
	switch strings.ToLower(strings.TrimSpace(cfg.Parser.Backend)) {
	case "llm":
		llmCfg := cfg.GetLLM()
		client := llm.NewClient(llm.Config{
			APIKey:         llmCfg.APIKey,
			BaseURL:        llmCfg.BaseURL,
			Model:          llmCfg.Model,
			Referer:        llmCfg.Referer,
			Title:          llmCfg.Title,
			TimeoutSeconds: llmCfg.TimeoutSeconds,
			Temperature:    defaultTemperature,
		})
		base = NewLLMParser(client, WithLLMLogger(logger))
	case "release", "":
		base = NewReleaseParser()
	default:
		return nil, nil, fmt.Errorf("titleparse: unknown backend %q", cfg.Parser.Backend)
	}

	if !cfg.Parser.CacheEnabled {
		return uncached{base}, func() error { return nil }, nil
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, nil, fmt.Errorf("titleparse: %w", err)
	}
	cache, err := NewCachedParser(base, cfg.ParseCachePath(), cfg.ParseCacheTTL(), WithCacheLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return cache, cache.Close, nil
}

// Validate rejects candidates the matcher should never see: blank names,
// non-positive season or episode numbers, and batches whose range is missing a
// bound or runs backwards.
func Validate(c *matching.Candidate) error {
	if c == nil {
		return fmt.Errorf("%w: no candidate", ErrUnparseable)
	}
	if strings.TrimSpace(c.ShowName) == "" {
		return fmt.Errorf("%w: show name is empty", ErrUnparseable)
	}
	if c.Season <= 0 {
		return fmt.Errorf("%w: season %d", ErrUnparseable, c.Season)
	}
	if c.Batch {
		if c.BatchStart <= 0 || c.BatchEnd <= 0 {
			return fmt.Errorf("%w: batch range %d-%d is incomplete", ErrUnparseable, c.BatchStart, c.BatchEnd)
		}
		if c.BatchStart > c.BatchEnd {
			return fmt.Errorf("%w: batch range %d-%d is inverted", ErrUnparseable, c.BatchStart, c.BatchEnd)
		}
		return nil
	}
	if c.Episode <= 0 {
		return fmt.Errorf("%w: episode %d", ErrUnparseable, c.Episode)
	}
	return nil
}

func orUnknown(value string) string {
	if value = strings.TrimSpace(value); value == "" {
		return unknownField
	}
	return value
}
