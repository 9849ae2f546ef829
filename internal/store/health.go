package store

import (
	"context"
	"fmt"
)

// Health summarizes database reachability and table sizes.
type Health struct {
	Path        string `json:"path"`
	Shows       int    `json:"shows"`
	KnownShows  int    `json:"known_shows"`
	Logs        int    `json:"logs"`
	Magnets     int    `json:"magnets"`
	SchemaReady bool   `json:"schema_ready"`
	Integrity   string `json:"integrity"`
}

// CheckHealth pings the database, runs a quick integrity check, and counts
// rows in each table.
func (s *Store) CheckHealth(ctx context.Context) (Health, error) {
	health := Health{Path: s.path}
	if err := s.db.PingContext(ctx); err != nil {
		return health, fmt.Errorf("ping database: %w", err)
	}
	if err := s.db.GetContext(ctx, &health.Integrity, "PRAGMA quick_check"); err != nil {
		return health, fmt.Errorf("integrity check: %w", err)
	}
	counts := []struct {
		table string
		dest  *int
	}{
		{"shows", &health.Shows},
		{"known_shows", &health.KnownShows},
		{"activity_logs", &health.Logs},
		{"found_magnets", &health.Magnets},
	}
	for _, c := range counts {
		if err := s.db.GetContext(ctx, c.dest, "SELECT COUNT(*) FROM "+c.table); err != nil {
			return health, fmt.Errorf("count %s: %w", c.table, err)
		}
	}
	health.SchemaReady = health.Integrity == "ok"
	return health, nil
}
