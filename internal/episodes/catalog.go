package episodes

import (
	"errors"
	"fmt"
	"strings"

	"animetracker/internal/textutil"
)

// DefaultEpisodesPerSeason is assumed for any season the catalog does not
// describe, including shows missing from the catalog entirely.
const DefaultEpisodesPerSeason = 12

// ErrInvalidCatalog reports a catalog entry that cannot be used for lookups.
var ErrInvalidCatalog = errors.New("invalid catalog entry")

// CatalogEntry records the per-season episode counts of a known show.
// EpisodesPerSeason[0] is season 1. A zero count means "unknown".
type CatalogEntry struct {
	ID                int64  `json:"id"`
	Name              string `json:"show_name"`
	EpisodesPerSeason []int  `json:"episodes_per_season"`
}

// SeasonLength returns the recorded episode count for the 1-based season,
// falling back to DefaultEpisodesPerSeason when the season is missing or
// its count is not positive.
func (e CatalogEntry) SeasonLength(season int) int {
	if season < 1 || season > len(e.EpisodesPerSeason) {
		return DefaultEpisodesPerSeason
	}
	if count := e.EpisodesPerSeason[season-1]; count > 0 {
		return count
	}
	return DefaultEpisodesPerSeason
}

// Validate checks the entry before it is stored or handed to the resolver.
func (e CatalogEntry) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: show_name is required", ErrInvalidCatalog)
	}
	for i, count := range e.EpisodesPerSeason {
		if count < 0 {
			return fmt.Errorf("%w: season %d has negative episode count %d", ErrInvalidCatalog, i+1, count)
		}
	}
	return nil
}

// Catalog is an ordered snapshot of known shows.
type Catalog []CatalogEntry

// Lookup returns the first entry, in catalog order, whose normalized name
// equals the normalized form of any of names.
func (c Catalog) Lookup(names ...string) (CatalogEntry, bool) {
	if len(c) == 0 || len(names) == 0 {
		return CatalogEntry{}, false
	}
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[textutil.NormalizeShowName(name)] = struct{}{}
	}
	for _, entry := range c {
		if _, ok := wanted[textutil.NormalizeShowName(entry.Name)]; ok {
			return entry, true
		}
	}
	return CatalogEntry{}, false
}

// Validate checks every entry and rejects two entries sharing a normalized name.
func (c Catalog) Validate() error {
	seen := make(map[string]string, len(c))
	for _, entry := range c {
		if err := entry.Validate(); err != nil {
			return err
		}
		key := textutil.NormalizeShowName(entry.Name)
		if prior, ok := seen[key]; ok {
			return fmt.Errorf("%w: %q duplicates %q", ErrInvalidCatalog, entry.Name, prior)
		}
		seen[key] = entry.Name
	}
	return nil
}
