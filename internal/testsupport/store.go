package testsupport

import (
	"context"
	"testing"

	"animetracker/internal/config"
	"animetracker/internal/episodes"
	"animetracker/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewShow inserts a tracked show covering start..end with every episode in
// needed, for tests that do not care about catalog recalculation.
func NewShow(t testing.TB, st *store.Store, show episodes.TrackedShow) *episodes.TrackedShow {
	t.Helper()

	if show.StartSeason == 0 {
		show.StartSeason = 1
	}
	if show.StartEpisode == 0 {
		show.StartEpisode = 1
	}
	if show.EndSeason == 0 {
		show.EndSeason = show.StartSeason
	}
	if show.EndEpisode == 0 {
		show.EndEpisode = 12
	}
	if show.Needed == nil {
		show.Needed = episodes.RecalculateNeeded(show, nil)
	}
	created, err := st.CreateShow(context.Background(), show)
	if err != nil {
		t.Fatalf("store.CreateShow: %v", err)
	}
	return created
}

// NewKnownShow inserts a catalog entry.
func NewKnownShow(t testing.TB, st *store.Store, name string, counts ...int) *episodes.CatalogEntry {
	t.Helper()

	entry, err := st.CreateKnownShow(context.Background(), episodes.CatalogEntry{Name: name, EpisodesPerSeason: counts})
	if err != nil {
		t.Fatalf("store.CreateKnownShow: %v", err)
	}
	return entry
}
