package store_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"animetracker/internal/episodes"
	"animetracker/internal/services"
	"animetracker/internal/store"
	"animetracker/internal/testsupport"
)

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	health, err := st.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if !health.SchemaReady || health.Integrity != "ok" {
		t.Fatalf("expected schema to be ready, got %+v", health)
	}
	if health.Path != cfg.DatabasePath() {
		t.Fatalf("expected path %q, got %q", cfg.DatabasePath(), health.Path)
	}
	if health.Shows != 0 || health.KnownShows != 0 || health.Logs != 0 || health.Magnets != 0 {
		t.Fatalf("expected empty tables, got %+v", health)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	testsupport.NewShow(t, first, episodes.TrackedShow{Names: []string{"Frieren"}})
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second := testsupport.MustOpenStore(t, cfg)
	shows, err := second.ListShows(context.Background())
	if err != nil {
		t.Fatalf("ListShows failed: %v", err)
	}
	if len(shows) != 1 {
		t.Fatalf("expected show to survive reopen, got %d", len(shows))
	}
}

func TestShowRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	created := testsupport.NewShow(t, st, episodes.TrackedShow{
		Names:        []string{"Kusuriya no Hitorigoto", "The Apothecary Diaries"},
		StartSeason:  1,
		StartEpisode: 1,
		EndSeason:    1,
		EndEpisode:   3,
		Quality:      "1080p",
	})
	if created.ID == 0 {
		t.Fatal("expected show ID to be assigned")
	}
	if len(created.Needed) != 3 {
		t.Fatalf("expected 3 needed episodes, got %v", created.Needed)
	}
	if created.Downloaded == nil || len(created.Downloaded) != 0 {
		t.Fatalf("expected empty downloaded list, got %#v", created.Downloaded)
	}
	if created.LastChecked != nil {
		t.Fatalf("expected nil last_checked, got %v", created.LastChecked)
	}

	created.Downloaded = []episodes.Episode{{Season: 1, Episode: 1}}
	created.Needed = created.Needed[1:]
	created.Quality = "720p"
	if err := st.UpdateShow(ctx, *created); err != nil {
		t.Fatalf("UpdateShow failed: %v", err)
	}

	fetched, err := st.GetShow(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetShow failed: %v", err)
	}
	if fetched.Quality != "720p" {
		t.Fatalf("expected quality 720p, got %q", fetched.Quality)
	}
	if len(fetched.Names) != 2 || fetched.Names[1] != "The Apothecary Diaries" {
		t.Fatalf("unexpected names: %v", fetched.Names)
	}
	if !episodes.Contains(fetched.Downloaded, episodes.Episode{Season: 1, Episode: 1}) {
		t.Fatalf("expected S01E01 downloaded, got %v", fetched.Downloaded)
	}
	if episodes.Contains(fetched.Needed, episodes.Episode{Season: 1, Episode: 1}) {
		t.Fatalf("expected S01E01 removed from needed, got %v", fetched.Needed)
	}
}

func TestUpdateEpisodesAndTouch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	show := testsupport.NewShow(t, st, episodes.TrackedShow{Names: []string{"Dandadan"}, EndEpisode: 2})
	downloaded := []episodes.Episode{{Season: 1, Episode: 2}}
	needed := []episodes.Episode{{Season: 1, Episode: 1}}
	if err := st.UpdateEpisodes(ctx, show.ID, downloaded, needed); err != nil {
		t.Fatalf("UpdateEpisodes failed: %v", err)
	}
	checked := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := st.TouchShow(ctx, show.ID, checked); err != nil {
		t.Fatalf("TouchShow failed: %v", err)
	}

	fetched, err := st.GetShow(ctx, show.ID)
	if err != nil {
		t.Fatalf("GetShow failed: %v", err)
	}
	if len(fetched.Needed) != 1 || fetched.Needed[0] != needed[0] {
		t.Fatalf("unexpected needed: %v", fetched.Needed)
	}
	if fetched.LastChecked == nil || !fetched.LastChecked.Equal(checked) {
		t.Fatalf("expected last_checked %v, got %v", checked, fetched.LastChecked)
	}
}

func TestMarkDownloadedKeepsConcurrentEdits(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	show := testsupport.NewShow(t, st, episodes.TrackedShow{Names: []string{"Dandadan"}, EndEpisode: 3})
	// Another writer marks E3 after the caller loaded the show.
	if err := st.UpdateEpisodes(ctx, show.ID,
		[]episodes.Episode{{Season: 1, Episode: 3}},
		[]episodes.Episode{{Season: 1, Episode: 1}, {Season: 1, Episode: 2}},
	); err != nil {
		t.Fatalf("UpdateEpisodes failed: %v", err)
	}

	updated, err := st.MarkDownloaded(ctx, show.ID, episodes.Episode{Season: 1, Episode: 1})
	if err != nil {
		t.Fatalf("MarkDownloaded failed: %v", err)
	}
	wantDownloaded := []episodes.Episode{{Season: 1, Episode: 1}, {Season: 1, Episode: 3}}
	wantNeeded := []episodes.Episode{{Season: 1, Episode: 2}}
	fetched, err := st.GetShow(ctx, show.ID)
	if err != nil {
		t.Fatalf("GetShow failed: %v", err)
	}
	for _, got := range []*episodes.TrackedShow{updated, fetched} {
		if !slices.Equal(got.Downloaded, wantDownloaded) || !slices.Equal(got.Needed, wantNeeded) {
			t.Fatalf("unexpected lists downloaded=%v needed=%v", got.Downloaded, got.Needed)
		}
	}

	if _, err := st.MarkDownloaded(ctx, 9999, episodes.Episode{Season: 1, Episode: 1}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMissingShowReturnsNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := st.GetShow(ctx, 42); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from GetShow, got %v", err)
	}
	if err := st.DeleteShow(ctx, 42); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from DeleteShow, got %v", err)
	}
	if err := st.TouchShow(ctx, 42, time.Now()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from TouchShow, got %v", err)
	}
	if err := st.UpdateShow(ctx, episodes.TrackedShow{ID: 42, Names: []string{"x"}}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from UpdateShow, got %v", err)
	}
}

func TestKnownShowsPreserveOrderAndRejectDuplicates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewKnownShow(t, st, "Spy x Family", 12, 13)
	testsupport.NewKnownShow(t, st, "Oshi no Ko", 11)

	_, err := st.CreateKnownShow(ctx, episodes.CatalogEntry{Name: "  SPY X FAMILY ", EpisodesPerSeason: []int{25}})
	if !errors.Is(err, store.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected duplicate to classify as conflict, got %v", err)
	}

	catalog, err := st.ListKnownShows(ctx)
	if err != nil {
		t.Fatalf("ListKnownShows failed: %v", err)
	}
	if len(catalog) != 2 || catalog[0].Name != "Spy x Family" || catalog[1].Name != "Oshi no Ko" {
		t.Fatalf("unexpected catalog: %+v", catalog)
	}
	if got := catalog[0].SeasonLength(2); got != 13 {
		t.Fatalf("expected season 2 length 13, got %d", got)
	}
	if got := episodes.AbsoluteEpisode("spy x family", 2, 1, catalog); got != 13 {
		t.Fatalf("expected absolute 13, got %d", got)
	}
}

func TestUpdateAndDeleteKnownShow(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := testsupport.NewKnownShow(t, st, "Bleach", 366)
	second := testsupport.NewKnownShow(t, st, "Naruto", 220)

	second.Name = "bleach"
	if err := st.UpdateKnownShow(ctx, *second); !errors.Is(err, store.ErrDuplicateName) {
		t.Fatalf("expected rename collision to fail, got %v", err)
	}

	first.EpisodesPerSeason = []int{366, 0, 13}
	if err := st.UpdateKnownShow(ctx, *first); err != nil {
		t.Fatalf("UpdateKnownShow failed: %v", err)
	}
	fetched, err := st.GetKnownShow(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetKnownShow failed: %v", err)
	}
	if len(fetched.EpisodesPerSeason) != 3 || fetched.SeasonLength(2) != episodes.DefaultEpisodesPerSeason {
		t.Fatalf("unexpected counts: %v", fetched.EpisodesPerSeason)
	}

	if err := st.DeleteKnownShow(ctx, first.ID); err != nil {
		t.Fatalf("DeleteKnownShow failed: %v", err)
	}
	if _, err := st.GetKnownShow(ctx, first.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := st.DeleteKnownShow(ctx, first.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestActivityLogs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for _, msg := range []string{"first", "second", "third"} {
		if _, err := st.AddLog(ctx, store.LevelInfo, msg); err != nil {
			t.Fatalf("AddLog failed: %v", err)
		}
	}
	if _, err := st.AddLog(ctx, store.Level("debug"), "nope"); err == nil {
		t.Fatal("expected unknown level to be rejected")
	}

	logs, err := st.ListLogs(ctx, 2)
	if err != nil {
		t.Fatalf("ListLogs failed: %v", err)
	}
	if len(logs) != 2 || logs[0].Message != "third" || logs[1].Message != "second" {
		t.Fatalf("expected newest two logs, got %+v", logs)
	}

	if err := st.ClearLogs(ctx); err != nil {
		t.Fatalf("ClearLogs failed: %v", err)
	}
	logs, err = st.ListLogs(ctx, 0)
	if err != nil {
		t.Fatalf("ListLogs failed: %v", err)
	}
	if len(logs) != 1 || logs[0].Message != "All logs cleared" || logs[0].Level != store.LevelInfo {
		t.Fatalf("expected only the clear marker, got %+v", logs)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]store.Level{
		"info":     store.LevelInfo,
		" WARNING": store.LevelWarning,
		"Error":    store.LevelError,
		"success":  store.LevelSuccess,
	}
	for raw, want := range cases {
		got, ok := store.ParseLevel(raw)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q) = %q, %v; want %q", raw, got, ok, want)
		}
	}
	if _, ok := store.ParseLevel("debug"); ok {
		t.Fatal("expected debug to be rejected")
	}
}

func TestMagnetsSurviveShowDeletion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	show := testsupport.NewShow(t, st, episodes.TrackedShow{Names: []string{"Frieren"}})
	showID := show.ID
	recorded, err := st.RecordMagnet(ctx, store.FoundMagnet{
		ShowID:     &showID,
		ShowName:   "Frieren",
		Season:     1,
		Episode:    4,
		Title:      "[SubsPlease] Frieren - 04 (1080p)",
		MagnetLink: "magnet:?xt=urn:btih:0123456789abcdef0123456789abcdef01234567",
		InfoHash:   "0123456789abcdef0123456789abcdef01234567",
		Seeders:    120,
	})
	if err != nil {
		t.Fatalf("RecordMagnet failed: %v", err)
	}
	if recorded.ID == 0 || recorded.FoundAt.IsZero() {
		t.Fatalf("expected ID and found_at to be set, got %+v", recorded)
	}

	if err := st.DeleteShow(ctx, show.ID); err != nil {
		t.Fatalf("DeleteShow failed: %v", err)
	}
	magnets, err := st.ListMagnets(ctx)
	if err != nil {
		t.Fatalf("ListMagnets failed: %v", err)
	}
	if len(magnets) != 1 {
		t.Fatalf("expected magnet to survive, got %d", len(magnets))
	}
	if magnets[0].ShowID != nil {
		t.Fatalf("expected show link cleared, got %v", *magnets[0].ShowID)
	}
	if magnets[0].Seeders != 120 || magnets[0].Episode != 4 {
		t.Fatalf("unexpected magnet: %+v", magnets[0])
	}

	removed, err := st.ClearMagnets(ctx)
	if err != nil {
		t.Fatalf("ClearMagnets failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 magnet removed, got %d", removed)
	}
}
