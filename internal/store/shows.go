package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"animetracker/internal/episodes"
)

type showRow struct {
	ID           int64          `db:"id"`
	Names        string         `db:"names"`
	StartSeason  int            `db:"start_season"`
	StartEpisode int            `db:"start_episode"`
	EndSeason    int            `db:"end_season"`
	EndEpisode   int            `db:"end_episode"`
	Quality      string         `db:"quality"`
	Downloaded   string         `db:"downloaded_episodes"`
	Needed       string         `db:"needed_episodes"`
	LastChecked  sql.NullString `db:"last_checked"`
	CreatedAt    string         `db:"created_at"`
	UpdatedAt    string         `db:"updated_at"`
}

const showColumns = "id, names, start_season, start_episode, end_season, end_episode, quality, downloaded_episodes, needed_episodes, last_checked, created_at, updated_at"

func (r showRow) toShow() (episodes.TrackedShow, error) {
	show := episodes.TrackedShow{
		ID:           r.ID,
		StartSeason:  r.StartSeason,
		StartEpisode: r.StartEpisode,
		EndSeason:    r.EndSeason,
		EndEpisode:   r.EndEpisode,
		Quality:      r.Quality,
	}
	if err := json.Unmarshal([]byte(r.Names), &show.Names); err != nil {
		return show, fmt.Errorf("decode names for show %d: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.Downloaded), &show.Downloaded); err != nil {
		return show, fmt.Errorf("decode downloaded episodes for show %d: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.Needed), &show.Needed); err != nil {
		return show, fmt.Errorf("decode needed episodes for show %d: %w", r.ID, err)
	}
	if show.Downloaded == nil {
		show.Downloaded = []episodes.Episode{}
	}
	if show.Needed == nil {
		show.Needed = []episodes.Episode{}
	}
	if r.LastChecked.Valid {
		if ts := parseTimestamp(r.LastChecked.String); !ts.IsZero() {
			show.LastChecked = &ts
		}
	}
	return show, nil
}

func encodeShow(show episodes.TrackedShow) (names, downloaded, needed string, err error) {
	encode := func(v any) (string, error) {
		data, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	if names, err = encode(show.Names); err != nil {
		return "", "", "", fmt.Errorf("encode names: %w", err)
	}
	if show.Downloaded == nil {
		show.Downloaded = []episodes.Episode{}
	}
	if show.Needed == nil {
		show.Needed = []episodes.Episode{}
	}
	if downloaded, err = encode(show.Downloaded); err != nil {
		return "", "", "", fmt.Errorf("encode downloaded episodes: %w", err)
	}
	if needed, err = encode(show.Needed); err != nil {
		return "", "", "", fmt.Errorf("encode needed episodes: %w", err)
	}
	return names, downloaded, needed, nil
}

// CreateShow inserts show and returns it with its assigned ID.
func (s *Store) CreateShow(ctx context.Context, show episodes.TrackedShow) (*episodes.TrackedShow, error) {
	names, downloaded, needed, err := encodeShow(show)
	if err != nil {
		return nil, err
	}
	now := s.timestamp()
	id, _, err := s.exec(ctx,
		`INSERT INTO shows (names, start_season, start_episode, end_season, end_episode, quality, downloaded_episodes, needed_episodes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		names, show.StartSeason, show.StartEpisode, show.EndSeason, show.EndEpisode, show.Quality, downloaded, needed, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert show: %w", err)
	}
	return s.GetShow(ctx, id)
}

// GetShow fetches a show by ID.
func (s *Store) GetShow(ctx context.Context, id int64) (*episodes.TrackedShow, error) {
	var row showRow
	err := s.db.GetContext(ctx, &row, "SELECT "+showColumns+" FROM shows WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("get show", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get show %d: %w", id, err)
	}
	show, err := row.toShow()
	if err != nil {
		return nil, err
	}
	return &show, nil
}

// ListShows returns every show ordered by ID.
func (s *Store) ListShows(ctx context.Context) ([]episodes.TrackedShow, error) {
	var rows []showRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT "+showColumns+" FROM shows ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list shows: %w", err)
	}
	shows := make([]episodes.TrackedShow, 0, len(rows))
	for _, row := range rows {
		show, err := row.toShow()
		if err != nil {
			return nil, err
		}
		shows = append(shows, show)
	}
	return shows, nil
}

// UpdateShow overwrites every mutable column of show.
func (s *Store) UpdateShow(ctx context.Context, show episodes.TrackedShow) error {
	names, downloaded, needed, err := encodeShow(show)
	if err != nil {
		return err
	}
	var lastChecked sql.NullString
	if show.LastChecked != nil {
		lastChecked = sql.NullString{String: show.LastChecked.UTC().Format(timestampLayout), Valid: true}
	}
	_, affected, err := s.exec(ctx,
		`UPDATE shows SET names = ?, start_season = ?, start_episode = ?, end_season = ?, end_episode = ?,
		 quality = ?, downloaded_episodes = ?, needed_episodes = ?, last_checked = ?, updated_at = ?
		 WHERE id = ?`,
		names, show.StartSeason, show.StartEpisode, show.EndSeason, show.EndEpisode,
		show.Quality, downloaded, needed, lastChecked, s.timestamp(), show.ID,
	)
	if err != nil {
		return fmt.Errorf("update show %d: %w", show.ID, err)
	}
	if affected == 0 {
		return notFound("update show", show.ID)
	}
	return nil
}

// UpdateEpisodes replaces only the downloaded and needed lists of a show.
func (s *Store) UpdateEpisodes(ctx context.Context, id int64, downloaded, needed []episodes.Episode) error {
	_, dl, nd, err := encodeShow(episodes.TrackedShow{Downloaded: downloaded, Needed: needed})
	if err != nil {
		return err
	}
	_, affected, err := s.exec(ctx,
		"UPDATE shows SET downloaded_episodes = ?, needed_episodes = ?, updated_at = ? WHERE id = ?",
		dl, nd, s.timestamp(), id,
	)
	if err != nil {
		return fmt.Errorf("update episodes for show %d: %w", id, err)
	}
	if affected == 0 {
		return notFound("update episodes", id)
	}
	return nil
}

// MarkDownloaded moves ep from needed to downloaded against the stored lists,
// so edits made since the caller loaded the show are kept. It returns the
// updated show.
func (s *Store) MarkDownloaded(ctx context.Context, id int64, ep episodes.Episode) (*episodes.TrackedShow, error) {
	var updated episodes.TrackedShow
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		var row showRow
		err = tx.GetContext(ctx, &row, "SELECT "+showColumns+" FROM shows WHERE id = ?", id)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("mark downloaded", id)
		}
		if err != nil {
			return err
		}
		show, err := row.toShow()
		if err != nil {
			return err
		}
		show.Downloaded = episodes.With(show.Downloaded, ep)
		show.Needed = episodes.Without(show.Needed, ep)
		_, dl, nd, err := encodeShow(show)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE shows SET downloaded_episodes = ?, needed_episodes = ?, updated_at = ? WHERE id = ?",
			dl, nd, s.timestamp(), id,
		); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		updated = show
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("mark %s downloaded for show %d: %w", ep, id, err)
	}
	return &updated, nil
}

// TouchShow records that the show was checked at when.
func (s *Store) TouchShow(ctx context.Context, id int64, when time.Time) error {
	_, affected, err := s.exec(ctx,
		"UPDATE shows SET last_checked = ?, updated_at = ? WHERE id = ?",
		when.UTC().Format(timestampLayout), s.timestamp(), id,
	)
	if err != nil {
		return fmt.Errorf("touch show %d: %w", id, err)
	}
	if affected == 0 {
		return notFound("touch show", id)
	}
	return nil
}

// DeleteShow removes a show. Magnets found for it keep their title but lose the link.
func (s *Store) DeleteShow(ctx context.Context, id int64) error {
	_, affected, err := s.exec(ctx, "DELETE FROM shows WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete show %d: %w", id, err)
	}
	if affected == 0 {
		return notFound("delete show", id)
	}
	return nil
}
