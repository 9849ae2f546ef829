package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// FoundMagnet is a release the scanner accepted for a tracked episode.
type FoundMagnet struct {
	ID         int64     `json:"id"`
	ShowID     *int64    `json:"show_id"`
	ShowName   string    `json:"show_name"`
	Season     int       `json:"season"`
	Episode    int       `json:"episode"`
	Title      string    `json:"title"`
	MagnetLink string    `json:"magnet_link"`
	InfoHash   string    `json:"info_hash,omitempty"`
	Seeders    int       `json:"seeders"`
	FoundAt    time.Time `json:"found_at"`
}

type magnetRow struct {
	ID         int64         `db:"id"`
	ShowID     sql.NullInt64 `db:"show_id"`
	ShowName   string        `db:"show_name"`
	Season     int           `db:"season"`
	Episode    int           `db:"episode"`
	Title      string        `db:"title"`
	MagnetLink string        `db:"magnet_link"`
	InfoHash   string        `db:"info_hash"`
	Seeders    int           `db:"seeders"`
	FoundAt    string        `db:"found_at"`
}

func (r magnetRow) toMagnet() FoundMagnet {
	magnet := FoundMagnet{
		ID:         r.ID,
		ShowName:   r.ShowName,
		Season:     r.Season,
		Episode:    r.Episode,
		Title:      r.Title,
		MagnetLink: r.MagnetLink,
		InfoHash:   r.InfoHash,
		Seeders:    r.Seeders,
		FoundAt:    parseTimestamp(r.FoundAt),
	}
	if r.ShowID.Valid {
		id := r.ShowID.Int64
		magnet.ShowID = &id
	}
	return magnet
}

// RecordMagnet stores a found release. FoundAt defaults to now.
func (s *Store) RecordMagnet(ctx context.Context, magnet FoundMagnet) (*FoundMagnet, error) {
	if magnet.FoundAt.IsZero() {
		magnet.FoundAt = s.now()
	}
	magnet.FoundAt = magnet.FoundAt.UTC()
	var showID sql.NullInt64
	if magnet.ShowID != nil {
		showID = sql.NullInt64{Int64: *magnet.ShowID, Valid: true}
	}
	id, _, err := s.exec(ctx,
		`INSERT INTO found_magnets (show_id, show_name, season, episode, title, magnet_link, info_hash, seeders, found_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		showID, magnet.ShowName, magnet.Season, magnet.Episode, magnet.Title,
		magnet.MagnetLink, magnet.InfoHash, magnet.Seeders, magnet.FoundAt.Format(timestampLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("insert found magnet: %w", err)
	}
	magnet.ID = id
	return &magnet, nil
}

// ListMagnets returns found releases, newest first.
func (s *Store) ListMagnets(ctx context.Context) ([]FoundMagnet, error) {
	var rows []magnetRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM found_magnets ORDER BY found_at DESC, id DESC"); err != nil {
		return nil, fmt.Errorf("list found magnets: %w", err)
	}
	magnets := make([]FoundMagnet, 0, len(rows))
	for _, row := range rows {
		magnets = append(magnets, row.toMagnet())
	}
	return magnets, nil
}

// ClearMagnets deletes every found release and reports how many were removed.
func (s *Store) ClearMagnets(ctx context.Context) (int64, error) {
	_, affected, err := s.exec(ctx, "DELETE FROM found_magnets")
	if err != nil {
		return 0, fmt.Errorf("clear found magnets: %w", err)
	}
	return affected, nil
}
