package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"animetracker/internal/episodes"
	"animetracker/internal/services"
	"animetracker/internal/textutil"
)

type knownShowRow struct {
	ID                int64  `db:"id"`
	Name              string `db:"show_name"`
	NormalizedName    string `db:"normalized_name"`
	EpisodesPerSeason string `db:"episodes_per_season"`
	CreatedAt         string `db:"created_at"`
	UpdatedAt         string `db:"updated_at"`
}

func (r knownShowRow) toEntry() (episodes.CatalogEntry, error) {
	entry := episodes.CatalogEntry{ID: r.ID, Name: r.Name}
	if err := json.Unmarshal([]byte(r.EpisodesPerSeason), &entry.EpisodesPerSeason); err != nil {
		return entry, fmt.Errorf("decode episodes_per_season for known show %d: %w", r.ID, err)
	}
	if entry.EpisodesPerSeason == nil {
		entry.EpisodesPerSeason = []int{}
	}
	return entry, nil
}

func encodeCounts(counts []int) (string, error) {
	if counts == nil {
		counts = []int{}
	}
	data, err := json.Marshal(counts)
	if err != nil {
		return "", fmt.Errorf("encode episodes_per_season: %w", err)
	}
	return string(data), nil
}

func duplicateName(operation, name string) error {
	return services.Wrap(services.ErrConflict, "store", operation, fmt.Sprintf("%q", name), ErrDuplicateName)
}

// ListKnownShows returns the catalog ordered by ID, which is also the lookup
// precedence order.
func (s *Store) ListKnownShows(ctx context.Context) (episodes.Catalog, error) {
	var rows []knownShowRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM known_shows ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list known shows: %w", err)
	}
	catalog := make(episodes.Catalog, 0, len(rows))
	for _, row := range rows {
		entry, err := row.toEntry()
		if err != nil {
			return nil, err
		}
		catalog = append(catalog, entry)
	}
	return catalog, nil
}

// GetKnownShow fetches a catalog entry by ID.
func (s *Store) GetKnownShow(ctx context.Context, id int64) (*episodes.CatalogEntry, error) {
	var row knownShowRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM known_shows WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("get known show", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get known show %d: %w", id, err)
	}
	entry, err := row.toEntry()
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// CreateKnownShow inserts a catalog entry. A name that normalizes to an
// existing entry's name is rejected with ErrDuplicateName.
func (s *Store) CreateKnownShow(ctx context.Context, entry episodes.CatalogEntry) (*episodes.CatalogEntry, error) {
	counts, err := encodeCounts(entry.EpisodesPerSeason)
	if err != nil {
		return nil, err
	}
	now := s.timestamp()
	row := knownShowRow{
		Name:              entry.Name,
		NormalizedName:    textutil.NormalizeShowName(entry.Name),
		EpisodesPerSeason: counts,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	var id int64
	err = retryOnBusy(ctx, func() error {
		res, err := s.db.NamedExecContext(ctx,
			`INSERT INTO known_shows (show_name, normalized_name, episodes_per_season, created_at, updated_at)
			 VALUES (:show_name, :normalized_name, :episodes_per_season, :created_at, :updated_at)`, row)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if isUniqueViolation(err) {
		return nil, duplicateName("create known show", entry.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("insert known show: %w", err)
	}
	return s.GetKnownShow(ctx, id)
}

// UpdateKnownShow replaces the name and counts of an existing entry.
func (s *Store) UpdateKnownShow(ctx context.Context, entry episodes.CatalogEntry) error {
	counts, err := encodeCounts(entry.EpisodesPerSeason)
	if err != nil {
		return err
	}
	_, affected, err := s.exec(ctx,
		"UPDATE known_shows SET show_name = ?, normalized_name = ?, episodes_per_season = ?, updated_at = ? WHERE id = ?",
		entry.Name, textutil.NormalizeShowName(entry.Name), counts, s.timestamp(), entry.ID,
	)
	if isUniqueViolation(err) {
		return duplicateName("update known show", entry.Name)
	}
	if err != nil {
		return fmt.Errorf("update known show %d: %w", entry.ID, err)
	}
	if affected == 0 {
		return notFound("update known show", entry.ID)
	}
	return nil
}

// DeleteKnownShow removes a catalog entry.
func (s *Store) DeleteKnownShow(ctx context.Context, id int64) error {
	_, affected, err := s.exec(ctx, "DELETE FROM known_shows WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete known show %d: %w", id, err)
	}
	if affected == 0 {
		return notFound("delete known show", id)
	}
	return nil
}
