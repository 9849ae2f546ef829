package tracker

import (
	"context"
	"strings"

	"animetracker/internal/episodes"
	"animetracker/internal/store"
)

// KnownShowInput is the body of a catalog create request.
type KnownShowInput struct {
	Name              string `json:"show_name"`
	EpisodesPerSeason []int  `json:"episodes_per_season"`
}

// KnownShowPatch is the body of a catalog update request; nil fields are left alone.
type KnownShowPatch struct {
	Name              *string `json:"show_name"`
	EpisodesPerSeason *[]int  `json:"episodes_per_season"`
}

func validateEntry(operation string, entry episodes.CatalogEntry) error {
	if strings.TrimSpace(entry.Name) == "" {
		return invalid(operation, "Show name is required")
	}
	if err := entry.Validate(); err != nil {
		return invalid(operation, err.Error())
	}
	return nil
}

// CreateKnownShow adds a catalog entry.
func (s *Service) CreateKnownShow(ctx context.Context, in KnownShowInput) (*episodes.CatalogEntry, error) {
	if in.EpisodesPerSeason == nil {
		return nil, invalid("create known show", "Episodes per season must be an array")
	}
	entry := episodes.CatalogEntry{Name: strings.TrimSpace(in.Name), EpisodesPerSeason: in.EpisodesPerSeason}
	if err := validateEntry("create known show", entry); err != nil {
		return nil, err
	}
	created, err := s.store.CreateKnownShow(ctx, entry)
	if err != nil {
		return nil, err
	}
	s.record(ctx, store.LevelInfo, "Added known show: "+created.Name)
	return created, nil
}

// UpdateKnownShow patches a catalog entry.
func (s *Service) UpdateKnownShow(ctx context.Context, id int64, patch KnownShowPatch) (*episodes.CatalogEntry, error) {
	entry, err := s.store.GetKnownShow(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, invalid("update known show", "Show name cannot be empty")
		}
		entry.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.EpisodesPerSeason != nil {
		entry.EpisodesPerSeason = append([]int{}, (*patch.EpisodesPerSeason)...)
	}
	if err := validateEntry("update known show", *entry); err != nil {
		return nil, err
	}
	if err := s.store.UpdateKnownShow(ctx, *entry); err != nil {
		return nil, err
	}
	s.record(ctx, store.LevelInfo, "Updated known show: "+entry.Name)
	return entry, nil
}

// DeleteKnownShow removes a catalog entry.
func (s *Service) DeleteKnownShow(ctx context.Context, id int64) error {
	entry, err := s.store.GetKnownShow(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteKnownShow(ctx, id); err != nil {
		return err
	}
	s.record(ctx, store.LevelInfo, "Deleted known show: "+entry.Name)
	return nil
}
