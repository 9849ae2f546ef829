package tracker

import (
	"context"
	"fmt"
	"strings"

	"animetracker/internal/episodes"
	"animetracker/internal/services"
	"animetracker/internal/store"
)

// ShowInput is the body of a create request. Zero range fields take the
// defaults 1/1 to 1/12; a nil Quality means "1080p".
type ShowInput struct {
	Names        []string           `json:"names"`
	StartSeason  int                `json:"start_season"`
	StartEpisode int                `json:"start_episode"`
	EndSeason    int                `json:"end_season"`
	EndEpisode   int                `json:"end_episode"`
	Quality      *string            `json:"quality"`
	Downloaded   []episodes.Episode `json:"downloaded_episodes"`
	Needed       []episodes.Episode `json:"needed_episodes"`
}

// ShowPatch is the body of an update request; nil fields are left alone.
type ShowPatch struct {
	Names        *[]string           `json:"names"`
	StartSeason  *int                `json:"start_season"`
	StartEpisode *int                `json:"start_episode"`
	EndSeason    *int                `json:"end_season"`
	EndEpisode   *int                `json:"end_episode"`
	Quality      *string             `json:"quality"`
	Downloaded   *[]episodes.Episode `json:"downloaded_episodes"`
	Needed       *[]episodes.Episode `json:"needed_episodes"`
}

// ToggleResult reports the lists after an episode changed sides.
type ToggleResult struct {
	Success      bool               `json:"success"`
	IsDownloaded bool               `json:"isDownloaded"`
	Downloaded   []episodes.Episode `json:"downloadedEpisodes"`
	Needed       []episodes.Episode `json:"neededEpisodes"`
}

func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func validateShow(operation string, show episodes.TrackedShow) error {
	if len(show.Names) == 0 {
		return invalid(operation, "Show must have at least one name")
	}
	if err := show.Validate(); err != nil {
		return invalid(operation, err.Error())
	}
	return nil
}

// CreateShow validates, defaults, and stores a new show. When the input lists
// no needed episodes they are computed from the range and the catalog.
func (s *Service) CreateShow(ctx context.Context, in ShowInput) (*episodes.TrackedShow, error) {
	show := episodes.TrackedShow{
		Names:        cleanNames(in.Names),
		StartSeason:  orDefault(in.StartSeason, 1),
		StartEpisode: orDefault(in.StartEpisode, 1),
		EndSeason:    orDefault(in.EndSeason, 1),
		EndEpisode:   orDefault(in.EndEpisode, 12),
		Quality:      defaultQuality,
		Downloaded:   in.Downloaded,
		Needed:       in.Needed,
	}
	if in.Quality != nil {
		show.Quality = strings.TrimSpace(*in.Quality)
	}
	if err := validateShow("create show", show); err != nil {
		return nil, err
	}
	if show.Downloaded == nil {
		show.Downloaded = []episodes.Episode{}
	}
	episodes.Sort(show.Downloaded)
	if len(show.Needed) == 0 {
		catalog, err := s.Catalog(ctx)
		if err != nil {
			return nil, err
		}
		show.Needed = episodes.RecalculateNeeded(show, catalog)
	}

	created, err := s.store.CreateShow(ctx, show)
	if err != nil {
		return nil, err
	}
	s.record(ctx, store.LevelInfo, "Added show: "+created.DisplayName())
	return created, nil
}

// GetShow fetches one show.
func (s *Service) GetShow(ctx context.Context, id int64) (*episodes.TrackedShow, error) {
	return s.store.GetShow(ctx, id)
}

// ListShows returns every show.
func (s *Service) ListShows(ctx context.Context) ([]episodes.TrackedShow, error) {
	return s.store.ListShows(ctx)
}

// UpdateShow applies patch and stamps last_checked.
func (s *Service) UpdateShow(ctx context.Context, id int64, patch ShowPatch) (*episodes.TrackedShow, error) {
	show, err := s.store.GetShow(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Names != nil {
		show.Names = cleanNames(*patch.Names)
	}
	setInt(&show.StartSeason, patch.StartSeason)
	setInt(&show.StartEpisode, patch.StartEpisode)
	setInt(&show.EndSeason, patch.EndSeason)
	setInt(&show.EndEpisode, patch.EndEpisode)
	if patch.Quality != nil {
		show.Quality = strings.TrimSpace(*patch.Quality)
	}
	if patch.Downloaded != nil {
		show.Downloaded = append([]episodes.Episode{}, (*patch.Downloaded)...)
	}
	if patch.Needed != nil {
		show.Needed = append([]episodes.Episode{}, (*patch.Needed)...)
	}
	if err := validateShow("update show", *show); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	show.LastChecked = &now

	if err := s.store.UpdateShow(ctx, *show); err != nil {
		return nil, err
	}
	s.record(ctx, store.LevelInfo, "Updated show: "+show.DisplayName())
	return s.store.GetShow(ctx, id)
}

// DeleteShow removes a show.
func (s *Service) DeleteShow(ctx context.Context, id int64) error {
	show, err := s.store.GetShow(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteShow(ctx, id); err != nil {
		return err
	}
	s.record(ctx, store.LevelInfo, "Deleted show: "+show.DisplayName())
	return nil
}

// Recalculate replaces the show's needed list from its range and the catalog.
func (s *Service) Recalculate(ctx context.Context, id int64) (*episodes.TrackedShow, error) {
	show, err := s.store.GetShow(ctx, id)
	if err != nil {
		return nil, err
	}
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	show.Needed = episodes.RecalculateNeeded(*show, catalog)
	now := s.now().UTC()
	show.LastChecked = &now
	if err := s.store.UpdateShow(ctx, *show); err != nil {
		return nil, err
	}
	s.record(ctx, store.LevelInfo, "Recalculated needed episodes for: "+show.DisplayName())
	return show, nil
}

// ToggleEpisode moves an episode between the downloaded and needed lists.
func (s *Service) ToggleEpisode(ctx context.Context, id int64, season, episode int) (*ToggleResult, error) {
	show, err := s.store.GetShow(ctx, id)
	if err != nil {
		return nil, err
	}
	ep := episodes.Episode{Season: season, Episode: episode}

	wasDownloaded := episodes.Contains(show.Downloaded, ep)
	switch {
	case wasDownloaded:
		show.Downloaded = episodes.Without(show.Downloaded, ep)
		show.Needed = episodes.With(show.Needed, ep)
	case episodes.Contains(show.Needed, ep):
		show.Needed = episodes.Without(show.Needed, ep)
		show.Downloaded = episodes.With(show.Downloaded, ep)
	default:
		return nil, services.Wrap(store.ErrNotFound, "tracker", "toggle episode", ep.String(), ErrEpisodeNotTracked)
	}

	if err := s.store.UpdateEpisodes(ctx, id, show.Downloaded, show.Needed); err != nil {
		return nil, err
	}
	verb, state := "Marked", "downloaded"
	if wasDownloaded {
		verb, state = "Unmarked", "needed"
	}
	s.record(ctx, store.LevelInfo, fmt.Sprintf("%s %s S%dE%d as %s", verb, show.DisplayName(), season, episode, state))
	return &ToggleResult{
		Success:      true,
		IsDownloaded: !wasDownloaded,
		Downloaded:   show.Downloaded,
		Needed:       show.Needed,
	}, nil
}

func orDefault(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
