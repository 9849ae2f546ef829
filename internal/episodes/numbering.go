package episodes

// AbsoluteEpisode converts a season/episode pair into a show-wide ordinal.
// Seasons before the requested one contribute their catalog length, or
// DefaultEpisodesPerSeason when unknown. A show absent from the catalog is
// treated as having DefaultEpisodesPerSeason episodes in every season.
func AbsoluteEpisode(showName string, season, episode int, catalog Catalog) int {
	entry, ok := catalog.Lookup(showName)
	if !ok {
		return (season-1)*DefaultEpisodesPerSeason + episode
	}
	absolute := episode
	for s := 1; s < season; s++ {
		absolute += entry.SeasonLength(s)
	}
	return absolute
}

// RecalculateNeeded lists every episode of the show's tracked range that is not
// already downloaded, ordered season-major. The result is meant to replace
// show.Needed wholesale.
func RecalculateNeeded(show TrackedShow, catalog Catalog) []Episode {
	entry, known := catalog.Lookup(show.Names...)

	downloaded := make(map[Episode]struct{}, len(show.Downloaded))
	for _, ep := range show.Downloaded {
		downloaded[ep] = struct{}{}
	}

	needed := make([]Episode, 0)
	for season := show.StartSeason; season <= show.EndSeason; season++ {
		first := 1
		if season == show.StartSeason {
			first = show.StartEpisode
		}

		var last int
		switch {
		case season == show.EndSeason:
			last = show.EndEpisode
		case known:
			last = entry.SeasonLength(season)
		default:
			last = DefaultEpisodesPerSeason
		}

		for ep := first; ep <= last; ep++ {
			candidate := Episode{Season: season, Episode: ep}
			if _, ok := downloaded[candidate]; ok {
				continue
			}
			needed = append(needed, candidate)
		}
	}
	return needed
}
