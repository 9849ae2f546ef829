package matching

import (
	"strings"

	"animetracker/internal/episodes"
	"animetracker/internal/textutil"
)

// Matches reports whether candidate satisfies the show's targetSeason/targetEpisode.
//
// Absolute translations always look the catalog up by the show's canonical
// name (show.Names[0]), for the target and the candidate alike.
func Matches(candidate Candidate, show episodes.TrackedShow, targetSeason, targetEpisode int, catalog episodes.Catalog) bool {
	if !IdentityMatches(candidate.ShowName, show.Names) {
		return false
	}
	if !QualityMatches(candidate.Quality, show.Quality) {
		return false
	}

	lookupName := show.DisplayName()
	if candidate.HasBatchRange() {
		if candidate.Season == targetSeason {
			return candidate.BatchStart <= targetEpisode && targetEpisode <= candidate.BatchEnd
		}
		target := episodes.AbsoluteEpisode(lookupName, targetSeason, targetEpisode, catalog)
		start := episodes.AbsoluteEpisode(lookupName, candidate.Season, candidate.BatchStart, catalog)
		end := episodes.AbsoluteEpisode(lookupName, candidate.Season, candidate.BatchEnd, catalog)
		return start <= target && target <= end
	}

	if candidate.Season == targetSeason && candidate.Episode == targetEpisode {
		return true
	}
	target := episodes.AbsoluteEpisode(lookupName, targetSeason, targetEpisode, catalog)
	parsed := episodes.AbsoluteEpisode(lookupName, candidate.Season, candidate.Episode, catalog)
	return target == parsed
}

// IdentityMatches reports whether name normalizes to any of names.
func IdentityMatches(name string, names []string) bool {
	normalized := textutil.NormalizeShowName(name)
	for _, candidate := range names {
		if textutil.NormalizeShowName(candidate) == normalized {
			return true
		}
	}
	return false
}

// QualityMatches applies the show's quality filter: an empty filter accepts
// anything, otherwise the candidate quality must contain it (case-sensitive).
func QualityMatches(candidateQuality, wanted string) bool {
	if wanted == "" {
		return true
	}
	return strings.Contains(candidateQuality, wanted)
}
