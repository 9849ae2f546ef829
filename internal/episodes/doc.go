// Package episodes models tracked shows and the known-show catalog, and
// resolves episode numbering across seasons.
//
// AbsoluteEpisode maps a (season, episode) pair onto a show-wide ordinal so
// releases numbered continuously ("Episode 27") can be compared with per-season
// tracking ("S02E03"). RecalculateNeeded derives the outstanding episodes for
// a tracked range. Both are pure functions over the values passed in; callers
// supply a catalog snapshot and receive fresh slices back.
//
// Wherever the catalog has no usable count for a season the resolver assumes
// DefaultEpisodesPerSeason episodes.
package episodes
