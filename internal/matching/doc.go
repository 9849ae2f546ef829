// Package matching decides whether a parsed release satisfies a wanted episode.
//
// Matches applies its checks in a fixed order: show identity, quality, then
// episode coverage (batch range or single episode). Identity and quality are
// cheap rejections; episode coverage compares per-season numbers first and
// only then translates both sides to absolute ordinals through the episodes
// package, which lets continuously numbered releases satisfy per-season
// targets.
package matching
