// Package scan searches the torrent index for every needed episode of the
// tracked shows.
//
// A Scanner owns exactly one Job record. Start launches a background scan and
// returns immediately; Run scans in the caller's goroutine. Either way only
// one scan runs per Scanner at a time, and Status returns a copy of the job so
// callers never share state with the loop.
//
// For each needed episode the loop tries every show name against three query
// shapes, parses every result title, and takes the first result the matcher
// accepts. A match moves the episode from needed to downloaded, records the
// magnet, and notifies the user.
package scan
