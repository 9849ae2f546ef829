// Package notifications tells the user about scan results.
//
// Two transports are supported: ntfy (plain HTTP POST to a topic URL) and
// Pushover. Either, both, or neither may be configured; with both, every event
// fans out to each and their errors are joined. With neither, NewService returns
// a no-op so callers never need nil checks. The on_* switches in the
// [notifications] config section silence individual event kinds.
package notifications
