// Package main hosts the animetracker CLI entrypoint and command graph.
//
// The Cobra command tree runs the daemon and exposes the tracker directly
// against the local database: tracked shows, the known-show catalog, the
// activity log, found magnets, foreground scans, and one-off index searches
// and title parses. Configuration resolution and service wiring live in the
// command context so subcommands only format results.
//
// Add functionality to the internal packages first, then surface it here.
package main
