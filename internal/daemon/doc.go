// Package daemon coordinates the long-running animetracker process.
//
// It holds a flock-based lock in the data directory so only one daemon runs
// per database, serves the JSON HTTP API over the tracker service and the
// scanner, and, when scan.schedule is set, triggers full scans from a cron
// schedule. Scheduled scans are skipped while another scan is running.
//
// Keep orchestration here: show bookkeeping lives in tracker, the search loop
// in scan, and the daemon focuses on startup, shutdown, and request routing.
package daemon
