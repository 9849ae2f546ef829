// Package store persists tracked shows, the known-show catalog, the activity
// log, and found magnet links in SQLite.
//
// The database lives at config.DatabasePath(). Schema changes ship as embedded
// golang-migrate files under migrations/ and are applied on Open. Queries go
// through sqlx for struct scanning; writes retry briefly when SQLite reports
// the database is busy.
//
// Episode lists and show names are stored as JSON text columns so a show's
// downloaded/needed partition is read and written as one unit.
package store
