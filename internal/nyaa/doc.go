// Package nyaa searches the nyaa.si torrent index.
//
// Search issues one listing request per query, sorted by seeders, and scrapes
// the result table with XPath. Requests share a token-bucket limiter so a scan
// over many episodes cannot hammer the index. Rows without a view link or a
// magnet link are skipped; missing size or date fall back to "Unknown" and
// missing peer counts to zero.
package nyaa
