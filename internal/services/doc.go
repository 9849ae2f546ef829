// Package services defines shared utilities consumed by the tracker's
// components and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp show IDs, scan job IDs, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so the HTTP layer and CLI
//     can classify failures (validation, not found, conflict, upstream).
//
// External clients live in subpackages (llm).
package services
