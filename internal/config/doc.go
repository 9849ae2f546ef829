// Package config loads, normalizes, and validates tracker configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENAI_API_KEY and PUSHOVER_TOKEN. The Config type centralizes every knob
// the daemon and CLI need, from the torrent index URL to scan pacing.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, a resolved parser backend, and clear validation errors.
package config
