// Package config loads, normalizes, and validates equiv configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// EQUIV_DATA_DIR. The Config type centralizes the knobs the resolution
// pipeline, the channel updaters and the CLI need so they can be wired in one
// pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical publisher keys, and clear validation errors.
package config
