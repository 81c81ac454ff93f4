// Package config loads, normalizes, and validates vaultcapture configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and exposes the values that seed the settings
// row on first start. The Config type centralizes the knobs the CLI needs so
// the database location, content store root, and collaborator endpoints are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
