// Package config loads, normalizes, and validates chessgif configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and resolves the board colors from either an
// explicit pair or a named theme. The Config type centralizes every knob the
// CLI, the HTTP surface and the worker need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
