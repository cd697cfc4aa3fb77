// Package config loads, normalizes, and validates detconv configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DETCONV_LOG_LEVEL. The Config type centralizes every knob the converter and
// CLI need so conversion defaults, history storage, and log output are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
