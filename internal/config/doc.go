// Package config loads, normalizes, and validates motioncomic configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and derives the per-stage settings consumed
// by detection, reading order, classification, OCR, dialogue association,
// speech estimation and timeline building. Durations are written as float
// seconds in TOML and converted here.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
