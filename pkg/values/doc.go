// Package values holds the current configuration values bound to schema
// paths, together with the per-field metadata (type, description, default,
// source, status) a backend reports. Payloads decode from JSON, YAML, or TOML.
package values
