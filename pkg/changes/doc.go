// Package changes records edits made against a value store (changed, added,
// removed, reset), applies them to produce a new store, and exchanges them as
// a JSON payload.
package changes
