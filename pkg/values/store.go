package values

import (
	"sort"

	"github.com/goliatone/go-configgrid/pkg/schema"
)

// Store indexes entries by normalised path. It is immutable after
// construction and safe for concurrent readers.
type Store struct {
	entries    []Entry
	index      map[string]int
	duplicates []string
}

// NewStore indexes entries. The first entry for a path wins; later ones are
// recorded in Duplicates so callers can surface them.
func NewStore(entries []Entry) *Store {
	store := &Store{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, entry := range entries {
		path := schema.NormalizePath(entry.Path)
		if path == "" {
			continue
		}
		if _, exists := store.index[path]; exists {
			store.duplicates = append(store.duplicates, path)
			continue
		}
		entry.Path = path
		store.index[path] = len(store.entries)
		store.entries = append(store.entries, entry)
	}
	return store
}

// Lookup returns the entry for path. Any path form accepted by
// schema.NormalizePath works ("/server/modelNumber", "server/modelNumber").
func (s *Store) Lookup(path string) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	idx, ok := s.index[schema.NormalizePath(path)]
	if !ok {
		return Entry{}, false
	}
	return s.entries[idx], true
}

// Entries returns a copy of the stored entries in input order.
func (s *Store) Entries() []Entry {
	if s == nil {
		return nil
	}
	return append([]Entry(nil), s.entries...)
}

// Paths returns the stored paths sorted lexically.
func (s *Store) Paths() []string {
	if s == nil {
		return nil
	}
	paths := make([]string, 0, len(s.index))
	for path := range s.index {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Duplicates lists paths that appeared more than once in the input.
func (s *Store) Duplicates() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.duplicates...)
}

// Len reports the number of indexed entries.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// With returns a new store where the supplied entries replace (or extend) the
// current ones. The receiver is left untouched.
func (s *Store) With(overrides ...Entry) *Store {
	merged := s.Entries()
	positions := make(map[string]int, len(merged))
	for i, entry := range merged {
		positions[entry.Path] = i
	}
	for _, override := range overrides {
		path := schema.NormalizePath(override.Path)
		if path == "" {
			continue
		}
		override.Path = path
		if idx, ok := positions[path]; ok {
			merged[idx] = override
			continue
		}
		positions[path] = len(merged)
		merged = append(merged, override)
	}
	next := NewStore(merged)
	if s != nil {
		next.duplicates = append(s.Duplicates(), next.duplicates...)
	}
	return next
}

// Without returns a new store lacking the given paths.
func (s *Store) Without(paths ...string) *Store {
	drop := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		drop[schema.NormalizePath(path)] = struct{}{}
	}
	kept := make([]Entry, 0, s.Len())
	for _, entry := range s.Entries() {
		if _, ok := drop[entry.Path]; ok {
			continue
		}
		kept = append(kept, entry)
	}
	return NewStore(kept)
}

// Merge folds metadata-only entries (a separate meta payload) into value
// entries. Type, description, and default come from meta; value, source, and
// status stay with the value entry. Meta paths without a value are appended.
func Merge(valueEntries, metaEntries []Entry) []Entry {
	out := make([]Entry, 0, len(valueEntries)+len(metaEntries))
	positions := make(map[string]int, len(valueEntries))
	for _, entry := range valueEntries {
		entry.Path = schema.NormalizePath(entry.Path)
		if _, seen := positions[entry.Path]; !seen {
			positions[entry.Path] = len(out)
		}
		out = append(out, entry)
	}
	for _, meta := range metaEntries {
		path := schema.NormalizePath(meta.Path)
		idx, ok := positions[path]
		if !ok {
			meta.Path = path
			positions[path] = len(out)
			out = append(out, meta)
			continue
		}
		target := &out[idx].Meta
		if meta.Meta.Type != "" {
			target.Type = meta.Meta.Type
		}
		if meta.Meta.Description != "" {
			target.Description = meta.Meta.Description
		}
		if meta.Meta.Default != nil {
			target.Default = meta.Meta.Default
		}
		if target.Source == "" {
			target.Source = meta.Meta.Source
		}
		if target.Status == "" {
			target.Status = meta.Meta.Status
		}
	}
	return out
}
