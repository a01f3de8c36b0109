package changes

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-configgrid/pkg/schema"
	"github.com/goliatone/go-configgrid/pkg/values"
)

var (
	// ErrUnknownPath is returned when a change targets a path the schema
	// does not declare.
	ErrUnknownPath = errors.New("changes: unknown path")
	// ErrNotPresent is returned when removing a path that holds no value.
	ErrNotPresent = errors.New("changes: path has no value")
)

// Change is one pending edit. Previous holds the value the store had before
// the edit, if any.
type Change struct {
	ID       string        `json:"id"`
	Path     string        `json:"item"`
	Status   values.Status `json:"status"`
	Value    any           `json:"value,omitempty"`
	Previous any           `json:"origValue,omitempty"`
	At       time.Time     `json:"at"`
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithIDGenerator replaces the uuid generator, mostly for tests.
func WithIDGenerator(next func() string) Option {
	return func(r *Recorder) {
		if next != nil {
			r.newID = next
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// WithSchema restricts edits to declared fields and checks values against
// their constraints.
func WithSchema(s schema.Schema) Option {
	return func(r *Recorder) {
		r.schema = &s
	}
}

// Recorder accumulates edits against a base store. One change is kept per
// path; a later edit to the same path replaces the earlier one. Safe for
// concurrent use.
type Recorder struct {
	mu      sync.Mutex
	base    *values.Store
	changes []Change
	index   map[string]int
	fields  map[string]schema.Node
	schema  *schema.Schema
	newID   func() string
	now     func() time.Time
}

// NewRecorder creates a recorder over base. A schema supplied via WithSchema
// that fails to resolve is reported here.
func NewRecorder(base *values.Store, options ...Option) (*Recorder, error) {
	r := &Recorder{
		base:  base,
		index: make(map[string]int),
		newID: func() string { return uuid.New().String() },
		now:   time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.schema != nil {
		root, err := schema.Resolve(*r.schema)
		if err != nil {
			return nil, fmt.Errorf("changes: resolve schema: %w", err)
		}
		r.fields = make(map[string]schema.Node)
		schema.Walk(root, func(path string, node schema.Node) {
			if node.Kind == schema.KindField {
				r.fields[path] = node
			}
		})
	}
	return r, nil
}

// Set records a new value for path: "changed" when the base store holds a
// value, "added" otherwise. Setting a path back to its base value drops the
// pending change and reports StatusUnchanged.
func (r *Recorder) Set(path string, value any) (Change, error) {
	path = schema.NormalizePath(path)
	if err := r.check(path, value); err != nil {
		return Change{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.base.Lookup(path)
	status := values.StatusAdded
	var previous any
	if exists && entry.HasValue() {
		status = values.StatusChanged
		previous = entry.Value
		if values.FormatValue(previous) == values.FormatValue(value) {
			r.drop(path)
			return Change{Path: path, Status: values.StatusUnchanged, Value: value}, nil
		}
	}
	return r.record(path, status, value, previous), nil
}

// Remove marks path for removal. Removing a pending addition just drops it.
func (r *Recorder) Remove(path string) (Change, error) {
	path = schema.NormalizePath(path)
	if err := r.check(path, nil); err != nil {
		return Change{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.base.Lookup(path)
	if !exists || !entry.HasValue() {
		if idx, pending := r.index[path]; pending && r.changes[idx].Status == values.StatusAdded {
			change := r.changes[idx]
			r.drop(path)
			change.Status = values.StatusRemoved
			return change, nil
		}
		return Change{}, fmt.Errorf("%w: %s", ErrNotPresent, path)
	}
	return r.record(path, values.StatusRemoved, nil, entry.Value), nil
}

// Reset returns path to its default value.
func (r *Recorder) Reset(path string) (Change, error) {
	path = schema.NormalizePath(path)
	if err := r.check(path, nil); err != nil {
		return Change{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var previous any
	if entry, ok := r.base.Lookup(path); ok {
		previous = entry.Value
	}
	return r.record(path, values.StatusReset, nil, previous), nil
}

// Discard drops the pending change for path.
func (r *Recorder) Discard(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drop(schema.NormalizePath(path))
}

// Changes returns pending changes in the order their paths were first edited.
func (r *Recorder) Changes() []Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Change(nil), r.changes...)
}

// Len reports the number of pending changes.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.changes)
}

// Apply returns a store with the pending changes applied to the base store.
func (r *Recorder) Apply() *values.Store {
	return ApplyTo(r.base, r.Changes())
}

// ApplyTo applies changes to store without modifying it. Removed paths are
// dropped; reset paths keep their metadata with the value cleared so the
// default is used again.
func ApplyTo(store *values.Store, changes []Change) *values.Store {
	var (
		overrides []values.Entry
		removed   []string
	)
	for _, change := range changes {
		path := schema.NormalizePath(change.Path)
		entry, _ := store.Lookup(path)
		entry.Path = path
		switch change.Status {
		case values.StatusRemoved:
			removed = append(removed, path)
			continue
		case values.StatusReset:
			entry.Value = nil
		default:
			entry.Value = change.Value
		}
		entry.Meta.Status = change.Status
		overrides = append(overrides, entry)
	}
	next := store.With(overrides...)
	if len(removed) > 0 {
		next = next.Without(removed...)
	}
	return next
}

// Paths returns the changed paths sorted lexically.
func (r *Recorder) Paths() []string {
	changes := r.Changes()
	paths := make([]string, len(changes))
	for i, change := range changes {
		paths[i] = change.Path
	}
	sort.Strings(paths)
	return paths
}

func (r *Recorder) check(path string, value any) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrUnknownPath)
	}
	if r.fields == nil {
		return nil
	}
	field, ok := r.fields[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}
	if value == nil {
		return nil
	}
	if err := field.Constraints.Check(values.FormatValue(value), field.FieldTypeOf()); err != nil {
		return fmt.Errorf("changes: %s: %w", path, err)
	}
	return nil
}

func (r *Recorder) record(path string, status values.Status, value, previous any) Change {
	change := Change{
		Path:     path,
		Status:   status,
		Value:    value,
		Previous: previous,
		At:       r.now().UTC(),
	}
	if idx, ok := r.index[path]; ok {
		change.ID = r.changes[idx].ID
		r.changes[idx] = change
		return change
	}
	change.ID = r.newID()
	r.index[path] = len(r.changes)
	r.changes = append(r.changes, change)
	return change
}

func (r *Recorder) drop(path string) bool {
	idx, ok := r.index[path]
	if !ok {
		return false
	}
	r.changes = append(r.changes[:idx], r.changes[idx+1:]...)
	delete(r.index, path)
	for i := idx; i < len(r.changes); i++ {
		r.index[r.changes[i].Path] = i
	}
	return true
}
