package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-configgrid/pkg/schema"
	"github.com/goliatone/go-configgrid/pkg/values"
)

// Fixture names shipped in testdata/. The setup fixture declares 64 groups
// (65 containers with the root) and 173 fields; server/modelNumber is the
// ninth field in document order.
const (
	SetupFixture   = "config_setup.json"
	ValuesFixture  = "config_values.json"
	MetaFixture    = "config_meta.json"
	ChooserFixture = "chooser.json"
	MinimalFixture = "config_minimal.json"
)

// FixturePath returns the absolute path of a file in the shared testdata
// directory so tests in any package can reach it.
func FixturePath(name string) string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return filepath.Join("testdata", name)
	}
	return filepath.Join(filepath.Dir(file), "testdata", name)
}

// FixtureDir returns the shared testdata directory.
func FixtureDir() string {
	return filepath.Dir(FixturePath(SetupFixture))
}

// MustReadFixture returns the raw bytes of a shared fixture.
func MustReadFixture(t *testing.T, name string) []byte {
	t.Helper()

	data, err := os.ReadFile(FixturePath(name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}

// MustLoadSchema parses a schema fixture.
func MustLoadSchema(t *testing.T, name string) schema.Schema {
	t.Helper()

	s, err := LoadSchema(FixturePath(name))
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	return s
}

// LoadSchema reads a schema document from disk without requiring testing.T.
func LoadSchema(path string) (schema.Schema, error) {
	if path == "" {
		return schema.Schema{}, errors.New("testsupport: schema path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.Schema{}, fmt.Errorf("testsupport: read schema: %w", err)
	}
	doc, err := schema.ParseDocument(data, path)
	if err != nil {
		return schema.Schema{}, fmt.Errorf("testsupport: parse schema: %w", err)
	}
	return doc.Schema(), nil
}

// MustLoadStore decodes the values fixture and merges the meta fixture into
// it. Pass an empty metaName to skip metadata.
func MustLoadStore(t *testing.T, valuesName, metaName string) *values.Store {
	t.Helper()

	entries, err := values.Decode(MustReadFixture(t, valuesName))
	if err != nil {
		t.Fatalf("decode values: %v", err)
	}
	if metaName != "" {
		meta, err := values.Decode(MustReadFixture(t, metaName))
		if err != nil {
			t.Fatalf("decode meta: %v", err)
		}
		entries = values.Merge(entries, meta)
	}
	return values.NewStore(entries)
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	WriteMaybeGolden(t, path, payload)
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any, opts ...cmp.Option) string {
	return cmp.Diff(want, got, opts...)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureOutput runs a render function against a buffer and returns the
// written content.
func CaptureOutput(t *testing.T, render func(io.Writer) error) string {
	t.Helper()

	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}
