package schema_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-configgrid/pkg/schema"
	"github.com/goliatone/go-configgrid/pkg/testsupport"
)

func TestResolve_Fixture(t *testing.T) {
	s := testsupport.MustLoadSchema(t, testsupport.SetupFixture)
	stats, err := schema.Count(s)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if stats.Groups != 65 || stats.Fields != 173 {
		t.Fatalf("expected 65 groups (root included) and 173 fields, got %+v", stats)
	}

	root, err := schema.Resolve(s)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	var paths []string
	schema.Walk(root, func(path string, node schema.Node) {
		if node.Ref != "" {
			t.Fatalf("unresolved ref at %s", path)
		}
		if node.Kind == schema.KindField {
			paths = append(paths, path)
		}
	})
	if paths[8] != "server/modelNumber" {
		t.Fatalf("expected ninth field to be server/modelNumber, got %s", paths[8])
	}
}

func TestResolve_DefinitionOverlay(t *testing.T) {
	s := schema.Schema{
		Root: schema.Node{Kind: schema.KindGroup, Children: []schema.Node{
			{Key: "primary", Ref: "#/definitions/database", Label: "Primary DB"},
			{Key: "port", Ref: "#/definitions/port", Default: float64(8080)},
		}},
		Definitions: map[string]schema.Node{
			"database": {Label: "Database", Children: []schema.Node{{Key: "host"}}},
			"port":     {Type: "int", Default: float64(80), Help: "TCP port"},
		},
	}
	root, err := schema.Resolve(s)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	primary := root.Children[0]
	if primary.Kind != schema.KindGroup || primary.Label != "Primary DB" || len(primary.Children) != 1 {
		t.Fatalf("unexpected primary group %+v", primary)
	}
	port := root.Children[1]
	if port.Kind != schema.KindField || port.Type != schema.FieldTypeInteger || port.Default != float64(8080) || port.Help != "TCP port" {
		t.Fatalf("unexpected port field %+v", port)
	}
	if s.Root.Children[0].Ref == "" {
		t.Fatalf("input schema was modified")
	}
}

func TestResolve_Errors(t *testing.T) {
	cases := []struct {
		name   string
		schema schema.Schema
		want   error
		path   string
	}{
		{
			name: "cycle",
			schema: schema.Schema{
				Root: schema.Node{Kind: schema.KindGroup, Children: []schema.Node{{Key: "a", Ref: "#/definitions/a"}}},
				Definitions: map[string]schema.Node{
					"a": {Ref: "#/definitions/b"},
					"b": {Ref: "#/definitions/a"},
				},
			},
			want: schema.ErrCycle,
			path: "a",
		},
		{
			name:   "unknown ref",
			schema: schema.Schema{Root: schema.Node{Kind: schema.KindGroup, Children: []schema.Node{{Key: "a", Ref: "#/definitions/nope"}}}},
			want:   schema.ErrUnknownRef,
			path:   "a",
		},
		{
			name:   "external ref",
			schema: schema.Schema{Root: schema.Node{Kind: schema.KindGroup, Children: []schema.Node{{Key: "a", Ref: "other.json#/a"}}}},
			want:   schema.ErrUnknownRef,
			path:   "a",
		},
		{
			name: "duplicate key",
			schema: schema.Schema{Root: schema.Node{Kind: schema.KindGroup, Children: []schema.Node{
				{Key: "server", Children: []schema.Node{{Key: "port"}, {Key: "port"}}},
			}}},
			want: schema.ErrDuplicateKey,
			path: "server/port",
		},
		{
			name:   "key with separator",
			schema: schema.Schema{Root: schema.Node{Kind: schema.KindGroup, Children: []schema.Node{{Key: "a/b"}}}},
			want:   schema.ErrInvalidNode,
			path:   "a/b",
		},
		{
			name: "field with children",
			schema: schema.Schema{Root: schema.Node{Kind: schema.KindGroup, Children: []schema.Node{
				{Key: "a", Kind: schema.KindField, Children: []schema.Node{{Key: "b"}}},
			}}},
			want: schema.ErrInvalidNode,
			path: "a",
		},
		{
			name:   "field root",
			schema: schema.Schema{Root: schema.Node{Kind: schema.KindField}},
			want:   schema.ErrInvalidNode,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := schema.Resolve(tc.schema)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var schemaErr *schema.Error
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected *schema.Error, got %T", err)
			}
			if schemaErr.Path != tc.path {
				t.Fatalf("expected path %q, got %q", tc.path, schemaErr.Path)
			}
		})
	}
}

func TestParseDocument(t *testing.T) {
	yamlDoc := []byte("title: Gerbera\nconfig:\n  - key: server\n    children:\n      - key: port\n        type: integer\n")
	doc, err := schema.ParseDocument(yamlDoc, "setup.yaml")
	if err != nil {
		t.Fatalf("parse yaml: %v", err)
	}
	s := doc.Schema()
	if s.Root.Label != "Gerbera" || len(s.Root.Children) != 1 {
		t.Fatalf("unexpected schema %+v", s.Root)
	}
	if err := doc.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	if _, err := schema.ParseDocument([]byte("  "), ""); err == nil {
		t.Fatalf("expected error for empty document")
	}
	if _, err := schema.ParseDocument([]byte("{config: ["), "broken.json"); err == nil {
		t.Fatalf("expected error for malformed document")
	}
}

func TestConstraints_Check(t *testing.T) {
	lo, hi := 1.0, 65535.0
	minLen, maxLen := 2, 4
	cases := []struct {
		name  string
		c     *schema.Constraints
		value string
		ft    schema.FieldType
		ok    bool
	}{
		{"nil constraints", nil, "anything", schema.FieldTypeString, true},
		{"empty value", &schema.Constraints{Min: &lo}, "", schema.FieldTypeInteger, true},
		{"in range", &schema.Constraints{Min: &lo, Max: &hi}, "49152", schema.FieldTypeInteger, true},
		{"above max", &schema.Constraints{Max: &hi}, "70000", schema.FieldTypeInteger, false},
		{"below min", &schema.Constraints{Min: &lo}, "0", schema.FieldTypeNumber, false},
		{"not integer", &schema.Constraints{}, "1.5", schema.FieldTypeInteger, false},
		{"not number", &schema.Constraints{}, "abc", schema.FieldTypeNumber, false},
		{"bad bool", &schema.Constraints{}, "maybe", schema.FieldTypeBoolean, false},
		{"too short", &schema.Constraints{MinLength: &minLen}, "a", schema.FieldTypeString, false},
		{"too long", &schema.Constraints{MaxLength: &maxLen}, "abcde", schema.FieldTypeString, false},
		{"pattern", &schema.Constraints{Pattern: `^uuid:`}, "uuid:1", schema.FieldTypeString, true},
		{"pattern miss", &schema.Constraints{Pattern: `^uuid:`}, "1", schema.FieldTypeString, false},
		{"enum", &schema.Constraints{Enum: []any{"yes", "no"}}, "no", schema.FieldTypeString, true},
		{"enum miss", &schema.Constraints{Enum: []any{"yes", "no"}}, "maybe", schema.FieldTypeString, false},
		{"enum large float", &schema.Constraints{Enum: []any{1e21}}, "1000000000000000000000", schema.FieldTypeNumber, true},
		{"enum exponent form", &schema.Constraints{Enum: []any{1e21}}, "1e+21", schema.FieldTypeNumber, false},
		{"enum bool", &schema.Constraints{Enum: []any{true}}, "true", schema.FieldTypeBoolean, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.c.Check(tc.value, tc.ft)
			if (err == nil) != tc.ok {
				t.Fatalf("Check(%q) error = %v, want ok=%v", tc.value, err, tc.ok)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	if got := schema.NormalizePath(" /server//modelNumber/ "); got != "server/modelNumber" {
		t.Fatalf("unexpected normalised path %q", got)
	}
	if got := schema.JoinPath("", "server"); got != "server" {
		t.Fatalf("unexpected join %q", got)
	}
	if got := schema.JoinPath("server", "port"); got != "server/port" {
		t.Fatalf("unexpected join %q", got)
	}
}
