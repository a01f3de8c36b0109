package loader

import (
	"path/filepath"
	"testing"
)

func TestParseSource(t *testing.T) {
	src, err := ParseSource("https://gerbera.local/api/config_setup.json")
	if err != nil || src.Kind() != SourceKindURL {
		t.Fatalf("expected url source, got %v, %v", src, err)
	}
	src, err = ParseSource(" ./config/config_setup.json ")
	if err != nil || src.Kind() != SourceKindFile {
		t.Fatalf("expected file source, got %v, %v", src, err)
	}
	if _, err := ParseSource("  "); err == nil {
		t.Fatalf("expected error for empty location")
	}
	if _, err := SourceFromURL("not a url"); err == nil {
		t.Fatalf("expected error for invalid url")
	}
}

func TestSibling(t *testing.T) {
	remote, _ := SourceFromURL("https://gerbera.local/api/config_setup.json")

	cases := []struct {
		name string
		base Source
		ref  string
		kind SourceKind
		want string
	}{
		{"file", SourceFromFile("/etc/gerbera/config_setup.json"), "config_minimal.json", SourceKindFile, filepath.Join("/etc/gerbera", "config_minimal.json")},
		{"absolute file", SourceFromFile("/etc/gerbera/config_setup.json"), "/opt/minimal.json", SourceKindFile, "/opt/minimal.json"},
		{"fs", SourceFromFS("setup/config_setup.json"), "config_minimal.json", SourceKindFS, "setup/config_minimal.json"},
		{"url", remote, "config_minimal.json", SourceKindURL, "https://gerbera.local/api/config_minimal.json"},
		{"full url", SourceFromFile("config_setup.json"), "https://cdn.local/minimal.json", SourceKindURL, "https://cdn.local/minimal.json"},
		{"no base", nil, "config_minimal.json", SourceKindFile, "config_minimal.json"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Sibling(tc.base, tc.ref)
			if err != nil {
				t.Fatalf("sibling: %v", err)
			}
			if got.Kind() != tc.kind || got.Location() != tc.want {
				t.Fatalf("got %s %q, want %s %q", got.Kind(), got.Location(), tc.kind, tc.want)
			}
		})
	}

	if _, err := Sibling(remote, ""); err == nil {
		t.Fatalf("expected error for empty ref")
	}
}

func TestNewDocument(t *testing.T) {
	if _, err := NewDocument(nil, []byte("{}")); err == nil {
		t.Fatalf("expected error for nil source")
	}
	if _, err := NewDocument(SourceFromFile("a.json"), nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
	raw := []byte("{}")
	doc, err := NewDocument(SourceFromFile("a.json"), raw)
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	raw[0] = 'x'
	if string(doc.Raw()) != "{}" {
		t.Fatalf("document should copy its payload")
	}
}
