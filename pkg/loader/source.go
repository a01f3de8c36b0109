package loader

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Source identifies where a schema or values document lives so loaders can
// read files, fs.FS entries, or URLs without leaking implementation details.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

type fileSource struct {
	path string
}

func (s fileSource) Location() string { return s.path }
func (s fileSource) Kind() SourceKind { return SourceKindFile }
func (s fileSource) String() string   { return s.path }

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	name string
}

func (s fsSource) Location() string { return s.name }
func (s fsSource) Kind() SourceKind { return SourceKindFS }
func (s fsSource) String() string   { return "fs:" + s.name }

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: path.Clean(strings.TrimPrefix(name, "/"))}
}

type urlSource struct {
	raw string
}

func (s urlSource) Location() string { return s.raw }
func (s urlSource) Kind() SourceKind { return SourceKindURL }
func (s urlSource) String() string   { return s.raw }

// SourceFromURL validates the supplied URL string and returns a Source.
func SourceFromURL(raw string) (Source, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("loader: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		return nil, fmt.Errorf("loader: invalid URL %q: %w", raw, err)
	}
	return urlSource{raw: raw}, nil
}

// ParseSource maps CLI style locations onto a Source: http(s) URLs become URL
// sources, everything else a file path.
func ParseSource(raw string) (Source, error) {
	location := strings.TrimSpace(raw)
	if location == "" {
		return nil, fmt.Errorf("loader: source location is required")
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return SourceFromURL(location)
	}
	return SourceFromFile(location), nil
}

// Sibling resolves ref relative to base. Chooser profiles use it to point at
// alternate setup documents stored next to the primary one. Absolute refs and
// full URLs are returned as-is.
func Sibling(base Source, ref string) (Source, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("loader: sibling reference is required")
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return SourceFromURL(ref)
	}
	if base == nil {
		return SourceFromFile(ref), nil
	}

	switch base.Kind() {
	case SourceKindURL:
		parsed, err := url.Parse(base.Location())
		if err != nil {
			return nil, fmt.Errorf("loader: parse base URL: %w", err)
		}
		resolved, err := parsed.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("loader: resolve %q: %w", ref, err)
		}
		return SourceFromURL(resolved.String())
	case SourceKindFS:
		if strings.HasPrefix(ref, "/") {
			return SourceFromFS(ref), nil
		}
		return SourceFromFS(path.Join(path.Dir(base.Location()), ref)), nil
	default:
		if filepath.IsAbs(ref) {
			return SourceFromFile(ref), nil
		}
		return SourceFromFile(filepath.Join(filepath.Dir(base.Location()), ref)), nil
	}
}
