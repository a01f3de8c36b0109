package loader

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"
)

// Loader fetches raw setup, values, or chooser documents. The implementation
// lives in internal/loader; construct it through configgrid.NewLoader or let
// the orchestrator apply its default.
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}

// Document wraps a raw payload and its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument copies raw and records src.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("loader: source is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("loader: raw document is empty")
	}
	return Document{source: src, raw: append([]byte(nil), raw...)}, nil
}

// Source returns where the document was read from.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Options configures how a Loader resolves sources. HTTP stays disabled unless
// a client is injected or AllowHTTP is set.
type Options struct {
	// FileSystem backs SourceKindFS lookups.
	FileSystem fs.FS

	// HTTPClient is used for URL sources. A copy is taken so the timeout can be
	// applied without touching the caller's client.
	HTTPClient *http.Client

	// AllowHTTP enables URL sources with a default client when HTTPClient is
	// nil.
	AllowHTTP bool

	// RequestTimeout caps remote fetch durations.
	RequestTimeout time.Duration
}

// Option mutates Options prior to construction.
type Option func(*Options)

// WithFileSystem injects an fs.FS for SourceKindFS documents.
func WithFileSystem(files fs.FS) Option {
	return func(opts *Options) {
		opts.FileSystem = files
	}
}

// WithHTTPClient injects a custom HTTP client for remote documents.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *Options) {
		opts.HTTPClient = client
	}
}

// WithHTTP enables URL sources using a default client and the given timeout.
func WithHTTP(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.AllowHTTP = true
		opts.RequestTimeout = timeout
	}
}

// NewOptions applies options and returns the resulting configuration.
func NewOptions(options ...Option) Options {
	cfg := Options{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}
