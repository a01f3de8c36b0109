package loader_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	internalloader "github.com/goliatone/go-configgrid/internal/loader"
	pkgloader "github.com/goliatone/go-configgrid/pkg/loader"
)

func TestLoader_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config_setup.json")
	if err := os.WriteFile(path, []byte(`{"config":[]}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	l := internalloader.New(pkgloader.NewOptions())
	doc, err := l.Load(context.Background(), pkgloader.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != `{"config":[]}` {
		t.Fatalf("unexpected payload %q", doc.Raw())
	}
	if doc.Source().Kind() != pkgloader.SourceKindFile {
		t.Fatalf("unexpected source kind %q", doc.Source().Kind())
	}
}

func TestLoader_FS(t *testing.T) {
	files := fstest.MapFS{
		"setup/config_setup.json": {Data: []byte(`{"config":[]}`)},
	}
	l := internalloader.New(pkgloader.NewOptions(pkgloader.WithFileSystem(files)))

	if _, err := l.Load(context.Background(), pkgloader.SourceFromFS("/setup/config_setup.json")); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := l.Load(context.Background(), pkgloader.SourceFromFS("missing.json")); err == nil {
		t.Fatalf("expected error for missing entry")
	}
}

func TestLoader_HTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/config_values.json":
			_, _ = w.Write([]byte(`{"values":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	src, err := pkgloader.SourceFromURL(server.URL + "/config_values.json")
	if err != nil {
		t.Fatalf("source: %v", err)
	}

	disabled := internalloader.New(pkgloader.NewOptions())
	if _, err := disabled.Load(context.Background(), src); err == nil || !strings.Contains(err.Error(), "http support disabled") {
		t.Fatalf("expected http disabled error, got %v", err)
	}

	l := internalloader.New(pkgloader.NewOptions(pkgloader.WithHTTP(5 * time.Second)))
	doc, err := l.Load(context.Background(), src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != `{"values":[]}` {
		t.Fatalf("unexpected payload %q", doc.Raw())
	}

	missing, _ := pkgloader.SourceFromURL(server.URL + "/nope.json")
	if _, err := l.Load(context.Background(), missing); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestLoader_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := internalloader.New(pkgloader.NewOptions())
	if _, err := l.Load(ctx, pkgloader.SourceFromFile("whatever.json")); err == nil {
		t.Fatalf("expected context error")
	}
}
