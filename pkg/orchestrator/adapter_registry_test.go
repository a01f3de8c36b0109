package orchestrator

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-configgrid/pkg/schema"
)

type fakeAdapter struct {
	name  string
	match bool
}

func (a fakeAdapter) Name() string           { return a.name }
func (a fakeAdapter) Detect(raw []byte) bool { return a.match }
func (a fakeAdapter) Parse(context.Context, []byte, AdapterHints) (schema.Schema, error) {
	return schema.Schema{}, nil
}

func TestAdapterRegistry_RegisterAndGet(t *testing.T) {
	registry := NewAdapterRegistry()
	if err := registry.Register(fakeAdapter{name: "Alpha"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(fakeAdapter{name: "alpha"}); err == nil {
		t.Fatalf("expected duplicate error")
	}
	if err := registry.Register(fakeAdapter{name: " "}); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := registry.Register(nil); err == nil {
		t.Fatalf("expected error for nil adapter")
	}
	if _, err := registry.Get("ALPHA"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := registry.Get("beta"); err == nil {
		t.Fatalf("expected error for missing adapter")
	}
}

func TestDefaultAdapters_Detect(t *testing.T) {
	registry := DefaultAdapters()
	if got := strings.Join(registry.List(), ","); got != "configgrid,openapi" {
		t.Fatalf("unexpected adapters %q", got)
	}

	native := registry.Detect([]byte(`{"config": []}`))
	if len(native) != 1 || native[0].Name() != AdapterNative {
		t.Fatalf("expected native adapter, got %v", native)
	}
	api := registry.Detect([]byte(openapiDocument))
	if len(api) != 1 || api[0].Name() != AdapterOpenAPI {
		t.Fatalf("expected openapi adapter, got %v", api)
	}
}

func TestResolveAdapter(t *testing.T) {
	registry := NewAdapterRegistry()
	registry.MustRegister(fakeAdapter{name: "one", match: true})
	registry.MustRegister(fakeAdapter{name: "two", match: true})
	registry.MustRegister(fakeAdapter{name: "none"})

	orch := New(WithAdapters(registry), WithDefaultAdapter("none"))
	if _, err := orch.resolveAdapter("", nil); err == nil || !strings.Contains(err.Error(), "one, two") {
		t.Fatalf("expected ambiguity error, got %v", err)
	}
	adapter, err := orch.resolveAdapter("two", nil)
	if err != nil || adapter.Name() != "two" {
		t.Fatalf("expected forced adapter, got %v %v", adapter, err)
	}

	quiet := NewAdapterRegistry()
	quiet.MustRegister(fakeAdapter{name: "none"})
	adapter, err = New(WithAdapters(quiet), WithDefaultAdapter("none")).resolveAdapter("", nil)
	if err != nil || adapter.Name() != "none" {
		t.Fatalf("expected default adapter, got %v %v", adapter, err)
	}
	if _, err := New(WithAdapters(quiet), WithDefaultAdapter("")).resolveAdapter("", nil); err == nil {
		t.Fatalf("expected detection failure without default")
	}
}

func TestNativeAdapter_TitleOverride(t *testing.T) {
	s, err := NativeAdapter{}.Parse(context.Background(), []byte(`{"title":"A","config":[{"key":"x"}]}`), AdapterHints{Title: "B"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Root.Label != "B" || len(s.Root.Children) != 1 {
		t.Fatalf("unexpected schema %+v", s.Root)
	}
}
