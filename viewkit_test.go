package viewkit_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/Kendogar/viewkit"
	"github.com/Kendogar/viewkit/pkg/render/gotpl"
)

func TestRenderToString(t *testing.T) {
	fsys := fstest.MapFS{
		"hello.tmpl.html":    &fstest.MapFile{Data: []byte("Hello, World!")},
		"greeting.tmpl.html": &fstest.MapFile{Data: []byte("Hello, {{.name}}!")},
	}
	engine, err := gotpl.New(gotpl.WithFS(fsys))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	got, err := viewkit.RenderToString(context.Background(), engine, "hello", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello, World!" {
		t.Fatalf("unexpected output %q", got)
	}

	got, err = viewkit.RenderToString(context.Background(), engine, "greeting", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello, Ada!" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestNew(t *testing.T) {
	engine, err := gotpl.New(gotpl.WithFS(fstest.MapFS{
		"hello.tmpl.html": &fstest.MapFile{Data: []byte("Hello, World!")},
	}))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	svc, err := viewkit.New(viewkit.WithEngine(engine))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	got, err := svc.RenderToString(context.Background(), "hello", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello, World!" {
		t.Fatalf("unexpected output %q", got)
	}
}
