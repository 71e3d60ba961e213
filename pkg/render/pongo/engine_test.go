package pongo_test

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Kendogar/viewkit/pkg/render"
	"github.com/Kendogar/viewkit/pkg/render/pongo"
)

//go:embed testdata/templates/*.html
var embeddedTemplates embed.FS

func newEngine(t *testing.T, options ...pongo.Option) *pongo.Engine {
	t.Helper()

	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}

	engine, err := pongo.New(append([]pongo.Option{pongo.WithFS(templatesFS)}, options...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func newService(t *testing.T, engine *pongo.Engine, options ...render.Option) *render.Service {
	t.Helper()

	svc, err := render.New(append([]render.Option{render.WithEngine(engine)}, options...)...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestEngine_RenderLiteral(t *testing.T) {
	svc := newService(t, newEngine(t))

	got, err := svc.RenderToString(context.Background(), "hello", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello, World!" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_RenderWithModel(t *testing.T) {
	svc := newService(t, newEngine(t))

	got, err := svc.RenderToString(context.Background(), "greeting", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello, Ada!" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_RenderStructModel(t *testing.T) {
	svc := newService(t, newEngine(t))

	model := struct {
		Name string `json:"name"`
	}{Name: "Ada"}

	got, err := svc.RenderToString(context.Background(), "greeting", model)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello, Ada!" {
		t.Fatalf("unexpected output %q", got)
	}
}

// pongo2 substitutes empty output for variables the model does not carry; a
// missing field degrades the text instead of failing the render.
func TestEngine_MissingFieldRendersEmpty(t *testing.T) {
	svc := newService(t, newEngine(t))

	got, err := svc.RenderToString(context.Background(), "greeting", map[string]any{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello, !" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_NotFound(t *testing.T) {
	svc := newService(t, newEngine(t))

	_, err := svc.RenderToString(context.Background(), "DoesNotExist", map[string]any{})

	var nf *render.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Name != "DoesNotExist" {
		t.Fatalf("expected offending name in error, got %q", nf.Name)
	}
}

func TestEngine_NotFoundWithBaseDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hello.html"), []byte("Hello, World!"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	engine, err := pongo.New(pongo.WithBaseDir(dir))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	if _, err := engine.Resolve(context.Background(), "hello", true); err != nil {
		t.Fatalf("resolve existing template: %v", err)
	}

	_, err = engine.Resolve(context.Background(), "DoesNotExist", true)
	var nf *render.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Name != "DoesNotExist" {
		t.Fatalf("expected offending name in error, got %q", nf.Name)
	}
}

// A template that exists but fails to compile must surface the load error,
// not masquerade as a missing template.
func TestEngine_ParseFailureIsNotNotFound(t *testing.T) {
	engine := newEngine(t)

	_, err := engine.Resolve(context.Background(), "broken", true)
	if err == nil {
		t.Fatalf("expected load error for broken template")
	}
	if render.IsNotFound(err) {
		t.Fatalf("parse failure must not be reported as not found, got %v", err)
	}
}

func TestEngine_SanitizeFilter(t *testing.T) {
	svc := newService(t, newEngine(t))

	model := map[string]any{"body": "Hello <script>alert(1)</script><b>bold</b>"}
	got, err := svc.RenderToString(context.Background(), "unsafe", model)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello <b>bold</b>" {
		t.Fatalf("unexpected sanitized output %q", got)
	}
}

func TestEngine_GlobalsAndLookup(t *testing.T) {
	engine := newEngine(t, pongo.WithGlobals(map[string]any{"brand": "viewkit"}))
	svc := newService(t, engine, render.WithLookup(render.LookupMap{"signer": "s-1"}))

	got, err := svc.RenderToString(context.Background(), "ambient", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "viewkit|s-1" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)

	shout := func(input any, _ any) (any, error) {
		return strings.ToUpper(fmt.Sprint(input)) + "!", nil
	}
	if err := engine.RegisterFilter("shout", shout); err != nil {
		t.Fatalf("register filter: %v", err)
	}

	svc := newService(t, engine)
	got, err := svc.RenderString(context.Background(), "{{ name|shout }}", map[string]any{"name": "ada"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if got != "ADA!" {
		t.Fatalf("unexpected output %q", got)
	}

	// Filters are global to the pongo2 runtime; duplicates are rejected.
	if err := engine.RegisterFilter("shout", shout); err == nil {
		t.Fatalf("expected duplicate filter registration to fail")
	}
}

func TestEngine_WithTemplateFunc(t *testing.T) {
	engine := newEngine(t, pongo.WithTemplateFunc(map[string]any{
		"exclaim": func(s string) string { return s + "!" },
	}))

	svc := newService(t, engine)
	got, err := svc.RenderString(context.Background(), "{{ exclaim(name) }}", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if got != "Ada!" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_RenderString(t *testing.T) {
	svc := newService(t, newEngine(t))

	got, err := svc.RenderString(context.Background(), "Bye, {{ name }}!", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if got != "Bye, Ada!" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_Templates(t *testing.T) {
	engine := newEngine(t)

	want := []string{"ambient", "broken", "greeting", "hello", "unsafe"}
	if diff := cmp.Diff(want, engine.Templates()); diff != "" {
		t.Fatalf("template names mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_RequiresSource(t *testing.T) {
	if _, err := pongo.New(); err == nil {
		t.Fatalf("expected error without a template source")
	}
}
