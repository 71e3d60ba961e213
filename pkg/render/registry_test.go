package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Kendogar/viewkit/pkg/render"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := render.NewRegistry()

	engine := &fakeEngine{templates: map[string]string{}}
	if err := registry.Register(engine); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := registry.Get("fake")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != engine {
		t.Fatalf("expected the registered engine back")
	}
	if !registry.Has("fake") {
		t.Fatalf("Has should report registered engines")
	}
}

func TestRegistry_DuplicateNamesRejected(t *testing.T) {
	registry := render.NewRegistry()
	registry.MustRegister(&fakeEngine{templates: map[string]string{}})

	if err := registry.Register(&fakeEngine{templates: map[string]string{}}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	registry := render.NewRegistry()

	if _, err := registry.Get("missing"); err == nil {
		t.Fatalf("expected error for unknown engine")
	}
	if registry.Has("missing") {
		t.Fatalf("Has should report unknown engines as absent")
	}
}

func TestRegistry_ListSorted(t *testing.T) {
	registry := render.NewRegistry()
	registry.MustRegister(namedEngine{fakeEngine: &fakeEngine{templates: map[string]string{}}, name: "zeta"})
	registry.MustRegister(namedEngine{fakeEngine: &fakeEngine{templates: map[string]string{}}, name: "alpha"})

	want := []string{"alpha", "zeta"}
	if diff := cmp.Diff(want, registry.List()); diff != "" {
		t.Fatalf("registry list mismatch (-want +got):\n%s", diff)
	}
}

type namedEngine struct {
	*fakeEngine
	name string
}

func (e namedEngine) Name() string { return e.name }
