package render

import (
	"context"
	"io"
)

// Template is an opaque handle to a resolved template. Engines return their
// own concrete handle; the service never inspects it beyond its name.
type Template interface {
	Name() string
}

// Resolver maps a logical template name to an executable handle.
//
// A missing template is reported as *NotFoundError so callers can distinguish
// resolution failures from execution failures.
type Resolver interface {
	// Resolve locates name. fullPath indicates the name is a complete path
	// and must not be resolved relative to any calling template; outside a
	// dispatch cycle there is no current template to resolve against, so the
	// service always passes true.
	Resolve(ctx context.Context, name string, fullPath bool) (Template, error)
}

// Runtime executes a resolved template against a per-call session, writing
// rendered output into w.
type Runtime interface {
	Execute(ctx context.Context, tmpl Template, session *Session, w io.Writer) error
}

// StringResolver is implemented by resolvers that can compile ad-hoc template
// content supplied as a string rather than loaded by name.
type StringResolver interface {
	ResolveString(content string) (Template, error)
}

// Engine bundles both collaborator roles behind one value, which is how the
// shipped template backends are packaged. Hosts with split collaborators can
// wire a Resolver and Runtime independently instead.
type Engine interface {
	Resolver
	Runtime
	StringResolver

	// Name identifies the engine for registry purposes.
	Name() string

	// Templates enumerates the loadable template names, where the backing
	// store permits enumeration. Engines may return nil.
	Templates() []string
}
