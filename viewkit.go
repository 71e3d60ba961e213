// Package viewkit renders named templates to strings so code outside the
// normal dispatch path (email bodies, PDF sources, API payloads derived from
// templates) can reuse existing templates.
package viewkit

import (
	"context"

	"github.com/Kendogar/viewkit/pkg/render"
)

// Service resolves and executes templates; see render.Service.
type Service = render.Service

// Option customises service construction.
type Option = render.Option

// Engine bundles the resolver and runtime roles behind one value.
type Engine = render.Engine

// Session is the per-call ambient state handed to the runtime.
type Session = render.Session

// Lookup resolves ambient services templates may need during execution.
type Lookup = render.Lookup

// LookupMap is a map-backed Lookup for hosts without a service container.
type LookupMap = render.LookupMap

// NotFoundError reports a template name that did not resolve.
type NotFoundError = render.NotFoundError

// ExecError reports a failure raised while executing a template body.
type ExecError = render.ExecError

// ErrEmptyName reports a render call made without a template identifier.
var ErrEmptyName = render.ErrEmptyName

// New constructs a render service from the root package for convenience.
func New(options ...render.Option) (*render.Service, error) {
	return render.New(options...)
}

// WithEngine re-exports the most common wiring option.
func WithEngine(engine render.Engine) render.Option {
	return render.WithEngine(engine)
}

// RenderToString builds a one-shot service around engine and renders name
// with model. Callers rendering repeatedly should construct a Service once
// and reuse it.
func RenderToString(ctx context.Context, engine render.Engine, name string, model any) (string, error) {
	svc, err := render.New(render.WithEngine(engine))
	if err != nil {
		return "", err
	}
	return svc.RenderToString(ctx, name, model)
}
