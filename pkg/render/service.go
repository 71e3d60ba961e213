package render

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Option customises the service configuration.
type Option func(*Service)

// WithEngine wires a combined resolver/runtime backend. It also enables
// RenderString, since engines can compile ad-hoc template content.
func WithEngine(engine Engine) Option {
	return func(s *Service) {
		s.resolver = engine
		s.runtime = engine
	}
}

// WithResolver injects the template resolver collaborator.
func WithResolver(resolver Resolver) Option {
	return func(s *Service) {
		s.resolver = resolver
	}
}

// WithRuntime injects the rendering runtime collaborator.
func WithRuntime(runtime Runtime) Option {
	return func(s *Service) {
		s.runtime = runtime
	}
}

// WithLookup injects the service-lookup facility threaded through every
// render session.
func WithLookup(lookup Lookup) Option {
	return func(s *Service) {
		s.lookup = lookup
	}
}

// WithGlobals seeds ambient values copied into every session's scratch store.
func WithGlobals(values map[string]any) Option {
	return func(s *Service) {
		if len(values) == 0 {
			return
		}
		if s.globals == nil {
			s.globals = make(map[string]any, len(values))
		}
		for key, value := range values {
			s.globals[key] = value
		}
	}
}

// WithLogger injects a structured logger. The service logs at debug level
// only; without a logger, output is discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Service renders a named template with a caller-supplied data model into a
// string, outside any request-dispatch path. It composes a Resolver and a
// Runtime supplied at construction and holds no mutable state of its own, so
// concurrent calls are independent.
type Service struct {
	resolver Resolver
	runtime  Runtime
	lookup   Lookup
	globals  map[string]any
	logger   *slog.Logger
}

// New constructs a Service applying the provided options. A resolver and a
// runtime are required; everything else has safe defaults.
func New(options ...Option) (*Service, error) {
	s := &Service{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.resolver == nil {
		return nil, errors.New("render: resolver is required")
	}
	if s.runtime == nil {
		return nil, errors.New("render: runtime is required")
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s, nil
}

// RenderToString resolves name, executes the template against model inside a
// fresh session, and returns the rendered text.
//
// Failures are typed: ErrEmptyName for a blank name, *NotFoundError when the
// name does not resolve, and *ExecError wrapping the original cause when the
// template body fails during execution. No partial output is ever returned.
func (s *Service) RenderToString(ctx context.Context, name string, model any) (string, error) {
	if ctx == nil {
		return "", errors.New("render: context is required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		return "", ErrEmptyName
	}

	// The name is always treated as a full path: there is no current
	// template to resolve relative names against outside a dispatch cycle.
	tmpl, err := s.resolver.Resolve(ctx, name, true)
	if err != nil {
		return "", err
	}

	return s.execute(ctx, tmpl, model)
}

// RenderString compiles ad-hoc template content and renders it with model
// through the same session and sink lifecycle as RenderToString. The resolver
// must implement StringResolver; the shipped engines do.
func (s *Service) RenderString(ctx context.Context, content string, model any) (string, error) {
	if ctx == nil {
		return "", errors.New("render: context is required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	compiler, ok := s.resolver.(StringResolver)
	if !ok {
		return "", errors.New("render: resolver does not support string templates")
	}

	tmpl, err := compiler.ResolveString(content)
	if err != nil {
		return "", err
	}

	return s.execute(ctx, tmpl, model)
}

func (s *Service) execute(ctx context.Context, tmpl Template, model any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	session := newSession(model, s.lookup, s.globals)
	sink := acquireSink()
	defer releaseSink(sink)

	start := time.Now()
	if err := s.runtime.Execute(ctx, tmpl, session, sink); err != nil {
		return "", &ExecError{Name: tmpl.Name(), Err: err}
	}

	out := sink.String()
	s.logger.Debug("template rendered",
		"template", tmpl.Name(),
		"bytes", len(out),
		"elapsed", time.Since(start),
	)
	return out, nil
}
