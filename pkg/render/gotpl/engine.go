// Package gotpl provides a text/template-backed engine for the render
// service. Templates are loaded once at construction and executed by name.
//
// Missing-field policy: the template set is built with missingkey=error, so a
// model missing a referenced map key fails the render instead of silently
// rendering an empty substitution.
package gotpl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"text/template"

	"github.com/Kendogar/viewkit/pkg/render"
)

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	glob     string
	files    fs.FS
	patterns []string
	ext      string
	funcs    template.FuncMap
}

// WithGlob loads templates matching a filesystem glob pattern.
func WithGlob(pattern string) Option {
	return func(cfg *config) {
		cfg.glob = strings.TrimSpace(pattern)
	}
}

// WithFS loads templates matching the patterns from an fs.FS.
func WithFS(files fs.FS, patterns ...string) Option {
	return func(cfg *config) {
		cfg.files = files
		cfg.patterns = patterns
	}
}

// WithExtension sets the extension tried when a name does not match a loaded
// template directly.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.ext = trimmed
	}
}

// WithFuncs registers helper functions available to every template.
func WithFuncs(funcs template.FuncMap) Option {
	return func(cfg *config) {
		if len(funcs) == 0 {
			return
		}
		if cfg.funcs == nil {
			cfg.funcs = make(template.FuncMap, len(funcs))
		}
		for name, fn := range funcs {
			cfg.funcs[name] = fn
		}
	}
}

// Engine executes text/template sets. Output is not HTML-escaped; this
// backend targets plain-text rendering, and escaping is the template author's
// concern. The session's model is bound directly as the template data, so the
// caller's value reaches the template unchanged.
type Engine struct {
	mu    sync.RWMutex
	set   *template.Template
	clean *template.Template
	ext   string
}

var _ render.Engine = (*Engine)(nil)

// New constructs an Engine, parsing all templates from the configured
// sources. At least one source (glob or fs.FS) is required.
func New(options ...Option) (*Engine, error) {
	cfg := &config{
		ext: ".tmpl.html",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	if cfg.glob == "" && cfg.files == nil {
		return nil, errors.New("gotpl: need to provide either a glob pattern or fs.FS")
	}

	set := template.New("").Option("missingkey=error")
	if len(cfg.funcs) > 0 {
		set = set.Funcs(cfg.funcs)
	}

	var err error
	if cfg.glob != "" {
		set, err = set.ParseGlob(cfg.glob)
		if err != nil {
			return nil, fmt.Errorf("gotpl: parse glob %q: %w", cfg.glob, err)
		}
	}
	if cfg.files != nil {
		patterns := cfg.patterns
		if len(patterns) == 0 {
			patterns = []string{"*" + cfg.ext}
		}
		set, err = set.ParseFS(cfg.files, patterns...)
		if err != nil {
			return nil, fmt.Errorf("gotpl: parse fs: %w", err)
		}
	}

	// Clean clone kept aside so ad-hoc string templates parse into a fresh
	// set instead of mutating the shared one.
	clean, err := set.Clone()
	if err != nil {
		return nil, fmt.Errorf("gotpl: clone template set: %w", err)
	}

	return &Engine{set: set, clean: clean, ext: cfg.ext}, nil
}

// Name identifies the engine for registry purposes.
func (e *Engine) Name() string {
	return "gotpl"
}

// Resolve looks the template up by name, trying the configured extension when
// the bare name does not match.
func (e *Engine) Resolve(_ context.Context, name string, _ bool) (render.Template, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	tmpl := e.set.Lookup(name)
	if tmpl == nil && !strings.HasSuffix(name, e.ext) {
		tmpl = e.set.Lookup(name + e.ext)
	}
	if tmpl == nil {
		return nil, &render.NotFoundError{Name: name}
	}
	return &handle{name: name, tmpl: tmpl}, nil
}

// ResolveString parses ad-hoc template content into a clone of the clean set,
// so the shared set never accumulates one-off templates.
func (e *Engine) ResolveString(content string) (render.Template, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	set, err := e.clean.Clone()
	if err != nil {
		return nil, fmt.Errorf("gotpl: clone clean templates: %w", err)
	}
	// Clone does not carry options over; re-pin the missing-key policy.
	set = set.Option("missingkey=error")
	tmpl, err := set.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("gotpl: parse template string: %w", err)
	}
	return &handle{name: "inline", tmpl: tmpl}, nil
}

// Execute renders the resolved template with the session's model as data.
func (e *Engine) Execute(_ context.Context, tmpl render.Template, session *render.Session, w io.Writer) error {
	h, ok := tmpl.(*handle)
	if !ok {
		return fmt.Errorf("gotpl: foreign template handle %T", tmpl)
	}

	var model any
	if session != nil {
		model = session.Model
	}
	return h.tmpl.Execute(w, model)
}

// Templates returns the loaded template names. The unnamed root template is
// skipped.
func (e *Engine) Templates() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var names []string
	for _, tmpl := range e.set.Templates() {
		if tmpl.Name() == "" {
			continue
		}
		names = append(names, tmpl.Name())
	}
	sort.Strings(names)
	return names
}

type handle struct {
	name string
	tmpl *template.Template
}

func (h *handle) Name() string {
	return h.name
}
