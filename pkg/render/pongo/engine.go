package pongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/Kendogar/viewkit/pkg/render"
)

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	baseDir   string
	templates fs.FS
	extension string
	funcs     map[string]any
	globals   map[string]any
}

// WithBaseDir configures the engine to load templates from a base directory
// on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS configures the engine to load templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the default template extension appended to names
// resolved without one.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithTemplateFunc registers helper functions available to every template.
func WithTemplateFunc(funcs map[string]any) Option {
	return func(cfg *config) {
		if len(funcs) == 0 {
			return
		}
		if cfg.funcs == nil {
			cfg.funcs = make(map[string]any, len(funcs))
		}
		for name, fn := range funcs {
			cfg.funcs[strings.TrimSpace(name)] = fn
		}
	}
}

// WithGlobals seeds global context values available to every template.
func WithGlobals(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globals == nil {
			cfg.globals = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globals[strings.TrimSpace(key)] = value
		}
	}
}

// Engine is a pongo2-backed template backend implementing both the resolver
// and runtime roles of render.Engine.
//
// Missing-variable policy: pongo2 substitutes empty output for variables the
// model does not carry; a model lacking a referenced field renders the
// surrounding text with an empty gap rather than failing.
type Engine struct {
	mu sync.RWMutex

	set   *pongo2.TemplateSet
	cache map[string]*pongo2.Template
	files []fs.FS
	ext   string
}

var _ render.Engine = (*Engine)(nil)

// New constructs an Engine using the provided configuration options. At least
// one template source (base dir or fs.FS) is required.
func New(options ...Option) (*Engine, error) {
	cfg := &config{
		extension: ".html",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	if cfg.baseDir == "" && cfg.templates == nil {
		return nil, errors.New("pongo: need to provide either base dir or fs.FS")
	}

	var loaders []pongo2.TemplateLoader
	var files []fs.FS
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("pongo: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
		files = append(files, os.DirFS(cfg.baseDir))
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
		files = append(files, cfg.templates)
	}

	engine := &Engine{
		set:   pongo2.NewSet("viewkit", loaders...),
		cache: make(map[string]*pongo2.Template),
		files: files,
		ext:   cfg.extension,
	}
	registerDefaultFilters()

	if len(cfg.globals) > 0 {
		if engine.set.Globals == nil {
			engine.set.Globals = make(pongo2.Context)
		}
		for key, value := range cfg.globals {
			engine.set.Globals[key] = value
		}
	}
	for name, fn := range cfg.funcs {
		if err := engine.registerTemplateFunc(name, fn); err != nil {
			return nil, fmt.Errorf("pongo: register template func %q: %w", name, err)
		}
	}

	return engine, nil
}

// Name identifies the engine for registry purposes.
func (e *Engine) Name() string {
	return "pongo"
}

// Resolve locates a template by name, appending the configured extension when
// the name carries none. Compiled templates are cached for reuse.
func (e *Engine) Resolve(_ context.Context, name string, _ bool) (render.Template, error) {
	if e == nil || e.set == nil {
		return nil, errors.New("pongo: engine is nil")
	}

	path := name
	if !strings.HasSuffix(path, e.ext) {
		path += e.ext
	}

	e.mu.RLock()
	if tmpl, ok := e.cache[path]; ok {
		e.mu.RUnlock()
		return &handle{name: name, tmpl: tmpl}, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.cache[path]; ok {
		return &handle{name: name, tmpl: tmpl}, nil
	}

	tmpl, err := e.set.FromFile(path)
	if err != nil {
		// pongo2 discards the loader's cause, so a miss cannot be told
		// apart from a parse failure through the error chain. Check the
		// sources directly instead.
		if !e.templateExists(path) {
			return nil, &render.NotFoundError{Name: name}
		}
		return nil, fmt.Errorf("pongo: load template %q: %w", path, err)
	}

	e.cache[path] = tmpl
	return &handle{name: name, tmpl: tmpl}, nil
}

// ResolveString compiles ad-hoc template content.
func (e *Engine) ResolveString(content string) (render.Template, error) {
	if e == nil || e.set == nil {
		return nil, errors.New("pongo: engine is nil")
	}

	tmpl, err := e.set.FromString(content)
	if err != nil {
		return nil, fmt.Errorf("pongo: parse template string: %w", err)
	}
	return &handle{name: "inline", tmpl: tmpl}, nil
}

// Execute renders a resolved template against the session, writing into w.
func (e *Engine) Execute(_ context.Context, tmpl render.Template, session *render.Session, w io.Writer) error {
	h, ok := tmpl.(*handle)
	if !ok {
		return fmt.Errorf("pongo: foreign template handle %T", tmpl)
	}

	viewCtx, err := sessionContext(session)
	if err != nil {
		return fmt.Errorf("pongo: convert model: %w", err)
	}

	e.mu.RLock()
	err = h.tmpl.ExecuteWriter(viewCtx, w)
	e.mu.RUnlock()

	return err
}

// Templates enumerates the template names reachable through the configured
// sources, sorted and with the engine extension trimmed.
func (e *Engine) Templates() []string {
	seen := make(map[string]struct{})
	for _, fsys := range e.files {
		_ = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if !strings.HasSuffix(path, e.ext) {
				return nil
			}
			seen[strings.TrimSuffix(path, e.ext)] = struct{}{}
			return nil
		})
	}
	if len(seen) == 0 {
		return nil
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterFilter registers a template filter under the given name. Filters
// are global to the pongo2 runtime; duplicate names return an error.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("pongo: filter name and function required")
	}

	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "custom_filter", OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}

	if pongo2.FilterExists(name) {
		return fmt.Errorf("pongo: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, filter)
}

func (e *Engine) registerTemplateFunc(name string, fn any) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || fn == nil {
		return nil
	}

	if filter, ok := fn.(pongo2.FilterFunction); ok {
		if pongo2.FilterExists(trimmed) {
			return nil
		}
		return pongo2.RegisterFilter(trimmed, filter)
	}

	if !isCallable(fn) {
		return nil
	}

	if e.set.Globals == nil {
		e.set.Globals = make(pongo2.Context)
	}
	e.set.Globals[trimmed] = fn
	return nil
}

type handle struct {
	name string
	tmpl *pongo2.Template
}

func (h *handle) Name() string {
	return h.name
}

func (e *Engine) templateExists(path string) bool {
	for _, fsys := range e.files {
		if _, err := fs.Stat(fsys, path); err == nil {
			return true
		}
	}
	return false
}
