package render

import "strings"

// Lookup resolves ambient services a template may need during execution. It
// deliberately exposes a single narrow method instead of a general dependency
// container so hosts only surface the lookups templates actually use.
type Lookup interface {
	Lookup(name string) (any, bool)
}

// LookupMap is a map-backed Lookup for hosts without a service container.
type LookupMap map[string]any

func (m LookupMap) Lookup(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// Session is the per-call ambient state handed to the runtime: the bound data
// model, scratch key/value storage, a validation-state container, and the
// service-lookup facility. Exactly one session exists per render call; it is
// created at call start and never reused or shared between calls.
type Session struct {
	// Model is the caller-supplied data model, passed through by reference.
	Model any

	// Values is scratch storage scoped to this render call.
	Values map[string]any

	// Validation collects field-level messages templates or helpers record
	// during the render. It starts empty on every call.
	Validation *ValidationState

	lookup Lookup
}

func newSession(model any, lookup Lookup, globals map[string]any) *Session {
	values := make(map[string]any, len(globals))
	for key, value := range globals {
		values[key] = value
	}
	return &Session{
		Model:      model,
		Values:     values,
		Validation: NewValidationState(),
		lookup:     lookup,
	}
}

// Lookup resolves a named ambient service. Sessions without a configured
// lookup facility report every name as absent.
func (s *Session) Lookup(name string) (any, bool) {
	if s == nil || s.lookup == nil {
		return nil, false
	}
	return s.lookup.Lookup(name)
}

// ValidationState accumulates validation messages keyed by dotted field
// paths. A fresh, empty container is attached to every session.
type ValidationState struct {
	fields map[string][]string
}

// NewValidationState creates an empty validation container.
func NewValidationState() *ValidationState {
	return &ValidationState{fields: make(map[string][]string)}
}

// AddError records a message against a field path. Blank fields are recorded
// at the form level under the empty key; blank messages are dropped.
func (v *ValidationState) AddError(field, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	field = strings.TrimSpace(field)
	for _, existing := range v.fields[field] {
		if existing == message {
			return
		}
	}
	v.fields[field] = append(v.fields[field], message)
}

// Valid reports whether no messages have been recorded.
func (v *ValidationState) Valid() bool {
	return len(v.fields) == 0
}

// Errors returns the recorded messages keyed by field path. The returned map
// is a copy; mutating it does not affect the container.
func (v *ValidationState) Errors() map[string][]string {
	if len(v.fields) == 0 {
		return nil
	}
	out := make(map[string][]string, len(v.fields))
	for field, messages := range v.fields {
		out[field] = append([]string(nil), messages...)
	}
	return out
}
