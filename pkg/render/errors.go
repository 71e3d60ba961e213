package render

import (
	"errors"
	"fmt"
)

// ErrEmptyName reports a render call made without a template identifier. The
// service validates this eagerly rather than leaving it to the resolver so
// callers get a stable error instead of a backend-specific one.
var ErrEmptyName = errors.New("render: template name is required")

// NotFoundError reports that a template name did not resolve. It carries the
// requested name for diagnostics.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("render: template %q not found", e.Name)
}

// ExecError reports a failure raised while executing a template body. The
// original cause is preserved and reachable through errors.Is/As.
type ExecError struct {
	Name string
	Err  error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("render: execute template %q: %v", e.Name, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
