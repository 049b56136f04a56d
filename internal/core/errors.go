package core

import (
	"errors"
	"fmt"
)

// ErrInvariant is matched by every *InvariantError.
var ErrInvariant = errors.New("invariant violation")

// InvariantError reports input that should have been rejected at the boundary
// but reached an aggregator anyway. It is never corrected silently.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("core.%s: %s", e.Op, e.Detail)
}

func (e *InvariantError) Unwrap() error { return ErrInvariant }

func invariant(op, format string, args ...any) error {
	return &InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)}
}
