package interfaces

import (
	"errors"
	"fmt"
)

// ParseError reports a problem scanning a single line or section of a
// Markdown file. Parse errors are collected rather than raised so that one
// malformed line does not abort an entire document or sync pass.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse %s: %s", e.Path, e.Message)
}

// ValidationError reports that a value failed a structural invariant before
// it reached storage (for example, an entity with an empty title).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation: %s", e.Message)
}

// NotFoundError reports that a lookup by identifier or permalink found no
// matching record.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// IsNotFound reports whether err is, or wraps, a *NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// ConflictError reports that a write would violate a uniqueness constraint,
// such as two entities claiming the same permalink.
type ConflictError struct {
	Resource string
	Key      string
	Reason   string
}

func (e *ConflictError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s conflict on %s: %s", e.Resource, e.Key, e.Reason)
	}
	return fmt.Sprintf("%s conflict on %s", e.Resource, e.Key)
}

// IOError wraps a filesystem failure encountered while scanning or reading a
// Markdown file.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// StoreError wraps a failure from the underlying SQLite-backed graph store
// or search index that does not fit a more specific category.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
