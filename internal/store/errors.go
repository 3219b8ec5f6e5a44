package store

import (
	"errors"
	"fmt"
)

// Shared variant sentinels for the JSON-backed stores. Absence of a record is
// a valid outcome, not a storage fault; these let callers branch with
// errors.Is instead of string matching.
var (
	ErrNotFound      = errors.New("not found")
	ErrExists        = errors.New("already exists")
	ErrNotAuthorized = errors.New("not authorized")
)

// CorruptError reports a backing document that exists but cannot be parsed.
// It is a true storage fault, distinct from the variant sentinels above.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt store document %s: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// IsCorrupt reports whether err is (or wraps) a CorruptError.
func IsCorrupt(err error) bool {
	var ce *CorruptError
	return errors.As(err, &ce)
}
