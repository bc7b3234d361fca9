package templua

import (
	"errors"
	"fmt"
)

// Sentinel errors for compilation and environment construction.
// All use prefix "templua:" for identification. Callers should use
// errors.Is/errors.As.
var (
	ErrCompile            = errors.New("templua: template compilation failed")
	ErrUnterminatedTag    = fmt.Errorf("%w: unterminated tag", ErrCompile)
	ErrContextUnavailable = errors.New("templua: context provider returned no context")
	ErrSettingsInvalid    = errors.New("templua: settings file is malformed")
	ErrScriptRead         = errors.New("templua: script file is unreadable")
)

// TagError wraps ErrUnterminatedTag with the position of the open marker
// the scanner could not match. Use errors.As to inspect.
type TagError struct {
	Offset int    // byte offset of the open marker in the template source
	Marker string // the open marker, "<<" or "<%"
	Err    error
}

// Error implements error.
func (e *TagError) Error() string {
	return fmt.Sprintf("templua: tag %q opened at offset %d: %v", e.Marker, e.Offset, e.Err)
}

// Unwrap returns the wrapped error for errors.Is/errors.As.
func (e *TagError) Unwrap() error { return e.Err }

// Compile-time check that TagError implements error.
var _ error = (*TagError)(nil)
