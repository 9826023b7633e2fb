package filesystem

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Every failure returned by a Sandbox operation matches
// exactly one of these with errors.Is, or none when the cause is an
// unclassified OS error.
var (
	// ErrSecurityViolation indicates a path that resolves outside the sandbox
	// root, or an attempt to remove or relocate the root itself.
	ErrSecurityViolation = errors.New("security violation")

	// ErrNotFound indicates a missing source, target or base path.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a conflicting target without overwrite permission.
	ErrAlreadyExists = errors.New("already exists")

	// ErrTypeMismatch indicates a file-vs-directory conflict.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrNotEmpty indicates a non-recursive delete of a non-empty directory.
	ErrNotEmpty = errors.New("directory not empty")

	// ErrSizeLimitExceeded indicates a read beyond the byte ceiling.
	ErrSizeLimitExceeded = errors.New("size limit exceeded")

	// ErrInvalidPattern indicates a malformed regex or glob, or a substitution
	// that does not yield a valid file name.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrInvalidArgument indicates a value outside the range an operation
	// accepts, such as a negative read limit or an oversized sequence.
	ErrInvalidArgument = errors.New("invalid argument")
)

var codes = []struct {
	kind error
	code string
}{
	{ErrSecurityViolation, "security_violation"},
	{ErrNotFound, "not_found"},
	{ErrAlreadyExists, "already_exists"},
	{ErrTypeMismatch, "type_mismatch"},
	{ErrNotEmpty, "not_empty"},
	{ErrSizeLimitExceeded, "size_limit_exceeded"},
	{ErrInvalidPattern, "invalid_pattern"},
	{ErrInvalidArgument, "invalid_args"},
}

// Error describes a failed operation. Msg is the human-readable reason shown
// to the caller; Err, when set, is the underlying OS error.
type Error struct {
	Kind error
	Op   string
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Kind == nil {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(kind error, op, path, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Msg: fmt.Sprintf(format, args...)}
}

// ioError wraps an unclassified OS failure.
func ioError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Path: path, Err: err}
}

// Code maps an error to a stable snake_case code for tool results.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.kind) {
			return c.code
		}
	}
	return "io_error"
}
