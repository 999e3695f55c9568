package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"time"
)

// Error is the coded error carried across package boundaries
type Error struct {
	Code      Code
	Message   string
	Cause     error
	Context   map[string]string
	Stack     []Frame
	Timestamp time.Time
}

// Frame represents a stack frame
type Frame struct {
	Function string
	File     string
	Line     int
}

// InternalError is implemented by package-local error types that know how to
// present themselves as a coded *Error
type InternalError interface {
	error
	Transform() *Error
}

// New creates a coded error. cause may be nil.
func New(code Code, message string, cause error) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
		Stack:     captureStackTrace(),
	}
}

// Newf creates a coded error without a cause from a format string
func Newf(code Code, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Wrapf wraps cause under code with a formatted message
func Wrapf(code Code, cause error, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...), cause)
}

// WithAdditional appends a numbered "additional_N" context entry, copying the
// original error so the caller's value is left untouched
func WithAdditional(cause error, format string, args ...interface{}) *Error {
	note := fmt.Sprintf(format, args...)

	coded, ok := cause.(*Error)
	if !ok {
		return New(CommonInternal, note, cause).AddContext("additional_0", note)
	}

	out := &Error{
		Code:      coded.Code,
		Message:   coded.Message,
		Cause:     coded.Cause,
		Context:   make(map[string]string, len(coded.Context)+1),
		Stack:     coded.Stack,
		Timestamp: coded.Timestamp,
	}
	for k, v := range coded.Context {
		out.Context[k] = v
	}

	next := 0
	for {
		if _, exists := out.Context[fmt.Sprintf("additional_%d", next)]; !exists {
			break
		}
		next++
	}
	out.Context[fmt.Sprintf("additional_%d", next)] = note

	return out
}

// AddContext sets a context key and returns the error for chaining
func (e *Error) AddContext(key, value string) *Error {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithCause replaces the cause
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a coded error with the same code, so that
// errors.Is(err, errors.New(code, "", nil)) matches by code alone
func (e *Error) Is(target error) bool {
	var t *Error
	if !stderrors.As(target, &t) {
		return false
	}
	return e.Code.Equals(t.Code)
}

func captureStackTrace() []Frame {
	var frames []Frame
	for i := 2; i < 12; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		name := "unknown"
		if fn := runtime.FuncForPC(pc); fn != nil {
			name = fn.Name()
		}
		frames = append(frames, Frame{
			Function: name,
			File:     file,
			Line:     line,
		})
	}
	return frames
}
