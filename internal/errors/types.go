package errors

import (
	"fmt"
	"strings"
)

// GraphError defines the base interface for all injgraph errors
type GraphError interface {
	error
	ErrorCode() ErrorCode
	Location() SourceLocation
	Context() map[string]interface{}
	Suggestions() []string
	Unwrap() error
}

// ErrorCode represents the type of error that occurred
type ErrorCode int

const (
	UnknownErrorCode ErrorCode = iota

	// Extraction error types
	ImportErrorCode
	OutputErrorCode

	// Harness error types
	GenerationErrorCode
	TemplateErrorCode
	HarnessErrorCode
	FileSystemErrorCode

	// Reader error types
	ParseErrorCode

	ConfigurationErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case ImportErrorCode:
		return "ImportError"
	case OutputErrorCode:
		return "OutputError"
	case GenerationErrorCode:
		return "GenerationError"
	case TemplateErrorCode:
		return "TemplateError"
	case HarnessErrorCode:
		return "HarnessError"
	case FileSystemErrorCode:
		return "FileSystemError"
	case ParseErrorCode:
		return "ParseError"
	case ConfigurationErrorCode:
		return "ConfigurationError"
	default:
		return "UnknownError"
	}
}

// SourceLocation represents where an error occurred, either in a Go source
// file or in a line of extractor output
type SourceLocation struct {
	File   string // file path or stream name
	Line   int    // line number (1-based)
	Column int    // column number (1-based)
}

// String returns a formatted string representation of the location
func (s SourceLocation) String() string {
	if s.File == "" {
		return "unknown location"
	}
	if s.Line == 0 {
		return s.File
	}
	if s.Column == 0 {
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// IsEmpty returns true if the location has no useful information
func (s SourceLocation) IsEmpty() bool {
	return s.File == ""
}

// BaseError provides a common implementation of the GraphError interface
type BaseError struct {
	Code        ErrorCode              // type of error
	Message     string                 // error message
	Loc         SourceLocation         // where the error occurred
	Cause       error                  // underlying error cause
	ContextData map[string]interface{} // additional context information
	Hints       []string               // helpful suggestions for fixing the error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	msg := e.Message
	if !e.Loc.IsEmpty() {
		msg = fmt.Sprintf("%s: %s", e.Loc.String(), msg)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// ErrorCode returns the error code
func (e *BaseError) ErrorCode() ErrorCode {
	return e.Code
}

// Location returns the location where the error occurred
func (e *BaseError) Location() SourceLocation {
	return e.Loc
}

// Context returns the error context data
func (e *BaseError) Context() map[string]interface{} {
	if e.ContextData == nil {
		return make(map[string]interface{})
	}
	return e.ContextData
}

// Suggestions returns helpful suggestions for fixing the error
func (e *BaseError) Suggestions() []string {
	return e.Hints
}

// Unwrap returns the underlying error cause for error chain inspection
func (e *BaseError) Unwrap() error {
	return e.Cause
}

// WithLocation adds location information to the error
func (e *BaseError) WithLocation(loc SourceLocation) *BaseError {
	e.Loc = loc
	return e
}

// WithCause adds an underlying error cause
func (e *BaseError) WithCause(cause error) *BaseError {
	e.Cause = cause
	return e
}

// WithContext adds context data to the error
func (e *BaseError) WithContext(key string, value interface{}) *BaseError {
	if e.ContextData == nil {
		e.ContextData = make(map[string]interface{})
	}
	e.ContextData[key] = value
	return e
}

// WithSuggestion adds a helpful suggestion for fixing the error
func (e *BaseError) WithSuggestion(suggestion string) *BaseError {
	e.Hints = append(e.Hints, suggestion)
	return e
}

// New creates a new BaseError with the specified code and message
func New(code ErrorCode, message string) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
		Hints:   make([]string, 0),
	}
}

// Newf creates a new BaseError with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *BaseError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a new error that wraps another error
func Wrap(code ErrorCode, message string, cause error) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Hints:   make([]string, 0),
	}
}

// Wrapf creates a new error that wraps another error with formatted message
func Wrapf(code ErrorCode, cause error, format string, args ...interface{}) *BaseError {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

// ImportError reports a package whose symbols could not be loaded. It aborts
// the whole extraction run.
type ImportError struct {
	*BaseError
	Package string
}

// NewImportError creates an import error for the given package path
func NewImportError(pkg string, cause error) *ImportError {
	return &ImportError{
		BaseError: Wrap(ImportErrorCode, fmt.Sprintf("failed to import package '%s'", pkg), cause).
			WithContext("package", pkg),
		Package: pkg,
	}
}

// ParseError reports a malformed line of extractor output
type ParseError struct {
	*BaseError
	Line int
	Text string
}

// NewParseError creates a parse error for a line of the given stream
func NewParseError(stream string, line int, text string, cause error) *ParseError {
	return &ParseError{
		BaseError: Wrap(ParseErrorCode, "malformed record", cause).
			WithLocation(SourceLocation{File: stream, Line: line}).
			WithContext("text", text),
		Line: line,
		Text: text,
	}
}

// HarnessError reports a failed harness build or run, including the tail of
// its standard error
type HarnessError struct {
	*BaseError
	Stderr string
}

// NewHarnessError creates a harness error
func NewHarnessError(dir, stderr string, cause error) *HarnessError {
	err := &HarnessError{
		BaseError: Wrap(HarnessErrorCode, fmt.Sprintf("harness in '%s' failed", dir), cause).
			WithContext("dir", dir),
		Stderr: strings.TrimSpace(stderr),
	}
	if strings.Contains(stderr, "no required module provides package github.com/toyz/injgraph") {
		err.WithSuggestion("add github.com/toyz/injgraph to the target module: go get github.com/toyz/injgraph")
	}
	return err
}

// IsCode reports whether any error in err's chain carries the given code
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		if ge, ok := err.(GraphError); ok && ge.ErrorCode() == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
