package errors

import (
	"fmt"
	"os"
)

// Error types for the lgrep search core
type ErrorType string

const (
	// Pattern errors
	ErrorTypePattern ErrorType = "pattern"

	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypePermission   ErrorType = "permission"
	ErrorTypeRead         ErrorType = "read"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// PatternError reports a pattern that failed to compile for the chosen engine.
// It is always fatal for the call and is raised before any scanning starts.
type PatternError struct {
	Expr       string
	Engine     string
	Reason     string
	Underlying error
}

// NewPatternError creates a new pattern compilation error
func NewPatternError(expr, engine, reason string, err error) *PatternError {
	return &PatternError{
		Expr:       expr,
		Engine:     engine,
		Reason:     reason,
		Underlying: err,
	}
}

// Error implements the error interface
func (e *PatternError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid pattern %q for %s engine: %s", e.Expr, e.Engine, e.Reason)
	}
	return fmt.Sprintf("invalid pattern %q for %s engine: %v", e.Expr, e.Engine, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *PatternError) Unwrap() error {
	return e.Underlying
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeRead
	switch {
	case os.IsNotExist(err):
		errorType = ErrorTypeFileNotFound
	case os.IsPermission(err):
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
	}
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// PartialFailure records a per-file error collected alongside an otherwise
// successful multi-file scan. One bad file never aborts its siblings.
type PartialFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// NewPartialFailure creates a partial failure entry from a per-file error
func NewPartialFailure(path string, err error) PartialFailure {
	return PartialFailure{Path: path, Reason: err.Error()}
}

func (f PartialFailure) String() string {
	return fmt.Sprintf("%s: %s", f.Path, f.Reason)
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error, dropping nil entries
func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}
