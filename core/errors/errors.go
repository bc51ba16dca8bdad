// Package errors provides the error types shared by the loader, store and HTTP layers.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a verse, book, translation or document was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates malformed input such as a bad query parameter or source shape
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupported indicates an unknown source format
	ErrUnsupported = errors.New("unsupported")
	// ErrLoadFailed indicates a translation could not be loaded into the corpus
	ErrLoadFailed = errors.New("load failed")
)

// NotFoundError represents a missing resource with context
type NotFoundError struct {
	Resource string // e.g. "translation", "book", "document"
	ID       string
	Err      error
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// ValidationError represents a rejected request parameter
type ValidationError struct {
	Field   string
	Value   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// IOError represents a failed read of a source file
type IOError struct {
	Operation string // "read", "open", "decompress"
	Path      string
	Err       error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError represents a structural problem inside a translation source.
// Book is set when the problem is confined to one book.
type ParseError struct {
	Format  string // "JSON", "XML", "SQLite", "YAML"
	Path    string
	Book    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	where := e.Format
	if e.Path != "" {
		where = fmt.Sprintf("%s at %s", e.Format, e.Path)
	}
	if e.Book != "" {
		return fmt.Sprintf("failed to parse %s (book %s): %s", where, e.Book, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", where, e.Message)
}

// Unwrap always includes ErrInvalidInput alongside any decoder cause.
func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Err, ErrInvalidInput}
	}
	return []error{ErrInvalidInput}
}

// UnsupportedError represents an unknown source format
type UnsupportedError struct {
	Feature string
	Reason  string
	Err     error
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnsupported
}

// LoadError reports that one translation is absent from the corpus.
// It never aborts the load of other translations.
type LoadError struct {
	Version string
	Source  string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("load %s from %s: %v", e.Version, e.Source, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Version, e.Err)
}

// Unwrap returns both the cause and ErrLoadFailed so callers can match either.
func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrLoadFailed}
	}
	return []error{e.Err, ErrLoadFailed}
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

// NewParse creates a ParseError
func NewParse(format, path, message string) *ParseError {
	return &ParseError{Format: format, Path: path, Message: message}
}

// NewBookParse creates a ParseError scoped to a single book
func NewBookParse(format, book, message string) *ParseError {
	return &ParseError{Format: format, Book: book, Message: message}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{Feature: feature, Reason: reason}
}

// NewLoad creates a LoadError
func NewLoad(version, source string, err error) *LoadError {
	return &LoadError{Version: version, Source: source, Err: err}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
