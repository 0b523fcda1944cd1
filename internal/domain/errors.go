package domain

import (
	"errors"
	"fmt"
)

var (
	ErrParse                = errors.New("document cannot be opened as valid structured content")
	ErrStructuralMismatch   = errors.New("span coordinate does not resolve against the document")
	ErrUnsupportedFormat    = errors.New("unsupported document format")
	ErrFileTooLarge         = errors.New("file exceeds maximum allowed size")
	ErrEmptyTarget          = errors.New("target description is empty")
	ErrGeneratorUnavailable = errors.New("rewrite generator is not configured")
	ErrStorageUnavailable   = errors.New("result storage is not configured")
	ErrUploadFailed         = errors.New("result upload to storage failed")
)

// ParseError reports that a snapshot is not a valid document of its
// declared format. It matches ErrParse.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// NewParseError wraps err as a ParseError for format f.
func NewParseError(f Format, err error) *ParseError {
	return &ParseError{Format: f, Err: err}
}

// StructuralMismatchError reports a span whose coordinate is invalid
// against the current document state. It matches ErrStructuralMismatch.
type StructuralMismatchError struct {
	Format  Format
	Section SectionLabel
	Index   int
	Detail  string
}

func (e *StructuralMismatchError) Error() string {
	return fmt.Sprintf("%s: %s span %d: %s", e.Format, e.Section, e.Index, e.Detail)
}

func (e *StructuralMismatchError) Is(target error) bool { return target == ErrStructuralMismatch }
