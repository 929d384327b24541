package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that a backing source file does not exist.
	ErrNotFound = errors.New("source not found")
	// ErrParse is the class of every *ParseError.
	ErrParse = errors.New("parse failure")
)

// ParseError is a malformed row stream. Line is 1-based and counts the
// header; zero means the failure is not tied to a line.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("parse: %v", e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}
