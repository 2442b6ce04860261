package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrInvalidLineHeight indicates a non-positive layout line height.
	ErrInvalidLineHeight = errors.New("layout.line_height must be positive")

	// ErrInvalidFontSize indicates a non-positive default font size.
	ErrInvalidFontSize = errors.New("layout.default_font_size must be positive")

	// ErrInvalidWidth indicates a non-positive layout width.
	ErrInvalidWidth = errors.New("layout.width must be positive")

	// ErrInvalidTimeout indicates a negative engine request timeout.
	ErrInvalidTimeout = errors.New("engine.request_timeout_ms must not be negative")

	// ErrInvalidLogLevel indicates an unrecognized logging level name.
	ErrInvalidLogLevel = errors.New("logging.level must be debug, info, warn or error")
)

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	// Path is the file path that failed to parse.
	Path string
	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
