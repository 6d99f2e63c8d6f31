package input

import (
	"fmt"

	"github.com/pkg/errors"
)

type UsageError string

func (e *UsageError) Error() string {
	return string(*e)
}

func newUsageError(message string) error {
	u := UsageError(message)
	return errors.WithStack(&u)
}

// ParseError reports a request item that could not be understood.
type ParseError struct {
	Orig    string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%q: %s", e.Orig, e.Message)
}

// FileReadError reports a file referenced by a request item that could not be read.
type FileReadError struct {
	Orig string
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("%q: %v", e.Orig, e.Err)
}

func (e *FileReadError) Unwrap() error {
	return e.Err
}

// EncodingError reports an embedded file that is not UTF-8 text.
type EncodingError struct {
	Orig string
	Path string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%q: cannot embed the content of %q, not a UTF8 or ASCII-encoded text file", e.Orig, e.Path)
}

// JSONDecodeError reports a raw JSON value that failed to parse.
type JSONDecodeError struct {
	Orig string
	Err  error
}

func (e *JSONDecodeError) Error() string {
	return fmt.Sprintf("%q: %v", e.Orig, e.Err)
}

func (e *JSONDecodeError) Unwrap() error {
	return e.Err
}

func newParseError(orig, format string, args ...interface{}) error {
	return errors.WithStack(&ParseError{Orig: orig, Message: fmt.Sprintf(format, args...)})
}

// ConfigurationError reports options or arguments that cannot be used together.
type ConfigurationError struct {
	Orig    string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Orig == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Orig)
}

func NewConfigurationError(orig, message string) error {
	return errors.WithStack(&ConfigurationError{Orig: orig, Message: message})
}
