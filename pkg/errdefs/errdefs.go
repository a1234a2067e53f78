// Package errdefs defines the error categories the fastseq CLI reports:
// configuration, processing, parse and IO failures. Every error that
// reaches the top level belongs to exactly one category, checked with
// errors.Is against the sentinels below.
package errdefs

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrConfiguration = errors.New("invalid configuration")
	ErrProcessing    = errors.New("external tool failed")
	ErrParse         = errors.New("report parse failed")
	ErrIO            = errors.New("write failed")
)

// Configurationf reports invalid CLI input, manifest data or plan wiring.
func Configurationf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrConfiguration, format, args...)
}

// IO wraps a write failure of the final output.
func IO(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(errors.WithMessage(ErrIO, err.Error()), msg)
}

// ProcessError is returned when an external invocation exits non-zero. It
// names both the sample and the step so the failure can be located without
// reading the tool logs.
type ProcessError struct {
	Sample string
	Step   string
	Err    error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("sample %q: step %q: %v", e.Sample, e.Step, e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }

func (e *ProcessError) Is(target error) bool { return target == ErrProcessing }

// ParseError is returned when a report file or an expected field inside it
// is missing for a sample.
type ParseError struct {
	Sample string
	Report string
	Field  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("sample %q: report %s: missing field %q", e.Sample, e.Report, e.Field)
	}
	return fmt.Sprintf("sample %q: report %s: %v", e.Sample, e.Report, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }
