// Package errors re-exports the pkg/errors helpers used across the module so
// that every wrapped error carries a stack trace.
package errors

import (
	stderrors "errors"

	pkgerrors "github.com/pkg/errors"
)

func New(text string) error {
	return pkgerrors.New(text)
}

func Errorf(format string, args ...any) error {
	return pkgerrors.Errorf(format, args...)
}

// Wrap returns nil when err is nil.
func Wrap(err error, message string) error {
	return pkgerrors.Wrap(err, message)
}

func Wrapf(err error, format string, args ...any) error {
	return pkgerrors.Wrapf(err, format, args...)
}

func WithStack(err error) error {
	return pkgerrors.WithStack(err)
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}
