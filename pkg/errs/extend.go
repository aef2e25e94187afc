package errs

import (
	"github.com/pkg/errors"
)

type IExtend interface {
	Extend(message string) error
}

// Extend prefixes err with message, keeping its kind and line.
func Extend(err error, message string) error {
	if ex, ok := err.(IExtend); ok {
		return ex.Extend(message)
	}
	return errors.Wrap(err, message)
}
