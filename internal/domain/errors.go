package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the repo, service and handler layers.
// Handlers map ErrNotFound to 404 and ErrValidation to 422.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
)

// Invalidf returns an error wrapping ErrValidation whose message follows the
// "validation error: " prefix, e.g. Invalidf("name is required").
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
