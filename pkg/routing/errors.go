package routing

import (
	"errors"
	"fmt"
)

// Common routing errors that can be checked with errors.Is().
var (
	// ErrNoInstances is returned when a rotation is requested over zero instances.
	ErrNoInstances = errors.New("no instances configured")
)

// InvalidSizeError is returned by NewRotation for a size below one.
type InvalidSizeError struct {
	// Size is the rejected instance count.
	Size int
}

// Error implements the error interface.
func (e *InvalidSizeError) Error() string {
	return fmt.Sprintf("rotation requires at least one instance, got %d", e.Size)
}

// Is implements error matching for errors.Is().
func (e *InvalidSizeError) Is(target error) bool {
	return target == ErrNoInstances
}
