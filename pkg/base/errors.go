package base

import "fmt"

type constError string

func (errStr constError) Error() string { return string(errStr) }

const (
	// ErrInvalidCapacity is returned by engine constructors when the
	// requested capacity is not positive.
	ErrInvalidCapacity = constError("invalid capacity")

	// ErrTraceMismatch is raised when an offline engine is driven with a key
	// that differs from the trace it was built for.
	ErrTraceMismatch = constError("access does not follow the planned trace")
)

// ValidateCapacity returns an error wrapping ErrInvalidCapacity when capacity < 1.
func ValidateCapacity(capacity int) error {
	if capacity < 1 {
		return fmt.Errorf("%w: must be >=1 but %d was requested", ErrInvalidCapacity, capacity)
	}
	return nil
}
