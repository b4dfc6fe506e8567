package base

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCapacity(t *testing.T) {
	is := assert.New(t)

	is.NoError(ValidateCapacity(1))
	is.NoError(ValidateCapacity(42))

	for _, capacity := range []int{0, -1, -42} {
		err := ValidateCapacity(capacity)
		is.Error(err)
		is.True(errors.Is(err, ErrInvalidCapacity))
	}
	is.EqualError(ValidateCapacity(-3), "invalid capacity: must be >=1 but -3 was requested")
}

func TestKeys(t *testing.T) {
	is := assert.New(t)

	trace := []Request[int, string]{{1, "a"}, {2, "b"}, {1, "c"}}
	is.Equal([]int{1, 2, 1}, Keys(trace))
	is.Empty(Keys[int, string](nil))
}
