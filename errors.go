package hotsim

import (
	"github.com/samber/hotsim/pkg/base"
)

type constError string

func (e constError) Error() string { return string(e) }

const (
	// ErrUnknownAlgorithm is returned when an algorithm name is not registered.
	ErrUnknownAlgorithm = constError("unknown algorithm")

	// ErrOptimalityViolated is returned when an online policy scores more
	// hits than the optimal policy on the same trace and capacity.
	ErrOptimalityViolated = constError("online policy beat the optimal policy")
)

var (
	// ErrInvalidCapacity is returned when a capacity below 1 is requested.
	ErrInvalidCapacity = base.ErrInvalidCapacity

	// ErrTraceMismatch is returned when the optimal policy is replayed with
	// a trace other than the one it was built for.
	ErrTraceMismatch = base.ErrTraceMismatch
)
