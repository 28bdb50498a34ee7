package kinematics

import (
	"github.com/pkg/errors"
)

var (
	// ErrZeroMass is returned when a center of mass is requested for chains whose links weigh nothing.
	ErrZeroMass = errors.New("cannot compute a center of mass with zero total mass")

	// ErrUnknownFloatingBase is returned when a floating base is given as an unsupported type.
	ErrUnknownFloatingBase = errors.New("unknown floating base type")

	// ErrNoSegments is returned when a chain is built from an empty list of segments.
	ErrNoSegments = errors.New("a chain needs at least one segment")
)

// NewTruncationError is returned when asked to omit more segments than a chain has.
func NewTruncationError(n, segments int) error {
	return errors.Errorf("cannot omit %d segments from a chain of %d segments", n, segments)
}

// NewUnknownChainError is returned when a chain name is not part of a ChainDict.
func NewUnknownChainError(name string) error {
	return errors.Errorf("no chain named %q", name)
}

// NewDuplicateChainError is returned when two chains of a ChainDict share a name.
func NewDuplicateChainError(name string) error {
	return errors.Errorf("chain %q is declared more than once", name)
}
