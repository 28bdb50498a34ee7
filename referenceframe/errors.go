package referenceframe

import (
	"fmt"

	"github.com/pkg/errors"
)

// OOBErrString is a string that all OOB errors should contain, so that they can be checked for distinct from other
// Transform errors.
const OOBErrString = "input out of bounds"

// ErrEmptyConfiguration is returned when a batch of joint vectors has no rows.
var ErrEmptyConfiguration = errors.New("configuration batch cannot be empty")

// NewIncorrectDoFError returns an error indicating that the length of an input slice does not match the DoF of a chain.
func NewIncorrectDoFError(actual, expected int) error {
	return errors.Errorf("number of given inputs %d does not match the number of degrees of freedom %d", actual, expected)
}

// NewOutOfBoundsError returns an error indicating that a joint value lies outside of its limit.
func NewOutOfBoundsError(name string, value float64, limit Limit) error {
	return fmt.Errorf("joint %q: %.5f %s %v", name, value, OOBErrString, limit)
}

// NewRaggedConfigurationError is returned when rows of a batch of joint vectors have different lengths.
func NewRaggedConfigurationError(row, length, expected int) error {
	return errors.Errorf("configuration row %d has %d values, expected %d", row, length, expected)
}

// NewZeroAxisError is returned when an actuated joint is declared without a direction.
func NewZeroAxisError(jt JointType) error {
	return errors.Errorf("%s joint requires a non-zero axis", jt)
}
