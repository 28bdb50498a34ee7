package spatialmath

import (
	"github.com/pkg/errors"
)

var (
	// ErrShapeMismatch is returned when two batched operands cannot be broadcast against each other.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrUnsupportedLayout is returned when a value cannot be serialized into the requested layout.
	ErrUnsupportedLayout = errors.New("unsupported layout")
)

// NewUnsupportedLayoutError is used when a layout is recognized but not implemented, or not recognized at all.
func NewUnsupportedLayoutError(layout Layout) error {
	return errors.Wrapf(ErrUnsupportedLayout, "%v", layout)
}

// NewBatchSizeError is used when two batches of different sizes are combined.
func NewBatchSizeError(a, b int) error {
	return errors.Wrapf(ErrShapeMismatch, "cannot combine a batch of %d with a batch of %d", a, b)
}
