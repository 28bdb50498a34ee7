package kinematics

import (
	spatial "github.com/kinchain/kinchain/spatialmath"
)

// DefaultLayout is the layout used when none is requested.
const DefaultLayout = spatial.PositionPlusRotationMatrixFlat

type options struct {
	layout   spatial.Layout
	base     interface{}
	links    bool
	truncate int
}

// Option configures a forward kinematics or Jacobian request.
type Option func(*options)

// WithLayout selects the layout results are serialized under.
func WithLayout(layout spatial.Layout) Option {
	return func(o *options) {
		o.layout = layout
	}
}

// WithFloatingBase places the base of the chain at base instead of the identity. See resolveFloatingBase for the
// accepted types.
func WithFloatingBase(base interface{}) Option {
	return func(o *options) {
		o.base = base
	}
}

// WithLinks additionally computes link poses and the center of mass.
func WithLinks() Option {
	return func(o *options) {
		o.links = true
	}
}

// WithTruncation omits the last n segments of the chain from a Jacobian.
func WithTruncation(n int) Option {
	return func(o *options) {
		o.truncate = n
	}
}

func newOptions(opts []Option) options {
	o := options{layout: DefaultLayout}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
