// Package kinematics computes forward kinematics and Jacobians of kinematic chains, alone or as a ChainDict of
// chains sharing one joint vector.
package kinematics

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/floats"

	"github.com/kinchain/kinchain/logging"
	"github.com/kinchain/kinchain/referenceframe"
)

// Chain is an ordered sequence of segments from a base to an end effector. A Chain is immutable and safe for
// concurrent use.
type Chain struct {
	name     string
	segments []referenceframe.Segment
	logger   logging.Logger

	// derived once at construction
	jointNames []string
	limits     []referenceframe.Limit
	masses     []float64
	mass       float64
}

// NewChain creates a chain from segments ordered base first. A nil logger discards logs.
func NewChain(name string, segments []referenceframe.Segment, logger logging.Logger) (*Chain, error) {
	if len(segments) == 0 {
		return nil, errors.Wrapf(ErrNoSegments, "chain %q", name)
	}
	if logger == nil {
		logger = logging.NewBlankLogger(name)
	}
	segs := make([]referenceframe.Segment, len(segments))
	copy(segs, segments)

	actuated := lo.Filter(segs, func(s referenceframe.Segment, _ int) bool { return s.Joint.Actuated() })
	c := &Chain{
		name:     name,
		segments: segs,
		logger:   logger,
		jointNames: lo.Map(actuated, func(s referenceframe.Segment, _ int) string {
			return s.Name
		}),
		limits: lo.Map(actuated, func(s referenceframe.Segment, _ int) referenceframe.Limit {
			return s.Joint.Limit
		}),
		masses: lo.Map(segs, func(s referenceframe.Segment, _ int) float64 { return s.Mass() }),
	}
	c.mass = floats.Sum(c.masses)

	logger.Debugw("built chain", "name", name, "segments", len(segs), "dof", len(c.jointNames), "mass", c.mass)
	return c, nil
}

// Name returns the name of the chain.
func (c *Chain) Name() string {
	return c.name
}

// Segments returns a copy of the chain's segments.
func (c *Chain) Segments() []referenceframe.Segment {
	out := make([]referenceframe.Segment, len(c.segments))
	copy(out, c.segments)
	return out
}

// NumSegments returns the number of segments, actuated or not.
func (c *Chain) NumSegments() int {
	return len(c.segments)
}

// DoF returns the number of actuated joints, which is the length of the chain's joint vector.
func (c *Chain) DoF() int {
	return len(c.jointNames)
}

// JointNames returns the names of the actuated segments in joint vector order.
func (c *Chain) JointNames() []string {
	return append([]string(nil), c.jointNames...)
}

// Limits returns the limits of the actuated joints in joint vector order.
func (c *Chain) Limits() []referenceframe.Limit {
	return append([]referenceframe.Limit(nil), c.limits...)
}

// MeanPose returns the joint vector at the middle of every joint's limits. Unbounded joints sit at 0.
func (c *Chain) MeanPose() []float64 {
	return lo.Map(c.limits, func(l referenceframe.Limit, _ int) float64 { return l.Mean() })
}

// Masses returns the mass carried by every segment, 0 for segments without a link.
func (c *Chain) Masses() []float64 {
	return append([]float64(nil), c.masses...)
}

// Mass returns the total mass of the chain's links.
func (c *Chain) Mass() float64 {
	return c.mass
}

// ValidateInputs checks the length of every joint vector of q and that every value lies within its joint's limits.
// All offending joints are reported together.
func (c *Chain) ValidateInputs(q referenceframe.Configuration) error {
	if err := c.checkDoF(q); err != nil {
		return err
	}
	var errs error
	for i := 0; i < q.Size(); i++ {
		for j, v := range q.Row(i) {
			if !c.limits[j].Contains(v) {
				err := referenceframe.NewOutOfBoundsError(c.jointNames[j], v, c.limits[j])
				if q.IsBatch() {
					err = errors.Wrapf(err, "configuration %d", i)
				}
				errs = multierr.Append(errs, err)
			}
		}
	}
	return errs
}

func (c *Chain) checkDoF(q referenceframe.Configuration) error {
	if q.DoF() != c.DoF() {
		return errors.Wrapf(referenceframe.NewIncorrectDoFError(q.DoF(), c.DoF()), "chain %q", c.name)
	}
	return nil
}

// jointValues returns, for every segment, the joint value it consumes from row. Fixed segments read 0.
func (c *Chain) jointValues(row []float64) []float64 {
	out := make([]float64, len(c.segments))
	idx := 0
	for i, seg := range c.segments {
		if seg.Joint.Actuated() {
			out[i] = row[idx]
			idx++
		}
	}
	return out
}
