// Package referenceframe defines the atomic elements of a kinematic chain: joints, the links they carry, the
// segments that pair the two, and the joint-value configurations that drive them.
package referenceframe

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	spatial "github.com/kinchain/kinchain/spatialmath"
)

// JointType enumerates the supported joint kinds.
type JointType int

const (
	// Fixed joints never move and consume no joint value.
	Fixed JointType = iota
	// Rotational joints rotate about an axis through the joint origin. Values are radians.
	Rotational
	// Prismatic joints translate along an axis. Values are in the chain's length unit.
	Prismatic
)

func (jt JointType) String() string {
	switch jt {
	case Fixed:
		return "fixed"
	case Rotational:
		return "rotational"
	case Prismatic:
		return "prismatic"
	default:
		return fmt.Sprintf("JointType(%d)", int(jt))
	}
}

// ParseJointType returns the joint type with the given name. URDF style aliases are accepted.
func ParseJointType(name string) (JointType, error) {
	switch name {
	case "fixed", "":
		return Fixed, nil
	case "rotational", "revolute", "continuous":
		return Rotational, nil
	case "prismatic", "translational":
		return Prismatic, nil
	default:
		return Fixed, errors.Errorf("unsupported joint type %q", name)
	}
}

// Limit represents the limits of motion of a joint. Unbounded positions are infinite. A zero velocity or effort
// limit is unspecified.
type Limit struct {
	Min         float64
	Max         float64
	MaxVelocity float64
	MaxEffort   float64
}

// UnboundedLimit returns a limit with no position bounds.
func UnboundedLimit() Limit {
	return Limit{Min: math.Inf(-1), Max: math.Inf(1)}
}

// Contains returns whether value is within the position bounds.
func (l Limit) Contains(value float64) bool {
	return value >= l.Min && value <= l.Max
}

// Bounded returns whether both position bounds are finite.
func (l Limit) Bounded() bool {
	return !math.IsInf(l.Min, 0) && !math.IsInf(l.Max, 0)
}

// Mean returns the midpoint of the position bounds, or 0 when either bound is infinite.
func (l Limit) Mean() float64 {
	if !l.Bounded() {
		return 0
	}
	return (l.Min + l.Max) / 2
}

// HasMaxVelocity returns whether a velocity limit was specified.
func (l Limit) HasMaxVelocity() bool {
	return l.MaxVelocity != 0
}

// HasMaxEffort returns whether an effort limit was specified.
func (l Limit) HasMaxEffort() bool {
	return l.MaxEffort != 0
}

func (l Limit) String() string {
	return fmt.Sprintf("[%.5f, %.5f]", l.Min, l.Max)
}

// Joint maps a scalar joint value to a local transform, and a joint velocity to the twist it generates.
type Joint struct {
	Type JointType
	// Axis is a unit vector in the joint frame. It is unused by fixed joints.
	Axis r3.Vector
	// Origin is the point, in the joint frame, the rotation axis passes through.
	Origin r3.Vector
	Limit  Limit
}

// NewFixedJoint returns a joint that never moves.
func NewFixedJoint() Joint {
	return Joint{Type: Fixed, Limit: Limit{}}
}

// NewRotationalJoint returns a joint rotating about axis through the joint frame origin.
func NewRotationalJoint(axis r3.Vector, limit Limit) (Joint, error) {
	return newActuatedJoint(Rotational, axis, limit)
}

// NewPrismaticJoint returns a joint translating along axis.
func NewPrismaticJoint(axis r3.Vector, limit Limit) (Joint, error) {
	return newActuatedJoint(Prismatic, axis, limit)
}

func newActuatedJoint(jt JointType, axis r3.Vector, limit Limit) (Joint, error) {
	if axis.Norm2() == 0 {
		return Joint{}, NewZeroAxisError(jt)
	}
	if limit.Min > limit.Max {
		return Joint{}, errors.Errorf("%s joint has a lower limit %v above its upper limit %v", jt, limit.Min, limit.Max)
	}
	return Joint{Type: jt, Axis: axis.Normalize(), Limit: limit}, nil
}

// WithOrigin returns a copy of the joint whose rotation axis passes through origin.
func (j Joint) WithOrigin(origin r3.Vector) Joint {
	j.Origin = origin
	return j
}

// Actuated returns whether the joint consumes a joint value.
func (j Joint) Actuated() bool {
	return j.Type != Fixed
}

// Pose returns the local transform of the joint at value q. Fixed joints ignore q.
func (j Joint) Pose(q float64) spatial.Pose {
	switch j.Type {
	case Rotational:
		rot := spatial.RotationFromAxisAngle(j.Axis, q)
		rotated := spatial.NewPoseFromRotation(rot).Transform(j.Origin)
		return spatial.NewPose(j.Origin.Sub(rotated), rot)
	case Prismatic:
		return spatial.NewPoseFromPoint(j.Axis.Mul(q))
	default:
		return spatial.NewZeroPose()
	}
}

// Twist returns the twist generated by joint velocity qdot, about the joint frame origin and resolved in the
// joint frame.
func (j Joint) Twist(qdot float64) spatial.Twist {
	switch j.Type {
	case Rotational:
		w := j.Axis.Mul(qdot)
		return spatial.NewTwist(w.Cross(j.Origin).Mul(-1), w)
	case Prismatic:
		return spatial.NewTwist(j.Axis.Mul(qdot), r3.Vector{})
	default:
		return spatial.Twist{}
	}
}
