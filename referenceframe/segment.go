package referenceframe

import (
	"math"

	"github.com/pkg/errors"

	spatial "github.com/kinchain/kinchain/spatialmath"
)

// Link is the rigid body carried by a segment.
type Link struct {
	Mass float64
	// Frame is the pose of the center of mass frame in the segment tip frame.
	Frame spatial.Pose
	// Geometry is an opaque reference to collision geometry, carried through unchanged.
	Geometry string
}

// NewLink creates a link, rejecting negative or undefined masses.
func NewLink(mass float64, frame spatial.Pose, geometry string) (*Link, error) {
	if math.IsNaN(mass) || math.IsInf(mass, 0) || mass < 0 {
		return nil, errors.Errorf("link mass must be a finite non-negative number, got %v", mass)
	}
	return &Link{Mass: mass, Frame: frame, Geometry: geometry}, nil
}

// Segment is one joint followed by a rigid offset to the segment tip, optionally carrying a link.
type Segment struct {
	// Name identifies the segment's joint in shared joint vectors.
	Name  string
	Joint Joint
	// Tip is the pose of the segment tip in the joint frame.
	Tip  spatial.Pose
	Link *Link
}

// NewSegment creates a segment without a link.
func NewSegment(name string, joint Joint, tip spatial.Pose) Segment {
	return Segment{Name: name, Joint: joint, Tip: tip}
}

// WithLink returns a copy of the segment carrying link.
func (s Segment) WithLink(link *Link) Segment {
	s.Link = link
	return s
}

// Mass returns the mass of the segment's link, 0 without one.
func (s Segment) Mass() float64 {
	if s.Link == nil {
		return 0
	}
	return s.Link.Mass
}

// Pose returns the transform from the segment base to the segment tip at joint value q.
func (s Segment) Pose(q float64) spatial.Pose {
	return spatial.Compose(s.Joint.Pose(q), s.Tip)
}

// Twist returns the twist of the segment tip generated by joint velocity qdot at joint value q. It is expressed
// about the tip and resolved in the segment base frame.
func (s Segment) Twist(q, qdot float64) spatial.Twist {
	return s.Joint.Twist(qdot).ChangeReferencePoint(s.Pose(q).Point())
}
