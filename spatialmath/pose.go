// Package spatialmath defines the rigid-motion algebra used by kinematic chains: poses (a rotation plus a
// translation), twists (spatial velocities), and the flat numeric layouts both can be serialized into.
package spatialmath

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// defaultEpsilon is the tolerance used by the AlmostEqual helpers when none is given.
const defaultEpsilon = 1e-8

// Pose is a rigid-body transform: a rotation followed by a translation. It takes points expressed in a child
// frame and expresses them in the parent frame. Poses are values; every operation returns a new Pose.
//
// The zero Pose is the identity.
type Pose struct {
	point r3.Vector
	rot   mgl64.Mat3
	// a zero Pose has no rotation set and is read as the identity
	hasRot bool
}

// NewZeroPose returns the identity pose.
func NewZeroPose() Pose {
	return Pose{rot: mgl64.Ident3(), hasRot: true}
}

// NewPose creates a pose from a translation and a rotation matrix. The rotation is assumed to be orthonormal
// with a determinant of +1; it is never re-orthonormalized.
func NewPose(point r3.Vector, rot mgl64.Mat3) Pose {
	return Pose{point: point, rot: rot, hasRot: true}
}

// NewPoseFromPoint creates a pose that translates without rotating.
func NewPoseFromPoint(point r3.Vector) Pose {
	return NewPose(point, mgl64.Ident3())
}

// NewPoseFromRotation creates a pose that rotates about the origin without translating.
func NewPoseFromRotation(rot mgl64.Mat3) Pose {
	return NewPose(r3.Vector{}, rot)
}

// NewPoseFromAxisAngle creates a pose whose rotation is given in axis-angle form.
func NewPoseFromAxisAngle(point r3.Vector, aa *R4AA) Pose {
	return NewPose(point, QuatToRotationMatrix(aa.ToQuat()))
}

// Point returns the translation of the pose.
func (p Pose) Point() r3.Vector {
	return p.point
}

// Rotation returns the rotation matrix of the pose.
func (p Pose) Rotation() mgl64.Mat3 {
	if !p.hasRot {
		return mgl64.Ident3()
	}
	return p.rot
}

// Orientation returns the rotation of the pose in axis-angle form.
func (p Pose) Orientation() *R4AA {
	return RotationMatrixToR4AA(p.Rotation())
}

// Compose returns the pose a·b: first apply b, then a.
//
//	rotation    = a.R · b.R
//	translation = a.R · b.p + a.p
func Compose(a, b Pose) Pose {
	ra := a.Rotation()
	return NewPose(rotate(ra, b.point).Add(a.point), ra.Mul3(b.Rotation()))
}

// PoseInverse returns the inverse of p, such that Compose(p, PoseInverse(p)) is the identity.
func PoseInverse(p Pose) Pose {
	rt := p.Rotation().Transpose()
	return NewPose(rotate(rt, p.point).Mul(-1), rt)
}

// Transform maps a point expressed in the child frame into the parent frame.
func (p Pose) Transform(pt r3.Vector) r3.Vector {
	return rotate(p.Rotation(), pt).Add(p.point)
}

// TransformPoints maps every point through the pose.
func (p Pose) TransformPoints(pts []r3.Vector) []r3.Vector {
	out := make([]r3.Vector, len(pts))
	for i, pt := range pts {
		out[i] = p.Transform(pt)
	}
	return out
}

// TransformTwist re-expresses a twist given in this pose's child frame, about the child origin, into the parent
// frame about the parent origin.
//
//	angular' = R·ω
//	linear'  = R·v + p × angular'
func (p Pose) TransformTwist(t Twist) Twist {
	rot := p.Rotation()
	angular := rotate(rot, t.Angular)
	return Twist{
		Linear:  rotate(rot, t.Linear).Add(p.point.Cross(angular)),
		Angular: angular,
	}
}

func (p Pose) String() string {
	return fmt.Sprintf("{point: %v, rotation: %v}", p.point, RotationRows(p.Rotation()))
}

// PoseAlmostEqual returns whether two poses are equal within the default tolerance.
func PoseAlmostEqual(a, b Pose) bool {
	return PoseAlmostEqualEps(a, b, defaultEpsilon)
}

// PoseAlmostEqualEps returns whether two poses are equal within epsilon, element by element.
func PoseAlmostEqualEps(a, b Pose, epsilon float64) bool {
	return R3VectorAlmostEqual(a.point, b.point, epsilon) &&
		a.Rotation().ApproxEqualThreshold(b.Rotation(), epsilon)
}

// R3VectorAlmostEqual compares two vectors component by component.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	d := a.Sub(b)
	return d.X*d.X <= epsilon*epsilon && d.Y*d.Y <= epsilon*epsilon && d.Z*d.Z <= epsilon*epsilon
}
