package spatialmath

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// Twist is an instantaneous spatial velocity: a linear part and an angular part. A twist is always about
// some reference point and resolved in some frame; neither is stored, callers track both by construction.
type Twist struct {
	Linear  r3.Vector
	Angular r3.Vector
}

// NewTwist creates a twist from its linear and angular parts.
func NewTwist(linear, angular r3.Vector) Twist {
	return Twist{Linear: linear, Angular: angular}
}

// Vector returns the twist as [linear, angular].
func (t Twist) Vector() []float64 {
	return []float64{t.Linear.X, t.Linear.Y, t.Linear.Z, t.Angular.X, t.Angular.Y, t.Angular.Z}
}

// ChangeReferencePoint moves the reference point of the twist by displacement, keeping the same body motion.
//
//	linear'  = linear + angular × displacement
//	angular' = angular
func (t Twist) ChangeReferencePoint(displacement r3.Vector) Twist {
	return Twist{
		Linear:  t.Linear.Add(t.Angular.Cross(displacement)),
		Angular: t.Angular,
	}
}

// RotateBy re-resolves the twist in another frame without moving its reference point.
func (t Twist) RotateBy(rot mgl64.Mat3) Twist {
	return Twist{Linear: rotate(rot, t.Linear), Angular: rotate(rot, t.Angular)}
}

// Scale multiplies both parts of the twist by s.
func (t Twist) Scale(s float64) Twist {
	return Twist{Linear: t.Linear.Mul(s), Angular: t.Angular.Mul(s)}
}

// Differentiate returns the derivative of a pose serialized under layout, when the pose, with rotation rot,
// moves with this twist. The rotation part is ŵ·rot, flattened in the same order Pose.Flatten uses.
func (t Twist) Differentiate(rot mgl64.Mat3, layout Layout) ([]float64, error) {
	width, err := layout.Width()
	if err != nil {
		return nil, err
	}
	out := make([]float64, width)
	out[0], out[1], out[2] = t.Linear.X, t.Linear.Y, t.Linear.Z
	if layout == PositionOnly {
		return out, nil
	}
	flattenRotation(out[3:], SkewMatrix(t.Angular).Mul3(rot), layout == PositionPlusRotationMatrixFlatTransposed)
	return out, nil
}

func (t Twist) String() string {
	return fmt.Sprintf("{linear: %v, angular: %v}", t.Linear, t.Angular)
}

// TwistAlmostEqual compares both parts of two twists within epsilon.
func TwistAlmostEqual(a, b Twist, epsilon float64) bool {
	return R3VectorAlmostEqual(a.Linear, b.Linear, epsilon) && R3VectorAlmostEqual(a.Angular, b.Angular, epsilon)
}
