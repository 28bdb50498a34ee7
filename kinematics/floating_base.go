package kinematics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	spatial "github.com/kinchain/kinchain/spatialmath"
)

// PointRotation is a floating base given as a translation and a rotation matrix.
type PointRotation struct {
	Point    r3.Vector
	Rotation mgl64.Mat3
}

// resolveFloatingBase converts the supported floating base representations into Poses:
//   - nil: the identity
//   - spatial.Pose, *spatial.Pose, PointRotation: a single base
//   - spatial.Poses: a single base or a batch, as tagged
//   - []spatial.Pose: a batch, one base per configuration
func resolveFloatingBase(base interface{}) (spatial.Poses, error) {
	switch b := base.(type) {
	case nil:
		return spatial.SinglePose(spatial.NewZeroPose()), nil
	case spatial.Pose:
		return spatial.SinglePose(b), nil
	case *spatial.Pose:
		if b == nil {
			return spatial.SinglePose(spatial.NewZeroPose()), nil
		}
		return spatial.SinglePose(*b), nil
	case PointRotation:
		return spatial.SinglePose(spatial.NewPose(b.Point, b.Rotation)), nil
	case spatial.Poses:
		return b, nil
	case []spatial.Pose:
		return spatial.BatchPoses(b)
	default:
		return spatial.Poses{}, errors.Wrapf(ErrUnknownFloatingBase, "%T", base)
	}
}
