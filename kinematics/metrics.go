package kinematics

import (
	"gonum.org/v1/gonum/floats"

	spatial "github.com/kinchain/kinchain/spatialmath"
)

// Metric measures how far one pose is from another.
type Metric interface {
	Distance(from, to spatial.Pose) float64
}

type flexibleMetric struct {
	f func(spatial.Pose, spatial.Pose) float64
}

func (m *flexibleMetric) Distance(from, to spatial.Pose) float64 {
	return m.f(from, to)
}

// NewBasicMetric wraps a distance function as a Metric.
func NewBasicMetric(f func(spatial.Pose, spatial.Pose) float64) Metric {
	return &flexibleMetric{f}
}

// NewSquaredNormMetric returns a metric summing the squared translation difference and the squared rotation angle
// between two poses.
func NewSquaredNormMetric() Metric {
	return &flexibleMetric{sqNormDist}
}

// NewPositionOnlyMetric returns a metric comparing translations only.
func NewPositionOnlyMetric() Metric {
	return &flexibleMetric{func(from, to spatial.Pose) float64 {
		return to.Point().Sub(from.Point()).Norm2()
	}}
}

// PoseDelta returns the 6-vector [translation difference, rotation difference as a rotation vector] taking from
// to to. The rotation difference is expressed in from's frame.
func PoseDelta(from, to spatial.Pose) []float64 {
	dp := to.Point().Sub(from.Point())
	rel := from.Rotation().Transpose().Mul3(to.Rotation())
	dr := spatial.RotationMatrixToR4AA(rel).ToR3()
	return []float64{dp.X, dp.Y, dp.Z, dr.X, dr.Y, dr.Z}
}

func sqNormDist(from, to spatial.Pose) float64 {
	delta := PoseDelta(from, to)
	return floats.Dot(delta, delta)
}
