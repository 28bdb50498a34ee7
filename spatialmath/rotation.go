package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// RotationFromAxisAngle returns the matrix rotating by angle radians, counterclockwise, about axis.
// The axis does not need to be normalized but must not be zero.
func RotationFromAxisAngle(axis r3.Vector, angle float64) mgl64.Mat3 {
	u := axis.Normalize()
	return mgl64.HomogRotate3D(angle, mgl64.Vec3{u.X, u.Y, u.Z}).Mat3()
}

// QuatToRotationMatrix converts a unit quaternion to a rotation matrix.
func QuatToRotationMatrix(q quat.Number) mgl64.Mat3 {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return mgl64.Mat3FromRows(
		mgl64.Vec3{1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y)},
		mgl64.Vec3{2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x)},
		mgl64.Vec3{2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y)},
	)
}

// RotationMatrixToQuat converts a rotation matrix to a unit quaternion.
func RotationMatrixToQuat(rot mgl64.Mat3) quat.Number {
	q := mgl64.Mat4ToQuat(rot.Mat4())
	return quat.Number{Real: q.W, Imag: q.V[0], Jmag: q.V[1], Kmag: q.V[2]}
}

// RotationMatrixToR4AA converts a rotation matrix to axis-angle form.
func RotationMatrixToR4AA(rot mgl64.Mat3) *R4AA {
	aa := QuatToR4AA(RotationMatrixToQuat(rot))
	return &aa
}

// SkewMatrix returns the skew-symmetric matrix ŵ such that ŵ·v = w × v.
func SkewMatrix(w r3.Vector) mgl64.Mat3 {
	return mgl64.Mat3FromRows(
		mgl64.Vec3{0, -w.Z, w.Y},
		mgl64.Vec3{w.Z, 0, -w.X},
		mgl64.Vec3{-w.Y, w.X, 0},
	)
}

// IsRotationMatrix returns whether rot is orthonormal with a determinant of +1, within epsilon.
func IsRotationMatrix(rot mgl64.Mat3, epsilon float64) bool {
	if math.Abs(rot.Det()-1) > epsilon {
		return false
	}
	return rot.Mul3(rot.Transpose()).ApproxEqualThreshold(mgl64.Ident3(), epsilon)
}

// RotationRows returns the rotation as a row-major nested slice, mostly for printing.
func RotationRows(rot mgl64.Mat3) [][]float64 {
	rows := make([][]float64, 3)
	for i := range rows {
		rows[i] = []float64{rot.At(i, 0), rot.At(i, 1), rot.At(i, 2)}
	}
	return rows
}

// flattenRotation writes the nine entries of rot into dst. Row-major order lists the first row first
// (m00, m01, m02, m10, ...). Transposed order lists the first column first, which is mgl64's storage order.
func flattenRotation(dst []float64, rot mgl64.Mat3, transposed bool) {
	if transposed {
		copy(dst, rot[:])
		return
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			dst[3*i+j] = rot.At(i, j)
		}
	}
}

func rotate(rot mgl64.Mat3, v r3.Vector) r3.Vector {
	out := rot.Mul3x1(mgl64.Vec3{v.X, v.Y, v.Z})
	return r3.Vector{X: out[0], Y: out[1], Z: out[2]}
}
