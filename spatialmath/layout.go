package spatialmath

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Layout selects how a pose, or the derivative of a pose, is serialized into a flat vector.
type Layout int

const (
	// PositionOnly keeps the translation and drops orientation: [x, y, z].
	PositionOnly Layout = iota
	// PositionPlusRotationMatrixFlat is the translation followed by the rotation matrix in row-major order:
	// [x, y, z, m00, m01, m02, m10, ..., m22].
	PositionPlusRotationMatrixFlat
	// PositionPlusRotationMatrixFlatTransposed is the translation followed by the rotation matrix in
	// column-major order: [x, y, z, m00, m10, m20, m01, ..., m22].
	PositionPlusRotationMatrixFlatTransposed
	// PositionPlusQuaternion is reserved and not implemented; every request for it fails.
	PositionPlusQuaternion
	// RawTransformObject skips flattening; callers read the Pose values directly.
	RawTransformObject
)

var layoutNames = map[Layout]string{
	PositionOnly:                             "PositionOnly",
	PositionPlusRotationMatrixFlat:           "PositionPlusRotationMatrixFlat",
	PositionPlusRotationMatrixFlatTransposed: "PositionPlusRotationMatrixFlatTransposed",
	PositionPlusQuaternion:                   "PositionPlusQuaternion",
	RawTransformObject:                       "RawTransformObject",
}

func (l Layout) String() string {
	if name, ok := layoutNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// ParseLayout returns the layout with the given name.
func ParseLayout(name string) (Layout, error) {
	for l, n := range layoutNames {
		if n == name {
			return l, nil
		}
	}
	return 0, errors.Wrapf(ErrUnsupportedLayout, "unknown layout name %q", name)
}

// Width returns the length of a single pose serialized under the layout. Only flattening layouts have a width.
func (l Layout) Width() (int, error) {
	switch l {
	case PositionOnly:
		return 3, nil
	case PositionPlusRotationMatrixFlat, PositionPlusRotationMatrixFlatTransposed:
		return 12, nil
	case PositionPlusQuaternion, RawTransformObject:
		return 0, NewUnsupportedLayoutError(l)
	default:
		return 0, NewUnsupportedLayoutError(l)
	}
}

// Flatten serializes the pose under layout.
func (p Pose) Flatten(layout Layout) ([]float64, error) {
	width, err := layout.Width()
	if err != nil {
		return nil, err
	}
	out := make([]float64, width)
	p.flattenInto(out, layout)
	return out, nil
}

// UnflattenPose reads a pose back from a row serialized under layout. A PositionOnly row yields the identity
// rotation.
func UnflattenPose(row []float64, layout Layout) (Pose, error) {
	width, err := layout.Width()
	if err != nil {
		return Pose{}, err
	}
	if len(row) != width {
		return Pose{}, errors.Wrapf(ErrShapeMismatch, "%s row has %d values, expected %d", layout, len(row), width)
	}
	pt := r3.Vector{X: row[0], Y: row[1], Z: row[2]}
	if layout == PositionOnly {
		return NewPoseFromPoint(pt), nil
	}
	var rot mgl64.Mat3
	copy(rot[:], row[3:])
	if layout == PositionPlusRotationMatrixFlat {
		rot = rot.Transpose()
	}
	return NewPose(pt, rot), nil
}

// flattenInto assumes dst has the width of an already validated layout.
func (p Pose) flattenInto(dst []float64, layout Layout) {
	dst[0], dst[1], dst[2] = p.point.X, p.point.Y, p.point.Z
	if layout == PositionOnly {
		return
	}
	flattenRotation(dst[3:], p.Rotation(), layout == PositionPlusRotationMatrixFlatTransposed)
}

// FlatPoses is an ordered list of poses serialized under a layout. For every configuration it holds one matrix
// whose rows follow the list order and whose columns follow the layout. A single configuration holds one matrix.
type FlatPoses struct {
	layout Layout
	batch  bool
	mats   []*mat.Dense
}

// Layout returns the layout the poses were serialized under.
func (f FlatPoses) Layout() Layout {
	return f.layout
}

// IsBatch returns whether the poses were computed for a batch of configurations.
func (f FlatPoses) IsBatch() bool {
	return f.batch
}

// Size returns the number of configurations, 1 when not batched.
func (f FlatPoses) Size() int {
	return len(f.mats)
}

// At returns the matrix for configuration i. A single result returns its only matrix for any i.
func (f FlatPoses) At(i int) *mat.Dense {
	if !f.batch {
		return f.mats[0]
	}
	return f.mats[i]
}

// StackPoses serializes an ordered list of poses. Members of the list may mix single poses and batches; single
// members (typically an unbatched base) are broadcast across the batch size of the others.
func StackPoses(list []Poses, layout Layout) (FlatPoses, error) {
	width, err := layout.Width()
	if err != nil {
		return FlatPoses{}, err
	}
	if len(list) == 0 {
		return FlatPoses{}, errors.New("cannot stack an empty list of poses")
	}
	ops := make([]Batched, len(list))
	for i, ps := range list {
		ops[i] = ps
	}
	size, batch, err := Broadcast(ops...)
	if err != nil {
		return FlatPoses{}, err
	}

	mats := make([]*mat.Dense, size)
	for b := range mats {
		m := mat.NewDense(len(list), width, nil)
		row := make([]float64, width)
		for i, ps := range list {
			ps.At(b).flattenInto(row, layout)
			m.SetRow(i, row)
		}
		mats[b] = m
	}
	return FlatPoses{layout: layout, batch: batch, mats: mats}, nil
}
