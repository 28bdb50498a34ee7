package spatialmath

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Batched is implemented by values that may hold a single element or a batch of elements, one per configuration.
type Batched interface {
	IsBatch() bool
	Size() int
}

// Broadcast returns the batch size that operands combine to. Single operands broadcast against any batch; two
// batches must agree on their size. The returned bool reports whether any operand is a batch.
func Broadcast(ops ...Batched) (int, bool, error) {
	size, batch := 1, false
	for _, op := range ops {
		if op == nil || !op.IsBatch() {
			continue
		}
		if !batch {
			size, batch = op.Size(), true
			continue
		}
		if op.Size() != size {
			return 0, false, NewBatchSizeError(size, op.Size())
		}
	}
	return size, batch, nil
}

// Poses is either a single pose or a batch of poses, one per configuration.
//
// The zero Poses is a single identity pose.
type Poses struct {
	poses []Pose
	batch bool
}

// SinglePose wraps one pose.
func SinglePose(p Pose) Poses {
	return Poses{poses: []Pose{p}}
}

// BatchPoses wraps a batch of poses. An empty batch is rejected.
func BatchPoses(ps []Pose) (Poses, error) {
	if len(ps) == 0 {
		return Poses{}, errors.Wrap(ErrShapeMismatch, "a batch of poses cannot be empty")
	}
	out := make([]Pose, len(ps))
	copy(out, ps)
	return Poses{poses: out, batch: true}, nil
}

// IsBatch returns whether the value holds a batch.
func (ps Poses) IsBatch() bool {
	return ps.batch
}

// Size returns the number of poses held, 1 for a single pose.
func (ps Poses) Size() int {
	if len(ps.poses) == 0 {
		return 1
	}
	return len(ps.poses)
}

// At returns pose i of a batch. A single pose is returned for any i.
func (ps Poses) At(i int) Pose {
	if len(ps.poses) == 0 {
		return NewZeroPose()
	}
	if !ps.batch {
		return ps.poses[0]
	}
	return ps.poses[i]
}

// Slice returns every pose held, a slice of length 1 for a single pose.
func (ps Poses) Slice() []Pose {
	out := make([]Pose, ps.Size())
	for i := range out {
		out[i] = ps.At(i)
	}
	return out
}

// ComposePoses composes two poses elementwise, broadcasting a single operand against a batch.
func ComposePoses(a, b Poses) (Poses, error) {
	size, batch, err := Broadcast(a, b)
	if err != nil {
		return Poses{}, err
	}
	out := make([]Pose, size)
	for i := range out {
		out[i] = Compose(a.At(i), b.At(i))
	}
	return Poses{poses: out, batch: batch}, nil
}

// Inverse inverts every pose held.
func (ps Poses) Inverse() Poses {
	out := make([]Pose, ps.Size())
	for i := range out {
		out[i] = PoseInverse(ps.At(i))
	}
	return Poses{poses: out, batch: ps.batch}
}

// Points returns the translation of every pose held.
func (ps Poses) Points() Points {
	out := make([]r3.Vector, ps.Size())
	for i := range out {
		out[i] = ps.At(i).Point()
	}
	return Points{pts: out, batch: ps.batch}
}

// TransformPoints maps every point through every pose. The result is indexed first by pose, then by point.
func (ps Poses) TransformPoints(pts []r3.Vector) [][]r3.Vector {
	out := make([][]r3.Vector, ps.Size())
	for i := range out {
		out[i] = ps.At(i).TransformPoints(pts)
	}
	return out
}

// Flatten serializes every pose held under layout, one row per pose.
func (ps Poses) Flatten(layout Layout) (*mat.Dense, error) {
	width, err := layout.Width()
	if err != nil {
		return nil, err
	}
	m := mat.NewDense(ps.Size(), width, nil)
	row := make([]float64, width)
	for i := 0; i < ps.Size(); i++ {
		ps.At(i).flattenInto(row, layout)
		m.SetRow(i, row)
	}
	return m, nil
}

// Points is either a single point or a batch of points, one per configuration.
//
// The zero Points is a single origin.
type Points struct {
	pts   []r3.Vector
	batch bool
}

// SinglePoint wraps one point.
func SinglePoint(pt r3.Vector) Points {
	return Points{pts: []r3.Vector{pt}}
}

// BatchPoints wraps a batch of points. An empty batch is rejected.
func BatchPoints(pts []r3.Vector) (Points, error) {
	if len(pts) == 0 {
		return Points{}, errors.Wrap(ErrShapeMismatch, "a batch of points cannot be empty")
	}
	out := make([]r3.Vector, len(pts))
	copy(out, pts)
	return Points{pts: out, batch: true}, nil
}

// IsBatch returns whether the value holds a batch.
func (p Points) IsBatch() bool {
	return p.batch
}

// Size returns the number of points held, 1 for a single point.
func (p Points) Size() int {
	if len(p.pts) == 0 {
		return 1
	}
	return len(p.pts)
}

// At returns point i of a batch. A single point is returned for any i.
func (p Points) At(i int) r3.Vector {
	if len(p.pts) == 0 {
		return r3.Vector{}
	}
	if !p.batch {
		return p.pts[0]
	}
	return p.pts[i]
}

// SubPoints returns a - b elementwise, broadcasting a single operand against a batch.
func SubPoints(a, b Points) (Points, error) {
	size, batch, err := Broadcast(a, b)
	if err != nil {
		return Points{}, err
	}
	out := make([]r3.Vector, size)
	for i := range out {
		out[i] = a.At(i).Sub(b.At(i))
	}
	return Points{pts: out, batch: batch}, nil
}

// Twists is either a single twist or a batch of twists, one per configuration.
type Twists struct {
	twists []Twist
	batch  bool
}

// SingleTwist wraps one twist.
func SingleTwist(t Twist) Twists {
	return Twists{twists: []Twist{t}}
}

// BatchTwists wraps a batch of twists. An empty batch is rejected.
func BatchTwists(ts []Twist) (Twists, error) {
	if len(ts) == 0 {
		return Twists{}, errors.Wrap(ErrShapeMismatch, "a batch of twists cannot be empty")
	}
	out := make([]Twist, len(ts))
	copy(out, ts)
	return Twists{twists: out, batch: true}, nil
}

// IsBatch returns whether the value holds a batch.
func (ts Twists) IsBatch() bool {
	return ts.batch
}

// Size returns the number of twists held, 1 for a single twist.
func (ts Twists) Size() int {
	if len(ts.twists) == 0 {
		return 1
	}
	return len(ts.twists)
}

// At returns twist i of a batch. A single twist is returned for any i.
func (ts Twists) At(i int) Twist {
	if len(ts.twists) == 0 {
		return Twist{}
	}
	if !ts.batch {
		return ts.twists[0]
	}
	return ts.twists[i]
}

// ChangeReferencePoint moves the reference point of every twist, broadcasting as needed.
func (ts Twists) ChangeReferencePoint(displacement Points) (Twists, error) {
	size, batch, err := Broadcast(ts, displacement)
	if err != nil {
		return Twists{}, err
	}
	out := make([]Twist, size)
	for i := range out {
		out[i] = ts.At(i).ChangeReferencePoint(displacement.At(i))
	}
	return Twists{twists: out, batch: batch}, nil
}

// RotateBy re-resolves every twist by the rotation part of the matching pose, broadcasting as needed.
func (ts Twists) RotateBy(frames Poses) (Twists, error) {
	size, batch, err := Broadcast(ts, frames)
	if err != nil {
		return Twists{}, err
	}
	out := make([]Twist, size)
	for i := range out {
		out[i] = ts.At(i).RotateBy(frames.At(i).Rotation())
	}
	return Twists{twists: out, batch: batch}, nil
}
