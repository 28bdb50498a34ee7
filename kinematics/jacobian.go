package kinematics

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/kinchain/kinchain/referenceframe"
	spatial "github.com/kinchain/kinchain/spatialmath"
	"github.com/kinchain/kinchain/utils"
)

// Jacobian maps joint velocities to the velocity of an end effector. Each configuration has one rows x cols
// matrix, one column per actuated joint. The rows depend on the layout:
//   - PositionOnly: 3, the linear velocity of the end effector
//   - PositionPlusRotationMatrixFlat and PositionPlusRotationMatrixFlatTransposed: 12, the derivative of the
//     flattened end effector pose
//   - RawTransformObject: 6, the twist [linear, angular]
//
// Velocities are resolved in the base's parent frame, about the end effector.
type Jacobian struct {
	layout spatial.Layout
	rows   int
	cols   int
	batch  bool
	mats   []*mat.Dense
}

// Layout returns the layout the rows follow.
func (j *Jacobian) Layout() spatial.Layout {
	return j.layout
}

// Dims returns the shape of the matrix of each configuration.
func (j *Jacobian) Dims() (int, int) {
	return j.rows, j.cols
}

// IsBatch returns whether the Jacobian was computed for a batch of configurations.
func (j *Jacobian) IsBatch() bool {
	return j.batch
}

// Size returns the number of configurations, 1 when not batched.
func (j *Jacobian) Size() int {
	return len(j.mats)
}

// At returns the matrix of configuration i. A Jacobian without columns returns an empty matrix.
func (j *Jacobian) At(i int) *mat.Dense {
	if !j.batch {
		return j.mats[0]
	}
	return j.mats[i]
}

// Column returns column col of configuration i.
func (j *Jacobian) Column(i, col int) []float64 {
	return mat.Col(nil, col, j.At(i))
}

// jacobianRows returns the number of rows a layout produces.
func jacobianRows(layout spatial.Layout) (int, error) {
	if layout == spatial.RawTransformObject {
		return 6, nil
	}
	return layout.Width()
}

func newJacobianMatrix(rows, cols int) *mat.Dense {
	if rows == 0 || cols == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(rows, cols, nil)
}

// Jacobian computes the Jacobian of the end effector for each configuration of q, by propagating the twist of every
// actuated joint from base to tip.
//
// Options: WithLayout, WithFloatingBase, WithTruncation.
func (c *Chain) Jacobian(q referenceframe.Configuration, opts ...Option) (*Jacobian, error) {
	o := newOptions(opts)
	if o.truncate < 0 || o.truncate > len(c.segments) {
		return nil, errors.Wrapf(NewTruncationError(o.truncate, len(c.segments)), "chain %q", c.name)
	}
	if err := c.checkDoF(q); err != nil {
		return nil, err
	}
	rows, err := jacobianRows(o.layout)
	if err != nil {
		return nil, err
	}
	base, err := resolveFloatingBase(o.base)
	if err != nil {
		return nil, err
	}
	size, batch, err := spatial.Broadcast(q, base)
	if err != nil {
		return nil, errors.Wrapf(err, "chain %q floating base", c.name)
	}

	nSegs := len(c.segments) - o.truncate
	cols := 0
	for i := 0; i < nSegs; i++ {
		if c.segments[i].Joint.Actuated() {
			cols++
		}
	}

	mats := make([]*mat.Dense, size)
	err = utils.GroupWorkParallel(size, func(from, to int) error {
		group, err := c.jacobianGroup(q, base, from, to, nSegs, cols, o.layout)
		if err != nil {
			return err
		}
		for b := from; b < to; b++ {
			m := newJacobianMatrix(rows, cols)
			for k, col := range group[b-from] {
				m.SetCol(k, col)
			}
			mats[b] = m
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Jacobian{layout: o.layout, rows: rows, cols: cols, batch: batch, mats: mats}, nil
}

// jacobianGroup propagates the joint twists of configurations [from, to) together, returning the columns of every
// configuration of the group.
func (c *Chain) jacobianGroup(
	q referenceframe.Configuration,
	base spatial.Poses,
	from, to, nSegs, cols int,
	layout spatial.Layout,
) ([][][]float64, error) {
	n := to - from
	values := make([][]float64, n)
	start := make([]spatial.Pose, n)
	for b := range values {
		values[b] = c.jointValues(q.Row(from + b))
		start[b] = base.At(from + b)
	}
	running, err := spatial.BatchPoses(start)
	if err != nil {
		return nil, err
	}

	columns := make([]spatial.Twists, 0, cols)
	segPoses := make([]spatial.Pose, n)
	segTwists := make([]spatial.Twist, n)
	for i := 0; i < nSegs; i++ {
		seg := c.segments[i]
		for b := range values {
			segPoses[b] = seg.Pose(values[b][i])
		}
		local, err := spatial.BatchPoses(segPoses)
		if err != nil {
			return nil, err
		}
		total, err := spatial.ComposePoses(running, local)
		if err != nil {
			return nil, err
		}
		// every column so far is re-expressed about the new tip
		displacement, err := spatial.SubPoints(total.Points(), running.Points())
		if err != nil {
			return nil, err
		}
		for k := range columns {
			if columns[k], err = columns[k].ChangeReferencePoint(displacement); err != nil {
				return nil, err
			}
		}
		if seg.Joint.Actuated() {
			for b := range values {
				segTwists[b] = seg.Twist(values[b][i], 1)
			}
			tw, err := spatial.BatchTwists(segTwists)
			if err != nil {
				return nil, err
			}
			if tw, err = tw.RotateBy(running); err != nil {
				return nil, err
			}
			columns = append(columns, tw)
		}
		running = total
	}

	out := make([][][]float64, n)
	for b := range out {
		out[b] = make([][]float64, len(columns))
		for k, tw := range columns {
			if layout == spatial.RawTransformObject {
				out[b][k] = tw.At(b).Vector()
				continue
			}
			if out[b][k], err = tw.At(b).Differentiate(running.At(b).Rotation(), layout); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
