package kinematics

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/kinchain/kinchain/referenceframe"
	spatial "github.com/kinchain/kinchain/spatialmath"
	"github.com/kinchain/kinchain/utils"
)

// Kinematics is the result of a forward kinematics request.
type Kinematics struct {
	Layout spatial.Layout
	// Poses holds the base pose followed by the pose after every traversed segment, in the base's parent frame.
	Poses []spatial.Poses
	// Flat is Poses serialized under Layout, one row per pose. It is empty under RawTransformObject.
	Flat spatial.FlatPoses

	// Links holds the center of mass frame of every traversed segment carrying a link. Only filled when links
	// are requested.
	Links     []spatial.Poses
	LinksFlat spatial.FlatPoses
	// Mass is the total mass of the traversed links.
	Mass float64
	// CenterOfMass is the mass weighted mean of the link positions. HasCenterOfMass is false when links were not
	// requested or weigh nothing.
	CenterOfMass    spatial.Points
	HasCenterOfMass bool
}

// EndEffector returns the pose after the last traversed segment.
func (k *Kinematics) EndEffector() spatial.Poses {
	return k.Poses[len(k.Poses)-1]
}

// EndEffectorFlat returns the end effector of configuration i serialized under the layout.
func (k *Kinematics) EndEffectorFlat(i int) ([]float64, error) {
	return k.EndEffector().At(i).Flatten(k.Layout)
}

// Xs computes the pose of the base and of every segment tip for each configuration of q.
//
// Options: WithLayout, WithFloatingBase, WithLinks. With links, a chain whose links weigh nothing returns
// ErrZeroMass.
func (c *Chain) Xs(q referenceframe.Configuration, opts ...Option) (*Kinematics, error) {
	o := newOptions(opts)
	k, err := c.forward(q, o, len(c.segments))
	if err != nil {
		return nil, err
	}
	if o.links && !k.HasCenterOfMass {
		return nil, errors.Wrapf(ErrZeroMass, "chain %q", c.name)
	}
	return k, nil
}

// EndEffector computes forward kinematics through all but the last n segments. q is still the chain's full joint
// vector; joints past the truncation are ignored.
func (c *Chain) EndEffector(q referenceframe.Configuration, n int, opts ...Option) (*Kinematics, error) {
	if n < 0 || n > len(c.segments) {
		return nil, errors.Wrapf(NewTruncationError(n, len(c.segments)), "chain %q", c.name)
	}
	o := newOptions(opts)
	k, err := c.forward(q, o, len(c.segments)-n)
	if err != nil {
		return nil, err
	}
	if o.links && !k.HasCenterOfMass {
		return nil, errors.Wrapf(ErrZeroMass, "chain %q", c.name)
	}
	return k, nil
}

// forward traverses the first nSegs segments. A zero link mass leaves HasCenterOfMass false instead of failing.
func (c *Chain) forward(q referenceframe.Configuration, o options, nSegs int) (*Kinematics, error) {
	if err := c.checkDoF(q); err != nil {
		return nil, err
	}
	if o.layout != spatial.RawTransformObject {
		if _, err := o.layout.Width(); err != nil {
			return nil, err
		}
	}
	base, err := resolveFloatingBase(o.base)
	if err != nil {
		return nil, err
	}
	size, batch, err := spatial.Broadcast(q, base)
	if err != nil {
		return nil, errors.Wrapf(err, "chain %q floating base", c.name)
	}

	var linked []int
	mass := 0.
	if o.links {
		for i := 0; i < nSegs; i++ {
			if c.segments[i].Link != nil {
				linked = append(linked, i)
				mass += c.segments[i].Link.Mass
			}
		}
	}

	poses := make([][]spatial.Pose, nSegs+1)
	for i := range poses {
		poses[i] = make([]spatial.Pose, size)
	}
	links := make([][]spatial.Pose, len(linked))
	for i := range links {
		links[i] = make([]spatial.Pose, size)
	}
	com := make([]r3.Vector, size)

	err = utils.GroupWorkParallel(size, func(from, to int) error {
		for b := from; b < to; b++ {
			values := c.jointValues(q.Row(b))
			running := base.At(b)
			poses[0][b] = running
			li := 0
			for i := 0; i < nSegs; i++ {
				seg := c.segments[i]
				running = spatial.Compose(running, seg.Pose(values[i]))
				poses[i+1][b] = running
				if !o.links || seg.Link == nil {
					continue
				}
				lp := spatial.Compose(running, seg.Link.Frame)
				links[li][b] = lp
				com[b] = com[b].Add(lp.Point().Mul(seg.Link.Mass))
				li++
			}
			if mass > 0 {
				com[b] = com[b].Mul(1 / mass)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	k := &Kinematics{Layout: o.layout, Mass: mass}
	if k.Poses, err = wrapPoses(poses, batch); err != nil {
		return nil, err
	}
	if o.links {
		if k.Links, err = wrapPoses(links, batch); err != nil {
			return nil, err
		}
		if mass > 0 {
			k.HasCenterOfMass = true
			if k.CenterOfMass, err = wrapPoints(com, batch); err != nil {
				return nil, err
			}
		}
	}

	if o.layout == spatial.RawTransformObject {
		return k, nil
	}
	if k.Flat, err = spatial.StackPoses(k.Poses, o.layout); err != nil {
		return nil, err
	}
	if len(k.Links) > 0 {
		if k.LinksFlat, err = spatial.StackPoses(k.Links, o.layout); err != nil {
			return nil, err
		}
	}
	return k, nil
}

func wrapPoses(rows [][]spatial.Pose, batch bool) ([]spatial.Poses, error) {
	out := make([]spatial.Poses, len(rows))
	for i, row := range rows {
		if !batch {
			out[i] = spatial.SinglePose(row[0])
			continue
		}
		ps, err := spatial.BatchPoses(row)
		if err != nil {
			return nil, err
		}
		out[i] = ps
	}
	return out, nil
}

func wrapPoints(pts []r3.Vector, batch bool) (spatial.Points, error) {
	if !batch {
		return spatial.SinglePoint(pts[0]), nil
	}
	return spatial.BatchPoints(pts)
}
