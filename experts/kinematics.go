package experts

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/kinchain/kinchain/kinematics"
	"github.com/kinchain/kinchain/referenceframe"
	spatial "github.com/kinchain/kinchain/spatialmath"
)

// ChainTransform maps joint vectors, one per row, to the end effector pose of c serialized under the layout chosen
// by opts.
func ChainTransform(c *kinematics.Chain, opts ...kinematics.Option) TransformFunc {
	return func(x mat.Matrix) (mat.Matrix, error) {
		q, err := referenceframe.NewConfigurationFromMatrix(x)
		if err != nil {
			return nil, err
		}
		k, err := c.Xs(q, opts...)
		if err != nil {
			return nil, err
		}
		return endEffectorRows(k)
	}
}

// DictChainTransform maps shared joint vectors, one per row, to the end effector pose of the named chain of d.
func DictChainTransform(d *kinematics.ChainDict, name string, opts ...kinematics.Option) TransformFunc {
	return func(x mat.Matrix) (mat.Matrix, error) {
		q, err := referenceframe.NewConfigurationFromMatrix(x)
		if err != nil {
			return nil, err
		}
		k, err := d.XsChain(name, q, opts...)
		if err != nil {
			return nil, err
		}
		return endEffectorRows(k)
	}
}

func endEffectorRows(k *kinematics.Kinematics) (mat.Matrix, error) {
	n := k.EndEffector().Size()
	var out *mat.Dense
	for i := 0; i < n; i++ {
		row, err := k.EndEffectorFlat(i)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = mat.NewDense(n, len(row), nil)
		}
		out.SetRow(i, row)
	}
	return out, nil
}

// PoseTarget scores flattened poses by their distance to a target pose under a metric. It has no normalization
// constant, so only LogUnnormalizedProb is meaningful.
type PoseTarget struct {
	target      spatial.Pose
	layout      spatial.Layout
	metric      kinematics.Metric
	temperature float64
}

// NewPoseTarget returns an expert preferring poses close to target. Points are poses serialized under layout; the
// log probability of a pose is minus its metric distance to target divided by temperature.
func NewPoseTarget(target spatial.Pose, layout spatial.Layout, metric kinematics.Metric, temperature float64) (*PoseTarget, error) {
	if _, err := layout.Width(); err != nil {
		return nil, err
	}
	if !(temperature > 0) {
		return nil, errors.Errorf("temperature must be positive, got %v", temperature)
	}
	if metric == nil {
		metric = kinematics.NewSquaredNormMetric()
	}
	return &PoseTarget{target: target, layout: layout, metric: metric, temperature: temperature}, nil
}

// LogProb implements Expert. It always fails, a PoseTarget is only defined up to a constant.
func (p *PoseTarget) LogProb(x mat.Matrix) ([]float64, error) {
	return nil, errors.New("a pose target has no normalized log probability")
}

// LogUnnormalizedProb implements UnnormalizedExpert.
func (p *PoseTarget) LogUnnormalizedProb(x mat.Matrix) ([]float64, error) {
	r, c := x.Dims()
	out := make([]float64, r)
	row := make([]float64, c)
	for i := range out {
		mat.Row(row, i, x)
		pose, err := spatial.UnflattenPose(row, p.layout)
		if err != nil {
			return nil, errors.Wrapf(err, "point %d", i)
		}
		out[i] = -p.metric.Distance(pose, p.target) / p.temperature
	}
	return out, nil
}
