package experts

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kinchain/kinchain/kinematics"
	"github.com/kinchain/kinchain/logging"
	"github.com/kinchain/kinchain/referenceframe"
	spatial "github.com/kinchain/kinchain/spatialmath"
)

// normalizedOnly hides the unnormalized capability of a Gaussian.
type normalizedOnly struct {
	g *Gaussian
}

func (n normalizedOnly) LogProb(x mat.Matrix) ([]float64, error) {
	return n.g.LogProb(x)
}

type failingExpert struct{}

func (failingExpert) LogProb(x mat.Matrix) ([]float64, error) {
	return nil, errors.New("boom")
}

func TestGaussian(t *testing.T) {
	g, err := NewGaussian([]float64{1, 2}, 0.5)
	test.That(t, err, test.ShouldBeNil)
	x := mat.NewDense(2, 2, []float64{1, 2, 2, 2})

	lp, err := g.LogUnnormalizedProb(x)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, lp[0], test.ShouldAlmostEqual, 0.)
	test.That(t, lp[1], test.ShouldAlmostEqual, -2.)

	norm, err := g.LogProb(x)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, norm[0], test.ShouldAlmostEqual, -math.Log(2*math.Pi*0.25))
	// the normalized density factors into one normal per coordinate
	want := distuv.Normal{Mu: 1, Sigma: 0.5}.LogProb(2) + distuv.Normal{Mu: 2, Sigma: 0.5}.LogProb(2)
	test.That(t, norm[1], test.ShouldAlmostEqual, want)
	test.That(t, norm[1]-lp[1], test.ShouldAlmostEqual, norm[0]-lp[0])

	_, err = g.LogProb(mat.NewDense(1, 3, nil))
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewGaussian(nil, 1)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewGaussian([]float64{0}, 0)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestProductCapabilities(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	a, err := NewGaussian([]float64{0, 0}, 1)
	test.That(t, err, test.ShouldBeNil)
	b, err := NewGaussian([]float64{1, 1}, 1)
	test.That(t, err, test.ShouldBeNil)

	p, err := NewProduct(2, []Expert{a, normalizedOnly{b}}, PerIndexTransforms(Identity, Identity), nil, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Dim(), test.ShouldEqual, 2)
	test.That(t, p.NumExperts(), test.ShouldEqual, 2)
	test.That(t, logs.FilterMessage("using unnormalized log probability").Len(), test.ShouldEqual, 1)

	x := mat.NewDense(1, 2, []float64{1, 0})
	probs, err := p.ExpertLogProbs(x)
	test.That(t, err, test.ShouldBeNil)
	ua, err := a.LogUnnormalizedProb(x)
	test.That(t, err, test.ShouldBeNil)
	nb, err := b.LogProb(x)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, probs[0], test.ShouldResemble, ua)
	test.That(t, probs[1], test.ShouldResemble, nb)

	sum, err := p.LogUnnormalizedProb(x, false)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sum[0], test.ShouldAlmostEqual, ua[0]+nb[0])

	// a column vector is one point
	col, err := p.LogUnnormalizedProb(mat.NewVecDense(2, []float64{1, 0}), false)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, col, test.ShouldResemble, sum)

	_, err = p.LogUnnormalizedProb(mat.NewDense(1, 3, nil), false)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestProductCost(t *testing.T) {
	g, err := NewGaussian([]float64{0}, 1)
	test.That(t, err, test.ShouldBeNil)
	cost := func(x mat.Matrix) ([]float64, error) {
		r, _ := x.Dims()
		out := make([]float64, r)
		for i := range out {
			out[i] = 10 * x.At(i, 0)
		}
		return out, nil
	}
	p, err := NewProduct(1, []Expert{g}, PerIndexTransforms(Identity), cost, nil)
	test.That(t, err, test.ShouldBeNil)

	x := mat.NewDense(2, 1, []float64{1, 2})
	with, err := p.LogUnnormalizedProb(x, false)
	test.That(t, err, test.ShouldBeNil)
	without, err := p.LogUnnormalizedProb(x, true)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, without, test.ShouldResemble, []float64{-0.5, -2})
	test.That(t, with, test.ShouldResemble, []float64{-10.5, -22})
}

func TestTransforms(t *testing.T) {
	double := func(x mat.Matrix, i int) (mat.Matrix, error) {
		var out mat.Dense
		out.Scale(float64(i+1), x)
		return &out, nil
	}
	single := SingleTransform(double)
	test.That(t, single.IsSingle(), test.ShouldBeTrue)
	y, err := single.Apply(mat.NewDense(1, 1, []float64{3}), 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, y.At(0, 0), test.ShouldEqual, 6.)

	list := PerIndexTransforms(Identity)
	test.That(t, list.IsSingle(), test.ShouldBeFalse)
	_, err = list.Apply(mat.NewDense(1, 1, nil), 1)
	test.That(t, err, test.ShouldNotBeNil)

	g, err := NewGaussian([]float64{0}, 1)
	test.That(t, err, test.ShouldBeNil)
	p, err := NewProduct(1, []Expert{g, g}, single, nil, nil)
	test.That(t, err, test.ShouldBeNil)
	ys, err := p.Transformed(mat.NewDense(1, 1, []float64{2}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ys[0].At(0, 0), test.ShouldEqual, 2.)
	test.That(t, ys[1].At(0, 0), test.ShouldEqual, 4.)

	_, err = NewProduct(1, []Expert{g, g}, PerIndexTransforms(Identity), nil, nil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "1 transforms given for 2 experts")
	_, err = NewProduct(1, nil, single, nil, nil)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewProduct(0, []Expert{g}, single, nil, nil)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewProduct(1, []Expert{nil}, single, nil, nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestProductReportsEveryFailure(t *testing.T) {
	g, err := NewGaussian([]float64{0}, 1)
	test.That(t, err, test.ShouldBeNil)
	p, err := NewProduct(1, []Expert{failingExpert{}, g, failingExpert{}}, PerIndexTransforms(Identity, Identity, Identity), nil, nil)
	test.That(t, err, test.ShouldBeNil)
	_, err = p.LogUnnormalizedProb(mat.NewDense(1, 1, nil), false)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "expert 0")
	test.That(t, err.Error(), test.ShouldContainSubstring, "expert 2")
	test.That(t, err.Error(), test.ShouldNotContainSubstring, "expert 1")
}

func planarChain(t *testing.T) *kinematics.Chain {
	t.Helper()
	j, err := referenceframe.NewRotationalJoint(r3.Vector{Z: 1}, referenceframe.UnboundedLimit())
	test.That(t, err, test.ShouldBeNil)
	c, err := kinematics.NewChain("planar", []referenceframe.Segment{
		referenceframe.SegmentFromPoint("j0", j, r3.Vector{X: 1}),
		referenceframe.SegmentFromPoint("j1", j, r3.Vector{X: 1}),
	}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return c
}

func TestKinematicProduct(t *testing.T) {
	c := planarChain(t)
	target := spatial.NewPoseFromAxisAngle(r3.Vector{Y: 2}, &spatial.R4AA{Theta: math.Pi / 2, RZ: 1})
	reach, err := NewPoseTarget(target, kinematics.DefaultLayout, nil, 0.1)
	test.That(t, err, test.ShouldBeNil)
	posture, err := NewGaussian([]float64{0, 0}, 1)
	test.That(t, err, test.ShouldBeNil)

	p, err := NewProduct(2, []Expert{reach, posture},
		PerIndexTransforms(ChainTransform(c), Identity), nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	x := mat.NewDense(2, 2, []float64{
		math.Pi / 2, 0,
		0, 0,
	})
	transformed, err := p.Transformed(x)
	test.That(t, err, test.ShouldBeNil)
	rows, cols := transformed[0].Dims()
	test.That(t, rows, test.ShouldEqual, 2)
	test.That(t, cols, test.ShouldEqual, 12)
	test.That(t, transformed[0].At(1, 0), test.ShouldAlmostEqual, 2.)

	probs, err := p.ExpertLogProbs(x)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, probs[0][0], test.ShouldAlmostEqual, 0.)
	test.That(t, probs[0][1], test.ShouldBeLessThan, probs[0][0])

	_, err = reach.LogProb(transformed[0])
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewPoseTarget(target, spatial.PositionPlusQuaternion, nil, 1)
	test.That(t, err, test.ShouldWrap, spatial.ErrUnsupportedLayout)

	t.Run("chain dict", func(t *testing.T) {
		d, err := kinematics.NewChainDict([]kinematics.NamedChain{{Name: "arm", Chain: c}}, nil)
		test.That(t, err, test.ShouldBeNil)
		f := DictChainTransform(d, "arm", kinematics.WithLayout(spatial.PositionOnly))
		y, err := f(x)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, y.At(0, 1), test.ShouldAlmostEqual, 2.)
		_, err = DictChainTransform(d, "leg")(x)
		test.That(t, err, test.ShouldNotBeNil)
	})
}
