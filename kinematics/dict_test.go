package kinematics

import (
	"math"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/kinchain/kinchain/logging"
	"github.com/kinchain/kinchain/referenceframe"
	spatial "github.com/kinchain/kinchain/spatialmath"
)

// armChain is a torso joint about +Z shared by both arms, followed by one arm joint named arm.
func armChain(t *testing.T, arm string, side float64, torso referenceframe.Limit, mass float64) *Chain {
	t.Helper()
	segs := []referenceframe.Segment{
		referenceframe.SegmentFromPoint("torso", rotational(t, r3.Vector{Z: 1}, torso), r3.Vector{Y: side}),
		referenceframe.SegmentFromPoint(arm, rotational(t, r3.Vector{X: 1}, referenceframe.UnboundedLimit()), r3.Vector{Z: -1}),
	}
	if mass > 0 {
		link, err := referenceframe.NewLink(mass, spatial.NewZeroPose(), "")
		test.That(t, err, test.ShouldBeNil)
		segs[1] = segs[1].WithLink(link)
	}
	c, err := NewChain(arm, segs, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return c
}

func TestDisjointChainDict(t *testing.T) {
	left, right := planarChain(t, "l"), planarChain(t, "r")
	d, err := NewChainDict([]NamedChain{{"left", left}, {"right", right}}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d.Names(), test.ShouldResemble, []string{"left", "right"})
	test.That(t, d.UniqueJointNames(), test.ShouldResemble, []string{"l0", "l1", "r0", "r1"})
	test.That(t, d.ActuatedJointNames(), test.ShouldResemble, d.UniqueJointNames())
	test.That(t, d.DoF(), test.ShouldEqual, 4)
	idx, err := d.JointIndices("right")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, idx, test.ShouldResemble, []int{2, 3})

	q := referenceframe.NewConfiguration([]float64{math.Pi / 2, 0, 0, 0})
	k, err := d.Xs(q)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, k.HasCenterOfMass, test.ShouldBeFalse)
	test.That(t, spatial.R3VectorAlmostEqual(k.Chains["left"].EndEffector().At(0).Point(), r3.Vector{Y: 2}, 1e-9), test.ShouldBeTrue)
	test.That(t, spatial.R3VectorAlmostEqual(k.Chains["right"].EndEffector().At(0).Point(), r3.Vector{X: 2}, 1e-9), test.ShouldBeTrue)

	jacs, err := d.Jacobian(q, WithLayout(spatial.PositionOnly))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(jacs), test.ShouldEqual, 2)
	for name, owned := range map[string][]int{"left": {0, 1}, "right": {2, 3}} {
		jac := jacs[name]
		rows, cols := jac.Dims()
		test.That(t, rows, test.ShouldEqual, 3)
		test.That(t, cols, test.ShouldEqual, 4)
		narrow, err := d.JacobianChain(name, q, WithLayout(spatial.PositionOnly))
		test.That(t, err, test.ShouldBeNil)
		for j := 0; j < cols; j++ {
			switch j {
			case owned[0]:
				test.That(t, jac.Column(0, j), test.ShouldResemble, narrow.Column(0, 0))
			case owned[1]:
				test.That(t, jac.Column(0, j), test.ShouldResemble, narrow.Column(0, 1))
			default:
				test.That(t, jac.Column(0, j), test.ShouldResemble, []float64{0, 0, 0})
			}
		}
	}
}

func TestSharedJointChainDict(t *testing.T) {
	left := armChain(t, "left_arm", 1, referenceframe.Limit{Min: -1, Max: 1}, 2)
	right := armChain(t, "right_arm", -1, referenceframe.Limit{Min: -2, Max: 2}, 0)
	d, err := NewChainDict([]NamedChain{{"left", left}, {"right", right}}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	test.That(t, d.ActuatedJointNames(), test.ShouldResemble, []string{"torso", "left_arm", "torso", "right_arm"})
	test.That(t, d.UniqueJointNames(), test.ShouldResemble, []string{"torso", "left_arm", "right_arm"})
	idx, err := d.JointIndices("right")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, idx, test.ShouldResemble, []int{0, 2})

	// the right chain declares torso last
	limits := d.Limits()
	test.That(t, limits[0], test.ShouldResemble, referenceframe.Limit{Min: -2, Max: 2})
	swapped, err := NewChainDict([]NamedChain{{"right", right}, {"left", left}}, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, swapped.Limits()[0], test.ShouldResemble, referenceframe.Limit{Min: -1, Max: 1})
	test.That(t, d.JointTypes(), test.ShouldResemble,
		[]referenceframe.JointType{referenceframe.Rotational, referenceframe.Rotational, referenceframe.Rotational})
	test.That(t, d.MeanPose(), test.ShouldResemble, []float64{0, 0, 0})
	test.That(t, d.Mass(), test.ShouldEqual, 2.)

	q := referenceframe.NewConfiguration([]float64{0.5, 0.1, -0.3})
	l, err := d.XsChain("left", q)
	test.That(t, err, test.ShouldBeNil)
	r, err := d.XsChain("right", q)
	test.That(t, err, test.ShouldBeNil)
	// both chains read the same torso value
	direct, err := right.Xs(referenceframe.NewConfiguration([]float64{0.5, -0.3}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatial.PoseAlmostEqual(r.EndEffector().At(0), direct.EndEffector().At(0)), test.ShouldBeTrue)
	test.That(t, l.Poses[1].At(0).Orientation().Theta, test.ShouldAlmostEqual, 0.5)
	test.That(t, r.Poses[1].At(0).Orientation().Theta, test.ShouldAlmostEqual, 0.5)

	jacs, err := d.Jacobian(q)
	test.That(t, err, test.ShouldBeNil)
	rightJac := jacs["right"]
	_, cols := rightJac.Dims()
	test.That(t, cols, test.ShouldEqual, 3)
	zero := make([]float64, 12)
	test.That(t, rightJac.Column(0, 1), test.ShouldResemble, zero)
	test.That(t, rightJac.Column(0, 0), test.ShouldNotResemble, zero)
	test.That(t, rightJac.Column(0, 2), test.ShouldNotResemble, zero)
	test.That(t, jacs["left"].Column(0, 2), test.ShouldResemble, zero)

	t.Run("center of mass skips massless chains", func(t *testing.T) {
		k, err := d.Xs(q, WithLinks())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, k.HasCenterOfMass, test.ShouldBeTrue)
		test.That(t, k.Chains["right"].HasCenterOfMass, test.ShouldBeFalse)
		test.That(t, k.CenterOfMass.At(0), test.ShouldResemble, k.Chains["left"].CenterOfMass.At(0))

		massless, err := NewChainDict([]NamedChain{{"right", right}}, nil)
		test.That(t, err, test.ShouldBeNil)
		_, err = massless.Xs(referenceframe.NewConfiguration([]float64{0, 0}), WithLinks())
		test.That(t, err, test.ShouldWrap, ErrZeroMass)
	})

	t.Run("batched center of mass", func(t *testing.T) {
		heavy := armChain(t, "right_arm", -1, referenceframe.UnboundedLimit(), 6)
		both, err := NewChainDict([]NamedChain{{"left", left}, {"right", heavy}}, nil)
		test.That(t, err, test.ShouldBeNil)
		qs, err := referenceframe.NewConfigurationBatch([][]float64{{0, 0, 0}, {0.5, 0.1, -0.3}})
		test.That(t, err, test.ShouldBeNil)
		k, err := both.Xs(qs, WithLinks())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, k.CenterOfMass.Size(), test.ShouldEqual, 2)
		// at zero the left link sits at (0,1,-1) and the right one at (0,-1,-1)
		test.That(t, spatial.R3VectorAlmostEqual(k.CenterOfMass.At(0), r3.Vector{Y: -0.5, Z: -1}, 1e-12), test.ShouldBeTrue)
		want := k.Chains["left"].CenterOfMass.At(1).Mul(0.25).Add(k.Chains["right"].CenterOfMass.At(1).Mul(0.75))
		test.That(t, spatial.R3VectorAlmostEqual(k.CenterOfMass.At(1), want, 1e-12), test.ShouldBeTrue)
	})
}

func TestRepeatedJointWithinChain(t *testing.T) {
	j := rotational(t, r3.Vector{Z: 1}, referenceframe.UnboundedLimit())
	c, err := NewChain("coupled", []referenceframe.Segment{
		referenceframe.SegmentFromPoint("knuckle", j, r3.Vector{X: 1}),
		referenceframe.SegmentFromPoint("knuckle", j, r3.Vector{X: 1}),
	}, nil)
	test.That(t, err, test.ShouldBeNil)
	d, err := NewChainDict([]NamedChain{{"finger", c}}, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d.DoF(), test.ShouldEqual, 1)

	q := referenceframe.NewConfiguration([]float64{math.Pi / 4})
	k, err := d.XsChain("finger", q, WithLayout(spatial.PositionOnly))
	test.That(t, err, test.ShouldBeNil)
	want := r3.Vector{X: math.Sqrt2 / 2, Y: math.Sqrt2/2 + 1}
	test.That(t, spatial.R3VectorAlmostEqual(k.EndEffector().At(0).Point(), want, 1e-9), test.ShouldBeTrue)

	narrow, err := d.JacobianChain("finger", q, WithLayout(spatial.PositionOnly))
	test.That(t, err, test.ShouldBeNil)
	jacs, err := d.Jacobian(q, WithLayout(spatial.PositionOnly))
	test.That(t, err, test.ShouldBeNil)
	wide := jacs["finger"].Column(0, 0)
	for r := 0; r < 3; r++ {
		test.That(t, wide[r], test.ShouldAlmostEqual, narrow.Column(0, 0)[r]+narrow.Column(0, 1)[r])
	}
}

func TestChainDictErrors(t *testing.T) {
	c := planarChain(t, "j")

	_, err := NewChainDict([]NamedChain{{"", c}}, nil)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewChainDict([]NamedChain{{"a", nil}}, nil)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewChainDict([]NamedChain{{"a", c}, {"a", c}}, nil)
	test.That(t, err.Error(), test.ShouldContainSubstring, NewDuplicateChainError("a").Error())

	unnamed, err := NewChain("unnamed", []referenceframe.Segment{
		referenceframe.SegmentFromPoint("", rotational(t, r3.Vector{Z: 1}, referenceframe.UnboundedLimit()), r3.Vector{X: 1}),
	}, nil)
	test.That(t, err, test.ShouldBeNil)
	_, err = NewChainDict([]NamedChain{{"a", unnamed}}, nil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unnamed actuated segment")

	d, err := NewChainDict([]NamedChain{{"a", c}}, nil)
	test.That(t, err, test.ShouldBeNil)
	_, err = d.Chain("b")
	test.That(t, err.Error(), test.ShouldContainSubstring, NewUnknownChainError("b").Error())
	_, err = d.XsChain("b", referenceframe.NewConfiguration([]float64{0, 0}))
	test.That(t, err, test.ShouldNotBeNil)
	_, err = d.JointIndices("b")
	test.That(t, err, test.ShouldNotBeNil)
	_, err = d.Xs(referenceframe.NewConfiguration([]float64{0}))
	test.That(t, err.Error(), test.ShouldContainSubstring, referenceframe.NewIncorrectDoFError(1, 2).Error())
	_, err = d.Jacobian(referenceframe.NewConfiguration([]float64{0, 0, 0}))
	test.That(t, err, test.ShouldNotBeNil)
	got, err := d.Chain("a")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got, test.ShouldEqual, c)
}

func TestChainDictValidateInputs(t *testing.T) {
	left := armChain(t, "left_arm", 1, referenceframe.Limit{Min: -1, Max: 1}, 0)
	right := armChain(t, "right_arm", -1, referenceframe.Limit{Min: -2, Max: 2}, 0)
	d, err := NewChainDict([]NamedChain{{"left", left}, {"right", right}}, nil)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, d.ValidateInputs(referenceframe.NewConfiguration([]float64{1.5, 0, 0})), test.ShouldBeNil)

	err = d.ValidateInputs(referenceframe.NewConfiguration([]float64{2.5, 0, 0}))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, strings.Count(err.Error(), `"torso"`), test.ShouldEqual, 1)
	test.That(t, err.Error(), test.ShouldContainSubstring, referenceframe.OOBErrString)

	qs, err := referenceframe.NewConfigurationBatch([][]float64{{0, 0, 0}, {-3, 0, 0}})
	test.That(t, err, test.ShouldBeNil)
	err = d.ValidateInputs(qs)
	test.That(t, err.Error(), test.ShouldContainSubstring, "configuration 1")

	err = d.ValidateInputs(referenceframe.NewConfiguration([]float64{0, 0}))
	test.That(t, err.Error(), test.ShouldContainSubstring, referenceframe.NewIncorrectDoFError(2, 3).Error())
}
