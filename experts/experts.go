// Package experts combines independent likelihood models, each scoring points of its own space, into one product
// over a shared space. Transforms map the product space into every expert's space; forward kinematics of a chain is
// the usual transform.
package experts

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Expert scores points of its space. x holds one point per row; the result holds one log probability per row.
type Expert interface {
	LogProb(x mat.Matrix) ([]float64, error)
}

// UnnormalizedExpert is an Expert that can skip its normalization constant. A Product prefers it when available.
type UnnormalizedExpert interface {
	Expert
	LogUnnormalizedProb(x mat.Matrix) ([]float64, error)
}

// TransformFunc maps points of the product space to points of one expert's space, row by row.
type TransformFunc func(x mat.Matrix) (mat.Matrix, error)

// IndexedTransformFunc maps points of the product space to points of the space of expert i.
type IndexedTransformFunc func(x mat.Matrix, i int) (mat.Matrix, error)

// CostFunc returns one additional cost per row of x, subtracted from the product's log probability.
type CostFunc func(x mat.Matrix) ([]float64, error)

// Transforms is either one indexed transform shared by every expert or one transform per expert.
type Transforms struct {
	single   IndexedTransformFunc
	perIndex []TransformFunc
}

// SingleTransform uses f for every expert, passing the expert's index.
func SingleTransform(f IndexedTransformFunc) Transforms {
	return Transforms{single: f}
}

// PerIndexTransforms uses fs[i] for expert i.
func PerIndexTransforms(fs ...TransformFunc) Transforms {
	return Transforms{perIndex: fs}
}

// IsSingle returns whether one indexed transform serves every expert.
func (t Transforms) IsSingle() bool {
	return t.single != nil
}

// Apply maps x into the space of expert i.
func (t Transforms) Apply(x mat.Matrix, i int) (mat.Matrix, error) {
	if t.single != nil {
		return t.single(x, i)
	}
	if i < 0 || i >= len(t.perIndex) {
		return nil, errors.Errorf("no transform for expert %d of %d", i, len(t.perIndex))
	}
	return t.perIndex[i](x)
}

func (t Transforms) validate(numExperts int) error {
	switch {
	case t.single != nil && t.perIndex != nil:
		return errors.New("transforms cannot be both single and per index")
	case t.single != nil:
		return nil
	case len(t.perIndex) != numExperts:
		return errors.Errorf("%d transforms given for %d experts", len(t.perIndex), numExperts)
	}
	for i, f := range t.perIndex {
		if f == nil {
			return errors.Errorf("transform %d is nil", i)
		}
	}
	return nil
}

// Identity is the transform of an expert living in the product space itself.
func Identity(x mat.Matrix) (mat.Matrix, error) {
	return x, nil
}
