package experts

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/kinchain/kinchain/logging"
	"github.com/kinchain/kinchain/utils"
)

type scoreFunc func(x mat.Matrix) ([]float64, error)

// Product is a product of experts over a space of dimension Dim. Its unnormalized log probability is the sum of the
// log probabilities of every expert on the transformed point, minus an optional cost.
type Product struct {
	dim        int
	experts    []Expert
	scores     []scoreFunc
	transforms Transforms
	cost       CostFunc
	logger     logging.Logger
}

// NewProduct creates a product of experts. Experts implementing UnnormalizedExpert are scored without their
// normalization constant. cost may be nil. A nil logger discards logs.
func NewProduct(dim int, experts []Expert, transforms Transforms, cost CostFunc, logger logging.Logger) (*Product, error) {
	if logger == nil {
		logger = logging.NewBlankLogger("experts")
	}
	if dim <= 0 {
		return nil, errors.Errorf("product dimension must be positive, got %d", dim)
	}
	if len(experts) == 0 {
		return nil, errors.New("a product needs at least one expert")
	}
	if err := transforms.validate(len(experts)); err != nil {
		return nil, err
	}
	p := &Product{
		dim:        dim,
		experts:    append([]Expert(nil), experts...),
		scores:     make([]scoreFunc, len(experts)),
		transforms: transforms,
		cost:       cost,
		logger:     logger,
	}
	for i, e := range experts {
		if e == nil {
			return nil, errors.Errorf("expert %d is nil", i)
		}
		if u, ok := e.(UnnormalizedExpert); ok {
			logger.Debugw("using unnormalized log probability", "expert", i)
			p.scores[i] = u.LogUnnormalizedProb
			continue
		}
		p.scores[i] = e.LogProb
	}
	return p, nil
}

// Dim returns the dimension of the product space.
func (p *Product) Dim() int {
	return p.dim
}

// NumExperts returns the number of experts.
func (p *Product) NumExperts() int {
	return len(p.experts)
}

// Experts returns the experts in order.
func (p *Product) Experts() []Expert {
	return append([]Expert(nil), p.experts...)
}

// asRows accepts either one point per row or a single point given as a column vector.
func (p *Product) asRows(x mat.Matrix) (mat.Matrix, error) {
	r, c := x.Dims()
	switch {
	case c == p.dim:
		return x, nil
	case c == 1 && r == p.dim:
		return x.T(), nil
	}
	return nil, errors.Errorf("points of dimension %d given to a product of dimension %d", c, p.dim)
}

// Transformed maps x into the space of every expert.
func (p *Product) Transformed(x mat.Matrix) ([]mat.Matrix, error) {
	x, err := p.asRows(x)
	if err != nil {
		return nil, err
	}
	out := make([]mat.Matrix, len(p.experts))
	for i := range out {
		if out[i], err = p.transforms.Apply(x, i); err != nil {
			return nil, errors.Wrapf(err, "expert %d", i)
		}
	}
	return out, nil
}

// ExpertLogProbs returns, for every expert, its log probability of every row of x. Experts are evaluated
// concurrently; every failing expert is reported.
func (p *Product) ExpertLogProbs(x mat.Matrix) ([][]float64, error) {
	x, err := p.asRows(x)
	if err != nil {
		return nil, err
	}
	rows, _ := x.Dims()
	out := make([][]float64, len(p.experts))
	errs := make([]error, len(p.experts))
	err = utils.GroupWorkParallel(len(p.experts), func(from, to int) error {
		for i := from; i < to; i++ {
			y, err := p.transforms.Apply(x, i)
			if err != nil {
				errs[i] = errors.Wrapf(err, "expert %d transform", i)
				continue
			}
			lp, err := p.scores[i](y)
			if err != nil {
				errs[i] = errors.Wrapf(err, "expert %d", i)
				continue
			}
			if len(lp) != rows {
				errs[i] = errors.Errorf("expert %d returned %d values for %d points", i, len(lp), rows)
				continue
			}
			out[i] = lp
		}
		return nil
	})
	if err = multierr.Combine(append(errs, err)...); err != nil {
		return nil, err
	}
	return out, nil
}

// LogUnnormalizedProb returns the unnormalized log probability of every row of x. The cost is subtracted unless
// withoutCost is set.
func (p *Product) LogUnnormalizedProb(x mat.Matrix, withoutCost bool) ([]float64, error) {
	probs, err := p.ExpertLogProbs(x)
	if err != nil {
		return nil, err
	}
	sum := make([]float64, len(probs[0]))
	for _, lp := range probs {
		floats.Add(sum, lp)
	}
	if withoutCost || p.cost == nil {
		return sum, nil
	}
	x, _ = p.asRows(x)
	cost, err := p.cost(x)
	if err != nil {
		return nil, errors.Wrap(err, "cost")
	}
	if len(cost) != len(sum) {
		return nil, errors.Errorf("cost returned %d values for %d points", len(cost), len(sum))
	}
	floats.Sub(sum, cost)
	return sum, nil
}
