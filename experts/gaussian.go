package experts

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Gaussian is an isotropic normal distribution.
type Gaussian struct {
	coords []distuv.Normal
	// logNorm is the log density at the mean, the constant LogUnnormalizedProb leaves out
	logNorm float64
}

// NewGaussian returns an isotropic normal distribution centered on mean with standard deviation sigma.
func NewGaussian(mean []float64, sigma float64) (*Gaussian, error) {
	if len(mean) == 0 {
		return nil, errors.New("gaussian mean cannot be empty")
	}
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return nil, errors.Errorf("gaussian sigma must be positive and finite, got %v", sigma)
	}
	g := &Gaussian{coords: make([]distuv.Normal, len(mean))}
	for i, mu := range mean {
		g.coords[i] = distuv.Normal{Mu: mu, Sigma: sigma}
		g.logNorm += g.coords[i].LogProb(mu)
	}
	return g, nil
}

// LogProb implements Expert.
func (g *Gaussian) LogProb(x mat.Matrix) ([]float64, error) {
	r, c := x.Dims()
	if c != len(g.coords) {
		return nil, errors.Errorf("gaussian of dimension %d given points of dimension %d", len(g.coords), c)
	}
	out := make([]float64, r)
	for i := range out {
		for j, n := range g.coords {
			out[i] += n.LogProb(x.At(i, j))
		}
	}
	return out, nil
}

// LogUnnormalizedProb implements UnnormalizedExpert.
func (g *Gaussian) LogUnnormalizedProb(x mat.Matrix) ([]float64, error) {
	out, err := g.LogProb(x)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i] -= g.logNorm
	}
	return out, nil
}
