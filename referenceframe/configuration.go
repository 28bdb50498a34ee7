package referenceframe

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Configuration is either a single joint vector or a batch of joint vectors, one row per configuration.
// Rows are copied on construction and never mutated.
type Configuration struct {
	rows  [][]float64
	batch bool
}

// NewConfiguration wraps a single joint vector.
func NewConfiguration(q []float64) Configuration {
	row := make([]float64, len(q))
	copy(row, q)
	return Configuration{rows: [][]float64{row}}
}

// NewConfigurationBatch wraps a batch of joint vectors. Every row must have the same length.
func NewConfigurationBatch(qs [][]float64) (Configuration, error) {
	if len(qs) == 0 {
		return Configuration{}, ErrEmptyConfiguration
	}
	rows := make([][]float64, len(qs))
	for i, q := range qs {
		if len(q) != len(qs[0]) {
			return Configuration{}, NewRaggedConfigurationError(i, len(q), len(qs[0]))
		}
		rows[i] = make([]float64, len(q))
		copy(rows[i], q)
	}
	return Configuration{rows: rows, batch: true}, nil
}

// NewConfigurationFromMatrix wraps every row of m as one configuration of a batch.
func NewConfigurationFromMatrix(m mat.Matrix) (Configuration, error) {
	r, _ := m.Dims()
	qs := make([][]float64, r)
	for i := range qs {
		qs[i] = mat.Row(nil, i, m)
	}
	return NewConfigurationBatch(qs)
}

// IsBatch returns whether the configuration holds a batch.
func (c Configuration) IsBatch() bool {
	return c.batch
}

// Size returns the number of joint vectors held, 1 for a single vector.
func (c Configuration) Size() int {
	if len(c.rows) == 0 {
		return 1
	}
	return len(c.rows)
}

// DoF returns the length of each joint vector.
func (c Configuration) DoF() int {
	if len(c.rows) == 0 {
		return 0
	}
	return len(c.rows[0])
}

// Row returns joint vector i. A single configuration returns its vector for any i.
func (c Configuration) Row(i int) []float64 {
	if len(c.rows) == 0 {
		return nil
	}
	if !c.batch {
		return c.rows[0]
	}
	return c.rows[i]
}

// Joint returns the values of joint j across the batch.
func (c Configuration) Joint(j int) []float64 {
	out := make([]float64, c.Size())
	for i := range out {
		out[i] = c.Row(i)[j]
	}
	return out
}

// Select returns a configuration made of the joints at indices, in that order. The batch tag is preserved.
func (c Configuration) Select(indices []int) (Configuration, error) {
	dof := c.DoF()
	rows := make([][]float64, c.Size())
	for i := range rows {
		row := make([]float64, len(indices))
		for k, idx := range indices {
			if idx < 0 || idx >= dof {
				return Configuration{}, errors.Errorf("joint index %d out of range for %d joints", idx, dof)
			}
			row[k] = c.Row(i)[idx]
		}
		rows[i] = row
	}
	return Configuration{rows: rows, batch: c.batch}, nil
}

// Add returns the configuration with delta added to joint j of every row.
func (c Configuration) Add(j int, delta float64) Configuration {
	rows := make([][]float64, c.Size())
	for i := range rows {
		rows[i] = make([]float64, c.DoF())
		copy(rows[i], c.Row(i))
		rows[i][j] += delta
	}
	return Configuration{rows: rows, batch: c.batch}
}

// Distance returns the L2 distance between row i of c and row i of other.
func (c Configuration) Distance(other Configuration, i int) float64 {
	return floats.Distance(c.Row(i), other.Row(i), 2)
}
