package kinematics

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"

	"github.com/kinchain/kinchain/logging"
	"github.com/kinchain/kinchain/referenceframe"
	spatial "github.com/kinchain/kinchain/spatialmath"
)

// NamedChain is one entry of a ChainDict.
type NamedChain struct {
	Name  string
	Chain *Chain
}

// ChainDict is an ordered set of named chains sharing one joint vector. Actuated segments with the same name, in
// one chain or across chains, are the same physical joint and read the same entry of the vector. The shared vector
// lists each joint name once, in order of first declaration.
type ChainDict struct {
	names  []string
	chains map[string]*Chain
	logger logging.Logger

	// derived once at construction
	actuatedNames []string
	uniqueNames   []string
	indices       map[string][]int
}

// NewChainDict creates a ChainDict, preserving the order of entries. A nil logger discards logs.
func NewChainDict(entries []NamedChain, logger logging.Logger) (*ChainDict, error) {
	if logger == nil {
		logger = logging.NewBlankLogger("chaindict")
	}
	d := &ChainDict{
		chains:  make(map[string]*Chain, len(entries)),
		logger:  logger,
		indices: make(map[string][]int, len(entries)),
	}
	for i, entry := range entries {
		switch {
		case entry.Name == "":
			return nil, errors.Errorf("chain %d has no name", i)
		case entry.Chain == nil:
			return nil, errors.Errorf("chain %q is nil", entry.Name)
		}
		if _, ok := d.chains[entry.Name]; ok {
			return nil, NewDuplicateChainError(entry.Name)
		}
		for _, jn := range entry.Chain.jointNames {
			if jn == "" {
				return nil, errors.Errorf("chain %q has an unnamed actuated segment", entry.Name)
			}
		}
		d.names = append(d.names, entry.Name)
		d.chains[entry.Name] = entry.Chain
		d.actuatedNames = append(d.actuatedNames, entry.Chain.jointNames...)
	}

	d.uniqueNames = lo.Uniq(d.actuatedNames)
	for _, name := range d.names {
		d.indices[name] = lo.Map(d.chains[name].jointNames, func(jn string, _ int) int {
			return lo.IndexOf(d.uniqueNames, jn)
		})
	}
	if shared := len(d.actuatedNames) - len(d.uniqueNames); shared > 0 {
		d.logger.Debugw("chains share joints", "shared", shared, "joints", lo.FindDuplicates(d.actuatedNames))
	}
	d.logger.Debugw("built chain dict", "chains", d.names, "dof", len(d.uniqueNames))
	return d, nil
}

// Names returns the chain names in order.
func (d *ChainDict) Names() []string {
	return append([]string(nil), d.names...)
}

// Chain returns the chain with the given name.
func (d *ChainDict) Chain(name string) (*Chain, error) {
	c, ok := d.chains[name]
	if !ok {
		return nil, NewUnknownChainError(name)
	}
	return c, nil
}

// ActuatedJointNames returns the actuated segment names of every chain in order, duplicates included.
func (d *ChainDict) ActuatedJointNames() []string {
	return append([]string(nil), d.actuatedNames...)
}

// UniqueJointNames returns the names of the shared joint vector's entries.
func (d *ChainDict) UniqueJointNames() []string {
	return append([]string(nil), d.uniqueNames...)
}

// DoF returns the length of the shared joint vector.
func (d *ChainDict) DoF() int {
	return len(d.uniqueNames)
}

// JointIndices returns, for every joint of the named chain, its index in the shared joint vector.
func (d *ChainDict) JointIndices(name string) ([]int, error) {
	idx, ok := d.indices[name]
	if !ok {
		return nil, NewUnknownChainError(name)
	}
	return append([]int(nil), idx...), nil
}

// Limits returns the limits of the shared joint vector. A joint declared by several chains takes the limit of its
// last declaration.
func (d *ChainDict) Limits() []referenceframe.Limit {
	out := make([]referenceframe.Limit, len(d.uniqueNames))
	for _, name := range d.names {
		limits := d.chains[name].limits
		for k, idx := range d.indices[name] {
			out[idx] = limits[k]
		}
	}
	return out
}

// JointTypes returns the joint type of every entry of the shared joint vector, taken from the last declaration like
// Limits.
func (d *ChainDict) JointTypes() []referenceframe.JointType {
	out := make([]referenceframe.JointType, len(d.uniqueNames))
	for _, name := range d.names {
		actuated := lo.Filter(d.chains[name].segments, func(s referenceframe.Segment, _ int) bool { return s.Joint.Actuated() })
		for k, idx := range d.indices[name] {
			out[idx] = actuated[k].Joint.Type
		}
	}
	return out
}

// ValidateInputs checks the length of every shared joint vector of q and that every value lies within Limits.
// A joint shared by several chains is checked once. All offending joints are reported together.
func (d *ChainDict) ValidateInputs(q referenceframe.Configuration) error {
	if q.DoF() != d.DoF() {
		return errors.Wrap(referenceframe.NewIncorrectDoFError(q.DoF(), d.DoF()), "chain dict")
	}
	limits := d.Limits()
	var errs error
	for i := 0; i < q.Size(); i++ {
		for j, v := range q.Row(i) {
			if limits[j].Contains(v) {
				continue
			}
			err := referenceframe.NewOutOfBoundsError(d.uniqueNames[j], v, limits[j])
			if q.IsBatch() {
				err = errors.Wrapf(err, "configuration %d", i)
			}
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// MeanPose returns the shared joint vector at the middle of every joint's limits.
func (d *ChainDict) MeanPose() []float64 {
	return lo.Map(d.Limits(), func(l referenceframe.Limit, _ int) float64 { return l.Mean() })
}

// Mass returns the total mass of every chain.
func (d *ChainDict) Mass() float64 {
	return lo.SumBy(d.names, func(name string) float64 { return d.chains[name].mass })
}

func (d *ChainDict) split(name string, q referenceframe.Configuration) (*Chain, referenceframe.Configuration, error) {
	c, ok := d.chains[name]
	if !ok {
		return nil, referenceframe.Configuration{}, NewUnknownChainError(name)
	}
	if q.DoF() != d.DoF() {
		return nil, referenceframe.Configuration{}, errors.Wrap(referenceframe.NewIncorrectDoFError(q.DoF(), d.DoF()), "chain dict")
	}
	sub, err := q.Select(d.indices[name])
	if err != nil {
		return nil, referenceframe.Configuration{}, err
	}
	return c, sub, nil
}

// DictKinematics is the result of a forward kinematics request on a ChainDict.
type DictKinematics struct {
	Chains map[string]*Kinematics
	// CenterOfMass is the mass weighted mean of every chain's center of mass. Chains whose links weigh nothing
	// are left out. Only filled when links are requested.
	CenterOfMass    spatial.Points
	HasCenterOfMass bool
}

// Xs computes forward kinematics of every chain from the shared joint vector q. With links, it also combines the
// centers of mass of the chains, returning ErrZeroMass when no chain has any mass.
func (d *ChainDict) Xs(q referenceframe.Configuration, opts ...Option) (*DictKinematics, error) {
	o := newOptions(opts)
	out := &DictKinematics{Chains: make(map[string]*Kinematics, len(d.names))}
	for _, name := range d.names {
		c, sub, err := d.split(name, q)
		if err != nil {
			return nil, err
		}
		k, err := c.forward(sub, o, len(c.segments))
		if err != nil {
			return nil, err
		}
		out.Chains[name] = k
	}
	if !o.links {
		return out, nil
	}

	weighted := lo.Filter(d.names, func(name string, _ int) bool { return out.Chains[name].HasCenterOfMass })
	if len(weighted) == 0 {
		return nil, errors.Wrap(ErrZeroMass, "chain dict")
	}
	ops := lo.Map(weighted, func(name string, _ int) spatial.Batched { return out.Chains[name].CenterOfMass })
	size, batch, err := spatial.Broadcast(ops...)
	if err != nil {
		return nil, err
	}
	total := lo.SumBy(weighted, func(name string) float64 { return out.Chains[name].Mass })
	com := make([]r3.Vector, size)
	for i := range com {
		for _, name := range weighted {
			k := out.Chains[name]
			com[i] = com[i].Add(k.CenterOfMass.At(i).Mul(k.Mass))
		}
		com[i] = com[i].Mul(1 / total)
	}
	if out.CenterOfMass, err = wrapPoints(com, batch); err != nil {
		return nil, err
	}
	out.HasCenterOfMass = true
	return out, nil
}

// XsChain computes forward kinematics of the named chain from the shared joint vector q.
func (d *ChainDict) XsChain(name string, q referenceframe.Configuration, opts ...Option) (*Kinematics, error) {
	c, sub, err := d.split(name, q)
	if err != nil {
		return nil, err
	}
	return c.Xs(sub, opts...)
}

// Jacobian computes the Jacobian of every chain against the shared joint vector q. Each Jacobian has one column per
// entry of the shared vector; columns of joints a chain does not own are zero. Stacking the rows of the chains into
// one whole body Jacobian is left to callers.
func (d *ChainDict) Jacobian(q referenceframe.Configuration, opts ...Option) (map[string]*Jacobian, error) {
	out := make(map[string]*Jacobian, len(d.names))
	for _, name := range d.names {
		narrow, err := d.JacobianChain(name, q, opts...)
		if err != nil {
			return nil, err
		}
		out[name] = d.widen(narrow, d.indices[name])
	}
	return out, nil
}

// JacobianChain computes the named chain's own Jacobian, one column per joint of the chain, from the shared joint
// vector q.
func (d *ChainDict) JacobianChain(name string, q referenceframe.Configuration, opts ...Option) (*Jacobian, error) {
	c, sub, err := d.split(name, q)
	if err != nil {
		return nil, err
	}
	return c.Jacobian(sub, opts...)
}

// widen places column k of narrow at column indices[k] of a Jacobian as wide as the shared vector. A joint repeated
// within one chain sums its columns. Columns of truncated joints are absent from narrow and stay zero.
func (d *ChainDict) widen(narrow *Jacobian, indices []int) *Jacobian {
	rows, cols := narrow.Dims()
	wide := &Jacobian{layout: narrow.layout, rows: rows, cols: d.DoF(), batch: narrow.batch}
	wide.mats = make([]*mat.Dense, len(narrow.mats))
	for b, m := range narrow.mats {
		w := newJacobianMatrix(rows, d.DoF())
		for k := 0; k < cols; k++ {
			idx := indices[k]
			for r := 0; r < rows; r++ {
				w.Set(r, idx, w.At(r, idx)+m.At(r, k))
			}
		}
		wide.mats[b] = w
	}
	return wide
}
