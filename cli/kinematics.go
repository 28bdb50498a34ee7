package cli

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/kinchain/kinchain/kinematics"
	"github.com/kinchain/kinchain/referenceframe"
	"github.com/kinchain/kinchain/utils"
)

// InfoAction prints the joints, limits and masses of the chains of a file.
func InfoAction(c *cli.Context) error {
	logger := loggerFor(c)
	d, err := loadChains(c, logger)
	if err != nil {
		return err
	}
	names, err := selectedChains(c, d)
	if err != nil {
		return err
	}
	logger.Debugw("loaded chains", "names", names, "dof", d.DoF())
	w := c.App.Writer
	for _, name := range names {
		chain, err := d.Chain(name)
		if err != nil {
			return err
		}
		printf(w, "chain %q: %d segments, %d dof, mass %g", name, chain.NumSegments(), chain.DoF(), chain.Mass())
		t := table.NewWriter()
		t.AppendHeader(table.Row{"#", "Segment", "Joint", "Min", "Max", "Link mass"})
		for i, seg := range chain.Segments() {
			row := table.Row{fmt.Sprintf("%d", i), seg.Name, seg.Joint.Type.String(), "", "", ""}
			if seg.Joint.Actuated() {
				row[3] = limitCell(seg.Joint.Type, seg.Joint.Limit.Min)
				row[4] = limitCell(seg.Joint.Type, seg.Joint.Limit.Max)
			}
			if seg.Link != nil {
				row[5] = fmt.Sprintf("%g", seg.Link.Mass)
			}
			t.AppendRow(row)
		}
		printf(w, "%s", t.Render())
	}
	if len(names) > 1 {
		printf(w, "shared joint vector: %v", d.UniqueJointNames())
		printf(w, "mean pose: %v", d.MeanPose())
	}
	return nil
}

// limitCell formats a joint bound, adding degrees for finite rotational bounds.
func limitCell(jt referenceframe.JointType, bound float64) string {
	if jt != referenceframe.Rotational || math.IsInf(bound, 0) {
		return fmt.Sprintf("%.4g", bound)
	}
	return fmt.Sprintf("%.4g (%.1f deg)", bound, utils.RadToDeg(bound))
}

// ForwardKinematicsAction prints the pose of the base and of every segment of the chains of a file.
func ForwardKinematicsAction(c *cli.Context) error {
	logger := loggerFor(c)
	d, err := loadChains(c, logger)
	if err != nil {
		return err
	}
	names, err := selectedChains(c, d)
	if err != nil {
		return err
	}
	opts, err := kinematicsOptions(c)
	if err != nil {
		return err
	}
	if c.Bool(linksFlag) {
		opts = append(opts, kinematics.WithLinks())
	}
	q := jointVector(c, d)
	logger.Debugw("forward kinematics", "chains", names, "q", q.Row(0))

	k, err := d.Xs(q, opts...)
	if err != nil {
		return err
	}
	w := c.App.Writer
	for _, name := range names {
		chain, err := d.Chain(name)
		if err != nil {
			return err
		}
		ck := k.Chains[name]
		printf(w, "chain %q (%s)", name, ck.Layout)
		labels := []string{"base"}
		for _, seg := range chain.Segments() {
			labels = append(labels, seg.Name)
		}
		if ck.Flat.Size() == 0 {
			for i, ps := range ck.Poses {
				printf(w, "  %-20s %v", labels[i], ps.At(0))
			}
			continue
		}
		flat := ck.Flat.At(0)
		for i := range labels {
			printf(w, "  %-20s %v", labels[i], mat.Formatted(flat.RowView(i).T(), mat.Squeeze()))
		}
		if ck.HasCenterOfMass {
			printf(w, "  center of mass %v, mass %g", ck.CenterOfMass.At(0), ck.Mass)
		}
	}
	if k.HasCenterOfMass && len(names) > 1 {
		printf(w, "combined center of mass %v", k.CenterOfMass.At(0))
	}
	return nil
}

// JacobianAction prints the end effector Jacobian of the chains of a file, one column per joint of each chain.
func JacobianAction(c *cli.Context) error {
	logger := loggerFor(c)
	d, err := loadChains(c, logger)
	if err != nil {
		return err
	}
	names, err := selectedChains(c, d)
	if err != nil {
		return err
	}
	opts, err := kinematicsOptions(c)
	if err != nil {
		return err
	}
	if n := c.Int(truncateFlag); n != 0 {
		opts = append(opts, kinematics.WithTruncation(n))
	}
	q := jointVector(c, d)

	w := c.App.Writer
	for _, name := range names {
		jac, err := d.JacobianChain(name, q, opts...)
		if err != nil {
			return errors.Wrapf(err, "chain %q", name)
		}
		chain, err := d.Chain(name)
		if err != nil {
			return err
		}
		rows, cols := jac.Dims()
		printf(w, "chain %q (%s, %dx%d)", name, jac.Layout(), rows, cols)
		if cols == 0 {
			printf(w, "  no actuated joints")
			continue
		}
		printf(w, "  columns: %v", chain.JointNames()[:cols])
		printf(w, "%v", mat.Formatted(jac.At(0), mat.Prefix("  "), mat.Squeeze()))
	}
	return nil
}

// ValidateAction checks the shared joint vector against the joint limits. A joint shared by several chains is
// checked once, against the limit of its last declaration.
func ValidateAction(c *cli.Context) error {
	logger := loggerFor(c)
	d, err := loadChains(c, logger)
	if err != nil {
		return err
	}
	q := jointVector(c, d)
	logger.Debugw("validating joint vector", "joints", d.UniqueJointNames(), "q", q.Row(0))
	if err := d.ValidateInputs(q); err != nil {
		return errors.Wrap(err, "joint vector out of limits")
	}
	printf(c.App.Writer, "joint vector within limits")
	return nil
}

// SchemaAction prints the JSON schema of a chain file, or of a dict of chains with --dict.
func SchemaAction(c *cli.Context) error {
	schema := kinematics.ChainConfigSchema()
	if c.Bool(dictFlag) {
		schema = kinematics.ChainDictConfigSchema()
	}
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal schema")
	}
	printf(c.App.Writer, "%s", data)
	return nil
}
