// Package cli contains the kinchain command line tool.
package cli

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	spatial "github.com/kinchain/kinchain/spatialmath"
)

const (
	debugFlag     = "debug"
	logFileFlag   = "log-file"
	dictFlag      = "dict"
	chainFlag     = "chain"
	chainNameFlag = "name"
	qFlag         = "q"
	layoutFlag    = "layout"
	linksFlag     = "links"
	truncateFlag  = "truncate"
	baseFlag      = "base"
	degreesFlag   = "degrees"
)

var chainFileFlag = &cli.StringFlag{
	Name:     chainFlag,
	Aliases:  []string{"c"},
	Usage:    "load a chain, or a dict of chains, from JSON `FILE`",
	Required: true,
}

var chainSelectFlag = &cli.StringFlag{
	Name:  chainNameFlag,
	Usage: "only use the chain named `NAME` of the file",
}

var jointFlag = &cli.Float64SliceFlag{
	Name:  qFlag,
	Usage: "joint vector, shared by every chain of a dict; defaults to the middle of the joint limits",
}

var degreesSelectFlag = &cli.BoolFlag{
	Name:  degreesFlag,
	Usage: "read --q values of rotational joints in degrees",
}

var layoutSelectFlag = &cli.StringFlag{
	Name:  layoutFlag,
	Value: spatial.PositionPlusRotationMatrixFlat.String(),
	Usage: "pose layout, one of PositionOnly, PositionPlusRotationMatrixFlat, PositionPlusRotationMatrixFlatTransposed",
}

var baseSelectFlag = &cli.Float64SliceFlag{
	Name:  baseFlag,
	Usage: "floating base translation x,y,z",
}

var app = &cli.App{
	Name:            "kinchain",
	Usage:           "forward kinematics and Jacobians of kinematic chains",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    debugFlag,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
		&cli.StringFlag{
			Name:  logFileFlag,
			Usage: "also write JSON logs to `FILE`",
		},
	},
	Before: setupLogger,
	After:  closeLogger,
	Commands: []*cli.Command{
		{
			Name:      "info",
			Usage:     "describe the joints, limits and masses of chains",
			UsageText: fmt.Sprintf("kinchain info --%s <file> [--%s <chain>]", chainFlag, chainNameFlag),
			Flags:     []cli.Flag{chainFileFlag, chainSelectFlag},
			Action:    InfoAction,
		},
		{
			Name:      "fk",
			Usage:     "print the pose of every segment of chains",
			UsageText: fmt.Sprintf("kinchain fk --%s <file> --%s q0,q1,... [other options]", chainFlag, qFlag),
			Flags: []cli.Flag{
				chainFileFlag,
				chainSelectFlag,
				jointFlag,
				degreesSelectFlag,
				layoutSelectFlag,
				baseSelectFlag,
				&cli.BoolFlag{
					Name:  linksFlag,
					Usage: "also print link frames and the center of mass",
				},
			},
			Action: ForwardKinematicsAction,
		},
		{
			Name:      "jacobian",
			Usage:     "print the end effector Jacobian of chains",
			UsageText: fmt.Sprintf("kinchain jacobian --%s <file> --%s q0,q1,... [other options]", chainFlag, qFlag),
			Flags: []cli.Flag{
				chainFileFlag,
				chainSelectFlag,
				jointFlag,
				degreesSelectFlag,
				baseSelectFlag,
				&cli.StringFlag{
					Name:  layoutFlag,
					Value: spatial.PositionPlusRotationMatrixFlat.String(),
					Usage: "row layout, one of PositionOnly, PositionPlusRotationMatrixFlat, " +
						"PositionPlusRotationMatrixFlatTransposed, RawTransformObject",
				},
				&cli.IntFlag{
					Name:  truncateFlag,
					Usage: "omit the last `N` segments",
				},
			},
			Action: JacobianAction,
		},
		{
			Name:      "validate",
			Usage:     "check the shared joint vector against the joint limits",
			UsageText: fmt.Sprintf("kinchain validate --%s <file> --%s q0,q1,...", chainFlag, qFlag),
			Flags:     []cli.Flag{chainFileFlag, jointFlag, degreesSelectFlag},
			Action:    ValidateAction,
		},
		{
			Name:      "schema",
			Usage:     "print the JSON schema of chain files",
			UsageText: fmt.Sprintf("kinchain schema [--%s]", dictFlag),
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  dictFlag,
					Usage: "print the schema of a dict of chains",
				},
			},
			Action: SchemaAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
