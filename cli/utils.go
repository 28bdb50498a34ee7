package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/kinchain/kinchain/kinematics"
	"github.com/kinchain/kinchain/logging"
	"github.com/kinchain/kinchain/referenceframe"
	spatial "github.com/kinchain/kinchain/spatialmath"
	"github.com/kinchain/kinchain/utils"
)

// printf prints a message with no prefix.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// warningf prints a message prefixed with a bold yellow "Warning: ".
func warningf(w io.Writer, format string, a ...interface{}) {
	warning := color.New(color.Bold, color.FgYellow).Sprint("Warning:")
	//nolint:errcheck
	fmt.Fprintf(w, warning+" "+format+"\n", a...)
}

const (
	previousLoggerKey = "previousLogger"
	logCloserKey      = "logCloser"
)

// setupLogger installs the global logger used by every command, built from --debug and --log-file.
func setupLogger(c *cli.Context) error {
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	delete(c.App.Metadata, logCloserKey)

	var logger logging.Logger
	if c.Bool(debugFlag) {
		logger = logging.NewDebugLogger("kinchain")
	} else {
		logger = logging.NewBlankLogger("kinchain")
	}
	if path := c.String(logFileFlag); path != "" {
		appender, closer := logging.NewFileAppender(path)
		logger.AddAppender(appender)
		c.App.Metadata[logCloserKey] = closer
	}
	c.App.Metadata[previousLoggerKey] = logging.Global()
	logging.ReplaceGlobal(logger)
	return nil
}

// closeLogger flushes the command's logger, restores the previous global logger and releases the log file.
func closeLogger(c *cli.Context) error {
	//nolint:errcheck
	logging.Global().Sync()
	if prev, ok := c.App.Metadata[previousLoggerKey].(logging.Logger); ok {
		logging.ReplaceGlobal(prev)
	}
	if closer, ok := c.App.Metadata[logCloserKey].(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func loggerFor(c *cli.Context) logging.Logger {
	if c.Command == nil || c.Command.Name == "" {
		return logging.Global()
	}
	return logging.Global().Sublogger(c.Command.Name)
}

// loadChains reads the chain file as a ChainDict. A file holding a single chain becomes a dict of that chain.
func loadChains(c *cli.Context, logger logging.Logger) (*kinematics.ChainDict, error) {
	//nolint:gosec
	data, err := os.ReadFile(c.String(chainFlag))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read chain file")
	}
	var header struct {
		Chains json.RawMessage `json:"chains"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal chain file")
	}
	if header.Chains != nil {
		return kinematics.UnmarshalChainDictJSON(data, logger)
	}
	chain, err := kinematics.UnmarshalChainJSON(data, "", logger)
	if err != nil {
		return nil, err
	}
	return kinematics.NewChainDict([]kinematics.NamedChain{{Name: chain.Name(), Chain: chain}}, logger)
}

// selectedChains returns the chain chosen with --name, or every chain of the dict.
func selectedChains(c *cli.Context, d *kinematics.ChainDict) ([]string, error) {
	if !c.IsSet(chainNameFlag) {
		return d.Names(), nil
	}
	name := c.String(chainNameFlag)
	if _, err := d.Chain(name); err != nil {
		return nil, err
	}
	return []string{name}, nil
}

// jointVector returns the shared joint vector given with --q, or the middle of every joint's limits. With
// --degrees, values of rotational joints are converted to radians.
func jointVector(c *cli.Context, d *kinematics.ChainDict) referenceframe.Configuration {
	if !c.IsSet(qFlag) {
		warningf(c.App.ErrWriter, "no --%s given, using the middle of the joint limits", qFlag)
		return referenceframe.NewConfiguration(d.MeanPose())
	}
	q := append([]float64(nil), c.Float64Slice(qFlag)...)
	if c.Bool(degreesFlag) {
		types := d.JointTypes()
		for i := range q {
			if i < len(types) && types[i] == referenceframe.Rotational {
				q[i] = utils.DegToRad(q[i])
			}
		}
	}
	return referenceframe.NewConfiguration(q)
}

// kinematicsOptions reads --layout and --base.
func kinematicsOptions(c *cli.Context) ([]kinematics.Option, error) {
	var opts []kinematics.Option
	if c.IsSet(layoutFlag) {
		layout, err := spatial.ParseLayout(c.String(layoutFlag))
		if err != nil {
			return nil, err
		}
		opts = append(opts, kinematics.WithLayout(layout))
	}
	if c.IsSet(baseFlag) {
		xyz := c.Float64Slice(baseFlag)
		if len(xyz) != 3 {
			return nil, errors.Errorf("--%s takes 3 values, got %d", baseFlag, len(xyz))
		}
		base := spatial.NewPoseFromPoint(r3.Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]})
		opts = append(opts, kinematics.WithFloatingBase(base))
	}
	return opts, nil
}
