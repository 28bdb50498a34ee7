package kinematics

import (
	"encoding/json"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/kinchain/kinchain/logging"
	"github.com/kinchain/kinchain/referenceframe"
)

// ErrNoChainInformation is used when a chain file is empty.
var ErrNoChainInformation = errors.New("no chain information")

// ChainConfig represents all supported fields in a chain JSON file.
type ChainConfig struct {
	Name     string                         `json:"name"`
	Segments []referenceframe.SegmentConfig `json:"segments"`
}

// ChainDictConfig represents a JSON file describing several chains sharing one joint vector.
type ChainDictConfig struct {
	Chains []ChainConfig `json:"chains"`
}

// ParseConfig converts the ChainConfig into a Chain named name, or the config's own name when name is empty.
// Problems with every segment are reported together.
func (cfg *ChainConfig) ParseConfig(name string, logger logging.Logger) (*Chain, error) {
	if name == "" {
		name = cfg.Name
	}
	segments := make([]referenceframe.Segment, 0, len(cfg.Segments))
	var errs error
	for i := range cfg.Segments {
		seg, err := cfg.Segments[i].ParseConfig()
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "segment %d", i))
			continue
		}
		segments = append(segments, seg)
	}
	if errs != nil {
		return nil, errors.Wrapf(errs, "chain %q", name)
	}
	return NewChain(name, segments, logger)
}

// ParseConfig converts the ChainDictConfig into a ChainDict.
func (cfg *ChainDictConfig) ParseConfig(logger logging.Logger) (*ChainDict, error) {
	if logger == nil {
		logger = logging.NewBlankLogger("chaindict")
	}
	entries := make([]NamedChain, 0, len(cfg.Chains))
	for i := range cfg.Chains {
		c, err := cfg.Chains[i].ParseConfig("", logger.Sublogger(cfg.Chains[i].Name))
		if err != nil {
			return nil, err
		}
		entries = append(entries, NamedChain{Name: c.Name(), Chain: c})
	}
	return NewChainDict(entries, logger)
}

// UnmarshalChainJSON parses the given JSON data into a chain. name sets the name of the chain; the name from the
// JSON is used when it is empty.
func UnmarshalChainJSON(jsonData []byte, name string, logger logging.Logger) (*Chain, error) {
	if len(jsonData) == 0 {
		return nil, ErrNoChainInformation
	}
	cfg := &ChainConfig{}
	if err := json.Unmarshal(jsonData, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal json file")
	}
	return cfg.ParseConfig(name, logger)
}

// ParseChainJSONFile will read a given file and then parse the contained JSON data.
func ParseChainJSONFile(filename, name string, logger logging.Logger) (*Chain, error) {
	//nolint:gosec
	jsonData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read json file")
	}
	return UnmarshalChainJSON(jsonData, name, logger)
}

// UnmarshalChainDictJSON parses the given JSON data into a ChainDict.
func UnmarshalChainDictJSON(jsonData []byte, logger logging.Logger) (*ChainDict, error) {
	if len(jsonData) == 0 {
		return nil, ErrNoChainInformation
	}
	cfg := &ChainDictConfig{}
	if err := json.Unmarshal(jsonData, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal json file")
	}
	return cfg.ParseConfig(logger)
}

// ParseChainDictJSONFile will read a given file and then parse the contained ChainDict.
func ParseChainDictJSONFile(filename string, logger logging.Logger) (*ChainDict, error) {
	//nolint:gosec
	jsonData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read json file")
	}
	return UnmarshalChainDictJSON(jsonData, logger)
}

// Config returns the config the chain can be rebuilt from.
func (c *Chain) Config() *ChainConfig {
	cfg := &ChainConfig{Name: c.name, Segments: make([]referenceframe.SegmentConfig, 0, len(c.segments))}
	for _, seg := range c.segments {
		cfg.Segments = append(cfg.Segments, *referenceframe.NewSegmentConfig(seg))
	}
	return cfg
}

// ChainConfigSchema returns the JSON schema of a chain file.
func ChainConfigSchema() *jsonschema.Schema {
	return jsonschema.Reflect(&ChainConfig{})
}

// ChainDictConfigSchema returns the JSON schema of a chain dict file.
func ChainDictConfigSchema() *jsonschema.Schema {
	return jsonschema.Reflect(&ChainDictConfig{})
}

// MarshalJSON serializes the chain as a ChainConfig.
func (c *Chain) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Config())
}

// MarshalJSON serializes the dict as a ChainDictConfig.
func (d *ChainDict) MarshalJSON() ([]byte, error) {
	cfg := ChainDictConfig{Chains: make([]ChainConfig, 0, len(d.names))}
	for _, name := range d.names {
		chainCfg := d.chains[name].Config()
		chainCfg.Name = name
		cfg.Chains = append(cfg.Chains, *chainCfg)
	}
	return json.Marshal(cfg)
}
