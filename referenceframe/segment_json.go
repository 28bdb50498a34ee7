package referenceframe

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	spatial "github.com/kinchain/kinchain/spatialmath"
)

// JointConfig is the JSON form of a Joint. Missing position limits are unbounded.
type JointConfig struct {
	Type        string                     `json:"type"`
	Axis        spatial.AxisConfig         `json:"axis"`
	Origin      *spatial.TranslationConfig `json:"origin,omitempty"`
	Min         *float64                   `json:"min,omitempty"`
	Max         *float64                   `json:"max,omitempty"`
	MaxVelocity float64                    `json:"max_velocity,omitempty"`
	MaxEffort   float64                    `json:"max_effort,omitempty"`
}

// LinkConfig is the JSON form of a Link.
type LinkConfig struct {
	Mass     float64             `json:"mass"`
	Frame    *spatial.PoseConfig `json:"frame,omitempty"`
	Geometry string              `json:"geometry,omitempty"`
}

// SegmentConfig is the JSON form of a Segment.
type SegmentConfig struct {
	Name  string              `json:"name"`
	Joint JointConfig         `json:"joint"`
	Tip   *spatial.PoseConfig `json:"tip,omitempty"`
	Link  *LinkConfig         `json:"link,omitempty"`
}

// NewJointConfig constructs a config from a Joint.
func NewJointConfig(j Joint) JointConfig {
	cfg := JointConfig{
		Type:        j.Type.String(),
		MaxVelocity: j.Limit.MaxVelocity,
		MaxEffort:   j.Limit.MaxEffort,
	}
	if !j.Actuated() {
		return cfg
	}
	cfg.Axis = spatial.NewAxisConfig(j.Axis)
	if j.Origin.Norm2() != 0 {
		cfg.Origin = spatial.NewTranslationConfig(j.Origin)
	}
	if !math.IsInf(j.Limit.Min, 0) {
		lo := j.Limit.Min
		cfg.Min = &lo
	}
	if !math.IsInf(j.Limit.Max, 0) {
		hi := j.Limit.Max
		cfg.Max = &hi
	}
	return cfg
}

// ParseConfig converts a JointConfig into a Joint.
func (cfg *JointConfig) ParseConfig() (Joint, error) {
	jt, err := ParseJointType(cfg.Type)
	if err != nil {
		return Joint{}, err
	}
	limit := UnboundedLimit()
	if cfg.Min != nil {
		limit.Min = *cfg.Min
	}
	if cfg.Max != nil {
		limit.Max = *cfg.Max
	}
	limit.MaxVelocity = cfg.MaxVelocity
	limit.MaxEffort = cfg.MaxEffort

	var j Joint
	switch jt {
	case Rotational:
		j, err = NewRotationalJoint(cfg.Axis.ParseConfig(), limit)
	case Prismatic:
		j, err = NewPrismaticJoint(cfg.Axis.ParseConfig(), limit)
	default:
		j = NewFixedJoint()
		j.Limit.MaxVelocity, j.Limit.MaxEffort = cfg.MaxVelocity, cfg.MaxEffort
	}
	if err != nil {
		return Joint{}, err
	}
	if cfg.Origin != nil {
		j = j.WithOrigin(cfg.Origin.ParseConfig())
	}
	return j, nil
}

// NewLinkConfig constructs a config from a Link.
func NewLinkConfig(l *Link) *LinkConfig {
	if l == nil {
		return nil
	}
	return &LinkConfig{Mass: l.Mass, Frame: spatial.NewPoseConfig(l.Frame), Geometry: l.Geometry}
}

// ParseConfig converts a LinkConfig into a Link.
func (cfg *LinkConfig) ParseConfig() (*Link, error) {
	if cfg == nil {
		return nil, nil
	}
	frame, err := cfg.Frame.ParseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "link frame")
	}
	return NewLink(cfg.Mass, frame, cfg.Geometry)
}

// NewSegmentConfig constructs a config from a Segment.
func NewSegmentConfig(s Segment) *SegmentConfig {
	return &SegmentConfig{
		Name:  s.Name,
		Joint: NewJointConfig(s.Joint),
		Tip:   spatial.NewPoseConfig(s.Tip),
		Link:  NewLinkConfig(s.Link),
	}
}

// ParseConfig converts a SegmentConfig into a Segment. Every problem with the config is reported at once.
func (cfg *SegmentConfig) ParseConfig() (Segment, error) {
	var errs error
	j, err := cfg.Joint.ParseConfig()
	errs = multierr.Append(errs, errors.Wrap(err, "joint"))
	tip, err := cfg.Tip.ParseConfig()
	errs = multierr.Append(errs, errors.Wrap(err, "tip"))
	link, err := cfg.Link.ParseConfig()
	errs = multierr.Append(errs, errors.Wrap(err, "link"))
	if j.Actuated() && cfg.Name == "" {
		errs = multierr.Append(errs, errors.Errorf("%s joint requires a segment name", j.Type))
	}
	if errs != nil {
		return Segment{}, errors.Wrapf(errs, "segment %q", cfg.Name)
	}
	return Segment{Name: cfg.Name, Joint: j, Tip: tip, Link: link}, nil
}

// SegmentFromPoint is a convenience for the common fixed offset: a segment named name whose joint is joint and whose
// tip is the translation pt.
func SegmentFromPoint(name string, joint Joint, pt r3.Vector) Segment {
	return NewSegment(name, joint, spatial.NewPoseFromPoint(pt))
}
