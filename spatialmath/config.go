package spatialmath

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// TranslationConfig is the JSON form of a translation.
type TranslationConfig struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// NewTranslationConfig constructs a config from a vector.
func NewTranslationConfig(pt r3.Vector) *TranslationConfig {
	return &TranslationConfig{X: pt.X, Y: pt.Y, Z: pt.Z}
}

// ParseConfig converts a TranslationConfig into a vector.
func (cfg *TranslationConfig) ParseConfig() r3.Vector {
	if cfg == nil {
		return r3.Vector{}
	}
	return r3.Vector{X: cfg.X, Y: cfg.Y, Z: cfg.Z}
}

// AxisConfig is the JSON form of a joint axis.
type AxisConfig TranslationConfig

// NewAxisConfig constructs a config from an axis vector.
func NewAxisConfig(axis r3.Vector) AxisConfig {
	return AxisConfig{X: axis.X, Y: axis.Y, Z: axis.Z}
}

// ParseConfig converts an AxisConfig into a vector. The axis is not normalized.
func (cfg AxisConfig) ParseConfig() r3.Vector {
	return r3.Vector{X: cfg.X, Y: cfg.Y, Z: cfg.Z}
}

// PoseConfig is the JSON form of a pose: a translation and an axis-angle rotation. A missing rotation is the identity.
type PoseConfig struct {
	Translation TranslationConfig `json:"translation"`
	Rotation    *R4AA             `json:"rotation,omitempty"`
}

// NewPoseConfig constructs a config from a pose. The identity rotation is omitted.
func NewPoseConfig(p Pose) *PoseConfig {
	cfg := &PoseConfig{Translation: *NewTranslationConfig(p.Point())}
	if !p.Rotation().ApproxEqual(mgl64.Ident3()) {
		cfg.Rotation = p.Orientation()
	}
	return cfg
}

// ParseConfig converts a PoseConfig into a Pose.
func (cfg *PoseConfig) ParseConfig() (Pose, error) {
	if cfg == nil {
		return NewZeroPose(), nil
	}
	pt := cfg.Translation.ParseConfig()
	if cfg.Rotation == nil {
		return NewPoseFromPoint(pt), nil
	}
	aa := *cfg.Rotation
	if aa.Theta != 0 && aa.Axis().Norm2() == 0 {
		return Pose{}, errors.Errorf("rotation of %v radians has no axis", aa.Theta)
	}
	return NewPoseFromAxisAngle(pt, &aa), nil
}
