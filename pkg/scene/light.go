package scene

import (
	"math"

	"github.com/df07/go-software-rasterizer/pkg/core"
)

// LightType distinguishes lights at infinity from positional lights
type LightType int

const (
	// Directional lights are infinitely far away and have no falloff
	Directional LightType = iota
	// Point lights radiate from a position with distance attenuation
	Point
)

func (t LightType) String() string {
	switch t {
	case Directional:
		return "directional"
	case Point:
		return "point"
	default:
		return "unknown"
	}
}

// Light is a directional or point light.
// Direction is the direction the light travels, so surfaces facing -Direction are lit.
// Point lights attenuate by 1 / (Constant + Linear·d + Quadratic·d²).
type Light struct {
	Type      LightType
	Direction core.Vec3
	Position  core.Vec3
	Color     core.Vec3
	Intensity float64
	Constant  float64
	Linear    float64
	Quadratic float64
}

// NewDirectionalLight creates a light at infinity. A zero direction becomes
// -Z and negative intensities are clamped to 0.
func NewDirectionalLight(direction, color core.Vec3, intensity float64) Light {
	if direction.IsZero() {
		direction = core.NewVec3(0, 0, -1)
	}
	return Light{
		Type:      Directional,
		Direction: direction.Normalize(),
		Color:     color,
		Intensity: math.Max(0, intensity),
	}
}

// NewPointLight creates a point light with no distance falloff (attenuation 1, 0, 0)
func NewPointLight(position, color core.Vec3, intensity float64) Light {
	return Light{
		Type:      Point,
		Position:  position,
		Color:     color,
		Intensity: math.Max(0, intensity),
		Constant:  1,
	}
}

// WithAttenuation returns a copy of the light with the given falloff constants
func (l Light) WithAttenuation(constant, linear, quadratic float64) Light {
	l.Constant = constant
	l.Linear = linear
	l.Quadratic = quadratic
	return l
}

// Attenuation returns the falloff factor at distance d. Directional lights
// always return 1, as does a point light whose denominator is not positive.
func (l Light) Attenuation(d float64) float64 {
	if l.Type != Point {
		return 1
	}
	denom := l.Constant + l.Linear*d + l.Quadratic*d*d
	if denom <= 0 {
		return 1
	}
	return 1 / denom
}

// Transform returns the light with its position and direction mapped by m
func (l Light) Transform(m core.Mat4) Light {
	l.Position = m.MulPoint(l.Position)
	l.Direction = m.MulDirection(l.Direction).Normalize()
	return l
}
