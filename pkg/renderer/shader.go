package renderer

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/df07/go-software-rasterizer/pkg/core"
	"github.com/df07/go-software-rasterizer/pkg/scene"
)

// ShadingMode selects where lighting is evaluated
type ShadingMode int

const (
	// Phong lights every fragment with its interpolated normal
	Phong ShadingMode = iota
	// Gouraud lights vertices and interpolates the resulting colors
	Gouraud
	// Flat lights every fragment with the triangle's face normal
	Flat
)

func (m ShadingMode) String() string {
	switch m {
	case Phong:
		return "phong"
	case Gouraud:
		return "gouraud"
	case Flat:
		return "flat"
	default:
		return fmt.Sprintf("ShadingMode(%d)", int(m))
	}
}

// ParseShadingMode accepts the names returned by String, in any case
func ParseShadingMode(s string) (ShadingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "phong", "":
		return Phong, nil
	case "gouraud":
		return Gouraud, nil
	case "flat":
		return Flat, nil
	}
	return Phong, fmt.Errorf("unknown shading mode %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (m ShadingMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *ShadingMode) UnmarshalText(text []byte) error {
	mode, err := ParseShadingMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Shader evaluates lighting in view space
type Shader struct {
	Lights  []scene.Light
	Ambient float64
	Mode    ShadingMode
}

// NewShader transforms lights into view space once for the frame
func NewShader(lights []scene.Light, view core.Mat4, ambient float64, mode ShadingMode) *Shader {
	viewLights := make([]scene.Light, len(lights))
	for i, l := range lights {
		viewLights[i] = l.Transform(view)
	}
	return &Shader{Lights: viewLights, Ambient: ambient, Mode: mode}
}

// Shade returns the color of a fragment. In Gouraud mode the fragment color
// already carries the lighting computed at the vertices.
func (s *Shader) Shade(frag Fragment, mat scene.Material) core.Vec3 {
	if s.Mode == Gouraud {
		return frag.Color.Clamp(0, 1)
	}
	return s.Light(frag.Position, frag.Normal, frag.Color, mat)
}

// ShadeVertex lights a clip vertex, for Gouraud shading
func (s *Shader) ShadeVertex(v ClipVertex, mat scene.Material) core.Vec3 {
	return s.Light(v.View, v.Normal, v.Color, mat)
}

// Light computes ambient plus the sum of Lambertian terms over all lights,
// adding Blinn-Phong highlights when the material is specular.
func (s *Shader) Light(position, normal, vertexColor core.Vec3, mat scene.Material) core.Vec3 {
	n := normal.Normalize()
	base := vertexColor.MultiplyVec(mat.Color)

	intensity := core.NewVec3(s.Ambient, s.Ambient, s.Ambient)
	var specular core.Vec3
	for _, l := range s.Lights {
		var toLight core.Vec3
		att := 1.0
		if l.Type == scene.Point {
			offset := l.Position.Subtract(position)
			toLight = offset.Normalize()
			att = l.Attenuation(offset.Length())
		} else {
			toLight = l.Direction.Negate()
		}

		nDotL := n.Dot(toLight)
		if nDotL <= 0 {
			continue
		}
		strength := l.Intensity * att
		intensity = intensity.Add(l.Color.Multiply(strength * nDotL))

		if mat.Specular > 0 {
			// The eye sits at the view-space origin
			half := toLight.Add(position.Negate().Normalize()).Normalize()
			if nDotH := n.Dot(half); nDotH > 0 {
				highlight := mat.Specular * strength * math.Pow(nDotH, mat.Shininess)
				specular = specular.Add(l.Color.Multiply(highlight))
			}
		}
	}

	return base.MultiplyVec(intensity).Add(specular).Clamp(0, 1)
}

// ToRGBA converts a linear color to 8 bits per channel. A gamma other than 0
// or 1 is applied as c^(1/gamma) after clamping.
func ToRGBA(c core.Vec3, gamma float64) color.RGBA {
	c = c.Clamp(0, 1)
	if gamma > 0 && gamma != 1 {
		c = c.GammaCorrect(gamma)
	}
	return color.RGBA{
		R: uint8(c.X*255 + 0.5),
		G: uint8(c.Y*255 + 0.5),
		B: uint8(c.Z*255 + 0.5),
		A: 255,
	}
}
