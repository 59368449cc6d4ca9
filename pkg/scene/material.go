package scene

import "github.com/df07/go-software-rasterizer/pkg/core"

// Material describes how an object's surface responds to light.
// Color multiplies the vertex colors of the mesh. Specular > 0 adds a
// Blinn-Phong highlight with the given Shininess exponent.
type Material struct {
	Color     core.Vec3
	Specular  float64
	Shininess float64
}

// DefaultMaterial returns a white, purely diffuse material
func DefaultMaterial() Material {
	return Material{Color: core.NewVec3(1, 1, 1), Shininess: 32}
}

// NewMaterial returns a diffuse material of the given color
func NewMaterial(color core.Vec3) Material {
	m := DefaultMaterial()
	m.Color = color
	return m
}

// NewShinyMaterial returns a material with a specular highlight
func NewShinyMaterial(color core.Vec3, specular, shininess float64) Material {
	return Material{Color: color, Specular: specular, Shininess: shininess}
}
