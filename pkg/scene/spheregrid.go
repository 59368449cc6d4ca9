package scene

import (
	"fmt"
	"math"

	"github.com/df07/go-software-rasterizer/pkg/core"
	"github.com/df07/go-software-rasterizer/pkg/geometry"
)

// oklchToRGB converts OKLCH color values to RGB
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Vec3 {
	hRad := h * math.Pi / 180.0

	// OKLCH to OKLAB
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	// LMS to linear RGB
	r := +4.0767416621*l_ - 3.3077115913*m_ + 0.2309699292*s_
	g := -1.2684380046*l_ + 2.6097574011*m_ - 0.3413193965*s_
	blue := -0.0041960863*l_ - 0.7034186147*m_ + 1.7076147010*s_

	return core.NewVec3(r, g, blue).Clamp(0, 1)
}

// NewSphereGridScene creates a gridSize x gridSize grid of colored spheres on a
// ground plane. All spheres share one mesh, which stresses the per-object
// geometry stage and the tile binning.
func NewSphereGridScene(gridSize int, cameraOverrides ...CameraConfig) *Scene {
	if gridSize < 1 {
		gridSize = 10
	}

	defaultCameraConfig := CameraConfig{
		Position: core.NewVec3(4.5, 6, 18),    // Farther back and slightly lower
		LookAt:   core.NewVec3(4.5, 0.8, 4.5), // Center of grid, slightly lower
		FovY:     40,
		Near:     0.1,
		Far:      100,
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	s := NewScene("sphere-grid")
	s.Camera = NewCameraFromConfig(cameraConfig)
	s.Background = core.NewVec3(0.5, 0.7, 1.0)
	s.Ambient = 0.2

	s.AddLight(
		NewDirectionalLight(core.NewVec3(-0.5, -1, -0.5), core.NewVec3(1.0, 0.96, 0.9), 0.8),
		NewPointLight(core.NewVec3(20, 25, 20), core.NewVec3(1, 1, 1), 0.3),
	)

	ground := NewObject("ground", geometry.NewPlane(40, 8))
	ground.Position = core.NewVec3(4.5, 0, 4.5)
	ground.Material = NewMaterial(core.NewVec3(0.5, 0.5, 0.5))
	s.Add(ground)

	// Fit the grid into roughly 9x9 units regardless of size
	targetArea := 9.0
	spacing := targetArea
	if gridSize > 1 {
		spacing = targetArea / float64(gridSize-1)
	}
	radius := math.Max(0.02, math.Min(0.35, spacing*0.35))
	sphereMesh := geometry.NewUVSphere(1, 12, 24)

	// OKLCH parameters for color variation
	baseLightness := 0.65
	minChroma := 0.05
	maxChroma := 0.25
	denom := math.Max(1, float64(gridSize-1))

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float64(i)*spacing - targetArea/2.0 + 4.5
			z := float64(j)*spacing - targetArea/2.0 + 4.5

			// Hue varies across X, chroma across Z
			hue := (float64(i) / denom) * 360.0
			chroma := minChroma + (float64(j)/denom)*(maxChroma-minChroma)
			lightness := baseLightness + 0.1*math.Sin(float64(i+j)*0.5)

			sphere := NewObject(fmt.Sprintf("sphere-%d-%d", i, j), sphereMesh)
			sphere.Position = core.NewVec3(x, radius, z)
			sphere.Scale = core.NewVec3(radius, radius, radius)
			sphere.Material = NewShinyMaterial(oklchToRGB(lightness, chroma, hue), 0.5, 32)
			s.Add(sphere)
		}
	}

	return s
}
