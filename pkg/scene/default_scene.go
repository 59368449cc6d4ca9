package scene

import (
	"math"

	"github.com/df07/go-software-rasterizer/pkg/core"
	"github.com/df07/go-software-rasterizer/pkg/geometry"
)

// NewDefaultScene creates a default scene with a cube, spheres and a ground plane
func NewDefaultScene(cameraOverrides ...CameraConfig) *Scene {
	// Default camera configuration
	defaultCameraConfig := CameraConfig{
		Position: core.NewVec3(0, 2, 6),   // Above and behind the objects
		LookAt:   core.NewVec3(0, 0.5, 0), // Center of the group
		FovY:     45,
		Near:     0.1,
		Far:      100,
	}

	// Apply any overrides using the reusable merge function
	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	s := NewScene("default")
	s.Camera = NewCameraFromConfig(cameraConfig)
	s.Background = core.NewVec3(0.5, 0.7, 1.0) // Light blue sky
	s.Ambient = 0.15

	ground := NewObject("ground", geometry.NewPlane(20, 10))
	ground.Material = NewMaterial(core.NewVec3(0.5, 0.5, 0.5))

	cube := NewObject("cube", geometry.NewCube(1))
	cube.Position = core.NewVec3(0, 0.5, 0)
	cube.Rotation = core.QuatFromAxisAngle(core.NewVec3(0, 1, 0), math.Pi/6)
	cube.Material = NewMaterial(core.NewVec3(0.65, 0.25, 0.2))

	sphereMesh := geometry.NewUVSphere(0.5, 24, 48)

	left := NewObject("left-sphere", sphereMesh)
	left.Position = core.NewVec3(-1.5, 0.5, 0.3)
	left.Material = NewShinyMaterial(core.NewVec3(0.1, 0.2, 0.5), 0.6, 48)

	right := NewObject("right-sphere", sphereMesh)
	right.Position = core.NewVec3(1.5, 0.5, 0.3)
	right.Material = NewShinyMaterial(core.NewVec3(0.8, 0.6, 0.2), 0.4, 16)

	s.Add(ground, cube, left, right)

	// Sun from the upper left plus a warm fill near the camera
	s.AddLight(
		NewDirectionalLight(core.NewVec3(0.4, -1, -0.6), core.NewVec3(1, 1, 1), 0.8),
		NewPointLight(core.NewVec3(2, 3, 4), core.NewVec3(1.0, 0.9, 0.8), 0.6).
			WithAttenuation(1, 0.05, 0.01),
	)

	return s
}

// NewTriangleScene creates a single white triangle in front of the camera,
// lit head-on. Useful for checking the pipeline end to end.
func NewTriangleScene(cameraOverrides ...CameraConfig) *Scene {
	cameraConfig := DefaultCameraConfig()
	if len(cameraOverrides) > 0 {
		cameraConfig = MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	s := NewScene("triangle")
	s.Camera = NewCameraFromConfig(cameraConfig)
	s.Ambient = 0

	tri := NewObject("triangle", geometry.NewTriangle(
		core.NewVec3(-1, -1, -3),
		core.NewVec3(1, -1, -3),
		core.NewVec3(0, 1, -3),
	))
	s.Add(tri)
	s.AddLight(NewDirectionalLight(core.NewVec3(0, 0, -1), core.NewVec3(1, 1, 1), 1))

	return s
}
