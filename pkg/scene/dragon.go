package scene

import (
	"math"
	"os"

	"github.com/df07/go-software-rasterizer/pkg/core"
	"github.com/df07/go-software-rasterizer/pkg/geometry"
	"github.com/df07/go-software-rasterizer/pkg/loaders"
)

// dragonPaths are tried in order so the scene works from the project root
// (command line) and from web/ (web server)
var dragonPaths = []string{
	"models/dragon_remeshed.ply",
	"../models/dragon_remeshed.ply",
}

// NewDragonScene creates a scene with the dragon PLY mesh on a ground plane.
// If loadMesh is false, or the file cannot be found or parsed, a sphere
// stands in for the dragon so the scene stays renderable.
func NewDragonScene(loadMesh bool, cameraOverrides ...CameraConfig) *Scene {
	defaultCameraConfig := CameraConfig{
		Position: core.NewVec3(2.2, 1.6, 2.6),
		LookAt:   core.NewVec3(0, 0.6, 0),
		FovY:     35,
		Near:     0.05,
		Far:      50,
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	s := NewScene("dragon")
	s.Camera = NewCameraFromConfig(cameraConfig)
	s.Background = core.NewVec3(0.05, 0.05, 0.08)
	s.Ambient = 0.08

	addDragonLighting(s)

	ground := NewObject("ground", geometry.NewPlane(10, 4))
	ground.Material = NewMaterial(core.NewVec3(0.6, 0.6, 0.6))
	s.Add(ground)

	var mesh *geometry.Mesh
	if loadMesh {
		mesh = loadDragonMesh()
	}

	dragon := dragonObject(mesh)
	dragon.Material = NewShinyMaterial(core.NewVec3(0.7, 0.5, 0.2), 0.8, 64) // gold
	s.Add(dragon)

	return s
}

// addDragonLighting adds a key, fill and rim light
func addDragonLighting(s *Scene) {
	s.AddLight(
		NewDirectionalLight(core.NewVec3(-0.6, -1, -0.4), core.NewVec3(1.0, 0.93, 0.8), 0.9),
		NewDirectionalLight(core.NewVec3(0.8, -0.3, 0.2), core.NewVec3(0.7, 0.8, 1.0), 0.25),
		NewPointLight(core.NewVec3(-1, 3, -3), core.NewVec3(1, 0.9, 0.8), 0.5).
			WithAttenuation(1, 0.1, 0.02),
	)
}

// loadDragonMesh returns nil when the model is unavailable
func loadDragonMesh() *geometry.Mesh {
	for _, path := range dragonPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		mesh, err := loaders.LoadPLY(path)
		if err != nil {
			core.Logger().Warn("failed to load dragon mesh", "path", path, "error", err)
			return nil
		}
		return mesh
	}
	core.Logger().Warn("dragon PLY file not found, using placeholder", "paths", dragonPaths)
	return nil
}

// dragonObject fits the mesh into a 1.5 unit box resting on y=0.
// The source model is Z-up, so it is turned onto the Y-up ground.
func dragonObject(mesh *geometry.Mesh) *Object {
	if mesh == nil {
		placeholder := NewObject("dragon-placeholder", geometry.NewUVSphere(0.6, 24, 48))
		placeholder.Position = core.NewVec3(0, 0.6, 0)
		return placeholder
	}

	o := NewObject("dragon", mesh)
	o.Rotation = core.QuatFromAxisAngle(core.NewVec3(0, 1, 0), core.Radians(-53)).
		Multiply(core.QuatFromAxisAngle(core.NewVec3(1, 0, 0), -math.Pi/2))

	bounds := mesh.Bounds()
	size := bounds.Size()
	extent := math.Max(size.X, math.Max(size.Y, size.Z))
	if extent <= 0 {
		return o
	}
	scale := 1.5 / extent
	o.Scale = core.NewVec3(scale, scale, scale)

	// Center on the origin and sit on the ground
	world := o.WorldBounds()
	center := world.Center()
	o.Position = core.NewVec3(-center.X, -world.Min.Y, -center.Z)
	return o
}
