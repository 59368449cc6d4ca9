package scene

import (
	"math"

	"github.com/df07/go-software-rasterizer/pkg/core"
	"github.com/df07/go-software-rasterizer/pkg/geometry"
)

// NewCornellScene creates a Cornell box: a 555-unit room with a red left
// wall, a green right wall and two rotated boxes, lit from a point light
// just below the ceiling.
func NewCornellScene(cameraOverrides ...CameraConfig) *Scene {
	defaultCameraConfig := CameraConfig{
		Position: core.NewVec3(278, 278, 800), // Outside the open front of the box
		LookAt:   core.NewVec3(278, 278, 0),
		FovY:     40,
		Near:     1,
		Far:      2000,
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	s := NewScene("cornell-box")
	s.Camera = NewCameraFromConfig(cameraConfig)
	s.Ambient = 0.1

	white := NewMaterial(core.NewVec3(0.73, 0.73, 0.73))
	red := NewMaterial(core.NewVec3(0.65, 0.05, 0.05))
	green := NewMaterial(core.NewVec3(0.12, 0.45, 0.15))

	boxSize := 555.0
	half := boxSize / 2
	wall := geometry.NewPlane(1, 4)

	// Each wall is the unit +Y plane rotated to face into the room
	addWall := func(name string, position core.Vec3, rotation core.Quat, material Material) {
		o := NewObject(name, wall)
		o.Position = position
		o.Rotation = rotation
		o.Scale = core.NewVec3(boxSize, 1, boxSize)
		o.Material = material
		s.Add(o)
	}

	addWall("floor", core.NewVec3(half, 0, -half), core.IdentityQuat(), white)
	addWall("ceiling", core.NewVec3(half, boxSize, -half),
		core.QuatFromAxisAngle(core.NewVec3(1, 0, 0), math.Pi), white)
	addWall("back", core.NewVec3(half, half, -boxSize),
		core.QuatFromAxisAngle(core.NewVec3(1, 0, 0), math.Pi/2), white)
	addWall("left", core.NewVec3(0, half, -half),
		core.QuatFromAxisAngle(core.NewVec3(0, 0, 1), -math.Pi/2), red)
	addWall("right", core.NewVec3(boxSize, half, -half),
		core.QuatFromAxisAngle(core.NewVec3(0, 0, 1), math.Pi/2), green)

	cube := geometry.NewCube(1)

	tall := NewObject("tall-box", cube)
	tall.Position = core.NewVec3(185, 165, -370)
	tall.Scale = core.NewVec3(165, 330, 165)
	tall.Rotation = core.QuatFromAxisAngle(core.NewVec3(0, 1, 0), core.Radians(15))
	tall.Material = white

	short := NewObject("short-box", cube)
	short.Position = core.NewVec3(370, 82.5, -170)
	short.Scale = core.NewVec3(165, 165, 165)
	short.Rotation = core.QuatFromAxisAngle(core.NewVec3(0, 1, 0), core.Radians(-18))
	short.Material = white

	s.Add(tall, short)

	s.AddLight(NewPointLight(core.NewVec3(half, boxSize-10, -half), core.NewVec3(1, 0.95, 0.85), 1.2).
		WithAttenuation(1, 0.0005, 0.000002))

	return s
}
