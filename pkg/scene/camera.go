package scene

import (
	"math"

	"github.com/df07/go-software-rasterizer/pkg/core"
)

// MaxPitch keeps the camera just short of looking straight up or down
const MaxPitch = math.Pi/2 - 1e-3

var worldUp = core.NewVec3(0, 1, 0)

// Camera is a first-person viewpoint with no roll. Yaw rotates around world
// +Y, pitch around the camera's right axis. Yaw = Pitch = 0 looks down -Z.
// Camera is a plain value; the renderer works on a copy.
type Camera struct {
	Position core.Vec3
	Yaw      float64 // radians
	Pitch    float64 // radians, within ±MaxPitch
	FovY     float64 // vertical field of view in degrees
	Near     float64
	Far      float64
}

// CameraConfig describes a camera by position and look-at target.
// Zero fields are filled from defaults by MergeCameraConfig.
type CameraConfig struct {
	Position core.Vec3
	LookAt   core.Vec3
	FovY     float64 // degrees
	Near     float64
	Far      float64
}

// NewCamera returns a camera at the origin looking down -Z with a 60 degree
// vertical field of view, near 0.1 and far 100.
func NewCamera() Camera {
	return Camera{FovY: 60, Near: 0.1, Far: 100}
}

// NewCameraFromConfig places a camera at config.Position aimed at config.LookAt
func NewCameraFromConfig(config CameraConfig) Camera {
	config = MergeCameraConfig(DefaultCameraConfig(), config)
	cam := Camera{
		Position: config.Position,
		FovY:     config.FovY,
		Near:     config.Near,
		Far:      config.Far,
	}
	cam.LookAt(config.LookAt)
	return cam
}

// DefaultCameraConfig returns the configuration matching NewCamera.
// A LookAt equal to Position leaves the camera facing -Z.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		FovY: 60,
		Near: 0.1,
		Far:  100,
	}
}

// MergeCameraConfig returns base with every non-zero field of override applied
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	if !override.Position.IsZero() {
		result.Position = override.Position
	}
	if !override.LookAt.IsZero() {
		result.LookAt = override.LookAt
	}
	if override.FovY != 0 {
		result.FovY = override.FovY
	}
	if override.Near != 0 {
		result.Near = override.Near
	}
	if override.Far != 0 {
		result.Far = override.Far
	}
	return result
}

// Orientation returns yaw around world up followed by pitch around the local X axis
func (c Camera) Orientation() core.Quat {
	yaw := core.QuatFromAxisAngle(worldUp, c.Yaw)
	pitch := core.QuatFromAxisAngle(core.NewVec3(1, 0, 0), c.Pitch)
	return yaw.Multiply(pitch)
}

// Forward returns the unit view direction
func (c Camera) Forward() core.Vec3 {
	sinY, cosY := math.Sincos(c.Yaw)
	sinP, cosP := math.Sincos(c.Pitch)
	return core.NewVec3(-sinY*cosP, sinP, -cosY*cosP)
}

// Right returns the unit right vector, always horizontal
func (c Camera) Right() core.Vec3 {
	sinY, cosY := math.Sincos(c.Yaw)
	return core.NewVec3(cosY, 0, -sinY)
}

// Up returns the unit up vector of the view
func (c Camera) Up() core.Vec3 {
	return c.Right().Cross(c.Forward())
}

// HorizontalForward returns Forward projected onto the ground plane
func (c Camera) HorizontalForward() core.Vec3 {
	sinY, cosY := math.Sincos(c.Yaw)
	return core.NewVec3(-sinY, 0, -cosY)
}

// ViewMatrix returns the world-to-view transform
func (c Camera) ViewMatrix() core.Mat4 {
	rotation := core.RotationQuat(c.Orientation().Conjugate())
	return rotation.Multiply(core.Translation(c.Position.Negate()))
}

// ProjectionMatrix returns the perspective projection for the given aspect ratio
func (c Camera) ProjectionMatrix(aspect float64) core.Mat4 {
	return core.Perspective(core.Radians(c.FovY), aspect, c.Near, c.Far)
}

// Rotate applies a yaw delta around world up, then a pitch delta clamped to ±MaxPitch
func (c *Camera) Rotate(dYaw, dPitch float64) {
	c.Yaw = math.Remainder(c.Yaw+dYaw, 2*math.Pi)
	c.Pitch = clampPitch(c.Pitch + dPitch)
}

// Move translates the camera dist units along dir. dir does not need to be normalized.
func (c *Camera) Move(dir core.Vec3, dist float64) {
	c.Position = c.Position.Add(dir.Normalize().Multiply(dist))
}

// LookAt turns the camera toward target. A target at the camera position is ignored.
func (c *Camera) LookAt(target core.Vec3) {
	dir := target.Subtract(c.Position)
	if dir.LengthSquared() == 0 {
		return
	}
	dir = dir.Normalize()
	c.Yaw = math.Atan2(-dir.X, -dir.Z)
	c.Pitch = clampPitch(math.Asin(math.Max(-1, math.Min(1, dir.Y))))
}

// Orbit returns a copy of c swung by angle radians around the vertical axis
// through center, looking at center
func (c Camera) Orbit(center core.Vec3, angle float64) Camera {
	offset := core.RotationY(angle).MulDirection(c.Position.Subtract(center))
	c.Position = center.Add(offset)
	c.LookAt(center)
	return c
}

func clampPitch(p float64) float64 {
	return math.Max(-MaxPitch, math.Min(MaxPitch, p))
}
