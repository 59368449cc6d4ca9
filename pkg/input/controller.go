package input

import (
	"github.com/df07/go-software-rasterizer/pkg/core"
	"github.com/df07/go-software-rasterizer/pkg/scene"
)

var worldUp = core.NewVec3(0, 1, 0)

// Controller moves a first-person camera from collected actions
type Controller struct {
	Speed       float64 // world units per second
	Sensitivity float64 // radians per pixel of pointer motion
}

// DefaultController returns a controller moving 3 units per second
func DefaultController() Controller {
	return Controller{Speed: 3, Sensitivity: 0.003}
}

// Apply returns cam after one frame of dt seconds. The pointer delta turns the
// camera first (moving right turns right, moving down looks down), then the
// actions move it along the horizontal forward and right axes and world up.
// Opposite actions cancel; diagonal movement is not faster than straight.
func (c Controller) Apply(cam scene.Camera, actions []Action, look core.Vec2, dt float64) scene.Camera {
	if look.X != 0 || look.Y != 0 {
		cam.Rotate(-look.X*c.Sensitivity, -look.Y*c.Sensitivity)
	}

	var dir core.Vec3
	for _, a := range actions {
		switch a {
		case MoveForward:
			dir = dir.Add(cam.HorizontalForward())
		case MoveBackward:
			dir = dir.Subtract(cam.HorizontalForward())
		case MoveRight:
			dir = dir.Add(cam.Right())
		case MoveLeft:
			dir = dir.Subtract(cam.Right())
		case MoveUp:
			dir = dir.Add(worldUp)
		case MoveDown:
			dir = dir.Subtract(worldUp)
		}
	}
	if dir.LengthSquared() > 1e-12 && dt > 0 {
		cam.Move(dir, c.Speed*dt)
	}
	return cam
}
