package scene

import (
	"github.com/df07/go-software-rasterizer/pkg/core"
	"github.com/df07/go-software-rasterizer/pkg/geometry"
)

// Object places a mesh in the world
type Object struct {
	Name          string
	Mesh          *geometry.Mesh
	Position      core.Vec3
	Rotation      core.Quat
	Scale         core.Vec3
	Material      Material
	CullBackfaces bool
}

// NewObject creates an object at the origin with identity rotation, unit
// scale, the default material and backface culling enabled
func NewObject(name string, mesh *geometry.Mesh) *Object {
	return &Object{
		Name:          name,
		Mesh:          mesh,
		Rotation:      core.IdentityQuat(),
		Scale:         core.NewVec3(1, 1, 1),
		Material:      DefaultMaterial(),
		CullBackfaces: true,
	}
}

// ModelMatrix returns Translation · Rotation · Scale.
// A zero Scale is treated as unit scale and a zero Rotation as identity.
func (o Object) ModelMatrix() core.Mat4 {
	scale := o.Scale
	if scale.IsZero() {
		scale = core.NewVec3(1, 1, 1)
	}
	return core.Translation(o.Position).
		Multiply(core.RotationQuat(o.Rotation.Normalize())).
		Multiply(core.Scale(scale))
}

// WorldBounds returns the world-space box enclosing the transformed mesh bounds
func (o Object) WorldBounds() core.AABB {
	if o.Mesh == nil {
		return core.AABB{}
	}
	model := o.ModelMatrix()
	corners := o.Mesh.Bounds().Corners()
	for i := range corners {
		corners[i] = model.MulPoint(corners[i])
	}
	return core.NewAABBFromPoints(corners[:]...)
}
