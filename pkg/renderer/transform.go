package renderer

import (
	"github.com/df07/go-software-rasterizer/pkg/core"
	"github.com/df07/go-software-rasterizer/pkg/geometry"
)

// ClipVertex is a vertex after the model-view-projection transform.
// View and Normal are in view space, where the camera sits at the origin looking down -Z.
type ClipVertex struct {
	Position core.Vec4
	View     core.Vec3
	Normal   core.Vec3
	Color    core.Vec3
}

// Lerp interpolates every attribute linearly
func (v ClipVertex) Lerp(other ClipVertex, t float64) ClipVertex {
	return ClipVertex{
		Position: v.Position.Lerp(other.Position, t),
		View:     v.View.Lerp(other.View, t),
		Normal:   v.Normal.Lerp(other.Normal, t),
		Color:    v.Color.Lerp(other.Color, t),
	}
}

// ClipTriangle is three clip-space vertices in submission order
type ClipTriangle [3]ClipVertex

// Transform carries the matrices for one object in one frame
type Transform struct {
	ModelView core.Mat4
	MVP       core.Mat4
	Normal    core.Mat4
}

// NewTransform precomputes the combined matrices for model, view and projection
func NewTransform(model, view, projection core.Mat4) Transform {
	modelView := view.Multiply(model)
	return Transform{
		ModelView: modelView,
		MVP:       projection.Multiply(modelView),
		Normal:    modelView.NormalMatrix(),
	}
}

// Vertex transforms a mesh vertex into clip space
func (t Transform) Vertex(v geometry.Vertex) ClipVertex {
	p := core.Point(v.Position)
	return ClipVertex{
		Position: t.MVP.MulVec4(p),
		View:     t.ModelView.MulVec4(p).XYZ(),
		Normal:   t.Normal.MulDirection(v.Normal).Normalize(),
		Color:    v.Color,
	}
}

// Outside reports whether all points lie outside one of the clip planes
func (t Transform) Outside(points []core.Vec3) bool {
	mask := uint8(0xff)
	for _, p := range points {
		mask &= Outcode(t.MVP.MulVec4(core.Point(p)))
		if mask == 0 {
			return false
		}
	}
	return len(points) > 0
}
