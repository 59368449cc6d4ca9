package geometry

import (
	"errors"
	"fmt"

	"github.com/df07/go-software-rasterizer/pkg/core"
)

var (
	// ErrNotTriangles is returned when the index count is not a multiple of 3
	ErrNotTriangles = errors.New("index count is not a multiple of 3")
	// ErrIndexOutOfRange is returned when an index does not name a vertex
	ErrIndexOutOfRange = errors.New("vertex index out of range")
)

// Vertex is a mesh vertex in object space. Color is linear RGB in [0,1].
type Vertex struct {
	Position core.Vec3
	Normal   core.Vec3
	Color    core.Vec3
}

// Mesh is an indexed triangle list. Each consecutive triple of indices is
// one triangle with counter-clockwise front faces.
// A mesh must not be modified while a frame that references it is rendering.
type Mesh struct {
	Vertices []Vertex
	Indices  []int

	bounds    core.AABB
	hasBounds bool
}

// MeshOptions contains optional parameters for mesh creation
type MeshOptions struct {
	// ComputeNormals replaces every vertex normal with an area-weighted
	// average of the adjacent face normals. Vertices with a zero normal get
	// one generated regardless.
	ComputeNormals bool
	// Color overrides the color of every vertex
	Color *core.Vec3
}

// NewMesh validates the index list and builds a mesh.
// The vertex slice is copied so the caller may reuse it.
// options may be nil.
func NewMesh(vertices []Vertex, indices []int, options *MeshOptions) (*Mesh, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("mesh with %d indices: %w", len(indices), ErrNotTriangles)
	}
	for i, idx := range indices {
		if idx < 0 || idx >= len(vertices) {
			return nil, fmt.Errorf("index %d at position %d (have %d vertices): %w",
				idx, i, len(vertices), ErrIndexOutOfRange)
		}
	}

	verts := make([]Vertex, len(vertices))
	copy(verts, vertices)

	mesh := &Mesh{
		Vertices: verts,
		Indices:  append([]int(nil), indices...),
	}

	if options != nil && options.Color != nil {
		for i := range mesh.Vertices {
			mesh.Vertices[i].Color = *options.Color
		}
	} else {
		mesh.defaultColors()
	}

	mesh.generateNormals(options != nil && options.ComputeNormals)
	mesh.bounds = mesh.computeBounds()
	mesh.hasBounds = true
	return mesh, nil
}

// defaultColors paints the mesh white when no vertex carries a color
func (m *Mesh) defaultColors() {
	for _, v := range m.Vertices {
		if !v.Color.IsZero() {
			return
		}
	}
	white := core.NewVec3(1, 1, 1)
	for i := range m.Vertices {
		m.Vertices[i].Color = white
	}
}

func (m *Mesh) generateNormals(all bool) {
	needed := all
	if !needed {
		for _, v := range m.Vertices {
			if v.Normal.IsZero() {
				needed = true
				break
			}
		}
	}
	if !needed {
		for i := range m.Vertices {
			m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
		}
		return
	}

	// Unnormalized cross products weight each face by its area
	accum := make([]core.Vec3, len(m.Vertices))
	for t := 0; t < len(m.Indices); t += 3 {
		i0, i1, i2 := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		p0 := m.Vertices[i0].Position
		p1 := m.Vertices[i1].Position
		p2 := m.Vertices[i2].Position
		n := p1.Subtract(p0).Cross(p2.Subtract(p0))
		accum[i0] = accum[i0].Add(n)
		accum[i1] = accum[i1].Add(n)
		accum[i2] = accum[i2].Add(n)
	}

	for i := range m.Vertices {
		if !all && !m.Vertices[i].Normal.IsZero() {
			m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
			continue
		}
		n := accum[i].Normalize()
		if n.IsZero() {
			// Unreferenced or only part of degenerate faces
			n = core.NewVec3(0, 0, 1)
		}
		m.Vertices[i].Normal = n
	}
}

func (m *Mesh) computeBounds() core.AABB {
	if len(m.Vertices) == 0 {
		return core.AABB{}
	}
	points := make([]core.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		points[i] = v.Position
	}
	return core.NewAABBFromPoints(points...)
}

// TriangleCount returns the number of triangles in the mesh
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Triangle returns the three vertices of triangle i
func (m *Mesh) Triangle(i int) (a, b, c Vertex) {
	base := i * 3
	return m.Vertices[m.Indices[base]], m.Vertices[m.Indices[base+1]], m.Vertices[m.Indices[base+2]]
}

// Bounds returns the object-space bounding box of the mesh vertices
func (m *Mesh) Bounds() core.AABB {
	if m.hasBounds {
		return m.bounds
	}
	return m.computeBounds()
}

// IsDegenerate reports whether the triangle has (near) zero area
func IsDegenerate(a, b, c core.Vec3) bool {
	return b.Subtract(a).Cross(c.Subtract(a)).LengthSquared() < 1e-24
}
