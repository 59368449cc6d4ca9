package geometry

import (
	"math"

	"github.com/df07/go-software-rasterizer/pkg/core"
)

// mustMesh wraps NewMesh for generators whose indices are correct by construction
func mustMesh(vertices []Vertex, indices []int) *Mesh {
	mesh, err := NewMesh(vertices, indices, nil)
	if err != nil {
		panic(err)
	}
	return mesh
}

// NewTriangle creates a single-triangle mesh with a flat normal.
// The front face is the side from which a, b, c appear counter-clockwise.
func NewTriangle(a, b, c core.Vec3) *Mesh {
	n := b.Subtract(a).Cross(c.Subtract(a)).Normalize()
	return mustMesh([]Vertex{
		{Position: a, Normal: n},
		{Position: b, Normal: n},
		{Position: c, Normal: n},
	}, []int{0, 1, 2})
}

// cubeFaces lists each face normal with two in-plane axes where u x v = normal
var cubeFaces = [6][3]core.Vec3{
	{{X: 1}, {Z: -1}, {Y: 1}},
	{{X: -1}, {Z: 1}, {Y: 1}},
	{{Y: 1}, {X: 1}, {Z: -1}},
	{{Y: -1}, {X: 1}, {Z: 1}},
	{{Z: 1}, {X: 1}, {Y: 1}},
	{{Z: -1}, {X: -1}, {Y: 1}},
}

// NewCube creates an axis-aligned cube centered at the origin with the given
// edge length. Each face has its own four vertices so normals stay flat.
func NewCube(size float64) *Mesh {
	h := size / 2
	vertices := make([]Vertex, 0, 24)
	indices := make([]int, 0, 36)

	for _, face := range cubeFaces {
		n, u, v := face[0], face[1], face[2]
		center := n.Multiply(h)
		base := len(vertices)
		for _, corner := range [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := center.Add(u.Multiply(corner[0] * h)).Add(v.Multiply(corner[1] * h))
			vertices = append(vertices, Vertex{Position: p, Normal: n})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	return mustMesh(vertices, indices)
}

// NewPlane creates a square in the XZ plane at y=0 facing +Y, split into
// divisions x divisions cells. divisions below 1 is treated as 1.
func NewPlane(size float64, divisions int) *Mesh {
	if divisions < 1 {
		divisions = 1
	}
	h := size / 2
	step := size / float64(divisions)
	up := core.NewVec3(0, 1, 0)
	row := divisions + 1

	vertices := make([]Vertex, 0, row*row)
	for j := 0; j <= divisions; j++ {
		for i := 0; i <= divisions; i++ {
			p := core.NewVec3(-h+float64(i)*step, 0, -h+float64(j)*step)
			vertices = append(vertices, Vertex{Position: p, Normal: up})
		}
	}

	indices := make([]int, 0, divisions*divisions*6)
	for j := 0; j < divisions; j++ {
		for i := 0; i < divisions; i++ {
			p00 := j*row + i
			p10 := p00 + 1
			p01 := p00 + row
			p11 := p01 + 1
			indices = append(indices, p00, p01, p10, p10, p01, p11)
		}
	}

	return mustMesh(vertices, indices)
}

// NewUVSphere creates a sphere centered at the origin from latitude rings and
// longitude segments. rings is clamped to at least 2, segments to at least 3.
func NewUVSphere(radius float64, rings, segments int) *Mesh {
	if rings < 2 {
		rings = 2
	}
	if segments < 3 {
		segments = 3
	}
	row := segments + 1

	vertices := make([]Vertex, 0, (rings+1)*row)
	for r := 0; r <= rings; r++ {
		theta := math.Pi * float64(r) / float64(rings)
		sinT, cosT := math.Sincos(theta)
		for s := 0; s <= segments; s++ {
			phi := 2 * math.Pi * float64(s) / float64(segments)
			sinP, cosP := math.Sincos(phi)
			n := core.NewVec3(sinT*cosP, cosT, sinT*sinP)
			vertices = append(vertices, Vertex{Position: n.Multiply(radius), Normal: n})
		}
	}

	indices := make([]int, 0, rings*segments*6)
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a := r*row + s
			b := a + row
			c := b + 1
			d := a + 1
			// Pole rows collapse one edge of the quad; skip the zero-area half
			if r != 0 {
				indices = append(indices, a, d, b)
			}
			if r != rings-1 {
				indices = append(indices, d, c, b)
			}
		}
	}

	return mustMesh(vertices, indices)
}
