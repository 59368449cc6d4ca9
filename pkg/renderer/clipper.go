package renderer

import "github.com/df07/go-software-rasterizer/pkg/core"

// MaxClipVertices bounds a clipped triangle: three vertices plus at most one per plane
const MaxClipVertices = 9

// Plane identifies one of the six clip-space planes
type Plane int

const (
	Near Plane = iota
	Far
	Left
	Right
	Top
	Bottom
	numPlanes
)

// Distance is the signed distance of v from the plane; inside is >= 0
func (p Plane) Distance(v core.Vec4) float64 {
	switch p {
	case Near:
		return v.Z + v.W
	case Far:
		return v.W - v.Z
	case Left:
		return v.X + v.W
	case Right:
		return v.W - v.X
	case Top:
		return v.W - v.Y
	default:
		return v.Y + v.W
	}
}

// Outcode returns a bit per plane that v lies outside of
func Outcode(v core.Vec4) uint8 {
	var code uint8
	for p := Near; p < numPlanes; p++ {
		if p.Distance(v) < 0 {
			code |= 1 << p
		}
	}
	return code
}

// Clipper clips triangles against the view volume. It reuses two scratch
// polygons between calls and is not safe for concurrent use.
type Clipper struct {
	a, b [MaxClipVertices]ClipVertex
}

// ClipTriangle appends the triangles covering the visible part of tri to dst.
// A triangle inside every plane is appended unchanged; one outside any single
// plane appends nothing.
func (c *Clipper) ClipTriangle(tri ClipTriangle, dst []ClipTriangle) []ClipTriangle {
	o0 := Outcode(tri[0].Position)
	o1 := Outcode(tri[1].Position)
	o2 := Outcode(tri[2].Position)
	if o0|o1|o2 == 0 {
		return append(dst, tri)
	}
	if o0&o1&o2 != 0 {
		return dst
	}

	in, out := &c.a, &c.b
	copy(in[:], tri[:])
	n := 3
	crossed := o0 | o1 | o2
	for p := Near; p < numPlanes; p++ {
		if crossed&(1<<p) == 0 {
			continue
		}
		n = clipPolygon(p, in[:n], out)
		if n < 3 {
			return dst
		}
		in, out = out, in
	}

	for i := 1; i < n-1; i++ {
		dst = append(dst, ClipTriangle{in[0], in[i], in[i+1]})
	}
	return dst
}

// clipPolygon is one Sutherland-Hodgman step against plane p
func clipPolygon(p Plane, poly []ClipVertex, out *[MaxClipVertices]ClipVertex) int {
	n := 0
	emit := func(v ClipVertex) {
		if n < MaxClipVertices {
			out[n] = v
			n++
		}
	}

	for i := range poly {
		cur := poly[i]
		next := poly[(i+1)%len(poly)]
		dc := p.Distance(cur.Position)
		dn := p.Distance(next.Position)

		if dc >= 0 {
			emit(cur)
		}
		if (dc > 0 && dn < 0) || (dc < 0 && dn > 0) {
			emit(cur.Lerp(next, dc/(dc-dn)))
		}
	}
	return n
}
