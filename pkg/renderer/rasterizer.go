package renderer

import (
	"fmt"
	"image"
	"math"

	"github.com/df07/go-software-rasterizer/pkg/core"
	"github.com/df07/go-software-rasterizer/pkg/scene"
)

const (
	subPixelBits  = 8
	subPixelScale = 1 << subPixelBits
	halfPixel     = subPixelScale / 2

	// minW replaces a non-positive w that slipped past the clipper
	minW = 1e-6
)

// Fragment is a covered pixel with its interpolated attributes.
// Position and Normal are in view space.
type Fragment struct {
	X, Y     int
	Depth    float64
	Position core.Vec3
	Normal   core.Vec3
	Color    core.Vec3
}

// ScreenVertex is a vertex after the perspective divide and viewport mapping.
// X and Y are fixed point with 8 fractional bits.
type ScreenVertex struct {
	X, Y   int64
	Z      float64 // depth in [0, 1]
	InvW   float64
	View   core.Vec3
	Normal core.Vec3
	Color  core.Vec3
}

// ScreenTriangle is a triangle ready for scan conversion. Its vertices are
// ordered so that Area, and every edge function inside it, is positive.
type ScreenTriangle struct {
	V        [3]ScreenVertex
	Area     int64
	Bounds   image.Rectangle // pixels that may be covered, inside the framebuffer
	Material scene.Material
}

// SetupTriangle maps a clipped triangle to a framebuffer of the given size.
// It reports false for triangles with zero area after snapping or with no
// pixels inside the framebuffer.
func SetupTriangle(tri ClipTriangle, width, height int) (ScreenTriangle, bool) {
	var st ScreenTriangle
	for i, v := range tri {
		w := v.Position.W
		if w <= 0 {
			if debugChecks {
				panic(fmt.Sprintf("renderer: vertex with w=%g reached triangle setup", w))
			}
			w = minW
		}
		invW := 1 / w
		x := (v.Position.X*invW + 1) / 2 * float64(width)
		y := (1 - v.Position.Y*invW) / 2 * float64(height)
		st.V[i] = ScreenVertex{
			X:      int64(math.Round(x * subPixelScale)),
			Y:      int64(math.Round(y * subPixelScale)),
			Z:      v.Position.Z*invW/2 + 0.5,
			InvW:   invW,
			View:   v.View,
			Normal: v.Normal,
			Color:  v.Color,
		}
	}

	st.Area = edge(&st.V[0], &st.V[1], st.V[2].X, st.V[2].Y)
	if st.Area == 0 {
		return st, false
	}
	if st.Area < 0 {
		st.V[1], st.V[2] = st.V[2], st.V[1]
		st.Area = -st.Area
	}

	minX, maxX := st.V[0].X, st.V[0].X
	minY, maxY := st.V[0].Y, st.V[0].Y
	for _, v := range st.V[1:] {
		minX, maxX = min(minX, v.X), max(maxX, v.X)
		minY, maxY = min(minY, v.Y), max(maxY, v.Y)
	}
	st.Bounds = image.Rect(
		int(minX>>subPixelBits), int(minY>>subPixelBits),
		int(maxX>>subPixelBits)+1, int(maxY>>subPixelBits)+1,
	).Intersect(image.Rect(0, 0, width, height))

	return st, !st.Bounds.Empty()
}

// edge is twice the signed area of (a, b, p); positive when p is on the inner side of a->b
func edge(a, b *ScreenVertex, px, py int64) int64 {
	return (b.X-a.X)*(py-a.Y) - (b.Y-a.Y)*(px-a.X)
}

// topLeftBias excludes pixels centered exactly on an edge unless the edge is a top or left edge
func topLeftBias(a, b *ScreenVertex) int64 {
	if (a.Y == b.Y && b.X > a.X) || b.Y < a.Y {
		return 0
	}
	return -1
}

// Rasterizer scan converts screen triangles into a framebuffer, depth testing
// and shading each covered pixel. Stats accumulates across calls.
type Rasterizer struct {
	Target *Framebuffer
	Shader *Shader
	Gamma  float64
	Stats  FrameStats
}

// DrawTriangle rasterizes the part of st that lies inside rect
func (r *Rasterizer) DrawTriangle(st *ScreenTriangle, rect image.Rectangle) {
	box := st.Bounds.Intersect(rect).Intersect(r.Target.Bounds())
	if box.Empty() {
		return
	}
	v0, v1, v2 := &st.V[0], &st.V[1], &st.V[2]

	bias0 := topLeftBias(v1, v2)
	bias1 := topLeftBias(v2, v0)
	bias2 := topLeftBias(v0, v1)

	// Per-pixel steps of each edge function
	dx0, dy0 := (v1.Y-v2.Y)*subPixelScale, (v2.X-v1.X)*subPixelScale
	dx1, dy1 := (v2.Y-v0.Y)*subPixelScale, (v0.X-v2.X)*subPixelScale
	dx2, dy2 := (v0.Y-v1.Y)*subPixelScale, (v1.X-v0.X)*subPixelScale

	px := int64(box.Min.X)*subPixelScale + halfPixel
	py := int64(box.Min.Y)*subPixelScale + halfPixel
	row0 := edge(v1, v2, px, py)
	row1 := edge(v2, v0, px, py)
	row2 := edge(v0, v1, px, py)

	invArea := 1 / float64(st.Area)
	for y := box.Min.Y; y < box.Max.Y; y++ {
		w0, w1, w2 := row0, row1, row2
		for x := box.Min.X; x < box.Max.X; x++ {
			if (w0+bias0)|(w1+bias1)|(w2+bias2) >= 0 {
				b := [3]float64{float64(w0) * invArea, float64(w1) * invArea, float64(w2) * invArea}
				r.fragment(st, x, y, b)
			}
			w0 += dx0
			w1 += dx1
			w2 += dx2
		}
		row0 += dy0
		row1 += dy1
		row2 += dy2
	}
}

// fragment depth tests one covered pixel and shades it if it is nearest so far
func (r *Rasterizer) fragment(st *ScreenTriangle, x, y int, b [3]float64) {
	fb := r.Target
	i := y*fb.Width + x

	depth := b[0]*st.V[0].Z + b[1]*st.V[1].Z + b[2]*st.V[2].Z
	if !(depth < fb.Depth[i]) {
		r.Stats.FragmentsOccluded++
		return
	}

	pw := perspectiveWeights(b, [3]float64{st.V[0].InvW, st.V[1].InvW, st.V[2].InvW})
	frag := Fragment{
		X:        x,
		Y:        y,
		Depth:    depth,
		Position: LinearInterpolate(pw, [3]core.Vec3{st.V[0].View, st.V[1].View, st.V[2].View}),
		Normal:   LinearInterpolate(pw, [3]core.Vec3{st.V[0].Normal, st.V[1].Normal, st.V[2].Normal}),
		Color:    LinearInterpolate(pw, [3]core.Vec3{st.V[0].Color, st.V[1].Color, st.V[2].Color}),
	}

	fb.setColor(i, ToRGBA(r.Shader.Shade(frag, st.Material), r.Gamma))
	fb.Depth[i] = depth
	r.Stats.FragmentsShaded++
}

// perspectiveWeights turns screen-space barycentrics into weights that are linear in view space
func perspectiveWeights(b, invW [3]float64) [3]float64 {
	p0, p1, p2 := b[0]*invW[0], b[1]*invW[1], b[2]*invW[2]
	sum := p0 + p1 + p2
	if sum == 0 {
		return b
	}
	return [3]float64{p0 / sum, p1 / sum, p2 / sum}
}

// PerspectiveInterpolate interpolates vertex attributes with screen-space
// barycentrics b, correcting for the perspective divide by 1/w.
func PerspectiveInterpolate(b, invW [3]float64, attrs [3]core.Vec3) core.Vec3 {
	return LinearInterpolate(perspectiveWeights(b, invW), attrs)
}

// LinearInterpolate weights attrs by b
func LinearInterpolate(b [3]float64, attrs [3]core.Vec3) core.Vec3 {
	return core.Vec3{
		X: b[0]*attrs[0].X + b[1]*attrs[1].X + b[2]*attrs[2].X,
		Y: b[0]*attrs[0].Y + b[1]*attrs[1].Y + b[2]*attrs[2].Y,
		Z: b[0]*attrs[0].Z + b[1]*attrs[1].Z + b[2]*attrs[2].Z,
	}
}
