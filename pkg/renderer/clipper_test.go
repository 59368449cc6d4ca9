package renderer

import (
	"testing"

	"github.com/df07/go-software-rasterizer/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clipVertex(x, y, z, w float64) ClipVertex {
	return ClipVertex{
		Position: core.NewVec4(x, y, z, w),
		View:     core.NewVec3(x, y, -w),
		Normal:   core.NewVec3(0, 0, 1),
		Color:    core.NewVec3(1, 1, 1),
	}
}

// assertInside checks every vertex against every plane, allowing for rounding
func assertInside(t *testing.T, tris []ClipTriangle) {
	t.Helper()
	for _, tri := range tris {
		for _, v := range tri {
			for p := Near; p < numPlanes; p++ {
				assert.GreaterOrEqual(t, p.Distance(v.Position), -1e-9, "vertex %v outside plane %d", v.Position, p)
			}
		}
	}
}

func TestOutcode(t *testing.T) {
	tests := []struct {
		name     string
		v        core.Vec4
		expected uint8
	}{
		{"inside", core.NewVec4(0, 0, 0, 1), 0},
		{"on every boundary", core.NewVec4(1, -1, -1, 1), 0},
		{"near", core.NewVec4(0, 0, -2, 1), 1 << Near},
		{"far", core.NewVec4(0, 0, 2, 1), 1 << Far},
		{"left", core.NewVec4(-2, 0, 0, 1), 1 << Left},
		{"right", core.NewVec4(2, 0, 0, 1), 1 << Right},
		{"top", core.NewVec4(0, 2, 0, 1), 1 << Top},
		{"bottom", core.NewVec4(0, -2, 0, 1), 1 << Bottom},
		{"corner", core.NewVec4(2, 2, 0, 1), 1<<Right | 1<<Top},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Outcode(tt.v))
		})
	}
}

func TestClipTriangle_InsideIsUnchanged(t *testing.T) {
	var c Clipper
	tri := ClipTriangle{
		clipVertex(-0.3, -0.2, 0.1, 1.7),
		clipVertex(0.4, -0.25, 0.5, 2.3),
		clipVertex(0.1, 0.6, -0.4, 0.9),
	}

	out := c.ClipTriangle(tri, nil)
	require.Len(t, out, 1)
	// Bit-identical, not merely close
	assert.Equal(t, tri, out[0])
}

func TestClipTriangle_BehindCameraProducesNothing(t *testing.T) {
	projection := core.Perspective(core.Radians(60), 1, 0.1, 100)
	var c Clipper

	// Triangle at +Z in view space, behind a camera looking down -Z
	var tri ClipTriangle
	for i, p := range []core.Vec3{{X: -1, Y: -1, Z: 3}, {X: 1, Y: -1, Z: 3}, {X: 0, Y: 1, Z: 3}} {
		tri[i] = ClipVertex{Position: projection.MulVec4(core.Point(p)), View: p}
	}

	assert.Empty(t, c.ClipTriangle(tri, nil))

	// Every vertex outside the same side plane is rejected too
	side := ClipTriangle{clipVertex(2, 0, 0, 1), clipVertex(3, 1, 0, 1), clipVertex(2.5, -1, 0, 1)}
	assert.Empty(t, c.ClipTriangle(side, nil))
}

func TestClipTriangle_NearPlane(t *testing.T) {
	var c Clipper

	t.Run("one vertex behind", func(t *testing.T) {
		tri := ClipTriangle{clipVertex(0, 0, -2, 1), clipVertex(0.5, 0, 0, 1), clipVertex(0, 0.5, 0, 1)}
		tri[0].Color = core.NewVec3(0, 0, 0)

		out := c.ClipTriangle(tri, nil)
		require.Len(t, out, 2)
		assertInside(t, out)

		// The first emitted vertex sits halfway along v0->v1 with every attribute halfway too
		first := out[0][0]
		assert.InDelta(t, -1, first.Position.Z, 1e-12)
		assert.InDelta(t, 0.25, first.Position.X, 1e-12)
		assert.InDelta(t, 0.5, first.Color.X, 1e-12)
		assert.InDelta(t, 0.25, first.View.X, 1e-12)
	})

	t.Run("two vertices behind", func(t *testing.T) {
		tri := ClipTriangle{clipVertex(0, 0, -2, 1), clipVertex(0.5, 0, -3, 1), clipVertex(0, 0.5, 0, 1)}
		out := c.ClipTriangle(tri, nil)
		require.Len(t, out, 1)
		assertInside(t, out)
	})

	t.Run("vertex exactly on the plane", func(t *testing.T) {
		tri := ClipTriangle{clipVertex(0, 0, -1, 1), clipVertex(0.5, 0, 0, 1), clipVertex(0, 0.5, 0, 1)}
		out := c.ClipTriangle(tri, nil)
		require.Len(t, out, 1)
		assert.Equal(t, tri, out[0])
	})
}

func TestClipTriangle_AllPlanes(t *testing.T) {
	var c Clipper

	// Far larger than the view volume in x and y, and crossing near and far
	tri := ClipTriangle{
		clipVertex(-10, -10, -3, 1),
		clipVertex(10, -10, 3, 1),
		clipVertex(0, 15, 0, 1),
	}

	out := c.ClipTriangle(tri, nil)
	require.NotEmpty(t, out)
	assert.LessOrEqual(t, len(out), MaxClipVertices-2)
	assertInside(t, out)

	// The fan shares its first vertex
	for _, part := range out[1:] {
		assert.Equal(t, out[0][0], part[0])
	}
}

func TestClipTriangle_AppendsToDst(t *testing.T) {
	var c Clipper
	inside := ClipTriangle{clipVertex(0, 0, 0, 1), clipVertex(0.5, 0, 0, 1), clipVertex(0, 0.5, 0, 1)}
	dst := []ClipTriangle{inside}

	dst = c.ClipTriangle(inside, dst)
	assert.Len(t, dst, 2)
}

func TestClipTriangle_NeverAllocatesPerPlane(t *testing.T) {
	var c Clipper
	tri := ClipTriangle{clipVertex(-10, -10, -3, 1), clipVertex(10, -10, 3, 1), clipVertex(0, 15, 0, 1)}
	dst := make([]ClipTriangle, 0, MaxClipVertices)

	allocs := testing.AllocsPerRun(100, func() {
		dst = c.ClipTriangle(tri, dst[:0])
	})
	assert.Zero(t, allocs)
}

func TestPlaneDistance_ClosedHalfSpace(t *testing.T) {
	onBoundary := core.NewVec4(1, 1, 1, 1)
	for p := Near; p < numPlanes; p++ {
		assert.GreaterOrEqual(t, p.Distance(onBoundary), 0.0)
	}
	assert.Zero(t, Outcode(onBoundary))
}

func BenchmarkClipTriangle(b *testing.B) {
	var c Clipper
	inside := ClipTriangle{clipVertex(0, 0, 0, 1), clipVertex(0.5, 0, 0, 1), clipVertex(0, 0.5, 0, 1)}
	crossing := ClipTriangle{clipVertex(-10, -10, -3, 1), clipVertex(10, -10, 3, 1), clipVertex(0, 15, 0, 1)}
	dst := make([]ClipTriangle, 0, MaxClipVertices)

	b.Run("inside", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			dst = c.ClipTriangle(inside, dst[:0])
		}
	})
	b.Run("crossing", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			dst = c.ClipTriangle(crossing, dst[:0])
		}
	})
}

func TestClipTriangle_MatchesUnclippedInterpolation(t *testing.T) {
	// Wider than the view volume on both sides, every w positive and different,
	// so the unclipped triangle can still be rasterized directly for comparison
	tri := ClipTriangle{
		clipVertex(-3, -0.8, 0, 2),
		clipVertex(4, -0.6, 0.5, 2.5),
		clipVertex(0, 1.5, 0.2, 2),
	}
	tri[0].Color = core.NewVec3(1, 0, 0)
	tri[1].Color = core.NewVec3(0, 1, 0)
	tri[2].Color = core.NewVec3(0, 0, 1)

	var c Clipper
	parts := c.ClipTriangle(tri, nil)
	require.GreaterOrEqual(t, len(parts), 2, "triangle should be split by the side planes")
	assertInside(t, parts)

	direct := newTestRasterizer(64, 64)
	draw(t, direct, tri)

	clipped := newTestRasterizer(64, 64)
	for _, part := range parts {
		st, ok := SetupTriangle(part, 64, 64)
		if ok {
			clipped.DrawTriangle(&st, clipped.Target.Bounds())
		}
	}

	common, mismatched := 0, 0
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			a, b := direct.Target.RGBAAt(x, y), clipped.Target.RGBAAt(x, y)
			if (a == black) != (b == black) {
				mismatched++
				continue
			}
			if a == black {
				continue
			}
			common++
			assert.InDelta(t, a.R, b.R, 1, "red at (%d,%d)", x, y)
			assert.InDelta(t, a.G, b.G, 1, "green at (%d,%d)", x, y)
			assert.InDelta(t, a.B, b.B, 1, "blue at (%d,%d)", x, y)
			assert.InDelta(t, direct.Target.DepthAt(x, y), clipped.Target.DepthAt(x, y), 1e-4, "depth at (%d,%d)", x, y)
		}
	}

	require.Greater(t, common, 500)
	// Only pixels centered on a snapped clip edge may differ in coverage
	assert.Less(t, mismatched, common/100)
}
