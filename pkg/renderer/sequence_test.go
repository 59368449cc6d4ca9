package renderer

import (
	"context"
	"testing"

	"github.com/df07/go-software-rasterizer/pkg/core"
	"github.com/df07/go-software-rasterizer/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSequence(t *testing.T) {
	r := NewRenderer(32, 24, DefaultRenderConfig())
	defer r.Close()

	snap := scene.NewDefaultScene().Snapshot()
	frames, errs := r.RenderSequence(context.Background(), 4, OrbitSnapshots(snap, core.NewVec3(0, 0.5, 0), 4))

	var results []FrameResult
	for result := range frames {
		results = append(results, result)
	}
	require.NoError(t, <-errs)

	require.Len(t, results, 4)
	for i, result := range results {
		assert.Equal(t, i, result.Index)
		assert.Equal(t, i == 3, result.IsLast)
		assert.Equal(t, 32, result.Image.Bounds().Dx())
	}

	// Each frame owns its pixels
	assert.NotEqual(t, results[0].Image.Pix, results[1].Image.Pix)
}

func TestRenderSequence_Cancelled(t *testing.T) {
	r := NewRenderer(16, 16, DefaultRenderConfig())
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	snap := scene.NewTriangleScene().Snapshot()
	frames, errs := r.RenderSequence(ctx, 100, func(int) scene.Snapshot { return snap })

	<-frames
	cancel()
	for range frames {
	}
	assert.ErrorIs(t, <-errs, context.Canceled)
}

func TestOrbitSnapshots(t *testing.T) {
	snap := scene.NewDefaultScene().Snapshot()
	center := core.NewVec3(0, 0.5, 0)
	orbit := OrbitSnapshots(snap, center, 4)

	first := orbit(0)
	assert.True(t, first.Camera.Position.ApproxEqual(snap.Camera.Position, tolerance))

	// Half a turn mirrors the camera through the axis
	half := orbit(2)
	assert.InDelta(t, -snap.Camera.Position.Z, half.Camera.Position.Z, 1e-9)
	assert.InDelta(t, snap.Camera.Position.Y, half.Camera.Position.Y, 1e-9)

	// The source snapshot keeps its camera
	assert.Equal(t, scene.NewDefaultScene().Camera, snap.Camera)
}
