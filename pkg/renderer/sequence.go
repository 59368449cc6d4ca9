package renderer

import (
	"context"
	"image"
	"math"

	"github.com/df07/go-software-rasterizer/pkg/core"
	"github.com/df07/go-software-rasterizer/pkg/scene"
)

// FrameResult contains one frame of a sequence
type FrameResult struct {
	Index  int
	Image  *image.RGBA // A copy, safe to keep after later frames render
	Stats  FrameStats
	IsLast bool
}

// RenderSequence renders count frames in the background, asking snapshot for
// the scene state of each one. Frames arrive in order on the first channel;
// the error channel carries at most one error, including ctx.Err() when the
// caller cancels. The renderer must not be used elsewhere until both channels close.
func (r *Renderer) RenderSequence(ctx context.Context, count int, snapshot func(i int) scene.Snapshot) (<-chan FrameResult, <-chan error) {
	frameChan := make(chan FrameResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(frameChan)
		defer close(errChan)

		r.log().Info("starting frame sequence", "frames", count)

		for i := 0; i < count; i++ {
			select {
			case <-ctx.Done():
				r.log().Info("frame sequence cancelled", "frame", i)
				errChan <- ctx.Err()
				return
			default:
			}

			fb, stats, err := r.RenderFrame(ctx, snapshot(i))
			if err != nil {
				errChan <- err
				return
			}

			result := FrameResult{
				Index:  i,
				Image:  fb.Clone().Image(),
				Stats:  stats,
				IsLast: i == count-1,
			}

			select {
			case frameChan <- result:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}
	}()

	return frameChan, errChan
}

// OrbitSnapshots returns a snapshot function that swings the camera of snap
// once around center over count frames
func OrbitSnapshots(snap scene.Snapshot, center core.Vec3, count int) func(i int) scene.Snapshot {
	return func(i int) scene.Snapshot {
		angle := 0.0
		if count > 0 {
			angle = 2 * math.Pi * float64(i) / float64(count)
		}
		return snap.WithCamera(snap.Camera.Orbit(center, angle))
	}
}
