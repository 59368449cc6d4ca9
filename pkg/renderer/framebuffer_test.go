package renderer

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFramebuffer_Clear(t *testing.T) {
	fb := NewFramebuffer(4, 3)
	sky := color.RGBA{R: 10, G: 20, B: 30, A: 255}
	fb.Clear(sky)

	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			assert.Equal(t, sky, fb.RGBAAt(x, y))
			assert.True(t, math.IsInf(fb.DepthAt(x, y), 1))
		}
	}
}

func TestFramebuffer_ClearRect(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	red := color.RGBA{R: 255, A: 255}

	// Partly outside the framebuffer
	fb.ClearRect(image.Rect(2, 2, 10, 10), red)

	assert.Equal(t, red, fb.RGBAAt(3, 3))
	assert.Equal(t, red, fb.RGBAAt(2, 2))
	assert.Equal(t, color.RGBA{A: 255}, fb.RGBAAt(1, 1))
	assert.Equal(t, color.RGBA{A: 255}, fb.RGBAAt(3, 1))
}

func TestFramebuffer_OutOfBounds(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	assert.Equal(t, color.RGBA{}, fb.RGBAAt(-1, 0))
	assert.Equal(t, color.RGBA{}, fb.RGBAAt(0, 2))
	assert.Equal(t, MaxDepth, fb.DepthAt(5, 5))
}

func TestFramebuffer_ImageSharesPixels(t *testing.T) {
	fb := NewFramebuffer(3, 2)
	img := fb.Image()

	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	fb.setColor(1*3+2, color.RGBA{R: 1, G: 2, B: 3, A: 4})
	assert.Equal(t, color.RGBA{R: 1, G: 2, B: 3, A: 4}, img.RGBAAt(2, 1))
}

func TestFramebuffer_EqualAndClone(t *testing.T) {
	fb := NewFramebuffer(3, 3)
	clone := fb.Clone()
	assert.True(t, fb.Equal(clone))

	clone.Depth[4] = 0.5
	assert.False(t, fb.Equal(clone))

	clone = fb.Clone()
	clone.Pix[0] = 7
	assert.False(t, fb.Equal(clone))
	assert.Equal(t, uint8(0), fb.Pix[0], "clone must not share storage")

	assert.False(t, fb.Equal(NewFramebuffer(3, 2)))
}
