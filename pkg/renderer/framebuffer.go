package renderer

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"slices"
)

// MaxDepth is the depth every pixel is cleared to; any fragment in the view volume is nearer
var MaxDepth = math.Inf(1)

// Framebuffer holds a color grid and a depth grid of identical dimensions.
// Pix is RGBA, row-major, with a stride of 4*Width bytes.
type Framebuffer struct {
	Width, Height int
	Pix           []uint8
	Depth         []float64
}

// NewFramebuffer allocates a framebuffer cleared to opaque black
func NewFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, 4*width*height),
		Depth:  make([]float64, width*height),
	}
	fb.Clear(color.RGBA{A: 255})
	return fb
}

// Bounds returns the framebuffer rectangle
func (fb *Framebuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, fb.Width, fb.Height)
}

// Clear sets every color to background and every depth to MaxDepth
func (fb *Framebuffer) Clear(background color.RGBA) {
	fb.ClearRect(fb.Bounds(), background)
}

// ClearRect clears the part of r that lies inside the framebuffer
func (fb *Framebuffer) ClearRect(r image.Rectangle, background color.RGBA) {
	r = r.Intersect(fb.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := y * fb.Width
		for x := r.Min.X; x < r.Max.X; x++ {
			i := row + x
			fb.setColor(i, background)
			fb.Depth[i] = MaxDepth
		}
	}
}

func (fb *Framebuffer) setColor(i int, c color.RGBA) {
	p := fb.Pix[4*i : 4*i+4 : 4*i+4]
	p[0] = c.R
	p[1] = c.G
	p[2] = c.B
	p[3] = c.A
}

// RGBAAt returns the color at (x, y)
func (fb *Framebuffer) RGBAAt(x, y int) color.RGBA {
	if !(image.Point{x, y}.In(fb.Bounds())) {
		return color.RGBA{}
	}
	i := 4 * (y*fb.Width + x)
	return color.RGBA{R: fb.Pix[i], G: fb.Pix[i+1], B: fb.Pix[i+2], A: fb.Pix[i+3]}
}

// DepthAt returns the depth at (x, y), or MaxDepth outside the framebuffer
func (fb *Framebuffer) DepthAt(x, y int) float64 {
	if !(image.Point{x, y}.In(fb.Bounds())) {
		return MaxDepth
	}
	return fb.Depth[y*fb.Width+x]
}

// Image wraps the color grid as an image without copying it
func (fb *Framebuffer) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    fb.Pix,
		Stride: 4 * fb.Width,
		Rect:   fb.Bounds(),
	}
}

// Equal reports whether both framebuffers hold bitwise identical colors and depths
func (fb *Framebuffer) Equal(other *Framebuffer) bool {
	if fb.Width != other.Width || fb.Height != other.Height {
		return false
	}
	if !bytes.Equal(fb.Pix, other.Pix) {
		return false
	}
	for i, d := range fb.Depth {
		if math.Float64bits(d) != math.Float64bits(other.Depth[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy
func (fb *Framebuffer) Clone() *Framebuffer {
	return &Framebuffer{
		Width:  fb.Width,
		Height: fb.Height,
		Pix:    slices.Clone(fb.Pix),
		Depth:  slices.Clone(fb.Depth),
	}
}
