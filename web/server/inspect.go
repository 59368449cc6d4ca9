package server

import (
	"math"
	"net/http"
	"strconv"

	"github.com/df07/go-software-rasterizer/pkg/core"
	"github.com/df07/go-software-rasterizer/pkg/renderer"
	"github.com/df07/go-software-rasterizer/pkg/scene"
)

// InspectResponse describes what the rasterizer resolved at one pixel
type InspectResponse struct {
	Hit      bool       `json:"hit"`
	Color    [4]uint8   `json:"color"`              // RGBA as written to the framebuffer
	Depth    float64    `json:"depth,omitempty"`    // Screen-space depth in [0,1]
	Point    [3]float64 `json:"point,omitempty"`    // World-space position
	Distance float64    `json:"distance,omitempty"` // From the camera
}

// inspectPixel reads pixel (x, y) of a rendered frame and recovers the world
// position of the surface there by unprojecting its depth
func inspectPixel(fb *renderer.Framebuffer, cam scene.Camera, x, y int) InspectResponse {
	c := fb.RGBAAt(x, y)
	response := InspectResponse{Color: [4]uint8{c.R, c.G, c.B, c.A}}

	depth := fb.DepthAt(x, y)
	if math.IsInf(depth, 1) {
		return response
	}

	aspect := float64(fb.Width) / float64(fb.Height)
	viewProjection := cam.ProjectionMatrix(aspect).Multiply(cam.ViewMatrix())
	inverse, ok := viewProjection.Inverse()
	if !ok {
		return response
	}

	ndc := core.NewVec4(
		(float64(x)+0.5)/float64(fb.Width)*2-1,
		1-(float64(y)+0.5)/float64(fb.Height)*2,
		depth*2-1,
		1,
	)
	world := inverse.MulVec4(ndc)
	point := world.XYZ().Multiply(1 / world.W)

	response.Hit = true
	response.Depth = depth
	response.Point = [3]float64{point.X, point.Y, point.Z}
	response.Distance = point.Subtract(cam.Position).Length()
	return response
}

// handleInspect renders the requested view and reports the pixel at (x, y)
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request: " + err.Error()})
		return
	}

	// Parse pixel coordinates
	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid x coordinate"})
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid y coordinate"})
		return
	}
	if pixelX < 0 || pixelX >= req.Width || pixelY < 0 || pixelY >= req.Height {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Pixel coordinates out of bounds"})
		return
	}

	rast, _, snap, err := s.setupRenderer(req, nil)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	defer rast.Close()

	fb, _, err := rast.RenderFrame(r.Context(), snap)
	if err != nil {
		return
	}
	writeJSON(w, http.StatusOK, inspectPixel(fb, snap.Camera, pixelX, pixelY))
}
