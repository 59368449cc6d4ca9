package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/df07/go-software-rasterizer/pkg/core"
	"github.com/df07/go-software-rasterizer/pkg/loaders"
	"github.com/df07/go-software-rasterizer/pkg/renderer"
	"github.com/df07/go-software-rasterizer/pkg/scene"
)

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene   string               `json:"scene"`   // Scene ID, e.g. "cornell-box" or "file:cubes"
	Width   int                  `json:"width"`   // Image width
	Height  int                  `json:"height"`  // Image height
	Shading renderer.ShadingMode `json:"shading"` // phong, gouraud or flat
	Gamma   float64              `json:"gamma"`   // 1 = linear output
	Angle   float64              `json:"angle"`   // Orbit angle in degrees around the scene center
	Frames  int                  `json:"frames"`  // Frames in a full orbit (/api/frames only)
	Scale   int                  `json:"scale"`   // Integer upscale of the returned PNG
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "frame", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// FrameUpdate is one rendered frame of an orbit sent via SSE
type FrameUpdate struct {
	Index       int        `json:"index"`
	TotalFrames int        `json:"totalFrames"`
	ImageData   string     `json:"imageData"` // Base64 encoded PNG
	Stats       FrameStats `json:"stats"`
	IsLast      bool       `json:"isLast"`
	ElapsedMs   int64      `json:"elapsedMs"`
}

// FrameStats represents render statistics for one frame
type FrameStats struct {
	Objects           int   `json:"objects"`
	ObjectsCulled     int   `json:"objectsCulled"`
	TrianglesIn       int   `json:"trianglesIn"`
	BackfaceCulled    int   `json:"backfaceCulled"`
	ClippedAway       int   `json:"clippedAway"`
	Rasterized        int   `json:"rasterized"`
	FragmentsShaded   int   `json:"fragmentsShaded"`
	FragmentsOccluded int   `json:"fragmentsOccluded"`
	RenderMicros      int64 `json:"renderMicros"`
}

func newFrameStats(s renderer.FrameStats) FrameStats {
	return FrameStats{
		Objects:           s.Objects,
		ObjectsCulled:     s.ObjectsCulled,
		TrianglesIn:       s.TrianglesIn,
		BackfaceCulled:    s.BackfaceCulled,
		ClippedAway:       s.ClippedAway,
		Rasterized:        s.Rasterized,
		FragmentsShaded:   s.FragmentsShaded,
		FragmentsOccluded: s.FragmentsOccluded,
		RenderMicros:      s.Duration.Microseconds(),
	}
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 400, 16, 2000); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(query, "height", 300, 16, 2000); err != nil {
		return nil, err
	}
	if req.Frames, err = parseIntParam(query, "frames", 24, 1, 360); err != nil {
		return nil, err
	}
	if req.Scale, err = parseIntParam(query, "scale", 1, 1, 8); err != nil {
		return nil, err
	}
	if req.Gamma, err = parseFloatParam(query, "gamma", 1, 0, 5); err != nil {
		return nil, err
	}
	if req.Angle, err = parseFloatParam(query, "angle", 0, -360, 360); err != nil {
		return nil, err
	}
	if req.Shading, err = renderer.ParseShadingMode(query.Get("shading")); err != nil {
		return nil, err
	}
	return req, nil
}

// setupRenderer creates the scene snapshot and a renderer sized for req that
// logs to logger, or to the package logger when logger is nil.
// The caller closes the renderer.
func (s *Server) setupRenderer(req *RenderRequest, logger *slog.Logger) (*renderer.Renderer, *scene.Scene, scene.Snapshot, error) {
	sceneObj, err := scene.Create(req.Scene)
	if err != nil {
		return nil, nil, scene.Snapshot{}, err
	}

	snap := sceneObj.Snapshot()
	if req.Angle != 0 {
		snap = snap.WithCamera(snap.Camera.Orbit(sceneObj.Bounds().Center(), core.Radians(req.Angle)))
	}

	config := renderer.MergeRenderConfig(renderer.DefaultRenderConfig(), renderer.RenderConfig{
		Width:   req.Width,
		Height:  req.Height,
		Shading: req.Shading,
		Gamma:   req.Gamma,
	})
	config.Workers = s.workers
	rast := renderer.NewRenderer(req.Width, req.Height, config)
	rast.SetLogger(logger)
	return rast, sceneObj, snap, nil
}

// handleRender renders a single frame and returns it as PNG
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request: " + err.Error()})
		return
	}

	rast, _, snap, err := s.setupRenderer(req, nil)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	defer rast.Close()

	fb, stats, err := rast.RenderFrame(r.Context(), snap)
	if err != nil {
		// Client went away
		core.Logger().Debug("render cancelled", "error", err)
		return
	}
	core.Logger().Info("rendered frame", append([]any{"scene", req.Scene}, stats.LogAttrs()...)...)

	var buf bytes.Buffer
	if err := loaders.EncodePNG(&buf, fb.Image(), req.Scale); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Render-Micros", strconv.FormatInt(stats.Duration.Microseconds(), 10))
	w.Header().Set("X-Triangles-Rasterized", strconv.Itoa(stats.Rasterized))
	w.Write(buf.Bytes())
}

// handleFrames streams a full camera orbit as SSE frame events, with the
// render's log output as console events
func (s *Server) handleFrames(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)
	ctx := r.Context()

	// Single SSE writer goroutine; it must be finished before the handler returns
	events := make(chan SSEEvent, 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeSSEEvents(ctx, w, events)
	}()
	defer func() {
		close(events)
		<-writerDone
	}()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.sendEvent(ctx, events, "error", fmt.Sprintf("Invalid request: %v", err))
		return
	}

	consoleChan := make(chan ConsoleMessage, 50)
	logger := slog.New(NewConsoleHandler(consoleChan, core.Logger().Handler())).
		With("render", fmt.Sprintf("render-%d", time.Now().UnixNano()))

	rast, sceneObj, snap, err := s.setupRenderer(req, logger)
	if err != nil {
		s.sendEvent(ctx, events, "error", err.Error())
		return
	}
	defer rast.Close()

	logger.Info("starting orbit", "scene", req.Scene, "triangles", sceneObj.TriangleCount(), "frames", req.Frames)

	startTime := time.Now()
	frames, errs := rast.RenderSequence(ctx, req.Frames, renderer.OrbitSnapshots(snap, sceneObj.Bounds().Center(), req.Frames))

renderLoop:
	for {
		select {
		case msg := <-consoleChan:
			s.sendConsole(ctx, events, msg)

		case frame, ok := <-frames:
			if !ok {
				break renderLoop
			}
			s.handleFrame(ctx, events, frame, req, startTime)
			logger.Info("frame rendered", append([]any{"frame", frame.Index}, frame.Stats.LogAttrs()...)...)
		}
	}

	if err := <-errs; err != nil {
		if ctx.Err() == nil {
			s.sendEvent(ctx, events, "error", fmt.Sprintf("Rendering failed: %v", err))
		}
		return
	}

	logger.Info("orbit complete", "elapsed", time.Since(startTime).Round(time.Millisecond))
	for drained := false; !drained; {
		select {
		case msg := <-consoleChan:
			s.sendConsole(ctx, events, msg)
		default:
			drained = true
		}
	}
	s.sendEvent(ctx, events, "complete", "Rendering completed")
}

// handleFrame encodes a frame and queues it
func (s *Server) handleFrame(ctx context.Context, events chan<- SSEEvent, frame renderer.FrameResult, req *RenderRequest, startTime time.Time) {
	imageData, err := imageToBase64PNG(frame.Image, req.Scale)
	if err != nil {
		core.Logger().Warn("failed to encode frame", "frame", frame.Index, "error", err)
		return
	}

	data, err := json.Marshal(FrameUpdate{
		Index:       frame.Index,
		TotalFrames: req.Frames,
		ImageData:   imageData,
		Stats:       newFrameStats(frame.Stats),
		IsLast:      frame.IsLast,
		ElapsedMs:   time.Since(startTime).Milliseconds(),
	})
	if err != nil {
		core.Logger().Warn("failed to marshal frame update", "error", err)
		return
	}
	s.sendEvent(ctx, events, "frame", string(data))
}

func (s *Server) sendConsole(ctx context.Context, events chan<- SSEEvent, msg ConsoleMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	s.sendEvent(ctx, events, "console", string(data))
}

// sendEvent queues an event unless the client has gone
func (s *Server) sendEvent(ctx context.Context, events chan<- SSEEvent, eventType, data string) {
	select {
	case events <- SSEEvent{Type: eventType, Data: data}:
	case <-ctx.Done():
	}
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// writeSSEEvents writes events until the channel closes or the client disconnects
func (s *Server) writeSSEEvents(ctx context.Context, w http.ResponseWriter, events <-chan SSEEvent) {
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}

		case <-ctx.Done():
			return
		}
	}
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image, scale int) (string, error) {
	var buf bytes.Buffer
	if err := loaders.EncodePNG(&buf, img, scale); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
