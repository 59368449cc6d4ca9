package renderer

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"runtime"
	"time"

	"github.com/df07/go-software-rasterizer/pkg/core"
	"github.com/df07/go-software-rasterizer/pkg/geometry"
	"github.com/df07/go-software-rasterizer/pkg/scene"
	"golang.org/x/sync/errgroup"
)

// ErrClosed is returned when rendering with a renderer after Close
var ErrClosed = errors.New("renderer closed")

// Renderer turns scene snapshots into framebuffers. One frame runs as three
// stages: geometry per object, binning of screen triangles into tiles, and
// rasterization per tile. A Renderer is not safe for concurrent RenderFrame calls.
type Renderer struct {
	width, height int
	config        RenderConfig
	workers       int

	fb        *Framebuffer
	tiles     []*Tile
	bins      *tileBins
	pool      *WorkerPool // nil when tiles render inline
	slots     []objectResult
	triangles []ScreenTriangle
	closed    bool
	logger    *slog.Logger
}

// objectResult is the geometry stage output for one object, reused across frames
type objectResult struct {
	vertices  []ClipVertex
	triangles []ScreenTriangle
	stats     FrameStats
}

// frameState is everything the raster stage reads for one frame
type frameState struct {
	fb         *Framebuffer
	shader     *Shader
	triangles  []ScreenTriangle
	bins       *tileBins
	background color.RGBA
	gamma      float64
}

// NewRenderer creates a renderer for a width x height framebuffer. The
// config's own Width and Height are ignored; non-positive dimensions are
// raised to 1.
func NewRenderer(width, height int, config RenderConfig) *Renderer {
	if config.TileSize <= 0 {
		config.TileSize = DefaultRenderConfig().TileSize
	}
	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	r := &Renderer{config: config, workers: workers}
	r.allocate(max(1, width), max(1, height))

	r.log().Info("renderer created",
		"width", r.width, "height", r.height,
		"tileSize", config.TileSize, "workers", workers, "shading", config.Shading)
	return r
}

// allocate sizes the framebuffer, tile grid and worker pool
func (r *Renderer) allocate(width, height int) {
	r.width, r.height = width, height
	r.config.Width, r.config.Height = width, height
	r.fb = NewFramebuffer(width, height)
	r.tiles = NewTileGrid(width, height, r.config.TileSize)
	r.bins = newTileBins(width, height, r.config.TileSize)

	if r.pool != nil {
		r.pool.Stop()
		r.pool = nil
	}
	if r.workers > 1 {
		r.pool = NewWorkerPool(len(r.tiles), r.workers)
		r.pool.Start()
		r.log().Debug("worker pool started", "workers", r.pool.GetNumWorkers(), "tiles", len(r.tiles))
	}
}

// SetLogger routes the renderer's log output to logger. nil restores the
// package logger.
func (r *Renderer) SetLogger(logger *slog.Logger) {
	r.logger = logger
}

func (r *Renderer) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return core.Logger()
}

// Size returns the framebuffer dimensions
func (r *Renderer) Size() (width, height int) {
	return r.width, r.height
}

// Config returns the configuration in effect
func (r *Renderer) Config() RenderConfig {
	return r.config
}

// Resize reallocates the framebuffer and tile grid. Framebuffers returned
// earlier are no longer written to.
func (r *Renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: size %dx%d must be positive", ErrInvalidConfig, width, height)
	}
	if r.closed {
		return ErrClosed
	}
	if width == r.width && height == r.height {
		return nil
	}
	r.allocate(width, height)
	r.log().Info("renderer resized", "width", width, "height", height, "tiles", len(r.tiles))
	return nil
}

// Close stops the worker pool. It is safe to call more than once.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	if r.pool != nil {
		r.pool.Stop()
		r.pool = nil
	}
	r.log().Info("renderer closed")
}

// RenderFrame renders one frame of snap. The returned framebuffer belongs to
// the renderer and stays valid until the next RenderFrame or Resize call.
// ctx is checked between stages; a cancelled frame returns ctx.Err().
func (r *Renderer) RenderFrame(ctx context.Context, snap scene.Snapshot) (*Framebuffer, FrameStats, error) {
	if r.closed {
		return nil, FrameStats{}, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, FrameStats{}, err
	}
	start := time.Now()

	view := snap.Camera.ViewMatrix()
	projection := snap.Camera.ProjectionMatrix(float64(r.width) / float64(r.height))
	shader := NewShader(snap.Lights, view, snap.Ambient, r.config.Shading)

	stats, err := r.geometryStage(snap.Objects, view, projection, shader)
	if err != nil {
		return nil, FrameStats{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, FrameStats{}, err
	}

	r.bins.reset()
	for i := range r.triangles {
		r.bins.add(i, r.triangles[i].Bounds)
	}
	if err := ctx.Err(); err != nil {
		return nil, FrameStats{}, err
	}

	frame := &frameState{
		fb:         r.fb,
		shader:     shader,
		triangles:  r.triangles,
		bins:       r.bins,
		background: ToRGBA(snap.Background, r.config.Gamma),
		gamma:      r.config.Gamma,
	}
	stats.Add(r.rasterStage(frame))
	stats.Duration = time.Since(start)

	r.log().Debug("frame rendered", stats.LogAttrs()...)
	return r.fb, stats, nil
}

// geometryStage transforms, culls, clips and sets up every object. Objects
// are processed in parallel, each into its own slot, and the slots are
// concatenated in submission order.
func (r *Renderer) geometryStage(objects []scene.Object, view, projection core.Mat4, shader *Shader) (FrameStats, error) {
	if cap(r.slots) < len(objects) {
		r.slots = append(r.slots[:cap(r.slots)], make([]objectResult, len(objects)-cap(r.slots))...)
	}
	slots := r.slots[:len(objects)]

	if r.workers == 1 {
		var clipper Clipper
		for i := range objects {
			r.processObject(&objects[i], view, projection, shader, &clipper, &slots[i])
		}
	} else {
		var g errgroup.Group
		g.SetLimit(r.workers)
		for i := range objects {
			g.Go(func() error {
				var clipper Clipper
				r.processObject(&objects[i], view, projection, shader, &clipper, &slots[i])
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return FrameStats{}, fmt.Errorf("geometry stage: %w", err)
		}
	}

	stats := FrameStats{Objects: len(objects)}
	r.triangles = r.triangles[:0]
	for i := range slots {
		r.triangles = append(r.triangles, slots[i].triangles...)
		stats.Add(slots[i].stats)
	}
	return stats, nil
}

// processObject writes the screen triangles of one object into out
func (r *Renderer) processObject(obj *scene.Object, view, projection core.Mat4, shader *Shader, clipper *Clipper, out *objectResult) {
	out.triangles = out.triangles[:0]
	out.stats = FrameStats{}

	mesh := obj.Mesh
	if mesh == nil || mesh.TriangleCount() == 0 {
		return
	}

	t := NewTransform(obj.ModelMatrix(), view, projection)
	if !r.config.NoFrustumCulling {
		corners := mesh.Bounds().Corners()
		if t.Outside(corners[:]) {
			out.stats.ObjectsCulled++
			return
		}
	}

	if cap(out.vertices) < len(mesh.Vertices) {
		out.vertices = make([]ClipVertex, len(mesh.Vertices))
	}
	verts := out.vertices[:len(mesh.Vertices)]
	for i, v := range mesh.Vertices {
		verts[i] = t.Vertex(v)
		if shader.Mode == Gouraud {
			verts[i].Color = shader.ShadeVertex(verts[i], obj.Material)
		}
	}

	var clipped [MaxClipVertices - 2]ClipTriangle
	for tri := 0; tri < mesh.TriangleCount(); tri++ {
		out.stats.TrianglesIn++
		a := verts[mesh.Indices[3*tri]]
		b := verts[mesh.Indices[3*tri+1]]
		c := verts[mesh.Indices[3*tri+2]]

		if geometry.IsDegenerate(a.View, b.View, c.View) {
			out.stats.Degenerate++
			continue
		}
		// Counter-clockwise triangles face the viewer at the origin
		normal := b.View.Subtract(a.View).Cross(c.View.Subtract(a.View))
		if obj.CullBackfaces && normal.Dot(a.View) >= 0 {
			out.stats.BackfaceCulled++
			continue
		}
		if shader.Mode == Flat {
			n := normal.Normalize()
			a.Normal, b.Normal, c.Normal = n, n, n
		}

		parts := clipper.ClipTriangle(ClipTriangle{a, b, c}, clipped[:0])
		if len(parts) == 0 {
			out.stats.ClippedAway++
			continue
		}
		out.stats.ClipEmitted += len(parts)

		for _, part := range parts {
			st, ok := SetupTriangle(part, r.width, r.height)
			if !ok {
				continue
			}
			st.Material = obj.Material
			out.stats.Rasterized++
			out.triangles = append(out.triangles, st)
		}
	}
}

// rasterStage renders every tile, inline or on the worker pool, and merges
// the per-tile stats in tile order
func (r *Renderer) rasterStage(frame *frameState) FrameStats {
	var stats FrameStats
	if r.pool == nil {
		for _, tile := range r.tiles {
			stats.Add(frame.renderTile(tile))
		}
		return stats
	}

	for i, tile := range r.tiles {
		r.pool.SubmitTask(TileTask{Tile: tile, TaskID: i, frame: frame})
	}
	results := make([]FrameStats, len(r.tiles))
	for range r.tiles {
		result, ok := r.pool.GetResult()
		if !ok {
			break
		}
		results[result.TaskID] = result.Stats
	}
	for _, s := range results {
		stats.Add(s)
	}
	return stats
}

// renderTile clears a tile and rasterizes its bin into it
func (f *frameState) renderTile(tile *Tile) FrameStats {
	f.fb.ClearRect(tile.Bounds, f.background)
	r := Rasterizer{Target: f.fb, Shader: f.shader, Gamma: f.gamma}
	for _, i := range f.bins.bin(tile.ID) {
		r.DrawTriangle(&f.triangles[i], tile.Bounds)
	}
	return r.Stats
}
