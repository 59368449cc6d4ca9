package main

import (
	"context"
	"fmt"

	"github.com/df07/go-software-rasterizer/pkg/core"
	"github.com/df07/go-software-rasterizer/pkg/input"
	"github.com/df07/go-software-rasterizer/pkg/renderer"
	"github.com/df07/go-software-rasterizer/pkg/scene"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Game drives one renderer from ebiten's update and draw callbacks
type Game struct {
	renderer   *renderer.Renderer
	scene      *scene.Scene
	reloads    <-chan *scene.Scene
	handler    *input.Handler
	controller input.Controller

	frame     *ebiten.Image
	stats     renderer.FrameStats
	err       error
	keys      []ebiten.Key
	lastMouse [2]int
	looking   bool
	showStats bool
}

// NewGame renders s at the renderer's resolution. reloads may be nil.
func NewGame(r *renderer.Renderer, s *scene.Scene, reloads <-chan *scene.Scene) *Game {
	width, height := r.Size()
	return &Game{
		renderer:   r,
		scene:      s,
		reloads:    reloads,
		handler:    input.NewHandler(),
		controller: input.DefaultController(),
		frame:      ebiten.NewImage(width, height),
		showStats:  true,
	}
}

// Update feeds input to the camera, picks up reloaded scenes and renders a frame
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		if !g.looking {
			return ebiten.Termination
		}
		g.setLooking(false)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.setLooking(true)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.showStats = !g.showStats
	}

	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	for _, k := range g.keys {
		g.handler.Press(input.Key(k.String()))
	}
	g.keys = inpututil.AppendJustReleasedKeys(g.keys[:0])
	for _, k := range g.keys {
		g.handler.Release(input.Key(k.String()))
	}

	if g.looking {
		x, y := ebiten.CursorPosition()
		g.handler.MoveMouse(float64(x-g.lastMouse[0]), float64(y-g.lastMouse[1]))
		g.lastMouse = [2]int{x, y}
	}

	select {
	case s, ok := <-g.reloads:
		if ok {
			// Keep the viewpoint the user flew to
			s.Camera = g.scene.Camera
			g.scene = s
		}
	default:
	}

	dt := 1 / float64(ebiten.TPS())
	g.scene.Camera = g.controller.Apply(g.scene.Camera, g.handler.CollectActions(), g.handler.CollectLook(), dt)

	fb, stats, err := g.renderer.RenderFrame(context.Background(), g.scene.Snapshot())
	if err != nil {
		return err
	}
	g.frame.WritePixels(fb.Pix)
	g.stats = stats
	return nil
}

func (g *Game) setLooking(on bool) {
	g.looking = on
	if on {
		ebiten.SetCursorMode(ebiten.CursorModeCaptured)
		g.lastMouse[0], g.lastMouse[1] = ebiten.CursorPosition()
		return
	}
	ebiten.SetCursorMode(ebiten.CursorModeVisible)
}

// Draw blits the last frame
func (g *Game) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.frame, nil)
	if g.showStats {
		cam := g.scene.Camera
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS %.0f  %v\n%s\npos %.2f %.2f %.2f  yaw %.0f pitch %.0f",
			ebiten.ActualFPS(), g.stats.Duration.Round(100_000), g.stats,
			cam.Position.X, cam.Position.Y, cam.Position.Z, core.Degrees(cam.Yaw), core.Degrees(cam.Pitch)))
	}
}

// Layout renders at the framebuffer resolution; ebiten scales it to the window
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.renderer.Size()
}
