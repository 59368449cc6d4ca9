package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/df07/go-software-rasterizer/pkg/core"
	"github.com/df07/go-software-rasterizer/pkg/renderer"
	"github.com/df07/go-software-rasterizer/pkg/scene"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	sceneName := flag.String("scene", "default", "Scene name or path to a .yaml, .toml or .ply file")
	width := flag.Int("width", 640, "Render width in pixels")
	height := flag.Int("height", 360, "Render height in pixels")
	scale := flag.Int("scale", 2, "Window scale factor")
	workers := flag.Int("workers", 0, "Render workers (0 = all CPUs)")
	shading := flag.String("shading", "phong", "Shading mode: phong, gouraud or flat")
	watch := flag.Bool("watch", false, "Reload the scene file given to -scene when it changes")
	verbose := flag.Bool("v", false, "Log per-frame statistics")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(*sceneName, *width, *height, *scale, *workers, *shading, *watch); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(sceneName string, width, height, scale, workers int, shading string, watch bool) error {
	mode, err := renderer.ParseShadingMode(shading)
	if err != nil {
		return err
	}
	config := renderer.MergeRenderConfig(renderer.DefaultRenderConfig(), renderer.RenderConfig{
		Width:   width,
		Height:  height,
		Shading: mode,
	})
	config.Workers = workers
	if err := config.Validate(); err != nil {
		return err
	}

	s, err := scene.Create(sceneName)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads <-chan *scene.Scene
	if watch {
		if reloads, err = scene.Watch(ctx, sceneName); err != nil {
			return err
		}
	}

	r := renderer.NewRenderer(width, height, config)
	defer r.Close()

	ebiten.SetWindowSize(width*scale, height*scale)
	ebiten.SetWindowTitle(fmt.Sprintf("Software Rasterizer - %s", s.Name))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	fmt.Println("WASD to move, Space/Ctrl for up/down, click to look around, Esc to release or quit, Tab toggles stats")
	if err := ebiten.RunGame(NewGame(r, s, reloads)); err != nil && err != ebiten.Termination {
		return err
	}
	return nil
}
