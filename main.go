package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-software-rasterizer/pkg/core"
	"github.com/df07/go-software-rasterizer/pkg/loaders"
	"github.com/df07/go-software-rasterizer/pkg/renderer"
	"github.com/df07/go-software-rasterizer/pkg/scene"
	"github.com/schollz/progressbar/v3"
)

// options holds the parsed command line
type options struct {
	scene      string
	configPath string
	width      int
	height     int
	workers    int
	tileSize   int
	shading    string
	gamma      float64
	frames     int
	scale      int
	out        string
	verbose    bool
	help       bool

	// set records which flags were given explicitly so they override the config file
	set map[string]bool
}

func main() {
	fs, opts := parseFlags(os.Args[1:])
	if opts.help {
		printHelp(fs)
		return
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (*flag.FlagSet, options) {
	fs := flag.NewFlagSet("rasterizer", flag.ExitOnError)
	var opts options
	fs.StringVar(&opts.scene, "scene", "default", "Scene name (see -help) or path to a .yaml, .toml or .ply file")
	fs.StringVar(&opts.configPath, "config", "", "Render config file (.yaml or .toml)")
	fs.IntVar(&opts.width, "width", 800, "Image width in pixels")
	fs.IntVar(&opts.height, "height", 600, "Image height in pixels")
	fs.IntVar(&opts.workers, "workers", 1, "Worker goroutines (0 = all CPUs)")
	fs.IntVar(&opts.tileSize, "tile-size", 64, "Tile size in pixels")
	fs.StringVar(&opts.shading, "shading", "phong", "Shading mode: phong, gouraud or flat")
	fs.Float64Var(&opts.gamma, "gamma", 1, "Output gamma (1 = linear)")
	fs.IntVar(&opts.frames, "frames", 1, "Number of frames; more than one orbits the camera around the scene")
	fs.IntVar(&opts.scale, "scale", 1, "Integer upscale factor for saved images")
	fs.StringVar(&opts.out, "out", "", "Output directory (default output/<scene>)")
	fs.BoolVar(&opts.verbose, "v", false, "Log per-frame statistics")
	fs.BoolVar(&opts.help, "help", false, "Show help information")
	fs.Parse(args)

	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return fs, opts
}

func printHelp(fs *flag.FlagSet) {
	fmt.Println("Software Rasterizer")
	fmt.Println("Usage: rasterizer [options]")
	fmt.Println()
	fmt.Println("Options:")
	fs.SetOutput(os.Stdout)
	fs.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	if scenes, err := scene.ListScenes(); err == nil {
		for _, group := range scenes.Groups {
			for _, info := range group.Scenes {
				fmt.Printf("  %-20s %s\n", info.ID, info.Description)
			}
		}
	}
	fmt.Println()
	fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.png")
}

// renderConfig loads the config file, if any, and applies explicit flags on top
func (o options) renderConfig() (renderer.RenderConfig, error) {
	config := renderer.DefaultRenderConfig()
	if o.configPath != "" {
		var err error
		if config, err = renderer.LoadConfig(o.configPath); err != nil {
			return config, err
		}
	}

	// Without a config file the flag defaults are the config
	use := func(name string) bool { return o.configPath == "" || o.set[name] }
	if use("width") {
		config.Width = o.width
	}
	if use("height") {
		config.Height = o.height
	}
	if use("workers") {
		config.Workers = o.workers
	}
	if use("tile-size") {
		config.TileSize = o.tileSize
	}
	if use("gamma") {
		config.Gamma = o.gamma
	}
	if use("shading") {
		mode, err := renderer.ParseShadingMode(o.shading)
		if err != nil {
			return config, err
		}
		config.Shading = mode
	}
	return config, config.Validate()
}

func createScene(sceneType string) (*scene.Scene, error) {
	if sceneType == "" {
		return nil, errors.New("no scene given")
	}
	return scene.Create(sceneType)
}

// createOutputDir returns output/<name>, where name is the scene ID with any
// "file:" prefix, directory and extension removed
func createOutputDir(sceneType string) string {
	name := strings.TrimPrefix(sceneType, "file:")
	name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if name == "" || name == "." {
		name = "scene"
	}
	return filepath.Join("output", name)
}

func run(ctx context.Context, opts options) error {
	config, err := opts.renderConfig()
	if err != nil {
		return err
	}

	s, err := createScene(opts.scene)
	if err != nil {
		return err
	}
	fmt.Printf("Rendering %s: %d objects, %d triangles, %dx%d\n",
		s.Name, len(s.Objects), s.TriangleCount(), config.Width, config.Height)

	outputDir := opts.out
	if outputDir == "" {
		outputDir = createOutputDir(opts.scene)
	}

	r := renderer.NewRenderer(config.Width, config.Height, config)
	defer r.Close()

	if opts.frames <= 1 {
		return renderSingle(ctx, r, s, outputDir, opts.scale)
	}
	return renderOrbit(ctx, r, s, opts.frames, outputDir, opts.scale)
}

func renderSingle(ctx context.Context, r *renderer.Renderer, s *scene.Scene, outputDir string, scale int) error {
	startTime := time.Now()
	fb, stats, err := r.RenderFrame(ctx, s.Snapshot())
	if err != nil {
		return err
	}
	fmt.Printf("Render completed in %v (%s)\n", time.Since(startTime), stats)

	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(outputDir, fmt.Sprintf("render_%s.png", timestamp))
	if err := loaders.SavePNG(filename, fb.Image(), scale); err != nil {
		return err
	}
	fmt.Printf("Render saved as %s\n", filename)
	return nil
}

// renderOrbit swings the camera once around the scene's bounds and saves
// every frame as frame_NNN.png
func renderOrbit(ctx context.Context, r *renderer.Renderer, s *scene.Scene, count int, outputDir string, scale int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bar := progressbar.Default(int64(count), "rendering")
	defer bar.Close()

	center := s.Bounds().Center()
	frames, errs := r.RenderSequence(ctx, count, renderer.OrbitSnapshots(s.Snapshot(), center, count))

	var total time.Duration
	for frame := range frames {
		filename := filepath.Join(outputDir, fmt.Sprintf("frame_%03d.png", frame.Index))
		if err := loaders.SavePNG(filename, frame.Image, scale); err != nil {
			// The renderer is shared, so wait for the sequence to stop
			cancel()
			for range frames {
			}
			<-errs
			return err
		}
		total += frame.Stats.Duration
		bar.Add(1)
	}
	if err := <-errs; err != nil {
		return err
	}

	fmt.Printf("\n%d frames saved to %s (average %v per frame)\n", count, outputDir, total/time.Duration(count))
	return nil
}
