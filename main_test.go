package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-software-rasterizer/pkg/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateScene(t *testing.T) {
	tests := []struct {
		name        string
		sceneType   string
		expectError bool
	}{
		// Built-in scenes
		{"default scene", "default", false},
		{"triangle scene", "triangle", false},
		{"cornell scene", "cornell-box", false},
		{"sphere grid scene", "sphere-grid", false},

		// Scene files from scenes/
		{"yaml file scene", "file:cube-row", false},
		{"toml file scene by path", "scenes/lit-spheres.toml", false},

		// Invalid scenes
		{"unknown scene", "nonexistent", true},
		{"missing scene file", "scenes/nonexistent.yaml", true},
		{"unknown file scene", "file:nonexistent", true},
		{"empty scene name", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scene, err := createScene(tt.sceneType)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for scene type '%s', but got none", tt.sceneType)
				}
				if scene != nil {
					t.Errorf("Expected nil scene for invalid scene type '%s', got %T", tt.sceneType, scene)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error for scene type '%s': %v", tt.sceneType, err)
			}
			if len(scene.Objects) == 0 {
				t.Errorf("Expected objects in scene '%s'", tt.sceneType)
			}
		})
	}
}

func TestCreateOutputDir(t *testing.T) {
	tests := []struct {
		name      string
		sceneType string
		expected  string
	}{
		{"built-in scene", "default", filepath.Join("output", "default")},
		{"file scene by name", "file:spinning-cubes", filepath.Join("output", "spinning-cubes")},
		{"scene file path", "scenes/cubes.yaml", filepath.Join("output", "cubes")},
		{"nested ply path", "models/dragon/dragon.ply", filepath.Join("output", "dragon")},
		{"empty", "", filepath.Join("output", "scene")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, createOutputDir(tt.sceneType))
		})
	}
}

func TestRenderConfigFromFlags(t *testing.T) {
	_, opts := parseFlags([]string{"-width", "320", "-height", "200", "-shading", "flat", "-workers", "0"})
	config, err := opts.renderConfig()
	require.NoError(t, err)

	assert.Equal(t, 320, config.Width)
	assert.Equal(t, 200, config.Height)
	assert.Equal(t, renderer.Flat, config.Shading)
	assert.Equal(t, 0, config.Workers)
	assert.Equal(t, 64, config.TileSize)
}

func TestRenderConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.yaml")
	require.NoError(t, os.WriteFile(path, []byte("width: 640\nheight: 480\nshading: gouraud\n"), 0644))

	_, opts := parseFlags([]string{"-config", path, "-height", "100"})
	config, err := opts.renderConfig()
	require.NoError(t, err)

	assert.Equal(t, 640, config.Width, "file value kept when the flag is not given")
	assert.Equal(t, 100, config.Height, "explicit flag wins")
	assert.Equal(t, renderer.Gouraud, config.Shading)
}

func TestShippedConfigs(t *testing.T) {
	for _, path := range []string{"configs/render.yaml", "configs/preview.toml"} {
		t.Run(path, func(t *testing.T) {
			_, opts := parseFlags([]string{"-config", path})
			_, err := opts.renderConfig()
			assert.NoError(t, err)
		})
	}
}

func TestRenderConfigErrors(t *testing.T) {
	_, opts := parseFlags([]string{"-shading", "toon"})
	_, err := opts.renderConfig()
	assert.Error(t, err)

	_, opts = parseFlags([]string{"-width", "-1"})
	_, err = opts.renderConfig()
	assert.ErrorIs(t, err, renderer.ErrInvalidConfig)

	_, opts = parseFlags([]string{"-config", filepath.Join(t.TempDir(), "missing.toml")})
	_, err = opts.renderConfig()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()

	t.Run("single frame", func(t *testing.T) {
		out := filepath.Join(dir, "single")
		_, opts := parseFlags([]string{"-scene", "triangle", "-width", "32", "-height", "24", "-out", out, "-scale", "2"})
		require.NoError(t, run(context.Background(), opts))

		files, err := filepath.Glob(filepath.Join(out, "render_*.png"))
		require.NoError(t, err)
		assert.Len(t, files, 1)
	})

	t.Run("orbit", func(t *testing.T) {
		out := filepath.Join(dir, "orbit")
		_, opts := parseFlags([]string{"-scene", "default", "-width", "32", "-height", "24", "-frames", "3", "-out", out})
		require.NoError(t, run(context.Background(), opts))

		for _, name := range []string{"frame_000.png", "frame_001.png", "frame_002.png"} {
			assert.FileExists(t, filepath.Join(out, name))
		}
	})

	t.Run("unknown scene", func(t *testing.T) {
		_, opts := parseFlags([]string{"-scene", "nonexistent", "-out", filepath.Join(dir, "none")})
		assert.Error(t, run(context.Background(), opts))
	})
}
