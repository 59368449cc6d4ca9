package renderer

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every RenderConfig validation failure
var ErrInvalidConfig = errors.New("invalid render config")

// RenderConfig contains configuration for rendering frames
type RenderConfig struct {
	Width            int         `yaml:"width" toml:"width"`
	Height           int         `yaml:"height" toml:"height"`
	TileSize         int         `yaml:"tile_size" toml:"tile_size"`                   // Size of each square tile in pixels
	Workers          int         `yaml:"workers" toml:"workers"`                       // 1 renders inline, 0 uses every CPU
	Shading          ShadingMode `yaml:"shading" toml:"shading"`                       // phong, gouraud or flat
	Gamma            float64     `yaml:"gamma" toml:"gamma"`                           // 1 writes linear colors
	NoFrustumCulling bool        `yaml:"no_frustum_culling" toml:"no_frustum_culling"` // Skip per-object bounds rejection
}

// DefaultRenderConfig returns sensible default values
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Width:    800,
		Height:   600,
		TileSize: 64,
		Workers:  1,
		Shading:  Phong,
		Gamma:    1,
	}
}

// MergeRenderConfig returns base with every non-zero field of override applied
func MergeRenderConfig(base, override RenderConfig) RenderConfig {
	result := base

	if override.Width != 0 {
		result.Width = override.Width
	}
	if override.Height != 0 {
		result.Height = override.Height
	}
	if override.TileSize != 0 {
		result.TileSize = override.TileSize
	}
	if override.Workers != 0 {
		result.Workers = override.Workers
	}
	if override.Shading != Phong {
		result.Shading = override.Shading
	}
	if override.Gamma != 0 {
		result.Gamma = override.Gamma
	}
	if override.NoFrustumCulling {
		result.NoFrustumCulling = true
	}

	return result
}

// Validate rejects sizes and counts that cannot produce a frame
func (c RenderConfig) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: size %dx%d must be positive", ErrInvalidConfig, c.Width, c.Height)
	case c.TileSize <= 0:
		return fmt.Errorf("%w: tile size %d must be positive", ErrInvalidConfig, c.TileSize)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers %d must not be negative", ErrInvalidConfig, c.Workers)
	case c.Gamma < 0:
		return fmt.Errorf("%w: gamma %g must not be negative", ErrInvalidConfig, c.Gamma)
	case c.Shading < Phong || c.Shading > Flat:
		return fmt.Errorf("%w: unknown shading mode %d", ErrInvalidConfig, int(c.Shading))
	}
	return nil
}

// LoadConfig reads a YAML or TOML render config. Fields missing from the
// file keep their default values.
func LoadConfig(path string) (RenderConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RenderConfig{}, fmt.Errorf("failed to read render config: %w", err)
	}

	var override RenderConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&override); err != nil && len(bytes.TrimSpace(data)) > 0 {
			return RenderConfig{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&override); err != nil {
			return RenderConfig{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return RenderConfig{}, fmt.Errorf("unsupported render config format %q", ext)
	}

	config := MergeRenderConfig(DefaultRenderConfig(), override)
	if err := config.Validate(); err != nil {
		return RenderConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}
