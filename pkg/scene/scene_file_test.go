package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-software-rasterizer/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlScene = `
name: demo
background: skyblue
ambient: 0.2
camera:
  position: [0, 2, 6]
  look_at: [0, 0, 0]
  fov: 50
lights:
  - type: directional
    direction: [0, -1, 0]
    color: "#ffffff"
    intensity: 0.9
  - type: point
    position: [1, 3, 1]
    color: "1, 0.5, 0.25"
    attenuation: [1, 0.1, 0.01]
objects:
  - name: floor
    mesh: plane
    size: 10
    divisions: 2
    color: gray
  - mesh: cube
    position: [0, 0.5, 0]
    rotation: [0, 45, 0]
    specular: 0.5
    shininess: 16
  - mesh: cube
    position: [2, 0.5, 0]
    scale: [1, 2, 1]
    cull_backfaces: false
`

const tomlScene = `
name = "demo-toml"
background = "black"

[camera]
position = [0.0, 0.0, 5.0]

[[lights]]
type = "directional"
direction = [0.0, 0.0, -1.0]

[[objects]]
name = "tri"
mesh = "triangle"
vertices = [[-1.0, -1.0, 0.0], [1.0, -1.0, 0.0], [0.0, 1.0, 0.0]]
color = "red"

[[objects]]
mesh = "sphere"
radius = 0.5
rings = 6
segments = 8
`

func TestParseDescription_YAML(t *testing.T) {
	desc, err := ParseDescription(strings.NewReader(yamlScene), ".yaml")
	require.NoError(t, err)

	s, err := desc.Build(".")
	require.NoError(t, err)

	assert.Equal(t, "demo", s.Name)
	assert.InDelta(t, 135.0/255, s.Background.X, tolerance) // skyblue
	assert.Equal(t, 0.2, s.Ambient)
	assert.Equal(t, 50.0, s.Camera.FovY)
	assertVec(t, core.NewVec3(0, 2, 6), s.Camera.Position)
	assertVec(t, core.NewVec3(0, -2, -6).Normalize(), s.Camera.Forward())

	require.Len(t, s.Lights, 2)
	assert.Equal(t, Directional, s.Lights[0].Type)
	assert.Equal(t, 0.9, s.Lights[0].Intensity)
	assert.Equal(t, Point, s.Lights[1].Type)
	assert.Equal(t, core.NewVec3(1, 0.5, 0.25), s.Lights[1].Color)
	assert.Equal(t, 1.0, s.Lights[1].Intensity)
	assert.Equal(t, 0.1, s.Lights[1].Linear)

	require.Len(t, s.Objects, 3)
	assert.Equal(t, "floor", s.Objects[0].Name)
	assert.Equal(t, 8, s.Objects[0].Mesh.TriangleCount())
	assert.InDelta(t, 128.0/255, s.Objects[0].Material.Color.X, tolerance)

	assert.Equal(t, "cube-1", s.Objects[1].Name)
	assert.Equal(t, 0.5, s.Objects[1].Material.Specular)
	assert.Equal(t, 16.0, s.Objects[1].Material.Shininess)
	assert.True(t, s.Objects[1].CullBackfaces)

	// Identical generator parameters share one mesh
	assert.Same(t, s.Objects[1].Mesh, s.Objects[2].Mesh)
	assert.False(t, s.Objects[2].CullBackfaces)
	assert.Equal(t, core.NewVec3(1, 2, 1), s.Objects[2].Scale)
}

func TestParseDescription_TOML(t *testing.T) {
	desc, err := ParseDescription(strings.NewReader(tomlScene), ".toml")
	require.NoError(t, err)

	s, err := desc.Build(".")
	require.NoError(t, err)

	assert.Equal(t, "demo-toml", s.Name)
	assert.Equal(t, core.Vec3{}, s.Background)
	require.Len(t, s.Objects, 2)
	assert.Equal(t, 1, s.Objects[0].Mesh.TriangleCount())
	assert.Equal(t, core.NewVec3(1, 0, 0), s.Objects[0].Material.Color)
	assert.Equal(t, 8*(2*6-2), s.Objects[1].Mesh.TriangleCount())
}

func TestParseDescription_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		ext     string
	}{
		{"unknown field", "objects:\n  - mesh: cube\n    colour: red\n", ".yaml"},
		{"bad yaml", "objects: [", ".yaml"},
		{"bad toml", "name = ", ".toml"},
		{"unknown toml field", "nmae = \"x\"\n", ".toml"},
		{"unknown ext", "", ".json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDescription(strings.NewReader(tt.content), tt.ext)
			assert.Error(t, err)
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown mesh", "objects:\n  - mesh: teapot\n"},
		{"bad color", "objects:\n  - mesh: cube\n    color: notacolor\n"},
		{"bad background", "background: \"#12\"\n"},
		{"short triangle", "objects:\n  - mesh: triangle\n    vertices: [[0, 0, 0]]\n"},
		{"ply without path", "objects:\n  - mesh: ply\n"},
		{"missing ply", "objects:\n  - mesh: ply\n    path: missing.ply\n"},
		{"unknown light", "lights:\n  - type: spot\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, err := ParseDescription(strings.NewReader(tt.content), ".yaml")
			require.NoError(t, err)
			_, err = desc.Build(t.TempDir())
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	ply := "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\n" +
		"element face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n3 0 1 2\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.ply"), []byte(ply), 0644))

	content := "objects:\n  - mesh: ply\n    path: tri.ply\n"
	scenePath := filepath.Join(dir, "my_scene.yml")
	require.NoError(t, os.WriteFile(scenePath, []byte(content), 0644))

	s, err := LoadFile(scenePath)
	require.NoError(t, err)
	assert.Equal(t, "my_scene", s.Name)
	require.Len(t, s.Objects, 1)
	assert.Equal(t, 1, s.Objects[0].Mesh.TriangleCount())

	// A bare PLY file is framed automatically
	s, err = LoadFile(filepath.Join(dir, "tri.ply"))
	require.NoError(t, err)
	assert.Equal(t, "tri", s.Name)
	assert.NotEmpty(t, s.Lights)
	center := core.NewVec3(0.5, 0.5, 0)
	toCenter := center.Subtract(s.Camera.Position).Normalize()
	assertVec(t, toCenter, s.Camera.Forward())

	// Create accepts paths too
	s, err = Create(scenePath, CameraConfig{FovY: 30})
	require.NoError(t, err)
	assert.Equal(t, 30.0, s.Camera.FovY)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		input    string
		expected core.Vec3
		wantErr  bool
	}{
		{"white", core.NewVec3(1, 1, 1), false},
		{"Red", core.NewVec3(1, 0, 0), false},
		{"#ff0000", core.NewVec3(1, 0, 0), false},
		{"#0f0", core.NewVec3(0, 1, 0), false},
		{"0.25, 0.5, 2", core.NewVec3(0.25, 0.5, 1), false},
		{"", core.Vec3{}, true},
		{"#abcd", core.Vec3{}, true},
		{"#gggggg", core.Vec3{}, true},
		{"1,2", core.Vec3{}, true},
		{"1,x,2", core.Vec3{}, true},
		{"blurple", core.Vec3{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, err := ParseColor(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c)
		})
	}
}
