package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-software-rasterizer/pkg/core"
	"github.com/df07/go-software-rasterizer/pkg/geometry"
	"github.com/df07/go-software-rasterizer/pkg/loaders"
)

// ErrUnknownFormat is returned for scene files with an unrecognized extension
var ErrUnknownFormat = errors.New("unknown scene file format")

// FileDescription is the on-disk form of a scene (YAML or TOML).
// Colors are CSS color names, "#rrggbb" or "r,g,b" floats in [0,1].
type FileDescription struct {
	Name       string              `yaml:"name" toml:"name"`
	Background string              `yaml:"background" toml:"background"`
	Ambient    *float64            `yaml:"ambient" toml:"ambient"`
	Camera     CameraDescription   `yaml:"camera" toml:"camera"`
	Lights     []LightDescription  `yaml:"lights" toml:"lights"`
	Objects    []ObjectDescription `yaml:"objects" toml:"objects"`
}

// CameraDescription places the camera by position and look-at target
type CameraDescription struct {
	Position *[3]float64 `yaml:"position" toml:"position"`
	LookAt   *[3]float64 `yaml:"look_at" toml:"look_at"`
	Fov      float64     `yaml:"fov" toml:"fov"`
	Near     float64     `yaml:"near" toml:"near"`
	Far      float64     `yaml:"far" toml:"far"`
}

// LightDescription describes a directional or point light
type LightDescription struct {
	Type        string      `yaml:"type" toml:"type"`
	Direction   [3]float64  `yaml:"direction" toml:"direction"`
	Position    [3]float64  `yaml:"position" toml:"position"`
	Color       string      `yaml:"color" toml:"color"`
	Intensity   *float64    `yaml:"intensity" toml:"intensity"`
	Attenuation *[3]float64 `yaml:"attenuation" toml:"attenuation"`
}

// ObjectDescription describes a mesh instance. Mesh selects the generator:
// cube, plane, sphere, triangle or ply (loaded from Path).
type ObjectDescription struct {
	Name          string       `yaml:"name" toml:"name"`
	Mesh          string       `yaml:"mesh" toml:"mesh"`
	Path          string       `yaml:"path" toml:"path"`
	Size          float64      `yaml:"size" toml:"size"`
	Divisions     int          `yaml:"divisions" toml:"divisions"`
	Radius        float64      `yaml:"radius" toml:"radius"`
	Rings         int          `yaml:"rings" toml:"rings"`
	Segments      int          `yaml:"segments" toml:"segments"`
	Vertices      [][3]float64 `yaml:"vertices" toml:"vertices"`
	Position      [3]float64   `yaml:"position" toml:"position"`
	Rotation      [3]float64   `yaml:"rotation" toml:"rotation"` // Euler degrees, applied X then Y then Z
	Scale         *[3]float64  `yaml:"scale" toml:"scale"`
	Color         string       `yaml:"color" toml:"color"`
	Specular      float64      `yaml:"specular" toml:"specular"`
	Shininess     float64      `yaml:"shininess" toml:"shininess"`
	CullBackfaces *bool        `yaml:"cull_backfaces" toml:"cull_backfaces"`
}

// LoadFile builds a scene from a .yaml, .yml, .toml or .ply file.
// A bare PLY mesh is framed by a default camera and lights.
func LoadFile(path string) (*Scene, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".ply" {
		return loadPLYScene(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	desc, err := ParseDescription(bytes.NewReader(data), ext)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if desc.Name == "" {
		desc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	s, err := desc.Build(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseDescription decodes a scene description. ext selects the format
// (".yaml", ".yml" or ".toml"). Unknown fields are rejected.
func ParseDescription(r io.Reader, ext string) (*FileDescription, error) {
	var desc FileDescription
	switch ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&desc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse YAML scene: %w", err)
		}
	case ".toml":
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&desc); err != nil {
			return nil, fmt.Errorf("failed to parse TOML scene: %w", err)
		}
	default:
		return nil, fmt.Errorf("%q: %w", ext, ErrUnknownFormat)
	}
	return &desc, nil
}

// Build turns the description into a scene. Relative mesh paths are
// resolved against baseDir.
func (d *FileDescription) Build(baseDir string) (*Scene, error) {
	s := NewScene(d.Name)

	if d.Background != "" {
		bg, err := ParseColor(d.Background)
		if err != nil {
			return nil, fmt.Errorf("background: %w", err)
		}
		s.Background = bg
	}
	if d.Ambient != nil {
		s.Ambient = *d.Ambient
	}

	camConfig := CameraConfig{FovY: d.Camera.Fov, Near: d.Camera.Near, Far: d.Camera.Far}
	if d.Camera.Position != nil {
		camConfig.Position = vec3(*d.Camera.Position)
	}
	if d.Camera.LookAt != nil {
		camConfig.LookAt = vec3(*d.Camera.LookAt)
	}
	s.Camera = NewCameraFromConfig(camConfig)

	for i, ld := range d.Lights {
		light, err := ld.build()
		if err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
		s.AddLight(light)
	}

	// Objects sharing a generator and parameters share one mesh
	meshes := make(map[string]*geometry.Mesh)
	for i, od := range d.Objects {
		obj, err := od.build(baseDir, meshes)
		if err != nil {
			return nil, fmt.Errorf("object %d (%s): %w", i, od.Name, err)
		}
		if obj.Name == "" {
			obj.Name = fmt.Sprintf("%s-%d", od.Mesh, i)
		}
		s.Add(obj)
	}

	return s, nil
}

func (ld LightDescription) build() (Light, error) {
	color := core.NewVec3(1, 1, 1)
	if ld.Color != "" {
		c, err := ParseColor(ld.Color)
		if err != nil {
			return Light{}, err
		}
		color = c
	}
	intensity := 1.0
	if ld.Intensity != nil {
		intensity = *ld.Intensity
	}

	switch strings.ToLower(ld.Type) {
	case "directional", "":
		return NewDirectionalLight(vec3(ld.Direction), color, intensity), nil
	case "point":
		light := NewPointLight(vec3(ld.Position), color, intensity)
		if ld.Attenuation != nil {
			a := *ld.Attenuation
			light = light.WithAttenuation(a[0], a[1], a[2])
		}
		return light, nil
	default:
		return Light{}, fmt.Errorf("unknown light type %q", ld.Type)
	}
}

func (od ObjectDescription) build(baseDir string, meshes map[string]*geometry.Mesh) (*Object, error) {
	key := fmt.Sprintf("%s|%s|%g|%d|%g|%d|%d|%v", od.Mesh, od.Path, od.Size, od.Divisions,
		od.Radius, od.Rings, od.Segments, od.Vertices)
	mesh, ok := meshes[key]
	if !ok {
		var err error
		mesh, err = od.mesh(baseDir)
		if err != nil {
			return nil, err
		}
		meshes[key] = mesh
	}

	obj := NewObject(od.Name, mesh)
	obj.Position = vec3(od.Position)
	obj.Rotation = core.QuatFromEuler(core.NewVec3(
		core.Radians(od.Rotation[0]),
		core.Radians(od.Rotation[1]),
		core.Radians(od.Rotation[2]),
	))
	if od.Scale != nil {
		obj.Scale = vec3(*od.Scale)
	}
	if od.Color != "" {
		c, err := ParseColor(od.Color)
		if err != nil {
			return nil, err
		}
		obj.Material.Color = c
	}
	obj.Material.Specular = od.Specular
	if od.Shininess > 0 {
		obj.Material.Shininess = od.Shininess
	}
	if od.CullBackfaces != nil {
		obj.CullBackfaces = *od.CullBackfaces
	}
	return obj, nil
}

func (od ObjectDescription) mesh(baseDir string) (*geometry.Mesh, error) {
	size := od.Size
	if size == 0 {
		size = 1
	}

	switch strings.ToLower(od.Mesh) {
	case "cube":
		return geometry.NewCube(size), nil
	case "plane":
		return geometry.NewPlane(size, od.Divisions), nil
	case "sphere":
		radius := od.Radius
		if radius == 0 {
			radius = 1
		}
		rings, segments := od.Rings, od.Segments
		if rings == 0 {
			rings = 16
		}
		if segments == 0 {
			segments = 32
		}
		return geometry.NewUVSphere(radius, rings, segments), nil
	case "triangle":
		if len(od.Vertices) != 3 {
			return nil, fmt.Errorf("triangle needs 3 vertices, got %d", len(od.Vertices))
		}
		return geometry.NewTriangle(vec3(od.Vertices[0]), vec3(od.Vertices[1]), vec3(od.Vertices[2])), nil
	case "ply":
		if od.Path == "" {
			return nil, fmt.Errorf("ply mesh needs a path")
		}
		path := od.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		return loaders.LoadPLY(path)
	default:
		return nil, fmt.Errorf("unknown mesh %q", od.Mesh)
	}
}

// loadPLYScene frames a single mesh with the default camera and lights
func loadPLYScene(path string) (*Scene, error) {
	mesh, err := loaders.LoadPLY(path)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s := NewScene(name)
	s.Background = core.NewVec3(0.1, 0.1, 0.12)
	s.Add(NewObject(name, mesh))
	s.AddLight(
		NewDirectionalLight(core.NewVec3(-0.5, -1, -0.7), core.NewVec3(1, 1, 1), 0.8),
		NewDirectionalLight(core.NewVec3(0.6, 0.2, 0.5), core.NewVec3(0.6, 0.7, 0.8), 0.3),
	)

	// Back the camera off along +Z until the bounding sphere fits the view
	bounds := mesh.Bounds()
	center := bounds.Center()
	radius := bounds.Size().Length() / 2
	cam := NewCamera()
	distance := radius/math.Sin(core.Radians(cam.FovY/2)) + radius*0.1
	cam.Position = center.Add(core.NewVec3(0, radius*0.3, distance))
	cam.Far = distance + radius*4
	cam.Near = distance / 1000
	cam.LookAt(center)
	s.Camera = cam

	return s, nil
}

// ParseColor accepts a CSS color name, "#rrggbb", "#rgb" or "r,g,b" floats in [0,1]
func ParseColor(s string) (core.Vec3, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Vec3{}, fmt.Errorf("empty color")
	}

	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return core.Vec3{}, fmt.Errorf("invalid hex color %q", s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("invalid hex color %q", s)
		}
		return core.NewVec3(
			float64(v>>16&0xff)/255,
			float64(v>>8&0xff)/255,
			float64(v&0xff)/255,
		), nil
	}

	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		if len(parts) != 3 {
			return core.Vec3{}, fmt.Errorf("invalid color %q: want r,g,b", s)
		}
		var c [3]float64
		for i, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return core.Vec3{}, fmt.Errorf("invalid color %q: %w", s, err)
			}
			c[i] = v
		}
		return vec3(c).Clamp(0, 1), nil
	}

	named, ok := colornames.Map[strings.ToLower(s)]
	if !ok {
		return core.Vec3{}, fmt.Errorf("unknown color name %q", s)
	}
	return core.NewVec3(float64(named.R)/255, float64(named.G)/255, float64(named.B)/255), nil
}

func vec3(a [3]float64) core.Vec3 {
	return core.NewVec3(a[0], a[1], a[2])
}
