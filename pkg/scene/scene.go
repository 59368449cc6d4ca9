package scene

import (
	"github.com/df07/go-software-rasterizer/pkg/core"
)

// Scene contains everything needed to render a frame
type Scene struct {
	Name       string
	Objects    []*Object // drawn in order
	Lights     []Light
	Camera     Camera
	Background core.Vec3 // linear RGB
	Ambient    float64
}

// NewScene creates an empty scene with the default camera, a black
// background and a small ambient term
func NewScene(name string) *Scene {
	return &Scene{
		Name:    name,
		Objects: make([]*Object, 0),
		Lights:  make([]Light, 0),
		Camera:  NewCamera(),
		Ambient: 0.1,
	}
}

// Add appends objects to the scene, skipping nil entries and objects without a mesh
func (s *Scene) Add(objects ...*Object) {
	for _, o := range objects {
		if o == nil || o.Mesh == nil {
			continue
		}
		s.Objects = append(s.Objects, o)
	}
}

// AddLight appends lights to the scene
func (s *Scene) AddLight(lights ...Light) {
	s.Lights = append(s.Lights, lights...)
}

// TriangleCount returns the total number of triangles across all objects
func (s *Scene) TriangleCount() int {
	total := 0
	for _, o := range s.Objects {
		total += o.Mesh.TriangleCount()
	}
	return total
}

// Bounds returns the world-space bounds of every object
func (s *Scene) Bounds() core.AABB {
	var bounds core.AABB
	for i, o := range s.Objects {
		if i == 0 {
			bounds = o.WorldBounds()
			continue
		}
		bounds = bounds.Union(o.WorldBounds())
	}
	return bounds
}

// Snapshot is an immutable copy of the scene state for one frame.
// Object placement, lights and camera are copied by value; meshes are shared
// and must not be modified while a frame is rendering.
type Snapshot struct {
	Objects    []Object
	Lights     []Light
	Camera     Camera
	Background core.Vec3
	Ambient    float64
}

// Snapshot captures the current scene state
func (s *Scene) Snapshot() Snapshot {
	objects := make([]Object, len(s.Objects))
	for i, o := range s.Objects {
		objects[i] = *o
	}
	return Snapshot{
		Objects:    objects,
		Lights:     append([]Light(nil), s.Lights...),
		Camera:     s.Camera,
		Background: s.Background,
		Ambient:    s.Ambient,
	}
}

// WithCamera returns a copy of the snapshot rendered from another viewpoint
func (s Snapshot) WithCamera(cam Camera) Snapshot {
	s.Camera = cam
	return s
}
