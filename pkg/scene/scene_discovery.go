package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-software-rasterizer/pkg/core"
)

// ErrUnknownScene is returned by Create for names that match no scene
var ErrUnknownScene = errors.New("unknown scene")

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "file"
	FilePath    string `json:"filePath"`    // Path to scene file (file type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

const builtInGroup = "Built-in Scenes"

type builtIn struct {
	info SceneInfo
	build func(overrides ...CameraConfig) *Scene
}

var builtInScenes = []builtIn{
	{
		info:  SceneInfo{ID: "default", DisplayName: "Default Scene", Description: "Cube and spheres on a ground plane"},
		build: NewDefaultScene,
	},
	{
		info:  SceneInfo{ID: "triangle", DisplayName: "Triangle", Description: "A single lit triangle"},
		build: NewTriangleScene,
	},
	{
		info:  SceneInfo{ID: "cornell-box", DisplayName: "Cornell Box", Description: "Cornell box with two rotated boxes"},
		build: NewCornellScene,
	},
	{
		info:  SceneInfo{ID: "sphere-grid", DisplayName: "Sphere Grid", Description: "10x10 grid of colored mesh spheres"},
		build: func(overrides ...CameraConfig) *Scene { return NewSphereGridScene(10, overrides...) },
	},
	{
		info:  SceneInfo{ID: "dragon", DisplayName: "Dragon PLY Mesh", Description: "Dragon PLY mesh, if models/ is present"},
		build: func(overrides ...CameraConfig) *Scene { return NewDragonScene(true, overrides...) },
	},
}

// sceneDirs are searched for scene files, relative to the working directory
var sceneDirs = []string{"scenes", "../scenes"}

// Create builds a scene by ID. Built-in IDs are listed by ListScenes; file
// scenes use "file:<name>" or a path to a .yaml, .yml, .toml or .ply file.
func Create(id string, cameraOverrides ...CameraConfig) (*Scene, error) {
	for _, b := range builtInScenes {
		if b.info.ID == id {
			return b.build(cameraOverrides...), nil
		}
	}

	path := id
	if name, ok := strings.CutPrefix(id, "file:"); ok {
		scenes, err := ListFileScenes()
		if err != nil {
			return nil, err
		}
		path = ""
		for _, info := range scenes {
			if info.ID == "file:"+name {
				path = info.FilePath
				break
			}
		}
		if path == "" {
			return nil, fmt.Errorf("%q: %w", id, ErrUnknownScene)
		}
	} else if !isSceneFile(path) {
		return nil, fmt.Errorf("%q: %w", id, ErrUnknownScene)
	}

	s, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if len(cameraOverrides) > 0 {
		s.Camera = applyCameraOverride(s.Camera, cameraOverrides[0])
	}
	return s, nil
}

// applyCameraOverride keeps the scene's viewpoint unless the override moves it
func applyCameraOverride(cam Camera, override CameraConfig) Camera {
	if !override.Position.IsZero() {
		cam.Position = override.Position
	}
	if !override.LookAt.IsZero() {
		cam.LookAt(override.LookAt)
	}
	if override.FovY != 0 {
		cam.FovY = override.FovY
	}
	if override.Near != 0 {
		cam.Near = override.Near
	}
	if override.Far != 0 {
		cam.Far = override.Far
	}
	return cam
}

func isSceneFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".toml", ".ply":
		return true
	}
	return false
}

// ListFileScenes scans the scenes directory for scene files
func ListFileScenes() ([]SceneInfo, error) {
	var scenesDir string
	for _, path := range sceneDirs {
		if st, err := os.Stat(path); err == nil && st.IsDir() {
			scenesDir = path
			break
		}
	}

	if scenesDir == "" {
		// No scenes directory found, return empty list
		return []SceneInfo{}, nil
	}

	entries, err := os.ReadDir(scenesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := make([]SceneInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isSceneFile(entry.Name()) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		scenes = append(scenes, SceneInfo{
			ID:          "file:" + name,
			DisplayName: titleCase(name),
			Description: entry.Name(),
			Group:       "Scene Files",
			Type:        "file",
			FilePath:    filepath.Join(scenesDir, entry.Name()),
		})
	}

	// Sort scenes by display name
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

// ListScenes returns both built-in and file scenes, grouped by category
func ListScenes() (ScenesResponse, error) {
	var response ScenesResponse

	builtIns := make([]SceneInfo, len(builtInScenes))
	for i, b := range builtInScenes {
		builtIns[i] = b.info
		builtIns[i].Group = builtInGroup
		builtIns[i].Type = "builtin"
	}
	response.Groups = append(response.Groups, SceneGroup{Name: builtInGroup, Scenes: builtIns})

	fileScenes, err := ListFileScenes()
	if err != nil {
		core.Logger().Warn("failed to list scene files", "error", err)
		return response, nil
	}

	// Group scenes by their Group field
	groupMap := make(map[string][]SceneInfo)
	for _, info := range fileScenes {
		groupMap[info.Group] = append(groupMap[info.Group], info)
	}

	var groupNames []string
	for groupName := range groupMap {
		groupNames = append(groupNames, groupName)
	}
	sort.Strings(groupNames)

	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   groupName,
			Scenes: groupMap[groupName],
		})
	}

	return response, nil
}

// titleCase converts a filename-style string to title case
// e.g., "cornell-empty" -> "Cornell Empty"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
