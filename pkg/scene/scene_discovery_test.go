package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"cornell-empty", "Cornell Empty"},
		{"dragon_gold", "Dragon Gold"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

// withSceneDir points scene discovery at a temporary directory holding files
func withSceneDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0755))

	saved := sceneDirs
	sceneDirs = []string{filepath.Join(dir, "missing"), dir}
	t.Cleanup(func() { sceneDirs = saved })
	return dir
}

func TestListFileScenes(t *testing.T) {
	dir := withSceneDir(t, map[string]string{
		"zig-zag.yaml":   "name: zig\n",
		"cube_row.toml":  "name = \"row\"\n",
		"notes.txt":      "not a scene",
		"bunny.ply":      "ply\n",
		"Alpha-Beta.yml": "",
	})

	scenes, err := ListFileScenes()
	require.NoError(t, err)

	var names []string
	for _, info := range scenes {
		names = append(names, info.DisplayName)
		assert.Equal(t, "file", info.Type)
		assert.Equal(t, dir, filepath.Dir(info.FilePath))
	}
	assert.Equal(t, []string{"Alpha Beta", "Bunny", "Cube Row", "Zig Zag"}, names)
	assert.Equal(t, "file:zig-zag", scenes[3].ID)
}

func TestListFileScenes_NoDirectory(t *testing.T) {
	saved := sceneDirs
	sceneDirs = []string{filepath.Join(t.TempDir(), "missing")}
	defer func() { sceneDirs = saved }()

	scenes, err := ListFileScenes()
	require.NoError(t, err)
	assert.Empty(t, scenes)
}

func TestListScenes(t *testing.T) {
	withSceneDir(t, map[string]string{"one.yaml": "name: one\n"})

	response, err := ListScenes()
	require.NoError(t, err)
	require.Len(t, response.Groups, 2)

	builtIns := response.Groups[0]
	assert.Equal(t, builtInGroup, builtIns.Name)
	assert.Len(t, builtIns.Scenes, len(builtInScenes))
	for _, info := range builtIns.Scenes {
		assert.Equal(t, "builtin", info.Type)
	}

	assert.Equal(t, "Scene Files", response.Groups[1].Name)
	assert.Equal(t, "file:one", response.Groups[1].Scenes[0].ID)
}

func TestCreate(t *testing.T) {
	dir := withSceneDir(t, map[string]string{
		"pair.yaml": "name: pair\nobjects:\n  - mesh: cube\n  - mesh: sphere\n",
	})

	for _, b := range builtInScenes {
		if b.info.ID == "dragon" {
			continue // needs models/
		}
		t.Run(b.info.ID, func(t *testing.T) {
			s, err := Create(b.info.ID)
			require.NoError(t, err)
			assert.NotEmpty(t, s.Objects)
		})
	}

	s, err := Create("file:pair")
	require.NoError(t, err)
	assert.Equal(t, "pair", s.Name)
	assert.Len(t, s.Objects, 2)

	s, err = Create(filepath.Join(dir, "pair.yaml"), CameraConfig{FovY: 30})
	require.NoError(t, err)
	assert.Equal(t, 30.0, s.Camera.FovY)

	_, err = Create("file:missing")
	assert.ErrorIs(t, err, ErrUnknownScene)
	_, err = Create("nonexistent")
	assert.ErrorIs(t, err, ErrUnknownScene)
}
