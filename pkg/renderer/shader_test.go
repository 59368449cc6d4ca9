package renderer

import (
	"image/color"
	"math"
	"testing"

	"github.com/df07/go-software-rasterizer/pkg/core"
	"github.com/df07/go-software-rasterizer/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const tolerance = 1e-9

func assertColor(t *testing.T, expected, actual core.Vec3) {
	t.Helper()
	assert.True(t, expected.ApproxEqual(actual, tolerance), "expected %v, got %v", expected, actual)
}

var white = core.NewVec3(1, 1, 1)

func facing(normal core.Vec3) Fragment {
	return Fragment{Position: core.NewVec3(0, 0, -5), Normal: normal, Color: white}
}

func TestShader_Lambertian(t *testing.T) {
	shader := &Shader{Lights: []scene.Light{
		scene.NewDirectionalLight(core.NewVec3(0, 0, -1), white, 0.8),
	}}
	mat := scene.NewMaterial(core.NewVec3(1, 0.5, 0.25))

	tests := []struct {
		name     string
		normal   core.Vec3
		expected core.Vec3
	}{
		{"head on", core.NewVec3(0, 0, 1), core.NewVec3(0.8, 0.4, 0.2)},
		{"unnormalized", core.NewVec3(0, 0, 3), core.NewVec3(0.8, 0.4, 0.2)},
		{"sixty degrees", core.NewVec3(0, math.Sin(math.Pi/3), 0.5), core.NewVec3(0.4, 0.2, 0.1)},
		{"grazing", core.NewVec3(1, 0, 0), core.Vec3{}},
		{"facing away", core.NewVec3(0, 0, -1), core.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertColor(t, tt.expected, shader.Shade(facing(tt.normal), mat))
		})
	}
}

func TestShader_AmbientAndAdditiveLights(t *testing.T) {
	shader := &Shader{
		Ambient: 0.1,
		Lights: []scene.Light{
			scene.NewDirectionalLight(core.NewVec3(0, 0, -1), core.NewVec3(1, 0, 0), 0.5),
			scene.NewDirectionalLight(core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0), 0.25),
		},
	}
	got := shader.Shade(facing(core.NewVec3(0, 0, 1)), scene.DefaultMaterial())
	assertColor(t, core.NewVec3(0.6, 0.35, 0.1), got)

	// Facing away leaves only the ambient term
	got = shader.Shade(facing(core.NewVec3(0, 0, -1)), scene.DefaultMaterial())
	assertColor(t, core.NewVec3(0.1, 0.1, 0.1), got)

	// Bright lights saturate instead of overflowing
	shader.Lights[0].Intensity = 10
	got = shader.Shade(facing(core.NewVec3(0, 0, 1)), scene.DefaultMaterial())
	assert.Equal(t, 1.0, got.X)
}

func TestShader_PointLightAttenuation(t *testing.T) {
	light := scene.NewPointLight(core.NewVec3(0, 0, -3), white, 1).WithAttenuation(1, 0, 0.25)
	shader := &Shader{Lights: []scene.Light{light}}

	// Two units from the light, facing it: 1 / (1 + 0.25*4)
	got := shader.Shade(facing(core.NewVec3(0, 0, 1)), scene.DefaultMaterial())
	assertColor(t, core.NewVec3(0.5, 0.5, 0.5), got)

	// A light behind the surface contributes nothing
	shader.Lights[0].Position = core.NewVec3(0, 0, -8)
	got = shader.Shade(facing(core.NewVec3(0, 0, 1)), scene.DefaultMaterial())
	assertColor(t, core.Vec3{}, got)
}

func TestShader_Specular(t *testing.T) {
	lights := []scene.Light{scene.NewDirectionalLight(core.NewVec3(0, 0, -1), white, 0.5)}
	shader := &Shader{Lights: lights}
	frag := facing(core.NewVec3(0, 0, 1))

	matte := shader.Shade(frag, scene.NewMaterial(core.NewVec3(0.5, 0.5, 0.5)))
	shiny := shader.Shade(frag, scene.NewShinyMaterial(core.NewVec3(0.5, 0.5, 0.5), 0.5, 32))

	assertColor(t, core.NewVec3(0.25, 0.25, 0.25), matte)
	// The half vector lines up with the normal, so the highlight is at full strength
	assertColor(t, core.NewVec3(0.5, 0.5, 0.5), shiny)
}

func TestShader_Gouraud(t *testing.T) {
	shader := &Shader{Mode: Gouraud, Lights: []scene.Light{
		scene.NewDirectionalLight(core.NewVec3(0, 0, -1), white, 1),
	}}

	// Fragments pass their interpolated color through
	frag := Fragment{Color: core.NewVec3(0.3, 1.5, -1)}
	assertColor(t, core.NewVec3(0.3, 1, 0), shader.Shade(frag, scene.DefaultMaterial()))

	// Vertices are lit like Phong fragments
	v := ClipVertex{View: core.NewVec3(0, 0, -5), Normal: core.NewVec3(0, 0, 1), Color: core.NewVec3(0.5, 0.5, 0.5)}
	assertColor(t, core.NewVec3(0.5, 0.5, 0.5), shader.ShadeVertex(v, scene.DefaultMaterial()))
}

func TestNewShader_TransformsLightsToViewSpace(t *testing.T) {
	cam := scene.NewCamera()
	cam.Position = core.NewVec3(0, 0, 5)
	cam.Rotate(math.Pi/2, 0) // looking down -X
	view := cam.ViewMatrix()

	lights := []scene.Light{
		scene.NewDirectionalLight(core.NewVec3(-1, 0, 0), white, 1),
		scene.NewPointLight(core.NewVec3(-2, 0, 5), white, 1),
	}
	shader := NewShader(lights, view, 0.2, Flat)

	require.Len(t, shader.Lights, 2)
	// Light traveling along the view direction travels down -Z in view space
	assertColor(t, core.NewVec3(0, 0, -1), shader.Lights[0].Direction)
	assertColor(t, core.NewVec3(0, 0, -2), shader.Lights[1].Position)
	assert.Equal(t, 0.2, shader.Ambient)
	assert.Equal(t, Flat, shader.Mode)

	// The input slice is untouched
	assert.Equal(t, core.NewVec3(-1, 0, 0), lights[0].Direction)
}

func TestToRGBA(t *testing.T) {
	tests := []struct {
		name     string
		c        core.Vec3
		gamma    float64
		expected color.RGBA
	}{
		{"black", core.Vec3{}, 1, color.RGBA{A: 255}},
		{"white", white, 1, color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{"rounds to nearest", core.NewVec3(0.5, 0.25, 1.0/255), 1, color.RGBA{R: 128, G: 64, B: 1, A: 255}},
		{"clamps", core.NewVec3(-1, 2, math.Inf(1)), 1, color.RGBA{R: 0, G: 255, B: 255, A: 255}},
		{"zero gamma is linear", core.NewVec3(0.25, 0.25, 0.25), 0, color.RGBA{R: 64, G: 64, B: 64, A: 255}},
		{"gamma 2", core.NewVec3(0.25, 0.25, 0.25), 2, color.RGBA{R: 128, G: 128, B: 128, A: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToRGBA(tt.c, tt.gamma))
		})
	}
}

func TestShadingMode_Text(t *testing.T) {
	tests := []struct {
		input    string
		expected ShadingMode
		wantErr  bool
	}{
		{"phong", Phong, false},
		{"Gouraud", Gouraud, false},
		{" flat ", Flat, false},
		{"", Phong, false},
		{"toon", Phong, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var m ShadingMode
			err := m.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m)
		})
	}

	// Round trip through YAML uses the names
	out, err := yaml.Marshal(map[string]ShadingMode{"shading": Gouraud})
	require.NoError(t, err)
	assert.Equal(t, "shading: gouraud\n", string(out))
	assert.Equal(t, "ShadingMode(7)", ShadingMode(7).String())
}
