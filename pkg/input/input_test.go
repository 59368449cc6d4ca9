package input

import (
	"testing"

	"github.com/df07/go-software-rasterizer/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_HeldKey(t *testing.T) {
	h := NewHandler()

	h.Press("W")
	state, ok := h.State("W")
	require.True(t, ok)
	assert.Equal(t, Pressed, state)

	// A pressed key with only a held binding fires it, then becomes held
	assert.Equal(t, []Action{MoveForward}, h.CollectActions())
	state, _ = h.State("W")
	assert.Equal(t, Held, state)

	assert.Equal(t, []Action{MoveForward}, h.CollectActions())

	h.Release("W")
	assert.Empty(t, h.CollectActions())
	_, ok = h.State("W")
	assert.False(t, ok)
	assert.Empty(t, h.CollectActions())
}

func TestHandler_PressedReleasedSameFrame(t *testing.T) {
	h := NewHandler()
	require.NoError(t, h.Bind(Pressed, "E", MoveUp))
	require.NoError(t, h.Bind(Released, "E", MoveDown))

	h.Press("E")
	h.Release("E")
	state, _ := h.State("E")
	assert.Equal(t, PressedReleased, state)

	assert.Equal(t, []Action{MoveUp, MoveDown}, h.CollectActions())
	_, ok := h.State("E")
	assert.False(t, ok)
}

func TestHandler_PressedBindingWinsOverHeld(t *testing.T) {
	h := NewHandler()
	require.NoError(t, h.Bind(Pressed, "W", MoveUp))

	h.Press("W")
	assert.Equal(t, []Action{MoveUp}, h.CollectActions())
	assert.Equal(t, []Action{MoveForward}, h.CollectActions())
}

func TestHandler_RepeatAndStrayEvents(t *testing.T) {
	h := NewHandler()

	h.Release("W") // never pressed
	_, ok := h.State("W")
	assert.False(t, ok)

	h.Press("D")
	h.CollectActions()
	h.Press("D") // key repeat while held
	state, _ := h.State("D")
	assert.Equal(t, Held, state)

	// Unbound keys are tracked but produce nothing
	h.Press("Q")
	assert.Equal(t, []Action{MoveRight}, h.CollectActions())
}

func TestHandler_OrderedByKey(t *testing.T) {
	h := NewHandler()
	for _, k := range []Key{"W", "Space", "A"} {
		h.Press(k)
	}
	assert.Equal(t, []Action{MoveLeft, MoveUp, MoveForward}, h.CollectActions())
}

func TestHandler_Bind(t *testing.T) {
	h := NewHandler()
	assert.Error(t, h.Bind(PressedReleased, "X", MoveUp))
	require.NoError(t, h.Bind(Held, "ArrowUp", MoveForward))

	assert.Equal(t, []Key{"A", "ArrowUp", "ControlLeft", "D", "S", "Space", "W"}, h.Keys())
}

func TestHandler_Look(t *testing.T) {
	h := NewHandler()
	h.MoveMouse(3, -1)
	h.MoveMouse(2, 4)

	assert.Equal(t, core.NewVec2(5, 3), h.CollectLook())
	assert.Equal(t, core.Vec2{}, h.CollectLook())
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "move_forward", MoveForward.String())
	assert.Equal(t, "move_down", MoveDown.String())
	assert.Equal(t, "Action(42)", Action(42).String())
	assert.Equal(t, "pressed_released", PressedReleased.String())
}
