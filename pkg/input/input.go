package input

import (
	"fmt"
	"slices"

	"github.com/df07/go-software-rasterizer/pkg/core"
)

// Action is something the user asked the camera to do this frame
type Action int

const (
	MoveForward Action = iota
	MoveBackward
	MoveLeft
	MoveRight
	MoveUp
	MoveDown
)

var actionNames = [...]string{"move_forward", "move_backward", "move_left", "move_right", "move_up", "move_down"}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

// KeyState tracks a key between two calls to CollectActions
type KeyState int

const (
	// Pressed fires pressed bindings, or held bindings when none exist
	Pressed KeyState = iota
	// Held fires held bindings every frame
	Held
	// Released fires released bindings once
	Released
	// PressedReleased is a key pressed and released within one frame.
	// It fires as Pressed and then as Released.
	PressedReleased
)

func (s KeyState) String() string {
	switch s {
	case Pressed:
		return "pressed"
	case Held:
		return "held"
	case Released:
		return "released"
	case PressedReleased:
		return "pressed_released"
	default:
		return fmt.Sprintf("KeyState(%d)", int(s))
	}
}

// Key names a physical key. The viewer passes ebiten key names ("W", "Space").
type Key string

// Handler turns raw key and mouse events into actions once per frame.
// Not safe for concurrent use; the viewer drives it from its update loop.
type Handler struct {
	states   map[Key]KeyState
	pressed  map[Key]Action
	held     map[Key]Action
	released map[Key]Action
	look     core.Vec2
}

// NewHandler returns a handler with WASD movement, Space for up and left
// Control for down, all bound while held.
func NewHandler() *Handler {
	h := &Handler{
		states:   make(map[Key]KeyState),
		pressed:  make(map[Key]Action),
		held:     make(map[Key]Action),
		released: make(map[Key]Action),
	}
	h.held["W"] = MoveForward
	h.held["A"] = MoveLeft
	h.held["S"] = MoveBackward
	h.held["D"] = MoveRight
	h.held["Space"] = MoveUp
	h.held["ControlLeft"] = MoveDown
	return h
}

// Bind maps key to action for the given state, replacing any earlier binding.
// PressedReleased is derived from the other bindings and cannot be bound.
func (h *Handler) Bind(state KeyState, key Key, action Action) error {
	switch state {
	case Pressed:
		h.pressed[key] = action
	case Held:
		h.held[key] = action
	case Released:
		h.released[key] = action
	default:
		return fmt.Errorf("cannot bind %s to state %s", key, state)
	}
	return nil
}

// Keys returns the keys bound in any state, sorted
func (h *Handler) Keys() []Key {
	var keys []Key
	for _, m := range []map[Key]Action{h.pressed, h.held, h.released} {
		for k := range m {
			if !slices.Contains(keys, k) {
				keys = append(keys, k)
			}
		}
	}
	slices.Sort(keys)
	return keys
}

// Press records a key going down. Repeats while the key is tracked are ignored.
func (h *Handler) Press(key Key) {
	if _, ok := h.states[key]; ok {
		return
	}
	h.states[key] = Pressed
	core.Logger().Debug("key pressed", "key", key)
}

// Release records a key going up. Releasing an untracked key does nothing.
func (h *Handler) Release(key Key) {
	state, ok := h.states[key]
	if !ok {
		return
	}
	switch state {
	case Pressed:
		h.states[key] = PressedReleased
	case Held:
		h.states[key] = Released
	}
	core.Logger().Debug("key released", "key", key)
}

// State reports the tracked state of key
func (h *Handler) State(key Key) (KeyState, bool) {
	s, ok := h.states[key]
	return s, ok
}

// MoveMouse accumulates a pointer delta in pixels until the next CollectLook
func (h *Handler) MoveMouse(dx, dy float64) {
	h.look = h.look.Add(core.NewVec2(dx, dy))
}

// CollectLook returns the pointer delta accumulated since the last call
func (h *Handler) CollectLook() core.Vec2 {
	look := h.look
	h.look = core.Vec2{}
	return look
}

// CollectActions returns the actions due this frame, ordered by key name,
// and advances key states: Pressed becomes Held, released keys are dropped.
func (h *Handler) CollectActions() []Action {
	keys := make([]Key, 0, len(h.states))
	for k := range h.states {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var actions []Action
	for _, k := range keys {
		switch h.states[k] {
		case Held:
			actions = h.appendBinding(actions, h.held, k)
		case Released:
			actions = h.appendBinding(actions, h.released, k)
			delete(h.states, k)
		case Pressed:
			actions = h.appendPressed(actions, k)
			h.states[k] = Held
		case PressedReleased:
			actions = h.appendPressed(actions, k)
			actions = h.appendBinding(actions, h.released, k)
			delete(h.states, k)
		}
	}
	return actions
}

func (h *Handler) appendPressed(actions []Action, k Key) []Action {
	if a, ok := h.pressed[k]; ok {
		return append(actions, a)
	}
	return h.appendBinding(actions, h.held, k)
}

func (h *Handler) appendBinding(actions []Action, bindings map[Key]Action, k Key) []Action {
	if a, ok := bindings[k]; ok {
		actions = append(actions, a)
	}
	return actions
}
