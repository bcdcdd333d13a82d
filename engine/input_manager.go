package engine

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// InputManager is the common control surface for both the headless
// terminal backend and the windowed GLFW backend: toggle the
// acceleration structure, the heat-map display, the active scene, and
// the camera preset, or quit.
type InputManager interface {
	Start() error
	Stop()
	GetToggleState() ToggleState
	ShouldClose() bool
}

// TerminalInputManager wraps SilentInputManager for the headless
// backend.
type TerminalInputManager struct {
	*SilentInputManager
	quit bool
}

func NewTerminalInputManager() *TerminalInputManager {
	return &TerminalInputManager{SilentInputManager: NewSilentInputManager()}
}

func (tim *TerminalInputManager) Start() error {
	fmt.Println("[input] starting terminal input manager")
	tim.SilentInputManager.Start()
	return nil
}

func (tim *TerminalInputManager) ShouldClose() bool {
	return tim.quit
}

func (tim *TerminalInputManager) GetToggleState() ToggleState {
	ts := tim.SilentInputManager.GetToggleState()
	if ts.Quit {
		tim.quit = true
	}
	return ts
}

// GLFWInputManager drives the same ToggleState surface from GLFW key
// callbacks, edge-triggered on key press rather than polled per-frame.
type GLFWInputManager struct {
	window  *glfw.Window
	pending ToggleState
}

func NewGLFWInputManager(window *glfw.Window) *GLFWInputManager {
	if window == nil {
		panic("NewGLFWInputManager: window parameter is nil. Ensure NewPresenter succeeded before creating input manager.")
	}
	manager := &GLFWInputManager{window: window}
	window.SetKeyCallback(manager.keyCallback)
	return manager
}

func (gim *GLFWInputManager) Start() error { return nil }

func (gim *GLFWInputManager) Stop() {
	if gim.window != nil {
		gim.window.SetKeyCallback(nil)
	}
}

// GetToggleState returns and clears the toggles accumulated since the
// last call.
func (gim *GLFWInputManager) GetToggleState() ToggleState {
	ts := gim.pending
	gim.pending = ToggleState{}
	return ts
}

func (gim *GLFWInputManager) ShouldClose() bool {
	if gim.window == nil {
		return true
	}
	return gim.window.ShouldClose()
}

func (gim *GLFWInputManager) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	switch key {
	case glfw.KeyA:
		gim.pending.CycleAccel = true
	case glfw.KeyH:
		gim.pending.ToggleHeatMap = true
	case glfw.KeyM:
		gim.pending.CycleHeatMode = true
	case glfw.KeyS:
		gim.pending.ToggleScene = true
	case glfw.KeyC:
		gim.pending.CycleCamera = true
	case glfw.KeyEscape, glfw.KeyX:
		gim.pending.Quit = true
		w.SetShouldClose(true)
	}
}
