package engine

import (
	"sync"

	"github.com/eiannone/keyboard"
)

// SilentInputManager reads keyboard input without interfering with the
// rendered terminal output, same approach as a full-screen renderer
// that cannot let the keyboard package echo into the frame.
type SilentInputManager struct {
	keys     map[rune]bool
	mutex    sync.RWMutex
	running  bool
	stopChan chan bool
}

// ToggleState reflects which one-shot controls were pressed since the
// last call to GetToggleState and cleared by it. Unlike InputState in a
// WASD controller, these are edge-triggered: holding a key does not
// repeat the toggle every frame.
type ToggleState struct {
	CycleAccel     bool
	ToggleHeatMap  bool
	CycleHeatMode  bool
	ToggleScene    bool
	CycleCamera    bool
	Quit           bool
}

func NewSilentInputManager() *SilentInputManager {
	return &SilentInputManager{
		keys:     make(map[rune]bool),
		stopChan: make(chan bool),
	}
}

// Start begins reading keyboard input in a separate goroutine.
func (sim *SilentInputManager) Start() {
	if sim.running {
		return
	}
	if err := keyboard.Open(); err != nil {
		panic(err)
	}
	sim.running = true

	go func() {
		for {
			select {
			case <-sim.stopChan:
				return
			default:
				char, key, err := keyboard.GetKey()
				if err != nil {
					continue
				}
				sim.mutex.Lock()
				if char != 0 {
					sim.keys[char] = true
				}
				if key == keyboard.KeyEsc {
					sim.keys['x'] = true
				}
				sim.mutex.Unlock()
			}
		}
	}()
}

// Stop stops reading keyboard input.
func (sim *SilentInputManager) Stop() {
	if !sim.running {
		return
	}
	sim.running = false
	sim.stopChan <- true
	keyboard.Close()
}

// GetToggleState reads and clears the pending one-shot key presses:
// 'a' cycles the acceleration structure, 'h' toggles heat-map display,
// 'm' cycles which counter the heat map visualizes, 's' cycles scene
// index, 'c' cycles the camera preset, 'x'/Esc quits.
func (sim *SilentInputManager) GetToggleState() ToggleState {
	sim.mutex.Lock()
	defer sim.mutex.Unlock()

	ts := ToggleState{
		CycleAccel:    sim.keys['a'] || sim.keys['A'],
		ToggleHeatMap: sim.keys['h'] || sim.keys['H'],
		CycleHeatMode: sim.keys['m'] || sim.keys['M'],
		ToggleScene:   sim.keys['s'] || sim.keys['S'],
		CycleCamera:   sim.keys['c'] || sim.keys['C'],
		Quit:          sim.keys['x'] || sim.keys['X'],
	}
	sim.keys = make(map[rune]bool)
	return ts
}
