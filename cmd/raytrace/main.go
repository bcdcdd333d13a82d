package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"runtime/pprof"

	"github.com/mirstar13/go-raytrace-accel/engine"
)

// BackendType selects how rendered frames reach the user.
type BackendType int

const (
	BackendHeadless BackendType = iota
	BackendWindowed
)

// Config holds the full set of command-line knobs for one run.
type Config struct {
	Width, Height int
	Workers       int
	ObjPath       string
	UseSAH        bool
	Accel         engine.AccelType
	SceneIdx      int
	CameraPreset  int
	Backend       BackendType
	Interactive   bool
	OutputPath    string
	HeatMap       engine.HeatMapMode
}

func parseFlags() Config {
	width := flag.Int("width", 640, "framebuffer width")
	height := flag.Int("height", 480, "framebuffer height")
	workers := flag.Int("workers", 4, "number of rendering goroutines")
	objPath := flag.String("obj", "", "path to a Wavefront OBJ mesh to load (empty = room only)")
	useSAH := flag.Bool("sah", true, "use the SAH split (exhaustive centroid scan) for the BVH builder instead of the median split")
	accel := flag.String("accel", "bvh", "acceleration structure: bvh, kdtree, octree")
	sceneIdx := flag.Int("scene", 0, "scene index")
	cameraPreset := flag.Int("camera", 0, "camera preset index")
	windowed := flag.Bool("windowed", false, "present frames in a GLFW window instead of writing a PNG")
	interactive := flag.Bool("interactive", false, "in headless mode, keep rendering and poll terminal key toggles instead of exiting after one frame")
	output := flag.String("out", "render.png", "output PNG path in headless mode")
	heatMap := flag.String("heatmap", "off", "heat-map mode: off, tests, steps")
	cpuprofile := flag.String("cpuprofile", "", "write a CPU profile to this file")

	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Printf("could not create CPU profile: %v\n", err)
		} else if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Printf("could not start CPU profile: %v\n", err)
		} else {
			fmt.Printf("CPU profiling enabled, writing to %s\n", *cpuprofile)
		}
	}

	cfg := Config{
		Width: *width, Height: *height, Workers: *workers,
		ObjPath: *objPath, UseSAH: *useSAH,
		SceneIdx: *sceneIdx, CameraPreset: *cameraPreset,
		Interactive: *interactive,
		OutputPath:  *output,
	}

	switch *accel {
	case "kdtree":
		cfg.Accel = engine.AccelKDTree
	case "octree":
		cfg.Accel = engine.AccelOctree
	default:
		cfg.Accel = engine.AccelBVH
	}

	switch *heatMap {
	case "tests":
		cfg.HeatMap = engine.HeatMapIntersectionTests
	case "steps":
		cfg.HeatMap = engine.HeatMapTraversalSteps
	default:
		cfg.HeatMap = engine.HeatMapOff
	}

	if *windowed {
		cfg.Backend = BackendWindowed
	}
	return cfg
}

func buildScene(cfg Config) *engine.Scene {
	scene := engine.NewScene()
	scene.Accel = cfg.Accel

	if cfg.ObjPath != "" {
		mesh := engine.LoadOBJ(cfg.ObjPath)
		scene.AddInstance(mesh, engine.IdentityMatrix(), cfg.UseSAH)
	}
	scene.SetSceneIdx(cfg.SceneIdx)
	return scene
}

func savePNGFramebuffer(fb *engine.Framebuffer, path string) error {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			c := fb.At(x, y)
			i := img.PixOffset(x, y)
			img.Pix[i+0] = c.R
			img.Pix[i+1] = c.G
			img.Pix[i+2] = c.B
			img.Pix[i+3] = 255
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func main() {
	cfg := parseFlags()
	defer pprof.StopCPUProfile()

	scene := buildScene(cfg)
	cam := engine.NewCameraForPreset(scene, cfg.CameraPreset)
	renderer := engine.NewRenderer(cfg.Width, cfg.Height, cfg.Workers)
	renderer.HeatMap = cfg.HeatMap

	if cfg.Backend == BackendWindowed {
		runWindowed(cfg, scene, cam, renderer)
		return
	}
	runHeadless(cfg, scene, cam, renderer)
}

// toggleCursors tracks the cycling state ("which of N options is
// currently selected") that a one-shot ToggleState alone doesn't carry,
// shared between the windowed and headless-interactive control loops.
type toggleCursors struct {
	accelIdx  int
	heatIdx   int
	cameraIdx int
}

// applyToggles folds one polled/callback-delivered ToggleState into
// scene, renderer and cam, the same five one-shot controls both backends
// expose: cycle acceleration structure, toggle heat-map, cycle heat-map
// mode, toggle scene index, cycle camera preset.
func applyToggles(ts engine.ToggleState, scene *engine.Scene, renderer *engine.Renderer, cur *toggleCursors, cam **engine.Camera) {
	if ts.CycleAccel {
		cur.accelIdx = (cur.accelIdx + 1) % 3
		scene.Accel = engine.AccelType(cur.accelIdx)
	}
	if ts.ToggleHeatMap {
		if renderer.HeatMap == engine.HeatMapOff {
			renderer.HeatMap = engine.HeatMapIntersectionTests
		} else {
			renderer.HeatMap = engine.HeatMapOff
		}
	}
	if ts.CycleHeatMode && renderer.HeatMap != engine.HeatMapOff {
		cur.heatIdx = (cur.heatIdx % 2) + 1
		renderer.HeatMap = engine.HeatMapMode(cur.heatIdx)
	}
	if ts.ToggleScene {
		scene.SetSceneIdx(1 - scene.SceneIdx)
	}
	if ts.CycleCamera {
		cur.cameraIdx = (cur.cameraIdx + 1) % engine.CameraPresetCount
		*cam = engine.NewCameraForPreset(scene, cur.cameraIdx)
	}
}

func runHeadless(cfg Config, scene *engine.Scene, cam *engine.Camera, renderer *engine.Renderer) {
	if cfg.Interactive {
		runHeadlessInteractive(cfg, scene, cam, renderer)
		return
	}

	if err := renderer.RenderFrame(context.Background(), scene, cam); err != nil {
		fmt.Printf("render failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(renderer.Stats.Current().String())

	if err := savePNGFramebuffer(renderer.Framebuffer(), cfg.OutputPath); err != nil {
		fmt.Printf("could not write %s: %v\n", cfg.OutputPath, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", cfg.OutputPath)
}

// runHeadlessInteractive keeps re-rendering the same view from a
// terminal, polling eiannone/keyboard through a TerminalInputManager for
// the same five one-shot toggles the windowed backend exposes via GLFW
// key callbacks, until 'x'/Esc is pressed. The final frame is still
// written to cfg.OutputPath on exit.
func runHeadlessInteractive(cfg Config, scene *engine.Scene, cam *engine.Camera, renderer *engine.Renderer) {
	input := engine.NewTerminalInputManager()
	if err := input.Start(); err != nil {
		fmt.Printf("could not start terminal input: %v\n", err)
		os.Exit(1)
	}
	defer input.Stop()

	cur := toggleCursors{accelIdx: int(scene.Accel), heatIdx: int(cfg.HeatMap), cameraIdx: cfg.CameraPreset}
	fmt.Println("[a] cycle accel  [h] toggle heatmap  [m] cycle heatmap mode  [s] toggle scene  [c] cycle camera  [x] quit")

	for !input.ShouldClose() {
		applyToggles(input.GetToggleState(), scene, renderer, &cur, &cam)

		if err := renderer.RenderFrame(context.Background(), scene, cam); err != nil {
			fmt.Printf("render failed: %v\n", err)
			break
		}
		fmt.Printf("\r%s", renderer.Stats.Current().String())
	}
	fmt.Println()

	if err := savePNGFramebuffer(renderer.Framebuffer(), cfg.OutputPath); err != nil {
		fmt.Printf("could not write %s: %v\n", cfg.OutputPath, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", cfg.OutputPath)
}

func runWindowed(cfg Config, scene *engine.Scene, cam *engine.Camera, renderer *engine.Renderer) {
	presenter, err := engine.NewPresenter(cfg.Width, cfg.Height, "ray tracing sandbox")
	if err != nil {
		fmt.Printf("could not open window: %v; falling back to headless mode\n", err)
		runHeadless(cfg, scene, cam, renderer)
		return
	}
	defer presenter.Close()

	input := engine.NewGLFWInputManager(presenter.Window())
	cur := toggleCursors{accelIdx: int(scene.Accel), heatIdx: int(cfg.HeatMap), cameraIdx: cfg.CameraPreset}

	for !presenter.ShouldClose() {
		ts := input.GetToggleState()
		if ts.Quit {
			break
		}
		applyToggles(ts, scene, renderer, &cur, &cam)

		if err := renderer.RenderFrame(context.Background(), scene, cam); err != nil {
			fmt.Printf("render failed: %v\n", err)
			break
		}
		presenter.Present(renderer.Framebuffer())
	}
}
