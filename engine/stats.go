package engine

import (
	"fmt"
	"sync"
	"time"
)

// HeatMapMode selects which per-pixel counter stats.go maps to a color
// when the renderer is in heat-map output mode.
type HeatMapMode int

const (
	HeatMapOff HeatMapMode = iota
	HeatMapIntersectionTests
	HeatMapTraversalSteps
)

func (m HeatMapMode) String() string {
	switch m {
	case HeatMapIntersectionTests:
		return "intersection tests"
	case HeatMapTraversalSteps:
		return "traversal steps"
	default:
		return "off"
	}
}

// FrameStats aggregates per-ray RayStats counters and frame timing for
// one rendered frame, mirroring a profiler's begin/end-frame pattern but
// scoped to ray-tracing counters instead of rasterizer draw calls. It
// also serves as the worker-local accumulator a row-rendering goroutine
// folds its rays into before a single merge into the shared collector.
type FrameStats struct {
	FrameTime time.Duration
	FPS       float64

	Rays              int
	IntersectionTests int
	TraversalSteps    int
	MaxIntersections  int
	MaxTraversalSteps int

	AccelType AccelType
}

// add folds one ray's counters into fs, tracking running maxima.
func (fs *FrameStats) add(stats RayStats) {
	fs.Rays++
	fs.IntersectionTests += stats.IntersectionTests
	fs.TraversalSteps += stats.TraversalSteps
	if stats.IntersectionTests > fs.MaxIntersections {
		fs.MaxIntersections = stats.IntersectionTests
	}
	if stats.TraversalSteps > fs.MaxTraversalSteps {
		fs.MaxTraversalSteps = stats.TraversalSteps
	}
}

// merge folds another worker's local totals into fs.
func (fs *FrameStats) merge(other FrameStats) {
	fs.Rays += other.Rays
	fs.IntersectionTests += other.IntersectionTests
	fs.TraversalSteps += other.TraversalSteps
	if other.MaxIntersections > fs.MaxIntersections {
		fs.MaxIntersections = other.MaxIntersections
	}
	if other.MaxTraversalSteps > fs.MaxTraversalSteps {
		fs.MaxTraversalSteps = other.MaxTraversalSteps
	}
}

// StatsCollector accumulates FrameStats across a bounded history, the
// same ring-buffer shape as a frame-time profiler. Workers never touch
// current directly: each accumulates its own FrameStats locally across
// an entire row band and merges it in once, under mu, rather than
// taking a lock per ray.
type StatsCollector struct {
	enabled bool
	mu      sync.Mutex

	current    FrameStats
	frameStart time.Time

	// frozen is the last fully finalized frame, written once by EndFrame
	// strictly before the next frame's workers are spawned and read-only
	// for the duration of the following frame — safe without locking,
	// since goroutine creation establishes the happens-before edge.
	frozen FrameStats

	history      []FrameStats
	historyIndex int
}

// NewStatsCollector creates a collector retaining the last historySize
// frames.
func NewStatsCollector(historySize int) *StatsCollector {
	if historySize < 1 {
		historySize = 1
	}
	return &StatsCollector{
		enabled: true,
		history: make([]FrameStats, historySize),
	}
}

func (sc *StatsCollector) SetEnabled(enabled bool) { sc.enabled = enabled }
func (sc *StatsCollector) IsEnabled() bool         { return sc.enabled }

// BeginFrame resets the running counters and starts the frame timer.
// Must be called before any worker goroutine is spawned for the frame.
func (sc *StatsCollector) BeginFrame(accel AccelType) {
	if !sc.enabled {
		return
	}
	sc.frameStart = time.Now()
	sc.current = FrameStats{AccelType: accel}
}

// Merge folds one worker's row-band totals into the frame total. Called
// once per worker at the end of its row band, not once per ray.
func (sc *StatsCollector) Merge(local FrameStats) {
	if !sc.enabled {
		return
	}
	sc.mu.Lock()
	sc.current.merge(local)
	sc.mu.Unlock()
}

// EndFrame finalizes timing, freezes the frame for the next frame's
// heat-map normalization, and pushes it into history.
func (sc *StatsCollector) EndFrame() FrameStats {
	if !sc.enabled {
		return FrameStats{}
	}
	sc.current.FrameTime = time.Since(sc.frameStart)
	if sc.current.FrameTime > 0 {
		sc.current.FPS = 1.0 / sc.current.FrameTime.Seconds()
	}
	sc.frozen = sc.current
	sc.history[sc.historyIndex] = sc.current
	sc.historyIndex = (sc.historyIndex + 1) % len(sc.history)
	return sc.current
}

// Current returns the most recently finalized frame's stats.
func (sc *StatsCollector) Current() FrameStats {
	return sc.current
}

// Frozen returns the last finalized frame, the reference frame heat-map
// colors are normalized against while the next frame is in flight.
func (sc *StatsCollector) Frozen() FrameStats {
	return sc.frozen
}

// HeatColor maps one ray's counters through the selected heat-map mode
// to a displayable color, normalized against the previous frame's
// observed maximum (the current frame's maximum isn't known until every
// row has finished, so heat maps trail by one frame, settling within a
// couple of frames of a toggle or camera change).
func (sc *StatsCollector) HeatColor(stats RayStats, mode HeatMapMode) Color {
	var value, max float64
	switch mode {
	case HeatMapIntersectionTests:
		value = float64(stats.IntersectionTests)
		max = float64(sc.frozen.MaxIntersections)
	case HeatMapTraversalSteps:
		value = float64(stats.TraversalSteps)
		max = float64(sc.frozen.MaxTraversalSteps)
	default:
		return ColorBlack
	}
	if max <= 0 {
		return ColorBlack
	}
	return IntensityToWarmColor(value / max)
}

// String renders a compact one-line summary, in the teacher's style of
// a single formatted status string.
func (fs FrameStats) String() string {
	avgTests := 0.0
	if fs.Rays > 0 {
		avgTests = float64(fs.IntersectionTests) / float64(fs.Rays)
	}
	return fmt.Sprintf(
		"FPS: %.1f | Frame: %.2fms | Accel: %s | Rays: %d | AvgTests: %.1f | MaxTests: %d | MaxSteps: %d",
		fs.FPS,
		fs.FrameTime.Seconds()*1000,
		fs.AccelType,
		fs.Rays,
		avgTests,
		fs.MaxIntersections,
		fs.MaxTraversalSteps,
	)
}
