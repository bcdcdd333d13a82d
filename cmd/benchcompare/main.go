package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/mirstar13/go-raytrace-accel/engine"
)

// accelResult holds one acceleration structure's measured performance
// over the warm-up-then-timed-runs protocol.
type accelResult struct {
	Accel     engine.AccelType
	BuildTime time.Duration
	NodesUsed int
	MinFrame  time.Duration
	MaxFrame  time.Duration
	AvgFrame  time.Duration
	Stats     engine.FrameStats
}

const warmupRuns = 2

func benchmarkAccel(ctx context.Context, obj string, accel engine.AccelType, width, height, workers, runs int) accelResult {
	buildStart := time.Now()
	scene := engine.NewScene()
	scene.Accel = accel
	mesh := engine.LoadOBJ(obj)
	inst := scene.AddInstance(mesh, engine.IdentityMatrix(), true)
	buildTime := time.Since(buildStart)
	nodesUsed := inst.NodesUsed(accel)

	cam := engine.NewCameraForPreset(scene, 0)
	renderer := engine.NewRenderer(width, height, workers)

	for i := 0; i < warmupRuns; i++ {
		_ = renderer.RenderFrame(ctx, scene, cam)
	}

	var total time.Duration
	min := time.Duration(1<<63 - 1)
	max := time.Duration(0)
	var last engine.FrameStats

	for i := 0; i < runs; i++ {
		if err := renderer.RenderFrame(ctx, scene, cam); err != nil {
			fmt.Printf("frame %d failed: %v\n", i, err)
			continue
		}
		last = renderer.Stats.Current()
		total += last.FrameTime
		if last.FrameTime < min {
			min = last.FrameTime
		}
		if last.FrameTime > max {
			max = last.FrameTime
		}
	}

	avg := time.Duration(0)
	if runs > 0 {
		avg = total / time.Duration(runs)
	}

	return accelResult{
		Accel: accel, BuildTime: buildTime, NodesUsed: nodesUsed,
		MinFrame: min, MaxFrame: max, AvgFrame: avg,
		Stats: last,
	}
}

// printComparison renders a fixed-width table of the three structures'
// timings plus a speedup-over-slowest column, matching the format a
// deleted rasterizer benchmark used for comparing render paths.
func printComparison(results []accelResult) {
	slowest := results[0].AvgFrame
	for _, r := range results {
		if r.AvgFrame > slowest {
			slowest = r.AvgFrame
		}
	}

	fmt.Println()
	fmt.Printf("%-10s %10s %10s %10s %10s %10s %8s %10s %10s\n",
		"Accel", "Build", "Nodes", "Min", "Max", "Avg", "Speedup", "AvgTests", "AvgSteps")
	fmt.Println("------------------------------------------------------------------------------------------------")
	for _, r := range results {
		speedup := 1.0
		if r.AvgFrame > 0 {
			speedup = float64(slowest) / float64(r.AvgFrame)
		}
		avgTests := 0.0
		avgSteps := 0.0
		if r.Stats.Rays > 0 {
			avgTests = float64(r.Stats.IntersectionTests) / float64(r.Stats.Rays)
			avgSteps = float64(r.Stats.TraversalSteps) / float64(r.Stats.Rays)
		}
		fmt.Printf("%-10s %10s %10d %10s %10s %10s %7.2fx %10.2f %10.2f\n",
			r.Accel,
			r.BuildTime.Round(time.Microsecond),
			r.NodesUsed,
			r.MinFrame.Round(time.Microsecond),
			r.MaxFrame.Round(time.Microsecond),
			r.AvgFrame.Round(time.Microsecond),
			speedup,
			avgTests,
			avgSteps,
		)
	}
	fmt.Println()
}

func main() {
	width := flag.Int("width", 320, "framebuffer width")
	height := flag.Int("height", 240, "framebuffer height")
	workers := flag.Int("workers", 4, "rendering goroutines per frame")
	runs := flag.Int("runs", 5, "timed frames per acceleration structure")
	objPath := flag.String("obj", "", "path to a Wavefront OBJ mesh (required)")
	flag.Parse()

	if *objPath == "" {
		fmt.Println("usage: benchcompare -obj <path.obj> [-width W] [-height H] [-workers N] [-runs N]")
		return
	}

	ctx := context.Background()
	accels := []engine.AccelType{engine.AccelBVH, engine.AccelKDTree, engine.AccelOctree}

	results := make([]accelResult, 0, len(accels))
	for _, accel := range accels {
		fmt.Printf("benchmarking %s...\n", accel)
		results = append(results, benchmarkAccel(ctx, *objPath, accel, *width, *height, *workers, *runs))
	}

	printComparison(results)
}
