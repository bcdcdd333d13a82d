package engine

import (
	"sync"
	"testing"
)

func TestStatsCollectorMergeAcrossWorkers(t *testing.T) {
	sc := NewStatsCollector(4)
	sc.BeginFrame(AccelBVH)

	var wg sync.WaitGroup
	const workers = 8
	const raysPerWorker = 100

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			var local FrameStats
			for i := 0; i < raysPerWorker; i++ {
				local.add(RayStats{IntersectionTests: id + 1, TraversalSteps: 2})
			}
			sc.Merge(local)
		}(w)
	}
	wg.Wait()

	final := sc.EndFrame()
	if final.Rays != workers*raysPerWorker {
		t.Errorf("expected %d total rays, got %d", workers*raysPerWorker, final.Rays)
	}
	if final.TraversalSteps != workers*raysPerWorker*2 {
		t.Errorf("expected %d total traversal steps, got %d", workers*raysPerWorker*2, final.TraversalSteps)
	}
	// The hottest worker (id=7) saw IntersectionTests=8 on every ray.
	if final.MaxIntersections != 8 {
		t.Errorf("expected MaxIntersections=8 from the hottest worker, got %d", final.MaxIntersections)
	}
}

func TestStatsCollectorFrozenLagsOneFrame(t *testing.T) {
	sc := NewStatsCollector(4)

	sc.BeginFrame(AccelBVH)
	var local FrameStats
	local.add(RayStats{IntersectionTests: 10})
	sc.Merge(local)
	sc.EndFrame()

	if sc.Frozen().MaxIntersections != 10 {
		t.Fatalf("expected the first frame's max to be frozen at 10, got %d", sc.Frozen().MaxIntersections)
	}

	sc.BeginFrame(AccelBVH)
	// A heat color computed mid-frame, before this frame's own EndFrame,
	// must still be normalized against the previous frame's maximum.
	color := sc.HeatColor(RayStats{IntersectionTests: 5}, HeatMapIntersectionTests)
	if color == ColorBlack {
		t.Error("expected a non-black heat color normalized against the frozen previous frame")
	}
}

func TestHeatColorOffModeIsBlack(t *testing.T) {
	sc := NewStatsCollector(1)
	if c := sc.HeatColor(RayStats{IntersectionTests: 100}, HeatMapOff); c != ColorBlack {
		t.Errorf("HeatMapOff should always return black, got %+v", c)
	}
}

func TestFrameStatsString(t *testing.T) {
	fs := FrameStats{Rays: 4, IntersectionTests: 8, AccelType: AccelOctree}
	s := fs.String()
	if s == "" {
		t.Fatal("expected a non-empty summary string")
	}
	t.Logf("summary: %s", s)
}
