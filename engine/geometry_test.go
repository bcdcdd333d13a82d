package engine

import (
	"math"
	"testing"
)

func TestAABBIntersect(t *testing.T) {
	box := AABB{Min: Point{-1, -1, -1}, Max: Point{1, 1, 1}}

	t.Run("StraightHit", func(t *testing.T) {
		ray := NewRay(Point{0, 0, -5}, Point{0, 0, 1})
		got := box.IntersectAABB(&ray, hitSentinel)
		t.Logf("hit distance: %v", got)
		if got == hitSentinel {
			t.Fatal("expected a hit, got the miss sentinel")
		}
		if math.Abs(got-4) > 1e-9 {
			t.Errorf("expected t=4, got %v", got)
		}
	})

	t.Run("Miss", func(t *testing.T) {
		ray := NewRay(Point{5, 5, -5}, Point{0, 0, 1})
		got := box.IntersectAABB(&ray, hitSentinel)
		if got != hitSentinel {
			t.Errorf("expected the miss sentinel, got %v", got)
		}
	})

	t.Run("BehindOrigin", func(t *testing.T) {
		ray := NewRay(Point{0, 0, 5}, Point{0, 0, 1})
		got := box.IntersectAABB(&ray, hitSentinel)
		if got != hitSentinel {
			t.Errorf("box is entirely behind the ray origin, expected a miss, got %v", got)
		}
	})

	t.Run("CulledByCloserHit", func(t *testing.T) {
		ray := NewRay(Point{0, 0, -5}, Point{0, 0, 1})
		got := box.IntersectAABB(&ray, 2.0)
		if got != hitSentinel {
			t.Errorf("box entry at t=4 is beyond an existing hit at t=2, expected a miss, got %v", got)
		}
	})
}

func TestIntersectTriangle(t *testing.T) {
	v0 := Point{-1, -1, 0}
	v1 := Point{1, -1, 0}
	v2 := Point{0, 1, 0}

	t.Run("CenterHit", func(t *testing.T) {
		ray := NewRay(Point{0, -0.2, -5}, Point{0, 0, 1})
		hit := intersectTriangle(&ray, v0, v1, v2, 7, 3)
		if !hit {
			t.Fatal("expected a hit through the triangle's interior")
		}
		if ray.Hit.TriIndex != 7 || ray.Hit.ObjIdx != 3 {
			t.Errorf("expected TriIndex=7 ObjIdx=3, got %+v", ray.Hit)
		}
		if math.Abs(ray.Hit.T-5) > 1e-9 {
			t.Errorf("expected t=5, got %v", ray.Hit.T)
		}
	})

	t.Run("OutsideEdge", func(t *testing.T) {
		ray := NewRay(Point{5, 5, -5}, Point{0, 0, 1})
		if intersectTriangle(&ray, v0, v1, v2, 0, 0) {
			t.Error("ray passes nowhere near the triangle, expected a miss")
		}
	})

	t.Run("ParallelToPlane", func(t *testing.T) {
		ray := NewRay(Point{0, 0, -5}, Point{1, 0, 0})
		if intersectTriangle(&ray, v0, v1, v2, 0, 0) {
			t.Error("ray direction lies in the triangle's plane, expected a miss")
		}
	})

	t.Run("KeepsCloserExistingHit", func(t *testing.T) {
		ray := NewRay(Point{0, -0.2, -5}, Point{0, 0, 1})
		ray.Hit.T = 1.0 // closer than the triangle at t=5
		if intersectTriangle(&ray, v0, v1, v2, 0, 0) {
			t.Error("an existing closer hit should not be overwritten")
		}
		if ray.Hit.T != 1.0 {
			t.Errorf("hit record was mutated despite a farther candidate, got T=%v", ray.Hit.T)
		}
	})
}

func TestPointVectorOps(t *testing.T) {
	a := Point{1, 2, 3}
	b := Point{4, -1, 2}

	if got := a.Add(b); got != (Point{5, 1, 5}) {
		t.Errorf("Add: got %+v", got)
	}
	if got := a.Sub(b); got != (Point{-3, 3, 1}) {
		t.Errorf("Sub: got %+v", got)
	}
	if got := a.Dot(b); got != 1*4+2*-1+3*2 {
		t.Errorf("Dot: got %v", got)
	}

	n := Point{3, 4, 0}.Normalize()
	if math.Abs(n.Length()-1) > 1e-9 {
		t.Errorf("Normalize should produce a unit vector, length=%v", n.Length())
	}
}

func TestAABBGrow(t *testing.T) {
	box := emptyAABB()
	box.Grow(Point{1, 2, 3})
	box.Grow(Point{-1, 5, 0})

	if box.Min != (Point{-1, 2, 0}) || box.Max != (Point{1, 5, 3}) {
		t.Errorf("unexpected bounds after Grow: %+v", box)
	}
}
