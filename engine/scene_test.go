package engine

import (
	"math"
	"testing"
)

func TestRoomIntersectWallsAndLights(t *testing.T) {
	room := NewRoom()

	t.Run("Floor", func(t *testing.T) {
		ray := NewRay(Point{0, 5, 0}, Point{0, -1, 0})
		room.intersect(&ray)
		if ray.Hit.ObjIdx != 0 {
			t.Fatalf("expected the floor (objIdx 0), got objIdx %d", ray.Hit.ObjIdx)
		}
		if math.Abs(ray.Hit.T-15) > 1e-6 {
			t.Errorf("expected t=15 to the floor at y=-10, got %v", ray.Hit.T)
		}
	})

	t.Run("CeilingAwayFromLights", func(t *testing.T) {
		ray := NewRay(Point{0, -5, 0}, Point{0, 1, 0})
		room.intersect(&ray)
		if ray.Hit.ObjIdx != 1 {
			t.Fatalf("straight up through x=0,z=0 should miss every light quad and hit the ceiling (objIdx 1), got %d", ray.Hit.ObjIdx)
		}
	})

	t.Run("ThroughALight", func(t *testing.T) {
		ray := NewRay(Point{-4, -5, -4}, Point{0, 1, 0})
		room.intersect(&ray)
		if ray.Hit.ObjIdx != roomWallCount {
			t.Fatalf("expected light 0 (objIdx %d), got %d", roomWallCount, ray.Hit.ObjIdx)
		}
		if ray.Hit.T >= 15 {
			t.Errorf("the light sits below the ceiling, hit should be closer than t=15, got %v", ray.Hit.T)
		}
	})

	t.Run("BehindAllWalls", func(t *testing.T) {
		// Outside the room, pointed away from every wall.
		ray := NewRay(Point{0, 0, -100}, Point{0, 0, -1})
		room.intersect(&ray)
		if ray.Hit.T != hitSentinel {
			t.Errorf("expected no hit, got objIdx=%d T=%v", ray.Hit.ObjIdx, ray.Hit.T)
		}
	})
}

func TestSceneFindNearestPrefersMeshOverRoom(t *testing.T) {
	scene := NewScene()
	mesh := singleTriangleMesh(0)
	scene.AddInstance(mesh, IdentityMatrix(), true)

	// The triangle sits at z=0, well inside the room (|z|<10), so a ray
	// through its center should hit the mesh, not the back wall behind it.
	ray := NewRay(Point{0, -0.2, -5}, Point{0, 0, 1})
	var stats RayStats
	hit := scene.FindNearest(&ray, &stats)

	if hit.T >= hitSentinel {
		t.Fatal("expected a hit")
	}
	inst, _ := scene.instanceFor(hit.ObjIdx)
	if inst == nil {
		t.Errorf("expected the hit to resolve to the mesh instance, not the room; objIdx=%d", hit.ObjIdx)
	}
}

func TestSceneGetAlbedoAndNormalForRoom(t *testing.T) {
	scene := NewScene()

	albedo := scene.GetAlbedo(3) // left wall, red
	if math.Abs(albedo.X-0.65) > 1e-9 {
		t.Errorf("expected the left wall's red albedo, got %+v", albedo)
	}

	n := scene.GetNormal(0, Intersection{}, Point{0, 1, 0})
	if n.Y <= 0 {
		t.Errorf("floor normal facing the viewer at (0,1,0) should point up, got %+v", n)
	}
}

func TestSceneLightSamplingStaysOnQuad(t *testing.T) {
	scene := NewScene()
	q := scene.GetLightQuad(0)

	minX, maxX := math.Min(q.P0.X, q.P1.X), math.Max(q.P0.X, q.P1.X)
	minZ, maxZ := math.Min(q.P0.Z, q.P3.Z), math.Max(q.P0.Z, q.P3.Z)

	for seed := int64(0); seed < 50; seed++ {
		p := scene.RandomPointOnLightQuad(0, seed)
		if p.X < minX-1e-9 || p.X > maxX+1e-9 || p.Z < minZ-1e-9 || p.Z > maxZ+1e-9 {
			t.Fatalf("sampled point %+v escaped the light quad's bounds [%v,%v]x[%v,%v]", p, minX, maxX, minZ, maxZ)
		}
	}
}

func TestSceneGetRandomLightInRange(t *testing.T) {
	scene := NewScene()
	for seed := int64(0); seed < 50; seed++ {
		idx := scene.GetRandomLight(seed)
		if idx < 0 || idx >= scene.GetLightCount() {
			t.Fatalf("light index %d out of range [0,%d)", idx, scene.GetLightCount())
		}
	}
}

func TestSceneSetSceneIdxAddsSecondInstance(t *testing.T) {
	scene := NewScene()
	mesh := singleTriangleMesh(0)
	scene.AddInstance(mesh, IdentityMatrix(), true)

	scene.SetSceneIdx(1)
	if len(scene.Instances) != 2 {
		t.Fatalf("expected a second instance after SetSceneIdx(1), got %d", len(scene.Instances))
	}

	// The mesh spans x in [-1,1] (width 2), so the second copy is shifted
	// to x=3 and a ray aimed there should miss the first copy entirely.
	second := scene.Instances[1]
	ray := NewRay(Point{3, -0.2, -5}, Point{0, 0, 1})
	var stats RayStats
	hit := scene.FindNearest(&ray, &stats)
	if hit.T >= hitSentinel {
		t.Fatal("expected the ray to hit the shifted second instance")
	}
	inst, _ := scene.instanceFor(hit.ObjIdx)
	if inst != second {
		t.Errorf("expected the hit to resolve to the second instance, got a different one")
	}

	scene.SetSceneIdx(0)
	if len(scene.Instances) != 1 {
		t.Fatalf("expected SetSceneIdx(0) to drop back to a single instance, got %d", len(scene.Instances))
	}
}

func TestCameraPresetsLookAtTarget(t *testing.T) {
	scene := NewScene()
	for i := 0; i < CameraPresetCount; i++ {
		cam := NewCameraForPreset(scene, i)
		fwd := cam.Transform.GetForwardVector()
		toTarget := scene.GetCameraTarget(i).Sub(scene.GetCameraPos(i)).Normalize()
		if fwd.Dot(toTarget) < 0.999 {
			t.Errorf("preset %d: camera forward vector %+v does not point at its target (expected dot ~1, got %v)", i, fwd, fwd.Dot(toTarget))
		}
	}
}
