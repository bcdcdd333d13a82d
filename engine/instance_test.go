package engine

import (
	"math"
	"testing"
)

// translation builds an affine translation-only Matrix4x4 (no rotation,
// no scale), matching the row-major layout TransformPointAffine expects.
func translation(tx, ty, tz float64) Matrix4x4 {
	return Matrix4x4{M: [16]float64{
		1, 0, 0, tx,
		0, 1, 0, ty,
		0, 0, 1, tz,
		0, 0, 0, 1,
	}}
}

func singleTriangleMesh(objIdx int) *MeshStore {
	m := NewMeshStore()
	m.AddTriangle(Point{-1, -1, 0}, Point{1, -1, 0}, Point{0, 1, 0}, Point{0, 0, 1}, objIdx)
	m.computeCentroids()
	return m
}

func TestMeshInstanceTransformsRayIntoLocalSpace(t *testing.T) {
	mesh := singleTriangleMesh(0)
	m := translation(10, 0, 0)
	inst := NewMeshInstance(mesh, m, true, 100)

	// In world space the triangle now sits around x=10; a ray aimed at
	// world-space x=10 should hit it only after the instance transforms
	// it back into the mesh's local frame.
	ray := NewRay(Point{10, -0.2, -5}, Point{0, 0, 1})
	var stats RayStats
	inst.Intersect(&ray, AccelBVH, &stats)

	if ray.Hit.T >= hitSentinel {
		t.Fatal("expected the translated instance to be hit")
	}
	if math.Abs(ray.Hit.T-5) > 1e-6 {
		t.Errorf("expected t=5 in world space, got %v", ray.Hit.T)
	}
	if ray.Hit.ObjIdx != 100 {
		t.Errorf("expected objIdx remapped to the instance's base 100, got %d", ray.Hit.ObjIdx)
	}

	// The ray must be restored to world space after Intersect returns.
	if ray.Origin != (Point{10, -0.2, -5}) {
		t.Errorf("ray.Origin was not restored to world space: %+v", ray.Origin)
	}
}

func TestMeshInstanceMissLeavesRayUntouched(t *testing.T) {
	mesh := singleTriangleMesh(0)
	inst := NewMeshInstance(mesh, IdentityMatrix(), true, 0)

	ray := NewRay(Point{100, 100, -5}, Point{0, 0, 1})
	var stats RayStats
	inst.Intersect(&ray, AccelBVH, &stats)

	if ray.Hit.T != hitSentinel {
		t.Errorf("expected no hit, got T=%v", ray.Hit.T)
	}
	if ray.Hit.ObjIdx != -1 {
		t.Errorf("a miss should leave ObjIdx at its initial -1, got %d", ray.Hit.ObjIdx)
	}
}

func TestMeshInstanceObjIdxCount(t *testing.T) {
	mesh := NewMeshStore()
	mesh.AddTriangle(Point{0, 0, 0}, Point{1, 0, 0}, Point{0, 1, 0}, Point{0, 0, 1}, 0)
	mesh.AddTriangle(Point{0, 0, 0}, Point{1, 0, 0}, Point{0, 1, 0}, Point{0, 0, 1}, 3)
	mesh.computeCentroids()

	inst := NewMeshInstance(mesh, IdentityMatrix(), true, 0)
	if inst.ObjIdxCount != 4 {
		t.Errorf("expected ObjIdxCount to span 0..3 inclusive (4), got %d", inst.ObjIdxCount)
	}
}

func TestMeshInstanceAllAccelTypesAgree(t *testing.T) {
	mesh := gridMesh(4)
	inst := NewMeshInstance(mesh, IdentityMatrix(), true, 0)

	ray := func() Ray { return NewRay(Point{1.5, 1.5, -10}, Point{0, 0, 1}) }

	var want float64
	for i, accel := range []AccelType{AccelBVH, AccelKDTree, AccelOctree} {
		r := ray()
		var stats RayStats
		inst.Intersect(&r, accel, &stats)
		if r.Hit.T >= hitSentinel {
			t.Fatalf("%v: expected a hit", accel)
		}
		if i == 0 {
			want = r.Hit.T
			continue
		}
		if math.Abs(r.Hit.T-want) > 1e-6 {
			t.Errorf("%v: hit distance %v disagrees with %v", accel, r.Hit.T, want)
		}
	}
}
