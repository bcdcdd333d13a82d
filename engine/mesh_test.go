package engine

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

const quadOBJ = `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1 4//1
`

func writeTempOBJ(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "mesh.obj")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("could not write fixture: %v", err)
	}
	return path
}

func TestLoadOBJTriangulatesAndFansQuads(t *testing.T) {
	path := writeTempOBJ(t, quadOBJ)
	mesh := LoadOBJ(path)

	if mesh.NumTriangles() != 2 {
		t.Fatalf("expected 2 triangles from a single quad face, got %d", mesh.NumTriangles())
	}

	v0, v1, v2 := mesh.TriangleVertices(0)
	t.Logf("triangle 0: %+v %+v %+v", v0, v1, v2)
	if v0 != (Point{0, 0, 0}) || v1 != (Point{1, 0, 0}) || v2 != (Point{1, 1, 0}) {
		t.Errorf("unexpected first triangle vertices: %v %v %v", v0, v1, v2)
	}

	n := mesh.AverageNormal(0)
	if math.Abs(n.Z-1) > 1e-9 {
		t.Errorf("expected the loaded normal (0,0,1), got %+v", n)
	}
}

func TestLoadOBJMissingFileYieldsEmptyMesh(t *testing.T) {
	mesh := LoadOBJ(filepath.Join(t.TempDir(), "does-not-exist.obj"))
	if mesh.NumTriangles() != 0 {
		t.Errorf("expected an empty mesh for a missing file, got %d triangles", mesh.NumTriangles())
	}
}

func TestLoadOBJSkipsMalformedFaces(t *testing.T) {
	path := writeTempOBJ(t, `
v 0 0 0
v 1 0 0
v 1 1 0
f 1 2
f 1 2 3
`)
	mesh := LoadOBJ(path)
	if mesh.NumTriangles() != 1 {
		t.Fatalf("expected the 2-vertex face to be skipped, got %d triangles", mesh.NumTriangles())
	}
}

func TestMeshStoreAddTriangleAndBounds(t *testing.T) {
	m := NewMeshStore()
	idx := m.AddTriangle(Point{0, 0, 0}, Point{2, 0, 0}, Point{0, 2, 0}, Point{0, 0, 1}, 5)
	m.computeCentroids()

	if idx != 0 {
		t.Fatalf("expected the first triangle to get index 0, got %d", idx)
	}
	if m.Tri[0].ObjIdx != 5 {
		t.Errorf("ObjIdx not preserved: got %d", m.Tri[0].ObjIdx)
	}

	bounds := m.TriangleBounds(0)
	if bounds.Min != (Point{0, 0, 0}) || bounds.Max != (Point{2, 2, 0}) {
		t.Errorf("unexpected triangle bounds: %+v", bounds)
	}

	centroid := m.Tri[0].Centroid
	want := Point{2.0 / 3.0, 2.0 / 3.0, 0}
	if math.Abs(centroid.X-want.X) > 1e-9 || math.Abs(centroid.Y-want.Y) > 1e-9 {
		t.Errorf("unexpected centroid: got %+v, want %+v", centroid, want)
	}
}
