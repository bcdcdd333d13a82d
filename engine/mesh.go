package engine

// Triangle is a mesh-owned primitive: vertex and normal indices into the
// mesh's P/N arrays, a cached centroid, and the object id used for shading
// lookups. The triangle array itself is never reordered; ordering during
// acceleration-structure builds is expressed through triIdx instead.
type Triangle struct {
	V0, V1, V2 int
	N0, N1, N2 int
	Centroid   Point
	ObjIdx     int
}

// MeshStore owns the indexed vertex/normal/triangle arrays loaded from a
// single OBJ file. It is immutable once loaded: builders read P, N and
// Tri but never mutate them, and reorder only a private copy of the
// identity permutation (TriIdx belongs to each acceleration structure,
// not to the mesh).
type MeshStore struct {
	P   []Point // vertex positions
	N   []Point // vertex normals
	Tri []Triangle
}

// NewMeshStore builds an empty mesh store; callers populate it via
// LoadOBJ or AddTriangle.
func NewMeshStore() *MeshStore {
	return &MeshStore{}
}

// NumTriangles returns nT, the mesh's triangle count.
func (m *MeshStore) NumTriangles() int {
	return len(m.Tri)
}

// TriangleVertices returns the three mesh-space vertex positions of
// triangle i.
func (m *MeshStore) TriangleVertices(i int) (Point, Point, Point) {
	t := m.Tri[i]
	return m.P[t.V0], m.P[t.V1], m.P[t.V2]
}

// TriangleBounds returns the tight AABB of triangle i's three vertices.
func (m *MeshStore) TriangleBounds(i int) AABB {
	v0, v1, v2 := m.TriangleVertices(i)
	b := emptyAABB()
	b.Grow(v0)
	b.Grow(v1)
	b.Grow(v2)
	return b
}

// AverageNormal returns the flat-shaded mean of a triangle's three
// per-vertex normals. Barycentric interpolation would be smoother but is
// not required.
func (m *MeshStore) AverageNormal(i int) Point {
	t := m.Tri[i]
	sum := m.N[t.N0].Add(m.N[t.N1]).Add(m.N[t.N2])
	return sum.Scale(1.0 / 3.0).Normalize()
}

// computeCentroids assigns each triangle's cached centroid: the arithmetic
// mean of its three vertex positions. Called once after the mesh's
// triangles are fully populated, before any builder runs.
func (m *MeshStore) computeCentroids() {
	for i := range m.Tri {
		v0, v1, v2 := m.TriangleVertices(i)
		m.Tri[i].Centroid = v0.Add(v1).Add(v2).Scale(1.0 / 3.0)
	}
}

// Bounds returns the union AABB of every triangle in the mesh; an empty
// mesh returns an empty (inverted) box.
func (m *MeshStore) Bounds() AABB {
	box := emptyAABB()
	for i := range m.Tri {
		box.GrowBox(m.TriangleBounds(i))
	}
	return box
}

// AddTriangle appends a triangle built directly from three positions and
// a single flat normal, for geometry that has no OBJ file behind it.
// Returns the new triangle's index.
func (m *MeshStore) AddTriangle(v0, v1, v2, normal Point, objIdx int) int {
	pi := len(m.P)
	m.P = append(m.P, v0, v1, v2)
	ni := len(m.N)
	m.N = append(m.N, normal)

	idx := len(m.Tri)
	m.Tri = append(m.Tri, Triangle{
		V0: pi, V1: pi + 1, V2: pi + 2,
		N0: ni, N1: ni, N2: ni,
		Centroid: v0.Add(v1).Add(v2).Scale(1.0 / 3.0),
		ObjIdx:   objIdx,
	})
	return idx
}
