package engine

import "math/rand"

// Quad is a planar light/wall patch used only by the room's analytic
// geometry; mesh geometry never uses it (meshes are pure triangles).
type Quad struct {
	P0, P1, P2, P3 Point
	Normal         Point
	Color          Point // RGB in [0,1]
}

// Area returns the quad's surface area, assuming P0..P3 form a planar
// rectangle in winding order.
func (q Quad) Area() float64 {
	e1 := q.P1.Sub(q.P0)
	e2 := q.P3.Sub(q.P0)
	return e1.Cross(e2).Length()
}

// roomWallCount/roomLightCount reserve the low end of the global
// objIdx namespace for the analytic room, before any mesh instance's
// range begins.
const (
	roomWallCount  = 6
	roomLightCount = 4
)

// Room is the fixed Cornell-style enclosure: six axis-aligned walls and
// four ceiling light quads, with a single quad-light sampler. It is not
// spatially indexed — six slab tests and four quad tests per ray are
// cheap enough that building an accelerator for the room would be
// wasted effort, matching the spec's framing of it as thin surrounding
// scaffolding rather than part of the core.
type Room struct {
	Walls  [roomWallCount]AABB // degenerate (zero-thickness) boxes, one per wall
	WallColor [roomWallCount]Point
	Lights [roomLightCount]Quad
}

// NewRoom builds a Cornell-box-sized room: floor/ceiling/back/left/
// right walls (zero-thickness slabs) plus four small light quads set
// into the ceiling.
func NewRoom() *Room {
	const s = 10.0 // half-extent of the room
	r := &Room{}

	r.Walls[0] = AABB{Min: Point{-s, -s, -s}, Max: Point{s, -s, s}}  // floor
	r.Walls[1] = AABB{Min: Point{-s, s, -s}, Max: Point{s, s, s}}    // ceiling
	r.Walls[2] = AABB{Min: Point{-s, -s, s}, Max: Point{s, s, s}}    // back
	r.Walls[3] = AABB{Min: Point{-s, -s, -s}, Max: Point{-s, s, s}}  // left
	r.Walls[4] = AABB{Min: Point{s, -s, -s}, Max: Point{s, s, s}}    // right
	r.Walls[5] = AABB{Min: Point{-s, -s, -s}, Max: Point{s, s, -s}} // front (behind camera)

	r.WallColor[0] = Point{0.73, 0.73, 0.73}
	r.WallColor[1] = Point{0.73, 0.73, 0.73}
	r.WallColor[2] = Point{0.73, 0.73, 0.73}
	r.WallColor[3] = Point{0.65, 0.05, 0.05} // red
	r.WallColor[4] = Point{0.12, 0.45, 0.15} // green
	r.WallColor[5] = Point{0.73, 0.73, 0.73}

	const ls = 2.0
	centers := [roomLightCount]Point{
		{-4, s - 0.01, -4}, {4, s - 0.01, -4}, {-4, s - 0.01, 4}, {4, s - 0.01, 4},
	}
	for i, c := range centers {
		r.Lights[i] = Quad{
			P0: Point{c.X - ls, c.Y, c.Z - ls},
			P1: Point{c.X + ls, c.Y, c.Z - ls},
			P2: Point{c.X + ls, c.Y, c.Z + ls},
			P3: Point{c.X - ls, c.Y, c.Z + ls},
			Normal: Point{0, -1, 0},
			Color:  Point{15, 15, 14},
		}
	}
	return r
}

// wallNormal returns the inward-facing normal for wall i.
func wallNormal(i int) Point {
	switch i {
	case 0:
		return Point{0, 1, 0}
	case 1:
		return Point{0, -1, 0}
	case 2:
		return Point{0, 0, -1}
	case 3:
		return Point{1, 0, 0}
	case 4:
		return Point{-1, 0, 0}
	default:
		return Point{0, 0, 1}
	}
}

// intersect tests the ray against the room's six walls and four light
// quads, updating ray.Hit and stamping objIdx 0..9 for whichever face
// won. Walls are tested as degenerate AABBs (one axis has zero
// thickness), which the shared slab test handles without modification.
func (rm *Room) intersect(ray *Ray) {
	for i := 0; i < roomWallCount; i++ {
		t := rm.Walls[i].IntersectAABB(ray, ray.Hit.T)
		if t != hitSentinel && t > triEpsilon && t < ray.Hit.T {
			ray.Hit = Intersection{T: t, TriIndex: -1, ObjIdx: i}
		}
	}
	for i := 0; i < roomLightCount; i++ {
		q := rm.Lights[i]
		v0, v1, v2 := q.P0, q.P1, q.P2
		prevT := ray.Hit.T
		if intersectTriangle(ray, v0, v1, v2, -1, roomWallCount+i) && ray.Hit.T < prevT {
			continue
		}
		intersectTriangle(ray, q.P0, q.P2, q.P3, -1, roomWallCount+i)
	}
}

// Scene composes the room with zero or more mesh instances and
// dispatches nearest-hit queries across all of it, per §4.8: walls,
// then lights, then each instance routed to its currently selected
// acceleration structure.
type Scene struct {
	Room      *Room
	Instances []*MeshInstance
	Accel     AccelType
	SceneIdx  int // 0 = single mesh, 1 = two-mesh scenario (spec §6, E5)
	Time      float64

	cameraPos    [3]Point
	cameraTarget [3]Point

	// baseMesh/baseUseSAH remember the first loaded instance so
	// SetSceneIdx can add or drop the second, non-overlapping copy
	// E5 calls for without touching the OBJ file again.
	baseMesh   *MeshStore
	baseUseSAH bool
}

// NewScene builds the fixed room and wires up default camera presets.
func NewScene() *Scene {
	s := &Scene{Room: NewRoom(), Accel: AccelBVH}
	s.cameraPos = [3]Point{
		{0, 0, -18},
		{10, 5, -14},
		{0, 8, 0.01},
	}
	s.cameraTarget = [3]Point{
		{0, 0, 0},
		{0, 0, 0},
		{0, -1, 0.01},
	}
	return s
}

// AddInstance places mesh at transform m and returns the created
// instance. ObjIdx ranges are assigned contiguously after the room's
// reserved [0, roomWallCount+roomLightCount) range and any
// previously-added instances.
func (s *Scene) AddInstance(mesh *MeshStore, m Matrix4x4, useSAH bool) *MeshInstance {
	base := roomWallCount + roomLightCount
	for _, inst := range s.Instances {
		base += inst.ObjIdxCount
	}
	inst := NewMeshInstance(mesh, m, useSAH, base)
	s.Instances = append(s.Instances, inst)
	if s.baseMesh == nil {
		s.baseMesh, s.baseUseSAH = mesh, useSAH
	}
	return inst
}

// SetSceneIdx switches between the single-mesh scenario (idx 0) and the
// two-mesh scenario (idx 1, spec.md's E5): a second instance of the same
// mesh offset along X by 1.5x its own width, so the two copies never
// overlap. Toggling back to 0 drops the second instance again; with no
// mesh loaded this only records the index, since there is nothing to
// duplicate.
func (s *Scene) SetSceneIdx(idx int) {
	s.SceneIdx = idx
	if s.baseMesh == nil {
		return
	}
	switch idx {
	case 1:
		if len(s.Instances) < 2 {
			width := s.baseMesh.Bounds().Max.X - s.baseMesh.Bounds().Min.X
			if width <= 0 {
				width = 1
			}
			shift := ComposeMatrix(Point{X: width * 1.5}, IdentityQuaternion(), Point{X: 1, Y: 1, Z: 1})
			s.AddInstance(s.baseMesh, shift, s.baseUseSAH)
		}
	default:
		if len(s.Instances) > 1 {
			s.Instances = s.Instances[:1]
		}
	}
}

// FindNearest intersects ray against the room and every instance,
// returning the winning Intersection. ray.Hit.T starts at +inf.
func (s *Scene) FindNearest(ray *Ray, stats *RayStats) Intersection {
	s.Room.intersect(ray)
	for _, inst := range s.Instances {
		inst.Intersect(ray, s.Accel, stats)
	}
	return ray.Hit
}

// instanceFor resolves which instance (if any) owns objIdx; nil means
// the room.
func (s *Scene) instanceFor(objIdx int) (*MeshInstance, int) {
	local := objIdx - (roomWallCount + roomLightCount)
	if local < 0 {
		return nil, objIdx
	}
	for _, inst := range s.Instances {
		if local < inst.ObjIdxCount {
			return inst, local
		}
		local -= inst.ObjIdxCount
	}
	return nil, objIdx
}

// GetNormal returns the surface normal for objIdx, flipped if it faces
// away from wo (the outgoing direction toward the viewer).
func (s *Scene) GetNormal(objIdx int, hit Intersection, wo Point) Point {
	var n Point
	if inst, _ := s.instanceFor(objIdx); inst != nil {
		n = inst.NormalAt(hit.TriIndex)
	} else if objIdx < roomWallCount {
		n = wallNormal(objIdx)
	} else {
		n = s.Room.Lights[objIdx-roomWallCount].Normal
	}
	if n.Dot(wo) < 0 {
		n = n.Negate()
	}
	return n
}

// GetAlbedo returns the diffuse RGB albedo at objIdx.
func (s *Scene) GetAlbedo(objIdx int) Point {
	if inst, local := s.instanceFor(objIdx); inst != nil {
		_ = local
		return Point{0.7, 0.7, 0.7}
	}
	if objIdx < roomWallCount {
		return s.Room.WallColor[objIdx]
	}
	return Point{1, 1, 1}
}

// GetLightCount returns the number of area lights in the room.
func (s *Scene) GetLightCount() int {
	return roomLightCount
}

// GetLightQuad returns light quad idx.
func (s *Scene) GetLightQuad(idx int) Quad {
	return s.Room.Lights[idx%roomLightCount]
}

// GetLightColor returns the (shared) emissive color of the room lights.
func (s *Scene) GetLightColor() Point {
	return s.Room.Lights[0].Color
}

// GetLightArea returns the surface area of a single light quad.
func (s *Scene) GetLightArea() float64 {
	return s.Room.Lights[0].Area()
}

// GetRandomLight picks one of the room's lights given a seed, returning
// its index.
func (s *Scene) GetRandomLight(seed int64) int {
	return int(rand.New(rand.NewSource(seed)).Int63() % int64(roomLightCount))
}

// RandomPointOnLightQuad samples a uniformly-distributed point on light
// quad idx using seed for reproducibility.
func (s *Scene) RandomPointOnLightQuad(idx int, seed int64) Point {
	q := s.GetLightQuad(idx)
	rng := rand.New(rand.NewSource(seed))
	u, v := rng.Float64(), rng.Float64()
	e1 := q.P1.Sub(q.P0)
	e2 := q.P3.Sub(q.P0)
	return q.P0.Add(e1.Scale(u)).Add(e2.Scale(v))
}

// SetTime updates time-varying scene state; currently only the lights'
// placement would respond to it, and the fixed room has none, so this
// is a no-op hook kept for interface parity with an animated scene.
func (s *Scene) SetTime(t float64) {
	s.Time = t
}

// GetCameraPos and GetCameraTarget return fixed evaluation presets.
func (s *Scene) GetCameraPos(i int) Point    { return s.cameraPos[i%len(s.cameraPos)] }
func (s *Scene) GetCameraTarget(i int) Point { return s.cameraTarget[i%len(s.cameraTarget)] }
