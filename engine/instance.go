package engine

// AccelType selects which acceleration structure a query is routed
// through. All three are built for every instance up front; switching
// AccelType at runtime (a UI toggle) never triggers a rebuild.
type AccelType int

const (
	AccelBVH AccelType = iota
	AccelKDTree
	AccelOctree
)

func (t AccelType) String() string {
	switch t {
	case AccelBVH:
		return "BVH"
	case AccelKDTree:
		return "kD-tree"
	case AccelOctree:
		return "Octree"
	default:
		return "unknown"
	}
}

// MeshInstance wraps a mesh with its three acceleration structures and
// an affine placement in the world. Rays are transformed into the
// mesh's local frame once at the top of Intersect and restored before
// returning, fixing the double-transform bug noted for the traversal
// entry point: this method is the *only* place the transform is ever
// applied, never inside a recursive traversal call.
type MeshInstance struct {
	Mesh *MeshStore

	bvh     *BVH
	kdtree  *KDTree
	octree  *Octree

	M, InvM Matrix4x4

	// ObjIdxBase offsets this instance's triangle objIdx values into a
	// scene-wide namespace, so a hit's objIdx alone identifies both the
	// owning instance and the local face within it.
	ObjIdxBase int
	ObjIdxCount int
}

// NewMeshInstance builds all three acceleration structures over mesh and
// places it at transform M (InvM must be its exact inverse; rigid
// transforms — rotation plus translation, no scale — keep hit distances
// exact across the world/local boundary).
func NewMeshInstance(mesh *MeshStore, m Matrix4x4, useSAH bool, objIdxBase int) *MeshInstance {
	inst := &MeshInstance{
		Mesh:       mesh,
		M:          m,
		InvM:       m.Invert(),
		ObjIdxBase: objIdxBase,
	}
	inst.bvh = NewBVH(mesh, useSAH)
	inst.kdtree = NewKDTree(mesh)
	inst.octree = NewOctree(mesh)

	maxObj := -1
	for _, t := range mesh.Tri {
		if t.ObjIdx > maxObj {
			maxObj = t.ObjIdx
		}
	}
	inst.ObjIdxCount = maxObj + 1
	return inst
}

// Intersect transforms ray into mesh-local space, dispatches to the
// selected index, and restores the ray to world space before returning.
// A closer hit found during traversal has its objIdx remapped into this
// instance's namespace so the scene can identify the owning instance
// from the hit record alone.
func (inst *MeshInstance) Intersect(ray *Ray, accelType AccelType, stats *RayStats) {
	worldOrigin, worldDir, worldRD := ray.Origin, ray.Direction, ray.RD
	prevT := ray.Hit.T

	ray.Origin = inst.InvM.TransformPointAffine(worldOrigin)
	ray.Direction = inst.InvM.TransformDirection(worldDir)
	ray.RD = Point{X: 1.0 / ray.Direction.X, Y: 1.0 / ray.Direction.Y, Z: 1.0 / ray.Direction.Z}

	switch accelType {
	case AccelBVH:
		inst.bvh.Intersect(ray, stats)
	case AccelKDTree:
		inst.kdtree.Intersect(ray, stats)
	case AccelOctree:
		inst.octree.Intersect(ray, stats)
	}

	ray.Origin, ray.Direction, ray.RD = worldOrigin, worldDir, worldRD

	if ray.Hit.T < prevT {
		ray.Hit.ObjIdx += inst.ObjIdxBase
	}
}

// NodesUsed returns the node-arena occupancy of this instance's built
// structure for accelType, for reporting/comparison purposes (e.g. the
// comparative benchmark tool).
func (inst *MeshInstance) NodesUsed(accelType AccelType) int {
	switch accelType {
	case AccelKDTree:
		return inst.kdtree.NodesUsed()
	case AccelOctree:
		return inst.octree.NodesUsed()
	default:
		return inst.bvh.NodesUsed()
	}
}

// NormalAt returns the world-space shading normal for triIndex (a local
// index into inst.Mesh.Tri), transformed by the transpose of InvM since
// normals do not transform like positions.
func (inst *MeshInstance) NormalAt(triIndex int) Point {
	local := inst.Mesh.AverageNormal(triIndex)
	return transformNormal(inst.InvM, local).Normalize()
}

// transformNormal applies the transpose of invM to a direction vector,
// which is the correct transform for normals under a general affine M.
func transformNormal(invM Matrix4x4, n Point) Point {
	return Point{
		X: invM.M[0]*n.X + invM.M[4]*n.Y + invM.M[8]*n.Z,
		Y: invM.M[1]*n.X + invM.M[5]*n.Y + invM.M[9]*n.Z,
		Z: invM.M[2]*n.X + invM.M[6]*n.Y + invM.M[10]*n.Z,
	}
}
