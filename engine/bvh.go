package engine

// BVH is the binary bounding-volume hierarchy: nodes are the union AABB
// of their children, leaves hold a contiguous range of triIdx, and
// children are allowed to overlap in space.
type BVH struct {
	mesh    *MeshStore
	arena   *NodeArena
	triIdx  []int
	rootIdx int
	useSAH  bool
}

// NewBVH builds a BVH over mesh. useSAH selects the advanced
// surface-area-heuristic split; otherwise the simple median-of-
// longest-axis variant is used.
func NewBVH(mesh *MeshStore, useSAH bool) *BVH {
	b := &BVH{mesh: mesh, useSAH: useSAH}
	b.Build()
	return b
}

// Build is idempotent: calling it again after a reset reproduces the
// same nodes/triIdx arrays bit-for-bit, since triangle iteration order
// and the tie-breaking rule (lower axis, lower index) are deterministic.
func (b *BVH) Build() {
	n := b.mesh.NumTriangles()

	b.triIdx = make([]int, n)
	for i := range b.triIdx {
		b.triIdx[i] = i
	}

	b.arena = newNodeArena(maxInt(2*n-1, 1))
	root := b.arena.alloc(1)
	b.rootIdx = root

	node := &b.arena.Nodes[root]
	node.FirstChild = 0
	node.TriCount = n
	b.updateBounds(root)

	if n > 0 {
		b.subdivide(root)
	}
}

func (b *BVH) updateBounds(nodeIdx int) {
	node := &b.arena.Nodes[nodeIdx]
	box := emptyAABB()
	for i := 0; i < node.TriCount; i++ {
		tri := b.triIdx[node.FirstChild+i]
		box.GrowBox(b.mesh.TriangleBounds(tri))
	}
	node.SetBounds(box)
}

func (b *BVH) subdivide(nodeIdx int) {
	node := &b.arena.Nodes[nodeIdx]
	if node.TriCount <= 2 {
		return
	}

	var axis int
	var splitPos float64
	if b.useSAH {
		var cost float64
		axis, splitPos, cost = b.findBestSplitSAH(node)
		parentCost := float64(node.TriCount) * node.Bounds().Area()
		if cost >= parentCost {
			return
		}
	} else {
		axis = node.Bounds().LongestAxis()
		splitPos = node.Bounds().Center().Component(axis)
	}

	first, count := node.FirstChild, node.TriCount
	i, j := first, first+count-1
	for i <= j {
		if b.mesh.Tri[b.triIdx[i]].Centroid.Component(axis) < splitPos {
			i++
		} else {
			b.triIdx[i], b.triIdx[j] = b.triIdx[j], b.triIdx[i]
			j--
		}
	}
	leftCount := i - first
	if leftCount == 0 || leftCount == count {
		return // split produced an empty side; keep the leaf
	}

	leftIdx := b.arena.alloc(2)
	rightIdx := leftIdx + 1

	b.arena.Nodes[leftIdx].FirstChild = first
	b.arena.Nodes[leftIdx].TriCount = leftCount
	b.arena.Nodes[rightIdx].FirstChild = first + leftCount
	b.arena.Nodes[rightIdx].TriCount = count - leftCount

	node = &b.arena.Nodes[nodeIdx]
	node.FirstChild = leftIdx
	node.TriCount = 0

	b.updateBounds(leftIdx)
	b.updateBounds(rightIdx)
	b.subdivide(leftIdx)
	b.subdivide(rightIdx)
}

// findBestSplitSAH evaluates the SAH functional at every triangle
// centroid on every axis — the same exhaustive scan the k-D tree's
// findBestSplit performs, over candidate planes at this node's own
// triIdx range rather than a binned approximation — and keeps the
// first-encountered minimum (lower axis, then lower index) on ties so
// that Build is deterministic.
func (b *BVH) findBestSplitSAH(node *Node) (bestAxis int, bestPos float64, bestCost float64) {
	bestCost = hitSentinel
	first, count := node.FirstChild, node.TriCount

	for axis := 0; axis < 3; axis++ {
		for i := 0; i < count; i++ {
			pos := b.mesh.Tri[b.triIdx[first+i]].Centroid.Component(axis)

			leftBox, rightBox := emptyAABB(), emptyAABB()
			leftCount, rightCount := 0, 0
			for j := 0; j < count; j++ {
				tri := b.triIdx[first+j]
				box := b.mesh.TriangleBounds(tri)
				if b.mesh.Tri[tri].Centroid.Component(axis) < pos {
					leftBox.GrowBox(box)
					leftCount++
				} else {
					rightBox.GrowBox(box)
					rightCount++
				}
			}
			if leftCount == 0 || rightCount == 0 {
				continue
			}

			cost := float64(leftCount)*leftBox.Area() + float64(rightCount)*rightBox.Area()
			if cost < bestCost {
				bestCost = cost
				bestAxis = axis
				bestPos = pos
			}
		}
	}
	return
}

// Intersect traverses the BVH for the nearest hit along ray, updating
// ray.Hit in place and accumulating per-ray counters into stats.
func (b *BVH) Intersect(ray *Ray, stats *RayStats) {
	if b.mesh.NumTriangles() == 0 {
		return
	}
	traverseBinary(b.arena, b.triIdx, b.mesh, b.rootIdx, ray, stats)
}

func (b *BVH) RootIndex() int      { return b.rootIdx }
func (b *BVH) TriCount() int       { return b.mesh.NumTriangles() }
func (b *BVH) NodesUsed() int      { return b.arena.NodesUsed }
func (b *BVH) TriIndexArray() []int { return b.triIdx }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
