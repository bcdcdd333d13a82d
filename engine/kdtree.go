package engine

// kdTriIdxSafetyFactor accounts for straddling triangles being referenced
// by both children: unlike the BVH, k-D tree triIdx ranges are not a
// strict in-place partition of the parent's range, so the backing array
// can grow beyond nT. A factor of 2 is sufficient for the scenes this
// sandbox renders.
const kdTriIdxSafetyFactor = 2

// KDTree is the axis-aligned binary space partition: sibling cells tile
// the parent exactly and never overlap spatially, at the cost of
// triangles that straddle the split plane being referenced from both
// children's triIdx ranges.
type KDTree struct {
	mesh    *MeshStore
	arena   *NodeArena
	triIdx  []int
	rootIdx int
}

// NewKDTree builds a k-D tree over mesh.
func NewKDTree(mesh *MeshStore) *KDTree {
	k := &KDTree{mesh: mesh}
	k.Build()
	return k
}

func (k *KDTree) Build() {
	n := k.mesh.NumTriangles()

	k.triIdx = make([]int, n, maxInt(n*kdTriIdxSafetyFactor, 1))
	for i := range k.triIdx {
		k.triIdx[i] = i
	}

	k.arena = newNodeArena(maxInt(4*n+1, 1))
	root := k.arena.alloc(1)
	k.rootIdx = root

	node := &k.arena.Nodes[root]
	node.FirstChild = 0
	node.TriCount = n

	box := emptyAABB()
	for i := 0; i < n; i++ {
		box.GrowBox(k.mesh.TriangleBounds(k.triIdx[i]))
	}
	node.SetBounds(box)

	if n > 0 {
		k.subdivide(root)
	}
}

func (k *KDTree) subdivide(nodeIdx int) {
	node := &k.arena.Nodes[nodeIdx]
	if node.TriCount <= 2 {
		return
	}

	bounds := node.Bounds()
	axis, splitPos, cost := k.findBestSplit(node)
	if cost >= float64(node.TriCount)*bounds.Area() {
		return
	}

	first, count := node.FirstChild, node.TriCount
	var leftList, rightList []int
	for i := 0; i < count; i++ {
		tri := k.triIdx[first+i]
		v0, v1, v2 := k.mesh.TriangleVertices(tri)
		minV := v0.Component(axis)
		maxV := minV
		for _, c := range [2]float64{v1.Component(axis), v2.Component(axis)} {
			if c < minV {
				minV = c
			}
			if c > maxV {
				maxV = c
			}
		}
		if minV < splitPos {
			leftList = append(leftList, tri)
		}
		if maxV >= splitPos {
			rightList = append(rightList, tri)
		}
	}

	if len(leftList) == 0 || len(rightList) == 0 {
		return // degenerate split; keep the leaf
	}
	if len(leftList) == count && len(rightList) == count {
		return // everything straddles both sides; splitting buys nothing
	}

	leftFirst := len(k.triIdx)
	k.triIdx = append(k.triIdx, leftList...)
	rightFirst := len(k.triIdx)
	k.triIdx = append(k.triIdx, rightList...)

	leftIdx := k.arena.alloc(2)
	rightIdx := leftIdx + 1

	leftBox, rightBox := bounds, bounds
	leftBox.Max.SetComponent(axis, splitPos)
	rightBox.Min.SetComponent(axis, splitPos)

	k.arena.Nodes[leftIdx].FirstChild = leftFirst
	k.arena.Nodes[leftIdx].TriCount = len(leftList)
	k.arena.Nodes[leftIdx].SetBounds(leftBox)

	k.arena.Nodes[rightIdx].FirstChild = rightFirst
	k.arena.Nodes[rightIdx].TriCount = len(rightList)
	k.arena.Nodes[rightIdx].SetBounds(rightBox)

	node = &k.arena.Nodes[nodeIdx]
	node.FirstChild = leftIdx
	node.TriCount = 0

	k.subdivide(leftIdx)
	k.subdivide(rightIdx)
}

// findBestSplit evaluates the SAH functional at every triangle centroid
// that lies strictly inside the node's cell, on every axis (an exhaustive
// scan, like the BVH's SAH search), and keeps the first-encountered
// minimum for determinism.
func (k *KDTree) findBestSplit(node *Node) (bestAxis int, bestPos float64, bestCost float64) {
	bestCost = hitSentinel
	first, count := node.FirstChild, node.TriCount
	bounds := node.Bounds()

	for axis := 0; axis < 3; axis++ {
		for i := 0; i < count; i++ {
			pos := k.mesh.Tri[k.triIdx[first+i]].Centroid.Component(axis)
			if pos <= bounds.Min.Component(axis) || pos >= bounds.Max.Component(axis) {
				continue // the plane does not cut this node's cell
			}

			leftBox, rightBox := emptyAABB(), emptyAABB()
			leftCount, rightCount := 0, 0
			for j := 0; j < count; j++ {
				tri := k.triIdx[first+j]
				box := k.mesh.TriangleBounds(tri)
				if k.mesh.Tri[tri].Centroid.Component(axis) < pos {
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

func (k *KDTree) Intersect(ray *Ray, stats *RayStats) {
	if k.mesh.NumTriangles() == 0 {
		return
	}
	traverseBinary(k.arena, k.triIdx, k.mesh, k.rootIdx, ray, stats)
}

func (k *KDTree) RootIndex() int      { return k.rootIdx }
func (k *KDTree) NodesUsed() int      { return k.arena.NodesUsed }
func (k *KDTree) TriIndexArray() []int { return k.triIdx }
