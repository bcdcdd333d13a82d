package engine

// octreeStackDepth is larger than the binary traversal stack since an
// octree node can push up to 7 siblings per level instead of 1.
const octreeStackDepth = 256

// Octree is the 8-way space partition: every split divides a node along
// all three axes at once, sharing one split position per axis across
// the eight children.
type Octree struct {
	mesh    *MeshStore
	arena   *NodeArena
	triIdx  []int
	rootIdx int
}

func NewOctree(mesh *MeshStore) *Octree {
	o := &Octree{mesh: mesh}
	o.Build()
	return o
}

func (o *Octree) Build() {
	n := o.mesh.NumTriangles()

	o.triIdx = make([]int, n)
	for i := range o.triIdx {
		o.triIdx[i] = i
	}

	// Octree nodes fan out 8-way; size generously for worst case.
	o.arena = newNodeArena(maxInt(8*n+1, 1))
	root := o.arena.alloc(1)
	o.rootIdx = root

	node := &o.arena.Nodes[root]
	node.FirstChild = 0
	node.TriCount = n
	o.updateBounds(root)

	if n > 0 {
		o.subdivide(root)
	}
}

func (o *Octree) updateBounds(nodeIdx int) {
	node := &o.arena.Nodes[nodeIdx]
	box := emptyAABB()
	for i := 0; i < node.TriCount; i++ {
		box.GrowBox(o.mesh.TriangleBounds(o.triIdx[node.FirstChild+i]))
	}
	node.SetBounds(box)
}

// octant classifies a centroid against the split point using the sign
// bits b = (x>=sx)*4 + (y>=sy)*2 + (z>=sz).
func octant(c, split Point) int {
	b := 0
	if c.X >= split.X {
		b |= 4
	}
	if c.Y >= split.Y {
		b |= 2
	}
	if c.Z >= split.Z {
		b |= 1
	}
	return b
}

func (o *Octree) subdivide(nodeIdx int) {
	node := &o.arena.Nodes[nodeIdx]
	if node.TriCount <= 2 {
		return
	}

	bounds := node.Bounds()
	// The split position is deterministic and inside the node's bounds:
	// the AABB midpoint per axis (the spec leaves the exact choice open
	// beyond that requirement).
	split := bounds.Center()

	first, count := node.FirstChild, node.TriCount
	var buckets [8][]int
	for i := 0; i < count; i++ {
		tri := o.triIdx[first+i]
		oct := octant(o.mesh.Tri[tri].Centroid, split)
		buckets[oct] = append(buckets[oct], tri)
	}

	empty := 0
	for _, b := range buckets {
		if len(b) == 0 {
			empty++
		}
	}
	if empty >= 4 {
		return // too few populated octants to justify the split
	}

	// Re-layout triIdx[first:first+count] as eight contiguous runs.
	offset := first
	var childFirst [8]int
	var childCount [8]int
	for oct := 0; oct < 8; oct++ {
		childFirst[oct] = offset
		childCount[oct] = len(buckets[oct])
		copy(o.triIdx[offset:offset+len(buckets[oct])], buckets[oct])
		offset += len(buckets[oct])
	}

	childrenIdx := o.arena.alloc(8)
	for oct := 0; oct < 8; oct++ {
		child := &o.arena.Nodes[childrenIdx+oct]
		child.FirstChild = childFirst[oct]
		child.TriCount = childCount[oct]
		if childCount[oct] == 0 {
			// TriCount==0 means interior everywhere else in this
			// arena; a genuinely empty octant needs to read as a leaf
			// with nothing to test, so it gets the reserved sentinel
			// -1 instead (traverseOctree's leaf branch handles it: the
			// triangle loop bound i < TriCount never executes).
			child.TriCount = -1
		}
		child.SetBounds(octantBounds(bounds, split, oct))
	}

	node = &o.arena.Nodes[nodeIdx]
	node.FirstChild = childrenIdx
	node.TriCount = 0

	for oct := 0; oct < 8; oct++ {
		o.subdivide(childrenIdx + oct)
	}
}

// octantBounds derives the oct-th child's tile AABB from the parent's
// box and the shared split position: one octant corner per axis sign.
func octantBounds(parent AABB, split Point, oct int) AABB {
	var b AABB
	if oct&4 != 0 {
		b.Min.X, b.Max.X = split.X, parent.Max.X
	} else {
		b.Min.X, b.Max.X = parent.Min.X, split.X
	}
	if oct&2 != 0 {
		b.Min.Y, b.Max.Y = split.Y, parent.Max.Y
	} else {
		b.Min.Y, b.Max.Y = parent.Min.Y, split.Y
	}
	if oct&1 != 0 {
		b.Min.Z, b.Max.Z = split.Z, parent.Max.Z
	} else {
		b.Min.Z, b.Max.Z = parent.Min.Z, split.Z
	}
	return b
}

func (o *Octree) Intersect(ray *Ray, stats *RayStats) {
	if o.mesh.NumTriangles() == 0 {
		return
	}
	traverseOctree(o.arena, o.triIdx, o.mesh, o.rootIdx, ray, stats)
}

func (o *Octree) RootIndex() int      { return o.rootIdx }
func (o *Octree) NodesUsed() int      { return o.arena.NodesUsed }
func (o *Octree) TriIndexArray() []int { return o.triIdx }

// traverseOctree walks the 8-way arena, slab-testing all live children
// of an interior node and pushing the hits in far-to-near order.
func traverseOctree(arena *NodeArena, triIdx []int, mesh *MeshStore, rootIdx int, ray *Ray, stats *RayStats) {
	root := &arena.Nodes[rootIdx]
	stats.IntersectionTests++
	if root.Bounds().IntersectAABB(ray, ray.Hit.T) == hitSentinel {
		return
	}

	var stack [octreeStackDepth]int
	sp := 0
	stack[sp] = rootIdx
	sp++

	for sp > 0 {
		sp--
		nodeIdx := stack[sp]
		node := &arena.Nodes[nodeIdx]

		if node.TriCount != 0 {
			// TriCount > 0 is a real leaf; TriCount == -1 is an empty
			// octant sentinel whose loop body below never runs.
			for i := 0; i < node.TriCount; i++ {
				tri := triIdx[node.FirstChild+i]
				stats.IntersectionTests++
				v0, v1, v2 := mesh.TriangleVertices(tri)
				intersectTriangle(ray, v0, v1, v2, tri, mesh.Tri[tri].ObjIdx)
			}
			continue
		}

		stats.TraversalSteps++
		var hitIdx [8]int
		var hitT [8]float64
		n := 0
		for c := 0; c < 8; c++ {
			childIdx := node.FirstChild + c
			t := arena.Nodes[childIdx].Bounds().IntersectAABB(ray, ray.Hit.T)
			stats.IntersectionTests++
			if t != hitSentinel {
				hitIdx[n] = childIdx
				hitT[n] = t
				n++
			}
		}

		// Insertion sort descending by t, so the nearest child is
		// pushed last and therefore popped first.
		for i := 1; i < n; i++ {
			idx, t := hitIdx[i], hitT[i]
			j := i - 1
			for j >= 0 && hitT[j] < t {
				hitIdx[j+1] = hitIdx[j]
				hitT[j+1] = hitT[j]
				j--
			}
			hitIdx[j+1] = idx
			hitT[j+1] = t
		}

		for i := 0; i < n && sp < len(stack); i++ {
			stack[sp] = hitIdx[i]
			sp++
		}
	}
}
