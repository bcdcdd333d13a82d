package engine

// RayStats is the caller-owned per-ray instrumentation record. Traversal
// never touches process-global state: a renderer accumulates one of
// these per ray (or reuses one per worker goroutine) and reduces across
// threads at the end of a tick.
type RayStats struct {
	IntersectionTests int
	TraversalSteps    int
}

func (s *RayStats) Add(o RayStats) {
	s.IntersectionTests += o.IntersectionTests
	s.TraversalSteps += o.TraversalSteps
}

// traversalStackDepth bounds the explicit traversal stack. Builds keep
// trees shallow enough (~log2(nT) plus a small constant) that this bound
// is never approached in practice; it exists so the query path never
// recurses through the call stack.
const traversalStackDepth = 64

// traverseBinary walks a binary (BVH or k-D tree) arena front-to-back,
// testing leaf triangles against ray and culling children whose slab
// test misses or whose near distance already exceeds ray.Hit.T. Nodes
// are pushed far-to-near so the nearer child is processed next.
func traverseBinary(arena *NodeArena, triIdx []int, mesh *MeshStore, rootIdx int, ray *Ray, stats *RayStats) {
	root := &arena.Nodes[rootIdx]
	stats.IntersectionTests++
	if root.Bounds().IntersectAABB(ray, ray.Hit.T) == hitSentinel {
		return
	}

	var stack [traversalStackDepth]int
	sp := 0
	stack[sp] = rootIdx
	sp++

	for sp > 0 {
		sp--
		nodeIdx := stack[sp]
		node := &arena.Nodes[nodeIdx]

		if node.IsLeaf() {
			for i := 0; i < node.TriCount; i++ {
				tri := triIdx[node.FirstChild+i]
				stats.IntersectionTests++
				v0, v1, v2 := mesh.TriangleVertices(tri)
				intersectTriangle(ray, v0, v1, v2, tri, mesh.Tri[tri].ObjIdx)
			}
			continue
		}

		stats.TraversalSteps++
		leftIdx := node.FirstChild
		rightIdx := leftIdx + 1

		leftT := arena.Nodes[leftIdx].Bounds().IntersectAABB(ray, ray.Hit.T)
		rightT := arena.Nodes[rightIdx].Bounds().IntersectAABB(ray, ray.Hit.T)
		stats.IntersectionTests += 2

		// Push far child first, near child last, so the near child
		// pops next (far-to-near push order yields front-to-back
		// processing).
		if leftT <= rightT {
			if rightT != hitSentinel && sp < len(stack) {
				stack[sp] = rightIdx
				sp++
			}
			if leftT != hitSentinel && sp < len(stack) {
				stack[sp] = leftIdx
				sp++
			}
		} else {
			if leftT != hitSentinel && sp < len(stack) {
				stack[sp] = leftIdx
				sp++
			}
			if rightT != hitSentinel && sp < len(stack) {
				stack[sp] = rightIdx
				sp++
			}
		}
	}
}
