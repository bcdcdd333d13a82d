package engine

import "math"

// ============================================================================
// VECTOR / POINT
// ============================================================================

// Point is both a 3D position and a 3D vector; the acceleration subsystem
// never distinguishes the two, following the rest of the package.
type Point struct {
	X, Y, Z float64
}

// NewPoint creates a new point
func NewPoint(x, y, z float64) *Point {
	return &Point{X: x, Y: y, Z: z}
}

func (p Point) Add(o Point) Point { return Point{p.X + o.X, p.Y + o.Y, p.Z + o.Z} }
func (p Point) Sub(o Point) Point { return Point{p.X - o.X, p.Y - o.Y, p.Z - o.Z} }
func (p Point) Scale(s float64) Point {
	return Point{p.X * s, p.Y * s, p.Z * s}
}
func (p Point) Negate() Point { return Point{-p.X, -p.Y, -p.Z} }

// Min and Max return the component-wise min/max of two points.
func (p Point) Min(o Point) Point {
	return Point{math.Min(p.X, o.X), math.Min(p.Y, o.Y), math.Min(p.Z, o.Z)}
}
func (p Point) Max(o Point) Point {
	return Point{math.Max(p.X, o.X), math.Max(p.Y, o.Y), math.Max(p.Z, o.Z)}
}

func (p Point) Dot(o Point) float64 {
	return dotProduct(p.X, p.Y, p.Z, o.X, o.Y, o.Z)
}

func (p Point) Cross(o Point) Point {
	x, y, z := crossProduct(p.X, p.Y, p.Z, o.X, o.Y, o.Z)
	return Point{x, y, z}
}

func (p Point) Length() float64 {
	return math.Sqrt(p.Dot(p))
}

func (p Point) Normalize() Point {
	x, y, z := normalizeVector(p.X, p.Y, p.Z)
	return Point{x, y, z}
}

// Component returns the axis-th coordinate (0=X, 1=Y, 2=Z).
func (p Point) Component(axis int) float64 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

func (p *Point) SetComponent(axis int, v float64) {
	switch axis {
	case 0:
		p.X = v
	case 1:
		p.Y = v
	default:
		p.Z = v
	}
}

// Rotate rotates a point around a world axis.
func (p *Point) Rotate(axis byte, angle float64) {
	c := math.Cos(angle)
	s := math.Sin(angle)

	switch axis {
	case 'x':
		y, z := p.Y, p.Z
		p.Y = y*c - z*s
		p.Z = y*s + z*c
	case 'y':
		x, z := p.X, p.Z
		p.X = x*c - z*s
		p.Z = x*s + z*c
	case 'z':
		x, y := p.X, p.Y
		p.X = x*c - y*s
		p.Y = x*s + y*c
	}
}

// ============================================================================
// RAY
// ============================================================================

// hitSentinel is the reserved "no hit yet" distance; downstream code must
// compare against it rather than using isfinite-style checks.
const hitSentinel = 1e30

// Intersection is the best-so-far hit record carried by a ray.
type Intersection struct {
	T        float64
	U, V     float64
	TriIndex int
	ObjIdx   int
}

// Ray carries its own reciprocal direction (for the slab test) and its
// best-so-far hit record. hit.T starts at the sentinel +inf.
type Ray struct {
	Origin    Point
	Direction Point
	RD        Point // reciprocal direction, 1/D per component
	Hit       Intersection
}

// NewRay builds a ray with a normalized direction and resets its hit record.
func NewRay(origin, direction Point) Ray {
	dir := direction.Normalize()
	return Ray{
		Origin:    origin,
		Direction: dir,
		RD:        Point{X: 1.0 / dir.X, Y: 1.0 / dir.Y, Z: 1.0 / dir.Z},
		Hit:       Intersection{T: hitSentinel, TriIndex: -1, ObjIdx: -1},
	}
}

// GetPoint returns the point at distance t along the ray.
func (r *Ray) GetPoint(t float64) Point {
	return r.Origin.Add(r.Direction.Scale(t))
}

// ============================================================================
// AABB
// ============================================================================

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max Point
}

// emptyAABB returns a box whose Min/Max are inverted, so the first Grow
// call establishes real bounds.
func emptyAABB() AABB {
	return AABB{
		Min: Point{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: Point{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
}

// Grow expands the box to include p.
func (b *AABB) Grow(p Point) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// GrowBox expands the box to include another box.
func (b *AABB) GrowBox(o AABB) {
	b.Min = b.Min.Min(o.Min)
	b.Max = b.Max.Max(o.Max)
}

// Area returns the half surface area, used only for relative SAH costs.
func (b AABB) Area() float64 {
	e := b.Max.Sub(b.Min)
	if e.X < 0 || e.Y < 0 || e.Z < 0 {
		return 0
	}
	return e.X*e.Y + e.Y*e.Z + e.Z*e.X
}

func (b AABB) Extent() Point {
	return b.Max.Sub(b.Min)
}

func (b AABB) Center() Point {
	return b.Min.Add(b.Max).Scale(0.5)
}

// LongestAxis returns the axis (0,1,2) with the greatest extent.
func (b AABB) LongestAxis() int {
	e := b.Extent()
	axis := 0
	best := e.X
	if e.Y > best {
		axis, best = 1, e.Y
	}
	if e.Z > best {
		axis = 2
	}
	return axis
}

// IntersectAABB performs the slab test against this box. It returns the
// near intersection distance, or the +inf sentinel on a miss. hitT bounds
// the currently best-known hit distance on ray (children beyond it are
// culled); it is passed explicitly so callers can test child boxes without
// mutating the ray.
func (b AABB) IntersectAABB(r *Ray, hitT float64) float64 {
	tx1 := (b.Min.X - r.Origin.X) * r.RD.X
	tx2 := (b.Max.X - r.Origin.X) * r.RD.X
	tmin := math.Min(tx1, tx2)
	tmax := math.Max(tx1, tx2)

	ty1 := (b.Min.Y - r.Origin.Y) * r.RD.Y
	ty2 := (b.Max.Y - r.Origin.Y) * r.RD.Y
	tmin = math.Max(tmin, math.Min(ty1, ty2))
	tmax = math.Min(tmax, math.Max(ty1, ty2))

	tz1 := (b.Min.Z - r.Origin.Z) * r.RD.Z
	tz2 := (b.Max.Z - r.Origin.Z) * r.RD.Z
	tmin = math.Max(tmin, math.Min(tz1, tz2))
	tmax = math.Min(tmax, math.Max(tz1, tz2))

	if tmax >= tmin && tmin < hitT && tmax > 0 {
		return tmin
	}
	return hitSentinel
}

// ============================================================================
// TRIANGLE INTERSECTION (MÖLLER–TRUMBORE)
// ============================================================================

const triEpsilon = 1e-4

// intersectTriangle tests the ray against a triangle given by its three
// vertex positions and updates ray.Hit in place (all four fields at once)
// if this is a closer hit. triIndex/objIdx are stamped onto the hit record
// verbatim; the caller is responsible for supplying them.
func intersectTriangle(r *Ray, v0, v1, v2 Point, triIndex, objIdx int) bool {
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)

	h := r.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if math.Abs(a) < triEpsilon {
		return false // ray parallel to the triangle's plane
	}

	f := 1.0 / a
	s := r.Origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return false
	}

	q := s.Cross(edge1)
	v := f * r.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return false
	}

	t := f * edge2.Dot(q)
	if t > triEpsilon && t < r.Hit.T {
		r.Hit = Intersection{T: t, U: u, V: v, TriIndex: triIndex, ObjIdx: objIdx}
		return true
	}
	return false
}
