package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
)

// AlignedCube is an axis-aligned bounding box. Min is component-wise less
// than or equal to Max. All containment tests treat the faces as inside.
type AlignedCube struct {
	Min, Max Vec
}

// Cube returns the box spanned by two opposite corners in any order.
func Cube(a, b Vec) AlignedCube {
	return AlignedCube{Min: a.Min(b), Max: a.Max(b)}
}

// CubeAround returns the hotzone of half-size r centred on p.
func CubeAround(p Vec, r float64) AlignedCube {
	d := V(r, r, r)
	return AlignedCube{Min: p.Sub(d), Max: p.Add(d)}
}

// FromBox3 converts an sdfx box.
func FromBox3(b sdf.Box3) AlignedCube {
	return Cube(b.Min, b.Max)
}

// Box3 converts c to an sdfx box.
func (c AlignedCube) Box3() sdf.Box3 {
	return sdf.Box3{Min: c.Min, Max: c.Max}
}

// Center is the midpoint of the box.
func (c AlignedCube) Center() Vec {
	return c.Box3().Center()
}

// Size is the extent of the box along each axis.
func (c AlignedCube) Size() Vec {
	return c.Box3().Size()
}

// Contains reports whether p lies in the box.
func (c AlignedCube) Contains(p Vec) bool {
	return p.X >= c.Min.X && p.X <= c.Max.X &&
		p.Y >= c.Min.Y && p.Y <= c.Max.Y &&
		p.Z >= c.Min.Z && p.Z <= c.Max.Z
}

// ContainsCube reports whether o lies entirely in the box.
func (c AlignedCube) ContainsCube(o AlignedCube) bool {
	return c.Contains(o.Min) && c.Contains(o.Max)
}

// Overlaps reports whether the two boxes share at least one point.
func (c AlignedCube) Overlaps(o AlignedCube) bool {
	return c.Min.X <= o.Max.X && o.Min.X <= c.Max.X &&
		c.Min.Y <= o.Max.Y && o.Min.Y <= c.Max.Y &&
		c.Min.Z <= o.Max.Z && o.Min.Z <= c.Max.Z
}

// Plus returns the smallest box containing both boxes.
func (c AlignedCube) Plus(o AlignedCube) AlignedCube {
	return FromBox3(c.Box3().Extend(o.Box3()))
}

// Minus returns the intersection of the two boxes. ok is false when they
// do not overlap.
func (c AlignedCube) Minus(o AlignedCube) (AlignedCube, bool) {
	if !c.Overlaps(o) {
		return AlignedCube{}, false
	}
	return AlignedCube{Min: c.Min.Max(o.Min), Max: c.Max.Min(o.Max)}, true
}

// Scale scales the box by k about its centre.
func (c AlignedCube) Scale(k float64) AlignedCube {
	return FromBox3(c.Box3().ScaleAboutCenter(k))
}

// EnsureVolume inflates every zero-thickness axis by Epsilon on both sides.
func (c AlignedCube) EnsureVolume() AlignedCube {
	for i := 0; i < 3; i++ {
		if Component(c.Max, i)-Component(c.Min, i) <= 0 {
			c.Min = WithComponent(c.Min, i, Component(c.Min, i)-Epsilon)
			c.Max = WithComponent(c.Max, i, Component(c.Max, i)+Epsilon)
		}
	}
	return c
}

// Split divides the box into its eight octants. Child i takes the upper
// half of axis k when bit k of i is set.
func (c AlignedCube) Split() [8]AlignedCube {
	mid := c.Center()
	var out [8]AlignedCube
	for i := 0; i < 8; i++ {
		lo, hi := c.Min, mid
		if i&1 != 0 {
			lo.X, hi.X = mid.X, c.Max.X
		}
		if i&2 != 0 {
			lo.Y, hi.Y = mid.Y, c.Max.Y
		}
		if i&4 != 0 {
			lo.Z, hi.Z = mid.Z, c.Max.Z
		}
		out[i] = AlignedCube{Min: lo, Max: hi}
	}
	return out
}

// Intersect clips the ray against the box using the slab method. It returns
// the entry and exit parameters; ok is false when the ray misses.
func (c AlignedCube) Intersect(r Ray) (t0, t1 float64, ok bool) {
	return c.clip(r.Origin, r.Dir, math.Inf(-1), math.Inf(1))
}

func (c AlignedCube) clip(o, d Vec, t0, t1 float64) (float64, float64, bool) {
	for i := 0; i < 3; i++ {
		oi, di := Component(o, i), Component(d, i)
		lo, hi := Component(c.Min, i), Component(c.Max, i)
		if di == 0 {
			if oi < lo || oi > hi {
				return 0, 0, false
			}
			continue
		}
		n, f := (lo-oi)/di, (hi-oi)/di
		if n > f {
			n, f = f, n
		}
		t0 = math.Max(t0, n)
		t1 = math.Min(t1, f)
		if t0 > t1 {
			return 0, 0, false
		}
	}
	return t0, t1, true
}

// ContainsSegment reports whether any point of the segment a-b lies in the box.
func (c AlignedCube) ContainsSegment(a, b Vec) bool {
	if c.Contains(a) || c.Contains(b) {
		return true
	}
	_, _, ok := c.clip(a, b.Sub(a), 0, 1)
	return ok
}

// OverlapsTriangle is the separating axis test between the box and a
// triangle: the nine box-axis x triangle-edge crosses, the three box axes
// and the triangle normal.
func (c AlignedCube) OverlapsTriangle(tri sdf.Triangle3) bool {
	ctr := c.Center()
	h := c.Size().MulScalar(0.5)
	v0, v1, v2 := tri[0].Sub(ctr), tri[1].Sub(ctr), tri[2].Sub(ctr)
	edges := [3]Vec{v1.Sub(v0), v2.Sub(v1), v0.Sub(v2)}
	units := [3]Vec{V(1, 0, 0), V(0, 1, 0), V(0, 0, 1)}

	separated := func(axis Vec) bool {
		p0, p1, p2 := axis.Dot(v0), axis.Dot(v1), axis.Dot(v2)
		r := h.X*math.Abs(axis.X) + h.Y*math.Abs(axis.Y) + h.Z*math.Abs(axis.Z)
		return math.Min(p0, math.Min(p1, p2)) > r || math.Max(p0, math.Max(p1, p2)) < -r
	}
	for _, u := range units {
		for _, e := range edges {
			if separated(u.Cross(e)) {
				return false
			}
		}
	}
	for _, u := range units {
		if separated(u) {
			return false
		}
	}
	return !separated(edges[0].Cross(edges[1]))
}
