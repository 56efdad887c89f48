package geom

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Epsilon is the thickness given to degenerate axes and the default
// tolerance for approximate comparisons.
const Epsilon = 1e-9

// Vec is a 3D vector. It is the sdfx vector so sdfx boxes, triangles and
// matrices can be used directly.
type Vec = v3.Vec

// V returns the vector (x, y, z).
func V(x, y, z float64) Vec {
	return Vec{X: x, Y: y, Z: z}
}

// V2 returns the planar vector (x, y, 0).
func V2(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

// Component returns the i-th component of v (0=X, 1=Y, 2=Z).
func Component(v Vec, i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	}
	panic(fmt.Sprintf("geom: component index %d out of range", i))
}

// WithComponent returns v with its i-th component replaced by x.
func WithComponent(v Vec, i int, x float64) Vec {
	switch i {
	case 0:
		v.X = x
	case 1:
		v.Y = x
	case 2:
		v.Z = x
	default:
		panic(fmt.Sprintf("geom: component index %d out of range", i))
	}
	return v
}

// Less orders vectors lexicographically by X, then Y, then Z.
func Less(a, b Vec) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}

// Compare returns -1, 0 or +1 following Less.
func Compare(a, b Vec) int {
	switch {
	case Less(a, b):
		return -1
	case Less(b, a):
		return 1
	}
	return 0
}

// Exact reports bit-for-bit component equality.
func Exact(a, b Vec) bool {
	return a == b
}

// Approx reports whether every component of a and b differs by at most tol.
func Approx(a, b Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

// Cross2 is the z component of the cross product of a and b.
func Cross2(a, b Vec) float64 {
	return a.X*b.Y - a.Y*b.X
}

// IsLeft tests where p2 lies relative to the directed line p0->p1.
// Positive means left, negative right, zero collinear.
func IsLeft(p0, p1, p2 Vec) float64 {
	return (p1.X-p0.X)*(p2.Y-p0.Y) - (p2.X-p0.X)*(p1.Y-p0.Y)
}

// Angle3p is the counterclockwise angle at b swept from the direction
// b->c to the direction b->a, in (0, 2π]. Walking a->b->c around a
// counterclockwise polygon this is the interior angle at b; a reversal
// (c in the direction of a) is a full turn.
func Angle3p(a, b, c Vec) float64 {
	u := c.Sub(b)
	w := a.Sub(b)
	ang := math.Atan2(Cross2(u, w), u.X*w.X+u.Y*w.Y)
	if ang <= 0 {
		ang += 2 * math.Pi
	}
	return ang
}

// Vec4 is a homogeneous 4-tuple.
type Vec4 struct {
	X, Y, Z, W float64
}

// Point returns the homogeneous point (v, 1).
func Point(v Vec) Vec4 {
	return Vec4{v.X, v.Y, v.Z, 1}
}

// Direction returns the homogeneous direction (v, 0).
func Direction(v Vec) Vec4 {
	return Vec4{v.X, v.Y, v.Z, 0}
}

// Vec3 divides through by W when it is non-zero and drops it.
func (a Vec4) Vec3() Vec {
	if a.W == 0 || a.W == 1 {
		return Vec{X: a.X, Y: a.Y, Z: a.Z}
	}
	return Vec{X: a.X / a.W, Y: a.Y / a.W, Z: a.Z / a.W}
}

// Dot returns the 4D dot product.
func (a Vec4) Dot(b Vec4) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z + a.W*b.W
}
