package geom

import "math"

// Segment is the straight line between A and B.
type Segment struct {
	A, B Vec
}

// Box returns the bounding box of the segment.
func (s Segment) Box() AlignedCube {
	return Cube(s.A, s.B)
}

// Direction is B-A.
func (s Segment) Direction() Vec {
	return s.B.Sub(s.A)
}

// Length is the euclidean length of the segment.
func (s Segment) Length() float64 {
	return s.Direction().Length()
}

// Midpoint is the point halfway between A and B.
func (s Segment) Midpoint() Vec {
	return s.A.Add(s.B).MulScalar(0.5)
}

// Crosses reports whether s and o intersect in the XY plane. Segments that
// only touch at a shared endpoint do not cross; segments sharing an
// endpoint and running over each other do.
func (s Segment) Crosses(o Segment) bool {
	if shared, ok := s.sharedEndpoint(o); ok {
		a := s.other(shared).Sub(shared)
		b := o.other(shared).Sub(shared)
		return Cross2(a, b) == 0 && a.X*b.X+a.Y*b.Y > 0
	}
	d1 := IsLeft(s.A, s.B, o.A)
	d2 := IsLeft(s.A, s.B, o.B)
	d3 := IsLeft(o.A, o.B, s.A)
	d4 := IsLeft(o.A, o.B, s.B)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(s, o.A)) ||
		(d2 == 0 && onSegment(s, o.B)) ||
		(d3 == 0 && onSegment(o, s.A)) ||
		(d4 == 0 && onSegment(o, s.B))
}

func (s Segment) sharedEndpoint(o Segment) (Vec, bool) {
	switch {
	case s.A == o.A || s.A == o.B:
		return s.A, true
	case s.B == o.A || s.B == o.B:
		return s.B, true
	}
	return Vec{}, false
}

func (s Segment) other(end Vec) Vec {
	if s.A == end {
		return s.B
	}
	return s.A
}

// onSegment reports whether p, known to be collinear with s, lies within it.
func onSegment(s Segment, p Vec) bool {
	return p.X >= math.Min(s.A.X, s.B.X) && p.X <= math.Max(s.A.X, s.B.X) &&
		p.Y >= math.Min(s.A.Y, s.B.Y) && p.Y <= math.Max(s.A.Y, s.B.Y)
}

// Ray is a half line from Origin along Dir.
type Ray struct {
	Origin, Dir Vec
}

// At returns the point Origin + t*Dir.
func (r Ray) At(t float64) Vec {
	return r.Origin.Add(r.Dir.MulScalar(t))
}

// Curve is a cubic Bézier curve from P0 to P3 with control points P1, P2.
type Curve struct {
	P0, P1, P2, P3 Vec
}

// Line returns a curve that traces the straight segment a-b.
func Line(a, b Vec) Curve {
	d := b.Sub(a).MulScalar(1.0 / 3)
	return Curve{P0: a, P1: a.Add(d), P2: b.Sub(d), P3: b}
}

// At evaluates the curve at t in [0, 1].
func (c Curve) At(t float64) Vec {
	u := 1 - t
	return c.P0.MulScalar(u * u * u).
		Add(c.P1.MulScalar(3 * u * u * t)).
		Add(c.P2.MulScalar(3 * u * t * t)).
		Add(c.P3.MulScalar(t * t * t))
}

// Flatten samples the curve into a polyline of n segments (n+1 points,
// endpoints exact).
func (c Curve) Flatten(n int) []Vec {
	if n < 1 {
		n = 1
	}
	pts := make([]Vec, 0, n+1)
	pts = append(pts, c.P0)
	for i := 1; i < n; i++ {
		pts = append(pts, c.At(float64(i)/float64(n)))
	}
	return append(pts, c.P3)
}
