package geom

import "github.com/deadsy/sdfx/sdf"

// SignedArea is the shoelace area of the closed polygon in the XY plane,
// positive for counterclockwise order.
func SignedArea(pts []Vec) float64 {
	var sum float64
	for i := range pts {
		sum += Cross2(pts[i], pts[(i+1)%len(pts)])
	}
	return sum / 2
}

// Winding is the winding number of the closed polygon poly around p in the
// XY plane, positive for counterclockwise. Zero means p is outside.
func Winding(p Vec, poly []Vec) int {
	wn := 0
	for i, a := range poly {
		b := poly[(i+1)%len(poly)]
		if a.Y <= p.Y {
			if b.Y > p.Y && IsLeft(a, b, p) > 0 {
				wn++
			}
		} else if b.Y <= p.Y && IsLeft(a, b, p) < 0 {
			wn--
		}
	}
	return wn
}

// Bounds returns the bounding box of pts. pts must not be empty.
func Bounds(pts []Vec) AlignedCube {
	c := AlignedCube{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		c.Min = c.Min.Min(p)
		c.Max = c.Max.Max(p)
	}
	return c
}

// Triangulate splits a simple polygon in the XY plane into triangles by ear
// clipping. Either winding is accepted; triangles come out counterclockwise.
// Weakly simple polygons (a boundary bridged to a hole, visiting some
// vertices twice) are handled as long as the bridges do not cross.
func Triangulate(pts []Vec) []sdf.Triangle3 {
	n := len(pts)
	if n < 3 {
		return nil
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if SignedArea(pts) < 0 {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			idx[i], idx[j] = idx[j], idx[i]
		}
	}

	tris := make([]sdf.Triangle3, 0, n-2)
	for len(idx) > 3 {
		ear := -1
		for i := range idx {
			if isEar(pts, idx, i) {
				ear = i
				break
			}
		}
		if ear < 0 {
			// Degenerate remainder (collinear runs); clip the first convex
			// or flat corner so the loop terminates.
			ear = 0
			for i := range idx {
				a, b, c := corner(pts, idx, i)
				if IsLeft(a, b, c) >= 0 {
					ear = i
					break
				}
			}
		}
		a, b, c := corner(pts, idx, ear)
		if IsLeft(a, b, c) > 0 {
			tris = append(tris, sdf.Triangle3{a, b, c})
		}
		idx = append(idx[:ear], idx[ear+1:]...)
	}
	a, b, c := pts[idx[0]], pts[idx[1]], pts[idx[2]]
	if IsLeft(a, b, c) > 0 {
		tris = append(tris, sdf.Triangle3{a, b, c})
	}
	return tris
}

func corner(pts []Vec, idx []int, i int) (Vec, Vec, Vec) {
	n := len(idx)
	return pts[idx[(i+n-1)%n]], pts[idx[i]], pts[idx[(i+1)%n]]
}

func isEar(pts []Vec, idx []int, i int) bool {
	a, b, c := corner(pts, idx, i)
	if IsLeft(a, b, c) <= 0 {
		return false
	}
	for _, j := range idx {
		p := pts[j]
		if p == a || p == b || p == c {
			continue
		}
		if IsLeft(a, b, p) >= 0 && IsLeft(b, c, p) >= 0 && IsLeft(c, a, p) >= 0 {
			return false
		}
	}
	return true
}
