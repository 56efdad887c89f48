package geom

import (
	"fmt"
	"math"
)

// Matrix is a dense column-major matrix of Cols columns and Rows rows.
// Operations never modify their receiver.
type Matrix struct {
	Cols, Rows int
	data       []float64
}

// NewMatrix returns a cols x rows zero matrix.
func NewMatrix(cols, rows int) Matrix {
	if cols <= 0 || rows <= 0 {
		panic(fmt.Sprintf("geom: invalid matrix size %dx%d", cols, rows))
	}
	return Matrix{Cols: cols, Rows: rows, data: make([]float64, cols*rows)}
}

// MatrixFromColumns builds a matrix from column vectors of equal length.
func MatrixFromColumns(cols ...[]float64) Matrix {
	m := NewMatrix(len(cols), len(cols[0]))
	for c, col := range cols {
		if len(col) != m.Rows {
			panic("geom: ragged matrix columns")
		}
		copy(m.data[c*m.Rows:], col)
	}
	return m
}

// Identity returns the n x n identity matrix.
func Identity(n int) Matrix {
	m := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

// At returns the element in column c, row r.
func (m Matrix) At(c, r int) float64 {
	return m.data[c*m.Rows+r]
}

// With returns a copy of m with the element at column c, row r set to x.
func (m Matrix) With(c, r int, x float64) Matrix {
	out := m.clone()
	out.data[c*m.Rows+r] = x
	return out
}

func (m Matrix) clone() Matrix {
	out := Matrix{Cols: m.Cols, Rows: m.Rows, data: make([]float64, len(m.data))}
	copy(out.data, m.data)
	return out
}

// Mul returns the product m*b. m.Cols must equal b.Rows.
func (m Matrix) Mul(b Matrix) Matrix {
	if m.Cols != b.Rows {
		panic(fmt.Sprintf("geom: cannot multiply %dx%d by %dx%d", m.Cols, m.Rows, b.Cols, b.Rows))
	}
	out := NewMatrix(b.Cols, m.Rows)
	for c := 0; c < b.Cols; c++ {
		for r := 0; r < m.Rows; r++ {
			var sum float64
			for k := 0; k < m.Cols; k++ {
				sum += m.At(k, r) * b.At(c, k)
			}
			out.data[c*out.Rows+r] = sum
		}
	}
	return out
}

// MulVec multiplies m by the column vector v. len(v) must equal m.Cols.
func (m Matrix) MulVec(v []float64) []float64 {
	if len(v) != m.Cols {
		panic(fmt.Sprintf("geom: cannot multiply %dx%d by vector of %d", m.Cols, m.Rows, len(v)))
	}
	out := make([]float64, m.Rows)
	for r := 0; r < m.Rows; r++ {
		for k := 0; k < m.Cols; k++ {
			out[r] += m.At(k, r) * v[k]
		}
	}
	return out
}

// MulVec4 multiplies a 4x4 matrix by a homogeneous vector.
func (m Matrix) MulVec4(v Vec4) Vec4 {
	o := m.MulVec([]float64{v.X, v.Y, v.Z, v.W})
	return Vec4{o[0], o[1], o[2], o[3]}
}

// MulPoint transforms the point p by a 4x4 matrix, dividing through by w.
func (m Matrix) MulPoint(p Vec) Vec {
	return m.MulVec4(Point(p)).Vec3()
}

// MulDirection transforms the direction d by a 4x4 matrix, ignoring translation.
func (m Matrix) MulDirection(d Vec) Vec {
	o := m.MulVec4(Direction(d))
	return Vec{X: o.X, Y: o.Y, Z: o.Z}
}

// Transpose returns the rows x cols transpose of m.
func (m Matrix) Transpose() Matrix {
	out := NewMatrix(m.Rows, m.Cols)
	for c := 0; c < m.Cols; c++ {
		for r := 0; r < m.Rows; r++ {
			out.data[r*out.Rows+c] = m.At(c, r)
		}
	}
	return out
}

// Det2 is the determinant of a 2x2 matrix.
func (m Matrix) Det2() float64 {
	m.mustSquare(2)
	return m.At(0, 0)*m.At(1, 1) - m.At(1, 0)*m.At(0, 1)
}

// Det3 is the determinant of a 3x3 matrix.
func (m Matrix) Det3() float64 {
	m.mustSquare(3)
	return det3(m, [3]int{0, 1, 2}, [3]int{0, 1, 2})
}

// det3 expands the 3x3 minor of m selected by cols and rows.
func det3(m Matrix, cols, rows [3]int) float64 {
	a := func(c, r int) float64 { return m.At(cols[c], rows[r]) }
	return a(0, 0)*(a(1, 1)*a(2, 2)-a(2, 1)*a(1, 2)) -
		a(1, 0)*(a(0, 1)*a(2, 2)-a(2, 1)*a(0, 2)) +
		a(2, 0)*(a(0, 1)*a(1, 2)-a(1, 1)*a(0, 2))
}

// others returns the three indices of 0..3 other than i.
func others(i int) [3]int {
	var out [3]int
	n := 0
	for k := 0; k < 4; k++ {
		if k != i {
			out[n] = k
			n++
		}
	}
	return out
}

// Det4 is the determinant of a 4x4 matrix by cofactor expansion along column 0.
func (m Matrix) Det4() float64 {
	m.mustSquare(4)
	var det float64
	for r := 0; r < 4; r++ {
		det += m.At(0, r) * cofactor(m, 0, r)
	}
	return det
}

func cofactor(m Matrix, c, r int) float64 {
	minor := det3(m, others(c), others(r))
	if (c+r)%2 == 1 {
		return -minor
	}
	return minor
}

// Inverse4 inverts a 4x4 matrix using the adjugate. ok is false when m is
// singular.
func (m Matrix) Inverse4() (inv Matrix, ok bool) {
	det := m.Det4()
	if det == 0 {
		return Matrix{}, false
	}
	inv = NewMatrix(4, 4)
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			// adj(m)[c][r] = cofactor(m)[r][c]
			inv.data[c*4+r] = cofactor(m, r, c) / det
		}
	}
	return inv, true
}

// ApproxEqual reports whether m and b have the same shape and every element
// differs by at most tol.
func (m Matrix) ApproxEqual(b Matrix, tol float64) bool {
	if m.Cols != b.Cols || m.Rows != b.Rows {
		return false
	}
	for i := range m.data {
		if math.Abs(m.data[i]-b.data[i]) > tol {
			return false
		}
	}
	return true
}

func (m Matrix) mustSquare(n int) {
	if m.Cols != n || m.Rows != n {
		panic(fmt.Sprintf("geom: expected %dx%d matrix, got %dx%d", n, n, m.Cols, m.Rows))
	}
}

func (m Matrix) String() string {
	return fmt.Sprintf("Matrix(%dx%d)%v", m.Cols, m.Rows, m.data)
}

// ---------------------------------------------------------------------------
// Named constructors (4x4, column vectors, right-handed)
// ---------------------------------------------------------------------------

// Translate returns the translation by v.
func Translate(v Vec) Matrix {
	m := Identity(4)
	m.data[12], m.data[13], m.data[14] = v.X, v.Y, v.Z
	return m
}

// Scale returns the axis scale by v.
func Scale(v Vec) Matrix {
	m := Identity(4)
	m.data[0], m.data[5], m.data[10] = v.X, v.Y, v.Z
	return m
}

// Rotate returns the rotation by angle radians about axis (right hand rule).
func Rotate(axis Vec, angle float64) Matrix {
	a := axis.Normalize()
	s, c := math.Sincos(angle)
	t := 1 - c
	return MatrixFromColumns(
		[]float64{t*a.X*a.X + c, t*a.X*a.Y + s*a.Z, t*a.X*a.Z - s*a.Y, 0},
		[]float64{t*a.X*a.Y - s*a.Z, t*a.Y*a.Y + c, t*a.Y*a.Z + s*a.X, 0},
		[]float64{t*a.X*a.Z + s*a.Y, t*a.Y*a.Z - s*a.X, t*a.Z*a.Z + c, 0},
		[]float64{0, 0, 0, 1},
	)
}

// Perspective returns an OpenGL style projection with vertical field of
// view fovy (radians), aspect ratio and near/far clip distances.
func Perspective(fovy, aspect, near, far float64) Matrix {
	f := 1 / math.Tan(fovy/2)
	m := NewMatrix(4, 4)
	m.data[0] = f / aspect
	m.data[5] = f
	m.data[10] = (far + near) / (near - far)
	m.data[11] = -1
	m.data[14] = 2 * far * near / (near - far)
	return m
}

// LookAt returns the view transform of a camera at eye looking at center.
func LookAt(eye, center, up Vec) Matrix {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)
	return MatrixFromColumns(
		[]float64{s.X, u.X, -f.X, 0},
		[]float64{s.Y, u.Y, -f.Y, 0},
		[]float64{s.Z, u.Z, -f.Z, 0},
		[]float64{-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1},
	)
}
