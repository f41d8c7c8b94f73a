/*
Package geom implements the 2D affine geometry the join engine is built on:
points, axis-aligned rectangles, and the 2x3 transformation matrices used for
a glyph's ctm (current transformation matrix) and trm (text-rendering
matrix).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package geom

import "math"

// Point is a position on a page, in the upstream PDF interpreter's
// coordinate system (y increasing upward).
type Point struct {
	X, Y float64
}

// Origin is the zero point.
var Origin = Point{0, 0}

// Rect is an axis-aligned rectangle, given by its lower-left (Min) and
// upper-right (Max) corners. The zero Rect is the valid, zero-extent rect
// at the origin; use Empty() to construct a rect that contains no points,
// and IsValid to test for one.
type Rect struct {
	Min, Max Point
}

// Empty returns a Rect that contains no points; Union with it is the
// identity operation.
func Empty() Rect {
	return Rect{
		Min: Point{math.Inf(1), math.Inf(1)},
		Max: Point{math.Inf(-1), math.Inf(-1)},
	}
}

// IsValid reports whether r has non-negative extent in both dimensions.
func (r Rect) IsValid() bool {
	return r.Min.X <= r.Max.X && r.Min.Y <= r.Max.Y
}

// Width returns the width of r.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the height of r.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Contains reports whether p lies within r, treating r as closed (both
// edges included).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// ContainsHalfOpen reports whether p lies within r, treating r's upper
// bound as exclusive. This is the variant the table reconstructor uses when
// partitioning glyphs between adjoining cells, so that a glyph sitting
// exactly on a shared edge belongs to only one of the two cells.
func (r Rect) ContainsHalfOpen(p Point) bool {
	return p.X >= r.Min.X && p.X < r.Max.X && p.Y >= r.Min.Y && p.Y < r.Max.Y
}

// Intersect returns the intersection of r and s. The result may be an
// invalid (empty) rect if they don't overlap.
func (r Rect) Intersect(s Rect) Rect {
	out := Rect{
		Min: Point{math.Max(r.Min.X, s.Min.X), math.Max(r.Min.Y, s.Min.Y)},
		Max: Point{math.Min(r.Max.X, s.Max.X), math.Min(r.Max.Y, s.Max.Y)},
	}
	return out
}

// Union returns the smallest rect containing both r and s.
func (r Rect) Union(s Rect) Rect {
	if !r.IsValid() {
		return s
	}
	if !s.IsValid() {
		return r
	}
	return Rect{
		Min: Point{math.Min(r.Min.X, s.Min.X), math.Min(r.Min.Y, s.Min.Y)},
		Max: Point{math.Max(r.Max.X, s.Max.X), math.Max(r.Max.Y, s.Max.Y)},
	}
}

// Matrix is a 2D affine transformation, (a b c d e f), mapping
// (x, y) -> (a*x + c*y + e, b*x + d*y + f).
//
// This is the PDF/PostScript matrix layout, not the mathematician's row-major
// 2x2-plus-translation layout; it matches the ctm/trm attributes the
// upstream interpreter emits.
type Matrix struct {
	A, B, C, D, E, F float64
}

// Identity is the identity matrix.
var Identity = Matrix{A: 1, D: 1}

// MultiplyPoint returns m applied to p.
func MultiplyPoint(m Matrix, p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// MultiplyVector returns m applied to the vector v, i.e. m's linear part
// only (translation e,f is not added). Used for direction vectors such as
// the per-glyph advance direction, which must not be shifted by the span's
// origin.
func MultiplyVector(m Matrix, v Point) Point {
	return Point{
		X: m.A*v.X + m.C*v.Y,
		Y: m.B*v.X + m.D*v.Y,
	}
}

// MultiplyMatrix returns the matrix product m1*m2, i.e. the transform that
// first applies m1, then m2.
func MultiplyMatrix(m1, m2 Matrix) Matrix {
	return Matrix{
		A: m1.A*m2.A + m1.B*m2.C,
		B: m1.A*m2.B + m1.B*m2.D,
		C: m1.C*m2.A + m1.D*m2.C,
		D: m1.C*m2.B + m1.D*m2.D,
		E: m1.E*m2.A + m1.F*m2.C + m2.E,
		F: m1.E*m2.B + m1.F*m2.D + m2.F,
	}
}

// Expansion returns sqrt(|a*d - b*c|), the scalar by which m expands areas;
// used to turn a font-unit advance into a device-space distance.
func Expansion(m Matrix) float64 {
	det := m.A*m.D - m.B*m.C
	return math.Sqrt(math.Abs(det))
}

// Invert returns the inverse of m. If m is not invertible (determinant is
// zero, or too close to it to invert reliably), ok is false and the
// identity matrix is returned; callers implement spec §7's "geometric
// degeneracy" recovery by substituting Identity in that case.
func Invert(m Matrix) (inv Matrix, ok bool) {
	det := m.A*m.D - m.B*m.C
	if math.Abs(det) < 1e-12 {
		return Identity, false
	}
	ia, ib, ic, id := m.D/det, -m.B/det, -m.C/det, m.A/det
	return Matrix{
		A: ia, B: ib, C: ic, D: id,
		E: -(m.E*ia + m.F*ic),
		F: -(m.E*ib + m.F*id),
	}, true
}

// Equal4 reports whether m and n share the same linear part (a, b, c, d),
// ignoring translation. This is the "ctm4" comparison used throughout the
// join engine: the upstream interpreter may emit per-glyph translations
// that differ only by accumulated advances within a single logical run, so
// translation is deliberately excluded from the compatibility test.
func Equal4(m, n Matrix) bool {
	return m.A == n.A && m.B == n.B && m.C == n.C && m.D == n.D
}

// Angle returns the rotation of a span transformed by ctm, i.e.
// atan2(-ctm.C, ctm.A). All spans belonging to one line must yield the same
// angle (spec §4.1).
func Angle(ctm Matrix) float64 {
	return math.Atan2(-ctm.C, ctm.A)
}
