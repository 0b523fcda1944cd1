package pdf

import (
	"math"

	"resumetailor/internal/domain"
)

// matrix is a PDF affine transform [a b c d e f]. A point is transformed
// as (a*x + c*y + e, b*x + d*y + f).
type matrix [6]float64

func identity() matrix { return matrix{1, 0, 0, 1, 0, 0} }

func translate(tx, ty float64) matrix { return matrix{1, 0, 0, 1, tx, ty} }

// mul returns m×n: applying the result equals applying m, then n.
func (m matrix) mul(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m matrix) apply(x, y float64) domain.Point {
	return domain.Point{X: m[0]*x + m[2]*y + m[4], Y: m[1]*x + m[3]*y + m[5]}
}

// verticalScale is the length of the transformed unit y vector.
func (m matrix) verticalScale() float64 { return math.Hypot(m[2], m[3]) }

func pointsToRect(pts ...domain.Point) domain.Rect {
	r := domain.Rect{X0: math.Inf(1), Y0: math.Inf(1), X1: math.Inf(-1), Y1: math.Inf(-1)}
	for _, p := range pts {
		r.X0 = math.Min(r.X0, p.X)
		r.Y0 = math.Min(r.Y0, p.Y)
		r.X1 = math.Max(r.X1, p.X)
		r.Y1 = math.Max(r.Y1, p.Y)
	}
	return r
}
