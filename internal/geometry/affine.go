package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Affine is a 2x3 affine transform stored as a 3x3 homogeneous matrix
//
//	[a b tx]
//	[c d ty]
//	[0 0  1]
type Affine struct {
	m *mat.Dense
}

// NewAffine builds a transform from its six coefficients.
func NewAffine(a, b, tx, c, d, ty float64) Affine {
	return Affine{m: mat.NewDense(3, 3, []float64{
		a, b, tx,
		c, d, ty,
		0, 0, 1,
	})}
}

// IdentityAffine returns the identity transform.
func IdentityAffine() Affine {
	return NewAffine(1, 0, 0, 0, 1, 0)
}

// ScaleAffine returns a uniform scale about the origin.
func ScaleAffine(s float64) Affine {
	return NewAffine(s, 0, 0, 0, s, 0)
}

// RotationAbout returns the rotation used by OpenCV's getRotationMatrix2D with
// unit scale: a positive angle rotates the image content counter-clockwise
// (y axis pointing down) about center.
func RotationAbout(center Point, degrees float64) Affine {
	rad := degrees * math.Pi / 180
	alpha := math.Cos(rad)
	beta := math.Sin(rad)
	return NewAffine(
		alpha, beta, (1-alpha)*center.X-beta*center.Y,
		-beta, alpha, beta*center.X+(1-alpha)*center.Y,
	)
}

// RasterCenter returns ((cols-1)/2, (rows-1)/2), the pixel-center pivot of a
// cols x rows raster.
func RasterCenter(cols, rows int) Point {
	return Point{X: float64(cols-1) / 2, Y: float64(rows-1) / 2}
}

func (a Affine) dense() *mat.Dense {
	if a.m == nil {
		return IdentityAffine().m
	}
	return a.m
}

// Matrix returns the 2x3 coefficients row by row.
func (a Affine) Matrix() [2][3]float64 {
	d := a.dense()
	return [2][3]float64{
		{d.At(0, 0), d.At(0, 1), d.At(0, 2)},
		{d.At(1, 0), d.At(1, 1), d.At(1, 2)},
	}
}

// Apply maps a point through the transform.
func (a Affine) Apply(p Point) Point {
	d := a.dense()
	return Point{
		X: d.At(0, 0)*p.X + d.At(0, 1)*p.Y + d.At(0, 2),
		Y: d.At(1, 0)*p.X + d.At(1, 1)*p.Y + d.At(1, 2),
	}
}

// Then returns the transform that applies a first and next second.
func (a Affine) Then(next Affine) Affine {
	var out mat.Dense
	out.Mul(next.dense(), a.dense())
	return Affine{m: &out}
}

// IsIdentity reports whether every coefficient is within eps of the identity.
func (a Affine) IsIdentity(eps float64) bool {
	return mat.EqualApprox(a.dense(), IdentityAffine().m, eps)
}
