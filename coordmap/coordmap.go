// Package coordmap maps detection coordinates between model space, the
// source frame and display space.  Transforms are affine (scale plus
// offset) held as 3x3 homogeneous matrices so they compose by matrix
// multiplication rather than being chained through inline math at call
// sites.
package coordmap

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ModelSize is the fixed reference square the detection models output
// their coordinates in, regardless of the source frames aspect ratio
const ModelSize = 640

// Point is a position within a coordinate space
type Point struct {
	X float32
	Y float32
}

// Rect is an axis aligned rectangle with X, Y at the top left corner
type Rect struct {
	X      float32
	Y      float32
	Width  float32
	Height float32
}

// Space is a named frame of reference with rectangular bounds
type Space struct {
	Name   string
	Bounds Rect
}

// ModelSpace returns the fixed 640x640 space model outputs live in
func ModelSpace() Space {
	return Space{
		Name:   "model",
		Bounds: Rect{Width: ModelSize, Height: ModelSize},
	}
}

// To returns the transform mapping this space onto the destination
// space by scaling bounds onto bounds
func (s Space) To(dst Space) Transform {
	return NewTransform(
		dst.Bounds.Width/s.Bounds.Width,
		dst.Bounds.Height/s.Bounds.Height,
		dst.Bounds.X-s.Bounds.X*dst.Bounds.Width/s.Bounds.Width,
		dst.Bounds.Y-s.Bounds.Y*dst.Bounds.Height/s.Bounds.Height,
	)
}

// Transform is an affine mapping between two coordinate spaces
type Transform struct {
	m *mat.Dense
}

// NewTransform returns a transform applying the given scale then offset
func NewTransform(scaleX, scaleY, offsetX, offsetY float32) Transform {
	return Transform{
		m: mat.NewDense(3, 3, []float64{
			float64(scaleX), 0, float64(offsetX),
			0, float64(scaleY), float64(offsetY),
			0, 0, 1,
		}),
	}
}

// Identity returns the transform that maps every point to itself
func Identity() Transform {
	return NewTransform(1, 1, 0, 0)
}

// Compose returns the transform that applies u first, then t
func (t Transform) Compose(u Transform) Transform {
	var out mat.Dense
	out.Mul(t.m, u.m)
	return Transform{m: &out}
}

// Inverse returns the reverse mapping.  It fails for degenerate
// transforms with a zero scale on either axis.
func (t Transform) Inverse() (Transform, error) {

	var inv mat.Dense

	if err := inv.Inverse(t.m); err != nil {
		return Transform{}, fmt.Errorf("transform is not invertible: %w", err)
	}

	return Transform{m: &inv}, nil
}

// Point maps a point through the transform
func (t Transform) Point(p Point) Point {
	return Point{
		X: float32(t.m.At(0, 0)*float64(p.X) + t.m.At(0, 2)),
		Y: float32(t.m.At(1, 1)*float64(p.Y) + t.m.At(1, 2)),
	}
}

// Rect maps a rectangle through the transform.  The result is kept
// axis aligned with a positive size even when the transform flips an
// axis.
func (t Transform) Rect(r Rect) Rect {

	a := t.Point(Point{X: r.X, Y: r.Y})
	b := t.Point(Point{X: r.X + r.Width, Y: r.Y + r.Height})

	if b.X < a.X {
		a.X, b.X = b.X, a.X
	}

	if b.Y < a.Y {
		a.Y, b.Y = b.Y, a.Y
	}

	return Rect{
		X:      a.X,
		Y:      a.Y,
		Width:  b.X - a.X,
		Height: b.Y - a.Y,
	}
}
