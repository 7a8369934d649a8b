package landmark

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// NumLandmarks is the number of facial keypoints per face.
const NumLandmarks = 68

// Point is a landmark position in pixel coordinates.
type Point struct {
	X float64
	Y float64
}

// Landmarks is an ordered set of keypoints. The index of a point is its anatomical
// position (index 0 is the leftmost jaw point).
type Landmarks []Point

// Clone returns a copy of the landmark set which does not share memory with l.
func (l Landmarks) Clone() Landmarks {
	if l == nil {
		return nil
	}
	dst := make(Landmarks, len(l))
	copy(dst, l)
	return dst
}

// Validate checks that the set holds exactly NumLandmarks finite points.
func (l Landmarks) Validate() error {
	if len(l) != NumLandmarks {
		return errors.Errorf("expected %d landmarks, got %d", NumLandmarks, len(l))
	}
	for i, p := range l {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return errors.Errorf("landmark %d has a non finite coordinate (%v, %v)", i, p.X, p.Y)
		}
	}
	return nil
}

// Within reports whether every coordinate lies in the half-open range [0, bound).
func (l Landmarks) Within(bound float64) bool {
	for _, p := range l {
		if p.X < 0 || p.Y < 0 || p.X >= bound || p.Y >= bound {
			return false
		}
	}
	return true
}

// Truncate drops the fractional part of every coordinate.
func (l Landmarks) Truncate() Landmarks {
	dst := make(Landmarks, len(l))
	for i, p := range l {
		dst[i] = Point{X: math.Trunc(p.X), Y: math.Trunc(p.Y)}
	}
	return dst
}

// HasCollision reports whether two landmarks share the same position.
func (l Landmarks) HasCollision() bool {
	// Sorting lexicographically puts identical points next to each other.
	idx := make([]int, len(l))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		pa, pb := l[idx[a]], l[idx[b]]
		if pa.X != pb.X {
			return pa.X < pb.X
		}
		return pa.Y < pb.Y
	})
	for i := 0; i < len(idx)-1; i++ {
		if l[idx[i]] == l[idx[i+1]] {
			return true
		}
	}
	return false
}

// RotationMatrix returns the 2x2 matrix rotating image coordinates (y axis pointing
// down) counter-clockwise by deg degrees: [[cos, sin], [-sin, cos]].
func RotationMatrix(deg float64) *mat.Dense {
	sin, cos := math.Sincos(deg * math.Pi / 180)
	return mat.NewDense(2, 2, []float64{
		cos, sin,
		-sin, cos,
	})
}

// RotatePoints rotates the points around the center of a width x height frame.
// The computation is done in floating point; callers needing integer coordinates
// must truncate the result afterwards.
func RotatePoints(pts Landmarks, width, height float64, rot mat.Matrix) Landmarks {
	if len(pts) == 0 {
		return Landmarks{}
	}
	cx, cy := width/2, height/2

	centered := mat.NewDense(len(pts), 2, nil)
	for i, p := range pts {
		centered.Set(i, 0, p.X-cx)
		centered.Set(i, 1, p.Y-cy)
	}

	var rotated mat.Dense
	rotated.Mul(rot, centered.T())

	dst := make(Landmarks, len(pts))
	for i := range pts {
		dst[i] = Point{
			X: rotated.At(0, i) + cx,
			Y: rotated.At(1, i) + cy,
		}
	}
	return dst
}

// FlipX mirrors an x coordinate inside a frame of the given width.
// The bound depends on the label space: the full image width for the ground-truth
// label and the scaled width for the model label.
func FlipX(x, bound float64) float64 {
	return (bound - 1) - x
}
