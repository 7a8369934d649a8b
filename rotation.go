package landmark

import (
	"image"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// RandomRotation rotates an image together with both of its labels.
// The rotation matrices for every angle of the range are computed once on construction.
type RandomRotation struct {
	Prob float64

	mode     Mode
	angles   []int
	matrices []*mat.Dense
}

// NewRandomRotation builds the rotation step for the inclusive angle range [minAngle, maxAngle].
func NewRandomRotation(mode Mode, prob float64, minAngle, maxAngle int) (*RandomRotation, error) {
	if maxAngle < minAngle {
		return nil, errors.Errorf("invalid rotation range [%d, %d]", minAngle, maxAngle)
	}
	if prob < 0 || prob > 1 {
		return nil, errors.Errorf("rotation probability %v out of [0, 1]", prob)
	}
	r := &RandomRotation{
		Prob:     prob,
		mode:     mode,
		angles:   make([]int, 0, maxAngle-minAngle+1),
		matrices: make([]*mat.Dense, 0, maxAngle-minAngle+1),
	}
	for angle := minAngle; angle <= maxAngle; angle++ {
		r.angles = append(r.angles, angle)
		r.matrices = append(r.matrices, RotationMatrix(float64(angle)))
	}
	return r, nil
}

// Angles returns the candidate rotation angles in degrees.
func (r *RandomRotation) Angles() []int {
	return append([]int(nil), r.angles...)
}

// Apply rotates the image with probability Prob by a uniformly chosen angle.
// If a rotated point of either label leaves the frame, or two truncated label points
// share a grid cell, the original inputs are returned:
// a rotation is applied to all three values or to none of them.
func (r *RandomRotation) Apply(rng *rand.Rand, img *image.NRGBA, label, gt Landmarks) (*image.NRGBA, Landmarks, Landmarks) {
	if rng.Float64() >= r.Prob {
		return img, label, gt
	}
	i := rng.Intn(len(r.angles))
	return r.rotate(i, img, label, gt)
}

func (r *RandomRotation) rotate(i int, img *image.NRGBA, label, gt Landmarks) (*image.NRGBA, Landmarks, Landmarks) {
	w, h := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	rot := r.matrices[i]

	rgt := RotatePoints(gt, w, h, rot)
	if !rgt.Within(h) {
		return img, label, gt
	}

	ratio := r.mode.ScaleRatio()
	rlabel := RotatePoints(label, w*ratio, h*ratio, rot)
	if !rlabel.Within(h * ratio) {
		return img, label, gt
	}
	if r.mode.Integral() {
		rlabel = rlabel.Truncate()
		// Two points truncated into the same grid cell cannot be encoded.
		if rlabel.HasCollision() {
			return img, label, gt
		}
	}

	return rotateImage(img, float64(r.angles[i])), rlabel, rgt
}
