package landmark

import (
	"image"
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

// SymmetryMap pairs every left side landmark with its mirrored right side landmark.
type SymmetryMap struct {
	Left  []int
	Right []int
}

// FaceSymmetry is the left/right pairing of the 68 point annotation scheme.
var FaceSymmetry = SymmetryMap{
	Left:  []int{0, 1, 2, 3, 4, 5, 6, 7, 17, 18, 19, 20, 21, 36, 37, 38, 39, 41, 40, 31, 32, 50, 49, 48, 61, 60, 67, 59, 58},
	Right: []int{16, 15, 14, 13, 12, 11, 10, 9, 26, 25, 24, 23, 22, 45, 44, 43, 42, 46, 47, 35, 34, 52, 53, 54, 63, 64, 65, 55, 56},
}

// Validate checks that the map pairs distinct in-range indices.
func (s SymmetryMap) Validate(n int) error {
	if len(s.Left) != len(s.Right) {
		return errors.Errorf("symmetry map sides differ in length: %d vs %d", len(s.Left), len(s.Right))
	}
	seen := make(map[int]bool, 2*len(s.Left))
	for _, idx := range append(append([]int(nil), s.Left...), s.Right...) {
		if idx < 0 || idx >= n {
			return errors.Errorf("symmetry index %d out of range [0, %d)", idx, n)
		}
		if seen[idx] {
			return errors.Errorf("symmetry index %d used twice", idx)
		}
		seen[idx] = true
	}
	return nil
}

// swap returns a copy of l with every symmetric pair exchanged.
func (s SymmetryMap) swap(l Landmarks) Landmarks {
	dst := l.Clone()
	for i := range s.Left {
		a, b := s.Left[i], s.Right[i]
		dst[a], dst[b] = l[b], l[a]
	}
	return dst
}

// RandomFlip mirrors an image left to right together with both of its labels.
type RandomFlip struct {
	Prob float64
	// Swap exchanges left and right landmark indices after mirroring so that
	// a "left eye" index keeps pointing at the left eye.
	Swap bool

	mode     Mode
	symmetry SymmetryMap
}

// NewRandomFlip builds the flip step using the given symmetry map.
func NewRandomFlip(mode Mode, prob float64, swap bool, symmetry SymmetryMap) (*RandomFlip, error) {
	if prob < 0 || prob > 1 {
		return nil, errors.Errorf("flip probability %v out of [0, 1]", prob)
	}
	if err := symmetry.Validate(NumLandmarks); err != nil {
		return nil, err
	}
	return &RandomFlip{Prob: prob, Swap: swap, mode: mode, symmetry: symmetry}, nil
}

// Apply mirrors the inputs with probability Prob.
func (f *RandomFlip) Apply(rng *rand.Rand, img *image.NRGBA, label, gt Landmarks) (*image.NRGBA, Landmarks, Landmarks) {
	if rng.Float64() >= f.Prob {
		return img, label, gt
	}
	return f.flip(img, label, gt)
}

func (f *RandomFlip) flip(img *image.NRGBA, label, gt Landmarks) (*image.NRGBA, Landmarks, Landmarks) {
	width := float64(img.Bounds().Dx())
	labelBound := math.Floor(width * f.mode.ScaleRatio())

	flabel := make(Landmarks, len(label))
	for i, p := range label {
		flabel[i] = Point{X: FlipX(p.X, labelBound), Y: p.Y}
	}
	fgt := make(Landmarks, len(gt))
	for i, p := range gt {
		fgt[i] = Point{X: FlipX(p.X, width), Y: p.Y}
	}
	if f.Swap {
		flabel = f.symmetry.swap(flabel)
		fgt = f.symmetry.swap(fgt)
	}
	return flipImage(img), flabel, fgt
}
