package landmark

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlip_SymmetryMap(t *testing.T) {
	require.NoError(t, FaceSymmetry.Validate(NumLandmarks))

	assert.Error(t, SymmetryMap{Left: []int{0, 1}, Right: []int{2}}.Validate(NumLandmarks))
	assert.Error(t, SymmetryMap{Left: []int{0, 1}, Right: []int{2, 1}}.Validate(NumLandmarks))
	assert.Error(t, SymmetryMap{Left: []int{0}, Right: []int{68}}.Validate(NumLandmarks))

	_, err := NewRandomFlip(Classifier, 0.5, true, SymmetryMap{Left: []int{0}, Right: []int{0}})
	assert.Error(t, err)
	_, err = NewRandomFlip(Classifier, -0.1, true, FaceSymmetry)
	assert.Error(t, err)
}

func TestFlip_MirrorsCoordinates(t *testing.T) {
	f, err := NewRandomFlip(Classifier, 1, false, FaceSymmetry)
	require.NoError(t, err)

	img := testImage(testImageSize, 5)
	label, gt := testLabels(t, Classifier)

	fimg, flabel, fgt := f.Apply(rand.New(rand.NewSource(5)), img, label, gt)
	for i := range gt {
		assert.Equal(t, Point{X: 383 - gt[i].X, Y: gt[i].Y}, fgt[i])
		assert.Equal(t, Point{X: 95 - label[i].X, Y: label[i].Y}, flabel[i])
	}
	assert.Equal(t, img.NRGBAAt(0, 7), fimg.NRGBAAt(383, 7))
	assert.True(t, flabel.Within(96))
}

func TestFlip_SwapsSymmetricLandmarks(t *testing.T) {
	f, err := NewRandomFlip(Regressor, 1, true, FaceSymmetry)
	require.NoError(t, err)

	img := testImage(testImageSize, 6)
	label, gt := testLabels(t, Regressor)

	_, flabel, fgt := f.Apply(rand.New(rand.NewSource(6)), img, label, gt)
	for k := range FaceSymmetry.Left {
		l, r := FaceSymmetry.Left[k], FaceSymmetry.Right[k]
		assert.Equal(t, Point{X: 383 - gt[r].X, Y: gt[r].Y}, fgt[l])
		assert.Equal(t, Point{X: 383 - gt[l].X, Y: gt[l].Y}, fgt[r])
		assert.Equal(t, fgt[l], flabel[l])
	}
	// Landmarks on the symmetry axis keep their index.
	assert.Equal(t, Point{X: 383 - gt[27].X, Y: gt[27].Y}, fgt[27])
}

func TestFlip_IsAnInvolution(t *testing.T) {
	for _, swap := range []bool{false, true} {
		f, err := NewRandomFlip(Classifier, 1, swap, FaceSymmetry)
		require.NoError(t, err)

		img := testImage(testImageSize, 7)
		label, gt := testLabels(t, Classifier)
		rng := rand.New(rand.NewSource(7))

		fimg, flabel, fgt := f.Apply(rng, img, label, gt)
		bimg, blabel, bgt := f.Apply(rng, fimg, flabel, fgt)
		assert.Equal(t, img.Pix, bimg.Pix)
		assert.Equal(t, label, blabel)
		assert.Equal(t, gt, bgt)
	}
}
