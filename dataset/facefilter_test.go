package dataset

import (
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	pigo "github.com/esimov/pigo/core"
	landmark "github.com/llooww10120/2d-landmark-detection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brightFaces detects a face in every image whose top left pixel is bright.
type brightFaces struct {
	params []pigo.CascadeParams
	iou    float64
}

func (b *brightFaces) RunCascade(cp pigo.CascadeParams, angle float64) []pigo.Detection {
	b.params = append(b.params, cp)
	if cp.Pixels[0] > 128 {
		return []pigo.Detection{
			{Row: 30, Col: 20, Scale: 40, Q: 7.5},
			{Row: 5, Col: 5, Scale: 10, Q: 1.2},
		}
	}
	return []pigo.Detection{{Row: 10, Col: 10, Scale: 20, Q: 3}}
}

func (b *brightFaces) ClusterDetections(detections []pigo.Detection, iouThreshold float64) []pigo.Detection {
	b.iou = iouThreshold
	return detections
}

func TestFaceFilter_Detect(t *testing.T) {
	det := &brightFaces{}
	f := newFaceFilter(det)

	bright := image.NewNRGBA(image.Rect(0, 0, 40, 60))
	for i := range bright.Pix {
		bright.Pix[i] = 0xff
	}
	faces := f.Detect(bright)
	require.Len(t, faces, 1)
	assert.Equal(t, float32(7.5), faces[0].Q)
	assert.True(t, f.HasFace(bright))

	require.Len(t, det.params, 2)
	cp := det.params[0]
	assert.Equal(t, 64, cp.MinSize)
	assert.Equal(t, 60, cp.MaxSize)
	assert.Equal(t, 60, cp.Rows)
	assert.Equal(t, 40, cp.Cols)
	assert.Equal(t, 40, cp.Dim)
	assert.Len(t, cp.Pixels, 40*60)
	assert.Equal(t, 0.2, det.iou)

	dark := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	assert.Empty(t, f.Detect(dark))
	assert.False(t, f.HasFace(dark))

	f.Threshold = 2
	assert.True(t, f.HasFace(dark))
}

func TestFaceFilter_DropsFacelessSamplesOnLoad(t *testing.T) {
	root := t.TempDir()
	var ann Annotations
	for i, c := range []color.NRGBA{
		{R: 255, G: 255, B: 255, A: 255},
		{A: 255},
		{R: 240, G: 230, B: 220, A: 255},
	} {
		name := fmt.Sprintf("face_%02d.png", i)
		writeImage(t, filepath.Join(root, name), imageSize, c)
		ann.Images = append(ann.Images, name)
		ann.Landmarks = append(ann.Landmarks, toPairs(testLandmarks(float64(i))))
	}
	annotPath := filepath.Join(root, "annotations.json")
	writeAnnotations(t, annotPath, ann)

	cfg := landmark.DefaultConfig()
	det := &brightFaces{}
	filter := WithFaceFilter(newFaceFilter(det))

	ds, report, err := LoadEval(cfg, root, annotPath, filter)
	require.NoError(t, err)
	assert.Equal(t, Report{Total: 3, Kept: 2, NoFace: 1}, report)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, "face_00.png", ds.Entry(0).Image)
	assert.Equal(t, "face_02.png", ds.Entry(1).Image)
	assert.Len(t, det.params, 3)

	// The kept samples are served without running the detector again.
	rng := rand.New(rand.NewSource(cfg.Seed))
	for i := 0; i < ds.Len(); i++ {
		_, err := ds.Sample(rng, i)
		require.NoError(t, err)
	}
	assert.Len(t, det.params, 3)

	cfg.SplitRatio = 1
	train, val, err := LoadTrainVal(cfg, root, annotPath, filter)
	require.NoError(t, err)
	assert.Equal(t, 2, train.Len())
	assert.Equal(t, 0, val.Len())

	// Without a filter the dark image is kept.
	_, report, err = LoadEval(cfg, root, annotPath)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Kept)

	require.NoError(t, os.Remove(filepath.Join(root, "face_01.png")))
	_, _, err = LoadEval(cfg, root, annotPath, filter)
	assert.Error(t, err)
}

func TestFaceFilter_MissingCascade(t *testing.T) {
	_, err := NewFaceFilter(filepath.Join(t.TempDir(), "missing.cascade"))
	assert.Error(t, err)
}
