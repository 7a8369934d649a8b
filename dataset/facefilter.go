package dataset

import (
	"image"
	"os"
	"path/filepath"

	pigo "github.com/esimov/pigo/core"
	landmark "github.com/llooww10120/2d-landmark-detection"
	"github.com/pkg/errors"
)

// detector is the part of the pigo classifier used by FaceFilter.
type detector interface {
	RunCascade(cp pigo.CascadeParams, angle float64) []pigo.Detection
	ClusterDetections(detections []pigo.Detection, iouThreshold float64) []pigo.Detection
}

// FaceFilter checks that an image contains at least one face using a pigo cascade.
type FaceFilter struct {
	MinSize     int
	ShiftFactor float64
	ScaleFactor float64
	IoU         float64
	// Threshold is the minimum detection score of an accepted face.
	Threshold float32

	classifier detector
}

// NewFaceFilter unpacks the pigo face cascade stored at path.
func NewFaceFilter(path string) (*FaceFilter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not read the face cascade")
	}
	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, errors.Wrap(err, "error unpacking the cascade file")
	}
	return newFaceFilter(classifier), nil
}

func newFaceFilter(classifier detector) *FaceFilter {
	return &FaceFilter{
		MinSize:     64,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		IoU:         0.2,
		Threshold:   5.0,
		classifier:  classifier,
	}
}

// Detect returns the clustered face detections scoring above the threshold.
func (f *FaceFilter) Detect(img image.Image) []pigo.Detection {
	cols, rows := img.Bounds().Dx(), img.Bounds().Dy()
	maxSize := cols
	if rows > cols {
		maxSize = rows
	}

	cParams := pigo.CascadeParams{
		MinSize:     f.MinSize,
		MaxSize:     maxSize,
		ShiftFactor: f.ShiftFactor,
		ScaleFactor: f.ScaleFactor,

		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(img),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	faces := f.classifier.RunCascade(cParams, 0.0)
	faces = f.classifier.ClusterDetections(faces, f.IoU)

	kept := faces[:0]
	for _, face := range faces {
		if face.Q >= f.Threshold {
			kept = append(kept, face)
		}
	}
	return kept
}

// HasFace reports whether at least one face is detected in img.
func (f *FaceFilter) HasFace(img image.Image) bool {
	return len(f.Detect(img)) > 0
}

// dropFaceless removes the entries whose image under root contains no face.
func (f *FaceFilter) dropFaceless(root string, entries []Entry) ([]Entry, int, error) {
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		img, err := landmark.OpenImage(filepath.Join(root, e.Image))
		if err != nil {
			return nil, 0, errors.Wrap(err, "face filter")
		}
		if f.HasFace(img) {
			kept = append(kept, e)
		}
	}
	return kept, len(entries) - len(kept), nil
}
