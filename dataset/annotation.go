// Package dataset loads landmark annotations, drops samples whose labels cannot be
// encoded, and serves transformed training samples.
package dataset

import (
	"os"

	jsoniter "github.com/json-iterator/go"
	landmark "github.com/llooww10120/2d-landmark-detection"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Annotations mirrors the on-disk layout: two parallel lists holding the image file
// names and, for each image, 68 [x, y] pixel coordinates.
type Annotations struct {
	Images    []string       `json:"images"`
	Landmarks [][][2]float64 `json:"landmarks"`
}

// Record is a single annotated image.
type Record struct {
	Image     string
	Landmarks landmark.Landmarks
}

// LoadAnnotations decodes an annotation file.
func LoadAnnotations(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open the annotation file")
	}
	defer f.Close()

	var ann Annotations
	if err := json.NewDecoder(f).Decode(&ann); err != nil {
		return nil, errors.Wrapf(err, "could not decode the annotation file %s", path)
	}
	return ann.Records()
}

// Records converts the parallel lists into records. Every malformed entry is reported.
func (a Annotations) Records() ([]Record, error) {
	if len(a.Images) != len(a.Landmarks) {
		return nil, errors.Errorf("annotation lists differ in length: %d images, %d landmark sets",
			len(a.Images), len(a.Landmarks))
	}

	var errs error
	recs := make([]Record, 0, len(a.Images))
	for i, name := range a.Images {
		if name == "" {
			errs = multierr.Append(errs, errors.Errorf("sample %d: empty image name", i))
			continue
		}
		pts := make(landmark.Landmarks, len(a.Landmarks[i]))
		for j, xy := range a.Landmarks[i] {
			pts[j] = landmark.Point{X: xy[0], Y: xy[1]}
		}
		if err := pts.Validate(); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "sample %d (%s)", i, name))
			continue
		}
		recs = append(recs, Record{Image: name, Landmarks: pts})
	}
	if errs != nil {
		return nil, errs
	}
	return recs, nil
}
