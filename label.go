package landmark

import (
	"math"

	"github.com/pkg/errors"
)

// Mode selects how the model label is encoded.
type Mode int

const (
	// Classifier encodes every landmark as a one-hot heatmap on a quarter resolution grid.
	Classifier Mode = iota
	// Regressor keeps the landmarks as full resolution coordinates.
	Regressor
)

var modeNames = map[Mode]string{
	Classifier: "classifier",
	Regressor:  "regressor",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseMode converts a model type name into its Mode.
func ParseMode(name string) (Mode, error) {
	for mode, n := range modeNames {
		if n == name {
			return mode, nil
		}
	}
	return 0, errors.Errorf("unknown model type %q, expected classifier or regressor", name)
}

// ScaleRatio is the factor applied to ground-truth coordinates to obtain the model label.
func (m Mode) ScaleRatio() float64 {
	if m == Classifier {
		return 0.25
	}
	return 1.0
}

// Integral reports whether the model label must hold integer coordinates.
func (m Mode) Integral() bool {
	return m == Classifier
}

// ConvertLabel scales raw pixel landmarks into the model label space and rounds them.
// It reports false when two landmarks collapse onto the same grid cell; such a sample
// cannot be encoded without losing a point and has to be discarded.
// The returned label keeps the original landmark order.
func ConvertLabel(raw Landmarks, mode Mode) (bool, Landmarks, error) {
	if err := raw.Validate(); err != nil {
		return false, nil, errors.Wrap(err, "invalid raw label")
	}
	ratio := mode.ScaleRatio()

	label := make(Landmarks, len(raw))
	for i, p := range raw {
		label[i] = Point{
			X: math.Round(p.X * ratio),
			Y: math.Round(p.Y * ratio),
		}
	}

	if label.HasCollision() {
		return false, nil, nil
	}
	return true, label, nil
}
