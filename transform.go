package landmark

import (
	"image"
	"math/rand"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorgonia.org/tensor"
)

// Transform maps an image and its two labels to a normalized image tensor and the
// transformed labels. In training mode the enabled augmentation steps run in the order
// flip, rotation, tensor conversion, noise, normalization. In evaluation mode only the
// tensor conversion and the normalization run.
type Transform struct {
	Train bool

	mode      Mode
	imageSize int
	means     []float64
	stds      []float64

	flip     *RandomFlip
	rotation *RandomRotation
	noise    *RandomNoise

	logger *zap.SugaredLogger
}

// TransformOption customizes a Transform.
type TransformOption func(*Transform)

// WithLogger sets the logger reporting the applied augmentation steps at debug level.
func WithLogger(logger *zap.SugaredLogger) TransformOption {
	return func(t *Transform) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithSymmetry replaces the left/right landmark pairing used by the flip step.
func WithSymmetry(symmetry SymmetryMap) TransformOption {
	return func(t *Transform) {
		if t.flip != nil {
			t.flip.symmetry = symmetry
		}
	}
}

// NewTransform builds the pipeline described by cfg. Steps disabled in cfg.Transform
// are skipped even in training mode.
func NewTransform(cfg Config, train bool, opts ...TransformOption) (*Transform, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mode := cfg.Mode()
	t := &Transform{
		Train:     train,
		mode:      mode,
		imageSize: cfg.ImageSize,
		means:     append([]float64(nil), cfg.Normalize.Means...),
		stds:      append([]float64(nil), cfg.Normalize.Stds...),
		logger:    zap.NewNop().Sugar(),
	}

	var err error
	if cfg.Transform.Flip {
		if t.flip, err = NewRandomFlip(mode, cfg.Flip.Prob, cfg.Flip.Swap, FaceSymmetry); err != nil {
			return nil, err
		}
	}
	if cfg.Transform.Rotation {
		if t.rotation, err = NewRandomRotation(mode, cfg.Rotation.Prob, cfg.Rotation.AngleMin, cfg.Rotation.AngleMax); err != nil {
			return nil, err
		}
	}
	if cfg.Transform.Noise {
		if t.noise, err = NewRandomNoise(cfg.Noise.Prob, cfg.Noise.Ratio); err != nil {
			return nil, err
		}
	}

	for _, opt := range opts {
		opt(t)
	}
	if t.flip != nil {
		if err := t.flip.symmetry.Validate(NumLandmarks); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Mode returns the label encoding mode of the pipeline.
func (t *Transform) Mode() Mode {
	return t.mode
}

// ImageSize returns the side of the square images accepted by Apply.
func (t *Transform) ImageSize() int {
	return t.imageSize
}

// Denormalize reverses the normalization step of the pipeline and returns the image.
func (t *Transform) Denormalize(x *tensor.Dense) (*image.NRGBA, error) {
	return Denormalize(x, t.means, t.stds)
}

// Apply runs the pipeline on one sample. label and gt are never modified; the returned
// labels are fresh copies even when no augmentation was applied.
func (t *Transform) Apply(rng *rand.Rand, img image.Image, label, gt Landmarks) (*tensor.Dense, Landmarks, Landmarks, error) {
	if img == nil {
		return nil, nil, nil, errors.New("nil image")
	}
	if err := label.Validate(); err != nil {
		return nil, nil, nil, errors.Wrap(err, "invalid model label")
	}
	if err := gt.Validate(); err != nil {
		return nil, nil, nil, errors.Wrap(err, "invalid ground-truth label")
	}
	b := img.Bounds()
	if b.Dx() != t.imageSize || b.Dy() != t.imageSize {
		return nil, nil, nil, errors.Errorf("expected a %dx%d image, got %dx%d", t.imageSize, t.imageSize, b.Dx(), b.Dy())
	}

	src := ImgToNRGBA(img)
	label, gt = label.Clone(), gt.Clone()

	if t.Train {
		if t.flip != nil {
			src, label, gt = t.flip.Apply(rng, src, label, gt)
		}
		if t.rotation != nil {
			src, label, gt = t.rotation.Apply(rng, src, label, gt)
		}
	}

	out := ToTensor(src)

	if t.Train && t.noise != nil {
		n, err := t.noise.Apply(rng, out)
		if err != nil {
			return nil, nil, nil, err
		}
		if n > 0 {
			t.logger.Debugw("pixel noise applied", "pixels", n)
		}
	}

	if err := Normalize(out, t.means, t.stds); err != nil {
		return nil, nil, nil, err
	}
	return out, label, gt, nil
}
