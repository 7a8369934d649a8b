package landmark

import (
	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Config holds every option recognized by the sample preparation pipeline.
type Config struct {
	ModelType  string  `toml:"model_type" validate:"oneof=classifier regressor"`
	Seed       int64   `toml:"seed"`
	SplitRatio float64 `toml:"split_ratio" validate:"gt=0,lte=1"`
	ImageSize  int     `toml:"image_size" validate:"gt=0"`

	Transform StepToggles      `toml:"transform"`
	Rotation  RotationOptions  `toml:"rotation"`
	Flip      FlipOptions      `toml:"flip"`
	Noise     NoiseOptions     `toml:"noise"`
	Heatmap   HeatmapOptions   `toml:"heatmap"`
	Normalize NormalizeOptions `toml:"normalize"`
}

// StepToggles enables or disables each augmentation step independently.
type StepToggles struct {
	Flip     bool `toml:"flip"`
	Rotation bool `toml:"rotation"`
	Noise    bool `toml:"noise"`
}

// RotationOptions configures the random rotation. The angle range is inclusive.
type RotationOptions struct {
	AngleMin int     `toml:"angle_min" validate:"gte=-180,lte=180"`
	AngleMax int     `toml:"angle_max" validate:"gte=-180,lte=180,gtefield=AngleMin"`
	Prob     float64 `toml:"prob" validate:"gte=0,lte=1"`
}

// FlipOptions configures the random horizontal flip.
type FlipOptions struct {
	Prob float64 `toml:"prob" validate:"gte=0,lte=1"`
	Swap bool    `toml:"swap"`
}

// NoiseOptions configures the salt and pepper noise.
type NoiseOptions struct {
	Prob  float64 `toml:"prob" validate:"gte=0,lte=1"`
	Ratio float64 `toml:"ratio" validate:"gte=0,lte=1"`
}

// HeatmapOptions configures the heatmap encoder.
type HeatmapOptions struct {
	GridSize int `toml:"grid_size" validate:"gt=0"`
}

// NormalizeOptions holds the per channel statistics used for normalization.
type NormalizeOptions struct {
	Means []float64 `toml:"means" validate:"len=3"`
	Stds  []float64 `toml:"stds" validate:"len=3,dive,gt=0"`
}

// ImageNet channel statistics.
var (
	DefaultMeans = []float64{0.485, 0.456, 0.406}
	DefaultStds  = []float64{0.229, 0.224, 0.225}
)

// DefaultConfig returns the configuration used to train the reference model.
func DefaultConfig() Config {
	return Config{
		ModelType:  Classifier.String(),
		Seed:       987,
		SplitRatio: 0.9,
		ImageSize:  384,
		Transform: StepToggles{
			Flip:     false,
			Rotation: true,
			Noise:    true,
		},
		Rotation: RotationOptions{AngleMin: -30, AngleMax: 30, Prob: 0.5},
		Flip:     FlipOptions{Prob: 0.5, Swap: true},
		Noise:    NoiseOptions{Prob: 0.5, Ratio: 0.1},
		Heatmap:  HeatmapOptions{GridSize: 96},
		Normalize: NormalizeOptions{
			Means: append([]float64(nil), DefaultMeans...),
			Stds:  append([]float64(nil), DefaultStds...),
		},
	}
}

// LoadConfig decodes a TOML file on top of the default configuration and validates it.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "could not decode config file %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the field constraints and the relations between fields.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	mode, err := ParseMode(c.ModelType)
	if err != nil {
		return err
	}
	if mode == Classifier {
		labelSize := int(float64(c.ImageSize) * mode.ScaleRatio())
		if labelSize != c.Heatmap.GridSize {
			return errors.Errorf("invalid config: heatmap grid size %d does not match the label space %d of a %dpx image",
				c.Heatmap.GridSize, labelSize, c.ImageSize)
		}
	}
	return nil
}

// Mode returns the encoding mode named by ModelType.
// It falls back to Classifier for an unknown name; Validate reports those.
func (c Config) Mode() Mode {
	mode, err := ParseMode(c.ModelType)
	if err != nil {
		return Classifier
	}
	return mode
}
