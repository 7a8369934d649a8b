package landmark

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DefaultIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Classifier, cfg.Mode())
	assert.Equal(t, 96, cfg.Heatmap.GridSize)
	assert.False(t, cfg.Transform.Flip)

	// The defaults do not share the package level statistics.
	cfg.Normalize.Means[0] = 0
	assert.Equal(t, 0.485, DefaultMeans[0])
}

func TestConfig_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
model_type = "regressor"
seed = 7
image_size = 256

[transform]
flip = true

[rotation]
angle_min = -10
angle_max = 10
prob = 0.3

[normalize]
means = [0.5, 0.5, 0.5]
stds = [0.25, 0.25, 0.25]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Regressor, cfg.Mode())
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 256, cfg.ImageSize)
	assert.Equal(t, StepToggles{Flip: true, Rotation: true, Noise: true}, cfg.Transform)
	assert.Equal(t, RotationOptions{AngleMin: -10, AngleMax: 10, Prob: 0.3}, cfg.Rotation)
	assert.Equal(t, []float64{0.5, 0.5, 0.5}, cfg.Normalize.Means)
	// Keys absent from the file keep their default value.
	assert.Equal(t, 0.9, cfg.SplitRatio)
	assert.Equal(t, NoiseOptions{Prob: 0.5, Ratio: 0.1}, cfg.Noise)
}

func TestConfig_LoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	malformed := filepath.Join(dir, "malformed.toml")
	require.NoError(t, os.WriteFile(malformed, []byte("seed = [1,"), 0644))
	_, err = LoadConfig(malformed)
	assert.Error(t, err)

	// A classifier on 256px images needs a 64 cell grid.
	mismatch := filepath.Join(dir, "mismatch.toml")
	require.NoError(t, os.WriteFile(mismatch, []byte("image_size = 256\n"), 0644))
	_, err = LoadConfig(mismatch)
	assert.Error(t, err)
}

func TestConfig_Invalid(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown model type", func(c *Config) { c.ModelType = "detector" }},
		{"zero split ratio", func(c *Config) { c.SplitRatio = 0 }},
		{"split ratio above one", func(c *Config) { c.SplitRatio = 1.5 }},
		{"negative image size", func(c *Config) { c.ImageSize = -1 }},
		{"reversed angle range", func(c *Config) { c.Rotation.AngleMin, c.Rotation.AngleMax = 10, -10 }},
		{"angle out of range", func(c *Config) { c.Rotation.AngleMax = 200 }},
		{"rotation probability", func(c *Config) { c.Rotation.Prob = 1.1 }},
		{"flip probability", func(c *Config) { c.Flip.Prob = -1 }},
		{"noise ratio", func(c *Config) { c.Noise.Ratio = 2 }},
		{"grid size", func(c *Config) { c.Heatmap.GridSize = 95 }},
		{"two means", func(c *Config) { c.Normalize.Means = []float64{0.5, 0.5} }},
		{"zero std", func(c *Config) { c.Normalize.Stds = []float64{0.2, 0, 0.2} }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := DefaultConfig()
	cfg.ModelType = Regressor.String()
	cfg.Heatmap.GridSize = 1
	assert.NoError(t, cfg.Validate(), "the grid size only binds the classifier")
}
