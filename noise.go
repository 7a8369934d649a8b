package landmark

import (
	"math/rand"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// RandomNoise sets random pixels of an image tensor to black or white.
// It works on the unnormalized tensor and never looks at the labels.
type RandomNoise struct {
	Prob  float64
	Ratio float64
}

// NewRandomNoise builds the noise step. ratio bounds the share of affected pixels.
func NewRandomNoise(prob, ratio float64) (*RandomNoise, error) {
	if prob < 0 || prob > 1 {
		return nil, errors.Errorf("noise probability %v out of [0, 1]", prob)
	}
	if ratio < 0 || ratio > 1 {
		return nil, errors.Errorf("noise ratio %v out of [0, 1]", ratio)
	}
	return &RandomNoise{Prob: prob, Ratio: ratio}, nil
}

// Apply modifies t in place with probability Prob and returns the number of pixels set.
func (n *RandomNoise) Apply(rng *rand.Rand, t *tensor.Dense) (int, error) {
	data, c, plane, err := imageData(t)
	if err != nil {
		return 0, err
	}
	if rng.Float64() >= n.Prob {
		return 0, nil
	}
	shape := t.Shape()
	h, w := shape[1], shape[2]

	count := int(rng.Float64() * n.Ratio * float64(h) * float64(w))
	for i := 0; i < count; i++ {
		var v float32 = 1
		if rng.Float64() > 0.5 {
			v = 0
		}
		pos := rng.Intn(h)*w + rng.Intn(w)
		for ch := 0; ch < c; ch++ {
			data[ch*plane+pos] = v
		}
	}
	return count, nil
}
