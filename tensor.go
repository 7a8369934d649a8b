package landmark

import (
	"image"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Channels is the number of color channels of an image tensor.
const Channels = 3

// ToTensor converts an image to a float32 tensor of shape (3, H, W) with values in [0, 1].
// The alpha channel is dropped.
func ToTensor(img *image.NRGBA) *tensor.Dense {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	plane := w * h
	data := make([]float32, Channels*plane)

	for y := 0; y < h; y++ {
		off := img.PixOffset(img.Bounds().Min.X, img.Bounds().Min.Y+y)
		for x := 0; x < w; x++ {
			px := img.Pix[off+x*4 : off+x*4+3]
			for c := 0; c < Channels; c++ {
				data[c*plane+y*w+x] = float32(px[c]) / 255
			}
		}
	}
	return tensor.New(tensor.WithShape(Channels, h, w), tensor.WithBacking(data))
}

// Normalize subtracts the channel mean and divides by the channel standard deviation
// in place. t must be a float32 tensor of shape (C, H, W).
func Normalize(t *tensor.Dense, means, stds []float64) error {
	data, c, plane, err := imageData(t)
	if err != nil {
		return err
	}
	if len(means) != c || len(stds) != c {
		return errors.Errorf("normalization expects %d means and stds, got %d and %d", c, len(means), len(stds))
	}
	for ch := 0; ch < c; ch++ {
		if stds[ch] == 0 {
			return errors.Errorf("standard deviation of channel %d is zero", ch)
		}
		mean, std := float32(means[ch]), float32(stds[ch])
		pix := data[ch*plane : (ch+1)*plane]
		for i, v := range pix {
			pix[i] = (v - mean) / std
		}
	}
	return nil
}

// Denormalize reverts Normalize and converts the tensor back to an image,
// clamping the values to the displayable range.
func Denormalize(t *tensor.Dense, means, stds []float64) (*image.NRGBA, error) {
	data, c, plane, err := imageData(t)
	if err != nil {
		return nil, err
	}
	if c != Channels || len(means) != c || len(stds) != c {
		return nil, errors.Errorf("cannot denormalize a %d channel tensor", c)
	}
	shape := t.Shape()
	h, w := shape[1], shape[2]
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	for i := 0; i < plane; i++ {
		for ch := 0; ch < c; ch++ {
			v := float64(data[ch*plane+i])*stds[ch] + means[ch]
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			dst.Pix[i*4+ch] = uint8(v*255 + 0.5)
		}
		dst.Pix[i*4+3] = 0xff
	}
	return dst, nil
}

// imageData returns the float32 backing slice of a (C, H, W) tensor.
func imageData(t *tensor.Dense) ([]float32, int, int, error) {
	shape := t.Shape()
	if len(shape) != 3 {
		return nil, 0, 0, errors.Errorf("expected a (C, H, W) tensor, got shape %v", shape)
	}
	data, ok := t.Data().([]float32)
	if !ok {
		return nil, 0, 0, errors.Errorf("expected float32 tensor data, got %T", t.Data())
	}
	return data, shape[0], shape[1] * shape[2], nil
}
