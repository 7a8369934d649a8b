// Package imop implements the separable blend modes used to mix a heatmap
// rendering with the face image it was computed for.
// The image/draw core package only implements the source-over-destination and source
// operations, this package covers the missing ones.
package imop

import (
	"image"
	"image/color"
	"math"

	"github.com/llooww10120/2d-landmark-detection/utils"
	"github.com/pkg/errors"
)

const (
	Normal   = "normal"
	Darken   = "darken"
	Lighten  = "lighten"
	Multiply = "multiply"
	Screen   = "screen"
	Overlay  = "overlay"
)

var modes = []string{Normal, Darken, Lighten, Multiply, Screen, Overlay}

// Blend holds the currently active blend mode and the layer opacity.
type Blend struct {
	Mode    string
	Opacity float64
}

// NewBlend initializes a fully opaque Blend in normal mode.
func NewBlend() *Blend {
	return &Blend{Mode: Normal, Opacity: 1}
}

// Set activates one of the supported blend modes.
func (b *Blend) Set(mode string) error {
	for _, m := range modes {
		if m == mode {
			b.Mode = mode
			return nil
		}
	}
	return errors.Errorf("unsupported blend mode %q", mode)
}

// Get returns the currently active blend mode.
func (b *Blend) Get() string {
	return b.Mode
}

// Draw blends src over backdrop and returns the result as a new image with the
// backdrop bounds. Pixels of src outside the backdrop are ignored.
func (b *Blend) Draw(backdrop, src *image.NRGBA) *image.NRGBA {
	bounds := backdrop.Bounds()
	dst := image.NewNRGBA(bounds)
	opacity := utils.Clamp(b.Opacity, 0, 1)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cb := backdrop.NRGBAAt(x, y)
			if !(image.Point{X: x, Y: y}).In(src.Bounds()) {
				dst.SetNRGBA(x, y, cb)
				continue
			}
			cs := src.NRGBAAt(x, y)
			alpha := opacity * float64(cs.A) / 255

			dst.SetNRGBA(x, y, color.NRGBA{
				R: b.channel(cb.R, cs.R, alpha),
				G: b.channel(cb.G, cs.G, alpha),
				B: b.channel(cb.B, cs.B, alpha),
				A: cb.A,
			})
		}
	}
	return dst
}

// channel blends a single color component and mixes it with the backdrop by alpha.
func (b *Blend) channel(back, front uint8, alpha float64) uint8 {
	cb := float64(back) / 255
	cs := float64(front) / 255

	var v float64
	switch b.Mode {
	case Darken:
		v = utils.Min(cs, cb)
	case Lighten:
		v = utils.Max(cs, cb)
	case Multiply:
		v = cs * cb
	case Screen:
		v = 1 - (1-cs)*(1-cb)
	case Overlay:
		if cb <= 0.5 {
			v = 2 * cs * cb
		} else {
			v = 1 - 2*(1-cs)*(1-cb)
		}
	default:
		v = cs
	}
	v = alpha*v + (1-alpha)*cb
	return uint8(math.Round(v * 255))
}
