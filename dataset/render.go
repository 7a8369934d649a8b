package dataset

import (
	"image"
	"image/color"

	landmark "github.com/llooww10120/2d-landmark-detection"
	"github.com/llooww10120/2d-landmark-detection/imop"
)

// RenderOptions controls how a sample preview is drawn.
type RenderOptions struct {
	GT    landmark.Marker
	Label landmark.Marker
	// HeatmapOpacity is the opacity of the screen blended heatmap layer.
	// Zero disables the overlay.
	HeatmapOpacity float64
}

// DefaultRenderOptions draws the ground truth as green dots and the model label as white
// crosses under a half transparent heatmap.
var DefaultRenderOptions = RenderOptions{
	GT:             landmark.DefaultMarker,
	Label:          landmark.Marker{Shape: landmark.Cross, Size: 3, Color: color.White, Stroke: 1},
	HeatmapOpacity: 0.5,
}

// Render turns a sample back into a viewable image: the normalization is reversed,
// the heatmap is blended on top in classifier mode and both labels are drawn.
func (d *Dataset) Render(s Sample, opts RenderOptions) (*image.NRGBA, error) {
	img, err := d.transform.Denormalize(s.Image)
	if err != nil {
		return nil, err
	}
	size := img.Bounds().Dx()

	if s.Heatmap != nil && opts.HeatmapOpacity > 0 {
		hm, err := landmark.HeatmapImage(s.Heatmap, size)
		if err != nil {
			return nil, err
		}
		blend := imop.NewBlend()
		if err := blend.Set(imop.Screen); err != nil {
			return nil, err
		}
		blend.Opacity = opts.HeatmapOpacity
		img = blend.Draw(img, hm)
	}

	ratio := d.transform.Mode().ScaleRatio()
	img = landmark.DrawLandmarks(img, s.Label, 1/ratio, opts.Label)
	return landmark.DrawLandmarks(img, s.GT, 1, opts.GT), nil
}
