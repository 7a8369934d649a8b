package landmark

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// ShapeType is the marker drawn at a landmark position.
type ShapeType string

const (
	Circle ShapeType = "circle"
	Cross  ShapeType = "cross"
)

// Marker describes how landmarks are rendered on a preview image.
type Marker struct {
	Shape  ShapeType
	Size   float64
	Color  color.Color
	Stroke float64
}

// DefaultMarker draws small green dots.
var DefaultMarker = Marker{
	Shape:  Circle,
	Size:   2,
	Color:  color.NRGBA{R: 0x22, G: 0xdd, B: 0x44, A: 0xff},
	Stroke: 1,
}

// DrawLandmarks returns a copy of img with a marker at every landmark.
// Coordinates are scaled by scale, which lets model labels be drawn on the full image.
func DrawLandmarks(img image.Image, pts Landmarks, scale float64, m Marker) *image.NRGBA {
	dc := gg.NewContextForImage(img)
	dc.SetColor(m.Color)
	dc.SetLineWidth(m.Stroke)

	for _, p := range pts {
		x, y := p.X*scale, p.Y*scale
		switch m.Shape {
		case Cross:
			dc.DrawLine(x-m.Size, y-m.Size, x+m.Size, y+m.Size)
			dc.DrawLine(x-m.Size, y+m.Size, x+m.Size, y-m.Size)
			dc.Stroke()
		default:
			dc.DrawCircle(x, y, m.Size)
			dc.Fill()
		}
	}
	return ImgToNRGBA(dc.Image())
}
