package landmark

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDraw_Landmarks(t *testing.T) {
	black := color.NRGBA{A: 0xff}
	src := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 0xff
	}

	out := DrawLandmarks(src, Landmarks{{X: 2.5, Y: 2.5}}, 4, DefaultMarker)
	assert.Equal(t, src.Bounds(), out.Bounds())
	assert.Equal(t, DefaultMarker.Color, out.NRGBAAt(10, 10))
	assert.Equal(t, black, out.NRGBAAt(30, 30))
	assert.Equal(t, black, src.NRGBAAt(10, 10), "source image must not change")

	cross := Marker{Shape: Cross, Size: 4, Color: color.NRGBA{R: 0xff, A: 0xff}, Stroke: 2}
	out = DrawLandmarks(src, Landmarks{{X: 20, Y: 20}}, 1, cross)
	assert.NotEqual(t, black, out.NRGBAAt(17, 17))
	assert.Equal(t, black, out.NRGBAAt(20, 10))
}
