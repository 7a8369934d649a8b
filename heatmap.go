package landmark

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// EncodeHeatmap builds a (len(label), grid, grid) float32 tensor holding a single 1
// per channel at the landmark cell [i, y, x].
// The label must hold integer coordinates inside the grid, and no two landmarks may
// share a cell; ConvertLabel rejects such samples upfront.
func EncodeHeatmap(label Landmarks, grid int) (*tensor.Dense, error) {
	if grid <= 0 {
		return nil, errors.Errorf("invalid heatmap grid size %d", grid)
	}
	plane := grid * grid
	data := make([]float32, len(label)*plane)
	used := make(map[int]int, len(label))

	for i, p := range label {
		x, y := int(p.X), int(p.Y)
		if float64(x) != p.X || float64(y) != p.Y {
			return nil, errors.Errorf("landmark %d has non integer coordinates (%v, %v)", i, p.X, p.Y)
		}
		if x < 0 || y < 0 || x >= grid || y >= grid {
			return nil, errors.Errorf("landmark %d at (%d, %d) is outside the %dx%d grid", i, x, y, grid, grid)
		}
		cell := y*grid + x
		if j, ok := used[cell]; ok {
			return nil, errors.Errorf("landmarks %d and %d share the cell (%d, %d)", j, i, x, y)
		}
		used[cell] = i
		data[i*plane+cell] = 1
	}
	return tensor.New(tensor.WithShape(len(label), grid, grid), tensor.WithBacking(data)), nil
}

// DecodeHeatmap returns, for every channel, the cell holding the maximum value.
func DecodeHeatmap(t *tensor.Dense) (Landmarks, error) {
	data, c, plane, err := imageData(t)
	if err != nil {
		return nil, err
	}
	w := t.Shape()[2]
	out := make(Landmarks, c)
	for ch := 0; ch < c; ch++ {
		best := 0
		pix := data[ch*plane : (ch+1)*plane]
		for i, v := range pix {
			if v > pix[best] {
				best = i
			}
		}
		out[ch] = Point{X: float64(best % w), Y: float64(best / w)}
	}
	return out, nil
}

// HeatmapImage collapses all channels of a heatmap into a single red mask on black,
// scaled to size x size pixels with nearest neighbor sampling.
func HeatmapImage(t *tensor.Dense, size int) (*image.NRGBA, error) {
	data, c, plane, err := imageData(t)
	if err != nil {
		return nil, err
	}
	shape := t.Shape()
	h, w := shape[1], shape[2]
	mask := image.NewNRGBA(image.Rect(0, 0, w, h))

	for i := 0; i < plane; i++ {
		var v float32
		for ch := 0; ch < c; ch++ {
			if data[ch*plane+i] > v {
				v = data[ch*plane+i]
			}
		}
		if v > 1 {
			v = 1
		}
		mask.SetNRGBA(i%w, i/w, color.NRGBA{R: uint8(v * 255), A: 0xff})
	}
	return imaging.Resize(mask, size, size, imaging.NearestNeighbor), nil
}
