package dataset

import (
	"image"
	"math"

	landmark "github.com/llooww10120/2d-landmark-detection"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// ChannelStats accumulates per-channel pixel statistics over a set of images, in the
// [0, 1] range used by the image tensors. The results can replace the default
// normalization constants.
type ChannelStats struct {
	means [landmark.Channels]stats.Float64Data
	sqs   [landmark.Channels]stats.Float64Data
	count [landmark.Channels]stats.Float64Data
}

// Add folds the pixels of img into the statistics.
func (cs *ChannelStats) Add(img image.Image) error {
	nrgba := landmark.ImgToNRGBA(img)
	w, h := nrgba.Bounds().Dx(), nrgba.Bounds().Dy()
	if w == 0 || h == 0 {
		return errors.New("empty image")
	}

	var planes [landmark.Channels]stats.Float64Data
	for c := range planes {
		planes[c] = make(stats.Float64Data, 0, w*h)
	}
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		for x := 0; x < w; x++ {
			for c := 0; c < landmark.Channels; c++ {
				planes[c] = append(planes[c], float64(row[x*4+c])/255)
			}
		}
	}

	for c, plane := range planes {
		mean, err := plane.Mean()
		if err != nil {
			return err
		}
		variance, err := plane.PopulationVariance()
		if err != nil {
			return err
		}
		cs.means[c] = append(cs.means[c], mean)
		cs.sqs[c] = append(cs.sqs[c], variance+mean*mean)
		cs.count[c] = append(cs.count[c], float64(len(plane)))
	}
	return nil
}

// Images returns the number of images folded in so far.
func (cs *ChannelStats) Images() int {
	return len(cs.means[0])
}

// Result returns the per-channel mean and population standard deviation.
func (cs *ChannelStats) Result() (means, stds []float64, err error) {
	if cs.Images() == 0 {
		return nil, nil, errors.New("no images folded into the statistics")
	}
	means = make([]float64, landmark.Channels)
	stds = make([]float64, landmark.Channels)

	for c := 0; c < landmark.Channels; c++ {
		total, err := cs.count[c].Sum()
		if err != nil {
			return nil, nil, err
		}
		var mean, sq float64
		for i := range cs.means[c] {
			weight := cs.count[c][i] / total
			mean += cs.means[c][i] * weight
			sq += cs.sqs[c][i] * weight
		}
		means[c] = mean
		stds[c] = math.Sqrt(math.Max(sq-mean*mean, 0))
	}
	return means, stds, nil
}
