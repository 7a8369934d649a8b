package dataset

import (
	"math/rand"
	"path/filepath"

	landmark "github.com/llooww10120/2d-landmark-detection"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorgonia.org/tensor"
)

// Entry is an annotation that passed label conversion.
type Entry struct {
	Image string
	// Label is the model label: scaled and rounded coordinates.
	Label landmark.Landmarks
	// GT is the full resolution ground-truth label.
	GT landmark.Landmarks
}

// Sample is a training or evaluation sample ready for the model.
type Sample struct {
	// Image is the normalized (3, H, W) image tensor.
	Image *tensor.Dense
	// Label is the transformed model label.
	Label landmark.Landmarks
	// Heatmap is the (68, grid, grid) encoding of Label in classifier mode, nil otherwise.
	Heatmap *tensor.Dense
	// GT is the transformed ground-truth label.
	GT landmark.Landmarks
}

// Report counts the outcome of filtering a list of records.
type Report struct {
	Total      int
	Kept       int
	Collisions int
	OutOfFrame int
	// NoFace counts the samples dropped by the face filter.
	NoFace int
}

// Filter converts every record into an entry and drops the ones which cannot be encoded:
// landmarks colliding on the label grid or falling outside the labelled frame of
// frameSize pixels.
func Filter(recs []Record, mode landmark.Mode, frameSize int) ([]Entry, Report, error) {
	report := Report{Total: len(recs)}
	entries := make([]Entry, 0, len(recs))
	labelBound := float64(frameSize) * mode.ScaleRatio()

	for i, rec := range recs {
		ok, label, err := landmark.ConvertLabel(rec.Landmarks, mode)
		if err != nil {
			return nil, report, errors.Wrapf(err, "sample %d (%s)", i, rec.Image)
		}
		if !ok {
			report.Collisions++
			continue
		}
		if !label.Within(labelBound) || !rec.Landmarks.Within(float64(frameSize)) {
			report.OutOfFrame++
			continue
		}
		entries = append(entries, Entry{
			Image: rec.Image,
			Label: label,
			GT:    rec.Landmarks.Clone(),
		})
	}
	report.Kept = len(entries)
	return entries, report, nil
}

// Split shuffles the entries with rng and cuts them into a training part holding
// ratio of the entries and a validation part holding the rest.
func Split(entries []Entry, ratio float64, rng *rand.Rand) ([]Entry, []Entry, error) {
	if ratio <= 0 || ratio > 1 {
		return nil, nil, errors.Errorf("split ratio %v out of (0, 1]", ratio)
	}
	shuffled := append([]Entry(nil), entries...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	n := int(float64(len(shuffled)) * ratio)
	return shuffled[:n], shuffled[n:], nil
}

// Dataset serves transformed samples of a list of entries whose images live under root.
type Dataset struct {
	root      string
	entries   []Entry
	transform *landmark.Transform
	gridSize  int
	filter    *FaceFilter
	logger    *zap.SugaredLogger
}

// Option customizes a Dataset.
type Option func(*Dataset)

// WithLogger sets the dataset logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(d *Dataset) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithFaceFilter makes LoadTrainVal and LoadEval drop the samples whose image
// contains no detectable face.
func WithFaceFilter(f *FaceFilter) Option {
	return func(d *Dataset) {
		d.filter = f
	}
}

// New returns a dataset serving entries through the transform.
func New(root string, entries []Entry, tr *landmark.Transform, gridSize int, opts ...Option) *Dataset {
	d := &Dataset{
		root:      root,
		entries:   entries,
		transform: tr,
		gridSize:  gridSize,
		logger:    zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Len returns the number of entries.
func (d *Dataset) Len() int {
	return len(d.entries)
}

// Entry returns the i-th entry.
func (d *Dataset) Entry(i int) Entry {
	return d.entries[i]
}

// Path returns the image path of the i-th entry.
func (d *Dataset) Path(i int) string {
	return filepath.Join(d.root, d.entries[i].Image)
}

// Sample decodes the i-th image and runs it through the transform. The heatmap is
// regenerated on every call.
func (d *Dataset) Sample(rng *rand.Rand, i int) (Sample, error) {
	if i < 0 || i >= len(d.entries) {
		return Sample{}, errors.Errorf("sample index %d out of range [0, %d)", i, len(d.entries))
	}
	e := d.entries[i]

	img, err := landmark.OpenImage(d.Path(i))
	if err != nil {
		return Sample{}, err
	}

	t, label, gt, err := d.transform.Apply(rng, img, e.Label, e.GT)
	if err != nil {
		return Sample{}, errors.Wrapf(err, "could not transform %s", e.Image)
	}

	s := Sample{Image: t, Label: label, GT: gt}
	if d.transform.Mode() == landmark.Classifier {
		if s.Heatmap, err = landmark.EncodeHeatmap(label, d.gridSize); err != nil {
			return Sample{}, errors.Wrapf(err, "could not encode %s", e.Image)
		}
	}
	d.logger.Debugw("sample ready", "index", i, "image", e.Image)
	return s, nil
}

// LoadTrainVal reads the annotation file, drops the samples which cannot be encoded and
// splits the rest into a training dataset with augmentation and a validation dataset
// without it.
func LoadTrainVal(cfg landmark.Config, root, annotPath string, opts ...Option) (*Dataset, *Dataset, error) {
	entries, report, err := loadEntries(cfg, root, annotPath, opts)
	if err != nil {
		return nil, nil, err
	}
	train, val, err := Split(entries, cfg.SplitRatio, rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		return nil, nil, err
	}

	trainTr, err := landmark.NewTransform(cfg, true)
	if err != nil {
		return nil, nil, err
	}
	valTr, err := landmark.NewTransform(cfg, false)
	if err != nil {
		return nil, nil, err
	}

	trainSet := New(root, train, trainTr, cfg.Heatmap.GridSize, opts...)
	valSet := New(root, val, valTr, cfg.Heatmap.GridSize, opts...)
	trainSet.logger.Infow("annotations loaded",
		"total", report.Total,
		"kept", report.Kept,
		"collisions", report.Collisions,
		"out_of_frame", report.OutOfFrame,
		"no_face", report.NoFace,
		"train", len(train),
		"val", len(val),
	)
	return trainSet, valSet, nil
}

// LoadEval reads the annotation file and serves every encodable sample without augmentation.
func LoadEval(cfg landmark.Config, root, annotPath string, opts ...Option) (*Dataset, Report, error) {
	entries, report, err := loadEntries(cfg, root, annotPath, opts)
	if err != nil {
		return nil, report, err
	}
	tr, err := landmark.NewTransform(cfg, false)
	if err != nil {
		return nil, report, err
	}
	return New(root, entries, tr, cfg.Heatmap.GridSize, opts...), report, nil
}

// loadEntries reads and filters the annotations. With a face filter among opts, the
// images of the kept entries are decoded once and the faceless ones dropped.
func loadEntries(cfg landmark.Config, root, annotPath string, opts []Option) ([]Entry, Report, error) {
	recs, err := LoadAnnotations(annotPath)
	if err != nil {
		return nil, Report{}, err
	}
	entries, report, err := Filter(recs, cfg.Mode(), cfg.ImageSize)
	if err != nil {
		return nil, report, err
	}

	settings := New(root, nil, nil, cfg.Heatmap.GridSize, opts...)
	if settings.filter == nil {
		return entries, report, nil
	}
	entries, report.NoFace, err = settings.filter.dropFaceless(root, entries)
	if err != nil {
		return nil, report, err
	}
	report.Kept = len(entries)
	settings.logger.Debugw("face filter applied", "dropped", report.NoFace)
	return entries, report, nil
}
