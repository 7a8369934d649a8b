package main

import (
	"context"
	"fmt"
	"image"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	landmark "github.com/llooww10120/2d-landmark-detection"
	"github.com/llooww10120/2d-landmark-detection/dataset"
	"github.com/llooww10120/2d-landmark-detection/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

var validFormats = []string{"jpg", "png", "bmp"}

type previewOpts struct {
	out     string
	format  string
	count   int
	index   int
	workers int
	train   bool
	seed    int64
	cascade string
	opacity float64
}

// result holds the outcome of rendering one sample.
type result struct {
	path string
	err  error
}

func newPreviewCmd(gopts *globalOpts, e *env) *cobra.Command {
	opts := previewOpts{
		out:     "preview",
		format:  "png",
		count:   16,
		workers: runtime.NumCPU(),
		train:   true,
		opacity: dataset.DefaultRenderOptions.HeatmapOpacity,
	}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render transformed samples with their landmarks and heatmap",
		Long: `Render transformed samples with the ground-truth landmarks, the model label and,
in classifier mode, the heatmap overlay. Use "-" as output to write a single sample
selected with --index to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				opts.seed = e.cfg.Seed
			}
			if !isValidFormat(opts.format) {
				return errors.Errorf("%s file type not supported", opts.format)
			}
			ds, err := loadPreviewSet(gopts, e, opts)
			if err != nil {
				return err
			}
			if ds.Len() == 0 {
				return errors.New("no sample left to preview")
			}

			render := dataset.DefaultRenderOptions
			render.HeatmapOpacity = opts.opacity

			if opts.out == pipeName {
				if term.IsTerminal(int(os.Stdout.Fd())) {
					return errors.New("`-` should be used with a pipe for stdout")
				}
				if opts.index < 0 || opts.index >= ds.Len() {
					return errors.Errorf("index %d out of range [0, %d)", opts.index, ds.Len())
				}
				img, err := renderSample(ds, opts.seed, opts.index, render)
				if err != nil {
					return err
				}
				return landmark.EncodeImage(os.Stdout, img, "preview."+opts.format)
			}
			return runPreview(cmd.Context(), ds, opts, render, e)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.out, "out", "o", opts.out, `Destination directory, or "-" for stdout`)
	flags.StringVarP(&opts.format, "format", "f", opts.format, "Output format: "+strings.Join(validFormats, ", "))
	flags.IntVarP(&opts.count, "count", "n", opts.count, "Number of samples to render")
	flags.IntVar(&opts.index, "index", 0, "Sample written to stdout")
	flags.IntVar(&opts.workers, "conc", opts.workers, "Number of samples to render concurrently")
	flags.BoolVar(&opts.train, "train", opts.train, "Apply the training augmentation")
	flags.Int64Var(&opts.seed, "seed", 0, "Random seed, defaults to the configuration seed")
	flags.StringVar(&opts.cascade, "cc", "", "Pigo face cascade; samples without a face are dropped on load")
	flags.Float64Var(&opts.opacity, "opacity", opts.opacity, "Heatmap overlay opacity")
	return cmd
}

func loadPreviewSet(gopts *globalOpts, e *env, opts previewOpts) (*dataset.Dataset, error) {
	dsOpts := []dataset.Option{dataset.WithLogger(e.logger)}
	if opts.cascade != "" {
		filter, err := dataset.NewFaceFilter(opts.cascade)
		if err != nil {
			return nil, err
		}
		dsOpts = append(dsOpts, dataset.WithFaceFilter(filter))
	}

	if opts.train {
		train, _, err := dataset.LoadTrainVal(e.cfg, gopts.root, gopts.annotations, dsOpts...)
		return train, err
	}
	ds, _, err := dataset.LoadEval(e.cfg, gopts.root, gopts.annotations, dsOpts...)
	return ds, err
}

// runPreview renders the first samples concurrently into the destination directory.
func runPreview(ctx context.Context, ds *dataset.Dataset, opts previewOpts, render dataset.RenderOptions, e *env) error {
	if err := os.MkdirAll(opts.out, 0755); err != nil {
		return errors.Wrap(err, "unable to create the destination directory")
	}
	count := utils.Min(opts.count, ds.Len())
	// Limit the concurrently running workers to maxWorkers.
	if opts.workers <= 0 || opts.workers > maxWorkers {
		opts.workers = runtime.NumCPU()
	}

	spinner := utils.NewSpinner(os.Stderr,
		fmt.Sprintf("%s %s",
			utils.DecorateText("⚡ LMPREP", utils.StatusMessage),
			utils.DecorateText("⇢ rendering samples", utils.DefaultMessage),
		), count, 80*time.Millisecond, true)

	now := time.Now()
	spinner.Start()

	ch := make(chan result)
	done := make(chan struct{})
	indices := produce(done, count)

	var wg sync.WaitGroup
	wg.Add(opts.workers)
	for i := 0; i < opts.workers; i++ {
		go func() {
			defer wg.Done()
			consume(ds, opts, render, ch, done, indices)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(ch)
		wg.Wait()
	}()

	var errs error
	cancelled := false
	for res := range ch {
		spinner.Inc()
		if !cancelled && ctx.Err() != nil {
			cancelled = true
			close(done)
		}
		if res.err != nil {
			errs = multierr.Append(errs, res.err)
			continue
		}
		e.logger.Debugw("sample rendered", "path", res.path)
	}
	if !cancelled {
		close(done)
	}

	if errs != nil || cancelled {
		spinner.StopMsg = fmt.Sprintf("%s %s\n",
			utils.DecorateText("rendering samples failed...", utils.DefaultMessage),
			utils.DecorateText("✘", utils.ErrorMessage),
		)
		spinner.Stop()
		if cancelled {
			return ctx.Err()
		}
		return errs
	}

	spinner.StopMsg = fmt.Sprintf("%s %s\n",
		utils.Decoratef(utils.SuccessMessage, "%d samples saved into %s ✔", count, opts.out),
		utils.Decoratef(utils.DefaultMessage, "in %s", utils.FormatTime(time.Since(now))),
	)
	spinner.Stop()
	return nil
}

// produce sends the sample indices to render until count is reached or done is closed.
func produce(done <-chan struct{}, count int) <-chan int {
	indices := make(chan int)
	go func() {
		defer close(indices)
		for i := 0; i < count; i++ {
			select {
			case <-done:
				return
			case indices <- i:
			}
		}
	}()
	return indices
}

// consume renders the samples received on indices and reports every outcome on res.
func consume(
	ds *dataset.Dataset,
	opts previewOpts,
	render dataset.RenderOptions,
	res chan<- result,
	done <-chan struct{},
	indices <-chan int,
) {
	for i := range indices {
		name := strings.TrimSuffix(filepath.Base(ds.Entry(i).Image), filepath.Ext(ds.Entry(i).Image))
		dst := filepath.Join(opts.out, fmt.Sprintf("%04d_%s.%s", i, name, opts.format))
		err := writeSample(ds, opts.seed, i, render, dst)

		select {
		case <-done:
			return
		case res <- result{path: dst, err: err}:
		}
	}
}

// renderSample draws the i-th sample. Every sample owns a generator derived from the seed,
// so the output does not depend on the scheduling of the workers.
func renderSample(ds *dataset.Dataset, seed int64, i int, opts dataset.RenderOptions) (*image.NRGBA, error) {
	rng := rand.New(rand.NewSource(seed + int64(i)))
	s, err := ds.Sample(rng, i)
	if err != nil {
		return nil, err
	}
	return ds.Render(s, opts)
}

func writeSample(ds *dataset.Dataset, seed int64, i int, opts dataset.RenderOptions, dst string) error {
	img, err := renderSample(ds, seed, i, opts)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrap(err, "unable to create the destination file")
	}
	if err := landmark.EncodeImage(f, img, dst); err != nil {
		f.Close()
		// remove the partially written file in case of an error
		os.Remove(dst)
		return err
	}
	return f.Close()
}

// isValidFormat checks for the supported output formats.
func isValidFormat(format string) bool {
	for _, f := range validFormats {
		if f == format {
			return true
		}
	}
	return false
}
