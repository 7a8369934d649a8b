package dataset

import (
	"context"
	"image"
	"os"

	"github.com/llooww10120/2d-landmark-detection/utils"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Verify checks that every entry points to a readable image of the size expected by the
// transform. All problems are reported, not just the first one. The optional progress
// callback is invoked once per checked entry.
func (d *Dataset) Verify(ctx context.Context, progress func()) error {
	size := d.transform.ImageSize()

	var errs error
	for i, e := range d.entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := checkImage(d.Path(i), size); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "sample %d (%s)", i, e.Image))
		}
		if progress != nil {
			progress()
		}
	}
	return errs
}

func checkImage(path string, size int) error {
	if !utils.IsImageFile(path) {
		return errors.Errorf("%s is missing or is not an image", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return errors.Wrap(err, "could not decode the image header")
	}
	if cfg.Width != size || cfg.Height != size {
		return errors.Errorf("expected a %dx%d image, got %dx%d", size, size, cfg.Width, cfg.Height)
	}
	return nil
}
