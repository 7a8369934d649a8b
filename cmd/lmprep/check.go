package main

import (
	"fmt"
	"os"
	"time"

	"github.com/llooww10120/2d-landmark-detection/dataset"
	"github.com/llooww10120/2d-landmark-detection/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newCheckCmd(opts *globalOpts, e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the annotations and the images they reference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			ds, report, err := dataset.LoadEval(e.cfg, opts.root, opts.annotations, dataset.WithLogger(e.logger))
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "%s %s\n",
				utils.DecorateText("⚡ LMPREP", utils.StatusMessage),
				utils.Decoratef(utils.DefaultMessage, "%d annotated samples, %d kept, %d collisions, %d out of frame",
					report.Total, report.Kept, report.Collisions, report.OutOfFrame),
			)

			spinner := utils.NewSpinner(os.Stderr, utils.DecorateText("checking images", utils.DefaultMessage),
				ds.Len(), 80*time.Millisecond, true)
			spinner.Start()
			err = ds.Verify(cmd.Context(), spinner.Inc)
			spinner.Stop()

			if err != nil {
				errs := multierr.Errors(err)
				for _, ferr := range errs {
					fmt.Fprintf(os.Stderr, "\n\t%s", utils.DecorateText(ferr.Error(), utils.DefaultMessage))
				}
				return errors.Errorf("%d of %d images failed the check", len(errs), ds.Len())
			}
			fmt.Fprintf(os.Stderr, "\n%s in %s\n",
				utils.DecorateText("all images are valid ✔", utils.SuccessMessage),
				utils.FormatTime(time.Since(now)),
			)
			return nil
		},
	}
}
