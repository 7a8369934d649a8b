package main

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	landmark "github.com/llooww10120/2d-landmark-detection"
	"github.com/llooww10120/2d-landmark-detection/dataset"
	"github.com/llooww10120/2d-landmark-detection/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newStatsCmd(opts *globalOpts, e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Compute the per-channel mean and standard deviation of the images",
		Long: `Compute the per-channel mean and standard deviation of every kept image.
The result is printed as the [normalize] table of the configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, _, err := dataset.LoadEval(e.cfg, opts.root, opts.annotations, dataset.WithLogger(e.logger))
			if err != nil {
				return err
			}

			spinner := utils.NewSpinner(os.Stderr, utils.DecorateText("reading images", utils.DefaultMessage),
				ds.Len(), 80*time.Millisecond, true)
			spinner.Start()

			var cs dataset.ChannelStats
			for i := 0; i < ds.Len(); i++ {
				if err := cmd.Context().Err(); err != nil {
					spinner.Stop()
					return err
				}
				img, err := landmark.OpenImage(ds.Path(i))
				if err != nil {
					spinner.Stop()
					return err
				}
				if err := cs.Add(img); err != nil {
					spinner.Stop()
					return errors.Wrapf(err, "could not read %s", ds.Path(i))
				}
				spinner.Inc()
			}
			spinner.Stop()

			means, stds, err := cs.Result()
			if err != nil {
				return err
			}
			e.logger.Infow("channel statistics", "images", cs.Images(), "means", means, "stds", stds)

			fmt.Fprintln(os.Stderr)
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(map[string]landmark.NormalizeOptions{
				"normalize": {Means: means, Stds: stds},
			})
		},
	}
}
