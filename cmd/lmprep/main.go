package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	landmark "github.com/llooww10120/2d-landmark-detection"
	"github.com/llooww10120/2d-landmark-detection/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const helpBanner = `
┬  ┌┬┐┌─┐┬─┐┌─┐┌─┐
│  │││├─┘├┬┘├┤ ├─┘
┴─┘┴ ┴┴  ┴└─└─┘┴

Facial landmark dataset preparation.
    Version: %s
`

// pipeName is the file name that indicates stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

// globalOpts holds the flags shared by every command.
type globalOpts struct {
	config      string
	root        string
	annotations string
	logLevel    string
	logFile     string
}

// env is the state built once before a command runs.
type env struct {
	cfg    landmark.Config
	logger *zap.SugaredLogger
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, utils.DecorateText(err.Error(), utils.ErrorMessage))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts globalOpts
	e := &env{}

	root := &cobra.Command{
		Use:          "lmprep",
		Short:        "Inspect and preview facial landmark training data",
		Long:         fmt.Sprintf(helpBanner, Version),
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := utils.NewLogger(utils.LogOptions{
				Level:      opts.logLevel,
				File:       opts.logFile,
				MaxSizeMB:  10,
				MaxBackups: 3,
			})
			if err != nil {
				return err
			}
			e.logger = logger

			e.cfg = landmark.DefaultConfig()
			if opts.config != "" {
				if e.cfg, err = landmark.LoadConfig(opts.config); err != nil {
					return err
				}
			}
			return e.cfg.Validate()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.config, "config", "c", "", "TOML configuration file")
	flags.StringVarP(&opts.root, "root", "r", ".", "Directory holding the images")
	flags.StringVarP(&opts.annotations, "annotations", "a", "annotations.json", "Annotation file")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flags.StringVar(&opts.logFile, "log-file", "", "Also write JSON logs into this rotated file")

	root.AddCommand(newCheckCmd(&opts, e))
	root.AddCommand(newStatsCmd(&opts, e))
	root.AddCommand(newPreviewCmd(&opts, e))
	return root
}
