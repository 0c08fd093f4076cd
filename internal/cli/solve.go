package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"avular-packages/internal/app"
)

type solveOptions struct {
	Channels     []string
	Platform     string
	LockFilePath string
	NoVirtual    bool
}

func newSolveCommand() *cobra.Command {
	opts := solveOptions{}
	cmd := &cobra.Command{
		Use:   "solve <spec> [<spec> ...]",
		Short: "Resolve a set of match specs against one or more channels",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, opts, args)
		},
	}

	// Network fetch is out of scope (spec.md §1): each -c value is a path
	// to a local repodata.json file standing in for a fetched channel,
	// and also doubles as the channel label attached to solved records.
	cmd.Flags().StringSliceVarP(&opts.Channels, "channel", "c", []string{"conda-forge"}, "Repodata.json channel source path(s), repeatable")
	cmd.Flags().StringVar(&opts.Platform, "platform", "linux-64", "Target platform subdir")
	cmd.Flags().StringVar(&opts.LockFilePath, "lock-file", "", "Write the solved environment to this lock file path")
	cmd.Flags().BoolVar(&opts.NoVirtual, "no-detect-virtual", false, "Skip registering statically detected host virtual packages")

	_ = viper.BindPFlag("channel", cmd.Flags().Lookup("channel"))
	_ = viper.BindPFlag("platform", cmd.Flags().Lookup("platform"))
	_ = viper.BindPFlag("lock_file", cmd.Flags().Lookup("lock-file"))

	return cmd
}

func runSolve(cmd *cobra.Command, opts solveOptions, specs []string) error {
	channels := make([]app.ChannelSource, len(opts.Channels))
	for i, path := range opts.Channels {
		channels[i] = app.ChannelSource{Path: path, Channel: path}
	}

	service := app.NewService()
	result, err := service.Solve(cmd.Context(), app.SolveRequest{
		Channels:      channels,
		Platform:      opts.Platform,
		Specs:         specs,
		LockFilePath:  opts.LockFilePath,
		DetectVirtual: !opts.NoVirtual,
	})
	if err != nil {
		return err
	}

	for _, pkg := range result.Packages {
		if pkg.Build != "" {
			fmt.Fprintf(os.Stderr, "%s=%s=%s\n", pkg.Name, pkg.Version, pkg.Build)
		} else {
			fmt.Fprintf(os.Stderr, "%s=%s\n", pkg.Name, pkg.Version)
		}
	}
	if opts.LockFilePath != "" {
		fmt.Fprintf(os.Stderr, "wrote lock file: %s\n", opts.LockFilePath)
	}
	return nil
}
