// Package cli wires the bridge, the model layer and the samplers into the
// rethinking command.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dot5enko/rethinking-bridge/bridge"
	"github.com/dot5enko/rethinking-bridge/config"
	"github.com/dot5enko/rethinking-bridge/dataset"
	"github.com/dot5enko/rethinking-bridge/logging"
	"github.com/spf13/cobra"
)

type app struct {
	cfgFile   string
	logLevel  string
	cfg       config.Config
	stdout    io.Writer
	stderr    io.Writer
	fetcher   *dataset.Fetcher
	newBridge func(ctx context.Context, cfg config.Config) (*bridge.Bridge, error)
}

func startBridge(ctx context.Context, cfg config.Config) (*bridge.Bridge, error) {

	args, err := bridge.ParseCommandLine(cfg.Interpreter)
	if err != nil {
		return nil, err
	}

	session, err := bridge.StartR(ctx, args)
	if err != nil {
		return nil, err
	}

	return bridge.New(session, bridge.WithTimeout(cfg.Timeout)), nil
}

func newRootCommand(a *app) *cobra.Command {

	root := &cobra.Command{
		Use:           "rethinking",
		Short:         "Statistical rethinking workflows on top of an R session",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.LogLevel = a.logLevel
			}

			if _, err := logging.Setup(cfg.LogLevel, a.stderr); err != nil {
				return err
			}

			a.cfg = cfg
			return nil
		},
	}

	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./rethinking.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		newEvalCommand(a),
		newFitCommand(a),
		newPriorCommand(a),
		newPredictCommand(a),
		newSummaryCommand(a),
	)

	return root
}

func run(ctx context.Context, a *app, args []string) int {

	root := newRootCommand(a)
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		logging.PrintError(a.stderr, err)
		return 1
	}
	return 0
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context) int {
	a := &app{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		fetcher:   dataset.NewFetcher(nil),
		newBridge: startBridge,
	}
	return run(ctx, a, os.Args[1:])
}

func (a *app) withBridge(ctx context.Context, fn func(b *bridge.Bridge) error) error {

	b, err := a.newBridge(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("unable to start foreign environment: %w", err)
	}

	runErr := fn(b)
	closeErr := b.Close()

	if runErr != nil {
		return runErr
	}
	return closeErr
}
