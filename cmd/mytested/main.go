package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/framework"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/scenarios"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errScenariosFailed = errors.New("some scenarios failed")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mytested",
		Short:         "Run the fluent assertion self-check scenarios",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newListCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var params commandParams
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scenarios that match the filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runScenarios(cmd, &params)
			if err != nil && !errors.Is(err, errScenariosFailed) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err)
			}
			return err
		},
	}
	params.register(cmd.Flags())
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the names of all scenarios",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, s := range scenarios.All() {
				fmt.Fprintln(cmd.OutOrStdout(), s.Name)
			}
		},
	}
}

func runScenarios(cmd *cobra.Command, params *commandParams) error {
	cfg, filters, err := params.resolve(cmd.Flags())
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if cfg.DebugAll {
		if logger, err = zap.NewDevelopment(); err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
	}
	defer func() { _ = logger.Sync() }()

	if cfg.NoColor {
		color.NoColor = true
	}
	out := cmd.OutOrStdout()

	framework.PrintFilterDescription(out, filters)
	fmt.Fprintln(out, "Running scenarios")
	logger.Info("starting run",
		zap.Int("parallelism", cfg.Parallelism),
		zap.Duration("timeout", cfg.Timeout),
		zap.Strings("run", cfg.Run),
		zap.Strings("skip", cfg.Skip))

	testLogger := &framework.ConsoleTestLogger{
		DebugOutputOnFailure: cfg.Debug || cfg.DebugAll,
		DebugOutputOnSuccess: cfg.DebugAll,
		Out:                  out,
	}
	var chainLogger framework.Logger
	if cfg.DebugAll {
		chainLogger = framework.ZapLogger(logger)
	}
	results := framework.Run(filters.AsFilter, testLogger, func(c *framework.Context) {
		if err := scenarios.RunAll(c, cfg.Parallelism, cfg.Timeout, chainLogger); err != nil {
			logger.Debug("scenario failed", zap.Error(err))
		}
	})
	logger.Info("finished run", zap.Int("tests", len(results.Tests)), zap.Int("failures", len(results.Failures)))

	fmt.Fprintln(out)
	framework.PrintResults(out, results)
	if !results.OK() {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "To run only the failed scenarios again:")
		fmt.Fprintf(out, "  %s\n", rerunCommand(filepath.Base(os.Args[0]), params.configPath, results.Failures))
		return errScenariosFailed
	}
	return nil
}
