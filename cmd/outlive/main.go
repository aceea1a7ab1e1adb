// Package main provides the CLI entrypoint for outlive.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rpgo/outlive/internal/calculation"
	"github.com/rpgo/outlive/internal/config"
	"github.com/rpgo/outlive/internal/domain"
	"github.com/rpgo/outlive/internal/logging"
	"github.com/rpgo/outlive/internal/output"
)

const defaultConfigFile = "outlive.yaml"

var (
	configFile   string
	outputFormat string
	outputFile   string
	logLevel     string
	trials       int
	seed         uint64

	acceptableRisk float64

	exampleForce bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "outlive",
		Short:         "Monte Carlo estimate of the risk of outliving retirement savings",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", defaultConfigFile, "path to YAML or TOML configuration file")
	flags.StringVarP(&outputFormat, "format", "f", "", "report format override: console, csv, html, json")
	flags.StringVarP(&outputFile, "output", "o", "", "write the report to this file instead of stdout")
	flags.StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.IntVar(&trials, "trials", 0, "number of Monte Carlo trials (overrides configuration)")
	flags.Uint64Var(&seed, "seed", 0, "random seed (overrides configuration)")

	rootCmd.AddCommand(newSimulateCmd())
	rootCmd.AddCommand(newSaveCmd())
	rootCmd.AddCommand(newSweepCmd())
	rootCmd.AddCommand(newSensitivityCmd())
	rootCmd.AddCommand(newExampleCmd())

	return rootCmd
}

func newSimulateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simulate",
		Short: "Estimate depletion and outlive probabilities for the configured plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRun(cmd, func(ctx context.Context, r *run) (*output.Report, error) {
				result, err := r.engine.Estimate(ctx, r.cfg)
				if err != nil {
					return nil, err
				}
				return &output.Report{LifeTable: r.cfg.LifeTable.Name, Result: result}, nil
			})
		},
	}
}

func newSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Find the initial balance that meets an acceptable outlive risk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRun(cmd, func(ctx context.Context, r *run) (*output.Report, error) {
				target, err := r.engine.HowMuchToSave(ctx, r.cfg, riskFor(cmd, r))
				if err != nil {
					return nil, err
				}
				return &output.Report{LifeTable: r.cfg.LifeTable.Name, Savings: target}, nil
			})
		},
	}
	addRiskFlag(cmd)
	return cmd
}

func addRiskFlag(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&acceptableRisk, "risk", 0, "acceptable probability of outliving savings (overrides configuration)")
}

func riskFor(cmd *cobra.Command, r *run) float64 {
	if cmd.Flags().Changed("risk") {
		return acceptableRisk
	}
	return r.file.Savings.AcceptableRisk
}

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Estimate outlive probability across initial balances and allocations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRun(cmd, func(ctx context.Context, r *run) (*output.Report, error) {
				balances, allocations := config.SweepInputs(r.file)
				points, err := r.engine.SweepBalances(ctx, r.cfg, balances, allocations)
				if err != nil {
					return nil, err
				}
				return &output.Report{LifeTable: r.cfg.LifeTable.Name, Sweep: points}, nil
			})
		},
	}
}

func newSensitivityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sensitivity",
		Short: "Show how the savings target moves as each input is varied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRun(cmd, func(ctx context.Context, r *run) (*output.Report, error) {
				risk := riskFor(cmd, r)
				ranges := config.SensitivityInputs(r.file, r.cfg, risk)
				analysis, err := r.engine.Sensitivity(ctx, r.cfg, risk, ranges)
				if err != nil {
					return nil, err
				}
				return &output.Report{LifeTable: r.cfg.LifeTable.Name, Sensitivity: analysis}, nil
			})
		},
	}
	addRiskFlag(cmd)
	return cmd
}

func newExampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "example [path]",
		Short: "Write an example configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "outlive.example.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !exampleForce {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.NewInputParser().WriteExampleConfiguration(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Example configuration written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&exampleForce, "force", false, "overwrite an existing file")
	return cmd
}

// run is a loaded configuration ready for the engine.
type run struct {
	file   *domain.Configuration
	cfg    calculation.Config
	engine *calculation.MonteCarloEngine
}

// withRun loads the configuration and data, wires logging, runs fn and
// renders its report.
func withRun(cmd *cobra.Command, fn func(context.Context, *run) (*output.Report, error)) error {
	file, err := config.NewInputParser().LoadFromFile(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(file.Logging, logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	cfg, err := config.BuildEngineConfig(file)
	if err != nil {
		sugar.Errorw("failed to load data", "returns", file.Data.ReturnsFile, "life_table", file.Data.LifeTableFile, zap.Error(err))
		return err
	}
	if cmd.Flags().Changed("trials") {
		cfg.Trials = trials
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	sugar.Debugw("loaded data",
		"periods", cfg.Series.Len(),
		"assets", cfg.Series.Assets,
		"life_table", cfg.LifeTable.String())

	engine := calculation.NewMonteCarloEngine()
	engine.SetLogger(sugar)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := fn(ctx, &run{file: file, cfg: cfg, engine: engine})
	if err != nil {
		var cfgErr *domain.ConfigurationError
		if errors.As(err, &cfgErr) {
			sugar.Errorw("invalid configuration", "field", cfgErr.Field, "reason", cfgErr.Reason)
		}
		return err
	}

	format := file.Output.Format
	if outputFormat != "" {
		format = outputFormat
	}
	if outputFile != "" {
		f := output.GetFormatterByName(format)
		if f == nil {
			return output.Render(cmd.OutOrStdout(), format, report)
		}
		name, err := output.WriteFormatted(f, report, outputFile)
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		sugar.Infow("report written", "file", name, "format", f.Name())
		return nil
	}
	return output.Render(cmd.OutOrStdout(), format, report)
}
