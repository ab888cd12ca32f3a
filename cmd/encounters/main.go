package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rgehrsitz/encounters/internal/calculation"
	"github.com/rgehrsitz/encounters/internal/config"
	"github.com/rgehrsitz/encounters/internal/datastore"
	"github.com/rgehrsitz/encounters/internal/logging"
	"github.com/rgehrsitz/encounters/internal/output"
	"github.com/rgehrsitz/encounters/internal/service"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "encounters %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.GoVersion
	}
	return ""
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "encounters",
		Short:         "Expected encounters calculator",
		Long:          "Estimates how many more times two people will see each other, from national life tables and a visit frequency",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("data-dir", "", "Directory of <ISO3>_<sex>.json life tables (env ENCOUNTERS_DATA_DIR)")
	pf.String("table-url", "", "Base URL to fetch life tables from (env ENCOUNTERS_TABLE_URL)")
	pf.String("db", "", "SQLite database of imported life tables (env ENCOUNTERS_DB_PATH)")
	pf.Int("trials", 0, "Monte Carlo trials per calculation (env ENCOUNTERS_TRIALS)")
	pf.Int("workers", 0, "Goroutines used for the trials (env ENCOUNTERS_WORKERS)")
	pf.String("log-level", "", "Log level: debug, info, warn, error (env ENCOUNTERS_LOG_LEVEL)")
	pf.Bool("debug", false, "Enable debug output for the simulation")

	root.AddCommand(calculateCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(sweepCmd())
	root.AddCommand(tablesCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())
	return root
}

// settings resolves the environment and applies any flags the user set.
func settings(cmd *cobra.Command) (*config.Environment, error) {
	cfg, err := config.LoadEnvironment()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir, _ = flags.GetString("data-dir")
	}
	if flags.Changed("table-url") {
		cfg.TableURL, _ = flags.GetString("table-url")
	}
	if flags.Changed("db") {
		cfg.DBPath, _ = flags.GetString("db")
	}
	if flags.Changed("trials") {
		cfg.Trials, _ = flags.GetInt("trials")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if debugMode, _ := flags.GetBool("debug"); debugMode {
		cfg.LogLevel = "debug"
	}
	if cfg.Trials <= 0 || cfg.Workers <= 0 {
		return nil, fmt.Errorf("trials and workers must be positive")
	}
	return cfg, nil
}

// app is everything a command needs to answer requests.
type app struct {
	cfg    *config.Environment
	logger *zap.Logger
	svc    *service.Service
	closer func() error
}

func (r *app) Close() {
	_ = r.logger.Sync()
	if r.closer != nil {
		if err := r.closer(); err != nil {
			r.logger.Warn("close table store", zap.Error(err))
		}
	}
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := settings(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel, logging.EncodingConsole)
	if err != nil {
		return nil, err
	}

	src, closer, err := openSource(cfg)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	engine := calculation.NewSurvivalEngineWithConfig(calculation.SimulationConfig{
		Trials:  cfg.Trials,
		Workers: cfg.Workers,
	})
	if logger.Core().Enabled(zap.DebugLevel) {
		engine.SetLogger(logger.Sugar())
	}

	return &app{cfg: cfg, logger: logger, svc: service.New(src, engine), closer: closer}, nil
}

// openSource builds the lookup chain: imported database, then local
// directory, then remote URL.
func openSource(cfg *config.Environment) (datastore.Source, func() error, error) {
	var chain datastore.Chain
	var closer func() error
	if cfg.DBPath != "" {
		store, err := datastore.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		chain = append(chain, store)
		closer = store.Close
	}
	if cfg.DataDir != "" {
		chain = append(chain, datastore.NewDirSource(cfg.DataDir))
	}
	if cfg.TableURL != "" {
		chain = append(chain, datastore.NewHTTPSource(cfg.TableURL, time.Duration(cfg.FetchTimeout)*time.Second))
	}
	return datastore.NewCachedSource(chain), closer, nil
}

func calculateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calculate [scenario-file]",
		Short: "Calculate expected encounters for a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("format")
			f := output.GetFormatterByName(outputFormat)
			if f == nil {
				return fmt.Errorf("unknown output format: %s (valid: %s)", outputFormat, strings.Join(output.AvailableFormatterNames(), ", "))
			}

			input, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.svc.Calculate(context.Background(), input)
			if err != nil {
				return err
			}
			data, err := f.Format(report)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringP("format", "f", "console", "Output format (console, console-lite, json, csv)")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [scenario-file]",
		Short: "Validate a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scenario file %s is valid (%d visits per year)\n", args[0], input.VisitsPerYear)
			return nil
		},
	}
}

func sweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep [scenario-file]",
		Short: "Compare expected encounters across visit frequencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			visitsStr, _ := cmd.Flags().GetString("visits")
			frequencies, err := parseFrequencies(visitsStr)
			if err != nil {
				return err
			}
			outputFormat, _ := cmd.Flags().GetString("format")

			input, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			sweep, err := a.svc.Sweep(context.Background(), input, frequencies)
			if err != nil {
				return err
			}
			data, err := output.FormatSweep(sweep, outputFormat)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().String("visits", "1,4,12,52", "Comma-separated visits per year to compare")
	cmd.Flags().StringP("format", "f", "console", "Output format (console, json, csv)")
	return cmd
}

func parseFrequencies(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid visits value %q: %w", part, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
