package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/perfkit/internal/config"
	"github.com/wesleyorama2/perfkit/internal/engine"
	"github.com/wesleyorama2/perfkit/internal/output"
	"github.com/wesleyorama2/perfkit/internal/progress"
)

const dialTimeout = 5 * time.Second

// runOptions holds the flags of the run command.
type runOptions struct {
	configFile      string
	runs            int
	arrangement     string
	gcProbability   float64
	include         []string
	exclude         []string
	format          string
	jsonOutput      bool
	outputPath      string
	quiet           bool
	noColor         bool
	progressAddr    string
	metricsTextfile string
}

func newRunCmd(app *App) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the registered benchmarks",
		Long: `Run every registered benchmark operation and print a summary.

Settings come from an optional configuration file; flags override it:
  perfkit run --config bench.yaml --runs 50 --arrangement shuffle

Reports can be exported as json, yaml or junit:
  perfkit run --output report.json
  perfkit run --format junit > report.xml

The command exits with status 1 when a threshold fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmarks(cmd, app, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Configuration file (yaml or json)")
	flags.IntVarP(&opts.runs, "runs", "r", 0, "Default runs per operation")
	flags.StringVarP(&opts.arrangement, "arrangement", "a", "", "Arrangement: none, shuffle, interleaved")
	flags.Float64Var(&opts.gcProbability, "gc-probability", 0, "Fraction of runs preceded by a garbage collection")
	flags.StringSliceVar(&opts.include, "include", nil, "Only run operations matching these Class.Method patterns")
	flags.StringSliceVar(&opts.exclude, "exclude", nil, "Skip operations matching these Class.Method patterns")
	flags.StringVarP(&opts.format, "format", "f", "", "Report format (text, json, yaml, junit)")
	flags.BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	flags.StringVarP(&opts.outputPath, "output", "o", "", "Output file for report (default: stdout)")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Disable live progress output, show only pass/fail")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	flags.StringVar(&opts.progressAddr, "progress-addr", "", "Stream progress events as JSON lines to host:port")
	flags.StringVar(&opts.metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics of the run to this file")

	return cmd
}

// loadRunConfig reads the configuration file, if any, and applies the flag
// overrides.
func loadRunConfig(cmd *cobra.Command, app *App, opts *runOptions) (*config.BenchConfig, error) {
	cfg := &config.BenchConfig{}
	if opts.configFile != "" {
		loaded, err := config.LoadConfig(opts.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cfg.Name == "" {
		cfg.Name = app.Name
	}

	flags := cmd.Flags()
	if flags.Changed("runs") {
		cfg.Runs = opts.runs
	}
	if flags.Changed("arrangement") {
		cfg.Arrangement = opts.arrangement
	}
	if flags.Changed("gc-probability") {
		cfg.GCProbability = opts.gcProbability
	}
	if flags.Changed("include") {
		cfg.Include = opts.include
	}
	if flags.Changed("exclude") {
		cfg.Exclude = opts.exclude
	}
	return cfg, nil
}

// reportFormat resolves --format and --json. An empty result means the
// format follows the output file extension.
func reportFormat(opts *runOptions) (output.OutputFormat, error) {
	if opts.jsonOutput {
		return output.FormatJSON, nil
	}
	if opts.format == "" {
		if opts.outputPath == "" {
			return output.FormatText, nil
		}
		return "", nil
	}
	return output.ParseFormat(opts.format)
}

func runBenchmarks(cmd *cobra.Command, app *App, opts *runOptions) error {
	logger := newLogger(cmd)

	cfg, err := loadRunConfig(cmd, app, opts)
	if err != nil {
		return err
	}
	format, err := reportFormat(opts)
	if err != nil {
		return err
	}

	// A machine readable report on stdout moves the console to stderr.
	var consoleWriter io.Writer = cmd.OutOrStdout()
	if opts.outputPath == "" && format != output.FormatText {
		consoleWriter = cmd.ErrOrStderr()
	}
	console := output.NewConsole(output.ConsoleConfig{
		Name:    cfg.Name,
		Writer:  consoleWriter,
		Quiet:   opts.quiet,
		NoColor: opts.noColor,
	})

	runID := uuid.NewString()
	engineOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithRunID(runID),
		engine.WithMeters(app.Meters...),
		engine.WithListener(console),
	}

	if opts.progressAddr != "" {
		stream, err := progress.Dial(opts.progressAddr, runID, dialTimeout)
		if err != nil {
			return err
		}
		defer stream.Close()
		defer func() {
			if err := stream.Err(); err != nil {
				logger.Warn("progress stream interrupted", slog.String("addr", opts.progressAddr), slog.Any("error", err))
			}
		}()
		engineOpts = append(engineOpts, engine.WithListener(stream))
	}

	var collector *progress.Collector
	if opts.metricsTextfile != "" {
		collector, err = progress.NewCollector(nil)
		if err != nil {
			return err
		}
		engineOpts = append(engineOpts, engine.WithListener(collector))
	}

	eng, err := engine.NewEngine(cfg, app.Classes, engineOpts...)
	if err != nil {
		return err
	}

	logger.Debug("configuration loaded",
		slog.String("config", opts.configFile),
		slog.Int("runs", eng.Config().Runs),
		slog.String("arrangement", eng.Config().Arrangement),
		slog.Int("meters", len(eng.Meters())),
	)

	res, err := eng.Run()
	if err != nil {
		return fmt.Errorf("failed to run benchmarks: %w", err)
	}

	if collector != nil {
		if err := collector.WriteTextfile(opts.metricsTextfile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		logger.Debug("metrics written", slog.String("path", opts.metricsTextfile))
	}

	switch {
	case opts.outputPath != "":
		console.PrintSummary(res)
		if err := output.WriteFile(opts.outputPath, format, res); err != nil {
			return err
		}
		logger.Info("report written", slog.String("path", opts.outputPath))
	case format == output.FormatText:
		console.PrintSummary(res)
	default:
		console.PrintSummary(res)
		if err := output.Write(cmd.OutOrStdout(), format, res); err != nil {
			return err
		}
	}

	if !res.Passed {
		return errThresholdsFailed
	}
	return nil
}
