// Package cli implements the perfkit command line on top of a fixed set of
// benchmark classes compiled into the binary.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/perfkit/internal/bench"
	"github.com/wesleyorama2/perfkit/internal/meter"
)

var version = "0.1.0"

// errThresholdsFailed makes the process exit with status 1 once the summary
// has already been printed.
var errThresholdsFailed = errors.New("thresholds failed")

// App is what the commands operate on: the registered classes and the
// meters they tick.
type App struct {
	// Name is used when the configuration does not name the run.
	Name    string
	Classes []*bench.Class
	Meters  []meter.Meter
}

// NewRootCmd creates the command tree for app.
func NewRootCmd(app *App) *cobra.Command {
	if app == nil {
		app = &App{}
	}

	root := &cobra.Command{
		Use:     "perfkit",
		Short:   "Run micro-benchmarks and summarize their measurements",
		Version: version,
		Long: `perfkit runs registered benchmark operations a configured number of times,
measures every run with one or more meters and reports a statistical summary
per operation, class and run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// If no subcommand is provided, print help
			return cmd.Help()
		},
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging on stderr")

	root.AddCommand(newRunCmd(app))
	root.AddCommand(newListCmd(app))
	root.AddCommand(newValidateCmd())
	root.AddCommand(newQueryCmd())
	return root
}

// Execute runs the command line for app and returns the process exit code.
func Execute(app *App, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd(app)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		if !errors.Is(err, errThresholdsFailed) {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return 1
	}
	return 0
}

// newLogger returns a text logger on the command's stderr. --verbose
// lowers the level to debug.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
