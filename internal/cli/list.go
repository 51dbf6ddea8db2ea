package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/perfkit/internal/config"
	"github.com/wesleyorama2/perfkit/internal/engine"
)

// plannedOperation is one row of `perfkit list`.
type plannedOperation struct {
	ID        string `json:"id"`
	Runs      int    `json:"runs"`
	Args      int    `json:"args"`
	TotalRuns int    `json:"totalRuns"`
}

type listing struct {
	Operations []plannedOperation `json:"operations"`
	Invalid    []string           `json:"invalid,omitempty"`
}

func newListCmd(app *App) *cobra.Command {
	var configFile string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the operations a run would execute",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &config.BenchConfig{}
			if configFile != "" {
				loaded, err := config.LoadConfig(configFile)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			eng, err := engine.NewEngine(cfg, app.Classes, engine.WithLogger(newLogger(cmd)))
			if err != nil {
				return err
			}

			methods, errs := eng.Plan()
			l := listing{Operations: []plannedOperation{}}
			for _, m := range methods {
				l.Operations = append(l.Operations, plannedOperation{
					ID:        m.ID(),
					Runs:      m.Runs(),
					Args:      len(m.Args()),
					TotalRuns: m.TotalRuns(),
				})
			}
			for _, e := range errs {
				l.Invalid = append(l.Invalid, e.Error())
			}

			if jsonOutput {
				data, err := json.MarshalIndent(l, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal JSON: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			printListing(cmd, l)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Configuration file (yaml or json)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the listing as JSON")
	return cmd
}

func printListing(cmd *cobra.Command, l listing) {
	out := cmd.OutOrStdout()

	width := len("OPERATION")
	for _, op := range l.Operations {
		if len(op.ID) > width {
			width = len(op.ID)
		}
	}
	fmt.Fprintf(out, "%-*s  %5s  %5s  %6s\n", width, "OPERATION", "RUNS", "ARGS", "TOTAL")
	total := 0
	for _, op := range l.Operations {
		fmt.Fprintf(out, "%-*s  %5d  %5d  %6d\n", width, op.ID, op.Runs, op.Args, op.TotalRuns)
		total += op.TotalRuns
	}
	fmt.Fprintf(out, "%d operations, %d runs\n", len(l.Operations), total)

	if len(l.Invalid) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Invalid operations:")
		for _, msg := range l.Invalid {
			fmt.Fprintf(out, "  - %s\n", msg)
		}
	}
}
