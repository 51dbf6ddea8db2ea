package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/perfkit/internal/config"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config>",
		Short: "Check a configuration file without running anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := cfg.Validate(); err != nil {
				var verrs *config.ValidationErrors
				if errors.As(err, &verrs) {
					fmt.Fprintf(out, "%s has %d errors:\n", args[0], len(verrs.Errors))
					for _, e := range verrs.Errors {
						fmt.Fprintf(out, "  - %s\n", e.Error())
					}
					return fmt.Errorf("invalid configuration")
				}
				return err
			}

			fmt.Fprintf(out, "%s is valid\n", args[0])
			return nil
		},
	}
}
