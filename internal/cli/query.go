package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/perfkit/pkg/jsonpath"
)

func newQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <report> <path>",
		Short: "Extract values from an exported report",
		Long: `Extract values from a json or yaml report written by "perfkit run".

Paths use JSONPath syntax; [*] selects every element of an array:
  perfkit query report.json '$.passed'
  perfkit query report.json "$.classes[0].methods[*].stats['time[us]'].mean"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readReport(args[0])
			if err != nil {
				return err
			}

			values, err := jsonpath.Select(doc, args[1])
			if err != nil {
				return err
			}
			for _, v := range values {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}
}

// readReport returns the report at path as JSON, converting yaml reports.
func readReport(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read report: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return "", fmt.Errorf("failed to parse YAML report: %w", err)
		}
		data, err = json.Marshal(doc)
		if err != nil {
			return "", fmt.Errorf("report is not representable as JSON: %w", err)
		}
	}
	return string(data), nil
}
