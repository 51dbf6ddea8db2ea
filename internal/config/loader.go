package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/perfkit/internal/arrangement"
	"github.com/wesleyorama2/perfkit/pkg/jsonschema"
)

// DefaultRuns is the run count applied when none is configured.
const DefaultRuns = 10

//go:embed schema.json
var schemaJSON []byte

var documentSchema = jsonschema.MustCompile("perfkit-config.json", schemaJSON)

// Schema returns the JSON schema configuration documents are checked
// against.
func Schema() []byte {
	out := make([]byte, len(schemaJSON))
	copy(out, schemaJSON)
	return out
}

// LoadConfig loads a benchmark configuration from a file.
//
// The file format is determined by extension:
//   - .yaml, .yml -> YAML
//   - .json -> JSON
//
// Returns the parsed BenchConfig or an error if parsing fails.
func LoadConfig(path string) (*BenchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data, path)
}

// ParseConfig parses configuration data.
//
// The format is determined by the file extension in path, or defaults to
// YAML if the path is empty or has an unknown extension. The document is
// checked against the configuration schema before it is decoded.
func ParseConfig(data []byte, path string) (*BenchConfig, error) {
	var config BenchConfig

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := documentSchema.ValidateJSON(data); err != nil {
			return nil, fmt.Errorf("config does not match schema: %w", err)
		}
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		var doc interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			if ext == ".yaml" || ext == ".yml" || ext == "" {
				return nil, fmt.Errorf("failed to parse YAML config: %w", err)
			}
			return nil, fmt.Errorf("failed to parse config (unknown format %s): %w", ext, err)
		}
		if err := validateDocument(doc); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	return &config, nil
}

// validateDocument checks a decoded YAML document against the schema by
// round-tripping it through JSON.
func validateDocument(doc interface{}) error {
	if doc == nil {
		// empty file
		return nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("config is not representable as JSON: %w", err)
	}
	if err := documentSchema.ValidateJSON(data); err != nil {
		return fmt.Errorf("config does not match schema: %w", err)
	}
	return nil
}

// ApplyDefaults fills in unset fields: runs, arrangement and a
// microsecond time meter.
func ApplyDefaults(cfg *BenchConfig) {
	if cfg.Runs == 0 {
		cfg.Runs = DefaultRuns
	}
	if cfg.Arrangement == "" {
		cfg.Arrangement = string(arrangement.KindNone)
	}
	if len(cfg.Meters) == 0 {
		cfg.Meters = []MeterConfig{{Type: "time", Unit: "us"}}
	}
}

// Default returns a configuration with every default applied.
func Default() *BenchConfig {
	cfg := &BenchConfig{}
	ApplyDefaults(cfg)
	return cfg
}
