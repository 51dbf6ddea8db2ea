package output

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/perfkit/internal/engine"
	"github.com/wesleyorama2/perfkit/internal/meter"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
	// FormatJUnit outputs in JUnit XML format (for CI/CD integration)
	FormatJUnit OutputFormat = "junit"
)

// SupportedFormats returns every output format.
func SupportedFormats() []OutputFormat {
	return []OutputFormat{FormatText, FormatJSON, FormatYAML, FormatJUnit}
}

// ParseFormat returns the format named s.
func ParseFormat(s string) (OutputFormat, error) {
	for _, f := range SupportedFormats() {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format: %s", s)
}

// FormatFromPath picks a format from a file extension, defaulting to text.
func FormatFromPath(path string) OutputFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".xml":
		return FormatJUnit
	default:
		return FormatText
	}
}

// Write renders res to w in format. Text output never uses colors.
func Write(w io.Writer, format OutputFormat, res *engine.Result) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(NewReport(res), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON report: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		data, err := yaml.Marshal(NewReport(res))
		if err != nil {
			return fmt.Errorf("failed to marshal YAML report: %w", err)
		}
		_, err = fmt.Fprint(w, "---\n"+string(data))
		return err
	case FormatJUnit:
		data, err := xml.MarshalIndent(NewJUnit(res), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JUnit report: %w", err)
		}
		_, err = fmt.Fprintln(w, xml.Header+string(data))
		return err
	case FormatText, "":
		c := NewConsole(ConsoleConfig{Writer: w, NoColor: true})
		c.PrintSummary(res)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// WriteFile renders res to path. An empty format is derived from the
// extension.
func WriteFile(path string, format OutputFormat, res *engine.Result) error {
	if format == "" {
		format = FormatFromPath(path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := Write(f, format, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// JUnitTestSuites represents the root element containing all test suites
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite represents a JUnit test suite
type JUnitTestSuite struct {
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Time      float64         `xml:"time,attr"`
	Timestamp string          `xml:"timestamp,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
	SystemOut string          `xml:"system-out,omitempty"`
}

// JUnitTestCase represents a JUnit test case
type JUnitTestCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

// JUnitFailure represents a JUnit test failure
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Content string `xml:",chardata"`
}

// NewJUnit converts res into JUnit suites: one suite per class with one
// case per operation, plus a "thresholds" suite when thresholds are set.
// An operation fails when any failure was recorded for it.
func NewJUnit(res *engine.Result) *JUnitTestSuites {
	report := NewReport(res)
	timestamp := res.Start.Format(time.RFC3339)

	out := &JUnitTestSuites{Name: res.Name, Time: res.Duration.Seconds()}
	for _, class := range report.Classes {
		suite := JUnitTestSuite{
			Name:      class.Name,
			Timestamp: timestamp,
			TestCases: []JUnitTestCase{},
		}
		if len(class.Failures) > 0 {
			suite.Errors = len(class.Failures)
			suite.SystemOut = failureText(class.Failures)
		}
		for _, m := range class.Methods {
			tc := JUnitTestCase{
				Name:      m.Name,
				Classname: "perfkit." + class.Name,
				Time:      elapsedSeconds(m.Stats),
				SystemOut: statsText(m.Stats),
			}
			if len(m.Failures) > 0 {
				tc.Failure = &JUnitFailure{
					Message: fmt.Sprintf("%d failures recorded", len(m.Failures)),
					Type:    m.Failures[0].Kind,
					Content: failureText(m.Failures),
				}
				suite.Failures++
			}
			suite.Time += tc.Time
			suite.TestCases = append(suite.TestCases, tc)
		}
		suite.Tests = len(suite.TestCases)
		out.TestSuites = append(out.TestSuites, suite)
	}

	if len(res.Thresholds) > 0 {
		suite := JUnitTestSuite{Name: "thresholds", Timestamp: timestamp}
		for _, t := range res.Thresholds {
			tc := JUnitTestCase{
				Name:      strings.TrimSpace(fmt.Sprintf("%s %s %s", t.Target, t.Meter, t.Expression)),
				Classname: "perfkit.thresholds",
			}
			if !t.Passed {
				tc.Failure = &JUnitFailure{Message: t.Message, Type: "ThresholdError"}
				suite.Failures++
			}
			suite.TestCases = append(suite.TestCases, tc)
		}
		suite.Tests = len(suite.TestCases)
		out.TestSuites = append(out.TestSuites, suite)
	}

	for _, s := range out.TestSuites {
		out.Tests += s.Tests
		out.Failures += s.Failures
	}
	return out
}

// elapsedSeconds returns the summed time of the first time meter in stats,
// or 0 when no time meter was sampled.
func elapsedSeconds(stats map[string]Stats) float64 {
	for _, key := range sortedKeys(stats) {
		if !strings.HasPrefix(key, "time[") || !strings.HasSuffix(key, "]") {
			continue
		}
		unit, err := meter.ParseTimeUnit(key[len("time[") : len(key)-1])
		if err != nil {
			continue
		}
		return unit.Duration(stats[key].Sum).Seconds()
	}
	return 0
}

func statsText(stats map[string]Stats) string {
	if len(stats) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, key := range sortedKeys(stats) {
		s := stats[key]
		sb.WriteString(fmt.Sprintf("%s: n=%d mean=%s stddev=%s min=%s median=%s max=%s\n",
			key, s.Count, formatValue(s.Mean), formatValue(s.StdDev), formatValue(s.Min), formatValue(s.Median), formatValue(s.Max)))
	}
	return sb.String()
}

func failureText(failures []FailureReport) string {
	lines := make([]string, len(failures))
	for i, f := range failures {
		lines[i] = formatFailure(f)
	}
	return strings.Join(lines, "\n")
}
