package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/perfkit/internal/bench"
	"github.com/wesleyorama2/perfkit/internal/meter"
	"github.com/wesleyorama2/perfkit/internal/progress"
)

// testApp registers Calc.Add (ticks ops by 2) and Calc.Mul (ticks by 5).
func testApp() *App {
	ops := meter.NewCounter("ops", "ops", "")
	return &App{
		Name: "calc",
		Classes: []*bench.Class{{
			Name: "Calc",
			Callables: []*bench.Callable{
				bench.Op("Add", func() { ops.Add(2) }),
				bench.Op("Mul", func() { ops.Add(5) }, bench.WithRuns(2)),
			},
		}},
		Meters: []meter.Meter{ops},
	}
}

func execute(t *testing.T, app *App, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = Execute(app, args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExecute_Help(t *testing.T) {
	code, stdout, _ := execute(t, testApp())
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "perfkit")
	assert.Contains(t, stdout, "run")
	assert.Contains(t, stdout, "query")
}

func TestExecute_UnknownCommand(t *testing.T) {
	code, _, stderr := execute(t, testApp(), "bogus")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error:")
}

func TestRun_Text(t *testing.T) {
	code, stdout, _ := execute(t, testApp(), "run", "--runs", "3", "--no-color")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "calc - Running [2 operations, 5 runs]")
	assert.Contains(t, stdout, "calc - Completed ✓")
	assert.Contains(t, stdout, "Calc.Add")
	assert.Contains(t, stdout, "ops[ops]")
}

func TestRun_JSONOnStdout(t *testing.T) {
	code, stdout, stderr := execute(t, testApp(), "run", "--json", "--quiet")
	require.Equal(t, 0, code, stderr)

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, "calc", report["name"])
	assert.Equal(t, float64(12), report["elements"])
	assert.Contains(t, stderr, "PASSED")
}

func TestRun_UnknownFormat(t *testing.T) {
	code, _, stderr := execute(t, testApp(), "run", "--format", "csv")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown output format: csv")
}

func TestRun_InvalidOverride(t *testing.T) {
	code, _, stderr := execute(t, testApp(), "run", "--arrangement", "sideways")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid configuration")
}

func TestRun_ConfigFile(t *testing.T) {
	cfg := writeFile(t, "bench.yaml", `
name: from-config
runs: 2
include: ["Calc.Mul"]
thresholds:
  - target: Calc.Mul
    meter: ops
    expr: "avg == 5"
`)

	code, stdout, stderr := execute(t, testApp(), "run", "--config", cfg, "--no-color")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "from-config - Completed ✓")
	assert.Contains(t, stdout, "Runs:          2")
	assert.NotContains(t, stdout, "Calc.Add")
	assert.Contains(t, stdout, "✓ Calc.Mul ops[ops] avg == 5")
}

func TestRun_FailedThresholdExitCode(t *testing.T) {
	cfg := writeFile(t, "bench.json", `{"thresholds": [{"meter": "ops", "expr": "max < 1"}]}`)

	code, stdout, stderr := execute(t, testApp(), "run", "--config", cfg, "--no-color")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "Failed ✗")
	assert.NotContains(t, stderr, "Error:")
}

func TestRun_MissingConfig(t *testing.T) {
	code, _, stderr := execute(t, testApp(), "run", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "failed to read config file")
}

func TestRun_OutputFileAndQuery(t *testing.T) {
	dir := t.TempDir()
	report := filepath.Join(dir, "report.json")

	code, stdout, stderr := execute(t, testApp(), "run", "--output", report, "--no-color")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Completed ✓")

	code, stdout, stderr = execute(t, nil, "query", report, "$.elements")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "12\n", stdout)

	code, stdout, _ = execute(t, nil, "query", report, "$.classes[0].methods[*].name")
	require.Equal(t, 0, code)
	assert.Equal(t, "Calc.Add\nCalc.Mul\n", stdout)

	code, stdout, _ = execute(t, nil, "query", report, "$.classes[0].methods[1].stats['ops[ops]'].mean")
	require.Equal(t, 0, code)
	assert.Equal(t, "5\n", stdout)
}

func TestQuery_YAMLReport(t *testing.T) {
	report := filepath.Join(t.TempDir(), "report.yaml")
	code, _, stderr := execute(t, testApp(), "run", "--output", report, "--quiet")
	require.Equal(t, 0, code, stderr)

	code, stdout, stderr := execute(t, nil, "query", report, "$.passed")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "true\n", stdout)
}

func TestQuery_Errors(t *testing.T) {
	code, _, stderr := execute(t, nil, "query", filepath.Join(t.TempDir(), "missing.json"), "$.a")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "failed to read report")

	bad := writeFile(t, "bad.json", "{not json")
	code, _, _ = execute(t, nil, "query", bad, "$.a")
	assert.Equal(t, 1, code)

	code, _, _ = execute(t, nil, "query", bad)
	assert.Equal(t, 1, code)
}

func TestRun_MetricsTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "perfkit.prom")

	code, _, stderr := execute(t, testApp(), "run", "--quiet", "--metrics-textfile", path)
	require.Equal(t, 0, code, stderr)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `perfkit_elements_completed_total{operation="Calc.Add"} 10`)
	assert.Contains(t, string(data), "perfkit_run_finished 1")
}

func TestRun_ProgressStream(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	events := make(chan []progress.Event, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			events <- nil
			return
		}
		defer conn.Close()
		var got []progress.Event
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			var e progress.Event
			if json.Unmarshal(scanner.Bytes(), &e) == nil {
				got = append(got, e)
			}
		}
		events <- got
	}()

	code, _, stderr := execute(t, testApp(), "run", "--quiet", "--progress-addr", ln.Addr().String())
	require.Equal(t, 0, code, stderr)

	got := <-events
	require.NotEmpty(t, got)
	assert.Equal(t, progress.EventInit, got[0].Type)
	assert.NotEmpty(t, got[0].RunID)
	assert.Equal(t, map[string]int{"Calc.Add": 10, "Calc.Mul": 2}, got[0].Totals)
	assert.Equal(t, progress.EventFinished, got[len(got)-1].Type)
	assert.Len(t, got, 14)
}

func TestRun_ProgressAddrUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	code, _, stderr := execute(t, testApp(), "run", "--progress-addr", addr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "failed to connect to progress viewer")
}

func TestList(t *testing.T) {
	code, stdout, stderr := execute(t, testApp(), "list")
	require.Equal(t, 0, code, stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "OPERATION"))
	assert.True(t, strings.HasPrefix(lines[1], "Calc.Add"))
	assert.Equal(t, "2 operations, 12 runs", lines[3])
}

func TestList_JSONWithInvalid(t *testing.T) {
	app := testApp()
	app.Classes = append(app.Classes, &bench.Class{
		Name: "Broken",
		Callables: []*bench.Callable{
			bench.Op("Takes", func(n int) {}),
		},
	})

	code, stdout, stderr := execute(t, app, "list", "--json")
	require.Equal(t, 0, code, stderr)

	var l listing
	require.NoError(t, json.Unmarshal([]byte(stdout), &l))
	require.Len(t, l.Operations, 2)
	assert.Equal(t, plannedOperation{ID: "Calc.Mul", Runs: 2, TotalRuns: 2}, l.Operations[1])
	require.Len(t, l.Invalid, 1)
	assert.Contains(t, l.Invalid[0], "Broken.Takes")
}

func TestValidate(t *testing.T) {
	valid := writeFile(t, "ok.yaml", "runs: 5\narrangement: shuffle\n")
	code, stdout, _ := execute(t, nil, "validate", valid)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "is valid")

	invalid := writeFile(t, "bad.yaml", "arrangement: sideways\ngcProbability: 2\n")
	code, stdout, stderr := execute(t, nil, "validate", invalid)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "has 2 errors")
	assert.Contains(t, stdout, "arrangement")
	assert.Contains(t, stderr, "invalid configuration")

	schema := writeFile(t, "schema.yaml", "runs: many\n")
	code, _, stderr = execute(t, nil, "validate", schema)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "config does not match schema")
}
