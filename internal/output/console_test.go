package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/wesleyorama2/perfkit/internal/engine"
	"github.com/wesleyorama2/perfkit/internal/result"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected string
	}{
		{500 * time.Millisecond, "500ms"},
		{1 * time.Second, "1.0s"},
		{1*time.Minute + 30*time.Second, "1m 30s"},
		{1*time.Hour + 2*time.Minute + 3*time.Second, "1h 02m 03s"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := formatDuration(tt.duration)
			if result != tt.expected {
				t.Errorf("formatDuration(%v) = %q, want %q", tt.duration, result, tt.expected)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		number   int64
		expected string
	}{
		{0, "0"},
		{100, "100"},
		{1000, "1,000"},
		{12345, "12,345"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := formatNumber(tt.number)
			if result != tt.expected {
				t.Errorf("formatNumber(%d) = %q, want %q", tt.number, result, tt.expected)
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{0, "0"},
		{2, "2.00"},
		{-3, "-3.00"},
		{1234.4, "1,234"},
		{0.01234, "0.0123"},
		{2.5e6, "2.500e+06"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := formatValue(tt.value)
			if result != tt.expected {
				t.Errorf("formatValue(%g) = %q, want %q", tt.value, result, tt.expected)
			}
		})
	}
}

func TestFormatFailure(t *testing.T) {
	got := formatFailure(FailureReport{Kind: "validation", Class: "Calc", Role: "beforeEachRun", Hook: "setUp", Message: "takes arguments"})
	want := "validation Calc (beforeEachRun setUp): takes arguments"
	if got != want {
		t.Errorf("formatFailure() = %q, want %q", got, want)
	}
}

func TestConsoleCreation(t *testing.T) {
	var buf bytes.Buffer

	console := NewConsole(ConsoleConfig{Name: "calc", Writer: &buf})
	if console == nil {
		t.Fatal("NewConsole returned nil")
	}
	if console.name != "calc" {
		t.Errorf("name = %q, want %q", console.name, "calc")
	}

	// Should not be TTY when writing to buffer
	if console.IsTTY() {
		t.Error("Expected non-TTY when writing to buffer")
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		progress float64
		width    int
	}{
		{-1.0, 20},
		{0.0, 20},
		{0.5, 20},
		{1.0, 20},
		{2.0, 10},
	}

	for _, tt := range tests {
		result := renderProgressBar(tt.progress, tt.width)

		if !strings.HasPrefix(result, "[") || !strings.HasSuffix(result, "]") {
			t.Errorf("Progress bar should be wrapped in brackets: %q", result)
		}
		// Count runes, the bar characters are multi-byte
		if n := len([]rune(result)); n != tt.width+2 {
			t.Errorf("Progress bar rune count = %d, want %d", n, tt.width+2)
		}
	}
}

func TestConsoleListener_NonTTY(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsole(ConsoleConfig{Name: "calc", Writer: &buf, NoColor: true})

	console.Init(map[string]int{"Calc.Add": 2, "Calc.Mul": 1})
	console.Current("Calc.Add#1")
	console.Current("Calc.Add#2")
	console.Current("Calc.Mul#1")
	console.Error("Calc.Mul#1", result.KindInvocation)
	console.Finished()

	out := buf.String()
	if !strings.Contains(out, "calc - Running [2 operations, 3 runs]") {
		t.Errorf("header missing from output:\n%s", out)
	}
	if !strings.Contains(out, "[1/3] Calc.Add") || !strings.Contains(out, "[3/3] Calc.Mul") {
		t.Errorf("operations missing from output:\n%s", out)
	}
	if strings.Count(out, "Calc.Add\n") != 1 {
		t.Errorf("each operation should be printed once:\n%s", out)
	}
	if !strings.Contains(out, "invocation failure in Calc.Mul#1") {
		t.Errorf("failure missing from output:\n%s", out)
	}

	done, total := console.Progress()
	if done != 3 || total != 3 {
		t.Errorf("Progress() = %d/%d, want 3/3", done, total)
	}
}

func TestConsoleListener_TTY(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsole(ConsoleConfig{Writer: &buf, NoColor: true, ForceTTY: true})

	console.Init(map[string]int{"Calc.Add": 2})
	console.Current("Calc.Add#1")
	console.Current("Calc.Add#2")
	console.Finished()

	out := buf.String()
	if !strings.Contains(out, "benchmark - Running") {
		t.Errorf("default name missing from header:\n%s", out)
	}
	if !strings.Contains(out, "\r"+clearLine+"Progress: [") {
		t.Errorf("live progress line missing:\n%q", out)
	}
	if !strings.Contains(out, " 50% Calc.Add") {
		t.Errorf("progress should reach 50%% before the last run:\n%q", out)
	}
	if !strings.HasSuffix(out, "\r"+clearLine) {
		t.Errorf("Finished should clear the live line:\n%q", out)
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsole(ConsoleConfig{Writer: &buf, NoColor: true})

	console.PrintSummary(runFixture(t))
	summary := buf.String()

	for _, want := range []string{
		"fixture - Failed ✗",
		"Duration:      1.5s",
		"Runs:          8",
		"Arrangement:   none",
		"Failures:      2",
		"Operation",
		"Calc.Add",
		"ops[ops]",
		"✓ Calc.Add ops[ops] avg == 2 (actual: 2)",
		"✗ Calc.Mul ops[ops] max < 5",
		"invocation Flaky.Fail (bench): boom",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary should contain %q:\n%s", want, summary)
		}
	}
}

func TestPrintSummary_Passed(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsole(ConsoleConfig{Writer: &buf, NoColor: true})

	console.PrintSummary(&engine.Result{Name: "empty", Arrangement: "none", Duration: 30 * time.Second, Passed: true})

	summary := buf.String()
	if !strings.Contains(summary, "empty - Completed ✓") {
		t.Errorf("summary should show completion status:\n%s", summary)
	}
	if !strings.Contains(summary, "Failures:      0") {
		t.Errorf("summary should show no failures:\n%s", summary)
	}
}

func TestQuietMode(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsole(ConsoleConfig{Writer: &buf, Quiet: true})

	console.Init(map[string]int{"Calc.Add": 1})
	console.Current("Calc.Add#1")
	console.Error("Calc.Add#1", result.KindInvocation)
	console.Finished()
	if buf.Len() != 0 {
		t.Errorf("listener should not output in quiet mode: %q", buf.String())
	}

	// PrintSummary should still output pass/fail status in quiet mode
	console.PrintSummary(&engine.Result{Passed: true})
	if !strings.Contains(buf.String(), "PASSED") {
		t.Error("PrintSummary should output PASSED in quiet mode")
	}

	buf.Reset()
	console.PrintSummary(&engine.Result{Passed: false})
	if !strings.Contains(buf.String(), "FAILED") {
		t.Error("PrintSummary should output FAILED in quiet mode")
	}
}
