// Package output renders benchmark runs: a live console display that
// implements progress.Listener, a summary table, and exported reports in
// JSON, YAML and JUnit XML.
package output

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/wesleyorama2/perfkit/internal/engine"
	"github.com/wesleyorama2/perfkit/internal/meter"
	"github.com/wesleyorama2/perfkit/internal/progress"
	"github.com/wesleyorama2/perfkit/internal/result"
)

// ANSI escape codes for cursor control
const (
	clearLine = "\033[2K"

	// Box drawing characters
	boxHorizontal = "━"

	// Progress bar characters
	progressFilled = "█"
	progressEmpty  = "░"
)

// Console manages live console output during a run and prints the final
// summary. It is safe for use from one run at a time.
type Console struct {
	name   string
	writer io.Writer
	isTTY  bool
	quiet  bool
	scheme *ColorScheme

	// State
	mu       sync.Mutex
	total    int
	done     int
	errors   int
	seen     map[string]bool
	current  string
	liveLine bool
}

var (
	_ progress.Listener       = (*Console)(nil)
	_ progress.SampleObserver = (*Console)(nil)
)

// ConsoleConfig contains configuration for Console.
type ConsoleConfig struct {
	Name        string
	Writer      io.Writer
	Quiet       bool
	NoColor     bool
	ForceColors bool
	ForceTTY    bool
}

// NewConsole creates a new console output handler.
func NewConsole(config ConsoleConfig) *Console {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}

	isTTY := config.ForceTTY || isTerminal(config.Writer)
	useColors := !config.NoColor && (config.ForceColors || (isTTY && supportsColors()))

	scheme := NoColorScheme()
	if useColors {
		scheme = DefaultColorScheme()
	}

	return &Console{
		name:   config.Name,
		writer: config.Writer,
		isTTY:  isTTY,
		quiet:  config.Quiet,
		scheme: scheme,
		seen:   make(map[string]bool),
	}
}

// isTerminal checks if the writer is a terminal.
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isTerminalFile(f)
	}
	return false
}

// isTerminalFile checks if a file is a terminal (cross-platform).
func isTerminalFile(f *os.File) bool {
	if f == os.Stdout || f == os.Stderr {
		return checkIsTerminal(f)
	}
	return false
}

// supportsColors checks if the terminal supports colors.
func supportsColors() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	if runtime.GOOS == "windows" {
		return true
	}
	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}

// IsTTY returns whether the output is a terminal.
func (c *Console) IsTTY() bool {
	return c.isTTY
}

// Init prints the run header.
func (c *Console) Init(totals map[string]int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.total, c.done, c.errors = 0, 0, 0
	for _, n := range totals {
		c.total += n
	}
	if c.quiet {
		return
	}

	name := c.name
	if name == "" {
		name = "benchmark"
	}
	line := strings.Repeat(boxHorizontal, 56)
	c.writeln(c.scheme.Rule.Sprint(line))
	c.writeln(c.scheme.Title.Sprintf("%s - Running", name) +
		c.scheme.Dim.Sprintf(" [%d operations, %d runs]", len(totals), c.total))
	c.writeln(c.scheme.Rule.Sprint(line))
}

// Current advances the live progress line. On a terminal the line is
// redrawn in place; otherwise the first element of every operation is
// logged on its own line.
func (c *Console) Current(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != "" {
		c.done++
	}
	c.current = name
	if c.quiet {
		return
	}

	op := progress.Operation(name)
	if c.isTTY {
		c.write("\r" + clearLine + c.progressLine(op))
		c.liveLine = true
		return
	}
	if !c.seen[op] {
		c.seen[op] = true
		c.writeln(fmt.Sprintf("[%d/%d] %s", c.done+1, c.total, op))
	}
}

// Error counts a failure attributed to an element.
func (c *Console) Error(name string, kind result.FailureKind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.errors++
	if c.quiet || c.isTTY {
		return
	}
	c.writeln(fmt.Sprintf("  %s %s failure in %s", c.scheme.ErrorIcon(), kind, name))
}

// Finished clears the live line.
func (c *Console) Finished() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != "" {
		c.done++
		c.current = ""
	}
	if c.liveLine {
		c.write("\r" + clearLine)
		c.liveLine = false
	}
}

// OnSample is a no-op; the console summarizes from the frozen tree.
func (c *Console) OnSample(string, meter.Key, float64) {}

// OnFailure is a no-op; failures are counted through Error.
func (c *Console) OnFailure(result.Failure) {}

// Progress returns the number of completed and total elements.
func (c *Console) Progress() (done, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done, c.total
}

func (c *Console) progressLine(op string) string {
	fraction := 0.0
	if c.total > 0 {
		fraction = float64(c.done) / float64(c.total)
	}
	errs := ""
	if c.errors > 0 {
		errs = " " + c.scheme.Error.Sprintf("%d errors", c.errors)
	}
	return fmt.Sprintf("Progress: %s %s %s%s",
		c.scheme.Progress.Sprint(renderProgressBar(fraction, 30)),
		c.scheme.Title.Sprintf("%3.0f%%", fraction*100),
		c.scheme.Operation.Sprint(op),
		errs)
}

// renderProgressBar renders a progress bar.
func renderProgressBar(progress float64, width int) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	filled := int(progress * float64(width))
	empty := width - filled

	return "[" + strings.Repeat(progressFilled, filled) + strings.Repeat(progressEmpty, empty) + "]"
}

// summaryColumns are the statistics shown per operation and meter.
var summaryColumns = []string{"Meter", "Runs", "Mean", "±StdDev", "Min", "Median", "P95", "Max"}

// PrintSummary prints the final run summary.
func (c *Console) PrintSummary(res *engine.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.quiet {
		// In quiet mode, just print passed/failed status
		if res.Passed {
			c.writeln(c.scheme.Success.Sprint("PASSED"))
		} else {
			c.writeln(c.scheme.Error.Sprint("FAILED"))
		}
		return
	}

	report := NewReport(res)

	line := strings.Repeat(boxHorizontal, 56)
	status := c.scheme.Success.Sprint("Completed ✓")
	if !res.Passed {
		status = c.scheme.Error.Sprint("Failed ✗")
	}
	c.writeln("")
	c.writeln(c.scheme.Rule.Sprint(line))
	c.writeln(fmt.Sprintf("%s - %s", c.scheme.Title.Sprint(report.Name), status))
	c.writeln(c.scheme.Rule.Sprint(line))
	c.writeln("")

	failures := len(report.Failures)
	c.writeln(fmt.Sprintf("Duration:      %s", c.scheme.Value.Sprint(formatDuration(res.Duration))))
	c.writeln(fmt.Sprintf("Runs:          %s", c.scheme.Value.Sprint(formatNumber(int64(report.Elements)))))
	c.writeln(fmt.Sprintf("Arrangement:   %s", c.scheme.Value.Sprint(report.Arrangement)))
	if report.Collections > 0 {
		c.writeln(fmt.Sprintf("Collections:   %s", c.scheme.Value.Sprint(formatNumber(int64(report.Collections)))))
	}
	if failures > 0 {
		c.writeln(fmt.Sprintf("Failures:      %s", c.scheme.Error.Sprint(failures)))
	} else {
		c.writeln(fmt.Sprintf("Failures:      %s", c.scheme.Success.Sprint(0)))
	}
	c.writeln("")

	for _, class := range report.Classes {
		c.printClass(class, report.Meters)
	}

	// Thresholds
	if len(res.Thresholds) > 0 {
		c.writeln(c.scheme.Title.Sprint("Thresholds:"))
		for _, t := range res.Thresholds {
			icon := c.scheme.SuccessIcon()
			if !t.Passed {
				icon = c.scheme.ErrorIcon()
			}
			target := t.Target
			if target == "" {
				target = "*"
			}
			detail := fmt.Sprintf("(actual: %s)", t.Value)
			if !t.Passed && t.Message != "" {
				detail = fmt.Sprintf("(%s)", t.Message)
			}
			c.writeln(fmt.Sprintf("  %s %s %s %s %s", icon, target, c.scheme.Meter.Sprint(t.Meter), t.Expression, c.scheme.Dim.Sprint(detail)))
		}
		c.writeln("")
	}

	// Failures
	if failures > 0 {
		c.writeln(c.scheme.Title.Sprint("Failures:"))
		for _, f := range report.Failures {
			c.writeln(fmt.Sprintf("  %s %s", c.scheme.ErrorIcon(), formatFailure(f)))
		}
		c.writeln("")
	}
}

// printClass prints one table per class: a row per operation and meter.
func (c *Console) printClass(class ClassReport, meters []string) {
	c.writeln(c.scheme.Class.Sprint(class.Name))

	rows := [][]string{}
	ops := []string{}
	for _, m := range class.Methods {
		for _, key := range meters {
			s, ok := m.Stats[key]
			if !ok {
				continue
			}
			ops = append(ops, m.Name)
			rows = append(rows, []string{
				key,
				strconv.Itoa(s.Count),
				formatValue(s.Mean),
				formatValue(s.StdDev),
				formatValue(s.Min),
				formatValue(s.Median),
				formatValue(s.P95),
				formatValue(s.Max),
			})
		}
		if len(m.Stats) == 0 {
			ops = append(ops, m.Name)
			rows = append(rows, []string{"-", "0", "-", "-", "-", "-", "-", "-"})
		}
	}

	opWidth := len("Operation")
	for _, op := range ops {
		if len(op) > opWidth {
			opWidth = len(op)
		}
	}
	widths := make([]int, len(summaryColumns))
	for i, h := range summaryColumns {
		widths[i] = len([]rune(h))
	}
	for _, row := range rows {
		for i, cell := range row {
			if n := len([]rune(cell)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	header := "  " + pad("Operation", opWidth)
	for i, h := range summaryColumns {
		header += "  " + padLeft(h, widths[i], i > 0)
	}
	c.writeln(c.scheme.Dim.Sprint(strings.TrimRight(header, " ")))

	prev := ""
	for r, row := range rows {
		op := ops[r]
		label := pad(op, opWidth)
		if op == prev {
			label = pad("", opWidth)
		}
		prev = op
		out := "  " + c.scheme.Operation.Sprint(label)
		for i, cell := range row {
			text := padLeft(cell, widths[i], i > 0)
			if i == 0 {
				text = c.scheme.Meter.Sprint(text)
			}
			out += "  " + text
		}
		c.writeln(strings.TrimRight(out, " "))
	}

	for _, f := range class.Failures {
		c.writeln(fmt.Sprintf("  %s %s", c.scheme.WarningIcon(), formatFailure(f)))
	}
	c.writeln("")
}

// pad left-aligns s in width runes.
func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// padLeft right-aligns s in width runes when right is true.
func padLeft(s string, width int, right bool) string {
	if !right {
		return pad(s, width)
	}
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}

// write writes to the output without a newline.
func (c *Console) write(s string) {
	fmt.Fprint(c.writer, s)
}

// writeln writes to the output with a newline.
func (c *Console) writeln(s string) {
	fmt.Fprintln(c.writer, s)
}

// Helper functions

// formatDuration formats a duration in a human-readable format.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %02ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
}

// formatValue formats a statistic with precision scaled to its magnitude.
func formatValue(v float64) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case v == 0:
		return "0"
	case abs >= 1e6:
		return strconv.FormatFloat(v, 'e', 3, 64)
	case abs >= 1000:
		return formatNumber(int64(v + 0.5*sign(v)))
	case abs >= 1:
		return strconv.FormatFloat(v, 'f', 2, 64)
	default:
		return strconv.FormatFloat(v, 'g', 3, 64)
	}
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// formatNumber formats a number with thousands separators.
func formatNumber(n int64) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	str := strconv.FormatInt(n, 10)
	if len(str) <= 3 {
		return str
	}

	var sb strings.Builder
	offset := len(str) % 3
	if offset > 0 {
		sb.WriteString(str[:offset])
	}
	for i := offset; i < len(str); i += 3 {
		if sb.Len() > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(str[i : i+3])
	}
	return sb.String()
}

func formatFailure(f FailureReport) string {
	target := f.Class
	if f.Method != "" {
		target += "." + f.Method
	}
	where := f.Role
	if f.Hook != "" {
		where += " " + f.Hook
	}
	return fmt.Sprintf("%s %s (%s): %s", f.Kind, target, where, f.Message)
}

func sortedKeys(m map[string]Stats) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
