package output

import (
	"github.com/fatih/color"
)

// ColorScheme defines the colors used for different elements in the output
type ColorScheme struct {
	Title     *color.Color
	Rule      *color.Color
	Class     *color.Color
	Operation *color.Color
	Meter     *color.Color
	Value     *color.Color
	Dim       *color.Color
	Progress  *color.Color
	Success   *color.Color
	Warning   *color.Color
	Error     *color.Color
}

func (s *ColorScheme) all() []*color.Color {
	return []*color.Color{
		s.Title, s.Rule, s.Class, s.Operation, s.Meter, s.Value,
		s.Dim, s.Progress, s.Success, s.Warning, s.Error,
	}
}

// DefaultColorScheme returns the default color scheme. Colors are forced
// on; callers decide whether the destination supports them.
func DefaultColorScheme() *ColorScheme {
	scheme := &ColorScheme{
		Title:     color.New(color.Bold),
		Rule:      color.New(color.FgCyan),
		Class:     color.New(color.FgMagenta, color.Bold),
		Operation: color.New(color.FgBlue),
		Meter:     color.New(color.FgYellow),
		Value:     color.New(color.FgCyan),
		Dim:       color.New(color.Faint),
		Progress:  color.New(color.FgGreen),
		Success:   color.New(color.FgGreen, color.Bold),
		Warning:   color.New(color.FgYellow, color.Bold),
		Error:     color.New(color.FgRed, color.Bold),
	}
	for _, c := range scheme.all() {
		c.EnableColor()
	}
	return scheme
}

// NoColorScheme returns a color scheme with all colors disabled
func NoColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()
	for _, c := range scheme.all() {
		c.DisableColor()
	}
	return scheme
}

// SuccessIcon returns a checkmark symbol with appropriate color
func (s *ColorScheme) SuccessIcon() string {
	return s.Success.Sprint("✓")
}

// ErrorIcon returns an X symbol with appropriate color
func (s *ColorScheme) ErrorIcon() string {
	return s.Error.Sprint("✗")
}

// WarningIcon returns a warning symbol with appropriate color
func (s *ColorScheme) WarningIcon() string {
	return s.Warning.Sprint("⚠")
}
