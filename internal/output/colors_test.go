package output

import (
	"strings"
	"testing"
)

func TestColorSchemes(t *testing.T) {
	for name, scheme := range map[string]*ColorScheme{
		"default": DefaultColorScheme(),
		"none":    NoColorScheme(),
	} {
		for i, c := range scheme.all() {
			if c == nil {
				t.Errorf("%s scheme: color %d is nil", name, i)
			}
		}
	}
}

func TestNoColorScheme_Plain(t *testing.T) {
	scheme := NoColorScheme()

	if got := scheme.Title.Sprint("title"); got != "title" {
		t.Errorf("Title.Sprint() = %q, want plain text", got)
	}
	if got := scheme.SuccessIcon(); got != "✓" {
		t.Errorf("SuccessIcon() = %q, want %q", got, "✓")
	}
	if got := scheme.ErrorIcon(); got != "✗" {
		t.Errorf("ErrorIcon() = %q, want %q", got, "✗")
	}
	if got := scheme.WarningIcon(); got != "⚠" {
		t.Errorf("WarningIcon() = %q, want %q", got, "⚠")
	}
}

func TestDefaultColorScheme_Escapes(t *testing.T) {
	scheme := DefaultColorScheme()

	if got := scheme.Error.Sprint("x"); !strings.Contains(got, "\033[") {
		t.Errorf("Error.Sprint() = %q, want ANSI escapes", got)
	}
}
