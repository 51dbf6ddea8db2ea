//go:build windows

package output

import (
	"os"

	"github.com/mattn/go-isatty"
)

// checkIsTerminal reports whether f is a console. Cygwin pipes count as
// terminals; they render ANSI escapes.
func checkIsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsCygwinTerminal(fd) || isatty.IsTerminal(fd)
}
