package ui

import (
	"fmt"
	"io"
	"os"
)

// SGR sequences used by the themes.
const (
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"

	fgRed    = "\033[31m"
	fgGreen  = "\033[32m"
	fgYellow = "\033[33m"
	fgBlue   = "\033[34m"
	fgGray   = "\033[90m"
)

var (
	forceColor   bool
	disableColor = os.Getenv("NO_COLOR") != ""
)

// SetColorForcing overrides terminal detection. disable wins over force.
func SetColorForcing(force, disable bool) {
	forceColor = force
	disableColor = disable
}

func colorOn() bool {
	if disableColor || !current.Color {
		return false
	}
	if forceColor {
		return true
	}
	fi, err := os.Stdout.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

// C wraps s in color when the theme has colors and the output takes them.
func C(color, s string) string {
	if color == "" || !colorOn() {
		return s
	}
	return color + s + reset
}

func Dim(s string) string { return C(dim, s) }

// OK and Fail use the theme's glyphs, so the plain theme stays ASCII.
func OK(w io.Writer, msg string) {
	fmt.Fprintln(w, C(current.Success, current.SymDone+" "+msg))
}

func Fail(w io.Writer, msg string) {
	fmt.Fprintln(w, C(current.Error, current.SymFail+" "+msg))
}

// Hint prints a muted follow-up line under a failure.
func Hint(w io.Writer, msg string) { fmt.Fprintln(w, C(current.Muted, "Hint: "+msg)) }
