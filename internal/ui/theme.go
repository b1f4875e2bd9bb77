package ui

import (
	"fmt"
	"sort"
	"strings"
)

// Theme is the palette and glyph set of the plain list output.
type Theme struct {
	Title, Muted, Accent, Success, Error, Pending, Overdue string
	BoxUnchecked, BoxChecked                               string
	CornerTL, CornerTR, CornerBL, CornerBR                 string
	H, V                                                   string
	SymDone, SymUnchecked, SymFail                         string
	BarFull, BarEmpty                                      string

	// Color is false for themes meant for pipes and log files.
	Color bool
}

var themes = map[string]Theme{
	"classic": {
		Title: bold, Muted: fgGray, Accent: fgBlue,
		Success: fgGreen, Error: fgRed, Pending: fgYellow, Overdue: fgRed,
		BoxUnchecked: "☐", BoxChecked: "☑",
		CornerTL: "┌", CornerTR: "┐", CornerBL: "└", CornerBR: "┘",
		H: "─", V: "│",
		SymDone: "✔", SymUnchecked: "•", SymFail: "✖",
		BarFull: "█", BarEmpty: "░",
		Color: true,
	},
	// ASCII only, for terminals without box-drawing glyphs.
	"plain": {
		BoxUnchecked: "[ ]", BoxChecked: "[x]",
		CornerTL: "+", CornerTR: "+", CornerBL: "+", CornerBR: "+",
		H: "-", V: "|",
		SymDone: "x", SymUnchecked: "-", SymFail: "!",
		BarFull: "#", BarEmpty: ".",
	},
}

var current = themes["classic"]

// ThemeNames lists the names SetTheme accepts, sorted.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SetTheme switches the palette. An unknown name is an error and leaves the
// current theme in place.
func SetTheme(name string) error {
	t, ok := themes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return fmt.Errorf("unknown theme %q (want one of %s)", name, strings.Join(ThemeNames(), ", "))
	}
	current = t
	return nil
}

func Current() Theme { return current }
