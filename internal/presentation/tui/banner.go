package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the stagehand banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	// Amber to rose, like stage lights.
	lines := []struct {
		text  string
		color string
	}{
		{"      _                   _                     _ ", "#fbbf24"},
		{"  ___| |_ __ _  __ _  ___| |__   __ _ _ __   __| |", "#f59e0b"},
		{" / __| __/ _` |/ _` |/ _ \\ '_ \\ / _` | '_ \\ / _` |", "#f97316"},
		{" \\__ \\ || (_| | (_| |  __/ | | | (_| | | | | (_| |", "#fb7185"},
		{" |___/\\__\\__,_|\\__, |\\___|_| |_|\\__,_|_| |_|\\__,_|", "#f43f5e"},
		{"               |___/", "#e11d48"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
