package tui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/script"
	"github.com/muesli/termenv"
)

// ReportMarkdown renders a replay report as markdown for glamour.
func ReportMarkdown(r *script.Report) string {
	var sb strings.Builder
	name := r.Name
	if name == "" {
		name = "replay"
	}
	fmt.Fprintf(&sb, "# %s\n\n", name)

	sb.WriteString("| # | signal | container | top | attached | result |\n")
	sb.WriteString("|---|--------|-----------|-----|----------|--------|\n")
	for _, s := range r.Steps {
		result := "ok"
		switch {
		case !s.Passed():
			result = "**FAIL**"
		case s.Err != "":
			result = "expected error"
		}
		fmt.Fprintf(&sb, "| %d | %s | %s | %s | %s | %s |\n",
			s.Index, s.Signal, s.Container, orDash(s.Snapshot.Top), owners(s.Snapshot), result)
	}

	if failures := r.Failures(); len(failures) > 0 {
		sb.WriteString("\n## Failures\n\n")
		for _, f := range failures {
			fmt.Fprintf(&sb, "- %s\n", f)
		}
	}
	return sb.String()
}

// PrintReport writes one coloured line per step to w. Colours are dropped when w
// is not a terminal.
func PrintReport(w io.Writer, r *script.Report) {
	out := termenv.NewOutput(w)
	pass := out.Color("#22c55e")
	fail := out.Color("#ef4444")

	for _, s := range r.Steps {
		mark := out.String("✔").Foreground(pass)
		if !s.Passed() {
			mark = out.String("✘").Foreground(fail)
		}
		fmt.Fprintf(w, "%s %2d %-8s %-12s top=%-12s %s\n",
			mark, s.Index, s.Signal, s.Container, orDash(s.Snapshot.Top), owners(s.Snapshot))
		for _, f := range s.Failures {
			fmt.Fprintf(w, "     %s\n", out.String(f).Foreground(fail))
		}
	}
	for _, v := range r.Violations {
		fmt.Fprintf(w, "%s\n", out.String(v).Foreground(fail).Bold())
	}

	summary := out.String("PASS").Foreground(pass).Bold()
	if !r.Passed() {
		summary = out.String("FAIL").Foreground(fail).Bold()
	}
	fmt.Fprintf(w, "%s %d steps\n", summary, len(r.Steps))
}

func owners(snap domain.Snapshot) string {
	engines := make([]string, 0, len(snap.Owners))
	for e := range snap.Owners {
		engines = append(engines, e)
	}
	sort.Strings(engines)
	parts := make([]string, 0, len(engines))
	for _, e := range engines {
		parts = append(parts, e+"="+orDash(snap.Owners[e]))
	}
	return strings.Join(parts, " ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
