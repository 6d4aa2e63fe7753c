package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/stagehand/internal/presentation/tui"
	"github.com/aretw0/stagehand/pkg/observability"
	"github.com/aretw0/stagehand/pkg/script"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrReplayFailed is returned when a replay ran but some expectation did not hold.
var ErrReplayFailed = errors.New("replay failed")

// ReplayOptions selects how a replay report is printed.
type ReplayOptions struct {
	// Format is one of text, markdown or json.
	Format string
	Debug  bool
	// Metrics prints the signal counters gathered during the replay.
	Metrics bool
}

// Replay runs the script at path and prints the report to out.
func Replay(ctx context.Context, out io.Writer, path string, opts ReplayOptions, logger *slog.Logger) (*script.Report, error) {
	s, err := script.Load(path)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	hooks := observability.NewMetrics(reg).Hooks()
	if opts.Debug {
		hooks = hooks.Merge(observability.LogHooks(logger))
	}
	report, err := script.Run(ctx, s, script.WithLogger(logger), script.WithLifecycleHooks(hooks))
	if err != nil {
		return report, err
	}

	if err := printReport(out, report, opts.Format); err != nil {
		return report, err
	}
	if opts.Metrics {
		if err := printMetrics(out, reg); err != nil {
			return report, err
		}
	}
	if !report.Passed() {
		return report, fmt.Errorf("%s: %w", path, ErrReplayFailed)
	}
	return report, nil
}

func printReport(out io.Writer, report *script.Report, format string) error {
	switch format {
	case "", "text":
		tui.PrintReport(out, report)
	case "markdown":
		md := tui.ReportMarkdown(report)
		if f, ok := out.(*os.File); ok && tui.IsTerminal(f) {
			rendered, err := tui.NewRenderer()(md)
			if err == nil {
				md = rendered
			}
		}
		fmt.Fprint(out, md)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	default:
		return fmt.Errorf("unknown format %q (want text, markdown or json)", format)
	}
	return nil
}

// printMetrics writes every non-zero stagehand series as "name{labels} value".
func printMetrics(out io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			value := m.GetCounter().GetValue() + m.GetGauge().GetValue()
			if value == 0 {
				continue
			}
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
			}
			fmt.Fprintf(out, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), value)
		}
	}
	return nil
}
