package tui_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/stagehand/internal/presentation/tui"
	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/script"
	"github.com/stretchr/testify/assert"
)

func sampleReport() *script.Report {
	return &script.Report{
		Name: "sample",
		Steps: []script.StepResult{
			{
				Index: 1, Signal: domain.SignalResume, Container: "a",
				Snapshot: domain.Snapshot{Top: "a", Owners: map[string]string{"main": "a"}},
			},
			{
				Index: 2, Signal: domain.SignalPause, Container: "b",
				Err:      "pause b: container not found",
				Failures: []string{"unexpected error: pause b: container not found"},
				Snapshot: domain.Snapshot{Top: "a", Owners: map[string]string{"main": "a"}},
			},
		},
	}
}

func TestReportMarkdown(t *testing.T) {
	md := tui.ReportMarkdown(sampleReport())

	assert.True(t, strings.HasPrefix(md, "# sample\n"))
	assert.Contains(t, md, "| 1 | resume | a | a | main=a | ok |")
	assert.Contains(t, md, "| 2 | pause | b | a | main=a | **FAIL** |")
	assert.Contains(t, md, "## Failures")
	assert.Contains(t, md, "step 2 (pause b): unexpected error")
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintReport(&buf, sampleReport())

	out := buf.String()
	assert.Contains(t, out, "✔")
	assert.Contains(t, out, "✘")
	assert.Contains(t, out, "FAIL 2 steps")
	// A buffer is not a terminal, so no escape sequences.
	assert.NotContains(t, out, "\x1b[")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestNewRenderer(t *testing.T) {
	render := tui.NewRenderer()
	out, err := render("# Title")
	assert.NoError(t, err)
	assert.Contains(t, out, "Title")
}
