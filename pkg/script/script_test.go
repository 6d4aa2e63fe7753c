package script_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Scenario(t *testing.T) {
	s, err := script.Load(filepath.Join("testdata", "scenario.yaml"))
	require.NoError(t, err)

	report, err := script.Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, report.Passed(), "failures: %v", report.Failures())
	require.Len(t, report.Steps, 8)

	resumeB := report.Steps[3]
	assert.Equal(t, []string{
		"detach:a@stagehand_default_engine",
		"release:a@stagehand_default_engine",
		"ui_hidden@stagehand_default_engine",
		"bind:b@stagehand_default_engine",
		"attach:b@stagehand_default_engine",
		"resumed@stagehand_default_engine",
	}, resumeB.Journal)
	assert.Equal(t, []string{"appeared:b"}, resumeB.Notified)
}

func TestRun_AndroidQSuppression(t *testing.T) {
	s, err := script.Load(filepath.Join("testdata", "android_q.yaml"))
	require.NoError(t, err)

	report, err := script.Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, report.Passed(), "failures: %v", report.Failures())

	last := report.Steps[len(report.Steps)-1]
	assert.Empty(t, last.Journal, "suppressed resume has no side effects")
	assert.Empty(t, last.Notified)
}

func TestRun_WithoutRuleFailsExpectation(t *testing.T) {
	s, err := script.Load(filepath.Join("testdata", "android_q.yaml"))
	require.NoError(t, err)

	report, err := script.Run(context.Background(), s, script.WithSuppressionRule(nil))
	require.NoError(t, err)
	assert.False(t, report.Passed())
	assert.NotEmpty(t, report.Failures())
	assert.Empty(t, report.Violations)
}

func TestRun_ExpectError(t *testing.T) {
	s, err := script.Parse([]byte(`
containers:
  - {id: a, url: /a}
steps:
  - {signal: create, container: a}
  - {signal: create, container: a, expect_error: duplicate_container}
  - {signal: resume, container: ghost, expect_error: container_not_found}
  - {signal: back, container: a}
`))
	require.NoError(t, err)

	report, err := script.Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, report.Passed(), "failures: %v", report.Failures())
	assert.Equal(t, []string{"pop_route:a"}, report.Steps[3].Notified)
}

func TestRun_UnexpectedError(t *testing.T) {
	s, err := script.Parse([]byte(`
containers:
  - {id: a, url: /a}
steps:
  - {signal: resume, container: a}
`))
	require.NoError(t, err)

	report, err := script.Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, report.Passed())
	assert.Contains(t, report.Steps[0].Err, domain.ErrContainerNotFound.Error())
}

func TestValidate(t *testing.T) {
	_, err := script.Parse([]byte(`
engines: [main]
containers:
  - {id: a}
  - {id: b, url: /b, engine_id: other}
  - {id: b, url: /b, background_mode: frosted}
steps:
  - {signal: jump, container: a}
  - {signal: resume, container: zzz}
  - signal: resume
    container: a
    expect:
      attached: {nope: a}
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, script.ErrInvalidScript)
	msg := err.Error()
	assert.Contains(t, msg, "container a")
	assert.Contains(t, msg, `unknown engine "other"`)
	assert.Contains(t, msg, "duplicate id")
	assert.Contains(t, msg, "step 1")
	assert.Contains(t, msg, `unknown container "zzz"`)
	assert.Contains(t, msg, `unknown engine "nope"`)
}

func TestParse_BadYAML(t *testing.T) {
	_, err := script.Parse([]byte("steps: [unclosed"))
	assert.Error(t, err)
}

func TestErrorName(t *testing.T) {
	assert.Equal(t, "", script.ErrorName(nil))
	assert.Equal(t, "missing_url", script.ErrorName(domain.ErrMissingURL))
	assert.Equal(t, "other", script.ErrorName(assert.AnError))
}
